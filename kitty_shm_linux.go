//go:build linux

package rasteroid

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const shmDir = "/dev/shm"

// createSharedSegment writes data into a new POSIX shared memory object sized
// exactly to the data. The object is not unlinked: the terminal opens,
// reads and removes it.
func createSharedSegment(data []byte) (*TransferredSegment, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	name := shmName()
	path := filepath.Join(shmDir, name)

	fd, err := unix.Open(path, unix.O_CREAT|unix.O_EXCL|unix.O_RDWR|unix.O_CLOEXEC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared memory %s: %w", name, err)
	}
	defer unix.Close(fd)

	if err := unix.Ftruncate(fd, int64(len(data))); err != nil {
		unix.Unlink(path)
		return nil, fmt.Errorf("failed to size shared memory %s: %w", name, err)
	}
	mem, err := unix.Mmap(fd, 0, len(data), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Unlink(path)
		return nil, fmt.Errorf("failed to map shared memory %s: %w", name, err)
	}
	copy(mem, data)
	if err := unix.Munmap(mem); err != nil {
		return nil, fmt.Errorf("failed to unmap shared memory %s: %w", name, err)
	}
	return &TransferredSegment{Name: name, Size: len(data)}, nil
}

func shmName() string {
	return fmt.Sprintf("rasteroid-%d-%016x", os.Getpid(), rand.Uint64())
}
