//go:build !unix && !windows

package rasteroid

import "os"

var shutdownSignals = []os.Signal{os.Interrupt}
