package rasteroid

import (
	"image/color"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForOutcome(t *testing.T, w *RenderWorker, timeout time.Duration) RenderOutcome {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if res, ok := w.TryLatest(); ok {
			return res
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for render")
	return RenderOutcome{}
}

func TestRenderWorkerProducesResult(t *testing.T) {
	w := NewRenderWorker(solidImage(20, 20, color.White), &HalfblocksRenderer{}, RenderWorkerOptions{})
	t.Cleanup(w.Close)

	_, ok := w.TryLatest()
	assert.False(t, ok)

	req := RenderRequest{Zoom: 1, Wininfo: *testWininfo()}
	w.Schedule(req)

	res := waitForOutcome(t, w, 2*time.Second)
	require.NoError(t, res.Err)
	assert.Equal(t, req, res.Request)
	assert.Contains(t, res.Output, "▀")
}

func TestRenderWorkerWait(t *testing.T) {
	w := NewRenderWorker(solidImage(20, 20, color.White), &SixelRenderer{}, RenderWorkerOptions{Workers: 2, Queue: 4})
	t.Cleanup(w.Close)

	req := RenderRequest{Zoom: 2, Wininfo: *smallTerm()}
	w.Schedule(req)
	res, ok := w.Wait()
	require.True(t, ok)
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Request.Zoom)
	assert.Contains(t, res.Output, "\x1bP0;1q")

	latest, ok := w.TryLatest()
	require.True(t, ok)
	assert.Equal(t, res.Output, latest.Output)
}

func TestRenderWorkerReportsErrors(t *testing.T) {
	w := NewRenderWorker(solidImage(4, 4, color.White), &SixelRenderer{}, RenderWorkerOptions{})
	t.Cleanup(w.Close)

	w.Schedule(RenderRequest{Zoom: 1, Wininfo: Wininfo{}})
	res, ok := w.Wait()
	require.True(t, ok)
	assert.Error(t, res.Err)
}

func TestRenderWorkerClose(t *testing.T) {
	w := NewRenderWorker(solidImage(4, 4, color.White), &HalfblocksRenderer{}, RenderWorkerOptions{})
	w.Close()
	w.Close()

	_, ok := w.Wait()
	assert.False(t, ok, "wait returns once the worker is closed")
	w.Schedule(RenderRequest{Zoom: 1})
}

func TestRenderRequestReplacesKittyImage(t *testing.T) {
	img := solidImage(20, 20, color.White)
	req := RenderRequest{Zoom: 1, Wininfo: *smallTerm(), ImageID: 77}

	for range 2 {
		res := renderRequest(img, &KittyRenderer{}, req)
		require.NoError(t, res.Err)

		_, deletes, rest := parseKitty(t, res.Output)
		require.Len(t, deletes, 1)
		assert.Equal(t, []string{"a=d", "d=i", "i=77", "q=2"}, deletes[0].keys)

		_, cmds, _ := parseKitty(t, rest)
		require.NotEmpty(t, cmds)
		assert.Contains(t, cmds[0].keys, "a=T")
		assert.Contains(t, cmds[0].keys, "i=77", "every render reuses the image id")
	}
}

func TestRenderRequestWithoutImageID(t *testing.T) {
	res := renderRequest(solidImage(20, 20, color.White), &KittyRenderer{}, RenderRequest{Zoom: 1, Wininfo: *smallTerm()})
	require.NoError(t, res.Err)
	assert.NotContains(t, res.Output, "a=d")
}

func TestViewerKeepsKittyImageID(t *testing.T) {
	m, err := NewViewer(solidImage(400, 400, color.White), Kitty, smallTerm(), "white.png")
	require.NoError(t, err)

	id := m.request().ImageID
	require.NotZero(t, id)

	first := m.View()
	m.Update(key("+"))
	second := m.View()
	assert.NotEqual(t, first, second)

	del := "\x1b_Ga=d,d=i,i=" + strconv.FormatUint(uint64(id), 10) + ",q=2\x1b\\"
	for _, out := range []string{first, second} {
		assert.True(t, strings.HasPrefix(out, del), "previous placement is deleted first")
	}
	assert.Equal(t, id, m.request().ImageID)
}

func TestViewerAsync(t *testing.T) {
	m := newTestViewer(t).Async(RenderWorkerOptions{})
	t.Cleanup(m.Close)

	cmd := m.Init()
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, renderedMsg{}, msg)

	_, next := m.Update(msg)
	assert.NotNil(t, next, "keeps waiting for renders")
	assert.Contains(t, m.View(), "▀")
	assert.NoError(t, m.Err())
}
