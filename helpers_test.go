package pano

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/fs"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// pngBytes encodes a w x h image filled with c.
func pngBytes(t testing.TB, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// memFetcher serves sources from memory. Sources with a gate block until the
// gate is closed.
type memFetcher struct {
	mu    sync.Mutex
	files map[string][]byte
	fail  map[string]error
	gates map[string]chan struct{}
	calls map[string]int
}

func newMemFetcher() *memFetcher {
	return &memFetcher{
		files: make(map[string][]byte),
		fail:  make(map[string]error),
		gates: make(map[string]chan struct{}),
		calls: make(map[string]int),
	}
}

func (f *memFetcher) Fetch(ctx context.Context, source string) (io.ReadCloser, error) {
	f.mu.Lock()
	f.calls[source]++
	gate := f.gates[source]
	data, ok := f.files[source]
	err := f.fail[source]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *memFetcher) callCount(source string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[source]
}

// settle ticks s until the displayed texture is no longer loading.
func settle(t *testing.T, s *Session) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.Scene().TextureState() == TextureLoading {
		if time.Now().After(deadline) {
			t.Fatalf("texture for image %d still loading", s.Index())
		}
		time.Sleep(time.Millisecond)
		s.Update(0)
	}
}

// testConfig returns the default config with logging discarded.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.LogOutput = io.Discard
	n := 0
	cfg.NewID = func() string {
		n++
		return fmt.Sprintf("test-%d", n)
	}
	return cfg
}

// threeImages returns a three-image set whose sources the fetcher serves.
func threeImages(t testing.TB, f *memFetcher) []Image {
	t.Helper()
	imgs := []Image{
		{Source: "img/0.png", Title: "Courtyard"},
		{Source: "img/1.png", Title: "Prayer Hall"},
		{Source: "img/2.png", Title: "Roof"},
	}
	for i, img := range imgs {
		f.files[img.Source] = pngBytes(t, 8+i, 4, color.NRGBA{R: uint8(80 * i), A: 255})
	}
	return imgs
}

// aheadHotspots returns two hotspots: one straight ahead of the default view
// and one to the right.
func aheadHotspots() []Hotspot {
	return []Hotspot{
		{Position: vec(0, 0, -0.8), Title: "Altar", Category: CategoryAltar},
		{Position: vec(0.8, 0, 0), Title: "Window", Category: CategoryArchitecture},
	}
}

func vec(x, y, z float64) mgl64.Vec3 {
	return mgl64.Vec3{x, y, z}
}
