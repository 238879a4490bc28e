package pano

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Fetcher is the external I/O layer that resolves an opaque image source to
// its encoded bytes. Timeouts and retries belong to the Fetcher; the loader
// only sees success or failure.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (io.ReadCloser, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, source string) (io.ReadCloser, error)

// Fetch calls f(ctx, source).
func (f FetcherFunc) Fetch(ctx context.Context, source string) (io.ReadCloser, error) {
	return f(ctx, source)
}

// Texture is a decoded equirectangular image ready to be wrapped around the
// sphere. Textures are immutable once produced by the Loader.
type Texture struct {
	Source string
	Image  *image.NRGBA
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int {
	if t == nil || t.Image == nil {
		return 0
	}
	return t.Image.Bounds().Dx()
}

// Height returns the texture height in pixels.
func (t *Texture) Height() int {
	if t == nil || t.Image == nil {
		return 0
	}
	return t.Image.Bounds().Dy()
}

// LoaderConfig controls decoding and preloading.
type LoaderConfig struct {
	// MaxTextureWidth downscales wider images (keeping aspect) after decode.
	// Zero disables downscaling.
	MaxTextureWidth int `yaml:"max_texture_width"`
	// PreloadWorkers bounds concurrent fetches issued by Preload.
	PreloadWorkers int `yaml:"preload_workers"`
}

// DefaultLoaderConfig returns the loader defaults: textures capped at 8192
// pixels wide, four preload workers.
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{MaxTextureWidth: 8192, PreloadWorkers: 4}
}

// Future is the pending result of a texture request. Concurrent requests for
// the same source share one Future.
type Future struct {
	source string
	done   chan struct{}
	tex    *Texture
	err    *LoadError
}

func newFuture(source string) *Future {
	return &Future{source: source, done: make(chan struct{})}
}

func resolvedFuture(source string, tex *Texture, err *LoadError) *Future {
	f := newFuture(source)
	f.resolve(tex, err)
	return f
}

func (f *Future) resolve(tex *Texture, err *LoadError) {
	f.tex = tex
	f.err = err
	close(f.done)
}

// Source returns the image source this future was requested for.
func (f *Future) Source() string {
	return f.source
}

// Done returns a channel closed when the result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Ready reports whether the result is available without blocking.
func (f *Future) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Result returns the texture or the load failure. It must only be called
// after Ready reports true or Done is closed; before that it returns
// (nil, nil).
func (f *Future) Result() (*Texture, error) {
	if !f.Ready() {
		return nil, nil
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.tex, nil
}

// Wait blocks until the result is available or ctx is done.
func (f *Future) Wait(ctx context.Context) (*Texture, error) {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Loader fetches and decodes textures, caching successes by source for the
// lifetime of a viewer session. Failures are not cached so a later request
// retries the fetch.
//
// Loader methods are safe for concurrent use. Completed fetches always land
// in the cache; deciding whether a result should be displayed is the
// caller's job.
type Loader struct {
	fetcher Fetcher
	cfg     LoaderConfig
	group   singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	cache    map[string]*Texture
	inflight map[string]*Future
	closed   bool
	// gen counts Purge calls. A fetch started before a purge does not
	// repopulate the cache.
	gen uint64
}

// NewLoader creates a loader that resolves sources through fetcher.
func NewLoader(fetcher Fetcher, cfg LoaderConfig) *Loader {
	if cfg.PreloadWorkers <= 0 {
		cfg.PreloadWorkers = DefaultLoaderConfig().PreloadWorkers
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		fetcher:  fetcher,
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		cache:    make(map[string]*Texture),
		inflight: make(map[string]*Future),
	}
}

// Request starts loading source in the background and returns its Future.
// A cached texture yields an already-resolved Future; a request for a source
// that is still in flight returns the existing Future instead of issuing a
// second fetch.
func (l *Loader) Request(source string) *Future {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return resolvedFuture(source, nil, &LoadError{Source: source, Reason: "loader closed"})
	}
	if tex, ok := l.cache[source]; ok {
		return resolvedFuture(source, tex, nil)
	}
	if f, ok := l.inflight[source]; ok {
		return f
	}

	f := newFuture(source)
	l.inflight[source] = f
	go l.run(f)
	return f
}

func (l *Loader) run(f *Future) {
	tex, err := l.Load(l.ctx, f.source)

	l.mu.Lock()
	if l.inflight[f.source] == f {
		delete(l.inflight, f.source)
	}
	l.mu.Unlock()

	if err != nil {
		f.resolve(nil, asLoadError(f.source, "fetch", err))
		return
	}
	f.resolve(tex, nil)
}

// Load fetches and decodes source, blocking until done. Concurrent calls for
// the same source share a single fetch.
func (l *Loader) Load(ctx context.Context, source string) (*Texture, error) {
	if tex, ok := l.Cached(source); ok {
		return tex, nil
	}

	v, err, _ := l.group.Do(source, func() (any, error) {
		if tex, ok := l.Cached(source); ok {
			return tex, nil
		}
		gen := l.generation()
		tex, err := l.fetchDecode(ctx, source)
		if err != nil {
			return nil, err
		}
		l.store(tex, gen)
		return tex, nil
	})
	if err != nil {
		return nil, asLoadError(source, "fetch", err)
	}
	return v.(*Texture), nil
}

// Preload warms the cache for sources using at most PreloadWorkers
// concurrent fetches. Individual load failures are joined into the returned
// error; a cancelled ctx stops the remaining work.
func (l *Loader) Preload(ctx context.Context, sources ...string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.cfg.PreloadWorkers)

	var (
		mu       sync.Mutex
		failures []error
	)
	for _, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := l.Load(gctx, src); err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("preload: %w", err)
	}
	return errors.Join(failures...)
}

// Cached returns the cached texture for source, if any.
func (l *Loader) Cached(source string) (*Texture, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tex, ok := l.cache[source]
	return tex, ok
}

// Len returns the number of cached textures.
func (l *Loader) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.cache)
}

// Purge drops every cached texture. In-flight loads still complete and
// resolve their futures, but their textures are not cached.
func (l *Loader) Purge() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.cache)
	l.gen++
}

// Close cancels in-flight fetches and releases the cache. Requests made
// after Close resolve immediately with a LoadError.
func (l *Loader) Close() {
	l.mu.Lock()
	l.closed = true
	clear(l.cache)
	clear(l.inflight)
	l.mu.Unlock()
	l.cancel()
}

func (l *Loader) generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen
}

// store caches tex unless the loader was closed or purged after the fetch
// began at generation gen.
func (l *Loader) store(tex *Texture, gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.gen != gen {
		return
	}
	l.cache[tex.Source] = tex
}

func (l *Loader) fetchDecode(ctx context.Context, source string) (*Texture, error) {
	if l.fetcher == nil {
		return nil, &LoadError{Source: source, Reason: "no fetcher configured"}
	}
	rc, err := l.fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, &LoadError{Source: source, Reason: "fetch", Err: err}
	}
	defer rc.Close()

	img, err := decodeImage(rc, source)
	if err != nil {
		return nil, &LoadError{Source: source, Reason: "decode", Err: err}
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, &LoadError{Source: source, Reason: "decode", Err: errors.New("empty image")}
	}
	return &Texture{Source: source, Image: fitTexture(img, l.cfg.MaxTextureWidth)}, nil
}

// ErrUnknownFormat is wrapped by LoadError when a source's bytes match no
// supported image format.
var ErrUnknownFormat = errors.New("unknown image format")

// decodeImage picks a decoder from the leading magic bytes rather than the
// image.RegisterFormat table. TGA has no magic number and is selected by the
// source's extension.
func decodeImage(r io.Reader, source string) (image.Image, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(12)

	switch {
	case bytes.HasPrefix(head, []byte("\xff\xd8")):
		return jpeg.Decode(br)
	case bytes.HasPrefix(head, []byte("\x89PNG")):
		return png.Decode(br)
	case bytes.HasPrefix(head, []byte("GIF8")):
		return gif.Decode(br)
	case len(head) >= 12 && bytes.Equal(head[:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WEBP")):
		return webp.Decode(br)
	case bytes.HasPrefix(head, []byte("BM")):
		return bmp.Decode(br)
	case bytes.HasPrefix(head, []byte("II*\x00")), bytes.HasPrefix(head, []byte("MM\x00*")):
		return tiff.Decode(br)
	case strings.EqualFold(sourceExt(source), ".tga"):
		return tga.Decode(br)
	}
	return nil, ErrUnknownFormat
}

// sourceExt returns the extension of a path or URL, ignoring any query.
func sourceExt(source string) string {
	if i := strings.IndexAny(source, "?#"); i >= 0 {
		source = source[:i]
	}
	return path.Ext(source)
}

// fitTexture converts img to NRGBA with its origin at (0, 0), downscaling it
// to maxWidth (keeping aspect) when it is wider.
func fitTexture(img image.Image, maxWidth int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxWidth > 0 && w > maxWidth {
		nh := max(1, (h*maxWidth+w/2)/w)
		dst := image.NewNRGBA(image.Rect(0, 0, maxWidth, nh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		return dst
	}
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
