package ebitenpano

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshot formats accepted by RunConfig.ScreenshotFormat.
const (
	FormatWebP = "webp"
	FormatPNG  = "png"
)

// screenshotter writes the labels queued by Session.RequestScreenshot (and
// F12) at the end of Draw.
type screenshotter struct {
	dir    string
	format string
	now    func() time.Time
}

func newScreenshotter(dir, format string) *screenshotter {
	return &screenshotter{dir: dir, format: format, now: time.Now}
}

func (s *screenshotter) flush(screen *ebiten.Image, labels []string) {
	if len(labels) == 0 {
		return
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "[pano] screenshot: mkdir %s: %v\n", s.dir, err)
		return
	}

	bounds := screen.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	screen.ReadPixels(pixels)
	img := unpremultiply(pixels, w, h)

	stamp := s.now().Format("20060102_150405")
	for _, label := range labels {
		path := filepath.Join(s.dir, fmt.Sprintf("%s_%s.%s", stamp, sanitizeLabel(label), s.format))
		if err := writeImage(path, img, s.format); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "[pano] screenshot: %v\n", err)
		}
	}
}

// unpremultiply converts premultiplied RGBA bytes to straight-alpha NRGBA.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// writeImage encodes img to path as WebP or PNG.
func writeImage(path string, img image.Image, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	switch format {
	case FormatPNG:
		err = png.Encode(f, img)
	default:
		err = nativewebp.Encode(f, img, nil)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
