package ebitenpano

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/pano"
)

// RunConfig holds window and capture options for Run.
type RunConfig struct {
	// Title is the window title. Empty uses the session's first image title.
	Title string
	// Width and Height are the initial window size. Zero uses 1280x720.
	Width, Height int
	// ShowFPS draws the FPS/TPS overlay.
	ShowFPS bool
	// ScreenshotDir receives screenshots. Empty uses "screenshots".
	ScreenshotDir string
	// ScreenshotFormat is FormatWebP (default) or FormatPNG.
	ScreenshotFormat string
}

func (c RunConfig) withDefaults() RunConfig {
	if c.Width <= 0 {
		c.Width = 1280
	}
	if c.Height <= 0 {
		c.Height = 720
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "screenshots"
	}
	if c.ScreenshotFormat != FormatPNG {
		c.ScreenshotFormat = FormatWebP
	}
	return c
}

// Run opens a resizable window and drives session until it is closed or the
// window is shut. It blocks; call it from the main goroutine.
func Run(session *pano.Session, cfg RunConfig) error {
	if session == nil || session.Closed() {
		return pano.ErrSessionClosed
	}
	cfg = cfg.withDefaults()
	title := cfg.Title
	if title == "" {
		title = session.Image(0).Title
	}
	if title == "" {
		title = "pano"
	}

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	game := NewGame(session, cfg)
	err := ebiten.RunGame(game)
	// Shutting the window leaves the session open.
	session.Close()
	game.release()
	if err != nil {
		return fmt.Errorf("ebitenpano: %w", err)
	}
	return nil
}
