package ebitenpano

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/pano"
)

const pointerSlots = 10 // pointer 0 = mouse, 1-9 = touch

// keyBindings maps Ebitengine keys to the viewer keys.
var keyBindings = [...]struct {
	ebiten ebiten.Key
	key    pano.Key
}{
	{ebiten.KeyEscape, pano.KeyEscape},
	{ebiten.KeyArrowLeft, pano.KeyArrowLeft},
	{ebiten.KeyArrowRight, pano.KeyArrowRight},
	{ebiten.KeySpace, pano.KeySpace},
	{ebiten.KeyR, pano.KeyR},
}

// Game adapts a pano.Session to ebiten.Game.
type Game struct {
	session *pano.Session
	cfg     RunConfig

	renderer *renderer
	shots    *screenshotter
	fps      *fpsOverlay

	touchIDs  []ebiten.TouchID
	touchUsed [pointerSlots]bool
	touchMap  [pointerSlots]ebiten.TouchID
	touchPos  [pointerSlots][2]float64

	held []pano.Key

	width, height int
	released      bool
}

// NewGame wraps an open session. The session's OnClosed callback releases
// the game's GPU images; the next Update then ends the loop.
func NewGame(session *pano.Session, cfg RunConfig) *Game {
	cfg = cfg.withDefaults()
	g := &Game{
		session:  session,
		cfg:      cfg,
		renderer: newRenderer(),
		shots:    newScreenshotter(cfg.ScreenshotDir, cfg.ScreenshotFormat),
	}
	if cfg.ShowFPS {
		g.fps = newFPSOverlay()
	}
	session.OnClosed(g.release)
	return g
}

// Session returns the wrapped session.
func (g *Game) Session() *pano.Session { return g.session }

// Update polls input, feeds it to the session and advances it one tick.
func (g *Game) Update() error {
	if g.session.Closed() {
		g.release()
		return ebiten.Termination
	}

	g.pollMouse()
	g.pollTouches()
	if _, yoff := ebiten.Wheel(); yoff != 0 {
		g.session.Wheel(yoff)
	}
	g.pollKeys()
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		g.session.RequestScreenshot("f12")
	}

	dt := 1.0 / 60
	if tps := ebiten.TPS(); tps > 0 {
		dt = 1 / float64(tps)
	}
	g.session.Update(dt)
	if g.fps != nil {
		g.fps.update(dt)
	}

	if g.session.Closed() {
		g.release()
		return ebiten.Termination
	}
	return nil
}

// Draw renders the current frame and writes any queued screenshots.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.released {
		return
	}
	frame := g.session.Frame()
	g.renderer.draw(screen, frame)
	if g.fps != nil {
		g.fps.draw(screen)
	}
	g.shots.flush(screen, g.session.TakeScreenshotRequests())
}

// Layout keeps the session viewport equal to the window size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.session.SetViewport(pano.Viewport{
			Width:  float64(outsideWidth),
			Height: float64(outsideHeight),
		})
	}
	return outsideWidth, outsideHeight
}

func (g *Game) release() {
	if g.released {
		return
	}
	g.released = true
	g.renderer.dispose()
	if g.fps != nil {
		g.fps.dispose()
	}
}

// pollMouse feeds pointer 0. Only the left button drags and clicks; the
// position is still reported while it is up so hover keeps working.
func (g *Game) pollMouse() {
	mx, my := ebiten.CursorPosition()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	g.session.PointerInput(0, float64(mx), float64(my), pressed)
}

// pollTouches feeds touches as pointers 1-9.
func (g *Game) pollTouches() {
	g.touchIDs = ebiten.AppendTouchIDs(g.touchIDs[:0])

	var active [pointerSlots]bool
	for _, tid := range g.touchIDs {
		slot := g.touchSlot(tid)
		if slot < 0 {
			continue
		}
		active[slot] = true

		tx, ty := ebiten.TouchPosition(tid)
		g.touchPos[slot] = [2]float64{float64(tx), float64(ty)}
		g.session.PointerInput(slot, float64(tx), float64(ty), true)
	}

	// A touch that vanished ends where it was last seen.
	for i := 1; i < pointerSlots; i++ {
		if g.touchUsed[i] && !active[i] {
			g.session.PointerInput(i, g.touchPos[i][0], g.touchPos[i][1], false)
			g.touchUsed[i] = false
			g.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (g *Game) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < pointerSlots; i++ {
		if g.touchUsed[i] && g.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < pointerSlots; i++ {
		if !g.touchUsed[i] {
			g.touchUsed[i] = true
			g.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// pollKeys hands the held viewer keys to the session, which fires each
// binding once per press.
func (g *Game) pollKeys() {
	g.held = g.held[:0]
	for _, b := range keyBindings {
		if ebiten.IsKeyPressed(b.ebiten) {
			g.held = append(g.held, b.key)
		}
	}
	g.session.Keys(g.held)
}
