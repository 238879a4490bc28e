package pano

import (
	"context"
	"log"
	"time"
)

// Image is one entry of the panorama set.
type Image struct {
	Source   string `yaml:"source"`
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
}

var defaultViewport = Viewport{Width: 1280, Height: 720}

// Session is an open viewer over one panorama set. All methods must be
// called from the goroutine that drives Update; only texture loading runs in
// the background, and its results are picked up on the next Update.
//
// Once closed, a session ignores every call.
type Session struct {
	id  string
	cfg Config
	log *log.Logger

	images   []Image
	source   map[int][]Hotspot
	registry *Registry

	loader     *Loader
	ownsLoader bool
	scene      *Scene
	camera     *OrbitCamera
	viewport   Viewport

	state    State
	prior    Mode
	index    int
	selected *Hotspot
	hovered  int
	markers  []markerAnim

	pending      *Future
	pendingIndex int
	failures     map[int]*LoadError

	pointers    [maxPointers]pointerState
	pinch       pinchState
	cursorSeen  bool
	keys        KeyTracker
	injectQueue []syntheticEvent
	runner      *ScriptRunner
	screenshots []string

	elapsed  float64
	handlers handlerRegistry
	stats    frameStats
}

// Open starts a session over images, showing startIndex (clamped into range)
// in Explore mode with the camera at its default orientation. hotspots maps
// image indexes to their hotspot lists; the maps and slices are copied.
//
// Textures come from loader. A nil loader gets a private one built from
// cfg.Loader with no fetcher, so every image shows the placeholder. Open
// fails with ErrEmptyImageSet when images is empty.
func Open(images []Image, startIndex int, hotspots map[int][]Hotspot, cfg Config, loader *Loader) (*Session, error) {
	if len(images) == 0 {
		return nil, ErrEmptyImageSet
	}
	if cfg.DragDeadZone < 0 {
		cfg.DragDeadZone = 0
	}
	cfg.Hit = cfg.Hit.withDefaults()

	s := &Session{
		cfg:      cfg,
		images:   append([]Image(nil), images...),
		source:   make(map[int][]Hotspot, len(hotspots)),
		registry: NewRegistry(),
		loader:   loader,
		scene:    BuildScene(cfg.Sphere.Radius, cfg.Sphere.LonSegments, cfg.Sphere.LatSegments),
		camera:   NewOrbitCamera(cfg.Camera),
		viewport: defaultViewport,
		state:    StateExplore,
		prior:    ModeExplore,
		index:    clampInt(startIndex, 0, len(images)-1),
		hovered:  -1,
		failures: make(map[int]*LoadError),
	}
	for i, list := range hotspots {
		if i < 0 || i >= len(images) || len(list) == 0 {
			continue
		}
		s.source[i] = append([]Hotspot(nil), list...)
	}
	if s.loader == nil {
		s.loader = NewLoader(nil, cfg.Loader)
		s.ownsLoader = true
	}
	s.id = s.cfg.newID()
	s.log = newSessionLogger(&s.cfg)

	s.showIndex(s.index)
	s.logf("open: %d images, start at %d", len(s.images), s.index)
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the state machine's current state.
func (s *Session) State() State { return s.state }

// Mode returns the current open mode. A closed session reports the mode it
// was in when it closed.
func (s *Session) Mode() Mode {
	if s.state == StateFocus {
		return ModeFocus
	}
	return s.prior
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool { return s.state == StateClosed }

// Index returns the displayed image index.
func (s *Session) Index() int { return s.index }

// Len returns the number of images in the set.
func (s *Session) Len() int { return len(s.images) }

// Image returns the entry at index i, clamped into range.
func (s *Session) Image(i int) Image {
	return s.images[clampInt(i, 0, len(s.images)-1)]
}

// Hotspots returns the hotspots of the displayed image. The slice is owned
// by the session.
func (s *Session) Hotspots() []Hotspot { return s.registry.Get(s.index) }

// Selected returns the selected hotspot, or nil.
func (s *Session) Selected() *Hotspot { return s.selected }

// Hovered returns the hotspot under the pointer, or nil.
func (s *Session) Hovered() *Hotspot {
	list := s.Hotspots()
	if s.hovered < 0 || s.hovered >= len(list) {
		return nil
	}
	return &list[s.hovered]
}

// Camera returns a snapshot of the camera.
func (s *Session) Camera() CameraState { return s.camera.State() }

// Scene returns the sphere scene.
func (s *Session) Scene() *Scene { return s.scene }

// Viewport returns the screen rectangle used for hit-testing and projection.
func (s *Session) Viewport() Viewport { return s.viewport }

// SetViewport sets the screen rectangle the panorama is drawn into.
func (s *Session) SetViewport(vp Viewport) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return
	}
	s.viewport = vp
}

// ImageStatus reports the texture state of image i without changing what
// is displayed: ready when cached, failed when its last load failed,
// loading while a request for the displayed image is pending, empty
// otherwise.
func (s *Session) ImageStatus(i int) TextureState {
	if i < 0 || i >= len(s.images) || s.state == StateClosed {
		return TextureEmpty
	}
	if _, ok := s.loader.Cached(s.images[i].Source); ok {
		return TextureReady
	}
	if _, ok := s.failures[i]; ok {
		return TextureFailed
	}
	if s.pending != nil && s.pendingIndex == i {
		return TextureLoading
	}
	return TextureEmpty
}

// Navigate shows image i, clamped into [0, Len()-1]. The camera returns to
// its default orientation and the selection is cleared on every call;
// OnImageChanged fires only when the index actually changes. Navigating out
// of Focus returns to the mode that was active before it.
func (s *Session) Navigate(i int) {
	if s.state == StateClosed {
		return
	}
	i = clampInt(i, 0, len(s.images)-1)
	changed := i != s.index

	s.camera.Reset()
	s.clearSelection()
	s.setHover(-1)

	if changed {
		s.registry.Clear(s.index)
		s.showIndex(i)
		s.debugf("navigate: %d (%s)", i, s.images[i].Title)
		s.fireImageChanged(i)
		return
	}
	if s.scene.TextureState() == TextureFailed {
		s.showIndex(i)
	}
}

// Next shows the following image. At the last image it does nothing.
func (s *Session) Next() {
	if s.state == StateClosed || s.index >= len(s.images)-1 {
		return
	}
	s.Navigate(s.index + 1)
}

// Prev shows the preceding image. At the first image it does nothing.
func (s *Session) Prev() {
	if s.state == StateClosed || s.index <= 0 {
		return
	}
	s.Navigate(s.index - 1)
}

// SetMode switches between Explore and Guided. Called during Focus it
// dismisses the selection first. ModeFocus is ignored; Focus is entered by
// selecting a hotspot.
func (s *Session) SetMode(m Mode) {
	if s.state == StateClosed || m == ModeFocus {
		return
	}
	if s.state == StateFocus {
		s.selected = nil
		s.camera.Unfocus()
		s.fireHotspotSelected(nil)
	} else if m == s.prior {
		return
	}
	s.enterMode(m)
}

// ToggleAutoRotate flips between Explore and Guided. It does nothing during
// Focus.
func (s *Session) ToggleAutoRotate() {
	switch s.state {
	case StateExplore:
		s.enterMode(ModeGuided)
	case StateGuided:
		s.enterMode(ModeExplore)
	}
}

// SelectHotspot selects h as if it had been clicked, turning the camera
// toward it and entering Focus. A nil hotspot dismisses the current
// selection. Selecting replaces any previous selection in one step.
func (s *Session) SelectHotspot(h *Hotspot) {
	if s.state == StateClosed {
		return
	}
	if h == nil {
		s.Dismiss()
		return
	}
	list := s.Hotspots()
	for i := range list {
		if &list[i] == h || list[i].Position == h.Position {
			s.selectIndex(i)
			return
		}
	}
	cp := *h
	s.selectHotspot(&cp)
}

func (s *Session) selectIndex(i int) {
	list := s.Hotspots()
	if i < 0 || i >= len(list) {
		return
	}
	s.selectHotspot(&list[i])
}

func (s *Session) selectHotspot(h *Hotspot) {
	if s.selected == h {
		return
	}
	entering := s.state != StateFocus
	s.selected = h
	s.state = StateFocus
	s.camera.FocusOn(h.Direction())
	s.debugf("select: %q", h.Title)
	if entering {
		s.fireModeChanged(ModeFocus)
	}
	s.fireHotspotSelected(h)
}

// Dismiss closes the detail of the selected hotspot and returns to the mode
// that was active before Focus. It does nothing outside Focus.
func (s *Session) Dismiss() {
	if s.state != StateFocus {
		return
	}
	s.selected = nil
	s.camera.Unfocus()
	s.enterMode(s.prior)
	s.fireHotspotSelected(nil)
}

// ResetView returns the camera to its default orientation. During Focus it
// also dismisses the selection.
func (s *Session) ResetView() {
	if s.state == StateClosed {
		return
	}
	s.camera.Reset()
	s.clearSelection()
}

// Close ends the session: the selection is cleared, textures are released
// and OnClosed fires. A private loader is shut down; a shared one is purged
// so the set's textures can be collected.
func (s *Session) Close() {
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	s.selected = nil
	s.hovered = -1
	s.pending = nil
	s.injectQueue = nil
	s.runner = nil
	s.registry.ClearAll()
	s.scene.Clear()
	if s.ownsLoader {
		s.loader.Close()
	} else {
		s.loader.Purge()
	}
	s.logf("close")
	s.fireClosed()
}

// Preload warms the loader cache with every image of the set. It returns
// ErrSessionClosed on a closed session.
func (s *Session) Preload(ctx context.Context) error {
	if s.state == StateClosed {
		return ErrSessionClosed
	}
	sources := make([]string, len(s.images))
	for i, img := range s.images {
		sources[i] = img.Source
	}
	return s.loader.Preload(ctx, sources...)
}

// RequestScreenshot queues a labelled screenshot for the renderer.
func (s *Session) RequestScreenshot(label string) {
	if s.state == StateClosed {
		return
	}
	s.screenshots = append(s.screenshots, label)
}

// TakeScreenshotRequests returns and clears the queued screenshot labels.
func (s *Session) TakeScreenshotRequests() []string {
	out := s.screenshots
	s.screenshots = nil
	return out
}

// Update advances the session by one tick of dt seconds: scripted and
// injected input, finished texture loads, the camera, hover state and
// marker animation, in that order.
func (s *Session) Update(dt float64) {
	if s.state == StateClosed {
		return
	}
	var start time.Time
	if s.cfg.Debug {
		start = time.Now()
	}
	if dt < 0 {
		dt = 0
	}
	prevSecond := int(s.elapsed)
	s.elapsed += dt

	if s.runner != nil {
		s.runner.step(s)
	}
	s.processInjectedInput()
	if s.state == StateClosed {
		return
	}
	s.detectPinch()
	s.applyPending()
	s.camera.Update(dt)
	s.updateHover()
	for i := range s.markers {
		s.markers[i].update(float32(dt))
	}

	if s.cfg.Debug {
		s.stats.ticks++
		s.stats.updateTime += time.Since(start)
		if int(s.elapsed) != prevSecond {
			s.debugLog(s.stats)
			s.stats = frameStats{}
		}
	}
}

// showIndex makes i the displayed index and requests its texture.
func (s *Session) showIndex(i int) {
	s.index = i
	s.registry.Set(i, s.source[i])
	s.markers = make([]markerAnim, s.registry.Len(i))

	src := s.images[i].Source
	s.pending = s.loader.Request(src)
	s.pendingIndex = i
	s.scene.SetLoading(src)
	s.applyPending()
}

// applyPending swaps in the requested texture once it is ready. Results for
// an index that is no longer displayed are dropped; the loader has already
// cached them.
func (s *Session) applyPending() {
	f := s.pending
	if f == nil || !f.Ready() {
		return
	}
	s.pending = nil
	if s.pendingIndex != s.index {
		return
	}
	tex, err := f.Result()
	if err != nil {
		le := asLoadError(f.Source(), "fetch", err)
		s.failures[s.index] = le
		s.scene.SetFailed(le)
		s.logf("image %d: %v", s.index, le)
		return
	}
	delete(s.failures, s.index)
	s.scene.SetTexture(tex)
	s.debugf("image %d ready: %dx%d", s.index, tex.Width(), tex.Height())
}

// enterMode makes m the active open mode.
func (s *Session) enterMode(m Mode) {
	s.prior = m
	s.state = stateFor(m)
	s.camera.SetAutoRotate(m == ModeGuided)
	s.debugf("mode: %s", m)
	s.fireModeChanged(m)
}

// clearSelection drops the selection, leaving Focus for the prior mode.
func (s *Session) clearSelection() {
	if s.state == StateFocus {
		s.Dismiss()
		return
	}
	if s.selected != nil {
		s.selected = nil
		s.fireHotspotSelected(nil)
	}
}
