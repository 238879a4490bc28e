package pano

// MarkerRadius is the resting on-screen radius of a hotspot marker, in
// pixels, before pulse and hover scaling.
const MarkerRadius = 10.0

// MarkerState is the per-tick render state of one hotspot marker.
type MarkerState struct {
	Index   int
	Hotspot Hotspot

	// ScreenX and ScreenY are the projected marker center in pixels.
	ScreenX, ScreenY float64
	Depth            float64
	Radius           float64 // pixels, including Scale
	Scale            float64
	Color            Color

	Hovered  bool
	Selected bool
	// Visible is false when the marker is behind the camera or its disc
	// lies entirely outside the viewport.
	Visible bool
}

// Frame is the snapshot a renderer draws from. It shares no mutable state
// with the session.
type Frame struct {
	SessionID string
	Index     int
	Count     int
	Image     Image
	State     State
	Mode      Mode
	Camera    CameraState
	Viewport  Viewport
	Elapsed   float64

	Mesh           *SphereMesh
	Texture        *Texture
	TextureState   TextureState
	TextureVersion uint64
	LoadErr        error

	Markers  []MarkerState
	Selected *Hotspot // copy, nil when nothing is selected
	Hovered  *Hotspot // copy, nil when nothing is hovered
}

// Frame builds the render snapshot for the current tick. A closed session
// yields a frame with State StateClosed and nothing to draw.
func (s *Session) Frame() Frame {
	f := Frame{
		SessionID: s.id,
		Index:     s.index,
		Count:     len(s.images),
		Image:     s.images[s.index],
		State:     s.state,
		Mode:      s.Mode(),
		Camera:    s.camera.State(),
		Viewport:  s.viewport,
		Elapsed:   s.elapsed,
	}
	if s.state == StateClosed {
		return f
	}

	f.Mesh = s.scene.Mesh()
	f.Texture = s.scene.Texture()
	f.TextureState = s.scene.TextureState()
	f.TextureVersion = s.scene.Version()
	f.LoadErr = s.scene.Err()

	if s.selected != nil {
		cp := *s.selected
		f.Selected = &cp
	}
	if h := s.Hovered(); h != nil {
		cp := *h
		f.Hovered = &cp
	}

	list := s.Hotspots()
	f.Markers = make([]MarkerState, len(list))
	for i := range list {
		f.Markers[i] = s.markerState(i, &list[i], f.Camera)
	}
	return f
}

func (s *Session) markerState(i int, h *Hotspot, cam CameraState) MarkerState {
	m := MarkerState{
		Index:    i,
		Hotspot:  *h,
		Color:    h.Category.Color(),
		Hovered:  i == s.hovered,
		Selected: s.selected == h,
		Scale:    MarkerScale(s.elapsed, i == s.hovered),
	}
	if i < len(s.markers) {
		m.Scale = s.markers[i].scale(s.elapsed)
	}
	if m.Selected {
		m.Scale *= hoverScale
	}
	m.Radius = MarkerRadius * m.Scale

	px, py, depth, ok := Project(cam, s.viewport, h.Position)
	m.ScreenX, m.ScreenY, m.Depth = px, py, depth
	if ok {
		vp := s.viewport
		m.Visible = px+m.Radius >= vp.X && px-m.Radius <= vp.X+vp.Width &&
			py+m.Radius >= vp.Y && py-m.Radius <= vp.Y+vp.Height
	}
	if s.cfg.Debug && m.Visible {
		s.stats.visibleMarkers++
	}
	return m
}
