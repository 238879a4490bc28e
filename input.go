package pano

import "math"

const (
	maxPointers         = 10  // pointer 0 = mouse, 1-9 = touch
	defaultDragDeadZone = 4.0 // pixels
)

// --- Per-pointer state ---

type pointerState struct {
	down     bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	hit      int // hotspot index under the press, -1 for none
	dragging bool
	pinched  bool // took part in a pinch; its release is not a click
}

// --- Pinch state ---

type pinchState struct {
	active   bool
	prevDist float64
}

// --- Pointer input ---

// PointerInput feeds one pointer sample for this tick. Pointer 0 is the
// mouse, 1-9 are touches. Call it for every active pointer before Update,
// and once more with pressed=false when a touch ends.
//
// A press and release on the same hotspot without dragging selects it. A
// press that travels further than the drag dead zone orbits the camera
// instead. A click on empty space during Focus dismisses the selection.
func (s *Session) PointerInput(id int, x, y float64, pressed bool) {
	if s.state == StateClosed || id < 0 || id >= maxPointers {
		return
	}
	s.processPointer(id, x, y, pressed)
}

// Wheel zooms by dy notches; positive values zoom in.
func (s *Session) Wheel(dy float64) {
	if s.state == StateClosed || dy == 0 {
		return
	}
	s.camera.Zoom(dy)
}

// KeyDown performs the action bound to k once.
func (s *Session) KeyDown(k Key) {
	if s.state == StateClosed {
		return
	}
	switch ActionFor(k) {
	case ActionClose:
		s.Close()
	case ActionPrev:
		s.Prev()
	case ActionNext:
		s.Next()
	case ActionToggleAutoRotate:
		s.ToggleAutoRotate()
	case ActionResetView:
		s.ResetView()
	}
}

// Keys takes the set of keys held this tick and acts on those newly pressed.
// Holding a key acts once.
func (s *Session) Keys(held []Key) {
	for _, k := range s.keys.Update(held) {
		s.KeyDown(k)
	}
}

// hitAt returns the index of the hotspot under pixel (x, y), or -1.
func (s *Session) hitAt(x, y float64) int {
	hit, ok := HitTest(x, y, s.camera.State(), s.viewport, s.Hotspots(), s.cfg.Hit)
	if !ok {
		return -1
	}
	return hit.Index
}

// processPointer runs the pointer state machine for a single pointer.
func (s *Session) processPointer(id int, x, y float64, pressed bool) {
	ps := &s.pointers[id]
	if id == 0 {
		s.cursorSeen = true
	}

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.startX, ps.startY = x, y
		ps.lastX, ps.lastY = x, y
		ps.hit = s.hitAt(x, y)
		ps.dragging = false
		ps.pinched = false

	case !pressed && ps.down:
		if ps.dragging {
			if !s.anyDragging(id) {
				s.camera.EndDrag()
			}
		} else if !ps.pinched && s.viewport.Contains(x, y) {
			target := s.hitAt(x, y)
			switch {
			case ps.hit >= 0 && target == ps.hit:
				s.selectIndex(target)
			case ps.hit < 0 && target < 0 && s.state == StateFocus:
				s.Dismiss()
			}
		}
		ps.down = false
		ps.dragging = false
		ps.pinched = false
		ps.hit = -1
		ps.lastX, ps.lastY = x, y

	case pressed && ps.down:
		if x != ps.lastX || y != ps.lastY {
			if !ps.dragging && !ps.pinched && !s.pinch.active {
				dx, dy := x-ps.startX, y-ps.startY
				if math.Sqrt(dx*dx+dy*dy) > s.cfg.DragDeadZone {
					ps.dragging = true
					s.camera.BeginDrag()
				}
			}
			if ps.dragging {
				s.camera.Drag(x-ps.lastX, y-ps.lastY)
			}
		}
		ps.lastX, ps.lastY = x, y

	default:
		ps.lastX, ps.lastY = x, y
	}
}

// anyDragging reports whether a pointer other than except is dragging.
func (s *Session) anyDragging(except int) bool {
	for i := range s.pointers {
		if i != except && s.pointers[i].dragging {
			return true
		}
	}
	return false
}

// --- Pinch detection ---

// detectPinch zooms the camera while exactly two touches are down. Both
// touches stop orbiting for the rest of their gesture.
func (s *Session) detectPinch() {
	var p0, p1, count int
	for i := 1; i < maxPointers; i++ {
		if !s.pointers[i].down {
			continue
		}
		switch count {
		case 0:
			p0 = i
		case 1:
			p1 = i
		}
		count++
	}

	if count != 2 {
		s.pinch.active = false
		return
	}

	ps0, ps1 := &s.pointers[p0], &s.pointers[p1]
	dist := math.Hypot(ps1.lastX-ps0.lastX, ps1.lastY-ps0.lastY)

	if !s.pinch.active {
		s.pinch.active = true
		s.pinch.prevDist = dist
		if ps0.dragging || ps1.dragging {
			ps0.dragging, ps1.dragging = false, false
			if !s.anyDragging(-1) {
				s.camera.EndDrag()
			}
		}
		ps0.pinched, ps1.pinched = true, true
		return
	}

	if s.pinch.prevDist > 0 && dist > 0 {
		s.camera.ZoomScale(dist / s.pinch.prevDist)
	}
	s.pinch.prevDist = dist
}

// --- Hover ---

// updateHover re-runs the hover test for the mouse every tick, since an
// auto-rotating camera moves markers under a still cursor.
func (s *Session) updateHover() {
	if !s.cursorSeen || s.pointers[0].dragging {
		s.setHover(-1)
		return
	}
	ps := &s.pointers[0]
	i, ok := HoverTest(ps.lastX, ps.lastY, s.camera.State(), s.viewport, s.Hotspots(), s.cfg.Hit)
	if !ok {
		i = -1
	}
	s.setHover(i)
}

func (s *Session) setHover(i int) {
	if i == s.hovered {
		return
	}
	if s.hovered >= 0 && s.hovered < len(s.markers) {
		s.markers[s.hovered].setHovered(false)
	}
	s.hovered = i
	if i >= 0 && i < len(s.markers) {
		s.markers[i].setHovered(true)
	}
	s.fireHoverChanged(s.Hovered())
}
