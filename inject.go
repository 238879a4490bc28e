package pano

type syntheticKind uint8

const (
	synthPointer syntheticKind = iota
	synthWheel
	synthKey
)

// syntheticEvent is one injected input event. Pointer events use viewport
// pixels, exactly like real mouse input.
type syntheticEvent struct {
	kind    syntheticKind
	x, y    float64
	pressed bool
	delta   float64
	key     Key
}

// InjectPress queues a mouse press at (x, y). Injected events are consumed
// one per Update.
func (s *Session) InjectPress(x, y float64) {
	s.inject(syntheticEvent{kind: synthPointer, x: x, y: y, pressed: true})
}

// InjectMove queues a mouse move with the button held. Use it between
// InjectPress and InjectRelease to drag.
func (s *Session) InjectMove(x, y float64) {
	s.inject(syntheticEvent{kind: synthPointer, x: x, y: y, pressed: true})
}

// InjectHover queues a mouse move with no button held.
func (s *Session) InjectHover(x, y float64) {
	s.inject(syntheticEvent{kind: synthPointer, x: x, y: y})
}

// InjectRelease queues a mouse release at (x, y).
func (s *Session) InjectRelease(x, y float64) {
	s.inject(syntheticEvent{kind: synthPointer, x: x, y: y})
}

// InjectClick queues a press followed by a release at the same point.
// Consumes two ticks.
func (s *Session) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectDrag queues a press at (fromX, fromY), frames-2 evenly spaced moves
// and a release at (toX, toY). The sequence consumes frames ticks, at least
// two.
func (s *Session) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	frames = max(frames, 2)
	s.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		s.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	s.InjectRelease(toX, toY)
}

// InjectWheel queues a wheel movement of dy notches.
func (s *Session) InjectWheel(dy float64) {
	s.inject(syntheticEvent{kind: synthWheel, delta: dy})
}

// InjectKey queues a key press.
func (s *Session) InjectKey(k Key) {
	s.inject(syntheticEvent{kind: synthKey, key: k})
}

// PendingInjections returns the number of queued events.
func (s *Session) PendingInjections() int {
	return len(s.injectQueue)
}

func (s *Session) inject(evt syntheticEvent) {
	if s.state == StateClosed {
		return
	}
	s.injectQueue = append(s.injectQueue, evt)
}

// processInjectedInput pops one queued event and feeds it through the same
// paths as real input. It reports whether an event was consumed.
func (s *Session) processInjectedInput() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	switch evt.kind {
	case synthPointer:
		s.processPointer(0, evt.x, evt.y, evt.pressed)
	case synthWheel:
		s.Wheel(evt.delta)
	case synthKey:
		s.KeyDown(evt.key)
	}
	return true
}
