package pano

import "slices"

type eventType uint8

const (
	eventImageChanged eventType = iota
	eventHotspotSelected
	eventHoverChanged
	eventModeChanged
	eventClosed
)

type handler[F any] struct {
	id uint32
	fn F
}

type handlerRegistry struct {
	imageChanged    []handler[func(int)]
	hotspotSelected []handler[func(*Hotspot)]
	hoverChanged    []handler[func(*Hotspot)]
	modeChanged     []handler[func(Mode)]
	closed          []handler[func()]
	nextID          uint32
}

// CallbackHandle allows removing a registered session callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event eventType
}

// Remove unregisters this callback so it no longer fires. Removing twice is
// harmless.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.event {
	case eventImageChanged:
		h.reg.imageChanged = removeHandler(h.reg.imageChanged, h.id)
	case eventHotspotSelected:
		h.reg.hotspotSelected = removeHandler(h.reg.hotspotSelected, h.id)
	case eventHoverChanged:
		h.reg.hoverChanged = removeHandler(h.reg.hoverChanged, h.id)
	case eventModeChanged:
		h.reg.modeChanged = removeHandler(h.reg.modeChanged, h.id)
	case eventClosed:
		h.reg.closed = removeHandler(h.reg.closed, h.id)
	}
}

func removeHandler[F any](s []handler[F], id uint32) []handler[F] {
	for i := range s {
		if s[i].id == id {
			return slices.Delete(s, i, i+1)
		}
	}
	return s
}

func addHandler[F any](reg *handlerRegistry, list *[]handler[F], event eventType, fn F) CallbackHandle {
	reg.nextID++
	id := reg.nextID
	*list = append(*list, handler[F]{id: id, fn: fn})
	return CallbackHandle{id: id, reg: reg, event: event}
}

// OnImageChanged registers a callback fired with the new index whenever the
// displayed image changes. Opening a session does not fire it.
func (s *Session) OnImageChanged(fn func(index int)) CallbackHandle {
	return addHandler(&s.handlers, &s.handlers.imageChanged, eventImageChanged, fn)
}

// OnHotspotSelected registers a callback fired when the selection changes.
// A nil hotspot means the selection was cleared.
func (s *Session) OnHotspotSelected(fn func(h *Hotspot)) CallbackHandle {
	return addHandler(&s.handlers, &s.handlers.hotspotSelected, eventHotspotSelected, fn)
}

// OnHoverChanged registers a callback fired when the pointer starts or stops
// hovering a hotspot. A nil hotspot means nothing is hovered.
func (s *Session) OnHoverChanged(fn func(h *Hotspot)) CallbackHandle {
	return addHandler(&s.handlers, &s.handlers.hoverChanged, eventHoverChanged, fn)
}

// OnModeChanged registers a callback fired when the session switches between
// Explore, Guided and Focus.
func (s *Session) OnModeChanged(fn func(m Mode)) CallbackHandle {
	return addHandler(&s.handlers, &s.handlers.modeChanged, eventModeChanged, fn)
}

// OnClosed registers a callback fired once when the session closes.
func (s *Session) OnClosed(fn func()) CallbackHandle {
	return addHandler(&s.handlers, &s.handlers.closed, eventClosed, fn)
}

// Handlers run on a snapshot so a callback may remove itself.

func (s *Session) fireImageChanged(index int) {
	for _, h := range slices.Clone(s.handlers.imageChanged) {
		h.fn(index)
	}
}

func (s *Session) fireHotspotSelected(hs *Hotspot) {
	for _, h := range slices.Clone(s.handlers.hotspotSelected) {
		h.fn(hs)
	}
}

func (s *Session) fireHoverChanged(hs *Hotspot) {
	for _, h := range slices.Clone(s.handlers.hoverChanged) {
		h.fn(hs)
	}
}

func (s *Session) fireModeChanged(m Mode) {
	for _, h := range slices.Clone(s.handlers.modeChanged) {
		h.fn(m)
	}
}

func (s *Session) fireClosed() {
	for _, h := range slices.Clone(s.handlers.closed) {
		h.fn()
	}
}
