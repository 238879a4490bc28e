package pano

import (
	"fmt"
	"strings"
)

// Key is a keyboard key the viewer reacts to.
type Key uint8

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyArrowLeft
	KeyArrowRight
	KeySpace
	KeyR
	keyCount
)

var keyNames = [...]string{
	KeyUnknown:    "unknown",
	KeyEscape:     "escape",
	KeyArrowLeft:  "left",
	KeyArrowRight: "right",
	KeySpace:      "space",
	KeyR:          "r",
}

func (k Key) String() string {
	if k < keyCount {
		return keyNames[k]
	}
	return fmt.Sprintf("Key(%d)", uint8(k))
}

// ParseKey maps a key name ("escape", "left", "right", "space", "r") to its
// Key. "esc", "arrowleft" and "arrowright" are accepted as aliases.
func ParseKey(name string) (Key, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "escape", "esc":
		return KeyEscape, nil
	case "left", "arrowleft":
		return KeyArrowLeft, nil
	case "right", "arrowright":
		return KeyArrowRight, nil
	case "space", " ":
		return KeySpace, nil
	case "r":
		return KeyR, nil
	}
	return KeyUnknown, fmt.Errorf("unknown key %q", name)
}

// Action is what a key press does to the session.
type Action uint8

const (
	ActionNone Action = iota
	ActionClose
	ActionPrev
	ActionNext
	ActionToggleAutoRotate
	ActionResetView
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionClose:
		return "close"
	case ActionPrev:
		return "prev"
	case ActionNext:
		return "next"
	case ActionToggleAutoRotate:
		return "toggle-auto-rotate"
	case ActionResetView:
		return "reset-view"
	default:
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
}

// keyBindings is fixed; the viewer does not support remapping.
var keyBindings = [keyCount]Action{
	KeyEscape:     ActionClose,
	KeyArrowLeft:  ActionPrev,
	KeyArrowRight: ActionNext,
	KeySpace:      ActionToggleAutoRotate,
	KeyR:          ActionResetView,
}

// ActionFor returns the action bound to k.
func ActionFor(k Key) Action {
	if k < keyCount {
		return keyBindings[k]
	}
	return ActionNone
}

// KeyTracker turns per-tick snapshots of held keys into key-down edges, so
// holding a key acts once.
type KeyTracker struct {
	held [keyCount]bool
}

// Update records the keys held this tick and returns, in the order given,
// those that were not held on the previous tick.
func (t *KeyTracker) Update(held []Key) []Key {
	var now [keyCount]bool
	var pressed []Key
	for _, k := range held {
		if k == KeyUnknown || k >= keyCount || now[k] {
			continue
		}
		now[k] = true
		if !t.held[k] {
			pressed = append(pressed, k)
		}
	}
	t.held = now
	return pressed
}

// Reset forgets every held key.
func (t *KeyTracker) Reset() {
	t.held = [keyCount]bool{}
}
