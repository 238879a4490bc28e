package pano

import (
	"encoding/json"
	"fmt"
)

// scriptStep is a single action in a session script.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
	Delta  float64 `json:"delta,omitempty"`
	Key    string  `json:"key,omitempty"`
	Index  int     `json:"index,omitempty"`
	Mode   string  `json:"mode,omitempty"`
}

// script is the top-level JSON structure for a session script.
type script struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner plays a JSON script of input and navigation steps against a
// session, one step per tick, for automated and visual testing. Attach it
// with Session.SetScript.
//
//	{"steps": [
//	  {"action": "click", "x": 640, "y": 360},
//	  {"action": "wait", "frames": 30},
//	  {"action": "screenshot", "label": "selected"}
//	]}
//
// Actions: click, drag, hover, wheel, key, navigate, mode, dismiss, reset,
// wait, screenshot, close.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses and checks a JSON session script.
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var sc script
	if err := json.Unmarshal(jsonData, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range sc.Steps {
		if err := st.check(); err != nil {
			return nil, fmt.Errorf("parse script: step %d: %w", i, err)
		}
	}
	return &ScriptRunner{steps: sc.Steps}, nil
}

func (st scriptStep) check() error {
	switch st.Action {
	case "click", "drag", "hover", "wheel", "navigate", "dismiss", "reset", "wait", "screenshot", "close":
		return nil
	case "key":
		_, err := ParseKey(st.Key)
		return err
	case "mode":
		_, err := parseOpenMode(st.Mode)
		return err
	}
	return fmt.Errorf("unknown action %q", st.Action)
}

func parseOpenMode(s string) (Mode, error) {
	switch s {
	case "explore":
		return ModeExplore, nil
	case "guided":
		return ModeGuided, nil
	}
	return ModeExplore, fmt.Errorf("unknown mode %q", s)
}

// SetScript attaches runner to the session. Its steps run from Update before
// injected input is processed. A nil runner detaches the current one.
func (s *Session) SetScript(runner *ScriptRunner) error {
	if s.state == StateClosed {
		return ErrSessionClosed
	}
	s.runner = runner
	return nil
}

// Done reports whether every step has run.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// step advances the runner by one tick.
func (r *ScriptRunner) step(s *Session) {
	if r.done {
		return
	}
	// Let queued injections drain before moving on.
	if len(s.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "click":
		s.InjectClick(st.X, st.Y)
	case "drag":
		s.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
	case "hover":
		s.InjectHover(st.X, st.Y)
	case "wheel":
		s.InjectWheel(st.Delta)
	case "key":
		k, _ := ParseKey(st.Key)
		s.InjectKey(k)
	case "navigate":
		s.Navigate(st.Index)
	case "mode":
		m, _ := parseOpenMode(st.Mode)
		s.SetMode(m)
	case "dismiss":
		s.Dismiss()
	case "reset":
		s.ResetView()
	case "screenshot":
		s.RequestScreenshot(st.Label)
	case "close":
		s.Close()
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this tick counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(s.injectQueue) == 0 {
		r.done = true
	}
}
