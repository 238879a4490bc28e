package pano

import (
	"errors"
	"fmt"
)

// ErrEmptyImageSet is returned by Open when the image list is empty. No
// session is produced.
var ErrEmptyImageSet = errors.New("pano: empty image set")

// ErrSessionClosed is returned by session operations that report errors
// once the session has been closed.
var ErrSessionClosed = errors.New("pano: session closed")

// LoadError reports a failed texture fetch or decode. It is contained to the
// image it belongs to: the viewer shows a placeholder for that image and
// stays open.
type LoadError struct {
	Source string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Source, e.Reason)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// asLoadError wraps err as a *LoadError unless it already is one.
func asLoadError(source, reason string, err error) *LoadError {
	var le *LoadError
	if errors.As(err, &le) {
		return le
	}
	return &LoadError{Source: source, Reason: reason, Err: err}
}
