package pano

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Hotspot is a point of interest placed in the scene around the camera.
// Position uses the sphere's coordinate space; it may lie inside or outside
// the sphere radius.
type Hotspot struct {
	Position    mgl64.Vec3
	Title       string
	Description string
	Detail      string
	Category    Category
}

// Direction returns the unit direction from the scene center to the hotspot.
func (h *Hotspot) Direction() mgl64.Vec3 {
	if h.Position.Len() == 0 {
		return mgl64.Vec3{0, 0, -1}
	}
	return h.Position.Normalize()
}

// Registry holds the hotspot list of each image in the open set. It stores
// what it is given; keeping positions distinct within one image is the
// caller's job (see ValidateHotspots).
type Registry struct {
	byIndex map[int][]Hotspot
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byIndex: make(map[int][]Hotspot)}
}

// Set replaces the hotspots of image index with a copy of list. An empty
// list clears the index.
func (r *Registry) Set(index int, list []Hotspot) {
	if len(list) == 0 {
		delete(r.byIndex, index)
		return
	}
	cp := make([]Hotspot, len(list))
	copy(cp, list)
	r.byIndex[index] = cp
}

// Get returns the hotspots of image index. The slice is owned by the
// registry and must not be modified.
func (r *Registry) Get(index int) []Hotspot {
	return r.byIndex[index]
}

// Clear drops the hotspots of image index.
func (r *Registry) Clear(index int) {
	delete(r.byIndex, index)
}

// ClearAll drops every hotspot list.
func (r *Registry) ClearAll() {
	clear(r.byIndex)
}

// Len returns the number of hotspots registered for image index.
func (r *Registry) Len(index int) int {
	return len(r.byIndex[index])
}

// ErrDuplicatePosition is reported by ValidateHotspots when two hotspots of
// one image share a position.
var ErrDuplicatePosition = errors.New("duplicate hotspot position")

// ValidateHotspots checks a hotspot list before it is handed to Open or
// Registry.Set: every hotspot needs a title and a non-zero position, and no
// two hotspots may share a position.
func ValidateHotspots(list []Hotspot) error {
	seen := make(map[mgl64.Vec3]int, len(list))
	var errs []error
	for i, h := range list {
		if strings.TrimSpace(h.Title) == "" {
			errs = append(errs, fmt.Errorf("hotspot %d: title is required", i))
		}
		if h.Position.Len() == 0 {
			errs = append(errs, fmt.Errorf("hotspot %d (%s): position must not be the origin", i, h.Title))
		}
		if j, ok := seen[h.Position]; ok {
			errs = append(errs, fmt.Errorf("hotspot %d (%s) and %d: %w", i, h.Title, j, ErrDuplicatePosition))
			continue
		}
		seen[h.Position] = i
	}
	return errors.Join(errs...)
}

const (
	pulseFrequency = 3.0
	pulseAmplitude = 0.1
	hoverScale     = 1.2
	hoverEaseTime  = 0.15
)

// MarkerScale returns the marker size multiplier at elapsed seconds: a slow
// pulse of ±10%, enlarged by a fifth while hovered.
func MarkerScale(elapsed float64, hovered bool) float64 {
	s := 1 + math.Sin(elapsed*pulseFrequency)*pulseAmplitude
	if hovered {
		s *= hoverScale
	}
	return s
}

// markerAnim eases one marker's hover emphasis in and out so highlighted
// markers grow smoothly instead of popping.
type markerAnim struct {
	hovered  bool
	emphasis float32 // 0 = resting, 1 = fully hovered
	tween    *gween.Tween
}

func (m *markerAnim) setHovered(h bool) {
	if h == m.hovered {
		return
	}
	m.hovered = h
	target := float32(0)
	if h {
		target = 1
	}
	m.tween = gween.New(m.emphasis, target, hoverEaseTime, ease.OutQuad)
}

func (m *markerAnim) update(dt float32) {
	if m.tween == nil {
		return
	}
	v, done := m.tween.Update(dt)
	m.emphasis = v
	if done {
		m.tween = nil
	}
}

// scale combines the pulse with the eased hover emphasis.
func (m *markerAnim) scale(elapsed float64) float64 {
	pulse := MarkerScale(elapsed, false)
	return pulse * (1 + (hoverScale-1)*float64(m.emphasis))
}
