package pano

import (
	"fmt"
	"image/color"
	"strings"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// RGBA converts the color to a premultiplied color.RGBA for image/draw and
// rendering backends.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A)*255 + 0.5),
		G: uint8(clamp01(c.G*c.A)*255 + 0.5),
		B: uint8(clamp01(c.B*c.A)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

// hexColor parses "#rrggbb" into an opaque Color. Invalid input yields white.
func hexColor(s string) Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return ColorWhite
	}
	return Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: 1}
}

// Viewport is the screen-space rectangle the panorama is rendered into, in
// pixels. The origin is the top-left corner with Y increasing downward.
type Viewport struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the viewport.
// Points on the edge are considered inside.
func (v Viewport) Contains(x, y float64) bool {
	return x >= v.X && x <= v.X+v.Width &&
		y >= v.Y && y <= v.Y+v.Height
}

// Aspect returns width / height, or 1 for a degenerate viewport.
func (v Viewport) Aspect() float64 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	return v.Width / v.Height
}

// ToNDC converts pixel coordinates to normalized device coordinates in
// [-1, 1], with +Y pointing up.
func (v Viewport) ToNDC(px, py float64) (nx, ny float64) {
	if v.Width <= 0 || v.Height <= 0 {
		return 0, 0
	}
	nx = (px-v.X)/v.Width*2 - 1
	ny = 1 - (py-v.Y)/v.Height*2
	return nx, ny
}

// FromNDC converts normalized device coordinates back to pixels.
func (v Viewport) FromNDC(nx, ny float64) (px, py float64) {
	px = v.X + (nx+1)/2*v.Width
	py = v.Y + (1-ny)/2*v.Height
	return px, py
}

// Mode is an externally selectable viewing mode of an open session.
type Mode uint8

const (
	ModeExplore Mode = iota // user-controlled orbit, no forced rotation
	ModeGuided              // forced auto-rotation, paused while dragging
	ModeFocus               // camera eased toward the selected hotspot
)

func (m Mode) String() string {
	switch m {
	case ModeExplore:
		return "explore"
	case ModeGuided:
		return "guided"
	case ModeFocus:
		return "focus"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// State is the viewer state machine's state. The three open states mirror
// the Mode values; StateClosed means no session is active.
type State uint8

const (
	StateClosed State = iota
	StateExplore
	StateGuided
	StateFocus
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateExplore:
		return "explore"
	case StateGuided:
		return "guided"
	case StateFocus:
		return "focus"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

func stateFor(m Mode) State {
	switch m {
	case ModeGuided:
		return StateGuided
	case ModeFocus:
		return StateFocus
	default:
		return StateExplore
	}
}

// Category tags a hotspot with the kind of point of interest it marks.
type Category uint8

const (
	CategoryOther Category = iota
	CategoryPrayerHall
	CategoryAltar
	CategoryMeditation
	CategoryArchitecture
	CategoryArtifact
	CategoryView
)

var categoryNames = [...]string{
	CategoryOther:        "other",
	CategoryPrayerHall:   "prayer_hall",
	CategoryAltar:        "altar",
	CategoryMeditation:   "meditation",
	CategoryArchitecture: "architecture",
	CategoryArtifact:     "artifact",
	CategoryView:         "view",
}

// Marker colors per category. Unknown categories use the prayer hall orange.
var categoryColors = [...]Color{
	CategoryOther:        hexColor("#ff6b35"),
	CategoryPrayerHall:   hexColor("#ff6b35"),
	CategoryAltar:        hexColor("#f7931e"),
	CategoryMeditation:   hexColor("#4ecdc4"),
	CategoryArchitecture: hexColor("#45b7d1"),
	CategoryArtifact:     hexColor("#96ceb4"),
	CategoryView:         hexColor("#f59e0b"),
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// Color returns the marker color used for hotspots of this category.
func (c Category) Color() Color {
	if int(c) < len(categoryColors) {
		return categoryColors[c]
	}
	return categoryColors[CategoryOther]
}

// ParseCategory maps a category name ("prayer_hall", "altar", ...) to its
// Category. Matching is case-insensitive; dashes and spaces are accepted in
// place of underscores.
func ParseCategory(s string) (Category, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	if norm == "" {
		return CategoryOther, nil
	}
	for i, name := range categoryNames {
		if name == norm {
			return Category(i), nil
		}
	}
	return CategoryOther, fmt.Errorf("unknown hotspot category %q", s)
}

// MarshalText implements encoding.TextMarshaler (used by YAML and JSON).
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
