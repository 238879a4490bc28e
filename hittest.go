package pano

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a half-line starting at Origin. Dir is unit length.
type Ray struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// HitConfig sizes hotspot hit volumes.
type HitConfig struct {
	// Radius is the bounding-sphere radius around each hotspot, in scene
	// units.
	Radius float64 `yaml:"radius"`
	// MinScreenRadius is the smallest on-screen radius, in pixels, a hit
	// volume may shrink to. Distant hotspots stay comfortably tappable.
	MinScreenRadius float64 `yaml:"min_screen_radius"`
	// HoverRadius is the screen-space distance, in pixels, within which the
	// pointer highlights a hotspot.
	HoverRadius float64 `yaml:"hover_radius"`
}

// DefaultHitConfig returns the hit-testing defaults.
func DefaultHitConfig() HitConfig {
	return HitConfig{Radius: 0.04, MinScreenRadius: 22, HoverRadius: 28}
}

func (cfg HitConfig) withDefaults() HitConfig {
	def := DefaultHitConfig()
	if cfg.Radius <= 0 {
		cfg.Radius = def.Radius
	}
	if cfg.MinScreenRadius < 0 {
		cfg.MinScreenRadius = 0
	}
	if cfg.HoverRadius <= 0 {
		cfg.HoverRadius = def.HoverRadius
	}
	return cfg
}

// Hit is a hit-test result.
type Hit struct {
	Index   int      // position in the hotspot slice
	Hotspot *Hotspot // points into the slice that was tested
	T       float64  // ray parameter of the entry point
}

// PointerRay builds the ray from the camera eye through pixel (px, py) of
// the viewport.
func PointerRay(state CameraState, vp Viewport, px, py float64) Ray {
	nx, ny := vp.ToNDC(px, py)
	forward, right, up := state.Basis()
	tanHalf := math.Tan(state.FOV / 2)
	dir := forward.
		Add(right.Mul(nx * tanHalf * vp.Aspect())).
		Add(up.Mul(ny * tanHalf))
	return Ray{Origin: state.Eye(), Dir: dir.Normalize()}
}

// Project maps the scene point p to viewport pixels. depth is the distance
// in front of the eye along the view direction; ok is false when the point
// is behind the near plane. Points outside the viewport still project.
func Project(state CameraState, vp Viewport, p mgl64.Vec3) (px, py, depth float64, ok bool) {
	forward, right, up := state.Basis()
	d := p.Sub(state.Eye())
	depth = d.Dot(forward)
	if depth <= nearPlane {
		return 0, 0, depth, false
	}
	tanHalf := math.Tan(state.FOV / 2)
	nx := d.Dot(right) / (depth * tanHalf * vp.Aspect())
	ny := d.Dot(up) / (depth * tanHalf)
	px, py = vp.FromNDC(nx, ny)
	return px, py, depth, true
}

// pixelsPerUnit returns how many pixels one scene unit spans at depth.
func pixelsPerUnit(state CameraState, vp Viewport, depth float64) float64 {
	return vp.Height / 2 / (depth * math.Tan(state.FOV/2))
}

// effectiveRadius grows cfg.Radius so its projection at depth covers at least
// cfg.MinScreenRadius pixels.
func effectiveRadius(state CameraState, vp Viewport, depth float64, cfg HitConfig) float64 {
	if cfg.MinScreenRadius <= 0 || depth <= 0 || vp.Height <= 0 {
		return cfg.Radius
	}
	return max(cfg.Radius, cfg.MinScreenRadius/pixelsPerUnit(state, vp, depth))
}

// HitTest casts a ray through pixel (px, py) and returns the hotspot whose
// bounding sphere it enters first. When several spheres are crossed the
// smallest ray parameter wins, whatever their order in the slice. Pointers
// outside the viewport never hit.
func HitTest(px, py float64, state CameraState, vp Viewport, hotspots []Hotspot, cfg HitConfig) (Hit, bool) {
	if len(hotspots) == 0 || !vp.Contains(px, py) {
		return Hit{}, false
	}
	cfg = cfg.withDefaults()
	ray := PointerRay(state, vp, px, py)
	forward := state.Forward()

	best := Hit{Index: -1, T: math.Inf(1)}
	for i := range hotspots {
		center := hotspots[i].Position
		depth := center.Sub(ray.Origin).Dot(forward)
		if depth <= nearPlane {
			continue
		}
		t, ok := intersectSphere(ray, center, effectiveRadius(state, vp, depth, cfg))
		if ok && t < best.T {
			best = Hit{Index: i, Hotspot: &hotspots[i], T: t}
		}
	}
	if best.Index < 0 {
		return Hit{}, false
	}
	return best, true
}

// intersectSphere returns the smallest positive ray parameter at which ray
// meets the sphere. A ray starting inside the sphere reports its exit point.
func intersectSphere(ray Ray, center mgl64.Vec3, radius float64) (float64, bool) {
	oc := ray.Origin.Sub(center)
	b := oc.Dot(ray.Dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	if t := -b - sq; t > 0 {
		return t, true
	}
	if t := -b + sq; t > 0 {
		return t, true
	}
	return 0, false
}

// HoverTest returns the index of the hotspot whose projected position lies
// closest to pixel (px, py) within cfg.HoverRadius. It only drives
// highlighting; selection always goes through HitTest.
func HoverTest(px, py float64, state CameraState, vp Viewport, hotspots []Hotspot, cfg HitConfig) (int, bool) {
	if len(hotspots) == 0 || !vp.Contains(px, py) {
		return -1, false
	}
	cfg = cfg.withDefaults()
	limit := cfg.HoverRadius * cfg.HoverRadius
	best, bestD := -1, math.Inf(1)
	for i := range hotspots {
		sx, sy, _, ok := Project(state, vp, hotspots[i].Position)
		if !ok {
			continue
		}
		dx, dy := sx-px, sy-py
		d := dx*dx + dy*dy
		if d <= limit && d < bestD {
			best, bestD = i, d
		}
	}
	return best, best >= 0
}
