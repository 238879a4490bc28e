package pano

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MinLonSegments and MinLatSegments are the lowest tessellation that keeps
	// straight architectural lines from visibly faceting.
	MinLonSegments = 48
	MinLatSegments = 32

	DefaultLonSegments = 64
	DefaultLatSegments = 48

	// maxSegments keeps the vertex count addressable by uint16 indices.
	maxSegments = 180
)

// SphereVertex is one vertex of the panorama sphere.
type SphereVertex struct {
	Pos  mgl64.Vec3
	U, V float64
}

// SphereMesh is an inward-facing UV sphere centered on the origin.
//
// Orientation: +Y is up, the default view direction (yaw 0, pitch 0) is -Z
// and positive yaw turns toward +X. Texture coordinates follow the viewer,
// not the outside of the sphere:
//
//	u = 0.5 + longitude/2π   (longitude 0 straight ahead, growing to the right)
//	v = latitude/π           (0 at the zenith, 1 at the nadir)
//
// so the center column of an equirectangular photo faces the default view and
// the photo reads left-to-right as the view turns right. This is the
// horizontal mirror of a conventional outward-facing UV sphere and is applied
// here once; nothing downstream flips the texture again. The seam sits
// directly behind the default view.
//
// Triangles wind counter-clockwise when seen from the center.
type SphereMesh struct {
	Radius      float64
	LonSegments int
	LatSegments int
	Vertices    []SphereVertex
	Indices     []uint16
}

// BuildSphere tessellates a sphere of the given radius. Segment counts below
// MinLonSegments x MinLatSegments are raised to the minimum. A non-positive
// radius yields the unit sphere.
func BuildSphere(radius float64, lonSegments, latSegments int) *SphereMesh {
	if radius <= 0 {
		radius = 1
	}
	lonSegments = clampInt(lonSegments, MinLonSegments, maxSegments)
	latSegments = clampInt(latSegments, MinLatSegments, maxSegments)

	m := &SphereMesh{
		Radius:      radius,
		LonSegments: lonSegments,
		LatSegments: latSegments,
		Vertices:    make([]SphereVertex, 0, (lonSegments+1)*(latSegments+1)),
		Indices:     make([]uint16, 0, lonSegments*(latSegments-1)*6),
	}

	for i := 0; i <= latSegments; i++ {
		v := float64(i) / float64(latSegments)
		for j := 0; j <= lonSegments; j++ {
			u := float64(j) / float64(lonSegments)
			m.Vertices = append(m.Vertices, SphereVertex{
				Pos: UVToDirection(u, v).Mul(radius),
				U:   u,
				V:   v,
			})
		}
	}

	stride := lonSegments + 1
	for i := 0; i < latSegments; i++ {
		for j := 0; j < lonSegments; j++ {
			cur := uint16(i*stride + j)
			next := cur + uint16(stride)
			// The first and last rings collapse to a pole; skip the
			// zero-area triangle there.
			if i != 0 {
				m.Indices = append(m.Indices, cur, next, cur+1)
			}
			if i != latSegments-1 {
				m.Indices = append(m.Indices, cur+1, next, next+1)
			}
		}
	}
	return m
}

// TriangleCount returns the number of triangles in the mesh.
func (m *SphereMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// UVToDirection returns the unit view direction that samples texture
// coordinate (u, v). See SphereMesh for the convention.
func UVToDirection(u, v float64) mgl64.Vec3 {
	lon := (u - 0.5) * 2 * math.Pi
	lat := v * math.Pi
	sinLat := math.Sin(lat)
	return mgl64.Vec3{
		sinLat * math.Sin(lon),
		math.Cos(lat),
		-sinLat * math.Cos(lon),
	}
}

// DirectionToUV returns the texture coordinate seen along dir. The zero
// vector maps to the center of the image.
func DirectionToUV(dir mgl64.Vec3) (u, v float64) {
	l := dir.Len()
	if l == 0 {
		return 0.5, 0.5
	}
	d := dir.Mul(1 / l)
	lon := math.Atan2(d.X(), -d.Z())
	lat := math.Acos(clamp(d.Y(), -1, 1))
	return 0.5 + lon/(2*math.Pi), lat / math.Pi
}

// TextureState describes what the scene currently shows.
type TextureState uint8

const (
	TextureEmpty   TextureState = iota // nothing requested yet
	TextureLoading                     // waiting on the loader; placeholder shown
	TextureReady                       // photo applied
	TextureFailed                      // load failed; placeholder shown
)

func (s TextureState) String() string {
	switch s {
	case TextureEmpty:
		return "empty"
	case TextureLoading:
		return "loading"
	case TextureReady:
		return "ready"
	case TextureFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Scene is the panorama sphere plus the texture currently wrapped around it.
// Swapping textures never rebuilds the geometry.
type Scene struct {
	mesh    *SphereMesh
	texture *Texture
	state   TextureState
	source  string
	err     *LoadError
	version uint64
}

// BuildScene builds the sphere geometry for a new scene. The scene starts
// empty with the placeholder texture.
func BuildScene(radius float64, lonSegments, latSegments int) *Scene {
	return &Scene{
		mesh:    BuildSphere(radius, lonSegments, latSegments),
		texture: placeholderTexture(),
	}
}

// Mesh returns the sphere geometry.
func (s *Scene) Mesh() *SphereMesh {
	return s.mesh
}

// SetTexture wraps tex around the sphere.
func (s *Scene) SetTexture(tex *Texture) {
	if tex == nil {
		s.Clear()
		return
	}
	s.texture = tex
	s.source = tex.Source
	s.state = TextureReady
	s.err = nil
	s.version++
}

// SetLoading shows the placeholder while source is being fetched.
func (s *Scene) SetLoading(source string) {
	s.texture = placeholderTexture()
	s.source = source
	s.state = TextureLoading
	s.err = nil
	s.version++
}

// SetFailed shows the placeholder and records why the photo is missing.
func (s *Scene) SetFailed(err *LoadError) {
	s.texture = placeholderTexture()
	if err != nil {
		s.source = err.Source
	}
	s.state = TextureFailed
	s.err = err
	s.version++
}

// Clear drops the current texture, returning the scene to its empty state.
func (s *Scene) Clear() {
	s.texture = placeholderTexture()
	s.source = ""
	s.state = TextureEmpty
	s.err = nil
	s.version++
}

// Texture returns the texture to draw: the photo when ready, otherwise the
// placeholder grid.
func (s *Scene) Texture() *Texture {
	return s.texture
}

// TextureState reports what the scene currently shows.
func (s *Scene) TextureState() TextureState {
	return s.state
}

// Source returns the image source the scene shows or is waiting for.
func (s *Scene) Source() string {
	return s.source
}

// Err returns the load failure when TextureState is TextureFailed.
func (s *Scene) Err() error {
	if s.err == nil {
		return nil
	}
	return s.err
}

// Version increments on every texture change. Renderers compare it to decide
// when to re-upload.
func (s *Scene) Version() uint64 {
	return s.version
}

const (
	placeholderW = 256
	placeholderH = 128
)

// placeholderTexture returns a shared dark equirectangular grid, one line
// every 30 degrees, drawn while a photo is loading or after it failed.
var placeholderTexture = sync.OnceValue(func() *Texture {
	img := image.NewNRGBA(image.Rect(0, 0, placeholderW, placeholderH))
	bg := color.NRGBA{R: 24, G: 24, B: 28, A: 255}
	line := color.NRGBA{R: 70, G: 70, B: 78, A: 255}
	for y := 0; y < placeholderH; y++ {
		for x := 0; x < placeholderW; x++ {
			c := bg
			if x%(placeholderW/12) == 0 || y%(placeholderH/6) == 0 {
				c = line
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return &Texture{Source: "", Image: img}
})

// IsPlaceholder reports whether tex is the shared placeholder grid.
func IsPlaceholder(tex *Texture) bool {
	return tex != nil && tex == placeholderTexture()
}
