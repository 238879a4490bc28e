package pano

import (
	"errors"
	"image"
	"math"
	"sync"
	"testing"
)

func TestBuildSphereSegments(t *testing.T) {
	tests := []struct {
		name             string
		lon, lat         int
		wantLon, wantLat int
	}{
		{"raised to minimum", 8, 4, MinLonSegments, MinLatSegments},
		{"defaults", DefaultLonSegments, DefaultLatSegments, DefaultLonSegments, DefaultLatSegments},
		{"capped", 1000, 1000, maxSegments, maxSegments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := BuildSphere(1, tt.lon, tt.lat)
			if m.LonSegments != tt.wantLon || m.LatSegments != tt.wantLat {
				t.Fatalf("segments = %dx%d, want %dx%d", m.LonSegments, m.LatSegments, tt.wantLon, tt.wantLat)
			}
			if got, want := len(m.Vertices), (tt.wantLon+1)*(tt.wantLat+1); got != want {
				t.Errorf("vertices = %d, want %d", got, want)
			}
			if got, want := m.TriangleCount(), tt.wantLon*(2*tt.wantLat-2); got != want {
				t.Errorf("triangles = %d, want %d", got, want)
			}
			for _, idx := range m.Indices {
				if int(idx) >= len(m.Vertices) {
					t.Fatalf("index %d out of range", idx)
				}
			}
		})
	}
}

func TestBuildSphereRadius(t *testing.T) {
	m := BuildSphere(2.5, 0, 0)
	for i, v := range m.Vertices {
		if !approxEqual(v.Pos.Len(), 2.5, 1e-9) {
			t.Fatalf("vertex %d at distance %v, want 2.5", i, v.Pos.Len())
		}
	}
	if BuildSphere(-1, 0, 0).Radius != 1 {
		t.Error("non-positive radius should fall back to 1")
	}
}

func TestBuildSphereFacesInward(t *testing.T) {
	m := BuildSphere(1, 0, 0)
	for i := 0; i < len(m.Indices); i += 3 {
		a := m.Vertices[m.Indices[i]].Pos
		b := m.Vertices[m.Indices[i+1]].Pos
		c := m.Vertices[m.Indices[i+2]].Pos
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Len() < 1e-12 {
			t.Fatalf("triangle %d is degenerate", i/3)
		}
		centroid := a.Add(b).Add(c).Mul(1.0 / 3)
		if n.Dot(centroid) >= 0 {
			t.Fatalf("triangle %d faces outward", i/3)
		}
	}
}

func TestUVConvention(t *testing.T) {
	tests := []struct {
		name  string
		yaw   float64
		pitch float64
		u, v  float64
	}{
		{"default view sees image center", 0, 0, 0.5, 0.5},
		{"turning right moves right in the image", math.Pi / 2, 0, 0.75, 0.5},
		{"turning left moves left in the image", -math.Pi / 2, 0, 0.25, 0.5},
		{"looking up moves toward the top row", 0, math.Pi / 4, 0.5, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := CameraState{Yaw: tt.yaw, Pitch: tt.pitch}.Forward()
			u, v := DirectionToUV(dir)
			if !approxEqual(u, tt.u, 1e-9) || !approxEqual(v, tt.v, 1e-9) {
				t.Errorf("uv = (%v, %v), want (%v, %v)", u, v, tt.u, tt.v)
			}
		})
	}
}

func TestUVRoundTrip(t *testing.T) {
	for _, uv := range [][2]float64{{0.1, 0.2}, {0.5, 0.5}, {0.9, 0.7}, {0.33, 0.05}} {
		u, v := DirectionToUV(UVToDirection(uv[0], uv[1]))
		if !approxEqual(u, uv[0], 1e-9) || !approxEqual(v, uv[1], 1e-9) {
			t.Errorf("round trip of %v = (%v, %v)", uv, u, v)
		}
	}
}

func TestSphereVerticesMatchUV(t *testing.T) {
	m := BuildSphere(1, 0, 0)
	for i, vert := range m.Vertices {
		if vert.V == 0 || vert.V == 1 || vert.U == 0 || vert.U == 1 {
			continue // poles and seam are ambiguous
		}
		u, v := DirectionToUV(vert.Pos)
		if !approxEqual(u, vert.U, 1e-9) || !approxEqual(v, vert.V, 1e-9) {
			t.Fatalf("vertex %d has uv (%v, %v) but sits at (%v, %v)", i, vert.U, vert.V, u, v)
		}
	}
}

func TestSceneTextureStates(t *testing.T) {
	sc := BuildScene(1, 0, 0)
	mesh := sc.Mesh()

	if sc.TextureState() != TextureEmpty || !IsPlaceholder(sc.Texture()) {
		t.Fatalf("new scene: state %v, placeholder %v", sc.TextureState(), IsPlaceholder(sc.Texture()))
	}

	v := sc.Version()
	sc.SetLoading("a.jpg")
	if sc.TextureState() != TextureLoading || sc.Source() != "a.jpg" || sc.Version() == v {
		t.Errorf("after SetLoading: state %v source %q", sc.TextureState(), sc.Source())
	}

	tex := &Texture{Source: "a.jpg", Image: image.NewNRGBA(image.Rect(0, 0, 4, 2))}
	sc.SetTexture(tex)
	if sc.TextureState() != TextureReady || sc.Texture() != tex || sc.Err() != nil {
		t.Errorf("after SetTexture: state %v", sc.TextureState())
	}

	le := &LoadError{Source: "b.jpg", Reason: "fetch", Err: errors.New("boom")}
	sc.SetFailed(le)
	if sc.TextureState() != TextureFailed || !IsPlaceholder(sc.Texture()) {
		t.Errorf("after SetFailed: state %v", sc.TextureState())
	}
	var got *LoadError
	if !errors.As(sc.Err(), &got) || got.Source != "b.jpg" {
		t.Errorf("Err() = %v, want the LoadError", sc.Err())
	}

	sc.Clear()
	if sc.TextureState() != TextureEmpty || sc.Err() != nil || sc.Source() != "" {
		t.Errorf("after Clear: state %v err %v", sc.TextureState(), sc.Err())
	}

	if sc.Mesh() != mesh {
		t.Error("texture swaps must not rebuild the geometry")
	}
}

func TestPlaceholderSharedAcrossGoroutines(t *testing.T) {
	const n = 4
	textures := make([]*Texture, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			textures[i] = BuildScene(1, MinLonSegments, MinLatSegments).Texture()
		}()
	}
	wg.Wait()

	for i, tex := range textures {
		if tex != textures[0] || !IsPlaceholder(tex) {
			t.Errorf("scene %d got a different placeholder", i)
		}
	}
}
