package pano

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const tick = 1.0 / 60

func TestCameraDefaults(t *testing.T) {
	c := NewOrbitCamera(DefaultCameraConfig())
	st := c.State()
	if st.Yaw != 0 || st.Pitch != 0 {
		t.Errorf("orientation = (%v, %v), want (0, 0)", st.Yaw, st.Pitch)
	}
	if st.Distance != 0.05 {
		t.Errorf("Distance = %v, want 0.05", st.Distance)
	}
	if !approxEqual(st.FOV, mgl64.DegToRad(75), 1e-12) {
		t.Errorf("FOV = %v, want 75°", st.FOV)
	}
	if st.AutoRotate {
		t.Error("auto-rotate should start off")
	}
}

func TestCameraForwardAndBasis(t *testing.T) {
	tests := []struct {
		name       string
		yaw, pitch float64
		want       mgl64.Vec3
	}{
		{"default looks down -Z", 0, 0, vec(0, 0, -1)},
		{"positive yaw turns right", math.Pi / 2, 0, vec(1, 0, 0)},
		{"half turn looks down +Z", math.Pi, 0, vec(0, 0, 1)},
		{"positive pitch looks up", 0, math.Pi / 4, vec(0, math.Sqrt2/2, -math.Sqrt2/2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := CameraState{Yaw: tt.yaw, Pitch: tt.pitch}
			f, r, u := st.Basis()
			if !f.ApproxEqualThreshold(tt.want, 1e-9) {
				t.Errorf("forward = %v, want %v", f, tt.want)
			}
			if !approxEqual(f.Dot(r), 0, 1e-9) || !approxEqual(f.Dot(u), 0, 1e-9) || !approxEqual(r.Dot(u), 0, 1e-9) {
				t.Errorf("basis not orthogonal: f=%v r=%v u=%v", f, r, u)
			}
			if u.Y() <= 0 {
				t.Errorf("up = %v, want positive Y", u)
			}
		})
	}
}

func TestCameraEyeBehindCenter(t *testing.T) {
	st := CameraState{Yaw: 0.3, Pitch: -0.2, Distance: 0.1}
	eye := st.Eye()
	if !approxEqual(eye.Len(), 0.1, 1e-12) {
		t.Errorf("|eye| = %v, want 0.1", eye.Len())
	}
	if eye.Dot(st.Forward()) >= 0 {
		t.Error("eye should sit behind the center along the view direction")
	}
}

func TestCameraAutoRotate(t *testing.T) {
	c := NewOrbitCamera(DefaultCameraConfig())
	c.SetAutoRotate(true)
	for i := 0; i < 60; i++ {
		c.Update(tick)
	}
	if got := c.State().Yaw; !approxEqual(got, 0.1, 1e-9) {
		t.Errorf("yaw after 1s = %v, want 0.1", got)
	}

	c.BeginDrag()
	before := c.State().Yaw
	c.Update(tick)
	if !approxEqual(c.State().Yaw, before, 1e-12) {
		t.Error("auto-rotation should pause while dragging")
	}
	c.EndDrag()
	c.Update(tick)
	if c.State().Yaw <= before {
		t.Error("auto-rotation should resume once the drag ends")
	}
}

func TestCameraDragDirectionAndDamping(t *testing.T) {
	cfg := DefaultCameraConfig()
	c := NewOrbitCamera(cfg)

	c.BeginDrag()
	c.Drag(100, 0)
	c.EndDrag()

	c.Update(tick)
	want := -100 * cfg.RotateSensitivity * cfg.Damping
	if got := c.State().Yaw; !approxEqual(got, want, 1e-12) {
		t.Fatalf("yaw after one tick = %v, want %v", got, want)
	}

	for i := 0; i < 600; i++ {
		c.Update(tick)
	}
	if got := c.State().Yaw; !approxEqual(got, -100*cfg.RotateSensitivity, 1e-6) {
		t.Errorf("yaw after coasting = %v, want %v", got, -100*cfg.RotateSensitivity)
	}

	c.Drag(0, 40)
	for i := 0; i < 600; i++ {
		c.Update(tick)
	}
	if c.State().Pitch <= 0 {
		t.Errorf("dragging down should tilt the view up, pitch = %v", c.State().Pitch)
	}
}

func TestCameraPitchClamp(t *testing.T) {
	bounds := [][2]float64{{-89, 89}, {-30, 60}, {-10, 10}, {0, 45}}
	rng := rand.New(rand.NewSource(1))

	for _, b := range bounds {
		cfg := DefaultCameraConfig()
		cfg.MinPitch, cfg.MaxPitch = b[0], b[1]
		c := NewOrbitCamera(cfg)
		lo, hi := mgl64.DegToRad(b[0]), mgl64.DegToRad(b[1])

		c.BeginDrag()
		for i := 0; i < 2000; i++ {
			c.Drag(rng.Float64()*400-200, rng.Float64()*4000-2000)
			c.Update(tick)
			if p := c.State().Pitch; p < lo-1e-12 || p > hi+1e-12 {
				t.Fatalf("bounds %v: pitch %v escaped [%v, %v] at step %d", b, p, lo, hi, i)
			}
		}
	}
}

func TestCameraZoomClamp(t *testing.T) {
	bounds := [][2]float64{{0.02, 0.2}, {0.05, 0.06}, {0, 0.5}}
	rng := rand.New(rand.NewSource(2))

	for _, b := range bounds {
		cfg := DefaultCameraConfig()
		cfg.MinDistance, cfg.MaxDistance = b[0], b[1]
		cfg.DefaultDistance = (b[0] + b[1]) / 2
		c := NewOrbitCamera(cfg)

		for i := 0; i < 2000; i++ {
			if rng.Intn(2) == 0 {
				c.Zoom(rng.Float64()*200 - 100)
			} else {
				c.ZoomScale(rng.Float64() * 4)
			}
			c.Update(tick)
			if d := c.State().Distance; d < b[0] || d > b[1] {
				t.Fatalf("bounds %v: distance %v escaped at step %d", b, d, i)
			}
		}
	}
}

func TestCameraZoomSettles(t *testing.T) {
	c := NewOrbitCamera(DefaultCameraConfig())
	c.Zoom(3) // 0.05 - 3*0.01 = 0.02
	for i := 0; i < 300; i++ {
		c.Update(tick)
	}
	if d := c.State().Distance; !approxEqual(d, 0.02, 1e-4) {
		t.Errorf("distance = %v, want ~0.02", d)
	}
}

func TestCameraReset(t *testing.T) {
	c := NewOrbitCamera(DefaultCameraConfig())
	fresh := c.State()

	c.SetAutoRotate(true)
	c.Drag(300, -120)
	c.Zoom(-5)
	for i := 0; i < 30; i++ {
		c.Update(tick)
	}
	c.Reset()

	st := c.State()
	if st.Yaw != fresh.Yaw || st.Pitch != fresh.Pitch || st.Distance != fresh.Distance {
		t.Errorf("after Reset state = %+v, want orientation of %+v", st, fresh)
	}
	c.SetAutoRotate(false)
	c.Update(tick)
	if got := c.State(); got.Yaw != 0 || got.Pitch != 0 || got.Distance != fresh.Distance {
		t.Errorf("pending motion survived Reset: %+v", got)
	}
}

func TestCameraFocusEasesToTarget(t *testing.T) {
	c := NewOrbitCamera(DefaultCameraConfig())
	c.FocusOn(vec(1, 0, 0))
	if !c.Focusing() {
		t.Fatal("expected Focusing after FocusOn")
	}

	c.Update(0.1)
	mid := c.State().Yaw
	if mid <= 0 || mid >= math.Pi/2 {
		t.Errorf("yaw mid-focus = %v, want between 0 and π/2", mid)
	}
	// Ease-out covers more than a linear share early on.
	if mid < (math.Pi/2)*(0.1/0.6) {
		t.Errorf("yaw mid-focus = %v, want ease-out ahead of linear", mid)
	}

	for i := 0; i < 10; i++ {
		c.Update(0.1)
	}
	if got := c.State().Yaw; !approxEqual(got, math.Pi/2, 1e-4) {
		t.Errorf("yaw after focus = %v, want π/2", got)
	}
}

func TestCameraFocusSuspendsInput(t *testing.T) {
	c := NewOrbitCamera(DefaultCameraConfig())
	c.SetAutoRotate(true)
	c.FocusOn(vec(0, 0, -1))
	for i := 0; i < 60; i++ {
		c.Drag(50, 50)
		c.Zoom(10)
		c.Update(tick)
	}
	st := c.State()
	if !approxEqual(st.Yaw, 0, 1e-6) || !approxEqual(st.Pitch, 0, 1e-6) {
		t.Errorf("focus should ignore drag and auto-rotate, got yaw=%v pitch=%v", st.Yaw, st.Pitch)
	}
	if st.Distance != 0.05 {
		t.Errorf("focus should ignore zoom, distance = %v", st.Distance)
	}

	c.Unfocus()
	c.Update(tick)
	if c.State().Yaw == st.Yaw {
		t.Error("auto-rotation should resume after Unfocus")
	}
}

func TestCameraFocusShortestArc(t *testing.T) {
	c := NewOrbitCamera(DefaultCameraConfig())
	from := mgl64.DegToRad(170)
	c.FocusOn(vec(math.Sin(from), 0, -math.Cos(from)))
	for i := 0; i < 60; i++ {
		c.Update(tick)
	}
	c.Unfocus()

	to := mgl64.DegToRad(-170)
	c.FocusOn(vec(math.Sin(to), 0, -math.Cos(to)))
	for i := 0; i < 60; i++ {
		c.Update(tick)
		// The short way passes behind the viewer, never through yaw 0.
		if math.Cos(c.State().Yaw) > math.Cos(from)+1e-4 {
			t.Fatalf("tick %d: yaw %v took the long way round", i, c.State().Yaw)
		}
	}
	if got := c.State().Yaw; !approxEqual(math.Cos(got), math.Cos(to), 1e-4) || !approxEqual(math.Sin(got), math.Sin(to), 1e-4) {
		t.Errorf("final yaw = %v, want %v", got, to)
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{5 * math.Pi, math.Pi},
	}
	for _, tt := range tests {
		if got := wrapAngle(tt.in); !approxEqual(got, tt.want, 1e-9) {
			t.Errorf("wrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCameraConfigFallbacks(t *testing.T) {
	c := NewOrbitCamera(CameraConfig{})
	if got, want := c.Config(), DefaultCameraConfig(); got != want {
		t.Errorf("zero config = %+v, want defaults %+v", got, want)
	}
}
