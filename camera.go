package pano

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	nearPlane = 0.01
	farPlane  = 100
)

// CameraConfig tunes the orbit camera. Angles are in degrees, distances in
// sphere-radius units.
type CameraConfig struct {
	// FOV is the vertical field of view.
	FOV float64 `yaml:"fov"`
	// MinPitch and MaxPitch bound how far the view may tilt down and up.
	MinPitch float64 `yaml:"min_pitch"`
	MaxPitch float64 `yaml:"max_pitch"`

	MinDistance     float64 `yaml:"min_distance"`
	MaxDistance     float64 `yaml:"max_distance"`
	DefaultDistance float64 `yaml:"default_distance"`

	// AutoRotateSpeed is the yaw rate in radians per second while
	// auto-rotation is on.
	AutoRotateSpeed float64 `yaml:"auto_rotate_speed"`
	// RotateSensitivity converts pointer drag pixels to radians.
	RotateSensitivity float64 `yaml:"rotate_sensitivity"`
	// ZoomSensitivity converts one wheel notch to a distance change.
	ZoomSensitivity float64 `yaml:"zoom_sensitivity"`
	// Damping is the fraction of pending drag rotation applied per tick; the
	// remainder decays by the same factor, so released drags coast to a stop.
	Damping float64 `yaml:"damping"`
	// ZoomFrequency is the angular frequency of the zoom spring. Higher
	// values settle faster.
	ZoomFrequency float64 `yaml:"zoom_frequency"`
	// FocusDuration is how long, in seconds, the camera takes to turn toward
	// a selected hotspot.
	FocusDuration float64 `yaml:"focus_duration"`
}

// DefaultCameraConfig returns the camera defaults.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		FOV:               75,
		MinPitch:          -89,
		MaxPitch:          89,
		MinDistance:       0.02,
		MaxDistance:       0.2,
		DefaultDistance:   0.05,
		AutoRotateSpeed:   0.1,
		RotateSensitivity: 0.005,
		ZoomSensitivity:   0.01,
		Damping:           0.05,
		ZoomFrequency:     6,
		FocusDuration:     0.6,
	}
}

// CameraState is a snapshot of the orbit camera. Yaw, Pitch and FOV are in
// radians. Yaw 0 looks down -Z; positive yaw turns right, positive pitch
// looks up. The eye sits Distance behind the scene center along the view
// direction.
type CameraState struct {
	Yaw             float64
	Pitch           float64
	Distance        float64
	FOV             float64
	AutoRotate      bool
	AutoRotateSpeed float64
}

// Forward returns the unit view direction.
func (s CameraState) Forward() mgl64.Vec3 {
	sy, cy := math.Sincos(s.Yaw)
	sp, cp := math.Sincos(s.Pitch)
	return mgl64.Vec3{sy * cp, sp, -cy * cp}
}

// Eye returns the camera position.
func (s CameraState) Eye() mgl64.Vec3 {
	return s.Forward().Mul(-s.Distance)
}

// Basis returns the camera's forward, right and up unit vectors.
func (s CameraState) Basis() (forward, right, up mgl64.Vec3) {
	forward = s.Forward()
	sy, cy := math.Sincos(s.Yaw)
	right = mgl64.Vec3{cy, 0, sy}
	up = right.Cross(forward)
	return forward, right, up
}

// ViewMatrix returns the world-to-camera transform.
func (s CameraState) ViewMatrix() mgl64.Mat4 {
	forward, _, up := s.Basis()
	eye := s.Eye()
	return mgl64.LookAtV(eye, eye.Add(forward), up)
}

// Projection returns the perspective projection for the given aspect ratio.
func (s CameraState) Projection(aspect float64) mgl64.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl64.Perspective(s.FOV, aspect, nearPlane, farPlane)
}

// ViewProjection returns Projection(aspect) * ViewMatrix().
func (s CameraState) ViewProjection(aspect float64) mgl64.Mat4 {
	return s.Projection(aspect).Mul4(s.ViewMatrix())
}

// focusAnim holds the active turn-toward-hotspot tweens.
type focusAnim struct {
	tweenYaw   *gween.Tween
	tweenPitch *gween.Tween
	doneYaw    bool
	donePitch  bool
}

// OrbitCamera owns the yaw/pitch/zoom state of the viewer and advances it
// once per tick. It is not safe for concurrent use.
type OrbitCamera struct {
	cfg CameraConfig

	yaw, pitch   float64
	minP, maxP   float64
	fov          float64
	autoRotate   bool
	dragging     bool
	pendingYaw   float64
	pendingPitch float64

	distance       float64
	targetDistance float64
	zoomVelocity   float64
	spring         harmonica.Spring
	springDT       float64

	focused bool
	focus   *focusAnim
}

// NewOrbitCamera creates a camera in its default orientation. Invalid
// configuration values fall back to the defaults.
func NewOrbitCamera(cfg CameraConfig) *OrbitCamera {
	cfg = cfg.withDefaults()
	c := &OrbitCamera{
		cfg:  cfg,
		fov:  mgl64.DegToRad(cfg.FOV),
		minP: mgl64.DegToRad(cfg.MinPitch),
		maxP: mgl64.DegToRad(cfg.MaxPitch),
	}
	c.Reset()
	return c
}

func (cfg CameraConfig) withDefaults() CameraConfig {
	def := DefaultCameraConfig()
	if cfg.FOV <= 0 || cfg.FOV >= 180 {
		cfg.FOV = def.FOV
	}
	if cfg.MinPitch == 0 && cfg.MaxPitch == 0 {
		cfg.MinPitch, cfg.MaxPitch = def.MinPitch, def.MaxPitch
	}
	cfg.MinPitch = clamp(cfg.MinPitch, -89.9, 89.9)
	cfg.MaxPitch = clamp(cfg.MaxPitch, cfg.MinPitch, 89.9)
	if cfg.MinDistance <= 0 && cfg.MaxDistance <= 0 {
		cfg.MinDistance, cfg.MaxDistance = def.MinDistance, def.MaxDistance
	}
	cfg.MinDistance = max(cfg.MinDistance, 0)
	cfg.MaxDistance = max(cfg.MaxDistance, cfg.MinDistance)
	if cfg.DefaultDistance == 0 {
		cfg.DefaultDistance = def.DefaultDistance
	}
	cfg.DefaultDistance = clamp(cfg.DefaultDistance, cfg.MinDistance, cfg.MaxDistance)
	if cfg.AutoRotateSpeed == 0 {
		cfg.AutoRotateSpeed = def.AutoRotateSpeed
	}
	if cfg.RotateSensitivity <= 0 {
		cfg.RotateSensitivity = def.RotateSensitivity
	}
	if cfg.ZoomSensitivity <= 0 {
		cfg.ZoomSensitivity = def.ZoomSensitivity
	}
	if cfg.Damping <= 0 || cfg.Damping > 1 {
		cfg.Damping = def.Damping
	}
	if cfg.ZoomFrequency <= 0 {
		cfg.ZoomFrequency = def.ZoomFrequency
	}
	if cfg.FocusDuration <= 0 {
		cfg.FocusDuration = def.FocusDuration
	}
	return cfg
}

// Config returns the effective configuration.
func (c *OrbitCamera) Config() CameraConfig {
	return c.cfg
}

// State returns a snapshot of the camera.
func (c *OrbitCamera) State() CameraState {
	return CameraState{
		Yaw:             c.yaw,
		Pitch:           c.pitch,
		Distance:        c.distance,
		FOV:             c.fov,
		AutoRotate:      c.autoRotate,
		AutoRotateSpeed: c.cfg.AutoRotateSpeed,
	}
}

// Reset returns the camera to yaw 0, pitch 0 and the default distance,
// discarding pending motion and any focus. Auto-rotation and an active drag
// gesture are left as is; the gesture ends with EndDrag.
func (c *OrbitCamera) Reset() {
	c.yaw, c.pitch = 0, 0
	c.pendingYaw, c.pendingPitch = 0, 0
	c.distance = c.cfg.DefaultDistance
	c.targetDistance = c.cfg.DefaultDistance
	c.zoomVelocity = 0
	c.focused = false
	c.focus = nil
}

// SetAutoRotate turns continuous yaw rotation on or off.
func (c *OrbitCamera) SetAutoRotate(on bool) {
	c.autoRotate = on
}

// AutoRotate reports whether auto-rotation is on.
func (c *OrbitCamera) AutoRotate() bool {
	return c.autoRotate
}

// Dragging reports whether a drag gesture is active.
func (c *OrbitCamera) Dragging() bool {
	return c.dragging
}

// BeginDrag starts a drag gesture. Auto-rotation pauses until EndDrag.
func (c *OrbitCamera) BeginDrag() {
	if c.focused {
		return
	}
	c.dragging = true
}

// Drag feeds a pointer movement in pixels. The scene follows the pointer:
// dragging right turns the view left, dragging down tilts it up.
func (c *OrbitCamera) Drag(dx, dy float64) {
	if c.focused {
		return
	}
	c.pendingYaw -= dx * c.cfg.RotateSensitivity
	c.pendingPitch += dy * c.cfg.RotateSensitivity
}

// EndDrag finishes the drag gesture. Pending rotation keeps coasting.
func (c *OrbitCamera) EndDrag() {
	c.dragging = false
}

// Zoom moves the zoom target by delta wheel notches; positive values move
// the eye toward the scene center. The target is clamped to the distance
// bounds.
func (c *OrbitCamera) Zoom(delta float64) {
	if c.focused {
		return
	}
	c.targetDistance = clamp(
		c.targetDistance-delta*c.cfg.ZoomSensitivity,
		c.cfg.MinDistance, c.cfg.MaxDistance,
	)
}

// ZoomScale scales the zoom target by 1/factor, as a pinch gesture does.
func (c *OrbitCamera) ZoomScale(factor float64) {
	if c.focused || factor <= 0 {
		return
	}
	c.targetDistance = clamp(c.targetDistance/factor, c.cfg.MinDistance, c.cfg.MaxDistance)
}

// FocusOn suspends free orbiting and eases the view toward dir over
// FocusDuration, taking the shorter way around.
func (c *OrbitCamera) FocusOn(dir mgl64.Vec3) {
	if dir.Len() == 0 {
		return
	}
	d := dir.Normalize()
	targetYaw := math.Atan2(d.X(), -d.Z())
	targetPitch := clamp(math.Asin(clamp(d.Y(), -1, 1)), c.minP, c.maxP)
	targetYaw = c.yaw + wrapAngle(targetYaw-c.yaw)

	dur := float32(c.cfg.FocusDuration)
	c.focused = true
	c.dragging = false
	c.pendingYaw, c.pendingPitch = 0, 0
	c.focus = &focusAnim{
		tweenYaw:   gween.New(float32(c.yaw), float32(targetYaw), dur, ease.OutCubic),
		tweenPitch: gween.New(float32(c.pitch), float32(targetPitch), dur, ease.OutCubic),
	}
}

// Unfocus resumes free orbiting from wherever the focus left the view.
func (c *OrbitCamera) Unfocus() {
	c.focused = false
	c.focus = nil
}

// Focusing reports whether the camera is held on a hotspot.
func (c *OrbitCamera) Focusing() bool {
	return c.focused
}

// Update advances the camera by one tick of dt seconds.
func (c *OrbitCamera) Update(dt float64) {
	if dt < 0 {
		dt = 0
	}

	if c.focused {
		c.updateFocus(float32(dt))
		return
	}

	if c.autoRotate && !c.dragging {
		c.yaw += c.cfg.AutoRotateSpeed * dt
	}

	damp := c.cfg.Damping
	c.yaw += c.pendingYaw * damp
	c.pitch += c.pendingPitch * damp
	c.pendingYaw *= 1 - damp
	c.pendingPitch *= 1 - damp
	if c.pitch <= c.minP || c.pitch >= c.maxP {
		c.pitch = clamp(c.pitch, c.minP, c.maxP)
		c.pendingPitch = 0
	}
	if math.Abs(c.pendingYaw) < 1e-9 {
		c.pendingYaw = 0
	}
	c.yaw = wrapAngle(c.yaw)

	c.updateZoom(dt)
}

func (c *OrbitCamera) updateFocus(dt float32) {
	f := c.focus
	if f == nil {
		return
	}
	if !f.doneYaw {
		v, done := f.tweenYaw.Update(dt)
		c.yaw = float64(v)
		f.doneYaw = done
	}
	if !f.donePitch {
		v, done := f.tweenPitch.Update(dt)
		c.pitch = clamp(float64(v), c.minP, c.maxP)
		f.donePitch = done
	}
	if f.doneYaw && f.donePitch {
		c.yaw = wrapAngle(c.yaw)
		c.focus = nil
	}
}

func (c *OrbitCamera) updateZoom(dt float64) {
	if dt == 0 {
		return
	}
	if c.springDT != dt {
		c.spring = harmonica.NewSpring(dt, c.cfg.ZoomFrequency, 1)
		c.springDT = dt
	}
	c.distance, c.zoomVelocity = c.spring.Update(c.distance, c.zoomVelocity, c.targetDistance)
	if c.distance <= c.cfg.MinDistance || c.distance >= c.cfg.MaxDistance {
		c.distance = clamp(c.distance, c.cfg.MinDistance, c.cfg.MaxDistance)
		c.zoomVelocity = 0
	}
}

// wrapAngle maps a to (-π, π].
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
