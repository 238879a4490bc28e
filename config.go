package pano

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// SphereConfig sizes the panorama sphere.
type SphereConfig struct {
	Radius      float64 `yaml:"radius"`
	LonSegments int     `yaml:"lon_segments"`
	LatSegments int     `yaml:"lat_segments"`
}

// Config holds every tunable of a viewer session.
type Config struct {
	Camera CameraConfig `yaml:"camera"`
	Hit    HitConfig    `yaml:"hit"`
	Sphere SphereConfig `yaml:"sphere"`
	Loader LoaderConfig `yaml:"loader"`

	// DragDeadZone is the pointer travel, in pixels, before a press turns
	// into a drag instead of a click.
	DragDeadZone float64 `yaml:"drag_dead_zone"`

	// Debug enables per-frame statistics and verbose session logging.
	Debug bool `yaml:"debug"`

	// LogOutput receives session log lines. Nil means os.Stderr.
	LogOutput io.Writer `yaml:"-"`
	// NewID generates session identifiers. Nil means random UUIDs.
	NewID func() string `yaml:"-"`
}

// DefaultConfig returns the viewer defaults.
func DefaultConfig() Config {
	return Config{
		Camera: DefaultCameraConfig(),
		Hit:    DefaultHitConfig(),
		Sphere: SphereConfig{
			Radius:      1,
			LonSegments: DefaultLonSegments,
			LatSegments: DefaultLatSegments,
		},
		Loader:       DefaultLoaderConfig(),
		DragDeadZone: defaultDragDeadZone,
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Keys missing from the
// file keep their default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config data over DefaultConfig and validates it.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("config: unmarshal yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first out-of-range value.
func (c *Config) Validate() error {
	cam := c.Camera
	if cam.FOV <= 0 || cam.FOV >= 180 {
		return fmt.Errorf("config: camera.fov must be between 0 and 180, got %.2f", cam.FOV)
	}
	if cam.MinPitch < -90 || cam.MaxPitch > 90 || cam.MinPitch > cam.MaxPitch {
		return fmt.Errorf("config: camera pitch range [%.2f, %.2f] must lie within [-90, 90]", cam.MinPitch, cam.MaxPitch)
	}
	if cam.MinDistance < 0 || cam.MinDistance > cam.MaxDistance {
		return fmt.Errorf("config: camera distance range [%.3f, %.3f] is invalid", cam.MinDistance, cam.MaxDistance)
	}
	if cam.DefaultDistance < cam.MinDistance || cam.DefaultDistance > cam.MaxDistance {
		return fmt.Errorf("config: camera.default_distance %.3f is outside [%.3f, %.3f]",
			cam.DefaultDistance, cam.MinDistance, cam.MaxDistance)
	}
	if cam.MaxDistance >= c.Sphere.Radius && c.Sphere.Radius > 0 {
		return fmt.Errorf("config: camera.max_distance %.3f must stay inside the sphere (radius %.3f)",
			cam.MaxDistance, c.Sphere.Radius)
	}
	if cam.Damping <= 0 || cam.Damping > 1 {
		return fmt.Errorf("config: camera.damping must be in (0, 1], got %.3f", cam.Damping)
	}
	if cam.FocusDuration <= 0 {
		return fmt.Errorf("config: camera.focus_duration must be > 0, got %.2f", cam.FocusDuration)
	}
	if c.Hit.Radius < 0 || c.Hit.MinScreenRadius < 0 || c.Hit.HoverRadius < 0 {
		return fmt.Errorf("config: hit radii must be >= 0")
	}
	if c.Sphere.Radius <= 0 {
		return fmt.Errorf("config: sphere.radius must be > 0, got %.3f", c.Sphere.Radius)
	}
	if c.Sphere.LonSegments < MinLonSegments || c.Sphere.LatSegments < MinLatSegments {
		return fmt.Errorf("config: sphere segments must be at least %dx%d, got %dx%d",
			MinLonSegments, MinLatSegments, c.Sphere.LonSegments, c.Sphere.LatSegments)
	}
	if c.Loader.MaxTextureWidth < 0 {
		return fmt.Errorf("config: loader.max_texture_width must be >= 0, got %d", c.Loader.MaxTextureWidth)
	}
	if c.Loader.PreloadWorkers < 0 {
		return fmt.Errorf("config: loader.preload_workers must be >= 0, got %d", c.Loader.PreloadWorkers)
	}
	if c.DragDeadZone < 0 {
		return fmt.Errorf("config: drag_dead_zone must be >= 0, got %.2f", c.DragDeadZone)
	}
	return nil
}

func (c *Config) logOutput() io.Writer {
	if c.LogOutput != nil {
		return c.LogOutput
	}
	return os.Stderr
}

func (c *Config) newID() string {
	if c.NewID != nil {
		return c.NewID()
	}
	return uuid.NewString()
}
