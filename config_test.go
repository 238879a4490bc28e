package pano

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseConfigOverlaysDefaults(t *testing.T) {
	data := []byte(`
camera:
  fov: 90
  max_pitch: 60
hit:
  hover_radius: 40
debug: true
`)
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Camera.FOV != 90 || cfg.Camera.MaxPitch != 60 || cfg.Hit.HoverRadius != 40 || !cfg.Debug {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	def := DefaultConfig()
	if cfg.Camera.MinPitch != def.Camera.MinPitch || cfg.Sphere != def.Sphere || cfg.Loader != def.Loader {
		t.Errorf("unset keys lost their defaults: %+v", cfg)
	}
}

func TestParseConfigEmpty(t *testing.T) {
	cfg, err := ParseConfig(nil)
	if err != nil {
		t.Fatalf("ParseConfig(nil): %v", err)
	}
	if cfg.Camera != DefaultCameraConfig() {
		t.Errorf("empty input changed the camera config: %+v", cfg.Camera)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", "camera:\n  fovv: 80\n", "unmarshal yaml"},
		{"bad fov", "camera:\n  fov: 190\n", "camera.fov"},
		{"inverted pitch", "camera:\n  min_pitch: 30\n  max_pitch: 10\n", "pitch range"},
		{"pitch beyond pole", "camera:\n  max_pitch: 95\n", "pitch range"},
		{"default outside range", "camera:\n  default_distance: 0.5\n", "default_distance"},
		{"eye outside sphere", "camera:\n  max_distance: 2\n  default_distance: 1.5\n", "inside the sphere"},
		{"zero damping", "camera:\n  damping: 0\n", "damping"},
		{"zero focus duration", "camera:\n  focus_duration: 0\n", "focus_duration"},
		{"negative focus duration", "camera:\n  focus_duration: -0.5\n", "focus_duration"},
		{"coarse sphere", "sphere:\n  lon_segments: 12\n", "segments"},
		{"negative dead zone", "drag_dead_zone: -1\n", "drag_dead_zone"},
		{"negative workers", "loader:\n  preload_workers: -2\n", "preload_workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.HasPrefix(err.Error(), "config: ") || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pano.yaml")
	if err := os.WriteFile(path, []byte("drag_dead_zone: 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DragDeadZone != 8 {
		t.Errorf("DragDeadZone = %v, want 8", cfg.DragDeadZone)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}
