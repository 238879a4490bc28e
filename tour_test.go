package pano

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const monasteryTour = `
site:
  name: Tsechen Monastery
  location: Upper Valley
  tradition: Kagyu
  founded: "1640"
  highlights:
    - butter lamp hall
    - painted ceiling
start: 1
images:
  - source: pano/courtyard.jpg
    title: "{{.Site.Name}}"
    subtitle: "View {{.Number}} of {{.Count}}"
    hotspots:
      - position: [0.5, 0, -0.8]
        title: Prayer Hall
        description: Main hall
        detail: "Built in {{.Site.Founded}} by the {{.Site.Tradition}} school."
        category: prayer_hall
      - position: [-0.8, 0.2, -0.5]
        title: "{{highlight .Site 0 \"Altar\" | upper}}"
        category: altar
  - source: pano/hall.jpg
    title: Hall
    subtitle: "{{.Title}} at {{.Site.Location}}"
  - source: pano/roof.jpg
    title: Roof
    hotspots:
      - position: [0, 0.9, -0.3]
        title: "{{highlight .Site 5 \"Sky\"}}"
        category: view
`

func TestParseTour(t *testing.T) {
	tour, err := ParseTour([]byte(monasteryTour))
	if err != nil {
		t.Fatalf("ParseTour: %v", err)
	}
	if tour.Start != 1 || len(tour.Images) != 3 {
		t.Fatalf("start %d images %d", tour.Start, len(tour.Images))
	}

	imgs := tour.ImageSet()
	if imgs[0].Title != "Tsechen Monastery" || imgs[0].Subtitle != "View 1 of 3" {
		t.Errorf("image 0 caption = %q / %q", imgs[0].Title, imgs[0].Subtitle)
	}
	if imgs[1].Subtitle != "Hall at Upper Valley" {
		t.Errorf("image 1 subtitle = %q", imgs[1].Subtitle)
	}

	hs := tour.HotspotsByIndex()
	if len(hs[0]) != 2 || len(hs[1]) != 0 || len(hs[2]) != 1 {
		t.Fatalf("hotspot counts = %d/%d/%d", len(hs[0]), len(hs[1]), len(hs[2]))
	}
	if hs[0][0].Detail != "Built in 1640 by the Kagyu school." || hs[0][0].Category != CategoryPrayerHall {
		t.Errorf("hotspot 0 = %+v", hs[0][0])
	}
	if hs[0][1].Title != "BUTTER LAMP HALL" {
		t.Errorf("highlight title = %q", hs[0][1].Title)
	}
	if hs[2][0].Title != "Sky" || hs[2][0].Position != vec(0, 0.9, -0.3) {
		t.Errorf("fallback hotspot = %+v", hs[2][0])
	}

	want := []string{"pano/courtyard.jpg", "pano/hall.jpg", "pano/roof.jpg"}
	if got := tour.Sources(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Sources = %v", got)
	}
}

func TestParseTourErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no images", "site:\n  name: x\n", "empty image set"},
		{"start out of range", "start: 3\nimages:\n  - source: a.jpg\n", "start 3"},
		{"missing source", "images:\n  - title: a\n", "source is required"},
		{"short position", "images:\n  - source: a.jpg\n    hotspots:\n      - position: [1, 0]\n        title: x\n", "3 components"},
		{"unknown category", "images:\n  - source: a.jpg\n    hotspots:\n      - position: [1, 0, 0]\n        title: x\n        category: stupa\n", "unknown hotspot category"},
		{"missing template field", "images:\n  - source: a.jpg\n    title: \"{{.Site.Abbot}}\"\n", "title"},
		{"duplicate positions", "images:\n  - source: a.jpg\n    hotspots:\n      - position: [1, 0, 0]\n        title: a\n      - position: [1, 0, 0]\n        title: b\n", "duplicate hotspot position"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTour([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.HasPrefix(err.Error(), "tour: ") || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want it to mention %q", err, tt.want)
			}
		})
	}

	_, err := ParseTour([]byte("site:\n  name: x\n"))
	if !errors.Is(err, ErrEmptyImageSet) {
		t.Errorf("empty tour err = %v, want ErrEmptyImageSet", err)
	}
	_, err = ParseTour([]byte("images:\n  - source: a.jpg\n    hotspots:\n      - position: [1, 0, 0]\n        title: a\n      - position: [1, 0, 0]\n        title: b\n"))
	if !errors.Is(err, ErrDuplicatePosition) {
		t.Errorf("duplicate err = %v, want ErrDuplicatePosition", err)
	}
}

func TestLoadTourOpensSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tour.yaml")
	if err := os.WriteFile(path, []byte(monasteryTour), 0o644); err != nil {
		t.Fatal(err)
	}
	tour, err := LoadTour(path)
	if err != nil {
		t.Fatalf("LoadTour: %v", err)
	}

	s, err := tour.Open(testConfig(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if s.Index() != 1 || s.Len() != 3 {
		t.Errorf("session at %d of %d, want 1 of 3", s.Index(), s.Len())
	}
	s.Prev()
	if len(s.Hotspots()) != 2 || s.Hotspots()[0].Title != "Prayer Hall" {
		t.Errorf("image 0 hotspots = %+v", s.Hotspots())
	}

	if _, err := LoadTour(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}
