package pano

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Site describes the place a tour shows. Caption templates can refer to any
// of its fields.
type Site struct {
	Name               string   `yaml:"name"`
	Location           string   `yaml:"location"`
	Tradition          string   `yaml:"tradition"`
	Founded            string   `yaml:"founded"`
	Altitude           string   `yaml:"altitude"`
	Highlights         []string `yaml:"highlights"`
	CulturalImportance string   `yaml:"cultural_importance"`
}

// TourHotspot is a hotspot as written in a tour file.
type TourHotspot struct {
	Position    []float64 `yaml:"position"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Detail      string    `yaml:"detail"`
	Category    Category  `yaml:"category"`
}

// TourImage is one panorama of a tour with its hotspot table.
type TourImage struct {
	Image    `yaml:",inline"`
	Hotspots []TourHotspot `yaml:"hotspots"`
}

// Tour is a declarative panorama set: the site, its images in order, and the
// hotspots of each image. Text fields of images and hotspots are
// text/template templates executed against captionData, e.g.
//
//	detail: "The main hall of {{.Site.Name}}, founded in {{.Site.Founded}}."
type Tour struct {
	Site   Site        `yaml:"site"`
	Start  int         `yaml:"start"`
	Images []TourImage `yaml:"images"`

	hotspots map[int][]Hotspot
}

// captionData is what caption templates see.
type captionData struct {
	Site   Site
	Index  int // zero-based image index
	Number int // one-based image number
	Count  int // images in the tour
	Title  string
}

var captionFuncs = template.FuncMap{
	// highlight returns the n-th site highlight, or fallback when there is
	// none.
	"highlight": func(site Site, n int, fallback string) string {
		if n >= 0 && n < len(site.Highlights) {
			return site.Highlights[n]
		}
		return fallback
	},
	"upper": strings.ToUpper,
}

// LoadTour reads and expands a YAML tour file.
func LoadTour(path string) (*Tour, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tour: read %s: %w", path, err)
	}
	return ParseTour(data)
}

// ParseTour decodes a YAML tour, expands caption templates and validates the
// hotspot tables.
func ParseTour(data []byte) (*Tour, error) {
	var t Tour
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("tour: unmarshal yaml: %w", err)
	}
	if len(t.Images) == 0 {
		return nil, fmt.Errorf("tour: %w", ErrEmptyImageSet)
	}
	if t.Start < 0 || t.Start >= len(t.Images) {
		return nil, fmt.Errorf("tour: start %d is outside [0, %d]", t.Start, len(t.Images)-1)
	}

	t.hotspots = make(map[int][]Hotspot, len(t.Images))
	var errs []error
	for i := range t.Images {
		if err := t.expandImage(i); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("tour: %w", err)
	}
	return &t, nil
}

func (t *Tour) expandImage(i int) error {
	img := &t.Images[i]
	if strings.TrimSpace(img.Source) == "" {
		return fmt.Errorf("image %d: source is required", i)
	}

	data := captionData{Site: t.Site, Index: i, Number: i + 1, Count: len(t.Images)}
	var err error
	if img.Title, err = expandCaption(img.Title, data); err != nil {
		return fmt.Errorf("image %d title: %w", i, err)
	}
	data.Title = img.Title
	if img.Subtitle, err = expandCaption(img.Subtitle, data); err != nil {
		return fmt.Errorf("image %d subtitle: %w", i, err)
	}

	list := make([]Hotspot, 0, len(img.Hotspots))
	for j, th := range img.Hotspots {
		if len(th.Position) != 3 {
			return fmt.Errorf("image %d hotspot %d: position needs 3 components, got %d", i, j, len(th.Position))
		}
		h := Hotspot{
			Position: mgl64.Vec3{th.Position[0], th.Position[1], th.Position[2]},
			Category: th.Category,
		}
		fields := []struct {
			dst  *string
			src  string
			name string
		}{
			{&h.Title, th.Title, "title"},
			{&h.Description, th.Description, "description"},
			{&h.Detail, th.Detail, "detail"},
		}
		for _, f := range fields {
			if *f.dst, err = expandCaption(f.src, data); err != nil {
				return fmt.Errorf("image %d hotspot %d %s: %w", i, j, f.name, err)
			}
		}
		list = append(list, h)
	}
	if err := ValidateHotspots(list); err != nil {
		return fmt.Errorf("image %d: %w", i, err)
	}
	if len(list) > 0 {
		t.hotspots[i] = list
	}
	return nil
}

func expandCaption(text string, data captionData) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	tmpl, err := template.New("caption").Funcs(captionFuncs).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ImageSet returns the tour's images in order.
func (t *Tour) ImageSet() []Image {
	out := make([]Image, len(t.Images))
	for i, img := range t.Images {
		out[i] = img.Image
	}
	return out
}

// HotspotsByIndex returns the expanded hotspot tables keyed by image index.
func (t *Tour) HotspotsByIndex() map[int][]Hotspot {
	return t.hotspots
}

// Sources returns the image sources in order.
func (t *Tour) Sources() []string {
	out := make([]string, len(t.Images))
	for i, img := range t.Images {
		out[i] = img.Source
	}
	return out
}

// Open starts a session over the tour at its start image.
func (t *Tour) Open(cfg Config, loader *Loader) (*Session, error) {
	return Open(t.ImageSet(), t.Start, t.hotspots, cfg, loader)
}
