package ebitenpano

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/pano"
)

const (
	// minClipW drops vertices at or behind the camera's near plane.
	minClipW = 0.01

	lineHeight = 16 // ebitenutil debug font
	charWidth  = 6
	panelWidth = 320
	panelPad   = 10
)

var (
	backgroundColor = color.RGBA{12, 12, 14, 255}
	panelColor      = color.RGBA{0, 0, 0, 170}
	ringColor       = color.RGBA{255, 255, 255, 230}
	selectedRing    = color.RGBA{255, 215, 0, 255}
)

// renderer draws frames. It keeps one GPU copy of the current panorama,
// replaced whenever the frame's texture version changes.
type renderer struct {
	tex        *ebiten.Image
	texVersion uint64
	texW, texH float64
	hasTex     bool

	placeholder *ebiten.Image

	verts []ebiten.Vertex
	inds  []uint16
}

func newRenderer() *renderer {
	return &renderer{}
}

func (r *renderer) draw(screen *ebiten.Image, f pano.Frame) {
	screen.Fill(backgroundColor)
	if f.State == pano.StateClosed || f.Mesh == nil {
		return
	}

	if img := r.texture(f); img != nil {
		r.verts, r.inds = projectMesh(f.Mesh, f.Camera, f.Viewport, r.texW, r.texH, r.verts[:0], r.inds[:0])
		if len(r.inds) > 0 {
			op := &ebiten.DrawTrianglesOptions{Filter: ebiten.FilterLinear}
			screen.DrawTriangles(r.verts, r.inds, img, op)
		}
	}

	drawMarkers(screen, f.Markers)
	drawHeader(screen, f)
	drawNotice(screen, f)
	if f.Selected != nil {
		drawDetailPanel(screen, f.Viewport, f.Selected)
	}
}

// texture returns the GPU image for the frame's texture, uploading it when
// the scene version moved on.
func (r *renderer) texture(f pano.Frame) *ebiten.Image {
	if f.Texture == nil || f.Texture.Image == nil {
		return nil
	}
	if r.hasTex && r.texVersion == f.TextureVersion {
		return r.tex
	}

	if r.tex != nil && r.tex != r.placeholder {
		r.tex.Deallocate()
	}
	if pano.IsPlaceholder(f.Texture) {
		if r.placeholder == nil {
			r.placeholder = ebiten.NewImageFromImage(f.Texture.Image)
		}
		r.tex = r.placeholder
	} else {
		r.tex = ebiten.NewImageFromImage(f.Texture.Image)
	}
	r.texW, r.texH = float64(f.Texture.Width()), float64(f.Texture.Height())
	r.texVersion = f.TextureVersion
	r.hasTex = true
	return r.tex
}

func (r *renderer) dispose() {
	if r.tex != nil && r.tex != r.placeholder {
		r.tex.Deallocate()
	}
	if r.placeholder != nil {
		r.placeholder.Deallocate()
	}
	r.tex, r.placeholder = nil, nil
	r.hasTex = false
}

// projectMesh transforms the sphere through the camera's view-projection
// into screen vertices, appending to verts and inds. Triangles with any
// vertex at or behind the near plane are skipped; the rest sample the
// texture at U*texW, V*texH.
func projectMesh(mesh *pano.SphereMesh, cam pano.CameraState, vp pano.Viewport, texW, texH float64,
	verts []ebiten.Vertex, inds []uint16) ([]ebiten.Vertex, []uint16) {

	m := cam.ViewProjection(vp.Aspect())
	base := len(verts)
	visible := make([]bool, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		clip := m.Mul4x1(mgl64.Vec4{v.Pos[0], v.Pos[1], v.Pos[2], 1})
		w := clip[3]
		var px, py float64
		if w > minClipW {
			visible[i] = true
			px, py = vp.FromNDC(clip[0]/w, clip[1]/w)
		}
		verts = append(verts, ebiten.Vertex{
			DstX:   float32(px),
			DstY:   float32(py),
			SrcX:   float32(v.U * texW),
			SrcY:   float32(v.V * texH),
			ColorR: 1,
			ColorG: 1,
			ColorB: 1,
			ColorA: 1,
		})
	}

	for t := 0; t+2 < len(mesh.Indices); t += 3 {
		a, b, c := mesh.Indices[t], mesh.Indices[t+1], mesh.Indices[t+2]
		if !visible[a] || !visible[b] || !visible[c] {
			continue
		}
		inds = append(inds, uint16(base)+a, uint16(base)+b, uint16(base)+c)
	}
	return verts, inds
}

func drawMarkers(screen *ebiten.Image, markers []pano.MarkerState) {
	for i := range markers {
		m := &markers[i]
		if !m.Visible {
			continue
		}
		x, y, rad := float32(m.ScreenX), float32(m.ScreenY), float32(m.Radius)
		vector.DrawFilledCircle(screen, x, y, rad, m.Color.RGBA(), true)
		ring := ringColor
		if m.Selected {
			ring = selectedRing
		}
		vector.StrokeCircle(screen, x, y, rad, 2, ring, true)

		if m.Hovered && !m.Selected {
			ebitenutil.DebugPrintAt(screen, m.Hotspot.Title, int(x+rad)+6, int(y)-lineHeight/2)
		}
	}
}

func drawHeader(screen *ebiten.Image, f pano.Frame) {
	header := fmt.Sprintf("%s (%d/%d)", f.Image.Title, f.Index+1, f.Count)
	if f.Image.Title == "" {
		header = fmt.Sprintf("%d/%d", f.Index+1, f.Count)
	}
	x, y := int(f.Viewport.X)+panelPad, int(f.Viewport.Y)+panelPad
	ebitenutil.DebugPrintAt(screen, header, x, y)
	if f.Image.Subtitle != "" {
		ebitenutil.DebugPrintAt(screen, f.Image.Subtitle, x, y+lineHeight)
	}
	mode := "mode: " + f.Mode.String()
	ebitenutil.DebugPrintAt(screen, mode, x, int(f.Viewport.Y+f.Viewport.Height)-panelPad-lineHeight)
}

func drawNotice(screen *ebiten.Image, f pano.Frame) {
	msg := noticeText(f)
	if msg == "" {
		return
	}
	cx := f.Viewport.X + f.Viewport.Width/2 - float64(len(msg)*charWidth)/2
	cy := f.Viewport.Y + f.Viewport.Height/2 - lineHeight/2
	ebitenutil.DebugPrintAt(screen, msg, int(cx), int(cy))
}

// noticeText is the centered caption shown over the placeholder.
func noticeText(f pano.Frame) string {
	switch f.TextureState {
	case pano.TextureLoading:
		return "Loading " + f.Image.Source + "..."
	case pano.TextureFailed:
		if f.LoadErr != nil {
			return "Could not load image: " + f.LoadErr.Error()
		}
		return "Could not load image"
	}
	return ""
}

func drawDetailPanel(screen *ebiten.Image, vp pano.Viewport, h *pano.Hotspot) {
	lines := panelLines(h, (panelWidth-2*panelPad)/charWidth)
	height := float64(len(lines)*lineHeight + 2*panelPad)
	x := vp.X + vp.Width - panelWidth - panelPad
	y := vp.Y + panelPad
	vector.DrawFilledRect(screen, float32(x), float32(y), panelWidth, float32(height), panelColor, false)
	vector.DrawFilledRect(screen, float32(x), float32(y), 4, float32(height), h.Category.Color().RGBA(), false)
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, int(x)+panelPad, int(y)+panelPad+i*lineHeight)
	}
}

// panelLines lays out the selected hotspot's text for the detail panel.
func panelLines(h *pano.Hotspot, width int) []string {
	lines := []string{strings.ToUpper(h.Title), h.Category.String()}
	if h.Description != "" {
		lines = append(lines, "")
		lines = append(lines, wrapText(h.Description, width)...)
	}
	if h.Detail != "" {
		lines = append(lines, "")
		lines = append(lines, wrapText(h.Detail, width)...)
	}
	return lines
}

// wrapText breaks s into lines of at most width characters at spaces.
// Words longer than width get a line of their own.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	var b strings.Builder
	for _, w := range words {
		if b.Len() > 0 && b.Len()+1+len(w) > width {
			lines = append(lines, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
	}
	return append(lines, b.String())
}
