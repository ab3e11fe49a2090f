package share

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/okian/babellm/internal/domain/model"
)

// Card geometry.
const (
	CardWidth  = 1200
	CardHeight = 630
	MaxRows    = 4

	padding    = 48
	rowHeight  = 64
	rowGap     = 10
	rowsTop    = 250
	flagWidth  = 48
	flagHeight = 36
	barHeight  = 4
)

const (
	title    = "BabelLM"
	subtitle = "Discover the language behind the text"
	cardCall = "Try it yourself at babellm.ai"
)

var (
	colorBackground = color.RGBA{0xF8, 0xFA, 0xFC, 0xFF}
	colorPanel      = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	colorAccent     = color.RGBA{0x3B, 0x82, 0xF6, 0xFF}
	colorMuted      = color.RGBA{0x64, 0x74, 0x8B, 0xFF}
	colorText       = color.RGBA{0x1E, 0x29, 0x3B, 0xFF}
	colorFlag       = color.RGBA{0xE2, 0xE8, 0xF0, 0xFF}
)

// Row is one language on the card.
type Row struct {
	FlagCode string
	Text     string
	// Fallback is drawn when Text has glyphs the card font cannot render.
	Fallback string
	Score    float64
}

// Card is the content of a share image.
type Card struct {
	Question string
	Rows     []Row
}

// Renderer draws share cards with a fixed bitmap face.
type Renderer struct {
	face font.Face
}

// NewRenderer returns a renderer using the 7x13 basic face.
func NewRenderer() *Renderer {
	return &Renderer{face: basicfont.Face7x13}
}

// Render encodes c as PNG.
func (r *Renderer) Render(c Card) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.RenderTo(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderTo encodes c as PNG into w.
func (r *Renderer) RenderTo(w io.Writer, c Card) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, r.Draw(c)); err != nil {
		return fmt.Errorf("%w: %v", ErrImageEncode, err)
	}
	return nil
}

// Draw lays the card out on a fresh canvas.
func (r *Renderer) Draw(c Card) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, CardWidth, CardHeight))
	fill(img, img.Bounds(), colorBackground)

	r.textCentered(img, title, padding, 4, colorAccent)
	r.textCentered(img, subtitle, padding+64, 2, colorMuted)

	inner := image.Rect(padding, 170, CardWidth-padding, 230)
	fill(img, inner, colorPanel)
	r.text(img, r.fit(c.Question, inner.Dx()-32, 2), inner.Min.X+16, inner.Min.Y+17, 2, colorText)

	rows := c.Rows
	if len(rows) > MaxRows {
		rows = rows[:MaxRows]
	}
	for i, row := range rows {
		r.row(img, row, rowsTop+i*(rowHeight+rowGap))
	}

	r.textCentered(img, cardCall, CardHeight-padding-26, 2, colorMuted)
	return img
}

func (r *Renderer) row(img *image.RGBA, row Row, top int) {
	box := image.Rect(padding, top, CardWidth-padding, top+rowHeight)
	fill(img, box, colorPanel)

	flag := image.Rect(box.Min.X+16, top+(rowHeight-flagHeight)/2, box.Min.X+16+flagWidth, top+(rowHeight+flagHeight)/2)
	fill(img, flag, colorFlag)
	code := strings.ToUpper(row.FlagCode)
	r.text(img, r.fit(code, flagWidth, 2), flag.Min.X+(flagWidth-r.width(code, 2))/2, flag.Min.Y+5, 2, colorMuted)

	label := fmt.Sprintf("%.1f/10", row.Score)
	labelX := box.Max.X - 16 - r.width(label, 2)
	r.text(img, label, labelX, top+(rowHeight-26)/2, 2, colorMuted)

	textX := flag.Max.X + 16
	avail := labelX - 16 - textX
	text := row.Text
	if !r.renderable(text) && row.Fallback != "" {
		text = row.Fallback
	}
	r.text(img, r.fit(text, avail, 2), textX, top+10, 2, colorText)

	barTop := top + rowHeight - 14
	width := int(float64(avail) * clampScore(row.Score) / model.MaxScore)
	fill(img, image.Rect(textX, barTop, textX+width, barTop+barHeight), colorAccent)
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > model.MaxScore {
		return model.MaxScore
	}
	return s
}

func fill(img *image.RGBA, rect image.Rectangle, c color.Color) {
	draw.Draw(img, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

func (r *Renderer) width(s string, scale int) int {
	return font.MeasureString(r.face, s).Ceil() * scale
}

func (r *Renderer) renderable(s string) bool {
	for _, c := range s {
		if _, ok := r.face.GlyphAdvance(c); !ok {
			return false
		}
	}
	return true
}

// fit truncates s with an ellipsis so it spans at most limit pixels.
func (r *Renderer) fit(s string, limit, scale int) string {
	if r.width(s, scale) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if r.width(candidate, scale) <= limit {
			return candidate
		}
	}
	return ""
}

func (r *Renderer) textCentered(img *image.RGBA, s string, y, scale int, c color.Color) {
	r.text(img, s, (CardWidth-r.width(s, scale))/2, y, scale, c)
}

// text draws s with its top-left corner at (x, y), magnified by scale.
func (r *Renderer) text(img *image.RGBA, s string, x, y, scale int, c color.Color) {
	if s == "" {
		return
	}
	metrics := r.face.Metrics()
	w := font.MeasureString(r.face, s).Ceil()
	h := metrics.Height.Ceil()
	if w <= 0 || h <= 0 {
		return
	}

	glyphs := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot:  fixed.P(0, metrics.Ascent.Ceil()),
	}
	d.DrawString(s)

	dst := image.Rect(x, y, x+w*scale, y+h*scale)
	xdraw.NearestNeighbor.Scale(img, dst, glyphs, glyphs.Bounds(), xdraw.Over, nil)
}
