package render

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/aamirmursleen/Auradoc-sub003/fields"
	"github.com/aamirmursleen/Auradoc-sub003/fonts"
	"github.com/aamirmursleen/Auradoc-sub003/geometry"
	"github.com/aamirmursleen/Auradoc-sub003/images"
)

// Result classifies what drawing a field produced.
type Result int

const (
	// Nothing means the field had nothing to draw.
	Nothing Result = iota
	// Drawn means the field's value was drawn.
	Drawn
	// Placeholder means the image could not be used and a marker box was
	// drawn in its place.
	Placeholder
)

const (
	placeholderWidth   = 1.0
	strikeWidth        = 3.0
	stampRotation      = -12.0
	stampBorderRatio   = 0.85
	stampBorderWidth   = 2.0
	checkmarkRatio     = 0.6
	defaultFontSize    = 12.0
	maxFontRatio       = 0.8
	baselineFactor     = 0.15
	minStampFontSize   = 6.0
	maxStampFontSize   = 24.0
	stampGlyphEstimate = 0.6
)

// ImageValue returns the data URL a field draws from, if any. shared is the
// signer's signature image; it fills signature and initials fields that
// carry no value of their own.
func ImageValue(f fields.Field, shared string) (string, bool) {
	switch f := f.(type) {
	case fields.Signature:
		if f.Image != "" {
			return f.Image, true
		}
		if shared != "" {
			return shared, true
		}
	case fields.Stamp:
		if f.Image != "" {
			return f.Image, true
		}
	case fields.Text:
		if fields.IsDataURL(f.Value) {
			return f.Value, true
		}
	}
	return "", false
}

// Field lays out f inside r. img is the decoded image for fields that draw
// one; nil means decoding failed and a placeholder is drawn instead.
func Field(f fields.Field, r geometry.Rect, img *images.Image) ([]Element, Result) {
	switch f := f.(type) {
	case fields.Signature:
		return SignatureImage(r, img, f.EffectiveScale())

	case fields.Stamp:
		if f.Image != "" {
			return StampImage(r, img)
		}
		return TextStamp(r, f.Text)

	case fields.Checkbox:
		return Checkbox(r, f.Checked)

	case fields.Strikethrough:
		if !f.Present {
			return nil, Nothing
		}
		return Strikethrough(r, f.Color)

	case fields.Text:
		if fields.IsDataURL(f.Value) {
			return SignatureImage(r, img, 1)
		}
		value := f.Value
		if f.Date {
			value = FormatDate(value)
		}
		return Text(r, value, f.FontSize, f.Bold)
	}
	return nil, Nothing
}

// PlaceholderBox marks where an image failed to render.
func PlaceholderBox(r geometry.Rect) []Element {
	red := Red
	return []Element{ShapeElement{
		X: r.X, Y: r.Y, Width: r.Width, Height: r.Height,
		StrokeColor: &red,
		StrokeWidth: placeholderWidth,
	}}
}

// SignatureImage fits img inside r preserving its aspect ratio, then scales
// the fitted box about its center.
func SignatureImage(r geometry.Rect, img *images.Image, scale float64) ([]Element, Result) {
	if img == nil {
		return PlaceholderBox(r), Placeholder
	}
	fit := r.FitAspect(float64(img.Width), float64(img.Height)).Scale(scale)
	return []Element{ImageElement{Image: img, X: fit.X, Y: fit.Y, Width: fit.Width, Height: fit.Height}}, Drawn
}

// StampImage stretches img over r exactly.
func StampImage(r geometry.Rect, img *images.Image) ([]Element, Result) {
	if img == nil {
		return PlaceholderBox(r), Placeholder
	}
	return []Element{ImageElement{Image: img, X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}}, Drawn
}

// StampFontSize picks the text stamp size: the width estimate assumes an
// average glyph of 0.6 em, bounded by the box height and 24pt, never below 6pt.
func StampFontSize(r geometry.Rect, text string) float64 {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return minStampFontSize
	}
	maxW := r.Width * 0.8
	maxH := r.Height * 0.6
	size := math.Min(maxW/(float64(n)*stampGlyphEstimate), math.Min(maxH, maxStampFontSize))
	return math.Max(minStampFontSize, size)
}

// TextStamp draws text inside a border, both rotated about the box center.
func TextStamp(r geometry.Rect, text string) ([]Element, Result) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, Nothing
	}

	cx, cy := r.Center()
	red := Red

	border := r.Scale(stampBorderRatio)
	font := fonts.Standard(fonts.HelveticaBold)
	size := StampFontSize(r, text)
	width := font.StringWidth(text, size)

	return []Element{RotatedGroup{
		Pivot:   Point{cx, cy},
		Degrees: stampRotation,
		Elements: []Element{
			ShapeElement{
				X: border.X, Y: border.Y, Width: border.Width, Height: border.Height,
				StrokeColor: &red,
				StrokeWidth: stampBorderWidth,
			},
			TextElement{
				Content: text,
				Font:    font,
				Size:    size,
				X:       cx - width/2,
				Y:       cy - size*0.35,
				Color:   Red,
			},
		},
	}}, Drawn
}

// Checkbox fills a checked box green with a white checkmark.
func Checkbox(r geometry.Rect, checked bool) ([]Element, Result) {
	if !checked {
		return nil, Nothing
	}

	green := Green
	cx, cy := r.Center()
	s := checkmarkRatio * math.Min(r.Width, r.Height)

	return []Element{
		ShapeElement{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height, FillColor: &green},
		PathElement{
			Points: []Point{
				{cx - 0.5*s, cy},
				{cx - 0.15*s, cy - 0.35*s},
				{cx + 0.5*s, cy + 0.35*s},
			},
			StrokeColor: White,
			StrokeWidth: math.Max(0.5, s*0.15),
		},
	}, Drawn
}

// Strikethrough draws a 3pt line across the vertical center of r.
func Strikethrough(r geometry.Rect, value string) ([]Element, Result) {
	c, ok := ParseColor(value)
	if !ok {
		c = Red
	}
	_, cy := r.Center()
	return []Element{LineElement{
		X1: r.X, Y1: cy, X2: r.Right(), Y2: cy,
		StrokeColor: c,
		StrokeWidth: strikeWidth,
	}}, Drawn
}

// TextFontSize caps the requested size (12 when unset) at 80% of the box height.
func TextFontSize(r geometry.Rect, requested float64) float64 {
	if requested <= 0 {
		requested = defaultFontSize
	}
	return math.Min(requested, r.Height*maxFontRatio)
}

// TextPadding is the left inset: a tenth of the box height, kept within 4 to 8pt.
func TextPadding(r geometry.Rect) float64 {
	return math.Max(4, math.Min(r.Height*0.1, 8))
}

// Text draws value left aligned and vertically centered in r.
func Text(r geometry.Rect, value string, requestedSize float64, bold bool) ([]Element, Result) {
	if value == "" {
		return nil, Nothing
	}
	size := TextFontSize(r, requestedSize)
	if size <= 0 {
		return nil, Nothing
	}

	return []Element{TextElement{
		Content: value,
		Font:    fonts.ForWeight(bold),
		Size:    size,
		X:       r.X + TextPadding(r),
		Y:       r.Y + (r.Height-size)/2 + size*baselineFactor,
		Color:   Black,
	}}, Drawn
}
