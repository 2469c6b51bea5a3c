package render

import (
	"strconv"
	"strings"

	"github.com/aamirmursleen/Auradoc-sub003/fonts"
	"github.com/aamirmursleen/Auradoc-sub003/images"
)

// Color represents an RGB color.
type Color struct {
	R, G, B uint8
}

var (
	// Red is used for placeholders, text stamps and the default strike.
	Red = Color{0xDC, 0x26, 0x26}
	// Green fills checked checkboxes.
	Green = Color{0x22, 0xC5, 0x5E}
	// White draws the checkmark.
	White = Color{0xFF, 0xFF, 0xFF}
	// Black is the text color.
	Black = Color{0, 0, 0}
)

var namedColors = map[string]Color{
	"red":   {0xFF, 0, 0},
	"black": {0, 0, 0},
	"blue":  {0, 0, 0xFF},
	"green": {0, 0x80, 0},
}

// ParseColor reads "#RGB", "#RRGGBB" or one of the names red, black, blue
// and green.
func ParseColor(s string) (Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, true
	}

	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return Color{}, false
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, false
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{uint8(v >> 16), uint8(v >> 8), uint8(v)}, true
}

// Point is a position in PDF user space.
type Point struct {
	X, Y float64
}

// Element is an interface for visual elements drawn on a page.
type Element interface {
	IsElement()
}

// ImageElement draws an image stretched over its rectangle.
type ImageElement struct {
	Image               *images.Image
	X, Y, Width, Height float64
}

func (ImageElement) IsElement() {}

// TextElement draws a single line of text with its baseline at Y.
type TextElement struct {
	Content string
	Font    *fonts.Font
	Size    float64
	X, Y    float64
	Color   Color
}

func (TextElement) IsElement() {}

// ShapeElement draws a rectangle, filled, stroked or both.
type ShapeElement struct {
	X, Y, Width, Height    float64
	StrokeColor, FillColor *Color
	StrokeWidth            float64
}

func (ShapeElement) IsElement() {}

// LineElement draws a straight line segment.
type LineElement struct {
	X1, Y1, X2, Y2 float64
	StrokeColor    Color
	StrokeWidth    float64
}

func (LineElement) IsElement() {}

// PathElement strokes an open polyline with round caps and joins.
type PathElement struct {
	Points      []Point
	StrokeColor Color
	StrokeWidth float64
}

func (PathElement) IsElement() {}

// RotatedGroup draws its elements rotated by Degrees (counterclockwise in
// PDF space) about Pivot.
type RotatedGroup struct {
	Pivot    Point
	Degrees  float64
	Elements []Element
}

func (RotatedGroup) IsElement() {}
