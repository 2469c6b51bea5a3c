// Package fonts provides the standard PDF fonts used for field text.
//
// Field text is set in Helvetica or Helvetica-Bold. Both are standard Type1
// fonts every PDF reader carries, so nothing is embedded; the package only
// supplies the font dictionary, advance widths and WinAnsi encoding.
package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// StandardType selects one of the standard fonts this package knows.
type StandardType int

const (
	// Helvetica is the regular sans-serif face.
	Helvetica StandardType = iota
	// HelveticaBold is bold Helvetica.
	HelveticaBold
)

// Font is a standard font resource.
type Font struct {
	Name   string // PostScript name
	widths *[95]int
}

var standard = map[StandardType]*Font{
	Helvetica:     {Name: "Helvetica", widths: &helveticaWidths},
	HelveticaBold: {Name: "Helvetica-Bold", widths: &helveticaBoldWidths},
}

// Standard returns the font for ft. Unknown values fall back to Helvetica.
func Standard(ft StandardType) *Font {
	if f, ok := standard[ft]; ok {
		return f
	}
	return standard[Helvetica]
}

// ForWeight returns Helvetica-Bold when bold is set, Helvetica otherwise.
func ForWeight(bold bool) *Font {
	if bold {
		return Standard(HelveticaBold)
	}
	return Standard(Helvetica)
}

// Dict returns the font dictionary to add as an indirect object.
func (f *Font) Dict() string {
	return fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding >>", f.Name)
}

// defaultWidth is used for glyphs outside printable ASCII.
const defaultWidth = 556

// StringWidth returns the advance width of s in points at size.
func (f *Font) StringWidth(s string, size float64) float64 {
	total := 0
	for _, r := range s {
		total += f.glyphWidth(r)
	}
	return float64(total) * size / 1000
}

func (f *Font) glyphWidth(r rune) int {
	if r >= 32 && r <= 126 {
		return f.widths[r-32]
	}
	return defaultWidth
}

// Encode converts s to WinAnsiEncoding bytes. Runes the encoding cannot
// represent become '?'.
func Encode(s string) []byte {
	enc := charmap.Windows1252
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := enc.EncodeRune(r); ok {
			out = append(out, b)
			continue
		}
		out = append(out, '?')
	}
	return out
}

// Literal returns s encoded to WinAnsi as a PDF literal string, parentheses
// included, ready for a Tj operator.
func Literal(s string) string {
	var b strings.Builder
	b.WriteByte('(')
	for _, c := range Encode(s) {
		switch c {
		case '(', ')', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(')')
	return b.String()
}
