// Package fields defines the placeable elements a signer fills in.
//
// Each field type is its own variant carrying only the values its renderer
// uses. Variants share a Header with the field's identity, page and
// normalized placement.
package fields

import (
	"slices"
	"strings"

	"github.com/aamirmursleen/Auradoc-sub003/geometry"
)

// Type is the editor's name for a field variant.
type Type string

const (
	TypeSignature     Type = "signature"
	TypeInitials      Type = "initials"
	TypeText          Type = "text"
	TypeDate          Type = "date"
	TypeCheckbox      Type = "checkbox"
	TypeStamp         Type = "stamp"
	TypeStrikethrough Type = "strikethrough"
)

// CheckedValue is the literal value of a ticked checkbox.
const CheckedValue = "checked"

// Header holds what every field has regardless of its type.
type Header struct {
	ID       string
	Type     Type
	Page     int // 1-based
	Rect     geometry.NormalizedRect
	SignerID string
}

// Field is implemented by the variants in this package only.
type Field interface {
	Head() Header
	// Empty reports whether the field carries nothing to draw.
	Empty() bool
	isField()
}

// Signature is a drawn or uploaded signature or initials image.
type Signature struct {
	Header
	// Image is a data URL. Empty for an unsigned field.
	Image string
	// Scale multiplies the fitted image around the box center. Zero means 1.
	Scale float64
}

func (f Signature) Head() Header { return f.Header }
func (f Signature) Empty() bool  { return f.Image == "" }
func (Signature) isField()       {}

// EffectiveScale returns Scale with the zero value mapped to 1.
func (f Signature) EffectiveScale() float64 {
	if f.Scale <= 0 {
		return 1
	}
	return f.Scale
}

// Stamp is either an image that covers its box exactly or a rotated text
// stamp such as "APPROVED".
type Stamp struct {
	Header
	Image string
	Text  string
}

func (f Stamp) Head() Header { return f.Header }
func (f Stamp) Empty() bool  { return f.Image == "" && strings.TrimSpace(f.Text) == "" }
func (Stamp) isField()       {}

// Checkbox is drawn only when Checked.
type Checkbox struct {
	Header
	Checked bool
}

func (f Checkbox) Head() Header { return f.Header }
func (f Checkbox) Empty() bool  { return !f.Checked }
func (Checkbox) isField()       {}

// Strikethrough draws a line through the middle of its box.
type Strikethrough struct {
	Header
	// Color is a hex color or a CSS color name; anything else falls back to
	// the default red.
	Color string
	// Present records that the signer applied the strike.
	Present bool
}

func (f Strikethrough) Head() Header { return f.Header }
func (f Strikethrough) Empty() bool  { return !f.Present }
func (Strikethrough) isField()       {}

// Text covers text and date fields and any type this package does not know.
// Value may itself be a data URL image pasted into the field.
type Text struct {
	Header
	Value    string
	Date     bool
	FontSize float64
	Bold     bool
}

func (f Text) Head() Header { return f.Header }
func (f Text) Empty() bool  { return f.Value == "" }
func (Text) isField()       {}

// IsDataURL reports whether v looks like an embedded image rather than text.
func IsDataURL(v string) bool {
	return strings.HasPrefix(strings.TrimSpace(v), "data:image/")
}

// ByPage groups field indices by page number, preserving input order within
// a page. The returned page list is ascending.
func ByPage(fs []Field) (pages []int, grouped map[int][]int) {
	grouped = make(map[int][]int)
	for i, f := range fs {
		p := f.Head().Page
		if _, ok := grouped[p]; !ok {
			pages = append(pages, p)
		}
		grouped[p] = append(grouped[p], i)
	}
	slices.Sort(pages)
	return pages, grouped
}
