package compose

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/aamirmursleen/Auradoc-sub003/geometry"
	"github.com/digitorus/pdf"
)

// maxInheritance bounds the walk up /Parent links.
const maxInheritance = 32

// Resource categories a page edit may extend.
const (
	ResourceXObject = "XObject"
	ResourceFont    = "Font"
)

// PageEdit describes content drawn on top of one page.
type PageEdit struct {
	Number  int    // 1-based
	Content []byte // uncompressed content stream operators

	// Resources maps category (XObject, Font) to resource name
	// and object number.
	Resources map[string]map[string]uint32
}

// AddResource registers a named resource for the page.
func (e *PageEdit) AddResource(category, name string, id uint32) {
	if e.Resources == nil {
		e.Resources = make(map[string]map[string]uint32)
	}
	if e.Resources[category] == nil {
		e.Resources[category] = make(map[string]uint32)
	}
	e.Resources[category][name] = id
}

// NumPage returns the number of pages in the source document.
func (c *Context) NumPage() int {
	return c.Reader.NumPage()
}

func (c *Context) page(n int) (pdf.Value, error) {
	if n < 1 || n > c.Reader.NumPage() {
		return pdf.Value{}, fmt.Errorf("page %d out of range [1, %d]", n, c.Reader.NumPage())
	}
	v := c.Reader.Page(n).V
	if v.IsNull() {
		return pdf.Value{}, fmt.Errorf("page %d not found", n)
	}
	if v.GetPtr().GetID() == 0 {
		return pdf.Value{}, fmt.Errorf("page %d is not an indirect object", n)
	}
	return v, nil
}

// inherited looks key up on the page and then on its ancestors.
func inherited(page pdf.Value, key string) pdf.Value {
	v := page
	for i := 0; i < maxInheritance && !v.IsNull(); i++ {
		if val := v.Key(key); !val.IsNull() {
			return val
		}
		v = v.Key("Parent")
	}
	return pdf.Value{}
}

// PageBox returns the page's MediaBox, inherited if necessary. Pages
// without a usable MediaBox are treated as US Letter.
func (c *Context) PageBox(n int) (geometry.PageBox, error) {
	page, err := c.page(n)
	if err != nil {
		return geometry.PageBox{}, err
	}
	return mediaBox(page), nil
}

func mediaBox(page pdf.Value) geometry.PageBox {
	box := inherited(page, "MediaBox")
	if box.Kind() != pdf.Array || box.Len() != 4 {
		return geometry.Letter
	}

	llx, lly := box.Index(0).Float64(), box.Index(1).Float64()
	urx, ury := box.Index(2).Float64(), box.Index(3).Float64()
	if urx < llx {
		llx, urx = urx, llx
	}
	if ury < lly {
		lly, ury = ury, lly
	}
	if urx-llx <= 0 || ury-lly <= 0 {
		return geometry.Letter
	}
	return geometry.PageBox{LLX: llx, LLY: lly, URX: urx, URY: ury}
}

// ApplyPage appends e.Content after the page's existing content and merges
// e.Resources into its resource dictionary. The original content is wrapped
// in q/Q so a graphics state it leaves behind does not leak into the new
// drawing.
func (c *Context) ApplyPage(e *PageEdit) error {
	page, err := c.page(e.Number)
	if err != nil {
		return err
	}

	if err := c.ensureStateWrappers(); err != nil {
		return err
	}

	contentID, err := c.AddStream("", e.Content, true)
	if err != nil {
		return fmt.Errorf("failed to add content stream for page %d: %w", e.Number, err)
	}

	ptr := page.GetPtr()
	body, err := c.rewritePage(page, contentID, e.Resources)
	if err != nil {
		return fmt.Errorf("failed to rewrite page %d: %w", e.Number, err)
	}

	return c.UpdateObject(ptr.GetID(), int(ptr.GetGen()), body)
}

func (c *Context) ensureStateWrappers() error {
	if c.saveStateID != 0 {
		return nil
	}

	var err error
	if c.saveStateID, err = c.AddStream("", []byte("q"), false); err != nil {
		return fmt.Errorf("failed to add save state stream: %w", err)
	}
	if c.restoreStateID, err = c.AddStream("", []byte("Q"), false); err != nil {
		return fmt.Errorf("failed to add restore state stream: %w", err)
	}
	return nil
}

func (c *Context) rewritePage(page pdf.Value, contentID uint32, resources map[string]map[string]uint32) ([]byte, error) {
	id := page.GetPtr().GetID()

	var b bytes.Buffer
	b.WriteString("<<")

	for _, key := range page.Keys() {
		switch key {
		case "Contents", "Resources":
			continue
		}
		b.WriteString("\n  ")
		WriteName(&b, key)
		b.WriteByte(' ')
		if err := writeValue(&b, id, page.Key(key)); err != nil {
			return nil, fmt.Errorf("failed to write /%s: %w", key, err)
		}
	}

	b.WriteString("\n  /Contents [")
	b.WriteString(Ref(c.saveStateID))
	if err := writeContents(&b, id, page.Key("Contents")); err != nil {
		return nil, err
	}
	b.WriteByte(' ')
	b.WriteString(Ref(c.restoreStateID))
	b.WriteByte(' ')
	b.WriteString(Ref(contentID))
	b.WriteString("]")

	b.WriteString("\n  /Resources ")
	if err := writeResources(&b, inherited(page, "Resources"), resources); err != nil {
		return nil, err
	}

	b.WriteString("\n>>")
	return b.Bytes(), nil
}

// writeContents writes the references of the existing content streams.
func writeContents(b *bytes.Buffer, pageID uint32, contents pdf.Value) error {
	switch contents.Kind() {
	case pdf.Null:
		return nil
	case pdf.Array:
		for i := 0; i < contents.Len(); i++ {
			b.WriteByte(' ')
			if err := writeValue(b, pageID, contents.Index(i)); err != nil {
				return fmt.Errorf("failed to write /Contents entry %d: %w", i, err)
			}
		}
		return nil
	default:
		b.WriteByte(' ')
		if err := writeValue(b, pageID, contents); err != nil {
			return fmt.Errorf("failed to write /Contents: %w", err)
		}
		return nil
	}
}

// writeResources writes a resource dictionary holding everything in
// existing plus additions. A category present in both is merged key by key;
// additions win on a name clash. Direct values report the object that
// contains them as their pointer, which may be an ancestor /Pages node when
// the dictionary is inherited.
func writeResources(b *bytes.Buffer, existing pdf.Value, additions map[string]map[string]uint32) error {
	b.WriteString("<<")

	written := make(map[string]bool)
	if existing.Kind() == pdf.Dict {
		owner := existing.GetPtr().GetID()
		for _, key := range existing.Keys() {
			b.WriteByte(' ')
			WriteName(b, key)
			b.WriteByte(' ')

			add, ok := additions[key]
			if !ok {
				if err := writeValue(b, owner, existing.Key(key)); err != nil {
					return fmt.Errorf("failed to write resource /%s: %w", key, err)
				}
				continue
			}

			written[key] = true
			if err := writeMergedCategory(b, existing.Key(key), add); err != nil {
				return fmt.Errorf("failed to merge resource /%s: %w", key, err)
			}
		}
	}

	categories := make([]string, 0, len(additions))
	for category := range additions {
		if !written[category] {
			categories = append(categories, category)
		}
	}
	slices.Sort(categories)

	for _, category := range categories {
		b.WriteByte(' ')
		WriteName(b, category)
		b.WriteByte(' ')
		if err := writeMergedCategory(b, pdf.Value{}, additions[category]); err != nil {
			return err
		}
	}

	b.WriteString(" >>")
	return nil
}

func writeMergedCategory(b *bytes.Buffer, existing pdf.Value, add map[string]uint32) error {
	b.WriteString("<<")

	if existing.Kind() == pdf.Dict {
		parent := existing.GetPtr().GetID()
		for _, key := range existing.Keys() {
			if _, clash := add[key]; clash {
				continue
			}
			b.WriteByte(' ')
			WriteName(b, key)
			b.WriteByte(' ')
			if err := writeValue(b, parent, existing.Key(key)); err != nil {
				return err
			}
		}
	}

	names := make([]string, 0, len(add))
	for name := range add {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		b.WriteByte(' ')
		WriteName(b, name)
		b.WriteByte(' ')
		b.WriteString(Ref(add[name]))
	}

	b.WriteString(" >>")
	return nil
}
