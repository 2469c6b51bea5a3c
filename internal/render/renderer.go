package render

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/aamirmursleen/Auradoc-sub003/compose"
	"github.com/aamirmursleen/Auradoc-sub003/fonts"
	"github.com/aamirmursleen/Auradoc-sub003/images"
)

// Document turns elements into page edits, embedding each distinct image
// and font once per update.
type Document struct {
	ctx *compose.Context

	images map[string]uint32
	fonts  map[*fonts.Font]uint32
}

// NewDocument returns a renderer writing objects into ctx.
func NewDocument(ctx *compose.Context) *Document {
	return &Document{
		ctx:    ctx,
		images: make(map[string]uint32),
		fonts:  make(map[*fonts.Font]uint32),
	}
}

// Page collects the drawing for one page.
type Page struct {
	doc    *Document
	edit   compose.PageEdit
	stream bytes.Buffer

	// added holds resources first referenced by the Draw call in progress.
	added []resource
}

type resource struct {
	category, name string
}

// Page starts drawing on page number n.
func (d *Document) Page(n int) *Page {
	return &Page{doc: d, edit: compose.PageEdit{Number: n}}
}

// Draw appends elements to the page in order. On error the operators and
// resource references added by this call are discarded.
func (p *Page) Draw(elements ...Element) error {
	mark := p.stream.Len()
	p.added = p.added[:0]
	for _, el := range elements {
		if err := p.draw(el); err != nil {
			p.stream.Truncate(mark)
			for _, r := range p.added {
				delete(p.edit.Resources[r.category], r.name)
				if len(p.edit.Resources[r.category]) == 0 {
					delete(p.edit.Resources, r.category)
				}
			}
			return err
		}
	}
	return nil
}

func (p *Page) addResource(category, name string, id uint32) {
	if _, ok := p.edit.Resources[category][name]; !ok {
		p.added = append(p.added, resource{category, name})
	}
	p.edit.AddResource(category, name, id)
}

// Empty reports whether nothing has been drawn.
func (p *Page) Empty() bool {
	return p.stream.Len() == 0
}

// Content returns the operators drawn so far.
func (p *Page) Content() []byte {
	return p.stream.Bytes()
}

// Apply writes the page's drawing into the update. Pages with nothing drawn
// are left untouched.
func (p *Page) Apply() error {
	if p.Empty() {
		return nil
	}
	p.edit.Content = p.stream.Bytes()
	return p.doc.ctx.ApplyPage(&p.edit)
}

func (p *Page) draw(el Element) error {
	s := &p.stream
	switch e := el.(type) {
	case ImageElement:
		id, err := p.doc.RegisterImage(e.Image)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("AuraIm%d", id)
		p.addResource(compose.ResourceXObject, name, id)

		s.WriteString("q\n")
		fmt.Fprintf(s, "%s 0 0 %s %s %s cm\n", num(e.Width), num(e.Height), num(e.X), num(e.Y))
		fmt.Fprintf(s, "/%s Do\n", name)
		s.WriteString("Q\n")

	case TextElement:
		font := e.Font
		if font == nil {
			font = fonts.Standard(fonts.Helvetica)
		}
		id, err := p.doc.RegisterFont(font)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("AuraF%d", id)
		p.addResource(compose.ResourceFont, name, id)

		s.WriteString("q\nBT\n")
		fmt.Fprintf(s, "/%s %s Tf\n", name, num(e.Size))
		fmt.Fprintf(s, "%s rg\n", e.Color.operands())
		fmt.Fprintf(s, "%s %s Td\n", num(e.X), num(e.Y))
		fmt.Fprintf(s, "%s Tj\n", fonts.Literal(e.Content))
		s.WriteString("ET\nQ\n")

	case ShapeElement:
		s.WriteString("q\n")
		if e.StrokeWidth > 0 {
			fmt.Fprintf(s, "%s w\n", num(e.StrokeWidth))
		}
		if e.FillColor != nil {
			fmt.Fprintf(s, "%s rg\n", e.FillColor.operands())
		}
		if e.StrokeColor != nil {
			fmt.Fprintf(s, "%s RG\n", e.StrokeColor.operands())
		}
		fmt.Fprintf(s, "%s %s %s %s re\n", num(e.X), num(e.Y), num(e.Width), num(e.Height))
		switch {
		case e.FillColor != nil && e.StrokeColor != nil:
			s.WriteString("B\n")
		case e.FillColor != nil:
			s.WriteString("f\n")
		case e.StrokeColor != nil:
			s.WriteString("S\n")
		default:
			s.WriteString("n\n")
		}
		s.WriteString("Q\n")

	case LineElement:
		s.WriteString("q\n")
		fmt.Fprintf(s, "%s w\n", num(e.StrokeWidth))
		fmt.Fprintf(s, "%s RG\n", e.StrokeColor.operands())
		fmt.Fprintf(s, "%s %s m\n", num(e.X1), num(e.Y1))
		fmt.Fprintf(s, "%s %s l\n", num(e.X2), num(e.Y2))
		s.WriteString("S\nQ\n")

	case PathElement:
		if len(e.Points) < 2 {
			return nil
		}
		s.WriteString("q\n1 J 1 j\n")
		fmt.Fprintf(s, "%s w\n", num(e.StrokeWidth))
		fmt.Fprintf(s, "%s RG\n", e.StrokeColor.operands())
		fmt.Fprintf(s, "%s %s m\n", num(e.Points[0].X), num(e.Points[0].Y))
		for _, pt := range e.Points[1:] {
			fmt.Fprintf(s, "%s %s l\n", num(pt.X), num(pt.Y))
		}
		s.WriteString("S\nQ\n")

	case RotatedGroup:
		a, b, c, d, tx, ty := RotationMatrix(e.Pivot, e.Degrees)
		s.WriteString("q\n")
		fmt.Fprintf(s, "%s %s %s %s %s %s cm\n", num(a), num(b), num(c), num(d), num(tx), num(ty))
		for _, child := range e.Elements {
			if err := p.draw(child); err != nil {
				return err
			}
		}
		s.WriteString("Q\n")

	default:
		return fmt.Errorf("unsupported element %T", el)
	}
	return nil
}

// RotationMatrix returns the cm operands rotating by degrees about pivot.
func RotationMatrix(pivot Point, degrees float64) (a, b, c, d, tx, ty float64) {
	rad := degrees * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	tx = pivot.X - pivot.X*cos + pivot.Y*sin
	ty = pivot.Y - pivot.X*sin - pivot.Y*cos
	return cos, sin, -sin, cos, tx, ty
}

func (c Color) operands() string {
	return fmt.Sprintf("%s %s %s", num(float64(c.R)/255), num(float64(c.G)/255), num(float64(c.B)/255))
}

func num(f float64) string {
	return compose.FormatNumber(f)
}

// RegisterImage embeds img as an image XObject, once per distinct content.
// Baseline JPEGs are embedded as-is with DCTDecode; everything else is
// written as Flate compressed RGB with an SMask when any pixel is
// translucent.
func (d *Document) RegisterImage(img *images.Image) (uint32, error) {
	if img == nil || img.Decoded == nil {
		return 0, fmt.Errorf("invalid image data")
	}
	key := img.Hash
	if img.Resampled {
		key += fmt.Sprintf("@%dx%d", img.Width, img.Height)
	}
	if id, ok := d.images[key]; ok {
		return id, nil
	}

	id, err := d.writeImage(img)
	if err != nil {
		return 0, fmt.Errorf("failed to embed image %s: %w", img.Name, err)
	}
	d.images[key] = id
	return id, nil
}

func (d *Document) writeImage(img *images.Image) (uint32, error) {
	if img.Passthrough() {
		colorSpace := "/DeviceRGB"
		if img.Gray() {
			colorSpace = "/DeviceGray"
		}
		dict := fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace %s /BitsPerComponent 8 /Filter /DCTDecode",
			img.Width, img.Height, colorSpace)
		return d.ctx.AddStream(dict, img.Data, false)
	}

	rgb, alpha, hasAlpha := splitChannels(img.Decoded)

	var smaskID uint32
	if hasAlpha {
		dict := fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceGray /BitsPerComponent 8",
			img.Width, img.Height)
		id, err := d.ctx.AddStream(dict, alpha, true)
		if err != nil {
			return 0, fmt.Errorf("failed to add soft mask: %w", err)
		}
		smaskID = id
	}

	dict := fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceRGB /BitsPerComponent 8",
		img.Width, img.Height)
	if smaskID != 0 {
		dict += " /SMask " + compose.Ref(smaskID)
	}
	return d.ctx.AddStream(dict, rgb, true)
}

// splitChannels returns 8-bit RGB samples, alpha samples and whether any
// pixel is not fully opaque. Color is un-premultiplied so translucent
// edges keep their hue under the soft mask.
func splitChannels(src image.Image) (rgb, alpha []byte, hasAlpha bool) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	rgb = make([]byte, 0, w*h*3)
	alpha = make([]byte, 0, w*h)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := src.At(x, y).RGBA()
			if a < 0xffff {
				hasAlpha = true
			}
			if a > 0 && a < 0xffff {
				r = r * 0xffff / a
				g = g * 0xffff / a
				bl = bl * 0xffff / a
			}
			rgb = append(rgb, uint8(r>>8), uint8(g>>8), uint8(bl>>8))
			alpha = append(alpha, uint8(a>>8))
		}
	}
	return rgb, alpha, hasAlpha
}

// RegisterFont adds the font dictionary once per update.
func (d *Document) RegisterFont(f *fonts.Font) (uint32, error) {
	if id, ok := d.fonts[f]; ok {
		return id, nil
	}
	id, err := d.ctx.AddObject([]byte(f.Dict()))
	if err != nil {
		return 0, fmt.Errorf("failed to add font %s: %w", f.Name, err)
	}
	d.fonts[f] = id
	return id, nil
}
