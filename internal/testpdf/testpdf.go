// Package testpdf builds small PDF documents and images in memory for tests.
package testpdf

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"testing"
)

// BytesReader implements io.ReaderAt for in-memory byte slices.
type BytesReader struct {
	Data []byte
}

func NewBytesReader(data []byte) *BytesReader {
	return &BytesReader{Data: data}
}

func (r *BytesReader) ReadAt(p []byte, off int64) (n int, err error) {
	if off >= int64(len(r.Data)) {
		return 0, io.EOF
	}
	n = copy(p, r.Data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Page describes one page of a generated document.
type Page struct {
	Width, Height float64
	// OriginX and OriginY offset the MediaBox lower-left corner.
	OriginX, OriginY float64
	// Content overrides the default "Page N" text.
	Content string
}

// Options controls document generation.
type Options struct {
	Pages []Page

	// XrefStream writes a PDF 1.5 cross-reference stream instead of a table.
	XrefStream bool
	// InheritMediaBox puts the first page's MediaBox on the /Pages node only.
	InheritMediaBox bool
	// InheritResources puts the font resources on the /Pages node only.
	InheritResources bool
	// ContentArray wraps each page's content stream reference in an array.
	ContentArray bool
}

// Letter returns Options for n US Letter pages.
func Letter(n int) Options {
	pages := make([]Page, n)
	for i := range pages {
		pages[i] = Page{Width: 612, Height: 792}
	}
	return Options{Pages: pages}
}

// LetterPDF builds n US Letter pages with a classic xref table.
func LetterPDF(n int) []byte {
	return Build(Letter(n))
}

type builder struct {
	buf     bytes.Buffer
	offsets []int64 // index i holds the offset of object i+1
}

func (b *builder) object(body string) {
	id := len(b.offsets) + 1
	b.offsets = append(b.offsets, int64(b.buf.Len()))
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nendobj\n", id, body)
}

func stream(dict, data string) string {
	if dict != "" {
		dict += " "
	}
	return fmt.Sprintf("<< %s/Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
}

// Build renders a document. Object numbers are fixed: 1 catalog, 2 page
// tree, 3 font, then a page and its content stream per page.
func Build(opts Options) []byte {
	if len(opts.Pages) == 0 {
		opts.Pages = Letter(1).Pages
	}

	var b builder
	if opts.XrefStream {
		b.buf.WriteString("%PDF-1.5\n%\xe2\xe3\xcf\xd3\n")
	} else {
		b.buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	}

	const fontResources = "<< /Font << /F1 3 0 R >> >>"

	kids := ""
	for i := range opts.Pages {
		if i > 0 {
			kids += " "
		}
		kids += fmt.Sprintf("%d 0 R", 4+2*i)
	}

	pages := fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d", kids, len(opts.Pages))
	if opts.InheritMediaBox {
		pages += " /MediaBox " + mediaBox(opts.Pages[0])
	}
	if opts.InheritResources {
		pages += " /Resources " + fontResources
	}
	pages += " >>"

	b.object("<< /Type /Catalog /Pages 2 0 R >>")
	b.object(pages)
	b.object("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, p := range opts.Pages {
		contentID := 5 + 2*i
		contents := fmt.Sprintf("%d 0 R", contentID)
		if opts.ContentArray {
			contents = "[" + contents + "]"
		}

		page := "<< /Type /Page /Parent 2 0 R"
		if !opts.InheritMediaBox {
			page += " /MediaBox " + mediaBox(p)
		}
		if !opts.InheritResources {
			page += " /Resources " + fontResources
		}
		page += " /Contents " + contents + " >>"
		b.object(page)

		content := p.Content
		if content == "" {
			content = fmt.Sprintf("BT /F1 12 Tf %g %g Td (Page %d) Tj ET", p.OriginX+72, p.OriginY+p.Height-72, i+1)
		}
		b.object(stream("", content))
	}

	id := "<0123456789abcdef0123456789abcdef>"
	if opts.XrefStream {
		b.writeXrefStream(id)
	} else {
		b.writeXrefTable(id)
	}
	return b.buf.Bytes()
}

func mediaBox(p Page) string {
	return fmt.Sprintf("[%g %g %g %g]", p.OriginX, p.OriginY, p.OriginX+p.Width, p.OriginY+p.Height)
}

func (b *builder) writeXrefTable(id string) {
	start := b.buf.Len()
	size := len(b.offsets) + 1

	fmt.Fprintf(&b.buf, "xref\n0 %d\n", size)
	b.buf.WriteString("0000000000 65535 f\r\n")
	for _, off := range b.offsets {
		fmt.Fprintf(&b.buf, "%010d 00000 n\r\n", off)
	}
	fmt.Fprintf(&b.buf, "trailer\n<< /Size %d /Root 1 0 R /ID [%s %s] >>\n", size, id, id)
	fmt.Fprintf(&b.buf, "startxref\n%d\n%%%%EOF\n", start)
}

func (b *builder) writeXrefStream(id string) {
	xrefID := len(b.offsets) + 1
	start := int64(b.buf.Len())
	b.offsets = append(b.offsets, start)
	size := xrefID + 1

	var rows bytes.Buffer
	rows.Write([]byte{0, 0, 0, 0, 0, 0xff})
	for _, off := range b.offsets {
		var o [4]byte
		binary.BigEndian.PutUint32(o[:], uint32(off))
		rows.WriteByte(1)
		rows.Write(o[:])
		rows.WriteByte(0)
	}

	fmt.Fprintf(&b.buf, "%d 0 obj\n<< /Type /XRef /Size %d /W [1 4 1] /Root 1 0 R /ID [%s %s] /Length %d >>\nstream\n",
		xrefID, size, id, id, rows.Len())
	b.buf.Write(rows.Bytes())
	b.buf.WriteString("\nendstream\nendobj\n")
	fmt.Fprintf(&b.buf, "startxref\n%d\n%%%%EOF\n", start)
}

// PNG encodes a w×h image with a transparent left half.
func PNG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(0xff)
			if x < w/2 {
				a = 0
			}
			img.SetNRGBA(x, y, color.NRGBA{R: 0x10, G: 0x20, B: 0x90, A: a})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

// JPEG encodes a solid w×h image.
func JPEG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 0x20, G: 0x40, B: 0x80, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode JPEG: %v", err)
	}
	return buf.Bytes()
}

// DataURL wraps data in a base64 data URL of the given media type.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// PNGDataURL is DataURL("image/png", PNG(t, w, h)).
func PNGDataURL(t testing.TB, w, h int) string {
	return DataURL("image/png", PNG(t, w, h))
}

// JPEGDataURL is DataURL("image/jpeg", JPEG(t, w, h)).
func JPEGDataURL(t testing.TB, w, h int) string {
	return DataURL("image/jpeg", JPEG(t, w, h))
}
