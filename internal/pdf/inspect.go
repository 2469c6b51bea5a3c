// Package pdf reads back the page-level structure of a document: content
// streams and the fonts and images a page references.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	pdflib "github.com/digitorus/pdf"
)

// Resource is a named entry of a page resource dictionary.
type Resource struct {
	Name string
	ID   uint32

	// BaseFont is set for fonts, Subtype for XObjects.
	BaseFont string
	Subtype  string
}

// PageInfo summarizes a single page.
type PageInfo struct {
	Number   int
	MediaBox [4]float64
	Streams  int
	Fonts    []Resource
	XObjects []Resource
}

// Open parses data with the same reader the compositor uses.
func Open(data []byte) (*pdflib.Reader, error) {
	r, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF: %w", err)
	}
	return r, nil
}

func page(r *pdflib.Reader, n int) (pdflib.Value, error) {
	if n < 1 || n > r.NumPage() {
		return pdflib.Value{}, fmt.Errorf("page %d out of range (1-%d)", n, r.NumPage())
	}
	p := r.Page(n)
	if p.V.IsNull() {
		return pdflib.Value{}, fmt.Errorf("page %d not found", n)
	}
	return p.V, nil
}

func contentStreams(v pdflib.Value) []pdflib.Value {
	contents := v.Key("Contents")
	switch contents.Kind() {
	case pdflib.Array:
		streams := make([]pdflib.Value, 0, contents.Len())
		for i := 0; i < contents.Len(); i++ {
			streams = append(streams, contents.Index(i))
		}
		return streams
	case pdflib.Stream:
		return []pdflib.Value{contents}
	}
	return nil
}

// PageContent returns the decoded content streams of page n, each followed
// by a newline.
func PageContent(r *pdflib.Reader, n int) ([]byte, error) {
	v, err := page(r, n)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for _, s := range contentStreams(v) {
		rc := s.Reader()
		_, err := io.Copy(&buf, rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to copy content stream: %w", err)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// inherited looks key up on the page and then on its ancestors.
func inherited(v pdflib.Value, key string) pdflib.Value {
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		if val := v.Key(key); !val.IsNull() {
			return val
		}
		v = v.Key("Parent")
	}
	return pdflib.Value{}
}

// resources lists the entries of the page's /Resources /<kind> dictionary,
// sorted by name.
func resources(v pdflib.Value, kind string) []Resource {
	dict := inherited(v, "Resources").Key(kind)
	if dict.IsNull() {
		return nil
	}

	keys := dict.Keys()
	sort.Strings(keys)

	out := make([]Resource, 0, len(keys))
	for _, name := range keys {
		val := dict.Key(name)
		out = append(out, Resource{
			Name:     name,
			ID:       uint32(val.GetPtr().GetID()),
			BaseFont: val.Key("BaseFont").Name(),
			Subtype:  val.Key("Subtype").Name(),
		})
	}
	return out
}

// PageFonts lists the fonts page n references.
func PageFonts(r *pdflib.Reader, n int) ([]Resource, error) {
	v, err := page(r, n)
	if err != nil {
		return nil, err
	}
	return resources(v, "Font"), nil
}

// PageXObjects lists the XObjects page n references.
func PageXObjects(r *pdflib.Reader, n int) ([]Resource, error) {
	v, err := page(r, n)
	if err != nil {
		return nil, err
	}
	return resources(v, "XObject"), nil
}

// Inspect summarizes every page of r.
func Inspect(r *pdflib.Reader) ([]PageInfo, error) {
	pages := make([]PageInfo, 0, r.NumPage())
	for n := 1; n <= r.NumPage(); n++ {
		v, err := page(r, n)
		if err != nil {
			return nil, err
		}

		info := PageInfo{
			Number:   n,
			MediaBox: [4]float64{0, 0, 612, 792},
			Streams:  len(contentStreams(v)),
			Fonts:    resources(v, "Font"),
			XObjects: resources(v, "XObject"),
		}
		if mb := inherited(v, "MediaBox"); mb.Kind() == pdflib.Array {
			for i := 0; i < 4 && i < mb.Len(); i++ {
				info.MediaBox[i] = mb.Index(i).Float64()
			}
		}
		pages = append(pages, info)
	}
	return pages, nil
}
