// Package compose writes incremental updates to an existing PDF.
//
// A Context copies the original bytes into an output buffer, then appends
// new and replacement objects after them. Finish writes the cross-reference
// section (a table or a stream, matching the source) and a trailer whose
// /Prev chains to the original, so every byte of the input remains a prefix
// of the output.
package compose

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/digitorus/pdf"
	"github.com/mattetti/filebuffer"
)

type xrefEntry struct {
	ID         uint32
	Generation int
	Offset     int64
}

// Context accumulates one incremental update.
type Context struct {
	Reader *pdf.Reader
	Output *filebuffer.Buffer

	// CompressLevel is the zlib level for new streams.
	CompressLevel int

	lastXrefID         uint32
	newXrefEntries     []xrefEntry
	updatedXrefEntries []xrefEntry
	updated            map[uint32]bool

	// q and Q wrapper streams, shared by every rewritten page.
	saveStateID    uint32
	restoreStateID uint32

	finished bool
}

// NewContext starts an update on top of data, which rdr must have parsed.
func NewContext(data []byte, rdr *pdf.Reader, compressLevel int) (*Context, error) {
	c := &Context{
		Reader:        rdr,
		Output:        filebuffer.New([]byte{}),
		CompressLevel: compressLevel,
		updated:       make(map[uint32]bool),
	}

	if _, err := io.Copy(c.Output, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to copy original document: %w", err)
	}

	// The update must start on a fresh line after %%EOF.
	if len(data) > 0 && data[len(data)-1] != '\n' {
		if _, err := c.Output.Write([]byte("\n")); err != nil {
			return nil, err
		}
	}

	size := rdr.Trailer().Key("Size").Int64()
	if n := rdr.XrefInformation.ItemCount; n > size {
		size = n
	}
	if size < 1 {
		size = 1
	}
	c.lastXrefID = uint32(size) - 1

	return c, nil
}

func (c *Context) offset() int64 {
	return int64(c.Output.Buff.Len())
}

// NextID returns the object number the next AddObject call will use.
func (c *Context) NextID() uint32 {
	return c.lastXrefID + 1 + uint32(len(c.newXrefEntries))
}

// AddObject appends a new indirect object and returns its number. body is
// the object's value without the obj/endobj wrapper.
func (c *Context) AddObject(body []byte) (uint32, error) {
	if c.finished {
		return 0, fmt.Errorf("failed to add object: update already finished")
	}

	id := c.NextID()
	entry := xrefEntry{ID: id, Offset: c.offset()}

	if err := c.writeObject(id, 0, body); err != nil {
		return 0, fmt.Errorf("failed to write object %d: %w", id, err)
	}

	c.newXrefEntries = append(c.newXrefEntries, entry)
	return id, nil
}

// UpdateObject appends a replacement for an existing object.
func (c *Context) UpdateObject(id uint32, gen int, body []byte) error {
	if c.finished {
		return fmt.Errorf("failed to update object %d: update already finished", id)
	}
	if id == 0 || id > c.lastXrefID {
		return fmt.Errorf("failed to update object %d: not part of the original document", id)
	}
	if c.updated[id] {
		return fmt.Errorf("failed to update object %d: already replaced in this update", id)
	}

	entry := xrefEntry{ID: id, Generation: gen, Offset: c.offset()}
	if err := c.writeObject(id, gen, body); err != nil {
		return fmt.Errorf("failed to write updated object %d: %w", id, err)
	}

	c.updated[id] = true
	c.updatedXrefEntries = append(c.updatedXrefEntries, entry)
	return nil
}

func (c *Context) writeObject(id uint32, gen int, body []byte) error {
	var b bytes.Buffer
	b.WriteString(strconv.FormatUint(uint64(id), 10))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(gen))
	b.WriteString(" obj\n")
	b.Write(body)
	if len(body) == 0 || body[len(body)-1] != '\n' {
		b.WriteByte('\n')
	}
	b.WriteString("endobj\n")

	_, err := c.Output.Write(b.Bytes())
	return err
}

// AddStream appends a stream object. dict holds the extra dictionary entries
// (without the enclosing << >>); /Length and, when compress is set,
// /Filter /FlateDecode are added here.
func (c *Context) AddStream(dict string, data []byte, compress bool) (uint32, error) {
	if compress {
		z, err := c.deflate(data)
		if err != nil {
			return 0, fmt.Errorf("failed to compress stream: %w", err)
		}
		data = z
		dict += " /Filter /FlateDecode"
	}
	return c.AddObject(streamObject(dict, data))
}

func streamObject(dict string, data []byte) []byte {
	var b bytes.Buffer
	b.WriteString("<<")
	if dict != "" {
		b.WriteByte(' ')
		b.WriteString(dict)
	}
	fmt.Fprintf(&b, " /Length %d >>\nstream\n", len(data))
	b.Write(data)
	b.WriteString("\nendstream")
	return b.Bytes()
}

// Finish writes the cross-reference section and trailer and returns the
// complete output. The Context cannot be used afterwards.
func (c *Context) Finish() ([]byte, error) {
	if c.finished {
		return nil, fmt.Errorf("failed to finish: update already finished")
	}

	if err := c.writeXref(); err != nil {
		return nil, fmt.Errorf("failed to write xref: %w", err)
	}
	c.finished = true

	return c.Output.Buff.Bytes(), nil
}

// Objects returns the number of objects written so far, new and replaced.
func (c *Context) Objects() int {
	return len(c.newXrefEntries) + len(c.updatedXrefEntries)
}
