package compose

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"
	"strconv"
)

const (
	xrefTypeTable  = "table"
	xrefTypeStream = "stream"
)

// XrefType reports how the source document stores its cross-reference
// section; the update uses the same form.
func (c *Context) XrefType() string {
	if c.Reader.XrefInformation.Type == xrefTypeStream {
		return xrefTypeStream
	}
	return xrefTypeTable
}

func (c *Context) writeXref() error {
	switch c.XrefType() {
	case xrefTypeStream:
		return c.writeXrefStream()
	default:
		return c.writeIncrXrefTable()
	}
}

// sortedEntries returns all entries of this update ordered by object number.
func (c *Context) sortedEntries() []xrefEntry {
	entries := make([]xrefEntry, 0, len(c.updatedXrefEntries)+len(c.newXrefEntries))
	entries = append(entries, c.updatedXrefEntries...)
	entries = append(entries, c.newXrefEntries...)
	slices.SortFunc(entries, func(a, b xrefEntry) int {
		return int(a.ID) - int(b.ID)
	})
	return entries
}

// subsections splits sorted entries into runs of consecutive object numbers.
func subsections(entries []xrefEntry) [][]xrefEntry {
	var runs [][]xrefEntry
	start := 0
	for i := 1; i <= len(entries); i++ {
		if i == len(entries) || entries[i].ID != entries[i-1].ID+1 {
			runs = append(runs, entries[start:i])
			start = i
		}
	}
	return runs
}

// writeIncrXrefTable writes a classic xref table followed by the trailer.
func (c *Context) writeIncrXrefTable() error {
	xrefStart := c.offset()

	var b bytes.Buffer
	b.WriteString("xref\n")
	for _, run := range subsections(c.sortedEntries()) {
		fmt.Fprintf(&b, "%d %d\n", run[0].ID, len(run))
		for _, e := range run {
			// Each entry is exactly 20 bytes including the two byte EOL.
			fmt.Fprintf(&b, "%010d %05d n\r\n", e.Offset, e.Generation)
		}
	}

	b.WriteString("trailer\n")
	c.writeTrailerDict(&b)
	b.WriteString("\n")

	if _, err := c.Output.Write(b.Bytes()); err != nil {
		return fmt.Errorf("failed to write xref table: %w", err)
	}
	return c.writeStartXref(xrefStart)
}

// writeXrefStream writes a PDF 1.5 cross-reference stream. The stream
// object lists itself, so its number and offset are fixed before the
// entries are encoded.
func (c *Context) writeXrefStream() error {
	id := c.NextID()
	xrefStart := c.offset()
	c.newXrefEntries = append(c.newXrefEntries, xrefEntry{ID: id, Offset: xrefStart})

	entries := c.sortedEntries()

	var rows bytes.Buffer
	for _, e := range entries {
		writeXrefStreamLine(&rows, 1, e.Offset, byte(e.Generation))
	}

	data, err := c.deflate(rows.Bytes())
	if err != nil {
		return fmt.Errorf("failed to encode xref stream: %w", err)
	}

	var index []string
	for _, run := range subsections(entries) {
		index = append(index, strconv.FormatUint(uint64(run[0].ID), 10), strconv.Itoa(len(run)))
	}

	var dict bytes.Buffer
	dict.WriteString("/Type /XRef /W [1 4 1] /Index [")
	for i, n := range index {
		if i > 0 {
			dict.WriteByte(' ')
		}
		dict.WriteString(n)
	}
	dict.WriteString("] ")
	c.writeTrailerEntries(&dict)
	dict.WriteString(" /Filter /FlateDecode")

	if err := c.writeObject(id, 0, streamObject(dict.String(), data)); err != nil {
		return fmt.Errorf("failed to write xref stream object: %w", err)
	}
	return c.writeStartXref(xrefStart)
}

// writeXrefStreamLine writes one type/offset/generation row for W [1 4 1].
func writeXrefStreamLine(b *bytes.Buffer, xreftype byte, offset int64, gen byte) {
	b.WriteByte(xreftype)

	var off [4]byte
	binary.BigEndian.PutUint32(off[:], uint32(offset))
	b.Write(off[:])

	b.WriteByte(gen)
}

func (c *Context) writeStartXref(start int64) error {
	_, err := fmt.Fprintf(c.Output, "startxref\n%d\n%%%%EOF\n", start)
	return err
}
