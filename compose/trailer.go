package compose

import (
	"bytes"
	"fmt"
)

// size is one past the highest object number after this update.
func (c *Context) size() int64 {
	return int64(c.NextID())
}

// writeTrailerDict writes a complete << >> trailer dictionary.
func (c *Context) writeTrailerDict(b *bytes.Buffer) {
	b.WriteString("<< ")
	c.writeTrailerEntries(b)
	b.WriteString(" >>")
}

// writeTrailerEntries writes the keys shared by a trailer dictionary and an
// xref stream dictionary: Size, Root, Info, ID and Prev.
func (c *Context) writeTrailerEntries(b *bytes.Buffer) {
	trailer := c.Reader.Trailer()

	fmt.Fprintf(b, "/Size %d", c.size())

	if root := trailer.Key("Root"); !root.IsNull() {
		b.WriteString(" /Root ")
		writeRef(b, root.GetPtr().GetID(), int(root.GetPtr().GetGen()))
	}

	if info := trailer.Key("Info"); !info.IsNull() && info.GetPtr().GetID() != 0 {
		b.WriteString(" /Info ")
		writeRef(b, info.GetPtr().GetID(), int(info.GetPtr().GetGen()))
	}

	if id := trailer.Key("ID"); id.Len() == 2 {
		b.WriteString(" /ID [")
		writeHexString(b, id.Index(0).RawString())
		writeHexString(b, id.Index(1).RawString())
		b.WriteString("]")
	}

	fmt.Fprintf(b, " /Prev %d", c.Reader.XrefInformation.StartPos)
}
