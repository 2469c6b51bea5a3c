package compose

import (
	"bytes"

	"github.com/klauspost/compress/zlib"
)

// deflate compresses data for a /FlateDecode stream.
func (c *Context) deflate(data []byte) ([]byte, error) {
	return Deflate(data, c.CompressLevel)
}

// Deflate compresses data at level. Out of range levels use the default.
func Deflate(data []byte, level int) ([]byte, error) {
	if level < zlib.HuffmanOnly || level > zlib.BestCompression {
		level = zlib.DefaultCompression
	}

	var b bytes.Buffer
	w, err := zlib.NewWriterLevel(&b, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
