package compose

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/digitorus/pdf"
)

// maxDepth bounds recursion into direct values; real documents nest a
// handful of levels.
const maxDepth = 64

// writeValue serializes v as it appears inside the indirect object parentID.
// The reader resolves references transparently, so a value whose pointer
// differs from its container's is written back as a reference instead of
// being inlined.
func writeValue(b *bytes.Buffer, parentID uint32, v pdf.Value) error {
	return writeValueDepth(b, parentID, v, 0)
}

func writeValueDepth(b *bytes.Buffer, parentID uint32, v pdf.Value, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("value nested deeper than %d levels", maxDepth)
	}

	if ptr := v.GetPtr(); ptr.GetID() != 0 && ptr.GetID() != parentID {
		writeRef(b, ptr.GetID(), int(ptr.GetGen()))
		return nil
	}

	switch v.Kind() {
	case pdf.Null:
		b.WriteString("null")
	case pdf.Bool:
		b.WriteString(strconv.FormatBool(v.Bool()))
	case pdf.Integer:
		b.WriteString(strconv.FormatInt(v.Int64(), 10))
	case pdf.Real:
		b.WriteString(FormatNumber(v.Float64()))
	case pdf.String:
		writeHexString(b, v.RawString())
	case pdf.Name:
		WriteName(b, v.Name())
	case pdf.Dict:
		b.WriteString("<<")
		for _, key := range v.Keys() {
			b.WriteByte(' ')
			WriteName(b, key)
			b.WriteByte(' ')
			if err := writeValueDepth(b, parentID, v.Key(key), depth+1); err != nil {
				return err
			}
		}
		b.WriteString(" >>")
	case pdf.Array:
		b.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				b.WriteByte(' ')
			}
			if err := writeValueDepth(b, parentID, v.Index(i), depth+1); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case pdf.Stream:
		return fmt.Errorf("stream cannot be written as a direct value")
	default:
		return fmt.Errorf("unknown value kind %v", v.Kind())
	}
	return nil
}

func writeRef(b *bytes.Buffer, id uint32, gen int) {
	b.WriteString(strconv.FormatUint(uint64(id), 10))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(gen))
	b.WriteString(" R")
}

// Ref formats an indirect reference to a new (generation 0) object.
func Ref(id uint32) string {
	return strconv.FormatUint(uint64(id), 10) + " 0 R"
}

func writeHexString(b *bytes.Buffer, s string) {
	b.WriteByte('<')
	b.WriteString(hex.EncodeToString([]byte(s)))
	b.WriteByte('>')
}

// WriteName writes a name object, escaping delimiters and non-regular
// bytes as #xx.
func WriteName(b *bytes.Buffer, name string) {
	b.WriteByte('/')
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < '!' || c > '~' || isDelimiter(c) || c == '#' {
			fmt.Fprintf(b, "#%02X", c)
			continue
		}
		b.WriteByte(c)
	}
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// FormatNumber writes f with at most four decimals and no trailing zeros,
// which is plenty for user space coordinates.
func FormatNumber(f float64) string {
	s := strconv.FormatFloat(f, 'f', 4, 64)
	s = trimZeros(s)
	if s == "-0" {
		return "0"
	}
	return s
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i--
	}
	return s[:i]
}
