package fields

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aamirmursleen/Auradoc-sub003/geometry"
)

// Record is the loosely typed shape fields arrive in from the editor and the
// database. Optional keys are pointers so absent and zero can be told apart.
type Record struct {
	ID             string   `json:"id"`
	FieldType      string   `json:"fieldType"`
	PageNumber     int      `json:"pageNumber"`
	XPct           float64  `json:"xPct"`
	YPct           float64  `json:"yPct"`
	WPct           float64  `json:"wPct"`
	HPct           float64  `json:"hPct"`
	X              *float64 `json:"x,omitempty"`
	Y              *float64 `json:"y,omitempty"`
	Width          *float64 `json:"width,omitempty"`
	Height         *float64 `json:"height,omitempty"`
	Value          *string  `json:"value,omitempty"`
	FontSize       *float64 `json:"fontSize,omitempty"`
	FontBold       bool     `json:"fontBold,omitempty"`
	SignatureScale *float64 `json:"signatureScale,omitempty"`
	SignerID       string   `json:"signerId,omitempty"`
}

// RecordError describes why a single record was rejected.
type RecordError struct {
	Index int
	ID    string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("field %d (%s): %v", e.Index, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// DecodeError collects the records that could not be converted. The records
// that could are still returned alongside it.
type DecodeError struct {
	Records []*RecordError
}

func (e *DecodeError) Error() string {
	msgs := make([]string, 0, len(e.Records))
	for _, r := range e.Records {
		msgs = append(msgs, r.Error())
	}
	return fmt.Sprintf("%d invalid field(s): %s", len(e.Records), strings.Join(msgs, "; "))
}

// ErrMissingID is returned for records without an id.
var ErrMissingID = errors.New("missing field id")

// Decode reads a JSON array of records.
func Decode(r io.Reader) ([]Field, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode fields: %w", err)
	}
	return FromRecords(records)
}

// FromRecords converts records into typed fields. Invalid records are
// reported through a *DecodeError; the valid ones are returned in order.
func FromRecords(records []Record) ([]Field, error) {
	out := make([]Field, 0, len(records))
	var derr DecodeError

	for i, rec := range records {
		f, err := rec.Field()
		if err != nil {
			derr.Records = append(derr.Records, &RecordError{Index: i, ID: rec.ID, Err: err})
			continue
		}
		out = append(out, f)
	}

	if len(derr.Records) > 0 {
		return out, &derr
	}
	return out, nil
}

// Field converts one record into its variant.
func (rec Record) Field() (Field, error) {
	if rec.ID == "" {
		return nil, ErrMissingID
	}

	rect, err := geometry.NewNormalizedRect(
		pick(rec.XPct, rec.X), pick(rec.YPct, rec.Y),
		pick(rec.WPct, rec.Width), pick(rec.HPct, rec.Height),
	)
	if err != nil {
		return nil, err
	}

	h := Header{
		ID:       rec.ID,
		Type:     Type(strings.ToLower(strings.TrimSpace(rec.FieldType))),
		Page:     rec.PageNumber,
		Rect:     rect,
		SignerID: rec.SignerID,
	}

	var value string
	if rec.Value != nil {
		value = *rec.Value
	}

	switch h.Type {
	case TypeSignature, TypeInitials:
		f := Signature{Header: h, Image: value}
		if rec.SignatureScale != nil {
			f.Scale = *rec.SignatureScale
		}
		return f, nil

	case TypeStamp:
		if IsDataURL(value) {
			return Stamp{Header: h, Image: value}, nil
		}
		return Stamp{Header: h, Text: value}, nil

	case TypeCheckbox:
		return Checkbox{Header: h, Checked: value == CheckedValue}, nil

	case TypeStrikethrough:
		return Strikethrough{Header: h, Color: value, Present: rec.Value != nil}, nil

	default:
		f := Text{Header: h, Value: value, Date: h.Type == TypeDate, Bold: rec.FontBold}
		if rec.FontSize != nil {
			f.FontSize = *rec.FontSize
		}
		return f, nil
	}
}

// pick prefers the percentage key and falls back to its short alias.
func pick(pct float64, alias *float64) float64 {
	if pct == 0 && alias != nil {
		return *alias
	}
	return pct
}
