package fields

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aamirmursleen/Auradoc-sub003/geometry"
)

const recordsJSON = `[
  {"id": "sig", "fieldType": "signature", "pageNumber": 1, "xPct": 0.1, "yPct": 0.8, "wPct": 0.3, "hPct": 0.1,
   "value": "data:image/png;base64,AAAA", "signatureScale": 1.5, "signerId": "s1"},
  {"id": "ini", "fieldType": "Initials", "pageNumber": 2, "xPct": 0.1, "yPct": 0.1, "wPct": 0.1, "hPct": 0.05},
  {"id": "box", "fieldType": "checkbox", "pageNumber": 1, "xPct": 0.5, "yPct": 0.5, "wPct": 0.02, "hPct": 0.02, "value": "checked"},
  {"id": "box2", "fieldType": "checkbox", "pageNumber": 1, "xPct": 0.5, "yPct": 0.6, "wPct": 0.02, "hPct": 0.02, "value": "unchecked"},
  {"id": "stamp-text", "fieldType": "stamp", "pageNumber": 1, "xPct": 0.6, "yPct": 0.1, "wPct": 0.2, "hPct": 0.05, "value": "APPROVED"},
  {"id": "stamp-img", "fieldType": "stamp", "pageNumber": 1, "xPct": 0.6, "yPct": 0.2, "wPct": 0.2, "hPct": 0.05, "value": "data:image/jpeg;base64,/9j/"},
  {"id": "strike", "fieldType": "strikethrough", "pageNumber": 1, "xPct": 0.1, "yPct": 0.3, "wPct": 0.5, "hPct": 0.02, "value": "#0000ff"},
  {"id": "date", "fieldType": "date", "pageNumber": 1, "xPct": 0.1, "yPct": 0.4, "wPct": 0.2, "hPct": 0.03, "value": "2024-03-05", "fontSize": 14, "fontBold": true},
  {"id": "misc", "fieldType": "company", "pageNumber": 1, "xPct": 0.1, "yPct": 0.45, "wPct": 0.2, "hPct": 0.03, "value": "ACME"}
]`

func TestDecode_Variants(t *testing.T) {
	fs, err := Decode(strings.NewReader(recordsJSON))
	require.NoError(t, err)
	require.Len(t, fs, 9)

	sig, ok := fs[0].(Signature)
	require.True(t, ok, "expected Signature, got %T", fs[0])
	assert.Equal(t, TypeSignature, sig.Type)
	assert.Equal(t, 1.5, sig.EffectiveScale())
	assert.Equal(t, "s1", sig.SignerID)
	assert.False(t, sig.Empty())

	ini := fs[1].(Signature)
	assert.Equal(t, TypeInitials, ini.Type)
	assert.True(t, ini.Empty())
	assert.Equal(t, 1.0, ini.EffectiveScale())

	assert.True(t, fs[2].(Checkbox).Checked)
	assert.True(t, fs[3].(Checkbox).Empty())

	assert.Equal(t, "APPROVED", fs[4].(Stamp).Text)
	assert.NotEmpty(t, fs[5].(Stamp).Image)
	assert.Empty(t, fs[5].(Stamp).Text)

	strike := fs[6].(Strikethrough)
	assert.Equal(t, "#0000ff", strike.Color)
	assert.False(t, strike.Empty())

	date := fs[7].(Text)
	assert.True(t, date.Date)
	assert.True(t, date.Bold)
	assert.Equal(t, 14.0, date.FontSize)

	misc := fs[8].(Text)
	assert.False(t, misc.Date)
	assert.Equal(t, Type("company"), misc.Type)
}

func TestFromRecords_PartialFailure(t *testing.T) {
	v := "hello"
	records := []Record{
		{ID: "ok", FieldType: "text", PageNumber: 1, XPct: 0.1, YPct: 0.1, WPct: 0.1, HPct: 0.1, Value: &v},
		{ID: "bad", FieldType: "text", PageNumber: 1, XPct: 1.2, YPct: 0.1, WPct: 0.1, HPct: 0.1},
		{FieldType: "text", PageNumber: 1},
	}

	fs, err := FromRecords(records)
	require.Len(t, fs, 1)

	var derr *DecodeError
	require.True(t, errors.As(err, &derr))
	require.Len(t, derr.Records, 2)
	assert.Equal(t, 1, derr.Records[0].Index)

	var rangeErr *geometry.RangeError
	assert.True(t, errors.As(derr.Records[0], &rangeErr))
	assert.ErrorIs(t, derr.Records[1], ErrMissingID)
}

func TestStrikethrough_AbsentValue(t *testing.T) {
	f, err := Record{ID: "s", FieldType: "strikethrough", PageNumber: 1, WPct: 0.1, HPct: 0.1}.Field()
	require.NoError(t, err)
	assert.True(t, f.Empty())

	empty := ""
	f, err = Record{ID: "s", FieldType: "strikethrough", PageNumber: 1, WPct: 0.1, HPct: 0.1, Value: &empty}.Field()
	require.NoError(t, err)
	assert.False(t, f.Empty(), "an empty color still strikes with the default color")
}

func TestByPage(t *testing.T) {
	rect := geometry.MustNormalizedRect(0, 0, 0.1, 0.1)
	fs := []Field{
		Text{Header: Header{ID: "a", Page: 3, Rect: rect}},
		Text{Header: Header{ID: "b", Page: 1, Rect: rect}},
		Text{Header: Header{ID: "c", Page: 3, Rect: rect}},
	}

	pages, grouped := ByPage(fs)
	assert.Equal(t, []int{1, 3}, pages)
	require.Len(t, grouped[3], 2)
	assert.Equal(t, []int{0, 2}, grouped[3])
	assert.Equal(t, []int{1}, grouped[1])
}

func TestIsDataURL(t *testing.T) {
	assert.True(t, IsDataURL("data:image/png;base64,xx"))
	assert.True(t, IsDataURL("  data:image/jpeg;base64,xx"))
	assert.False(t, IsDataURL("data:text/plain,hello"))
	assert.False(t, IsDataURL("John Doe"))
}

func TestDecode_ShortRectKeys(t *testing.T) {
	fs, err := Decode(strings.NewReader(`[{"id": "a", "fieldType": "text", "pageNumber": 1,
		"x": 0.25, "y": 0.5, "width": 0.2, "height": 0.05, "value": "v"}]`))
	require.NoError(t, err)
	require.Len(t, fs, 1)

	x, y, w, h := fs[0].Head().Rect.Components()
	assert.Equal(t, []float64{0.25, 0.5, 0.2, 0.05}, []float64{x, y, w, h})
}
