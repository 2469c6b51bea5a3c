package fidelity

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/digitorus/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aamirmursleen/Auradoc-sub003/config"
	"github.com/aamirmursleen/Auradoc-sub003/fields"
	"github.com/aamirmursleen/Auradoc-sub003/geometry"
	"github.com/aamirmursleen/Auradoc-sub003/images"
	inspect "github.com/aamirmursleen/Auradoc-sub003/internal/pdf"
	"github.com/aamirmursleen/Auradoc-sub003/internal/testpdf"
)

func header(id string, page int, x, y, w, h float64) fields.Header {
	return fields.Header{ID: id, Page: page, Rect: geometry.MustNormalizedRect(x, y, w, h)}
}

func reparse(t *testing.T, data []byte) *pdf.Reader {
	t.Helper()
	rdr, err := pdf.NewReader(testpdf.NewBytesReader(data), int64(len(data)))
	require.NoError(t, err)
	return rdr
}

func pageContent(t *testing.T, rdr *pdf.Reader, n int) string {
	t.Helper()
	data, err := inspect.PageContent(rdr, n)
	require.NoError(t, err)
	return string(data)
}

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestComposite_ZeroFields(t *testing.T) {
	src := testpdf.Build(testpdf.Options{Pages: []testpdf.Page{
		{Width: 612, Height: 792},
		{Width: 595, Height: 842, OriginX: 10, OriginY: 10},
	}})

	out, report, err := Composite(context.Background(), src, nil)
	require.NoError(t, err)
	assert.Equal(t, src, out)
	assert.Empty(t, report.Outcomes)
	assert.Zero(t, report.PagesUpdated)

	rdr := reparse(t, out)
	require.Equal(t, 2, rdr.NumPage())
	box := rdr.Page(2).V.Key("MediaBox")
	assert.Equal(t, float64(605), box.Index(2).Float64())
	assert.Equal(t, float64(852), box.Index(3).Float64())
}

func TestComposite_AllFieldTypes(t *testing.T) {
	src := testpdf.LetterPDF(2)
	png := testpdf.PNGDataURL(t, 40, 20)

	fs := []fields.Field{
		fields.Signature{Header: header("sig", 1, 0.1, 0.8, 0.3, 0.1), Image: png, Scale: 1.2},
		fields.Stamp{Header: header("stamp", 1, 0.6, 0.1, 0.3, 0.1), Text: "APPROVED"},
		fields.Checkbox{Header: header("box", 1, 0.5, 0.5, 0.03, 0.03), Checked: true},
		fields.Strikethrough{Header: header("strike", 2, 0.1, 0.3, 0.5, 0.02), Color: "#0000ff", Present: true},
		fields.Text{Header: header("date", 2, 0.1, 0.4, 0.2, 0.03), Value: "2024-03-05", Date: true},
		fields.Text{Header: header("name", 2, 0.1, 0.5, 0.2, 0.03), Value: "Jane Roe", Bold: true},
	}

	out, report, err := Composite(context.Background(), src, fs, quiet())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, src), "source bytes must be a prefix of the output")

	require.Len(t, report.Outcomes, len(fs))
	for i, o := range report.Outcomes {
		assert.Equal(t, fs[i].Head().ID, o.FieldID)
		assert.Equal(t, StatusRendered, o.Status, o.FieldID)
		assert.NoError(t, o.Err)
	}
	assert.Equal(t, 2, report.PagesUpdated)

	rdr := reparse(t, out)
	require.Equal(t, 2, rdr.NumPage())

	first := pageContent(t, rdr, 1)
	assert.Contains(t, first, "(Page 1) Tj")
	assert.Contains(t, first, " Do\n")
	assert.Contains(t, first, "(APPROVED) Tj")
	assert.Contains(t, first, "0.1333 0.7725 0.3686 rg", "checkbox green fill")

	second := pageContent(t, rdr, 2)
	assert.Contains(t, second, "(03/05/2024) Tj")
	assert.Contains(t, second, "(Jane Roe) Tj")
	assert.Contains(t, second, "0 0 1 RG\n", "blue strikethrough")
	assert.Contains(t, second, "3 w\n")

	fonts, err := inspect.PageFonts(rdr, 2)
	require.NoError(t, err)
	var names []string
	for _, f := range fonts {
		names = append(names, f.BaseFont)
	}
	assert.ElementsMatch(t, []string{"Helvetica", "Helvetica", "Helvetica-Bold"}, names)
}

func TestComposite_BadImagePlaceholder(t *testing.T) {
	src := testpdf.LetterPDF(1)
	fs := []fields.Field{
		fields.Signature{Header: header("broken", 1, 0.1, 0.1, 0.2, 0.1), Image: "data:image/png;base64,AAAA"},
		fields.Text{Header: header("after", 1, 0.1, 0.3, 0.2, 0.05), Value: "still here"},
	}

	var logs bytes.Buffer
	out, report, err := Composite(context.Background(), src, fs,
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	require.NoError(t, err)

	broken := report.Outcomes[0]
	assert.Equal(t, StatusPlaceholder, broken.Status)
	var ferr *FieldError
	require.True(t, errors.As(broken.Err, &ferr))
	assert.Equal(t, "broken", ferr.FieldID)
	assert.Equal(t, 1, ferr.Page)

	assert.Equal(t, StatusRendered, report.Outcomes[1].Status)
	assert.Len(t, report.Errors(), 1)

	content := pageContent(t, reparse(t, out), 1)
	assert.Contains(t, content, "0.8627 0.149 0.149 RG", "red placeholder border")
	assert.Contains(t, content, "(still here) Tj")

	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "field=broken")
}

func TestComposite_SkippedFields(t *testing.T) {
	src := testpdf.LetterPDF(2)
	rect := geometry.MustNormalizedRect(0.1, 0.1, 0.2, 0.05)

	fs := []fields.Field{
		fields.Text{Header: fields.Header{ID: "far", Page: 3, Rect: rect}, Value: "x"},
		fields.Text{Header: fields.Header{ID: "zero", Page: 0, Rect: rect}, Value: "x"},
		fields.Text{Header: fields.Header{ID: "pending", Page: 1, Rect: rect, SignerID: "bob"}, Value: "x"},
		fields.Text{Header: fields.Header{ID: "done", Page: 1, Rect: rect, SignerID: "alice"}, Value: "alice"},
		fields.Checkbox{Header: fields.Header{ID: "unchecked", Page: 1, Rect: rect}},
		fields.Signature{Header: fields.Header{ID: "unsigned", Page: 1, Rect: rect}},
	}

	out, report, err := Composite(context.Background(), src, fs, WithCompletedSigners("alice"), quiet())
	require.NoError(t, err)

	want := map[string]Status{
		"far":       StatusSkipped,
		"zero":      StatusSkipped,
		"pending":   StatusSkipped,
		"done":      StatusRendered,
		"unchecked": StatusSkipped,
		"unsigned":  StatusSkipped,
	}
	for _, o := range report.Outcomes {
		assert.Equal(t, want[o.FieldID], o.Status, o.FieldID)
	}
	assert.ErrorIs(t, report.Outcomes[0].Err, ErrPageOutOfRange)
	assert.ErrorIs(t, report.Outcomes[1].Err, ErrPageOutOfRange)
	assert.NoError(t, report.Outcomes[2].Err)
	assert.Equal(t, 1, report.PagesUpdated)

	rdr := reparse(t, out)
	assert.Contains(t, pageContent(t, rdr, 1), "(alice) Tj")
	assert.NotContains(t, pageContent(t, rdr, 1), "(x) Tj")
	assert.Equal(t, pdf.Stream, rdr.Page(2).V.Key("Contents").Kind(), "page without fields is untouched")
}

func TestComposite_SharedSignatureImage(t *testing.T) {
	src := testpdf.LetterPDF(1)
	shared := testpdf.PNGDataURL(t, 30, 10)
	own := testpdf.JPEGDataURL(t, 16, 16)

	fs := []fields.Field{
		fields.Signature{Header: header("initials", 1, 0.1, 0.1, 0.1, 0.05)},
		fields.Signature{Header: header("signature", 1, 0.1, 0.3, 0.3, 0.1), Image: own},
	}

	out, report, err := Composite(context.Background(), src, fs, WithSignatureImage(shared), quiet())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Count(StatusRendered))

	xobjects := reparse(t, out).Page(1).V.Key("Resources").Key("XObject")
	require.Len(t, xobjects.Keys(), 2)

	var filters []string
	for _, k := range xobjects.Keys() {
		filters = append(filters, xobjects.Key(k).Key("Filter").Name())
	}
	assert.ElementsMatch(t, []string{"FlateDecode", "DCTDecode"}, filters,
		"the field's own JPEG wins over the shared PNG")
}

func TestComposite_NotIdempotent(t *testing.T) {
	src := testpdf.LetterPDF(1)
	fs := []fields.Field{
		fields.Text{Header: header("name", 1, 0.1, 0.1, 0.3, 0.05), Value: "again"},
	}

	once, err := CompositeFields(src, fs)
	require.NoError(t, err)
	twice, err := CompositeFields(once, fs)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(twice, once))
	content := pageContent(t, reparse(t, twice), 1)
	assert.Equal(t, 2, strings.Count(content, "(again) Tj"))
}

func TestComposite_DeduplicatesImages(t *testing.T) {
	src := testpdf.LetterPDF(2)
	png := testpdf.PNGDataURL(t, 20, 20)

	var fs []fields.Field
	for i, page := range []int{1, 1, 2} {
		fs = append(fs, fields.Signature{Header: header(string(rune('a'+i)), page, 0.1, 0.1+0.2*float64(i), 0.2, 0.1), Image: png})
	}

	out, report, err := Composite(context.Background(), src, fs,
		WithConfig(func() config.Engine {
			e := config.Defaults().Engine
			e.Workers = 2
			return e
		}()), quiet())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Count(StatusRendered))

	rdr := reparse(t, out)
	first, err := inspect.PageXObjects(rdr, 1)
	require.NoError(t, err)
	second, err := inspect.PageXObjects(rdr, 2)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID, "one image object shared by every page")
}

func TestComposite_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fs := []fields.Field{
		fields.Signature{Header: header("sig", 1, 0.1, 0.1, 0.2, 0.1), Image: testpdf.PNGDataURL(t, 4, 4)},
	}
	_, _, err := Composite(ctx, testpdf.LetterPDF(1), fs, quiet())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComposite_FatalErrors(t *testing.T) {
	_, _, err := Composite(context.Background(), []byte("not a pdf"), nil,
		WithConfig(config.Engine{Repair: false}))
	assert.ErrorIs(t, err, ErrCorruptDocument)

	_, err = CompositeFields(nil, nil)
	assert.ErrorIs(t, err, ErrCorruptDocument)
}

func encrypt(t *testing.T, src []byte, userPW string) []byte {
	t.Helper()
	api.DisableConfigDir()

	var out bytes.Buffer
	conf := model.NewAESConfiguration(userPW, "owner-secret", 128)
	if err := api.Encrypt(bytes.NewReader(src), &out, conf); err != nil {
		t.Skipf("fixture could not be encrypted: %v", err)
	}
	return out.Bytes()
}

func TestComposite_UserPassword(t *testing.T) {
	src := encrypt(t, testpdf.LetterPDF(1), "user-secret")

	_, _, err := Composite(context.Background(), src, nil, quiet())
	assert.ErrorIs(t, err, ErrPasswordRequired)
}

func TestComposite_OwnerPasswordOnly(t *testing.T) {
	src := encrypt(t, testpdf.LetterPDF(1), "")
	fs := []fields.Field{
		fields.Text{Header: header("name", 1, 0.1, 0.1, 0.3, 0.05), Value: "opened"},
	}

	out, report, err := Composite(context.Background(), src, fs, quiet())
	require.NoError(t, err)
	assert.True(t, report.Decrypted)
	assert.Equal(t, StatusRendered, report.Outcomes[0].Status)
	assert.Contains(t, pageContent(t, reparse(t, out), 1), "(opened) Tj")
}

// slowMagic prefixes images that the codec registered below takes seconds
// to decode.
const slowMagic = "SLOWIMG"

func init() {
	image.RegisterFormat("slow", slowMagic, func(io.Reader) (image.Image, error) {
		time.Sleep(2 * time.Second)
		return nil, errors.New("slow codec gave up")
	}, func(io.Reader) (image.Config, error) {
		return image.Config{}, errors.New("slow codec has no config")
	})
}

func slowDataURL() string {
	return testpdf.DataURL("image/x-slow", []byte(slowMagic+"payload"))
}

func TestDecodeImages_Timeout(t *testing.T) {
	tasks := []*task{
		{field: fields.Signature{Header: header("slow", 1, 0, 0, 0.1, 0.1)}, imageURL: slowDataURL()},
		nil,
		{field: fields.Signature{Header: header("fast", 1, 0, 0.5, 0.1, 0.1)}, imageURL: testpdf.PNGDataURL(t, 8, 8)},
	}
	engine := config.Defaults().Engine
	engine.Workers = 1
	engine.DecodeTimeout = 50 * time.Millisecond
	o := newOptions([]Option{WithConfig(engine)})

	decodeImages(context.Background(), tasks, o)
	assert.ErrorIs(t, tasks[0].imgErr, images.ErrDecodeTimeout)
	assert.Nil(t, tasks[0].img)
	assert.NoError(t, tasks[2].imgErr)
	assert.NotNil(t, tasks[2].img)
}

func TestComposite_DecodeTimeoutPlaceholder(t *testing.T) {
	src := testpdf.LetterPDF(1)
	fs := []fields.Field{
		fields.Signature{Header: header("slow", 1, 0.1, 0.1, 0.2, 0.1), Image: slowDataURL()},
		fields.Text{Header: header("name", 1, 0.1, 0.5, 0.3, 0.05), Value: "still here"},
	}
	engine := config.Defaults().Engine
	engine.DecodeTimeout = 50 * time.Millisecond

	out, report, err := Composite(context.Background(), src, fs, WithConfig(engine), quiet())
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 2)

	assert.Equal(t, StatusPlaceholder, report.Outcomes[0].Status)
	assert.ErrorIs(t, report.Outcomes[0].Err, images.ErrDecodeTimeout)
	var ferr *FieldError
	require.ErrorAs(t, report.Outcomes[0].Err, &ferr)
	assert.Equal(t, "slow", ferr.FieldID)

	assert.Equal(t, StatusRendered, report.Outcomes[1].Status)
	content := pageContent(t, reparse(t, out), 1)
	assert.Contains(t, content, "0.8627 0.149 0.149 RG", "red placeholder border")
	assert.Contains(t, content, "(still here) Tj")
}

func TestWithConfig_ReplacesEngine(t *testing.T) {
	o := newOptions([]Option{WithConfig(config.Engine{Workers: 1})})
	assert.Equal(t, 1, o.engine.Workers)
	assert.Equal(t, config.Defaults().Engine.DecodeTimeout, o.engine.DecodeTimeout)
	assert.Zero(t, o.engine.CompressLevel)
	assert.Zero(t, o.engine.MaxImageDimension)
	assert.False(t, o.engine.Repair)

	o = newOptions(nil)
	assert.Equal(t, config.Defaults().Engine, o.engine)
}
