package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func dataURL(mime string, b []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b)
}

func TestParseDataURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		hint    string
		data    string
		wantErr bool
	}{
		{name: "png", in: "data:image/png;base64,aGVsbG8=", hint: "png", data: "hello"},
		{name: "unpadded", in: "data:image/jpeg;base64,aGVsbG8", hint: "jpeg", data: "hello"},
		{name: "jpg alias", in: "data:image/jpg;base64,aGVsbG8=", hint: "jpeg", data: "hello"},
		{name: "whitespace", in: "data:image/png;base64,aGVs\nbG8=", hint: "png", data: "hello"},
		{name: "unknown type", in: "data:image/x-foo;base64,aGVsbG8=", hint: "", data: "hello"},
		{name: "percent encoded", in: "data:text/plain,a%20b", hint: "", data: "a b"},
		{name: "no scheme", in: "image/png;base64,aGVsbG8=", wantErr: true},
		{name: "no comma", in: "data:image/png;base64", wantErr: true},
		{name: "bad base64", in: "data:image/png;base64,***", wantErr: true},
		{name: "empty payload", in: "data:image/png;base64,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDataURL(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDataURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hint, d.Hint())
			assert.Equal(t, tt.data, string(d.Data))
		})
	}
}

func TestDecode_PNG(t *testing.T) {
	img, err := Decode(context.Background(), "sig", dataURL("image/png", pngBytes(t, 40, 20)), DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "png", img.Format)
	assert.Equal(t, 40, img.Width)
	assert.Equal(t, 20, img.Height)
	assert.False(t, img.Passthrough())
	assert.Len(t, img.Hash, 64)
}

func TestDecode_JPEGPassthrough(t *testing.T) {
	img, err := Decode(context.Background(), "sig", dataURL("image/jpeg", jpegBytes(t, 16, 8)), DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "jpeg", img.Format)
	assert.True(t, img.Passthrough())
}

func TestDecode_MislabeledFallsBack(t *testing.T) {
	// JPEG bytes announced as PNG still decode through the fallback chain.
	img, err := Decode(context.Background(), "sig", dataURL("image/png", jpegBytes(t, 8, 8)), DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "jpeg", img.Format)

	img, err = Decode(context.Background(), "sig", dataURL("image/x-unknown", pngBytes(t, 8, 8)), DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "png", img.Format)
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode(context.Background(), "sig", dataURL("image/png", []byte("not an image")), DecodeOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestDecode_Downscale(t *testing.T) {
	img, err := Decode(context.Background(), "sig", dataURL("image/jpeg", jpegBytes(t, 200, 100)), DecodeOptions{MaxDimension: 50})
	require.NoError(t, err)
	assert.True(t, img.Resampled)
	assert.Equal(t, 50, img.Width)
	assert.Equal(t, 25, img.Height)
	assert.False(t, img.Passthrough(), "resampled JPEG must be re-encoded")
}

func TestDecodeWithTimeout_Expired(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := DecodeWithTimeout(ctx, "sig", dataURL("image/png", pngBytes(t, 8, 8)), DecodeOptions{})
	assert.ErrorIs(t, err, ErrDecodeTimeout)
}

func TestCache_Dedup(t *testing.T) {
	c := NewCache(DecodeOptions{})
	u := dataURL("image/png", pngBytes(t, 4, 4))

	a, err := c.Get(context.Background(), "a", u)
	require.NoError(t, err)
	b, err := c.Get(context.Background(), "b", u)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, c.Len())

	_, err = c.Get(context.Background(), "bad", "data:image/png;base64,")
	assert.ErrorIs(t, err, ErrInvalidDataURL)
	assert.Equal(t, 2, c.Len())
}
