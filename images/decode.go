package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	// Extra codecs reachable through image.Decode in the fallback path.
	_ "image/gif"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// DecodeOptions bounds the work done for a single image.
type DecodeOptions struct {
	// MaxDimension downsamples images whose longest side exceeds it.
	// Zero disables resampling.
	MaxDimension int
}

type decoder func([]byte) (image.Image, error)

var decoders = map[string]decoder{
	"png":  func(b []byte) (image.Image, error) { return png.Decode(bytes.NewReader(b)) },
	"jpeg": func(b []byte) (image.Image, error) { return jpeg.Decode(bytes.NewReader(b)) },
	"webp": func(b []byte) (image.Image, error) { return webp.Decode(bytes.NewReader(b)) },
	"bmp":  func(b []byte) (image.Image, error) { return bmp.Decode(bytes.NewReader(b)) },
}

// Decode parses a data URL and decodes its image. The codec hinted by the
// media type is tried first, then PNG, then JPEG, then anything registered
// with the image package. The context is checked between attempts; callers
// wanting a hard deadline should use DecodeWithTimeout.
func Decode(ctx context.Context, name, dataURL string, opts DecodeOptions) (*Image, error) {
	d, err := ParseDataURL(dataURL)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(ctx, name, d.Data, d.Hint(), opts)
}

// DecodeBytes decodes raw image bytes with an optional codec hint.
func DecodeBytes(ctx context.Context, name string, data []byte, hint string, opts DecodeOptions) (*Image, error) {
	order := []string{hint, "png", "jpeg"}

	tried := make(map[string]bool, len(order))
	for _, format := range order {
		if format == "" || tried[format] {
			continue
		}
		tried[format] = true

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dec, ok := decoders[format]
		if !ok {
			continue
		}
		decoded, err := dec(data)
		if err != nil {
			continue
		}
		return newImage(name, format, data, decoded, opts), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decoded, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return newImage(name, format, data, decoded, opts), nil
}

// DecodeWithTimeout runs Decode on its own goroutine and abandons it when
// ctx is done first. Panics inside codecs are reported as decode errors.
func DecodeWithTimeout(ctx context.Context, name, dataURL string, opts DecodeOptions) (*Image, error) {
	type result struct {
		img *Image
		err error
	}
	ch := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("%w: codec panic: %v", ErrUnsupportedImage, r)}
			}
		}()
		img, err := Decode(ctx, name, dataURL, opts)
		ch <- result{img: img, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil && ctx.Err() == context.DeadlineExceeded {
			return nil, ErrDecodeTimeout
		}
		return res.img, res.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrDecodeTimeout
		}
		return nil, ctx.Err()
	}
}

func newImage(name, format string, data []byte, decoded image.Image, opts DecodeOptions) *Image {
	img := &Image{
		Name:    name,
		Format:  format,
		Data:    data,
		Hash:    HashData(data),
		Decoded: decoded,
	}

	if opts.MaxDimension > 0 {
		if scaled, ok := downscale(decoded, opts.MaxDimension); ok {
			img.Decoded = scaled
			img.Resampled = true
		}
	}

	b := img.Decoded.Bounds()
	img.Width, img.Height = b.Dx(), b.Dy()
	return img
}

func downscale(src image.Image, max int) (image.Image, bool) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= max && h <= max {
		return src, false
	}

	var nw, nh int
	if w >= h {
		nw, nh = max, h*max/w
	} else {
		nw, nh = w*max/h, max
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst, true
}
