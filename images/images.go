// Package images decodes the raster images signers supply as data URLs.
//
// Signature, initials and image stamp values arrive as
// "data:image/<type>;base64,<payload>" strings. The package turns them into
// decoded images with a content hash used to embed each distinct image only
// once per document.
package images

import (
	"encoding/hex"
	"errors"
	"image"

	"github.com/zeebo/blake3"
)

var (
	// ErrInvalidDataURL is returned when a value is not a decodable data URL.
	ErrInvalidDataURL = errors.New("invalid image data URL")
	// ErrUnsupportedImage is returned when no registered codec decodes the bytes.
	ErrUnsupportedImage = errors.New("unsupported image data")
	// ErrDecodeTimeout is returned when decoding exceeds its deadline.
	ErrDecodeTimeout = errors.New("image decode timed out")
)

// Image is a decoded raster image ready to embed.
type Image struct {
	Name   string // Identifier, usually the owning field's ID
	Format string // Codec that decoded Data: "png", "jpeg", "webp" or "bmp"
	Data   []byte // Encoded bytes as received
	Hash   string // BLAKE3 of Data, hex encoded

	Width, Height int
	Decoded       image.Image

	// Resampled is set when Decoded was downscaled and no longer matches Data.
	Resampled bool
}

// Passthrough reports whether Data can be embedded verbatim as a DCTDecode
// stream: an unmodified baseline JPEG in a color space PDF maps directly.
func (img *Image) Passthrough() bool {
	if img.Format != "jpeg" || img.Resampled {
		return false
	}
	switch img.Decoded.(type) {
	case *image.YCbCr, *image.Gray:
		return true
	}
	return false
}

// Gray reports whether the decoded image has a single gray channel.
func (img *Image) Gray() bool {
	_, ok := img.Decoded.(*image.Gray)
	return ok
}

// HashData returns the dedup key for raw bytes or an unparsed data URL.
func HashData(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
