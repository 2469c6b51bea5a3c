package images

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// DataURL is a parsed RFC 2397 data URL.
type DataURL struct {
	MediaType string
	Data      []byte
}

// Hint returns the codec suggested by the media type, or "" when the prefix
// names nothing we recognise.
func (d DataURL) Hint() string {
	switch {
	case strings.Contains(d.MediaType, "png"):
		return "png"
	case strings.Contains(d.MediaType, "jpeg"), strings.Contains(d.MediaType, "jpg"):
		return "jpeg"
	case strings.Contains(d.MediaType, "webp"):
		return "webp"
	case strings.Contains(d.MediaType, "bmp"):
		return "bmp"
	}
	return ""
}

// ParseDataURL splits and decodes a data URL. Base64 payloads tolerate
// missing padding, URL-safe alphabets and embedded whitespace, all of which
// show up in values copied out of browsers.
func ParseDataURL(s string) (DataURL, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return DataURL{}, fmt.Errorf("%w: missing data: scheme", ErrInvalidDataURL)
	}

	header, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return DataURL{}, fmt.Errorf("%w: missing comma", ErrInvalidDataURL)
	}

	params := strings.Split(header, ";")
	d := DataURL{MediaType: strings.ToLower(strings.TrimSpace(params[0]))}

	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	if !isBase64 {
		raw, err := url.PathUnescape(payload)
		if err != nil {
			return DataURL{}, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
		}
		d.Data = []byte(raw)
		return d, nil
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return DataURL{}, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	if len(data) == 0 {
		return DataURL{}, fmt.Errorf("%w: empty payload", ErrInvalidDataURL)
	}
	d.Data = data
	return d, nil
}

func decodeBase64(payload string) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, payload)

	enc := base64.RawStdEncoding
	if strings.ContainsAny(payload, "-_") {
		enc = base64.RawURLEncoding
	}
	return enc.DecodeString(strings.TrimRight(payload, "="))
}
