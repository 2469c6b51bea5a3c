package verify

import (
	"encoding/json"
	"io"
	"regexp"

	"github.com/aamirmursleen/Auradoc-sub003/hashing"
)

var sha256Hex = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// ReadHashResult decodes a stored fingerprint and checks that it can be
// compared.
func ReadHashResult(r io.Reader) (hashing.HashResult, error) {
	var res hashing.HashResult
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return hashing.HashResult{}, &DecodeError{Msg: "failed to decode hash result", Err: err}
	}
	if err := Validate(res); err != nil {
		return hashing.HashResult{}, err
	}
	return res, nil
}

// Validate checks the fields CompareHashes relies on.
func Validate(res hashing.HashResult) error {
	if !sha256Hex.MatchString(res.RawDataHash) {
		return &ValidationError{Field: "rawDataHash", Msg: "expected 64 hex digits"}
	}
	if res.Metadata.FileSize < 0 {
		return &ValidationError{Field: "metadata.fileSize", Msg: "must not be negative"}
	}
	if pc := res.Metadata.PageCount; pc != nil && *pc < 1 {
		return &ValidationError{Field: "metadata.pageCount", Msg: "must be at least 1"}
	}
	return nil
}
