// Package hashing fingerprints documents for later tamper checks.
package hashing

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// PDFMimeType is the media type that enables page counting.
const PDFMimeType = "application/pdf"

// DocumentMetadata describes the file a HashResult was taken from.
type DocumentMetadata struct {
	FileName     string `json:"fileName"`
	FileSize     int64  `json:"fileSize"`
	MimeType     string `json:"mimeType"`
	LastModified int64  `json:"lastModified"`
	// PageCount is set for PDFs only. It is a heuristic estimate.
	PageCount *int `json:"pageCount,omitempty"`
}

// HashResult is an integrity fingerprint. All hashes are lowercase hex
// SHA-256 digests.
type HashResult struct {
	RawDataHash  string           `json:"rawDataHash"`
	MetadataHash string           `json:"metadataHash"`
	CombinedHash string           `json:"combinedHash"`
	Metadata     DocumentMetadata `json:"metadata"`
}

// metadataRecord is the exact document hashed into MetadataHash. Field order
// is part of the fingerprint.
type metadataRecord struct {
	Size      int64  `json:"size"`
	Type      string `json:"type"`
	PageCount *int   `json:"pageCount"`
}

// ComputeHash fingerprints data. The file name and modification time are
// recorded but do not contribute to any hash.
func ComputeHash(data []byte, fileName, mimeType string, lastModified int64) HashResult {
	meta := DocumentMetadata{
		FileName:     fileName,
		FileSize:     int64(len(data)),
		MimeType:     mimeType,
		LastModified: lastModified,
	}
	if IsPDF(fileName, mimeType) {
		n := PageCount(data)
		meta.PageCount = &n
	}

	raw := sum(data)
	metaHash := MetadataHash(meta)

	return HashResult{
		RawDataHash:  raw,
		MetadataHash: metaHash,
		CombinedHash: sum([]byte(raw + metaHash)),
		Metadata:     meta,
	}
}

// ComputeHashReader reads r to the end and fingerprints the content.
func ComputeHashReader(r io.Reader, fileName, mimeType string, lastModified int64) (HashResult, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return HashResult{}, fmt.Errorf("failed to read document: %w", err)
	}
	return ComputeHash(buf.Bytes(), fileName, mimeType, lastModified), nil
}

// MetadataHash hashes the size, type and page count of meta.
func MetadataHash(meta DocumentMetadata) string {
	b, err := json.Marshal(metadataRecord{
		Size:      meta.FileSize,
		Type:      meta.MimeType,
		PageCount: meta.PageCount,
	})
	if err != nil {
		// An int64, a string and an *int always marshal.
		panic(err)
	}
	return sum(b)
}

// IsPDF reports whether the file should be treated as a PDF.
func IsPDF(fileName, mimeType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt == PDFMimeType || strings.EqualFold(filepath.Ext(fileName), ".pdf")
}

func sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
