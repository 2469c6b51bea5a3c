package verify

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aamirmursleen/Auradoc-sub003/hashing"
	"github.com/aamirmursleen/Auradoc-sub003/internal/testpdf"
)

func TestCompareHashes_Self(t *testing.T) {
	for _, h := range []hashing.HashResult{
		hashing.ComputeHash(testpdf.LetterPDF(2), "a.pdf", hashing.PDFMimeType, 1),
		hashing.ComputeHash([]byte("plain"), "a.txt", "text/plain", 1),
		hashing.ComputeHash(nil, "", "", 0),
	} {
		res := CompareHashes(h, h)
		assert.False(t, res.IsTampered)
		assert.True(t, res.HashMatch)
		assert.True(t, res.SizeMatch)
		assert.True(t, res.TypeMatch)
		assert.True(t, res.PageCountMatch)
		assert.Empty(t, res.Differences)
		assert.Equal(t, ConfidenceHigh, res.Confidence)
	}
}

func TestCompareHashes_AppendedByte(t *testing.T) {
	original := bytes.Repeat([]byte{'A'}, 1024)
	uploaded := append(bytes.Clone(original), 'A')

	a := hashing.ComputeHash(original, "doc.bin", "application/octet-stream", 0)
	res := VerifyFile(a, uploaded, "doc.bin", "application/octet-stream", 0)

	assert.False(t, res.HashMatch)
	assert.False(t, res.SizeMatch)
	assert.True(t, res.IsTampered)
	assert.Equal(t, ConfidenceHigh, res.Confidence)

	require.Len(t, res.Differences, 2)
	assert.Equal(t, DifferenceHash, res.Differences[0].Type)
	assert.Equal(t, SeverityCritical, res.Differences[0].Severity)
	assert.Equal(t, DifferenceSize, res.Differences[1].Type)
	assert.Equal(t, SeverityHigh, res.Differences[1].Severity)
	assert.Equal(t, "1024", res.Differences[1].Before)
	assert.Equal(t, "1025", res.Differences[1].After)
	assert.Equal(t, "File size changed by +1 bytes", res.Differences[1].Description)
}

func TestCompareHashes_PageCount(t *testing.T) {
	a := hashing.ComputeHash(testpdf.LetterPDF(2), "a.pdf", hashing.PDFMimeType, 0)
	b := hashing.ComputeHash(testpdf.LetterPDF(3), "a.pdf", hashing.PDFMimeType, 0)

	res := CompareHashes(a, b)
	assert.True(t, res.IsTampered)
	assert.False(t, res.PageCountMatch)

	last := res.Differences[len(res.Differences)-1]
	assert.Equal(t, DifferencePageCount, last.Type)
	assert.Equal(t, SeverityCritical, last.Severity)
	assert.Equal(t, "2", last.Before)
	assert.Equal(t, "3", last.After)
}

func TestCompareHashes_PageCountNeedsBothSides(t *testing.T) {
	a := hashing.ComputeHash(testpdf.LetterPDF(2), "a.pdf", hashing.PDFMimeType, 0)
	b := a
	b.Metadata.PageCount = nil

	res := CompareHashes(a, b)
	assert.True(t, res.PageCountMatch)
	assert.False(t, res.IsTampered)
}

func TestCompareHashes_MetadataNeverOverridesHash(t *testing.T) {
	a := hashing.ComputeHash([]byte("same"), "a.txt", "text/plain", 0)
	b := a
	b.Metadata.MimeType = "application/pdf"
	b.Metadata.FileSize = 99

	res := CompareHashes(a, b)
	assert.False(t, res.IsTampered, "only the content hash decides")
	assert.False(t, res.TypeMatch)
	assert.False(t, res.SizeMatch)
	assert.Equal(t, ConfidenceHigh, res.Confidence)
	assert.Equal(t, "Document content matches the original; differences found in file size and file type.", res.Summary)
}

func TestCompareHashes_TypeIsCaseInsensitive(t *testing.T) {
	a := hashing.ComputeHash([]byte("x"), "a", "Application/PDF", 0)
	b := hashing.ComputeHash([]byte("x"), "a", "application/pdf", 0)
	assert.True(t, CompareHashes(a, b).TypeMatch)
}

func TestCompareHashes_TypeIgnoresParameters(t *testing.T) {
	a := hashing.ComputeHash([]byte("x"), "a.pdf", "application/pdf", 0)
	b := hashing.ComputeHash([]byte("x"), "a.pdf", "application/pdf; charset=binary", 0)

	res := CompareHashes(a, b)
	assert.True(t, res.TypeMatch)
	assert.Empty(t, res.Differences)
	assert.False(t, res.IsTampered)

	c := hashing.ComputeHash([]byte("x"), "a.pdf", "text/plain; charset=utf-8", 0)
	assert.False(t, CompareHashes(a, c).TypeMatch)
}

func TestCompareHashes_SummaryDeterministic(t *testing.T) {
	a := hashing.ComputeHash([]byte("one"), "a.pdf", hashing.PDFMimeType, 0)
	b := hashing.ComputeHash([]byte("two!"), "a.pdf", hashing.PDFMimeType, 5)

	first := CompareHashes(a, b)
	second := CompareHashes(a, b)
	assert.Equal(t, first, second)
	assert.Equal(t, "Document has been modified: content hash does not match the original; differences also found in file size.", first.Summary)

	same := CompareHashes(a, a)
	assert.Equal(t, "Document is authentic: content hash and metadata match the original.", same.Summary)

	c := hashing.ComputeHash([]byte("owt"), "a.pdf", hashing.PDFMimeType, 0)
	assert.Equal(t, "Document has been modified: content hash does not match the original.", CompareHashes(a, c).Summary)
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, confidence(nil))
	assert.Equal(t, ConfidenceMedium, confidence([]DifferenceDetail{{Severity: SeverityLow}, {Severity: SeverityMedium}}))
	assert.Equal(t, ConfidenceHigh, confidence([]DifferenceDetail{{Severity: SeverityLow}, {Severity: SeverityHigh}}))
}

func TestJoinTypes(t *testing.T) {
	diffs := []DifferenceDetail{{Type: DifferenceSize}, {Type: DifferenceMimeType}, {Type: DifferencePageCount}}
	assert.Equal(t, "file size, file type and page count", joinTypes(diffs))
	assert.Equal(t, "file size", joinTypes(diffs[:1]))
}

func TestReadHashResult(t *testing.T) {
	h := hashing.ComputeHash(testpdf.LetterPDF(1), "a.pdf", hashing.PDFMimeType, 7)
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(h))

	got, err := ReadHashResult(&buf)
	require.NoError(t, err)
	assert.Equal(t, h, got)

	_, err = ReadHashResult(strings.NewReader("{"))
	var derr *DecodeError
	assert.True(t, errors.As(err, &derr))

	_, err = ReadHashResult(strings.NewReader(`{"rawDataHash": "abc"}`))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "rawDataHash", verr.Field)

	zero := 0
	bad := h
	bad.Metadata.PageCount = &zero
	assert.Error(t, Validate(bad))
}
