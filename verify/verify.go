// Package verify compares document fingerprints to detect tampering.
package verify

import (
	"fmt"
	"mime"
	"strconv"
	"strings"

	"github.com/aamirmursleen/Auradoc-sub003/hashing"
)

// CompareHashes compares an uploaded fingerprint against the original. The
// content hash alone decides IsTampered; size, type and page count are
// reported as corroborating evidence.
func CompareHashes(original, uploaded hashing.HashResult) ComparisonResult {
	res := ComparisonResult{
		HashMatch:      strings.EqualFold(original.RawDataHash, uploaded.RawDataHash),
		SizeMatch:      original.Metadata.FileSize == uploaded.Metadata.FileSize,
		TypeMatch:      normalizeType(original.Metadata.MimeType) == normalizeType(uploaded.Metadata.MimeType),
		PageCountMatch: true,
		Differences:    []DifferenceDetail{},
	}

	if !res.HashMatch {
		res.Differences = append(res.Differences, DifferenceDetail{
			Type:        DifferenceHash,
			Description: "Content hash does not match the original",
			Before:      original.RawDataHash,
			After:       uploaded.RawDataHash,
			Severity:    SeverityCritical,
		})
	}

	if !res.SizeMatch {
		delta := uploaded.Metadata.FileSize - original.Metadata.FileSize
		res.Differences = append(res.Differences, DifferenceDetail{
			Type:        DifferenceSize,
			Description: fmt.Sprintf("File size changed by %+d bytes", delta),
			Before:      strconv.FormatInt(original.Metadata.FileSize, 10),
			After:       strconv.FormatInt(uploaded.Metadata.FileSize, 10),
			Severity:    SeverityHigh,
		})
	}

	if !res.TypeMatch {
		res.Differences = append(res.Differences, DifferenceDetail{
			Type:        DifferenceMimeType,
			Description: "File type changed",
			Before:      original.Metadata.MimeType,
			After:       uploaded.Metadata.MimeType,
			Severity:    SeverityHigh,
		})
	}

	if a, b := original.Metadata.PageCount, uploaded.Metadata.PageCount; a != nil && b != nil && *a != *b {
		res.PageCountMatch = false
		res.Differences = append(res.Differences, DifferenceDetail{
			Type:        DifferencePageCount,
			Description: fmt.Sprintf("Page count changed from %d to %d", *a, *b),
			Before:      strconv.Itoa(*a),
			After:       strconv.Itoa(*b),
			Severity:    SeverityCritical,
		})
	}

	res.IsTampered = !res.HashMatch
	res.Confidence = confidence(res.Differences)
	res.Summary = summary(res)
	return res
}

// VerifyFile fingerprints data and compares it against original.
func VerifyFile(original hashing.HashResult, data []byte, fileName, mimeType string, lastModified int64) ComparisonResult {
	return CompareHashes(original, hashing.ComputeHash(data, fileName, mimeType, lastModified))
}

// confidence is HIGH with no differences or with any HIGH or CRITICAL one,
// MEDIUM otherwise.
func confidence(diffs []DifferenceDetail) Confidence {
	if len(diffs) == 0 {
		return ConfidenceHigh
	}
	for _, d := range diffs {
		if d.Severity == SeverityHigh || d.Severity == SeverityCritical {
			return ConfidenceHigh
		}
	}
	return ConfidenceMedium
}

func summary(res ComparisonResult) string {
	if !res.IsTampered {
		if len(res.Differences) == 0 {
			return "Document is authentic: content hash and metadata match the original."
		}
		return fmt.Sprintf("Document content matches the original; differences found in %s.", joinTypes(res.Differences))
	}

	var evidence []DifferenceDetail
	for _, d := range res.Differences {
		if d.Type != DifferenceHash {
			evidence = append(evidence, d)
		}
	}
	if len(evidence) == 0 {
		return "Document has been modified: content hash does not match the original."
	}
	return fmt.Sprintf("Document has been modified: content hash does not match the original; differences also found in %s.", joinTypes(evidence))
}

func joinTypes(diffs []DifferenceDetail) string {
	names := make([]string, 0, len(diffs))
	for _, d := range diffs {
		switch d.Type {
		case DifferenceSize:
			names = append(names, "file size")
		case DifferenceMimeType:
			names = append(names, "file type")
		case DifferencePageCount:
			names = append(names, "page count")
		default:
			names = append(names, string(d.Type))
		}
	}
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

// normalizeType drops media type parameters and case. Values that do not
// parse are compared as trimmed lowercase text.
func normalizeType(mt string) string {
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		return parsed
	}
	return strings.ToLower(strings.TrimSpace(mt))
}
