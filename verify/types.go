package verify

// Severity ranks how strongly a difference indicates tampering.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Confidence is how sure the comparator is of its verdict.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// DifferenceType names the compared dimension.
type DifferenceType string

const (
	DifferenceHash      DifferenceType = "hash"
	DifferenceSize      DifferenceType = "size"
	DifferenceMimeType  DifferenceType = "type"
	DifferencePageCount DifferenceType = "pageCount"
)

// DifferenceDetail is one disagreement between the original and the upload.
type DifferenceDetail struct {
	Type        DifferenceType `json:"type"`
	Description string         `json:"description"`
	Before      string         `json:"before"`
	After       string         `json:"after"`
	Severity    Severity       `json:"severity"`
}

// ComparisonResult is the verdict of comparing two fingerprints.
// Differences are ordered hash, size, type, page count.
type ComparisonResult struct {
	IsTampered     bool               `json:"isTampered"`
	Confidence     Confidence         `json:"confidenceLevel"`
	HashMatch      bool               `json:"hashMatch"`
	SizeMatch      bool               `json:"sizeMatch"`
	TypeMatch      bool               `json:"typeMatch"`
	PageCountMatch bool               `json:"pageCountMatch"`
	Differences    []DifferenceDetail `json:"differences"`
	Summary        string             `json:"summary"`
}
