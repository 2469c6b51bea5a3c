package fidelity

// Status is the outcome of one field.
type Status string

const (
	// StatusRendered means the field's value was drawn.
	StatusRendered Status = "rendered"
	// StatusPlaceholder means the field's image could not be decoded and a
	// red marker box was drawn instead.
	StatusPlaceholder Status = "placeholder"
	// StatusSkipped means the field was not drawn: it was empty, its signer
	// had not completed, or its page does not exist.
	StatusSkipped Status = "skipped"
	// StatusFailed means drawing the field failed after decoding.
	StatusFailed Status = "failed"
)

// FieldOutcome records what happened to a single field.
type FieldOutcome struct {
	FieldID string
	Page    int
	Status  Status
	// Reason explains a skip.
	Reason string
	Err    error
}

// Report lists field outcomes in input order.
type Report struct {
	Outcomes []FieldOutcome
	// PagesUpdated is the number of pages that received drawing.
	PagesUpdated int
	// Decrypted and Repaired tell whether the source was rewritten before
	// the update was appended.
	Decrypted bool
	Repaired  bool
}

// Count returns the number of outcomes with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Errors returns the per-field errors in input order.
func (r *Report) Errors() []error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errs
}
