package fidelity

import (
	"errors"
	"fmt"

	"github.com/aamirmursleen/Auradoc-sub003/compose"
)

var (
	// ErrCorruptDocument is returned when the source cannot be parsed, even
	// after a repair pass.
	ErrCorruptDocument = compose.ErrCorruptDocument
	// ErrPasswordRequired is returned for documents that need a user password.
	ErrPasswordRequired = compose.ErrPasswordRequired
	// ErrSerialize is returned when the updated document cannot be written.
	ErrSerialize = errors.New("failed to serialize document")
	// ErrPageOutOfRange marks a field placed on a page the document lacks.
	ErrPageOutOfRange = errors.New("page out of range")
)

// FieldError is a failure confined to one field. It is recorded in the
// Report and never returned from Composite.
type FieldError struct {
	FieldID string
	Page    int
	Err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s on page %d: %v", e.FieldID, e.Page, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
