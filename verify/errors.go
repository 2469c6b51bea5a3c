package verify

import "fmt"

// ValidationError reports a stored fingerprint that cannot be compared.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid hash result: %s: %s", e.Field, e.Msg)
}

// DecodeError wraps a failure to read a stored fingerprint.
type DecodeError struct {
	Msg string
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
