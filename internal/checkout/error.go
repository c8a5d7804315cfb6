package checkout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// -- Navigation --
	ErrUnknownStep  = errors.New("unknown checkout step")
	ErrStepSkipped  = errors.New("checkout steps cannot be skipped")
	ErrInvalidStep  = errors.New("step is entered by submitting the order")
	ErrNotAtConfirm = errors.New("order can only be submitted from the confirm step")

	// -- Address --
	ErrAddressMissing = errors.New("no shipping address saved")

	// -- Storage --
	ErrFailedSaveAddress = errors.New("failed to save shipping address")
)

type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every invalid address field.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return fmt.Sprintf("invalid address: %s", strings.Join(parts, "; "))
}

// FieldNames returns the invalid field names without duplicates.
func (e *ValidationError) FieldNames() []string {
	seen := make(map[string]bool, len(e.Fields))
	var names []string
	for _, f := range e.Fields {
		if !seen[f.Field] {
			seen[f.Field] = true
			names = append(names, f.Field)
		}
	}
	return names
}
