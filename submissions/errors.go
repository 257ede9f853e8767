package submissions

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a lookup miss on a submission id.
var ErrNotFound = errors.New("submission not found")

// ValidationError reports a missing required submission field. No
// write happens when one is returned.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// IsValidationError checks whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
