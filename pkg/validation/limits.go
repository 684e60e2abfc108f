package validation

import (
	"fmt"

	dErrors "partnerdash/pkg/domain-errors"
)

// MaxBodySize is the maximum accepted request body (64 KB).
const MaxBodySize = 64 * 1024

const (
	MaxEmailLength = 255
	// MaxPasswordLength matches bcrypt's 72-byte input limit.
	MaxPasswordLength = 72
	// MaxTokenLength bounds invitation tokens (two UUIDs joined by a dash).
	MaxTokenLength = 128
)

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}
