package transfer

import (
	"errors"
	"fmt"
)

// Validation failures for Upload. The provider is never called when one occurs.
var (
	ErrFileNotFound        = errors.New("file does not exist")
	ErrEmptyFile           = errors.New("file is empty")
	ErrExtensionNotAllowed = errors.New("file type not allowed")
)

// ValidationError describes why a local file was rejected before upload.
type ValidationError struct {
	Path string
	Err  error

	// Ext is the rejected extension for ErrExtensionNotAllowed.
	Ext string
}

func (e *ValidationError) Error() string {
	if e.Ext != "" {
		return fmt.Sprintf("%s: %v: %q", e.Path, e.Err, e.Ext)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
