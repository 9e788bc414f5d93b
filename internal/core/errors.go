package core

import (
	"errors"
	"strings"
)

var (
	ErrNoFile          = errors.New("no file provided")
	ErrEmptyFile       = errors.New("empty file")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnknownExport   = errors.New("unknown export")
	ErrUnknownResource = errors.New("unknown resource")
	ErrReportNotFound  = errors.New("import report not found")

	// ErrUnexpectedResponse marks a 2xx reply that lacks the expected payload.
	ErrUnexpectedResponse = errors.New("unexpected response")

	// ErrTooManyImports is returned when every import slot stays occupied
	// for the limiter's wait time. Clients should retry after a short delay.
	ErrTooManyImports = errors.New("too many imports in progress, please try again later")
)

// ValidationFailure is returned by an import whose file failed validation.
// Nothing was submitted.
type ValidationFailure struct {
	Result ValidationResult
}

func (e *ValidationFailure) Error() string {
	if len(e.Result.Errors) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Result.Errors, "; ")
}
