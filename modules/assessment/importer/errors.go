package importer

import (
	"fmt"
	"strings"

	"github.com/formlane/assess/pkg/serrors"
)

// User-correctable failure classes. None of these are server faults; they
// carry enough detail for the uploader to fix the sheet and resubmit.
var (
	ErrNoFile              = serrors.NewError("IMPORT_NO_FILE", "no file provided", "")
	ErrUnsupportedFileType = serrors.NewError("IMPORT_UNSUPPORTED_FILE_TYPE", "unsupported file type", "")
)

// ParseError means the byte buffer could not be interpreted as CSV at all.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse CSV: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingHeadersError lists every absent required header, in declared order.
type MissingHeadersError struct {
	Headers []string
}

func (e *MissingHeadersError) Error() string {
	return fmt.Sprintf("missing required headers: %s", strings.Join(e.Headers, ", "))
}

// ValidationError aggregates every row-level violation found in one pass.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "CSV validation failed"
}
