package hairstrand

import (
	"errors"
	"fmt"
	"strings"
)

// FormatError reports a structural violation of the strand file layout.
// Any FormatError aborts the whole decode: a broken record invalidates the
// positional framing of everything after it.
type FormatError struct {
	Msg    string
	Field  string // offending field, empty when not applicable
	Value  int64  // offending value; meaningful only when Field is set
	Strand int    // zero-based record index, -1 for the file header
	Offset int64  // byte offset at which the offending field starts
	Err    error  // underlying read error, if any
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString("hairstrand: ")
	b.WriteString(e.Msg)
	b.WriteString(" (")
	if e.Field != "" {
		fmt.Fprintf(&b, "%s=%d, ", e.Field, e.Value)
	}
	if e.Strand >= 0 {
		fmt.Fprintf(&b, "strand=%d, ", e.Strand)
	}
	fmt.Fprintf(&b, "offset=%d)", e.Offset)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *FormatError) Unwrap() error { return e.Err }

// IsFormatError reports whether err (or anything it wraps) is a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
