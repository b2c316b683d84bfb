package suite

import (
	"errors"
	"strings"
)

// Failure titles, one per check.
const (
	TitleFileMissing   = "File missing"
	TitleValidation    = "Validation"
	TitleBestPractices = "Best practices"
	TitleIndentation   = "Indentation"
)

// MultiLineError is a check failure carrying a short title and an ordered
// list of human-readable detail lines. It is immutable once constructed.
type MultiLineError struct {
	title   string
	details []string
}

// NewMultiLineError builds a MultiLineError, copying details.
func NewMultiLineError(title string, details ...string) *MultiLineError {
	return &MultiLineError{
		title:   title,
		details: append([]string(nil), details...),
	}
}

// Title returns the failure title.
func (e *MultiLineError) Title() string {
	return e.title
}

// Details returns a copy of the detail lines in order.
func (e *MultiLineError) Details() []string {
	return append([]string(nil), e.details...)
}

// Error renders the title followed by one indented line per detail.
func (e *MultiLineError) Error() string {
	var b strings.Builder
	b.WriteString(e.title)
	for _, d := range e.details {
		b.WriteString("\n  ")
		b.WriteString(d)
	}
	return b.String()
}

// AsMultiLine extracts a MultiLineError from err's chain.
func AsMultiLine(err error) (*MultiLineError, bool) {
	var mle *MultiLineError
	if errors.As(err, &mle) {
		return mle, true
	}
	return nil, false
}
