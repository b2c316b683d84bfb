// Package diagnostic holds the message model shared by the markup validator
// and the best-practices linter, and the filter that drops known validator
// noise before it reaches a report.
package diagnostic

import (
	"fmt"
	"regexp"
)

// Diagnostic is a single problem reported by a validator or linter.
// Line numbers are 1-based; zero means the tool gave no position, which is
// the case for document-level messages.
type Diagnostic struct {
	Message  string
	Line     int
	LastLine int
	Type     string // tool-specific severity, e.g. "error", "info", "warning"
	Rule     string // linter rule ID, empty for validator messages
}

// Format renders a message prefixed with its line number, the form used in
// every check failure detail.
func Format(line int, message string) string {
	return fmt.Sprintf("Line %d: %s", line, message)
}

// Document-level notices the validator always emits.
var (
	contentTypeNotice = regexp.MustCompile(`(?i)content-type.*text/html`)
	schemaNotice      = regexp.MustCompile(`(?i)schema.*html`)
)

// False positives suppressed regardless of position.
var (
	googleFontsPipe = regexp.MustCompile(`(?i)bad value.*fonts.*google.*\|`)
	redundantRole   = regexp.MustCompile(`(?i)element.*does not need.*role`)
)

// ShouldInclude reports whether a validator message should be surfaced.
// It returns false for the parser content-type and schema notices when they
// carry no line, for Google Fonts URLs flagged because of a '|' family
// separator, and for "element does not need a role" warnings.
func ShouldInclude(message string, line int) bool {
	if line == 0 && contentTypeNotice.MatchString(message) {
		return false
	}
	if line == 0 && schemaNotice.MatchString(message) {
		return false
	}
	if googleFontsPipe.MatchString(message) {
		return false
	}
	if redundantRole.MatchString(message) {
		return false
	}
	return true
}

// Filter applies ShouldInclude plus any extra suppression patterns a user
// configured. The zero value behaves exactly like ShouldInclude.
type Filter struct {
	extra []*regexp.Regexp
}

// NewFilter compiles the extra patterns case-insensitively. An invalid
// pattern is returned as an error naming it.
func NewFilter(patterns []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("ignore pattern %q: %w", p, err)
		}
		f.extra = append(f.extra, re)
	}
	return f, nil
}

// Include reports whether d survives the filter. A nil Filter only applies
// the built-in rules.
func (f *Filter) Include(d Diagnostic) bool {
	if !ShouldInclude(d.Message, d.Line) {
		return false
	}
	if f == nil {
		return true
	}
	for _, re := range f.extra {
		if re.MatchString(d.Message) {
			return false
		}
	}
	return true
}
