// Package report renders suite results in machine-readable formats.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/pagecheck/internal/suite"
)

// Supported output formats.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
)

// ErrUnknownFormat is returned by Write for formats other than json and toml.
var ErrUnknownFormat = errors.New("report: unknown format")

// Check statuses.
const (
	StatusPass = "pass"
	StatusFail = "fail"
)

// TitleToolError titles failures that came from a tool rather than the
// document, such as an unreachable validator.
const TitleToolError = "Error"

// Report is the serialisable form of a suite.Result.
type Report struct {
	Suite  string  `json:"suite" toml:"suite"`
	Target string  `json:"target" toml:"target"`
	Passed bool    `json:"passed" toml:"passed"`
	Checks []Entry `json:"checks" toml:"checks"`
}

// Entry is one check's outcome.
type Entry struct {
	Name      string   `json:"name" toml:"name"`
	Status    string   `json:"status" toml:"status"`
	Title     string   `json:"title,omitempty" toml:"title,omitempty"`
	Details   []string `json:"details,omitempty" toml:"details,omitempty"`
	ElapsedMS int64    `json:"elapsed_ms" toml:"elapsed_ms"`
}

// New builds a Report from a suite result.
func New(r *suite.Result) Report {
	rep := Report{
		Suite:  r.Suite,
		Target: r.Target,
		Passed: r.Passed,
		Checks: make([]Entry, 0, len(r.Checks)),
	}
	for _, c := range r.Checks {
		e := Entry{
			Name:      c.Name,
			Status:    StatusPass,
			ElapsedMS: c.Elapsed.Milliseconds(),
		}
		if !c.Passed {
			e.Status = StatusFail
			e.Title, e.Details = Describe(c.Err)
		}
		rep.Checks = append(rep.Checks, e)
	}
	return rep
}

// Describe splits a check error into a title and detail lines. Errors that
// are not check failures are titled TitleToolError.
func Describe(err error) (string, []string) {
	if err == nil {
		return "", nil
	}
	if mle, ok := suite.AsMultiLine(err); ok {
		return mle.Title(), mle.Details()
	}
	return TitleToolError, []string{err.Error()}
}

// Write encodes rep to w in the given format.
func Write(w io.Writer, rep Report, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("report: encoding json: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(rep); err != nil {
			return fmt.Errorf("report: encoding toml: %w", err)
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
	return nil
}
