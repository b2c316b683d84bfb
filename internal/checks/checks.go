// Package checks implements the four checks pagecheck runs against an HTML
// file and assembles them into a suite.
package checks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/papapumpkin/pagecheck/internal/diagnostic"
	"github.com/papapumpkin/pagecheck/internal/indent"
	"github.com/papapumpkin/pagecheck/internal/suite"
)

// Check names, in registration order.
const (
	NameExists        = "exists"
	NameValid         = "is valid HTML"
	NameBestPractices = "follows best practices"
	NameIndented      = "is properly indented"
)

// BaselineMessageAllowance is how many validator messages a clean document
// still produces (the parser and schema notices). Results at or under it
// pass without inspection. Revisit if the validator's notices change.
const BaselineMessageAllowance = 2

// Validator reports markup validity problems for a file.
type Validator interface {
	Validate(ctx context.Context, path string) ([]diagnostic.Diagnostic, error)
}

// Linter reports best-practice findings for a file.
type Linter interface {
	Lint(ctx context.Context, path string) ([]diagnostic.Diagnostic, error)
}

// Beautifier returns the canonical formatting of a document.
type Beautifier interface {
	Beautify(ctx context.Context, src string) (string, error)
}

// Deps are the collaborators the checks delegate to.
type Deps struct {
	Validator  Validator
	Linter     Linter
	Beautifier Beautifier
	Filter     *diagnostic.Filter // nil applies only the built-in suppressions
}

// NewSuite returns the suite for target: existence as the gate, then
// validity, best practices and indentation.
func NewSuite(target string, d Deps) *suite.Suite {
	return &suite.Suite{
		Name: filepath.Base(target),
		Gate: &suite.Check{Name: NameExists, Fn: Existence},
		Checks: []suite.Check{
			{Name: NameValid, Fn: Validity(d.Validator, d.Filter)},
			{Name: NameBestPractices, Fn: BestPractices(d.Linter)},
			{Name: NameIndented, Fn: Indentation(d.Beautifier)},
		},
	}
}

// Existence fails unless path names a regular file.
func Existence(_ context.Context, path string) error {
	info, err := os.Stat(path)
	if err == nil && info.Mode().IsRegular() {
		return nil
	}
	return suite.NewMultiLineError(suite.TitleFileMissing,
		fmt.Sprintf("The file `%s` is missing or misspelled.", filepath.Base(path)))
}

// Validity fails when the validator reports more than the baseline number
// of messages and at least one survives the filter. Details are keyed by
// each message's last line.
func Validity(v Validator, f *diagnostic.Filter) func(context.Context, string) error {
	return func(ctx context.Context, path string) error {
		diags, err := v.Validate(ctx, path)
		if err != nil {
			return fmt.Errorf("validating %s: %w", path, err)
		}
		if len(diags) <= BaselineMessageAllowance {
			return nil
		}

		var details []string
		for _, d := range diags {
			if f.Include(d) {
				details = append(details, diagnostic.Format(d.LastLine, d.Message))
			}
		}
		if len(details) == 0 {
			return nil
		}
		return suite.NewMultiLineError(suite.TitleValidation, details...)
	}
}

// BestPractices fails on any linter finding.
func BestPractices(l Linter) func(context.Context, string) error {
	return func(ctx context.Context, path string) error {
		diags, err := l.Lint(ctx, path)
		if err != nil {
			return fmt.Errorf("linting %s: %w", path, err)
		}
		if len(diags) == 0 {
			return nil
		}
		details := make([]string, 0, len(diags))
		for _, d := range diags {
			details = append(details, diagnostic.Format(d.Line, d.Message))
		}
		return suite.NewMultiLineError(suite.TitleBestPractices, details...)
	}
}

// Indentation fails with one "Line <n>" detail per place the file diverges
// from its beautified form.
func Indentation(b Beautifier) func(context.Context, string) error {
	return func(ctx context.Context, path string) error {
		chunks, err := Reindent(ctx, b, path)
		if err != nil {
			return err
		}
		lines := indent.Reduce(chunks)
		if len(lines) == 0 {
			return nil
		}
		details := make([]string, 0, len(lines))
		for _, n := range lines {
			details = append(details, fmt.Sprintf("Line %d", n))
		}
		return suite.NewMultiLineError(suite.TitleIndentation, details...)
	}
}

// Reindent beautifies the file at path and returns the line diff from the
// original to the beautified text. It returns nil when they are identical.
func Reindent(ctx context.Context, b Beautifier, path string) ([]indent.Chunk, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	pretty, err := b.Beautify(ctx, string(raw))
	if err != nil {
		return nil, fmt.Errorf("beautifying %s: %w", path, err)
	}
	if pretty == string(raw) {
		return nil, nil
	}
	return indent.DiffLines(string(raw), pretty), nil
}
