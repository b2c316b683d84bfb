package lint

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/papapumpkin/pagecheck/internal/command"
	"github.com/papapumpkin/pagecheck/internal/diagnostic"
)

// HTMLHint runs the htmlhint CLI with its JSON formatter.
type HTMLHint struct {
	Runner *command.Runner
}

type hintFile struct {
	File     string        `json:"file"`
	Messages []hintMessage `json:"messages"`
}

type hintMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Rule    struct {
		ID string `json:"id"`
	} `json:"rule"`
}

// Lint runs htmlhint against path. htmlhint exits non-zero when it finds
// problems, so the exit status alone is not a failure.
func (h *HTMLHint) Lint(ctx context.Context, path string) ([]diagnostic.Diagnostic, error) {
	out, err := h.Runner.Run(ctx, nil, "--format", "json", path)
	if err != nil {
		return nil, err
	}
	diags, perr := ParseHTMLHint(out.Stdout)
	if perr != nil {
		if out.ExitCode != 0 {
			return nil, out.Failure("htmlhint")
		}
		return nil, perr
	}
	return diags, nil
}

// ParseHTMLHint decodes htmlhint's JSON report into diagnostics, keeping
// the report order.
func ParseHTMLHint(data []byte) ([]diagnostic.Diagnostic, error) {
	var files []hintFile
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, fmt.Errorf("decoding htmlhint report: %w", err)
	}
	var diags []diagnostic.Diagnostic
	for _, f := range files {
		for _, m := range f.Messages {
			diags = append(diags, diagnostic.Diagnostic{
				Message:  m.Message,
				Line:     m.Line,
				LastLine: m.Line,
				Type:     m.Type,
				Rule:     m.Rule.ID,
			})
		}
	}
	return diags, nil
}
