package indent

import (
	"context"
	"strconv"
	"strings"

	"github.com/papapumpkin/pagecheck/internal/command"
)

// ExternalBeautifier delegates to the js-beautify html-beautify CLI.
type ExternalBeautifier struct {
	Runner *command.Runner
	Opts   Options
}

// Args maps Options onto html-beautify flags. The document is read from
// stdin, so no file argument is included.
func (b *ExternalBeautifier) Args() []string {
	o := b.Opts
	args := []string{
		"--indent-size", strconv.Itoa(o.IndentSize),
		"--max-preserve-newlines", strconv.Itoa(o.MaxPreserveNewlines),
		"--wrap-line-length", strconv.Itoa(o.WrapLineLength),
		"--extra_liners=" + strings.Join(o.ExtraLiners, ","),
	}
	if !o.PreserveNewlines {
		args = append(args, "--no-preserve-newlines")
	}
	if o.EndWithNewline {
		args = append(args, "--end-with-newline")
	}
	if o.IndentInnerHTML {
		args = append(args, "--indent-inner-html")
	}
	return args
}

// Beautify pipes src through html-beautify and returns its stdout.
func (b *ExternalBeautifier) Beautify(ctx context.Context, src string) (string, error) {
	out, err := b.Runner.Run(ctx, []byte(src), b.Args()...)
	if err != nil {
		return "", err
	}
	if out.ExitCode != 0 {
		return "", out.Failure(b.Runner.Path)
	}
	return string(out.Stdout), nil
}
