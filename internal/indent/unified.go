package indent

import (
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// DefaultContext is the number of unchanged lines shown around each hunk.
const DefaultContext = 3

const noNewline = "\\ No newline at end of file\n"

type lineOp struct {
	kind  byte // ' ', '-' or '+'
	text  string
	noEOL bool // last line of its side, missing the final newline
}

// UnifiedDiff renders chunks as a unified diff of name against its
// beautified form. It returns an empty string when nothing changed.
func UnifiedDiff(name string, chunks []Chunk, context int) (string, error) {
	if context < 0 {
		context = 0
	}

	var ops []lineOp
	for _, c := range chunks {
		kind := byte(' ')
		switch {
		case c.Added:
			kind = '+'
		case c.Removed:
			kind = '-'
		}
		lines := splitLines(c.Text)
		for i, l := range lines {
			op := lineOp{kind: kind, text: l}
			op.noEOL = i == len(lines)-1 && !strings.HasSuffix(c.Text, "\n")
			ops = append(ops, op)
		}
	}

	// origBefore[k] and newBefore[k] count the lines of each side that
	// precede ops[k].
	origBefore := make([]int, len(ops)+1)
	newBefore := make([]int, len(ops)+1)
	var changes []int
	for k, op := range ops {
		origBefore[k+1] = origBefore[k]
		newBefore[k+1] = newBefore[k]
		if op.kind != '+' {
			origBefore[k+1]++
		}
		if op.kind != '-' {
			newBefore[k+1]++
		}
		if op.kind != ' ' {
			changes = append(changes, k)
		}
	}
	if len(changes) == 0 {
		return "", nil
	}

	fd := &diff.FileDiff{
		OrigName: "a/" + name,
		NewName:  "b/" + name,
	}
	start, end := changes[0], changes[0]
	for _, k := range changes[1:] {
		if k-end-1 <= 2*context {
			end = k
			continue
		}
		fd.Hunks = append(fd.Hunks, buildHunk(ops, origBefore, newBefore, start, end, context))
		start, end = k, k
	}
	fd.Hunks = append(fd.Hunks, buildHunk(ops, origBefore, newBefore, start, end, context))

	out, err := diff.PrintFileDiff(fd)
	if err != nil {
		return "", fmt.Errorf("printing diff for %s: %w", name, err)
	}
	return string(out), nil
}

func buildHunk(ops []lineOp, origBefore, newBefore []int, start, end, context int) *diff.Hunk {
	from := max(0, start-context)
	to := min(len(ops)-1, end+context)

	var body strings.Builder
	var origLines, newLines int
	for _, op := range ops[from : to+1] {
		body.WriteByte(op.kind)
		body.WriteString(op.text)
		body.WriteByte('\n')
		if op.noEOL {
			body.WriteString(noNewline)
		}
		if op.kind != '+' {
			origLines++
		}
		if op.kind != '-' {
			newLines++
		}
	}

	origStart := origBefore[from]
	if origLines > 0 {
		origStart++
	}
	newStart := newBefore[from]
	if newLines > 0 {
		newStart++
	}

	return &diff.Hunk{
		OrigStartLine: int32(origStart),
		OrigLines:     int32(origLines),
		NewStartLine:  int32(newStart),
		NewLines:      int32(newLines),
		Body:          []byte(body.String()),
	}
}

// splitLines splits s into lines without their terminators.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
