// Package indent checks that an HTML document is consistently indented by
// comparing it with a beautified copy of itself and reducing the line diff
// to the line numbers where each discrepancy starts.
package indent

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Chunk is a maximal run of lines the differ classified identically.
// Added and Removed are mutually exclusive; both are false for lines the
// two documents share.
type Chunk struct {
	Text    string
	Count   int
	Added   bool
	Removed bool
}

// Changed reports whether the chunk is an insertion or a deletion.
func (c Chunk) Changed() bool {
	return c.Added || c.Removed
}

// Reduce turns a line diff into the 1-based line numbers at which the
// beautified document first diverges from the original, one per divergence.
//
// A changed region usually arrives as a removed chunk immediately followed
// by an added chunk. The chunk after a reported one is absorbed without
// being counted so the pair yields a single line number. Diffs that emit
// three changed chunks in a row are under-reported as a result.
func Reduce(chunks []Chunk) []int {
	var (
		lines        []int
		lineCount    int
		justReported bool
	)
	for _, c := range chunks {
		if justReported {
			justReported = false
			continue
		}
		lineCount += c.Count
		if c.Changed() {
			lines = append(lines, lineCount)
			justReported = true
		}
	}
	return lines
}

// DiffLines computes a line-level diff from a to b.
func DiffLines(a, b string) []Chunk {
	dmp := diffmatchpatch.New()
	runesA, runesB, lineArray := dmp.DiffLinesToRunes(a, b)
	diffs := dmp.DiffMainRunes(runesA, runesB, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	chunks := make([]Chunk, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			Text:    d.Text,
			Count:   countLines(d.Text),
			Added:   d.Type == diffmatchpatch.DiffInsert,
			Removed: d.Type == diffmatchpatch.DiffDelete,
		})
	}
	return chunks
}

// countLines counts newline-terminated lines plus an unterminated tail.
func countLines(s string) int {
	n := strings.Count(s, "\n")
	if s != "" && !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
