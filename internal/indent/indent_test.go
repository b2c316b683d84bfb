package indent

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func eq(n int) Chunk  { return Chunk{Count: n} }
func del(n int) Chunk { return Chunk{Count: n, Removed: true} }
func ins(n int) Chunk { return Chunk{Count: n, Added: true} }

func TestReduce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		chunks []Chunk
		want   []int
	}{
		{"Empty", nil, nil},
		{"Unchanged", []Chunk{eq(12)}, nil},
		{"SingleChangeMidFile", []Chunk{eq(5), del(1), ins(1), eq(3)}, []int{6}},
		{"ChangeAtStart", []Chunk{del(2), ins(2)}, []int{2}},
		{"TwoChanges", []Chunk{eq(2), del(1), ins(1), eq(1), del(1), ins(1)}, []int{3, 5}},
		{"AbsorbedChunkNotCounted", []Chunk{del(1), ins(3), eq(1), del(1)}, []int{1, 3}},
		{"BackToBackPairs", []Chunk{del(1), ins(1), del(1), ins(1)}, []int{1, 2}},
		{"InsertOnly", []Chunk{eq(4), ins(2), eq(1)}, []int{6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Reduce(tt.chunks)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Reduce = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiffLines(t *testing.T) {
	t.Parallel()

	t.Run("Identical", func(t *testing.T) {
		t.Parallel()
		chunks := DiffLines("a\nb\n", "a\nb\n")
		if len(chunks) != 1 || chunks[0].Changed() || chunks[0].Count != 2 {
			t.Fatalf("chunks = %+v, want one unchanged chunk of 2 lines", chunks)
		}
		if got := Reduce(chunks); len(got) != 0 {
			t.Errorf("Reduce = %v, want none", got)
		}
	})

	t.Run("ChangedLine", func(t *testing.T) {
		t.Parallel()
		chunks := DiffLines("a\nb\nc\n", "a\nB\nc\n")
		want := []Chunk{
			{Text: "a\n", Count: 1},
			{Text: "b\n", Count: 1, Removed: true},
			{Text: "B\n", Count: 1, Added: true},
			{Text: "c\n", Count: 1},
		}
		if !reflect.DeepEqual(chunks, want) {
			t.Fatalf("chunks = %+v, want %+v", chunks, want)
		}
		if got := Reduce(chunks); !reflect.DeepEqual(got, []int{2}) {
			t.Errorf("Reduce = %v, want [2]", got)
		}
	})

	t.Run("UnterminatedTail", func(t *testing.T) {
		t.Parallel()
		chunks := DiffLines("a\nb", "a\nb")
		if len(chunks) != 1 || chunks[0].Count != 2 {
			t.Fatalf("chunks = %+v, want one chunk of 2 lines", chunks)
		}
	})
}

func TestCountLines(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"\n\n", 2},
	}
	for _, tt := range tests {
		if got := countLines(tt.in); got != tt.want {
			t.Errorf("countLines(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestUnifiedDiff(t *testing.T) {
	t.Parallel()

	t.Run("NoChanges", func(t *testing.T) {
		t.Parallel()
		out, err := UnifiedDiff("index.html", DiffLines("a\n", "a\n"), DefaultContext)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "" {
			t.Errorf("expected empty diff, got %q", out)
		}
	})

	t.Run("SingleHunk", func(t *testing.T) {
		t.Parallel()
		out, err := UnifiedDiff("index.html", DiffLines("a\nb\nc\n", "a\nB\nc\n"), DefaultContext)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"--- a/index.html", "+++ b/index.html", "@@ -1,3 +1,3 @@", " a\n-b\n+B\n c\n"} {
			if !strings.Contains(out, want) {
				t.Errorf("diff missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("MissingFinalNewline", func(t *testing.T) {
		t.Parallel()
		out, err := UnifiedDiff("index.html", DiffLines("a\n</html>", "a\n</html>\n"), DefaultContext)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "@@ -1,2 +1,2 @@\n a\n-</html>\n\\ No newline at end of file\n+</html>\n"
		if !strings.Contains(out, want) {
			t.Errorf("diff missing %q:\n%s", want, out)
		}
	})

	t.Run("DistantChangesSplitHunks", func(t *testing.T) {
		t.Parallel()
		var a, b strings.Builder
		for i := range 20 {
			line := "line\n"
			a.WriteString(line)
			if i == 1 || i == 18 {
				b.WriteString("  " + line)
				continue
			}
			b.WriteString(line)
		}
		out, err := UnifiedDiff("index.html", DiffLines(a.String(), b.String()), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n := strings.Count(out, "@@ -"); n != 2 {
			t.Errorf("expected 2 hunks, got %d:\n%s", n, out)
		}
	})
}

func mustReindenter(t *testing.T, opts Options) *Reindenter {
	t.Helper()
	r, err := NewReindenter(opts)
	if err != nil {
		t.Fatalf("NewReindenter: %v", err)
	}
	return r
}

func TestReindenterBeautify(t *testing.T) {
	t.Parallel()

	withMax := DefaultOptions()
	withMax.MaxPreserveNewlines = 1

	noBlanks := DefaultOptions()
	noBlanks.PreserveNewlines = false

	liners := DefaultOptions()
	liners.ExtraLiners = []string{"body"}

	noNewline := DefaultOptions()
	noNewline.EndWithNewline = false

	inner := DefaultOptions()
	inner.IndentInnerHTML = true

	tests := []struct {
		name string
		opts Options
		in   string
		want string
	}{
		{
			name: "Document",
			opts: DefaultOptions(),
			in: "<!DOCTYPE html>\n<html>\n<head>\n<title>Test</title>\n</head>\n<body>\n" +
				"<div>\n<p>Hello</p>\n</div>\n</body>\n</html>\n",
			want: "<!DOCTYPE html>\n<html>\n<head>\n  <title>Test</title>\n</head>\n<body>\n" +
				"  <div>\n    <p>Hello</p>\n  </div>\n</body>\n</html>\n",
		},
		{
			name: "IndentInnerHTML",
			opts: inner,
			in:   "<html>\n<body>\n<p>x</p>\n</body>\n</html>\n",
			want: "<html>\n  <body>\n    <p>x</p>\n  </body>\n</html>\n",
		},
		{
			name: "OverIndented",
			opts: DefaultOptions(),
			in:   "<ul>\n        <li>one</li>\n   <li>two</li>   \n      </ul>\n",
			want: "<ul>\n  <li>one</li>\n  <li>two</li>\n</ul>\n",
		},
		{
			name: "ImpliedListItemEnd",
			opts: DefaultOptions(),
			in:   "<ul>\n<li>one\n<li>two\n</ul>\n",
			want: "<ul>\n  <li>one\n  <li>two\n</ul>\n",
		},
		{
			name: "TextLines",
			opts: DefaultOptions(),
			in:   "<p>\nHello\nworld\n</p>\n",
			want: "<p>\n  Hello\n  world\n</p>\n",
		},
		{
			name: "PreIsVerbatim",
			opts: DefaultOptions(),
			in:   "<div>\n<pre>\n  keep\n    this\n</pre>\n</div>\n",
			want: "<div>\n  <pre>\n  keep\n    this\n</pre>\n</div>\n",
		},
		{
			name: "ScriptBodyVerbatimCloseIndented",
			opts: DefaultOptions(),
			in:   "<body>\n<script>\nvar a = 1;\n      </script>\n</body>\n",
			want: "<body>\n  <script>\nvar a = 1;\n  </script>\n</body>\n",
		},
		{
			name: "BlankLinesCapped",
			opts: withMax,
			in:   "<div>\n\n\n\n<p>x</p>\n</div>\n",
			want: "<div>\n\n  <p>x</p>\n</div>\n",
		},
		{
			name: "BlankLinesDropped",
			opts: noBlanks,
			in:   "<div>\n\n<p>x</p>\n\n</div>\n",
			want: "<div>\n  <p>x</p>\n</div>\n",
		},
		{
			name: "LeadingAndTrailingBlanksTrimmed",
			opts: DefaultOptions(),
			in:   "\n\n<p>x</p>\n\n\n",
			want: "<p>x</p>\n",
		},
		{
			name: "ExtraLiners",
			opts: liners,
			in:   "<html>\n<head>\n</head>\n<body>\n</body>\n</html>\n",
			want: "<html>\n<head>\n</head>\n\n<body>\n</body>\n</html>\n",
		},
		{
			name: "NoTrailingNewline",
			opts: noNewline,
			in:   "<p>x</p>\n",
			want: "<p>x</p>",
		},
		{
			name: "AddsTrailingNewline",
			opts: DefaultOptions(),
			in:   "<p>x</p>",
			want: "<p>x</p>\n",
		},
		{
			name: "CRLF",
			opts: DefaultOptions(),
			in:   "<div>\r\n<p>x</p>\r\n</div>\r\n",
			want: "<div>\n  <p>x</p>\n</div>\n",
		},
		{
			name: "VoidElementsDoNotNest",
			opts: DefaultOptions(),
			in:   "<div>\n<img src=\"a.png\" alt=\"\">\n<br>\n<p>x</p>\n</div>\n",
			want: "<div>\n  <img src=\"a.png\" alt=\"\">\n  <br>\n  <p>x</p>\n</div>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := mustReindenter(t, tt.opts)
			got, err := r.Beautify(context.Background(), tt.in)
			if err != nil {
				t.Fatalf("Beautify: %v", err)
			}
			if got != tt.want {
				t.Errorf("Beautify mismatch\n got: %q\nwant: %q", got, tt.want)
			}
		})
	}
}

func TestReindenterIdempotent(t *testing.T) {
	t.Parallel()

	docs := []string{
		"<!DOCTYPE html>\n<html lang=\"en\">\n    <head>\n <meta charset=\"utf-8\">\n<title>x</title>\n  </head>\n" +
			"<body>\n<main>\n<h1>Title</h1>\n\n\n<p>Some\ntext <a href=\"#\">here</a>\n</p>\n</main>\n</body>\n</html>\n",
		"<div>\n<pre>\n  a\n\n b\n</pre>\n      <span>x</span>\n</div>",
		"<body>\n<script>\n  if (a) {\n    b();\n  }\n    </script>\n<style>\n p { color: red; }\n</style>\n</body>\n",
		"<!-- a\n   multi-line comment -->\n<div\n    class=\"x\">\n<p>y</p>\n</div>\n",
		"<table>\n<tr>\n<td>1\n<td>2\n<tr>\n<td>3\n</table>\n",
	}

	r := mustReindenter(t, DefaultOptions())
	for i, doc := range docs {
		once, err := r.Beautify(context.Background(), doc)
		if err != nil {
			t.Fatalf("doc %d: Beautify: %v", i, err)
		}
		twice, err := r.Beautify(context.Background(), once)
		if err != nil {
			t.Fatalf("doc %d: second Beautify: %v", i, err)
		}
		if once != twice {
			t.Errorf("doc %d: not idempotent\nonce:  %q\ntwice: %q", i, once, twice)
		}
		if got := Reduce(DiffLines(once, twice)); len(got) != 0 {
			t.Errorf("doc %d: divergences after re-beautify: %v", i, got)
		}
	}
}

func TestReindenterKeepsCRLF(t *testing.T) {
	t.Parallel()

	r := mustReindenter(t, DefaultOptions())
	src := "<div>\r\n<p>x</p>\r\n</div>\r\n"
	got, err := r.Beautify(context.Background(), src)
	if err != nil {
		t.Fatalf("Beautify: %v", err)
	}
	if want := "<div>\r\n  <p>x</p>\r\n</div>\r\n"; got != want {
		t.Fatalf("Beautify = %q, want %q", got, want)
	}

	clean, err := r.Beautify(context.Background(), got)
	if err != nil {
		t.Fatalf("Beautify: %v", err)
	}
	if lines := Reduce(DiffLines(got, clean)); len(lines) != 0 {
		t.Errorf("beautified CRLF document still diverges at %v", lines)
	}
}

func TestNewReindenterRejectsWrapping(t *testing.T) {
	t.Parallel()
	opts := DefaultOptions()
	opts.WrapLineLength = 80
	_, err := NewReindenter(opts)
	if !errors.Is(err, ErrUnsupportedWrap) {
		t.Fatalf("err = %v, want ErrUnsupportedWrap", err)
	}
}

func TestExternalBeautifierArgs(t *testing.T) {
	t.Parallel()
	b := &ExternalBeautifier{Opts: DefaultOptions()}
	want := []string{
		"--indent-size", "2",
		"--max-preserve-newlines", "10",
		"--wrap-line-length", "0",
		"--extra_liners=",
		"--end-with-newline",
	}
	if got := b.Args(); !reflect.DeepEqual(got, want) {
		t.Errorf("Args = %q, want %q", got, want)
	}

	b.Opts.PreserveNewlines = false
	b.Opts.ExtraLiners = []string{"head", "body"}
	got := strings.Join(b.Args(), " ")
	for _, want := range []string{"--no-preserve-newlines", "--extra_liners=head,body"} {
		if !strings.Contains(got, want) {
			t.Errorf("Args %q missing %q", got, want)
		}
	}
}
