package indent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ErrUnsupportedWrap is returned when the builtin beautifier is asked to
// wrap long lines.
var ErrUnsupportedWrap = errors.New("line wrapping is not supported by the builtin beautifier")

// Options mirror the js-beautify HTML settings used by the indentation check.
type Options struct {
	IndentSize          int      `mapstructure:"indent_size" json:"indent_size" toml:"indent_size"`
	PreserveNewlines    bool     `mapstructure:"preserve_newlines" json:"preserve_newlines" toml:"preserve_newlines"`
	MaxPreserveNewlines int      `mapstructure:"max_preserve_newlines" json:"max_preserve_newlines" toml:"max_preserve_newlines"` // 0 means unlimited
	WrapLineLength      int      `mapstructure:"wrap_line_length" json:"wrap_line_length" toml:"wrap_line_length"`                // 0 disables wrapping
	EndWithNewline      bool     `mapstructure:"end_with_newline" json:"end_with_newline" toml:"end_with_newline"`
	ExtraLiners         []string `mapstructure:"extra_liners" json:"extra_liners" toml:"extra_liners"`
	IndentInnerHTML     bool     `mapstructure:"indent_inner_html" json:"indent_inner_html" toml:"indent_inner_html"`
}

// DefaultOptions returns two-space indentation, up to ten preserved blank
// lines, no wrapping, a trailing newline and no forced blank lines.
func DefaultOptions() Options {
	return Options{
		IndentSize:          2,
		PreserveNewlines:    true,
		MaxPreserveNewlines: 10,
		WrapLineLength:      0,
		EndWithNewline:      true,
		ExtraLiners:         []string{},
	}
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "param": true, "source": true,
	"track": true, "wbr": true,
}

// Elements whose content the tokenizer hands back as a single raw text token.
var rawTextElements = map[string]bool{
	"iframe": true, "noembed": true, "noframes": true, "noscript": true,
	"plaintext": true, "script": true, "style": true, "textarea": true,
	"title": true, "xmp": true,
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"details": true, "div": true, "dl": true, "fieldset": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "main": true, "nav": true, "ol": true, "p": true,
	"pre": true, "section": true, "table": true, "ul": true,
}

// impliedEnd maps an open element to the start tags that close it.
var impliedEnd = map[string]map[string]bool{
	"li":       {"li": true},
	"dt":       {"dt": true, "dd": true},
	"dd":       {"dt": true, "dd": true},
	"option":   {"option": true, "optgroup": true},
	"optgroup": {"optgroup": true},
	"tr":       {"tr": true},
	"td":       {"td": true, "th": true, "tr": true},
	"th":       {"td": true, "th": true, "tr": true},
	"p":        blockElements,
}

// Reindenter is the builtin beautifier. It does not reflow markup: every
// line keeps its content and only its leading whitespace is recomputed from
// element nesting, which makes the output stable under repeated runs.
type Reindenter struct {
	opts        Options
	extraLiners map[string]bool
}

// NewReindenter validates opts and returns a Reindenter.
func NewReindenter(opts Options) (*Reindenter, error) {
	if opts.WrapLineLength != 0 {
		return nil, fmt.Errorf("%w (wrap_line_length = %d)", ErrUnsupportedWrap, opts.WrapLineLength)
	}
	if opts.IndentSize < 0 {
		return nil, fmt.Errorf("indent size must not be negative, got %d", opts.IndentSize)
	}
	liners := make(map[string]bool, len(opts.ExtraLiners))
	for _, tag := range opts.ExtraLiners {
		liners[strings.ToLower(tag)] = true
	}
	return &Reindenter{opts: opts, extraLiners: liners}, nil
}

// lineInfo is what the tokenizer pass learns about one source line.
type lineInfo struct {
	level    int
	set      bool
	verbatim bool   // starts inside pre/raw text or a multi-line tag
	opensTag string // element opened by the line's first token
}

// Beautify re-indents src. The output uses the line ending of src's first
// line.
func (r *Reindenter) Beautify(_ context.Context, src string) (string, error) {
	eol := lineEnding(src)
	src = strings.ReplaceAll(src, "\r\n", "\n")
	lines := strings.Split(src, "\n")

	infos, err := r.layout(src, len(lines))
	if err != nil {
		return "", err
	}

	var out []string
	pending := 0
	for i, l := range lines {
		info := infos[i]
		content := l
		if !info.verbatim {
			content = strings.TrimSpace(l)
			if content == "" {
				if len(out) > 0 {
					pending++
				}
				continue
			}
		}

		blanks := r.keptBlanks(pending)
		if blanks == 0 && len(out) > 0 && info.opensTag != "" && r.extraLiners[info.opensTag] {
			blanks = 1
		}
		for range blanks {
			out = append(out, "")
		}
		pending = 0

		if info.verbatim {
			out = append(out, content)
			continue
		}
		out = append(out, strings.Repeat(" ", info.level*r.opts.IndentSize)+content)
	}

	result := strings.Join(out, eol)
	if r.opts.EndWithNewline && result != "" {
		result += eol
	}
	return result, nil
}

func lineEnding(src string) string {
	if i := strings.IndexByte(src, '\n'); i > 0 && src[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

func (r *Reindenter) keptBlanks(n int) int {
	if !r.opts.PreserveNewlines {
		return 0
	}
	if r.opts.MaxPreserveNewlines > 0 && n > r.opts.MaxPreserveNewlines {
		return r.opts.MaxPreserveNewlines
	}
	return n
}

// layout walks the token stream, tracking the open element stack and the
// current line, and records the nesting level of each line's first token.
func (r *Reindenter) layout(src string, n int) ([]lineInfo, error) {
	infos := make([]lineInfo, n)
	z := html.NewTokenizer(strings.NewReader(src))

	var stack []string
	line := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				return infos, nil
			}
			return nil, fmt.Errorf("tokenizing html: %w", z.Err())
		}
		// TagName lowercases the buffer in place, so copy Raw first.
		raw := string(z.Raw())

		switch tt {
		case html.TextToken:
			r.placeText(infos, line, raw, stack)
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tt == html.StartTagToken {
				stack = closeImplied(stack, tag)
			}
			r.place(infos, line, stack, tag)
			if tt == html.StartTagToken && !voidElements[tag] {
				stack = append(stack, tag)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if idx := lastIndex(stack, string(name)); idx >= 0 {
				stack = stack[:idx]
			}
			r.place(infos, line, stack, "")
		default:
			r.place(infos, line, stack, "")
		}

		nl := strings.Count(raw, "\n")
		if tt != html.TextToken {
			for ln := line + 1; ln <= line+nl && ln < n; ln++ {
				infos[ln].verbatim = true
			}
		}
		line += nl
	}
}

func (r *Reindenter) placeText(infos []lineInfo, line int, raw string, stack []string) {
	top := ""
	if len(stack) > 0 {
		top = stack[len(stack)-1]
	}
	inRaw := rawTextElements[top]
	inPre := lastIndex(stack, "pre") >= 0

	segs := strings.Split(raw, "\n")
	for i, seg := range segs {
		ln := line + i
		if ln >= len(infos) {
			return
		}
		blank := strings.TrimSpace(seg) == ""
		if i > 0 && (inRaw || inPre) {
			// The closing tag of a script or style block gets indented
			// like any other end tag.
			if blank && i == len(segs)-1 && (top == "script" || top == "style") {
				continue
			}
			infos[ln].verbatim = true
			continue
		}
		if !blank {
			r.set(infos, ln, stack, "")
		}
	}
}

func (r *Reindenter) place(infos []lineInfo, line int, stack []string, tag string) {
	if line < len(infos) {
		r.set(infos, line, stack, tag)
	}
}

func (r *Reindenter) set(infos []lineInfo, ln int, stack []string, tag string) {
	if infos[ln].set || infos[ln].verbatim {
		return
	}
	infos[ln].level = r.depth(stack)
	infos[ln].opensTag = tag
	infos[ln].set = true
}

// depth is the indent level for content inside stack. Unless inner HTML
// indentation is on, head and body sit at the same level as html.
func (r *Reindenter) depth(stack []string) int {
	d := len(stack)
	if !r.opts.IndentInnerHTML && len(stack) > 0 && stack[0] == "html" {
		d--
	}
	return d
}

func closeImplied(stack []string, tag string) []string {
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if impliedEnd[top][tag] {
			stack = stack[:len(stack)-1]
			continue
		}
		break
	}
	return stack
}

func lastIndex(stack []string, tag string) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == tag {
			return i
		}
	}
	return -1
}
