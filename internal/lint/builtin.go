// Package lint reports best-practice violations in an HTML document, either
// with the builtin rule set or by running HTMLHint.
package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/papapumpkin/pagecheck/internal/diagnostic"
)

// Builtin rule IDs. They follow HTMLHint's naming so configs can disable
// the same rules under either engine.
const (
	RuleDoctypeFirst      = "doctype-first"
	RuleHTMLLang          = "html-lang-require"
	RuleHeadMetaCharset   = "head-meta-charset"
	RuleTitleRequire      = "title-require"
	RuleMetaViewport      = "meta-viewport"
	RuleImgAlt            = "img-alt-require"
	RuleIDUnique          = "id-unique"
	RuleAttrNoDuplication = "attr-no-duplication"
	RuleTagLowercase      = "tag-lowercase"
	RuleAttrLowercase     = "attr-lowercase"
	RuleAttrDoubleQuotes  = "attr-value-double-quotes"
	RuleInlineStyle       = "inline-style-disabled"
	RuleInlineScript      = "inline-script-disabled"
	RuleTagDeprecated     = "tag-deprecated"
	RuleButtonType        = "button-type-require"
)

// Rules lists every builtin rule ID.
var Rules = []string{
	RuleDoctypeFirst, RuleHTMLLang, RuleHeadMetaCharset, RuleTitleRequire,
	RuleMetaViewport, RuleImgAlt, RuleIDUnique, RuleAttrNoDuplication,
	RuleTagLowercase, RuleAttrLowercase, RuleAttrDoubleQuotes,
	RuleInlineStyle, RuleInlineScript, RuleTagDeprecated, RuleButtonType,
}

var deprecatedTags = map[string]bool{
	"acronym": true, "applet": true, "basefont": true, "big": true,
	"blink": true, "center": true, "dir": true, "font": true,
	"frame": true, "frameset": true, "isindex": true, "marquee": true,
	"strike": true, "tt": true,
}

// Builtin is the dependency-free linter.
type Builtin struct {
	disabled map[string]bool
}

// NewBuiltin returns a linter with the named rules turned off. Unknown rule
// IDs are an error.
func NewBuiltin(disable []string) (*Builtin, error) {
	known := make(map[string]bool, len(Rules))
	for _, r := range Rules {
		known[r] = true
	}
	b := &Builtin{disabled: make(map[string]bool)}
	for _, r := range disable {
		if !known[r] {
			return nil, fmt.Errorf("unknown lint rule %q", r)
		}
		b.disabled[r] = true
	}
	return b, nil
}

// Lint reads the file at path and lints it.
func (b *Builtin) Lint(ctx context.Context, path string) ([]diagnostic.Diagnostic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return b.LintBytes(src)
}

// LintBytes lints an in-memory document. Findings are ordered by line.
func (b *Builtin) LintBytes(src []byte) ([]diagnostic.Diagnostic, error) {
	s := &scan{linter: b, ids: make(map[string]int), line: 1}
	z := html.NewTokenizer(strings.NewReader(string(src)))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				break
			}
			return nil, fmt.Errorf("tokenizing html: %w", z.Err())
		}
		raw := string(z.Raw())
		s.token(tt, raw)
		s.line += strings.Count(raw, "\n")
	}
	s.finish()

	sort.SliceStable(s.out, func(i, j int) bool { return s.out[i].Line < s.out[j].Line })
	return s.out, nil
}

// scan is the state of one pass over a document.
type scan struct {
	linter *Builtin
	out    []diagnostic.Diagnostic
	line   int

	seenContent bool
	headLine    int
	inHead      bool
	sawCharset  bool
	sawViewport bool
	sawTitle    bool
	inTitle     bool
	titleLine   int
	titleText   strings.Builder
	ids         map[string]int
}

func (s *scan) report(rule, typ, msg string) {
	s.reportAt(s.line, rule, typ, msg)
}

func (s *scan) reportAt(line int, rule, typ, msg string) {
	if s.linter.disabled[rule] {
		return
	}
	s.out = append(s.out, diagnostic.Diagnostic{Message: msg, Line: line, LastLine: line, Type: typ, Rule: rule})
}

func (s *scan) token(tt html.TokenType, raw string) {
	switch tt {
	case html.DoctypeToken:
		s.seenContent = true
	case html.CommentToken:
	case html.TextToken:
		if s.inTitle {
			s.titleText.WriteString(raw)
		}
		if strings.TrimSpace(raw) != "" {
			s.firstContent()
		}
	case html.StartTagToken, html.SelfClosingTagToken:
		s.firstContent()
		name, attrs := scanTag(raw)
		s.startTag(name, attrs)
	case html.EndTagToken:
		s.firstContent()
		name := strings.ToLower(strings.Trim(strings.TrimPrefix(raw, "</"), " \t\r\n>"))
		s.endTag(name)
	}
}

func (s *scan) firstContent() {
	if s.seenContent {
		return
	}
	s.seenContent = true
	s.report(RuleDoctypeFirst, "error", "Doctype must be declared first.")
}

func (s *scan) startTag(rawName string, attrs []rawAttr) {
	name := strings.ToLower(rawName)
	if rawName != name {
		s.report(RuleTagLowercase, "error", fmt.Sprintf("The html element name of [ %s ] must be in lowercase.", rawName))
	}
	if deprecatedTags[name] {
		s.report(RuleTagDeprecated, "warning", fmt.Sprintf("The <%s> element is deprecated.", name))
	}

	seen := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		lower := strings.ToLower(a.name)
		if a.name != lower {
			s.report(RuleAttrLowercase, "error", fmt.Sprintf("The attribute name of [ %s ] must be in lowercase.", a.name))
		}
		if seen[lower] {
			s.report(RuleAttrNoDuplication, "error", fmt.Sprintf("Duplicate of attribute name [ %s ] was found.", a.name))
		}
		seen[lower] = true
		if a.hasValue && a.quote != '"' {
			s.report(RuleAttrDoubleQuotes, "error", fmt.Sprintf("The value of attribute [ %s ] must be in double quotes.", a.name))
		}
		switch {
		case lower == "style":
			s.report(RuleInlineStyle, "warning", fmt.Sprintf("Inline style [ %s ] cannot be used.", a.source()))
		case len(lower) > 2 && strings.HasPrefix(lower, "on"):
			s.report(RuleInlineScript, "warning", fmt.Sprintf("Inline script [ %s ] cannot be used.", a.source()))
		case lower == "id" && a.value != "":
			if first, dup := s.ids[a.value]; dup {
				s.report(RuleIDUnique, "error", fmt.Sprintf("The id value [ %s ] must be unique (first used on line %d).", a.value, first))
			} else {
				s.ids[a.value] = s.line
			}
		}
	}

	switch name {
	case "html":
		if !seen["lang"] {
			s.report(RuleHTMLLang, "warning", "An lang attribute must be present on <html> elements.")
		}
	case "head":
		s.inHead = true
		s.headLine = s.line
	case "body":
		s.inHead = false
	case "meta":
		if !s.inHead {
			break
		}
		if seen["charset"] || strings.EqualFold(attrValue(attrs, "http-equiv"), "content-type") {
			s.sawCharset = true
		}
		if strings.EqualFold(attrValue(attrs, "name"), "viewport") {
			s.sawViewport = true
		}
	case "title":
		s.sawTitle = true
		s.inTitle = true
		s.titleLine = s.line
		s.titleText.Reset()
	case "img":
		if !seen["alt"] {
			s.report(RuleImgAlt, "warning", "An alt attribute must be present on <img> elements.")
		}
	case "button":
		if !seen["type"] {
			s.report(RuleButtonType, "warning", "The type attribute must be present on <button> elements.")
		}
	}
}

func (s *scan) endTag(name string) {
	switch name {
	case "head":
		s.inHead = false
	case "title":
		s.inTitle = false
		if strings.TrimSpace(s.titleText.String()) == "" {
			s.reportAt(s.titleLine, RuleTitleRequire, "error", "<title></title> must not be empty.")
		}
	}
}

// finish reports document-level omissions at the <head> tag, or line 1
// when the document has none.
func (s *scan) finish() {
	if !s.seenContent {
		s.reportAt(1, RuleDoctypeFirst, "error", "Doctype must be declared first.")
	}
	line := s.headLine
	if line == 0 {
		line = 1
	}
	if !s.sawCharset {
		s.reportAt(line, RuleHeadMetaCharset, "error", "<meta charset> must be present in <head> tag.")
	}
	if !s.sawViewport {
		s.reportAt(line, RuleMetaViewport, "warning", `<meta name="viewport"> must be present in <head> tag.`)
	}
	if !s.sawTitle {
		s.reportAt(line, RuleTitleRequire, "error", "<title></title> must be present in <head> tag.")
	}
}
