package lint

import "strings"

// rawAttr is an attribute as written in the source, before the tokenizer
// lowercases names and strips quotes.
type rawAttr struct {
	name     string
	value    string
	quote    byte // '"', '\'' or 0 when unquoted
	hasValue bool
}

// source renders the attribute for messages.
func (a rawAttr) source() string {
	if !a.hasValue {
		return a.name
	}
	if a.quote == 0 {
		return a.name + "=" + a.value
	}
	q := string(a.quote)
	return a.name + "=" + q + a.value + q
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// scanTag splits the raw text of a start tag into its name and attributes.
func scanTag(raw string) (string, []rawAttr) {
	s := strings.TrimPrefix(raw, "<")
	i := 0
	for i < len(s) && !isSpace(s[i]) && s[i] != '>' && s[i] != '/' {
		i++
	}
	name := s[:i]

	var attrs []rawAttr
	for i < len(s) {
		for i < len(s) && (isSpace(s[i]) || s[i] == '/') {
			i++
		}
		if i >= len(s) || s[i] == '>' {
			break
		}

		start := i
		for i < len(s) && !isSpace(s[i]) && s[i] != '=' && s[i] != '>' && s[i] != '/' {
			i++
		}
		a := rawAttr{name: s[start:i]}

		j := i
		for j < len(s) && isSpace(s[j]) {
			j++
		}
		if j < len(s) && s[j] == '=' {
			j++
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			a.hasValue = true
			switch {
			case j < len(s) && (s[j] == '"' || s[j] == '\''):
				a.quote = s[j]
				end := strings.IndexByte(s[j+1:], a.quote)
				if end < 0 {
					a.value = s[j+1:]
					i = len(s)
				} else {
					a.value = s[j+1 : j+1+end]
					i = j + 2 + end
				}
			default:
				k := j
				for k < len(s) && !isSpace(s[k]) && s[k] != '>' {
					k++
				}
				a.value = s[j:k]
				i = k
			}
		}

		if a.name == "" {
			if i == start {
				i++
			}
			continue
		}
		attrs = append(attrs, a)
	}
	return name, attrs
}

// attrValue returns the value of the first attribute named key, compared
// case-insensitively.
func attrValue(attrs []rawAttr, key string) string {
	for _, a := range attrs {
		if strings.EqualFold(a.name, key) {
			return a.value
		}
	}
	return ""
}
