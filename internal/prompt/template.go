package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

// Placeholder names recognized in prompt templates.
const (
	PlaceholderStubSource = "stub_src"
	PlaceholderArgs       = "args"
)

// placeholderPattern matches $$, $name, ${name}, and a bare $ that starts
// nothing valid.
var placeholderPattern = regexp.MustCompile(`(?i)\$(?:(\$)|([_a-z][_a-z0-9]*)|\{([_a-z][_a-z0-9]*)\}|())`)

// Template is a parsed prompt template.
type Template struct {
	text string
}

// ParseTemplate validates that text uses only the stub_src and args
// placeholders, and uses both.
func ParseTemplate(text string) (*Template, error) {
	seen := map[string]bool{}
	for _, m := range placeholderPattern.FindAllStringSubmatchIndex(text, -1) {
		switch {
		case m[2] >= 0:
			continue
		case m[4] >= 0:
			seen[text[m[4]:m[5]]] = true
		case m[6] >= 0:
			seen[text[m[6]:m[7]]] = true
		default:
			line := strings.Count(text[:m[0]], "\n") + 1
			return nil, fmt.Errorf("invalid placeholder on line %d", line)
		}
	}

	for name := range seen {
		if name != PlaceholderStubSource && name != PlaceholderArgs {
			return nil, fmt.Errorf("unknown placeholder $%s", name)
		}
	}
	for _, name := range []string{PlaceholderStubSource, PlaceholderArgs} {
		if !seen[name] {
			return nil, fmt.Errorf("template is missing placeholder $%s", name)
		}
	}
	return &Template{text: text}, nil
}

// Substitute replaces placeholders with values; $$ becomes $.
func (t *Template) Substitute(values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(t.text, func(match string) string {
		if match == "$$" {
			return "$"
		}
		name := strings.Trim(match, "${}")
		return values[name]
	})
}
