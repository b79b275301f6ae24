// Package prompt renders the request sent to a backend for one stub call.
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tjfontaine/secretagent/internal/domain"
	"github.com/tjfontaine/secretagent/internal/literal"
)

//go:embed prompts/program_trace_prompt.txt
var defaultTemplate string

// Builder renders prompts from a fixed template.
type Builder struct {
	tmpl *Template
}

// Option configures a Builder.
type Option func(*builderOptions)

type builderOptions struct {
	text string
	path string
}

// WithTemplate uses text instead of the embedded template.
func WithTemplate(text string) Option {
	return func(o *builderOptions) {
		o.text = text
	}
}

// WithTemplateFile loads the template from path once, at construction.
func WithTemplateFile(path string) Option {
	return func(o *builderOptions) {
		o.path = path
	}
}

// NewBuilder creates a Builder, using the embedded template by default.
func NewBuilder(opts ...Option) (*Builder, error) {
	o := builderOptions{text: defaultTemplate}
	for _, opt := range opts {
		opt(&o)
	}

	if o.path != "" {
		b, err := os.ReadFile(o.path)
		if err != nil {
			return nil, fmt.Errorf("read prompt template: %w", err)
		}
		o.text = string(b)
	}

	tmpl, err := ParseTemplate(o.text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &Builder{tmpl: tmpl}, nil
}

// Build renders the prompt for one call of desc. It has no side effects.
func (b *Builder) Build(desc *domain.Descriptor, args []any, kw map[string]any) string {
	return b.tmpl.Substitute(map[string]string{
		PlaceholderStubSource: StubSource(desc),
		PlaceholderArgs:       FormatArgs(desc.ParamNames(), args, kw),
	})
}

// FormatArgs renders "name = literal" pairs joined by "; ". Positional values
// are paired with names in order and only the overlapping pairs are kept, so
// surplus values or surplus names are silently dropped. Keyword values follow
// in sorted key order.
func FormatArgs(names []string, args []any, kw map[string]any) string {
	n := min(len(names), len(args))
	pairs := make([]string, 0, n+len(kw))
	for i := 0; i < n; i++ {
		pairs = append(pairs, names[i]+" = "+literal.Format(args[i]))
	}

	keys := make([]string, 0, len(kw))
	for k := range kw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pairs = append(pairs, k+" = "+literal.Format(kw[k]))
	}
	return strings.Join(pairs, "; ")
}

// StubSource renders the declaration shown to the model: a signature line
// followed by the documentation in an indented triple-quoted block.
func StubSource(desc *domain.Descriptor) string {
	var b strings.Builder

	params := make([]string, len(desc.Params))
	for i, p := range desc.Params {
		if p.Type != "" {
			params[i] = p.Name + ": " + p.Type
		} else {
			params[i] = p.Name
		}
	}
	fmt.Fprintf(&b, "def %s(%s)", desc.Name, strings.Join(params, ", "))
	if ret := desc.ReturnTypeName(); ret != "" {
		b.WriteString(" -> " + ret)
	}
	b.WriteString(":\n")

	doc := dedent(desc.Doc)
	if doc == "" {
		b.WriteString("    ...\n")
		return b.String()
	}
	lines := strings.Split(doc, "\n")
	b.WriteString(`    """`)
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
			if line != "" {
				b.WriteString("    ")
			}
		}
		b.WriteString(line)
	}
	if len(lines) > 1 {
		b.WriteString("\n    ")
	}
	b.WriteString(`"""` + "\n")
	return b.String()
}

// dedent drops surrounding blank lines and the indentation common to every
// non-blank line after the first.
func dedent(doc string) string {
	lines := strings.Split(strings.ReplaceAll(doc, "\t", "    "), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}

	indent := -1
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " "))
		if indent < 0 || n < indent {
			indent = n
		}
	}

	lines[0] = strings.TrimSpace(lines[0])
	for i := 1; i < len(lines); i++ {
		switch {
		case strings.TrimSpace(lines[i]) == "":
			lines[i] = ""
		case indent > 0:
			lines[i] = strings.TrimRight(lines[i][indent:], " ")
		default:
			lines[i] = strings.TrimRight(lines[i], " ")
		}
	}
	return strings.Join(lines, "\n")
}
