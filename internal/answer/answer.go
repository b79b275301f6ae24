// Package answer locates the answer region in a backend response and
// converts it to a stub's declared result kind.
package answer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tjfontaine/secretagent/internal/domain"
	"github.com/tjfontaine/secretagent/internal/literal"
)

// answerPattern is the wire contract with prompt templates: case-sensitive
// tags and the region may span lines. The match is greedy, so with several
// regions it runs from the first opening tag to the last closing tag.
var answerPattern = regexp.MustCompile(`(?s)<answer>(.*)</answer>`)

// Extract returns the trimmed text of the answer region in raw.
func Extract(raw string) (string, error) {
	m := answerPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", domain.ErrMalformed(raw)
	}
	return strings.TrimSpace(m[1]), nil
}

// Parse extracts the answer region from raw and coerces it to kind.
func Parse(raw string, kind domain.ResultKind) (any, error) {
	text, err := Extract(raw)
	if err != nil {
		return nil, err
	}
	return Coerce(text, kind)
}

// Coerce converts answer text to kind. It never fails for scalar and text
// kinds; booleans, containers and out-of-range kinds fail with a type
// coercion error.
func Coerce(text string, kind domain.ResultKind) (any, error) {
	text = strings.TrimSpace(text)

	if kind.IsContainer() {
		return coerceContainer(text, kind)
	}
	switch kind {
	case domain.KindBoolean:
		return coerceBool(text)
	case domain.KindInteger:
		if n, err := strconv.Atoi(text); err == nil {
			return n, nil
		}
		return literalOrText(text), nil
	case domain.KindReal:
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f, nil
		}
		return literalOrText(text), nil
	case domain.KindText, domain.KindUnknown:
		return text, nil
	default:
		return nil, domain.ErrCoercion(text, kind, "unsupported result kind")
	}
}

var (
	trueTokens  = map[string]bool{"true": true, "yes": true, "1": true, "y": true}
	falseTokens = map[string]bool{"false": true, "no": true, "0": true, "n": true}
)

func coerceBool(text string) (any, error) {
	lower := strings.ToLower(text)
	if trueTokens[lower] {
		return true, nil
	}
	if falseTokens[lower] {
		return false, nil
	}
	if v, err := literal.Parse(capitalize(text)); err == nil {
		if b, ok := v.(bool); ok {
			return b, nil
		}
	}
	return nil, domain.ErrCoercion(text, domain.KindBoolean, "not a recognized boolean")
}

func coerceContainer(text string, kind domain.ResultKind) (any, error) {
	v, err := literal.Parse(text)
	if err != nil {
		return nil, domain.ErrCoercion(text, kind, err.Error()).WithCause(err)
	}

	switch kind {
	case domain.KindSequence:
		switch x := v.(type) {
		case []any:
			return x, nil
		case literal.Tuple:
			return []any(x), nil
		}
	case domain.KindTuple:
		switch x := v.(type) {
		case literal.Tuple:
			return x, nil
		case []any:
			return literal.Tuple(x), nil
		}
	case domain.KindSet:
		switch x := v.(type) {
		case literal.Set:
			return x, nil
		case literal.Dict:
			if len(x) == 0 {
				return literal.Set{}, nil
			}
		case []any:
			return toSet(text, x)
		case literal.Tuple:
			return toSet(text, x)
		}
	case domain.KindMapping:
		if x, ok := v.(literal.Dict); ok {
			return x, nil
		}
	}
	return nil, domain.ErrCoercion(text, kind, fmt.Sprintf("literal is %s", describe(v)))
}

func toSet(text string, items []any) (any, error) {
	set := make(literal.Set, len(items))
	for _, item := range items {
		switch item.(type) {
		case nil, bool, int, float64, string:
			set.Add(item)
		default:
			return nil, domain.ErrCoercion(text, domain.KindSet, "unhashable member "+literal.Format(item))
		}
	}
	return set, nil
}

// literalOrText parses text as a literal, falling back to the text itself.
func literalOrText(text string) any {
	if v, err := literal.Parse(text); err == nil {
		return v
	}
	return text
}

// capitalize upper-cases the first character and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "None"
	case bool:
		return "bool"
	case int:
		return "int"
	case float64:
		return "float"
	case string:
		return "str"
	case []any:
		return "list"
	case literal.Tuple:
		return "tuple"
	case literal.Set:
		return "set"
	case literal.Dict:
		return "dict"
	}
	return fmt.Sprintf("%T", v)
}
