// Package tokens estimates how many tokens a prompt occupies.
package tokens

import (
	"strconv"
	"strings"
)

// Count is a prompt token count.
type Count struct {
	Tokens int
	// Estimated is set when the count comes from the character estimator
	// rather than a real tokenizer.
	Estimated bool
}

// String renders the count, prefixed with "~" when estimated.
func (c Count) String() string {
	if c.Estimated {
		return "~" + strconv.Itoa(c.Tokens)
	}
	return strconv.Itoa(c.Tokens)
}

// Counter counts tokens for the models it supports.
type Counter interface {
	SupportsModel(model string) bool
	CountText(model, text string) (int, error)
}

// Registry picks a counter by model, falling back to an Estimator.
type Registry struct {
	counters []Counter
	fallback *Estimator
}

// NewRegistry creates a registry with the tiktoken counter registered.
func NewRegistry() *Registry {
	r := &Registry{fallback: NewEstimator()}
	r.Register(NewTiktokenCounter())
	return r
}

// Register adds a counter. Counters are consulted in registration order.
func (r *Registry) Register(c Counter) {
	r.counters = append(r.counters, c)
}

// Count counts text for model. It never fails: a counter error falls back
// to the estimator.
func (r *Registry) Count(model, text string) Count {
	for _, c := range r.counters {
		if !c.SupportsModel(model) {
			continue
		}
		if n, err := c.CountText(model, text); err == nil {
			return Count{Tokens: n}
		}
		break
	}
	n, _ := r.fallback.CountText(model, text)
	return Count{Tokens: n, Estimated: true}
}

// Estimator approximates token counts from character length.
type Estimator struct {
	// CharsPerToken is the average characters per token (default: 4)
	CharsPerToken float64
}

// NewEstimator creates a new token estimator.
func NewEstimator() *Estimator {
	return &Estimator{CharsPerToken: 4.0}
}

// SupportsModel returns true - estimator supports all models as a fallback.
func (e *Estimator) SupportsModel(string) bool {
	return true
}

// CountText estimates the token count of text.
func (e *Estimator) CountText(_, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	n := int(float64(len(text))/e.CharsPerToken + 0.5)
	return max(n, 1), nil
}

// ModelMatcher matches model names by exact name or prefix.
type ModelMatcher struct {
	prefixes []string
	exact    []string
}

// NewModelMatcher creates a new model matcher.
func NewModelMatcher(prefixes, exact []string) *ModelMatcher {
	return &ModelMatcher{prefixes: prefixes, exact: exact}
}

// Matches returns true if the model matches any pattern.
func (m *ModelMatcher) Matches(model string) bool {
	for _, e := range m.exact {
		if model == e {
			return true
		}
	}
	for _, p := range m.prefixes {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}
