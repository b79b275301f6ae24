package tokens

import (
	"errors"
	"testing"

	"github.com/tiktoken-go/tokenizer"
)

func TestEstimator_CountText(t *testing.T) {
	e := NewEstimator()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"short rounds up to one", "hi", 1},
		{"sixteen chars", "abcdefghijklmnop", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.CountText("any-model", tt.text)
			if err != nil {
				t.Fatalf("CountText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CountText() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRegistry_Count(t *testing.T) {
	r := NewRegistry()

	got := r.Count("gpt-4o-mini", "Translate a sentence in English to French.")
	if got.Estimated {
		t.Error("gpt-4o-mini count should come from tiktoken")
	}
	if got.Tokens < 5 || got.Tokens > 20 {
		t.Errorf("Tokens = %d, want between 5 and 20", got.Tokens)
	}

	est := r.Count("claude-3-5-sonnet-20240620", "Translate a sentence in English to French.")
	if !est.Estimated {
		t.Error("claude count should be estimated")
	}
	if est.String()[0] != '~' {
		t.Errorf("String() = %q, want ~ prefix", est.String())
	}
}

type failingCounter struct{}

func (failingCounter) SupportsModel(string) bool { return true }
func (failingCounter) CountText(string, string) (int, error) {
	return 0, errors.New("boom")
}

func TestRegistry_CounterErrorFallsBack(t *testing.T) {
	r := &Registry{fallback: NewEstimator()}
	r.Register(failingCounter{})

	got := r.Count("m", "abcdefgh")
	if want := (Count{Tokens: 2, Estimated: true}); got != want {
		t.Errorf("Count() = %+v, want %+v", got, want)
	}
}

func TestEncodingFor(t *testing.T) {
	tests := []struct {
		model string
		want  tokenizer.Encoding
	}{
		{"gpt-4o-mini", tokenizer.O200kBase},
		{"GPT-4.1", tokenizer.O200kBase},
		{"o3-mini", tokenizer.O200kBase},
		{"gpt-4-turbo", tokenizer.Cl100kBase},
		{"gpt-3.5-turbo", tokenizer.Cl100kBase},
		{"something-new", tokenizer.O200kBase},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := encodingFor(tt.model); got != tt.want {
				t.Errorf("encodingFor(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}
