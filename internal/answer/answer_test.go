package answer

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tjfontaine/secretagent/internal/domain"
	"github.com/tjfontaine/secretagent/internal/literal"
)

const roomResponse = `
<thought>
The "tunnel end" should continue the Egyptian theme.
</thought>


<answer>

The tunnel opens into a vast chamber, its ceiling lost in shadow high above.
The walls are covered in more hieroglyphics.

</answer>
`

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"simple", "<answer>42</answer>", "42"},
		{"trimmed", "<answer>\n  hello \n</answer>", "hello"},
		{"multiline with preamble", roomResponse, "The tunnel opens into a vast chamber, its ceiling lost in shadow high above.\nThe walls are covered in more hieroglyphics."},
		{"empty region", "<answer></answer>", ""},
		{"two regions span first open to last close", "<thought>try <answer>x</answer></thought>\n<answer>True</answer>", "x</answer></thought>\n<answer>True"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.raw)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractMissingDelimiters(t *testing.T) {
	for _, raw := range []string{
		"no tags here",
		"<ANSWER>yes</ANSWER>",
		"<answer>unterminated",
		"null service was used - no answer",
	} {
		_, err := Extract(raw)
		if !errors.Is(err, domain.ErrMalformedResponse) {
			t.Errorf("Extract(%q) error = %v, want malformed response", raw, err)
		}
		if errors.Is(err, domain.ErrTypeCoercion) {
			t.Errorf("Extract(%q) should not report a coercion error", raw)
		}
	}
}

func TestParseTwoRegionsIsNotABoolean(t *testing.T) {
	_, err := Parse("<answer>yes</answer> and later <answer>no</answer>", domain.KindBoolean)
	if !errors.Is(err, domain.ErrTypeCoercion) {
		t.Fatalf("Parse() error = %v, want type coercion", err)
	}
}

func TestCoerceUnsupportedKind(t *testing.T) {
	for _, kind := range []domain.ResultKind{-1, domain.KindTuple + 1} {
		got, err := Coerce("42", kind)
		if !errors.Is(err, domain.ErrTypeCoercion) {
			t.Errorf("Coerce(%d) = %v, %v; want type coercion error", kind, got, err)
		}
	}
}

func TestCoerceBoolean(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"true", true}, {"True", true}, {"TRUE", true}, {"yes", true}, {"Yes", true}, {"1", true}, {"y", true}, {"Y", true},
		{"false", false}, {"False", false}, {"FALSE", false}, {"no", false}, {"NO", false}, {"0", false}, {"n", false}, {"N", false},
		{"  False  ", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := Coerce(tt.text, domain.KindBoolean)
			if err != nil {
				t.Fatalf("Coerce(%q) error = %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("Coerce(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCoerceBooleanRejects(t *testing.T) {
	for _, text := range []string{"maybe", "None", "2", "", "[True]"} {
		got, err := Coerce(text, domain.KindBoolean)
		if !errors.Is(err, domain.ErrTypeCoercion) {
			t.Errorf("Coerce(%q) = %v, %v; want type coercion error", text, got, err)
			continue
		}
		var derr *domain.Error
		if errors.As(err, &derr) && (derr.Target != domain.KindBoolean || derr.Text != strings.TrimSpace(text)) {
			t.Errorf("error details = %+v", derr)
		}
	}
}

func TestParseFalseIsNeverTrue(t *testing.T) {
	got, err := Parse("<answer>False</answer>", domain.KindBoolean)
	if err != nil {
		t.Fatal(err)
	}
	if got != false {
		t.Fatalf("Parse(False) = %v, want false", got)
	}
}

func TestCoerceContainers(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind domain.ResultKind
		want any
	}{
		{"tuple", `("Santi Cazorla", "scored a touchdown")`, domain.KindTuple, literal.Tuple{"Santi Cazorla", "scored a touchdown"}},
		{"tuple from list", `['a', 'b']`, domain.KindTuple, literal.Tuple{"a", "b"}},
		{"bare tuple", `'Bam Adebayo', 'scored a reverse layup', ''`, domain.KindTuple, literal.Tuple{"Bam Adebayo", "scored a reverse layup", ""}},
		{"list", "[10, 20, 30]", domain.KindSequence, []any{10, 20, 30}},
		{"list from tuple", "(1, 2, 3)", domain.KindSequence, []any{1, 2, 3}},
		{"nested list", "[[1, 2], []]", domain.KindSequence, []any{[]any{1, 2}, []any{}}},
		{"dict", `{"key": "value"}`, domain.KindMapping, literal.Dict{"key": "value"}},
		{"set", "{'go north', 'look'}", domain.KindSet, literal.NewSet("go north", "look")},
		{"set from list", "['a', 'a', 'b']", domain.KindSet, literal.NewSet("a", "b")},
		{"empty set from braces", "{}", domain.KindSet, literal.Set{}},
		{"empty set call", "set()", domain.KindSet, literal.Set{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.text, tt.kind)
			if err != nil {
				t.Fatalf("Coerce(%q, %v) error = %v", tt.text, tt.kind, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Coerce(%q, %v) mismatch (-want +got):\n%s", tt.text, tt.kind, diff)
			}
		})
	}
}

func TestCoerceContainerFailures(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind domain.ResultKind
	}{
		// A bare string must never be iterated into characters.
		{"plain text as tuple", "Santi Cazorla", domain.KindTuple},
		{"single char as list", "a", domain.KindSequence},
		{"quoted string as list", "'abc'", domain.KindSequence},
		{"syntax error", "[1, 2", domain.KindSequence},
		{"list as dict", "[1, 2]", domain.KindMapping},
		{"dict as list", "{'a': 1}", domain.KindSequence},
		{"int as tuple", "5", domain.KindTuple},
		{"unhashable set member", "[[1], 2]", domain.KindSet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.text, tt.kind)
			if !errors.Is(err, domain.ErrTypeCoercion) {
				t.Fatalf("Coerce(%q, %v) = %#v, %v; want type coercion error", tt.text, tt.kind, got, err)
			}
		})
	}
}

func TestCoerceScalars(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind domain.ResultKind
		want any
	}{
		{"int", "42", domain.KindInteger, 42},
		{"int with sign", "+7", domain.KindInteger, 7},
		{"int via literal", "4_2", domain.KindInteger, 42},
		{"int from float literal", "42.0", domain.KindInteger, 42.0},
		{"int falls back to text", "forty-two", domain.KindInteger, "forty-two"},
		{"float", "3.5", domain.KindReal, 3.5},
		{"float from int text", "2", domain.KindReal, 2.0},
		{"float falls back to list literal", "[1.5]", domain.KindReal, []any{1.5}},
		{"float falls back to text", "about three", domain.KindReal, "about three"},
		{"string", "hello", domain.KindText, "hello"},
		{"string keeps quotes", "'basketball'", domain.KindText, "'basketball'"},
		{"unknown is text", "  soccer ", domain.KindUnknown, "soccer"},
		{"empty text", "", domain.KindText, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.text, tt.kind)
			if err != nil {
				t.Fatalf("Coerce(%q, %v) error = %v", tt.text, tt.kind, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Coerce(%q, %v) mismatch (-want +got):\n%s", tt.text, tt.kind, diff)
			}
		})
	}
}

func TestAnswerRoundTrip(t *testing.T) {
	tests := []struct {
		kind  domain.ResultKind
		value any
	}{
		{domain.KindInteger, 1234},
		{domain.KindReal, 0.25},
		{domain.KindTuple, literal.Tuple{"Santi Cazorla", "scored a touchdown."}},
		{domain.KindMapping, literal.Dict{"north": "tunnel end", "south": []any{"desert"}}},
		{domain.KindSet, literal.NewSet(1, 2, 3)},
	}
	for _, tt := range tests {
		raw := "<thought>...</thought>\n<answer>" + literal.Format(tt.value) + "</answer>"
		got, err := Parse(raw, tt.kind)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", raw, err)
			continue
		}
		if diff := cmp.Diff(tt.value, got); diff != "" {
			t.Errorf("round trip of %v mismatch (-want +got):\n%s", tt.kind, diff)
		}
	}
}
