package secretagent_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tjfontaine/secretagent/pkg/secretagent"
)

func newAgent(t *testing.T, answer string) *secretagent.Agent {
	t.Helper()
	reg := secretagent.NewRegistry(nil)
	err := reg.Register(secretagent.Factory{
		Name:         "canned",
		DefaultModel: "test",
		Create: func(secretagent.BackendConfig) (secretagent.Backend, error) {
			return secretagent.BackendFunc(func(context.Context, string, string) (string, error) {
				return answer, nil
			}), nil
		},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	a, err := secretagent.New(secretagent.WithRegistry(reg), secretagent.WithOutput(io.Discard))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := a.Configure(secretagent.Options{secretagent.KeyService: "canned"}); err != nil {
		t.Fatal(err)
	}
	return a
}

func TestCall_Typed(t *testing.T) {
	ctx := context.Background()

	a := newAgent(t, "<answer>False</answer>")
	isDangerous := a.Declare("is_dangerous").Param("room_desc", "str").
		Returns(secretagent.KindBoolean).MustBuild()
	dangerous, err := secretagent.Call[bool](ctx, isDangerous, "A sunny meadow")
	if err != nil {
		t.Fatalf("Call[bool]() error = %v", err)
	}
	if dangerous {
		t.Error("Call[bool]() = true, want false")
	}

	a = newAgent(t, `<answer>{"a", "b"}</answer>`)
	tags := a.Declare("tags").Returns(secretagent.KindSet).MustBuild()
	got, err := secretagent.Call[secretagent.Set](ctx, tags)
	if err != nil {
		t.Fatalf("Call[Set]() error = %v", err)
	}
	if diff := cmp.Diff(secretagent.NewSet("a", "b"), got); diff != "" {
		t.Errorf("Call[Set]() mismatch (-want +got):\n%s", diff)
	}
}

func TestCall_WrongGoType(t *testing.T) {
	a := newAgent(t, "<answer>not a number</answer>")
	count := a.Declare("count").Returns(secretagent.KindInteger).MustBuild()

	_, err := secretagent.Call[int](context.Background(), count)
	if !errors.Is(err, secretagent.ErrTypeCoercion) {
		t.Fatalf("Call[int]() error = %v, want type coercion error", err)
	}
	var e *secretagent.Error
	if !errors.As(err, &e) {
		t.Fatal("error is not *secretagent.Error")
	}
	if e.Text != "'not a number'" || e.Target != secretagent.KindInteger {
		t.Errorf("error text = %q target = %v", e.Text, e.Target)
	}
}

func TestCallWith_KeywordOverrides(t *testing.T) {
	a := newAgent(t, "<answer>ok</answer>")
	s := a.Declare("f").MustBuild()

	_, err := secretagent.CallWith[string](context.Background(), s, map[string]any{secretagent.KeyService: "bogus"})
	if secretagent.KindOf(err) != secretagent.KindConfiguration {
		t.Fatalf("CallWith() error = %v, want configuration error", err)
	}
}

func TestDefaultAgent(t *testing.T) {
	if secretagent.Default() != secretagent.Default() {
		t.Fatal("Default() returned different agents")
	}

	s := secretagent.Declare("quickstart").Param("x", "str").MustBuild()
	var log *secretagent.Log
	err := secretagent.Configuration(secretagent.Options{secretagent.KeyService: "null"}, func() error {
		return secretagent.Recording(func(l *secretagent.Log) error {
			log = l
			_, err := s.Invoke(context.Background(), "hi")
			return err
		})
	})
	if !errors.Is(err, secretagent.ErrMalformedResponse) {
		t.Fatalf("error = %v, want malformed response from the null service", err)
	}
	if log.Len() != 0 {
		t.Errorf("recorded %d events", log.Len())
	}
	if got := secretagent.Default().Get(secretagent.KeyService, nil); got != nil {
		t.Errorf("service after scope = %v, want unset", got)
	}
}
