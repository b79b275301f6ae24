package registration

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tjfontaine/secretagent/internal/config"
	"github.com/tjfontaine/secretagent/internal/dispatch"
	"github.com/tjfontaine/secretagent/internal/domain"
)

func TestNewRegistry_Names(t *testing.T) {
	reg := NewRegistry(nil)

	got := strings.Join(reg.Names(), ",")
	if want := "anthropic,gemini,null,ollama,openai,together"; got != want {
		t.Errorf("Names() = %q, want %q", got, want)
	}
}

func TestRegisterBuiltins_KeepsReplacements(t *testing.T) {
	reg := dispatch.NewRegistry(nil)
	reg.MustRegister(dispatch.Factory{
		Name: "openai",
		Create: func(config.BackendConfig) (dispatch.Backend, error) {
			return dispatch.BackendFunc(func(context.Context, string, string) (string, error) {
				return "<answer>replaced</answer>", nil
			}), nil
		},
	})
	RegisterBuiltins(reg)

	d := dispatch.New(reg, dispatch.WithOutput(&strings.Builder{}))
	resp, err := d.Dispatch(context.Background(), dispatch.Request{Prompt: "p", Service: "openai"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "<answer>replaced</answer>" {
		t.Errorf("Text = %q", resp.Text)
	}
}

func TestNewRegistry_MissingKeyIsConfigurationError(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	reg := NewRegistry(&config.Settings{})
	d := dispatch.New(reg)

	_, err := d.Dispatch(context.Background(), dispatch.Request{Prompt: "p", Service: "openai"})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("error = %v, want configuration error", err)
	}
}
