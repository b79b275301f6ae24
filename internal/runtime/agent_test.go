package runtime

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tjfontaine/secretagent/internal/config"
	"github.com/tjfontaine/secretagent/internal/recorder"
)

func TestNew_Defaults(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	names := a.Registry().Names()
	want := []string{"anthropic", "gemini", "null", "ollama", "openai", "together"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	if got := a.Get(config.KeyService, nil); got != nil {
		t.Errorf("service = %v, want unset", got)
	}
}

func TestNew_WithSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secretagent.yaml")
	content := `
service: anthropic
model: claude-haiku-4-5-20251001
echo_call: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := New(WithSettingsFile(path))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := a.Get(config.KeyService, nil); got != "anthropic" {
		t.Errorf("service = %v, want anthropic", got)
	}
	if got := a.Get(config.KeyModel, nil); got != "claude-haiku-4-5-20251001" {
		t.Errorf("model = %v", got)
	}
	if got := a.Get(config.KeyEchoCall, nil); got != true {
		t.Errorf("echo_call = %v, want true", got)
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"nil settings", WithSettings(nil)},
		{"nil registry", WithRegistry(nil)},
		{"bad template", WithTemplate("no placeholders")},
		{"missing template file", WithTemplateFile(filepath.Join(t.TempDir(), "missing.txt"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opt); err == nil {
				t.Error("New() error = nil")
			}
		})
	}
}

func TestAgent_ConfigurationRestoresOnFailure(t *testing.T) {
	a := newTestAgent(t)
	if err := a.Configure(config.Options{"service": "null", "model": "base"}); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := a.Configuration(config.Options{"model": "scoped", "echo_call": true}, func() error {
		if got := a.Get(config.KeyModel, nil); got != "scoped" {
			t.Errorf("model in scope = %v, want scoped", got)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Configuration() error = %v, want boom", err)
	}

	for key, want := range map[string]any{"service": "null", "model": "base", "echo_call": nil} {
		if got := a.Get(key, nil); got != want {
			t.Errorf("%s after scope = %v, want %v", key, got, want)
		}
	}
}

func TestAgent_StartRecording(t *testing.T) {
	a, _ := newMockAgent(t)
	log, stop := a.StartRecording()
	if !a.recorder.Active() {
		t.Fatal("recording not active")
	}
	stop()
	stop()
	if a.recorder.Active() {
		t.Error("recording still active after stop")
	}

	a.recorder.Record(recorder.Event{Func: "late"})
	if log.Len() != 0 {
		t.Errorf("log grew after stop: %d", log.Len())
	}
}
