package together

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tjfontaine/secretagent/internal/config"
)

func TestWithDefaults(t *testing.T) {
	if got := withDefaults(config.BackendConfig{}).BaseURL; got != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", got, DefaultBaseURL)
	}
	if got := withDefaults(config.BackendConfig{BaseURL: "http://proxy"}).BaseURL; got != "http://proxy" {
		t.Errorf("BaseURL = %q, want http://proxy", got)
	}
}

func TestFactory_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tg-key" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"<answer>soccer</answer>"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	f := Factory()
	cfg := config.BackendConfig{APIKey: "tg-key", BaseURL: server.URL}
	if err := f.ValidateConfig(cfg); err != nil {
		t.Fatalf("ValidateConfig() error = %v", err)
	}
	b, err := f.Create(cfg)
	if err != nil {
		t.Fatal(err)
	}

	got, err := b.Complete(context.Background(), "p", f.DefaultModel)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "<answer>soccer</answer>" {
		t.Errorf("Complete() = %q", got)
	}
}

func TestFactory_RequiresKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	if err := Factory().ValidateConfig(config.BackendConfig{}); err == nil {
		t.Error("ValidateConfig() without key succeeded")
	}
}
