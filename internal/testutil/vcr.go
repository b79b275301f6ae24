// Package testutil holds helpers for backend adapter tests.
package testutil

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/dnaeon/go-vcr.v2/cassette"
	"gopkg.in/dnaeon/go-vcr.v2/recorder"
)

// credentialHeaders never reach a saved cassette.
var credentialHeaders = []string{"Authorization", "X-Api-Key", "X-Goog-Api-Key"}

// VCRMode returns the recorder mode selected by VCR_MODE: "record" calls the
// real service and rewrites cassettes, anything else replays.
func VCRMode() recorder.Mode {
	if os.Getenv("VCR_MODE") == "record" {
		return recorder.ModeRecording
	}
	return recorder.ModeReplaying
}

// NewVCRClient returns an HTTP client backed by the cassette
// testdata/fixtures/<cassetteName>.yaml. The recorder stops when the test
// ends.
func NewVCRClient(t *testing.T, cassetteName string) *http.Client {
	t.Helper()

	r, err := recorder.NewAsMode(filepath.Join("testdata", "fixtures", cassetteName), VCRMode(), nil)
	if err != nil {
		t.Fatalf("open cassette %s: %v", cassetteName, err)
	}

	// Prompt bodies follow the embedded template; match on method and URL.
	r.SetMatcher(func(req *http.Request, i cassette.Request) bool {
		return req.Method == i.Method && req.URL.String() == i.URL
	})
	r.AddFilter(func(i *cassette.Interaction) error {
		for _, h := range credentialHeaders {
			delete(i.Request.Headers, h)
		}
		return nil
	})

	t.Cleanup(func() {
		if err := r.Stop(); err != nil {
			t.Errorf("stop cassette %s: %v", cassetteName, err)
		}
	})
	return &http.Client{Transport: r}
}

// APIKey returns the env var value, or a placeholder when replaying.
func APIKey(envVar string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return "test-key"
}
