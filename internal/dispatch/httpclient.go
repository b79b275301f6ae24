package dispatch

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tjfontaine/secretagent/internal/config"
)

// HTTPClient returns a traced HTTP client honoring cfg.Timeout.
func HTTPClient(cfg config.BackendConfig) *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   cfg.Timeout,
	}
}
