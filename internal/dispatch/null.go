package dispatch

import (
	"context"

	"github.com/tjfontaine/secretagent/internal/config"
)

// NullService is the service name of the offline test backend.
const NullService = "null"

// NullAnswer is the text returned by the null backend for every prompt.
const NullAnswer = "null service was used - no answer"

// NullFactory returns the factory for the null backend, which never touches
// the network.
func NullFactory() Factory {
	return Factory{
		Name:        NullService,
		Description: "Offline backend that always returns a fixed answer",
		Create: func(config.BackendConfig) (Backend, error) {
			return BackendFunc(func(context.Context, string, string) (string, error) {
				return NullAnswer, nil
			}), nil
		},
	}
}
