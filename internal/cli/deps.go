package cli

import (
	"context"
	"io"
	"os"

	"github.com/recreate-run/multimodal-analyzer/internal/provider"
	"github.com/recreate-run/multimodal-analyzer/pkg/executor"
)

// OpenFunc resolves a model name, loads its credentials and builds the client.
type OpenFunc func(ctx context.Context, model string, getenv func(string) string, s provider.Settings) (provider.Provider, provider.Route, error)

// Deps are the process-level resources a command uses.
type Deps struct {
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Getenv   func(string) string
	Executor executor.Executor
	Open     OpenFunc
}

// DefaultDeps wires the real process streams, environment and vendor clients.
func DefaultDeps() Deps {
	return Deps{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Getenv:   os.Getenv,
		Executor: executor.New(),
		Open:     provider.Open,
	}
}
