// Package streaming runs the line-delimited request/response session used by
// --input-format stream-json.
package streaming

import (
	"context"
	"io"
)

// Session answers one NDJSON user message per input line.
type Session interface {
	// Run reads in until EOF, writing exactly one response line to out for
	// every non-blank input line before reading the next one.
	Run(ctx context.Context, in io.Reader, out io.Writer) (Summary, error)
}

// Summary counts the lines a session answered.
type Summary struct {
	Lines  int
	Failed int
}
