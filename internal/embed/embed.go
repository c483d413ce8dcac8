// Package embed provides the black-box text -> unit-norm vector
// capability the semantic cache uses for approximate lookup. The core
// never depends on a particular embedding model (§9 DESIGN NOTES); it
// only requires a fixed, process-wide dimension and unit-normalized
// output.
package embed

import (
	"context"
	"errors"
)

// Mode selects between query-time and passage-time embedding. The cache
// embeds lookups in ModeQuery and stored questions in ModePassage. A
// Client backed by a retrieval-tuned model applies its instruction
// prefix internally (ONNXClient prefixes ModeQuery text only); a Client
// for a symmetric model may ignore the mode.
type Mode int

const (
	ModeQuery Mode = iota
	ModePassage
)

// ErrUnavailable is returned by a Client (or is the Client itself, via
// NoneClient) when no embedding backend is configured. Callers degrade
// to exact-match-only caching when they see this error (§9).
var ErrUnavailable = errors.New("embed: embedding client unavailable")

// Client maps text to a fixed-length, unit-norm vector.
type Client interface {
	Embed(ctx context.Context, text string, mode Mode) ([]float32, error)
	// Dimension returns D, the fixed vector length this client produces.
	Dimension() int
}

// NoneClient is the degraded-mode implementation: every call fails with
// ErrUnavailable. cache.Store treats a nil or NoneClient the same way —
// approximate lookup is skipped and the cache still functions in
// exact-match-only mode (§4.3, §9).
type NoneClient struct{}

func (NoneClient) Embed(context.Context, string, Mode) ([]float32, error) {
	return nil, ErrUnavailable
}

func (NoneClient) Dimension() int { return 0 }
