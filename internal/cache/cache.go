// Package cache implements the two-tier semantic cache described in
// §4.3: a Postgres/pgvector store of record for exact and approximate
// question lookup, fronted by a short-TTL Redis read-through layer that
// absorbs duplicate concurrent requests for the same hot question.
package cache

import (
	"context"
	"time"

	"github.com/howard-nolan/questionrouter/internal/embed"
	"github.com/howard-nolan/questionrouter/internal/model"
)

// Tunables for approximate (ANN) lookup, overridable via config.
const (
	DefaultSimilarityThreshold = 0.82
	DefaultANNCandidates       = 5
)

// DefaultReadThroughTTL is how long a BatchGetAnswers/FindExact result
// stays in the Redis read-through layer before it is re-fetched from
// Postgres.
const DefaultReadThroughTTL = 60 * time.Second

// Question is the persisted, normalized identity of a question: the
// unit that exact- and approximate-match both resolve to before any
// per-provider answer is looked up.
type Question struct {
	ID                int64
	Content           string
	NormalizedContent string
	Type              model.QuestionType
	Options           []string // raw, caller-supplied order
	NormalizedOptions []string // normalized + sorted, used for matching
	Embedding         []float32
	CreatedAt         time.Time
}

// Answer is a deduplicated, provider-agnostic payload shape: the same
// logical answer observed from two different providers collapses to
// one Answer row, referenced by two QuestionProviderAnswer rows.
type Answer struct {
	ID          int64
	Fingerprint string
	Type        model.QuestionType
	Choice      []string
	Judgement   *bool
	Text        []string
}

// QuestionProviderAnswer links a Question, a provider name, and the
// Answer that provider gave for it.
type QuestionProviderAnswer struct {
	QuestionID int64
	Provider   string
	AnswerID   int64
	ObservedAt time.Time
}

// ProviderResult is what the fan-out engine hands to WriteThrough: one
// provider's answer to one query, ready to be persisted.
type ProviderResult struct {
	Provider string
	Answer   model.Answer
}

// Store is the cache's full read/write contract. PostgresStore is the
// store of record; RedisReadThrough wraps a Store to add the hot-path
// cache described in §4.3.
type Store interface {
	FindExact(ctx context.Context, normalizedContent string, qtype model.QuestionType, normalizedOptions []string) (*Question, bool, error)
	FindApproximate(ctx context.Context, embedder embed.Client, content string, qtype model.QuestionType, normalizedOptions []string) (*Question, bool, error)
	Lookup(ctx context.Context, embedder embed.Client, q model.Query) (*Question, bool, error)
	BatchGetAnswers(ctx context.Context, question *Question, providerNames []string) (map[string]*model.Answer, error)
	WriteThrough(ctx context.Context, embedder embed.Client, q model.Query, results []ProviderResult) error
	FindAnyAnswer(ctx context.Context, q model.Query) (*model.Answer, bool, error)
}
