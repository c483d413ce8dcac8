package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/howard-nolan/questionrouter/internal/embed"
	"github.com/howard-nolan/questionrouter/internal/model"
)

// RedisReadThrough wraps a Store with a short-TTL read-through layer so
// that a burst of concurrent requests for the same hot question hits
// Postgres once instead of once per request (§4.3 DOMAIN STACK). A
// Redis outage degrades to passing every call straight through to the
// wrapped Store — it is never treated as a cache-correctness failure.
type RedisReadThrough struct {
	next   Store
	client *redis.Client
	ttl    time.Duration
}

// NewRedisReadThrough wraps next with a Redis client using the default
// 60s TTL (DefaultReadThroughTTL).
func NewRedisReadThrough(next Store, client *redis.Client) *RedisReadThrough {
	return &RedisReadThrough{next: next, client: client, ttl: DefaultReadThroughTTL}
}

// WithTTL overrides the default read-through TTL.
func (r *RedisReadThrough) WithTTL(ttl time.Duration) *RedisReadThrough {
	r.ttl = ttl
	return r
}

// cachedExact is the JSON envelope stored in Redis for a FindExact hit.
// Found distinguishes "question not found" (cached to absorb repeated
// misses) from "no entry in Redis yet" (a redis.Nil error).
type cachedExact struct {
	Found    bool      `json:"found"`
	Question *Question `json:"question,omitempty"`
}

func (r *RedisReadThrough) FindExact(ctx context.Context, normalizedContent string, qtype model.QuestionType, normalizedOptions []string) (*Question, bool, error) {
	key := readThroughKey(normalizedContent, qtype, normalizedOptions)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var cached cachedExact
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached.Question, cached.Found, nil
		}
		// A corrupt cache entry falls through to Postgres rather than
		// failing the request.
	} else if !errors.Is(err, redis.Nil) {
		// Redis is unavailable: degrade straight to the store of record.
		return r.next.FindExact(ctx, normalizedContent, qtype, normalizedOptions)
	}

	q, ok, err := r.next.FindExact(ctx, normalizedContent, qtype, normalizedOptions)
	if err != nil {
		return nil, false, err
	}
	r.setExact(ctx, key, cachedExact{Found: ok, Question: q})
	return q, ok, nil
}

func (r *RedisReadThrough) setExact(ctx context.Context, key string, v cachedExact) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	// Best-effort: a write failure here only means the next request
	// re-hits Postgres, never a correctness problem.
	_ = r.client.Set(ctx, key, raw, r.ttl).Err()
}

func (r *RedisReadThrough) FindApproximate(ctx context.Context, embedder embed.Client, content string, qtype model.QuestionType, normalizedOptions []string) (*Question, bool, error) {
	// Approximate lookup embeds the raw, unnormalized content and is not
	// cheap to key on, so it bypasses Redis and always goes straight to
	// the vector index.
	return r.next.FindApproximate(ctx, embedder, content, qtype, normalizedOptions)
}

func (r *RedisReadThrough) Lookup(ctx context.Context, embedder embed.Client, q model.Query) (*Question, bool, error) {
	normContent := normalizeContentForLookup(q.Content)
	normOptions := normalizeOptionsForLookup(q.Options)

	if found, ok, err := r.FindExact(ctx, normContent, q.Type, normOptions); err != nil {
		return nil, false, err
	} else if ok {
		return found, true, nil
	}
	if embedder == nil {
		return nil, false, nil
	}
	return r.FindApproximate(ctx, embedder, q.Content, q.Type, normOptions)
}

func (r *RedisReadThrough) BatchGetAnswers(ctx context.Context, question *Question, providerNames []string) (map[string]*model.Answer, error) {
	if question == nil || len(providerNames) == 0 {
		return r.next.BatchGetAnswers(ctx, question, providerNames)
	}

	out := make(map[string]*model.Answer, len(providerNames))
	missing := make([]string, 0, len(providerNames))
	keys := make(map[string]string, len(providerNames))

	for _, name := range providerNames {
		key := fmt.Sprintf("qrouter:a:%d:%s", question.ID, name)
		keys[name] = key
		raw, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			missing = append(missing, name)
			continue
		}
		var ans *model.Answer
		if jsonErr := json.Unmarshal(raw, &ans); jsonErr != nil {
			missing = append(missing, name)
			continue
		}
		out[name] = ans
	}
	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := r.next.BatchGetAnswers(ctx, question, missing)
	if err != nil {
		return nil, err
	}
	for name, ans := range fetched {
		out[name] = ans
		if raw, err := json.Marshal(ans); err == nil {
			_ = r.client.Set(ctx, keys[name], raw, r.ttl).Err()
		}
	}
	return out, nil
}

func (r *RedisReadThrough) WriteThrough(ctx context.Context, embedder embed.Client, q model.Query, results []ProviderResult) error {
	// Invalidate rather than update in place: the next FindExact re-reads
	// the question from the wrapped store. Only the exact-match entry is
	// deleted; per-provider answer entries cached by BatchGetAnswers
	// (including cached misses) stay until their TTL expires.
	normContent := normalizeContentForLookup(q.Content)
	normOptions := normalizeOptionsForLookup(q.Options)
	_ = r.client.Del(ctx, readThroughKey(normContent, q.Type, normOptions)).Err()

	return r.next.WriteThrough(ctx, embedder, q, results)
}

func (r *RedisReadThrough) FindAnyAnswer(ctx context.Context, q model.Query) (*model.Answer, bool, error) {
	return r.next.FindAnyAnswer(ctx, q)
}
