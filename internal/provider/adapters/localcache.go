package adapters

import (
	"context"

	"github.com/howard-nolan/questionrouter/internal/cache"
	"github.com/howard-nolan/questionrouter/internal/model"
	"github.com/howard-nolan/questionrouter/internal/provider"
)

// LocalCache is the special-cased adapter described in §4.2: it never
// makes a network call and isn't itself cacheable (its own answer is
// always a re-serving of something already cached). Any caller listing
// "local" as a provider name gets one, and only one, additional cache
// probe that returns whatever answer — from any provider — is already
// on file for the question.
//
// Grounded on providers/local.py in the original implementation.
type LocalCache struct {
	store cache.Store
}

// NewLocalCache builds the LocalCache adapter. name matching is
// case-insensitive at the registry/fan-out boundary (§4.5 step 2), so
// the descriptor name is the canonical lowercase form.
func NewLocalCache(store cache.Store) *LocalCache {
	return &LocalCache{store: store}
}

func (a *LocalCache) Descriptor() provider.Descriptor {
	return provider.Descriptor{
		Name:      "local",
		Home:      "本地缓存",
		Free:      true,
		Pay:       false,
		Cacheable: false,
		Schema:    nil,
	}
}

func (a *LocalCache) Search(ctx context.Context, q model.Query, _ model.Provider) model.Answer {
	answer, ok, err := a.store.FindAnyAnswer(ctx, q)
	if err != nil {
		return model.Fail("local", q.Type, model.ErrorKindUnknown, "cache lookup failed: %v", err)
	}
	if !ok {
		return model.Fail("local", q.Type, model.ErrorKindCacheMiss, "question not found in cache")
	}

	answer.Provider = "local"
	answer.Success = true
	return *answer
}
