// Package fanout implements the bounded-concurrency dispatch engine
// that sends one question to every configured provider, collects
// whatever answers come back (cached or freshly fetched), and hands the
// result to the aggregator (§4.5).
package fanout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/howard-nolan/questionrouter/internal/aggregate"
	"github.com/howard-nolan/questionrouter/internal/cache"
	"github.com/howard-nolan/questionrouter/internal/embed"
	"github.com/howard-nolan/questionrouter/internal/metrics"
	"github.com/howard-nolan/questionrouter/internal/model"
	"github.com/howard-nolan/questionrouter/internal/provider"
)

// DefaultConcurrency bounds how many adapter calls run at once.
const DefaultConcurrency = 20

// ErrNoProviders is returned when the resolved provider list is empty;
// internal/server maps this to HTTP 400.
var ErrNoProviders = errors.New("fanout: no providers resolved for request")

// localProviderName is matched case-insensitively, grounded on
// services/routers/search.py's `p.name.lower() == "local"`.
const localProviderName = "local"

// Engine dispatches a query to a registry of adapters.
type Engine struct {
	registry    *provider.Registry
	store       cache.Store
	embedder    embed.Client
	logger      *zap.Logger
	metrics     *metrics.Metrics
	concurrency int
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithConcurrency overrides DefaultConcurrency.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithLogger overrides the no-op default logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics attaches a collector bundle. Without it, Engine records
// nothing; every collector access is guarded on e.metrics != nil.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New builds a fan-out Engine. embedder may be embed.NoneClient{} or nil
// for the degraded, exact-match-only mode described in §9.
func New(registry *provider.Registry, store cache.Store, embedder embed.Client, opts ...Option) *Engine {
	e := &Engine{
		registry:    registry,
		store:       store,
		embedder:    embedder,
		logger:      zap.NewNop(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search runs the full fan-out sequence described in §4.5 and returns
// the aggregated response.
func (e *Engine) Search(ctx context.Context, q model.Query, providers []model.Provider) (*model.Response, error) {
	if len(providers) == 0 {
		e.recordRequest("no_providers", 0)
		return nil, ErrNoProviders
	}

	start := time.Now()
	traceID := uuid.New().String()[:8]
	logger := e.logger.With(zap.String("trace_id", traceID))

	if e.metrics != nil {
		e.metrics.CacheLookupTotal.Inc()
	}

	localProviders, remoteProviders := splitLocal(providers)

	question, hit, err := e.store.Lookup(ctx, e.embedder, q)
	if err != nil {
		logger.Warn("cache lookup failed, proceeding without cached answers", zap.Error(err))
	}
	e.recordCacheResult("question", hit)

	var cached map[string]*model.Answer
	if question != nil && len(remoteProviders) > 0 {
		names := make([]string, len(remoteProviders))
		for i, p := range remoteProviders {
			names[i] = p.Name
		}
		cached, err = e.store.BatchGetAnswers(ctx, question, names)
		if err != nil {
			logger.Warn("batch cache read failed, treating as all-miss", zap.Error(err))
			cached = nil
		}
		for _, p := range remoteProviders {
			e.recordCacheResult("answer", cached[p.Name] != nil)
		}
	}

	answers := make([]model.Answer, len(providers))
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.concurrency)

	dispatch := func(idx int, p model.Provider) {
		defer wg.Done()
		sem <- struct{}{}
		defer func() { <-sem }()
		answers[idx] = e.callAdapter(ctx, logger, q, p)
	}

	toWriteThrough := make([]cache.ProviderResult, 0, len(remoteProviders))
	var writeMu sync.Mutex

	for i, p := range providers {
		i, p := i, p
		if isLocal(p) {
			wg.Add(1)
			go dispatch(i, p)
			continue
		}
		if hit, ok := cached[p.Name]; ok && hit != nil {
			answers[i] = *hit
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			ans := e.callAdapter(ctx, logger, q, p)
			answers[i] = ans
			if ans.Success {
				writeMu.Lock()
				toWriteThrough = append(toWriteThrough, cache.ProviderResult{Provider: p.Name, Answer: ans})
				writeMu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(toWriteThrough) > 0 {
		e.writeThroughAsync(logger, q, toWriteThrough)
	}

	resp := aggregate.Aggregate(q, answers)
	e.recordRequest("ok", time.Since(start))
	return &resp, nil
}

// callAdapter resolves and invokes an adapter, recovering from any
// panic as a second line of defense beyond the adapter's own
// responsibility not to panic (§4.2, §4.5 step 4).
func (e *Engine) callAdapter(ctx context.Context, logger *zap.Logger, q model.Query, p model.Provider) (result model.Answer) {
	adapter, ok := e.registry.Get(strings.ToLower(p.Name))
	if !ok {
		result = model.Fail(p.Name, q.Type, model.ErrorKindConfigError, "unknown provider %q", p.Name)
		e.recordAdapterError(result)
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("adapter panicked", zap.String("provider", p.Name), zap.Any("recovered", r))
			result = model.Fail(p.Name, q.Type, model.ErrorKindUnknown, "adapter panicked: %v", r)
		}
		e.recordAdapterError(result)
	}()
	return adapter.Search(ctx, q, p)
}

// recordRequest is a no-op when no metrics bundle is attached.
func (e *Engine) recordRequest(outcome string, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.FanoutRequests.WithLabelValues(outcome).Inc()
	if elapsed > 0 {
		e.metrics.FanoutLatency.WithLabelValues(outcome).Observe(elapsed.Seconds())
	}
}

func (e *Engine) recordCacheResult(tier string, hit bool) {
	if e.metrics == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	e.metrics.CacheHits.WithLabelValues(tier, result).Inc()
}

func (e *Engine) recordAdapterError(a model.Answer) {
	if e.metrics == nil || a.Success {
		return
	}
	e.metrics.AdapterErrors.WithLabelValues(a.Provider, string(a.ErrorKind)).Inc()
}

// writeThroughAsync persists results outside the request's lifetime: a
// client disconnect must not cancel a write the request already earned
// (§5, §9 write-through lifetime invariant). It runs with
// context.Background(), deliberately never cancelled by ctx.
func (e *Engine) writeThroughAsync(logger *zap.Logger, q model.Query, results []cache.ProviderResult) {
	go func() {
		bg := context.Background()
		if err := e.store.WriteThrough(bg, e.embedder, q, results); err != nil {
			logger.Error("write-through failed", zap.Error(err))
		}
	}()
}

func isLocal(p model.Provider) bool {
	return strings.EqualFold(p.Name, localProviderName)
}

func splitLocal(providers []model.Provider) (local, remote []model.Provider) {
	for _, p := range providers {
		if isLocal(p) {
			local = append(local, p)
		} else {
			remote = append(remote, p)
		}
	}
	return local, remote
}
