package fanout

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/howard-nolan/questionrouter/internal/cache"
	"github.com/howard-nolan/questionrouter/internal/embed"
	"github.com/howard-nolan/questionrouter/internal/metrics"
	"github.com/howard-nolan/questionrouter/internal/mocks"
	"github.com/howard-nolan/questionrouter/internal/model"
	"github.com/howard-nolan/questionrouter/internal/provider"
)

func TestEngine_Search_NoProvidersReturnsError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, false, nil).AnyTimes()

	reg, err := provider.NewRegistry()
	require.NoError(t, err)
	engine := New(reg, store, embed.NoneClient{})

	_, err = engine.Search(context.Background(), model.Query{}, nil)
	assert.ErrorIs(t, err, ErrNoProviders)
}

func TestEngine_Search_CacheHitSkipsAdapterCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	adapter := mocks.NewMockAdapter(ctrl)
	adapter.EXPECT().Descriptor().Return(provider.Descriptor{Name: "wanneng"}).AnyTimes()
	adapter.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	question := &cache.Question{ID: 7}
	store.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return(question, true, nil)
	cachedAnswer := &model.Answer{Provider: "wanneng", Success: true, Choice: []string{"A"}}
	store.EXPECT().BatchGetAnswers(gomock.Any(), question, []string{"wanneng"}).
		Return(map[string]*model.Answer{"wanneng": cachedAnswer}, nil)

	reg, err := provider.NewRegistry(adapter)
	require.NoError(t, err)
	engine := New(reg, store, embed.NoneClient{})

	resp, err := engine.Search(context.Background(), model.Query{Type: model.TypeSingleChoice}, []model.Provider{{Name: "wanneng"}})
	require.NoError(t, err)
	require.Len(t, resp.ProviderAnswers, 1)
	assert.Equal(t, []string{"A"}, resp.ProviderAnswers[0].Choice)
}

func TestEngine_Search_CacheMissCallsAdapterAndWritesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	adapter := mocks.NewMockAdapter(ctrl)
	adapter.EXPECT().Descriptor().Return(provider.Descriptor{Name: "wanneng"}).AnyTimes()

	freshAnswer := model.Answer{Provider: "wanneng", Success: true, Choice: []string{"B"}}
	adapter.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).Return(freshAnswer)

	store.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, false, nil)
	written := make(chan struct{})
	store.EXPECT().WriteThrough(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ embed.Client, _ model.Query, results []cache.ProviderResult) error {
			defer close(written)
			require.Len(t, results, 1)
			assert.Equal(t, "wanneng", results[0].Provider)
			return nil
		}).
		MaxTimes(1)

	reg, err := provider.NewRegistry(adapter)
	require.NoError(t, err)
	engine := New(reg, store, embed.NoneClient{})

	resp, err := engine.Search(context.Background(), model.Query{Type: model.TypeSingleChoice}, []model.Provider{{Name: "wanneng"}})
	require.NoError(t, err)
	require.Len(t, resp.ProviderAnswers, 1)
	assert.Equal(t, []string{"B"}, resp.ProviderAnswers[0].Choice)

	// write-through runs in a detached goroutine; wait for it to land
	// before the mock controller is torn down by t.Cleanup.
	select {
	case <-written:
	case <-time.After(time.Second):
		t.Fatal("write-through was not called")
	}
	ctrl.Finish()
}

func TestEngine_Search_UnknownProviderDegradesToConfigError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, false, nil)
	store.EXPECT().WriteThrough(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	reg, err := provider.NewRegistry()
	require.NoError(t, err)
	engine := New(reg, store, embed.NoneClient{})

	resp, err := engine.Search(context.Background(), model.Query{Type: model.TypeSingleChoice}, []model.Provider{{Name: "ghost"}})
	require.NoError(t, err)
	require.Len(t, resp.ProviderAnswers, 1)
	assert.False(t, resp.ProviderAnswers[0].Success)
	assert.Equal(t, model.ErrorKindConfigError, resp.ProviderAnswers[0].ErrorKind)
}

func TestEngine_Search_LocalProviderBypassesBatchLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	localAdapter := mocks.NewMockAdapter(ctrl)
	localAdapter.EXPECT().Descriptor().Return(provider.Descriptor{Name: "local"}).AnyTimes()
	localAdapter.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(model.Answer{Provider: "local", Success: true, Choice: []string{"A"}})

	store.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, false, nil)
	// BatchGetAnswers must never be called with "local" in the name list.
	store.EXPECT().BatchGetAnswers(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	reg, err := provider.NewRegistry(localAdapter)
	require.NoError(t, err)
	engine := New(reg, store, embed.NoneClient{})

	resp, err := engine.Search(context.Background(), model.Query{Type: model.TypeSingleChoice}, []model.Provider{{Name: "local"}})
	require.NoError(t, err)
	require.Len(t, resp.ProviderAnswers, 1)
	assert.Equal(t, "local", resp.ProviderAnswers[0].Provider)
}

func TestEngine_Search_RecordsMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	adapter := mocks.NewMockAdapter(ctrl)
	adapter.EXPECT().Descriptor().Return(provider.Descriptor{Name: "wanneng"}).AnyTimes()
	adapter.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(model.Answer{Provider: "wanneng", Success: false, ErrorKind: model.ErrorKindAPIError})

	store.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, false, nil)

	reg, err := provider.NewRegistry(adapter)
	require.NoError(t, err)

	m := metrics.New()
	engine := New(reg, store, embed.NoneClient{}, WithMetrics(m))

	_, err = engine.Search(context.Background(), model.Query{Type: model.TypeSingleChoice}, []model.Provider{{Name: "wanneng"}})
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheLookupTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheHits.WithLabelValues("question", "miss")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FanoutRequests.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AdapterErrors.WithLabelValues("wanneng", string(model.ErrorKindAPIError))))
}
