package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/howard-nolan/questionrouter/internal/auth"
	"github.com/howard-nolan/questionrouter/internal/embed"
	"github.com/howard-nolan/questionrouter/internal/fanout"
	"github.com/howard-nolan/questionrouter/internal/mocks"
	"github.com/howard-nolan/questionrouter/internal/model"
	"github.com/howard-nolan/questionrouter/internal/provider"
)

func newTestServer(t *testing.T) (*httptest.Server, *mocks.MockAdapter) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Lookup(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, false, nil).AnyTimes()
	store.EXPECT().WriteThrough(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	adapter := mocks.NewMockAdapter(ctrl)
	adapter.EXPECT().Descriptor().Return(provider.Descriptor{Name: "wanneng"}).AnyTimes()

	reg, err := provider.NewRegistry(adapter)
	require.NoError(t, err)

	engine := fanout.New(reg, store, embed.NoneClient{})
	tokens := auth.NewInMemoryTokenStore(map[string]model.Caller{
		"valid-token": {ID: "caller-1", ProviderConfigs: []model.Provider{{Name: "wanneng"}}},
	})

	srv := New("", engine, tokens, zap.NewNop(), 5*time.Second, 5*time.Second)
	return httptest.NewServer(srv.Router()), adapter
}

func TestSearch_RejectsMissingAuth(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/search", "application/json", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSearch_HappyPath(t *testing.T) {
	ts, adapter := newTestServer(t)
	defer ts.Close()

	adapter.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(model.Answer{Provider: "wanneng", Success: true, Choice: []string{"A"}})

	body, _ := json.Marshal(map[string]any{
		"query": map[string]any{
			"content": "劳动最光荣",
			"type":    0,
			"options": []string{"劳动最光荣", "劳动最可耻"},
		},
	})

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/v1/search", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer valid-token")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded model.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Equal(t, []string{"A"}, decoded.UnifiedAnswer.AnswerKey)
	assert.Equal(t, 1, decoded.SuccessfulProviders)
}

func TestSearch_InvalidQueryType(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	body, _ := json.Marshal(map[string]any{
		"query": map[string]any{"content": "x", "type": 99},
	})
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/v1/search", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer valid-token")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthz_NoAuthRequired(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
