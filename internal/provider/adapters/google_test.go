package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/howard-nolan/questionrouter/internal/model"
)

func TestGoogleLLM_Search_MatchesReplyToOption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "B"}}}},
			},
		})
	}))
	defer srv.Close()

	a := NewGoogleLLM(srv.URL, "gemini-1.5-flash", srv.Client())
	q := model.Query{
		Content: "劳动最光荣",
		Type:    model.TypeSingleChoice,
		Options: []string{"劳动最可耻", "劳动最光荣"},
	}
	ans := a.Search(context.Background(), q, model.Provider{Config: map[string]any{"api_key": "k"}})

	require.True(t, ans.Success)
	assert.Equal(t, []string{"B"}, ans.Choice)
}

func TestGoogleLLM_Search_EmptyCandidatesIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	a := NewGoogleLLM(srv.URL, "gemini-1.5-flash", srv.Client())
	ans := a.Search(context.Background(), model.Query{Type: model.TypeBlank}, model.Provider{Config: map[string]any{"api_key": "k"}})

	assert.False(t, ans.Success)
	assert.Equal(t, model.ErrorKindAPIError, ans.ErrorKind)
}
