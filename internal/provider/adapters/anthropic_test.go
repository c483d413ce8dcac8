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

func TestAnthropicLLM_Search_MatchesReplyToOption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": "A"}},
		})
	}))
	defer srv.Close()

	a := NewAnthropicLLM(srv.URL, "claude-3-5-sonnet-latest", srv.Client())
	q := model.Query{
		Content: "劳动最光荣",
		Type:    model.TypeSingleChoice,
		Options: []string{"劳动最光荣", "劳动最可耻"},
	}
	ans := a.Search(context.Background(), q, model.Provider{Config: map[string]any{"api_key": "test-key"}})

	require.True(t, ans.Success)
	assert.Equal(t, []string{"A"}, ans.Choice)
}

func TestAnthropicLLM_Search_APIErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limited"},
		})
	}))
	defer srv.Close()

	a := NewAnthropicLLM(srv.URL, "claude-3-5-sonnet-latest", srv.Client())
	ans := a.Search(context.Background(), model.Query{Type: model.TypeBlank}, model.Provider{Config: map[string]any{"api_key": "k"}})

	assert.False(t, ans.Success)
	assert.Equal(t, model.ErrorKindAPIError, ans.ErrorKind)
	assert.Contains(t, ans.ErrorMessage, "rate limited")
}

func TestAnthropicLLM_Search_MissingAPIKey(t *testing.T) {
	a := NewAnthropicLLM("https://api.anthropic.com", "claude-3-5-sonnet-latest", nil)
	ans := a.Search(context.Background(), model.Query{Type: model.TypeBlank}, model.Provider{})
	assert.False(t, ans.Success)
	assert.Equal(t, model.ErrorKindConfigError, ans.ErrorKind)
}

func TestBuildQuestionPrompt_IncludesContentAndInstruction(t *testing.T) {
	q := model.Query{Content: "问题", Type: model.TypeJudgement}
	prompt := buildQuestionPrompt(q)
	assert.Contains(t, prompt, "问题")
	assert.Contains(t, prompt, "对 or 错")
}
