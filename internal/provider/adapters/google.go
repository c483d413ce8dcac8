package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/howard-nolan/questionrouter/internal/model"
	"github.com/howard-nolan/questionrouter/internal/provider"
)

// GoogleLLM answers questions via the Gemini generateContent API,
// adapted the same way as AnthropicLLM from the router's original
// chat-completion Google provider.
type GoogleLLM struct {
	client  *http.Client
	baseURL string
	model   string
}

func NewGoogleLLM(baseURL, modelName string, client *http.Client) *GoogleLLM {
	return &GoogleLLM{client: client, baseURL: strings.TrimRight(baseURL, "/"), model: modelName}
}

func (a *GoogleLLM) Descriptor() provider.Descriptor {
	return provider.Descriptor{
		Name:      "google",
		Home:      "https://ai.google.dev",
		Free:      false,
		Pay:       true,
		Cacheable: true,
		Schema: []provider.FieldSchema{
			{Name: "api_key", Title: "API key", Type: provider.FieldString, Required: true},
		},
	}
}

type googlePart struct {
	Text string `json:"text"`
}

type googleContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []googlePart `json:"parts"`
}

type googleRequest struct {
	Contents []googleContent `json:"contents"`
}

type googleResponse struct {
	Candidates []struct {
		Content googleContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (a *GoogleLLM) Search(ctx context.Context, q model.Query, p model.Provider) model.Answer {
	apiKey, _ := p.Config["api_key"].(string)
	if apiKey == "" {
		return model.Fail("google", q.Type, model.ErrorKindConfigError, "missing required config field %q", "api_key")
	}

	reqBody, err := json.Marshal(googleRequest{
		Contents: []googleContent{
			{Parts: []googlePart{{Text: buildQuestionPrompt(q)}}},
		},
	})
	if err != nil {
		return model.Fail("google", q.Type, model.ErrorKindUnknown, "encoding request: %v", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", a.baseURL, a.model, apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return model.Fail("google", q.Type, model.ErrorKindUnknown, "building request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return model.Fail("google", q.Type, model.ErrorKindNetworkError, "request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Fail("google", q.Type, model.ErrorKindNetworkError, "reading response: %v", err)
	}

	var parsed googleResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return model.Fail("google", q.Type, model.ErrorKindParseError, "parsing response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("http %d", resp.StatusCode)
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return model.Fail("google", q.Type, model.ErrorKindAPIError, "%s", msg)
	}

	text := extractGoogleText(parsed)
	if text == "" {
		return model.Fail("google", q.Type, model.ErrorKindAPIError, "empty response")
	}
	return answerFromModelText("google", text, q)
}

func extractGoogleText(r googleResponse) string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return strings.TrimSpace(b.String())
}
