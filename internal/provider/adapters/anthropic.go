package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/howard-nolan/questionrouter/internal/matcher"
	"github.com/howard-nolan/questionrouter/internal/model"
	"github.com/howard-nolan/questionrouter/internal/provider"
)

// AnthropicLLM answers questions by prompting an Anthropic Messages API
// model and matching the free-text reply back onto the option list (for
// choice/judgement questions) or returning it verbatim (for blank/essay
// questions). Adapted from the router's original chat-completion
// Anthropic provider: same request construction and shared *http.Client
// injection, repurposed here to answer a single question instead of
// carrying a chat turn.
type AnthropicLLM struct {
	client  *http.Client
	baseURL string
	model   string
}

// NewAnthropicLLM builds the adapter against the given base URL (e.g.
// "https://api.anthropic.com") and model name (e.g.
// "claude-3-5-sonnet-latest"), sharing the process-wide *http.Client.
func NewAnthropicLLM(baseURL, modelName string, client *http.Client) *AnthropicLLM {
	return &AnthropicLLM{client: client, baseURL: strings.TrimRight(baseURL, "/"), model: modelName}
}

func (a *AnthropicLLM) Descriptor() provider.Descriptor {
	return provider.Descriptor{
		Name:      "anthropic",
		Home:      "https://www.anthropic.com",
		Free:      false,
		Pay:       true,
		Cacheable: true,
		Schema: []provider.FieldSchema{
			{Name: "api_key", Title: "API key", Type: provider.FieldString, Required: true},
		},
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (a *AnthropicLLM) Search(ctx context.Context, q model.Query, p model.Provider) model.Answer {
	apiKey, _ := p.Config["api_key"].(string)
	if apiKey == "" {
		return model.Fail("anthropic", q.Type, model.ErrorKindConfigError, "missing required config field %q", "api_key")
	}

	reqBody, err := json.Marshal(anthropicRequest{
		Model:     a.model,
		MaxTokens: 512,
		Messages: []anthropicMessage{
			{Role: "user", Content: buildQuestionPrompt(q)},
		},
	})
	if err != nil {
		return model.Fail("anthropic", q.Type, model.ErrorKindUnknown, "encoding request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(reqBody))
	if err != nil {
		return model.Fail("anthropic", q.Type, model.ErrorKindUnknown, "building request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return model.Fail("anthropic", q.Type, model.ErrorKindNetworkError, "request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Fail("anthropic", q.Type, model.ErrorKindNetworkError, "reading response: %v", err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return model.Fail("anthropic", q.Type, model.ErrorKindParseError, "parsing response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("http %d", resp.StatusCode)
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return model.Fail("anthropic", q.Type, model.ErrorKindAPIError, "%s", msg)
	}

	text := extractAnthropicText(parsed)
	if text == "" {
		return model.Fail("anthropic", q.Type, model.ErrorKindAPIError, "empty response")
	}
	return answerFromModelText("anthropic", text, q)
}

func extractAnthropicText(r anthropicResponse) string {
	var b strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// buildQuestionPrompt renders a query into a single free-text prompt
// asking the model to answer directly, letting
// matcher.BuildChoiceAnswerFromKeys (or ParseJudgement) handle
// translating the reply back into the wire
// format — the adapter never asks the model to emit structured JSON,
// since that would make this adapter's shape diverge from every other
// text-answering provider.
func buildQuestionPrompt(q model.Query) string {
	var b strings.Builder
	b.WriteString(q.Content)
	if len(q.Options) > 0 {
		b.WriteString("\n")
		for i, opt := range q.Options {
			fmt.Fprintf(&b, "%s. %s\n", string(rune('A'+i)), opt)
		}
	}
	switch q.Type {
	case model.TypeSingleChoice:
		b.WriteString("\nReply with only the correct option's letter.")
	case model.TypeMultiChoice:
		b.WriteString("\nReply with only the correct option letters, separated by spaces.")
	case model.TypeJudgement:
		b.WriteString("\nReply with only 对 or 错.")
	default:
		b.WriteString("\nReply with only the answer, no explanation.")
	}
	return b.String()
}

// answerFromModelText converts a model's free-text reply into the
// matching Answer shape for the query's type.
func answerFromModelText(providerName, text string, q model.Query) model.Answer {
	switch q.Type {
	case model.TypeSingleChoice, model.TypeMultiChoice:
		return matcher.BuildChoiceAnswerFromKeys(providerName, strings.Fields(text), text, q.Options, q.Type)
	case model.TypeJudgement:
		v := matcher.ParseJudgement(text)
		return model.Answer{Provider: providerName, Type: q.Type, Judgement: &v, Success: true}
	default:
		return model.Answer{Provider: providerName, Type: q.Type, Text: []string{text}, Success: true}
	}
}
