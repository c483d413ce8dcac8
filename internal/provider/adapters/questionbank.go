package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/howard-nolan/questionrouter/internal/matcher"
	"github.com/howard-nolan/questionrouter/internal/model"
	"github.com/howard-nolan/questionrouter/internal/provider"
)

// QuestionBank is an HTTP-backed question-bank adapter: POST the
// question, get back either an index-array answer or free text to
// match against the option list. Grounded on providers/wanneng.py's
// request/response shape, generalized into a reusable adapter since the
// pack contains several near-identical question-bank integrations
// (wanneng, enncy, and others all share this envelope).
type QuestionBank struct {
	name       string
	home       string
	urlFormat  string // must contain exactly one "%s" for the token
	client     *http.Client
}

// NewQuestionBank builds a QuestionBank adapter. urlFormat is a
// fmt.Sprintf template with one "%s" placeholder for the caller's
// token, mirroring wanneng.py's `url.format(token=...)`.
func NewQuestionBank(name, home, urlFormat string, client *http.Client) *QuestionBank {
	return &QuestionBank{name: name, home: home, urlFormat: urlFormat, client: client}
}

func (a *QuestionBank) Descriptor() provider.Descriptor {
	return provider.Descriptor{
		Name:      a.name,
		Home:      a.home,
		Free:      true,
		Pay:       true,
		Cacheable: true,
		Schema: []provider.FieldSchema{
			{Name: "token", Title: "token密钥", Type: provider.FieldString, Required: true},
			{Name: "location", Title: "题目来源", Type: provider.FieldString, Required: false},
		},
	}
}

type questionBankRequest struct {
	Question string             `json:"question"`
	Options  []string           `json:"options"`
	Type     model.QuestionType `json:"type"`
	Location string             `json:"location,omitempty"`
}

type questionBankResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Result  struct {
		Success bool `json:"success"`
		Answers any  `json:"answers"`
	} `json:"result"`
}

func (a *QuestionBank) Search(ctx context.Context, q model.Query, p model.Provider) model.Answer {
	token, _ := p.Config["token"].(string)
	if token == "" {
		return model.Fail(a.name, q.Type, model.ErrorKindConfigError, "missing required config field %q", "token")
	}
	location, _ := p.Config["location"].(string)

	body, err := json.Marshal(questionBankRequest{
		Question: q.Content,
		Options:  q.Options,
		Type:     q.Type,
		Location: location,
	})
	if err != nil {
		return model.Fail(a.name, q.Type, model.ErrorKindUnknown, "encoding request: %v", err)
	}

	url := fmt.Sprintf(a.urlFormat, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return model.Fail(a.name, q.Type, model.ErrorKindUnknown, "building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return model.Fail(a.name, q.Type, model.ErrorKindNetworkError, "request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Fail(a.name, q.Type, model.ErrorKindNetworkError, "reading response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return model.Fail(a.name, q.Type, model.ErrorKindAPIError, "http %d: %s", resp.StatusCode, string(raw))
	}

	var parsed questionBankResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return model.Fail(a.name, q.Type, model.ErrorKindParseError, "parsing response: %v", err)
	}

	return a.parseAnswer(parsed, q)
}

func (a *QuestionBank) parseAnswer(resp questionBankResponse, q model.Query) model.Answer {
	if resp.Code == 404 {
		return model.Fail(a.name, q.Type, model.ErrorKindAPIError, "insufficient balance")
	}
	if resp.Code != 0 {
		msg := resp.Message
		if msg == "" {
			msg = "provider returned an error"
		}
		return model.Fail(a.name, q.Type, model.ErrorKindAPIError, "%s", msg)
	}
	if resp.Result.Answers == nil {
		return model.Fail(a.name, q.Type, model.ErrorKindAPIError, "no answer in response")
	}

	switch q.Type {
	case model.TypeSingleChoice, model.TypeMultiChoice:
		return a.parseChoiceAnswer(resp, q)
	case model.TypeJudgement:
		return a.parseJudgementAnswer(resp, q)
	default:
		return model.Answer{Provider: a.name, Type: q.Type, Text: toTextList(resp.Result.Answers), Success: true}
	}
}

func (a *QuestionBank) parseChoiceAnswer(resp questionBankResponse, q model.Query) model.Answer {
	if resp.Result.Success {
		indexes := toIndexList(resp.Result.Answers)
		if len(indexes) == 0 {
			return model.Fail(a.name, q.Type, model.ErrorKindParseError, "no valid option indexes in response")
		}
		keys := make([]string, len(indexes))
		for i, idx := range indexes {
			keys[i] = string(rune('A' + idx))
		}
		qtype := model.TypeSingleChoice
		if len(keys) > 1 {
			qtype = model.TypeMultiChoice
		}
		return model.Answer{Provider: a.name, Type: qtype, Choice: keys, Success: true}
	}

	// On success=false the provider instead gives free text to match
	// against the option list (wanneng.py's fallback path).
	text := firstString(resp.Result.Answers)
	return matcher.BuildChoiceAnswer(a.name, text, q.Options, q.Type)
}

func (a *QuestionBank) parseJudgementAnswer(resp questionBankResponse, q model.Query) model.Answer {
	switch v := resp.Result.Answers.(type) {
	case bool:
		return model.Answer{Provider: a.name, Type: q.Type, Judgement: &v, Success: true}
	case float64:
		b := v != 0
		return model.Answer{Provider: a.name, Type: q.Type, Judgement: &b, Success: true}
	case []any:
		if len(v) == 0 {
			b := true
			return model.Answer{Provider: a.name, Type: q.Type, Judgement: &b, Success: true}
		}
		switch first := v[0].(type) {
		case bool:
			return model.Answer{Provider: a.name, Type: q.Type, Judgement: &first, Success: true}
		case float64:
			b := first != 0
			return model.Answer{Provider: a.name, Type: q.Type, Judgement: &b, Success: true}
		default:
			b := matcher.ParseJudgement(fmt.Sprint(first))
			return model.Answer{Provider: a.name, Type: q.Type, Judgement: &b, Success: true}
		}
	default:
		b := true
		return model.Answer{Provider: a.name, Type: q.Type, Judgement: &b, Success: true}
	}
}

func toTextList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, len(t))
		for i, e := range t {
			out[i] = fmt.Sprint(e)
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}

func toIndexList(v any) []int {
	items, ok := v.([]any)
	if !ok {
		items = []any{v}
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		if f, ok := item.(float64); ok {
			out = append(out, int(f))
		}
	}
	return out
}

func firstString(v any) string {
	switch t := v.(type) {
	case []any:
		if len(t) == 0 {
			return ""
		}
		return fmt.Sprint(t[0])
	default:
		return fmt.Sprint(t)
	}
}
