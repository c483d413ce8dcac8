// Package model defines the DTOs shared across the federated
// question-answering pipeline: the request-scoped Query and Provider,
// the uniform per-adapter Answer, and the aggregated Response.
//
// These types are what every other package in the module speaks in —
// adapters, the cache, the matcher, the fan-out engine, and the
// aggregator never need to know about each other's internals, only
// about these shapes.
package model

import "fmt"

// QuestionType enumerates the wire-stable question kinds. The integer
// values are part of the HTTP contract and must never be renumbered.
type QuestionType int

const (
	TypeSingleChoice QuestionType = 0
	TypeMultiChoice  QuestionType = 1
	TypeBlank        QuestionType = 2
	TypeJudgement    QuestionType = 3
	TypeEssay        QuestionType = 4
)

func (t QuestionType) Valid() bool {
	return t >= TypeSingleChoice && t <= TypeEssay
}

func (t QuestionType) String() string {
	switch t {
	case TypeSingleChoice:
		return "single"
	case TypeMultiChoice:
		return "multi"
	case TypeBlank:
		return "blank"
	case TypeJudgement:
		return "judgement"
	case TypeEssay:
		return "essay"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// ErrorKind is the closed taxonomy of adapter-boundary failures (§7).
type ErrorKind string

const (
	ErrorKindNone         ErrorKind = ""
	ErrorKindConfigError  ErrorKind = "config_error"
	ErrorKindAPIError     ErrorKind = "api_error"
	ErrorKindNetworkError ErrorKind = "network_error"
	ErrorKindParseError   ErrorKind = "parse_error"
	ErrorKindMatchError   ErrorKind = "match_error"
	ErrorKindCacheMiss    ErrorKind = "cache_miss"
	ErrorKindUnknown      ErrorKind = "unknown"
)

// Query is the request-scoped question being asked of every provider.
type Query struct {
	Content string       `json:"content"`
	Type    QuestionType `json:"type"`
	Options []string     `json:"options,omitempty"`
}

// Provider is the caller's choice of one adapter plus its per-request
// configuration. Priority is accepted on the wire for forward
// compatibility with client-side ordering hints; the engine itself does
// not use it to change dispatch order (§4.5 makes no ordering promise
// beyond "arrival order" for the response list).
type Provider struct {
	Name     string         `json:"name"`
	Priority int            `json:"priority,omitempty"`
	Config   map[string]any `json:"config,omitempty"`
}

// Answer is one adapter's answer-in-flight: either a success with
// exactly one of Choice/Judgement/Text populated, or a failure carrying
// an ErrorKind and a human-readable message.
type Answer struct {
	Provider string       `json:"provider"`
	Type     QuestionType `json:"type"`

	Choice    []string `json:"choice,omitempty"`
	Judgement *bool    `json:"judgement,omitempty"`
	Text      []string `json:"text,omitempty"`

	Success      bool      `json:"success"`
	ErrorKind    ErrorKind `json:"errorKind,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

// Fail builds a failure Answer. Adapters use this as their single exit
// path for anything that isn't a clean success, so that error_kind and
// error_message are never set inconsistently with Success.
func Fail(provider string, qtype QuestionType, kind ErrorKind, format string, args ...any) Answer {
	return Answer{
		Provider:     provider,
		Type:         qtype,
		Success:      false,
		ErrorKind:    kind,
		ErrorMessage: fmt.Sprintf(format, args...),
	}
}

// UnifiedAnswer is the aggregator's single best guess, expressed in the
// multiple equivalent encodings the wire contract requires (§6).
type UnifiedAnswer struct {
	AnswerKey     []string `json:"answerKey"`
	AnswerKeyText string   `json:"answerKeyText"`
	AnswerIndex   []int    `json:"answerIndex"`
	AnswerText    string   `json:"answerText"`
	BestAnswer    []string `json:"bestAnswer"`
}

// Response is the full consolidated result returned to the caller.
type Response struct {
	Query               Query         `json:"query"`
	UnifiedAnswer       UnifiedAnswer `json:"unified_answer"`
	ProviderAnswers     []Answer      `json:"provider_answers"`
	SuccessfulProviders int           `json:"successful_providers"`
	FailedProviders     int           `json:"failed_providers"`
	TotalProviders      int           `json:"total_providers"`
}

// Caller is the identity and stored provider configuration resolved
// from an API token. Token issuance and CRUD are out of scope (§6); this
// is only the shape the search handler needs from whatever resolves it.
type Caller struct {
	ID              string
	ProviderConfigs []Provider
}
