package aggregate

import (
	"testing"

	"github.com/howard-nolan/questionrouter/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_MajorityVoteWins(t *testing.T) {
	q := model.Query{Type: model.TypeSingleChoice, Options: []string{"opt A", "opt B"}}
	answers := []model.Answer{
		{Provider: "p1", Success: true, Choice: []string{"A"}},
		{Provider: "p2", Success: true, Choice: []string{"A"}},
		{Provider: "p3", Success: true, Choice: []string{"B"}},
	}

	resp := Aggregate(q, answers)
	assert.Equal(t, []string{"A"}, resp.UnifiedAnswer.AnswerKey)
	assert.Equal(t, "opt A", resp.UnifiedAnswer.AnswerText)
	assert.Equal(t, 3, resp.SuccessfulProviders)
	assert.Equal(t, 0, resp.FailedProviders)
	assert.Equal(t, 3, resp.TotalProviders)
}

func TestAggregate_TieBrokenByFirstArrival(t *testing.T) {
	q := model.Query{Type: model.TypeSingleChoice, Options: []string{"opt A", "opt B"}}
	answers := []model.Answer{
		{Provider: "p1", Success: true, Choice: []string{"B"}},
		{Provider: "p2", Success: true, Choice: []string{"A"}},
	}

	resp := Aggregate(q, answers)
	assert.Equal(t, []string{"B"}, resp.UnifiedAnswer.AnswerKey)
}

func TestAggregate_FailedAnswersExcludedFromVoteButReported(t *testing.T) {
	q := model.Query{Type: model.TypeSingleChoice, Options: []string{"opt A", "opt B"}}
	answers := []model.Answer{
		{Provider: "p1", Success: false, ErrorKind: model.ErrorKindNetworkError},
		{Provider: "p2", Success: true, Choice: []string{"B"}},
	}

	resp := Aggregate(q, answers)
	require.Len(t, resp.ProviderAnswers, 2)
	assert.Equal(t, []string{"B"}, resp.UnifiedAnswer.AnswerKey)
	assert.Equal(t, 1, resp.SuccessfulProviders)
	assert.Equal(t, 1, resp.FailedProviders)
}

func TestAggregate_JudgementRendersChineseLiterals(t *testing.T) {
	trueVal := true
	q := model.Query{Type: model.TypeJudgement}
	answers := []model.Answer{
		{Provider: "p1", Success: true, Judgement: &trueVal},
	}

	resp := Aggregate(q, answers)
	assert.Equal(t, "对", resp.UnifiedAnswer.AnswerText)
	assert.Equal(t, []string{"对"}, resp.UnifiedAnswer.BestAnswer)
}

func TestAggregate_MultiSelectJoinsWithDelimiter(t *testing.T) {
	q := model.Query{Type: model.TypeMultiChoice, Options: []string{"opt A", "opt B", "opt C"}}
	answers := []model.Answer{
		{Provider: "p1", Success: true, Choice: []string{"A", "C"}},
	}

	resp := Aggregate(q, answers)
	assert.Equal(t, "opt A#@#opt C", resp.UnifiedAnswer.AnswerText)
	assert.Equal(t, "A#@#C", resp.UnifiedAnswer.AnswerKeyText)
}

func TestAggregate_FreeTextAnswer(t *testing.T) {
	q := model.Query{Type: model.TypeBlank}
	answers := []model.Answer{
		{Provider: "p1", Success: true, Text: []string{"劳动最光荣"}},
	}

	resp := Aggregate(q, answers)
	assert.Equal(t, "劳动最光荣", resp.UnifiedAnswer.AnswerText)
}

func TestAggregate_NoSuccessfulAnswersYieldsEmptyUnifiedAnswer(t *testing.T) {
	q := model.Query{Type: model.TypeSingleChoice}
	answers := []model.Answer{
		{Provider: "p1", Success: false, ErrorKind: model.ErrorKindAPIError},
	}

	resp := Aggregate(q, answers)
	assert.Empty(t, resp.UnifiedAnswer.AnswerKey)
	assert.Equal(t, 0, resp.SuccessfulProviders)
	assert.Equal(t, 1, resp.FailedProviders)
}
