// Package aggregate turns a flat list of per-provider answers into the
// unified response the API returns, by voting on the answer payload
// shape every provider converged on (§4.6).
package aggregate

import (
	"sort"
	"strings"

	"github.com/howard-nolan/questionrouter/internal/matcher"
	"github.com/howard-nolan/questionrouter/internal/model"
	"github.com/howard-nolan/questionrouter/internal/question"
)

// Delimiter joins multiple winning answer texts in UnifiedAnswer.AnswerText.
const Delimiter = "#@#"

// voteKeySeparator joins the sorted key-tuple used as a vote map key.
// \x1f (unit separator) is chosen because it cannot appear in any
// answer-choice, judgement, or option text produced by this system.
const voteKeySeparator = "\x1f"

type vote struct {
	count       int
	firstArrival int
	answer      model.Answer
}

// Aggregate tallies the successful answers and produces the unified
// response. Failed answers are still reported in ProviderAnswers (for
// caller visibility) but excluded from voting.
func Aggregate(q model.Query, answers []model.Answer) model.Response {
	votes := make(map[string]*vote)
	order := make([]string, 0, len(answers))

	successful, failed := 0, 0
	for i, a := range answers {
		if !a.Success {
			failed++
			continue
		}
		successful++

		key := voteKey(a)
		if v, ok := votes[key]; ok {
			v.count++
			continue
		}
		votes[key] = &vote{count: 1, firstArrival: i, answer: a}
		order = append(order, key)
	}

	winner := pickWinner(votes, order)

	resp := model.Response{
		Query:               q,
		ProviderAnswers:     answers,
		SuccessfulProviders: successful,
		FailedProviders:     failed,
		TotalProviders:      len(answers),
	}
	if winner != nil {
		resp.UnifiedAnswer = buildUnifiedAnswer(*winner, q.Options)
	}
	return resp
}

// voteKey is the canonical join of a sorted key-tuple describing an
// answer's payload shape, used instead of a slice (which cannot be a Go
// map key directly).
func voteKey(a model.Answer) string {
	parts := make([]string, 0, len(a.Choice)+len(a.Text)+2)

	choice := append([]string(nil), a.Choice...)
	sort.Strings(choice)
	parts = append(parts, "choice:"+strings.Join(choice, ","))

	text := append([]string(nil), a.Text...)
	sort.Strings(text)
	parts = append(parts, "text:"+strings.Join(text, ","))

	if a.Judgement != nil {
		parts = append(parts, "judgement:"+matcher.JudgementText(*a.Judgement))
	} else {
		parts = append(parts, "judgement:")
	}

	return strings.Join(parts, voteKeySeparator)
}

// pickWinner selects the vote with the highest count, breaking ties by
// earliest first arrival.
func pickWinner(votes map[string]*vote, order []string) *vote {
	var winner *vote
	for _, key := range order {
		v := votes[key]
		if winner == nil || v.count > winner.count ||
			(v.count == winner.count && v.firstArrival < winner.firstArrival) {
			winner = v
		}
	}
	return winner
}

func buildUnifiedAnswer(w vote, options []string) model.UnifiedAnswer {
	a := w.answer

	switch {
	case a.Judgement != nil:
		text := matcher.JudgementText(*a.Judgement)
		return model.UnifiedAnswer{
			AnswerKeyText: text,
			AnswerText:    text,
			BestAnswer:    []string{text},
		}
	case len(a.Choice) > 0:
		keys := append([]string(nil), a.Choice...)
		sort.Strings(keys)
		indexes := make([]int, 0, len(keys))
		texts := make([]string, 0, len(keys))
		for _, k := range keys {
			idx := question.OptionIndex(k)
			indexes = append(indexes, idx)
			if idx >= 0 && idx < len(options) {
				texts = append(texts, options[idx])
			}
		}
		return model.UnifiedAnswer{
			AnswerKey:     keys,
			AnswerKeyText: strings.Join(keys, Delimiter),
			AnswerIndex:   indexes,
			AnswerText:    strings.Join(texts, Delimiter),
			BestAnswer:    keys,
		}
	default:
		return model.UnifiedAnswer{
			AnswerText: strings.Join(a.Text, Delimiter),
			BestAnswer: a.Text,
		}
	}
}
