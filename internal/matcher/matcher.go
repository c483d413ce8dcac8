// Package matcher implements the heuristic that maps a free-text answer
// from an upstream provider back to option letters from the question's
// original option list, for adapters whose upstreams return prose
// instead of option keys.
//
// Ported from providers/matcher.py in the original implementation:
// the containment scale factors (0.95 when the answer lies inside the
// option, 0.90 when the option lies inside the answer) and the selection
// thresholds are kept exactly as that source computed them rather than
// rounded to nicer-looking numbers.
package matcher

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/howard-nolan/questionrouter/internal/model"
	"github.com/howard-nolan/questionrouter/internal/question"
)

// DefaultThreshold is the baseline match-score cutoff used when the
// caller doesn't override it. Single-select requires score >=
// 0.6*DefaultThreshold; multi-select includes every option scoring >=
// DefaultThreshold, falling back to the top pick at the same 0.6x gate.
const DefaultThreshold = 0.5

// gatingFactor scales DefaultThreshold down for the "at least take the
// best guess" fallback case, both for single-select and for multi-select
// when nothing clears the full threshold.
const gatingFactor = 0.6

// connectingParticles unifies Chinese particles that mean "and" before
// scoring, so "A与B" and "A和B" compare equal after normalization.
var connectingParticles = strings.NewReplacer("与", "和", "及", "和", "以及", "和")

func normalizeForMatch(s string) string {
	return question.NormalizeText(connectingParticles.Replace(s))
}

// Score computes the match score between a free-text answer and a
// single option, in [0, 1]. Identical normalized strings score exactly
// 1.0.
func Score(answer, option string) float64 {
	if answer == "" || option == "" {
		return 0
	}

	na := normalizeForMatch(answer)
	no := normalizeForMatch(option)

	if na == "" || no == "" {
		return 0
	}

	if na == no {
		return 1.0
	}

	la, lo := utf8.RuneCountInString(na), utf8.RuneCountInString(no)
	if strings.Contains(no, na) {
		return float64(la) / float64(lo) * 0.95
	}
	if strings.Contains(na, no) {
		return float64(lo) / float64(la) * 0.90
	}

	jaccard := charJaccard(na, no)
	lcsRatio := float64(longestCommonSubstring(na, no)) / float64(maxInt(la, lo))

	return jaccard*0.4 + lcsRatio*0.6
}

func charJaccard(a, b string) float64 {
	setA := make(map[rune]struct{})
	for _, r := range a {
		setA[r] = struct{}{}
	}
	setB := make(map[rune]struct{})
	for _, r := range b {
		setB[r] = struct{}{}
	}

	intersection := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// longestCommonSubstring returns the length of the longest contiguous
// run shared by a and b, operating on runes (not bytes) so CJK text is
// measured in characters. Uses the standard two-row DP to stay O(min(m,n))
// in memory.
func longestCommonSubstring(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	maxLen := 0

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > maxLen {
					maxLen = curr[j]
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return maxLen
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

type scoredOption struct {
	index int
	key   string
	score float64
}

// matchTextToOptions scores every option against answerText and selects
// either the single best (single-select) or every option clearing
// threshold (multi-select, with a best-guess fallback). For multi-select
// each whitespace-separated fragment of answerText is scored as well and
// an option keeps its best score, so one answer string listing several
// options can select each of them. Returns the matched option
// keys/indices in original option order.
func matchTextToOptions(answerText string, options []string, threshold float64, multi bool) (keys []string, indices []int, ok bool, bestScore float64) {
	fragments := []string{answerText}
	if multi {
		if fields := strings.Fields(answerText); len(fields) > 1 {
			fragments = append(fragments, fields...)
		}
	}
	scored := make([]scoredOption, len(options))
	for i, opt := range options {
		best := 0.0
		for _, f := range fragments {
			if s := Score(f, opt); s > best {
				best = s
			}
		}
		scored[i] = scoredOption{index: i, key: question.OptionKey(i), score: best}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	bestScore = scored[0].score

	var matched []scoredOption
	if multi {
		for _, s := range scored {
			if s.score >= threshold {
				matched = append(matched, s)
			}
		}
		if len(matched) == 0 && scored[0].score >= threshold*gatingFactor {
			matched = scored[:1]
		}
	} else {
		if scored[0].score >= threshold*gatingFactor {
			matched = scored[:1]
		}
	}

	if len(matched) == 0 {
		return nil, nil, false, bestScore
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].index < matched[j].index })

	keys = make([]string, len(matched))
	indices = make([]int, len(matched))
	for i, m := range matched {
		keys[i] = m.key
		indices[i] = m.index
	}
	return keys, indices, true, bestScore
}

// BuildChoiceAnswer matches free text to the option list and returns a
// success Answer with Choice populated, or a match_error failure. The
// resulting Answer.Type is recomputed from the number of selected keys:
// one key -> single-choice, more -> multi-choice, regardless of the
// question's requested type — this corrects upstream mis-classification
// (§4.4).
func BuildChoiceAnswer(provider, answerText string, options []string, qtype model.QuestionType) model.Answer {
	return buildChoiceAnswer(provider, answerText, options, qtype, DefaultThreshold)
}

func buildChoiceAnswer(provider, answerText string, options []string, qtype model.QuestionType, threshold float64) model.Answer {
	if len(options) == 0 {
		return model.Fail(provider, qtype, model.ErrorKindMatchError, "question has no options, cannot match")
	}
	if answerText == "" {
		return model.Fail(provider, qtype, model.ErrorKindMatchError, "answer text is empty")
	}

	multi := qtype == model.TypeMultiChoice

	keys, _, ok, best := matchTextToOptions(answerText, options, threshold, multi)
	if !ok {
		return model.Fail(provider, qtype, model.ErrorKindMatchError, "could not match to an option, best score: %.2f", best)
	}

	actualType := model.TypeSingleChoice
	if len(keys) > 1 {
		actualType = model.TypeMultiChoice
	}

	return model.Answer{
		Provider: provider,
		Type:     actualType,
		Choice:   keys,
		Success:  true,
	}
}

// BuildChoiceAnswerFromKeys validates upstream-provided option keys: each
// key is trimmed and upper-cased and kept only if it is one letter in
// A..A+len(options)-1; invalid keys are dropped. Only when no key is
// valid does it fall back to BuildChoiceAnswer against fallbackText (or
// the keys joined with a space, if fallbackText is empty).
func BuildChoiceAnswerFromKeys(provider string, answerKeys []string, fallbackText string, options []string, qtype model.QuestionType) model.Answer {
	if len(options) == 0 {
		return model.Fail(provider, qtype, model.ErrorKindMatchError, "question has no options, cannot match")
	}

	validKeys := make([]string, 0, len(answerKeys))
	for _, k := range answerKeys {
		k = strings.ToUpper(strings.TrimSpace(k))
		idx := question.OptionIndex(k)
		if idx >= 0 && idx < len(options) {
			validKeys = append(validKeys, k)
		}
	}

	if len(validKeys) > 0 {
		actualType := model.TypeSingleChoice
		if len(validKeys) > 1 {
			actualType = model.TypeMultiChoice
		}
		return model.Answer{
			Provider: provider,
			Type:     actualType,
			Choice:   validKeys,
			Success:  true,
		}
	}

	textToMatch := fallbackText
	if textToMatch == "" {
		textToMatch = strings.Join(answerKeys, " ")
	}
	return BuildChoiceAnswer(provider, textToMatch, options, qtype)
}
