package cache

import (
	"testing"

	"github.com/howard-nolan/questionrouter/internal/model"
	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

func TestAnswerFingerprint_SameShapeSameFingerprint(t *testing.T) {
	a := model.Answer{Type: model.TypeSingleChoice, Choice: []string{"A"}}
	b := model.Answer{Type: model.TypeSingleChoice, Choice: []string{"A"}, Provider: "different-provider"}
	assert.Equal(t, answerFingerprint(a), answerFingerprint(b))
}

func TestAnswerFingerprint_ChoiceOrderInsensitive(t *testing.T) {
	a := model.Answer{Type: model.TypeMultiChoice, Choice: []string{"A", "B"}}
	b := model.Answer{Type: model.TypeMultiChoice, Choice: []string{"B", "A"}}
	assert.Equal(t, answerFingerprint(a), answerFingerprint(b))
}

func TestAnswerFingerprint_DifferentJudgementDiffers(t *testing.T) {
	a := model.Answer{Type: model.TypeJudgement, Judgement: boolPtr(true)}
	b := model.Answer{Type: model.TypeJudgement, Judgement: boolPtr(false)}
	assert.NotEqual(t, answerFingerprint(a), answerFingerprint(b))
}

func TestAnswerFingerprint_PresentVsAbsentJudgement(t *testing.T) {
	withJudgement := model.Answer{Type: model.TypeBlank, Text: []string{"x"}, Judgement: boolPtr(true)}
	withoutJudgement := model.Answer{Type: model.TypeBlank, Text: []string{"x"}}
	assert.NotEqual(t, answerFingerprint(withJudgement), answerFingerprint(withoutJudgement))
}

func TestReadThroughKey_StableForSameInputsAndOptionOrderSensitive(t *testing.T) {
	k1 := readThroughKey("abc", model.TypeSingleChoice, []string{"x", "y"})
	k2 := readThroughKey("abc", model.TypeSingleChoice, []string{"x", "y"})
	assert.Equal(t, k1, k2)

	k3 := readThroughKey("abc", model.TypeSingleChoice, []string{"y", "x"})
	assert.NotEqual(t, k1, k3, "caller is expected to pass pre-sorted normalized options")
}
