package matcher

import (
	"testing"

	"github.com/howard-nolan/questionrouter/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_Bounds(t *testing.T) {
	assert.Equal(t, 1.0, Score("劳动最光荣", "劳动最光荣"))
	assert.GreaterOrEqual(t, Score("随便写点啥", "完全不一样的文本"), 0.0)
	assert.LessOrEqual(t, Score("随便写点啥", "完全不一样的文本"), 1.0)
	assert.Equal(t, 0.0, Score("", "x"))
	assert.Equal(t, 0.0, Score("x", ""))
}

func TestScore_ConnectingParticleUnified(t *testing.T) {
	// "与" and "和" should be treated as equivalent connectors.
	a := Score("帝国主义战争与无产阶级革命", "帝国主义战争和无产阶级革命")
	assert.Equal(t, 1.0, a)
}

func TestBuildChoiceAnswer_ExactMatch(t *testing.T) {
	options := []string{
		"帝国主义战争与无产阶级革命成为时代主题",
		"和平与发展成为时代主题",
		"世界多极化成为时代主题",
		"经济全球化成为时代主题",
	}

	ans := BuildChoiceAnswer("test", "帝国主义战争与无产阶级革命成为时代主题", options, model.TypeSingleChoice)
	require.True(t, ans.Success)
	assert.Equal(t, []string{"A"}, ans.Choice)
	assert.Equal(t, model.TypeSingleChoice, ans.Type)
}

func TestBuildChoiceAnswer_FuzzyMatch(t *testing.T) {
	options := []string{
		"帝国主义战争与无产阶级革命成为时代主题",
		"和平与发展成为时代主题",
		"世界多极化成为时代主题",
		"经济全球化成为时代主题",
	}

	ans := BuildChoiceAnswer("test", "帝国主义战争和无产阶级革命", options, model.TypeSingleChoice)
	require.True(t, ans.Success)
	assert.Equal(t, []string{"A"}, ans.Choice)
}

func TestBuildChoiceAnswer_NoMatch(t *testing.T) {
	options := []string{"A劳动最光荣", "B劳动最崇高", "C劳动最伟大", "D劳动最美丽"}

	ans := BuildChoiceAnswer("test", "完全不相关的内容", options, model.TypeSingleChoice)
	assert.False(t, ans.Success)
	assert.Equal(t, model.ErrorKindMatchError, ans.ErrorKind)
}

func TestBuildChoiceAnswer_MultiSelectAllFour(t *testing.T) {
	options := []string{"A劳动最光荣", "B劳动最崇高", "C劳动最伟大", "D劳动最美丽"}

	ans := BuildChoiceAnswer("test", "A劳动最光荣 B劳动最崇高 C劳动最伟大 D劳动最美丽", options, model.TypeMultiChoice)
	require.True(t, ans.Success)
	assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, ans.Choice)
}

func TestBuildChoiceAnswerFromKeys_ValidKeys(t *testing.T) {
	options := []string{"A劳动最光荣", "B劳动最崇高", "C劳动最伟大", "D劳动最美丽"}

	ans := BuildChoiceAnswerFromKeys("test", []string{"a"}, "", options, model.TypeSingleChoice)
	require.True(t, ans.Success)
	assert.Equal(t, []string{"A"}, ans.Choice)
}

func TestBuildChoiceAnswerFromKeys_InvalidKeyFallsBackToText(t *testing.T) {
	// An out-of-range key like "Z" should fall back to matching fallbackText.
	options := []string{"A劳动最光荣", "B劳动最崇高", "C劳动最伟大", "D劳动最美丽"}

	ans := BuildChoiceAnswerFromKeys("test", []string{"Z"}, "劳动最光荣", options, model.TypeSingleChoice)
	require.True(t, ans.Success)
	assert.Equal(t, []string{"A"}, ans.Choice)
}

func TestParseJudgement(t *testing.T) {
	cases := map[string]bool{
		"正确": true,
		"对":  true,
		"T":  true,
		"y":  true,
		"错":  false,
		"错误": false,
		"F":  false,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseJudgement(in), "input %q", in)
	}
}

func TestJudgementText(t *testing.T) {
	assert.Equal(t, "对", JudgementText(true))
	assert.Equal(t, "错", JudgementText(false))
}
