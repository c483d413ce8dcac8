package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/howard-nolan/questionrouter/internal/model"
	"github.com/howard-nolan/questionrouter/testutil"
)

func TestQuestionBank_Search_ParsesIndexAnswer(t *testing.T) {
	client := testutil.NewCassetteClient(t, "testdata/fixtures/questionbank_success")

	a := NewQuestionBank("万能题库", "https://lyck6.cn/pay", "http://lyck6.cn/scriptService/api/autoAnswer/%s", client)

	q := model.Query{
		Content: "帝国主义战争与无产阶级革命成为时代主题",
		Type:    model.TypeSingleChoice,
		Options: []string{
			"帝国主义战争与无产阶级革命成为时代主题",
			"和平与发展成为时代主题",
		},
	}
	ans := a.Search(context.Background(), q, model.Provider{Config: map[string]any{"token": "test-token"}})

	require.True(t, ans.Success)
	assert.Equal(t, []string{"A"}, ans.Choice)
}

func TestQuestionBank_Search_MissingTokenIsConfigError(t *testing.T) {
	a := NewQuestionBank("万能题库", "https://lyck6.cn/pay", "http://lyck6.cn/scriptService/api/autoAnswer/%s", nil)

	ans := a.Search(context.Background(), model.Query{Type: model.TypeSingleChoice}, model.Provider{})
	assert.False(t, ans.Success)
	assert.Equal(t, model.ErrorKindConfigError, ans.ErrorKind)
}

func TestQuestionBank_Descriptor(t *testing.T) {
	a := NewQuestionBank("万能题库", "https://lyck6.cn/pay", "http://x/%s", nil)
	d := a.Descriptor()
	assert.Equal(t, "万能题库", d.Name)
	assert.True(t, d.Cacheable)
	assert.Len(t, d.Schema, 2)
}
