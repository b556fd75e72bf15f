package storyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutlineWithFences(t *testing.T) {
	raw := "这是为你生成的大纲：\n```json\n" +
		`{"premise": "用三幕讲清楚新架构", "audience": "后端团队", "scenes": [` +
		`{"title": "现状", "goal": "说明痛点", "points": ["延迟", "成本"]},` +
		`{"title": "方案", "goal": "展示新架构"}]}` + "\n```"

	outline, err := ParseOutline(raw)
	require.NoError(t, err)
	assert.Equal(t, "用三幕讲清楚新架构", outline.Premise)
	assert.Equal(t, "后端团队", outline.Audience)
	require.Len(t, outline.Scenes, 2)
	assert.Equal(t, []string{"延迟", "成本"}, outline.Scenes[0].Points)
}

func TestParseOutlinePreviewTruncated(t *testing.T) {
	raw := `{"premise": "发布会开场", "scenes": [{"title": "悬念`

	outline, ok := ParseOutlinePreview(raw)
	require.True(t, ok)
	assert.Equal(t, "发布会开场", outline.Premise)
	require.Len(t, outline.Scenes, 1)
	assert.Equal(t, "悬念", outline.Scenes[0].Title)
}

func TestParseOutlineNoJSON(t *testing.T) {
	_, err := ParseOutline("模型没有输出任何结构化内容")
	require.Error(t, err)

	_, ok := ParseOutlinePreview("")
	assert.False(t, ok)
}

func TestValidateOutline(t *testing.T) {
	err := ValidateOutline(nil)
	require.Error(t, err)

	outline, parseErr := ParseOutline(`{"premise": "p", "scenes": [{"title": ""}]}`)
	require.NoError(t, parseErr)

	err = ValidateOutline(outline)
	var ve OutlineValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Issues, "scenes[0].title is empty")
}
