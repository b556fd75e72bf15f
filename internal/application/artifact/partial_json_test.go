package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePartialCompleteJSON(t *testing.T) {
	v, ok := ParsePartial(`{"title": "大纲", "scenes": [1, 2]}`)
	require.True(t, ok)

	m, isMap := v.(map[string]any)
	require.True(t, isMap)
	assert.Equal(t, "大纲", m["title"])
	assert.Equal(t, []any{float64(1), float64(2)}, m["scenes"])
}

func TestParsePartialTruncated(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, v any)
	}{
		{
			name:  "对象在值中间截断",
			input: `{"premise": "一个关于远航`,
			check: func(t *testing.T, v any) {
				m := v.(map[string]any)
				assert.Equal(t, "一个关于远航", m["premise"])
			},
		},
		{
			name:  "嵌套数组按后进先出补齐",
			input: `{"scenes": [{"title": "开场"}, {"title": "高潮`,
			check: func(t *testing.T, v any) {
				m := v.(map[string]any)
				scenes := m["scenes"].([]any)
				require.Len(t, scenes, 2)
				assert.Equal(t, "高潮", scenes[1].(map[string]any)["title"])
			},
		},
		{
			name:  "数组在元素之间截断",
			input: `[1, 2, 3`,
			check: func(t *testing.T, v any) {
				assert.Equal(t, []any{float64(1), float64(2), float64(3)}, v)
			},
		},
		{
			name:  "字符串内的括号不影响括号栈",
			input: `{"note": "含 [ 与 { 的文本`,
			check: func(t *testing.T, v any) {
				m := v.(map[string]any)
				assert.Equal(t, "含 [ 与 { 的文本", m["note"])
			},
		},
		{
			name:  "转义引号不结束字符串",
			input: `{"quote": "他说 \"你好`,
			check: func(t *testing.T, v any) {
				m := v.(map[string]any)
				assert.Equal(t, `他说 "你好`, m["quote"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := ParsePartial(tt.input)
			require.True(t, ok)
			tt.check(t, v)
		})
	}
}

func TestParsePartialStripsPrefixAndFences(t *testing.T) {
	input := "好的，下面是大纲：\n```json\n{\"title\": \"新品发布\"}\n```"
	v, ok := ParsePartial(input)
	require.True(t, ok)
	assert.Equal(t, "新品发布", v.(map[string]any)["title"])
}

func TestParsePartialEarliestBracketWins(t *testing.T) {
	// [ 出现在 { 之前时从 [ 开始
	v, ok := ParsePartial(`前言 ["a", {"b": 1}]`)
	require.True(t, ok)
	arr, isArr := v.([]any)
	require.True(t, isArr)
	assert.Equal(t, "a", arr[0])
}

func TestParsePartialFailures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "空输入", input: ""},
		{name: "无括号", input: "纯文本回复，没有结构化内容"},
		{name: "修复后仍非法", input: `{"a": 1,,}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := ParsePartial(tt.input)
			assert.False(t, ok)
			assert.Nil(t, v)
		})
	}
}
