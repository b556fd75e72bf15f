package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractNumberedSlides(t *testing.T) {
	text := `前面是一些说明文字。
<slide_1 title="封面">
<h1>产品介绍</h1>
</slide_1>
中间的过渡语。
<slide_2 title="目录">
<ul><li>背景</li></ul>
</slide_2>`

	arts := Extract(text)
	require.Len(t, arts, 2)

	assert.Equal(t, "封面", arts[0].Title)
	assert.Equal(t, KindWeb, arts[0].Kind)
	assert.Equal(t, "<h1>产品介绍</h1>", arts[0].Body)
	assert.True(t, arts[0].Complete)

	assert.Equal(t, "目录", arts[1].Title)
	assert.Equal(t, "<ul><li>背景</li></ul>", arts[1].Body)
	assert.True(t, arts[1].Complete)
}

func TestExtractUnclosedNumberedSlideSkipped(t *testing.T) {
	// 流式截断：第二块尚未闭合，不应产出
	text := `<slide_1 title="封面">done</slide_1>
<slide_2 title="目录">
<ul><li>背`

	arts := Extract(text)
	require.Len(t, arts, 1)
	assert.Equal(t, "封面", arts[0].Title)
}

func TestExtractSingleQuoteTitle(t *testing.T) {
	arts := Extract(`<slide_1 title='It"s fine'>body</slide_1>`)
	require.Len(t, arts, 1)
	assert.Equal(t, `It"s fine`, arts[0].Title)
}

func TestExtractDefaultTitle(t *testing.T) {
	arts := Extract(`<slide_3 title="">body</slide_3>`)
	require.Len(t, arts, 1)
	assert.Equal(t, "Slide 3", arts[0].Title)
}

func TestExtractStandaloneScreens(t *testing.T) {
	text := `<web_screen title="落地页">
<header>hero</header>
</web_screen>
<app_screen title="登录页">
<form>login</form>
</app_screen>`

	arts := Extract(text)
	require.Len(t, arts, 2)

	// 按出现顺序排列，而非按标记类型
	assert.Equal(t, "落地页", arts[0].Title)
	assert.Equal(t, KindWeb, arts[0].Kind)
	assert.True(t, arts[0].Complete)

	assert.Equal(t, "登录页", arts[1].Title)
	assert.Equal(t, KindApp, arts[1].Kind)
	assert.True(t, arts[1].Complete)
}

func TestExtractClosedStandaloneScreenIsComplete(t *testing.T) {
	// 闭合标记紧跟正文、后面没有任何内容时也必须判定为完整
	arts := Extract(`<app_screen title="T">body</app_screen>`)
	require.Len(t, arts, 1)
	assert.Equal(t, "body", arts[0].Body)
	assert.True(t, arts[0].Complete)
}

func TestExtractStandaloneTolerantToTruncation(t *testing.T) {
	// 独立屏幕允许缺失闭合标记，产出到输入末尾的内容且 Complete=false
	text := `<app_screen title="设置页">
<section>通知开关`

	arts := Extract(text)
	require.Len(t, arts, 1)
	assert.Equal(t, "设置页", arts[0].Title)
	assert.Equal(t, "<section>通知开关", arts[0].Body)
	assert.False(t, arts[0].Complete)
}

func TestExtractDedupStandaloneAgainstNumbered(t *testing.T) {
	text := `<slide_1 title="首页">a</slide_1>
<web_screen title="首页">b</web_screen>
<web_screen title="详情页">c</web_screen>`

	arts := Extract(text)
	require.Len(t, arts, 2)
	assert.Equal(t, "首页", arts[0].Title)
	assert.Equal(t, "a", arts[0].Body)
	assert.Equal(t, "详情页", arts[1].Title)
}

func TestExtractNumberedBeforeStandalone(t *testing.T) {
	// 编号幻灯片整体排在独立屏幕之前，即使它在文本中出现得更晚
	text := `<app_screen title="A">x</app_screen>
<slide_1 title="B">y</slide_1>`

	arts := Extract(text)
	require.Len(t, arts, 2)
	assert.Equal(t, "B", arts[0].Title)
	assert.Equal(t, "A", arts[1].Title)
}

func TestExtractCompleteMonotonicAcrossGrowingInput(t *testing.T) {
	full := `<app_screen title="首页">body</app_screen> 后记`

	var wasComplete bool
	for i := 0; i <= len(full); i++ {
		arts := Extract(full[:i])
		if len(arts) == 0 {
			continue
		}
		if wasComplete {
			assert.True(t, arts[0].Complete, "前缀长度 %d 处 Complete 回退", i)
		}
		if arts[0].Complete {
			wasComplete = true
		}
	}
	assert.True(t, wasComplete)
}

func TestExtractEmptyAndPlainText(t *testing.T) {
	assert.Empty(t, Extract(""))
	assert.Empty(t, Extract("没有任何标记的普通回复。"))
}

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "完整块",
			in:   "开场白 <slide_1 title=\"a\">x</slide_1> 收尾",
			want: "开场白  收尾",
		},
		{
			name: "未闭合编号块移除到末尾",
			in:   "说明 <slide_2 title=\"b\">半截",
			want: "说明",
		},
		{
			name: "独立屏幕与包裹标记",
			in:   "<storyboard><app_screen title=\"c\">y</app_screen></storyboard> 完",
			want: "完",
		},
		{
			name: "无标记输入仅修剪空白",
			in:   "  纯文本  ",
			want: "纯文本",
		},
		{
			name: "空输入",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Strip(tt.in))
		})
	}
}
