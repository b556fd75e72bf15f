// Package artifact 从模型流式输出中增量识别幻灯片/屏幕标记块
package artifact

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Kind 呈现面类型
type Kind string

const (
	KindWeb Kind = "web"
	KindApp Kind = "app"
)

// Artifact 从模型输出中识别出的一个标记块
type Artifact struct {
	Title    string `json:"title"`
	Kind     Kind   `json:"kind"`
	Body     string `json:"body"`
	Complete bool   `json:"complete"`
}

// 标记格式约定：
//
//	<slide_N title="...">...</slide_N>   编号幻灯片，title 支持单双引号
//	<app_screen title="...">...</app_screen>  独立 App 屏幕
//	<web_screen title="...">...</web_screen>  独立 Web 页面
//	<storyboard>...</storyboard>          外层包裹标记
//
// 流式输出下输入可能在任意位置截断，所有扫描都容忍不完整标记。
var (
	slideOpenRe = regexp.MustCompile(`<slide_(\d+)\s+title=(?:"([^"]*)"|'([^']*)')\s*>`)

	appScreenRe = regexp.MustCompile(`(?s)<app_screen\s+title=(?:"([^"]*)"|'([^']*)')\s*>(.*?)(?:</app_screen>|$)`)
	webScreenRe = regexp.MustCompile(`(?s)<web_screen\s+title=(?:"([^"]*)"|'([^']*)')\s*>(.*?)(?:</web_screen>|$)`)

	wrapperTagRe = regexp.MustCompile(`</?storyboard[^>]*>`)
	slideBlockRe = regexp.MustCompile(`(?s)<slide_\d+[^>]*>.*?</slide_\d+>`)
	slideTailRe  = regexp.MustCompile(`(?s)<slide_\d+[^>]*>.*$`)
	appBlockRe   = regexp.MustCompile(`(?s)<app_screen[^>]*>.*?(?:</app_screen>|$)`)
	webBlockRe   = regexp.MustCompile(`(?s)<web_screen[^>]*>.*?(?:</web_screen>|$)`)
)

// Extract 对输入做一次完整扫描，返回识别出的全部标记块。
//
// 每次调用都是对「迄今为止累积的流文本」的全量重扫，函数自身无状态。
// Complete 通过在开标记之后的全文中查找字面闭合标记得出，因此同一条流
// 内容只增不减时，Complete 一旦为 true 不会回退。
//
// 编号幻灯片必须找到与自身编号匹配的闭合标记才会产出结果；独立屏幕
// 允许缺失闭合标记（匹配到输入末尾）。两者行为刻意不对称，与既有
// 客户端的渲染预期保持一致。
func Extract(text string) []Artifact {
	var out []Artifact
	numberedTitles := make(map[string]struct{})

	// 编号幻灯片：非贪婪匹配到各自编号的闭合标记
	for _, m := range slideOpenRe.FindAllStringSubmatchIndex(text, -1) {
		index := text[m[2]:m[3]]
		title := submatch(text, m, 2)
		bodyStart := m[1]

		closing := "</slide_" + index + ">"
		rel := strings.Index(text[bodyStart:], closing)
		if rel < 0 {
			// 未闭合的编号块不产出结果
			continue
		}

		if title == "" {
			title = fmt.Sprintf("Slide %s", index)
		}

		out = append(out, Artifact{
			Title:    title,
			Kind:     KindWeb,
			Body:     strings.TrimSpace(text[bodyStart : bodyStart+rel]),
			Complete: strings.Contains(text[bodyStart:], closing),
		})
		numberedTitles[title] = struct{}{}
	}

	// 独立屏幕：按出现顺序合并两类标记
	type standalone struct {
		pos int
		art Artifact
	}
	var extra []standalone
	for _, sm := range scanStandalone(text, appScreenRe, "</app_screen>", KindApp) {
		extra = append(extra, standalone{pos: sm.pos, art: sm.art})
	}
	for _, sm := range scanStandalone(text, webScreenRe, "</web_screen>", KindWeb) {
		extra = append(extra, standalone{pos: sm.pos, art: sm.art})
	}
	sort.SliceStable(extra, func(i, j int) bool { return extra[i].pos < extra[j].pos })

	for _, s := range extra {
		// 与编号幻灯片同名时去重
		if _, dup := numberedTitles[s.art.Title]; dup {
			continue
		}
		out = append(out, s.art)
	}

	return out
}

type standaloneMatch struct {
	pos int
	art Artifact
}

// scanStandalone 扫描单一独立标记类型，容忍缺失的闭合标记
func scanStandalone(text string, re *regexp.Regexp, closing string, kind Kind) []standaloneMatch {
	var out []standaloneMatch
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		title := submatch(text, m, 1)
		if title == "" {
			title = "Untitled Screen"
		}
		// 闭合判定从正文起点向后查找：整体匹配的终点已把闭合标记
		// 吞进去，从那里找会永远落空
		body := ""
		bodyStart := m[1]
		if m[6] >= 0 {
			body = text[m[6]:m[7]]
			bodyStart = m[6]
		}
		out = append(out, standaloneMatch{
			pos: m[0],
			art: Artifact{
				Title:    title,
				Kind:     kind,
				Body:     strings.TrimSpace(body),
				Complete: strings.Contains(text[bodyStart:], closing),
			},
		})
	}
	return out
}

// submatch 返回双引号/单引号两个候选捕获组中命中的一个
func submatch(text string, m []int, group int) string {
	dq := 2 * group
	if m[dq] >= 0 {
		return text[m[dq]:m[dq+1]]
	}
	sq := 2 * (group + 1)
	if m[sq] >= 0 {
		return text[m[sq]:m[sq+1]]
	}
	return ""
}

// Strip 移除输入中所有已识别的标记块（含外层包裹标记与未闭合的尾部块），
// 返回剩余的对话文本。尽力而为：格式再差也不报错，无匹配时仅做 TrimSpace。
func Strip(text string) string {
	s := slideBlockRe.ReplaceAllString(text, "")
	s = slideTailRe.ReplaceAllString(s, "")
	s = appBlockRe.ReplaceAllString(s, "")
	s = webBlockRe.ReplaceAllString(s, "")
	s = wrapperTagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
