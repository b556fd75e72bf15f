package artifact

import (
	"encoding/json"
	"strings"
)

// ParsePartial 尽力解析被截断的 JSON 片段。
//
// 流式输出的结构化内容（如大纲）随时可能在任意字符处截断，本函数通过
// 补齐缺失的闭合符号把片段修复成合法 JSON 再解析：
//
//  1. 定位最早出现的 { 或 [，丢弃其前面的所有内容；都不存在则直接失败
//  2. 移除 Markdown 代码围栏（```json 与 ```）
//  3. 逐字符扫描，维护字符串状态、转义状态与括号栈
//  4. 扫描结束后若仍在字符串内，先补一个双引号
//  5. 按后进先出顺序补齐栈中所有未闭合括号
//  6. 解析修复后的文本，失败则返回 (nil, false)
//
// 修复是启发式的：截断点落在键名中间等情况会产出语义上残缺但合法的
// 结构，调用方应把结果当作预览而非最终值。
func ParsePartial(input string) (any, bool) {
	start := -1
	for i := 0; i < len(input); i++ {
		if input[i] == '{' || input[i] == '[' {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, false
	}

	s := input[start:]
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")

	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case '"':
			inString = !inString
		case '{':
			if !inString {
				stack = append(stack, '}')
			}
		case '[':
			if !inString {
				stack = append(stack, ']')
			}
		case '}', ']':
			if !inString && len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var b strings.Builder
	b.Grow(len(s) + len(stack) + 1)
	b.WriteString(s)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(stack[i])
	}

	var v any
	if err := json.Unmarshal([]byte(b.String()), &v); err != nil {
		return nil, false
	}
	return v, true
}
