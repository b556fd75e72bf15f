package storyboard

import (
	"encoding/json"
	"fmt"
	"strings"

	"storyboard-ai-api/internal/application/artifact"
	"storyboard-ai-api/internal/domain/entity"
)

// ParseOutline 从模型输出中解析大纲。输出可能带有围栏或前后缀文本，
// 也可能在流式场景下被截断，统一走部分 JSON 修复。
func ParseOutline(raw string) (*entity.Outline, error) {
	v, ok := artifact.ParsePartial(raw)
	if !ok {
		return nil, fmt.Errorf("no parsable outline in llm output")
	}

	bytes, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to remarshal outline: %w", err)
	}

	var outline entity.Outline
	if err := json.Unmarshal(bytes, &outline); err != nil {
		return nil, fmt.Errorf("failed to parse outline: %w", err)
	}
	return &outline, nil
}

// ParseOutlinePreview 流式预览解析：截断的输入也尽力给出当前结构，
// 解析不出来时返回 (nil, false) 而非错误。
func ParseOutlinePreview(raw string) (*entity.Outline, bool) {
	outline, err := ParseOutline(raw)
	if err != nil {
		return nil, false
	}
	return outline, true
}

// OutlineValidationError 大纲结构校验失败
type OutlineValidationError struct {
	Issues []string
}

func (e OutlineValidationError) Error() string {
	return "invalid outline: " + strings.Join(e.Issues, "; ")
}

// ValidateOutline 校验大纲的最低可用结构
func ValidateOutline(outline *entity.Outline) error {
	var issues []string
	if outline == nil {
		return OutlineValidationError{Issues: []string{"outline is nil"}}
	}
	if strings.TrimSpace(outline.Premise) == "" {
		issues = append(issues, "premise is empty")
	}
	if len(outline.Scenes) == 0 {
		issues = append(issues, "scenes is empty")
	}
	for i, s := range outline.Scenes {
		if strings.TrimSpace(s.Title) == "" {
			issues = append(issues, fmt.Sprintf("scenes[%d].title is empty", i))
		}
	}
	if len(issues) > 0 {
		return OutlineValidationError{Issues: issues}
	}
	return nil
}
