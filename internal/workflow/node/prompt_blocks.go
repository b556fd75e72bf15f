package node

import (
	"strings"

	wfmodel "storyboard-ai-api/internal/workflow/model"
)

func BuildAttachmentsBlock(attachments []wfmodel.TextAttachment) string {
	if len(attachments) == 0 {
		return ""
	}
	lines := make([]string, 0, len(attachments)+1)
	lines = append(lines, "附加材料：")
	for _, a := range attachments {
		name := strings.TrimSpace(a.Name)
		content := strings.TrimSpace(a.Content)
		if content == "" {
			continue
		}
		if name == "" {
			name = "附件"
		}
		lines = append(lines, "- "+name+"\n"+content)
	}
	if len(lines) == 1 {
		return ""
	}
	return strings.Join(lines, "\n\n")
}

// BuildHistoryBlock 把既有幻灯片标题拼成提示块，提示模型在已有内容上续写
func BuildHistoryBlock(titles []string) string {
	if len(titles) == 0 {
		return ""
	}
	lines := make([]string, 0, len(titles)+1)
	lines = append(lines, "已生成的幻灯片（不要重复，继续编号）：")
	for _, t := range titles {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		lines = append(lines, "- "+t)
	}
	if len(lines) == 1 {
		return ""
	}
	return strings.Join(lines, "\n")
}
