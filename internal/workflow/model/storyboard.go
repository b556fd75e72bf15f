package model

// StoryboardGenerateInput 故事板流式生成输入
type StoryboardGenerateInput struct {
	ProjectTitle       string
	ProjectDescription string

	// Prompt 用户本轮的生成指令
	Prompt string

	// OutlineJSON 已确认的大纲（JSON 文本），为空表示自由生成
	OutlineJSON string

	// History 既有幻灯片标题列表，用于提示模型续写而非重来
	History []string

	Attachments []TextAttachment

	Provider    string
	Model       string
	Temperature *float32
	MaxTokens   *int
}
