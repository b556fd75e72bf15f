package model

// OutlineGenerateInput 大纲流式生成输入
type OutlineGenerateInput struct {
	ProjectTitle       string
	ProjectDescription string

	// Prompt 用户对演示主题与侧重点的描述
	Prompt string

	// SceneCount 期望的场景数，0 表示交给模型决定
	SceneCount int

	Attachments []TextAttachment

	Provider    string
	Model       string
	Temperature *float32
	MaxTokens   *int
}
