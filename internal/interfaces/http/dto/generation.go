package dto

import (
	"encoding/json"
	"time"

	"storyboard-ai-api/internal/application/artifact"
	"storyboard-ai-api/internal/domain/entity"
	wfmodel "storyboard-ai-api/internal/workflow/model"
)

// StoryboardGenerateRequest 故事板生成请求
type StoryboardGenerateRequest struct {
	Prompt      string                   `json:"prompt" binding:"required,max=8000"`
	Attachments []wfmodel.TextAttachment `json:"attachments" binding:"max=8"`

	// UseOutline 为 true 时把项目已确认的大纲注入提示词
	UseOutline bool `json:"use_outline"`

	Provider    string   `json:"provider" binding:"max=32"`
	Model       string   `json:"model" binding:"max=64"`
	Temperature *float32 `json:"temperature" binding:"omitempty,gte=0,lte=2"`
	MaxTokens   *int     `json:"max_tokens" binding:"omitempty,gt=0"`
}

// ToStoryboardInput 构建工作流输入
func (r *StoryboardGenerateRequest) ToStoryboardInput(project *entity.Project, provider, model string) *wfmodel.StoryboardGenerateInput {
	in := &wfmodel.StoryboardGenerateInput{
		Prompt:      r.Prompt,
		Attachments: r.Attachments,
		Provider:    provider,
		Model:       model,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
	}
	if project != nil {
		in.ProjectTitle = project.Title
		in.ProjectDescription = project.Description
		for _, s := range project.Slides {
			in.History = append(in.History, s.Title)
		}
		if r.UseOutline && project.Outline != nil {
			if b, err := json.Marshal(project.Outline); err == nil {
				in.OutlineJSON = string(b)
			}
		}
	}
	return in
}

// OutlineGenerateRequest 大纲生成请求
type OutlineGenerateRequest struct {
	Prompt      string                   `json:"prompt" binding:"required,max=8000"`
	SceneCount  int                      `json:"scene_count" binding:"gte=0,lte=30"`
	Attachments []wfmodel.TextAttachment `json:"attachments" binding:"max=8"`

	Provider    string   `json:"provider" binding:"max=32"`
	Model       string   `json:"model" binding:"max=64"`
	Temperature *float32 `json:"temperature" binding:"omitempty,gte=0,lte=2"`
	MaxTokens   *int     `json:"max_tokens" binding:"omitempty,gt=0"`
}

// ToOutlineInput 构建工作流输入
func (r *OutlineGenerateRequest) ToOutlineInput(project *entity.Project, provider, model string) *wfmodel.OutlineGenerateInput {
	in := &wfmodel.OutlineGenerateInput{
		Prompt:      r.Prompt,
		SceneCount:  r.SceneCount,
		Attachments: r.Attachments,
		Provider:    provider,
		Model:       model,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
	}
	if project != nil {
		in.ProjectTitle = project.Title
		in.ProjectDescription = project.Description
	}
	return in
}

// SlideImageRequest 幻灯片配图生成请求
type SlideImageRequest struct {
	Prompt string `json:"prompt" binding:"required,max=4000"`
	Size   string `json:"size" binding:"omitempty,oneof=1024x1024 1792x1024 1024x1792"`
}

// SlideImageResponse 幻灯片配图生成响应
type SlideImageResponse struct {
	SlideIndex int    `json:"slide_index"`
	ImageURL   string `json:"image_url"`
	Credits    int64  `json:"credits"`
	Balance    int64  `json:"balance"`
}

// ArtifactEvent SSE artifact 事件载荷
type ArtifactEvent struct {
	Index    int    `json:"index"`
	Title    string `json:"title"`
	Kind     string `json:"kind"`
	Body     string `json:"body"`
	Complete bool   `json:"complete"`
}

// ToArtifactEvent 提取结果转 SSE 事件
func ToArtifactEvent(index int, a artifact.Artifact) ArtifactEvent {
	return ArtifactEvent{
		Index:    index,
		Title:    a.Title,
		Kind:     string(a.Kind),
		Body:     a.Body,
		Complete: a.Complete,
	}
}

// GenerationUsageResponse 单次生成的用量信息
type GenerationUsageResponse struct {
	Provider         string  `json:"provider,omitempty"`
	Model            string  `json:"model,omitempty"`
	PromptTokens     int     `json:"prompt_tokens,omitempty"`
	CompletionTokens int     `json:"completion_tokens,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
	Chars            int     `json:"chars"`
	Credits          int64   `json:"credits"`
	Balance          int64   `json:"balance"`
	DurationMs       int     `json:"duration_ms"`
	GeneratedAt      string  `json:"generated_at,omitempty"`
}

// ToGenerationUsageResponse 用量元数据转响应
func ToGenerationUsageResponse(meta wfmodel.LLMUsageMeta, chars int, credits, balance int64, durationMs int) *GenerationUsageResponse {
	resp := &GenerationUsageResponse{
		Provider:         meta.Provider,
		Model:            meta.Model,
		PromptTokens:     meta.PromptTokens,
		CompletionTokens: meta.CompletionTokens,
		Temperature:      meta.Temperature,
		Chars:            chars,
		Credits:          credits,
		Balance:          balance,
		DurationMs:       durationMs,
	}
	if !meta.GeneratedAt.IsZero() {
		resp.GeneratedAt = meta.GeneratedAt.Format(time.RFC3339)
	}
	return resp
}
