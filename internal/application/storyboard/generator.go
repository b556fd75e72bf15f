// Package storyboard 封装故事板与大纲的生成编排
package storyboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"storyboard-ai-api/internal/application/artifact"
	workflowchain "storyboard-ai-api/internal/workflow/chain"
	wfmodel "storyboard-ai-api/internal/workflow/model"
	workflowport "storyboard-ai-api/internal/workflow/port"
)

// GenerateOutput 一次完整（非流式）故事板生成的结果
type GenerateOutput struct {
	// Artifacts 从模型输出抽取出的幻灯片/屏幕
	Artifacts []artifact.Artifact

	// Narration 标记块之外的对话文本
	Narration string

	Raw  string
	Meta wfmodel.LLMUsageMeta
}

// Generator 故事板生成器
type Generator struct {
	chain *workflowchain.StoryboardChain
}

func NewGenerator(factory workflowport.ChatModelFactory) *Generator {
	return &Generator{
		chain: workflowchain.NewStoryboardChain(factory),
	}
}

func (g *Generator) Generate(ctx context.Context, in *wfmodel.StoryboardGenerateInput) (*GenerateOutput, error) {
	if g == nil || g.chain == nil {
		return nil, fmt.Errorf("storyboard workflow not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	outMsg, err := g.chain.Invoke(ctx, in)
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}

	meta := wfmodel.LLMUsageMeta{
		Provider:    strings.TrimSpace(in.Provider),
		Model:       strings.TrimSpace(in.Model),
		GeneratedAt: time.Now().UTC(),
	}
	if in.Temperature != nil {
		meta.Temperature = float64(*in.Temperature)
	}
	if outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
		meta.PromptTokens = outMsg.ResponseMeta.Usage.PromptTokens
		meta.CompletionTokens = outMsg.ResponseMeta.Usage.CompletionTokens
	}

	return &GenerateOutput{
		Artifacts: artifact.Extract(outMsg.Content),
		Narration: artifact.Strip(outMsg.Content),
		Raw:       outMsg.Content,
		Meta:      meta,
	}, nil
}

// Stream 返回 Eino StreamReader；调用方负责 Close()。
// 约定：流可能在最后返回一个 Content 为空但包含 Usage 的消息，用于 Token 统计。
func (g *Generator) Stream(ctx context.Context, in *wfmodel.StoryboardGenerateInput) (*schema.StreamReader[*schema.Message], error) {
	if g == nil || g.chain == nil {
		return nil, fmt.Errorf("storyboard workflow not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	return g.chain.Stream(ctx, in)
}
