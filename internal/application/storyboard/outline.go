package storyboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"storyboard-ai-api/internal/domain/entity"
	workflowchain "storyboard-ai-api/internal/workflow/chain"
	wfmodel "storyboard-ai-api/internal/workflow/model"
	workflowport "storyboard-ai-api/internal/workflow/port"
)

// OutlineGenerateOutput 大纲生成结果
type OutlineGenerateOutput struct {
	Outline *entity.Outline
	Raw     string
	Meta    wfmodel.LLMUsageMeta
}

// OutlineGenerator 大纲生成器
type OutlineGenerator struct {
	chain *workflowchain.OutlineChain
}

func NewOutlineGenerator(factory workflowport.ChatModelFactory) *OutlineGenerator {
	return &OutlineGenerator{
		chain: workflowchain.NewOutlineChain(factory),
	}
}

func (g *OutlineGenerator) Generate(ctx context.Context, in *wfmodel.OutlineGenerateInput) (*OutlineGenerateOutput, error) {
	if g == nil || g.chain == nil {
		return nil, fmt.Errorf("outline workflow not configured")
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

	outline, err := ParseOutline(outMsg.Content)
	if err != nil {
		return nil, err
	}
	if err := ValidateOutline(outline); err != nil {
		return nil, err
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

	return &OutlineGenerateOutput{
		Outline: outline,
		Raw:     outMsg.Content,
		Meta:    meta,
	}, nil
}

// Stream 返回 Eino StreamReader；调用方负责 Close()。
func (g *OutlineGenerator) Stream(ctx context.Context, in *wfmodel.OutlineGenerateInput) (*schema.StreamReader[*schema.Message], error) {
	if g == nil || g.chain == nil {
		return nil, fmt.Errorf("outline workflow not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	return g.chain.Stream(ctx, in)
}
