// Package chain 基于 Eino compose 封装各工作流的调用链
package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	llmctx "storyboard-ai-api/internal/domain/service"
	wfmodel "storyboard-ai-api/internal/workflow/model"
	wfnode "storyboard-ai-api/internal/workflow/node"
	workflowport "storyboard-ai-api/internal/workflow/port"
	workflowprompt "storyboard-ai-api/internal/workflow/prompt"
)

var defaultPromptRegistry = workflowprompt.NewRegistry()

// StoryboardChain 故事板生成链：提示词模板 -> ChatModel。
// 模型输出为带标记块的自由文本，由应用层增量抽取幻灯片。
type StoryboardChain struct {
	factory workflowport.ChatModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.StoryboardGenerateInput, *schema.Message]
	chainErr  error
}

func NewStoryboardChain(factory workflowport.ChatModelFactory) *StoryboardChain {
	return &StoryboardChain{factory: factory}
}

func (c *StoryboardChain) Invoke(ctx context.Context, in *wfmodel.StoryboardGenerateInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	chain, err := c.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

// Stream 返回 Eino StreamReader；调用方负责 Close()。
// 约定：流可能在最后返回一个 Content 为空但包含 Usage 的消息，用于 Token 统计。
func (c *StoryboardChain) Stream(ctx context.Context, in *wfmodel.StoryboardGenerateInput) (*schema.StreamReader[*schema.Message], error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	ctx = llmctx.WithWorkflowProvider(ctx, "storyboard_stream", strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatStoryboardMessages(ctx, in)
	if err != nil {
		return nil, err
	}

	return chatModel.Stream(ctx, msgs, buildStoryboardModelOptions(in)...)
}

type storyboardChainState struct {
	In       *wfmodel.StoryboardGenerateInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *StoryboardChain) getChain() (compose.Runnable[*wfmodel.StoryboardGenerateInput, *schema.Message], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *StoryboardChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.StoryboardGenerateInput, *schema.Message], error) {
	chain := compose.NewChain[*wfmodel.StoryboardGenerateInput, *schema.Message]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.StoryboardGenerateInput) (*storyboardChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &storyboardChainState{In: in}, nil
		}),
		compose.WithNodeName("storyboard.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *storyboardChainState) (*storyboardChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			msgs, err := formatStoryboardMessages(ctx, st.In)
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName("storyboard.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *storyboardChainState) (*storyboardChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			if c.factory == nil {
				return nil, fmt.Errorf("llm factory not configured")
			}

			ctx = llmctx.WithWorkflowProvider(ctx, "storyboard_generate", strings.TrimSpace(st.In.Provider))
			chatModel, err := c.factory.Get(ctx, strings.TrimSpace(st.In.Provider))
			if err != nil {
				return nil, err
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, buildStoryboardModelOptions(st.In)...)
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName("storyboard.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *storyboardChainState) (*schema.Message, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.OutMsg, nil
		}),
		compose.WithNodeName("storyboard.finalize"),
	)

	return chain.Compile(ctx)
}

func formatStoryboardMessages(ctx context.Context, in *wfmodel.StoryboardGenerateInput) ([]*schema.Message, error) {
	tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptStoryboardGenV1)
	if err != nil {
		return nil, err
	}

	outlineBlock := ""
	if strings.TrimSpace(in.OutlineJSON) != "" {
		outlineBlock = "已确认的大纲（按此展开，每个场景一页起）：\n" + strings.TrimSpace(in.OutlineJSON)
	}

	vars := map[string]any{
		"project_title":       strings.TrimSpace(in.ProjectTitle),
		"project_description": strings.TrimSpace(in.ProjectDescription),
		"prompt":              strings.TrimSpace(in.Prompt),
		"outline_block":       outlineBlock,
		"history_block":       wfnode.BuildHistoryBlock(in.History),
		"attachments_block":   wfnode.BuildAttachmentsBlock(in.Attachments),
	}
	return tpl.Format(ctx, vars)
}

func buildStoryboardModelOptions(in *wfmodel.StoryboardGenerateInput) []model.Option {
	opts := make([]model.Option, 0, 3)
	if in == nil {
		return opts
	}

	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}
	return opts
}
