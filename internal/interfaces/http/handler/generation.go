// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storyboard-ai-api/internal/application/artifact"
	"storyboard-ai-api/internal/application/credit"
	"storyboard-ai-api/internal/application/storyboard"
	"storyboard-ai-api/internal/config"
	"storyboard-ai-api/internal/domain/entity"
	"storyboard-ai-api/internal/domain/repository"
	"storyboard-ai-api/internal/infrastructure/image"
	rediscache "storyboard-ai-api/internal/infrastructure/persistence/redis"
	"storyboard-ai-api/internal/interfaces/http/dto"
	"storyboard-ai-api/internal/interfaces/http/middleware"
	wfmodel "storyboard-ai-api/internal/workflow/model"
	"storyboard-ai-api/pkg/logger"
	"storyboard-ai-api/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// GenerationHandler 故事板/大纲/配图生成处理器
type GenerationHandler struct {
	cfg *config.Config

	txMgr       repository.Transactor
	projectRepo repository.ProjectRepository
	usageRepo   repository.UsageRepository
	cache       *rediscache.Cache

	ledger      *credit.Ledger
	generator   *storyboard.Generator
	outlineGen  *storyboard.OutlineGenerator
	imageClient *image.Client
}

// NewGenerationHandler 创建生成处理器
func NewGenerationHandler(
	cfg *config.Config,
	txMgr repository.Transactor,
	projectRepo repository.ProjectRepository,
	usageRepo repository.UsageRepository,
	cache *rediscache.Cache,
	ledger *credit.Ledger,
	generator *storyboard.Generator,
	outlineGen *storyboard.OutlineGenerator,
	imageClient *image.Client,
) *GenerationHandler {
	return &GenerationHandler{
		cfg:         cfg,
		txMgr:       txMgr,
		projectRepo: projectRepo,
		usageRepo:   usageRepo,
		cache:       cache,
		ledger:      ledger,
		generator:   generator,
		outlineGen:  outlineGen,
		imageClient: imageClient,
	}
}

// storyboardStreamResult 流式生成完成后的聚合结果
type storyboardStreamResult struct {
	artifacts []artifact.Artifact
	narration string
	chars     int
	credits   int64
	balance   int64
	meta      wfmodel.LLMUsageMeta
	duration  time.Duration
}

// StreamStoryboard SSE 流式生成故事板
// @Summary SSE 流式生成故事板
// @Description 通过 SSE 事件流输出增量 content 与 artifact，结束时输出 done（含用量与余额）
// @Tags Generation
// @Accept json
// @Produce text/event-stream
// @Param pid path string true "项目 ID"
// @Success 200 "SSE stream"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 402 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/storyboard/stream [post]
func (h *GenerationHandler) StreamStoryboard(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	projectID := dto.BindProjectID(c)

	req, err := h.bindStoryboardStreamRequest(c)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	provider, model, err := resolveProviderModel(h.cfg, req.Provider, req.Model)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	project, ok := h.loadOwnedProject(c, projectID, userID)
	if !ok {
		return
	}

	// 预检：余额低于保留线时直接拒绝开流
	if _, err := h.ledger.EnsureReserve(ctx, userID); err != nil {
		writeCreditError(c, err)
		return
	}

	writeSSEHeaders(c)

	contentCh := make(chan string, 16)
	artifactCh := make(chan dto.ArtifactEvent, 16)
	doneCh := make(chan *storyboardStreamResult, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(contentCh)
		defer close(artifactCh)
		defer close(doneCh)
		defer close(errCh)

		start := time.Now()
		reader, streamErr := h.generator.Stream(ctx, req.ToStoryboardInput(project, provider, model))
		if streamErr != nil {
			metrics.GenerationTotal.WithLabelValues("storyboard", "error").Inc()
			errCh <- streamErr
			return
		}
		defer reader.Close()

		var raw strings.Builder
		var usage *wfmodel.LLMUsageMeta

		// prev 记录每个下标上次推送的快照，只在内容变化时再推
		prev := make(map[int]dto.ArtifactEvent)

		for {
			msg, recvErr := reader.Recv()
			if errors.Is(recvErr, io.EOF) {
				break
			}
			if recvErr != nil {
				metrics.GenerationTotal.WithLabelValues("storyboard", "error").Inc()
				errCh <- recvErr
				return
			}

			if msg.Content != "" {
				raw.WriteString(msg.Content)
				if !sendOrDone(ctx, contentCh, msg.Content) {
					return
				}

				for i, a := range artifact.Extract(raw.String()) {
					ev := dto.ToArtifactEvent(i, a)
					if last, seen := prev[i]; !seen || last != ev {
						prev[i] = ev
						if !sendOrDone(ctx, artifactCh, ev) {
							return
						}
					}
				}
			}

			if msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
				u := msg.ResponseMeta.Usage
				meta := wfmodel.LLMUsageMeta{
					Provider:         provider,
					Model:            model,
					PromptTokens:     u.PromptTokens,
					CompletionTokens: u.CompletionTokens,
					GeneratedAt:      time.Now().UTC(),
				}
				if req.Temperature != nil {
					meta.Temperature = float64(*req.Temperature)
				}
				usage = &meta
			}
		}

		text := raw.String()
		result := &storyboardStreamResult{
			artifacts: artifact.Extract(text),
			narration: artifact.Strip(text),
			chars:     len([]rune(text)),
			meta: wfmodel.LLMUsageMeta{
				Provider:    provider,
				Model:       model,
				GeneratedAt: time.Now().UTC(),
			},
			duration: time.Since(start),
		}
		if usage != nil {
			result.meta = *usage
		}

		// 按产出字符数扣费；竞争导致的余额不足也会在这里出现
		cost := credit.TextCost(text)
		balance, deductErr := h.ledger.Deduct(ctx, userID, cost)
		if deductErr != nil {
			metrics.GenerationTotal.WithLabelValues("storyboard", "error").Inc()
			errCh <- deductErr
			return
		}
		result.credits = cost
		result.balance = balance
		metrics.CreditsDeductedTotal.WithLabelValues("storyboard").Add(float64(cost))

		h.commitStoryboard(ctx, userID, project, result)

		metrics.GenerationTotal.WithLabelValues("storyboard", "success").Inc()
		metrics.GenerationDuration.WithLabelValues("storyboard").Observe(result.duration.Seconds())
		metrics.ArtifactsExtracted.WithLabelValues("storyboard").Observe(float64(len(result.artifacts)))

		doneCh <- result
	}()

	index := 0
	c.Stream(func(w io.Writer) bool {
		select {
		case chunk, ok := <-contentCh:
			if !ok {
				return false
			}
			c.SSEvent("content", gin.H{"chunk": chunk, "index": index})
			index++
			return true

		case ev, ok := <-artifactCh:
			if !ok {
				return false
			}
			c.SSEvent("artifact", ev)
			return true

		case result, ok := <-doneCh:
			if !ok {
				return false
			}
			events := make([]dto.ArtifactEvent, 0, len(result.artifacts))
			for i, a := range result.artifacts {
				events = append(events, dto.ToArtifactEvent(i, a))
			}
			c.SSEvent("done", gin.H{
				"artifacts": events,
				"narration": result.narration,
				"usage":     dto.ToGenerationUsageResponse(result.meta, result.chars, result.credits, result.balance, int(result.duration.Milliseconds())),
			})
			return false

		case streamErr, ok := <-errCh:
			if ok && streamErr != nil {
				c.SSEvent("error", sseErrorPayload(streamErr))
			}
			return false

		case <-ctx.Done():
			return false
		}
	})
}

// GenerateStoryboard 同步生成故事板（非流式）
// @Summary 同步生成故事板
// @Tags Generation
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param body body dto.StoryboardGenerateRequest true "生成请求"
// @Success 200 {object} dto.Response[gin.H]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 402 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/storyboard [post]
func (h *GenerationHandler) GenerateStoryboard(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	projectID := dto.BindProjectID(c)

	var req dto.StoryboardGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	provider, model, err := resolveProviderModel(h.cfg, req.Provider, req.Model)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	project, ok := h.loadOwnedProject(c, projectID, userID)
	if !ok {
		return
	}

	if _, err := h.ledger.EnsureReserve(ctx, userID); err != nil {
		writeCreditError(c, err)
		return
	}

	start := time.Now()
	out, genErr := h.generator.Generate(ctx, req.ToStoryboardInput(project, provider, model))
	duration := time.Since(start)
	if genErr != nil {
		metrics.GenerationTotal.WithLabelValues("storyboard", "error").Inc()
		logger.Error(ctx, "storyboard generation failed", genErr)
		dto.InternalError(c, "storyboard generation failed")
		return
	}

	chars := len([]rune(out.Raw))
	cost := credit.TextCost(out.Raw)
	balance, deductErr := h.ledger.Deduct(ctx, userID, cost)
	if deductErr != nil {
		writeCreditError(c, deductErr)
		return
	}
	metrics.CreditsDeductedTotal.WithLabelValues("storyboard").Add(float64(cost))

	result := &storyboardStreamResult{
		artifacts: out.Artifacts,
		narration: out.Narration,
		chars:     chars,
		credits:   cost,
		balance:   balance,
		meta:      out.Meta,
		duration:  duration,
	}
	h.commitStoryboard(ctx, userID, project, result)

	metrics.GenerationTotal.WithLabelValues("storyboard", "success").Inc()
	metrics.GenerationDuration.WithLabelValues("storyboard").Observe(duration.Seconds())
	metrics.ArtifactsExtracted.WithLabelValues("storyboard").Observe(float64(len(out.Artifacts)))

	events := make([]dto.ArtifactEvent, 0, len(out.Artifacts))
	for i, a := range out.Artifacts {
		events = append(events, dto.ToArtifactEvent(i, a))
	}
	dto.Success(c, gin.H{
		"artifacts": events,
		"narration": out.Narration,
		"usage":     dto.ToGenerationUsageResponse(out.Meta, chars, cost, balance, int(duration.Milliseconds())),
	})
}

// StreamOutline SSE 流式生成大纲
// @Summary SSE 流式生成大纲
// @Description 增量输出 content 与可解析的 outline 预览，结束时输出 done（含完整大纲）
// @Tags Generation
// @Accept json
// @Produce text/event-stream
// @Param pid path string true "项目 ID"
// @Success 200 "SSE stream"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 402 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/outline/stream [post]
func (h *GenerationHandler) StreamOutline(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	projectID := dto.BindProjectID(c)

	req, err := h.bindOutlineStreamRequest(c)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	provider, model, err := resolveProviderModel(h.cfg, req.Provider, req.Model)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	project, ok := h.loadOwnedProject(c, projectID, userID)
	if !ok {
		return
	}

	if _, err := h.ledger.EnsureReserve(ctx, userID); err != nil {
		writeCreditError(c, err)
		return
	}

	writeSSEHeaders(c)

	type outlineResult struct {
		outline  *entity.Outline
		chars    int
		credits  int64
		balance  int64
		meta     wfmodel.LLMUsageMeta
		duration time.Duration
	}

	contentCh := make(chan string, 16)
	previewCh := make(chan *entity.Outline, 4)
	doneCh := make(chan *outlineResult, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(contentCh)
		defer close(previewCh)
		defer close(doneCh)
		defer close(errCh)

		start := time.Now()
		reader, streamErr := h.outlineGen.Stream(ctx, req.ToOutlineInput(project, provider, model))
		if streamErr != nil {
			metrics.GenerationTotal.WithLabelValues("outline", "error").Inc()
			errCh <- streamErr
			return
		}
		defer reader.Close()

		var raw strings.Builder
		var usage *wfmodel.LLMUsageMeta
		lastScenes := -1

		for {
			msg, recvErr := reader.Recv()
			if errors.Is(recvErr, io.EOF) {
				break
			}
			if recvErr != nil {
				metrics.GenerationTotal.WithLabelValues("outline", "error").Inc()
				errCh <- recvErr
				return
			}

			if msg.Content != "" {
				raw.WriteString(msg.Content)
				if !sendOrDone(ctx, contentCh, msg.Content) {
					return
				}

				// 每多解析出一个场景推一次预览，避免逐字符刷屏
				if preview, parsed := storyboard.ParseOutlinePreview(raw.String()); parsed && len(preview.Scenes) > lastScenes {
					lastScenes = len(preview.Scenes)
					if !sendOrDone(ctx, previewCh, preview) {
						return
					}
				}
			}

			if msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
				u := msg.ResponseMeta.Usage
				meta := wfmodel.LLMUsageMeta{
					Provider:         provider,
					Model:            model,
					PromptTokens:     u.PromptTokens,
					CompletionTokens: u.CompletionTokens,
					GeneratedAt:      time.Now().UTC(),
				}
				if req.Temperature != nil {
					meta.Temperature = float64(*req.Temperature)
				}
				usage = &meta
			}
		}

		text := raw.String()
		outline, parseErr := storyboard.ParseOutline(text)
		if parseErr != nil {
			metrics.GenerationTotal.WithLabelValues("outline", "error").Inc()
			errCh <- parseErr
			return
		}
		if err := storyboard.ValidateOutline(outline); err != nil {
			metrics.GenerationTotal.WithLabelValues("outline", "error").Inc()
			errCh <- err
			return
		}

		result := &outlineResult{
			outline: outline,
			chars:   len([]rune(text)),
			meta: wfmodel.LLMUsageMeta{
				Provider:    provider,
				Model:       model,
				GeneratedAt: time.Now().UTC(),
			},
			duration: time.Since(start),
		}
		if usage != nil {
			result.meta = *usage
		}

		cost := credit.TextCost(text)
		balance, deductErr := h.ledger.Deduct(ctx, userID, cost)
		if deductErr != nil {
			metrics.GenerationTotal.WithLabelValues("outline", "error").Inc()
			errCh <- deductErr
			return
		}
		result.credits = cost
		result.balance = balance
		metrics.CreditsDeductedTotal.WithLabelValues("outline").Add(float64(cost))

		// 大纲直接落到项目上，确认后续生成能引用；与扣费记录同事务
		project.Outline = outline
		if txErr := h.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
			if err := h.projectRepo.Update(txCtx, project); err != nil {
				return err
			}
			return h.usageRepo.Create(txCtx, &entity.UsageEvent{
				UserID:     userID,
				ProjectID:  projectID,
				Kind:       entity.UsageKindOutline,
				Provider:   result.meta.Provider,
				Model:      result.meta.Model,
				Chars:      result.chars,
				Credits:    cost,
				DurationMs: int(result.duration.Milliseconds()),
			})
		}); txErr != nil {
			logger.Warn(ctx, "failed to persist outline", "error", txErr, "project_id", project.ID)
		} else {
			h.invalidateProjectCache(ctx, project)
		}

		metrics.GenerationTotal.WithLabelValues("outline", "success").Inc()
		metrics.GenerationDuration.WithLabelValues("outline").Observe(result.duration.Seconds())

		doneCh <- result
	}()

	index := 0
	c.Stream(func(w io.Writer) bool {
		select {
		case chunk, ok := <-contentCh:
			if !ok {
				return false
			}
			c.SSEvent("content", gin.H{"chunk": chunk, "index": index})
			index++
			return true

		case preview, ok := <-previewCh:
			if !ok {
				return false
			}
			c.SSEvent("outline", preview)
			return true

		case result, ok := <-doneCh:
			if !ok {
				return false
			}
			c.SSEvent("done", gin.H{
				"outline": result.outline,
				"usage":   dto.ToGenerationUsageResponse(result.meta, result.chars, result.credits, result.balance, int(result.duration.Milliseconds())),
			})
			return false

		case streamErr, ok := <-errCh:
			if ok && streamErr != nil {
				c.SSEvent("error", sseErrorPayload(streamErr))
			}
			return false

		case <-ctx.Done():
			return false
		}
	})
}

// GenerateSlideImage 为幻灯片生成配图
// @Summary 生成幻灯片配图
// @Description 调用图像服务生成配图并写回幻灯片，按固定价格扣减积分
// @Tags Generation
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param sid path int true "幻灯片下标"
// @Param body body dto.SlideImageRequest true "配图请求"
// @Success 200 {object} dto.Response[dto.SlideImageResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 402 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/slides/{sid}/image [post]
func (h *GenerationHandler) GenerateSlideImage(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	projectID := dto.BindProjectID(c)

	slideIndex, err := strconv.Atoi(c.Param("sid"))
	if err != nil || slideIndex < 0 {
		dto.BadRequest(c, "invalid slide index")
		return
	}

	var req dto.SlideImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if h.imageClient == nil {
		dto.ServiceUnavailable(c, "image generation not configured")
		return
	}

	project, ok := h.loadOwnedProject(c, projectID, userID)
	if !ok {
		return
	}
	if slideIndex >= len(project.Slides) {
		dto.NotFound(c, "slide not found")
		return
	}

	// 配图按固定价格预扣，生成失败则返还
	balance, deductErr := h.ledger.Deduct(ctx, userID, credit.ImageCost)
	if deductErr != nil {
		writeCreditError(c, deductErr)
		return
	}
	metrics.CreditsDeductedTotal.WithLabelValues("image").Add(float64(credit.ImageCost))

	start := time.Now()
	url, genErr := h.imageClient.Generate(ctx, req.Prompt, req.Size)
	duration := time.Since(start)
	if genErr != nil {
		metrics.GenerationTotal.WithLabelValues("image", "error").Inc()
		if refunded, refundErr := h.ledger.Refund(ctx, userID, credit.ImageCost); refundErr != nil {
			logger.Error(ctx, "failed to refund image credits", refundErr, "user_id", userID)
		} else {
			balance = refunded
		}
		logger.Error(ctx, "image generation failed", genErr)
		dto.InternalError(c, "image generation failed")
		return
	}

	project.Slides[slideIndex].ImageURL = url
	if err := h.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := h.projectRepo.Update(txCtx, project); err != nil {
			return err
		}
		return h.usageRepo.Create(txCtx, &entity.UsageEvent{
			UserID:     userID,
			ProjectID:  projectID,
			Kind:       entity.UsageKindImage,
			Provider:   "image",
			Model:      h.cfg.Image.Model,
			Chars:      len([]rune(req.Prompt)),
			Credits:    credit.ImageCost,
			DurationMs: int(duration.Milliseconds()),
		})
	}); err != nil {
		logger.Error(ctx, "failed to persist slide image", err)
		dto.InternalError(c, "failed to save image url")
		return
	}
	h.invalidateProjectCache(ctx, project)

	metrics.GenerationTotal.WithLabelValues("image", "success").Inc()
	metrics.GenerationDuration.WithLabelValues("image").Observe(duration.Seconds())

	dto.Success(c, &dto.SlideImageResponse{
		SlideIndex: slideIndex,
		ImageURL:   url,
		Credits:    credit.ImageCost,
		Balance:    balance,
	})
}

// loadOwnedProject 读取项目并校验归属，失败时已写响应
func (h *GenerationHandler) loadOwnedProject(c *gin.Context, projectID, userID string) (*entity.Project, bool) {
	ctx := c.Request.Context()
	if projectID == "" {
		dto.BadRequest(c, "missing project id")
		return nil, false
	}

	project, err := h.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		logger.Error(ctx, "failed to load project", err)
		dto.InternalError(c, "failed to load project")
		return nil, false
	}
	if project == nil || project.OwnerID != userID {
		dto.NotFound(c, "project not found")
		return nil, false
	}
	return project, true
}

// commitStoryboard 在单个事务里合并幻灯片并写入扣费记录。
// 落库失败不打断已经产出的流，只告警。
func (h *GenerationHandler) commitStoryboard(ctx context.Context, userID string, project *entity.Project, result *storyboardStreamResult) {
	changed := mergeSlides(project, result.artifacts)

	err := h.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		if changed {
			if err := h.projectRepo.Update(txCtx, project); err != nil {
				return err
			}
		}
		return h.usageRepo.Create(txCtx, &entity.UsageEvent{
			UserID:     userID,
			ProjectID:  project.ID,
			Kind:       entity.UsageKindStoryboard,
			Provider:   result.meta.Provider,
			Model:      result.meta.Model,
			Chars:      result.chars,
			Credits:    result.credits,
			DurationMs: int(result.duration.Milliseconds()),
		})
	})
	if err != nil {
		logger.Warn(ctx, "failed to persist generation result", "error", err, "project_id", project.ID)
		return
	}
	if changed {
		h.invalidateProjectCache(ctx, project)
	}
}

// mergeSlides 把本轮产出的幻灯片合并进项目，返回是否有变更。
//
// 合并规则与提取的去重规则一致：按标题对齐，已存在的标题更新正文，
// 新标题追加到末尾。未闭合的幻灯片不落库。
func mergeSlides(project *entity.Project, artifacts []artifact.Artifact) bool {
	byTitle := make(map[string]int, len(project.Slides))
	for i, s := range project.Slides {
		byTitle[s.Title] = i
	}

	changed := false
	for _, a := range artifacts {
		if !a.Complete {
			continue
		}
		slide := entity.Slide{
			Title:    a.Title,
			Kind:     entity.SlideKind(a.Kind),
			Body:     a.Body,
			Complete: true,
		}
		if i, exists := byTitle[a.Title]; exists {
			slide.X = project.Slides[i].X
			slide.Y = project.Slides[i].Y
			slide.Width = project.Slides[i].Width
			slide.Height = project.Slides[i].Height
			slide.ImageURL = project.Slides[i].ImageURL
			project.Slides[i] = slide
		} else {
			byTitle[a.Title] = len(project.Slides)
			project.Slides = append(project.Slides, slide)
		}
		changed = true
	}
	if changed && project.Status == entity.ProjectStatusDraft {
		project.Status = entity.ProjectStatusReady
	}
	return changed
}

func (h *GenerationHandler) invalidateProjectCache(ctx context.Context, project *entity.Project) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateProject(ctx, project.OwnerID, project.ID); err != nil {
		logger.Warn(ctx, "failed to invalidate project cache", "error", err, "project_id", project.ID)
	}
}

func (h *GenerationHandler) bindStoryboardStreamRequest(c *gin.Context) (*dto.StoryboardGenerateRequest, error) {
	if c.Request.Method == http.MethodPost {
		var req dto.StoryboardGenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, fmt.Errorf("invalid request body: %w", err)
		}
		return &req, nil
	}

	// GET: 兼容 EventSource 场景（仅 query 参数）
	prompt := strings.TrimSpace(c.Query("prompt"))
	if prompt == "" {
		return nil, fmt.Errorf("missing prompt")
	}

	req := &dto.StoryboardGenerateRequest{
		Prompt:     prompt,
		UseOutline: c.Query("use_outline") == "true",
		Provider:   strings.TrimSpace(c.Query("provider")),
		Model:      strings.TrimSpace(c.Query("model")),
	}
	return req, nil
}

func (h *GenerationHandler) bindOutlineStreamRequest(c *gin.Context) (*dto.OutlineGenerateRequest, error) {
	if c.Request.Method == http.MethodPost {
		var req dto.OutlineGenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, fmt.Errorf("invalid request body: %w", err)
		}
		return &req, nil
	}

	prompt := strings.TrimSpace(c.Query("prompt"))
	if prompt == "" {
		return nil, fmt.Errorf("missing prompt")
	}

	req := &dto.OutlineGenerateRequest{
		Prompt:   prompt,
		Provider: strings.TrimSpace(c.Query("provider")),
		Model:    strings.TrimSpace(c.Query("model")),
	}
	if raw := c.Query("scene_count"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 && n <= 30 {
			req.SceneCount = n
		}
	}
	return req, nil
}

// sendOrDone 推送事件，客户端断开导致消费端退出后放弃推送，
// 返回 false 时生产者应立即收尾
func sendOrDone[T any](ctx context.Context, ch chan<- T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-ctx.Done():
		return false
	}
}

// writeSSEHeaders 设置 SSE 响应头
func writeSSEHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}

// sseErrorPayload 流内错误事件载荷，余额不足带上错误码
func sseErrorPayload(err error) gin.H {
	var insufficient *credit.InsufficientCreditsError
	if errors.As(err, &insufficient) {
		return gin.H{
			"code":    "insufficient_credits",
			"message": insufficient.Error(),
		}
	}
	var ve storyboard.OutlineValidationError
	if errors.As(err, &ve) {
		return gin.H{
			"code":    "outline_invalid",
			"message": ve.Error(),
		}
	}
	return gin.H{"message": err.Error()}
}
