// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"encoding/json"
	"time"

	"storyboard-ai-api/internal/domain/entity"
	"storyboard-ai-api/internal/domain/repository"
	"storyboard-ai-api/internal/infrastructure/persistence/redis"
	"storyboard-ai-api/internal/interfaces/http/dto"
	"storyboard-ai-api/internal/interfaces/http/middleware"
	"storyboard-ai-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// projectCacheTTL 项目详情缓存时间
const projectCacheTTL = 5 * time.Minute

// ProjectHandler 项目处理器
type ProjectHandler struct {
	projectRepo repository.ProjectRepository
	cache       *redis.Cache
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(projectRepo repository.ProjectRepository, cache *redis.Cache) *ProjectHandler {
	return &ProjectHandler{
		projectRepo: projectRepo,
		cache:       cache,
	}
}

// ListProjects 获取项目列表
// @Summary 获取项目列表
// @Description 获取当前用户的项目列表
// @Tags Projects
// @Accept json
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Success 200 {object} dto.Response[[]dto.ProjectSummaryResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	pageReq := dto.BindPage(c)

	result, err := h.projectRepo.ListByOwner(ctx, userID, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list projects", err)
		dto.InternalError(c, "failed to list projects")
		return
	}

	items := make([]*dto.ProjectSummaryResponse, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, dto.ToProjectSummaryResponse(p))
	}

	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, items, meta)
}

// CreateProject 创建项目
// @Summary 创建项目
// @Description 创建新的故事板项目
// @Tags Projects
// @Accept json
// @Produce json
// @Param body body dto.CreateProjectRequest true "项目信息"
// @Success 201 {object} dto.Response[dto.ProjectResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	project := entity.NewProject(userID, req.Title)
	project.Description = req.Description
	project.Tags = req.Tags
	if req.Settings != nil {
		project.Settings = req.Settings
	}

	if err := h.projectRepo.Create(ctx, project); err != nil {
		logger.Error(ctx, "failed to create project", err)
		dto.InternalError(c, "failed to create project")
		return
	}

	dto.Created(c, dto.ToProjectResponse(project))
}

// GetProject 获取项目详情
// @Summary 获取项目详情
// @Description 获取指定项目的详细信息（带缓存）
// @Tags Projects
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.ProjectResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/projects/{pid} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	projectID := dto.BindProjectID(c)
	if projectID == "" {
		dto.BadRequest(c, "missing project id")
		return
	}

	project, err := h.loadProject(ctx, projectID)
	if err != nil {
		logger.Error(ctx, "failed to get project", err)
		dto.InternalError(c, "failed to get project")
		return
	}
	if project == nil || project.OwnerID != userID {
		dto.NotFound(c, "project not found")
		return
	}

	dto.Success(c, dto.ToProjectResponse(project))
}

// UpdateProject 更新项目
// @Summary 更新项目
// @Description 局部更新项目字段，nil 字段保持不变
// @Tags Projects
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param body body dto.UpdateProjectRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.ProjectResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/projects/{pid} [put]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	projectID := dto.BindProjectID(c)

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	project, err := h.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		logger.Error(ctx, "failed to get project", err)
		dto.InternalError(c, "failed to update project")
		return
	}
	if project == nil || project.OwnerID != userID {
		dto.NotFound(c, "project not found")
		return
	}
	if !project.IsEditable() {
		dto.Conflict(c, "project is archived")
		return
	}

	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Tags != nil {
		project.Tags = *req.Tags
	}
	if req.Settings != nil {
		project.Settings = req.Settings
	}
	if req.Outline != nil {
		project.Outline = req.Outline
	}
	if req.Slides != nil {
		project.Slides = *req.Slides
	}
	if req.Status != nil {
		project.Status = entity.ProjectStatus(*req.Status)
	}

	if err := h.projectRepo.Update(ctx, project); err != nil {
		logger.Error(ctx, "failed to update project", err)
		dto.InternalError(c, "failed to update project")
		return
	}

	h.invalidateCache(ctx, project.OwnerID, project.ID)
	dto.Success(c, dto.ToProjectResponse(project))
}

// DeleteProject 删除项目
// @Summary 删除项目
// @Tags Projects
// @Param pid path string true "项目 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	projectID := dto.BindProjectID(c)

	project, err := h.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		logger.Error(ctx, "failed to get project", err)
		dto.InternalError(c, "failed to delete project")
		return
	}
	if project == nil || project.OwnerID != userID {
		dto.NotFound(c, "project not found")
		return
	}

	if err := h.projectRepo.Delete(ctx, projectID); err != nil {
		logger.Error(ctx, "failed to delete project", err)
		dto.InternalError(c, "failed to delete project")
		return
	}

	h.invalidateCache(ctx, project.OwnerID, project.ID)
	dto.NoContent(c)
}

// loadProject 带缓存读取项目，缓存不可用时直接回源
func (h *ProjectHandler) loadProject(ctx context.Context, projectID string) (*entity.Project, error) {
	if h.cache == nil {
		return h.projectRepo.GetByID(ctx, projectID)
	}

	data, err := h.cache.GetOrLoadSafe(ctx, redis.ProjectKey(projectID), projectCacheTTL, func() (interface{}, error) {
		return h.projectRepo.GetByID(ctx, projectID)
	})
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var project entity.Project
	if err := json.Unmarshal(data, &project); err != nil {
		// 缓存内容损坏时回源
		return h.projectRepo.GetByID(ctx, projectID)
	}
	return &project, nil
}

func (h *ProjectHandler) invalidateCache(ctx context.Context, ownerID, projectID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateProject(ctx, ownerID, projectID); err != nil {
		logger.Warn(ctx, "failed to invalidate project cache", "error", err, "project_id", projectID)
	}
}
