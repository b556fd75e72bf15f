package dto

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"storyboard-ai-api/internal/domain/entity"
)

// BindProjectID 从路径参数提取项目 ID
func BindProjectID(c *gin.Context) string {
	return strings.TrimSpace(c.Param("pid"))
}

// PageRequest 分页查询参数
type PageRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// BindPage 解析分页查询参数
func BindPage(c *gin.Context) PageRequest {
	req := PageRequest{Page: 1, PageSize: 20}
	_ = c.ShouldBindQuery(&req)
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	return req
}

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Title       string                  `json:"title" binding:"required,max=255"`
	Description string                  `json:"description" binding:"max=4000"`
	Tags        []string                `json:"tags" binding:"max=16"`
	Settings    *entity.ProjectSettings `json:"settings"`
}

// UpdateProjectRequest 更新项目请求，nil 字段表示不修改
type UpdateProjectRequest struct {
	Title       *string                 `json:"title" binding:"omitempty,max=255"`
	Description *string                 `json:"description" binding:"omitempty,max=4000"`
	Tags        *[]string               `json:"tags"`
	Settings    *entity.ProjectSettings `json:"settings"`
	Outline     *entity.Outline         `json:"outline"`
	Slides      *[]entity.Slide         `json:"slides"`
	Status      *string                 `json:"status" binding:"omitempty,oneof=draft generating ready archived"`
}

// ProjectResponse 项目响应
type ProjectResponse struct {
	ID          string                  `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description,omitempty"`
	Tags        []string                `json:"tags,omitempty"`
	Settings    *entity.ProjectSettings `json:"settings,omitempty"`
	Slides      []entity.Slide          `json:"slides,omitempty"`
	Outline     *entity.Outline         `json:"outline,omitempty"`
	Status      string                  `json:"status"`
	CreatedAt   string                  `json:"created_at"`
	UpdatedAt   string                  `json:"updated_at"`
}

// ProjectSummaryResponse 列表场景下的项目摘要（不含幻灯片正文）
type ProjectSummaryResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Status      string   `json:"status"`
	SlideCount  int      `json:"slide_count"`
	UpdatedAt   string   `json:"updated_at"`
}

// ToProjectResponse 实体转项目响应
func ToProjectResponse(p *entity.Project) *ProjectResponse {
	if p == nil {
		return nil
	}
	return &ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Tags:        p.Tags,
		Settings:    p.Settings,
		Slides:      p.Slides,
		Outline:     p.Outline,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ToProjectSummaryResponse 实体转项目摘要
func ToProjectSummaryResponse(p *entity.Project) *ProjectSummaryResponse {
	if p == nil {
		return nil
	}
	return &ProjectSummaryResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Tags:        p.Tags,
		Status:      string(p.Status),
		SlideCount:  len(p.Slides),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
