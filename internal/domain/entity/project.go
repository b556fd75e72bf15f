// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/lib/pq"
)

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectStatusDraft      ProjectStatus = "draft"
	ProjectStatusGenerating ProjectStatus = "generating"
	ProjectStatusReady      ProjectStatus = "ready"
	ProjectStatusArchived   ProjectStatus = "archived"
)

// ProjectSettings 项目级生成设置
type ProjectSettings struct {
	Style       string  `json:"style,omitempty"`
	Language    string  `json:"language,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// Project 故事板项目实体
type Project struct {
	ID          string           `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerID     string           `json:"owner_id" gorm:"type:uuid;index;not null"`
	Title       string           `json:"title" gorm:"type:varchar(255);not null"`
	Description string           `json:"description,omitempty" gorm:"type:text"`
	Tags        pq.StringArray   `json:"tags,omitempty" gorm:"type:text[]"`
	Settings    *ProjectSettings `json:"settings,omitempty" gorm:"type:jsonb;serializer:json"`
	Slides      []Slide          `json:"slides,omitempty" gorm:"type:jsonb;serializer:json"`
	Outline     *Outline         `json:"outline,omitempty" gorm:"type:jsonb;serializer:json"`
	Status      ProjectStatus    `json:"status" gorm:"type:varchar(32);default:'draft'"`
	CreatedAt   time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Project) TableName() string {
	return "projects"
}

// NewProject 创建新项目
func NewProject(ownerID, title string) *Project {
	now := time.Now()
	return &Project{
		OwnerID:   ownerID,
		Title:     title,
		Status:    ProjectStatusDraft,
		Settings:  &ProjectSettings{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsEditable 检查项目是否可编辑
func (p *Project) IsEditable() bool {
	return p.Status != ProjectStatusArchived
}

// Outline 故事大纲
type Outline struct {
	Premise  string         `json:"premise,omitempty"`
	Scenes   []OutlineScene `json:"scenes,omitempty"`
	Audience string         `json:"audience,omitempty"`
}

// OutlineScene 大纲中的单个场景
type OutlineScene struct {
	Title  string   `json:"title"`
	Goal   string   `json:"goal,omitempty"`
	Points []string `json:"points,omitempty"`
}
