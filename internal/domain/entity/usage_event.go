// Package entity 定义领域实体
package entity

import "time"

// UsageKind 计费来源类型
type UsageKind string

const (
	UsageKindStoryboard UsageKind = "storyboard"
	UsageKindOutline    UsageKind = "outline"
	UsageKindImage      UsageKind = "image"
)

// UsageEvent 单次生成的用量与扣费记录
type UsageEvent struct {
	ID         string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID     string    `json:"user_id" gorm:"type:uuid;index;not null"`
	ProjectID  string    `json:"project_id,omitempty" gorm:"type:uuid;index"`
	Kind       UsageKind `json:"kind" gorm:"type:varchar(32);not null"`
	Provider   string    `json:"provider,omitempty" gorm:"type:varchar(32)"`
	Model      string    `json:"model,omitempty" gorm:"type:varchar(64)"`
	Chars      int       `json:"chars" gorm:"not null;default:0"`
	Credits    int64     `json:"credits" gorm:"not null;default:0"`
	DurationMs int       `json:"duration_ms" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (UsageEvent) TableName() string {
	return "usage_events"
}
