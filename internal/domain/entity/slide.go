// Package entity 定义领域实体
package entity

// SlideKind 幻灯片呈现面类型
type SlideKind string

const (
	SlideKindWeb SlideKind = "web"
	SlideKindApp SlideKind = "app"
)

// Slide 由模型输出提取出的单张幻灯片/屏幕
//
// Complete 表示提取当时在全文中找到了对应的闭合标签；
// 同一条流随着内容增长，Complete 一旦为 true 不会回退。
type Slide struct {
	Title    string    `json:"title"`
	Kind     SlideKind `json:"kind"`
	Body     string    `json:"body"`
	Complete bool      `json:"complete"`

	// 位置与尺寸由前端编辑器维护，后端仅透传
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`

	ImageURL string `json:"image_url,omitempty"`
}
