// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, h Handlers) {
	// 认证管理
	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.POST("/logout", h.Auth.Logout)
	}

	// 项目管理
	projects := v1.Group("/projects")
	{
		projects.GET("", h.Project.ListProjects)
		projects.POST("", h.Project.CreateProject)
		projects.GET("/:pid", h.Project.GetProject)
		projects.PUT("/:pid", h.Project.UpdateProject)
		projects.DELETE("/:pid", h.Project.DeleteProject)

		// 故事板生成
		projects.POST("/:pid/storyboard", h.Generation.GenerateStoryboard)
		projects.POST("/:pid/storyboard/stream", h.Generation.StreamStoryboard) // SSE
		projects.GET("/:pid/storyboard/stream", h.Generation.StreamStoryboard)  // SSE (EventSource)

		// 大纲生成
		projects.POST("/:pid/outline/stream", h.Generation.StreamOutline) // SSE
		projects.GET("/:pid/outline/stream", h.Generation.StreamOutline)  // SSE (EventSource)

		// 幻灯片配图
		projects.POST("/:pid/slides/:sid/image", h.Generation.GenerateSlideImage)
	}

	// 积分与用量
	credits := v1.Group("/credits")
	{
		credits.GET("", h.Credit.GetBalance)
		credits.GET("/usage", h.Credit.ListUsage)
	}
}
