package dto

import (
	"storyboard-ai-api/internal/domain/entity"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"max=100"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthUserDTO 认证响应中的用户信息
type AuthUserDTO struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Plan    string `json:"plan"`
	Credits int64  `json:"credits"`
}

// AuthResponse 认证响应（注册/登录）
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"`
	User        *AuthUserDTO `json:"user,omitempty"`
}

// ToAuthUserDTO 实体转认证用户 DTO
func ToAuthUserDTO(user *entity.User) *AuthUserDTO {
	if user == nil {
		return nil
	}
	return &AuthUserDTO{
		ID:      user.ID,
		Email:   user.Email,
		Name:    user.Name,
		Plan:    string(user.Plan),
		Credits: user.Credits,
	}
}
