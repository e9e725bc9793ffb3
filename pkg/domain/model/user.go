/*
 * @Description: 管理员用户领域模型
 * @Author: 安知鱼
 * @Date: 2025-06-19 10:36:52
 * @LastEditTime: 2025-08-11 15:18:09
 * @LastEditors: 安知鱼
 */
package model

import "time"

// User 是后台用户的核心领域模型
type User struct {
	ID           uint
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Username     string
	Nickname     string
	Email        string
	PasswordHash string
	Role         string
	LastLoginAt  *time.Time
	IsActive     bool
}

// IsAdmin 当前用户是否具备管理员权限
func (u *User) IsAdmin() bool {
	return u.Role == "admin" || u.Role == "editor"
}

// LoginRequest 登录请求体
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	Expires      int64        `json:"expires"`
	User         UserResponse `json:"user"`
}

// UserResponse 用户信息的标准 API 响应结构
type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Nickname    string     `json:"nickname"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}
