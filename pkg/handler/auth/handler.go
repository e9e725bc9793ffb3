/*
 * @Description: 后台认证接口
 * @Author: 安知鱼
 * @Date: 2025-06-29 09:50:24
 * @LastEditTime: 2025-09-21 11:40:18
 * @LastEditors: 安知鱼
 */
package auth

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	internal_auth "github.com/anzhiyu-c/anheyu-cms/internal/pkg/auth"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-cms/pkg/idgen"
	"github.com/anzhiyu-c/anheyu-cms/pkg/response"
	authSvc "github.com/anzhiyu-c/anheyu-cms/pkg/service/auth"
)

// Handler 封装了所有与认证相关的 HTTP 处理器。
type Handler struct {
	svc authSvc.AuthService
}

// NewHandler 是 Handler 的构造函数。
func NewHandler(svc authSvc.AuthService) *Handler {
	return &Handler{svc: svc}
}

// Login
// @Summary      后台登录
// @Description  校验账号密码，签发访问令牌和刷新令牌
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        body body model.LoginRequest true "登录凭证"
// @Success      200 {object} response.Response{data=model.LoginResponse} "登录成功"
// @Failure      401 {object} response.Response "账号或密码错误"
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	result, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "登录成功")
}

// Refresh
// @Summary      刷新访问令牌
// @Description  使用刷新令牌换取新的访问令牌
// @Tags         认证
// @Accept       json
// @Produce      json
// @Success      200 {object} response.Response "刷新成功"
// @Failure      401 {object} response.Response "刷新令牌无效或已过期"
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	accessToken, expiresAt, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, "刷新令牌无效或已过期")
		return
	}
	response.Success(c, gin.H{
		"access_token": accessToken,
		"expires":      expiresAt,
	}, "刷新成功")
}

// GetProfile
// @Summary      获取当前登录用户信息
// @Tags         认证
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} response.Response{data=model.UserResponse} "成功响应"
// @Router       /auth/profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, err.Error())
		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, user, "获取用户信息成功")
}

// ChangePassword
// @Summary      修改当前用户密码
// @Tags         认证
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Success      200 {object} response.Response "修改成功"
// @Router       /auth/password [put]
func (h *Handler) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	userID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, err.Error())
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "密码修改成功，请重新登录")
}

// currentUserID 从上下文取出认证信息并解码为数据库用户 ID。
func currentUserID(c *gin.Context) (uint, error) {
	claimsValue, exists := c.Get(internal_auth.ClaimsKey)
	if !exists {
		return 0, fmt.Errorf("无法获取用户认证信息")
	}
	claims, ok := claimsValue.(*internal_auth.CustomClaims)
	if !ok {
		return 0, fmt.Errorf("用户认证信息格式无效")
	}
	userID, entityType, err := idgen.DecodePublicID(claims.UserID)
	if err != nil || entityType != idgen.EntityTypeUser {
		return 0, fmt.Errorf("无效的用户凭证")
	}
	return userID, nil
}
