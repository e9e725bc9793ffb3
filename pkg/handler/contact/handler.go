/*
 * @Description: 留言线索接口
 * @Author: 安知鱼
 * @Date: 2025-07-02 15:26:48
 * @LastEditTime: 2025-09-21 15:02:33
 * @LastEditors: 安知鱼
 */
package contact

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	internal_auth "github.com/anzhiyu-c/anheyu-cms/internal/pkg/auth"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-cms/pkg/idgen"
	"github.com/anzhiyu-c/anheyu-cms/pkg/response"
	contactSvc "github.com/anzhiyu-c/anheyu-cms/pkg/service/contact"
)

// Handler 封装了所有与留言相关的 HTTP 处理器。
type Handler struct {
	svc contactSvc.Service
}

// NewHandler 是 Handler 的构造函数。
func NewHandler(svc contactSvc.Service) *Handler {
	return &Handler{svc: svc}
}

// Submit
// @Summary      提交留言（公开端点）
// @Description  访客提交留言，IP 与 User-Agent 由服务端记录
// @Tags         留言
// @Accept       json
// @Produce      json
// @Param        body body model.CreateContactRequest true "留言内容"
// @Success      201 {object} response.Response{data=model.ContactResponse} "提交成功"
// @Failure      429 {object} response.Response "提交过于频繁"
// @Router       /public/contact [post]
func (h *Handler) Submit(c *gin.Context) {
	var req model.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	result, err := h.svc.Submit(c.Request.Context(), &req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, result, "留言提交成功，我们会尽快回复")
}

// List
// @Summary      留言列表
// @Tags         留言管理
// @Security     BearerAuth
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        limit query int false "每页数量" default(10)
// @Param        status query string false "状态过滤" Enums(pending, in-progress, resolved, closed)
// @Param        priority query string false "优先级过滤" Enums(low, medium, high, urgent)
// @Param        productQuestion query string false "咨询类别过滤（闭合枚举）"
// @Success      200 {object} model.ContactListResponse "成功响应"
// @Router       /contacts [get]
func (h *Handler) List(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "获取留言列表失败")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get
// @Summary      获取单条留言
// @Tags         留言管理
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "留言公共ID"
// @Success      200 {object} response.Response{data=model.ContactResponse} "成功响应"
// @Router       /contacts/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	result, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "获取留言成功")
}

// Update
// @Summary      更新留言
// @Description  更新状态、优先级或指派人，note 非空时追加一条跟进备注
// @Tags         留言管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path string true "留言公共ID"
// @Success      200 {object} response.Response{data=model.ContactResponse} "更新成功"
// @Router       /contacts/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	var req model.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	operatorID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, err.Error())
		return
	}

	result, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req, operatorID)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "留言更新成功")
}

// MarkRead
// @Summary      标记留言为已读
// @Tags         留言管理
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "留言公共ID"
// @Success      200 {object} response.Response "标记成功"
// @Router       /contacts/{id}/read [put]
func (h *Handler) MarkRead(c *gin.Context) {
	if err := h.svc.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "已标记为已读")
}

// Delete
// @Summary      删除留言
// @Tags         留言管理
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "留言公共ID"
// @Success      200 {object} response.Response "删除成功"
// @Router       /contacts/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "留言删除成功")
}

// Stats
// @Summary      留言统计
// @Description  管理后台仪表盘用的状态/优先级/未读统计
// @Tags         留言管理
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} response.Response{data=model.ContactStats} "成功响应"
// @Router       /contacts/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "获取留言统计失败")
		return
	}
	response.Success(c, stats, "获取留言统计成功")
}

// Export
// @Summary      导出留言
// @Description  按当前过滤条件把留言导出为 CSV 文件
// @Tags         留言管理
// @Security     BearerAuth
// @Produce      text/csv
// @Success      200 {string} string "CSV 内容"
// @Router       /contacts/export [get]
func (h *Handler) Export(c *gin.Context) {
	data, err := h.svc.ExportCSV(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "导出留言失败")
		return
	}

	filename := "contacts-" + time.Now().Format("20060102-150405") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

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
