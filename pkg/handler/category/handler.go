/*
 * @Description: 文章分类接口
 * @Author: 安知鱼
 * @Date: 2025-07-01 09:12:30
 * @LastEditTime: 2025-09-21 14:40:55
 * @LastEditors: 安知鱼
 */
package category

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-cms/internal/app/middleware"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-cms/pkg/response"
	categorySvc "github.com/anzhiyu-c/anheyu-cms/pkg/service/category"
)

// Handler 封装了所有与分类相关的 HTTP 处理器。
type Handler struct {
	svc categorySvc.Service
}

// NewHandler 是 Handler 的构造函数。
func NewHandler(svc categorySvc.Service) *Handler {
	return &Handler{svc: svc}
}

// Create
// @Summary      创建分类
// @Tags         分类管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body model.CreateCategoryRequest true "分类信息"
// @Success      201 {object} response.Response{data=model.CategoryResponse} "创建成功"
// @Router       /categories [post]
func (h *Handler) Create(c *gin.Context) {
	var req model.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, result, "分类创建成功")
}

// Get
// @Summary      获取单个分类
// @Tags         分类管理
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "分类公共ID"
// @Success      200 {object} response.Response{data=model.CategoryResponse} "成功响应"
// @Router       /categories/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	result, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "获取分类成功")
}

// Update
// @Summary      更新分类
// @Tags         分类管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path string true "分类公共ID"
// @Success      200 {object} response.Response{data=model.CategoryResponse} "更新成功"
// @Router       /categories/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	var req model.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	result, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "分类更新成功")
}

// Delete
// @Summary      删除分类
// @Description  分类下仍有文章时拒绝删除
// @Tags         分类管理
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "分类公共ID"
// @Success      200 {object} response.Response "删除成功"
// @Failure      400 {object} response.Response "分类下仍有关联文章"
// @Router       /categories/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "分类删除成功")
}

// Reorder
// @Summary      批量调整分类排序
// @Tags         分类管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body model.ReorderCategoriesRequest true "排序项列表"
// @Success      200 {object} response.Response "调整成功"
// @Router       /categories/reorder [put]
func (h *Handler) Reorder(c *gin.Context) {
	var req model.ReorderCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}
	if err := h.svc.Reorder(c.Request.Context(), &req); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "分类排序已更新")
}

// Stats
// @Summary      分类统计
// @Description  获取分类的启用/停用分布
// @Tags         分类管理
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} response.Response{data=model.CategoryStats} "统计数据"
// @Router       /categories/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "获取分类统计失败")
		return
	}
	response.Success(c, stats, "获取分类统计成功")
}

// List
// @Summary      分类列表
// @Description  分页获取分类。未认证的调用方只能看到启用的分类。
// @Tags         公开分类
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        limit query int false "每页数量" default(20)
// @Success      200 {object} model.CategoryListResponse "成功响应"
// @Router       /public/categories [get]
func (h *Handler) List(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context(), c.Request.URL.Query(), middleware.IsPrivileged(c))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "获取分类列表失败")
		return
	}
	c.JSON(http.StatusOK, result)
}
