/*
 * @Description: 文章接口
 * @Author: 安知鱼
 * @Date: 2025-06-30 10:22:41
 * @LastEditTime: 2025-09-21 14:26:09
 * @LastEditors: 安知鱼
 */
package post

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-cms/internal/app/middleware"
	"github.com/anzhiyu-c/anheyu-cms/internal/infra/storage"
	internal_auth "github.com/anzhiyu-c/anheyu-cms/internal/pkg/auth"
	"github.com/anzhiyu-c/anheyu-cms/internal/pkg/formdecode"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-cms/pkg/idgen"
	"github.com/anzhiyu-c/anheyu-cms/pkg/response"
	postSvc "github.com/anzhiyu-c/anheyu-cms/pkg/service/post"
	"github.com/anzhiyu-c/anheyu-cms/pkg/service/query"
)

// Handler 封装了所有与文章相关的 HTTP 处理器。
type Handler struct {
	svc   postSvc.Service
	store storage.Provider
}

// NewHandler 是 Handler 的构造函数。
func NewHandler(svc postSvc.Service, store storage.Provider) *Handler {
	return &Handler{svc: svc, store: store}
}

// Create
// @Summary      创建文章
// @Description  以 multipart 表单提交文章，正文块使用 blocks[i][field] 括号记法
// @Tags         文章管理
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Success      201 {object} response.Response{data=model.PostResponse} "创建成功"
// @Failure      400 {object} response.Response "参数或内容块无效"
// @Router       /posts [post]
func (h *Handler) Create(c *gin.Context) {
	var req model.CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}
	req.Document = middleware.DocumentFromContext(c)

	cover, err := h.saveCover(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "封面上传失败: "+err.Error())
		return
	}
	req.Cover = cover

	authorID, err := currentUserID(c)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), &req, authorID)
	if err != nil {
		h.failWrite(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, result, "文章创建成功")
}

// Update
// @Summary      更新文章
// @Tags         文章管理
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "文章公共ID"
// @Success      200 {object} response.Response{data=model.PostResponse} "更新成功"
// @Router       /posts/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	var req model.UpdatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}
	req.Document = middleware.DocumentFromContext(c)

	cover, err := h.saveCover(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "封面上传失败: "+err.Error())
		return
	}
	req.Cover = cover

	result, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.failWrite(c, err)
		return
	}
	response.Success(c, result, "文章更新成功")
}

// Delete
// @Summary      删除文章
// @Tags         文章管理
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "文章公共ID"
// @Success      200 {object} response.Response "删除成功"
// @Router       /posts/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, nil, "文章删除成功")
}

// Get
// @Summary      后台获取单篇文章
// @Description  按公共 ID 获取文章，不过滤状态，不累计浏览量
// @Tags         文章管理
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "文章公共ID"
// @Success      200 {object} response.Response{data=model.PostResponse} "成功响应"
// @Router       /posts/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	result, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "获取文章成功")
}

// GetPublic
// @Summary      前台获取单篇文章
// @Description  按别名或公共 ID 获取已发布文章，并累计浏览量
// @Tags         公开文章
// @Produce      json
// @Param        slugOrId path string true "别名或公共ID"
// @Success      200 {object} response.Response{data=model.PostResponse} "成功响应"
// @Failure      404 {object} response.Response "文章不存在"
// @Router       /public/posts/{slugOrId} [get]
func (h *Handler) GetPublic(c *gin.Context) {
	result, err := h.svc.GetPublicBySlugOrID(c.Request.Context(), c.Param("slugOrId"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "获取文章成功")
}

// List
// @Summary      文章列表
// @Description  分页获取文章列表。未认证的调用方只能看到已发布文章。
// @Tags         公开文章
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        limit query int false "每页数量" default(10)
// @Param        category query string false "分类（公共ID、别名或名称，多个逗号分隔）"
// @Param        tags query string false "标签（多个逗号分隔，任一匹配）"
// @Param        search query string false "检索关键字"
// @Param        sortBy query string false "排序，形如 field:desc"
// @Success      200 {object} model.PostListResponse "成功响应"
// @Router       /public/posts [get]
func (h *Handler) List(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context(), query.ResourcePosts, c.Request.URL.Query(), middleware.IsPrivileged(c))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "获取文章列表失败")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListFeatured
// @Summary      精选文章列表
// @Description  获取被标记为精选的已发布文章，其余参数与文章列表一致
// @Tags         公开文章
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        limit query int false "每页数量" default(10)
// @Success      200 {object} model.PostListResponse "成功响应"
// @Router       /public/posts/featured [get]
func (h *Handler) ListFeatured(c *gin.Context) {
	params := c.Request.URL.Query()
	params.Set("featured", "true")
	result, err := h.svc.List(c.Request.Context(), query.ResourcePosts, params, middleware.IsPrivileged(c))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "获取精选文章失败")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Search
// @Summary      全文检索
// @Description  按相关度检索已发布文章，q 为检索关键字
// @Tags         公开文章
// @Produce      json
// @Param        q query string true "检索关键字"
// @Success      200 {object} model.PostListResponse "成功响应"
// @Router       /public/search [get]
func (h *Handler) Search(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context(), query.ResourceSearch, c.Request.URL.Query(), middleware.IsPrivileged(c))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "检索失败")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListTags
// @Summary      标签聚合
// @Description  获取所有已发布文章的标签及数量
// @Tags         公开文章
// @Produce      json
// @Success      200 {object} response.Response{data=[]model.TagCount} "成功响应"
// @Router       /public/tags [get]
func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.svc.ListTags(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "获取标签列表失败")
		return
	}
	response.Success(c, tags, "获取标签列表成功")
}

// CheckSlug
// @Summary      检查别名可用性
// @Description  检查别名是否可用，exclude 传被编辑文章的公共ID以排除自身
// @Tags         文章管理
// @Security     BearerAuth
// @Produce      json
// @Param        slug query string true "待检查的别名"
// @Param        exclude query string false "排除的文章公共ID"
// @Success      200 {object} response.Response{data=model.SlugCheckResponse} "检查结果"
// @Router       /posts/check-slug [get]
func (h *Handler) CheckSlug(c *gin.Context) {
	slug := c.Query("slug")
	if slug == "" {
		response.Fail(c, http.StatusBadRequest, "缺少 slug 参数")
		return
	}
	result, err := h.svc.CheckSlug(c.Request.Context(), slug, c.Query("exclude"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, result, "检查完成")
}

// Stats
// @Summary      文章统计
// @Description  获取文章的状态分布与浏览总量
// @Tags         文章管理
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} response.Response{data=model.PostStats} "统计数据"
// @Router       /posts/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "获取文章统计失败")
		return
	}
	response.Success(c, stats, "获取文章统计成功")
}

// RebuildIndex
// @Summary      重建搜索索引
// @Tags         文章管理
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} response.Response "重建完成"
// @Router       /posts/reindex [post]
func (h *Handler) RebuildIndex(c *gin.Context) {
	count, err := h.svc.RebuildSearchIndex(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "重建搜索索引失败")
		return
	}
	response.Success(c, gin.H{"indexed": count}, "搜索索引重建完成")
}

// saveCover 从表单中取出 coverImage 文件并写入存储，没有上传时返回 nil。
func (h *Handler) saveCover(c *gin.Context) (*model.ImageRef, error) {
	fileHeader, err := c.FormFile("coverImage")
	if err != nil {
		return nil, nil // 未携带封面
	}

	fileReader, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("无法读取上传的文件")
	}
	defer fileReader.Close()

	result, err := h.store.Upload(c.Request.Context(), fileReader, fileHeader.Filename)
	if err != nil {
		return nil, err
	}
	log.Printf("[PostHandler.saveCover] 封面上传成功: %s (%d bytes)", result.URL, result.Size)

	return &model.ImageRef{
		URL:      result.URL,
		PublicID: result.PublicID,
		Alt:      c.PostForm("coverAlt"),
	}, nil
}

// failWrite 翻译写路径上的错误，内容块校验失败带上块位置和规则。
func (h *Handler) failWrite(c *gin.Context, err error) {
	var ve *formdecode.BlockValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": ve.Error(),
			"data":    gin.H{"index": ve.Index, "rule": ve.Rule},
		})
		return
	}
	response.FailWithError(c, err)
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
