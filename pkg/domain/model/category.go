/*
 * @Description: 文章分类领域模型
 * @Author: 安知鱼
 * @Date: 2025-06-19 10:25:31
 * @LastEditTime: 2025-08-11 15:10:44
 * @LastEditors: 安知鱼
 */
package model

import "time"

// Category 是文章分类的核心领域模型
type Category struct {
	ID          uint
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string
	Slug        string
	Description string
	Color       string
	Icon        string
	IsActive    bool
	SortOrder   int
	PostCount   int // 非持久化字段，列表查询时按需填充
}

// CreateCategoryRequest 定义了创建分类的请求体
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=50"`
	Slug        string `json:"slug"`
	Description string `json:"description" binding:"max=200"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	IsActive    *bool  `json:"isActive"`
	SortOrder   int    `json:"sortOrder"`
}

// UpdateCategoryRequest 定义了更新分类的请求体
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=50"`
	Slug        *string `json:"slug"`
	Description *string `json:"description" binding:"omitempty,max=200"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
	IsActive    *bool   `json:"isActive"`
	SortOrder   *int    `json:"sortOrder"`
}

// CategoryResponse 定义了分类信息的标准 API 响应结构
type CategoryResponse struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	PostCount   int       `json:"post_count"`
}

// ReorderCategoriesRequest 定义了批量调整分类排序的请求体。
// Orders 的每一项把一个分类的公共 ID 映射到新的排序值。
type ReorderCategoriesRequest struct {
	Orders []CategoryOrderItem `json:"orders" binding:"required,min=1,dive"`
}

// CategoryOrderItem 单个分类的排序项
type CategoryOrderItem struct {
	ID        string `json:"id" binding:"required"`
	SortOrder int    `json:"sortOrder"`
}

// CategoryStats 分类统计数据（管理后台仪表盘）
type CategoryStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

// CategoryListResponse 定义了分类列表的 API 响应结构
type CategoryListResponse struct {
	Success    bool               `json:"success"`
	Count      int                `json:"count"`
	Total      int64              `json:"total"`
	Pagination Pagination         `json:"pagination"`
	Data       []CategoryResponse `json:"data"`
}
