/*
 * @Description: 文章领域模型
 * @Author: 安知鱼
 * @Date: 2025-06-19 10:18:02
 * @LastEditTime: 2025-09-12 11:40:58
 * @LastEditors: 安知鱼
 */
package model

import "time"

// --- 核心领域对象 (Domain Object) ---

// ContentBlock 是文章正文的最小编排单元。
// Type 为开放枚举（paragraph/heading/image/list/quote/code/video/gallery/...），
// Data 的必填键由 Type 决定；Order 决定渲染顺序，相同 Order 按原始数组位置排列。
type ContentBlock struct {
	Type     string         `json:"type"`
	Data     map[string]any `json:"data"`
	Order    int            `json:"order"`
	Settings map[string]any `json:"settings,omitempty"`
}

// FaqEntry 文章附带的常见问题条目
type FaqEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Order    int    `json:"order"`
	IsActive bool   `json:"isActive"`
}

// PostSEO 文章的 SEO 扩展信息
type PostSEO struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Post 是文章的核心领域模型，业务逻辑（Service层）围绕它进行。
type Post struct {
	ID          uint
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Title       string
	Slug        string
	Excerpt     string
	Blocks      []ContentBlock
	Faqs        []FaqEntry
	Tags        []string
	SEO         *PostSEO
	CategoryID  *uint
	Category    *Category
	AuthorID    uint
	Author      *User
	Status      string
	IsFeatured  bool
	CoverImage  *ImageRef
	ViewCount   int
	WordCount   int
	ReadTime    int
	PublishedAt *time.Time
	ScheduledAt *time.Time
}

// DecodedDocument 是表单解码器的输出：
// 由一次写请求的扁平字段还原出的标签集合、有序内容块、FAQ 列表和 SEO 记录。
// 它是请求级的临时值对象，合并进写入载荷后即被丢弃。
type DecodedDocument struct {
	Tags   []string
	Blocks []ContentBlock
	Faqs   []FaqEntry
	SEO    *PostSEO
}

// --- API 数据传输对象 (Data Transfer Objects) ---

// CreatePostRequest 定义了创建文章的请求体。
// Blocks/Faqs/Tags/SEO 来自表单解码器，不直接绑定。
type CreatePostRequest struct {
	Title       string `form:"title" binding:"required"`
	Slug        string `form:"slug"`
	Excerpt     string `form:"excerpt"`
	CategoryID  string `form:"category"`
	Status      string `form:"status" binding:"omitempty,oneof=draft published archived"`
	IsFeatured  *bool  `form:"isFeatured"`
	PublishedAt string `form:"publishedAt"`
	ScheduledAt string `form:"scheduledAt"`

	Document *DecodedDocument `form:"-"`
	Cover    *ImageRef        `form:"-"`
}

// UpdatePostRequest 定义了更新文章的请求体
type UpdatePostRequest struct {
	Title       *string `form:"title"`
	Slug        *string `form:"slug"`
	Excerpt     *string `form:"excerpt"`
	CategoryID  *string `form:"category"`
	Status      *string `form:"status" binding:"omitempty,oneof=draft published archived"`
	IsFeatured  *bool   `form:"isFeatured"`
	PublishedAt *string `form:"publishedAt"`
	ScheduledAt *string `form:"scheduledAt"`

	Document *DecodedDocument `form:"-"`
	Cover    *ImageRef        `form:"-"`
}

// PostResponse 定义了文章信息的标准 API 响应结构
type PostResponse struct {
	ID          string            `json:"id"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Excerpt     string            `json:"excerpt,omitempty"`
	Blocks      []ContentBlock    `json:"blocks,omitempty"`
	Faqs        []FaqEntry        `json:"faqs,omitempty"`
	Tags        []string          `json:"tags"`
	SEO         *PostSEO          `json:"seo,omitempty"`
	Category    *CategoryResponse `json:"category,omitempty"`
	AuthorName  string            `json:"author_name,omitempty"`
	Status      string            `json:"status"`
	IsFeatured  bool              `json:"is_featured"`
	CoverImage  *ImageRef         `json:"cover_image,omitempty"`
	ViewCount   int               `json:"view_count"`
	WordCount   int               `json:"word_count"`
	ReadTime    int               `json:"read_time"`
	PublishedAt *time.Time        `json:"published_at,omitempty"`
	ScheduledAt *time.Time        `json:"scheduled_at,omitempty"`
}

// PostListResponse 定义了文章列表的 API 响应结构
type PostListResponse struct {
	Success    bool           `json:"success"`
	Count      int            `json:"count"`
	Total      int64          `json:"total"`
	Pagination Pagination     `json:"pagination"`
	Data       []PostResponse `json:"data"`
}

// CreatePostParams 封装了创建文章时需要持久化的所有数据
type CreatePostParams struct {
	Title       string
	Slug        string
	Excerpt     string
	Blocks      []ContentBlock
	Faqs        []FaqEntry
	Tags        []string
	SEO         *PostSEO
	CategoryID  *uint
	AuthorID    uint
	Status      string
	IsFeatured  bool
	CoverImage  *ImageRef
	WordCount   int
	ReadTime    int
	PublishedAt *time.Time
	ScheduledAt *time.Time
}

// UpdatePostParams 封装了更新文章时需要持久化的数据。
// 指针字段用于区分 "未更新" 和 "更新为空"。
type UpdatePostParams struct {
	Title       *string
	Slug        *string
	Excerpt     *string
	Blocks      []ContentBlock
	Faqs        []FaqEntry
	Tags        []string
	SEO         *PostSEO
	CategoryID  *uint
	ClearCat    bool
	Status      *string
	IsFeatured  *bool
	CoverImage  *ImageRef
	WordCount   *int
	ReadTime    *int
	PublishedAt *time.Time
	ScheduledAt *time.Time
	ClearSched  bool
}

// TagCount 标签及其文章数量
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PostStats 文章统计数据（管理后台仪表盘）
type PostStats struct {
	Total      int64 `json:"total"`
	Published  int64 `json:"published"`
	Draft      int64 `json:"draft"`
	Archived   int64 `json:"archived"`
	Featured   int64 `json:"featured"`
	TotalViews int64 `json:"total_views"`
}

// SlugCheckResponse 别名可用性检查结果。
// 别名被占用时 Suggestion 给出一个可用的替代。
type SlugCheckResponse struct {
	Slug       string `json:"slug"`
	Available  bool   `json:"available"`
	Suggestion string `json:"suggestion,omitempty"`
}
