/*
 * @Description: 留言线索领域模型
 * @Author: 安知鱼
 * @Date: 2025-06-19 10:31:05
 * @LastEditTime: 2025-09-02 17:22:19
 * @LastEditors: 安知鱼
 */
package model

import "time"

// ContactNote 管理员跟进备注
type ContactNote struct {
	Content   string    `json:"content"`
	AuthorID  uint      `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Contact 是留言线索的核心领域模型。
// ProductQuestion 是闭合枚举的咨询类别，合法值见 constant 包。
type Contact struct {
	ID              uint
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Name            string
	Email           string
	Phone           string
	ProductQuestion string
	Message         string
	Status          string
	Priority        string
	IsRead          bool
	AssignedTo      *uint
	Assignee        *User
	Notes           []ContactNote
	RepliedAt       *time.Time
	IPAddress       string
	UserAgent       string
}

// CreateContactRequest 定义了提交留言的请求体（公开端点）。
// productQuestion 的枚举值含空格，无法用 oneof 标签表达，由服务层校验。
type CreateContactRequest struct {
	Name            string `json:"name" binding:"required,max=100"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone" binding:"max=30"`
	ProductQuestion string `json:"productQuestion" binding:"required,max=50"`
	Message         string `json:"message" binding:"required,max=5000"`
}

// UpdateContactRequest 定义了管理员更新留言的请求体
type UpdateContactRequest struct {
	Status     *string `json:"status" binding:"omitempty,oneof=pending in-progress resolved closed"`
	Priority   *string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	IsRead     *bool   `json:"isRead"`
	AssignedTo *string `json:"assignedTo"`
	Note       string  `json:"note"`
}

// ContactResponse 定义了留言信息的标准 API 响应结构
type ContactResponse struct {
	ID              string        `json:"id"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone,omitempty"`
	ProductQuestion string        `json:"productQuestion"`
	Message         string        `json:"message"`
	Status          string        `json:"status"`
	Priority        string        `json:"priority"`
	IsRead          bool          `json:"is_read"`
	AssigneeName    string        `json:"assignee_name,omitempty"`
	Notes           []ContactNote `json:"notes,omitempty"`
	RepliedAt       *time.Time    `json:"replied_at,omitempty"`
}

// ContactListResponse 定义了留言列表的 API 响应结构
type ContactListResponse struct {
	Success    bool              `json:"success"`
	Count      int               `json:"count"`
	Total      int64             `json:"total"`
	Pagination Pagination        `json:"pagination"`
	Data       []ContactResponse `json:"data"`
}

// ContactStats 留言统计数据（管理后台仪表盘）
type ContactStats struct {
	Total      int64            `json:"total"`
	Unread     int64            `json:"unread"`
	ByStatus   map[string]int64 `json:"by_status"`
	ByPriority map[string]int64 `json:"by_priority"`
}
