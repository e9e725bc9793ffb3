/*
 * @Description: 通用领域模型
 * @Author: 安知鱼
 * @Date: 2025-06-19 10:12:44
 * @LastEditTime: 2025-08-11 15:03:27
 * @LastEditors: 安知鱼
 */
package model

// PageRef 指向分页结果中的某一页
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination 描述列表结果的上一页/下一页信息。
// next 仅当 skip+limit < total 时出现；prev 仅当 skip > 0 时出现。
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// BuildPagination 根据偏移量、每页数量和总数计算分页引用
func BuildPagination(skip, limit int, total int64) Pagination {
	var p Pagination
	page := skip/limit + 1
	if int64(skip+limit) < total {
		p.Next = &PageRef{Page: page + 1, Limit: limit}
	}
	if skip > 0 {
		p.Prev = &PageRef{Page: page - 1, Limit: limit}
	}
	return p
}

// ImageRef 表示一个已上传的图片资源
type ImageRef struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id,omitempty"`
	Alt      string `json:"alt,omitempty"`
}
