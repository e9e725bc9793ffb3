/*
 * @Description: 列表查询规格模型
 * @Author: 安知鱼
 * @Date: 2025-07-02 09:41:23
 * @LastEditTime: 2025-09-12 10:18:36
 * @LastEditors: 安知鱼
 */
package model

import "time"

// SortDirection 排序方向
type SortDirection int

const (
	SortAsc  SortDirection = 1
	SortDesc SortDirection = -1
)

// SortField 一个排序条件
type SortField struct {
	Field     string
	Direction SortDirection
}

// Predicate 是由查询编排器组合出的过滤谓词，所有出现的条件取 AND。
// 指针/切片字段为零值时表示该条件未启用。
type Predicate struct {
	Status      string
	CategoryIDs []uint
	Tags        []string
	DateField   string
	StartDate   *time.Time
	EndDate     *time.Time
	Search      string
	SearchIDs   []uint // 文本检索命中的主键集合（由检索器预先求出）
	AuthorID    *uint
	IsFeatured  *bool
	IsActive    *bool
	IsRead      *bool
	AssignedTo  *uint
	Priority    string
	// ProductQuestion 留言咨询类别的精确匹配（闭合枚举）
	ProductQuestion string
	// WithCounts 分类列表是否附带文章数（统计有额外查询开销，按需开启）
	WithCounts bool
}

// HasSearch 是否启用了全文检索条件
func (p *Predicate) HasSearch() bool {
	return p.Search != ""
}

// QuerySpec 是查询编排器的输出：过滤谓词、排序序列和分页参数。
// 不变式：Skip = (Page-1) * Limit，Limit 始终被钳制在 [1, maxLimit] 内。
type QuerySpec struct {
	Filter Predicate
	Sort   []SortField
	Page   int
	Limit  int
	Skip   int
}
