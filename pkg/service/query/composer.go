/*
 * @Description: 查询编排器，将列表端点的原始查询参数组合为可执行的查询规格
 * @Author: 安知鱼
 * @Date: 2025-07-10 09:27:41
 * @LastEditTime: 2025-09-14 11:05:23
 * @LastEditors: 安知鱼
 */
package query

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anzhiyu-c/anheyu-cms/pkg/constant"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-cms/pkg/idgen"
)

// 资源种类标识
const (
	ResourcePosts      = "posts"
	ResourceCategories = "categories"
	ResourceContacts   = "contacts"
	ResourceSearch     = "search"
)

// ResourceRule 定义单个资源列表的查询约束
type ResourceRule struct {
	DefaultLimit int
	MaxLimit     int
	DateField    string
	DefaultSort  []model.SortField
}

// DefaultRules 返回各资源的默认查询约束。
// 作为显式配置传入编排器，便于测试按需调整上限。
func DefaultRules() map[string]ResourceRule {
	return map[string]ResourceRule{
		ResourcePosts: {
			DefaultLimit: 10,
			MaxLimit:     50,
			DateField:    "published_at",
			DefaultSort:  []model.SortField{{Field: "published_at", Direction: model.SortDesc}},
		},
		ResourceCategories: {
			DefaultLimit: 20,
			MaxLimit:     100,
			DateField:    "created_at",
			DefaultSort: []model.SortField{
				{Field: "sort_order", Direction: model.SortAsc},
				{Field: "name", Direction: model.SortAsc},
			},
		},
		ResourceContacts: {
			DefaultLimit: 10,
			MaxLimit:     100,
			DateField:    "created_at",
			DefaultSort:  []model.SortField{{Field: "created_at", Direction: model.SortDesc}},
		},
		ResourceSearch: {
			DefaultLimit: 10,
			MaxLimit:     20,
			DateField:    "published_at",
			DefaultSort:  []model.SortField{{Field: "published_at", Direction: model.SortDesc}},
		},
	}
}

// relevanceSort 是启用全文检索且调用方未显式指定排序时的默认排序：
// 相关度降序，再按发布时间降序。
var relevanceSort = []model.SortField{
	{Field: "score", Direction: model.SortDesc},
	{Field: "published_at", Direction: model.SortDesc},
}

// CategoryResolver 把人类可读的分类标识（公共ID、别名或名称片段）
// 解析为规范的数据库 ID。解析失败返回 false 而非错误。
type CategoryResolver interface {
	Resolve(ctx context.Context, token string) (uint, bool)
}

// Composer 将不可信的查询参数组合为过滤谓词、排序序列和分页参数。
// 除分类解析外没有任何外部调用；畸形输入一律丢弃或钳制，永不报错。
type Composer struct {
	resolver CategoryResolver
	rules    map[string]ResourceRule
}

func NewComposer(resolver CategoryResolver, rules map[string]ResourceRule) *Composer {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Composer{resolver: resolver, rules: rules}
}

// Compose 根据资源种类和原始查询参数产出查询规格。
// privileged 为 false 时强制只返回已发布内容，忽略调用方提供的任何状态过滤。
func (c *Composer) Compose(ctx context.Context, resource string, params url.Values, privileged bool) *model.QuerySpec {
	rule, ok := c.rules[resource]
	if !ok {
		rule = ResourceRule{DefaultLimit: 10, MaxLimit: 50, DateField: "created_at",
			DefaultSort: []model.SortField{{Field: "created_at", Direction: model.SortDesc}}}
	}

	spec := &model.QuerySpec{}
	spec.Filter.DateField = rule.DateField

	c.applyVisibility(&spec.Filter, resource, params, privileged)
	c.applyCategory(ctx, &spec.Filter, params)
	c.applyTags(&spec.Filter, params)
	c.applyDateRange(&spec.Filter, params)
	c.applyScalars(&spec.Filter, params)
	spec.Filter.Search = strings.TrimSpace(params.Get("search"))
	if resource == ResourceSearch {
		spec.Filter.Search = strings.TrimSpace(params.Get("q"))
	}

	spec.Sort = c.composeSort(&spec.Filter, rule, params)
	spec.Page, spec.Limit = composePagination(rule, params)
	spec.Skip = (spec.Page - 1) * spec.Limit
	return spec
}

// applyVisibility 实现可见性覆盖：非特权调用方永远只能看到已发布内容。
func (c *Composer) applyVisibility(filter *model.Predicate, resource string, params url.Values, privileged bool) {
	if resource == ResourceCategories {
		return
	}
	if resource == ResourceContacts {
		if s := params.Get("status"); constant.ValidContactStatus(s) {
			filter.Status = s
		}
		return
	}
	if !privileged {
		filter.Status = constant.PostStatusPublished
		return
	}
	if s := params.Get("status"); constant.ValidPostStatus(s) {
		filter.Status = s
	}
}

// applyCategory 解析逗号分隔的分类标记。无法解析的标记静默丢弃；
// 全部失败时不施加任何分类限制（宽松降级而非空结果）。
func (c *Composer) applyCategory(ctx context.Context, filter *model.Predicate, params url.Values) {
	raw := params.Get("category")
	if raw == "" || c.resolver == nil {
		return
	}
	var ids []uint
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if id, ok := c.resolver.Resolve(ctx, token); ok {
			ids = append(ids, id)
		}
	}
	filter.CategoryIDs = ids
}

func (c *Composer) applyTags(filter *model.Predicate, params url.Values) {
	raw := params.Get("tags")
	if raw == "" {
		return
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			tags = append(tags, t)
		}
	}
	filter.Tags = tags
}

// applyDateRange 解析 startDate/endDate，两端均可单独出现。
// 支持 RFC3339 和 2006-01-02 两种格式，解析失败的一端丢弃。
func (c *Composer) applyDateRange(filter *model.Predicate, params url.Values) {
	if t, ok := parseDate(params.Get("startDate")); ok {
		filter.StartDate = &t
	}
	if t, ok := parseDate(params.Get("endDate")); ok {
		filter.EndDate = &t
	}
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// applyScalars 处理按需出现的资源特定标量条件。
func (c *Composer) applyScalars(filter *model.Predicate, params url.Values) {
	if raw := params.Get("author"); raw != "" {
		if id, entity, err := idgen.DecodePublicID(raw); err == nil && entity == idgen.EntityTypeUser {
			filter.AuthorID = &id
		}
	}
	if raw := params.Get("featured"); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			filter.IsFeatured = &b
		}
	}
	if raw := params.Get("isActive"); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			filter.IsActive = &b
		}
	}
	if raw := params.Get("isRead"); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			filter.IsRead = &b
		}
	}
	if raw := params.Get("assignedTo"); raw != "" {
		if id, entity, err := idgen.DecodePublicID(raw); err == nil && entity == idgen.EntityTypeUser {
			filter.AssignedTo = &id
		}
	}
	if p := params.Get("priority"); p != "" {
		switch p {
		case constant.ContactPriorityLow, constant.ContactPriorityMedium, constant.ContactPriorityHigh, constant.ContactPriorityUrgent:
			filter.Priority = p
		}
	}
	if q := params.Get("productQuestion"); constant.ValidContactQuestion(q) {
		filter.ProductQuestion = q
	}
	if raw := params.Get("withCounts"); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			filter.WithCounts = b
		}
	}
}

// composeSort 的优先级：显式 sortBy > 检索相关度默认 > 资源默认。
// sortBy 形如 field:direction，direction 为 desc 时降序，其余一律升序。
func (c *Composer) composeSort(filter *model.Predicate, rule ResourceRule, params url.Values) []model.SortField {
	if raw := params.Get("sortBy"); raw != "" {
		field, direction, _ := strings.Cut(raw, ":")
		field = strings.TrimSpace(field)
		if field != "" {
			dir := model.SortAsc
			if strings.EqualFold(strings.TrimSpace(direction), "desc") {
				dir = model.SortDesc
			}
			return []model.SortField{{Field: field, Direction: dir}}
		}
	}
	if filter.HasSearch() {
		return relevanceSort
	}
	return rule.DefaultSort
}

// composePagination 解析并钳制分页参数：page ≥ 1，limit ∈ [1, MaxLimit]。
// 越界从不报错，只做修正。
func composePagination(rule ResourceRule, params url.Values) (page, limit int) {
	page, limit = 1, rule.DefaultLimit
	if p, err := strconv.Atoi(params.Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(params.Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if limit > rule.MaxLimit {
		limit = rule.MaxLimit
	}
	if limit < 1 {
		limit = 1
	}
	return page, limit
}
