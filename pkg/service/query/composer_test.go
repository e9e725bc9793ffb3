package query

import (
	"context"
	"net/url"
	"reflect"
	"testing"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

// stubResolver 按固定映射解析分类标记
type stubResolver struct {
	known map[string]uint
}

func (s *stubResolver) Resolve(_ context.Context, token string) (uint, bool) {
	id, ok := s.known[token]
	return id, ok
}

func newTestComposer(known map[string]uint) *Composer {
	return NewComposer(&stubResolver{known: known}, nil)
}

func TestComposeVisibilityOverride(t *testing.T) {
	c := newTestComposer(nil)
	params := url.Values{"status": {"draft"}}

	spec := c.Compose(context.Background(), ResourcePosts, params, false)
	if spec.Filter.Status != "published" {
		t.Errorf("非特权调用方应被强制为 published, 实际 %q", spec.Filter.Status)
	}

	spec = c.Compose(context.Background(), ResourcePosts, params, true)
	if spec.Filter.Status != "draft" {
		t.Errorf("特权调用方的状态过滤应生效, 实际 %q", spec.Filter.Status)
	}
}

func TestComposeInvalidStatusDropped(t *testing.T) {
	c := newTestComposer(nil)
	params := url.Values{"status": {"nonsense"}}

	spec := c.Compose(context.Background(), ResourcePosts, params, true)
	if spec.Filter.Status != "" {
		t.Errorf("无法识别的状态应被丢弃, 实际 %q", spec.Filter.Status)
	}
}

func TestComposeCategoryResolution(t *testing.T) {
	c := newTestComposer(map[string]uint{"tech": 1, "life": 2})

	tests := []struct {
		name     string
		category string
		expected []uint
	}{
		{
			name:     "全部可解析",
			category: "tech,life",
			expected: []uint{1, 2},
		},
		{
			name:     "部分不可解析的标记静默丢弃",
			category: "tech,doesnotexist123",
			expected: []uint{1},
		},
		{
			name:     "全部不可解析时不施加分类限制",
			category: "doesnotexist123",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := url.Values{"category": {tt.category}}
			spec := c.Compose(context.Background(), ResourcePosts, params, false)
			if !reflect.DeepEqual(spec.Filter.CategoryIDs, tt.expected) {
				t.Errorf("CategoryIDs = %v, 期望 %v", spec.Filter.CategoryIDs, tt.expected)
			}
		})
	}
}

func TestComposeTags(t *testing.T) {
	c := newTestComposer(nil)
	params := url.Values{"tags": {"Go, Web ,"}}

	spec := c.Compose(context.Background(), ResourcePosts, params, false)
	expected := []string{"go", "web"}
	if !reflect.DeepEqual(spec.Filter.Tags, expected) {
		t.Errorf("Tags = %v, 期望 %v", spec.Filter.Tags, expected)
	}
}

func TestComposeSort(t *testing.T) {
	c := newTestComposer(nil)

	tests := []struct {
		name     string
		params   url.Values
		expected []model.SortField
	}{
		{
			name:     "默认按发布时间降序",
			params:   url.Values{},
			expected: []model.SortField{{Field: "published_at", Direction: model.SortDesc}},
		},
		{
			name:     "显式 sortBy 原样采纳",
			params:   url.Values{"sortBy": {"views:desc"}},
			expected: []model.SortField{{Field: "views", Direction: model.SortDesc}},
		},
		{
			name:     "非 desc 的方向一律升序",
			params:   url.Values{"sortBy": {"title:up"}},
			expected: []model.SortField{{Field: "title", Direction: model.SortAsc}},
		},
		{
			name:   "检索激活时默认相关度排序",
			params: url.Values{"search": {"golang"}},
			expected: []model.SortField{
				{Field: "score", Direction: model.SortDesc},
				{Field: "published_at", Direction: model.SortDesc},
			},
		},
		{
			name:     "显式排序优先于相关度排序",
			params:   url.Values{"search": {"golang"}, "sortBy": {"views:desc"}},
			expected: []model.SortField{{Field: "views", Direction: model.SortDesc}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := c.Compose(context.Background(), ResourcePosts, tt.params, false)
			if !reflect.DeepEqual(spec.Sort, tt.expected) {
				t.Errorf("Sort = %v, 期望 %v", spec.Sort, tt.expected)
			}
		})
	}
}

func TestComposePagination(t *testing.T) {
	c := newTestComposer(nil)

	tests := []struct {
		name     string
		resource string
		params   url.Values
		page     int
		limit    int
		skip     int
	}{
		{
			name:     "默认值",
			resource: ResourcePosts,
			params:   url.Values{},
			page:     1, limit: 10, skip: 0,
		},
		{
			name:     "显式分页",
			resource: ResourcePosts,
			params:   url.Values{"page": {"2"}, "limit": {"10"}},
			page:     2, limit: 10, skip: 10,
		},
		{
			name:     "超过上限被钳制",
			resource: ResourcePosts,
			params:   url.Values{"limit": {"500"}},
			page:     1, limit: 50, skip: 0,
		},
		{
			name:     "搜索端点的上限更小",
			resource: ResourceSearch,
			params:   url.Values{"q": {"x"}, "limit": {"500"}},
			page:     1, limit: 20, skip: 0,
		},
		{
			name:     "非法值回退到默认",
			resource: ResourcePosts,
			params:   url.Values{"page": {"-3"}, "limit": {"abc"}},
			page:     1, limit: 10, skip: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := c.Compose(context.Background(), tt.resource, tt.params, false)
			if spec.Page != tt.page || spec.Limit != tt.limit || spec.Skip != tt.skip {
				t.Errorf("page/limit/skip = %d/%d/%d, 期望 %d/%d/%d",
					spec.Page, spec.Limit, spec.Skip, tt.page, tt.limit, tt.skip)
			}
		})
	}
}

func TestComposeListingScenario(t *testing.T) {
	c := newTestComposer(nil)
	params := url.Values{"page": {"2"}, "limit": {"10"}, "sortBy": {"views:desc"}}

	spec := c.Compose(context.Background(), ResourcePosts, params, false)
	if spec.Skip != 10 || spec.Limit != 10 {
		t.Fatalf("skip/limit = %d/%d, 期望 10/10", spec.Skip, spec.Limit)
	}

	p := model.BuildPagination(spec.Skip, spec.Limit, 25)
	if p.Next == nil || p.Next.Page != 3 || p.Next.Limit != 10 {
		t.Errorf("next = %+v, 期望 page=3 limit=10", p.Next)
	}
	if p.Prev == nil || p.Prev.Page != 1 || p.Prev.Limit != 10 {
		t.Errorf("prev = %+v, 期望 page=1 limit=10", p.Prev)
	}
}

func TestBuildPaginationInvariant(t *testing.T) {
	for _, total := range []int64{0, 1, 9, 10, 11, 25, 100} {
		for page := 1; page <= 5; page++ {
			for _, limit := range []int{1, 7, 10} {
				skip := (page - 1) * limit
				p := model.BuildPagination(skip, limit, total)

				wantNext := int64(skip+limit) < total
				if (p.Next != nil) != wantNext {
					t.Errorf("total=%d page=%d limit=%d: next 存在性 = %v, 期望 %v",
						total, page, limit, p.Next != nil, wantNext)
				}
				if (p.Prev != nil) != (page > 1) {
					t.Errorf("total=%d page=%d limit=%d: prev 存在性 = %v, 期望 %v",
						total, page, limit, p.Prev != nil, page > 1)
				}
			}
		}
	}
}

func TestComposeProductQuestion(t *testing.T) {
	c := newTestComposer(nil)

	spec := c.Compose(context.Background(), ResourceContacts,
		url.Values{"productQuestion": {"Pricing"}}, true)
	if spec.Filter.ProductQuestion != "Pricing" {
		t.Errorf("ProductQuestion = %q, 期望 Pricing", spec.Filter.ProductQuestion)
	}

	spec = c.Compose(context.Background(), ResourceContacts,
		url.Values{"productQuestion": {"随便写的"}}, true)
	if spec.Filter.ProductQuestion != "" {
		t.Errorf("枚举外的咨询类别应被丢弃, 实际 %q", spec.Filter.ProductQuestion)
	}
}

func TestComposeWithCounts(t *testing.T) {
	c := newTestComposer(nil)

	spec := c.Compose(context.Background(), ResourceCategories,
		url.Values{"withCounts": {"true"}}, true)
	if !spec.Filter.WithCounts {
		t.Error("withCounts=true 应生效")
	}

	spec = c.Compose(context.Background(), ResourceCategories, url.Values{}, true)
	if spec.Filter.WithCounts {
		t.Error("缺省时不附带文章数")
	}

	spec = c.Compose(context.Background(), ResourceCategories,
		url.Values{"withCounts": {"notabool"}}, true)
	if spec.Filter.WithCounts {
		t.Error("无法解析的 withCounts 应回退到 false")
	}
}

func TestComposeDateRange(t *testing.T) {
	c := newTestComposer(nil)

	spec := c.Compose(context.Background(), ResourcePosts,
		url.Values{"startDate": {"2025-01-01"}}, false)
	if spec.Filter.StartDate == nil || spec.Filter.EndDate != nil {
		t.Errorf("仅起始日期: start=%v end=%v", spec.Filter.StartDate, spec.Filter.EndDate)
	}

	spec = c.Compose(context.Background(), ResourcePosts,
		url.Values{"startDate": {"无效日期"}, "endDate": {"2025-06-30"}}, false)
	if spec.Filter.StartDate != nil {
		t.Error("无法解析的起始日期应被丢弃")
	}
	if spec.Filter.EndDate == nil {
		t.Error("合法的结束日期应单独生效")
	}
}
