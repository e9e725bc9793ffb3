/*
 * @Description: 文章分类服务
 * @Author: 安知鱼
 * @Date: 2025-06-24 09:31:15
 * @LastEditTime: 2025-09-18 14:27:52
 * @LastEditors: 安知鱼
 */
package category

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/anzhiyu-c/anheyu-cms/pkg/constant"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-cms/pkg/idgen"
	"github.com/anzhiyu-c/anheyu-cms/pkg/service/post"
	"github.com/anzhiyu-c/anheyu-cms/pkg/service/query"
)

type Service interface {
	Create(ctx context.Context, req *model.CreateCategoryRequest) (*model.CategoryResponse, error)
	Get(ctx context.Context, publicID string) (*model.CategoryResponse, error)
	Update(ctx context.Context, publicID string, req *model.UpdateCategoryRequest) (*model.CategoryResponse, error)
	Delete(ctx context.Context, publicID string) error
	List(ctx context.Context, params url.Values, privileged bool) (*model.CategoryListResponse, error)
	Reorder(ctx context.Context, req *model.ReorderCategoriesRequest) error
	Stats(ctx context.Context) (*model.CategoryStats, error)
}

type serviceImpl struct {
	repo     repository.CategoryRepository
	postRepo repository.PostRepository
	composer *query.Composer
}

func NewService(repo repository.CategoryRepository, postRepo repository.PostRepository, composer *query.Composer) Service {
	return &serviceImpl{repo: repo, postRepo: postRepo, composer: composer}
}

// Create 创建分类。别名缺省时由名称生成，冲突返回 constant.ErrSlugTaken。
func (s *serviceImpl) Create(ctx context.Context, req *model.CreateCategoryRequest) (*model.CategoryResponse, error) {
	slug, err := s.resolveSlug(ctx, req.Slug, req.Name, 0)
	if err != nil {
		return nil, err
	}

	category := &model.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		IsActive:    true,
		SortOrder:   req.SortOrder,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	created, err := s.repo.Create(ctx, category)
	if err != nil {
		return nil, err
	}
	return s.toAPIResponse(ctx, created, true), nil
}

func (s *serviceImpl) Get(ctx context.Context, publicID string) (*model.CategoryResponse, error) {
	dbID, err := decodeCategoryID(publicID)
	if err != nil {
		return nil, err
	}
	category, err := s.repo.FindByID(ctx, dbID)
	if err != nil {
		return nil, err
	}
	return s.toAPIResponse(ctx, category, true), nil
}

func (s *serviceImpl) Update(ctx context.Context, publicID string, req *model.UpdateCategoryRequest) (*model.CategoryResponse, error) {
	dbID, err := decodeCategoryID(publicID)
	if err != nil {
		return nil, err
	}

	if req.Slug != nil {
		current, err := s.repo.FindByID(ctx, dbID)
		if err != nil {
			return nil, err
		}
		name := current.Name
		if req.Name != nil {
			name = *req.Name
		}
		slug, err := s.resolveSlug(ctx, *req.Slug, name, dbID)
		if err != nil {
			return nil, err
		}
		req.Slug = &slug
	}

	updated, err := s.repo.Update(ctx, dbID, req)
	if err != nil {
		return nil, err
	}
	return s.toAPIResponse(ctx, updated, true), nil
}

// Delete 删除分类。分类下仍有文章时返回 constant.ErrCategoryInUse。
func (s *serviceImpl) Delete(ctx context.Context, publicID string) error {
	dbID, err := decodeCategoryID(publicID)
	if err != nil {
		return err
	}
	count, err := s.postRepo.CountByCategory(ctx, dbID)
	if err != nil {
		return err
	}
	if count > 0 {
		return constant.ErrCategoryInUse
	}
	return s.repo.Delete(ctx, dbID)
}

// List 分类列表。非特权调用方只能看到启用的分类。
func (s *serviceImpl) List(ctx context.Context, params url.Values, privileged bool) (*model.CategoryListResponse, error) {
	spec := s.composer.Compose(ctx, query.ResourceCategories, params, privileged)
	if !privileged {
		active := true
		spec.Filter.IsActive = &active
	}

	categories, err := s.repo.Find(ctx, spec)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, &spec.Filter)
	if err != nil {
		return nil, err
	}

	// 文章数按条计算有额外查询，仅在调用方显式要求时附带
	data := make([]model.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		data = append(data, *s.toAPIResponse(ctx, c, spec.Filter.WithCounts))
	}
	return &model.CategoryListResponse{
		Success:    true,
		Count:      len(data),
		Total:      total,
		Pagination: model.BuildPagination(spec.Skip, spec.Limit, total),
		Data:       data,
	}, nil
}

// Reorder 批量调整分类排序。先整体解码校验，再逐条写入，
// 避免中途遇到非法 ID 留下半完成的排序。
func (s *serviceImpl) Reorder(ctx context.Context, req *model.ReorderCategoriesRequest) error {
	type orderUpdate struct {
		id        uint
		sortOrder int
	}
	updates := make([]orderUpdate, 0, len(req.Orders))
	for _, item := range req.Orders {
		dbID, err := decodeCategoryID(item.ID)
		if err != nil {
			return err
		}
		updates = append(updates, orderUpdate{id: dbID, sortOrder: item.SortOrder})
	}

	for _, u := range updates {
		if err := s.repo.UpdateSortOrder(ctx, u.id, u.sortOrder); err != nil {
			return err
		}
	}
	return nil
}

func (s *serviceImpl) Stats(ctx context.Context) (*model.CategoryStats, error) {
	return s.repo.Stats(ctx)
}

// toAPIResponse 转换分类响应，withCounts 为 true 时填充文章数
func (s *serviceImpl) toAPIResponse(ctx context.Context, c *model.Category, withCounts bool) *model.CategoryResponse {
	if c == nil {
		return nil
	}
	publicID, err := idgen.GeneratePublicID(c.ID, idgen.EntityTypeCategory)
	if err != nil {
		log.Printf("[CategoryService.toAPIResponse] 生成公共ID失败 (ID: %d): %v", c.ID, err)
	}

	postCount := c.PostCount
	if withCounts && postCount == 0 {
		if count, err := s.postRepo.CountByCategory(ctx, c.ID); err == nil {
			postCount = int(count)
		}
	}

	return &model.CategoryResponse{
		ID:          publicID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Color:       c.Color,
		Icon:        c.Icon,
		IsActive:    c.IsActive,
		SortOrder:   c.SortOrder,
		PostCount:   postCount,
	}
}

func (s *serviceImpl) resolveSlug(ctx context.Context, raw, name string, excludeID uint) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		slug := post.Slugify(raw)
		if slug == "" {
			return "", fmt.Errorf("%w: 别名不含任何合法字符", constant.ErrBadRequest)
		}
		taken, err := s.repo.SlugExists(ctx, slug, excludeID)
		if err != nil {
			return "", err
		}
		if taken {
			return "", constant.ErrSlugTaken
		}
		return slug, nil
	}

	base := post.Slugify(name)
	if base == "" {
		base = "category"
	}
	slug := base
	for i := 2; ; i++ {
		taken, err := s.repo.SlugExists(ctx, slug, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func decodeCategoryID(publicID string) (uint, error) {
	dbID, entityType, err := idgen.DecodePublicID(publicID)
	if err != nil || entityType != idgen.EntityTypeCategory {
		return 0, constant.ErrInvalidPublicID
	}
	return dbID, nil
}
