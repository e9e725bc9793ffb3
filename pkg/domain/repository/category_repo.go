/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-19 11:06:40
 * @LastEditTime: 2025-08-22 16:51:02
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

// CategoryRepository 定义了文章分类数据仓库的接口。
type CategoryRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Category, error)

	// FindBySlug 根据小写别名精确查找分类。
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)

	// FindByNameLike 根据显示名称做大小写不敏感的子串匹配，返回第一个命中项。
	FindByNameLike(ctx context.Context, name string) (*model.Category, error)

	Create(ctx context.Context, category *model.Category) (*model.Category, error)

	Update(ctx context.Context, id uint, req *model.UpdateCategoryRequest) (*model.Category, error)

	Delete(ctx context.Context, id uint) error

	// Find 根据查询规格分页检索分类列表。
	Find(ctx context.Context, spec *model.QuerySpec) ([]*model.Category, error)

	Count(ctx context.Context, filter *model.Predicate) (int64, error)

	// SlugExists 检查别名是否已被其它分类占用。
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)

	// UpdateSortOrder 更新单个分类的排序值。
	UpdateSortOrder(ctx context.Context, id uint, sortOrder int) error

	// Stats 返回分类的启用/停用分布。
	Stats(ctx context.Context) (*model.CategoryStats, error)
}
