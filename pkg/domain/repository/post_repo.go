/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-19 11:02:17
 * @LastEditTime: 2025-09-12 14:08:33
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"
	"time"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

// PostRepository 定义了文章数据仓库的接口。
// 它是数据持久化层的抽象，所有方法都使用领域模型和查询规格，与具体的存储实现解耦。
type PostRepository interface {
	// FindByID 根据数据库的 uint ID 获取单个文章（含关联分类）。
	FindByID(ctx context.Context, id uint) (*model.Post, error)

	// FindBySlug 根据别名获取单个文章。
	FindBySlug(ctx context.Context, slug string) (*model.Post, error)

	// Create 方法接收一个包含所有必需数据的参数对象，返回创建后的文章领域模型。
	Create(ctx context.Context, params *model.CreatePostParams) (*model.Post, error)

	// Update 方法根据数据库 ID 应用一组部分更新。
	Update(ctx context.Context, id uint, params *model.UpdatePostParams) (*model.Post, error)

	// Delete 方法根据数据库 ID 删除一篇文章。
	Delete(ctx context.Context, id uint) error

	// Find 根据查询规格分页检索文章。
	Find(ctx context.Context, spec *model.QuerySpec) ([]*model.Post, error)

	// Count 统计满足过滤谓词的文章总数。
	Count(ctx context.Context, filter *model.Predicate) (int64, error)

	// SlugExists 检查别名是否已被其它文章占用。
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)

	// IncrementViewCount 增加文章的查看次数。
	IncrementViewCount(ctx context.Context, id uint) error

	// ListTags 聚合所有已发布文章的标签及其数量。
	ListTags(ctx context.Context) ([]model.TagCount, error)

	// CountByCategory 统计指定分类下的文章数量。
	CountByCategory(ctx context.Context, categoryID uint) (int64, error)

	// PublishDue 将所有计划发布时间早于 now 的文章置为已发布，返回受影响的数量。
	PublishDue(ctx context.Context, now time.Time) (int64, error)

	// Stats 聚合文章的状态分布与浏览总量。
	Stats(ctx context.Context) (*model.PostStats, error)
}
