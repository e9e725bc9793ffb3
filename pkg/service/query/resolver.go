/*
 * @Description: 分类标识解析器
 * @Author: 安知鱼
 * @Date: 2025-07-10 10:02:15
 * @LastEditTime: 2025-08-24 18:33:40
 * @LastEditors: 安知鱼
 */
package query

import (
	"context"
	"strings"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-cms/pkg/idgen"
)

// repoCategoryResolver 基于分类仓库实现 CategoryResolver。
// 解析优先级：公共ID直解 > 小写别名精确匹配 > 名称大小写不敏感子串匹配。
type repoCategoryResolver struct {
	repo repository.CategoryRepository
}

func NewCategoryResolver(repo repository.CategoryRepository) CategoryResolver {
	return &repoCategoryResolver{repo: repo}
}

func (r *repoCategoryResolver) Resolve(ctx context.Context, token string) (uint, bool) {
	// 公共ID快速路径，无需访问数据库
	if id, entity, err := idgen.DecodePublicID(token); err == nil && entity == idgen.EntityTypeCategory {
		return id, true
	}

	if cat, err := r.repo.FindBySlug(ctx, strings.ToLower(token)); err == nil && cat != nil {
		return cat.ID, true
	}

	if cat, err := r.repo.FindByNameLike(ctx, token); err == nil && cat != nil {
		return cat.ID, true
	}

	return 0, false
}
