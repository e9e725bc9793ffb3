/*
 * @Description: 文章分类仓库的 SQL 实现
 * @Author: 安知鱼
 * @Date: 2025-07-14 14:05:52
 * @LastEditTime: 2025-09-11 09:25:30
 * @LastEditors: 安知鱼
 */
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anzhiyu-c/anheyu-cms/pkg/constant"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/repository"
)

const categoryColumns = `id, created_at, updated_at, name, slug, description, color, icon, is_active, sort_order`

var categorySortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
	"sort_order": "sort_order",
	"sortOrder":  "sort_order",
}

type categoryStore struct {
	db      *sql.DB
	dialect string
}

func NewCategoryStore(db *sql.DB, dialect string) repository.CategoryRepository {
	return &categoryStore{db: db, dialect: dialect}
}

func (s *categoryStore) conds(p *model.Predicate) *condBuilder {
	b := &condBuilder{}
	if p == nil {
		return b
	}
	if p.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(p.Search)) + "%"
		b.add("(LOWER(name) LIKE ?"+likeEscape+" OR LOWER(description) LIKE ?"+likeEscape+")",
			pattern, pattern)
	}
	if p.IsActive != nil {
		b.add("is_active = ?", *p.IsActive)
	}
	return b
}

func (s *categoryStore) FindByID(ctx context.Context, id uint) (*model.Category, error) {
	query := rebind(s.dialect, "SELECT "+categoryColumns+" FROM categories WHERE id = ?")
	return scanCategory(s.db.QueryRowContext(ctx, query, id))
}

func (s *categoryStore) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	query := rebind(s.dialect, "SELECT "+categoryColumns+" FROM categories WHERE slug = ?")
	return scanCategory(s.db.QueryRowContext(ctx, query, slug))
}

func (s *categoryStore) FindByNameLike(ctx context.Context, name string) (*model.Category, error) {
	pattern := "%" + escapeLike(strings.ToLower(name)) + "%"
	query := rebind(s.dialect,
		"SELECT "+categoryColumns+" FROM categories WHERE LOWER(name) LIKE ?"+likeEscape+" ORDER BY id LIMIT 1")
	return scanCategory(s.db.QueryRowContext(ctx, query, pattern))
}

func (s *categoryStore) Create(ctx context.Context, category *model.Category) (*model.Category, error) {
	now := time.Now()
	query := `INSERT INTO categories (created_at, updated_at, name, slug, description, color, icon, is_active, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := []any{now, now, category.Name, category.Slug, category.Description,
		category.Color, category.Icon, category.IsActive, category.SortOrder}

	var id uint
	if s.dialect == "postgres" {
		err := s.db.QueryRowContext(ctx, rebind(s.dialect, query+" RETURNING id"), args...).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("插入分类失败: %w", err)
		}
	} else {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("插入分类失败: %w", err)
		}
		lastID, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		id = uint(lastID)
	}
	return s.FindByID(ctx, id)
}

func (s *categoryStore) Update(ctx context.Context, id uint, req *model.UpdateCategoryRequest) (*model.Category, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Slug != nil {
		set("slug", strings.ToLower(*req.Slug))
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.Color != nil {
		set("color", *req.Color)
	}
	if req.Icon != nil {
		set("icon", *req.Icon)
	}
	if req.IsActive != nil {
		set("is_active", *req.IsActive)
	}
	if req.SortOrder != nil {
		set("sort_order", *req.SortOrder)
	}

	if len(sets) > 0 {
		set("updated_at", time.Now())
		query := rebind(s.dialect, "UPDATE categories SET "+strings.Join(sets, ", ")+" WHERE id = ?")
		args = append(args, id)
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("更新分类失败: %w", err)
		}
	}
	return s.FindByID(ctx, id)
}

func (s *categoryStore) Delete(ctx context.Context, id uint) error {
	res, err := s.db.ExecContext(ctx, rebind(s.dialect, "DELETE FROM categories WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("删除分类失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return constant.ErrNotFound
	}
	return nil
}

func (s *categoryStore) Find(ctx context.Context, spec *model.QuerySpec) ([]*model.Category, error) {
	where, args := s.conds(&spec.Filter).where()

	order := orderBy(spec.Sort, categorySortColumns)
	if order == "" {
		order = " ORDER BY sort_order ASC, name ASC"
	}

	query := "SELECT " + categoryColumns + " FROM categories" + where + order + " LIMIT ? OFFSET ?"
	args = append(args, spec.Limit, spec.Skip)

	rows, err := s.db.QueryContext(ctx, rebind(s.dialect, query), args...)
	if err != nil {
		return nil, fmt.Errorf("查询分类列表失败: %w", err)
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

func (s *categoryStore) Count(ctx context.Context, filter *model.Predicate) (int64, error) {
	where, args := s.conds(filter).where()
	var total int64
	query := rebind(s.dialect, "SELECT COUNT(*) FROM categories"+where)
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("统计分类数量失败: %w", err)
	}
	return total, nil
}

func (s *categoryStore) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var n int
	query := rebind(s.dialect, "SELECT COUNT(*) FROM categories WHERE slug = ? AND id <> ?")
	if err := s.db.QueryRowContext(ctx, query, slug, excludeID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *categoryStore) Stats(ctx context.Context) (*model.CategoryStats, error) {
	stats := &model.CategoryStats{}
	query := `SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0)
		FROM categories`
	if err := s.db.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Active); err != nil {
		return nil, fmt.Errorf("统计分类数量失败: %w", err)
	}
	stats.Inactive = stats.Total - stats.Active
	return stats, nil
}

func (s *categoryStore) UpdateSortOrder(ctx context.Context, id uint, sortOrder int) error {
	query := rebind(s.dialect, "UPDATE categories SET sort_order = ?, updated_at = ? WHERE id = ?")
	res, err := s.db.ExecContext(ctx, query, sortOrder, time.Now(), id)
	if err != nil {
		return fmt.Errorf("更新分类排序失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return constant.ErrNotFound
	}
	return nil
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var cat model.Category
	err := row.Scan(&cat.ID, &cat.CreatedAt, &cat.UpdatedAt, &cat.Name, &cat.Slug,
		&cat.Description, &cat.Color, &cat.Icon, &cat.IsActive, &cat.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, constant.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("扫描分类行失败: %w", err)
	}
	return &cat, nil
}
