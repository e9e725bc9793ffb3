/*
 * @Description: 文章仓库的 SQL 实现
 * @Author: 安知鱼
 * @Date: 2025-07-14 11:27:09
 * @LastEditTime: 2025-09-14 16:40:12
 * @LastEditors: 安知鱼
 */
package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/anzhiyu-c/anheyu-cms/pkg/constant"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/repository"
)

const postColumns = `id, created_at, updated_at, title, slug, excerpt, blocks, faqs, tags, seo,
	category_id, author_id, status, is_featured, cover_image, view_count, word_count, read_time,
	published_at, scheduled_at`

// postSortColumns 是文章列表允许的排序字段白名单，
// 把 API 字段名映射为真实列名。
var postSortColumns = map[string]string{
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"published_at": "published_at",
	"publishedAt":  "published_at",
	"title":        "title",
	"views":        "view_count",
	"view_count":   "view_count",
	"read_time":    "read_time",
}

type postStore struct {
	db      *sql.DB
	dialect string
}

func NewPostStore(db *sql.DB, dialect string) repository.PostRepository {
	return &postStore{db: db, dialect: dialect}
}

// conds 把过滤谓词编译为 WHERE 片段。
// 检索器已求出命中主键集合时用 IN 过滤（空集合表示明确无匹配）；
// 否则退化为标题/摘要的 LIKE 匹配。
func (s *postStore) conds(p *model.Predicate) *condBuilder {
	b := &condBuilder{}
	if p == nil {
		return b
	}
	if p.Status != "" {
		b.add("status = ?", p.Status)
	}
	if len(p.CategoryIDs) > 0 {
		b.addIn("category_id", p.CategoryIDs)
	}
	b.addTagsAnyOf("tags", p.Tags)

	dateCol := "created_at"
	if p.DateField == "published_at" {
		dateCol = "published_at"
	}
	if p.StartDate != nil {
		b.add(dateCol+" >= ?", *p.StartDate)
	}
	if p.EndDate != nil {
		b.add(dateCol+" <= ?", *p.EndDate)
	}

	if p.SearchIDs != nil {
		b.addIn("id", p.SearchIDs)
	} else if p.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(p.Search)) + "%"
		b.add("(LOWER(title) LIKE ?"+likeEscape+" OR LOWER(excerpt) LIKE ?"+likeEscape+")",
			pattern, pattern)
	}

	if p.AuthorID != nil {
		b.add("author_id = ?", *p.AuthorID)
	}
	if p.IsFeatured != nil {
		b.add("is_featured = ?", *p.IsFeatured)
	}
	return b
}

func (s *postStore) FindByID(ctx context.Context, id uint) (*model.Post, error) {
	query := rebind(s.dialect, "SELECT "+postColumns+" FROM posts WHERE id = ?")
	post, err := scanPost(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := s.attachCategories(ctx, []*model.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postStore) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	query := rebind(s.dialect, "SELECT "+postColumns+" FROM posts WHERE slug = ?")
	post, err := scanPost(s.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		return nil, err
	}
	if err := s.attachCategories(ctx, []*model.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postStore) Create(ctx context.Context, params *model.CreatePostParams) (*model.Post, error) {
	now := time.Now()
	blocks, faqs, seo, cover, err := marshalPostJSON(params.Blocks, params.Faqs, params.SEO, params.CoverImage)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO posts (created_at, updated_at, title, slug, excerpt, blocks, faqs, tags, seo,
		category_id, author_id, status, is_featured, cover_image, view_count, word_count, read_time,
		published_at, scheduled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?)`
	args := []any{
		now, now, params.Title, params.Slug, params.Excerpt, blocks, faqs, wrapTags(params.Tags), seo,
		nullableUint(params.CategoryID), params.AuthorID, params.Status, params.IsFeatured, cover,
		params.WordCount, params.ReadTime, nullableTime(params.PublishedAt), nullableTime(params.ScheduledAt),
	}

	id, err := s.insert(ctx, "posts", query, args)
	if err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

// insert 执行插入并取回自增主键，postgres 走 RETURNING，其余方言用 LastInsertId。
func (s *postStore) insert(ctx context.Context, table, query string, args []any) (uint, error) {
	if s.dialect == "postgres" {
		var id uint
		err := s.db.QueryRowContext(ctx, rebind(s.dialect, query+" RETURNING id"), args...).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("插入 %s 失败: %w", table, err)
		}
		return id, nil
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("插入 %s 失败: %w", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func (s *postStore) Update(ctx context.Context, id uint, params *model.UpdatePostParams) (*model.Post, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if params.Title != nil {
		set("title", *params.Title)
	}
	if params.Slug != nil {
		set("slug", *params.Slug)
	}
	if params.Excerpt != nil {
		set("excerpt", *params.Excerpt)
	}
	if params.Blocks != nil {
		raw, err := json.Marshal(params.Blocks)
		if err != nil {
			return nil, fmt.Errorf("序列化内容块失败: %w", err)
		}
		set("blocks", string(raw))
	}
	if params.Faqs != nil {
		raw, err := json.Marshal(params.Faqs)
		if err != nil {
			return nil, fmt.Errorf("序列化 FAQ 失败: %w", err)
		}
		set("faqs", string(raw))
	}
	if params.Tags != nil {
		set("tags", wrapTags(params.Tags))
	}
	if params.SEO != nil {
		raw, err := json.Marshal(params.SEO)
		if err != nil {
			return nil, fmt.Errorf("序列化 SEO 失败: %w", err)
		}
		set("seo", string(raw))
	}
	if params.ClearCat {
		set("category_id", nil)
	} else if params.CategoryID != nil {
		set("category_id", *params.CategoryID)
	}
	if params.Status != nil {
		set("status", *params.Status)
	}
	if params.IsFeatured != nil {
		set("is_featured", *params.IsFeatured)
	}
	if params.CoverImage != nil {
		raw, err := json.Marshal(params.CoverImage)
		if err != nil {
			return nil, fmt.Errorf("序列化封面失败: %w", err)
		}
		set("cover_image", string(raw))
	}
	if params.WordCount != nil {
		set("word_count", *params.WordCount)
	}
	if params.ReadTime != nil {
		set("read_time", *params.ReadTime)
	}
	if params.PublishedAt != nil {
		set("published_at", *params.PublishedAt)
	}
	if params.ClearSched {
		set("scheduled_at", nil)
	} else if params.ScheduledAt != nil {
		set("scheduled_at", *params.ScheduledAt)
	}

	if len(sets) > 0 {
		set("updated_at", time.Now())
		query := rebind(s.dialect, "UPDATE posts SET "+strings.Join(sets, ", ")+" WHERE id = ?")
		args = append(args, id)
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("更新文章失败: %w", err)
		}
	}
	return s.FindByID(ctx, id)
}

func (s *postStore) Delete(ctx context.Context, id uint) error {
	res, err := s.db.ExecContext(ctx, rebind(s.dialect, "DELETE FROM posts WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("删除文章失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return constant.ErrNotFound
	}
	return nil
}

func (s *postStore) Find(ctx context.Context, spec *model.QuerySpec) ([]*model.Post, error) {
	b := s.conds(&spec.Filter)
	where, args := b.where()

	order := orderBy(spec.Sort, postSortColumns)
	if order == "" {
		order = " ORDER BY created_at DESC"
	}

	query := "SELECT " + postColumns + " FROM posts" + where + order + " LIMIT ? OFFSET ?"
	args = append(args, spec.Limit, spec.Skip)

	rows, err := s.db.QueryContext(ctx, rebind(s.dialect, query), args...)
	if err != nil {
		return nil, fmt.Errorf("查询文章列表失败: %w", err)
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachCategories(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *postStore) Count(ctx context.Context, filter *model.Predicate) (int64, error) {
	where, args := s.conds(filter).where()
	var total int64
	query := rebind(s.dialect, "SELECT COUNT(*) FROM posts"+where)
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("统计文章数量失败: %w", err)
	}
	return total, nil
}

func (s *postStore) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var n int
	query := rebind(s.dialect, "SELECT COUNT(*) FROM posts WHERE slug = ? AND id <> ?")
	if err := s.db.QueryRowContext(ctx, query, slug, excludeID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *postStore) IncrementViewCount(ctx context.Context, id uint) error {
	query := rebind(s.dialect, "UPDATE posts SET view_count = view_count + 1 WHERE id = ?")
	_, err := s.db.ExecContext(ctx, query, id)
	return err
}

// ListTags 聚合已发布文章的标签计数。
// 标签以逗号包裹字符串存储，聚合在应用侧完成。
func (s *postStore) ListTags(ctx context.Context) ([]model.TagCount, error) {
	rows, err := s.db.QueryContext(ctx,
		rebind(s.dialect, "SELECT tags FROM posts WHERE status = ?"), constant.PostStatusPublished)
	if err != nil {
		return nil, fmt.Errorf("查询标签失败: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		for _, tag := range unwrapTags(raw) {
			counts[tag]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]model.TagCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, model.TagCount{Name: name, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (s *postStore) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	var n int64
	query := rebind(s.dialect, "SELECT COUNT(*) FROM posts WHERE category_id = ?")
	if err := s.db.QueryRowContext(ctx, query, categoryID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *postStore) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	query := rebind(s.dialect, `UPDATE posts SET status = ?, published_at = scheduled_at, scheduled_at = NULL
		WHERE status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?`)
	res, err := s.db.ExecContext(ctx, query, constant.PostStatusPublished, constant.PostStatusDraft, now)
	if err != nil {
		return 0, fmt.Errorf("发布到期文章失败: %w", err)
	}
	return res.RowsAffected()
}

// Stats 用单条聚合查询取回状态分布、精选数量与浏览总量。
func (s *postStore) Stats(ctx context.Context) (*model.PostStats, error) {
	query := rebind(s.dialect, `SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN is_featured THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(view_count), 0)
		FROM posts`)

	var stats model.PostStats
	err := s.db.QueryRowContext(ctx, query,
		constant.PostStatusPublished, constant.PostStatusDraft, constant.PostStatusArchived,
	).Scan(&stats.Total, &stats.Published, &stats.Draft, &stats.Archived, &stats.Featured, &stats.TotalViews)
	if err != nil {
		return nil, fmt.Errorf("统计文章数据失败: %w", err)
	}
	return &stats, nil
}

// attachCategories 批量装载文章的关联分类，避免逐条查询。
func (s *postStore) attachCategories(ctx context.Context, posts []*model.Post) error {
	idSet := map[uint]struct{}{}
	for _, p := range posts {
		if p.CategoryID != nil {
			idSet[*p.CategoryID] = struct{}{}
		}
	}
	if len(idSet) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	b := &condBuilder{}
	b.addIn("id", ids)
	where, args := b.where()
	rows, err := s.db.QueryContext(ctx,
		rebind(s.dialect, "SELECT "+categoryColumns+" FROM categories"+where), args...)
	if err != nil {
		return fmt.Errorf("装载关联分类失败: %w", err)
	}
	defer rows.Close()

	byID := map[uint]*model.Category{}
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return err
		}
		byID[cat.ID] = cat
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range posts {
		if p.CategoryID != nil {
			p.Category = byID[*p.CategoryID]
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*model.Post, error) {
	var (
		post        model.Post
		blocks      string
		faqs        string
		tags        string
		seo         string
		cover       string
		categoryID  sql.NullInt64
		publishedAt sql.NullTime
		scheduledAt sql.NullTime
	)
	err := row.Scan(
		&post.ID, &post.CreatedAt, &post.UpdatedAt, &post.Title, &post.Slug, &post.Excerpt,
		&blocks, &faqs, &tags, &seo, &categoryID, &post.AuthorID, &post.Status, &post.IsFeatured,
		&cover, &post.ViewCount, &post.WordCount, &post.ReadTime, &publishedAt, &scheduledAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, constant.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("扫描文章行失败: %w", err)
	}

	if blocks != "" {
		if err := json.Unmarshal([]byte(blocks), &post.Blocks); err != nil {
			return nil, fmt.Errorf("反序列化内容块失败: %w", err)
		}
	}
	if faqs != "" {
		if err := json.Unmarshal([]byte(faqs), &post.Faqs); err != nil {
			return nil, fmt.Errorf("反序列化 FAQ 失败: %w", err)
		}
	}
	if seo != "" {
		var parsed model.PostSEO
		if err := json.Unmarshal([]byte(seo), &parsed); err != nil {
			return nil, fmt.Errorf("反序列化 SEO 失败: %w", err)
		}
		post.SEO = &parsed
	}
	if cover != "" {
		var parsed model.ImageRef
		if err := json.Unmarshal([]byte(cover), &parsed); err != nil {
			return nil, fmt.Errorf("反序列化封面失败: %w", err)
		}
		post.CoverImage = &parsed
	}
	post.Tags = unwrapTags(tags)
	if categoryID.Valid {
		id := uint(categoryID.Int64)
		post.CategoryID = &id
	}
	if publishedAt.Valid {
		post.PublishedAt = &publishedAt.Time
	}
	if scheduledAt.Valid {
		post.ScheduledAt = &scheduledAt.Time
	}
	return &post, nil
}

func marshalPostJSON(blocks []model.ContentBlock, faqs []model.FaqEntry, seo *model.PostSEO, cover *model.ImageRef) (string, string, string, string, error) {
	if blocks == nil {
		blocks = []model.ContentBlock{}
	}
	if faqs == nil {
		faqs = []model.FaqEntry{}
	}
	rawBlocks, err := json.Marshal(blocks)
	if err != nil {
		return "", "", "", "", fmt.Errorf("序列化内容块失败: %w", err)
	}
	rawFaqs, err := json.Marshal(faqs)
	if err != nil {
		return "", "", "", "", fmt.Errorf("序列化 FAQ 失败: %w", err)
	}
	rawSEO := ""
	if seo != nil {
		b, err := json.Marshal(seo)
		if err != nil {
			return "", "", "", "", fmt.Errorf("序列化 SEO 失败: %w", err)
		}
		rawSEO = string(b)
	}
	rawCover := ""
	if cover != nil {
		b, err := json.Marshal(cover)
		if err != nil {
			return "", "", "", "", fmt.Errorf("序列化封面失败: %w", err)
		}
		rawCover = string(b)
	}
	return string(rawBlocks), string(rawFaqs), rawSEO, rawCover, nil
}

func nullableUint(v *uint) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}
