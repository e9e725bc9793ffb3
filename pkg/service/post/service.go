/*
 * @Description: 文章服务
 * @Author: 安知鱼
 * @Date: 2025-06-23 14:05:37
 * @LastEditTime: 2025-09-21 17:32:48
 * @LastEditors: 安知鱼
 */
package post

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/anzhiyu-c/anheyu-cms/internal/pkg/formdecode"
	"github.com/anzhiyu-c/anheyu-cms/internal/pkg/render"
	"github.com/anzhiyu-c/anheyu-cms/pkg/constant"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-cms/pkg/idgen"
	"github.com/anzhiyu-c/anheyu-cms/pkg/service/query"
	"github.com/anzhiyu-c/anheyu-cms/pkg/service/search"
)

type Service interface {
	Create(ctx context.Context, req *model.CreatePostRequest, authorID uint) (*model.PostResponse, error)
	Get(ctx context.Context, publicID string) (*model.PostResponse, error)
	GetPublicBySlugOrID(ctx context.Context, slugOrID string) (*model.PostResponse, error)
	Update(ctx context.Context, publicID string, req *model.UpdatePostRequest) (*model.PostResponse, error)
	Delete(ctx context.Context, publicID string) error
	List(ctx context.Context, resource string, params url.Values, privileged bool) (*model.PostListResponse, error)
	ListTags(ctx context.Context) ([]model.TagCount, error)
	CheckSlug(ctx context.Context, slug, excludePublicID string) (*model.SlugCheckResponse, error)
	Stats(ctx context.Context) (*model.PostStats, error)
	RebuildSearchIndex(ctx context.Context) (int, error)
	ToAPIResponse(p *model.Post, includeBlocks bool) *model.PostResponse
}

type serviceImpl struct {
	repo         repository.PostRepository
	categoryRepo repository.CategoryRepository
	userRepo     repository.UserRepository
	composer     *query.Composer
	searchSvc    *search.SearchService
}

func NewService(
	repo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	userRepo repository.UserRepository,
	composer *query.Composer,
	searchSvc *search.SearchService,
) Service {
	return &serviceImpl{
		repo:         repo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		composer:     composer,
		searchSvc:    searchSvc,
	}
}

// Create 创建文章。别名冲突返回 constant.ErrSlugTaken，
// 内容块未通过校验时原样返回 *formdecode.BlockValidationError 供处理器翻译为 400。
func (s *serviceImpl) Create(ctx context.Context, req *model.CreatePostRequest, authorID uint) (*model.PostResponse, error) {
	doc := req.Document
	if doc == nil {
		doc = &model.DecodedDocument{}
	}
	if err := formdecode.ValidateBlocks(doc.Blocks); err != nil {
		return nil, err
	}

	slug, err := s.resolveSlug(ctx, req.Slug, req.Title, 0)
	if err != nil {
		return nil, err
	}

	categoryID, err := s.resolveCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = constant.PostStatusDraft
	}

	params := &model.CreatePostParams{
		Title:      strings.TrimSpace(req.Title),
		Slug:       slug,
		Excerpt:    req.Excerpt,
		Blocks:     doc.Blocks,
		Faqs:       doc.Faqs,
		Tags:       doc.Tags,
		SEO:        doc.SEO,
		CategoryID: categoryID,
		AuthorID:   authorID,
		Status:     status,
		CoverImage: req.Cover,
	}
	if req.IsFeatured != nil {
		params.IsFeatured = *req.IsFeatured
	}
	params.WordCount, params.ReadTime = calculatePostStats(req.Title, req.Excerpt, doc.Blocks)

	if t, ok := parseTimestamp(req.PublishedAt); ok {
		params.PublishedAt = &t
	}
	if t, ok := parseTimestamp(req.ScheduledAt); ok {
		params.ScheduledAt = &t
	}
	// 设定了未来的定时发布时间时文章保持草稿，由调度任务转为已发布
	if params.ScheduledAt != nil && params.ScheduledAt.After(time.Now()) {
		params.Status = constant.PostStatusDraft
	}
	if params.Status == constant.PostStatusPublished && params.PublishedAt == nil {
		now := time.Now()
		params.PublishedAt = &now
	}

	created, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	s.syncSearchIndex(created)
	return s.ToAPIResponse(created, true), nil
}

// Update 部分更新文章，nil 字段保持不变。
func (s *serviceImpl) Update(ctx context.Context, publicID string, req *model.UpdatePostRequest) (*model.PostResponse, error) {
	dbID, err := decodePostID(publicID)
	if err != nil {
		return nil, err
	}
	current, err := s.repo.FindByID(ctx, dbID)
	if err != nil {
		return nil, err
	}

	params := &model.UpdatePostParams{
		Title:      req.Title,
		Excerpt:    req.Excerpt,
		Status:     req.Status,
		IsFeatured: req.IsFeatured,
		CoverImage: req.Cover,
	}

	if req.Slug != nil {
		title := current.Title
		if req.Title != nil {
			title = *req.Title
		}
		slug, err := s.resolveSlug(ctx, *req.Slug, title, dbID)
		if err != nil {
			return nil, err
		}
		params.Slug = &slug
	}

	if req.CategoryID != nil {
		if *req.CategoryID == "" {
			params.ClearCat = true
		} else {
			categoryID, err := s.resolveCategory(ctx, *req.CategoryID)
			if err != nil {
				return nil, err
			}
			params.CategoryID = categoryID
		}
	}

	if doc := req.Document; doc != nil {
		if len(doc.Blocks) > 0 {
			if err := formdecode.ValidateBlocks(doc.Blocks); err != nil {
				return nil, err
			}
			params.Blocks = doc.Blocks
		}
		if doc.Tags != nil {
			params.Tags = doc.Tags
		}
		if doc.Faqs != nil {
			params.Faqs = doc.Faqs
		}
		if doc.SEO != nil {
			params.SEO = doc.SEO
		}
	}

	// 标题、摘要或正文任一变化都会使字数统计失效，统一重算
	if params.Title != nil || params.Excerpt != nil || params.Blocks != nil {
		title, excerpt, blocks := current.Title, current.Excerpt, current.Blocks
		if params.Title != nil {
			title = *params.Title
		}
		if params.Excerpt != nil {
			excerpt = *params.Excerpt
		}
		if params.Blocks != nil {
			blocks = params.Blocks
		}
		wordCount, readTime := calculatePostStats(title, excerpt, blocks)
		params.WordCount = &wordCount
		params.ReadTime = &readTime
	}

	if req.PublishedAt != nil {
		if t, ok := parseTimestamp(*req.PublishedAt); ok {
			params.PublishedAt = &t
		}
	}
	if req.ScheduledAt != nil {
		if *req.ScheduledAt == "" {
			params.ClearSched = true
		} else if t, ok := parseTimestamp(*req.ScheduledAt); ok {
			params.ScheduledAt = &t
		}
	}

	// 从非发布态切到发布态且没有发布时间时补上当前时间
	if params.Status != nil && *params.Status == constant.PostStatusPublished &&
		current.Status != constant.PostStatusPublished &&
		current.PublishedAt == nil && params.PublishedAt == nil {
		now := time.Now()
		params.PublishedAt = &now
	}

	updated, err := s.repo.Update(ctx, dbID, params)
	if err != nil {
		return nil, err
	}

	s.syncSearchIndex(updated)
	return s.ToAPIResponse(updated, true), nil
}

func (s *serviceImpl) Delete(ctx context.Context, publicID string) error {
	dbID, err := decodePostID(publicID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, dbID); err != nil {
		return err
	}
	if err := s.searchSvc.DeletePost(context.Background(), dbID); err != nil {
		log.Printf("[PostService.Delete] 删除搜索索引失败: %v", err)
	}
	return nil
}

// Get 后台按公共 ID 获取文章，不过滤状态，不增加浏览量。
func (s *serviceImpl) Get(ctx context.Context, publicID string) (*model.PostResponse, error) {
	dbID, err := decodePostID(publicID)
	if err != nil {
		return nil, err
	}
	post, err := s.repo.FindByID(ctx, dbID)
	if err != nil {
		return nil, err
	}
	return s.ToAPIResponse(post, true), nil
}

// GetPublicBySlugOrID 为公开浏览，通过别名或公共 ID 获取已发布文章，并异步累加浏览量。
func (s *serviceImpl) GetPublicBySlugOrID(ctx context.Context, slugOrID string) (*model.PostResponse, error) {
	post, err := s.repo.FindBySlug(ctx, slugOrID)
	if errors.Is(err, constant.ErrNotFound) {
		if dbID, decErr := decodePostID(slugOrID); decErr == nil {
			post, err = s.repo.FindByID(ctx, dbID)
		}
	}
	if err != nil {
		return nil, err
	}
	if post.Status != constant.PostStatusPublished {
		return nil, constant.ErrNotFound
	}

	go func(id uint) {
		if err := s.repo.IncrementViewCount(context.Background(), id); err != nil {
			log.Printf("[PostService.GetPublicBySlugOrID] 更新浏览量失败 (ID: %d): %v", id, err)
		}
	}(post.ID)

	resp := s.ToAPIResponse(post, true)
	resp.ViewCount++
	return resp, nil
}

// List 文章列表查询。resource 为 posts 或 search，二者共用同一套编排规则，
// 仅默认分页上限与检索参数不同。
func (s *serviceImpl) List(ctx context.Context, resource string, params url.Values, privileged bool) (*model.PostListResponse, error) {
	spec := s.composer.Compose(ctx, resource, params, privileged)

	if spec.Filter.HasSearch() && s.searchSvc.Enabled() {
		ids, err := s.searchSvc.RankedIDs(ctx, spec.Filter.Search)
		if err != nil {
			log.Printf("[PostService.List] 相关度检索失败，回退数据库匹配: %v", err)
		} else {
			if ids == nil {
				ids = []uint{}
			}
			spec.Filter.SearchIDs = ids
		}
	}

	posts, err := s.repo.Find(ctx, spec)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, &spec.Filter)
	if err != nil {
		return nil, err
	}

	// 相关度排序由检索器给出名次，数据库不识别 score 字段，在这里按名次重排当前页
	if len(spec.Sort) > 0 && spec.Sort[0].Field == "score" && spec.Filter.SearchIDs != nil {
		sortByRank(posts, spec.Filter.SearchIDs)
	}

	data := make([]model.PostResponse, 0, len(posts))
	for _, p := range posts {
		data = append(data, *s.ToAPIResponse(p, false))
	}
	return &model.PostListResponse{
		Success:    true,
		Count:      len(data),
		Total:      total,
		Pagination: model.BuildPagination(spec.Skip, spec.Limit, total),
		Data:       data,
	}, nil
}

func (s *serviceImpl) ListTags(ctx context.Context) ([]model.TagCount, error) {
	return s.repo.ListTags(ctx)
}

// CheckSlug 检查别名可用性；excludePublicID 非空时排除该文章自身（编辑场景）。
// 别名被占用时给出一个带数字后缀的可用替代。
func (s *serviceImpl) CheckSlug(ctx context.Context, slug, excludePublicID string) (*model.SlugCheckResponse, error) {
	normalized := Slugify(slug)
	if normalized == "" {
		return nil, fmt.Errorf("%w: 别名不含任何合法字符", constant.ErrBadRequest)
	}

	var excludeID uint
	if excludePublicID != "" {
		dbID, err := decodePostID(excludePublicID)
		if err != nil {
			return nil, err
		}
		excludeID = dbID
	}

	taken, err := s.repo.SlugExists(ctx, normalized, excludeID)
	if err != nil {
		return nil, err
	}
	result := &model.SlugCheckResponse{Slug: normalized, Available: !taken}
	if taken {
		for i := 2; ; i++ {
			candidate := fmt.Sprintf("%s-%d", normalized, i)
			occupied, err := s.repo.SlugExists(ctx, candidate, excludeID)
			if err != nil {
				return nil, err
			}
			if !occupied {
				result.Suggestion = candidate
				break
			}
		}
	}
	return result, nil
}

func (s *serviceImpl) Stats(ctx context.Context) (*model.PostStats, error) {
	return s.repo.Stats(ctx)
}

// RebuildSearchIndex 全量重建已发布文章的搜索索引，返回索引的文章数。
func (s *serviceImpl) RebuildSearchIndex(ctx context.Context) (int, error) {
	if !s.searchSvc.Enabled() {
		return 0, nil
	}
	spec := &model.QuerySpec{Page: 1, Limit: 10000, Skip: 0}
	spec.Filter.Status = constant.PostStatusPublished
	posts, err := s.repo.Find(ctx, spec)
	if err != nil {
		return 0, fmt.Errorf("获取待索引文章失败: %w", err)
	}
	if err := s.searchSvc.RebuildIndexes(ctx, posts); err != nil {
		return 0, err
	}
	return len(posts), nil
}

// ToAPIResponse 将领域模型转换为用于API响应的DTO。
func (s *serviceImpl) ToAPIResponse(p *model.Post, includeBlocks bool) *model.PostResponse {
	if p == nil {
		return nil
	}
	publicID, err := idgen.GeneratePublicID(p.ID, idgen.EntityTypePost)
	if err != nil {
		log.Printf("[PostService.ToAPIResponse] 生成公共ID失败 (ID: %d): %v", p.ID, err)
	}

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	resp := &model.PostResponse{
		ID:          publicID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Tags:        tags,
		SEO:         p.SEO,
		Status:      p.Status,
		IsFeatured:  p.IsFeatured,
		CoverImage:  p.CoverImage,
		ViewCount:   p.ViewCount,
		WordCount:   p.WordCount,
		ReadTime:    p.ReadTime,
		PublishedAt: p.PublishedAt,
		ScheduledAt: p.ScheduledAt,
	}
	if includeBlocks {
		resp.Blocks = p.Blocks
		resp.Faqs = p.Faqs
	}
	if p.Category != nil {
		catPublicID, _ := idgen.GeneratePublicID(p.Category.ID, idgen.EntityTypeCategory)
		resp.Category = &model.CategoryResponse{
			ID:        catPublicID,
			CreatedAt: p.Category.CreatedAt,
			UpdatedAt: p.Category.UpdatedAt,
			Name:      p.Category.Name,
			Slug:      p.Category.Slug,
			Color:     p.Category.Color,
			Icon:      p.Category.Icon,
			IsActive:  p.Category.IsActive,
			SortOrder: p.Category.SortOrder,
		}
	}
	if p.Author != nil {
		resp.AuthorName = p.Author.Nickname
	}
	return resp
}

// syncSearchIndex 在写入成功后异步维护搜索索引：
// 已发布文章入索引，其余状态移出索引。失败只记日志，不影响主流程。
func (s *serviceImpl) syncSearchIndex(p *model.Post) {
	if p == nil || !s.searchSvc.Enabled() {
		return
	}
	go func() {
		ctx := context.Background()
		var err error
		if p.Status == constant.PostStatusPublished {
			err = s.searchSvc.IndexPost(ctx, p)
		} else {
			err = s.searchSvc.DeletePost(ctx, p.ID)
		}
		if err != nil {
			log.Printf("[PostService.syncSearchIndex] 维护搜索索引失败 (ID: %d): %v", p.ID, err)
		}
	}()
}

// resolveSlug 确定最终别名：显式提供的别名冲突即报错，
// 自动生成的别名冲突时追加数字后缀直至可用。
func (s *serviceImpl) resolveSlug(ctx context.Context, raw, title string, excludeID uint) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		slug := Slugify(raw)
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

	base := Slugify(title)
	if base == "" {
		base = fmt.Sprintf("post-%d", time.Now().UnixMilli())
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

// resolveCategory 把公共分类 ID 解析并校验为数据库 ID，空值表示不设分类。
func (s *serviceImpl) resolveCategory(ctx context.Context, publicID string) (*uint, error) {
	if publicID == "" {
		return nil, nil
	}
	dbID, entityType, err := idgen.DecodePublicID(publicID)
	if err != nil || entityType != idgen.EntityTypeCategory {
		return nil, fmt.Errorf("%w: 无效的分类ID", constant.ErrBadRequest)
	}
	if _, err := s.categoryRepo.FindByID(ctx, dbID); err != nil {
		if errors.Is(err, constant.ErrNotFound) {
			return nil, fmt.Errorf("%w: 分类不存在", constant.ErrBadRequest)
		}
		return nil, err
	}
	return &dbID, nil
}

func decodePostID(publicID string) (uint, error) {
	dbID, entityType, err := idgen.DecodePublicID(publicID)
	if err != nil || entityType != idgen.EntityTypePost {
		return 0, constant.ErrInvalidPublicID
	}
	return dbID, nil
}

// sortByRank 按检索名次原地重排文章，未出现在名次表中的排在末尾。
func sortByRank(posts []*model.Post, rankedIDs []uint) {
	rank := make(map[uint]int, len(rankedIDs))
	for i, id := range rankedIDs {
		rank[id] = i
	}
	position := func(p *model.Post) int {
		if r, ok := rank[p.ID]; ok {
			return r
		}
		return len(rankedIDs)
	}
	for i := 1; i < len(posts); i++ {
		for j := i; j > 0 && position(posts[j]) < position(posts[j-1]); j-- {
			posts[j], posts[j-1] = posts[j-1], posts[j]
		}
	}
}

// calculatePostStats 从标题、摘要与正文块计算字数和预计阅读时长。
func calculatePostStats(title, excerpt string, blocks []model.ContentBlock) (wordCount, readTime int) {
	content := title + " " + excerpt + " " + render.StripHTML(search.BlockText(blocks))
	chineseCharCount := 0
	for _, r := range content {
		if unicode.Is(unicode.Han, r) {
			chineseCharCount++
		}
	}
	englishWordCount := 0
	for _, field := range strings.Fields(content) {
		hasWordChar := false
		for _, r := range field {
			if !unicode.Is(unicode.Han, r) {
				hasWordChar = true
				break
			}
		}
		if hasWordChar {
			englishWordCount++
		}
	}
	wordCount = chineseCharCount + englishWordCount
	const wordsPerMinute = 200
	if wordCount > 0 {
		readTime = int(math.Ceil(float64(wordCount) / wordsPerMinute))
		if readTime == 0 {
			readTime = 1
		}
	}
	return wordCount, readTime
}

// parseTimestamp 解析写请求中的时间字段，支持 RFC3339 和 2006-01-02。
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
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
