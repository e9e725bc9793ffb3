/*
 * @Description: 搜索服务 - 自动降级的检索入口
 * @Author: 安知鱼
 * @Date: 2025-07-16 10:14:55
 * @LastEditTime: 2025-09-15 10:06:21
 * @LastEditors: 安知鱼
 */
package search

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

// SearchService 是文章检索的统一入口。
// Redis 可用时用加权倒排索引求相关度排名；不可用时 Enabled 返回 false，
// 由查询层退化为数据库的 LIKE 匹配。
type SearchService struct {
	searcher *RedisSearcher
}

// NewSearchService 创建搜索服务实例（redisClient 允许为 nil）
func NewSearchService(redisClient *redis.Client) *SearchService {
	searcher := NewRedisSearcher(redisClient)
	if searcher != nil {
		log.Println("✅ Redis 搜索模式已启用")
	} else {
		log.Println("✅ 数据库搜索模式已启用（降级方案）")
	}
	return &SearchService{searcher: searcher}
}

// Enabled 相关度检索是否可用
func (s *SearchService) Enabled() bool {
	return s.searcher != nil
}

// RankedIDs 返回按相关度降序排列的文章主键集合。
// 检索不可用时返回错误，调用方应先用 Enabled 判断。
func (s *SearchService) RankedIDs(ctx context.Context, query string) ([]uint, error) {
	if s.searcher == nil {
		return nil, fmt.Errorf("搜索引擎未初始化")
	}
	return s.searcher.RankedIDs(ctx, query)
}

// IndexPost 索引文章
func (s *SearchService) IndexPost(ctx context.Context, post *model.Post) error {
	if s.searcher == nil {
		return nil // 返回 nil 而不是错误，避免影响主流程
	}
	return s.searcher.IndexPost(ctx, post)
}

// DeletePost 删除文章索引
func (s *SearchService) DeletePost(ctx context.Context, postID uint) error {
	if s.searcher == nil {
		return nil
	}
	return s.searcher.DeletePost(ctx, postID)
}

// RebuildIndexes 清空并重建全部文章索引
func (s *SearchService) RebuildIndexes(ctx context.Context, posts []*model.Post) error {
	if s.searcher == nil {
		return nil
	}

	log.Println("开始重建搜索索引...")
	pattern := KeyNamespace + "search:*"
	keys, err := s.searcher.client.Keys(ctx, pattern).Result()
	if err != nil {
		return fmt.Errorf("获取搜索索引键失败: %w", err)
	}
	if len(keys) > 0 {
		pipe := s.searcher.client.Pipeline()
		for _, key := range keys {
			pipe.Del(ctx, key)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("删除搜索索引失败: %w", err)
		}
		log.Printf("已清理 %d 个搜索索引键", len(keys))
	}

	for _, post := range posts {
		if err := s.searcher.IndexPost(ctx, post); err != nil {
			log.Printf("警告: 索引文章 %d 失败: %v", post.ID, err)
		}
	}
	log.Printf("✅ 搜索索引重建完成，共 %d 篇文章", len(posts))
	return nil
}

// BlockText 提取内容块序列的纯文本，供索引和字数统计使用。
func BlockText(blocks []model.ContentBlock) string {
	var sb strings.Builder
	for _, block := range blocks {
		if block.Data == nil {
			continue
		}
		if content, ok := block.Data["content"].(string); ok {
			sb.WriteString(content)
			sb.WriteString(" ")
		}
		switch items := block.Data["items"].(type) {
		case []string:
			for _, item := range items {
				sb.WriteString(item)
				sb.WriteString(" ")
			}
		case []any:
			for _, item := range items {
				if s, ok := item.(string); ok {
					sb.WriteString(s)
					sb.WriteString(" ")
				}
			}
		}
	}
	return strings.TrimSpace(sb.String())
}
