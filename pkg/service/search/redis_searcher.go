/*
 * @Description: Redis 搜索器实现，包含基于权重的相关度排序和分词逻辑
 * @Author: 安知鱼
 * @Date: 2025-08-30 14:01:22
 * @LastEditTime: 2025-09-15 09:48:33
 * @LastEditors: 安知鱼
 */

package search

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

// Redis Key 前缀和权重常量
const (
	// Redis Key 命名空间前缀
	KeyNamespace = "anheyu:"

	KeyPrefixPost        = KeyNamespace + "search:post:"
	KeyPrefixIndex       = KeyNamespace + "search:index:"
	KeyPrefixWords       = KeyNamespace + "search:words:"
	KeyPrefixResultCache = KeyNamespace + "search:result:"
	ResultCacheTTL       = 10 * time.Minute

	WeightTitle   = 10.0 // 标题权重
	WeightExcerpt = 3.0  // 摘要权重
	WeightContent = 1.0  // 正文权重
)

var reHTMLTags = regexp.MustCompile(`<[^>]*>`)

// RedisSearcher 使用 Redis 实现的搜索器
type RedisSearcher struct {
	client *redis.Client
}

// NewRedisSearcher 使用已有的 Redis 客户端创建搜索器。
// 客户端为 nil 或不可用时返回 nil，由上层降级到数据库匹配。
func NewRedisSearcher(redisClient *redis.Client) *RedisSearcher {
	if redisClient == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  Redis 不可用: %v，搜索功能将降级到数据库模式", err)
		return nil
	}

	return &RedisSearcher{client: redisClient}
}

// tokenize 分词器。规则:
// 1. 文本转为小写。
// 2. 提取所有中文字符作为单个词条（unigram）。
// 3. 提取连续的中文双字组合作为词条（bigram）。
// 4. 提取所有英文单词、数字和包含 `_.-` 的组合（如版本号 "1.18"）作为词条。
func tokenize(text string) []string {
	lowerText := strings.ToLower(text)
	seen := make(map[string]struct{})
	tokens := []string{}

	for _, token := range reAlphanumeric.FindAllString(lowerText, -1) {
		if _, exists := seen[token]; !exists {
			tokens = append(tokens, token)
			seen[token] = struct{}{}
		}
	}

	runes := []rune(lowerText)
	for _, r := range runes {
		if r >= 0x4E00 && r <= 0x9FFF { // 判断是否为中文字符
			char := string(r)
			if _, exists := seen[char]; !exists {
				tokens = append(tokens, char)
				seen[char] = struct{}{}
			}
		}
	}

	for i := 0; i < len(runes)-1; i++ {
		if (runes[i] >= 0x4E00 && runes[i] <= 0x9FFF) && (runes[i+1] >= 0x4E00 && runes[i+1] <= 0x9FFF) {
			bigram := string(runes[i : i+2])
			if _, exists := seen[bigram]; !exists {
				tokens = append(tokens, bigram)
				seen[bigram] = struct{}{}
			}
		}
	}

	return tokens
}

var reAlphanumeric = regexp.MustCompile(`[a-zA-Z0-9_.-]+`)

// RankedIDs 执行搜索，返回按相关度从高到低排列的文章主键。
// 查询无法分词时返回空集合。
func (rs *RedisSearcher) RankedIDs(ctx context.Context, query string) ([]uint, error) {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return []uint{}, nil
	}

	indexKeys := make([]string, len(queryTokens))
	for i, token := range queryTokens {
		indexKeys[i] = KeyPrefixIndex + token
	}

	tempResultKey := KeyPrefixResultCache + uuid.New().String()
	defer rs.client.Del(ctx, tempResultKey) // 确保临时 key 被删除

	// 使用 ZINTERSTORE 计算交集，并把分数相加，权重默认为1
	// 得到的结果是按相关度分数从高到低排序的
	if err := rs.client.ZInterStore(ctx, tempResultKey, &redis.ZStore{
		Keys:      indexKeys,
		Aggregate: "SUM",
	}).Err(); err != nil {
		return nil, fmt.Errorf("计算搜索结果交集失败: %w", err)
	}
	rs.client.Expire(ctx, tempResultKey, ResultCacheTTL)

	members, err := rs.client.ZRevRange(ctx, tempResultKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("获取搜索结果失败: %w", err)
	}

	ids := make([]uint, 0, len(members))
	for _, member := range members {
		if id, err := strconv.ParseUint(member, 10, 64); err == nil {
			ids = append(ids, uint(id))
		}
	}
	return ids, nil
}

// IndexPost 索引文章，带有权重
func (rs *RedisSearcher) IndexPost(ctx context.Context, post *model.Post) error {
	member := strconv.FormatUint(uint64(post.ID), 10)
	postKey := KeyPrefixPost + member
	wordsKey := KeyPrefixWords + member
	pipe := rs.client.Pipeline()

	// 1. 清理旧的索引
	oldWords, _ := rs.client.SMembers(ctx, wordsKey).Result()
	for _, word := range oldWords {
		pipe.ZRem(ctx, KeyPrefixIndex+word, member)
	}
	pipe.Del(ctx, wordsKey)

	// 2. 记录可直接展示的文章元信息
	postData := map[string]interface{}{
		"id":           post.ID,
		"title":        post.Title,
		"slug":         post.Slug,
		"excerpt":      post.Excerpt,
		"publish_date": post.CreatedAt.Format(time.RFC3339),
		"view_count":   post.ViewCount,
		"status":       post.Status,
	}
	if post.PublishedAt != nil {
		postData["publish_date"] = post.PublishedAt.Format(time.RFC3339)
	}
	if len(post.Tags) > 0 {
		postData["tags"] = strings.Join(post.Tags, ",")
	}
	pipe.HSet(ctx, postKey, postData)

	// 3. 创建新的加权索引
	tokensWithWeights := make(map[string]float64)

	for _, token := range tokenize(post.Title) {
		tokensWithWeights[token] = WeightTitle
	}
	for _, token := range tokenize(post.Excerpt) {
		if _, exists := tokensWithWeights[token]; !exists {
			tokensWithWeights[token] = WeightExcerpt
		}
	}
	// 正文取各内容块的纯文本，权重最低（已在标题或摘要中出现的词条不覆盖）
	cleanContent := reHTMLTags.ReplaceAllString(BlockText(post.Blocks), " ")
	for _, token := range tokenize(cleanContent) {
		if _, exists := tokensWithWeights[token]; !exists {
			tokensWithWeights[token] = WeightContent
		}
	}

	newWords := make([]interface{}, 0, len(tokensWithWeights))
	for token, weight := range tokensWithWeights {
		newWords = append(newWords, token)
		pipe.ZAdd(ctx, KeyPrefixIndex+token, redis.Z{Score: weight, Member: member})
	}
	if len(newWords) > 0 {
		pipe.SAdd(ctx, wordsKey, newWords...)
	}

	// 4. 执行 pipeline
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("索引文章 %d 失败: %w", post.ID, err)
	}

	return nil
}

// DeletePost 删除文章索引
func (rs *RedisSearcher) DeletePost(ctx context.Context, postID uint) error {
	member := strconv.FormatUint(uint64(postID), 10)
	pipe := rs.client.Pipeline()

	pipe.Del(ctx, KeyPrefixPost+member)

	wordsKey := KeyPrefixWords + member
	words, err := rs.client.SMembers(ctx, wordsKey).Result()
	if err != nil && err != redis.Nil {
		log.Printf("警告: 获取文章 %d 的旧索引词失败: %v", postID, err)
	}
	for _, word := range words {
		pipe.ZRem(ctx, KeyPrefixIndex+word, member)
	}
	pipe.Del(ctx, wordsKey)

	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("删除文章索引 %d 失败: %w", postID, err)
	}
	return nil
}

// HealthCheck 健康检查
func (rs *RedisSearcher) HealthCheck(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}
