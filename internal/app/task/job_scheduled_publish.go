/*
 * @Description: 定时发布文章任务
 * @Author: 安知鱼
 * @Date: 2025-08-02 20:15:08
 * @LastEditTime: 2025-09-21 10:03:56
 * @LastEditors: 安知鱼
 */
package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-cms/pkg/service/post"
)

// ScheduledPublishJob 每分钟执行一次，把计划发布时间已到的草稿置为已发布。
type ScheduledPublishJob struct {
	postRepo repository.PostRepository
	postSvc  post.Service
	logger   *slog.Logger
}

// NewScheduledPublishJob 创建定时发布任务实例，logger 为 nil 时使用默认 logger。
func NewScheduledPublishJob(postRepo repository.PostRepository, postSvc post.Service, logger *slog.Logger) *ScheduledPublishJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduledPublishJob{
		postRepo: postRepo,
		postSvc:  postSvc,
		logger:   logger,
	}
}

// Name 返回任务名称
func (j *ScheduledPublishJob) Name() string {
	return "ScheduledPublishJob"
}

// Run 执行定时发布检查
func (j *ScheduledPublishJob) Run() {
	ctx := context.Background()
	now := time.Now()

	published, err := j.postRepo.PublishDue(ctx, now)
	if err != nil {
		j.logger.Error("定时发布检查失败", slog.Any("error", err))
		return
	}
	if published == 0 {
		return
	}

	j.logger.Info("定时文章发布完成", slog.Int64("count", published))

	// 批量发布绕过了单篇写路径，这里整体重建索引保证检索可见
	if count, err := j.postSvc.RebuildSearchIndex(ctx); err != nil {
		j.logger.Warn("发布后重建搜索索引失败", slog.Any("error", err))
	} else if count > 0 {
		j.logger.Info("搜索索引已更新", slog.Int("indexed", count))
	}
}

// SearchReindexJob 定期全量重建搜索索引，修正增量维护产生的漂移。
type SearchReindexJob struct {
	postSvc post.Service
	logger  *slog.Logger
}

// NewSearchReindexJob 创建索引重建任务实例，logger 为 nil 时使用默认 logger。
func NewSearchReindexJob(postSvc post.Service, logger *slog.Logger) *SearchReindexJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchReindexJob{postSvc: postSvc, logger: logger}
}

// Name 返回任务名称
func (j *SearchReindexJob) Name() string {
	return "SearchReindexJob"
}

// Run 执行索引重建
func (j *SearchReindexJob) Run() {
	count, err := j.postSvc.RebuildSearchIndex(context.Background())
	if err != nil {
		j.logger.Error("重建搜索索引失败", slog.Any("error", err))
		return
	}
	j.logger.Info("搜索索引重建完成", slog.Int("indexed", count))
}
