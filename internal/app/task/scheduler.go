/*
 * @Description: 定时任务调度器
 * @Author: 安知鱼
 * @Date: 2025-07-12 16:09:46
 * @LastEditTime: 2025-09-21 09:45:12
 * @LastEditors: 安知鱼
 */
package task

import (
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Scheduler 封装了 cron 实例和其依赖。
// 它是整个定时任务模块的核心协调者，负责任务的注册、启动和停止。
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	publishJob *ScheduledPublishJob
	reindexJob *SearchReindexJob
}

// NewScheduler 是 Scheduler 的构造函数。
func NewScheduler(publishJob *ScheduledPublishJob, reindexJob *SearchReindexJob) *Scheduler {
	slogHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(slogHandler).With("system", "cron")

	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(
			newPanicRecoveryWrapper(logger),
			newLoggingWrapper(logger),
			cron.DelayIfStillRunning(cron.DefaultLogger),
		),
	)

	return &Scheduler{
		cron:       c,
		logger:     logger,
		publishJob: publishJob,
		reindexJob: reindexJob,
	}
}

// RegisterJobs 在调度器中注册所有定义好的定时任务。
func (s *Scheduler) RegisterJobs() {
	s.logger.Info("Registering all periodic jobs...")

	// --- 任务1: 每分钟检查一次到期的定时发布文章 ---
	if _, err := s.cron.AddJob("0 * * * * *", s.publishJob); err != nil {
		s.logger.Error("Failed to add 'ScheduledPublishJob'", slog.Any("error", err))
		os.Exit(1)
	}
	s.logger.Info("-> Successfully registered 'ScheduledPublishJob'", "schedule", "every minute")

	// --- 任务2: 每天凌晨重建搜索索引，修正漂移 ---
	if s.reindexJob != nil {
		if _, err := s.cron.AddJob("0 0 4 * * *", s.reindexJob); err != nil {
			s.logger.Error("Failed to add 'SearchReindexJob'", slog.Any("error", err))
			os.Exit(1)
		}
		s.logger.Info("-> Successfully registered 'SearchReindexJob'", "schedule", "every day at 4:00:00 AM")
	}

	s.logger.Info("All periodic jobs registered.")
}

// Start 启动 cron 调度器。
func (s *Scheduler) Start() {
	s.logger.Info("Cron scheduler started.")
	s.cron.Start()
}

// Stop 优雅地停止 cron 调度器。
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron scheduler gracefully stopped.")
}

// newLoggingWrapper 为每次任务执行记录开始/结束日志，并附带唯一的执行ID。
func newLoggingWrapper(logger *slog.Logger) cron.JobWrapper {
	return func(j cron.Job) cron.Job {
		return cron.FuncJob(func() {
			jobLogger := logger.With(
				slog.String("job_name", jobName(j)),
				slog.String("execution_id", uuid.New().String()),
			)

			startTime := time.Now()
			jobLogger.Info("Job execution started")
			j.Run()
			jobLogger.Info("Job execution finished", slog.Duration("duration", time.Since(startTime)))
		})
	}
}

// newPanicRecoveryWrapper 捕获任务中的 panic，记录堆栈但不使进程崩溃。
func newPanicRecoveryWrapper(logger *slog.Logger) cron.JobWrapper {
	return func(j cron.Job) cron.Job {
		return cron.FuncJob(func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Job panicked",
						slog.String("job_name", jobName(j)),
						slog.Any("panic", r),
						slog.String("stack_trace", string(debug.Stack())),
					)
				}
			}()
			j.Run()
		})
	}
}

func jobName(j cron.Job) string {
	if namedJob, ok := j.(interface{ Name() string }); ok {
		return namedJob.Name()
	}
	return "unknown"
}
