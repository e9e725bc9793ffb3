/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-19 11:14:55
 * @LastEditTime: 2025-08-11 16:02:40
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"
	"time"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

// UserRepository 定义了后台用户数据仓库的接口。
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)

	FindByUsername(ctx context.Context, username string) (*model.User, error)

	Create(ctx context.Context, user *model.User) (*model.User, error)

	// UpdateLastLogin 记录最近一次登录时间。
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error

	// UpdatePassword 更新密码哈希。
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error

	// Count 统计用户总数，用于首次启动时判断是否需要初始化管理员。
	Count(ctx context.Context) (int64, error)
}
