/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-19 11:10:28
 * @LastEditTime: 2025-09-02 17:30:51
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"

	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
)

// ContactRepository 定义了留言线索数据仓库的接口。
type ContactRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Contact, error)

	Create(ctx context.Context, contact *model.Contact) (*model.Contact, error)

	// Update 根据数据库 ID 应用管理端的部分更新，note 非空时追加一条跟进备注。
	Update(ctx context.Context, id uint, req *model.UpdateContactRequest, assigneeID *uint, noteAuthorID uint) (*model.Contact, error)

	Delete(ctx context.Context, id uint) error

	// MarkRead 将留言标记为已读。
	MarkRead(ctx context.Context, id uint) error

	// Find 根据查询规格分页检索留言列表。
	Find(ctx context.Context, spec *model.QuerySpec) ([]*model.Contact, error)

	Count(ctx context.Context, filter *model.Predicate) (int64, error)

	// Stats 聚合留言的状态/优先级/未读统计。
	Stats(ctx context.Context) (*model.ContactStats, error)
}
