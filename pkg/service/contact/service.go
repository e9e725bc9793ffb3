/*
 * @Description: 留言线索服务
 * @Author: 安知鱼
 * @Date: 2025-06-25 11:08:42
 * @LastEditTime: 2025-09-19 16:02:11
 * @LastEditors: 安知鱼
 */
package contact

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/anzhiyu-c/anheyu-cms/pkg/constant"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-cms/pkg/idgen"
	"github.com/anzhiyu-c/anheyu-cms/pkg/service/query"
	"github.com/anzhiyu-c/anheyu-cms/pkg/service/utility"
)

type Service interface {
	// Submit 处理公开端点提交的留言，ip 与 userAgent 由处理器从请求中提取。
	Submit(ctx context.Context, req *model.CreateContactRequest, ip, userAgent string) (*model.ContactResponse, error)
	Get(ctx context.Context, publicID string) (*model.ContactResponse, error)
	Update(ctx context.Context, publicID string, req *model.UpdateContactRequest, operatorID uint) (*model.ContactResponse, error)
	Delete(ctx context.Context, publicID string) error
	MarkRead(ctx context.Context, publicID string) error
	List(ctx context.Context, params url.Values) (*model.ContactListResponse, error)
	Stats(ctx context.Context) (*model.ContactStats, error)
	// ExportCSV 按当前过滤条件导出全部命中留言为 CSV（UTF-8 带 BOM，便于表格软件识别）。
	ExportCSV(ctx context.Context, params url.Values) ([]byte, error)
}

// exportBatchLimit 一次导出的最大条数上限
const exportBatchLimit = 10000

type serviceImpl struct {
	repo     repository.ContactRepository
	userRepo repository.UserRepository
	composer *query.Composer
	emailSvc utility.EmailService
}

func NewService(
	repo repository.ContactRepository,
	userRepo repository.UserRepository,
	composer *query.Composer,
	emailSvc utility.EmailService,
) Service {
	return &serviceImpl{repo: repo, userRepo: userRepo, composer: composer, emailSvc: emailSvc}
}

// Submit 入库新留言并异步通知站长，通知失败不影响提交结果。
// 咨询类别是闭合枚举，枚举外的值直接拒绝。
func (s *serviceImpl) Submit(ctx context.Context, req *model.CreateContactRequest, ip, userAgent string) (*model.ContactResponse, error) {
	question := strings.TrimSpace(req.ProductQuestion)
	if !constant.ValidContactQuestion(question) {
		return nil, fmt.Errorf("%w: 无效的咨询类别", constant.ErrBadRequest)
	}

	contact := &model.Contact{
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.TrimSpace(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		ProductQuestion: question,
		Message:         req.Message,
		Status:          constant.ContactStatusPending,
		Priority:        constant.ContactPriorityMedium,
		IPAddress:       ip,
		UserAgent:       userAgent,
	}

	created, err := s.repo.Create(ctx, contact)
	if err != nil {
		return nil, err
	}

	if s.emailSvc != nil {
		go func(c *model.Contact) {
			if err := s.emailSvc.SendContactNotification(context.Background(), c); err != nil {
				log.Printf("[ContactService.Submit] 发送留言通知邮件失败: %v", err)
			}
		}(created)
	}

	return s.toAPIResponse(ctx, created), nil
}

func (s *serviceImpl) Get(ctx context.Context, publicID string) (*model.ContactResponse, error) {
	dbID, err := decodeContactID(publicID)
	if err != nil {
		return nil, err
	}
	contact, err := s.repo.FindByID(ctx, dbID)
	if err != nil {
		return nil, err
	}
	return s.toAPIResponse(ctx, contact), nil
}

// Update 管理端更新留言状态、优先级与指派人，note 非空时追加跟进备注。
func (s *serviceImpl) Update(ctx context.Context, publicID string, req *model.UpdateContactRequest, operatorID uint) (*model.ContactResponse, error) {
	dbID, err := decodeContactID(publicID)
	if err != nil {
		return nil, err
	}

	var assigneeID *uint
	if req.AssignedTo != nil && *req.AssignedTo != "" {
		userID, entityType, err := idgen.DecodePublicID(*req.AssignedTo)
		if err != nil || entityType != idgen.EntityTypeUser {
			return nil, fmt.Errorf("%w: 无效的指派人ID", constant.ErrBadRequest)
		}
		if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
			return nil, fmt.Errorf("%w: 指派人不存在", constant.ErrBadRequest)
		}
		assigneeID = &userID
	}

	updated, err := s.repo.Update(ctx, dbID, req, assigneeID, operatorID)
	if err != nil {
		return nil, err
	}
	return s.toAPIResponse(ctx, updated), nil
}

func (s *serviceImpl) Delete(ctx context.Context, publicID string) error {
	dbID, err := decodeContactID(publicID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, dbID)
}

func (s *serviceImpl) MarkRead(ctx context.Context, publicID string) error {
	dbID, err := decodeContactID(publicID)
	if err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, dbID)
}

// List 留言列表查询，仅管理端可用。
func (s *serviceImpl) List(ctx context.Context, params url.Values) (*model.ContactListResponse, error) {
	spec := s.composer.Compose(ctx, query.ResourceContacts, params, true)

	contacts, err := s.repo.Find(ctx, spec)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, &spec.Filter)
	if err != nil {
		return nil, err
	}

	data := make([]model.ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		data = append(data, *s.toAPIResponse(ctx, c))
	}
	return &model.ContactListResponse{
		Success:    true,
		Count:      len(data),
		Total:      total,
		Pagination: model.BuildPagination(spec.Skip, spec.Limit, total),
		Data:       data,
	}, nil
}

func (s *serviceImpl) Stats(ctx context.Context) (*model.ContactStats, error) {
	return s.repo.Stats(ctx)
}

// ExportCSV 复用列表的过滤编排，但忽略分页，整批导出。
func (s *serviceImpl) ExportCSV(ctx context.Context, params url.Values) ([]byte, error) {
	spec := s.composer.Compose(ctx, query.ResourceContacts, params, true)
	spec.Page = 1
	spec.Limit = exportBatchLimit
	spec.Skip = 0

	contacts, err := s.repo.Find(ctx, spec)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("\xEF\xBB\xBF")
	w := csv.NewWriter(&buf)
	header := []string{"ID", "姓名", "邮箱", "电话", "咨询类别", "留言内容", "状态", "优先级", "已读", "指派人", "提交时间"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("写入导出表头失败: %w", err)
	}

	for _, c := range contacts {
		resp := s.toAPIResponse(ctx, c)
		isRead := "否"
		if resp.IsRead {
			isRead = "是"
		}
		row := []string{
			resp.ID, resp.Name, resp.Email, resp.Phone, resp.ProductQuestion, resp.Message,
			resp.Status, resp.Priority, isRead, resp.AssigneeName,
			resp.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("写入导出行失败: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *serviceImpl) toAPIResponse(ctx context.Context, c *model.Contact) *model.ContactResponse {
	if c == nil {
		return nil
	}
	publicID, err := idgen.GeneratePublicID(c.ID, idgen.EntityTypeContact)
	if err != nil {
		log.Printf("[ContactService.toAPIResponse] 生成公共ID失败 (ID: %d): %v", c.ID, err)
	}

	resp := &model.ContactResponse{
		ID:              publicID,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		Name:            c.Name,
		Email:           c.Email,
		Phone:           c.Phone,
		ProductQuestion: c.ProductQuestion,
		Message:         c.Message,
		Status:          c.Status,
		Priority:        c.Priority,
		IsRead:          c.IsRead,
		Notes:           c.Notes,
		RepliedAt:       c.RepliedAt,
	}
	if c.Assignee != nil {
		resp.AssigneeName = c.Assignee.Nickname
	} else if c.AssignedTo != nil {
		if user, err := s.userRepo.FindByID(ctx, *c.AssignedTo); err == nil {
			resp.AssigneeName = user.Nickname
		}
	}
	return resp
}

func decodeContactID(publicID string) (uint, error) {
	dbID, entityType, err := idgen.DecodePublicID(publicID)
	if err != nil || entityType != idgen.EntityTypeContact {
		return 0, constant.ErrInvalidPublicID
	}
	return dbID, nil
}
