/*
 * @Description: 留言线索仓库的 SQL 实现
 * @Author: 安知鱼
 * @Date: 2025-07-14 15:38:21
 * @LastEditTime: 2025-09-11 10:04:17
 * @LastEditors: 安知鱼
 */
package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anzhiyu-c/anheyu-cms/pkg/constant"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/repository"
)

const contactColumns = `id, created_at, updated_at, name, email, phone, product_question, message,
	status, priority, is_read, assigned_to, notes, replied_at, ip_address, user_agent`

var contactSortColumns = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"updated_at": "updated_at",
	"priority":   "priority",
	"status":     "status",
	"name":       "name",
}

type contactStore struct {
	db      *sql.DB
	dialect string
}

func NewContactStore(db *sql.DB, dialect string) repository.ContactRepository {
	return &contactStore{db: db, dialect: dialect}
}

func (s *contactStore) conds(p *model.Predicate) *condBuilder {
	b := &condBuilder{}
	if p == nil {
		return b
	}
	if p.Status != "" {
		b.add("status = ?", p.Status)
	}
	if p.Priority != "" {
		b.add("priority = ?", p.Priority)
	}
	if p.ProductQuestion != "" {
		b.add("product_question = ?", p.ProductQuestion)
	}
	if p.IsRead != nil {
		b.add("is_read = ?", *p.IsRead)
	}
	if p.AssignedTo != nil {
		b.add("assigned_to = ?", *p.AssignedTo)
	}
	if p.StartDate != nil {
		b.add("created_at >= ?", *p.StartDate)
	}
	if p.EndDate != nil {
		b.add("created_at <= ?", *p.EndDate)
	}
	if p.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(p.Search)) + "%"
		b.add("(LOWER(name) LIKE ?"+likeEscape+" OR LOWER(email) LIKE ?"+likeEscape+
			" OR LOWER(message) LIKE ?"+likeEscape+")",
			pattern, pattern, pattern)
	}
	return b
}

func (s *contactStore) FindByID(ctx context.Context, id uint) (*model.Contact, error) {
	query := rebind(s.dialect, "SELECT "+contactColumns+" FROM contacts WHERE id = ?")
	return scanContact(s.db.QueryRowContext(ctx, query, id))
}

func (s *contactStore) Create(ctx context.Context, contact *model.Contact) (*model.Contact, error) {
	now := time.Now()
	notes, err := json.Marshal([]model.ContactNote{})
	if err != nil {
		return nil, err
	}

	status := contact.Status
	if status == "" {
		status = constant.ContactStatusPending
	}
	priority := contact.Priority
	if priority == "" {
		priority = constant.ContactPriorityMedium
	}

	query := `INSERT INTO contacts (created_at, updated_at, name, email, phone, product_question, message,
		status, priority, is_read, assigned_to, notes, replied_at, ip_address, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := []any{now, now, contact.Name, contact.Email, contact.Phone, contact.ProductQuestion, contact.Message,
		status, priority, false, nullableUint(contact.AssignedTo), string(notes), nil,
		contact.IPAddress, contact.UserAgent}

	var id uint
	if s.dialect == "postgres" {
		err := s.db.QueryRowContext(ctx, rebind(s.dialect, query+" RETURNING id"), args...).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("插入留言失败: %w", err)
		}
	} else {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("插入留言失败: %w", err)
		}
		lastID, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		id = uint(lastID)
	}
	return s.FindByID(ctx, id)
}

func (s *contactStore) Update(ctx context.Context, id uint, req *model.UpdateContactRequest, assigneeID *uint, noteAuthorID uint) (*model.Contact, error) {
	current, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if req.Status != nil {
		set("status", *req.Status)
		// 状态推进到已解决时记录答复时间
		if *req.Status == constant.ContactStatusResolved && current.RepliedAt == nil {
			set("replied_at", time.Now())
		}
	}
	if req.Priority != nil {
		set("priority", *req.Priority)
	}
	if req.IsRead != nil {
		set("is_read", *req.IsRead)
	}
	if req.AssignedTo != nil {
		if assigneeID == nil {
			set("assigned_to", nil)
		} else {
			set("assigned_to", *assigneeID)
		}
	}
	if req.Note != "" {
		notes := append(current.Notes, model.ContactNote{
			Content:   req.Note,
			AuthorID:  noteAuthorID,
			CreatedAt: time.Now(),
		})
		raw, err := json.Marshal(notes)
		if err != nil {
			return nil, fmt.Errorf("序列化备注失败: %w", err)
		}
		set("notes", string(raw))
	}

	if len(sets) > 0 {
		set("updated_at", time.Now())
		query := rebind(s.dialect, "UPDATE contacts SET "+strings.Join(sets, ", ")+" WHERE id = ?")
		args = append(args, id)
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("更新留言失败: %w", err)
		}
	}
	return s.FindByID(ctx, id)
}

func (s *contactStore) Delete(ctx context.Context, id uint) error {
	res, err := s.db.ExecContext(ctx, rebind(s.dialect, "DELETE FROM contacts WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("删除留言失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return constant.ErrNotFound
	}
	return nil
}

func (s *contactStore) MarkRead(ctx context.Context, id uint) error {
	query := rebind(s.dialect, "UPDATE contacts SET is_read = ?, updated_at = ? WHERE id = ?")
	_, err := s.db.ExecContext(ctx, query, true, time.Now(), id)
	return err
}

func (s *contactStore) Find(ctx context.Context, spec *model.QuerySpec) ([]*model.Contact, error) {
	where, args := s.conds(&spec.Filter).where()

	order := orderBy(spec.Sort, contactSortColumns)
	if order == "" {
		order = " ORDER BY created_at DESC"
	}

	query := "SELECT " + contactColumns + " FROM contacts" + where + order + " LIMIT ? OFFSET ?"
	args = append(args, spec.Limit, spec.Skip)

	rows, err := s.db.QueryContext(ctx, rebind(s.dialect, query), args...)
	if err != nil {
		return nil, fmt.Errorf("查询留言列表失败: %w", err)
	}
	defer rows.Close()

	var contacts []*model.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

func (s *contactStore) Count(ctx context.Context, filter *model.Predicate) (int64, error) {
	where, args := s.conds(filter).where()
	var total int64
	query := rebind(s.dialect, "SELECT COUNT(*) FROM contacts"+where)
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("统计留言数量失败: %w", err)
	}
	return total, nil
}

func (s *contactStore) Stats(ctx context.Context) (*model.ContactStats, error) {
	stats := &model.ContactStats{
		ByStatus:   map[string]int64{},
		ByPriority: map[string]int64{},
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts").Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("统计留言总数失败: %w", err)
	}
	query := rebind(s.dialect, "SELECT COUNT(*) FROM contacts WHERE is_read = ?")
	if err := s.db.QueryRowContext(ctx, query, false).Scan(&stats.Unread); err != nil {
		return nil, fmt.Errorf("统计未读留言失败: %w", err)
	}

	for _, group := range []struct {
		col  string
		dest map[string]int64
	}{
		{"status", stats.ByStatus},
		{"priority", stats.ByPriority},
	} {
		rows, err := s.db.QueryContext(ctx,
			fmt.Sprintf("SELECT %s, COUNT(*) FROM contacts GROUP BY %s", group.col, group.col))
		if err != nil {
			return nil, fmt.Errorf("按 %s 聚合留言失败: %w", group.col, err)
		}
		for rows.Next() {
			var key string
			var n int64
			if err := rows.Scan(&key, &n); err != nil {
				rows.Close()
				return nil, err
			}
			group.dest[key] = n
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return stats, nil
}

func scanContact(row rowScanner) (*model.Contact, error) {
	var (
		contact    model.Contact
		notes      string
		assignedTo sql.NullInt64
		repliedAt  sql.NullTime
	)
	err := row.Scan(
		&contact.ID, &contact.CreatedAt, &contact.UpdatedAt, &contact.Name, &contact.Email,
		&contact.Phone, &contact.ProductQuestion, &contact.Message, &contact.Status, &contact.Priority,
		&contact.IsRead, &assignedTo, &notes, &repliedAt, &contact.IPAddress, &contact.UserAgent,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, constant.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("扫描留言行失败: %w", err)
	}

	if notes != "" {
		if err := json.Unmarshal([]byte(notes), &contact.Notes); err != nil {
			return nil, fmt.Errorf("反序列化备注失败: %w", err)
		}
	}
	if assignedTo.Valid {
		id := uint(assignedTo.Int64)
		contact.AssignedTo = &id
	}
	if repliedAt.Valid {
		contact.RepliedAt = &repliedAt.Time
	}
	return &contact, nil
}
