/*
 * @Description: 后台用户仓库的 SQL 实现
 * @Author: 安知鱼
 * @Date: 2025-07-14 16:10:48
 * @LastEditTime: 2025-08-25 11:31:26
 * @LastEditors: 安知鱼
 */
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/anzhiyu-c/anheyu-cms/pkg/constant"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/repository"
)

const userColumns = `id, created_at, updated_at, username, nickname, email, password_hash, role, last_login_at, is_active`

type userStore struct {
	db      *sql.DB
	dialect string
}

func NewUserStore(db *sql.DB, dialect string) repository.UserRepository {
	return &userStore{db: db, dialect: dialect}
}

func (s *userStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	query := rebind(s.dialect, "SELECT "+userColumns+" FROM users WHERE id = ?")
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *userStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := rebind(s.dialect, "SELECT "+userColumns+" FROM users WHERE username = ?")
	return scanUser(s.db.QueryRowContext(ctx, query, username))
}

func (s *userStore) Create(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	query := `INSERT INTO users (created_at, updated_at, username, nickname, email, password_hash, role, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	args := []any{now, now, user.Username, user.Nickname, user.Email, user.PasswordHash, user.Role, user.IsActive}

	var id uint
	if s.dialect == "postgres" {
		err := s.db.QueryRowContext(ctx, rebind(s.dialect, query+" RETURNING id"), args...).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("插入用户失败: %w", err)
		}
	} else {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("插入用户失败: %w", err)
		}
		lastID, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		id = uint(lastID)
	}
	return s.FindByID(ctx, id)
}

func (s *userStore) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	query := rebind(s.dialect, "UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?")
	_, err := s.db.ExecContext(ctx, query, at, time.Now(), id)
	return err
}

func (s *userStore) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	query := rebind(s.dialect, "UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?")
	_, err := s.db.ExecContext(ctx, query, passwordHash, time.Now(), id)
	return err
}

func (s *userStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("统计用户数量失败: %w", err)
	}
	return n, nil
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		user        model.User
		lastLoginAt sql.NullTime
	)
	err := row.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt, &user.Username, &user.Nickname,
		&user.Email, &user.PasswordHash, &user.Role, &lastLoginAt, &user.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, constant.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("扫描用户行失败: %w", err)
	}
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}
	return &user, nil
}
