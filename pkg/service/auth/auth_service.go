/*
 * @Description: 后台账户认证服务
 * @Author: 安知鱼
 * @Date: 2025-06-28 11:18:33
 * @LastEditTime: 2025-09-20 10:44:21
 * @LastEditors: 安知鱼
 */
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anzhiyu-c/anheyu-cms/internal/pkg/security"
	"github.com/anzhiyu-c/anheyu-cms/pkg/constant"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-cms/pkg/idgen"
)

type AuthService interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, expiresAt int64, err error)
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	GetUser(ctx context.Context, userID uint) (*model.UserResponse, error)
	// EnsureInitialAdmin 在用户表为空时创建初始管理员，返回生成的明文密码（仅打印一次）。
	EnsureInitialAdmin(ctx context.Context) error
}

type authService struct {
	userRepo repository.UserRepository
	tokenSvc TokenService
}

func NewAuthService(userRepo repository.UserRepository, tokenSvc TokenService) AuthService {
	return &authService{userRepo: userRepo, tokenSvc: tokenSvc}
}

// Login 实现了后台登录的完整业务逻辑
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, constant.ErrNotFound) {
			return nil, fmt.Errorf("%w: 账号或密码错误", constant.ErrUnauthorized)
		}
		return nil, fmt.Errorf("数据库查询失败: %w", err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: 您的账户已被停用，请联系管理员", constant.ErrForbidden)
	}
	if !security.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: 账号或密码错误", constant.ErrUnauthorized)
	}

	accessToken, refreshToken, expiresAt, err := s.tokenSvc.GenerateSessionTokens(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("生成会话令牌失败: %w", err)
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		log.Printf("警告: 更新用户 '%s' 的最后登录时间失败: %v", user.Username, err)
	}
	user.LastLoginAt = &now

	return &model.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Expires:      expiresAt,
		User:         *toUserResponse(user),
	}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	return s.tokenSvc.RefreshAccessToken(ctx, refreshToken)
}

func (s *authService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: 新密码长度不能少于8个字符", constant.ErrBadRequest)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !security.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return fmt.Errorf("%w: 原密码错误", constant.ErrForbidden)
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("密码加密失败: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, hash)
}

func (s *authService) GetUser(ctx context.Context, userID uint) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// EnsureInitialAdmin 首次启动时初始化管理员账户。
// 随机密码只在日志里出现一次，管理员登录后应立即修改。
func (s *authService) EnsureInitialAdmin(ctx context.Context) error {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("统计用户数量失败: %w", err)
	}
	if count > 0 {
		return nil
	}

	raw := make([]byte, 8)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("生成初始密码失败: %w", err)
	}
	password := hex.EncodeToString(raw)

	hash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("密码加密失败: %w", err)
	}

	admin, err := s.userRepo.Create(ctx, &model.User{
		Username:     "admin",
		Nickname:     "管理员",
		PasswordHash: hash,
		Role:         "admin",
		IsActive:     true,
	})
	if err != nil {
		return fmt.Errorf("创建初始管理员失败: %w", err)
	}

	log.Printf("========================================================")
	log.Printf("✅ 已创建初始管理员账户")
	log.Printf("   用户名: %s", admin.Username)
	log.Printf("   密  码: %s", password)
	log.Printf("   请登录后立即修改密码。")
	log.Printf("========================================================")
	return nil
}

func toUserResponse(u *model.User) *model.UserResponse {
	publicID, err := idgen.GeneratePublicID(u.ID, idgen.EntityTypeUser)
	if err != nil {
		log.Printf("[AuthService.toUserResponse] 生成公共ID失败 (ID: %d): %v", u.ID, err)
	}
	return &model.UserResponse{
		ID:          publicID,
		Username:    u.Username,
		Nickname:    u.Nickname,
		Email:       u.Email,
		Role:        u.Role,
		LastLoginAt: u.LastLoginAt,
	}
}
