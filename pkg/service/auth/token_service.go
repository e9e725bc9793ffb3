/*
 * @Description: 会话令牌服务
 * @Author: 安知鱼
 * @Date: 2025-06-28 10:40:12
 * @LastEditTime: 2025-09-02 18:30:57
 * @LastEditors: 安知鱼
 */
package auth

import (
	"context"
	"fmt"

	"github.com/anzhiyu-c/anheyu-cms/internal/pkg/auth"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-cms/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-cms/pkg/idgen"
)

type TokenService interface {
	GenerateSessionTokens(ctx context.Context, user *model.User) (accessToken, refreshToken string, expiresAt int64, err error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (accessToken string, expiresAt int64, err error)
	ParseAccessToken(ctx context.Context, accessToken string) (*auth.CustomClaims, error)
}

type tokenService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
}

// NewTokenService 构造函数
func NewTokenService(userRepo repository.UserRepository, jwtSecret string) TokenService {
	return &tokenService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
	}
}

// --- JWT 会话令牌实现 ---

func (s *tokenService) GenerateSessionTokens(ctx context.Context, user *model.User) (string, string, int64, error) {
	if len(s.jwtSecret) == 0 {
		return "", "", 0, fmt.Errorf("JWT Secret 未配置, 无法生成令牌")
	}

	accessToken, err := auth.GenerateToken(user.ID, user.Role, s.jwtSecret)
	if err != nil {
		return "", "", 0, err
	}
	refreshToken, err := auth.GenerateRefreshToken(user.ID, s.jwtSecret)
	if err != nil {
		return "", "", 0, err
	}

	claims, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		return "", "", 0, err
	}
	expiresAt := claims.ExpiresAt.Time.UnixMilli()

	return accessToken, refreshToken, expiresAt, nil
}

func (s *tokenService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, err := auth.ParseToken(refreshToken, s.jwtSecret)
	if err != nil {
		return "", 0, fmt.Errorf("无效或过期的刷新令牌: %w", err)
	}

	// claims.UserID 包含公共用户 ID，需要将其解码为内部数据库 ID，并验证类型
	internalUserID, entityType, err := idgen.DecodePublicID(claims.UserID)
	if err != nil {
		return "", 0, fmt.Errorf("解码公共用户ID失败: %w", err)
	}
	if entityType != idgen.EntityTypeUser {
		return "", 0, fmt.Errorf("令牌中的用户ID类型不匹配")
	}

	user, err := s.userRepo.FindByID(ctx, internalUserID)
	if err != nil || user == nil || !user.IsActive {
		return "", 0, fmt.Errorf("用户不存在或状态异常")
	}

	accessToken, err := auth.GenerateToken(user.ID, user.Role, s.jwtSecret)
	if err != nil {
		return "", 0, err
	}

	newClaims, _ := auth.ParseToken(accessToken, s.jwtSecret)
	expiresAt := newClaims.ExpiresAt.Time.UnixMilli()
	return accessToken, expiresAt, nil
}

func (s *tokenService) ParseAccessToken(ctx context.Context, accessToken string) (*auth.CustomClaims, error) {
	return auth.ParseToken(accessToken, s.jwtSecret)
}
