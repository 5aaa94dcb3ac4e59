package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"club-admin/internal/model"
	"club-admin/internal/storage"
)

// Cookie 名称
const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
)

// UserStore 会话管理需要的用户存储子集
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	FindUserByIdentity(ctx context.Context, email, studentID string) (*model.User, error)
	UpdateUserRefreshToken(ctx context.Context, id, token string) error
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
}

// Sessions 会话管理器：签发、轮换、注销令牌对
//
// 每个用户同一时刻只有一个有效刷新令牌（保存在用户文档上），
// 签发新对即作废旧令牌。
type Sessions struct {
	store UserStore
	cfg   Config
}

// NewSessions 创建会话管理器
func NewSessions(store UserStore, cfg Config) *Sessions {
	return &Sessions{store: store, cfg: cfg}
}

// ErrTokenReused 刷新令牌与当前存储值不符：已被轮换作废或已注销
var ErrTokenReused = errors.New("refresh token is expired or used")

// Issue 为已验证的用户签发令牌对，并把新刷新令牌持久化到用户文档
// （副作用：该用户之前签发的刷新令牌即刻失效，即使未过期）
func (s *Sessions) Issue(ctx context.Context, user *model.User) (accessToken, refreshToken string, err error) {
	accessToken, err = GenerateAccessToken(s.cfg, user)
	if err != nil {
		return "", "", fmt.Errorf("generate access token: %w", err)
	}
	refreshToken, err = GenerateRefreshToken(s.cfg, user.ID)
	if err != nil {
		return "", "", fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.store.UpdateUserRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return "", "", fmt.Errorf("persist refresh token: %w", err)
	}
	return accessToken, refreshToken, nil
}

// Rotate 校验并轮换刷新令牌
//
// 流程：验签验期 → 解析用户 → 与存储的当前令牌逐字比对（检测重放）
// → 签发新对。任何一步失败都不产生副作用。
func (s *Sessions) Rotate(ctx context.Context, presented string) (user *model.User, accessToken, refreshToken string, err error) {
	claims, err := ParseToken(s.cfg, presented)
	if err != nil {
		return nil, "", "", fmt.Errorf("invalid refresh token: %w", err)
	}
	if claims.Type != "refresh" {
		return nil, "", "", errors.New("invalid token type")
	}

	user, err = s.store.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, "", "", fmt.Errorf("resolve user: %w", err)
	}
	if user == nil {
		return nil, "", "", errors.New("user not found")
	}

	// 逐字比对：被新对覆盖过的旧令牌在这里被拒绝（重放检测）
	if user.RefreshToken != presented {
		return nil, "", "", ErrTokenReused
	}

	accessToken, refreshToken, err = s.Issue(ctx, user)
	if err != nil {
		return nil, "", "", err
	}
	return user, accessToken, refreshToken, nil
}

// Revoke 清除用户的刷新令牌（注销）。幂等：重复调用不报错。
func (s *Sessions) Revoke(ctx context.Context, userID string) error {
	err := s.store.UpdateUserRefreshToken(ctx, userID, "")
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}

// ============================================================================
// Cookie 辅助函数
// ============================================================================

// SetAuthCookies 写入 HttpOnly+Secure 的令牌 Cookie
func SetAuthCookies(w http.ResponseWriter, cfg Config, accessToken, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieAccessToken,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(cfg.AccessTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CookieRefreshToken,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(cfg.RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearAuthCookies 清除令牌 Cookie
func ClearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{CookieAccessToken, CookieRefreshToken} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
