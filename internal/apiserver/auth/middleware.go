package auth

import (
	"log"
	"net/http"
	"strings"
)

// ExtractAccessToken 从请求提取访问令牌：Cookie 优先，其次 Authorization 头
func ExtractAccessToken(r *http.Request) string {
	if c, err := r.Cookie(CookieAccessToken); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// Require JWT 认证中间件
//
// 验签后还会回查用户是否仍然存在（已删除账号的未过期令牌无效），
// 并把脱敏后的用户注入 context。
func Require(store UserStore, cfg Config) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := ExtractAccessToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized request")
				return
			}

			claims, err := ParseToken(cfg, token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if claims.Type != "access" {
				writeError(w, http.StatusUnauthorized, "invalid token type")
				return
			}

			user, err := store.GetUserByID(r.Context(), claims.Subject)
			if err != nil {
				log.Printf("[auth] resolve user error: %v", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if user == nil {
				writeError(w, http.StatusUnauthorized, "invalid access token")
				return
			}

			// 下游只见脱敏投影
			user.PasswordHash = ""
			user.RefreshToken = ""

			next(w, r.WithContext(WithAuthUser(r.Context(), user)))
		}
	}
}

// AdminOnly 管理员专属路由中间件（在 Require 之后）
func AdminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := GetAuthUser(r.Context())
		if user == nil || user.Role != "admin" {
			writeError(w, http.StatusForbidden, "access denied: admins only")
			return
		}
		next(w, r)
	}
}

// GuestOnly 访客专属中间件：拒绝已认证的调用方
//
// 只有能验签通过的令牌才算"已认证"；没有令牌、或令牌格式错误/
// 过期，都按未认证放行。不因验签抛错而整体放行。
func GuestOnly(cfg Config) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := ExtractAccessToken(r)
			if token != "" {
				if claims, err := ParseToken(cfg, token); err == nil && claims.Type == "access" {
					writeError(w, http.StatusForbidden, "invalid access")
					return
				}
			}
			next(w, r)
		}
	}
}
