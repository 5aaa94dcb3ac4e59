package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"club-admin/internal/model"
	"club-admin/internal/storage"
)

// Handler 认证领域 HTTP 处理器
type Handler struct {
	store    storage.UserStore
	sessions *Sessions
	cfg      Config
}

// NewHandler 创建认证处理器
func NewHandler(store storage.UserStore, cfg Config) *Handler {
	return &Handler{
		store:    store,
		sessions: NewSessions(store, cfg),
		cfg:      cfg,
	}
}

// RegisterRoutes 注册认证相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := Require(h.store, h.cfg)
	mux.HandleFunc("POST /api/v1/auth/login", h.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", h.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", requireAuth(h.Logout))
	mux.HandleFunc("GET /api/v1/auth/me", requireAuth(h.Me))
	mux.HandleFunc("PATCH /api/v1/auth/password", requireAuth(h.ChangePassword))
}

// ============================================================================
// 请求/响应类型
// ============================================================================

// LoginRequest 登录请求体：学号或邮箱二选一
type LoginRequest struct {
	StudentID string `json:"student_id"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginResponse 登录/刷新响应体
type LoginResponse struct {
	User         *model.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

// ChangePasswordRequest 改密请求体
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ============================================================================
// HTTP 处理函数
// ============================================================================

// Login 登录
// POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StudentID == "" && req.Email == "" {
		writeError(w, http.StatusBadRequest, "student_id or email is required")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}

	user, err := h.store.FindUserByIdentity(r.Context(), req.Email, req.StudentID)
	if err != nil {
		log.Printf("[auth] login lookup error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user does not exist")
		return
	}
	if !CheckPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid user credentials")
		return
	}

	accessToken, refreshToken, err := h.sessions.Issue(r.Context(), user)
	if err != nil {
		log.Printf("[auth] issue tokens error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user.PasswordHash = ""
	user.RefreshToken = ""
	SetAuthCookies(w, h.cfg, accessToken, refreshToken)
	writeJSON(w, http.StatusOK, LoginResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// Refresh 轮换令牌对
// POST /api/v1/auth/refresh
//
// 刷新令牌取自 Cookie，其次请求体。任何校验失败统一 401。
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var presented string
	if c, err := r.Cookie(CookieRefreshToken); err == nil && c.Value != "" {
		presented = c.Value
	} else {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			presented = body.RefreshToken
		}
	}
	if presented == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	user, accessToken, refreshToken, err := h.sessions.Rotate(r.Context(), presented)
	if err != nil {
		if errors.Is(err, ErrTokenReused) {
			writeError(w, http.StatusUnauthorized, ErrTokenReused.Error())
			return
		}
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	user.PasswordHash = ""
	user.RefreshToken = ""
	SetAuthCookies(w, h.cfg, accessToken, refreshToken)
	writeJSON(w, http.StatusOK, LoginResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// Logout 注销
// POST /api/v1/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	user := GetAuthUser(r.Context())
	if err := h.sessions.Revoke(r.Context(), user.ID); err != nil {
		log.Printf("[auth] revoke session error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	ClearAuthCookies(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// Me 返回当前用户
// GET /api/v1/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GetAuthUser(r.Context()))
}

// ChangePassword 修改密码
// PATCH /api/v1/auth/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.NewPassword) < 8 {
		writeError(w, http.StatusBadRequest, "new password must be at least 8 characters")
		return
	}

	authUser := GetAuthUser(r.Context())

	// context 中的用户已脱敏，回查完整文档核对旧密码
	user, err := h.store.GetUserByID(r.Context(), authUser.ID)
	if err != nil || user == nil {
		log.Printf("[auth] change password lookup error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !CheckPassword(req.OldPassword, user.PasswordHash) {
		writeError(w, http.StatusBadRequest, "invalid old password")
		return
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		log.Printf("[auth] hash password error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.store.UpdateUserPassword(r.Context(), user.ID, hash); err != nil {
		log.Printf("[auth] update password error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password changed successfully"})
}

// ============================================================================
// 启动引导
// ============================================================================

// EnsureAdminUser 保证存在初始管理员账号（从环境配置引导）
//
// 邮箱或密码未配置时跳过；账号已存在时不做任何修改。
func EnsureAdminUser(ctx context.Context, store storage.UserStore, email, password string) error {
	if email == "" || password == "" {
		log.Printf("[auth] admin bootstrap skipped: credentials not configured")
		return nil
	}

	existing, err := store.FindUserByIdentity(ctx, email, "")
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now()
	admin := &model.User{
		ID:           generateID("user"),
		Email:        email,
		FullName:     "Administrator",
		StudentID:    "admin",
		CodeforcesID: "admin",
		Session:      "N/A",
		Department:   "N/A",
		PasswordHash: hash,
		Role:         model.UserRoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.CreateUser(ctx, admin); err != nil {
		return err
	}
	log.Printf("[auth] admin user created: %s", email)
	return nil
}
