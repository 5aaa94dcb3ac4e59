// Package member 成员名录与个人主页
package member

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"club-admin/internal/apiserver/auth"
	"club-admin/internal/model"
	"club-admin/internal/objstore"
	"club-admin/internal/storage"
)

// maxAvatarSize 头像上传大小上限
const maxAvatarSize = 5 << 20 // 5 MiB

// Handler 成员领域 HTTP 处理器
type Handler struct {
	store    storage.UserStore
	uploader objstore.Uploader
	authCfg  auth.Config
}

// NewHandler 创建成员处理器
func NewHandler(store storage.UserStore, uploader objstore.Uploader, authCfg auth.Config) *Handler {
	return &Handler{store: store, uploader: uploader, authCfg: authCfg}
}

// RegisterRoutes 注册成员相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := auth.Require(h.store, h.authCfg)

	mux.HandleFunc("GET /api/v1/members", requireAuth(auth.AdminOnly(h.List)))
	mux.HandleFunc("GET /api/v1/members/{studentId}/profile", requireAuth(h.GetProfile))
	mux.HandleFunc("PATCH /api/v1/members/avatar", requireAuth(h.UpdateAvatar))
}

// List 列出全部成员（脱敏）
// GET /api/v1/members
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		log.Printf("[member] list users error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if users == nil {
		users = []*model.User{}
	}
	for _, u := range users {
		u.PasswordHash = ""
		u.RefreshToken = ""
	}
	writeJSON(w, http.StatusOK, users)
}

// GetProfile 成员主页：资料 + 已发博客数（存储层聚合）
// GET /api/v1/members/{studentId}/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("studentId")

	profile, err := h.store.GetUserProfile(r.Context(), studentID)
	if err != nil {
		log.Printf("[member] get profile error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "member does not exist")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpdateAvatar 上传并更换当前用户头像
// PATCH /api/v1/members/avatar
func (h *Handler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())

	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	key := fmt.Sprintf("avatars/%s%s", user.ID, filepath.Ext(header.Filename))
	url, err := h.uploader.Upload(r.Context(), key, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		log.Printf("[member] upload avatar error: %v", err)
		writeError(w, http.StatusInternalServerError, "avatar upload failed")
		return
	}

	if err := h.store.UpdateUserAvatar(r.Context(), user.ID, url); err != nil {
		log.Printf("[member] update avatar error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user.Avatar = url
	writeJSON(w, http.StatusOK, user)
}
