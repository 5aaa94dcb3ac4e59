// Package team 团队名录管理
package team

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"club-admin/internal/apiserver/auth"
	"club-admin/internal/model"
	"club-admin/internal/objstore"
	"club-admin/internal/storage"
)

// maxUploadSize 名录表单（含头像）大小上限
const maxUploadSize = 5 << 20 // 5 MiB

// Store 团队名录需要的存储子集
type Store interface {
	storage.UserStore
	storage.TeamStore
}

// Handler 团队领域 HTTP 处理器
type Handler struct {
	store    Store
	uploader objstore.Uploader
	authCfg  auth.Config
}

// NewHandler 创建团队处理器
func NewHandler(store Store, uploader objstore.Uploader, authCfg auth.Config) *Handler {
	return &Handler{store: store, uploader: uploader, authCfg: authCfg}
}

// RegisterRoutes 注册团队相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := auth.Require(h.store, h.authCfg)

	mux.HandleFunc("GET /api/v1/team", h.List)
	mux.HandleFunc("POST /api/v1/team", requireAuth(auth.AdminOnly(h.Create)))
	mux.HandleFunc("PATCH /api/v1/team/{id}", requireAuth(auth.AdminOnly(h.Edit)))
}

// EditRequest 编辑名录条目请求体
type EditRequest struct {
	FullName string         `json:"full_name"`
	Position string         `json:"position"`
	Session  string         `json:"session"`
	IsAlumni bool           `json:"is_alumni"`
	IsEC     bool           `json:"is_ec"`
	Team     model.TeamName `json:"team"`
}

// parseBoolFilter 解析查询参数里的布尔过滤条件（缺省为 nil 不过滤）
func parseBoolFilter(value string) *bool {
	switch value {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}

// List 按条件查询名录
// GET /api/v1/team?isEC=&isAlumni=&team=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.TeamFilter{
		IsEC:     parseBoolFilter(q.Get("isEC")),
		IsAlumni: parseBoolFilter(q.Get("isAlumni")),
		Team:     model.TeamName(q.Get("team")),
	}
	if !model.ValidTeamName(filter.Team) {
		writeError(w, http.StatusBadRequest, "invalid team name")
		return
	}

	members, err := h.store.ListTeamMembers(r.Context(), filter)
	if err != nil {
		log.Printf("[team] list error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if len(members) == 0 {
		writeError(w, http.StatusNotFound, "no matching team members found")
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// Create 录入名录条目（multipart：fullName/session/avatar 必填）
// POST /api/v1/team
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	fullName := strings.TrimSpace(r.FormValue("fullName"))
	session := strings.TrimSpace(r.FormValue("session"))
	file, header, err := r.FormFile("avatar")
	if fullName == "" || session == "" || err != nil {
		writeError(w, http.StatusBadRequest, "all fields are required, including the avatar")
		return
	}
	defer file.Close()

	teamName := model.TeamName(r.FormValue("team"))
	if !model.ValidTeamName(teamName) {
		writeError(w, http.StatusBadRequest, "invalid team name")
		return
	}

	id := generateID("team")
	key := fmt.Sprintf("team/%s%s", id, filepath.Ext(header.Filename))
	avatarURL, err := h.uploader.Upload(r.Context(), key, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		log.Printf("[team] upload avatar error: %v", err)
		writeError(w, http.StatusInternalServerError, "avatar upload failed")
		return
	}

	now := time.Now()
	member := &model.TeamMember{
		ID:        id,
		FullName:  fullName,
		Position:  r.FormValue("position"),
		Avatar:    avatarURL,
		Session:   session,
		IsAlumni:  r.FormValue("isAlumni") == "true",
		IsEC:      r.FormValue("isEC") == "true",
		Team:      teamName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.CreateTeamMember(r.Context(), member); err != nil {
		log.Printf("[team] create error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

// Edit 编辑名录条目
// PATCH /api/v1/team/{id}
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req EditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidTeamName(req.Team) {
		writeError(w, http.StatusBadRequest, "invalid team name")
		return
	}

	member, err := h.store.GetTeamMember(r.Context(), id)
	if err != nil {
		log.Printf("[team] edit get error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "team member not found")
		return
	}

	member.FullName = req.FullName
	member.Position = req.Position
	member.Session = req.Session
	member.IsAlumni = req.IsAlumni
	member.IsEC = req.IsEC
	member.Team = req.Team
	member.UpdatedAt = time.Now()

	if err := h.store.UpdateTeamMember(r.Context(), member); err != nil {
		log.Printf("[team] update error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, member)
}
