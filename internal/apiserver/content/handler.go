// Package content 博客投稿与审核
package content

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

// maxUploadSize 投稿表单（含封面图）大小上限
const maxUploadSize = 10 << 20 // 10 MiB

// Store 博客领域需要的存储子集
type Store interface {
	storage.UserStore
	storage.ContentStore
}

// Handler 博客领域 HTTP 处理器
type Handler struct {
	store    Store
	uploader objstore.Uploader
	authCfg  auth.Config
}

// NewHandler 创建博客处理器
func NewHandler(store Store, uploader objstore.Uploader, authCfg auth.Config) *Handler {
	return &Handler{store: store, uploader: uploader, authCfg: authCfg}
}

// RegisterRoutes 注册博客相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := auth.Require(h.store, h.authCfg)

	mux.HandleFunc("POST /api/v1/content", requireAuth(h.Create))
	mux.HandleFunc("GET /api/v1/content", h.ListApproved)
	mux.HandleFunc("GET /api/v1/content/all", requireAuth(auth.AdminOnly(h.ListAll)))
	mux.HandleFunc("GET /api/v1/content/{id}", h.Get)
	mux.HandleFunc("PATCH /api/v1/content/{id}/review", requireAuth(auth.AdminOnly(h.Review)))
	mux.HandleFunc("DELETE /api/v1/content/{id}", requireAuth(auth.AdminOnly(h.Delete)))
}

// ReviewRequest 审核请求体
type ReviewRequest struct {
	Action string `json:"action"` // "approve" | "reject"
}

// Create 投稿（multipart：heading + details + coverImage）
// POST /api/v1/content
//
// 新投稿一律未审核，审核通过前不出现在公开列表。
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	heading := strings.TrimSpace(r.FormValue("heading"))
	details := strings.TrimSpace(r.FormValue("details"))
	file, header, err := r.FormFile("coverImage")
	if heading == "" || details == "" || err != nil {
		writeError(w, http.StatusBadRequest, "all fields are required, including the cover image")
		return
	}
	defer file.Close()

	id := generateID("content")
	key := fmt.Sprintf("covers/%s%s", id, filepath.Ext(header.Filename))
	coverURL, err := h.uploader.Upload(r.Context(), key, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		log.Printf("[content] upload cover error: %v", err)
		writeError(w, http.StatusInternalServerError, "cover image upload failed")
		return
	}

	now := time.Now()
	content := &model.Content{
		ID:         id,
		Heading:    heading,
		AuthorID:   user.ID,
		Details:    details,
		CoverImage: coverURL,
		IsApproved: false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.store.CreateContent(r.Context(), content); err != nil {
		log.Printf("[content] create error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, content)
}

// ListApproved 公开博客列表（已审核，新的在前）
// GET /api/v1/content
func (h *Handler) ListApproved(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

// ListAll 全部博客（含未审核，管理员审核队列用）
// GET /api/v1/content/all
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, approvedOnly bool) {
	contents, err := h.store.ListContent(r.Context(), approvedOnly)
	if err != nil {
		log.Printf("[content] list error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if len(contents) == 0 {
		writeError(w, http.StatusNotFound, "no content found")
		return
	}
	writeJSON(w, http.StatusOK, contents)
}

// Get 获取单篇博客
// GET /api/v1/content/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	content, err := h.store.GetContent(r.Context(), r.PathValue("id"))
	if err != nil {
		log.Printf("[content] get error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if content == nil {
		writeError(w, http.StatusNotFound, "content not found")
		return
	}
	writeJSON(w, http.StatusOK, content)
}

// Review 审核博客：approve 通过，reject 删除
// PATCH /api/v1/content/{id}/review
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Action != "approve" && req.Action != "reject" {
		writeError(w, http.StatusBadRequest, "invalid action value")
		return
	}

	content, err := h.store.GetContent(r.Context(), id)
	if err != nil {
		log.Printf("[content] review get error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if content == nil {
		writeError(w, http.StatusNotFound, "content not found")
		return
	}

	if req.Action == "reject" {
		if err := h.store.DeleteContent(r.Context(), id); err != nil {
			log.Printf("[content] reject delete error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "content rejected and deleted"})
		return
	}

	if content.IsApproved {
		writeError(w, http.StatusBadRequest, "content is already approved")
		return
	}
	if err := h.store.SetContentApproved(r.Context(), id); err != nil {
		log.Printf("[content] approve error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	content.IsApproved = true
	writeJSON(w, http.StatusOK, content)
}

// Delete 删除博客
// DELETE /api/v1/content/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	content, err := h.store.GetContent(r.Context(), id)
	if err != nil {
		log.Printf("[content] delete get error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if content == nil {
		writeError(w, http.StatusNotFound, "content not found")
		return
	}
	if err := h.store.DeleteContent(r.Context(), id); err != nil {
		log.Printf("[content] delete error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "content deleted successfully"})
}
