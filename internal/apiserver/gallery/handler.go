// Package gallery 社团相册
package gallery

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"club-admin/internal/apiserver/auth"
	"club-admin/internal/model"
	"club-admin/internal/objstore"
	"club-admin/internal/storage"
)

// maxUploadSize 批量上传表单大小上限
const maxUploadSize = 50 << 20 // 50 MiB

// Store 相册需要的存储子集
type Store interface {
	storage.UserStore
	storage.GalleryStore
}

// Handler 相册领域 HTTP 处理器
type Handler struct {
	store    Store
	uploader objstore.Uploader
	authCfg  auth.Config
}

// NewHandler 创建相册处理器
func NewHandler(store Store, uploader objstore.Uploader, authCfg auth.Config) *Handler {
	return &Handler{store: store, uploader: uploader, authCfg: authCfg}
}

// RegisterRoutes 注册相册相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := auth.Require(h.store, h.authCfg)

	mux.HandleFunc("POST /api/v1/gallery", requireAuth(auth.AdminOnly(h.Upload)))
	mux.HandleFunc("GET /api/v1/gallery", h.List)
}

// Upload 批量上传相册图片
// POST /api/v1/gallery
//
// 表单：images（多文件）+ altTexts（与文件一一对应）。
// 单个文件上传失败只丢弃该文件，成功子集照常入库；
// 全部失败才整体报 500。
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no images provided")
		return
	}
	altTexts := r.MultipartForm.Value["altTexts"]
	if len(altTexts) != len(files) {
		writeError(w, http.StatusBadRequest, "invalid or missing alt text array")
		return
	}

	now := time.Now()
	var saved []*model.GalleryImage
	for i, fh := range files {
		file, err := fh.Open()
		if err != nil {
			log.Printf("[gallery] open %s error: %v", fh.Filename, err)
			continue
		}

		id := generateID("img")
		key := fmt.Sprintf("gallery/%s%s", id, filepath.Ext(fh.Filename))
		url, err := h.uploader.Upload(r.Context(), key, file, fh.Size, fh.Header.Get("Content-Type"))
		file.Close()
		if err != nil {
			log.Printf("[gallery] upload %s error: %v", fh.Filename, err)
			continue
		}

		saved = append(saved, &model.GalleryImage{
			ID:        id,
			URL:       url,
			AltText:   altTexts[i],
			CreatedAt: now,
		})
	}

	if len(saved) == 0 {
		writeError(w, http.StatusInternalServerError, "all image uploads failed")
		return
	}

	if err := h.store.CreateGalleryImages(r.Context(), saved); err != nil {
		log.Printf("[gallery] save error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// List 相册列表（新的在前）
// GET /api/v1/gallery
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	images, err := h.store.ListGalleryImages(r.Context())
	if err != nil {
		log.Printf("[gallery] list error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if images == nil {
		images = []*model.GalleryImage{}
	}
	writeJSON(w, http.StatusOK, images)
}
