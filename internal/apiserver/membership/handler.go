// Package membership 入会申请与审批流程
package membership

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"club-admin/internal/apiserver/auth"
	"club-admin/internal/mail"
	"club-admin/internal/model"
	"club-admin/internal/storage"
)

// mailTimeout 审批通过后发信的超时上限，不让慢邮件服务拖住审批请求
const mailTimeout = 10 * time.Second

// Store 申请流程需要的存储子集
type Store interface {
	storage.UserStore
	storage.ApplicationStore
}

// Handler 入会申请领域 HTTP 处理器
type Handler struct {
	store   Store
	sender  mail.Sender
	authCfg auth.Config
}

// NewHandler 创建申请处理器
func NewHandler(store Store, sender mail.Sender, authCfg auth.Config) *Handler {
	return &Handler{store: store, sender: sender, authCfg: authCfg}
}

// RegisterRoutes 注册申请相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	guestOnly := auth.GuestOnly(h.authCfg)
	requireAuth := auth.Require(h.store, h.authCfg)

	mux.HandleFunc("POST /api/v1/membership/apply", guestOnly(h.Apply))
	mux.HandleFunc("GET /api/v1/membership/applications", requireAuth(auth.AdminOnly(h.ListApplications)))
	mux.HandleFunc("PATCH /api/v1/membership/applications/{studentId}", requireAuth(auth.AdminOnly(h.Process)))
	mux.HandleFunc("POST /api/v1/membership/admins", requireAuth(auth.AdminOnly(h.CreateAdmin)))
}

// ============================================================================
// 请求类型
// ============================================================================

// ApplyRequest 入会申请请求体（六个字段全部必填）
type ApplyRequest struct {
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	StudentID    string `json:"student_id"`
	CodeforcesID string `json:"codeforces_id"`
	Session      string `json:"session"`
	Department   string `json:"department"`
}

// ProcessRequest 审批请求体
type ProcessRequest struct {
	Status model.ApplicationStatus `json:"status"`
}

// CreateAdminRequest 管理员开通请求体
type CreateAdminRequest struct {
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	StudentID    string `json:"student_id"`
	CodeforcesID string `json:"codeforces_id"`
	Session      string `json:"session"`
	Department   string `json:"department"`
	Password     string `json:"password"`
}

// ============================================================================
// HTTP 处理函数
// ============================================================================

// Apply 提交入会申请（仅限未登录访客）
// POST /api/v1/membership/apply
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for _, field := range []string{req.Email, req.FullName, req.StudentID, req.CodeforcesID, req.Session, req.Department} {
		if strings.TrimSpace(field) == "" {
			writeError(w, http.StatusBadRequest, "please fill in all fields")
			return
		}
	}

	// 查重覆盖申请表和成员表：email / student_id / codeforces_id 任一命中即冲突
	existingApp, err := h.store.FindApplicationConflict(r.Context(), req.Email, req.StudentID, req.CodeforcesID)
	if err != nil {
		log.Printf("[membership] application conflict check error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existingApp != nil {
		writeError(w, http.StatusConflict, "already applied for membership! you will be contacted soon!")
		return
	}
	existingUser, err := h.store.FindUserConflict(r.Context(), req.Email, req.StudentID, req.CodeforcesID)
	if err != nil {
		log.Printf("[membership] user conflict check error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existingUser != nil {
		writeError(w, http.StatusConflict, "already a member! you can't apply for membership!")
		return
	}

	now := time.Now()
	app := &model.Application{
		ID:           generateID("app"),
		Email:        req.Email,
		FullName:     req.FullName,
		StudentID:    req.StudentID,
		CodeforcesID: req.CodeforcesID,
		Session:      req.Session,
		Department:   req.Department,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.store.CreateApplication(r.Context(), app); err != nil {
		log.Printf("[membership] create application error: %v", err)
		writeError(w, http.StatusInternalServerError, "application failed, try again")
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

// ListApplications 列出全部待审申请（先到先审，按提交时间升序）
// GET /api/v1/membership/applications
func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.store.ListApplications(r.Context())
	if err != nil {
		log.Printf("[membership] list applications error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if apps == nil {
		apps = []*model.Application{}
	}
	writeJSON(w, http.StatusOK, apps)
}

// Process 审批申请
// PATCH /api/v1/membership/applications/{studentId}
//
// approved 的执行顺序是刻意的：先建号、再发信、最后删申请。
// 任何一步失败都保留申请记录，管理员可以重试；邮件发送失败
// 只记日志，不回滚已创建的账号。
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("studentId")

	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status != model.ApplicationApproved && req.Status != model.ApplicationRejected {
		writeError(w, http.StatusBadRequest, "invalid status value")
		return
	}

	app, err := h.store.GetApplicationByStudentID(r.Context(), studentID)
	if err != nil {
		log.Printf("[membership] get application error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if app == nil {
		writeError(w, http.StatusNotFound, "application not found")
		return
	}

	if req.Status == model.ApplicationApproved {
		if err := h.approve(r.Context(), app); err != nil {
			log.Printf("[membership] approve %s error: %v", app.StudentID, err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	if err := h.store.DeleteApplication(r.Context(), app.ID); err != nil {
		log.Printf("[membership] delete application error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("application %s successfully", req.Status),
	})
}

// approve 申请转正式账号：生成初始密码、建号、发凭据邮件
func (h *Handler) approve(ctx context.Context, app *model.Application) error {
	password := generatePassword()
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           generateID("user"),
		Email:        app.Email,
		FullName:     app.FullName,
		StudentID:    app.StudentID,
		CodeforcesID: app.CodeforcesID,
		Session:      app.Session,
		Department:   app.Department,
		PasswordHash: hash,
		Role:         model.UserRoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.store.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	mailCtx, cancel := context.WithTimeout(ctx, mailTimeout)
	defer cancel()
	msg := mail.Message{
		To:      app.Email,
		Subject: "Membership Approved - CUET Computer Club",
		Body: fmt.Sprintf("Dear %s,\n\nYour membership application has been approved!\n\n"+
			"You can now log in using the following credentials:\n\nEmail: %s\nPassword: %s\n\n"+
			"Please change your password after logging in.\n\nBest Regards,\nCUET Computer Club",
			app.FullName, app.Email, password),
	}
	if err := h.sender.Send(mailCtx, msg); err != nil {
		log.Printf("[membership] credential mail to %s failed: %v", app.Email, err)
	}
	return nil
}

// CreateAdmin 直接开通管理员账号
// POST /api/v1/membership/admins
func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for _, field := range []string{req.Email, req.FullName, req.StudentID, req.CodeforcesID, req.Session, req.Department, req.Password} {
		if strings.TrimSpace(field) == "" {
			writeError(w, http.StatusBadRequest, "please fill in all fields")
			return
		}
	}

	existing, err := h.store.GetUserByStudentID(r.Context(), req.StudentID)
	if err != nil {
		log.Printf("[membership] admin duplicate check error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusBadRequest, "admin with this student id already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("[membership] hash password error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	now := time.Now()
	admin := &model.User{
		ID:           generateID("user"),
		Email:        req.Email,
		FullName:     req.FullName,
		StudentID:    req.StudentID,
		CodeforcesID: req.CodeforcesID,
		Session:      req.Session,
		Department:   req.Department,
		PasswordHash: hash,
		Role:         model.UserRoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.store.CreateUser(r.Context(), admin); err != nil {
		log.Printf("[membership] create admin error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, admin)
}
