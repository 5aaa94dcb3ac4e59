package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"club-admin/internal/apiserver/auth"
	"club-admin/internal/mail"
	"club-admin/internal/model"
	"club-admin/internal/objstore"
	"club-admin/internal/storage/memstore"
)

func newTestRouter(t *testing.T) (http.Handler, *memstore.Store, *mail.MockSender) {
	t.Helper()
	cfg := auth.DefaultConfig()
	cfg.JWTSecret = "test-secret"
	store := memstore.NewStore()
	sender := mail.NewMockSender()
	h := NewHandler(store, objstore.NewMockUploader(), sender, cfg)
	return h.Router(), store, sender
}

func TestHealth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	r := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)

	// 先打一次业务请求，保证指标有样本
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	r := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "club_admin_http_requests_total") {
		t.Error("指标输出应包含 club_admin_http_requests_total")
	}
}

func TestCORSPreflight(t *testing.T) {
	router, _, _ := newTestRouter(t)

	r := httptest.NewRequest("OPTIONS", "/api/v1/content", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("应返回 CORS 头")
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/api/v1/membership/applications/2004042", "/api/v1/membership/applications/{studentId}"},
		{"/api/v1/members/2004042/profile", "/api/v1/members/{studentId}/profile"},
		{"/api/v1/content/content-abc123/review", "/api/v1/content/{id}/review"},
		{"/api/v1/content/content-abc123", "/api/v1/content/{id}"},
		{"/api/v1/content/all", "/api/v1/content/all"},
		{"/api/v1/team/team-abc123", "/api/v1/team/{id}"},
		{"/api/v1/team", "/api/v1/team"},
		{"/health", "/health"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.expected)
		}
	}
}

// TestApplyApproveLoginFlow 入会全流程：
// 访客申请 → 管理员审批通过 → 新成员用邮件里的初始密码登录 →
// 轮换刷新令牌 → 旧令牌重放被拒。
func TestApplyApproveLoginFlow(t *testing.T) {
	router, store, sender := newTestRouter(t)
	ctx := context.Background()

	// 引导管理员
	if err := auth.EnsureAdminUser(ctx, store, "admin@cuet.ac.bd", "admin-pass-123"); err != nil {
		t.Fatalf("EnsureAdminUser() error = %v", err)
	}

	do := func(method, path, token, body string) *httptest.ResponseRecorder {
		var r *http.Request
		if body != "" {
			r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		} else {
			r = httptest.NewRequest(method, path, nil)
		}
		if token != "" {
			r.AddCookie(&http.Cookie{Name: auth.CookieAccessToken, Value: token})
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		return w
	}

	// 1. 访客提交申请
	w := do("POST", "/api/v1/membership/apply", "", `{
		"email": "karim@cuet.ac.bd",
		"full_name": "Karim Ahmed",
		"student_id": "2004042",
		"codeforces_id": "karim_cf",
		"session": "2020-21",
		"department": "CSE"
	}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("apply status = %d, body = %s", w.Code, w.Body.String())
	}

	// 2. 管理员登录
	w = do("POST", "/api/v1/auth/login", "", `{"email":"admin@cuet.ac.bd","password":"admin-pass-123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("admin login status = %d, body = %s", w.Code, w.Body.String())
	}
	var adminLogin struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(w.Body).Decode(&adminLogin); err != nil {
		t.Fatalf("decode admin login: %v", err)
	}

	// 3. 管理员查看并批准申请
	w = do("GET", "/api/v1/membership/applications", adminLogin.AccessToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list applications status = %d", w.Code)
	}
	var apps []*model.Application
	json.NewDecoder(w.Body).Decode(&apps)
	if len(apps) != 1 || apps[0].StudentID != "2004042" {
		t.Fatalf("applications = %+v", apps)
	}

	w = do("PATCH", "/api/v1/membership/applications/2004042", adminLogin.AccessToken, `{"status":"approved"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("approve status = %d, body = %s", w.Code, w.Body.String())
	}

	// 4. 新成员用邮件里的初始密码登录
	msg := sender.Last()
	if msg == nil {
		t.Fatal("应发出凭据邮件")
	}
	var password string
	for _, line := range strings.Split(msg.Body, "\n") {
		if after, ok := strings.CutPrefix(line, "Password: "); ok {
			password = after
		}
	}
	if password == "" {
		t.Fatalf("邮件中未找到密码: %q", msg.Body)
	}

	loginBody, _ := json.Marshal(map[string]string{"student_id": "2004042", "password": password})
	w = do("POST", "/api/v1/auth/login", "", string(loginBody))
	if w.Code != http.StatusOK {
		t.Fatalf("member login status = %d, body = %s", w.Code, w.Body.String())
	}
	var memberLogin struct {
		User         *model.User `json:"user"`
		RefreshToken string      `json:"refresh_token"`
	}
	if err := json.NewDecoder(w.Body).Decode(&memberLogin); err != nil {
		t.Fatalf("decode member login: %v", err)
	}
	if memberLogin.User.Role != model.UserRoleUser {
		t.Errorf("Role = %q, want user", memberLogin.User.Role)
	}

	// 5. 轮换刷新令牌
	time.Sleep(1100 * time.Millisecond)
	refreshBody, _ := json.Marshal(map[string]string{"refresh_token": memberLogin.RefreshToken})
	w = do("POST", "/api/v1/auth/refresh", "", string(refreshBody))
	if w.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body = %s", w.Code, w.Body.String())
	}

	// 6. 旧令牌重放被拒
	w = do("POST", "/api/v1/auth/refresh", "", string(refreshBody))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("replay status = %d, want 401", w.Code)
	}

	// 申请已删除
	if app, _ := store.GetApplicationByStudentID(ctx, "2004042"); app != nil {
		t.Error("审批后申请应被删除")
	}
}
