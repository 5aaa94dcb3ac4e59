package membership

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
	"club-admin/internal/storage/memstore"
)

func testAuthConfig() auth.Config {
	cfg := auth.DefaultConfig()
	cfg.JWTSecret = "test-secret"
	return cfg
}

// testEnv 申请流程测试环境：内存存储 + 记录型邮件发送器
type testEnv struct {
	mux    *http.ServeMux
	store  *memstore.Store
	sender *mail.MockSender
	cfg    auth.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:  memstore.NewStore(),
		sender: mail.NewMockSender(),
		cfg:    testAuthConfig(),
		mux:    http.NewServeMux(),
	}
	NewHandler(env.store, env.sender, env.cfg).RegisterRoutes(env.mux)
	return env
}

func (env *testEnv) seedAdmin(t *testing.T) string {
	t.Helper()
	hash, err := auth.HashPassword("admin-pass")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	admin := &model.User{
		ID:           "user-admin0000001",
		Email:        "admin@cuet.ac.bd",
		FullName:     "Club Admin",
		StudentID:    "admin",
		CodeforcesID: "admin_cf",
		Session:      "N/A",
		Department:   "CSE",
		PasswordHash: hash,
		Role:         model.UserRoleAdmin,
	}
	if err := env.store.CreateUser(context.Background(), admin); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	token, err := auth.GenerateAccessToken(env.cfg, admin)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	return token
}

func (env *testEnv) seedApplication(t *testing.T, studentID string) *model.Application {
	t.Helper()
	now := time.Now()
	app := &model.Application{
		ID:           "app-" + studentID,
		Email:        studentID + "@cuet.ac.bd",
		FullName:     "Applicant " + studentID,
		StudentID:    studentID,
		CodeforcesID: "cf_" + studentID,
		Session:      "2020-21",
		Department:   "CSE",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := env.store.CreateApplication(context.Background(), app); err != nil {
		t.Fatalf("CreateApplication() error = %v", err)
	}
	return app
}

func (env *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
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
	env.mux.ServeHTTP(w, r)
	return w
}

const validApply = `{
	"email": "karim@cuet.ac.bd",
	"full_name": "Karim Ahmed",
	"student_id": "2004042",
	"codeforces_id": "karim_cf",
	"session": "2020-21",
	"department": "CSE"
}`

func TestApply(t *testing.T) {
	t.Run("提交成功", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do("POST", "/api/v1/membership/apply", "", validApply)
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		var app model.Application
		if err := json.NewDecoder(w.Body).Decode(&app); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if app.StudentID != "2004042" {
			t.Errorf("StudentID = %q, want 2004042", app.StudentID)
		}
		stored, err := env.store.GetApplicationByStudentID(context.Background(), "2004042")
		if err != nil || stored == nil {
			t.Fatalf("申请未落库: %v, %v", stored, err)
		}
	})

	t.Run("字段缺失", func(t *testing.T) {
		env := newTestEnv(t)
		fields := []string{"email", "full_name", "student_id", "codeforces_id", "session", "department"}
		for _, field := range fields {
			var req map[string]string
			json.Unmarshal([]byte(validApply), &req)
			req[field] = "  "
			body, _ := json.Marshal(req)
			w := env.do("POST", "/api/v1/membership/apply", "", string(body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("缺 %s: status = %d, want 400", field, w.Code)
			}
		}
	})

	t.Run("重复申请", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedApplication(t, "2004042")
		// email / student_id / codeforces_id 任一重合都算冲突
		conflicts := []string{
			`{"email":"2004042@cuet.ac.bd","full_name":"X","student_id":"9999999","codeforces_id":"other_cf","session":"2020-21","department":"EEE"}`,
			`{"email":"other@cuet.ac.bd","full_name":"X","student_id":"2004042","codeforces_id":"other_cf","session":"2020-21","department":"EEE"}`,
			`{"email":"other@cuet.ac.bd","full_name":"X","student_id":"9999999","codeforces_id":"cf_2004042","session":"2020-21","department":"EEE"}`,
		}
		for i, body := range conflicts {
			w := env.do("POST", "/api/v1/membership/apply", "", body)
			if w.Code != http.StatusConflict {
				t.Errorf("冲突用例 %d: status = %d, want 409", i, w.Code)
			}
		}
	})

	t.Run("已是成员", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.CreateUser(context.Background(), &model.User{
			ID:           "user-1",
			Email:        "karim@cuet.ac.bd",
			StudentID:    "2004042",
			CodeforcesID: "karim_cf",
			Role:         model.UserRoleUser,
		})
		w := env.do("POST", "/api/v1/membership/apply", "", validApply)
		if w.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", w.Code)
		}
	})

	t.Run("已登录用户被拒", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.seedAdmin(t)
		w := env.do("POST", "/api/v1/membership/apply", token, validApply)
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})
}

func TestListApplications(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedAdmin(t)
	first := env.seedApplication(t, "2004001")
	second := env.seedApplication(t, "2004002")

	w := env.do("GET", "/api/v1/membership/applications", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var apps []*model.Application
	if err := json.NewDecoder(w.Body).Decode(&apps); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("len = %d, want 2", len(apps))
	}
	// 先到先审：按提交时间升序
	if apps[0].StudentID != first.StudentID || apps[1].StudentID != second.StudentID {
		t.Errorf("顺序 = [%s, %s], want [%s, %s]",
			apps[0].StudentID, apps[1].StudentID, first.StudentID, second.StudentID)
	}
}

func TestListApplications_AdminGate(t *testing.T) {
	env := newTestEnv(t)

	t.Run("未认证", func(t *testing.T) {
		w := env.do("GET", "/api/v1/membership/applications", "", "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("普通成员", func(t *testing.T) {
		member := &model.User{
			ID:        "user-member00001",
			Email:     "member@cuet.ac.bd",
			StudentID: "1804001",
			Role:      model.UserRoleUser,
		}
		if err := env.store.CreateUser(context.Background(), member); err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}
		token, err := auth.GenerateAccessToken(env.cfg, member)
		if err != nil {
			t.Fatalf("GenerateAccessToken() error = %v", err)
		}
		w := env.do("GET", "/api/v1/membership/applications", token, "")
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})
}

func TestProcess_Approved(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedAdmin(t)
	app := env.seedApplication(t, "2004042")

	w := env.do("PATCH", "/api/v1/membership/applications/2004042", token, `{"status":"approved"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	ctx := context.Background()

	// 账号已创建，资料从申请复制
	user, err := env.store.GetUserByStudentID(ctx, "2004042")
	if err != nil || user == nil {
		t.Fatalf("用户未创建: %v, %v", user, err)
	}
	if user.Role != model.UserRoleUser {
		t.Errorf("Role = %q, want user", user.Role)
	}
	if user.Email != app.Email || user.FullName != app.FullName ||
		user.CodeforcesID != app.CodeforcesID || user.Session != app.Session ||
		user.Department != app.Department {
		t.Error("用户资料应从申请复制")
	}

	// 凭据邮件已发出，其中的初始密码可以登录
	msg := env.sender.Last()
	if msg == nil {
		t.Fatal("应发出凭据邮件")
	}
	if msg.To != app.Email {
		t.Errorf("收件人 = %q, want %q", msg.To, app.Email)
	}
	if msg.Subject != "Membership Approved - CUET Computer Club" {
		t.Errorf("主题 = %q", msg.Subject)
	}
	password := extractPassword(t, msg.Body)
	if !auth.CheckPassword(password, user.PasswordHash) {
		t.Error("邮件中的初始密码应验证通过")
	}

	// 申请已删除
	remaining, err := env.store.GetApplicationByStudentID(ctx, "2004042")
	if err != nil {
		t.Fatalf("GetApplicationByStudentID() error = %v", err)
	}
	if remaining != nil {
		t.Error("审批后申请应被删除")
	}
}

// extractPassword 从凭据邮件正文提取初始密码
func extractPassword(t *testing.T, body string) string {
	t.Helper()
	for _, line := range strings.Split(body, "\n") {
		if after, ok := strings.CutPrefix(line, "Password: "); ok {
			return after
		}
	}
	t.Fatalf("邮件正文中未找到密码: %q", body)
	return ""
}

func TestProcess_Rejected(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedAdmin(t)
	env.seedApplication(t, "2004042")

	w := env.do("PATCH", "/api/v1/membership/applications/2004042", token, `{"status":"rejected"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	ctx := context.Background()

	// 不建号、不发信、申请删除
	if user, _ := env.store.GetUserByStudentID(ctx, "2004042"); user != nil {
		t.Error("拒绝不应创建用户")
	}
	if len(env.sender.Sent) != 0 {
		t.Error("拒绝不应发送邮件")
	}
	if remaining, _ := env.store.GetApplicationByStudentID(ctx, "2004042"); remaining != nil {
		t.Error("拒绝后申请应被删除")
	}
}

func TestProcess_Errors(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedAdmin(t)
	env.seedApplication(t, "2004042")

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"无效状态值", "/api/v1/membership/applications/2004042", `{"status":"pending"}`, http.StatusBadRequest},
		{"空状态", "/api/v1/membership/applications/2004042", `{}`, http.StatusBadRequest},
		{"申请不存在", "/api/v1/membership/applications/9999999", `{"status":"approved"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do("PATCH", tt.path, token, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestProcess_MailFailureNotRolledBack(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedAdmin(t)
	env.seedApplication(t, "2004042")
	env.sender.Fail = true

	w := env.do("PATCH", "/api/v1/membership/applications/2004042", token, `{"status":"approved"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	ctx := context.Background()

	// 发信失败不回滚账号，也不拦截申请删除
	if user, _ := env.store.GetUserByStudentID(ctx, "2004042"); user == nil {
		t.Error("发信失败时账号应保留")
	}
	if remaining, _ := env.store.GetApplicationByStudentID(ctx, "2004042"); remaining != nil {
		t.Error("发信失败不影响申请删除")
	}
}

func TestProcess_EarlyFailureKeepsApplication(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedAdmin(t)
	app := env.seedApplication(t, "2004042")

	// 占用申请人邮箱，使建号触发唯一约束冲突
	env.store.CreateUser(context.Background(), &model.User{
		ID:        "user-squatter001",
		Email:     app.Email,
		StudentID: "1604001",
		Role:      model.UserRoleUser,
	})

	w := env.do("PATCH", "/api/v1/membership/applications/2004042", token, `{"status":"approved"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	// 建号失败时申请保留，管理员可重试
	remaining, err := env.store.GetApplicationByStudentID(context.Background(), "2004042")
	if err != nil || remaining == nil {
		t.Error("建号失败时申请应保留")
	}
	if len(env.sender.Sent) != 0 {
		t.Error("建号失败不应发送邮件")
	}
}

func TestCreateAdmin(t *testing.T) {
	const validAdmin = `{
		"email": "newadmin@cuet.ac.bd",
		"full_name": "New Admin",
		"student_id": "1504001",
		"codeforces_id": "newadmin_cf",
		"session": "2015-16",
		"department": "CSE",
		"password": "admin-secret-1"
	}`

	t.Run("创建成功", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.seedAdmin(t)
		w := env.do("POST", "/api/v1/membership/admins", token, validAdmin)
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		created, err := env.store.GetUserByStudentID(context.Background(), "1504001")
		if err != nil || created == nil {
			t.Fatalf("管理员未创建: %v, %v", created, err)
		}
		if created.Role != model.UserRoleAdmin {
			t.Errorf("Role = %q, want admin", created.Role)
		}
		if !auth.CheckPassword("admin-secret-1", created.PasswordHash) {
			t.Error("管理员密码应验证通过")
		}
		if strings.Contains(w.Body.String(), "password_hash") {
			t.Error("响应不应包含密码哈希")
		}
	})

	t.Run("学号重复", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.seedAdmin(t)
		if w := env.do("POST", "/api/v1/membership/admins", token, validAdmin); w.Code != http.StatusCreated {
			t.Fatalf("首次创建 status = %d", w.Code)
		}
		w := env.do("POST", "/api/v1/membership/admins", token, validAdmin)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("普通成员被拒", func(t *testing.T) {
		env := newTestEnv(t)
		member := &model.User{ID: "user-m1", Email: "m@cuet.ac.bd", StudentID: "1804002", Role: model.UserRoleUser}
		env.store.CreateUser(context.Background(), member)
		token, _ := auth.GenerateAccessToken(env.cfg, member)
		w := env.do("POST", "/api/v1/membership/admins", token, validAdmin)
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})
}

func TestGeneratePassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		p := generatePassword()
		if len(p) != 8 {
			t.Fatalf("len = %d, want 8", len(p))
		}
		for _, c := range p {
			if !strings.ContainsRune(passwordAlphabet, c) {
				t.Fatalf("非法字符 %q in %q", c, p)
			}
		}
		seen[p] = true
	}
	if len(seen) < 90 {
		t.Errorf("100 次生成只有 %d 个不同密码", len(seen))
	}
}
