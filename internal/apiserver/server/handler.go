// Package server 路由配置与核心基础设施
//
// 本文件将请求分发到各领域独立包：
//   - auth: 登录、令牌轮换、注销、改密
//   - membership: 入会申请与审批
//   - member: 成员名录、主页、头像
//   - content: 博客投稿与审核
//   - team: 团队名录
//   - gallery: 相册
package server

import (
	"net/http"

	"club-admin/internal/apiserver/auth"
	"club-admin/internal/apiserver/content"
	"club-admin/internal/apiserver/gallery"
	"club-admin/internal/apiserver/member"
	"club-admin/internal/apiserver/membership"
	"club-admin/internal/apiserver/team"
	"club-admin/internal/mail"
	"club-admin/internal/objstore"
	"club-admin/internal/storage"
)

// Handler API 处理器
//
// Handler 是所有 HTTP API 的入口，持有各领域共享的依赖：
// 存储层、对象存储、邮件发送器、认证配置和指标。
type Handler struct {
	store    storage.Store
	uploader objstore.Uploader
	sender   mail.Sender
	authCfg  auth.Config
	metrics  *Metrics
}

// NewHandler 创建 Handler 实例
func NewHandler(store storage.Store, uploader objstore.Uploader, sender mail.Sender, authCfg auth.Config) *Handler {
	return &Handler{
		store:    store,
		uploader: uploader,
		sender:   sender,
		authCfg:  authCfg,
		metrics:  defaultMetrics(),
	}
}

// Router 返回配置好的 HTTP 路由
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", h.Health)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", MetricsHandler())

	// 各领域路由
	auth.NewHandler(h.store, h.authCfg).RegisterRoutes(mux)
	membership.NewHandler(h.store, h.sender, h.authCfg).RegisterRoutes(mux)
	member.NewHandler(h.store, h.uploader, h.authCfg).RegisterRoutes(mux)
	content.NewHandler(h.store, h.uploader, h.authCfg).RegisterRoutes(mux)
	team.NewHandler(h.store, h.uploader, h.authCfg).RegisterRoutes(mux)
	gallery.NewHandler(h.store, h.uploader, h.authCfg).RegisterRoutes(mux)

	// 指标 + CORS 中间件
	return corsMiddleware(h.metrics.MetricsMiddleware(mux))
}

// corsMiddleware 添加 CORS 头支持跨域请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
