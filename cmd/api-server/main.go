// Package main API Server 入口
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"club-admin/internal/apiserver/auth"
	"club-admin/internal/apiserver/server"
	"club-admin/internal/config"
	"club-admin/internal/mail"
	"club-admin/internal/objstore"
	"club-admin/internal/storage/mongostore"
)

func main() {
	// 加载配置（自动加载 .env，根据 APP_ENV 切换 yaml）
	cfg := config.Load()

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// 初始化 MongoDB
	store, err := mongostore.NewStore(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer store.Close()
	log.Println("Connected to MongoDB")

	// 初始化 MinIO 对象存储
	uploader, err := objstore.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("Failed to create MinIO client: %v", err)
	}
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := uploader.EnsureBucket(ctx); err != nil {
			cancel()
			log.Fatalf("Failed to ensure bucket: %v", err)
		}
		cancel()
	}
	log.Println("Object storage ready")

	// 初始化邮件发送
	sender, err := mail.NewSender(cfg.Mail)
	if err != nil {
		log.Fatalf("Failed to create mail sender: %v", err)
	}

	authCfg := auth.Config{
		JWTSecret:       cfg.JWTSecret,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	}

	// 引导初始管理员
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := auth.EnsureAdminUser(ctx, store, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			cancel()
			log.Fatalf("Failed to ensure admin user: %v", err)
		}
		cancel()
	}

	h := server.NewHandler(store, uploader, sender, authCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("API Server listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}
