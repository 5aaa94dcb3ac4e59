// Package config 统一配置管理
//
// 配置加载策略：
//  1. 从 .env 加载敏感信息（密码、密钥）和 APP_ENV
//  2. 根据 APP_ENV 加载对应的 configs/{env}.yaml 配置文件
//  3. 环境变量可覆盖 YAML 配置
//
// 凭据单一数据源：密码/密钥只存在 .env 中，YAML 不存储任何密码。
//
// 使用方式：
//   - 开发环境: APP_ENV=dev (默认)
//   - 测试环境: APP_ENV=test
//   - 生产环境: APP_ENV=prod
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	MinIO    MinIOConfig    `yaml:"minio"`
	Mail     MailConfig     `yaml:"mail"`
	Auth     AuthConfig     `yaml:"auth"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// DatabaseConfig MongoDB 连接配置
type DatabaseConfig struct {
	URI  string `yaml:"uri"`  // 如 mongodb://localhost:27017
	Name string `yaml:"name"` // 数据库名
}

// MinIOConfig 对象存储配置
// AccessKey/SecretKey 只从环境变量读取（MINIO_ROOT_USER / MINIO_ROOT_PASSWORD）
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
	UseSSL    bool   `yaml:"use_ssl"`
	Bucket    string `yaml:"bucket"`
	// PublicBaseURL 生成对象公开访问 URL 的前缀；为空时按 endpoint 推导
	PublicBaseURL string `yaml:"public_base_url"`
}

// MailConfig 邮件发送配置
// 凭据只从环境变量读取（SMTP_PASSWORD / MAILGUN_API_KEY）
type MailConfig struct {
	Provider string `yaml:"provider"` // "smtp" | "mailgun"，为空禁用外发
	From     string `yaml:"from"`

	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     string `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"-"`

	MailgunDomain string `yaml:"mailgun_domain"`
	MailgunAPIKey string `yaml:"-"`
}

// AuthConfig 认证配置
// JWTSecret/AdminEmail/AdminPassword 只从环境变量读取，不存储在 YAML 中
type AuthConfig struct {
	JWTSecret       string `yaml:"-"`
	AccessTokenTTL  string `yaml:"access_token_ttl"`  // 例如 "15m"
	RefreshTokenTTL string `yaml:"refresh_token_ttl"` // 例如 "240h"
	AdminEmail      string `yaml:"-"`
	AdminPassword   string `yaml:"-"`
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env             Environment
	APIPort         string
	MongoURI        string
	MongoDatabase   string
	MinIO           MinIOConfig
	Mail            MailConfig
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	AdminEmail      string
	AdminPassword   string
}

var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"../../../.env",
}

// Load 加载配置
// 1. 加载 .env（敏感信息 + APP_ENV）
// 2. 根据 APP_ENV 加载 configs/{env}.yaml
// 3. 构建最终配置
func Load() *Config {
	// 加载 .env
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// 解析环境
	env := parseEnv(getEnv("APP_ENV", "dev"))

	// 加载 YAML 配置
	yamlCfg := loadYAMLConfig(env)

	// 从环境变量获取敏感信息
	cfg := &Config{
		Env:           env,
		APIPort:       yamlCfg.Server.Port,
		MongoURI:      getEnv("MONGO_URI", yamlCfg.Database.URI),
		MongoDatabase: yamlCfg.Database.Name,
		MinIO:         yamlCfg.MinIO,
		Mail:          yamlCfg.Mail,
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	cfg.MinIO.AccessKey = os.Getenv("MINIO_ROOT_USER")
	cfg.MinIO.SecretKey = os.Getenv("MINIO_ROOT_PASSWORD")
	cfg.Mail.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.Mail.MailgunAPIKey = os.Getenv("MAILGUN_API_KEY")

	cfg.AccessTokenTTL = parseDuration(yamlCfg.Auth.AccessTokenTTL, 15*time.Minute)
	cfg.RefreshTokenTTL = parseDuration(yamlCfg.Auth.RefreshTokenTTL, 240*time.Hour)

	return cfg
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → common.yaml → {env}.yaml
func loadYAMLConfig(env Environment) *YAMLConfig {
	// 1. 初始化默认值
	cfg := &YAMLConfig{
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{URI: "mongodb://localhost:27017", Name: "club_admin"},
		MinIO:    MinIOConfig{Endpoint: "localhost:9000", Bucket: "club-admin"},
		Mail:     MailConfig{From: "noreply@localhost"},
		Auth:     AuthConfig{AccessTokenTTL: "15m", RefreshTokenTTL: "240h"},
	}

	// 2. 加载 common.yaml（公共配置）
	for _, base := range configPaths {
		path := filepath.Join(base, "common.yaml")
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	// 3. 加载 {env}.yaml（环境特定配置，覆盖公共配置）
	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range configPaths {
		path := filepath.Join(base, filename)
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	return cfg
}

// String 返回脱敏后的配置摘要（用于启动日志）
func (c *Config) String() string {
	mail := c.Mail.Provider
	if mail == "" {
		mail = "disabled"
	}
	return fmt.Sprintf("env=%s port=%s mongo=%s/%s minio=%s mail=%s",
		c.Env, c.APIPort, c.MongoURI, c.MongoDatabase, c.MinIO.Endpoint, mail)
}

func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
