// Package mail 外发邮件
//
// Sender 是唯一对外接口，由 main 构造后注入到需要发信的 handler，
// 不使用进程级全局 transporter。支持 smtp 和 mailgun 两种 provider，
// provider 为空时返回禁用实现（只记日志不发信，方便本地开发）。
package mail

import (
	"context"
	"fmt"
	"log"

	"club-admin/internal/config"
)

// Message 一封待发送的邮件
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender 邮件发送接口
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender 按配置选择 provider
func NewSender(cfg config.MailConfig) (Sender, error) {
	switch cfg.Provider {
	case "smtp":
		return newSMTPSender(cfg)
	case "mailgun":
		return newMailgunSender(cfg)
	case "":
		log.Println("[mail] No provider configured, outbound mail disabled")
		return noopSender{}, nil
	default:
		return nil, fmt.Errorf("mail: unknown provider %q", cfg.Provider)
	}
}

// noopSender 禁用实现：只记日志
type noopSender struct{}

func (noopSender) Send(_ context.Context, msg Message) error {
	log.Printf("[mail] (disabled) would send to %s: %s", msg.To, msg.Subject)
	return nil
}
