package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"club-admin/internal/config"
)

// smtpSender 通过普通 SMTP 服务发信
type smtpSender struct {
	addr string
	auth smtp.Auth
	from string
}

func newSMTPSender(cfg config.MailConfig) (Sender, error) {
	if cfg.SMTPHost == "" || cfg.SMTPPort == "" || cfg.SMTPUser == "" || cfg.SMTPPassword == "" || cfg.From == "" {
		return nil, fmt.Errorf("mail: incomplete smtp configuration")
	}
	return &smtpSender{
		addr: cfg.SMTPHost + ":" + cfg.SMTPPort,
		auth: smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost),
		from: cfg.From,
	}, nil
}

// Send 实现 Sender
//
// net/smtp 不接受 context，超时控制交给调用方的连接层；
// 调用方（审批流程）用带超时的 context 包裹整个发送步骤。
func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	from := msg.From
	if from == "" {
		from = s.from
	}

	data := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		from, msg.To, msg.Subject, msg.Body))

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(s.addr, s.auth, from, []string{msg.To}, data)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mail: smtp send to %s: %w", msg.To, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mail: smtp send to %s: %w", msg.To, ctx.Err())
	}
}
