package mail

import (
	"context"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"

	"club-admin/internal/config"
)

// mailgunSender 通过 Mailgun API 发信
type mailgunSender struct {
	mg   *mailgun.MailgunImpl
	from string
}

func newMailgunSender(cfg config.MailConfig) (Sender, error) {
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.From == "" {
		return nil, fmt.Errorf("mail: incomplete mailgun configuration")
	}
	return &mailgunSender{
		mg:   mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey),
		from: cfg.From,
	}, nil
}

// Send 实现 Sender
func (s *mailgunSender) Send(ctx context.Context, msg Message) error {
	from := msg.From
	if from == "" {
		from = s.from
	}

	message := s.mg.NewMessage(from, msg.Subject, msg.Body, msg.To)
	if _, _, err := s.mg.Send(ctx, message); err != nil {
		return fmt.Errorf("mail: mailgun send to %s: %w", msg.To, err)
	}
	return nil
}
