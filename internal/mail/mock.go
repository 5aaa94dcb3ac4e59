package mail

import (
	"context"
	"fmt"
	"sync"
)

// MockSender 记录发送调用的 Sender 实现（用于测试）
type MockSender struct {
	mu   sync.Mutex
	Sent []Message
	// Fail 为 true 时 Send 返回错误（模拟发送失败）
	Fail bool
}

// NewMockSender 创建 MockSender
func NewMockSender() *MockSender {
	return &MockSender{}
}

// Send 实现 Sender
func (m *MockSender) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("mail: send to %s failed", msg.To)
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

// Last 返回最后一封已发送邮件，没有时返回 nil
func (m *MockSender) Last() *Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	msg := m.Sent[len(m.Sent)-1]
	return &msg
}

var _ Sender = (*MockSender)(nil)
