package objstore

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// MockUploader 记录上传调用的 Uploader 实现（用于测试）
type MockUploader struct {
	mu   sync.Mutex
	Keys []string
	// FailSubstrings：key 含其中任一子串时返回错误（模拟远端拒绝）。
	// 用子串匹配是因为上传 key 带随机 ID，测试只能按文件名定位。
	FailSubstrings []string
}

// NewMockUploader 创建 MockUploader
func NewMockUploader() *MockUploader {
	return &MockUploader{}
}

// Upload 实现 Uploader：丢弃内容，返回伪造 URL
func (m *MockUploader) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sub := range m.FailSubstrings {
		if strings.Contains(key, sub) {
			return "", fmt.Errorf("upload %s: rejected", key)
		}
	}
	m.Keys = append(m.Keys, key)
	return "http://objstore.test/club-admin/" + key, nil
}

var _ Uploader = (*MockUploader)(nil)
