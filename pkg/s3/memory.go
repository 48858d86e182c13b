package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// Memory is an in-process Store for tests and local development.
type Memory struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{Objects: map[string][]byte{}}
}

func (m *Memory) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = buf.Bytes()
	return nil
}

func (m *Memory) PresignDownload(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Objects[key]; !ok {
		return "", fmt.Errorf("memory store: no object %q", key)
	}
	return "memory://" + key, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, key)
	return nil
}
