package objectstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Memory is an in-memory Store used in tests and offline development.
// The error hooks let tests script failures per call.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte

	// PutErr, GetErr and DeleteErr, when set, are consulted before the
	// operation and may fail it.
	PutErr    func(key string) error
	GetErr    func(url string) error
	DeleteErr func(url string) error
}

const memoryBaseURL = "mem://evidence"

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if m.PutErr != nil {
		if err := m.PutErr(key); err != nil {
			return "", err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	m.objects[key] = cp

	return m.URLFor(key), nil
}

func (m *Memory) Get(ctx context.Context, url string) ([]byte, error) {
	if m.GetErr != nil {
		if err := m.GetErr(url); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.TrimPrefix(url, memoryBaseURL+"/")
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("no object at %q", url)
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *Memory) Delete(ctx context.Context, url string) error {
	if m.DeleteErr != nil {
		if err := m.DeleteErr(url); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, strings.TrimPrefix(url, memoryBaseURL+"/"))
	return nil
}

// URLFor returns the URL Put would assign to key.
func (m *Memory) URLFor(key string) string {
	return memoryBaseURL + "/" + key
}

// Len reports the number of stored objects.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Object returns the stored bytes for key.
func (m *Memory) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}
