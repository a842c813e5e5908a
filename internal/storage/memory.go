package storage

import (
	"fmt"
	"strings"
	"sync"

	"whiteboard/internal/board"
)

// MemoryStore 纯内存后端：持久化后端全部不可用时的降级模式，也用于测试。
// 进程退出后数据即丢失。
// MemoryStore is the in-memory backend: the degraded mode when no persistent
// backend is available, also used in tests. Data is gone when the process exits.
type MemoryStore struct {
	mu     sync.Mutex
	boards map[string]*board.Board
	meta   map[string]string
}

// NewMemoryStore 创建内存后端 / NewMemoryStore creates the in-memory backend
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		boards: make(map[string]*board.Board),
		meta:   make(map[string]string),
	}
}

// Name 返回后端标识 / Name returns the backend identifier
func (m *MemoryStore) Name() string { return BackendMemory }

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) GetBoard(id string) (*board.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.boards[strings.TrimSpace(id)]
	if !ok {
		return nil, nil
	}
	return b.Clone(), nil
}

func (m *MemoryStore) AllBoards() ([]*board.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	boards := make([]*board.Board, 0, len(m.boards))
	for _, b := range m.boards {
		boards = append(boards, b.Clone())
	}
	return boards, nil
}

func (m *MemoryStore) SaveBoard(b *board.Board) error {
	if b == nil || strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("board id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b.UpdatedAt = nowMilli()
	if b.CreatedAt == 0 {
		b.CreatedAt = b.UpdatedAt
	}
	m.boards[b.ID] = b.Clone()
	return nil
}

func (m *MemoryStore) DeleteBoard(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.boards, strings.TrimSpace(id))
	return nil
}

func (m *MemoryStore) GetMeta(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.meta[key]
	return value, ok, nil
}

func (m *MemoryStore) SetMeta(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta[key] = value
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boards = make(map[string]*board.Board)
	m.meta = make(map[string]string)
	return nil
}
