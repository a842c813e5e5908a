package storage

import (
	"errors"
	"fmt"
	"strings"

	"whiteboard/internal/board"
)

// 元数据固定键 / Fixed metadata keys
const (
	// MetaLastOpened 上次打开的画板 ID / MetaLastOpened is the last-opened board id
	MetaLastOpened = "last_opened_board"
)

// 后端名称 / Backend names
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

var (
	// ErrUnavailable 所有持久化后端都不可用
	// ErrUnavailable means no persistent backend is available
	ErrUnavailable = errors.New("no storage backend available")

	// ErrQuotaExceeded 存储空间耗尽（磁盘满）
	// ErrQuotaExceeded means the backing store ran out of space
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Store 画板持久化接口，支持多后端 (SQLite / 单文件 JSON / 内存)
// Store is the board persistence interface supporting multiple backends
// (SQLite / flat JSON file / in-memory)
type Store interface {
	// GetBoard 点查；键不存在时返回 (nil, nil) 而不是错误
	// GetBoard is a point lookup; a missing key yields (nil, nil), not an error
	GetBoard(id string) (*board.Board, error)

	// AllBoards 全量扫描；顺序未定义，由调用方重排
	// AllBoards is a full scan; order is unspecified, callers re-sort
	AllBoards() ([]*board.Board, error)

	// SaveBoard 按 ID upsert，副作用是把 UpdatedAt 刷成当前时间
	// SaveBoard upserts by id and stamps UpdatedAt as a side effect
	SaveBoard(b *board.Board) error

	// DeleteBoard 幂等删除 / DeleteBoard is an idempotent removal
	DeleteBoard(id string) error

	// 跨会话簿记用的小型键值空间 / Small key-value space for cross-session bookkeeping
	GetMeta(key string) (string, bool, error)
	SetMeta(key, value string) error

	// Clear 清空全部画板和元数据（仅恢复/测试用）
	// Clear wipes all boards and metadata (recovery/testing only)
	Clear() error

	// Name 后端标识 / Name identifies the backend
	Name() string

	Close() error
}

// Open 按能力探测选择后端：先探测 SQLite，失败则回退到单文件 JSON；
// 两者都不可用时返回 ErrUnavailable，调用方应降级为纯内存模式。
// Open selects a backend by capability probe: SQLite first, then the flat
// JSON file fallback; if neither works it returns ErrUnavailable and the
// caller must degrade to memory-only operation.
func Open(dir string, backend string) (Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("%w: storage dir is empty", ErrUnavailable)
	}

	switch backend {
	case BackendSQLite:
		return NewSQLiteStore(sqlitePath(dir))
	case BackendFile:
		return NewFileStore(filePath(dir))
	case "", "auto":
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}

	st, sqliteErr := NewSQLiteStore(sqlitePath(dir))
	if sqliteErr == nil {
		return st, nil
	}
	fs, fileErr := NewFileStore(filePath(dir))
	if fileErr == nil {
		return fs, nil
	}
	return nil, fmt.Errorf("%w: sqlite: %v; file: %v", ErrUnavailable, sqliteErr, fileErr)
}
