package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"whiteboard/internal/board"

	_ "modernc.org/sqlite"
)

func sqlitePath(dir string) string {
	return filepath.Join(dir, "boards.db")
}

// SQLiteStore 基于 SQLite (WAL 模式) 的事务型后端
// SQLiteStore is the transactional backend using SQLite with WAL mode
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore 创建并初始化 SQLite 数据库；打开即探测，失败意味着该后端不可用
// NewSQLiteStore creates and initializes the SQLite database; opening doubles
// as the capability probe, failure means this backend is unavailable
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// 启用 WAL 模式和优化 PRAGMA / Enable WAL and performance PRAGMAs
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	store := &SQLiteStore{db: db, path: dbPath}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS boards (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		is_saved   INTEGER NOT NULL DEFAULT 0,
		slot       INTEGER NOT NULL DEFAULT 0,
		thumbnail  TEXT NOT NULL DEFAULT '',
		data       TEXT NOT NULL DEFAULT '{}',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_boards_slot ON boards(is_saved, slot);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Name 返回后端标识 / Name returns the backend identifier
func (s *SQLiteStore) Name() string { return BackendSQLite }

// Close 关闭数据库连接 / Close the database connection
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) GetBoard(id string) (*board.Board, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("board id is empty")
	}
	row := s.db.QueryRow(`
		SELECT id, name, is_saved, slot, thumbnail, data, created_at, updated_at
		FROM boards WHERE id=?`, id)

	b, err := scanBoard(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load board: %w", err)
	}
	return b, nil
}

func (s *SQLiteStore) AllBoards() ([]*board.Board, error) {
	rows, err := s.db.Query(`
		SELECT id, name, is_saved, slot, thumbnail, data, created_at, updated_at
		FROM boards`)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	var boards []*board.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			continue
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

func (s *SQLiteStore) SaveBoard(b *board.Board) error {
	if b == nil || strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("board id is empty")
	}
	data, err := json.Marshal(b.Data)
	if err != nil {
		return fmt.Errorf("marshal board data: %w", err)
	}
	b.UpdatedAt = nowMilli()
	if b.CreatedAt == 0 {
		b.CreatedAt = b.UpdatedAt
	}
	_, err = s.db.Exec(`
		INSERT INTO boards (id, name, is_saved, slot, thumbnail, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, is_saved=excluded.is_saved, slot=excluded.slot,
			thumbnail=excluded.thumbnail, data=excluded.data, updated_at=excluded.updated_at`,
		b.ID, b.Name, boolToInt(b.IsSaved), b.Slot, b.Thumbnail, string(data),
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isFullErr(err) {
			return fmt.Errorf("save board %s: %w", b.ID, ErrQuotaExceeded)
		}
		return fmt.Errorf("save board %s: %w", b.ID, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteBoard(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("board id is empty")
	}
	if _, err := s.db.Exec("DELETE FROM boards WHERE id=?", id); err != nil {
		return fmt.Errorf("delete board %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) GetMeta(key string) (string, bool, error) {
	row := s.db.QueryRow("SELECT value FROM metadata WHERE key=?", key)
	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("load metadata %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) SetMeta(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set metadata %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Clear() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM boards"); err != nil {
		return fmt.Errorf("clear boards: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM metadata"); err != nil {
		return fmt.Errorf("clear metadata: %w", err)
	}
	return tx.Commit()
}

// --- Helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

// scanBoard 解码一行画板记录。data 列损坏时保留零值 Data，
// 交给上层的校验流程判定并丢弃，不让单条坏记录炸掉整个查询。
// scanBoard decodes one board row. A corrupt data column leaves Data at its
// zero value for the caller's validation pass to reject, so one bad record
// never breaks the whole query.
func scanBoard(row rowScanner) (*board.Board, error) {
	var b board.Board
	var isSaved int
	var data string
	if err := row.Scan(&b.ID, &b.Name, &isSaved, &b.Slot, &b.Thumbnail, &data,
		&b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.IsSaved = isSaved != 0
	_ = json.Unmarshal([]byte(data), &b.Data)
	return &b, nil
}

func nowMilli() int64 {
	return time.Now().UnixMilli()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// isFullErr 识别磁盘/数据库空间耗尽 / isFullErr detects out-of-space failures
func isFullErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database or disk is full") ||
		strings.Contains(msg, "no space left on device")
}
