package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"whiteboard/internal/board"
)

func filePath(dir string) string {
	return filepath.Join(dir, "boards.json")
}

// fileBlob 单文件后端的整体布局：全部画板加元数据序列化为一个 JSON 文件。
// 画板条目保持 RawMessage，单条损坏的记录不会让整个集合无法读取。
// fileBlob is the flat backend layout: the whole board collection plus the
// metadata map as one JSON file. Board entries stay RawMessage so one corrupt
// record never makes the whole collection unreadable.
type fileBlob struct {
	Boards   map[string]json.RawMessage `json:"boards"`
	Metadata map[string]string          `json:"metadata"`
}

// FileStore 单文件 JSON 回退后端。每次 SaveBoard 读出整个集合、替换条目、
// 整体重写。O(n)，但 n 最多 4（草稿 + 3 个槽位），可以接受。
// FileStore is the flat JSON fallback backend. Every SaveBoard reads the full
// collection, replaces the entry, and rewrites the whole blob. That is O(n),
// with n capped at 4 (draft + 3 slots), so it is acceptable.
type FileStore struct {
	path string
}

// NewFileStore 创建单文件后端；创建目录并试写一次作为能力探测
// NewFileStore creates the flat-file backend; making the directory and a
// trial write double as the capability probe
func NewFileStore(path string) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("file store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	fs := &FileStore{path: path}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if err := fs.write(fileBlob{}); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

// Name 返回后端标识 / Name returns the backend identifier
func (fs *FileStore) Name() string { return BackendFile }

func (fs *FileStore) Close() error { return nil }

func (fs *FileStore) GetBoard(id string) (*board.Board, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("board id is empty")
	}
	blob, err := fs.read()
	if err != nil {
		return nil, err
	}
	raw, ok := blob.Boards[id]
	if !ok {
		return nil, nil
	}
	return decodeBoard(id, raw), nil
}

func (fs *FileStore) AllBoards() ([]*board.Board, error) {
	blob, err := fs.read()
	if err != nil {
		return nil, err
	}
	var boards []*board.Board
	for id, raw := range blob.Boards {
		if b := decodeBoard(id, raw); b != nil {
			boards = append(boards, b)
		}
	}
	return boards, nil
}

func (fs *FileStore) SaveBoard(b *board.Board) error {
	if b == nil || strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("board id is empty")
	}
	blob, err := fs.read()
	if err != nil {
		return err
	}
	b.UpdatedAt = nowMilli()
	if b.CreatedAt == 0 {
		b.CreatedAt = b.UpdatedAt
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal board %s: %w", b.ID, err)
	}
	if blob.Boards == nil {
		blob.Boards = make(map[string]json.RawMessage)
	}
	blob.Boards[b.ID] = raw
	return fs.write(blob)
}

func (fs *FileStore) DeleteBoard(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("board id is empty")
	}
	blob, err := fs.read()
	if err != nil {
		return err
	}
	if _, ok := blob.Boards[id]; !ok {
		return nil
	}
	delete(blob.Boards, id)
	return fs.write(blob)
}

func (fs *FileStore) GetMeta(key string) (string, bool, error) {
	blob, err := fs.read()
	if err != nil {
		return "", false, err
	}
	value, ok := blob.Metadata[key]
	return value, ok, nil
}

func (fs *FileStore) SetMeta(key, value string) error {
	blob, err := fs.read()
	if err != nil {
		return err
	}
	if blob.Metadata == nil {
		blob.Metadata = make(map[string]string)
	}
	blob.Metadata[key] = value
	return fs.write(blob)
}

func (fs *FileStore) Clear() error {
	return fs.write(fileBlob{})
}

// --- Helpers ---

func (fs *FileStore) read() (fileBlob, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileBlob{}, nil
		}
		return fileBlob{}, fmt.Errorf("read %s: %w", fs.path, err)
	}
	var blob fileBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return fileBlob{}, fmt.Errorf("parse %s: %w", fs.path, err)
	}
	return blob, nil
}

// write 先写临时文件再重命名，写到一半掉电不会留下损坏的集合
// write goes through a temp file plus rename so a torn write never leaves a
// corrupt collection behind
func (fs *FileStore) write(blob fileBlob) error {
	data, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", fs.path, err)
	}
	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		if isQuotaErr(err) {
			return fmt.Errorf("write %s: %w", fs.path, ErrQuotaExceeded)
		}
		return fmt.Errorf("write %s: %w", fs.path, err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("replace %s: %w", fs.path, err)
	}
	return nil
}

// decodeBoard 解码单个画板条目；payload 损坏时保留零值 Data 交给上层校验丢弃
// decodeBoard decodes one board entry; a corrupt payload leaves Data at its
// zero value for the caller's validation pass to reject
func decodeBoard(id string, raw json.RawMessage) *board.Board {
	var b board.Board
	if err := json.Unmarshal(raw, &b); err == nil {
		return &b
	}
	var header struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		CreatedAt int64  `json:"createdAt"`
		UpdatedAt int64  `json:"updatedAt"`
		IsSaved   bool   `json:"isSaved"`
		Slot      int    `json:"slotNumber"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil
	}
	return &board.Board{
		ID:        id,
		Name:      header.Name,
		CreatedAt: header.CreatedAt,
		UpdatedAt: header.UpdatedAt,
		IsSaved:   header.IsSaved,
		Slot:      header.Slot,
	}
}

// isQuotaErr 识别磁盘空间耗尽 / isQuotaErr detects out-of-space failures
func isQuotaErr(err error) bool {
	return errors.Is(err, syscall.ENOSPC)
}
