package lifecycle

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"whiteboard/internal/board"
	"whiteboard/internal/log"
	"whiteboard/internal/schema"
	"whiteboard/internal/storage"

	"github.com/benbjohnson/clock"
)

// ErrNotReady 初始化完成前调用了变更操作，属于调用方编程错误
// ErrNotReady means a mutating operation ran before initialization, which is
// a caller programming error
var ErrNotReady = errors.New("board manager is not initialized")

// Surface 活跃画布；序列化桥接的另一端，由 workspace 包实现
// Surface is the live canvas, the far end of the serialization bridge,
// implemented by the workspace package
type Surface interface {
	Serialize() board.Payload
	Hydrate(board.Payload) error
	Clear()
}

// ThumbnailFunc 渲染当前画布的缩略图。尽力而为：失败绝不影响所属操作。
// ThumbnailFunc renders a thumbnail of the current canvas. Best effort:
// failure never fails the owning operation.
type ThumbnailFunc func() (string, error)

// Manager 画板生命周期管理器：持有当前画板 ID、草稿、已保存画板列表，
// 负责槽位分配、画板切换、自动保存调度和全部变更操作。
// Manager is the board lifecycle manager: it owns the current board id, the
// draft, the saved-board list, slot allocation, board switching, auto-save
// scheduling and every mutating operation.
type Manager struct {
	mu      sync.Mutex
	store   storage.Store
	surface Surface
	logger  log.Logger
	clk     clock.Clock
	thumb   ThumbnailFunc
	saver   *AutoSaver

	// ready 原子读写：NotifyChange 在画布回调里检查它，而那个回调可能
	// 正处于管理器持有 mu 的清空路径上，不能再取 mu
	// ready is read/written atomically: NotifyChange checks it from the canvas
	// callback, which may run on a clear path where the manager already holds
	// mu, so it must not take mu again
	ready     atomic.Bool
	degraded  bool
	lastErr   error
	currentID string
	draft     *board.Board
	saved     []*board.Board // 按槽位升序 / ascending by slot
}

// New 创建管理器。store 为 nil 表示持久化后端全部不可用，
// 管理器降级为纯内存模式并记录错误，但仍保持可用。
// New creates the manager. A nil store means no persistent backend is
// available; the manager degrades to memory-only with a recorded error but
// stays usable.
func New(store storage.Store, surface Surface, logger log.Logger) *Manager {
	m := &Manager{
		store:   store,
		surface: surface,
		logger:  logger,
		clk:     clock.New(),
	}
	if m.logger == nil {
		m.logger = log.NewNop()
	}
	if m.store == nil {
		m.store = storage.NewMemoryStore()
		m.degraded = true
		m.lastErr = storage.ErrUnavailable
		m.logger.Warn("storage unavailable, running memory-only")
	}
	m.saver = newAutoSaver(DefaultDebounce, func() {
		if err := m.persistCurrent(); err != nil {
			// 失败的写入只记录，不原地重试；下一次自动保存自然会再写
			// A failed write is recorded, not retried in place; the next
			// auto-save tick writes again
			m.logger.Warn("auto-save failed", "err", err)
		}
	})
	return m
}

// SetThumbnailFunc 注册缩略图渲染器 / SetThumbnailFunc registers the renderer
func (m *Manager) SetThumbnailFunc(fn ThumbnailFunc) {
	m.mu.Lock()
	m.thumb = fn
	m.mu.Unlock()
}

// Init 执行启动装载：加载（或重建）草稿，装载并校验已保存画板，
// 恢复上次打开的画板并水合画布。损坏的已保存画板只丢弃不报错，
// 启动永远不会被坏数据卡住。
// Init performs the startup load: load (or rebuild) the draft, load and
// validate saved boards, resolve the last-opened board and hydrate the
// canvas. Corrupted saved boards are dropped, never surfaced; startup is
// never blocked by bad data.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready.Load() {
		return nil
	}

	m.draft = m.loadDraftLocked()
	m.saved = m.loadSavedLocked()

	// 打开目标：上次打开的画板仍在已保存列表中则优先；
	// 否则最小槽位的已保存画板；都没有则草稿
	// Resolve the board to open: the last-opened id when it still exists
	// among saved boards, else the lowest-numbered saved board, else the draft
	var open *board.Board
	if id, ok, err := m.store.GetMeta(storage.MetaLastOpened); err == nil && ok {
		open = m.findSavedLocked(id)
	}
	if open == nil {
		if len(m.saved) > 0 {
			open = m.saved[0]
		} else {
			open = m.draft
		}
	}

	if err := m.surface.Hydrate(open.Data.Payload); err != nil {
		m.logger.Warn("hydrate on init failed, falling back to draft", "board", open.ID, "err", err)
		open = m.draft
		m.surface.Clear()
	}
	m.currentID = open.ID

	m.ready.Store(true)
	m.logger.Info("boards initialized",
		"backend", m.store.Name(), "saved", len(m.saved), "current", m.currentID)
	return nil
}

// loadDraftLocked 加载草稿；缺失或损坏时重建一块空草稿并持久化
// loadDraftLocked loads the draft; missing or corrupt drafts are silently
// rebuilt empty and persisted
func (m *Manager) loadDraftLocked() *board.Board {
	d, err := m.store.GetBoard(board.DraftID)
	if err != nil {
		m.logger.Warn("load draft failed", "err", err)
		m.lastErr = err
	}
	if d != nil {
		if p, ok := m.migrateAndValidateLocked(d); ok {
			d.Data = board.Data{SchemaVersion: board.CurrentSchemaVersion, Payload: p}
			d.IsSaved = false
			d.Slot = 0
			return d
		}
		m.logger.Warn("draft payload corrupt, resetting to empty")
	}
	fresh := board.NewDraft(m.clk.Now().UnixMilli())
	if err := m.store.SaveBoard(fresh); err != nil {
		m.logger.Warn("persist fresh draft failed", "err", err)
		m.lastErr = err
	}
	return fresh
}

// loadSavedLocked 装载已保存画板：过滤草稿、校验、截断到槽位上限、按槽位排序
// loadSavedLocked loads saved boards: filter out the draft, validate, cap to
// the slot limit, sort by slot
func (m *Manager) loadSavedLocked() []*board.Board {
	all, err := m.store.AllBoards()
	if err != nil {
		m.logger.Warn("load boards failed", "err", err)
		m.lastErr = err
		return nil
	}
	var saved []*board.Board
	for _, b := range all {
		if !b.IsSaved || b.ID == board.DraftID {
			continue
		}
		p, ok := m.migrateAndValidateLocked(b)
		if !ok {
			// 损坏的已保存画板静默丢弃，绝不阻塞启动
			// A corrupted saved board is dropped silently, never blocking startup
			m.logger.Warn("dropping corrupted saved board", "board", b.ID, "name", b.Name)
			continue
		}
		b.Data = board.Data{SchemaVersion: board.CurrentSchemaVersion, Payload: p}
		saved = append(saved, b)
	}
	sort.Slice(saved, func(i, j int) bool {
		if saved[i].Slot != saved[j].Slot {
			return saved[i].Slot < saved[j].Slot
		}
		return saved[i].UpdatedAt < saved[j].UpdatedAt
	})
	if len(saved) > board.MaxSaved {
		saved = saved[:board.MaxSaved]
	}
	// 槽位编号清洗：存储里重复或越界的编号压实为从 1 开始的连续前缀，
	// 槽位集必须始终是 {1..3} 的无重复子集
	// Slot sanitation: duplicate or out-of-range numbers from storage compact
	// to a contiguous prefix from 1; the slot set must stay a duplicate-free
	// subset of {1..3}
	for i, b := range saved {
		if b.Slot == i+1 {
			continue
		}
		b.Slot = i + 1
		if err := m.store.SaveBoard(b); err != nil {
			m.lastErr = err
			m.logger.Warn("persist renumbered board failed", "board", b.ID, "err", err)
		}
	}
	return saved
}

func (m *Manager) migrateAndValidateLocked(b *board.Board) (board.Payload, bool) {
	p, err := schema.Migrate(b.Data)
	if err != nil {
		m.logger.Warn("migration failed", "board", b.ID, "err", err)
		return board.Payload{}, false
	}
	if res := schema.ValidatePayload(p); !res.Valid {
		m.logger.Warn("payload validation failed", "board", b.ID, "violations", strings.Join(res.Errors, "; "))
		return board.Payload{}, false
	}
	return p, true
}

// --- 只读访问器 / Read accessors ---

// Ready 是否完成初始化 / Ready reports whether Init has completed
func (m *Manager) Ready() bool {
	return m.ready.Load()
}

// Degraded 是否运行在纯内存降级模式 / Degraded reports memory-only mode
func (m *Manager) Degraded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.degraded
}

// LastError 最近一次记录的存储错误 / LastError is the last recorded storage error
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// CurrentBoardID 当前画板 ID / CurrentBoardID is the active board id
func (m *Manager) CurrentBoardID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentID
}

// DraftBoard 返回草稿画板的拷贝 / DraftBoard returns a copy of the draft
func (m *Manager) DraftBoard() *board.Board {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draft == nil {
		return nil
	}
	return m.draft.Clone()
}

// SavedBoards 返回展示安全的元数据列表，不含 payload，列表开销恒小
// SavedBoards returns display-safe metadata only, never payloads, so listing
// stays cheap
func (m *Manager) SavedBoards() []board.Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]board.Summary, 0, len(m.saved))
	for _, b := range m.saved {
		out = append(out, b.Summarize())
	}
	return out
}

// BoardByID 按 ID 查找画板拷贝 / BoardByID looks up a board copy by id
func (m *Manager) BoardByID(id string) (*board.Board, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.findLocked(id)
	if b == nil {
		return nil, false
	}
	return b.Clone(), true
}

// CanSaveMore 是否还有空槽位 / CanSaveMore reports whether a slot is free
func (m *Manager) CanSaveMore() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved) < board.MaxSaved
}

// --- 变更操作 / Mutating operations ---

// SetCurrentBoard 切换当前画板。先无条件持久化当前活跃画板再切换：
// 无论切出的是草稿还是槽位画板，切换绝不丢失其最新编辑。
// SetCurrentBoard switches the active board. The outgoing board is persisted
// unconditionally before the switch: no edit made before switching is ever
// lost, draft or saved slot alike.
func (m *Manager) SetCurrentBoard(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ready.Load() {
		return ErrNotReady
	}
	if id == m.currentID {
		// 切到自身也把当前内容落一次盘 / Switching to itself still persists
		return m.persistCurrentLocked()
	}

	target := m.findLocked(id)
	if target == nil {
		return board.NotFound(id)
	}

	if err := m.persistCurrentLocked(); err != nil {
		return err
	}

	if err := m.surface.Hydrate(target.Data.Payload); err != nil {
		return err
	}
	m.currentID = target.ID
	m.rememberLastOpenedLocked(target.ID)
	return nil
}

// PinCurrentBoard 把当前画布固定到一个空槽位，生成新的已保存画板。
// 槽位已满返回 LIMIT_REACHED（携带当前数量），绝不静默覆盖或挤掉已有画板；
// 槽位被占用返回 SLOT_CONFLICT 并指明占用者；当前已是已保存画板时退化为
// 重命名（给了新名字）或空操作。
// PinCurrentBoard pins the current canvas into an empty slot, creating a new
// saved board. A full set returns LIMIT_REACHED carrying the count, never a
// silent overwrite or eviction; an occupied slot returns SLOT_CONFLICT naming
// the occupant; pinning an already-saved board degenerates to a rename (when
// a name is given) or a no-op.
func (m *Manager) PinCurrentBoard(slot int, name string) (*board.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ready.Load() {
		return nil, ErrNotReady
	}
	if slot < 1 || slot > board.MaxSaved {
		return nil, board.ValidationFailed(fmt.Sprintf("slotNumber: %d out of range 1..%d", slot, board.MaxSaved))
	}

	if cur := m.findSavedLocked(m.currentID); cur != nil {
		if strings.TrimSpace(name) != "" {
			if err := m.renameLocked(cur, name); err != nil {
				return nil, err
			}
		}
		return cur.Clone(), nil
	}

	if len(m.saved) >= board.MaxSaved {
		return nil, board.LimitReached(len(m.saved))
	}
	for _, b := range m.saved {
		if b.Slot == slot {
			return nil, board.SlotConflict(slot, b.ID)
		}
	}

	name = capName(name)
	if name == "" {
		name = fmt.Sprintf("Board %d", slot)
	}

	now := m.clk.Now().UnixMilli()
	b := &board.Board{
		ID:        board.NewID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		IsSaved:   true,
		Slot:      slot,
		Data: board.Data{
			SchemaVersion: board.CurrentSchemaVersion,
			Payload:       m.surface.Serialize(),
		},
	}
	m.captureThumbnailLocked(b)

	if err := m.store.SaveBoard(b); err != nil {
		m.lastErr = err
		return nil, board.StorageFailed("pin board", err)
	}

	m.saved = append(m.saved, b)
	sort.Slice(m.saved, func(i, j int) bool { return m.saved[i].Slot < m.saved[j].Slot })
	m.currentID = b.ID
	m.rememberLastOpenedLocked(b.ID)
	m.logger.Info("board pinned", "board", b.ID, "slot", slot, "name", name)
	return b.Clone(), nil
}

// CreateNewDraft 持久化当前画板，然后把草稿重置为空、设为当前并清空画布。
// 不触碰任何已保存画板。
// CreateNewDraft persists whatever is active, then resets the draft to empty,
// makes it current and clears the canvas. Saved boards are untouched.
func (m *Manager) CreateNewDraft() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ready.Load() {
		return ErrNotReady
	}

	if err := m.persistCurrentLocked(); err != nil {
		return err
	}

	fresh := board.NewDraft(m.clk.Now().UnixMilli())
	if err := m.store.SaveBoard(fresh); err != nil {
		m.lastErr = err
		return board.StorageFailed("persist new draft", err)
	}
	m.draft = fresh
	m.currentID = board.DraftID
	m.rememberLastOpenedLocked(board.DraftID)
	m.surface.Clear()
	return nil
}

// RenameBoard 重命名画板；名称去除首尾空白并截断到长度上限，结果为空则校验失败
// RenameBoard renames a board; the name is trimmed and length-capped, an
// empty result fails validation
func (m *Manager) RenameBoard(id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ready.Load() {
		return ErrNotReady
	}
	b := m.findLocked(id)
	if b == nil {
		return board.NotFound(id)
	}
	return m.renameLocked(b, name)
}

func (m *Manager) renameLocked(b *board.Board, name string) error {
	name = capName(name)
	if name == "" {
		return board.ValidationFailed("name: empty after trimming")
	}
	// 先持久化拷贝，成功后才改内存中的画板
	// Persist a copy first; the in-memory board changes only on success
	c := b.Clone()
	c.Name = name
	if err := m.store.SaveBoard(c); err != nil {
		m.lastErr = err
		return board.StorageFailed("rename board", err)
	}
	b.Name = c.Name
	b.UpdatedAt = c.UpdatedAt
	return nil
}

// DeleteSavedBoard 删除一块已保存画板：从存储和内存移除，压实槽位编号，
// 删除的是当前画板时自动改选剩余最小槽位的画板，没有则回落到草稿。
// DeleteSavedBoard removes a saved board from storage and memory, compacts
// slot numbers, and when the active board was deleted re-selects the lowest
// remaining slot, falling back to the draft when none remain.
func (m *Manager) DeleteSavedBoard(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ready.Load() {
		return ErrNotReady
	}
	if id == board.DraftID {
		return board.ValidationFailed("the draft board cannot be deleted")
	}
	victim := m.findSavedLocked(id)
	if victim == nil {
		return board.NotFound(id)
	}

	if err := m.store.DeleteBoard(id); err != nil {
		m.lastErr = err
		return board.StorageFailed("delete board", err)
	}

	kept := m.saved[:0]
	for _, b := range m.saved {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	m.saved = kept

	// 压实槽位：剩余画板重新编号为从 1 开始的连续前缀
	// Compact slots: remaining boards renumber to a contiguous prefix from 1
	for i, b := range m.saved {
		if b.Slot == i+1 {
			continue
		}
		b.Slot = i + 1
		if err := m.store.SaveBoard(b); err != nil {
			m.lastErr = err
			m.logger.Warn("persist renumbered board failed", "board", b.ID, "err", err)
		}
	}

	if m.currentID == id {
		next := m.draft
		if len(m.saved) > 0 {
			next = m.saved[0]
		}
		if err := m.surface.Hydrate(next.Data.Payload); err != nil {
			m.logger.Warn("hydrate after delete failed, falling back to draft", "board", next.ID, "err", err)
			next = m.draft
			m.surface.Clear()
		}
		m.currentID = next.ID
		m.rememberLastOpenedLocked(next.ID)
	}
	m.logger.Info("board deleted", "board", id, "remaining", len(m.saved))
	return nil
}

// --- 内部方法 / Internal methods ---

func (m *Manager) findLocked(id string) *board.Board {
	if id == board.DraftID {
		return m.draft
	}
	return m.findSavedLocked(id)
}

func (m *Manager) findSavedLocked(id string) *board.Board {
	for _, b := range m.saved {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// persistCurrent 自动保存入口：把画布序列化进当前画板并写入存储
// persistCurrent is the auto-save entry: serialize the canvas into the
// current board and write it out
func (m *Manager) persistCurrent() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ready.Load() {
		return ErrNotReady
	}
	return m.persistCurrentLocked()
}

func (m *Manager) persistCurrentLocked() error {
	cur := m.findLocked(m.currentID)
	if cur == nil {
		return board.NotFound(m.currentID)
	}
	cur.Data = board.Data{
		SchemaVersion: board.CurrentSchemaVersion,
		Payload:       m.surface.Serialize(),
	}
	m.captureThumbnailLocked(cur)
	if err := m.store.SaveBoard(cur); err != nil {
		m.lastErr = err
		return board.StorageFailed("persist board", err)
	}
	return nil
}

// captureThumbnailLocked 尽力而为地刷新缩略图；失败只记日志
// captureThumbnailLocked refreshes the thumbnail best-effort; failure is
// only logged
func (m *Manager) captureThumbnailLocked(b *board.Board) {
	if m.thumb == nil {
		return
	}
	t, err := m.thumb()
	if err != nil {
		m.logger.Warn("thumbnail capture failed", "board", b.ID, "err", err)
		return
	}
	b.Thumbnail = t
}

// rememberLastOpenedLocked 记录上次打开的画板；纯簿记，失败不影响操作
// rememberLastOpenedLocked records the last-opened board; pure bookkeeping,
// failure never fails the operation
func (m *Manager) rememberLastOpenedLocked(id string) {
	if err := m.store.SetMeta(storage.MetaLastOpened, id); err != nil {
		m.logger.Warn("record last-opened failed", "err", err)
	}
}

// capName 去除首尾空白并按字符数截断 / capName trims and caps by rune count
func capName(name string) string {
	name = strings.TrimSpace(name)
	runes := []rune(name)
	if len(runes) > board.MaxNameLen {
		name = string(runes[:board.MaxNameLen])
	}
	return name
}
