package lifecycle

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"whiteboard/internal/board"
	"whiteboard/internal/log"
	"whiteboard/internal/storage"
	"whiteboard/internal/workspace"

	"github.com/stretchr/testify/require"
)

// countingStore 包装存储并统计写入次数，用于观察防抖合并效果
// countingStore wraps a store and counts writes to observe debounce collapsing
type countingStore struct {
	storage.Store
	saves atomic.Int64
}

func (c *countingStore) SaveBoard(b *board.Board) error {
	c.saves.Add(1)
	return c.Store.SaveBoard(b)
}

// 一阵密集编辑合并为一次落盘，且写入的是最终状态
// A burst of edits collapses into one write, and the write carries the final state
func TestAutoSave_BurstCollapses(t *testing.T) {
	cs := &countingStore{Store: storage.NewMemoryStore()}
	ws := workspace.New()
	m := New(cs, ws, log.NewNop())
	require.NoError(t, m.Init())
	m.SetDebounceWindow(20 * time.Millisecond)
	ws.OnChange(m.NotifyChange)

	base := cs.saves.Load()
	for i := 0; i < 10; i++ {
		draw(ws, "s"+string(rune('0'+i)))
	}

	require.Eventually(t, func() bool {
		return cs.saves.Load() > base
	}, 2*time.Second, 5*time.Millisecond)

	// 安静期后写入次数不再增长 / The write count stops growing after the quiet period
	settled := cs.saves.Load()
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, settled, cs.saves.Load())

	persisted, err := cs.GetBoard(board.DraftID)
	require.NoError(t, err)
	require.Len(t, persisted.Data.Payload.Strokes, 10)
}

// 尾沿触发：窗口内的早期变更不会立即写盘
// Trailing edge: an early change inside the window does not write immediately
func TestAutoSave_TrailingEdge(t *testing.T) {
	cs := &countingStore{Store: storage.NewMemoryStore()}
	ws := workspace.New()
	m := New(cs, ws, log.NewNop())
	require.NoError(t, m.Init())
	m.SetDebounceWindow(200 * time.Millisecond)
	ws.OnChange(m.NotifyChange)

	base := cs.saves.Load()
	draw(ws, "s1")
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, base, cs.saves.Load())
}

// 初始化完成前的变更通知被忽略 / Change notifications before Init are ignored
func TestAutoSave_IgnoredBeforeInit(t *testing.T) {
	cs := &countingStore{Store: storage.NewMemoryStore()}
	ws := workspace.New()
	m := New(cs, ws, log.NewNop())
	m.SetDebounceWindow(5 * time.Millisecond)
	ws.OnChange(m.NotifyChange)

	draw(ws, "s1")
	time.Sleep(50 * time.Millisecond)
	require.Zero(t, cs.saves.Load())
}

// 调整防抖窗口可以和变更通知并发进行（race 检测下跑）
// Window adjustment may race change notifications (exercised under the race
// detector)
func TestSetDebounceWindow_ConcurrentWithChanges(t *testing.T) {
	cs := &countingStore{Store: storage.NewMemoryStore()}
	ws := workspace.New()
	m := New(cs, ws, log.NewNop())
	require.NoError(t, m.Init())
	ws.OnChange(m.NotifyChange)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			draw(ws, "s")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			m.SetDebounceWindow(time.Duration(i+1) * time.Millisecond)
		}
	}()
	wg.Wait()
}

// 切换画板本身就持久化了切出方，防抖定时器随后触发也只是重写同一状态
// Switching already persists the outgoing board; a later debounce fire just
// rewrites the same state
func TestAutoSave_PendingFireAfterSwitchIsHarmless(t *testing.T) {
	cs := &countingStore{Store: storage.NewMemoryStore()}
	ws := workspace.New()
	m := New(cs, ws, log.NewNop())
	require.NoError(t, m.Init())
	m.SetDebounceWindow(30 * time.Millisecond)
	ws.OnChange(m.NotifyChange)

	saved, err := m.PinCurrentBoard(1, "target")
	require.NoError(t, err)
	require.NoError(t, m.CreateNewDraft())

	draw(ws, "draft-edit")
	require.NoError(t, m.SetCurrentBoard(saved.ID))
	time.Sleep(100 * time.Millisecond)

	// 草稿保留切换前的编辑，已保存画板保留固定时的内容
	// The draft keeps the pre-switch edit; the saved board keeps its pinned content
	draft, err := cs.GetBoard(board.DraftID)
	require.NoError(t, err)
	require.Len(t, draft.Data.Payload.Strokes, 1)

	pinned, err := cs.GetBoard(saved.ID)
	require.NoError(t, err)
	require.Empty(t, pinned.Data.Payload.Strokes)
}
