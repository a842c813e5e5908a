package lifecycle

import (
	"sync"
	"time"

	"github.com/bep/debounce"
)

// DefaultDebounce 自动保存防抖窗口：一阵密集编辑合并为一次落盘
// DefaultDebounce is the auto-save window: a burst of edits collapses into
// one persisted write
const DefaultDebounce = 500 * time.Millisecond

// AutoSaver 防抖的自动保存调度器。尾沿触发：一阵编辑里最后一次变更
// 之后的安静期才写盘，写的是最终状态而不是第一笔。
// AutoSaver is the debounced auto-save scheduler. Trailing-edge: the write
// happens after the quiet period following the last change in a burst, so
// the final state is what gets written, not the first.
type AutoSaver struct {
	mu        sync.Mutex // 保护 debounced 的替换 / guards swaps of debounced
	debounced func(func())
	save      func()
}

func newAutoSaver(window time.Duration, save func()) *AutoSaver {
	return &AutoSaver{
		debounced: debounce.New(window),
		save:      save,
	}
}

// Trigger 登记一次变更，重置防抖窗口 / Trigger registers a change, resetting the window
func (a *AutoSaver) Trigger() {
	a.mu.Lock()
	d := a.debounced
	a.mu.Unlock()
	d(a.save)
}

func (a *AutoSaver) setWindow(window time.Duration) {
	a.mu.Lock()
	a.debounced = debounce.New(window)
	a.mu.Unlock()
}

// Flush 立即持久化当前状态。已排队的尾沿触发随后照常执行，
// 写入的仍是当前状态，所以无需取消。
// Flush persists the current state immediately. A queued trailing fire still
// runs afterwards but rewrites the same current state, so no cancel is needed.
func (a *AutoSaver) Flush() {
	a.save()
}

// NotifyChange 画布变更通知入口，由绘图表面在每次状态变化时调用。
// 不取管理器锁：清空画布的路径在管理器持锁状态下触发画布回调，这里再取锁
// 就会在同一协程上自锁。
// NotifyChange is the canvas change entry point, called by the drawing
// surface on every state change. It takes no manager lock: canvas-clearing
// paths fire the surface callback while the manager holds its lock, and
// re-locking here would self-deadlock on the same goroutine.
func (m *Manager) NotifyChange() {
	if !m.ready.Load() {
		return
	}
	m.saver.Trigger()
}

// Flush 立即持久化当前画板（退出前调用） / Flush persists the active board now
// (called before shutdown)
func (m *Manager) Flush() error {
	return m.persistCurrent()
}

// SetDebounceWindow 调整防抖窗口，启动装配和测试时调用
// SetDebounceWindow adjusts the window, called from startup wiring and tests
func (m *Manager) SetDebounceWindow(window time.Duration) {
	m.saver.setWindow(window)
}
