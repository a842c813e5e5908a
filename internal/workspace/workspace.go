package workspace

import (
	"sync"

	"whiteboard/internal/board"
)

// Workspace 活跃画布状态：当前正在绘制的笔迹、图标和偏好设置。
// 进程内只有一个活跃工作区、一个写入者；互斥锁只用来隔离自动保存
// 定时器协程的序列化读取。
// Workspace is the live canvas state: the strokes, icons and preferences
// being drawn right now. There is exactly one active workspace and one
// writer; the mutex only isolates serialization reads from the auto-save
// timer goroutine.
type Workspace struct {
	mu       sync.Mutex
	strokes  []board.Stroke
	icons    []board.Icon
	prefs    board.Preferences
	onChange func()
}

// New 创建空工作区 / New creates an empty workspace
func New() *Workspace {
	return &Workspace{
		strokes: []board.Stroke{},
		icons:   []board.Icon{},
	}
}

// OnChange 注册变更回调，驱动自动保存；每次状态变化后触发一次
// OnChange registers the change callback driving auto-save; it fires once
// after every state change
func (w *Workspace) OnChange(fn func()) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

func (w *Workspace) notify() {
	if w.onChange != nil {
		w.onChange()
	}
}

// AddStroke 追加一条笔迹 / AddStroke appends a stroke
func (w *Workspace) AddStroke(s board.Stroke) {
	w.mu.Lock()
	s.Points = append([]float64(nil), s.Points...)
	w.strokes = append(w.strokes, s)
	fn := w.onChange
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// RemoveStroke 按 ID 删除笔迹 / RemoveStroke removes a stroke by id
func (w *Workspace) RemoveStroke(id string) {
	w.mu.Lock()
	kept := w.strokes[:0]
	for _, s := range w.strokes {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	w.strokes = kept
	fn := w.onChange
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// PlaceIcon 放置一个图标 / PlaceIcon places an icon
func (w *Workspace) PlaceIcon(ic board.Icon) {
	w.mu.Lock()
	w.icons = append(w.icons, ic)
	fn := w.onChange
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// RemoveIcon 按 ID 删除图标 / RemoveIcon removes an icon by id
func (w *Workspace) RemoveIcon(id string) {
	w.mu.Lock()
	kept := w.icons[:0]
	for _, ic := range w.icons {
		if ic.ID != id {
			kept = append(kept, ic)
		}
	}
	w.icons = kept
	fn := w.onChange
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// SetPreferences 更新偏好设置 / SetPreferences updates the preference bag
func (w *Workspace) SetPreferences(p board.Preferences) {
	w.mu.Lock()
	w.prefs = p
	w.recomputeDerivedLocked()
	fn := w.onChange
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Preferences 返回当前偏好设置 / Preferences returns the current preferences
func (w *Workspace) Preferences() board.Preferences {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.prefs
}

// StrokeCount 当前笔迹数 / StrokeCount is the current stroke count
func (w *Workspace) StrokeCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.strokes)
}

// IconCount 当前图标数 / IconCount is the current icon count
func (w *Workspace) IconCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.icons)
}

// Clear 清空画布（新建草稿时由生命周期管理器调用）
// Clear empties the canvas (called by the lifecycle manager on new draft)
func (w *Workspace) Clear() {
	w.mu.Lock()
	w.strokes = []board.Stroke{}
	w.icons = []board.Icon{}
	w.prefs = board.Preferences{}
	fn := w.onChange
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// recomputeDerivedLocked 重算派生内容：自动放置开关关闭后，
// 清除此前自动放置的图标。调用方必须持有锁。
// recomputeDerivedLocked recomputes derived content: auto-placed icons are
// dropped once the auto-place toggle is off. Caller must hold the lock.
func (w *Workspace) recomputeDerivedLocked() {
	if w.prefs.AutoPlaceIcons {
		return
	}
	kept := w.icons[:0]
	for _, ic := range w.icons {
		if !ic.AutoPlaced {
			kept = append(kept, ic)
		}
	}
	w.icons = kept
}
