package workspace

import (
	"whiteboard/internal/board"
	"whiteboard/internal/schema"
)

// Serialize 把活跃画布深拷贝为纯数据快照。绝不交出活对象引用：
// 快照生成之后对画布的修改不能回头改掉已序列化的内容。
// Serialize deep-copies the live canvas into a plain-data snapshot. Live
// references are never handed out: mutating the canvas after the snapshot
// must not retroactively alter it.
func (w *Workspace) Serialize() board.Payload {
	w.mu.Lock()
	defer w.mu.Unlock()
	p := board.Payload{
		Strokes:     w.strokes,
		Icons:       w.icons,
		Preferences: w.prefs,
	}
	return p.Clone()
}

// Hydrate 把画板内容加载进活跃画布。先校验再动状态：校验失败时画布
// 原样保留并返回 CORRUPTED_DATA 错误。成功后清空旧内容、深拷贝载入，
// 再重算派生内容。
// Hydrate loads a board payload into the live canvas. Validation runs before
// any state is touched: on failure the canvas is left as-is and a
// CORRUPTED_DATA error is returned. On success the old content is cleared,
// the payload deep-copied in, and derived content recomputed.
func (w *Workspace) Hydrate(p board.Payload) error {
	if res := schema.ValidatePayload(p); !res.Valid {
		return &board.Error{
			Code:       board.CodeCorruptedData,
			Message:    "payload failed validation",
			Violations: res.Errors,
		}
	}

	// 载入的内容来自存储，本身无需再触发自动保存
	// Loaded content came from storage; no auto-save notification is needed
	c := p.Clone()
	w.mu.Lock()
	w.strokes = c.Strokes
	w.icons = c.Icons
	w.prefs = c.Preferences
	w.recomputeDerivedLocked()
	w.mu.Unlock()
	return nil
}
