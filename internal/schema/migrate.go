package schema

import (
	"fmt"

	"whiteboard/internal/board"
)

// migration 单步纯迁移：把 from 版本的内容变换为 from+1 版本
// migration is one pure step transforming payload version from → from+1
type migration struct {
	from  int
	apply func(board.Payload) board.Payload
}

// migrations 按版本顺序排列的迁移管线。新版本在此追加一步，永远不要改写已有步骤。
// migrations is the version-ordered pipeline. A version bump appends one step
// here; existing steps are never rewritten.
//
// 版本历史 / Version history:
//
//	1: 初始格式（strokes / icons / preferences） / initial shape
var migrations = []migration{}

// Migrate 把带版本号的画板数据迁移到当前版本。幂等：对已是当前版本的数据是空操作。
// Migrate brings version-tagged board data forward to the current version.
// Idempotent: already-current data passes through unchanged.
func Migrate(d board.Data) (board.Payload, error) {
	v := d.SchemaVersion
	if v == 0 {
		// 早期数据未写版本号，按版本 1 处理
		// Early data carried no version tag; treat as version 1
		v = 1
	}
	if v > board.CurrentSchemaVersion {
		return board.Payload{}, fmt.Errorf("schema version %d is newer than supported version %d", v, board.CurrentSchemaVersion)
	}

	p := d.Payload
	for _, m := range migrations {
		if m.from < v {
			continue
		}
		p = m.apply(p)
		v = m.from + 1
	}
	if v != board.CurrentSchemaVersion {
		return board.Payload{}, fmt.Errorf("no migration path from version %d to %d", v, board.CurrentSchemaVersion)
	}
	return p, nil
}
