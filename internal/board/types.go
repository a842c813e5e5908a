package board

import "github.com/google/uuid"

// DraftID 草稿画板的保留 ID；其余画板 ID 均为生成的 UUID
// DraftID is the reserved id of the draft board; all other ids are generated UUIDs
const DraftID = "draft"

const (
	// MaxSaved 保存槽位上限 / MaxSaved is the saved-board slot cap
	MaxSaved = 3
	// MaxNameLen 画板名称最大长度 / MaxNameLen is the maximum board name length
	MaxNameLen = 50
	// CurrentSchemaVersion 当前画板数据格式版本
	// CurrentSchemaVersion is the current payload schema version
	CurrentSchemaVersion = 1
)

// Stroke 一条自由绘制的笔迹（直线 / 箭头 / 虚线）
// Stroke is one freeform drawn path (line / arrow / dotted)
type Stroke struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind,omitempty"`
	Points      []float64 `json:"points"`
	Color       string    `json:"color"`
	StrokeWidth float64   `json:"strokeWidth"`
}

// Icon 画板上放置的图标标记
// Icon is a marker placed on the board
type Icon struct {
	ID         string  `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Image      string  `json:"image"`
	AutoPlaced bool    `json:"autoPlaced,omitempty"`
}

// Preferences 画板偏好设置；字段宽松，旧版本的偏好集也能加载
// Preferences is the board preference bag; permissive so older sets still load
type Preferences struct {
	BrushColor     string         `json:"brushColor,omitempty"`
	BrushWidth     float64        `json:"brushWidth,omitempty"`
	DottedLine     bool           `json:"dottedLine,omitempty"`
	AutoPlaceIcons bool           `json:"autoPlaceIcons,omitempty"`
	MapVariant     string         `json:"mapVariant,omitempty"`
	Extra          map[string]any `json:"extra,omitempty"`
}

// Payload 单个画板的 JSON 快照：笔迹、图标和偏好设置
// Payload is the JSON-safe snapshot of one board: strokes, icons, preferences
type Payload struct {
	Strokes     []Stroke    `json:"strokes"`
	Icons       []Icon      `json:"icons"`
	Preferences Preferences `json:"preferences"`
}

// Data 带版本号的画板快照
// Data is a version-tagged board snapshot
type Data struct {
	SchemaVersion int     `json:"schemaVersion"`
	Payload       Payload `json:"payload"`
}

// Board 一块命名的、带时间戳的画板
// Board is a named, timestamped board snapshot
type Board struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"` // epoch ms
	UpdatedAt int64  `json:"updatedAt"` // epoch ms
	IsSaved   bool   `json:"isSaved"`
	Slot      int    `json:"slotNumber,omitempty"` // 1..3 for saved boards, 0 for the draft
	Thumbnail string `json:"thumbnail,omitempty"`  // encoded preview, best effort
	Data      Data   `json:"data"`
}

// Summary 列表展示用的画板元数据，不含 payload
// Summary is display-safe board metadata without the payload
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slot      int    `json:"slotNumber"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Summarize 返回画板的展示元数据
// Summarize returns the board's display metadata
func (b *Board) Summarize() Summary {
	return Summary{
		ID:        b.ID,
		Name:      b.Name,
		Slot:      b.Slot,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
		Thumbnail: b.Thumbnail,
	}
}

// NewID 生成新的画板 ID / NewID generates a new board id
func NewID() string {
	return uuid.NewString()
}

// EmptyPayload 返回空画板内容 / EmptyPayload returns empty board content
func EmptyPayload() Payload {
	return Payload{
		Strokes:     []Stroke{},
		Icons:       []Icon{},
		Preferences: Preferences{},
	}
}

// NewDraft 构造一块空的草稿画板
// NewDraft constructs an empty draft board
func NewDraft(now int64) *Board {
	return &Board{
		ID:        DraftID,
		Name:      "Draft",
		CreatedAt: now,
		UpdatedAt: now,
		IsSaved:   false,
		Data: Data{
			SchemaVersion: CurrentSchemaVersion,
			Payload:       EmptyPayload(),
		},
	}
}

// Clone 深拷贝画板，切断与原对象的共享
// Clone deep-copies the board so the copy shares nothing with the original
func (b *Board) Clone() *Board {
	c := *b
	c.Data.Payload = b.Data.Payload.Clone()
	return &c
}

// Clone 深拷贝画板内容 / Clone deep-copies the payload
func (p Payload) Clone() Payload {
	out := Payload{
		Strokes:     make([]Stroke, len(p.Strokes)),
		Icons:       append([]Icon(nil), p.Icons...),
		Preferences: p.Preferences,
	}
	for i, s := range p.Strokes {
		s.Points = append([]float64(nil), s.Points...)
		out.Strokes[i] = s
	}
	if out.Icons == nil {
		out.Icons = []Icon{}
	}
	if p.Preferences.Extra != nil {
		extra := make(map[string]any, len(p.Preferences.Extra))
		for k, v := range p.Preferences.Extra {
			extra[k] = v
		}
		out.Preferences.Extra = extra
	}
	return out
}
