package i18n

// ZhCNMessages 简体中文消息表 / Simplified Chinese message catalog
var ZhCNMessages = map[string]string{
	// 侧边栏
	"sidebar.slots":  "槽位",
	"sidebar.draft":  "草稿",
	"sidebar.empty":  "空",
	"sidebar.active": "当前",

	// 状态栏
	"status.ready":    "就绪",
	"status.degraded": "存储不可用：修改不会被保存",
	"status.saving":   "保存中...",
	"status.saved":    "已保存",

	// 画板列表
	"board.draft_name": "草稿",
	"board.strokes":    "%d 条笔迹",
	"board.icons":      "%d 个图标",

	// 输入提示
	"prompt.rename":         "新名称",
	"prompt.pin":            "画板名称（留空使用默认名）",
	"prompt.delete_confirm": "删除 %q？此操作不可撤销。(y/n)",

	// 错误
	"error.limit_reached":     "%d 个槽位已全部占用，请先清除一块画板",
	"error.slot_conflict":     "槽位 %d 已被占用",
	"error.not_found":         "画板不存在",
	"error.validation_failed": "输入无效：%s",
	"error.storage":           "存储错误：%s",
	"error.corrupted":         "存储的画板数据已损坏",

	// 快捷键
	"keys.switch": "enter 打开",
	"keys.pin":    "p 固定",
	"keys.rename": "r 重命名",
	"keys.delete": "d 删除",
	"keys.new":    "n 新建草稿",
	"keys.quit":   "q 退出",
}
