package i18n

// EnMessages English message catalog
var EnMessages = map[string]string{
	// Sidebar
	"sidebar.slots":  "Slots",
	"sidebar.draft":  "Draft",
	"sidebar.empty":  "empty",
	"sidebar.active": "active",

	// Status bar
	"status.ready":    "Ready",
	"status.degraded": "Storage unavailable: changes are not persisted",
	"status.saving":   "Saving...",
	"status.saved":    "Saved",

	// Board list
	"board.draft_name": "Draft",
	"board.strokes":    "%d strokes",
	"board.icons":      "%d icons",

	// Prompts
	"prompt.rename":         "New name",
	"prompt.pin":            "Board name (empty for default)",
	"prompt.delete_confirm": "Delete %q? This cannot be undone. (y/n)",

	// Errors
	"error.limit_reached":     "All %d slots are in use, clear a board first",
	"error.slot_conflict":     "Slot %d is already occupied",
	"error.not_found":         "Board not found",
	"error.validation_failed": "Invalid input: %s",
	"error.storage":           "Storage error: %s",
	"error.corrupted":         "Stored board data is corrupted",

	// Keybindings
	"keys.switch": "enter open",
	"keys.pin":    "p pin",
	"keys.rename": "r rename",
	"keys.delete": "d delete",
	"keys.new":    "n new draft",
	"keys.quit":   "q quit",
}
