package tui

import (
	"errors"
	"fmt"
	"strings"

	"whiteboard/internal/board"
	"whiteboard/internal/i18n"
	"whiteboard/internal/lifecycle"
	"whiteboard/internal/workspace"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// mode 输入模式 / mode is the current input mode
type mode int

const (
	modeNormal mode = iota
	modeRename
	modePin
	modeConfirmDelete
)

// App Bubble Tea 主 Model：草稿行 + 3 个槽位行的画板面板
// App is the main Bubble Tea model: a board panel of the draft row plus the
// three slot rows
type App struct {
	mgr *lifecycle.Manager
	ws  *workspace.Workspace

	// 布局 / Layout
	width  int
	height int

	// 选择与模式 / Selection and mode
	selected int // 0 = 草稿 / draft, 1..MaxSaved = 槽位 / slots
	mode     mode
	input    textinput.Model
	pending  string // rename / delete 目标画板 ID / target board id
	pinSlot  int

	// 状态 / State
	lastError string
	notice    string

	// 配置 / Config
	theme  Theme
	keys   KeyMap
	locale *i18n.I18n
}

// NewApp 创建画板 TUI / NewApp creates the board TUI
func NewApp(mgr *lifecycle.Manager, ws *workspace.Workspace) App {
	ti := textinput.New()
	ti.CharLimit = board.MaxNameLen

	return App{
		mgr:    mgr,
		ws:     ws,
		input:  ti,
		theme:  DarkTheme(),
		keys:   DefaultKeyMap(),
		locale: i18n.Global(),
	}
}

func (a App) Init() tea.Cmd {
	return textinput.Blink
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		if a.mode != modeNormal {
			return a.updatePrompt(msg)
		}
		return a.updateNormal(msg)
	}

	return a, nil
}

func (a App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.lastError = ""
	a.notice = ""

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Up):
		if a.selected > 0 {
			a.selected--
		}
		return a, nil

	case key.Matches(msg, a.keys.Down):
		if a.selected < board.MaxSaved {
			a.selected++
		}
		return a, nil

	case key.Matches(msg, a.keys.Open):
		id, filled := a.selectedBoardID()
		if !filled {
			return a, nil
		}
		if err := a.mgr.SetCurrentBoard(id); err != nil {
			a.lastError = a.renderError(err)
		}
		return a, nil

	case key.Matches(msg, a.keys.Pin):
		// 只有选中空槽位时才能固定 / Pinning needs an empty slot selected
		if a.selected == 0 {
			return a, nil
		}
		if _, filled := a.selectedBoardID(); filled {
			a.lastError = a.locale.T("error.slot_conflict", a.selected)
			return a, nil
		}
		a.mode = modePin
		a.pinSlot = a.selected
		a.input.Placeholder = a.locale.T("prompt.pin")
		a.input.SetValue("")
		a.input.Focus()
		return a, textinput.Blink

	case key.Matches(msg, a.keys.Rename):
		id, filled := a.selectedBoardID()
		if !filled {
			return a, nil
		}
		a.mode = modeRename
		a.pending = id
		a.input.Placeholder = a.locale.T("prompt.rename")
		a.input.SetValue("")
		a.input.Focus()
		return a, textinput.Blink

	case key.Matches(msg, a.keys.Delete):
		if a.selected == 0 {
			return a, nil
		}
		id, filled := a.selectedBoardID()
		if !filled {
			return a, nil
		}
		a.mode = modeConfirmDelete
		a.pending = id
		return a, nil

	case key.Matches(msg, a.keys.NewDraft):
		if err := a.mgr.CreateNewDraft(); err != nil {
			a.lastError = a.renderError(err)
		} else {
			a.selected = 0
		}
		return a, nil
	}

	return a, nil
}

func (a App) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Cancel) {
		a.mode = modeNormal
		a.input.Blur()
		return a, nil
	}

	if a.mode == modeConfirmDelete {
		switch msg.String() {
		case "y", "Y":
			if err := a.mgr.DeleteSavedBoard(a.pending); err != nil {
				a.lastError = a.renderError(err)
			}
			a.mode = modeNormal
		case "n", "N":
			a.mode = modeNormal
		}
		return a, nil
	}

	if msg.String() == "enter" {
		name := a.input.Value()
		switch a.mode {
		case modeRename:
			if err := a.mgr.RenameBoard(a.pending, name); err != nil {
				a.lastError = a.renderError(err)
			}
		case modePin:
			if _, err := a.mgr.PinCurrentBoard(a.pinSlot, name); err != nil {
				a.lastError = a.renderError(err)
			} else {
				a.selected = a.pinSlot
			}
		}
		a.mode = modeNormal
		a.input.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Initializing..."
	}

	var parts []string
	parts = append(parts, a.theme.TitleStyle.Render(" Whiteboard · "+a.locale.T("sidebar.slots")))
	parts = append(parts, "")

	currentID := a.mgr.CurrentBoardID()
	saved := a.mgr.SavedBoards()
	bySlot := make(map[int]board.Summary, len(saved))
	for _, s := range saved {
		bySlot[s.Slot] = s
	}

	// 草稿行 / Draft row
	parts = append(parts, a.renderRow(0, a.locale.T("board.draft_name"), board.DraftID == currentID, true))

	// 槽位行 / Slot rows
	for slot := 1; slot <= board.MaxSaved; slot++ {
		if s, ok := bySlot[slot]; ok {
			label := fmt.Sprintf("%d · %s", slot, s.Name)
			parts = append(parts, a.renderRow(slot, label, s.ID == currentID, true))
		} else {
			label := fmt.Sprintf("%d · [%s]", slot, a.locale.T("sidebar.empty"))
			parts = append(parts, a.renderRow(slot, label, false, false))
		}
	}

	parts = append(parts, "")
	parts = append(parts, a.theme.MutedStyle.Render("  "+a.locale.T("board.strokes", a.ws.StrokeCount())+
		" · "+a.locale.T("board.icons", a.ws.IconCount())))

	if a.mode == modeConfirmDelete {
		name := a.pending
		if b, ok := a.mgr.BoardByID(a.pending); ok {
			name = b.Name
		}
		parts = append(parts, "")
		parts = append(parts, a.theme.ErrorStyle.Render("  "+a.locale.T("prompt.delete_confirm", name)))
	} else if a.mode == modeRename || a.mode == modePin {
		parts = append(parts, "")
		parts = append(parts, a.theme.PromptStyle.Width(a.width-2).Render(a.input.View()))
	}

	if a.lastError != "" {
		parts = append(parts, "")
		parts = append(parts, a.theme.ErrorStyle.Render("  ✗ "+a.lastError))
	}

	body := strings.Join(parts, "\n")
	gap := a.height - lipgloss.Height(body) - 2
	if gap > 0 {
		body += strings.Repeat("\n", gap)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, a.renderHelp(), a.renderStatusBar())
}

func (a App) renderRow(index int, label string, active, filled bool) string {
	marker := "  "
	if index == a.selected {
		marker = "❯ "
	}
	style := a.theme.RowStyle
	if active {
		style = a.theme.ActiveRowStyle
		label += " · " + a.locale.T("sidebar.active")
	} else if !filled {
		style = a.theme.EmptySlotStyle
	}
	return marker + style.Render(label)
}

func (a App) renderHelp() string {
	keys := []string{
		a.locale.T("keys.switch"),
		a.locale.T("keys.pin"),
		a.locale.T("keys.rename"),
		a.locale.T("keys.delete"),
		a.locale.T("keys.new"),
		a.locale.T("keys.quit"),
	}
	return a.theme.MutedStyle.Render(" " + strings.Join(keys, " · "))
}

func (a App) renderStatusBar() string {
	status := a.locale.T("status.ready")
	if a.mgr.Degraded() {
		status = a.locale.T("status.degraded")
	}
	bar := " " + status
	gap := a.width - lipgloss.Width(bar) - 1
	if gap < 0 {
		gap = 0
	}
	return a.theme.StatusBarStyle.Width(a.width).Render(bar + strings.Repeat(" ", gap))
}

// selectedBoardID 返回选中行对应的画板 ID 与是否有画板
// selectedBoardID maps the selected row to a board id and whether it is filled
func (a App) selectedBoardID() (string, bool) {
	if a.selected == 0 {
		return board.DraftID, true
	}
	for _, s := range a.mgr.SavedBoards() {
		if s.Slot == a.selected {
			return s.ID, true
		}
	}
	return "", false
}

// renderError 把结构化错误翻译成用户可读的提示
// renderError turns a structured failure into a user-facing message
func (a App) renderError(err error) string {
	var be *board.Error
	if !errors.As(err, &be) {
		return err.Error()
	}
	switch be.Code {
	case board.CodeLimitReached:
		return a.locale.T("error.limit_reached", board.MaxSaved)
	case board.CodeSlotConflict:
		return a.locale.T("error.slot_conflict", a.pinSlot)
	case board.CodeNotFound:
		return a.locale.T("error.not_found")
	case board.CodeValidationFailed:
		return a.locale.T("error.validation_failed", strings.Join(be.Violations, "; "))
	case board.CodeCorruptedData:
		return a.locale.T("error.corrupted")
	default:
		return a.locale.T("error.storage", be.Error())
	}
}

// Run 启动 Bubble Tea TUI；退出前把当前画板再落盘一次
// Run starts the Bubble Tea TUI and flushes the active board once on exit
func Run(mgr *lifecycle.Manager, ws *workspace.Workspace) error {
	app := NewApp(mgr, ws)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	if flushErr := mgr.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}
	return err
}
