package tui

import (
	"strings"
	"testing"

	"whiteboard/internal/board"
	"whiteboard/internal/lifecycle"
	"whiteboard/internal/log"
	"whiteboard/internal/storage"
	"whiteboard/internal/workspace"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestApp(t *testing.T) (App, *lifecycle.Manager, *workspace.Workspace) {
	t.Helper()
	ws := workspace.New()
	mgr := lifecycle.New(storage.NewMemoryStore(), ws, log.NewNop())
	if err := mgr.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	app := NewApp(mgr, ws)
	app.width, app.height = 100, 30
	return app, mgr, ws
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAppUpdate_Navigation(t *testing.T) {
	app, _, _ := newTestApp(t)

	m, _ := app.Update(keyMsg("j"))
	updated := m.(App)
	if updated.selected != 1 {
		t.Fatalf("selected=%d after down, want 1", updated.selected)
	}

	// 下边界：不越过最后一个槽位 / Lower bound: never past the last slot
	for i := 0; i < 10; i++ {
		m, _ = updated.Update(keyMsg("j"))
		updated = m.(App)
	}
	if updated.selected != board.MaxSaved {
		t.Fatalf("selected=%d, want %d", updated.selected, board.MaxSaved)
	}

	m, _ = updated.Update(keyMsg("k"))
	updated = m.(App)
	if updated.selected != board.MaxSaved-1 {
		t.Fatalf("selected=%d after up, want %d", updated.selected, board.MaxSaved-1)
	}
}

func TestAppUpdate_PinPromptFlow(t *testing.T) {
	app, mgr, _ := newTestApp(t)

	// 选中槽位 1 并进入固定模式 / Select slot 1 and enter pin mode
	m, _ := app.Update(keyMsg("j"))
	updated := m.(App)
	m, _ = updated.Update(keyMsg("p"))
	updated = m.(App)
	if updated.mode != modePin || updated.pinSlot != 1 {
		t.Fatalf("mode=%v pinSlot=%d, want pin mode on slot 1", updated.mode, updated.pinSlot)
	}

	// 输入名称并确认 / Type a name and confirm
	m, _ = updated.Update(keyMsg("Trip"))
	updated = m.(App)
	m, _ = updated.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updated = m.(App)
	if updated.mode != modeNormal {
		t.Fatalf("mode=%v after enter, want normal", updated.mode)
	}
	if updated.lastError != "" {
		t.Fatalf("unexpected error: %q", updated.lastError)
	}

	saved := mgr.SavedBoards()
	if len(saved) != 1 || saved[0].Name != "Trip" || saved[0].Slot != 1 {
		t.Fatalf("saved boards unexpected: %+v", saved)
	}
}

func TestAppUpdate_PinOccupiedSlotRejected(t *testing.T) {
	app, mgr, _ := newTestApp(t)
	if _, err := mgr.PinCurrentBoard(1, "taken"); err != nil {
		t.Fatalf("PinCurrentBoard: %v", err)
	}

	m, _ := app.Update(keyMsg("j"))
	updated := m.(App)
	m, _ = updated.Update(keyMsg("p"))
	updated = m.(App)
	if updated.mode != modeNormal {
		t.Fatal("pin prompt should not open on an occupied slot")
	}
	if updated.lastError == "" {
		t.Fatal("expected a slot-conflict message")
	}
}

func TestAppUpdate_DeleteConfirmFlow(t *testing.T) {
	app, mgr, _ := newTestApp(t)
	pinned, err := mgr.PinCurrentBoard(1, "victim")
	if err != nil {
		t.Fatalf("PinCurrentBoard: %v", err)
	}

	m, _ := app.Update(keyMsg("j"))
	updated := m.(App)
	m, _ = updated.Update(keyMsg("d"))
	updated = m.(App)
	if updated.mode != modeConfirmDelete || updated.pending != pinned.ID {
		t.Fatalf("mode=%v pending=%q, want delete confirm on %q", updated.mode, updated.pending, pinned.ID)
	}

	// n 取消，画板保留 / n cancels, the board stays
	m, _ = updated.Update(keyMsg("n"))
	updated = m.(App)
	if updated.mode != modeNormal || len(mgr.SavedBoards()) != 1 {
		t.Fatal("cancel must keep the board")
	}

	m, _ = updated.Update(keyMsg("d"))
	updated = m.(App)
	m, _ = updated.Update(keyMsg("y"))
	updated = m.(App)
	if len(mgr.SavedBoards()) != 0 {
		t.Fatal("confirm must delete the board")
	}
}

func TestAppUpdate_RenameFlow(t *testing.T) {
	app, mgr, _ := newTestApp(t)
	pinned, err := mgr.PinCurrentBoard(1, "before")
	if err != nil {
		t.Fatalf("PinCurrentBoard: %v", err)
	}

	m, _ := app.Update(keyMsg("j"))
	updated := m.(App)
	m, _ = updated.Update(keyMsg("r"))
	updated = m.(App)
	if updated.mode != modeRename {
		t.Fatalf("mode=%v, want rename", updated.mode)
	}

	m, _ = updated.Update(keyMsg("after"))
	updated = m.(App)
	m, _ = updated.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_ = m.(App)

	got, _ := mgr.BoardByID(pinned.ID)
	if got.Name != "after" {
		t.Fatalf("Name=%q after rename, want after", got.Name)
	}
}

func TestAppUpdate_EscCancelsPrompt(t *testing.T) {
	app, _, _ := newTestApp(t)
	m, _ := app.Update(keyMsg("j"))
	updated := m.(App)
	m, _ = updated.Update(keyMsg("p"))
	updated = m.(App)

	m, _ = updated.Update(tea.KeyMsg{Type: tea.KeyEsc})
	updated = m.(App)
	if updated.mode != modeNormal {
		t.Fatalf("mode=%v after esc, want normal", updated.mode)
	}
}

func TestAppView_RendersSlots(t *testing.T) {
	app, mgr, _ := newTestApp(t)
	if _, err := mgr.PinCurrentBoard(2, "Route"); err != nil {
		t.Fatalf("PinCurrentBoard: %v", err)
	}

	view := app.View()
	if !strings.Contains(view, "Route") {
		t.Fatalf("view missing pinned board name:\n%s", view)
	}
	// 空槽位标出来 / Empty slots are marked
	if !strings.Contains(view, "[empty]") {
		t.Fatalf("view missing empty slot marker:\n%s", view)
	}
}

func TestAppView_ShowsDegradedStatus(t *testing.T) {
	ws := workspace.New()
	mgr := lifecycle.New(nil, ws, log.NewNop())
	if err := mgr.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	app := NewApp(mgr, ws)
	app.width, app.height = 100, 30

	view := app.View()
	if !strings.Contains(view, "Storage unavailable") {
		t.Fatalf("view missing degraded notice:\n%s", view)
	}
}
