package bundle

import (
	"testing"

	"github.com/piwi3910/presettab/internal/model"
)

func layerWith(perimeters int) *model.Layer {
	l := model.NewLayer()
	l.Set("perimeters", model.Int(perimeters))
	return l
}

func perimetersOf(s Snapshot) string {
	return s.Config.String("perimeters")
}

func TestNewHistory(t *testing.T) {
	h := NewHistory()
	if h.maxDepth != defaultMaxDepth {
		t.Errorf("expected maxDepth %d, got %d", defaultMaxDepth, h.maxDepth)
	}
	if h.CanUndo() {
		t.Error("new history should not be undoable")
	}
	if h.CanRedo() {
		t.Error("new history should not be redoable")
	}
}

func TestHistoryUndoRedoKeepsLabels(t *testing.T) {
	h := NewHistory()
	h.Push(Snapshot{Config: layerWith(2), Label: "Set perimeters"})

	restored, ok := h.Undo(Snapshot{Config: layerWith(3)})
	if !ok {
		t.Fatal("undo should succeed")
	}
	if perimetersOf(restored) != "2" || restored.Label != "Set perimeters" {
		t.Errorf("unexpected undo snapshot %s %q", perimetersOf(restored), restored.Label)
	}

	redone, ok := h.Redo(restored)
	if !ok {
		t.Fatal("redo should succeed")
	}
	if perimetersOf(redone) != "3" {
		t.Errorf("expected 3 perimeters after redo, got %s", perimetersOf(redone))
	}
	if redone.Label != "Set perimeters" {
		t.Errorf("redo should carry the undone label, got %q", redone.Label)
	}

	again, ok := h.Undo(redone)
	if !ok || again.Label != "Set perimeters" {
		t.Errorf("second undo lost the label: %q", again.Label)
	}
}

func TestPushClearsRedo(t *testing.T) {
	h := NewHistory()
	h.Push(Snapshot{Config: layerWith(2), Label: "a"})

	if _, ok := h.Undo(Snapshot{Config: layerWith(3)}); !ok {
		t.Fatal("undo should succeed")
	}
	if !h.CanRedo() {
		t.Fatal("should be able to redo after undo")
	}

	h.Push(Snapshot{Config: layerWith(2), Label: "b"})
	if h.CanRedo() {
		t.Error("redo stack should be cleared after push")
	}
}

func TestMaxDepth(t *testing.T) {
	h := &History{maxDepth: 3}
	for i := 0; i < 5; i++ {
		h.Push(Snapshot{Config: layerWith(i)})
	}
	if len(h.undoStack) != 3 {
		t.Fatalf("expected undo stack length 3, got %d", len(h.undoStack))
	}
	if perimetersOf(h.undoStack[0]) != "2" {
		t.Errorf("oldest entries should be dropped, first is %s", perimetersOf(h.undoStack[0]))
	}
}

func TestUndoRedoEmpty(t *testing.T) {
	h := NewHistory()
	if _, ok := h.Undo(Snapshot{Config: layerWith(1)}); ok {
		t.Error("undo on empty history should return false")
	}
	if _, ok := h.Redo(Snapshot{Config: layerWith(1)}); ok {
		t.Error("redo on empty history should return false")
	}
}

func TestClear(t *testing.T) {
	h := NewHistory()
	h.Push(Snapshot{Config: layerWith(1)})
	h.Push(Snapshot{Config: layerWith(2)})
	h.Undo(Snapshot{Config: layerWith(3)})

	h.Clear()
	if h.CanUndo() || h.CanRedo() {
		t.Error("after clear, should not be able to undo or redo")
	}
}
