package studio

// DefaultUndoLimit bounds the undo stack.
const DefaultUndoLimit = 50

// Snapshot is one restorable state of the editor.
type Snapshot struct {
	Form           Form
	GeneratedImage string
}

// Timeline keeps undo and redo stacks of snapshots. Recording a new
// snapshot clears the redo stack.
type Timeline struct {
	past   []Snapshot
	future []Snapshot
	limit  int
}

func NewTimeline(limit int) *Timeline {
	if limit <= 0 {
		limit = DefaultUndoLimit
	}
	return &Timeline{limit: limit}
}

// Record pushes s as the state to return to on the next undo.
func (t *Timeline) Record(s Snapshot) {
	t.past = appendBounded(t.past, s, t.limit)
	t.future = nil
}

// Undo returns the previous snapshot and stores current for redo.
func (t *Timeline) Undo(current Snapshot) (Snapshot, bool) {
	if len(t.past) == 0 {
		return Snapshot{}, false
	}
	prev := t.past[len(t.past)-1]
	t.past = t.past[:len(t.past)-1]
	t.future = appendBounded(t.future, current, t.limit)
	return prev, true
}

// Redo returns the snapshot undone most recently and stores current for undo.
func (t *Timeline) Redo(current Snapshot) (Snapshot, bool) {
	if len(t.future) == 0 {
		return Snapshot{}, false
	}
	next := t.future[len(t.future)-1]
	t.future = t.future[:len(t.future)-1]
	t.past = appendBounded(t.past, current, t.limit)
	return next, true
}

func (t *Timeline) CanUndo() bool { return len(t.past) > 0 }
func (t *Timeline) CanRedo() bool { return len(t.future) > 0 }

// Len reports the sizes of the undo and redo stacks.
func (t *Timeline) Len() (past, future int) { return len(t.past), len(t.future) }

func appendBounded(stack []Snapshot, s Snapshot, limit int) []Snapshot {
	stack = append(stack, s)
	if over := len(stack) - limit; over > 0 {
		stack = append([]Snapshot(nil), stack[over:]...)
	}
	return stack
}
