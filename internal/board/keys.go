package board

import "context"

// Key is a board key press, independent of the terminal library.
type Key int

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyEnter
	KeySpace
	KeyDelete
)

// Action tells the caller what a key press did or asks it to do.
type Action int

const (
	ActionNone Action = iota
	ActionMoved
	ActionEdit
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionMoved:
		return "moved"
	case ActionEdit:
		return "edit"
	case ActionDelete:
		return "delete"
	default:
		return "none"
	}
}

// Focus is the position of the selected todo on the board.
type Focus struct {
	Lane int
	Pos  int
}

// Valid reports whether focus points at a todo in lanes.
func (f Focus) Valid(lanes []Lane) bool {
	return f.Lane >= 0 && f.Lane < len(lanes) && f.Pos >= 0 && f.Pos < len(lanes[f.Lane].Todos)
}

// HandleKey applies a key press to the focused todo. Left and Right move it
// to the adjacent lane exactly like a drop on that lane; Up and Down move it
// one position within its lane. Moves past the first or last lane or
// position do nothing.
func (c *Coordinator) HandleKey(ctx context.Context, lanes []Lane, focus Focus, key Key) (Action, error) {
	if !focus.Valid(lanes) {
		return ActionNone, nil
	}
	lane := &lanes[focus.Lane]
	todo := lane.Todos[focus.Pos]

	switch key {
	case KeyEnter, KeySpace:
		return ActionEdit, nil
	case KeyDelete:
		return ActionDelete, nil
	case KeyLeft, KeyRight:
		target := focus.Lane - 1
		if key == KeyRight {
			target = focus.Lane + 1
		}
		if target < 0 || target >= len(lanes) {
			return ActionNone, nil
		}
		c.BeginDrag(todo)
		if err := c.Drop(ctx, &lanes[target]); err != nil {
			return ActionNone, err
		}
		return ActionMoved, nil
	case KeyUp, KeyDown:
		target := focus.Pos - 1
		if key == KeyDown {
			target = focus.Pos + 1
		}
		if target < 0 || target >= len(lane.Todos) {
			return ActionNone, nil
		}
		c.BeginDrag(todo)
		if err := c.DropAt(ctx, lane, target); err != nil {
			return ActionNone, err
		}
		return ActionMoved, nil
	}
	return ActionNone, nil
}
