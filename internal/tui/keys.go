package tui

import "github.com/ashishacharya123/pkms-todos/internal/board"

// boardKey maps a key press on the board to a coordinator key. Plain arrows
// and hjkl only move the selection; shifted arrows and HJKL move the todo.
func boardKey(key string) board.Key {
	switch key {
	case "shift+left", "H":
		return board.KeyLeft
	case "shift+right", "L":
		return board.KeyRight
	case "shift+up", "K":
		return board.KeyUp
	case "shift+down", "J":
		return board.KeyDown
	case "enter":
		return board.KeyEnter
	case " ":
		return board.KeySpace
	case "delete", "backspace", "d":
		return board.KeyDelete
	}
	return board.KeyNone
}

const boardHelp = "←↓↑→/hjkl select · shift+arrows/HJKL move · enter open · x done · f favorite · a archive · d delete · r reload · q quit"

const detailHelp = "↑↓/jk select · ←→ page · enter add (+) or remove (✗) blocker · esc close banner or detail"
