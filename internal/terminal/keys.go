package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/talgya/rogue-civ/internal/engine"
)

// ActionForKey maps a key press to an action. Arrows and hjkl move, space or
// b builds, Alt+Enter or f toggles fullscreen, Escape or Ctrl+C quits.
func ActionForKey(key tcell.Key, r rune, mod tcell.ModMask) (engine.Action, bool) {
	switch key {
	case tcell.KeyUp:
		return engine.ActionMoveUp, true
	case tcell.KeyDown:
		return engine.ActionMoveDown, true
	case tcell.KeyLeft:
		return engine.ActionMoveLeft, true
	case tcell.KeyRight:
		return engine.ActionMoveRight, true
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return engine.ActionQuit, true
	case tcell.KeyEnter:
		if mod&tcell.ModAlt != 0 {
			return engine.ActionFullScreen, true
		}
		return 0, false
	case tcell.KeyRune:
	default:
		return 0, false
	}

	switch r {
	case 'k':
		return engine.ActionMoveUp, true
	case 'j':
		return engine.ActionMoveDown, true
	case 'h':
		return engine.ActionMoveLeft, true
	case 'l':
		return engine.ActionMoveRight, true
	case ' ', 'b':
		return engine.ActionBuild, true
	case 'f':
		return engine.ActionFullScreen, true
	}
	return 0, false
}
