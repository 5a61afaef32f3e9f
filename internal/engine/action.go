package engine

// Action is one discrete player command. Exactly one is consumed per tick.
type Action uint8

const (
	ActionMoveUp Action = iota
	ActionMoveDown
	ActionMoveLeft
	ActionMoveRight
	ActionBuild
	ActionFullScreen // Handled at the presentation boundary
	ActionQuit       // Ends the loop
)

var actionNames = [...]string{
	ActionMoveUp:     "move_up",
	ActionMoveDown:   "move_down",
	ActionMoveLeft:   "move_left",
	ActionMoveRight:  "move_right",
	ActionBuild:      "build",
	ActionFullScreen: "fullscreen",
	ActionQuit:       "quit",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// Simulated reports whether the action advances the simulation.
func (a Action) Simulated() bool {
	return a <= ActionBuild
}

// delta returns the movement offset of a move action.
func (a Action) delta() (dx, dy int, ok bool) {
	switch a {
	case ActionMoveUp:
		return 0, -1, true
	case ActionMoveDown:
		return 0, 1, true
	case ActionMoveLeft:
		return -1, 0, true
	case ActionMoveRight:
		return 1, 0, true
	}
	return 0, 0, false
}
