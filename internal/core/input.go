package core

// Action represents a semantic player intent, abstracted from physical key
// presses, so the interactive match can be driven by keyboard or SSH alike.
type Action int

const (
	ActionNone       Action = iota
	ActionUp                // W, Up arrow - move cursor up
	ActionDown              // S, Down arrow - move cursor down
	ActionLeft              // A, Left arrow - move cursor left
	ActionRight             // D, Right arrow - move cursor right
	ActionPlace             // Space, Enter - place selected building at cursor
	ActionSell              // X, Backspace - remove building under cursor
	ActionCycleType         // Tab - select next building type
	ActionStartRound        // N - start the current round
	ActionAutoplay          // T - toggle the placement strategy
	ActionRestart           // R - reset the match
	ActionPause             // P - pause/unpause the clock
	ActionQuit              // Q, Ctrl+C - leave
)

var actionNames = map[Action]string{
	ActionNone:       "None",
	ActionUp:         "Up",
	ActionDown:       "Down",
	ActionLeft:       "Left",
	ActionRight:      "Right",
	ActionPlace:      "Place",
	ActionSell:       "Sell",
	ActionCycleType:  "CycleType",
	ActionStartRound: "StartRound",
	ActionAutoplay:   "Autoplay",
	ActionRestart:    "Restart",
	ActionPause:      "Pause",
	ActionQuit:       "Quit",
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "Unknown"
}

// InputFrame collects the actions triggered during one UI tick.
type InputFrame struct {
	Actions map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{Actions: make(map[Action]bool)}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	return f.Actions[a]
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	clear(f.Actions)
}
