package match

import (
	"errors"
	"skirmish/internal/config"
)

var (
	// ErrNotReady is returned by map queries while no accepted map exists.
	ErrNotReady = errors.New("match: map not ready")
	// ErrInvalidTransition is reported when a request does not apply to the
	// current state.
	ErrInvalidTransition = errors.New("match: invalid transition")
)

// State is the top-level application state.
type State uint8

const (
	StateMenu State = iota
	StateInitializing
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StateInitializing:
		return "initializing"
	case StatePlaying:
		return "playing"
	}
	return "unknown"
}

// Phase tracks the map lifecycle. Queries succeed only in PhaseReady.
type Phase uint8

const (
	PhaseInit Phase = iota
	PhaseGenerate
	PhaseValidate
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseGenerate:
		return "generate"
	case PhaseValidate:
		return "validate"
	case PhaseReady:
		return "ready"
	}
	return "unknown"
}

// Request is a state transition queued with Submit and applied at the start
// of the next tick.
type Request interface {
	request()
}

// StartMatch generates a new map from Settings and enters StatePlaying on
// success. It is valid from the menu and while playing (a restart).
type StartMatch struct {
	Settings config.Settings
}

// ReturnToMenu drops the current map.
type ReturnToMenu struct{}

// SetFogOfWar toggles fog for the current and future matches.
type SetFogOfWar struct {
	Enabled bool
}

func (StartMatch) request()   {}
func (ReturnToMenu) request() {}
func (SetFogOfWar) request()  {}
