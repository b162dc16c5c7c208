package types

import "fmt"

// Phase is a session's position in its lifecycle. Transitions are monotone:
// Open -> Committed -> Revealed -> Settled. No backtracking, no skipping.
type Phase uint32

const (
	PhaseOpen Phase = iota
	PhaseCommitted
	PhaseRevealed
	PhaseSettled
)

// String renders the phase name, matching the enum-to-string pattern used
// throughout this codebase for wire-visible small enums.
func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhaseCommitted:
		return "committed"
	case PhaseRevealed:
		return "revealed"
	case PhaseSettled:
		return "settled"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(p))
	}
}
