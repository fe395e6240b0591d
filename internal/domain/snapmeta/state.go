// ABOUTME: Connection lifecycle states for the control client
// ABOUTME: unopened -> connecting -> open -> closing -> closed, plus errored
package snapmeta

type State int

const (
	StateUnopened State = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// canOpen reports whether Open may start from s. A closed or errored client
// reconnects on a fresh socket.
func (s State) canOpen() bool {
	return s == StateUnopened || s == StateClosed || s == StateErrored
}

// settled reports whether no socket is held in state s.
func (s State) settled() bool {
	return s == StateUnopened || s == StateClosed || s == StateErrored
}
