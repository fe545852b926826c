package session

// State is the live connection lifecycle of one session. The persisted
// record tracks coarse status; this state drives the transport.
type State string

const (
	StateIdle                State = "idle"
	StateFetchingCredentials State = "fetching_credentials"
	StateConnecting          State = "connecting"
	StateConnected           State = "connected"
	StateStopping            State = "stopping"
	StateError               State = "error"
)

// canStart reports whether a start action is allowed from this state.
// Starting while a transport is being opened or is open is a no-op.
func (s State) canStart() bool {
	return s == StateIdle || s == StateError
}

// live reports whether session resources may be held in this state
func (s State) live() bool {
	switch s {
	case StateFetchingCredentials, StateConnecting, StateConnected, StateStopping:
		return true
	}
	return false
}
