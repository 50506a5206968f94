package session

// State represents the stages of a FIX session.
type State uint32

// FIX session states.
const (
	// Disconnected is both the initial and the terminal state. A session can log on again from it.
	Disconnected State = iota
	// LogonSent indicates that our Logon was sent and the counterparty's Logon is awaited.
	LogonSent
	// Active indicates an established session exchanging sequenced messages.
	Active
	// LogoutSent indicates that our Logout was sent and the counterparty's Logout is awaited.
	LogoutSent
)

// IsDisconnected returns if the current state is disconnected.
func (s State) IsDisconnected() bool { return s == Disconnected }

// IsActive returns if the current state is active.
func (s State) IsActive() bool { return s == Active }

// IsEstablished returns if sequenced messages are accepted in the current state.
func (s State) IsEstablished() bool { return s == Active || s == LogoutSent }

// String returns string representation of the current state.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case LogonSent:
		return "logon-sent"
	case Active:
		return "active"
	case LogoutSent:
		return "logout-sent"
	default:
		return "unknown"
	}
}

// Event drives a state transition.
type Event uint32

// Session events.
const (
	// EventLogonSent is raised when we send a Logon.
	EventLogonSent Event = iota
	// EventLogonAccepted is raised when a valid Logon is received.
	EventLogonAccepted
	// EventLogoutSent is raised when we send a Logout.
	EventLogoutSent
	// EventLogoutReceived is raised when a Logout is received.
	EventLogoutReceived
	// EventFatal is raised on any fatal protocol violation or timeout.
	EventFatal
)

// String returns string representation of the event.
func (e Event) String() string {
	switch e {
	case EventLogonSent:
		return "logon-sent"
	case EventLogonAccepted:
		return "logon-accepted"
	case EventLogoutSent:
		return "logout-sent"
	case EventLogoutReceived:
		return "logout-received"
	case EventFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Transition returns the state reached from s on event e.
//
// It is a pure function over the session transition table:
//
//	Disconnected --logon-sent-------> LogonSent
//	Disconnected --logon-accepted---> Active        (acceptor)
//	LogonSent    --logon-accepted---> Active
//	LogonSent    --logout-received--> Disconnected
//	Active       --logout-sent------> LogoutSent
//	Active       --logout-received--> Disconnected  (after replying with Logout)
//	LogoutSent   --logout-received--> Disconnected
//	any          --fatal------------> Disconnected
//
// Any other pair returns ErrInvalidTransition and leaves the state unchanged.
func Transition(s State, e Event) (State, error) {
	switch e {
	case EventFatal:
		return Disconnected, nil
	case EventLogonSent:
		if s == Disconnected {
			return LogonSent, nil
		}
	case EventLogonAccepted:
		if s == Disconnected || s == LogonSent {
			return Active, nil
		}
	case EventLogoutSent:
		if s == Active {
			return LogoutSent, nil
		}
	case EventLogoutReceived:
		if s == LogonSent || s == Active || s == LogoutSent {
			return Disconnected, nil
		}
	}

	return s, ErrInvalidTransition
}
