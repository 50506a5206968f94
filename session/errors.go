package session

import "errors"

var (
	// ErrConfigNil indicates that a nil Config was provided to an option.
	ErrConfigNil = errors.New("session config is nil")

	// ErrInvalidCompID indicates an empty SenderCompID or TargetCompID.
	ErrInvalidCompID = errors.New("SenderCompID and TargetCompID must not be empty")

	// ErrInvalidSeqNum indicates a sequence number below 1.
	ErrInvalidSeqNum = errors.New("sequence number must be greater than 0")
)

var (
	// ErrInvalidTransition is returned when an event is not valid in the current state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrNotLoggedOn indicates a message that requires an established session.
	ErrNotLoggedOn = errors.New("session is not logged on")

	// ErrUnexpectedLogon indicates a Logon received on an established session.
	ErrUnexpectedLogon = errors.New("unexpected Logon on an established session")

	// ErrLogonRejected indicates that the counterparty answered our Logon with a Logout.
	ErrLogonRejected = errors.New("logon rejected by counterparty")
)

var (
	// ErrSeqTooLow indicates a Logon whose MsgSeqNum is below the expected incoming sequence number.
	ErrSeqTooLow = errors.New("MsgSeqNum too low")

	// ErrDuplicate indicates a message whose MsgSeqNum was already processed.
	ErrDuplicate = errors.New("duplicate message")

	// ErrInvalidNewSeqNo indicates a Sequence Reset whose NewSeqNo would move the sequence backwards.
	ErrInvalidNewSeqNo = errors.New("invalid NewSeqNo")

	// ErrUnexpectedSeqNum indicates an outgoing frame whose MsgSeqNum is not the next outgoing sequence number.
	ErrUnexpectedSeqNum = errors.New("unexpected outgoing MsgSeqNum")

	// ErrMissingSeqNum indicates a message without a valid MsgSeqNum (34).
	ErrMissingSeqNum = errors.New("missing or invalid MsgSeqNum")

	// ErrMissingMsgType indicates a message without MsgType (35).
	ErrMissingMsgType = errors.New("missing MsgType")

	// ErrInvalidAdminMessage indicates a session-level message missing a required field or carrying a bad value.
	ErrInvalidAdminMessage = errors.New("invalid administrative message")
)

var (
	// ErrCompIDMismatch indicates a message whose SenderCompID/TargetCompID do not match the session.
	ErrCompIDMismatch = errors.New("CompID mismatch")

	// ErrVersionMismatch indicates a message whose BeginString differs from the session version.
	ErrVersionMismatch = errors.New("BeginString mismatch")

	// ErrTooManyMalformed indicates that consecutive malformed messages exceeded the configured threshold.
	ErrTooManyMalformed = errors.New("too many malformed messages")
)

var (
	// ErrLogonTimeout indicates that no Logon reply arrived within the logon timeout.
	ErrLogonTimeout = errors.New("logon timeout")

	// ErrLogoutTimeout indicates that no Logout reply arrived within the logout timeout.
	ErrLogoutTimeout = errors.New("logout timeout")

	// ErrHeartbeatTimeout indicates that the counterparty did not answer a Test Request in time.
	ErrHeartbeatTimeout = errors.New("heartbeat timeout")
)

var (
	// ErrNoSeqNums indicates that a SeqNumStore holds no saved sequence numbers.
	ErrNoSeqNums = errors.New("no saved sequence numbers")
)
