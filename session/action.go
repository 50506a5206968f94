package session

import (
	"fmt"

	"github.com/arloliu/go-fix/fix"
)

// ActionKind classifies what the caller must do after feeding the session an event.
//
// Kinds are ordered by precedence: when one inbound message produces several effects,
// the resulting Action carries the highest kind.
type ActionKind int

const (
	// ActionNone means the event was fully handled by the session; nothing to deliver.
	ActionNone ActionKind = iota
	// ActionIgnore means the input was discarded; Err carries the reason (duplicate, malformed, incomplete).
	ActionIgnore
	// ActionDeliver means Deliver holds application messages to pass on, in sequence order.
	ActionDeliver
	// ActionAdministrative means Outbound holds session-level messages to write to the counterparty.
	ActionAdministrative
	// ActionResendRequest means a gap was detected; Range is the requested range and Outbound holds the request.
	ActionResendRequest
	// ActionDisconnect means the logout handshake completed; write Outbound and close the connection.
	ActionDisconnect
	// ActionFatal means the session failed; write Outbound, if any, and close the connection. Err carries the reason.
	ActionFatal
)

// String returns string representation of the kind.
func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionIgnore:
		return "ignore"
	case ActionDeliver:
		return "deliver"
	case ActionAdministrative:
		return "administrative"
	case ActionResendRequest:
		return "resend-request"
	case ActionDisconnect:
		return "disconnect"
	case ActionFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// SeqRange is an inclusive range of sequence numbers.
type SeqRange struct {
	Begin uint64
	End   uint64
}

// IsZero reports whether the range is unset.
func (r SeqRange) IsZero() bool {
	return r.Begin == 0 && r.End == 0
}

// String returns the range as "begin..end".
func (r SeqRange) String() string {
	return fmt.Sprintf("%d..%d", r.Begin, r.End)
}

// Action is the result of an inbound message or a timer tick.
type Action struct {
	// Kind is the highest precedence effect.
	Kind ActionKind
	// Deliver holds application messages in sequence order.
	// Messages parsed by OnReceived borrow the caller's buffer; messages released from
	// the gap queue own their bytes.
	Deliver []*fix.Message
	// Outbound holds framed messages the caller must write, in order.
	Outbound [][]byte
	// Range is the requested range when a Resend Request was emitted.
	Range SeqRange
	// Err is the reason for Ignore, Disconnect and Fatal, and for rejected administrative messages.
	Err error
}

// IsFatal reports whether the session failed.
func (a Action) IsFatal() bool {
	return a.Kind == ActionFatal
}

// String returns a short description for logging.
func (a Action) String() string {
	s := fmt.Sprintf("%s deliver=%d outbound=%d", a.Kind, len(a.Deliver), len(a.Outbound))
	if !a.Range.IsZero() {
		s += " range=" + a.Range.String()
	}
	if a.Err != nil {
		s += " err=" + a.Err.Error()
	}

	return s
}

func (a *Action) merge(other Action) {
	a.Deliver = append(a.Deliver, other.Deliver...)
	a.Outbound = append(a.Outbound, other.Outbound...)

	if !other.Range.IsZero() {
		if a.Range.IsZero() {
			a.Range = other.Range
		} else {
			a.Range.Begin = min(a.Range.Begin, other.Range.Begin)
			a.Range.End = max(a.Range.End, other.Range.End)
		}
	}

	if other.Err != nil && (a.Err == nil || other.Kind >= a.Kind) {
		a.Err = other.Err
	}

	if other.Kind > a.Kind {
		a.Kind = other.Kind
	}
}

func noneAction() Action {
	return Action{Kind: ActionNone}
}

func ignoreAction(err error) Action {
	return Action{Kind: ActionIgnore, Err: err}
}

func deliverAction(msg *fix.Message) Action {
	return Action{Kind: ActionDeliver, Deliver: []*fix.Message{msg}}
}

func adminAction(frames ...[]byte) Action {
	return Action{Kind: ActionAdministrative, Outbound: frames}
}
