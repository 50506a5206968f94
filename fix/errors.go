package fix

import (
	"errors"
	"fmt"
)

var (
	// ErrIncomplete indicates that the buffer does not yet hold a whole message.
	// It is not a failure: the caller should append more bytes and parse again.
	ErrIncomplete = errors.New("incomplete message")

	// ErrInvalidFraming indicates that BeginString (8) or BodyLength (9) is missing, misplaced or invalid,
	// or that the CheckSum (10) field is not a 3-digit decimal.
	ErrInvalidFraming = errors.New("invalid framing")

	// ErrLengthMismatch indicates that the declared BodyLength does not match the body on the wire.
	ErrLengthMismatch = errors.New("body length mismatch")

	// ErrChecksumMismatch indicates that the declared CheckSum does not match the frame bytes.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrMalformedField indicates a field without '=' or with a non-numeric tag.
	ErrMalformedField = errors.New("malformed field")
)

var (
	// ErrUnsupportedVersion indicates a protocol version other than FIX 4.4 and FIX 5.0.
	ErrUnsupportedVersion = errors.New("unsupported FIX version")

	// ErrInvalidFieldValue indicates a field that cannot be serialized without corrupting the framing.
	ErrInvalidFieldValue = errors.New("invalid field value")

	// ErrFieldNotFound indicates that a requested tag is absent from the message.
	ErrFieldNotFound = errors.New("field not found")

	// ErrInvalidFieldFormat indicates that a field value cannot be converted to the requested type.
	ErrInvalidFieldFormat = errors.New("invalid field format")
)

// ParseError describes why a buffer could not be parsed into a message.
//
// Kind is one of the parser sentinel errors and is matched by errors.Is.
type ParseError struct {
	// Kind classifies the failure, e.g. ErrChecksumMismatch.
	Kind error
	// Offset is the byte offset in the buffer where the problem was found.
	Offset int
	// Tag is the offending tag, or 0 when not applicable.
	Tag int
	// Skip is the number of bytes a streaming caller should discard to resynchronize
	// on the next message boundary.
	Skip int
	// Expected and Actual carry the declared and computed values for length and checksum mismatches.
	// Actual is -1 when the real body length cannot be determined.
	Expected int
	Actual   int
	// Detail is a short human readable description.
	Detail string
}

func (e *ParseError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrChecksumMismatch):
		return fmt.Sprintf("%s: declared %03d, computed %03d", e.Kind, e.Expected, e.Actual)
	case errors.Is(e.Kind, ErrLengthMismatch) && e.Actual < 0:
		return fmt.Sprintf("%s: declared %d, no CheckSum(10) field found", e.Kind, e.Expected)
	case errors.Is(e.Kind, ErrLengthMismatch):
		return fmt.Sprintf("%s: declared %d, actual %d", e.Kind, e.Expected, e.Actual)
	case e.Detail != "":
		return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Detail)
	default:
		return fmt.Sprintf("%s at offset %d", e.Kind, e.Offset)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

// BuildError describes why a set of fields could not be serialized.
type BuildError struct {
	// Kind is ErrUnsupportedVersion or ErrInvalidFieldValue.
	Kind error
	// Tag is the offending tag, or 0 for version errors.
	Tag int
	// Detail is a short human readable description.
	Detail string
}

func (e *BuildError) Error() string {
	if e.Tag == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}

	return fmt.Sprintf("%s: tag %d: %s", e.Kind, e.Tag, e.Detail)
}

func (e *BuildError) Unwrap() error {
	return e.Kind
}
