// Package fix provides the wire-level codec for the FIX (Financial Information eXchange) protocol,
// versions 4.4 and 5.0 (FIXT.1.1 session layer).
//
// A FIX message is an ordered sequence of tag=value fields separated by the SOH byte (0x01).
// Every message starts with BeginString (8) and BodyLength (9) and ends with CheckSum (10);
// this package manages those three framing fields and leaves every other field to the caller.
//
// Parsing:
//
// Parse and ParseMessage decode one frame from a byte buffer without copying field data.
// The Value of every parsed Field is a sub-slice of the input buffer, so a Message is only
// valid while the buffer is; use Message.Clone to retain it. When the buffer does not yet
// hold a whole frame the parser returns ErrIncomplete and the caller should read more bytes.
// Permanent failures are reported as *ParseError values classified by one of:
//   - ErrInvalidFraming: BeginString/BodyLength missing, misplaced or unsupported.
//   - ErrLengthMismatch: BodyLength does not land on the CheckSum field.
//   - ErrChecksumMismatch: the trailing checksum does not match the frame bytes.
//   - ErrMalformedField: a field without '=' or with a non-numeric tag.
//
// Building:
//
// Build and Builder serialize caller-ordered fields into a framed message, computing
// BodyLength and CheckSum. The output always parses back to the same ordered fields.
//
// Streaming:
//
// Reader turns an io.Reader into a sequence of messages, buffering partial frames and
// skipping past corrupt ones.
package fix
