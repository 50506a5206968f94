package fix

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/arloliu/go-fix/internal/util"
)

// Field is a single tag=value pair.
//
// For parsed messages Value is a sub-slice of the input buffer. Its capacity is clipped
// to its length, so appending to it never overwrites the buffer.
type Field struct {
	Tag   int
	Value []byte
}

// NewField creates a field from a string value.
func NewField(tag int, value string) Field {
	return Field{Tag: tag, Value: []byte(value)}
}

// NewIntField creates a field holding a decimal integer.
func NewIntField(tag int, value int64) Field {
	return Field{Tag: tag, Value: strconv.AppendInt(nil, value, 10)}
}

// NewUintField creates a field holding an unsigned decimal integer.
func NewUintField(tag int, value uint64) Field {
	return Field{Tag: tag, Value: strconv.AppendUint(nil, value, 10)}
}

// NewBoolField creates a field holding "Y" or "N".
func NewBoolField(tag int, value bool) Field {
	if value {
		return Field{Tag: tag, Value: []byte{'Y'}}
	}

	return Field{Tag: tag, Value: []byte{'N'}}
}

// Message is a parsed FIX message.
//
// The message borrows the buffer it was parsed from: BeginString, Raw and every field value
// alias that buffer. It is valid only while the buffer is neither modified nor reused.
// Call Clone to obtain a message that owns its bytes.
type Message struct {
	// BeginString is the tag 8 value.
	BeginString []byte
	// BodyLength is the declared tag 9 value.
	BodyLength int
	// CheckSum is the declared tag 10 value.
	CheckSum uint8
	// Fields holds the body fields in wire order, excluding tags 8, 9 and 10.
	// Repeated tags are kept in the order they appear.
	Fields []Field
	// Raw is the whole frame, from "8=" up to and including the SOH after the checksum.
	Raw []byte

	version Version
}

// Version returns the protocol version derived from BeginString.
func (m *Message) Version() Version {
	return m.version
}

// Get returns the value of the first occurrence of tag.
func (m *Message) Get(tag int) ([]byte, bool) {
	for i := range m.Fields {
		if m.Fields[i].Tag == tag {
			return m.Fields[i].Value, true
		}
	}

	return nil, false
}

// GetAll returns the values of every occurrence of tag, in wire order.
func (m *Message) GetAll(tag int) [][]byte {
	var values [][]byte
	for i := range m.Fields {
		if m.Fields[i].Tag == tag {
			values = append(values, m.Fields[i].Value)
		}
	}

	return values
}

// Has reports whether tag is present.
func (m *Message) Has(tag int) bool {
	_, ok := m.Get(tag)
	return ok
}

// MsgType returns the tag 35 value, or nil when it is absent.
func (m *Message) MsgType() []byte {
	v, _ := m.Get(TagMsgType)
	return v
}

// IsMsgType reports whether the tag 35 value equals msgType.
func (m *Message) IsMsgType(msgType string) bool {
	v, ok := m.Get(TagMsgType)
	return ok && string(v) == msgType
}

// IsAdmin reports whether the message is a session-level message.
func (m *Message) IsAdmin() bool {
	return IsAdminMsgType(m.MsgType())
}

// GetString returns the value of tag as a string.
func (m *Message) GetString(tag int) (string, error) {
	v, ok := m.Get(tag)
	if !ok {
		return "", ErrFieldNotFound
	}

	return string(v), nil
}

// GetInt returns the value of tag parsed as a signed decimal.
func (m *Message) GetInt(tag int) (int64, error) {
	v, ok := m.Get(tag)
	if !ok {
		return 0, ErrFieldNotFound
	}

	n, ok := util.ParseInt(v)
	if !ok {
		return 0, ErrInvalidFieldFormat
	}

	return n, nil
}

// GetUint returns the value of tag parsed as an unsigned decimal.
func (m *Message) GetUint(tag int) (uint64, error) {
	v, ok := m.Get(tag)
	if !ok {
		return 0, ErrFieldNotFound
	}

	n, ok := util.ParseUint(v)
	if !ok {
		return 0, ErrInvalidFieldFormat
	}

	return n, nil
}

// GetBool returns the value of tag parsed as a FIX boolean ("Y" or "N").
func (m *Message) GetBool(tag int) (bool, error) {
	v, ok := m.Get(tag)
	if !ok {
		return false, ErrFieldNotFound
	}

	switch {
	case len(v) == 1 && v[0] == 'Y':
		return true, nil
	case len(v) == 1 && v[0] == 'N':
		return false, nil
	default:
		return false, ErrInvalidFieldFormat
	}
}

// SeqNum returns MsgSeqNum (34).
func (m *Message) SeqNum() (uint64, error) {
	return m.GetUint(TagMsgSeqNum)
}

// Clone returns a deep copy of the message that no longer aliases the parsed buffer.
func (m *Message) Clone() *Message {
	if m.Raw != nil {
		clone := &Message{Fields: make([]Field, 0, len(m.Fields))}
		// Raw was accepted by the parser once, so re-parsing the copy cannot fail.
		if _, err := ParseMessage(clone, util.CloneSlice(m.Raw, 0)); err == nil {
			return clone
		}
	}

	clone := &Message{
		BeginString: bytes.Clone(m.BeginString),
		BodyLength:  m.BodyLength,
		CheckSum:    m.CheckSum,
		Fields:      make([]Field, len(m.Fields)),
		Raw:         bytes.Clone(m.Raw),
		version:     m.version,
	}
	for i, f := range m.Fields {
		clone.Fields[i] = Field{Tag: f.Tag, Value: bytes.Clone(f.Value)}
	}

	return clone
}

// Reset clears the message so it can be reused with ParseMessage.
func (m *Message) Reset() {
	m.BeginString = nil
	m.BodyLength = 0
	m.CheckSum = 0
	m.Fields = m.Fields[:0]
	m.Raw = nil
	m.version = UnknownVersion
}

// String renders the frame with SOH shown as '|'.
func (m *Message) String() string {
	if m.Raw != nil {
		return strings.ReplaceAll(string(m.Raw), "\x01", "|")
	}

	var sb strings.Builder
	for _, f := range m.Fields {
		sb.WriteString(strconv.Itoa(f.Tag))
		sb.WriteByte('=')
		sb.Write(f.Value)
		sb.WriteByte('|')
	}

	return sb.String()
}
