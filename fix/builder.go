package fix

import (
	"bytes"
	"strconv"
	"time"
)

// TimestampFormat is the UTCTimestamp layout used for SendingTime (52) and OrigSendingTime (122).
const TimestampFormat = "20060102-15:04:05.000"

// Build serializes fields, in the given order, into a framed FIX message for version.
//
// BeginString (8), BodyLength (9) and CheckSum (10) are generated and must not be present in fields.
// The output always parses back to the same ordered fields.
//
// It returns a *BuildError wrapping ErrUnsupportedVersion or ErrInvalidFieldValue on failure.
func Build(version Version, fields []Field) ([]byte, error) {
	b := NewBuilder(version)
	for _, f := range fields {
		b.AddBytes(f.Tag, f.Value)
	}

	return b.Build()
}

// Builder composes a FIX message field by field.
//
// The first invalid field makes the builder sticky: later Add calls are ignored and Build
// returns that error. A Builder is not safe for concurrent use.
type Builder struct {
	version Version
	body    []byte
	err     error
}

// NewBuilder creates a builder for version.
func NewBuilder(version Version) *Builder {
	b := &Builder{version: version, body: make([]byte, 0, 256)}
	if !version.IsValid() {
		b.err = &BuildError{Kind: ErrUnsupportedVersion, Detail: version.String()}
	}

	return b
}

// Version returns the version the builder frames messages for.
func (b *Builder) Version() Version {
	return b.version
}

// Err returns the first error recorded by an Add call, if any.
func (b *Builder) Err() error {
	return b.err
}

// Len returns the current body length in bytes.
func (b *Builder) Len() int {
	return len(b.body)
}

// AddField appends f.
func (b *Builder) AddField(f Field) *Builder {
	return b.AddBytes(f.Tag, f.Value)
}

// AddBytes appends tag=value. value is copied.
func (b *Builder) AddBytes(tag int, value []byte) *Builder {
	if !b.checkTag(tag) {
		return b
	}
	if bytes.IndexByte(value, SOH) >= 0 {
		b.err = &BuildError{Kind: ErrInvalidFieldValue, Tag: tag, Detail: "value contains SOH"}
		return b
	}

	b.body = b.appendTag(tag)
	b.body = append(b.body, value...)
	b.body = append(b.body, SOH)

	return b
}

// AddString appends tag=value.
func (b *Builder) AddString(tag int, value string) *Builder {
	if !b.checkTag(tag) {
		return b
	}
	if containsSOH(value) {
		b.err = &BuildError{Kind: ErrInvalidFieldValue, Tag: tag, Detail: "value contains SOH"}
		return b
	}

	b.body = b.appendTag(tag)
	b.body = append(b.body, value...)
	b.body = append(b.body, SOH)

	return b
}

// AddInt appends a signed decimal.
func (b *Builder) AddInt(tag int, value int64) *Builder {
	if !b.checkTag(tag) {
		return b
	}

	b.body = b.appendTag(tag)
	b.body = strconv.AppendInt(b.body, value, 10)
	b.body = append(b.body, SOH)

	return b
}

// AddUint appends an unsigned decimal.
func (b *Builder) AddUint(tag int, value uint64) *Builder {
	if !b.checkTag(tag) {
		return b
	}

	b.body = b.appendTag(tag)
	b.body = strconv.AppendUint(b.body, value, 10)
	b.body = append(b.body, SOH)

	return b
}

// AddBool appends "Y" or "N".
func (b *Builder) AddBool(tag int, value bool) *Builder {
	if value {
		return b.AddString(tag, "Y")
	}

	return b.AddString(tag, "N")
}

// AddTime appends t as a UTCTimestamp with millisecond precision.
func (b *Builder) AddTime(tag int, t time.Time) *Builder {
	if !b.checkTag(tag) {
		return b
	}

	b.body = b.appendTag(tag)
	b.body = t.UTC().AppendFormat(b.body, TimestampFormat)
	b.body = append(b.body, SOH)

	return b
}

// Build frames the accumulated body and returns the complete message.
//
// The builder keeps its body, so Build may be called again; use Reset to start a new message.
func (b *Builder) Build() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.body) > MaxBodyLength {
		return nil, &BuildError{Kind: ErrInvalidFieldValue, Detail: "body exceeds MaxBodyLength"}
	}

	beginString := b.version.beginString()
	size := len(beginStringPrefix) + len(beginString) + 1 +
		len(bodyLengthPrefix) + maxBodyLengthDigits + 1 +
		len(b.body) + checkSumFieldLen
	out := make([]byte, 0, size)

	out = append(out, beginStringPrefix...)
	out = append(out, beginString...)
	out = append(out, SOH)
	out = append(out, bodyLengthPrefix...)
	out = strconv.AppendInt(out, int64(len(b.body)), 10)
	out = append(out, SOH)
	out = append(out, b.body...)

	sum := CheckSum(out)
	out = append(out, checkSumPrefix...)
	out = append(out, '0'+sum/100, '0'+sum/10%10, '0'+sum%10, SOH)

	return out, nil
}

// Reset clears the body and any sticky error, keeping the version.
func (b *Builder) Reset() {
	b.body = b.body[:0]
	b.err = nil
	if !b.version.IsValid() {
		b.err = &BuildError{Kind: ErrUnsupportedVersion, Detail: b.version.String()}
	}
}

func (b *Builder) checkTag(tag int) bool {
	if b.err != nil {
		return false
	}

	switch {
	case tag <= 0 || tag > maxTag:
		b.err = &BuildError{Kind: ErrInvalidFieldValue, Tag: tag, Detail: "tag out of range"}
	case tag == TagBeginString || tag == TagBodyLength || tag == TagCheckSum:
		b.err = &BuildError{Kind: ErrInvalidFieldValue, Tag: tag, Detail: "framing tags are generated by the builder"}
	default:
		return true
	}

	return false
}

func (b *Builder) appendTag(tag int) []byte {
	body := strconv.AppendInt(b.body, int64(tag), 10)
	return append(body, '=')
}

func containsSOH(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == SOH {
			return true
		}
	}

	return false
}

// CheckSum returns the FIX checksum of b: the sum of all bytes modulo 256.
func CheckSum(b []byte) uint8 {
	var sum uint8
	for _, c := range b {
		sum += c
	}

	return sum
}
