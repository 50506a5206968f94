package fix

import (
	"bytes"
	"sync"

	"github.com/arloliu/go-fix/internal/util"
)

const (
	// MaxBodyLength is the largest BodyLength (9) value the parser accepts.
	MaxBodyLength = 1 << 20
	// maxBodyLengthDigits is the number of decimal digits of MaxBodyLength.
	maxBodyLengthDigits = 7
	// checkSumFieldLen is the length of "10=NNN<SOH>".
	checkSumFieldLen = 7
	// maxTag bounds tag numbers so they fit an int on every platform.
	maxTag = 1<<31 - 1
)

var (
	beginStringPrefix = []byte("8=")
	bodyLengthPrefix  = []byte("9=")
	checkSumPrefix    = []byte("10=")
	frameStart        = []byte("8=FIX")
)

// fixParser pool
var parserPool = sync.Pool{New: func() any { return new(fixParser) }}

// Parse decodes one FIX message from the start of buf.
//
// It returns the message and the number of bytes consumed, which is the frame length.
// Bytes past the frame are left untouched, so a stream buffer can be parsed repeatedly
// by advancing it by the consumed count.
//
// The returned message borrows buf; see Message for the lifetime rules.
// When buf holds only part of a message Parse returns ErrIncomplete. Any other error
// is a *ParseError.
func Parse(buf []byte) (*Message, int, error) {
	msg := &Message{}
	n, err := ParseMessage(msg, buf)
	if err != nil {
		return nil, 0, err
	}

	return msg, n, nil
}

// ParseMessage decodes one FIX message from the start of buf into msg, reusing the capacity
// of msg.Fields.
//
// It has the same semantics as Parse. On error msg is left reset.
func ParseMessage(msg *Message, buf []byte) (int, error) {
	msg.Reset()

	p, _ := parserPool.Get().(*fixParser)
	p.buf = buf
	p.msg = msg
	n, err := p.parse()
	p.buf = nil
	p.msg = nil
	parserPool.Put(p)

	if err != nil {
		msg.Reset()
		return 0, err
	}

	return n, nil
}

type fixParser struct {
	buf []byte
	msg *Message
}

func (p *fixParser) parse() (int, error) {
	buf := p.buf

	// BeginString (8)
	if len(buf) < len(beginStringPrefix) {
		if bytes.HasPrefix(beginStringPrefix, buf) {
			return 0, ErrIncomplete
		}
		return 0, p.fail(ErrInvalidFraming, 0, TagBeginString, "message must start with BeginString(8)")
	}
	if !bytes.HasPrefix(buf, beginStringPrefix) {
		return 0, p.fail(ErrInvalidFraming, 0, TagBeginString, "message must start with BeginString(8)")
	}

	valueStart := len(beginStringPrefix)
	soh := bytes.IndexByte(buf[valueStart:], SOH)
	if soh < 0 {
		if isBeginStringPrefix(buf[valueStart:]) {
			return 0, ErrIncomplete
		}
		return 0, p.fail(ErrInvalidFraming, valueStart, TagBeginString, "unsupported BeginString")
	}

	beginString := buf[valueStart : valueStart+soh : valueStart+soh]
	version, err := ParseVersion(beginString)
	if err != nil {
		return 0, p.fail(ErrInvalidFraming, valueStart, TagBeginString, "unsupported BeginString "+string(beginString))
	}
	pos := valueStart + soh + 1

	// BodyLength (9)
	rest := buf[pos:]
	if len(rest) < len(bodyLengthPrefix) {
		if bytes.HasPrefix(bodyLengthPrefix, rest) {
			return 0, ErrIncomplete
		}
		return 0, p.fail(ErrInvalidFraming, pos, TagBodyLength, "BodyLength(9) must be the second field")
	}
	if !bytes.HasPrefix(rest, bodyLengthPrefix) {
		return 0, p.fail(ErrInvalidFraming, pos, TagBodyLength, "BodyLength(9) must be the second field")
	}

	valueStart = pos + len(bodyLengthPrefix)
	soh = bytes.IndexByte(buf[valueStart:], SOH)
	if soh < 0 {
		partial := buf[valueStart:]
		if len(partial) == 0 || (util.IsDigits(partial) && len(partial) <= maxBodyLengthDigits) {
			return 0, ErrIncomplete
		}
		return 0, p.fail(ErrInvalidFraming, valueStart, TagBodyLength, "invalid BodyLength")
	}

	bodyLen, ok := util.ParseUint(buf[valueStart : valueStart+soh])
	if !ok || bodyLen > MaxBodyLength {
		return 0, p.fail(ErrInvalidFraming, valueStart, TagBodyLength, "invalid BodyLength")
	}

	bodyStart := valueStart + soh + 1
	bodyEnd := bodyStart + int(bodyLen)
	frameEnd := bodyEnd + checkSumFieldLen

	// body fields
	fields := p.msg.Fields[:0]
	pos = bodyStart
	for pos < bodyEnd {
		soh = bytes.IndexByte(buf[pos:], SOH)
		if soh < 0 {
			if len(buf) < frameEnd {
				return 0, ErrIncomplete
			}
			return 0, p.lengthMismatch(bodyStart, int(bodyLen), pos)
		}

		fieldEnd := pos + soh
		if fieldEnd >= bodyEnd {
			return 0, p.lengthMismatch(bodyStart, int(bodyLen), pos)
		}

		field := buf[pos:fieldEnd]
		eq := bytes.IndexByte(field, '=')
		if eq <= 0 {
			return 0, p.fail(ErrMalformedField, pos, 0, "field without tag=value")
		}

		tag, ok := util.ParseUint(field[:eq])
		if !ok || tag == 0 || tag > maxTag {
			return 0, p.fail(ErrMalformedField, pos, 0, "non-numeric tag "+string(field[:eq]))
		}

		if tag == TagCheckSum {
			return 0, &ParseError{
				Kind:     ErrLengthMismatch,
				Offset:   pos,
				Tag:      TagBodyLength,
				Skip:     resyncSkip(buf),
				Expected: int(bodyLen),
				Actual:   pos - bodyStart,
			}
		}

		valStart := pos + eq + 1
		fields = append(fields, Field{Tag: int(tag), Value: buf[valStart:fieldEnd:fieldEnd]})
		pos = fieldEnd + 1
	}

	// CheckSum (10)
	if len(buf) < frameEnd {
		trailer := buf[bodyEnd:]
		n := min(len(trailer), len(checkSumPrefix))
		if !bytes.Equal(trailer[:n], checkSumPrefix[:n]) {
			return 0, p.lengthMismatch(bodyStart, int(bodyLen), bodyEnd)
		}
		return 0, ErrIncomplete
	}

	trailer := buf[bodyEnd:frameEnd]
	if !bytes.HasPrefix(trailer, checkSumPrefix) {
		return 0, p.lengthMismatch(bodyStart, int(bodyLen), bodyEnd)
	}

	digits := trailer[len(checkSumPrefix) : checkSumFieldLen-1]
	if !util.IsDigits(digits) || trailer[checkSumFieldLen-1] != SOH {
		return 0, p.fail(ErrInvalidFraming, bodyEnd, TagCheckSum, "CheckSum(10) must be 3 digits")
	}

	declared, _ := util.ParseUint(digits)
	computed := CheckSum(buf[:bodyEnd])
	if declared != uint64(computed) {
		return 0, &ParseError{
			Kind:     ErrChecksumMismatch,
			Offset:   bodyEnd,
			Tag:      TagCheckSum,
			Skip:     frameEnd,
			Expected: int(declared),
			Actual:   int(computed),
		}
	}

	p.msg.BeginString = beginString
	p.msg.BodyLength = int(bodyLen)
	p.msg.CheckSum = computed
	p.msg.Fields = fields
	p.msg.Raw = buf[:frameEnd:frameEnd]
	p.msg.version = version

	return frameEnd, nil
}

func (p *fixParser) fail(kind error, offset int, tag int, detail string) *ParseError {
	return &ParseError{
		Kind:   kind,
		Offset: offset,
		Tag:    tag,
		Skip:   resyncSkip(p.buf),
		Detail: detail,
	}
}

// lengthMismatch reports a BodyLength that does not land on the CheckSum field.
// The actual body length is located by searching for the checksum field, or -1 when none is found.
func (p *fixParser) lengthMismatch(bodyStart int, declared int, offset int) *ParseError {
	actual := -1
	if idx := bytes.Index(p.buf[bodyStart-1:], []byte("\x0110=")); idx >= 0 {
		actual = idx
	}

	return &ParseError{
		Kind:     ErrLengthMismatch,
		Offset:   offset,
		Tag:      TagBodyLength,
		Skip:     resyncSkip(p.buf),
		Expected: declared,
		Actual:   actual,
	}
}

// resyncSkip returns how many bytes to drop so buf starts at the next "8=FIX" frame start.
func resyncSkip(buf []byte) int {
	if len(buf) <= 1 {
		return len(buf)
	}
	if idx := bytes.Index(buf[1:], frameStart); idx >= 0 {
		return idx + 1
	}
	// keep a trailing partial "8=FIX" that may begin the next frame
	for n := len(frameStart) - 1; n > 0; n-- {
		if bytes.HasSuffix(buf, frameStart[:n]) {
			return max(len(buf)-n, 1)
		}
	}

	return len(buf)
}

func isBeginStringPrefix(b []byte) bool {
	return bytes.HasPrefix(beginStringFIX44, b) || bytes.HasPrefix(beginStringFIX50, b)
}
