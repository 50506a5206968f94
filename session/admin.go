package session

import (
	"fmt"
	"strconv"
	"time"

	"github.com/arloliu/go-fix/fix"
)

// headerTags are the standard header fields composed by the session. They are stripped from
// stored frames before a resend re-composes the header.
var headerTags = map[int]struct{}{
	fix.TagMsgType:         {},
	fix.TagSenderCompID:    {},
	fix.TagTargetCompID:    {},
	fix.TagMsgSeqNum:       {},
	fix.TagSendingTime:     {},
	fix.TagPossDupFlag:     {},
	fix.TagPossResend:      {},
	fix.TagOrigSendingTime: {},
}

// frame builds a message with the standard header. possDup adds PossDupFlag (43=Y) and,
// when origSendingTime is not empty, OrigSendingTime (122).
func (s *Session) frame(msgType string, seq uint64, now time.Time, possDup bool, origSendingTime []byte, fields []fix.Field) ([]byte, error) {
	b := s.builder
	b.Reset()
	b.AddString(fix.TagMsgType, msgType).
		AddString(fix.TagSenderCompID, s.id.SenderCompID).
		AddString(fix.TagTargetCompID, s.id.TargetCompID).
		AddUint(fix.TagMsgSeqNum, seq)
	if possDup {
		b.AddBool(fix.TagPossDupFlag, true)
	}
	b.AddTime(fix.TagSendingTime, now)
	if possDup && len(origSendingTime) > 0 {
		b.AddBytes(fix.TagOrigSendingTime, origSendingTime)
	}
	for _, f := range fields {
		b.AddField(f)
	}

	return b.Build()
}

// compose builds a message with the next outgoing sequence number, stores it and records it as sent.
func (s *Session) compose(now time.Time, msgType string, fields ...fix.Field) ([]byte, error) {
	seq := s.nextOut

	out, err := s.frame(msgType, seq, now, false, nil, fields)
	if err != nil {
		return nil, err
	}

	if err := s.record(seq, out, now); err != nil {
		return nil, err
	}

	return out, nil
}

// record stores a sent frame and advances the outgoing sequence number.
func (s *Session) record(seq uint64, out []byte, now time.Time) error {
	if s.cfg.store != nil {
		if err := s.cfg.store.Store(seq, out); err != nil {
			return fmt.Errorf("store message %d: %w", seq, err)
		}
	}

	s.nextOut = seq + 1
	s.lastSent = now
	s.metrics.incMsgSendCount()

	return nil
}

func (s *Session) logonFields(reset bool) []fix.Field {
	fields := []fix.Field{
		fix.NewIntField(fix.TagEncryptMethod, 0),
		fix.NewIntField(fix.TagHeartBtInt, int64(s.heartbeatInterval/time.Second)),
	}
	if reset {
		fields = append(fields, fix.NewBoolField(fix.TagResetSeqNumFlag, true))
	}
	if applVerID := s.id.Version.DefaultApplVerID(); applVerID != "" {
		fields = append(fields, fix.NewField(fix.TagDefaultApplVerID, applVerID))
	}

	return fields
}

func (s *Session) composeLogout(now time.Time, text string) ([]byte, error) {
	if text == "" {
		return s.compose(now, fix.MsgTypeLogout)
	}

	return s.compose(now, fix.MsgTypeLogout, fix.NewField(fix.TagText, text))
}

func (s *Session) composeHeartbeat(now time.Time, testReqID []byte) ([]byte, error) {
	var out []byte
	var err error
	if len(testReqID) > 0 {
		out, err = s.compose(now, fix.MsgTypeHeartbeat, fix.Field{Tag: fix.TagTestReqID, Value: testReqID})
	} else {
		out, err = s.compose(now, fix.MsgTypeHeartbeat)
	}
	if err == nil {
		s.metrics.incHeartbeatSendCount()
	}

	return out, err
}

func (s *Session) composeTestRequest(now time.Time) ([]byte, error) {
	s.testReqCounter++
	id := "TEST-" + strconv.FormatUint(s.testReqCounter, 10)

	out, err := s.compose(now, fix.MsgTypeTestRequest, fix.NewField(fix.TagTestReqID, id))
	if err != nil {
		return nil, err
	}

	s.testReqID = id
	s.testReqSentAt = now
	s.metrics.incTestRequestSendCount()

	return out, nil
}

func (s *Session) composeResendRequest(now time.Time, r SeqRange) ([]byte, error) {
	out, err := s.compose(now, fix.MsgTypeResendRequest,
		fix.NewUintField(fix.TagBeginSeqNo, r.Begin),
		fix.NewUintField(fix.TagEndSeqNo, r.End),
	)
	if err == nil {
		s.metrics.incResendRequestSendCount()
	}

	return out, err
}

// composeReject builds a session-level Reject referring to the message refSeq.
// refTag is omitted when 0.
func (s *Session) composeReject(now time.Time, refSeq uint64, refMsgType []byte, refTag int, reason int, text string) ([]byte, error) {
	fields := []fix.Field{fix.NewUintField(fix.TagRefSeqNum, refSeq)}
	if refTag > 0 {
		fields = append(fields, fix.NewIntField(fix.TagRefTagID, int64(refTag)))
	}
	if len(refMsgType) > 0 {
		fields = append(fields, fix.Field{Tag: fix.TagRefMsgType, Value: refMsgType})
	}
	fields = append(fields, fix.NewIntField(fix.TagSessionRejectReason, int64(reason)))
	if text != "" {
		fields = append(fields, fix.NewField(fix.TagText, text))
	}

	out, err := s.compose(now, fix.MsgTypeReject, fields...)
	if err == nil {
		s.metrics.incRejectSendCount()
	}

	return out, err
}

// gapFill builds a Sequence Reset in gap fill mode occupying seq and advancing the counterparty to newSeq.
// It reuses a past sequence number, so it is neither stored nor counted as a new message.
// OrigSendingTime is required with PossDupFlag and carries the send time of the gap fill itself.
func (s *Session) gapFill(seq uint64, newSeq uint64, now time.Time) ([]byte, error) {
	origSendingTime := now.UTC().AppendFormat(nil, fix.TimestampFormat)

	return s.frame(fix.MsgTypeSequenceReset, seq, now, true, origSendingTime, []fix.Field{
		fix.NewBoolField(fix.TagGapFillFlag, true),
		fix.NewUintField(fix.TagNewSeqNo, newSeq),
	})
}
