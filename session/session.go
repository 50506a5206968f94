package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-fix/fix"
	"github.com/arloliu/go-fix/logger"
)

// ID identifies a session from the local side.
type ID struct {
	// SenderCompID is our CompID, sent in tag 49 and expected in tag 56.
	SenderCompID string
	// TargetCompID is the counterparty's CompID, sent in tag 56 and expected in tag 49.
	TargetCompID string
	// Version is the protocol version of the session.
	Version fix.Version
}

// String returns "BeginString:Sender->Target".
func (id ID) String() string {
	return id.Version.BeginString() + ":" + id.SenderCompID + "->" + id.TargetCompID
}

// Session is the sequencing and recovery state machine of one FIX session.
//
// Session does no I/O and starts no goroutines: the caller feeds it inbound messages with
// OnReceived or OnMessage, drives timers with Tick, and writes every frame returned in
// Action.Outbound or by Logon, Logout, Send and SequenceReset.
//
// Session is NOT goroutine-safe. All calls for one session must be serialized by the caller.
// Metrics may be read concurrently.
type Session struct {
	id      ID
	cfg     *Config
	logger  logger.Logger
	metrics Metrics
	builder *fix.Builder

	state      State
	stateSince time.Time
	nextOut    uint64
	expectedIn uint64

	pending *pendingQueue
	// resendTarget is the highest sequence number covered by an outstanding Resend Request.
	resendTarget uint64
	// resendAt is when a Resend Request was last sent or in-sequence progress last made.
	resendAt time.Time

	heartbeatInterval time.Duration
	lastSent          time.Time
	lastRecv          time.Time
	testReqID         string
	testReqSentAt     time.Time
	testReqCounter    uint64

	malformed int
}

// New creates a session in the Disconnected state with both sequence numbers at 1.
func New(id ID, opts ...Option) (*Session, error) {
	if id.SenderCompID == "" || id.TargetCompID == "" {
		return nil, ErrInvalidCompID
	}
	if !id.Version.IsValid() {
		return nil, fix.ErrUnsupportedVersion
	}

	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:                id,
		cfg:               cfg,
		logger:            cfg.logger.With("session_id", id.String()),
		builder:           fix.NewBuilder(id.Version),
		state:             Disconnected,
		nextOut:           1,
		expectedIn:        1,
		pending:           newPendingQueue(cfg.maxPending),
		heartbeatInterval: cfg.heartbeatInterval,
	}
	s.updateGauges()

	return s, nil
}

// ID returns the session identity.
func (s *Session) ID() ID { return s.id }

// Config returns the session configuration.
func (s *Session) Config() *Config { return s.cfg }

// State returns the current state.
func (s *Session) State() State { return s.state }

// Metrics returns the session metrics.
func (s *Session) Metrics() *Metrics { return &s.metrics }

// NextOutgoingSeq returns the sequence number the next outgoing message must carry.
func (s *Session) NextOutgoingSeq() uint64 { return s.nextOut }

// ExpectedIncomingSeq returns the sequence number expected on the next inbound message.
func (s *Session) ExpectedIncomingSeq() uint64 { return s.expectedIn }

// PendingLen returns the number of out-of-sequence messages waiting for a gap to be filled.
func (s *Session) PendingLen() int { return s.pending.Len() }

// HeartbeatInterval returns the heartbeat interval in effect. An acceptor adopts the
// counterparty's HeartBtInt (108).
func (s *Session) HeartbeatInterval() time.Duration { return s.heartbeatInterval }

// Logon returns a Logon message to send and moves the session to LogonSent.
func (s *Session) Logon() ([]byte, error) {
	next, err := Transition(s.state, EventLogonSent)
	if err != nil {
		return nil, fmt.Errorf("logon in state %s: %w", s.state, err)
	}

	if s.cfg.resetOnLogon {
		s.resetSeqNums()
	}

	now := s.cfg.clock()
	out, err := s.compose(now, fix.MsgTypeLogon, s.logonFields(s.cfg.resetOnLogon)...)
	if err != nil {
		return nil, err
	}

	s.lastRecv = now
	s.setState(next, now)
	s.updateGauges()

	return out, nil
}

// Logout returns a Logout message to send and moves the session to LogoutSent.
// text is sent in Text (58) when not empty.
func (s *Session) Logout(text string) ([]byte, error) {
	next, err := Transition(s.state, EventLogoutSent)
	if err != nil {
		return nil, fmt.Errorf("logout in state %s: %w", s.state, err)
	}

	now := s.cfg.clock()
	out, err := s.composeLogout(now, text)
	if err != nil {
		return nil, err
	}

	s.setState(next, now)
	s.updateGauges()

	return out, nil
}

// Send composes an application message with the standard header, stores it and records it as sent.
//
// Logon and Logout must be sent with the dedicated methods.
func (s *Session) Send(msgType string, fields ...fix.Field) ([]byte, error) {
	if s.state != Active {
		return nil, fmt.Errorf("send %s in state %s: %w", msgType, s.state, ErrNotLoggedOn)
	}
	if msgType == fix.MsgTypeLogon || msgType == fix.MsgTypeLogout {
		return nil, fmt.Errorf("send %s: %w", msgType, ErrInvalidTransition)
	}

	out, err := s.compose(s.cfg.clock(), msgType, fields...)
	if err != nil {
		return nil, err
	}
	s.updateGauges()

	return out, nil
}

// RecordSent records a frame the caller composed with NextOutgoingSeq and wrote to the wire.
// The frame is stored for resend and the outgoing sequence number advances by one.
func (s *Session) RecordSent(frame []byte) error {
	msg, _, err := fix.Parse(frame)
	if err != nil {
		return fmt.Errorf("record sent message: %w", err)
	}

	seq, err := msg.SeqNum()
	if err != nil {
		return fmt.Errorf("record sent message: %w", ErrMissingSeqNum)
	}
	if seq != s.nextOut {
		return fmt.Errorf("%w: got %d, expected %d", ErrUnexpectedSeqNum, seq, s.nextOut)
	}

	if err := s.record(seq, msg.Raw, s.cfg.clock()); err != nil {
		return err
	}
	s.updateGauges()

	return nil
}

// SetNextOutgoingSeq overrides the next outgoing sequence number, e.g. to restore persisted state.
func (s *Session) SetNextOutgoingSeq(seq uint64) error {
	if seq == 0 {
		return ErrInvalidSeqNum
	}

	if seq != s.nextOut {
		s.logger.Warn("outgoing sequence number discontinuity", "from", s.nextOut, "to", seq)
		s.metrics.incSeqResetCount()
	}
	s.nextOut = seq
	s.updateGauges()

	return nil
}

// SetExpectedIncomingSeq overrides the expected incoming sequence number, e.g. to restore persisted state.
func (s *Session) SetExpectedIncomingSeq(seq uint64) error {
	if seq == 0 {
		return ErrInvalidSeqNum
	}

	if seq != s.expectedIn {
		s.logger.Warn("incoming sequence number discontinuity", "from", s.expectedIn, "to", seq)
		s.metrics.incSeqResetCount()
	}
	s.expectedIn = seq
	s.pending.DeleteBelow(seq)
	s.resendTarget = 0
	s.updateGauges()

	return nil
}

// RestoreSeqNums loads the sequence numbers saved in the message store when it implements
// SeqNumStore. It returns false when the store has nothing saved or does not persist sequence
// numbers. Restoring is only allowed while Disconnected.
func (s *Session) RestoreSeqNums() (bool, error) {
	ss, ok := s.cfg.store.(SeqNumStore)
	if !ok {
		return false, nil
	}
	if s.state != Disconnected {
		return false, fmt.Errorf("restore sequence numbers in state %s: %w", s.state, ErrInvalidTransition)
	}

	nextOut, expectedIn, err := ss.LoadSeqNums()
	if errors.Is(err, ErrNoSeqNums) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load sequence numbers: %w", err)
	}

	if err := s.SetNextOutgoingSeq(nextOut); err != nil {
		return false, err
	}
	if err := s.SetExpectedIncomingSeq(expectedIn); err != nil {
		return false, err
	}
	s.logger.Info("sequence numbers restored", "next_outgoing", nextOut, "expected_incoming", expectedIn)

	return true, nil
}

// SaveSeqNums persists the current sequence numbers when the message store implements SeqNumStore.
func (s *Session) SaveSeqNums() error {
	ss, ok := s.cfg.store.(SeqNumStore)
	if !ok {
		return nil
	}

	if err := ss.SaveSeqNums(s.nextOut, s.expectedIn); err != nil {
		return fmt.Errorf("save sequence numbers: %w", err)
	}

	return nil
}

// SequenceReset returns a Sequence Reset in reset mode that moves the counterparty's expected
// sequence number to newSeq, and sets the next outgoing sequence number to newSeq.
func (s *Session) SequenceReset(newSeq uint64) ([]byte, error) {
	if !s.state.IsEstablished() {
		return nil, fmt.Errorf("sequence reset in state %s: %w", s.state, ErrNotLoggedOn)
	}
	if newSeq < s.nextOut {
		return nil, fmt.Errorf("%w: %d is below next outgoing %d", ErrInvalidNewSeqNo, newSeq, s.nextOut)
	}

	now := s.cfg.clock()
	out, err := s.frame(fix.MsgTypeSequenceReset, s.nextOut, now, false, nil, []fix.Field{
		fix.NewUintField(fix.TagNewSeqNo, newSeq),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Warn("outgoing sequence reset", "from", s.nextOut, "to", newSeq)
	s.nextOut = newSeq
	s.lastSent = now
	s.metrics.incSeqResetCount()
	s.updateGauges()

	return out, nil
}

// OnReceived parses one frame from buf and processes it.
//
// An incomplete buffer yields ActionIgnore with fix.ErrIncomplete and is not counted as malformed.
// Delivered messages borrow buf.
func (s *Session) OnReceived(buf []byte) Action {
	msg, _, err := fix.Parse(buf)
	if err != nil {
		return s.OnInvalidFrame(err)
	}

	return s.OnMessage(msg)
}

// OnInvalidFrame reports a frame the caller failed to parse, e.g. a *fix.ParseError returned
// by fix.Reader. It counts toward the malformed threshold like a frame passed to OnReceived;
// fix.ErrIncomplete is ignored without counting.
func (s *Session) OnInvalidFrame(err error) Action {
	if errors.Is(err, fix.ErrIncomplete) {
		return ignoreAction(err)
	}

	act := s.malformedInput(err)
	s.updateGauges()

	return act
}

// OnMessage processes one parsed inbound message and returns what the caller must do.
func (s *Session) OnMessage(msg *fix.Message) Action {
	act := s.onMessage(msg)
	s.updateGauges()

	if act.Kind != ActionNone && act.Kind != ActionDeliver {
		s.logger.Debug("inbound message handled", "msg_type", string(msg.MsgType()), "action", act.String())
	}

	return act
}

// Tick drives time-based behavior: logon and logout timeouts, heartbeats, Test Requests,
// and the heartbeat timeout. The caller decides how often to call it.
func (s *Session) Tick(now time.Time) Action {
	act := s.tick(now)
	s.updateGauges()

	return act
}

func (s *Session) onMessage(msg *fix.Message) Action {
	msgType := msg.MsgType()
	if len(msgType) == 0 {
		return s.malformedInput(ErrMissingMsgType)
	}
	seq, err := msg.SeqNum()
	if err != nil || seq == 0 {
		return s.malformedInput(ErrMissingSeqNum)
	}

	now := s.cfg.clock()
	s.malformed = 0
	s.lastRecv = now
	s.metrics.incMsgRecvCount()

	if err := s.checkHeader(msg); err != nil {
		return s.fatal(now, err, err.Error())
	}

	switch s.state {
	case Disconnected:
		if s.cfg.isAcceptor && msg.IsMsgType(fix.MsgTypeLogon) {
			return s.onLogon(msg, seq, now)
		}

		return s.fatal(now, fmt.Errorf("%w: received MsgType %s", ErrNotLoggedOn, msgType), "")

	case LogonSent:
		switch {
		case msg.IsMsgType(fix.MsgTypeLogon):
			return s.onLogon(msg, seq, now)
		case msg.IsMsgType(fix.MsgTypeLogout):
			text, _ := msg.GetString(fix.TagText)
			s.logger.Warn("logon rejected by counterparty", "text", text)
			_ = s.transition(EventLogoutReceived, now)

			return Action{Kind: ActionDisconnect, Err: fmt.Errorf("%w: %s", ErrLogonRejected, text)}
		default:
			return s.fatal(now, fmt.Errorf("%w: received MsgType %s before Logon", ErrNotLoggedOn, msgType),
				"first message must be Logon")
		}

	default:
		return s.onSequenced(msg, seq, now)
	}
}

func (s *Session) checkHeader(msg *fix.Message) error {
	if msg.Version() != s.id.Version {
		return fmt.Errorf("%w: received %s, expected %s", ErrVersionMismatch, msg.BeginString, s.id.Version.BeginString())
	}

	sender, _ := msg.Get(fix.TagSenderCompID)
	target, _ := msg.Get(fix.TagTargetCompID)
	if string(sender) != s.id.TargetCompID || string(target) != s.id.SenderCompID {
		return fmt.Errorf("%w: received %s->%s", ErrCompIDMismatch, sender, target)
	}

	return nil
}

func (s *Session) onLogon(msg *fix.Message, seq uint64, now time.Time) Action {
	acceptor := s.state == Disconnected

	reset, _ := msg.GetBool(fix.TagResetSeqNumFlag)
	if reset {
		s.logger.Info("sequence numbers reset by counterparty")
		s.expectedIn = 1
		s.pending.Clear()
		s.resendTarget = 0
		if acceptor {
			s.nextOut = 1
			s.resetStore()
		}
		s.metrics.incSeqResetCount()
	}

	if seq < s.expectedIn {
		return s.fatal(now,
			fmt.Errorf("%w: expected %d, received %d", ErrSeqTooLow, s.expectedIn, seq),
			fmt.Sprintf("MsgSeqNum too low, expecting %d but received %d", s.expectedIn, seq))
	}

	act := noneAction()
	if acceptor {
		if hb, err := msg.GetInt(fix.TagHeartBtInt); err == nil && hb > 0 {
			s.heartbeatInterval = time.Duration(hb) * time.Second
		}

		out, err := s.compose(now, fix.MsgTypeLogon, s.logonFields(reset)...)
		if err != nil {
			return s.fatal(now, err, "")
		}
		act.merge(adminAction(out))
	}

	_ = s.transition(EventLogonAccepted, now)
	s.logger.Info("logon accepted", "seq", seq, "heartbeat_interval", s.heartbeatInterval)

	if seq == s.expectedIn {
		s.expectedIn++
		return act
	}

	// the Logon itself is processed; only the messages before it are missing
	s.pending.Add(seq, nil)
	act.merge(s.requestGap(now, seq-1))
	if s.state.IsEstablished() {
		s.resendTarget = max(s.resendTarget, seq)
	}

	return act
}

func (s *Session) onSequenced(msg *fix.Message, seq uint64, now time.Time) Action {
	// a Sequence Reset in reset mode ignores MsgSeqNum
	if msg.IsMsgType(fix.MsgTypeSequenceReset) && !isGapFill(msg) {
		return s.onSequenceReset(msg, seq, now)
	}

	switch {
	case seq < s.expectedIn:
		return s.onDuplicate(msg, seq)
	case seq > s.expectedIn:
		return s.onGap(msg, seq, now)
	}

	act := s.process(msg, seq, now)
	act.merge(s.drain(now))
	s.resendAt = now

	return act
}

func (s *Session) onDuplicate(msg *fix.Message, seq uint64) Action {
	s.metrics.incDuplicateCount()

	if possDup, _ := msg.GetBool(fix.TagPossDupFlag); possDup {
		s.logger.Debug("possible duplicate ignored", "seq", seq, "expected", s.expectedIn)
	} else {
		s.logger.Warn("duplicate message ignored", "seq", seq, "expected", s.expectedIn)
	}

	return ignoreAction(fmt.Errorf("%w: MsgSeqNum %d, expected %d", ErrDuplicate, seq, s.expectedIn))
}

func (s *Session) onGap(msg *fix.Message, seq uint64, now time.Time) Action {
	act := noneAction()
	end := seq - 1

	switch {
	case msg.IsMsgType(fix.MsgTypeResendRequest):
		// serve the counterparty's own recovery without waiting for ours
		act.merge(s.onResendRequest(msg, seq, now))
		s.pending.Add(seq, nil)
	case s.pending.Has(seq):
	case msg.IsMsgType(fix.MsgTypeTestRequest):
		// the counterparty times out unless the Heartbeat goes out now
		act.merge(s.onTestRequest(msg, seq, now))
		s.pending.Add(seq, nil)
	case s.pending.Full():
		end = seq
		s.metrics.incDroppedCount()
		s.logger.Warn("gap queue full, message dropped", "seq", seq, "max_pending", s.cfg.maxPending)
	default:
		s.pending.Add(seq, msg.Clone())
	}

	if s.state.IsEstablished() {
		act.merge(s.requestGap(now, end))
		// seq itself is in hand or requested
		s.resendTarget = max(s.resendTarget, seq)
	}

	return act
}

// requestGap emits a Resend Request for the part of [expectedIn, end] not already requested.
func (s *Session) requestGap(now time.Time, end uint64) Action {
	begin := s.expectedIn
	if s.resendTarget >= begin {
		begin = s.resendTarget + 1
	}
	if begin > end {
		return noneAction()
	}

	r := SeqRange{Begin: begin, End: end}
	out, err := s.composeResendRequest(now, r)
	if err != nil {
		return s.fatal(now, err, "")
	}

	s.resendTarget = end
	s.resendAt = now
	s.metrics.incGapCount()
	s.logger.Warn("sequence gap detected", "expected", s.expectedIn, "range", r.String())

	return Action{Kind: ActionResendRequest, Outbound: [][]byte{out}, Range: r}
}

// reissueResend requests [expectedIn, resendTarget] again, excluding the queued tail, when
// an outstanding Resend Request made no progress for resendTimeout.
func (s *Session) reissueResend(now time.Time) Action {
	if s.resendTarget < s.expectedIn || now.Sub(s.resendAt) < s.cfg.resendTimeout {
		return noneAction()
	}

	end := s.resendTarget
	for end > s.expectedIn && s.pending.Has(end) {
		end--
	}

	r := SeqRange{Begin: s.expectedIn, End: end}
	out, err := s.composeResendRequest(now, r)
	if err != nil {
		return s.fatal(now, err, "")
	}

	s.resendAt = now
	s.logger.Warn("resend request stalled, requesting again", "range", r.String(), "pending", s.pending.Len())

	return Action{Kind: ActionResendRequest, Outbound: [][]byte{out}, Range: r}
}

// process handles a message whose MsgSeqNum equals the expected incoming sequence number.
func (s *Session) process(msg *fix.Message, seq uint64, now time.Time) Action {
	s.expectedIn = seq + 1

	switch string(msg.MsgType()) {
	case fix.MsgTypeHeartbeat:
		s.onHeartbeat(msg)
		return noneAction()
	case fix.MsgTypeTestRequest:
		return s.onTestRequest(msg, seq, now)
	case fix.MsgTypeResendRequest:
		return s.onResendRequest(msg, seq, now)
	case fix.MsgTypeReject:
		refSeq, _ := msg.GetUint(fix.TagRefSeqNum)
		text, _ := msg.GetString(fix.TagText)
		s.logger.Warn("session reject received", "ref_seq", refSeq, "text", text)
		return noneAction()
	case fix.MsgTypeSequenceReset:
		if !isGapFill(msg) {
			return s.onSequenceReset(msg, seq, now)
		}
		return s.onGapFill(msg, seq, now)
	case fix.MsgTypeLogout:
		return s.onLogout(msg, now)
	case fix.MsgTypeLogon:
		return s.fatal(now, ErrUnexpectedLogon, "unexpected Logon")
	default:
		s.metrics.incAppMsgDeliverCount()
		return deliverAction(msg)
	}
}

// drain releases queued messages that have become in-sequence.
func (s *Session) drain(now time.Time) Action {
	act := noneAction()
	for s.state.IsEstablished() {
		seq, msg, ok := s.pending.Min()
		if !ok || seq > s.expectedIn {
			break
		}
		s.pending.Delete(seq)

		switch {
		case seq < s.expectedIn:
			continue
		case msg == nil:
			s.expectedIn = seq + 1
		default:
			act.merge(s.process(msg, seq, now))
		}
	}

	return act
}

func (s *Session) onHeartbeat(msg *fix.Message) {
	if s.testReqID == "" {
		return
	}

	if id, ok := msg.Get(fix.TagTestReqID); ok && string(id) == s.testReqID {
		s.logger.Debug("test request answered", "test_req_id", s.testReqID)
		s.testReqID = ""
	}
}

func (s *Session) onTestRequest(msg *fix.Message, seq uint64, now time.Time) Action {
	id, ok := msg.Get(fix.TagTestReqID)
	if !ok || len(id) == 0 {
		return s.reject(now, msg, seq, fix.TagTestReqID, fix.RejectReasonRequiredTagMissing, "TestReqID is required")
	}

	out, err := s.composeHeartbeat(now, id)
	if err != nil {
		return s.fatal(now, err, "")
	}

	return adminAction(out)
}

func (s *Session) onResendRequest(msg *fix.Message, seq uint64, now time.Time) Action {
	begin, err := msg.GetUint(fix.TagBeginSeqNo)
	if err != nil || begin == 0 {
		return s.rejectField(now, msg, seq, fix.TagBeginSeqNo, err)
	}
	end, err := msg.GetUint(fix.TagEndSeqNo)
	if err != nil {
		return s.rejectField(now, msg, seq, fix.TagEndSeqNo, err)
	}
	if end != 0 && end < begin {
		return s.reject(now, msg, seq, fix.TagEndSeqNo, fix.RejectReasonValueIncorrect, "EndSeqNo is below BeginSeqNo")
	}

	s.logger.Info("resend request received", "begin", begin, "end", end)

	frames, err := s.serveResend(begin, end, now)
	if err != nil {
		return s.fatal(now, err, "")
	}
	if len(frames) == 0 {
		return noneAction()
	}

	return adminAction(frames...)
}

func (s *Session) onGapFill(msg *fix.Message, seq uint64, now time.Time) Action {
	newSeq, err := msg.GetUint(fix.TagNewSeqNo)
	if err != nil {
		return s.rejectField(now, msg, seq, fix.TagNewSeqNo, err)
	}
	if newSeq <= seq {
		return s.reject(now, msg, seq, fix.TagNewSeqNo, fix.RejectReasonValueIncorrect, "NewSeqNo must be greater than MsgSeqNum")
	}

	s.logger.Info("gap filled", "seq", seq, "new_seq", newSeq)
	s.expectedIn = newSeq
	s.pending.DeleteBelow(newSeq)
	s.metrics.incSeqResetCount()

	return noneAction()
}

func (s *Session) onSequenceReset(msg *fix.Message, seq uint64, now time.Time) Action {
	newSeq, err := msg.GetUint(fix.TagNewSeqNo)
	if err != nil {
		return s.rejectField(now, msg, seq, fix.TagNewSeqNo, err)
	}
	if newSeq < s.expectedIn {
		s.logger.Warn("sequence reset ignored", "new_seq", newSeq, "expected", s.expectedIn)
		return ignoreAction(fmt.Errorf("%w: %d is below expected %d", ErrInvalidNewSeqNo, newSeq, s.expectedIn))
	}

	s.logger.Warn("incoming sequence reset", "from", s.expectedIn, "to", newSeq)
	s.expectedIn = newSeq
	s.resendAt = now
	s.pending.DeleteBelow(newSeq)
	s.metrics.incSeqResetCount()

	return s.drain(now)
}

func (s *Session) onLogout(msg *fix.Message, now time.Time) Action {
	text, _ := msg.GetString(fix.TagText)

	if s.state == LogoutSent {
		s.logger.Info("logout completed", "text", text)
		_ = s.transition(EventLogoutReceived, now)

		return Action{Kind: ActionDisconnect}
	}

	out, err := s.composeLogout(now, "")
	if err != nil {
		return s.fatal(now, err, "")
	}

	s.logger.Info("logout received", "text", text)
	_ = s.transition(EventLogoutReceived, now)

	return Action{Kind: ActionDisconnect, Outbound: [][]byte{out}}
}

// rejectField rejects a message whose required field tag is missing (err is fix.ErrFieldNotFound)
// or badly formatted.
func (s *Session) rejectField(now time.Time, msg *fix.Message, seq uint64, tag int, err error) Action {
	if errors.Is(err, fix.ErrFieldNotFound) {
		return s.reject(now, msg, seq, tag, fix.RejectReasonRequiredTagMissing, "required tag missing")
	}

	return s.reject(now, msg, seq, tag, fix.RejectReasonIncorrectDataFormat, "incorrect data format")
}

func (s *Session) reject(now time.Time, msg *fix.Message, seq uint64, tag int, reason int, text string) Action {
	out, err := s.composeReject(now, seq, msg.MsgType(), tag, reason, text)
	if err != nil {
		return s.fatal(now, err, "")
	}

	s.logger.Warn("message rejected", "seq", seq, "msg_type", string(msg.MsgType()), "tag", tag, "reason", text)

	return Action{
		Kind:     ActionAdministrative,
		Outbound: [][]byte{out},
		Err:      fmt.Errorf("%w: tag %d: %s", ErrInvalidAdminMessage, tag, text),
	}
}

func (s *Session) malformedInput(err error) Action {
	s.malformed++
	s.metrics.incMalformedCount()
	s.logger.Warn("malformed message ignored", "error", err, "consecutive", s.malformed)

	if s.malformed > s.cfg.maxMalformed {
		text := ""
		if s.state != Disconnected {
			text = "too many malformed messages"
		}

		return s.fatal(s.cfg.clock(), fmt.Errorf("%w: %w", ErrTooManyMalformed, err), text)
	}

	return ignoreAction(err)
}

// fatal fails the session. A Logout carrying logoutText is emitted when logoutText is not empty.
func (s *Session) fatal(now time.Time, err error, logoutText string) Action {
	act := Action{Kind: ActionFatal, Err: err}

	if logoutText != "" {
		out, lerr := s.composeLogout(now, logoutText)
		if lerr != nil {
			s.logger.Error("failed to compose logout", "error", lerr)
		} else {
			act.Outbound = [][]byte{out}
		}
	}

	s.metrics.incFatalCount()
	s.logger.Error("session failed", "error", err, "state", s.state.String())
	_ = s.transition(EventFatal, now)

	return act
}

func (s *Session) transition(e Event, now time.Time) error {
	next, err := Transition(s.state, e)
	if err != nil {
		return err
	}
	s.setState(next, now)

	return nil
}

func (s *Session) setState(next State, now time.Time) {
	prev := s.state
	s.state = next
	s.stateSince = now

	if next == Disconnected {
		s.pending.Clear()
		s.resendTarget = 0
		s.testReqID = ""
		s.malformed = 0
		s.heartbeatInterval = s.cfg.heartbeatInterval
	}

	if prev != next {
		s.logger.Info("session state changed", "prev", prev.String(), "state", next.String())
	}
}

func (s *Session) resetSeqNums() {
	s.logger.Info("sequence numbers reset", "next_outgoing", s.nextOut, "expected_incoming", s.expectedIn)
	s.nextOut = 1
	s.expectedIn = 1
	s.pending.Clear()
	s.resendTarget = 0
	s.metrics.incSeqResetCount()
	s.resetStore()
}

// resetStore drops the stored outgoing messages once the outgoing sequence number restarts at 1.
func (s *Session) resetStore() {
	rs, ok := s.cfg.store.(ResettableStore)
	if !ok {
		return
	}

	if err := rs.Reset(); err != nil {
		s.logger.Error("failed to reset message store", "error", err)
	}
}

func (s *Session) updateGauges() {
	s.metrics.PendingGauge.Store(int64(s.pending.Len()))
	s.metrics.NextOutgoingSeqGauge.Store(s.nextOut)
	s.metrics.ExpectedIncomingSeqGauge.Store(s.expectedIn)
	s.metrics.StateGauge.Store(uint32(s.state))
}

func isGapFill(msg *fix.Message) bool {
	gapFill, _ := msg.GetBool(fix.TagGapFillFlag)
	return gapFill
}
