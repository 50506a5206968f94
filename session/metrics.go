package session

import "sync/atomic"

// Metrics contains atomic metrics for a session.
// Metrics can be read from any goroutine and used as the value of a prometheus CounterFunc or GaugeFunc.
type Metrics struct {
	// MsgSendCount indicates the number of sequenced messages sent.
	MsgSendCount atomic.Uint64
	// MsgRecvCount indicates the number of well-formed messages received.
	MsgRecvCount atomic.Uint64
	// AppMsgDeliverCount indicates the number of application messages delivered.
	AppMsgDeliverCount atomic.Uint64

	// HeartbeatSendCount indicates the number of Heartbeats sent.
	HeartbeatSendCount atomic.Uint64
	// TestRequestSendCount indicates the number of Test Requests sent.
	TestRequestSendCount atomic.Uint64
	// RejectSendCount indicates the number of session-level Rejects sent.
	RejectSendCount atomic.Uint64

	// GapCount indicates the number of sequence gaps detected.
	GapCount atomic.Uint64
	// ResendRequestSendCount indicates the number of Resend Requests sent.
	ResendRequestSendCount atomic.Uint64
	// ResendServeCount indicates the number of messages replayed or gap-filled for the counterparty.
	ResendServeCount atomic.Uint64
	// SeqResetCount indicates the number of sequence discontinuities (resets and gap fills).
	SeqResetCount atomic.Uint64

	// DuplicateCount indicates the number of duplicate messages ignored.
	DuplicateCount atomic.Uint64
	// MalformedCount indicates the number of malformed messages ignored.
	MalformedCount atomic.Uint64
	// DroppedCount indicates the number of out-of-sequence messages dropped because the queue was full.
	DroppedCount atomic.Uint64
	// FatalCount indicates the number of fatal session failures.
	FatalCount atomic.Uint64

	// PendingGauge indicates the number of out-of-sequence messages waiting for backfill.
	PendingGauge atomic.Int64
	// NextOutgoingSeqGauge indicates the next outgoing sequence number.
	NextOutgoingSeqGauge atomic.Uint64
	// ExpectedIncomingSeqGauge indicates the next expected incoming sequence number.
	ExpectedIncomingSeqGauge atomic.Uint64
	// StateGauge indicates the current session state.
	StateGauge atomic.Uint32
}

func (m *Metrics) incMsgSendCount() {
	m.MsgSendCount.Add(1)
}

func (m *Metrics) incMsgRecvCount() {
	m.MsgRecvCount.Add(1)
}

func (m *Metrics) incAppMsgDeliverCount() {
	m.AppMsgDeliverCount.Add(1)
}

func (m *Metrics) incHeartbeatSendCount() {
	m.HeartbeatSendCount.Add(1)
}

func (m *Metrics) incTestRequestSendCount() {
	m.TestRequestSendCount.Add(1)
}

func (m *Metrics) incRejectSendCount() {
	m.RejectSendCount.Add(1)
}

func (m *Metrics) incGapCount() {
	m.GapCount.Add(1)
}

func (m *Metrics) incResendRequestSendCount() {
	m.ResendRequestSendCount.Add(1)
}

func (m *Metrics) addResendServeCount(n int) {
	m.ResendServeCount.Add(uint64(n)) //nolint:gosec
}

func (m *Metrics) incSeqResetCount() {
	m.SeqResetCount.Add(1)
}

func (m *Metrics) incDuplicateCount() {
	m.DuplicateCount.Add(1)
}

func (m *Metrics) incMalformedCount() {
	m.MalformedCount.Add(1)
}

func (m *Metrics) incDroppedCount() {
	m.DroppedCount.Add(1)
}

func (m *Metrics) incFatalCount() {
	m.FatalCount.Add(1)
}
