package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-fix/fix"
)

func resendRequest(h *harness, seq uint64, begin uint64, end uint64) *fix.Message {
	return h.inbound(fix.MsgTypeResendRequest, seq,
		fix.NewUintField(fix.TagBeginSeqNo, begin), fix.NewUintField(fix.TagEndSeqNo, end))
}

func TestResend_ReplayFromStore(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, WithMessageStore(newMemoryStore()))
	h.active()

	_, err := h.sess.Send("D", fix.NewField(11, "ORD-A"))
	require.NoError(err)
	_, err = h.sess.Send("D", fix.NewField(11, "ORD-B"))
	require.NoError(err)
	require.Equal(uint64(4), h.sess.NextOutgoingSeq())

	h.advance(time.Minute)
	act := h.sess.OnMessage(resendRequest(h, 2, 1, 0))
	require.Equal(ActionAdministrative, act.Kind)
	require.Len(act.Outbound, 3)
	require.Equal(uint64(4), h.sess.NextOutgoingSeq())

	// the Logon is administrative and is skipped
	fill := parseOut(t, act.Outbound[0])
	requireField(t, fill, fix.TagMsgType, fix.MsgTypeSequenceReset)
	requireField(t, fill, fix.TagMsgSeqNum, "1")
	requireField(t, fill, fix.TagPossDupFlag, "Y")
	requireField(t, fill, fix.TagGapFillFlag, "Y")
	requireField(t, fill, fix.TagNewSeqNo, "2")
	requireField(t, fill, fix.TagOrigSendingTime, "20240101-09:01:00.000")

	replay := parseOut(t, act.Outbound[1])
	require.Equal([]int{35, 49, 56, 34, 43, 52, 122, 11}, tagsOf(replay))
	requireField(t, replay, fix.TagMsgType, "D")
	requireField(t, replay, fix.TagMsgSeqNum, "2")
	requireField(t, replay, fix.TagPossDupFlag, "Y")
	requireField(t, replay, fix.TagSendingTime, "20240101-09:01:00.000")
	requireField(t, replay, fix.TagOrigSendingTime, "20240101-09:00:00.000")
	requireField(t, replay, 11, "ORD-A")

	replay = parseOut(t, act.Outbound[2])
	requireField(t, replay, fix.TagMsgSeqNum, "3")
	requireField(t, replay, 11, "ORD-B")

	require.Equal(uint64(3), h.sess.Metrics().ResendServeCount.Load())
}

func TestResend_AdminTail(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, WithMessageStore(newMemoryStore()))
	h.active()

	_, err := h.sess.Send("D", fix.NewField(11, "ORD-A"))
	require.NoError(err)

	h.advance(30 * time.Second)
	act := h.sess.Tick(h.now)
	requireField(t, parseOut(t, act.Outbound[0]), fix.TagMsgSeqNum, "3")

	act = h.sess.OnMessage(resendRequest(h, 2, 2, 3))
	require.Len(act.Outbound, 2)
	requireField(t, parseOut(t, act.Outbound[0]), 11, "ORD-A")

	fill := parseOut(t, act.Outbound[1])
	requireField(t, fill, fix.TagMsgSeqNum, "3")
	requireField(t, fill, fix.TagNewSeqNo, "4")
}

func TestResend_WithoutStore(t *testing.T) {
	require := require.New(t)
	h := newHarness(t)
	h.active()

	for i := 0; i < 2; i++ {
		_, err := h.sess.Send("D")
		require.NoError(err)
	}

	act := h.sess.OnMessage(resendRequest(h, 2, 1, 0))
	require.Equal(ActionAdministrative, act.Kind)
	require.Len(act.Outbound, 1)

	fill := parseOut(t, act.Outbound[0])
	requireField(t, fill, fix.TagMsgSeqNum, "1")
	requireField(t, fill, fix.TagGapFillFlag, "Y")
	requireField(t, fill, fix.TagNewSeqNo, "4")
	requireField(t, fill, fix.TagPossDupFlag, "Y")
	requireField(t, fill, fix.TagOrigSendingTime, "20240101-09:00:00.000")
}

func TestResend_ClampedRange(t *testing.T) {
	require := require.New(t)
	h := newHarness(t)
	h.active()

	_, err := h.sess.Send("D")
	require.NoError(err)

	act := h.sess.OnMessage(resendRequest(h, 2, 2, 100))
	require.Len(act.Outbound, 1)
	requireField(t, parseOut(t, act.Outbound[0]), fix.TagNewSeqNo, "3")

	act = h.sess.OnMessage(resendRequest(h, 3, 10, 0))
	require.Equal(ActionNone, act.Kind)
	require.Empty(act.Outbound)
}

func TestResend_InvalidRequest(t *testing.T) {
	tests := []struct {
		description string
		fields      []fix.Field
		refTag      string
		reason      string
	}{
		{
			description: "missing BeginSeqNo",
			fields:      []fix.Field{fix.NewUintField(fix.TagEndSeqNo, 0)},
			refTag:      "7",
			reason:      "1",
		},
		{
			description: "missing EndSeqNo",
			fields:      []fix.Field{fix.NewUintField(fix.TagBeginSeqNo, 1)},
			refTag:      "16",
			reason:      "1",
		},
		{
			description: "non-numeric BeginSeqNo",
			fields:      []fix.Field{fix.NewField(fix.TagBeginSeqNo, "x"), fix.NewUintField(fix.TagEndSeqNo, 0)},
			refTag:      "7",
			reason:      "6",
		},
		{
			description: "end below begin",
			fields:      []fix.Field{fix.NewUintField(fix.TagBeginSeqNo, 5), fix.NewUintField(fix.TagEndSeqNo, 2)},
			refTag:      "16",
			reason:      "5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			require := require.New(t)
			h := newHarness(t)
			h.active()

			act := h.sess.OnMessage(h.inbound(fix.MsgTypeResendRequest, 2, tt.fields...))
			require.Equal(ActionAdministrative, act.Kind)
			require.ErrorIs(act.Err, ErrInvalidAdminMessage)

			reject := parseOut(t, act.Outbound[0])
			requireField(t, reject, fix.TagMsgType, fix.MsgTypeReject)
			requireField(t, reject, fix.TagRefTagID, tt.refTag)
			requireField(t, reject, fix.TagSessionRejectReason, tt.reason)
			require.Equal(uint64(3), h.sess.ExpectedIncomingSeq())
		})
	}
}

func TestResend_RequestAboveGap(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, WithMessageStore(newMemoryStore()))
	h.active()

	// the counterparty's own Resend Request is served before our gap is filled
	act := h.sess.OnMessage(resendRequest(h, 5, 1, 0))
	require.Equal(ActionResendRequest, act.Kind)
	require.Equal(SeqRange{Begin: 2, End: 4}, act.Range)
	require.Len(act.Outbound, 2)

	fill := parseOut(t, act.Outbound[0])
	requireField(t, fill, fix.TagMsgType, fix.MsgTypeSequenceReset)
	requireField(t, fill, fix.TagNewSeqNo, "2")

	req := parseOut(t, act.Outbound[1])
	requireField(t, req, fix.TagMsgType, fix.MsgTypeResendRequest)
	requireField(t, req, fix.TagBeginSeqNo, "2")
	requireField(t, req, fix.TagEndSeqNo, "4")

	act = h.sess.OnMessage(h.inbound(fix.MsgTypeSequenceReset, 2,
		fix.NewBoolField(fix.TagPossDupFlag, true),
		fix.NewBoolField(fix.TagGapFillFlag, true),
		fix.NewUintField(fix.TagNewSeqNo, 5)))
	require.Equal(ActionNone, act.Kind)
	require.Equal(uint64(6), h.sess.ExpectedIncomingSeq())
	require.Equal(0, h.sess.PendingLen())
}

func TestResend_TestRequestAboveGap(t *testing.T) {
	require := require.New(t)
	h := newHarness(t)
	h.active()

	// the Heartbeat goes out at once, before the gap below the Test Request is filled
	act := h.sess.OnMessage(h.inbound(fix.MsgTypeTestRequest, 5, fix.NewField(fix.TagTestReqID, "X1")))
	require.Equal(ActionResendRequest, act.Kind)
	require.Equal(SeqRange{Begin: 2, End: 4}, act.Range)
	require.Len(act.Outbound, 2)

	hb := parseOut(t, act.Outbound[0])
	requireField(t, hb, fix.TagMsgType, fix.MsgTypeHeartbeat)
	requireField(t, hb, fix.TagMsgSeqNum, "2")
	requireField(t, hb, fix.TagTestReqID, "X1")

	req := parseOut(t, act.Outbound[1])
	requireField(t, req, fix.TagMsgType, fix.MsgTypeResendRequest)
	requireField(t, req, fix.TagMsgSeqNum, "3")
	requireField(t, req, fix.TagBeginSeqNo, "2")
	requireField(t, req, fix.TagEndSeqNo, "4")
	require.Equal(1, h.sess.PendingLen())
	require.Equal(uint64(2), h.sess.ExpectedIncomingSeq())

	// the Test Request is not answered again once the gap is filled
	act = h.sess.OnMessage(h.inbound(fix.MsgTypeSequenceReset, 2,
		fix.NewBoolField(fix.TagPossDupFlag, true),
		fix.NewBoolField(fix.TagGapFillFlag, true),
		fix.NewUintField(fix.TagNewSeqNo, 5)))
	require.Equal(ActionNone, act.Kind)
	require.Empty(act.Outbound)
	require.Equal(uint64(6), h.sess.ExpectedIncomingSeq())
	require.Equal(0, h.sess.PendingLen())
	require.Equal(uint64(1), h.sess.Metrics().HeartbeatSendCount.Load())
}
