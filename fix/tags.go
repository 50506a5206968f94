package fix

// Tag numbers used by the framing and session layers.
// Application-level tags belong to the caller's data dictionary.
const (
	TagBeginSeqNo          = 7
	TagBeginString         = 8
	TagBodyLength          = 9
	TagCheckSum            = 10
	TagEndSeqNo            = 16
	TagMsgSeqNum           = 34
	TagMsgType             = 35
	TagNewSeqNo            = 36
	TagPossDupFlag         = 43
	TagRefSeqNum           = 45
	TagSenderCompID        = 49
	TagSendingTime         = 52
	TagTargetCompID        = 56
	TagText                = 58
	TagPossResend          = 97
	TagEncryptMethod       = 98
	TagHeartBtInt          = 108
	TagTestReqID           = 112
	TagOrigSendingTime     = 122
	TagGapFillFlag         = 123
	TagResetSeqNumFlag     = 141
	TagRefTagID            = 371
	TagRefMsgType          = 372
	TagSessionRejectReason = 373
	TagDefaultApplVerID    = 1137
)

// Administrative message types (tag 35).
const (
	MsgTypeHeartbeat     = "0"
	MsgTypeTestRequest   = "1"
	MsgTypeResendRequest = "2"
	MsgTypeReject        = "3"
	MsgTypeSequenceReset = "4"
	MsgTypeLogout        = "5"
	MsgTypeLogon         = "A"
)

// SessionRejectReason (tag 373) values emitted by the session layer.
const (
	RejectReasonRequiredTagMissing  = 1
	RejectReasonValueIncorrect      = 5
	RejectReasonIncorrectDataFormat = 6
	RejectReasonCompIDProblem       = 9
)

// SOH is the FIX field delimiter.
const SOH byte = 0x01

// IsAdminMsgType reports whether msgType is one of the session-level message types.
func IsAdminMsgType(msgType []byte) bool {
	if len(msgType) != 1 {
		return false
	}
	switch msgType[0] {
	case '0', '1', '2', '3', '4', '5', 'A':
		return true
	default:
		return false
	}
}
