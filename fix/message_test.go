package fix

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessage_Accessors(t *testing.T) {
	require := require.New(t)

	msg, _, err := Parse(wire(logonFIX44))
	require.NoError(err)

	require.Equal("A", string(msg.MsgType()))
	require.True(msg.IsMsgType(MsgTypeLogon))
	require.True(msg.IsAdmin())
	require.True(msg.Has(TagHeartBtInt))
	require.False(msg.Has(TagTestReqID))

	seq, err := msg.SeqNum()
	require.NoError(err)
	require.EqualValues(1, seq)

	hb, err := msg.GetInt(TagHeartBtInt)
	require.NoError(err)
	require.EqualValues(30, hb)

	sender, err := msg.GetString(TagSenderCompID)
	require.NoError(err)
	require.Equal("ALICE", sender)

	_, err = msg.GetString(TagTestReqID)
	require.ErrorIs(err, ErrFieldNotFound)

	_, err = msg.GetUint(TagSenderCompID)
	require.ErrorIs(err, ErrInvalidFieldFormat)

	_, err = msg.GetBool(TagHeartBtInt)
	require.ErrorIs(err, ErrInvalidFieldFormat)

	_, err = msg.GetBool(TagPossDupFlag)
	require.ErrorIs(err, ErrFieldNotFound)

	require.Empty(msg.GetAll(TagTestReqID))
}

func TestMessage_IsAdmin(t *testing.T) {
	tests := []struct {
		description string
		msgType     string
		admin       bool
	}{
		{description: "heartbeat", msgType: "0", admin: true},
		{description: "test request", msgType: "1", admin: true},
		{description: "resend request", msgType: "2", admin: true},
		{description: "reject", msgType: "3", admin: true},
		{description: "sequence reset", msgType: "4", admin: true},
		{description: "logout", msgType: "5", admin: true},
		{description: "logon", msgType: "A", admin: true},
		{description: "new order single", msgType: "D", admin: false},
		{description: "execution report", msgType: "8", admin: false},
		{description: "multi-char", msgType: "AE", admin: false},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			out, err := Build(FIX44, []Field{NewField(TagMsgType, tt.msgType)})
			require.NoError(t, err)

			msg, _, err := Parse(out)
			require.NoError(t, err)
			require.Equal(t, tt.admin, msg.IsAdmin())
		})
	}
}

func TestMessage_Clone(t *testing.T) {
	require := require.New(t)

	buf := wire(logonFIX44)
	msg, _, err := Parse(buf)
	require.NoError(err)

	clone := msg.Clone()
	require.Equal(msg.Raw, clone.Raw)
	require.Equal(msg.Version(), clone.Version())
	require.Equal(msg.CheckSum, clone.CheckSum)
	require.Equal(msg.BodyLength, clone.BodyLength)

	// overwrite the source buffer; the clone must be unaffected
	for i := range buf {
		buf[i] = 'x'
	}

	sender, err := clone.GetString(TagSenderCompID)
	require.NoError(err)
	require.Equal("ALICE", sender)
	require.Equal("FIX.4.4", string(clone.BeginString))
	require.Equal(string(wire(logonFIX44)), string(clone.Raw))
}

func TestMessage_CloneUnframed(t *testing.T) {
	require := require.New(t)

	value := []byte("ALICE")
	msg := &Message{Fields: []Field{{Tag: TagSenderCompID, Value: value}}}

	clone := msg.Clone()
	value[0] = 'X'

	sender, err := clone.GetString(TagSenderCompID)
	require.NoError(err)
	require.Equal("ALICE", sender)
	require.Nil(clone.Raw)
}

func TestMessage_String(t *testing.T) {
	msg, _, err := Parse(wire(heartbeat))
	require.NoError(t, err)
	require.Equal(t, heartbeat, msg.String())

	unframed := &Message{Fields: []Field{NewField(35, "0"), NewIntField(34, 2)}}
	require.Equal(t, "35=0|34=2|", unframed.String())
}

func TestFieldConstructors(t *testing.T) {
	require := require.New(t)

	require.Equal("-7", string(NewIntField(1, -7).Value))
	require.Equal("18446744073709551615", string(NewUintField(1, ^uint64(0)).Value))
	require.Equal("Y", string(NewBoolField(1, true).Value))
	require.Equal("N", string(NewBoolField(1, false).Value))
}

func TestVersion(t *testing.T) {
	require := require.New(t)

	v, err := ParseVersion([]byte("FIX.4.4"))
	require.NoError(err)
	require.Equal(FIX44, v)
	require.Empty(v.DefaultApplVerID())

	v, err = ParseVersion([]byte("FIXT.1.1"))
	require.NoError(err)
	require.Equal(FIX50, v)
	require.Equal("7", v.DefaultApplVerID())
	require.Equal("FIXT.1.1", v.BeginString())
	require.Equal("FIX.5.0", v.String())

	_, err = ParseVersion([]byte("FIX.4.2"))
	require.ErrorIs(err, ErrUnsupportedVersion)
	require.False(UnknownVersion.IsValid())
	require.Empty(UnknownVersion.BeginString())
}
