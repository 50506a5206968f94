package fix

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuild_KnownFrames(t *testing.T) {
	tests := []struct {
		description string
		version     Version
		fields      []Field
		expected    string
	}{
		{
			description: "FIX 4.4 logon",
			version:     FIX44,
			fields: []Field{
				NewField(35, "A"), NewField(34, "1"), NewField(49, "ALICE"), NewField(56, "BROKER"),
				NewField(52, "20240101-00:00:00.000"), NewField(98, "0"), NewField(108, "30"),
			},
			expected: logonFIX44,
		},
		{
			description: "FIXT.1.1 logon",
			version:     FIX50,
			fields: []Field{
				NewField(35, "A"), NewField(34, "1"), NewField(49, "ALICE"), NewField(56, "BROKER"),
				NewField(98, "0"), NewField(108, "30"), NewField(1137, "7"),
			},
			expected: logonFIX50,
		},
		{
			description: "heartbeat",
			version:     FIX44,
			fields:      []Field{NewField(35, "0"), NewField(34, "2"), NewField(49, "A"), NewField(56, "B")},
			expected:    heartbeat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			out, err := Build(tt.version, tt.fields)
			require.NoError(t, err)
			require.Equal(t, string(wire(tt.expected)), string(out))
		})
	}
}

func TestBuild_RoundTrip(t *testing.T) {
	tests := []struct {
		description string
		version     Version
		fields      []Field
	}{
		{description: "empty body", version: FIX44, fields: nil},
		{description: "single field", version: FIX44, fields: []Field{NewField(35, "0")}},
		{description: "empty value", version: FIX50, fields: []Field{NewField(35, "B"), NewField(58, "")}},
		{
			description: "repeated group",
			version:     FIX50,
			fields: []Field{
				NewField(35, "D"), NewField(453, "2"),
				NewField(448, "P1"), NewField(447, "D"), NewField(452, "1"),
				NewField(448, "P2"), NewField(447, "D"), NewField(452, "3"),
			},
		},
		{
			description: "binary-ish value",
			version:     FIX44,
			fields:      []Field{NewField(35, "n"), {Tag: 213, Value: []byte{0x00, 0x02, '=', 0xFF}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			require := require.New(t)

			out, err := Build(tt.version, tt.fields)
			require.NoError(err)

			msg, n, err := Parse(out)
			require.NoError(err)
			require.Equal(len(out), n)
			require.Equal(tt.version, msg.Version())
			require.Len(msg.Fields, len(tt.fields))
			for i, f := range tt.fields {
				require.Equal(f.Tag, msg.Fields[i].Tag)
				require.Equal(string(f.Value), string(msg.Fields[i].Value))
			}
		})
	}
}

func TestBuild_BodyLengthAndChecksum(t *testing.T) {
	require := require.New(t)

	out, err := Build(FIX44, []Field{NewField(35, "0"), NewField(34, "12")})
	require.NoError(err)

	s := string(out)
	bodyStart := strings.Index(s, "\x019=") + 1
	bodyStart += strings.IndexByte(s[bodyStart:], SOH) + 1
	trailer := strings.LastIndex(s, "\x0110=") + 1

	require.Contains(s, "\x019="+strconv.Itoa(trailer-bodyStart)+"\x01")
	require.Equal("10="+padChecksum(CheckSum(out[:trailer]))+"\x01", s[trailer:])
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		description string
		version     Version
		fields      []Field
		kind        error
		tag         int
	}{
		{description: "unknown version", version: UnknownVersion, fields: nil, kind: ErrUnsupportedVersion},
		{description: "out of range version", version: Version(42), fields: nil, kind: ErrUnsupportedVersion},
		{description: "SOH in value", version: FIX44, fields: []Field{NewField(58, "a\x01b")}, kind: ErrInvalidFieldValue, tag: 58},
		{description: "zero tag", version: FIX44, fields: []Field{NewField(0, "x")}, kind: ErrInvalidFieldValue},
		{description: "negative tag", version: FIX44, fields: []Field{NewField(-1, "x")}, kind: ErrInvalidFieldValue, tag: -1},
		{description: "caller BeginString", version: FIX44, fields: []Field{NewField(8, "FIX.4.4")}, kind: ErrInvalidFieldValue, tag: 8},
		{description: "caller BodyLength", version: FIX44, fields: []Field{NewField(9, "5")}, kind: ErrInvalidFieldValue, tag: 9},
		{description: "caller CheckSum", version: FIX44, fields: []Field{NewField(35, "0"), NewField(10, "000")}, kind: ErrInvalidFieldValue, tag: 10},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			require := require.New(t)

			out, err := Build(tt.version, tt.fields)
			require.Nil(out)
			require.ErrorIs(err, tt.kind)

			var berr *BuildError
			require.ErrorAs(err, &berr)
			require.Equal(tt.tag, berr.Tag)
			require.NotEmpty(berr.Error())
		})
	}
}

func TestBuilder_Fluent(t *testing.T) {
	require := require.New(t)

	ts := time.Date(2024, 3, 9, 14, 5, 6, 789_000_000, time.FixedZone("UTC+8", 8*3600))
	b := NewBuilder(FIX50)
	out, err := b.AddString(TagMsgType, "D").
		AddUint(TagMsgSeqNum, 42).
		AddBytes(TagSenderCompID, []byte("ALICE")).
		AddInt(44, -15).
		AddBool(TagPossDupFlag, true).
		AddBool(TagGapFillFlag, false).
		AddTime(TagSendingTime, ts).
		Build()
	require.NoError(err)

	msg, _, err := Parse(out)
	require.NoError(err)
	require.Equal(FIX50, msg.Version())

	seq, err := msg.SeqNum()
	require.NoError(err)
	require.EqualValues(42, seq)

	px, err := msg.GetInt(44)
	require.NoError(err)
	require.EqualValues(-15, px)

	possDup, err := msg.GetBool(TagPossDupFlag)
	require.NoError(err)
	require.True(possDup)

	gapFill, err := msg.GetBool(TagGapFillFlag)
	require.NoError(err)
	require.False(gapFill)

	sendingTime, err := msg.GetString(TagSendingTime)
	require.NoError(err)
	require.Equal("20240309-06:05:06.789", sendingTime)
}

func TestBuilder_StickyErrorAndReset(t *testing.T) {
	require := require.New(t)

	b := NewBuilder(FIX44)
	b.AddString(TagMsgType, "0").AddString(TagText, "bad\x01text").AddString(TagTestReqID, "ok")
	require.ErrorIs(b.Err(), ErrInvalidFieldValue)

	out, err := b.Build()
	require.Nil(out)
	require.ErrorIs(err, ErrInvalidFieldValue)

	b.Reset()
	require.NoError(b.Err())
	require.Zero(b.Len())

	out, err = b.AddString(TagMsgType, "0").Build()
	require.NoError(err)

	msg, _, err := Parse(out)
	require.NoError(err)
	require.True(msg.IsMsgType(MsgTypeHeartbeat))
	require.Len(msg.Fields, 1)
}

func TestBuilder_BuildTwice(t *testing.T) {
	b := NewBuilder(FIX44).AddString(TagMsgType, "0")

	first, err := b.Build()
	require.NoError(t, err)
	second, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestCheckSum(t *testing.T) {
	require.Equal(t, uint8(0), CheckSum(nil))
	require.Equal(t, uint8('A'), CheckSum([]byte("A")))
	require.Equal(t, uint8(44), CheckSum([]byte{200, 100}))
}

func padChecksum(sum uint8) string {
	s := strconv.Itoa(int(sum))
	return strings.Repeat("0", 3-len(s)) + s
}
