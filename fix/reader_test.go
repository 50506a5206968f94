package fix

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func TestReader_Stream(t *testing.T) {
	require := require.New(t)

	var stream bytes.Buffer
	stream.Write(wire(logonFIX44))
	stream.Write(wire(heartbeat))
	stream.Write(wire(logonFIX50))

	// deliver one byte per Read to exercise partial frames
	r := NewReaderSize(iotest.OneByteReader(&stream), 16)

	msg, err := r.ReadMessage()
	require.NoError(err)
	require.Equal(FIX44, msg.Version())
	require.True(msg.IsMsgType(MsgTypeLogon))

	msg, err = r.ReadMessage()
	require.NoError(err)
	require.True(msg.IsMsgType(MsgTypeHeartbeat))

	msg, err = r.ReadMessage()
	require.NoError(err)
	require.Equal(FIX50, msg.Version())

	_, err = r.ReadMessage()
	require.ErrorIs(err, io.EOF)
}

func TestReader_ResyncAfterCorruptFrame(t *testing.T) {
	require := require.New(t)

	var stream bytes.Buffer
	stream.Write(wire("8=FIX.4.4|9=20|35=0|34=2|49=A|56=B|10=127|")) // bad checksum
	stream.Write([]byte("garbage"))
	stream.Write(wire(heartbeat))

	r := NewReader(&stream)

	_, err := r.ReadMessage()
	require.ErrorIs(err, ErrChecksumMismatch)

	_, err = r.ReadMessage()
	require.ErrorIs(err, ErrInvalidFraming)

	msg, err := r.ReadMessage()
	require.NoError(err)
	require.True(msg.IsMsgType(MsgTypeHeartbeat))
	require.Zero(r.Buffered())

	_, err = r.ReadMessage()
	require.ErrorIs(err, io.EOF)
}

func TestReader_TruncatedStream(t *testing.T) {
	full := wire(heartbeat)
	r := NewReader(bytes.NewReader(full[:len(full)-3]))

	_, err := r.ReadMessage()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = r.ReadMessage()
	require.ErrorIs(t, err, io.EOF)
}

func TestReader_ReadError(t *testing.T) {
	readErr := errors.New("connection reset")
	r := NewReader(iotest.ErrReader(readErr))

	_, err := r.ReadMessage()
	require.ErrorIs(t, err, readErr)
}

func TestReader_LargeFrame(t *testing.T) {
	require := require.New(t)

	text := bytes.Repeat([]byte("a"), 10_000)
	frame, err := Build(FIX44, []Field{NewField(TagMsgType, "B"), {Tag: TagText, Value: text}})
	require.NoError(err)

	r := NewReaderSize(bytes.NewReader(frame), 64)
	msg, err := r.ReadMessage()
	require.NoError(err)

	got, ok := msg.Get(TagText)
	require.True(ok)
	require.Len(got, len(text))
}
