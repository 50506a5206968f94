package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-fix/fix"
	"github.com/arloliu/go-fix/session"
)

func TestSessionCollector(t *testing.T) {
	require := require.New(t)

	sess, err := session.New(session.ID{SenderCompID: "ALICE", TargetCompID: "BROKER", Version: fix.FIX44})
	require.NoError(err)

	reg := prometheus.NewPedanticRegistry()
	c, err := Register(reg, sess)
	require.NoError(err)
	require.Equal(18, testutil.CollectAndCount(c))

	_, err = sess.Logon()
	require.NoError(err)

	expected := `
# HELP fix_session_messages_sent_total Sequenced messages sent.
# TYPE fix_session_messages_sent_total counter
fix_session_messages_sent_total{session_id="FIX.4.4:ALICE->BROKER"} 1
# HELP fix_session_next_outgoing_seq Next outgoing MsgSeqNum.
# TYPE fix_session_next_outgoing_seq gauge
fix_session_next_outgoing_seq{session_id="FIX.4.4:ALICE->BROKER"} 2
# HELP fix_session_state Session state: 0 disconnected, 1 logon-sent, 2 active, 3 logout-sent.
# TYPE fix_session_state gauge
fix_session_state{session_id="FIX.4.4:ALICE->BROKER"} 1
`
	require.NoError(testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"fix_session_messages_sent_total", "fix_session_next_outgoing_seq", "fix_session_state"))

	// a second session registers alongside under its own label
	other, err := session.New(session.ID{SenderCompID: "ALICE", TargetCompID: "OTHER", Version: fix.FIX50})
	require.NoError(err)
	_, err = Register(reg, other)
	require.NoError(err)

	_, err = Register(reg, sess)
	require.Error(err)
}
