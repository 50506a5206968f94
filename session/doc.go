// Package session implements the FIX session layer: logon and logout handshakes, sequence
// number bookkeeping, gap detection and recovery, heartbeats, and resend service.
//
// A Session is a pure state machine. It never reads from or writes to the network and holds
// no timers; the caller owns the transport and the event loop:
//
//	sess, _ := session.New(session.ID{SenderCompID: "ALICE", TargetCompID: "BROKER", Version: fix.FIX44},
//		session.WithMessageStore(store.NewMemory()))
//
//	logon, _ := sess.Logon()
//	conn.Write(logon)
//
//	for {
//		msg, err := reader.ReadMessage()
//		...
//		act := sess.OnMessage(msg)
//		for _, out := range act.Outbound {
//			conn.Write(out)
//		}
//		for _, app := range act.Deliver {
//			handle(app)
//		}
//		if act.Kind == session.ActionFatal || act.Kind == session.ActionDisconnect {
//			conn.Close()
//		}
//	}
//
// Tick must be called periodically, e.g. once per second, to drive heartbeats and timeouts.
//
// States:
//
//	Disconnected -> LogonSent -> Active -> LogoutSent -> Disconnected
//
// Incoming messages whose MsgSeqNum is above the expected number are queued, bounded by
// WithMaxPending, and a Resend Request is emitted for the missing range. Messages below the
// expected number are ignored as duplicates. Sequence Reset moves the expected number directly.
package session
