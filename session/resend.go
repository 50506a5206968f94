package session

import (
	"fmt"
	"time"

	"github.com/arloliu/go-fix/fix"
)

// serveResend answers a Resend Request for [begin, end]; end 0 means "everything sent so far".
//
// Application messages are replayed from the store with PossDupFlag (43=Y) and OrigSendingTime (122).
// Administrative messages and sequence numbers missing from the store are replaced by
// Sequence Reset gap fills. Replayed frames reuse their original sequence numbers, so the
// outgoing sequence number does not change.
func (s *Session) serveResend(begin uint64, end uint64, now time.Time) ([][]byte, error) {
	last := s.nextOut - 1
	if end == 0 || end > last {
		end = last
	}
	if begin > end {
		s.logger.Warn("resend request beyond last sent message", "begin", begin, "last_sent", last)
		return nil, nil
	}

	var stored [][]byte
	if s.cfg.store != nil {
		var err error
		stored, err = s.cfg.store.Retrieve(begin, end)
		if err != nil {
			return nil, fmt.Errorf("retrieve messages %d..%d: %w", begin, end, err)
		}
	}

	var out [][]byte
	cursor := begin
	var msg fix.Message
	for _, raw := range stored {
		if _, err := fix.ParseMessage(&msg, raw); err != nil {
			s.logger.Warn("skip unreadable stored message", "error", err)
			continue
		}
		seq, err := msg.SeqNum()
		if err != nil || seq < cursor || seq > end {
			continue
		}
		if msg.IsAdmin() {
			continue
		}

		if seq > cursor {
			fill, err := s.gapFill(cursor, seq, now)
			if err != nil {
				return nil, err
			}
			out = append(out, fill)
		}

		replay, err := s.replay(&msg, seq, now)
		if err != nil {
			return nil, err
		}
		out = append(out, replay)
		cursor = seq + 1
	}

	if cursor <= end {
		fill, err := s.gapFill(cursor, end+1, now)
		if err != nil {
			return nil, err
		}
		out = append(out, fill)
	}

	if len(out) > 0 {
		s.lastSent = now
	}
	s.metrics.addResendServeCount(len(out))
	s.logger.Info("resend request served", "begin", begin, "end", end, "messages", len(out))

	return out, nil
}

// replay re-composes a stored application message as a possible duplicate.
func (s *Session) replay(msg *fix.Message, seq uint64, now time.Time) ([]byte, error) {
	origSendingTime, _ := msg.Get(fix.TagSendingTime)

	body := make([]fix.Field, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		if _, ok := headerTags[f.Tag]; ok {
			continue
		}
		body = append(body, f)
	}

	return s.frame(string(msg.MsgType()), seq, now, true, origSendingTime, body)
}
