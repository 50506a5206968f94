package session

import (
	"fmt"
	"time"
)

func (s *Session) tick(now time.Time) Action {
	switch s.state {
	case LogonSent:
		if now.Sub(s.stateSince) >= s.cfg.logonTimeout {
			return s.fatal(now, ErrLogonTimeout, "")
		}
	case LogoutSent:
		if now.Sub(s.stateSince) >= s.cfg.logoutTimeout {
			return s.fatal(now, ErrLogoutTimeout, "")
		}
	case Active:
		return s.tickActive(now)
	}

	return noneAction()
}

// tickActive escalates inactivity: Heartbeat after heartbeatInterval without outbound traffic,
// Test Request after heartbeatInterval+testRequestGrace without inbound traffic, and failure
// when the Test Request stays unanswered for timeoutGrace. A Resend Request that made no
// progress for resendTimeout is sent again.
func (s *Session) tickActive(now time.Time) Action {
	act := noneAction()

	if s.testReqID != "" {
		switch {
		case s.lastRecv.After(s.testReqSentAt):
			s.testReqID = ""
		case now.Sub(s.testReqSentAt) >= s.cfg.timeoutGrace:
			return s.fatal(now, fmt.Errorf("%w: no response to TestReqID %s", ErrHeartbeatTimeout, s.testReqID), "")
		}
	}

	if s.testReqID == "" && now.Sub(s.lastRecv) >= s.heartbeatInterval+s.cfg.testRequestGrace {
		out, err := s.composeTestRequest(now)
		if err != nil {
			return s.fatal(now, err, "")
		}
		s.logger.Warn("counterparty silent, test request sent", "test_req_id", s.testReqID, "last_recv", s.lastRecv)
		act.merge(adminAction(out))
	}

	act.merge(s.reissueResend(now))
	if act.Kind == ActionFatal {
		return act
	}

	if now.Sub(s.lastSent) >= s.heartbeatInterval {
		out, err := s.composeHeartbeat(now, nil)
		if err != nil {
			return s.fatal(now, err, "")
		}
		act.merge(adminAction(out))
	}

	return act
}
