// Package metrics exports session metrics to Prometheus.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/go-fix/session"
)

const namespace = "fix"

// SessionCollector is a prometheus.Collector over the atomic counters of one session.
//
// Values are read at scrape time, so the collector may be registered once and scraped from
// any goroutine while the session runs.
type SessionCollector struct {
	collectors []prometheus.Collector
}

// Compile-time check: SessionCollector implements prometheus.Collector.
var _ prometheus.Collector = (*SessionCollector)(nil)

// NewSessionCollector creates a collector for m. Every metric carries the session_id label.
func NewSessionCollector(sessionID string, m *session.Metrics) *SessionCollector {
	labels := prometheus.Labels{"session_id": sessionID}

	counter := func(name string, help string, v *atomic.Uint64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "session",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}, func() float64 { return float64(v.Load()) })
	}
	gauge := func(name string, help string, f func() float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "session",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}, f)
	}

	return &SessionCollector{
		collectors: []prometheus.Collector{
			counter("messages_sent_total", "Sequenced messages sent.", &m.MsgSendCount),
			counter("messages_received_total", "Well-formed messages received.", &m.MsgRecvCount),
			counter("app_messages_delivered_total", "Application messages delivered.", &m.AppMsgDeliverCount),
			counter("heartbeats_sent_total", "Heartbeats sent.", &m.HeartbeatSendCount),
			counter("test_requests_sent_total", "Test Requests sent.", &m.TestRequestSendCount),
			counter("rejects_sent_total", "Session-level Rejects sent.", &m.RejectSendCount),
			counter("gaps_total", "Sequence gaps detected.", &m.GapCount),
			counter("resend_requests_sent_total", "Resend Requests sent.", &m.ResendRequestSendCount),
			counter("resend_served_total", "Messages replayed or gap-filled for the counterparty.", &m.ResendServeCount),
			counter("seq_resets_total", "Sequence number discontinuities.", &m.SeqResetCount),
			counter("duplicates_total", "Duplicate messages ignored.", &m.DuplicateCount),
			counter("malformed_total", "Malformed messages ignored.", &m.MalformedCount),
			counter("dropped_total", "Out-of-sequence messages dropped on a full queue.", &m.DroppedCount),
			counter("fatal_total", "Fatal session failures.", &m.FatalCount),
			gauge("pending_messages", "Out-of-sequence messages waiting for backfill.",
				func() float64 { return float64(m.PendingGauge.Load()) }),
			gauge("next_outgoing_seq", "Next outgoing MsgSeqNum.",
				func() float64 { return float64(m.NextOutgoingSeqGauge.Load()) }),
			gauge("expected_incoming_seq", "Next expected incoming MsgSeqNum.",
				func() float64 { return float64(m.ExpectedIncomingSeqGauge.Load()) }),
			gauge("state", "Session state: 0 disconnected, 1 logon-sent, 2 active, 3 logout-sent.",
				func() float64 { return float64(m.StateGauge.Load()) }),
		},
	}
}

// Describe implements prometheus.Collector.
func (c *SessionCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, col := range c.collectors {
		col.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (c *SessionCollector) Collect(ch chan<- prometheus.Metric) {
	for _, col := range c.collectors {
		col.Collect(ch)
	}
}

// Register registers a collector for sess with reg.
func Register(reg prometheus.Registerer, sess *session.Session) (*SessionCollector, error) {
	c := NewSessionCollector(sess.ID().String(), sess.Metrics())
	if err := reg.Register(c); err != nil {
		return nil, err
	}

	return c, nil
}
