// Package store provides message stores that persist sent FIX messages so a session can
// answer Resend Requests.
//
// Memory keeps frames in process memory and is lost on restart. Badger persists frames and
// the session sequence numbers on disk.
package store

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-fix/internal/util"
	"github.com/arloliu/go-fix/session"
)

// Compile-time check: Memory implements the session store interfaces.
var (
	_ session.MessageStore    = (*Memory)(nil)
	_ session.ResettableStore = (*Memory)(nil)
)

// Memory is an in-memory message store keyed by MsgSeqNum. It is safe for concurrent use.
type Memory struct {
	msgs   *xsync.MapOf[uint64, []byte]
	maxSeq atomic.Uint64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{msgs: xsync.NewMapOf[uint64, []byte]()}
}

// Store saves a copy of msg under seq, replacing any previous frame.
func (m *Memory) Store(seq uint64, msg []byte) error {
	m.msgs.Store(seq, util.CloneSlice(msg, 0))

	for {
		cur := m.maxSeq.Load()
		if seq <= cur || m.maxSeq.CompareAndSwap(cur, seq) {
			return nil
		}
	}
}

// Retrieve returns the stored frames with sequence numbers in [begin, end], in order.
// Missing sequence numbers are skipped.
func (m *Memory) Retrieve(begin uint64, end uint64) ([][]byte, error) {
	end = min(end, m.maxSeq.Load())
	if begin > end {
		return nil, nil
	}

	var out [][]byte
	for seq := begin; seq <= end; seq++ {
		if msg, ok := m.msgs.Load(seq); ok {
			out = append(out, msg)
		}
	}

	return out, nil
}

// Len returns the number of stored frames.
func (m *Memory) Len() int {
	return m.msgs.Size()
}

// Reset removes every stored frame, e.g. after a sequence number reset.
func (m *Memory) Reset() error {
	m.msgs.Clear()
	m.maxSeq.Store(0)

	return nil
}
