package session

import (
	"github.com/tidwall/btree"

	"github.com/arloliu/go-fix/fix"
)

// pendingQueue holds messages received ahead of the expected sequence number, ordered by MsgSeqNum.
//
// A nil message is a placeholder for a sequence number that was already processed out of order,
// e.g. a Logon or Resend Request that arrived above a gap.
type pendingQueue struct {
	items *btree.Map[uint64, *fix.Message]
	limit int
}

func newPendingQueue(limit int) *pendingQueue {
	return &pendingQueue{
		items: btree.NewMap[uint64, *fix.Message](32),
		limit: limit,
	}
}

func (q *pendingQueue) Len() int {
	return q.items.Len()
}

func (q *pendingQueue) Full() bool {
	return q.items.Len() >= q.limit
}

func (q *pendingQueue) Has(seq uint64) bool {
	_, ok := q.items.Get(seq)
	return ok
}

// Add queues msg under seq. A message already queued under seq is kept.
func (q *pendingQueue) Add(seq uint64, msg *fix.Message) {
	if q.Has(seq) {
		return
	}
	q.items.Set(seq, msg)
}

// Min returns the lowest queued sequence number.
func (q *pendingQueue) Min() (uint64, *fix.Message, bool) {
	return q.items.Min()
}

func (q *pendingQueue) Delete(seq uint64) {
	q.items.Delete(seq)
}

// DeleteBelow removes every entry with a sequence number below seq and returns how many were removed.
func (q *pendingQueue) DeleteBelow(seq uint64) int {
	n := 0
	for {
		key, _, ok := q.items.Min()
		if !ok || key >= seq {
			return n
		}
		q.items.Delete(key)
		n++
	}
}

func (q *pendingQueue) Clear() {
	q.items = btree.NewMap[uint64, *fix.Message](32)
}
