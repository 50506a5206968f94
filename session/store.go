package session

// MessageStore persists outgoing messages so Resend Requests can be served.
//
// Implementations must copy msg in Store; the session reuses nothing after the call returns,
// but callers may. Retrieve returns the stored frames whose sequence numbers fall in
// [begin, end], in ascending sequence order; missing sequence numbers are simply absent.
type MessageStore interface {
	// Store saves the framed message sent with sequence number seq.
	Store(seq uint64, msg []byte) error
	// Retrieve returns the frames stored for sequence numbers begin through end inclusive.
	Retrieve(begin uint64, end uint64) ([][]byte, error)
}

// SeqNumStore is implemented by message stores that also persist the session sequence numbers,
// so a restarted process can resume the session. See Session.RestoreSeqNums and Session.SaveSeqNums.
type SeqNumStore interface {
	// SaveSeqNums persists the next outgoing and expected incoming sequence numbers.
	SaveSeqNums(nextOutgoing uint64, expectedIncoming uint64) error
	// LoadSeqNums returns the saved sequence numbers, or ErrNoSeqNums when none were saved.
	LoadSeqNums() (nextOutgoing uint64, expectedIncoming uint64, err error)
}

// ResettableStore is implemented by message stores that can drop every stored message.
// The session resets such a store when its outgoing sequence number restarts at 1.
type ResettableStore interface {
	Reset() error
}
