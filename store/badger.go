package store

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"github.com/arloliu/go-fix/logger"
	"github.com/arloliu/go-fix/session"
)

// Compile-time check: Badger implements the session store interfaces.
var (
	_ session.MessageStore    = (*Badger)(nil)
	_ session.SeqNumStore     = (*Badger)(nil)
	_ session.ResettableStore = (*Badger)(nil)
)

var (
	msgPrefix           = []byte("msg/")
	nextOutgoingKey     = []byte("seq/next_outgoing")
	expectedIncomingKey = []byte("seq/expected_incoming")
)

// ErrNoSeqNums is returned by LoadSeqNums when no sequence numbers were saved.
var ErrNoSeqNums = session.ErrNoSeqNums

// Badger is a disk-backed message store using BadgerDB. Besides the sent frames it keeps
// the session sequence numbers so a restarted process can resume the session.
//
// Frames are keyed by the big-endian MsgSeqNum, so a key range scan returns them in order.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens or creates a store in the directory path. An empty path opens an
// in-memory database. l receives badger's internal log output; nil disables it.
func OpenBadger(path string, l logger.Logger) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	if l != nil {
		opts = opts.WithLogger(&badgerLogger{l: l.With("component", "badger")})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}

	return &Badger{db: db}, nil
}

// Store saves msg under seq, replacing any previous frame.
func (b *Badger) Store(seq uint64, msg []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(msgKey(seq), msg)
	})
}

// Retrieve returns the stored frames with sequence numbers in [begin, end], in order.
// Missing sequence numbers are skipped.
func (b *Badger) Retrieve(begin uint64, end uint64) ([][]byte, error) {
	if begin > end {
		return nil, nil
	}

	var out [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 100, Prefix: msgPrefix})
		defer it.Close()

		for it.Seek(msgKey(begin)); it.ValidForPrefix(msgPrefix); it.Next() {
			item := it.Item()
			if seqOf(item.Key()) > end {
				break
			}

			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, val)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve %d..%d: %w", begin, end, err)
	}

	return out, nil
}

// SaveSeqNums persists the next outgoing and expected incoming sequence numbers.
func (b *Badger) SaveSeqNums(nextOutgoing uint64, expectedIncoming uint64) error {
	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(nextOutgoingKey, binary.BigEndian.AppendUint64(nil, nextOutgoing)); err != nil {
			return err
		}

		return txn.Set(expectedIncomingKey, binary.BigEndian.AppendUint64(nil, expectedIncoming))
	})
}

// LoadSeqNums returns the sequence numbers saved by SaveSeqNums, or ErrNoSeqNums.
func (b *Badger) LoadSeqNums() (nextOutgoing uint64, expectedIncoming uint64, err error) {
	err = b.db.View(func(txn *badger.Txn) error {
		var err error
		if nextOutgoing, err = getUint64(txn, nextOutgoingKey); err != nil {
			return err
		}
		expectedIncoming, err = getUint64(txn, expectedIncomingKey)

		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, 0, ErrNoSeqNums
	}

	return nextOutgoing, expectedIncoming, err
}

// Reset removes every stored frame and the saved sequence numbers.
func (b *Badger) Reset() error {
	return b.db.DropAll()
}

// Close closes the database.
func (b *Badger) Close() error {
	return b.db.Close()
}

func msgKey(seq uint64) []byte {
	key := make([]byte, 0, len(msgPrefix)+8)
	key = append(key, msgPrefix...)

	return binary.BigEndian.AppendUint64(key, seq)
}

func seqOf(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(msgPrefix):])
}

func getUint64(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if err != nil {
		return 0, err
	}

	var n uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("corrupt value for key %s", key)
		}
		n = binary.BigEndian.Uint64(val)

		return nil
	})

	return n, err
}

// badgerLogger adapts logger.Logger to badger.Logger.
type badgerLogger struct {
	l logger.Logger
}

func (b *badgerLogger) Errorf(format string, args ...any) {
	b.l.Error(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Warningf(format string, args ...any) {
	b.l.Warn(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Infof(format string, args ...any) {
	b.l.Debug(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Debugf(format string, args ...any) {
	b.l.Debug(fmt.Sprintf(format, args...))
}
