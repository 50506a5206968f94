package fix

import (
	"errors"
	"testing"
)

// FuzzParse fuzzes the parser with arbitrary buffers.
//
// The invariants are: Parse never panics, a successful parse consumes a whole frame that
// re-parses identically, and every permanent failure reports a positive Skip.
func FuzzParse(f *testing.F) {
	f.Add(wire(logonFIX44))
	f.Add(wire(logonFIX50))
	f.Add(wire(heartbeat))
	f.Add(wire("8=FIX.4.4|9=20|35=0|34=2|49=A|56=B|10=127|"))
	f.Add(wire("8=FIX.4.4|9=10|35=0|34=2|49=A|56=B|10=126|"))
	f.Add(wire("8=FIX.4.4|9=5|"))
	f.Add([]byte("8=FIX"))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		msg, n, err := Parse(data)
		if err != nil {
			if errors.Is(err, ErrIncomplete) {
				return
			}

			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("unexpected error type %T: %v", err, err)
			}
			if perr.Skip <= 0 || perr.Skip > len(data) {
				t.Fatalf("invalid skip %d for %d bytes", perr.Skip, len(data))
			}

			return
		}

		if n <= 0 || n > len(data) {
			t.Fatalf("invalid consumed count %d", n)
		}

		again, m, err := Parse(msg.Raw)
		if err != nil || m != n || len(again.Fields) != len(msg.Fields) {
			t.Fatalf("re-parse mismatch: %v", err)
		}
	})
}

// FuzzBuildParse checks that any field a builder accepts round-trips through the parser.
func FuzzBuildParse(f *testing.F) {
	f.Add(35, []byte("D"), 58, []byte("hello"))
	f.Add(1, []byte{}, 9999, []byte{0xFF, '='})

	f.Fuzz(func(t *testing.T, tag1 int, value1 []byte, tag2 int, value2 []byte) {
		out, err := Build(FIX44, []Field{{Tag: tag1, Value: value1}, {Tag: tag2, Value: value2}})
		if err != nil {
			return
		}

		msg, n, err := Parse(out)
		if err != nil {
			t.Fatalf("parse built message: %v", err)
		}
		if n != len(out) || len(msg.Fields) != 2 {
			t.Fatalf("unexpected parse result: n=%d fields=%d", n, len(msg.Fields))
		}
		if string(msg.Fields[0].Value) != string(value1) || string(msg.Fields[1].Value) != string(value2) {
			t.Fatal("values differ after round trip")
		}
	})
}
