package fix

import (
	"errors"
	"io"
)

const (
	defaultReadBufferSize = 4096
	// maxReadBufferSize holds the largest frame the parser accepts plus its header and trailer.
	maxReadBufferSize = MaxBodyLength + 64
)

// Reader reads FIX messages from a byte stream.
//
// It buffers partial frames until they are complete and, after a permanent parse failure,
// discards input up to the next frame boundary so the following call resumes on a clean frame.
//
// The message returned by ReadMessage borrows the Reader's buffer and is valid only until the
// next ReadMessage call. Use Message.Clone to keep it longer.
//
// Reader is NOT goroutine-safe.
type Reader struct {
	r     io.Reader
	buf   []byte
	start int
	end   int
	err   error
	msg   Message
}

// NewReader creates a Reader that reads from r.
func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, defaultReadBufferSize)
}

// NewReaderSize creates a Reader with an initial buffer of size bytes.
// The buffer grows as needed for large frames.
func NewReaderSize(r io.Reader, size int) *Reader {
	if size < 16 {
		size = 16
	}

	return &Reader{r: r, buf: make([]byte, size)}
}

// Buffered returns the number of bytes read from the underlying reader but not yet consumed.
func (r *Reader) Buffered() int {
	return r.end - r.start
}

// ReadMessage returns the next message in the stream.
//
// Parse failures are returned as *ParseError after the offending bytes have been skipped,
// so the caller may log the error and call ReadMessage again. At the end of the stream it
// returns io.EOF, or io.ErrUnexpectedEOF when a partial frame is left over.
func (r *Reader) ReadMessage() (*Message, error) {
	for {
		if r.start < r.end {
			n, err := ParseMessage(&r.msg, r.buf[r.start:r.end])
			if err == nil {
				r.start += n
				return &r.msg, nil
			}

			if !errors.Is(err, ErrIncomplete) {
				skip := 1
				var perr *ParseError
				if errors.As(err, &perr) && perr.Skip > 0 {
					skip = perr.Skip
				}
				r.start += skip

				return nil, err
			}
		}

		if r.err != nil {
			if r.start < r.end && errors.Is(r.err, io.EOF) {
				r.start = r.end
				return nil, io.ErrUnexpectedEOF
			}
			return nil, r.err
		}

		if err := r.fill(); err != nil {
			return nil, err
		}
	}
}

func (r *Reader) fill() error {
	if r.start > 0 {
		copy(r.buf, r.buf[r.start:r.end])
		r.end -= r.start
		r.start = 0
	}

	if r.end == len(r.buf) {
		if len(r.buf) >= maxReadBufferSize {
			// a frame this large can never parse; drop it and resynchronize
			r.start = r.end
			return &ParseError{Kind: ErrInvalidFraming, Detail: "frame exceeds maximum size"}
		}
		grown := make([]byte, min(2*len(r.buf), maxReadBufferSize))
		copy(grown, r.buf[:r.end])
		r.buf = grown
	}

	n, err := r.r.Read(r.buf[r.end:])
	r.end += n
	if err != nil {
		r.err = err
	}

	return nil
}
