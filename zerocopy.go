package ircwire

import (
	"bytes"
	"io"
)

// ZeroCopyReader reads IRC lines into a single reusable buffer and
// parses each one in place, so a steady-state read loop performs no
// per-message allocation.
//
// Next returns a *MessageView whose fields alias the internal buffer.
// The view is valid only until the next call to Next; promote it with
// MessageView.Promote to keep a message longer. The buffer compacts
// before refilling, so every line up to the read budget fits.
//
// For one-message-per-call reading with owned results, use Conn instead.
type ZeroCopyReader struct {
	r          io.Reader
	buf        []byte
	start, end int
	view       MessageView
}

// NewZeroCopyReader returns a reader framing lines from r.
func NewZeroCopyReader(r io.Reader) *ZeroCopyReader {
	return &ZeroCopyReader{
		r:   r,
		buf: make([]byte, maxLineLen),
	}
}

// Next blocks until a complete line is available and returns its parsed
// view. Empty lines are skipped.
//
// Oversize lines are discarded through their terminator and reported as
// ErrOversizeLine; parse failures are reported as *ParseError. Both
// leave the stream usable. io.EOF is reported as ErrConnClosed.
func (z *ZeroCopyReader) Next() (*MessageView, error) {
	for {
		line, err := z.nextLine()
		if err != nil {
			return nil, err
		}
		if len(trimLineEnding(line)) == 0 {
			continue
		}
		if overBudget(line) {
			return nil, ErrOversizeLine
		}
		if err := ParseView(line, &z.view); err != nil {
			return nil, err
		}
		return &z.view, nil
	}
}

// nextLine returns the next buffered line including its terminator,
// refilling from the stream as needed.
func (z *ZeroCopyReader) nextLine() ([]byte, error) {
	for {
		if i := bytes.IndexByte(z.buf[z.start:z.end], '\n'); i >= 0 {
			line := z.buf[z.start : z.start+i+1]
			z.start += i + 1
			return line, nil
		}

		// no full line buffered; compact so the next line has the whole
		// budget available
		if z.start > 0 {
			z.end = copy(z.buf, z.buf[z.start:z.end])
			z.start = 0
		}
		if z.end == len(z.buf) {
			return nil, z.discardOversize()
		}

		n, err := z.r.Read(z.buf[z.end:])
		z.end += n
		if err == io.EOF {
			if z.start == z.end {
				return nil, ErrConnClosed
			}
			if bytes.IndexByte(z.buf[z.start:z.end], '\n') < 0 {
				// final line with no terminator
				line := z.buf[z.start:z.end]
				z.start = z.end
				return line, nil
			}
			continue
		}
		if err != nil {
			return nil, err
		}
	}
}

// discardOversize drops the buffered bytes of a line that exceeded the
// budget, then keeps reading until its terminator passes by.
func (z *ZeroCopyReader) discardOversize() error {
	z.start, z.end = 0, 0
	for {
		n, err := z.r.Read(z.buf)
		if i := bytes.IndexByte(z.buf[:n], '\n'); i >= 0 {
			// keep whatever arrived after the terminator
			z.end = copy(z.buf, z.buf[i+1:n])
			return ErrOversizeLine
		}
		if err != nil {
			if err == io.EOF {
				return ErrOversizeLine
			}
			return err
		}
	}
}
