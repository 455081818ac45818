/*
Package ircdebug contains helper functions that are useful while writing an IRC client.
*/
package ircdebug

import (
	"io"
	"sync"
)

// WriteTo returns a new io.ReadWriteCloser that copies all reads/writes for rwc to w.
// Reads and Writes are prefixed with inPrefix and outPrefix respectively.
// This is mainly useful while developing an IRC client like a bot,
// e.g. for writing to os.Stdout or a file.
//
// The read and write sides usually run on different goroutines, so the
// debug copies are serialized to keep lines from interleaving mid-write.
func WriteTo(w io.Writer, rwc io.ReadWriteCloser, outPrefix string, inPrefix string) io.ReadWriteCloser {
	shared := &lockedWriter{w: w}
	return &debugConn{
		ReadWriteCloser: rwc,
		r:               io.TeeReader(rwc, &writePrefixer{w: shared, prefix: inPrefix}),
		w:               io.MultiWriter(rwc, &writePrefixer{w: shared, prefix: outPrefix}),
	}
}

type debugConn struct {
	io.ReadWriteCloser
	r io.Reader
	w io.Writer
}

func (dc *debugConn) Read(p []byte) (int, error) {
	return dc.r.Read(p)
}
func (dc *debugConn) Write(p []byte) (int, error) {
	return dc.w.Write(p)
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

type writePrefixer struct {
	w      io.Writer
	prefix string
}

func (wp *writePrefixer) Write(p []byte) (n int, err error) {
	n, err = wp.w.Write(append([]byte(wp.prefix), p...))

	// since this writePrefixer is only ever used for a MultiWriter, we need to lie about how many bytes
	// were written so that the MultiWriter doesn't have an error for different byte counts on each of its writers.
	return n - len(wp.prefix), err
}
