package console

import (
	"errors"
	"io"
	"net"
	"time"
)

const recvBufSize = 4096

// streamReader performs time-boxed, best-effort reads from a console socket.
// It interprets nothing; it only accumulates whatever bytes arrive within the
// wait window.
type streamReader struct {
	conn    net.Conn
	bufSize int
}

func newStreamReader(conn net.Conn) *streamReader {
	return &streamReader{conn: conn, bufSize: recvBufSize}
}

// collect reads from the socket for up to wait, returning whatever arrived
// (possibly nothing). An idle peer is not an error. A short read after at
// least one successful poll ends the collection early, since it usually marks
// the end of the current output burst. A peer close is reported via the
// closed flag rather than an error; the session layer decides whether that
// is expected.
func (r *streamReader) collect(wait time.Duration) (data []byte, closed bool, err error) {
	buf := make([]byte, r.bufSize)
	deadline := time.Now().Add(wait)

	for {
		_ = r.conn.SetReadDeadline(deadline)

		n, rerr := r.conn.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
		}
		if rerr != nil {
			var nerr net.Error
			if errors.As(rerr, &nerr) && nerr.Timeout() {
				return data, false, nil
			}
			if errors.Is(rerr, io.EOF) || errors.Is(rerr, net.ErrClosed) {
				return data, true, nil
			}
			return data, false, rerr
		}
		if n < r.bufSize {
			return data, false, nil
		}
		if !time.Now().Before(deadline) {
			return data, false, nil
		}
	}
}
