package player

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/tubecli/tube/log"
)

const (
	connectBackoffStart = 25 * time.Millisecond
	connectBackoffMax   = 250 * time.Millisecond
	writeDeadline       = 5 * time.Second

	// maxLineSize caps a single inbound message.
	maxLineSize = 1 << 20
)

// Transport is a duplex connection to the player's IPC endpoint.
type Transport struct {
	conn      net.Conn
	closeOnce sync.Once
	closeErr  error
}

// NewTransport wraps an established connection.
func NewTransport(conn net.Conn) *Transport {
	return &Transport{conn: conn}
}

// Connect dials the endpoint, retrying with backoff until it accepts a
// connection, timeout elapses, or ctx is cancelled. The player creates its
// endpoint asynchronously after start, so early failures are expected.
func Connect(ctx context.Context, endpoint string, timeout time.Duration) (*Transport, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entry := log.With(log.Fields{"endpoint": endpoint})
	backoff := connectBackoffStart

	for attempt := 1; ; attempt++ {
		conn, err := dialEndpoint(ctx, endpoint)
		if err == nil {
			entry.Debugf("connected after %d attempt(s)", attempt)
			return NewTransport(conn), nil
		}
		entry.Tracef("connect attempt %d: %v", attempt, err)

		select {
		case <-ctx.Done():
			cause := ctx.Err()
			if errors.Is(cause, context.DeadlineExceeded) {
				cause = err
			}
			return nil, &ConnectError{Endpoint: endpoint, Timeout: timeout, Err: cause}
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > connectBackoffMax {
			backoff = connectBackoffMax
		}
	}
}

// Split returns the independently owned read and write halves.
func (t *Transport) Split() (*LineReader, *LineWriter) {
	return newLineReader(t.conn, maxLineSize), &LineWriter{conn: t.conn}
}

// Close closes the underlying connection, unblocking both halves.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}

// LineReader reads newline-terminated messages. Partial lines are buffered
// until their terminator arrives; a line longer than the cap is a
// *ProtocolError and ends the stream.
type LineReader struct {
	s     *bufio.Scanner
	limit int
}

func newLineReader(r io.Reader, limit int) *LineReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, min(4096, limit)), limit)
	s.Split(scanTerminated)
	return &LineReader{s: s, limit: limit}
}

// scanTerminated is bufio.ScanLines without the final unterminated line.
func scanTerminated(data []byte, atEOF bool) (int, []byte, error) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i], nil
	}
	return 0, nil, nil
}

// ReadLine returns the next non-empty line without its terminator.
func (lr *LineReader) ReadLine() ([]byte, error) {
	for lr.s.Scan() {
		line := bytes.TrimSpace(lr.s.Bytes())
		if len(line) > 0 {
			return bytes.Clone(line), nil
		}
	}

	switch err := lr.s.Err(); {
	case errors.Is(err, bufio.ErrTooLong):
		return nil, &ProtocolError{Reason: fmt.Sprintf("line exceeds %d bytes", lr.limit)}
	case err != nil:
		return nil, err
	default:
		return nil, io.EOF
	}
}

// LineWriter writes newline-terminated messages. It is safe for concurrent use.
type LineWriter struct {
	mu   sync.Mutex
	conn net.Conn
}

// WriteLine writes line followed by a single newline as one write.
func (lw *LineWriter) WriteLine(line []byte) error {
	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')

	lw.mu.Lock()
	defer lw.mu.Unlock()

	if err := lw.conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		return err
	}
	_, err := lw.conn.Write(buf)
	return err
}
