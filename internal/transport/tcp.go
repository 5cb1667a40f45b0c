package transport

import (
	"net"
	"os"
	"sync"
	"time"

	"github.com/sanderkohnstamm/mavshark/internal/util"
)

const dialTimeout = 5 * time.Second

// tcpConnectLink dials a remote endpoint and can re-dial it once after a
// read error.
type tcpConnectLink struct {
	ioState
	addr string

	mu       sync.Mutex
	conn     net.Conn
	deadline time.Time
}

func dialTCP(spec Spec) (*tcpConnectLink, error) {
	conn, err := net.DialTimeout("tcp", spec.addr(), dialTimeout)
	if err != nil {
		return nil, err
	}
	return &tcpConnectLink{addr: spec.addr(), conn: conn}, nil
}

func (l *tcpConnectLink) current() net.Conn {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn
}

func (l *tcpConnectLink) Read(p []byte) (int, error) {
	conn := l.current()
	if conn == nil {
		l.noteReadErr(ErrClosed)
		return 0, ErrClosed
	}
	conn.SetReadDeadline(l.readDeadline())
	n, err := conn.Read(p)
	if err != nil {
		l.noteReadErr(err)
	}
	return n, err
}

func (l *tcpConnectLink) Write(p []byte) (int, error) {
	conn := l.current()
	if conn == nil {
		return 0, ErrClosed
	}
	return conn.Write(p)
}

func (l *tcpConnectLink) setDeadline(t time.Time) {
	l.mu.Lock()
	l.deadline = t
	l.mu.Unlock()
}

func (l *tcpConnectLink) readDeadline() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deadline
}

func (l *tcpConnectLink) reconnect() error {
	util.LogWarnf("TCP link to %s failed, reconnecting", l.addr)
	conn, err := net.DialTimeout("tcp", l.addr, dialTimeout)
	if err != nil {
		return err
	}
	l.mu.Lock()
	if l.conn != nil {
		l.conn.Close()
	}
	l.conn = conn
	l.mu.Unlock()
	util.LogInfof("TCP link to %s re-established", l.addr)
	return nil
}

func (l *tcpConnectLink) packet() bool { return false }

func (l *tcpConnectLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return nil
	}
	err := l.conn.Close()
	l.conn = nil
	return err
}

// tcpListenLink accepts exactly one active peer; a later connection
// replaces the current one.
type tcpListenLink struct {
	ioState
	ln net.Listener

	mu       sync.Mutex
	conn     net.Conn
	deadline time.Time
	closed   bool
}

func listenTCP(spec Spec) (*tcpListenLink, error) {
	ln, err := net.Listen("tcp", spec.addr())
	if err != nil {
		return nil, err
	}
	l := &tcpListenLink{ln: ln}
	go l.acceptLoop()
	return l, nil
}

func (l *tcpListenLink) acceptLoop() {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			return
		}
		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			conn.Close()
			return
		}
		if l.conn != nil {
			util.LogInfof("TCP peer %s replaces %s",
				conn.RemoteAddr(), l.conn.RemoteAddr())
			l.conn.Close()
		} else {
			util.LogInfof("TCP peer connected: %s", conn.RemoteAddr())
		}
		l.conn = conn
		l.mu.Unlock()
	}
}

func (l *tcpListenLink) current() net.Conn {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn
}

func (l *tcpListenLink) Read(p []byte) (int, error) {
	for {
		conn := l.current()
		if conn == nil {
			if err := l.waitForPeer(l.readDeadline()); err != nil {
				l.noteReadErr(err)
				return 0, err
			}
			continue
		}
		conn.SetReadDeadline(l.readDeadline())
		n, err := conn.Read(p)
		if err == nil {
			return n, nil
		}
		// A replaced peer shows up as a read error on the old conn;
		// pick up the new one instead of surfacing it.
		if !isTimeout(err) && l.current() != conn {
			continue
		}
		l.noteReadErr(err)
		return n, err
	}
}

// waitForPeer polls until a peer is connected or the deadline passes.
func (l *tcpListenLink) waitForPeer(deadline time.Time) error {
	for l.current() == nil {
		if l.isClosed() {
			return ErrClosed
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return os.ErrDeadlineExceeded
		}
		time.Sleep(20 * time.Millisecond)
	}
	return nil
}

func (l *tcpListenLink) Write(p []byte) (int, error) {
	conn := l.current()
	if conn == nil {
		return 0, errNoPeer
	}
	return conn.Write(p)
}

func (l *tcpListenLink) setDeadline(t time.Time) {
	l.mu.Lock()
	l.deadline = t
	l.mu.Unlock()
}

func (l *tcpListenLink) readDeadline() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deadline
}

// reconnect drops the failed peer and waits briefly for the next one.
func (l *tcpListenLink) reconnect() error {
	l.mu.Lock()
	if l.conn != nil {
		l.conn.Close()
		l.conn = nil
	}
	l.mu.Unlock()
	util.LogWarnf("TCP peer lost, waiting for a new connection")
	return l.waitForPeer(time.Now().Add(dialTimeout))
}

func (l *tcpListenLink) packet() bool { return false }

func (l *tcpListenLink) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func (l *tcpListenLink) Close() error {
	l.mu.Lock()
	l.closed = true
	if l.conn != nil {
		l.conn.Close()
		l.conn = nil
	}
	l.mu.Unlock()
	return l.ln.Close()
}
