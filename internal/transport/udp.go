package transport

import (
	"errors"
	"net"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

var errNoPeer = errors.New("no peer learned yet")

// udpConnectLink dials a fixed remote endpoint (udpout and udpbcast).
type udpConnectLink struct {
	ioState
	conn *net.UDPConn

	mu       sync.Mutex
	deadline time.Time
}

func dialUDP(spec Spec, broadcast bool) (*udpConnectLink, error) {
	raddr, err := net.ResolveUDPAddr("udp", spec.addr())
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, err
	}
	if broadcast {
		if err := enableBroadcast(conn); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return &udpConnectLink{conn: conn}, nil
}

func enableBroadcast(conn *net.UDPConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

func (l *udpConnectLink) Read(p []byte) (int, error) {
	l.conn.SetReadDeadline(l.readDeadline())
	n, err := l.conn.Read(p)
	if err != nil {
		l.noteReadErr(err)
	}
	return n, err
}

func (l *udpConnectLink) Write(p []byte) (int, error) {
	return l.conn.Write(p)
}

func (l *udpConnectLink) setDeadline(t time.Time) {
	l.mu.Lock()
	l.deadline = t
	l.mu.Unlock()
}

func (l *udpConnectLink) readDeadline() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deadline
}

func (l *udpConnectLink) reconnect() error { return errReconnectUnsupported }
func (l *udpConnectLink) packet() bool     { return true }
func (l *udpConnectLink) Close() error     { return l.conn.Close() }

// udpListenLink binds locally and learns its peer from the first inbound
// datagram; sends target that peer from then on.
type udpListenLink struct {
	ioState
	conn *net.UDPConn

	mu       sync.Mutex
	peer     *net.UDPAddr
	deadline time.Time
}

func listenUDP(spec Spec) (*udpListenLink, error) {
	laddr, err := net.ResolveUDPAddr("udp", spec.addr())
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, err
	}
	return &udpListenLink{conn: conn}, nil
}

func (l *udpListenLink) Read(p []byte) (int, error) {
	l.conn.SetReadDeadline(l.readDeadline())
	n, addr, err := l.conn.ReadFromUDP(p)
	if err != nil {
		l.noteReadErr(err)
		return n, err
	}
	l.mu.Lock()
	l.peer = addr
	l.mu.Unlock()
	return n, nil
}

func (l *udpListenLink) Write(p []byte) (int, error) {
	l.mu.Lock()
	peer := l.peer
	l.mu.Unlock()
	if peer == nil {
		return 0, errNoPeer
	}
	return l.conn.WriteToUDP(p, peer)
}

func (l *udpListenLink) setDeadline(t time.Time) {
	l.mu.Lock()
	l.deadline = t
	l.mu.Unlock()
}

func (l *udpListenLink) readDeadline() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deadline
}

func (l *udpListenLink) reconnect() error { return errReconnectUnsupported }
func (l *udpListenLink) packet() bool     { return true }
func (l *udpListenLink) Close() error     { return l.conn.Close() }
