package transport

import (
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sanderkohnstamm/mavshark/internal/util"
)

var errSendUnsupported = errors.New("file transport cannot send")

// fileLink replays framed bytes from a capture file as fast as they decode.
// With follow enabled it tails the file, waiting for appended data at EOF
// instead of ending the stream.
type fileLink struct {
	ioState
	f       *os.File
	follow  bool
	watcher *fsnotify.Watcher

	mu       sync.Mutex
	deadline time.Time
}

func openFile(spec Spec, follow bool) (*fileLink, error) {
	f, err := os.Open(spec.Path)
	if err != nil {
		return nil, err
	}

	l := &fileLink{f: f, follow: follow}
	if follow {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := watcher.Add(spec.Path); err != nil {
			watcher.Close()
			f.Close()
			return nil, err
		}
		l.watcher = watcher
	}
	return l, nil
}

func (l *fileLink) Read(p []byte) (int, error) {
	for {
		n, err := l.f.Read(p)
		if err == nil {
			return n, nil
		}
		if err != io.EOF {
			l.noteReadErr(err)
			return n, err
		}
		if !l.follow {
			l.noteReadErr(ErrEndOfStream)
			return 0, io.EOF
		}
		if err := l.waitForWrite(); err != nil {
			l.noteReadErr(err)
			return 0, err
		}
	}
}

// waitForWrite blocks until the followed file grows or the read deadline
// passes.
func (l *fileLink) waitForWrite() error {
	deadline := l.readDeadline()
	var timeout <-chan time.Time
	if !deadline.IsZero() {
		timer := time.NewTimer(time.Until(deadline))
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		select {
		case ev, ok := <-l.watcher.Events:
			if !ok {
				return ErrClosed
			}
			if ev.Op&fsnotify.Write != 0 {
				return nil
			}
		case werr, ok := <-l.watcher.Errors:
			if !ok {
				return ErrClosed
			}
			util.LogWarnf("file watch error: %v", werr)
		case <-timeout:
			return os.ErrDeadlineExceeded
		}
	}
}

func (l *fileLink) Write(p []byte) (int, error) {
	return 0, errSendUnsupported
}

func (l *fileLink) setDeadline(t time.Time) {
	l.mu.Lock()
	l.deadline = t
	l.mu.Unlock()
}

func (l *fileLink) readDeadline() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deadline
}

func (l *fileLink) reconnect() error { return errReconnectUnsupported }
func (l *fileLink) packet() bool     { return false }

func (l *fileLink) Close() error {
	if l.watcher != nil {
		l.watcher.Close()
	}
	return l.f.Close()
}
