// Package recorder appends received messages to a journal file,
// optionally restricted to a set of message types.
package recorder

import (
	"bufio"
	"os"
	"sync"

	"github.com/sanderkohnstamm/mavshark/internal/core/envelope"
	"github.com/sanderkohnstamm/mavshark/internal/journal"
	"github.com/sanderkohnstamm/mavshark/internal/util"
)

// Recorder writes matching messages to a journal file. Each accepted
// record is flushed immediately so a crash never loses more than the
// line being written.
type Recorder struct {
	mu     sync.Mutex
	path   string
	filter Filter
	file   *os.File
	w      *bufio.Writer
	count  uint64
	err    error
}

// New creates the journal file, truncating any existing file at path.
func New(path string, filter Filter) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Recorder{
		path:   path,
		filter: filter,
		file:   f,
		w:      bufio.NewWriter(f),
	}, nil
}

// Record writes the message if it passes the filter. A write failure
// disables the recorder permanently; inspection continues without it.
func (r *Recorder) Record(env *envelope.Envelope) {
	if !r.filter.Match(env.MessageID) {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil || r.file == nil {
		return
	}

	data, err := journal.FromEnvelope(env).Encode()
	if err == nil {
		_, err = r.w.Write(data)
	}
	if err == nil {
		err = r.w.Flush()
	}
	if err != nil {
		r.err = err
		util.LogErrorf("Recording to %s failed, recording disabled: %v", r.path, err)
		return
	}
	r.count++
}

// Count reports how many records have been written.
func (r *Recorder) Count() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Err reports the write failure that disabled recording, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Path returns the journal file path.
func (r *Recorder) Path() string { return r.path }

// Filter returns the active filter.
func (r *Recorder) Filter() Filter { return r.filter }

// Close flushes and closes the journal file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	flushErr := r.w.Flush()
	closeErr := r.file.Close()
	r.file = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
