// SPDX-License-Identifier: MIT
package tx

import (
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/term"

	"sdrwatch/internal/log"
)

const pollTimeout = 100 * time.Millisecond

// InputListener puts the controlling terminal into raw mode and toggles a
// Worker's Trigger on space or enter, clearing a running flag on 'q'. It
// restores the terminal's original state on Close regardless of how the
// listener loop exits.
type InputListener struct {
	fd       int
	oldState *term.State
	worker   *Worker
}

// NewInputListener puts fd (typically os.Stdin's descriptor) into raw,
// non-canonical, no-echo mode.
func NewInputListener(fd int, worker *Worker) (*InputListener, error) {
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &InputListener{fd: fd, oldState: oldState, worker: worker}, nil
}

// Close restores the terminal's original attributes.
func (l *InputListener) Close() error {
	return term.Restore(l.fd, l.oldState)
}

// Listen reads single bytes from r until running is cleared, dispatching
// each byte read to handleKey. Read errors (including deadline timeouts)
// are ignored and the loop polls again. Where r does not support read
// deadlines, each Read blocks until a byte arrives, so a cleared running
// flag is only noticed after the next key press.
func (l *InputListener) Listen(r *os.File, running *atomic.Bool) {
	buf := make([]byte, 1)
	for running.Load() {
		r.SetReadDeadline(time.Now().Add(pollTimeout))
		n, err := r.Read(buf)
		if err != nil {
			continue // timeout or transient read error; poll again
		}
		if n == 0 {
			continue
		}
		l.handleKey(buf[0], running)
	}
}

// handleKey applies the keyboard interface contract for a single byte:
// space, newline, and carriage return toggle the worker's transmit
// trigger; 'q' clears running and stops the worker. Any other byte is
// ignored.
func (l *InputListener) handleKey(b byte, running *atomic.Bool) {
	switch b {
	case ' ', '\n', '\r':
		l.worker.Trigger.Store(!l.worker.Trigger.Load())
		log.Debugf("tx: trigger toggled to %v", l.worker.Trigger.Load())
	case 'q':
		running.Store(false)
		l.worker.Stop()
	}
}
