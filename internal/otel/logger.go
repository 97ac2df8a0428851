package otel

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// eventQueue is how many events may wait for the writer before Emit drops.
const eventQueue = 4096

// Logger records events as JSON lines. One writer goroutine owns the
// destination and mirrors every event into the attached ring buffer, so
// Emit never blocks on I/O. A nil *Logger discards everything.
//
// Every emitted event is either written or counted in Dropped.
type Logger struct {
	session string
	queue   chan Event
	quit    chan struct{}
	stopped chan struct{}
	ring    atomic.Pointer[RingBuffer]
	dropped atomic.Uint64

	// gate orders Emit against Close: no event enters the queue after the
	// writer was told to finish.
	gate   sync.RWMutex
	closed bool
}

// NewLogger starts a Logger writing to w. Close flushes and stops it.
func NewLogger(w io.Writer) *Logger {
	l := &Logger{
		session: uuid.NewString(),
		queue:   make(chan Event, eventQueue),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	go l.run(enc)
	return l
}

// NewNullLogger creates a Logger that writes nowhere but still feeds an
// attached ring buffer.
func NewNullLogger() *Logger {
	return NewLogger(io.Discard)
}

// NewChainID returns a short correlation ID for one pagination chain.
func NewChainID() string {
	return uuid.NewString()[:8]
}

func (l *Logger) run(enc *json.Encoder) {
	defer close(l.stopped)
	for {
		select {
		case e := <-l.queue:
			l.record(enc, e)
		case <-l.quit:
			for {
				select {
				case e := <-l.queue:
					l.record(enc, e)
				default:
					return
				}
			}
		}
	}
}

func (l *Logger) record(enc *json.Encoder, e Event) {
	if err := enc.Encode(e); err != nil {
		l.dropped.Add(1)
	}
	if rb := l.ring.Load(); rb != nil {
		rb.Push(e)
	}
}

// Emit stamps e with the session and, if unset, the current time, then
// queues it. A full queue or a closed logger drops the event.
func (l *Logger) Emit(e Event) {
	if l == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.SessionID = l.session

	l.gate.RLock()
	defer l.gate.RUnlock()
	if l.closed {
		l.dropped.Add(1)
		return
	}
	select {
	case l.queue <- e:
	default:
		l.dropped.Add(1)
	}
}

// Info emits an info-level event.
func (l *Logger) Info(kind EventKind, comp string, msg string) {
	l.Emit(Event{Level: LevelInfo, Kind: kind, Comp: comp, Msg: msg})
}

// Warn emits a warn-level event.
func (l *Logger) Warn(kind EventKind, comp string, msg string) {
	l.Emit(Event{Level: LevelWarn, Kind: kind, Comp: comp, Msg: msg})
}

// Error emits an error-level event. A nil err leaves Err empty.
func (l *Logger) Error(kind EventKind, comp string, err error) {
	e := Event{Level: LevelError, Kind: kind, Comp: comp}
	if err != nil {
		e.Err = err.Error()
	}
	l.Emit(e)
}

// SetRingBuffer mirrors subsequent events into buf. Nil detaches.
func (l *Logger) SetRingBuffer(buf *RingBuffer) {
	if l == nil {
		return
	}
	l.ring.Store(buf)
}

// SessionID returns the ID stamped on every event of this run.
func (l *Logger) SessionID() string {
	if l == nil {
		return ""
	}
	return l.session
}

// Dropped returns the number of events lost so far.
func (l *Logger) Dropped() uint64 {
	if l == nil {
		return 0
	}
	return l.dropped.Load()
}

// Close writes every queued event and stops the writer. Later calls are
// no-ops; later Emits are dropped.
func (l *Logger) Close() {
	if l == nil {
		return
	}
	l.gate.Lock()
	if l.closed {
		l.gate.Unlock()
		return
	}
	l.closed = true
	close(l.quit)
	l.gate.Unlock()

	<-l.stopped
	if d := l.dropped.Load(); d > 0 {
		fmt.Fprintf(os.Stderr, "catalog: %d events dropped during session %s\n", d, l.session)
	}
}
