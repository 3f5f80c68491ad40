package story

import (
	"container/heap"
	"fmt"
	"sync"
)

// Event is an addressed message. Frame is the frame on which the event is
// (or was) visible; it is filled in by the bus.
type Event struct {
	Subject string
	Body    any
	Frame   int
}

func (e Event) String() string {
	return fmt.Sprintf("Event(%s, %v)", e.Subject, e.Body)
}

// EventTransport sends events and reports the ones visible this frame.
type EventTransport interface {
	Send(evt Event, delay int)
	Poll(subject string) []Event
}

// FrameScoped transports deliver delayed events when a frame begins and
// forget same-frame events when it ends.
type FrameScoped interface {
	BeginFrame(frame int)
	EndFrame()
}

// EventBus is the default EventTransport. An event sent with delay 0 is
// visible for the rest of the frame it was sent in; an event sent at frame N
// with delay K > 0 becomes visible at frame N+K. Nothing stays visible past
// its frame. The bus is safe for use by several goroutines.
type EventBus struct {
	mu      sync.Mutex
	clock   Clock
	frame   int
	begun   bool
	current []Event
	pending eventQueue
	seq     uint64
}

// NewEventBus creates a bus. When clock is nil, sends are timed from the frame
// of the most recent BeginFrame call, so a delay counts from the last frame
// the bus saw rather than from the caller's own clock. Machines sharing a bus
// between worlds should pass a clock.
func NewEventBus(clock Clock) *EventBus {
	return &EventBus{clock: clock}
}

func (b *EventBus) now() int {
	if b.clock != nil {
		return b.clock.CurrentFrame()
	}
	return b.frame
}

// BeginFrame makes frame the visible frame. Calling it again for the same
// frame is a no-op, so machines sharing a bus can each call it.
func (b *EventBus) BeginFrame(frame int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.begun && frame == b.frame {
		return
	}
	if frame != b.frame {
		b.current = b.current[:0]
	}
	b.frame = frame
	b.begun = true

	for b.pending.Len() > 0 && b.pending[0].evt.Frame <= frame {
		item := heap.Pop(&b.pending).(queuedEvent)
		item.evt.Frame = frame
		b.current = append(b.current, item.evt)
	}
}

// EndFrame drops the events visible in the current frame. Events sent after
// EndFrame and before the next BeginFrame are held for that frame.
func (b *EventBus) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.current[:0]
	b.begun = false
}

// Send queues evt. A negative delay is treated as zero.
func (b *EventBus) Send(evt Event, delay int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if delay < 0 {
		delay = 0
	}
	due := b.now() + delay
	if b.begun && due <= b.frame {
		evt.Frame = b.frame
		b.current = append(b.current, evt)
		return
	}

	evt.Frame = due
	b.seq++
	heap.Push(&b.pending, queuedEvent{evt: evt, seq: b.seq})
}

// Poll returns the events visible this frame with the given subject, in
// delivery order. An empty subject matches every event.
func (b *EventBus) Poll(subject string) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Event
	for _, evt := range b.current {
		if subject == "" || evt.Subject == subject {
			out = append(out, evt)
		}
	}
	return out
}

// Pending returns the number of delayed events not yet delivered.
func (b *EventBus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending.Len()
}

type queuedEvent struct {
	evt Event
	seq uint64
}

// eventQueue orders delayed events by due frame, then by send order.
type eventQueue []queuedEvent

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].evt.Frame != q[j].evt.Frame {
		return q[i].evt.Frame < q[j].evt.Frame
	}
	return q[i].seq < q[j].seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(queuedEvent)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
