package session

import "sync"

// Outbox queues outbound text per recipient during a tick or command
// handler. Nothing is delivered mid-resolution; the orchestrator flushes
// the queue once its critical section ends, so a player never observes a
// half-applied attack.
type Outbox struct {
	mu     sync.Mutex
	queues map[string][]string // uid → pending lines
}

// NewOutbox creates an empty Outbox.
func NewOutbox() *Outbox {
	return &Outbox{queues: make(map[string][]string)}
}

// Queue appends a line for the given recipient.
//
// Precondition: uid must be non-empty; empty lines are dropped.
func (o *Outbox) Queue(uid, line string) {
	if uid == "" || line == "" {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queues[uid] = append(o.queues[uid], line)
}

// QueueAll appends a line for every listed recipient.
func (o *Outbox) QueueAll(uids []string, line string) {
	for _, uid := range uids {
		o.Queue(uid, line)
	}
}

// Pending returns the number of queued lines across all recipients.
func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, lines := range o.queues {
		n += len(lines)
	}
	return n
}

// Flush drains the queue, invoking send once per recipient line in queue
// order. The queue is emptied before sending so a send callback that
// queues further messages never loops.
//
// Precondition: send must be non-nil.
func (o *Outbox) Flush(send func(uid, line string)) {
	o.mu.Lock()
	drained := o.queues
	o.queues = make(map[string][]string)
	o.mu.Unlock()

	for uid, lines := range drained {
		for _, line := range lines {
			send(uid, line)
		}
	}
}

// Drop discards any pending lines for a disconnected recipient.
func (o *Outbox) Drop(uid string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.queues, uid)
}
