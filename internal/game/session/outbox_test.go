package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/emberfall/internal/game/session"
)

func TestOutbox_QueueAndFlush(t *testing.T) {
	out := session.NewOutbox()
	out.Queue("1", "You hit the rat.")
	out.Queue("1", "The rat dies.")
	out.Queue("2", "Aldric kills a giant rat.")
	out.Queue("", "dropped")
	out.Queue("1", "")
	assert.Equal(t, 3, out.Pending())

	got := map[string][]string{}
	out.Flush(func(uid, line string) {
		got[uid] = append(got[uid], line)
	})

	assert.Equal(t, []string{"You hit the rat.", "The rat dies."}, got["1"])
	assert.Equal(t, []string{"Aldric kills a giant rat."}, got["2"])
	assert.Equal(t, 0, out.Pending(), "flush drains the queue")
}

func TestOutbox_QueueAll(t *testing.T) {
	out := session.NewOutbox()
	out.QueueAll([]string{"1", "2"}, "The ground shakes.")
	assert.Equal(t, 2, out.Pending())
}

func TestOutbox_Drop(t *testing.T) {
	out := session.NewOutbox()
	out.Queue("1", "line")
	out.Queue("2", "line")
	out.Drop("1")
	assert.Equal(t, 1, out.Pending())
}

// TestOutbox_FlushReentrant: a send callback may queue follow-up lines
// without deadlocking or looping; they stay pending for the next flush.
func TestOutbox_FlushReentrant(t *testing.T) {
	out := session.NewOutbox()
	out.Queue("1", "first")

	out.Flush(func(uid, line string) {
		out.Queue(uid, "second")
	})
	assert.Equal(t, 1, out.Pending())
}
