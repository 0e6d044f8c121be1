package gameserver

import (
	"fmt"
	"sync"
	"time"
)

// TimePeriod is a named phase of the Emberdale day. The town bells and
// flavour text key off it.
type TimePeriod string

const (
	PeriodMidnight  TimePeriod = "Midnight"
	PeriodLateNight TimePeriod = "Late Night"
	PeriodDawn      TimePeriod = "Dawn"
	PeriodMorning   TimePeriod = "Morning"
	PeriodAfternoon TimePeriod = "Afternoon"
	PeriodDusk      TimePeriod = "Dusk"
	PeriodEvening   TimePeriod = "Evening"
	PeriodNight     TimePeriod = "Night"
)

// GameHour is a game-clock hour in [0, 23].
type GameHour int32

// periodByHour maps each hour of the day to its phase.
var periodByHour = [24]TimePeriod{
	PeriodMidnight,
	PeriodLateNight, PeriodLateNight, PeriodLateNight, PeriodLateNight,
	PeriodDawn, PeriodDawn,
	PeriodMorning, PeriodMorning, PeriodMorning, PeriodMorning, PeriodMorning,
	PeriodAfternoon, PeriodAfternoon, PeriodAfternoon, PeriodAfternoon, PeriodAfternoon,
	PeriodDusk, PeriodDusk,
	PeriodEvening, PeriodEvening, PeriodEvening,
	PeriodNight, PeriodNight,
}

// Period returns the phase of the day for this hour.
//
// Postcondition: Returns one of the eight TimePeriod constants for any h.
func (h GameHour) Period() TimePeriod {
	return periodByHour[((int(h)%24)+24)%24]
}

// String renders the hour the way the bells announce it, "HH:00".
func (h GameHour) String() string {
	return fmt.Sprintf("%02d:00", int(h))
}

// GameClock advances one game hour per real interval and fans the new
// hour out to subscribers. A subscriber with a full channel misses that
// hour; the bells wait for no one.
type GameClock struct {
	mu       sync.Mutex
	hour     int32
	interval time.Duration
	subs     map[chan<- GameHour]struct{}
}

// NewGameClock creates a stopped clock reading startHour.
//
// Precondition: interval > 0.
func NewGameClock(startHour int32, interval time.Duration) *GameClock {
	return &GameClock{
		hour:     ((startHour % 24) + 24) % 24,
		interval: interval,
		subs:     make(map[chan<- GameHour]struct{}),
	}
}

// CurrentHour returns the hour the clock currently reads.
func (c *GameClock) CurrentHour() GameHour {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GameHour(c.hour)
}

// Subscribe registers ch to receive each new hour. Delivery is
// non-blocking.
//
// Precondition: ch must not be nil.
func (c *GameClock) Subscribe(ch chan<- GameHour) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs[ch] = struct{}{}
}

// Unsubscribe stops delivery to ch.
func (c *GameClock) Unsubscribe(ch chan<- GameHour) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subs, ch)
}

// Start launches the clock goroutine and returns an idempotent stop
// function.
//
// Postcondition: The clock advances one hour per interval until stop().
func (c *GameClock) Start() (stop func()) {
	done := make(chan struct{})
	go c.run(done)
	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

func (c *GameClock) run(done <-chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.mu.Lock()
			c.hour = (c.hour + 1) % 24
			h := GameHour(c.hour)
			targets := make([]chan<- GameHour, 0, len(c.subs))
			for ch := range c.subs {
				targets = append(targets, ch)
			}
			c.mu.Unlock()
			for _, ch := range targets {
				select {
				case ch <- h:
				default:
				}
			}
		}
	}
}
