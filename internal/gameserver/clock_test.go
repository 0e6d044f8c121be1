package gameserver_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/emberfall/internal/gameserver"
)

func TestGameHour_Period(t *testing.T) {
	cases := []struct {
		hour   int32
		period gameserver.TimePeriod
	}{
		{0, gameserver.PeriodMidnight},
		{1, gameserver.PeriodLateNight},
		{4, gameserver.PeriodLateNight},
		{5, gameserver.PeriodDawn},
		{6, gameserver.PeriodDawn},
		{7, gameserver.PeriodMorning},
		{11, gameserver.PeriodMorning},
		{12, gameserver.PeriodAfternoon},
		{16, gameserver.PeriodAfternoon},
		{17, gameserver.PeriodDusk},
		{18, gameserver.PeriodDusk},
		{19, gameserver.PeriodEvening},
		{21, gameserver.PeriodEvening},
		{22, gameserver.PeriodNight},
		{23, gameserver.PeriodNight},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.period, gameserver.GameHour(tc.hour).Period(), "hour %d", tc.hour)
	}
}

func TestGameHour_String(t *testing.T) {
	assert.Equal(t, "06:00", gameserver.GameHour(6).String())
	assert.Equal(t, "18:00", gameserver.GameHour(18).String())
}

func TestProperty_GameHour_PeriodAlwaysValid(t *testing.T) {
	valid := map[gameserver.TimePeriod]bool{
		gameserver.PeriodMidnight:  true,
		gameserver.PeriodLateNight: true,
		gameserver.PeriodDawn:      true,
		gameserver.PeriodMorning:   true,
		gameserver.PeriodAfternoon: true,
		gameserver.PeriodDusk:      true,
		gameserver.PeriodEvening:   true,
		gameserver.PeriodNight:     true,
	}
	rapid.Check(t, func(rt *rapid.T) {
		h := rapid.Int32Range(0, 23).Draw(rt, "hour")
		assert.True(rt, valid[gameserver.GameHour(h).Period()])
	})
}

func TestGameClock_AdvancesAndWraps(t *testing.T) {
	clk := gameserver.NewGameClock(23, 20*time.Millisecond)
	ch := make(chan gameserver.GameHour, 4)
	clk.Subscribe(ch)
	stop := clk.Start()
	defer stop()
	defer clk.Unsubscribe(ch)

	select {
	case h := <-ch:
		assert.Equal(t, gameserver.GameHour(0), h, "23:00 rolls over to midnight")
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for the first hour")
	}

	select {
	case h := <-ch:
		assert.Equal(t, gameserver.GameHour(1), h)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for the second hour")
	}
	require.Equal(t, gameserver.GameHour(1), clk.CurrentHour())
}

func TestGameClock_UnsubscribeStopsDelivery(t *testing.T) {
	clk := gameserver.NewGameClock(0, 20*time.Millisecond)
	ch := make(chan gameserver.GameHour, 4)
	clk.Subscribe(ch)
	stop := clk.Start()
	defer stop()

	select {
	case <-ch:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("no initial hour arrived")
	}

	clk.Unsubscribe(ch)
	for len(ch) > 0 {
		<-ch
	}

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, ch, "no delivery after unsubscribe")
}
