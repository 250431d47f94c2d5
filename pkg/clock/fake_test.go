package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClock_AfterFuncFiresOnAdvance(t *testing.T) {
	c := NewFake(epoch)
	fired := 0
	c.AfterFunc(4*time.Second, func() { fired++ })

	c.Advance(3 * time.Second)
	assert.Equal(t, 0, fired)

	c.Advance(time.Second)
	assert.Equal(t, 1, fired)
	assert.Equal(t, epoch.Add(4*time.Second), c.Now())
	assert.Equal(t, 0, c.PendingCount())
}

func TestFakeClock_StopPreventsFire(t *testing.T) {
	c := NewFake(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	c.Advance(time.Minute)
	assert.False(t, fired)
}

func TestFakeClock_RearmingCallbackFiresWithinOneAdvance(t *testing.T) {
	c := NewFake(epoch)
	var times []time.Time

	var arm func()
	arm = func() {
		c.AfterFunc(4*time.Second, func() {
			times = append(times, c.Now())
			arm()
		})
	}
	arm()

	c.Advance(20 * time.Second)

	require.Len(t, times, 5)
	for i, ts := range times {
		assert.Equal(t, epoch.Add(time.Duration(i+1)*4*time.Second), ts)
	}
	assert.Equal(t, 1, c.PendingCount())
}

func TestFakeClock_FiresInDeadlineOrder(t *testing.T) {
	c := NewFake(epoch)
	var order []string
	c.AfterFunc(3*time.Second, func() { order = append(order, "b") })
	c.AfterFunc(time.Second, func() { order = append(order, "a") })
	c.AfterFunc(3*time.Second, func() { order = append(order, "c") })

	c.Advance(5 * time.Second)

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestFakeClock_Ticker(t *testing.T) {
	c := NewFake(epoch)
	ticker := c.NewTicker(time.Second)

	c.Advance(time.Second)
	select {
	case <-ticker.C:
	default:
		t.Fatal("expected a tick")
	}

	ticker.Stop()
	c.Advance(5 * time.Second)
	select {
	case <-ticker.C:
		t.Fatal("stopped ticker should not tick")
	default:
	}
}

func TestFakeClock_TickerSendsFiringTime(t *testing.T) {
	c := NewFake(epoch)
	ticker := c.NewTicker(time.Second)
	defer ticker.Stop()

	c.Advance(time.Second)
	assert.Equal(t, epoch.Add(time.Second), <-ticker.C)

	c.Advance(time.Second)
	assert.Equal(t, epoch.Add(2*time.Second), <-ticker.C)
}

func TestFakeClock_NewTickerPanicsOnNonPositive(t *testing.T) {
	c := NewFake(epoch)
	assert.Panics(t, func() { c.NewTicker(0) })
}

func TestTimer_NilSafe(t *testing.T) {
	var timer *Timer
	assert.False(t, timer.Stop())
}
