package flowstate

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_CoalescesIntoOneRequest(t *testing.T) {
	ticker := NewManualTicker()
	var batches [][]*listener
	s := newScheduler(ticker, func(b []*listener) { batches = append(batches, b) })

	l1 := &listener{ticket: 1}
	l2 := &listener{ticket: 2}
	s.schedule([]*listener{l1})
	s.schedule([]*listener{l2, l1})

	assert.Equal(t, 1, ticker.Pending())
	assert.True(t, s.isPending())

	assert.Equal(t, 1, ticker.Tick())
	require.Len(t, batches, 1)
	assert.Equal(t, []*listener{l1, l2}, batches[0])
	assert.False(t, s.isPending())
}

func TestScheduler_EmptyScheduleStillFlushes(t *testing.T) {
	ticker := NewManualTicker()
	flushes := 0
	s := newScheduler(ticker, func([]*listener) { flushes++ })

	s.schedule(nil)
	ticker.Tick()
	assert.Equal(t, 1, flushes)
}

func TestScheduler_FlushNowSupersedesRequest(t *testing.T) {
	ticker := NewManualTicker()
	flushes := 0
	s := newScheduler(ticker, func([]*listener) { flushes++ })

	s.schedule([]*listener{{ticket: 1}})
	s.flushNow()
	assert.Equal(t, 1, flushes)

	// The outstanding ticker callback is stale and does nothing.
	ticker.Tick()
	assert.Equal(t, 1, flushes)

	// A new frame can be requested afterwards.
	s.schedule(nil)
	ticker.Tick()
	assert.Equal(t, 2, flushes)
}

func TestScheduler_Close(t *testing.T) {
	ticker := NewManualTicker()
	flushes := 0
	s := newScheduler(ticker, func([]*listener) { flushes++ })

	s.schedule([]*listener{{ticket: 1}})
	s.close()
	ticker.Tick()
	s.schedule(nil)
	s.flushNow()

	assert.Equal(t, 0, flushes)
	assert.Equal(t, 0, ticker.Pending())
}

func TestScheduler_ImmediateTicker(t *testing.T) {
	flushes := 0
	s := newScheduler(ImmediateTicker, func([]*listener) { flushes++ })

	s.schedule(nil)
	s.schedule(nil)
	assert.Equal(t, 2, flushes)
}

func TestFrameTicker_Fires(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	NewFrameTicker(time.Millisecond).Request(wg.Done)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("frame ticker did not fire")
	}
}

func TestNewFrameTicker_DefaultInterval(t *testing.T) {
	ft, ok := NewFrameTicker(0).(frameTicker)
	require.True(t, ok)
	assert.Equal(t, DefaultFrameInterval, ft.interval)
}

func TestManualTicker_RequestsDuringTickWait(t *testing.T) {
	ticker := NewManualTicker()
	ran := 0
	ticker.Request(func() {
		ran++
		ticker.Request(func() { ran++ })
	})

	assert.Equal(t, 1, ticker.Tick())
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, ticker.Pending())
	assert.Equal(t, 1, ticker.Tick())
	assert.Equal(t, 2, ran)
}
