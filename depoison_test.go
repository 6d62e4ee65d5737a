package main

import (
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

// identicalRuns counts maximal stretches of the same (anode, cathode)
// firing at least minLen long. Normal rendering cycles the anode every
// entry, so only a depoison hold produces a long run.
func identicalRuns(entries []tubeLight, minLen int) int {
	runs := 0
	i := 0
	for i < len(entries) {
		j := i
		for j < len(entries) && entries[j] == entries[i] {
			j++
		}
		if j-i >= minLen {
			runs++
		}
		i = j
	}
	return runs
}

func TestDepoisonSweep(t *testing.T) {
	rt, clock, _ := testRuntime()
	lt := rt.tubes.(*logTubes)

	st := newClockState(rt)
	st.live = frame{1, 2, 3, 4, 5, 6}
	st.mask = maskOf(5, 4, 1, 0)
	st.secs = 12

	done := make(chan struct{})
	go func() {
		depoison(rt, st)
		close(done)
	}()
	testAdvanceUntil(t, clock, dClockPoll, done)

	// every tube cycled through every digit, repeats included
	assert.Equal(t, identicalRuns(lt.entries, 5), tubeCount*2*10)
	// leftmost tube first, counting up from zero
	assert.Equal(t, lt.entries[0], tubeLight{anode: 5, cathode: 0})
	assert.Equal(t, lt.entries[len(lt.entries)-1], tubeLight{anode: 0, cathode: 9})
	// single tube lit throughout, no cathode slides
	assert.Equal(t, lt.overlap, false)
	assert.Equal(t, lt.ghosted, false)

	// the live frame and mask come back untouched
	assert.Equal(t, st.live, frame{1, 2, 3, 4, 5, 6})
	assert.Equal(t, st.mask, maskOf(5, 4, 1, 0))
	// and the next tick does a full re-read
	assert.Equal(t, st.secs, 60)
}

func TestDepoisonScheduledHour(t *testing.T) {
	rt, clock, _ := testRuntime()
	rtc := rt.rtc.(*simRTC)
	lt := rt.tubes.(*logTubes)

	rtc.setNow(time.Date(2026, 8, 25, 2, 59, 59, 0, time.Local))
	st := newClockState(rt)
	st.fullRead(rt)
	assert.Equal(t, st.secs, 59)
	lt.reset()

	// the chip crosses into the depoison hour, then the tick lands
	rtc.setNow(time.Date(2026, 8, 25, 3, 0, 0, 0, time.Local))
	done := make(chan struct{})
	go func() {
		st.onTick(rt)
		close(done)
	}()
	testAdvanceUntil(t, clock, dMuxGap, done)

	assert.Equal(t, identicalRuns(lt.entries, 5), tubeCount*2*10)
	assert.Equal(t, st.secs, 60)
}

func TestNoDepoisonWhileSetting(t *testing.T) {
	rt, _, _ := testRuntime()
	rtc := rt.rtc.(*simRTC)
	lt := rt.tubes.(*logTubes)

	rtc.setNow(time.Date(2026, 8, 25, 2, 59, 59, 0, time.Local))
	st := newClockState(rt)
	st.fullRead(rt)
	st.sm.modePress(st.lastRead)
	lt.reset()

	// mid-edit the top of the hour passes quietly
	rtc.setNow(time.Date(2026, 8, 25, 3, 0, 0, 0, time.Local))
	st.onTick(rt)

	assert.Equal(t, len(lt.entries), 0)
	assert.Equal(t, st.secs, 0)
}
