package main

import (
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func TestMain(m *testing.M) {
	pinixieTestMain(m)
}

func TestClockStartup(t *testing.T) {
	rt, clock, _ := testRuntime()
	rtc := rt.rtc.(*simRTC)
	tick := rt.tick.(*simTick)
	lt := rt.tubes.(*logTubes)
	rtc.setNow(time.Date(2026, 8, 25, 14, 30, 15, 0, time.Local))

	go runClock(rt)
	testBlockDuration(clock, dClockPoll, 60*dClockPoll)
	testQuit(rt)

	assert.Equal(t, rtc.opened, true)
	assert.Equal(t, rtc.oneHz, true)
	assert.Equal(t, tick.started, true)
	// the first full read is on the tubes
	assert.Equal(t, lt.cur, [tubeCount]digit{5, 1, 0, 3, 4, 1})
	assert.Equal(t, lt.overlap, false)
	assert.Equal(t, lt.ghosted, false)
}

func TestClockTickRollover(t *testing.T) {
	rt, clock, comms := testRuntime()
	rtc := rt.rtc.(*simRTC)
	lt := rt.tubes.(*logTubes)
	rtc.setNow(time.Date(2026, 8, 25, 23, 59, 59, 0, time.Local))

	go runClock(rt)
	testBlockDuration(clock, dClockPoll, 30*dClockPoll)

	// the chip crosses midnight, then the edge lands
	rtc.setNow(time.Date(2026, 8, 26, 0, 0, 0, 0, time.Local))
	comms.clock <- tickMsg()
	testBlockDuration(clock, dClockPoll, 40*dClockPoll)
	testQuit(rt)

	// both hour tubes go dark at the top of the midnight hour
	assert.Equal(t, lt.cur, [tubeCount]digit{0, 0, 0, 0, digitBlank, digitBlank})
}

func TestClockButtonEdges(t *testing.T) {
	rt, clock, comms := testRuntime()
	rtc := rt.rtc.(*simRTC)
	rtc.setNow(time.Date(2026, 8, 25, 14, 30, 15, 0, time.Local))

	go runClock(rt)
	testBlockDuration(clock, dClockPoll, 30*dClockPoll)

	// idle lamps follow the blink setting
	e, _ := lampRead(t, comms.lamps)
	assert.Equal(t, e.mode, lampBlink)

	// releases and hold repeats don't enter set mode
	comms.clock <- modeButtonMsg(false, 0)
	comms.clock <- modeButtonMsg(true, 2*time.Second)
	testBlockDuration(clock, dClockPoll, 40*dClockPoll)
	lampNoRead(t, comms.lamps)

	// the press edge does, and the lamps go steady for it
	comms.clock <- modeButtonMsg(true, 0)
	testBlockDuration(clock, dClockPoll, 40*dClockPoll)
	e, _ = lampRead(t, comms.lamps)
	assert.Equal(t, e.mode, lampOn)

	testQuit(rt)
	assert.Equal(t, len(rtc.adjusted), 0)
}

func TestClockSetCommit(t *testing.T) {
	rt, clock, comms := testRuntime()
	rtc := rt.rtc.(*simRTC)
	rtc.setNow(time.Date(2026, 8, 25, 14, 30, 15, 0, time.Local))

	go runClock(rt)
	testBlockDuration(clock, dClockPoll, 30*dClockPoll)

	// enter set mode, bump the minutes once, then ride the mode
	// button through the remaining stages
	comms.clock <- modeButtonMsg(true, 0)
	comms.clock <- adjButtonMsg(true, 0)
	for i := 0; i < 5; i++ {
		comms.clock <- modeButtonMsg(true, 0)
	}
	testBlockDuration(clock, dClockPoll, 150*dClockPoll)
	testQuit(rt)

	assert.Equal(t, len(rtc.adjusted), 1)
	assert.Equal(t, rtc.adjusted[0], time.Date(2026, 8, 25, 14, 31, 0, 0, time.Local))
}

func TestClockRemoteSet(t *testing.T) {
	rt, clock, comms := testRuntime()
	rtc := rt.rtc.(*simRTC)
	lt := rt.tubes.(*logTubes)
	rtc.setNow(time.Date(2026, 8, 25, 14, 30, 15, 0, time.Local))

	go runClock(rt)
	testBlockDuration(clock, dClockPoll, 30*dClockPoll)

	want := time.Date(2026, 12, 31, 6, 7, 8, 0, time.Local)
	comms.clock <- setTimeMsg(want)
	comms.clock <- tickMsg() // the next tick picks up the new time
	testBlockDuration(clock, dClockPoll, 60*dClockPoll)
	testQuit(rt)

	assert.Equal(t, len(rtc.adjusted), 1)
	assert.Equal(t, rtc.adjusted[0], want)
	// 06:07:xx, tens of hours dark
	assert.Equal(t, lt.cur[5], digitBlank)
	assert.Equal(t, lt.cur[4], digit(6))
	assert.Equal(t, lt.cur[3], digit(0))
	assert.Equal(t, lt.cur[2], digit(7))
}

func TestClockNoChip(t *testing.T) {
	rt, clock, comms := testRuntime()
	rtc := rt.rtc.(*simRTC)
	rtc.failOpen = true
	lt := rt.tubes.(*logTubes)

	done := make(chan struct{})
	go func() {
		runClock(rt)
		close(done)
	}()
	testBlockDuration(clock, dClockPoll, 2*time.Second)

	// no clock chip is the blocking fault, the thread never moves on
	select {
	case <-done:
		t.Fatal("clock thread gave up on the fault display")
	default:
	}

	close(comms.quit)
	testAdvanceUntil(t, clock, dClockPoll, done)

	// stuck on the 99 pattern with the no-chip code
	assert.Equal(t, lt.cur[5], digit(9))
	assert.Equal(t, lt.cur[4], digit(9))
	assert.Equal(t, lt.cur[0], digit(faultClockAbsent))
	for _, e := range lt.entries {
		assert.Assert(t, e.anode == 5 || e.anode == 4 || e.anode == 0, "anode %d", e.anode)
	}
	// lamps were told to go dark
	e, _ := lampRead(t, comms.lamps)
	assert.Equal(t, e.mode, lampOff)
	assert.Equal(t, rt.tick.(*simTick).started, false)
}

func TestClockPowerLoss(t *testing.T) {
	rt, clock, comms := testRuntime()
	rtc := rt.rtc.(*simRTC)
	rtc.lost = true
	rtc.setNow(time.Date(2026, 8, 25, 14, 30, 15, 0, time.Local))
	lt := rt.tubes.(*logTubes)

	go runClock(rt)
	// a finite blink, then the fallback datetime goes in
	testBlockDuration(clock, dClockPoll, 6*time.Second)
	testQuit(rt)

	assert.Equal(t, rtc.lost, false)
	assert.Equal(t, rtc.cleared, 1)
	assert.Equal(t, len(rtc.adjusted), 1)
	assert.Equal(t, rtc.adjusted[0], fallbackTime)
	assert.Equal(t, rtc.oneHz, true)

	// lamps went dark for the blink, then came back
	e, _ := lampRead(t, comms.lamps)
	assert.Equal(t, e.mode, lampOff)
	e, _ = lampRead(t, comms.lamps)
	assert.Equal(t, e.mode, lampBlink)

	// running again on the fallback midnight
	assert.Equal(t, lt.cur[5], digitBlank)
	assert.Equal(t, lt.cur[4], digitBlank)
	assert.Equal(t, lt.cur[3], digit(0))
	assert.Equal(t, lt.cur[2], digit(0))
}

func TestClockFirstRunCalibration(t *testing.T) {
	rt, clock, _ := testRuntime()
	nv := rt.nvram.(*logNvram)
	nv.hasCfg = false // nothing stored yet

	go runClock(rt)
	testBlockDuration(clock, dCalibStep, 30*time.Second)
	testQuit(rt)

	// the power-on calibration ran and its result was stored
	assert.Equal(t, nv.saves, 1)
	assert.Equal(t, nv.cfg.calNeeded, false)
	assert.Assert(t, nv.cfg.pulse > pwmPulseMin && nv.cfg.pulse < pwmPulseMax, "pulse %d", nv.cfg.pulse)

	top, _, avg, feedback := rt.hv.snapshot()
	assert.Equal(t, avg, rt.hv.target)
	assert.Equal(t, feedback, true)
	assert.Assert(t, top >= pwmTopMin && top <= pwmTopMax)
}

func TestClockCalibrateMsg(t *testing.T) {
	rt, clock, comms := testRuntime()
	nv := rt.nvram.(*logNvram)

	go runClock(rt)
	testBlockDuration(clock, dClockPoll, 30*dClockPoll)
	assert.Equal(t, nv.saves, 0)

	comms.clock <- calibrateMsg()
	testBlockDuration(clock, dCalibStep, 30*time.Second)
	testQuit(rt)

	assert.Equal(t, nv.saves, 1)
	assert.Equal(t, nv.cfg.calNeeded, false)
}

func TestClockNvramLoadFailure(t *testing.T) {
	rt, clock, _ := testRuntime()
	nv := rt.nvram.(*logNvram)
	nv.failLoad = true

	go runClock(rt)
	testBlockDuration(clock, dClockPoll, 60*dClockPoll)
	testQuit(rt)

	// defaults, and no calibration burned on a box that can't
	// remember the result
	assert.Equal(t, nv.saves, 0)
}

func TestClockDepoisonMsg(t *testing.T) {
	rt, clock, comms := testRuntime()
	rtc := rt.rtc.(*simRTC)
	rtc.setNow(time.Date(2026, 8, 25, 14, 30, 15, 0, time.Local))
	lt := rt.tubes.(*logTubes)

	go runClock(rt)
	testBlockDuration(clock, dClockPoll, 30*dClockPoll)

	comms.clock <- depoisonMsg()
	testBlockDuration(clock, dClockPoll, 12*time.Second)
	testQuit(rt)

	assert.Equal(t, identicalRuns(lt.entries, 5), tubeCount*2*10)
}

func TestClockChime(t *testing.T) {
	rt, clock, comms := testRuntimeWith(map[string]interface{}{sChime: true})
	rtc := rt.rtc.(*simRTC)
	ns := rt.sounds.(*noSounds)
	rtc.setNow(time.Date(2026, 8, 25, 1, 59, 59, 0, time.Local))

	go runClock(rt)
	testBlockDuration(clock, dClockPoll, 30*dClockPoll)

	rtc.setNow(time.Date(2026, 8, 25, 2, 0, 0, 0, time.Local))
	comms.clock <- tickMsg()
	testBlockDuration(clock, dClockPoll, 60*dClockPoll)
	testQuit(rt)

	assert.Equal(t, ns.playItCnt, 1)
	assert.Equal(t, len(ns.playTiming), 4)
}

func TestClockChimeSkippedForDepoison(t *testing.T) {
	rt, clock, comms := testRuntimeWith(map[string]interface{}{
		sChime:        true,
		sDepoisonReps: 1,
	})
	rtc := rt.rtc.(*simRTC)
	ns := rt.sounds.(*noSounds)
	lt := rt.tubes.(*logTubes)
	rtc.setNow(time.Date(2026, 8, 25, 2, 59, 59, 0, time.Local))

	go runClock(rt)
	testBlockDuration(clock, dClockPoll, 30*dClockPoll)

	// the depoison hour gets the cleaning sweep, not the chime
	rtc.setNow(time.Date(2026, 8, 25, 3, 0, 0, 0, time.Local))
	comms.clock <- tickMsg()
	testBlockDuration(clock, dClockPoll, 8*time.Second)
	testQuit(rt)

	assert.Equal(t, ns.playItCnt, 0)
	assert.Equal(t, identicalRuns(lt.entries, 5), tubeCount*1*10)
}

func TestHandleDwellMsg(t *testing.T) {
	rt, _, _ := testRuntime()
	st := newClockState(rt)

	st.handleMsg(rt, dwellMsg(2, 5*time.Millisecond))
	assert.Equal(t, st.dwell[2], dwellMax)
	st.handleMsg(rt, dwellMsg(2, 800*time.Microsecond))
	assert.Equal(t, st.dwell[2], 800*time.Microsecond)

	// a negative position means every tube
	st.handleMsg(rt, dwellMsg(-1, 600*time.Microsecond))
	for i := 0; i < tubeCount; i++ {
		assert.Equal(t, st.dwell[i], 600*time.Microsecond)
	}
}

func TestHandleBadPayloads(t *testing.T) {
	rt, _, _ := testRuntime()
	st := newClockState(rt)

	// wrong payload types are logged and dropped
	st.handleMsg(rt, clockMsg{id: msgModeButton, val: "what"})
	st.handleMsg(rt, clockMsg{id: msgAdjButton, val: 3})
	st.handleMsg(rt, clockMsg{id: msgSetTime, val: 7})
	st.handleMsg(rt, clockMsg{id: msgDwell, val: true})
	st.handleMsg(rt, clockMsg{id: 99})

	assert.Equal(t, st.sm.active(), false)
	assert.Equal(t, len(rt.rtc.(*simRTC).adjusted), 0)
}

func TestOnTickSecondsOnly(t *testing.T) {
	rt, _, _ := testRuntime()
	rtc := rt.rtc.(*simRTC)
	rtc.setNow(time.Date(2026, 8, 25, 14, 30, 15, 0, time.Local))

	st := newClockState(rt)
	st.fullRead(rt)
	assert.Equal(t, st.secs, 15)
	assert.Equal(t, st.live, frame{5, 1, 0, 3, 4, 1})

	// move the chip somewhere else entirely: between full reads only
	// the seconds pair may change
	rtc.setNow(time.Date(2026, 8, 25, 20, 45, 0, 0, time.Local))
	st.onTick(rt)
	assert.Equal(t, st.secs, 16)
	assert.Equal(t, st.live, frame{6, 1, 0, 3, 4, 1})
}

func TestOnTickMinuteRollover(t *testing.T) {
	rt, _, _ := testRuntime()
	rtc := rt.rtc.(*simRTC)
	rtc.setNow(time.Date(2026, 8, 25, 23, 59, 59, 0, time.Local))

	st := newClockState(rt)
	st.fullRead(rt)
	assert.Equal(t, st.secs, 59)

	rtc.setNow(time.Date(2026, 8, 26, 0, 0, 0, 0, time.Local))
	st.onTick(rt)
	assert.Equal(t, st.secs, 0)
	assert.Equal(t, st.live, frame{0, 0, 0, 0, digitBlank, digitBlank})
}

func TestOnTickReadFailure(t *testing.T) {
	rt, _, _ := testRuntime()
	rtc := rt.rtc.(*simRTC)
	rtc.setNow(time.Date(2026, 8, 25, 14, 30, 58, 0, time.Local))

	st := newClockState(rt)
	st.fullRead(rt)
	assert.Equal(t, st.secs, 58)

	// one more second in the minute, then the rollover read fails and
	// the counter stays pegged so every following tick retries
	rtc.failRead = true
	st.onTick(rt)
	assert.Equal(t, st.secs, 59)
	st.onTick(rt)
	assert.Equal(t, st.secs, 60)
	assert.Equal(t, st.readErrs, 1)
	st.onTick(rt)
	assert.Equal(t, st.secs, 61)
	assert.Equal(t, st.readErrs, 2)

	rtc.failRead = false
	st.onTick(rt)
	assert.Equal(t, st.readErrs, 0)
	assert.Equal(t, st.secs, 58)
	assert.Equal(t, st.live, frame{8, 5, 0, 3, 4, 1})
}

func TestActiveFrame(t *testing.T) {
	rt, _, _ := testRuntime()
	rtc := rt.rtc.(*simRTC)
	rtc.setNow(time.Date(2026, 8, 25, 14, 30, 15, 0, time.Local))

	st := newClockState(rt)
	st.fullRead(rt)

	f, m := st.activeFrame()
	assert.Equal(t, f, st.live)
	assert.Equal(t, m, maskAll(true))

	// the adjust button outside of editing shows the date
	st.sm.adjustPress()
	f, m = st.activeFrame()
	assert.Equal(t, f, dateFrame(st.lastRead))
	assert.Equal(t, m, maskAll(true))

	// the edit overlay wins over everything
	st.sm.modePress(st.lastRead)
	_, m = st.activeFrame()
	assert.Equal(t, m, maskOf(5, 4, 3, 2))
}

func TestLoadHVConfigFallback(t *testing.T) {
	rt, _, _ := testRuntime()
	nv := rt.nvram.(*logNvram)

	// a sick nvram means defaults, with no calibration burn, there
	// is nowhere to store the result anyway
	nv.failLoad = true
	cfg := loadHVConfig(rt)
	assert.Equal(t, cfg.calNeeded, false)
	assert.Equal(t, cfg.pulse, uint32(defaultPulse))

	// stored values come back sanitized
	nv.failLoad = false
	nv.cfg = hvConfig{pulse: 9999, top: 500, targetVolts: 185}
	nv.hasCfg = true
	cfg = loadHVConfig(rt)
	assert.Equal(t, cfg.pulse, uint32(defaultPulse))
	assert.Equal(t, cfg.top, uint32(500))
}
