package main

import "time"

// clockState is everything runClock owns. Nothing here is shared; the
// only way in is a clockMsg.
type clockState struct {
	live     frame
	mask     tubeMask
	dwell    dwellTable
	secs     int       // second-of-minute, counted from SQW ticks
	lastRead time.Time // last full RTC read
	sm       setMode
	lastLamp int
	readErrs int
	hvWarned bool
}

func newClockState(rt runtimeConfig) *clockState {
	st := &clockState{
		dwell:    newDwellTable(rt.settings.GetDuration(sDwell)),
		mask:     maskAll(true),
		lastLamp: lampUnset,
	}
	for i := range st.live {
		st.live[i] = digitBlank
	}
	return st
}

func loadHVConfig(rt runtimeConfig) hvConfig {
	cfg, err := rt.nvram.load()
	if err != nil {
		// can't persist anything anyway, so don't burn a calibration
		rt.logger.Printf("nvram load failed, using defaults: %s", err.Error())
		cfg = defaultHVConfig()
		cfg.calNeeded = false
		return cfg
	}
	return cfg.sanitized()
}

func saveHVConfig(rt runtimeConfig, cfg hvConfig) {
	if err := rt.nvram.save(cfg); err != nil {
		rt.logger.Printf("nvram save failed: %s", err.Error())
	}
}

// fullRead pulls the whole datetime from the clock chip and rebuilds
// the live frame. On failure the seconds counter stays pegged, so the
// next tick retries.
func (st *clockState) fullRead(rt runtimeConfig) {
	t, err := rt.rtc.now()
	if err != nil {
		st.readErrs++
		rt.logger.Printf("clock read failed: %s", err.Error())
		return
	}
	st.readErrs = 0
	st.lastRead = t
	st.live = timeFrame(t)
	st.mask = maskAll(true)
	st.secs = t.Second()
}

// onTick advances one second. Between full reads only the seconds pair
// of the live frame changes.
func (st *clockState) onTick(rt runtimeConfig) {
	st.secs++
	if st.secs < 60 {
		st.live[1], st.live[0] = digitsOf(st.secs)
		return
	}

	st.fullRead(rt)
	if st.secs >= 60 {
		return
	}

	t := st.lastRead
	if t.Minute() == 0 && t.Second() == 0 && !st.sm.active() {
		if t.Hour() == rt.settings.GetInt(sDepoisonHour) {
			depoison(rt, st)
		} else {
			st.chime(rt)
		}
	}
}

func (st *clockState) chime(rt runtimeConfig) {
	if !rt.settings.GetBool(sChime) {
		return
	}
	stop := make(chan bool, 1)
	done := make(chan bool, 1)
	if f := rt.settings.GetString(sChimeFile); f != "" {
		go rt.sounds.playMP3(rt, f, false, stop, done)
		return
	}
	rt.sounds.playIt(rt, []string{"880", "1100"}, []string{"300ms", "250ms", "300ms", "1500ms"}, stop, done)
	go func() {
		rt.clock.Sleep(dChimeLen)
		stop <- true
	}()
}

func (st *clockState) commit(rt runtimeConfig) {
	t := st.sm.pending.toTime()
	rt.logger.Printf("setting clock to %s", t.Format("2006-01-02 15:04"))
	if err := rt.rtc.adjust(t); err != nil {
		rt.logger.Printf("clock adjust failed: %s", err.Error())
	}
	st.mask = maskAll(true)
	st.secs = 60 // next tick does a full re-read
}

func (st *clockState) calibrateNow(rt runtimeConfig) {
	if err := rt.hv.calibrate(rt); err != nil {
		rt.logger.Printf("calibration failed: %s", err.Error())
		return
	}
	cfg := rt.hv.config()
	cfg.calNeeded = false
	saveHVConfig(rt, cfg)
	st.hvWarned = false
	st.secs = 60
}

func (st *clockState) handleMsg(rt runtimeConfig, msg clockMsg) {
	switch msg.id {
	case msgTick:
		st.onTick(rt)
	case msgModeButton:
		info, err := toButtonInfo(msg.val)
		if err != nil {
			rt.logger.Printf("%s", err.Error())
			return
		}
		// act on the initial press edge only
		if !info.pressed || info.duration > 0 {
			return
		}
		if st.sm.modePress(st.lastRead) {
			st.commit(rt)
		}
	case msgAdjButton:
		info, err := toButtonInfo(msg.val)
		if err != nil {
			rt.logger.Printf("%s", err.Error())
			return
		}
		if !info.pressed || info.duration > 0 {
			return
		}
		st.sm.adjustPress()
	case msgSetTime:
		t, err := toTime(msg.val)
		if err != nil {
			rt.logger.Printf("%s", err.Error())
			return
		}
		rt.logger.Printf("remote set to %s", t.Format("2006-01-02 15:04:05"))
		if err := rt.rtc.adjust(t); err != nil {
			rt.logger.Printf("clock adjust failed: %s", err.Error())
			return
		}
		st.secs = 60
	case msgDepoison:
		if !st.sm.active() {
			depoison(rt, st)
		}
	case msgCalibrate:
		st.calibrateNow(rt)
	case msgDwell:
		di, err := toDwellInfo(msg.val)
		if err != nil {
			rt.logger.Printf("%s", err.Error())
			return
		}
		if di.pos < 0 {
			for i := 0; i < tubeCount; i++ {
				st.dwell.set(i, di.duration)
			}
		} else {
			st.dwell.set(di.pos, di.duration)
		}
	default:
		rt.logger.Printf("Unhandled %d", msg.id)
	}
}

func (st *clockState) activeFrame() (frame, tubeMask) {
	if st.sm.active() {
		return st.sm.overlay()
	}
	if st.sm.showDate {
		return dateFrame(st.lastRead), maskAll(true)
	}
	return st.live, st.mask
}

func sendLamps(rt runtimeConfig, e lampEffect) bool {
	select {
	case rt.comms.lamps <- e:
		return true
	default:
		return false
	}
}

func (st *clockState) syncLamps(rt runtimeConfig) {
	var want lampEffect
	switch {
	case st.sm.active():
		want = lampOnEffect()
	case rt.settings.GetBool(sBlink):
		want = lampBlinkEffect()
	default:
		want = lampOnEffect()
	}
	if want.mode == st.lastLamp {
		return
	}
	if sendLamps(rt, want) {
		st.lastLamp = want.mode
	}
}

// startup probes the clock chip. No chip at all is the blocking fault:
// blink the pattern until quit. A chip that lost power gets the
// fallback datetime after a finite blink, then we carry on.
func (st *clockState) startup(rt runtimeConfig) error {
	if err := rt.rtc.open(); err != nil {
		rt.logger.Printf("no clock chip: %s", err.Error())
		sendLamps(rt, lampOffEffect())
		showFault(rt, st.dwell, faultClockAbsent, -1)
		return err
	}

	lost, err := rt.rtc.lostPower()
	if err != nil {
		rt.logger.Printf("power-loss check failed: %s", err.Error())
	}
	if lost {
		rt.logger.Printf("clock chip lost power, resetting to %s", fallbackTime.Format("2006-01-02 15:04"))
		sendLamps(rt, lampOffEffect())
		showFault(rt, st.dwell, faultPowerLoss, faultBlinkCount)
		if err := rt.rtc.adjust(fallbackTime); err != nil {
			rt.logger.Printf("fallback adjust failed: %s", err.Error())
		}
		if err := rt.rtc.clearLostPower(); err != nil {
			rt.logger.Printf("power-loss clear failed: %s", err.Error())
		}
	}

	if err := rt.rtc.enable1Hz(); err != nil {
		rt.logger.Printf("1Hz enable failed: %s", err.Error())
	}
	if err := rt.tick.start(); err != nil {
		rt.logger.Printf("tick source failed: %s", err.Error())
	}

	st.fullRead(rt)
	return nil
}

func startClock(rt runtimeConfig) {
	rt.logger = &ThreadLogger{name: "Clock"}
	wg.Add(1)
	go func() {
		defer wg.Done()
		runClock(rt)
	}()
}

func runClock(rt runtimeConfig) {
	defer func() {
		rt.logger.Println("exiting runClock")
	}()

	st := newClockState(rt)

	if err := st.startup(rt); err != nil {
		return
	}

	cfg := loadHVConfig(rt)
	if cfg.calNeeded {
		st.calibrateNow(rt)
	}

	comms := rt.comms
	for true {
		select {
		case <-comms.quit:
			rt.logger.Println("quit from runClock")
			return
		case msg := <-comms.clock:
			st.handleMsg(rt, msg)
		default:
		}

		if err := rt.hv.regulationStep(); err != nil && rt.hv.failed() && !st.hvWarned {
			st.hvWarned = true
			rt.logger.Printf("hv feedback disabled: %s", err.Error())
		}

		st.syncLamps(rt)

		f, m := st.activeFrame()
		renderFrame(rt, f, st.dwell, m)
		rt.clock.Sleep(dClockPoll)
	}
}
