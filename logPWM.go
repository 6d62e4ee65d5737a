package main

import "errors"

// logPWM records duty programming with nothing behind it.
type logPWM struct {
	on     uint32
	top    uint32
	lastOn uint32 // most recent nonzero duty
	sets   int
	opened bool
	closed bool
}

func (lp *logPWM) open() error {
	lp.opened = true
	lp.top = defaultTop
	return nil
}

func (lp *logPWM) set(on uint32, top uint32) {
	lp.on = on
	lp.top = top
	if on != 0 {
		lp.lastOn = on
	}
	lp.sets++
}

func (lp *logPWM) close() {
	lp.on = 0
	lp.closed = true
}

// fakeSensor models the divider tap as a function of what the converter
// was last programmed with. Longer periods and wider pulses both push
// the rail up, with the pulse contribution flattening out the way a
// real inductor does. The rail holds its voltage across mux gaps, so
// the model reads the last nonzero duty rather than the live one.
type fakeSensor struct {
	pwm   *logPWM
	fixed int // when nonzero, reported unconditionally
	fail  bool
	reads int
}

const fakeSensorKnee = 150

func newFakeSensor(pwm *logPWM) *fakeSensor {
	return &fakeSensor{pwm: pwm}
}

func (fs *fakeSensor) open() error {
	return nil
}

func (fs *fakeSensor) readRaw() (int, error) {
	fs.reads++
	if fs.fail {
		return 0, errors.New("adc fault")
	}
	if fs.fixed != 0 {
		return fs.fixed, nil
	}
	on := fs.pwm.lastOn
	if on > fakeSensorKnee {
		on = fakeSensorKnee
	}
	raw := int(fs.pwm.top) + 2*int(on)
	if raw > 1023 {
		raw = 1023
	}
	return raw, nil
}

func (fs *fakeSensor) close() {
}
