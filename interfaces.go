package main

import (
	"time"

	"github.com/stianeikeland/go-rpio/v4"
)

// tubeBank is the cathode decoder plus the six anode drivers
type tubeBank interface {
	open() error
	setCathode(code byte)
	anodeOn(pos int)
	anodesOff()
	close()
}

// boostPWM is the HV converter's switching output. set pushes the duty
// and cycle registers; a zero duty is the gate-off state.
type boostPWM interface {
	open() error
	set(on uint32, top uint32)
	close()
}

// hvSensor reads the feedback divider, in raw ADC counts
type hvSensor interface {
	open() error
	readRaw() (int, error)
	close()
}

// rtClock is the battery backed clock chip
type rtClock interface {
	open() error
	now() (time.Time, error)
	adjust(t time.Time) error
	lostPower() (bool, error)
	clearLostPower() error
	enable1Hz() error
	close()
}

// nvram persists the HV tuning block
type nvram interface {
	load() (hvConfig, error)
	save(cfg hvConfig) error
}

// tickSource surfaces the RTC's 1Hz square wave
type tickSource interface {
	start() error
	ticked() bool
	stop()
}

type buttons interface {
	readButtons(rt runtimeConfig) (map[string]rpio.State, error)
	setupButtons(pins map[string]buttonMap, rt runtimeConfig) error
	initButtons(settings configSettings) error
	closeButtons()
	getButtons() *map[string]button
}

type lamps interface {
	open() error
	set(on bool)
	close()
}

type sounds interface {
	playIt(rt runtimeConfig, sfreqs []string, timing []string, stop chan bool, done chan bool)
	playMP3(rt runtimeConfig, fName string, loop bool, stop chan bool, done chan bool)
}

type configService interface {
	launch(handler *APIHandler, addr string)
	stop()
}
