package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

var wg sync.WaitGroup

// build-tagged files append to this; /api/status reports it
var features []string

type commChannels struct {
	quit  chan struct{}
	clock chan clockMsg
	lamps chan lampEffect
}

// clockMsg is everything runClock consumes: ticks, button edges and
// API commands
type clockMsg struct {
	id  int
	val interface{}
}

const (
	msgTick = iota
	msgModeButton
	msgAdjButton
	msgSetTime
	msgDepoison
	msgCalibrate
	msgDwell
)

// one of the payload types for clockMsg
type buttonInfo struct {
	pressed  bool
	duration time.Duration
}

type dwellInfo struct {
	pos      int
	duration time.Duration
}

// channel messaging functions
func tickMsg() clockMsg {
	return clockMsg{id: msgTick}
}

func modeButtonMsg(p bool, d time.Duration) clockMsg {
	return clockMsg{id: msgModeButton, val: buttonInfo{pressed: p, duration: d}}
}

func adjButtonMsg(p bool, d time.Duration) clockMsg {
	return clockMsg{id: msgAdjButton, val: buttonInfo{pressed: p, duration: d}}
}

func setTimeMsg(t time.Time) clockMsg {
	return clockMsg{id: msgSetTime, val: t}
}

func depoisonMsg() clockMsg {
	return clockMsg{id: msgDepoison}
}

func calibrateMsg() clockMsg {
	return clockMsg{id: msgCalibrate}
}

func dwellMsg(pos int, d time.Duration) clockMsg {
	return clockMsg{id: msgDwell, val: dwellInfo{pos: pos, duration: d}}
}

func toButtonInfo(val interface{}) (*buttonInfo, error) {
	switch v := val.(type) {
	case buttonInfo:
		return &v, nil
	default:
		return nil, fmt.Errorf("Bad type: %T", v)
	}
}

func toTime(val interface{}) (time.Time, error) {
	switch v := val.(type) {
	case time.Time:
		return v, nil
	default:
		return time.Time{}, fmt.Errorf("Bad type: %T", v)
	}
}

func toDwellInfo(val interface{}) (*dwellInfo, error) {
	switch v := val.(type) {
	case dwellInfo:
		return &v, nil
	default:
		return nil, fmt.Errorf("Bad type: %T", v)
	}
}

// lampEffect drives the separator lamp worker
type lampEffect struct {
	mode int
}

const (
	lampOff = iota
	lampOn
	lampBlink
	lampUnset
)

func lampOffEffect() lampEffect {
	return lampEffect{mode: lampOff}
}

func lampOnEffect() lampEffect {
	return lampEffect{mode: lampOn}
}

func lampBlinkEffect() lampEffect {
	return lampEffect{mode: lampBlink}
}

type runtimeConfig struct {
	settings      configSettings
	comms         commChannels
	clock         clockwork.Clock
	logger        flogger
	tubes         tubeBank
	hv            *hvRegulator
	rtc           rtClock
	nvram         nvram
	buttons       buttons
	lamps         lamps
	sounds        sounds
	tick          tickSource
	configService configService
}

func initCommChannels() commChannels {
	return commChannels{
		quit:  make(chan struct{}),
		clock: make(chan clockMsg, 60),
		lamps: make(chan lampEffect, 2),
	}
}

// initRuntime wires the hardware set for the platform: real drivers on
// the Pi, simulated ones elsewhere
func initRuntime(clock clockwork.Clock, settings configSettings) runtimeConfig {
	rt := runtimeConfig{
		settings:      settings,
		comms:         initCommChannels(),
		clock:         clock,
		logger:        &defaultLogger{},
		configService: &httpConfigService{},
	}

	if settings.GetBool(sSimHW) {
		pwm := &logPWM{}
		rt.tubes = &logTubes{dump: settings.GetBool(sDebugDump)}
		rt.hv = newRegulator(pwm, newFakeSensor(pwm), settings.GetInt(sHVTarget))
		rt.rtc = newSimRTC(clock)
		rt.nvram = &logNvram{}
		rt.lamps = &logLamps{}
		rt.sounds = &noSounds{}
		rt.tick = &simTick{clock: clock, auto: true}
		if settings.GetBool(sKeyButtons) {
			rt.buttons = &keyButtons{}
		} else {
			rt.buttons = &noButtons{}
		}
	} else {
		rt.tubes = &rpioTubes{}
		rt.hv = newRegulator(&rpioPWM{}, newMCPSensor(settings), settings.GetInt(sHVTarget))
		rt.rtc = newDS3231Clock(settings)
		rt.nvram = newEEPROMNvram(settings)
		rt.lamps = &rpioLamps{}
		rt.sounds = &realSounds{}
		rt.tick = &rpioTick{}
		rt.buttons = &rpioButtons{}
	}

	return rt
}
