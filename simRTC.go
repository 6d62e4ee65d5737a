package main

import (
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
)

// simRTC pretends to be the clock chip. It holds a base datetime and
// lets the process clock carry it forward, so sim mode shows real time
// and tests can pin it wherever they like.
type simRTC struct {
	clock    clockwork.Clock
	base     time.Time
	ref      time.Time
	lost     bool
	failOpen bool
	failRead bool
	adjusted []time.Time
	opened   bool
	oneHz    bool
	cleared  int
}

func newSimRTC(clock clockwork.Clock) *simRTC {
	now := clock.Now()
	return &simRTC{clock: clock, base: now, ref: now}
}

func (sr *simRTC) open() error {
	if sr.failOpen {
		return errors.New("no response from clock chip")
	}
	sr.opened = true
	return nil
}

func (sr *simRTC) now() (time.Time, error) {
	if sr.failRead {
		return time.Time{}, errors.New("clock chip read failed")
	}
	return sr.base.Add(sr.clock.Now().Sub(sr.ref)), nil
}

func (sr *simRTC) adjust(t time.Time) error {
	sr.base = t
	sr.ref = sr.clock.Now()
	sr.adjusted = append(sr.adjusted, t)
	return nil
}

// setNow pins the simulated chip without recording an adjustment
func (sr *simRTC) setNow(t time.Time) {
	sr.base = t
	sr.ref = sr.clock.Now()
}

func (sr *simRTC) lostPower() (bool, error) {
	return sr.lost, nil
}

func (sr *simRTC) clearLostPower() error {
	sr.lost = false
	sr.cleared++
	return nil
}

func (sr *simRTC) enable1Hz() error {
	sr.oneHz = true
	return nil
}

func (sr *simRTC) close() {
}
