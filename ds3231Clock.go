package main

import (
	"time"

	"pinixie/ds3231"
	"pinixie/i2c"
)

// ds3231Clock puts the clock chip behind the rtClock interface
type ds3231Clock struct {
	addr   uint8
	busNum int
	sim    bool
	bus    *i2c.I2C
	dev    *ds3231.Dev
}

func newDS3231Clock(settings configSettings) *ds3231Clock {
	return &ds3231Clock{
		addr:   settings.GetByte(sRTCDev),
		busNum: settings.GetInt(sI2CBus),
		sim:    settings.GetBool(sSimHW),
	}
}

func (dc *ds3231Clock) open() error {
	bus, err := i2c.Open(dc.addr, dc.busNum, dc.sim)
	if err != nil {
		return err
	}
	dev := ds3231.New(bus)

	// probe now so a missing chip fails here, not mid-run
	if !dc.sim {
		if _, err := dev.Now(); err != nil {
			bus.Close()
			return err
		}
	}

	dc.bus = bus
	dc.dev = dev
	return nil
}

func (dc *ds3231Clock) now() (time.Time, error) {
	return dc.dev.Now()
}

func (dc *ds3231Clock) adjust(t time.Time) error {
	return dc.dev.SetTime(t)
}

func (dc *ds3231Clock) lostPower() (bool, error) {
	return dc.dev.LostPower()
}

func (dc *ds3231Clock) clearLostPower() error {
	return dc.dev.ClearLostPower()
}

func (dc *ds3231Clock) enable1Hz() error {
	return dc.dev.EnableSquareWave()
}

func (dc *ds3231Clock) close() {
	if dc.bus != nil {
		dc.bus.Close()
		dc.bus = nil
	}
}
