package main

import (
	"pinixie/at24c"
	"pinixie/i2c"
)

// tuning block layout in the EEPROM:
//   0x00 pulse low, 0x01 pulse high
//   0x02 target volts
//   0x03 period low, 0x04 period high
//   0x05 calibration needed
//   0x06 magic
const (
	nvBase  = 0x0000
	nvLen   = 7
	nvMagic = 0x5a
)

// eepromNvram keeps the tuning block on the clock board's spare EEPROM
type eepromNvram struct {
	addr   uint8
	busNum int
	sim    bool
}

func newEEPROMNvram(settings configSettings) *eepromNvram {
	return &eepromNvram{
		addr:   settings.GetByte(sNvramDev),
		busNum: settings.GetInt(sI2CBus),
		sim:    settings.GetBool(sSimHW),
	}
}

func (en *eepromNvram) device() (*at24c.Dev, *i2c.I2C, error) {
	bus, err := i2c.Open(en.addr, en.busNum, en.sim)
	if err != nil {
		return nil, nil, err
	}
	return at24c.New(bus), bus, nil
}

func (en *eepromNvram) load() (hvConfig, error) {
	dev, bus, err := en.device()
	if err != nil {
		return hvConfig{}, err
	}
	defer bus.Close()

	var buf [nvLen]byte
	if err := dev.ReadAt(nvBase, buf[:]); err != nil {
		return hvConfig{}, err
	}
	if buf[6] != nvMagic {
		// first run, nothing stored yet
		return defaultHVConfig(), nil
	}

	cfg := hvConfig{
		pulse:       uint32(buf[0]) | uint32(buf[1])<<8,
		targetVolts: int(buf[2]),
		top:         uint32(buf[3]) | uint32(buf[4])<<8,
		calNeeded:   buf[5] != 0,
	}
	return cfg.sanitized(), nil
}

func (en *eepromNvram) save(cfg hvConfig) error {
	dev, bus, err := en.device()
	if err != nil {
		return err
	}
	defer bus.Close()

	var cal byte
	if cfg.calNeeded {
		cal = 1
	}
	buf := [nvLen]byte{
		byte(cfg.pulse), byte(cfg.pulse >> 8),
		byte(cfg.targetVolts),
		byte(cfg.top), byte(cfg.top >> 8),
		cal,
		nvMagic,
	}
	return dev.WriteAt(nvBase, buf[:])
}
