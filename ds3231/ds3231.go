// Package ds3231 drives the Maxim DS3231 real time clock.
package ds3231

import (
	"errors"
	"time"
)

// Bus is the slice of an I2C device handle the chip needs.
type Bus interface {
	Write(buf []uint8) (int, error)
	Read(buf []uint8) (int, error)
}

// register map
const (
	regSeconds = 0x00
	regControl = 0x0e
	regStatus  = 0x0f
)

// control bits
const (
	ctlINTCN = 1 << 2
	ctlRS1   = 1 << 3
	ctlRS2   = 1 << 4
)

// status bits
const (
	statOSF = 1 << 7
)

type Dev struct {
	bus Bus
}

func New(bus Bus) *Dev {
	return &Dev{bus: bus}
}

func bcdToDec(b byte) int {
	return int(b>>4)*10 + int(b&0x0f)
}

func decToBCD(v int) byte {
	return byte(v/10)<<4 | byte(v%10)
}

func (d *Dev) readRegs(reg byte, buf []byte) error {
	if _, err := d.bus.Write([]byte{reg}); err != nil {
		return err
	}
	n, err := d.bus.Read(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return errors.New("ds3231: short read")
	}
	return nil
}

// Now reads the seven timekeeping registers in one burst. The century
// bit is ignored; the chip is treated as living in 2000..2099.
func (d *Dev) Now() (time.Time, error) {
	var buf [7]byte
	if err := d.readRegs(regSeconds, buf[:]); err != nil {
		return time.Time{}, err
	}

	sec := bcdToDec(buf[0] & 0x7f)
	min := bcdToDec(buf[1] & 0x7f)
	var hour int
	if buf[2]&0x40 != 0 {
		// chip is in 12 hour mode
		hour = bcdToDec(buf[2] & 0x1f)
		if hour == 12 {
			hour = 0
		}
		if buf[2]&0x20 != 0 {
			hour += 12
		}
	} else {
		hour = bcdToDec(buf[2] & 0x3f)
	}
	day := bcdToDec(buf[4] & 0x3f)
	month := time.Month(bcdToDec(buf[5] & 0x1f))
	year := 2000 + bcdToDec(buf[6])

	return time.Date(year, month, day, hour, min, sec, 0, time.Local), nil
}

// SetTime writes the timekeeping registers in 24 hour mode.
func (d *Dev) SetTime(t time.Time) error {
	buf := []byte{
		regSeconds,
		decToBCD(t.Second()),
		decToBCD(t.Minute()),
		decToBCD(t.Hour()),
		byte(t.Weekday()) + 1,
		decToBCD(t.Day()),
		decToBCD(int(t.Month())),
		decToBCD(t.Year() % 100),
	}
	_, err := d.bus.Write(buf)
	return err
}

// LostPower reports the oscillator stop flag, which the chip raises
// whenever timekeeping was interrupted.
func (d *Dev) LostPower() (bool, error) {
	var buf [1]byte
	if err := d.readRegs(regStatus, buf[:]); err != nil {
		return false, err
	}
	return buf[0]&statOSF != 0, nil
}

// ClearLostPower drops the oscillator stop flag and leaves the rest of
// the status register alone.
func (d *Dev) ClearLostPower() error {
	var buf [1]byte
	if err := d.readRegs(regStatus, buf[:]); err != nil {
		return err
	}
	_, err := d.bus.Write([]byte{regStatus, buf[0] &^ statOSF})
	return err
}

// EnableSquareWave routes a 1Hz square wave to the INT/SQW pin.
func (d *Dev) EnableSquareWave() error {
	var buf [1]byte
	if err := d.readRegs(regControl, buf[:]); err != nil {
		return err
	}
	ctl := buf[0] &^ (ctlINTCN | ctlRS1 | ctlRS2)
	_, err := d.bus.Write([]byte{regControl, ctl})
	return err
}
