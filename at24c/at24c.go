// Package at24c drives AT24C32/64 style serial EEPROMs, the kind that
// ride along on DS3231 breakout boards.
package at24c

import (
	"errors"
	"time"
)

// PageSize is the largest write the chip accepts in one go.
const PageSize = 32

// the chip goes deaf while it burns a page
const writeCycle = 5 * time.Millisecond

// Bus is the slice of an I2C device handle the chip needs.
type Bus interface {
	Write(buf []uint8) (int, error)
	Read(buf []uint8) (int, error)
}

type Dev struct {
	bus   Bus
	sleep func(time.Duration)
}

func New(bus Bus) *Dev {
	return &Dev{bus: bus, sleep: time.Sleep}
}

// ReadAt fills buf starting at the given cell address. The chip takes
// a two byte address, high byte first, then streams data out.
func (d *Dev) ReadAt(addr uint16, buf []byte) error {
	if _, err := d.bus.Write([]byte{byte(addr >> 8), byte(addr)}); err != nil {
		return err
	}
	n, err := d.bus.Read(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return errors.New("at24c: short read")
	}
	return nil
}

// WriteAt writes buf starting at addr, splitting on page boundaries
// and waiting out the write cycle after each page.
func (d *Dev) WriteAt(addr uint16, buf []byte) error {
	for len(buf) > 0 {
		n := PageSize - int(addr)%PageSize
		if n > len(buf) {
			n = len(buf)
		}
		out := make([]byte, 0, n+2)
		out = append(out, byte(addr>>8), byte(addr))
		out = append(out, buf[:n]...)
		if _, err := d.bus.Write(out); err != nil {
			return err
		}
		d.sleep(writeCycle)
		addr += uint16(n)
		buf = buf[n:]
	}
	return nil
}
