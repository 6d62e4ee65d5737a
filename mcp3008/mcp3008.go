// Package mcp3008 reads the Microchip MCP3008 10-bit ADC over SPI.
package mcp3008

import (
	"errors"

	"periph.io/x/conn/v3/spi"
)

// Dev is a handle to one converter.
type Dev struct {
	c spi.Conn
}

// New wraps an already-connected SPI device.
func New(c spi.Conn) *Dev {
	return &Dev{c: c}
}

// Read runs one single-ended conversion on channel ch (0..7) and
// returns the 10-bit count. The start bit, mode bit and channel are
// clocked out as three bytes per the datasheet, with the result in the
// low ten bits of the reply.
func (d *Dev) Read(ch int) (int, error) {
	if ch < 0 || ch > 7 {
		return 0, errors.New("mcp3008: channel out of range")
	}
	w := []byte{0x01, byte(0x80 | ch<<4), 0x00}
	r := make([]byte, 3)
	if err := d.c.Tx(w, r); err != nil {
		return 0, err
	}
	return int(r[1]&0x03)<<8 | int(r[2]), nil
}
