package main

import (
	"log"

	"github.com/stianeikeland/go-rpio/v4"
)

// rpioTubes drives the shared BCD decoder and the per-tube anode
// switches straight off the GPIO header.
type rpioTubes struct {
	bcd    [4]rpio.Pin
	anodes [tubeCount]rpio.Pin
}

func (tb *rpioTubes) open() error {
	err := rpio.Open()
	if err != nil {
		log.Println(err.Error())
		return err
	}

	for i, p := range pinBCD {
		tb.bcd[i] = rpio.Pin(p)
		tb.bcd[i].Output()
	}
	for i, p := range pinAnode {
		tb.anodes[i] = rpio.Pin(p)
		tb.anodes[i].Output()
		tb.anodes[i].Low()
	}

	// park the decoder on a blank code
	tb.setCathode(bcdFor(digitBlank))
	return nil
}

func (tb *rpioTubes) setCathode(code byte) {
	for i := range tb.bcd {
		if code&(1<<uint(i)) != 0 {
			tb.bcd[i].High()
		} else {
			tb.bcd[i].Low()
		}
	}
}

func (tb *rpioTubes) anodeOn(pos int) {
	tb.anodes[pos].High()
}

func (tb *rpioTubes) anodesOff() {
	for i := range tb.anodes {
		tb.anodes[i].Low()
	}
}

func (tb *rpioTubes) close() {
	tb.anodesOff()
	tb.setCathode(bcdFor(digitBlank))
}
