package main

import (
	"log"

	"github.com/stianeikeland/go-rpio/v4"
)

// rpioTick watches the clock chip's square wave output for rising
// edges. The pin is open drain, so it idles high on the internal
// pullup and the chip yanks it low.
type rpioTick struct {
	pin rpio.Pin
}

func (tk *rpioTick) start() error {
	err := rpio.Open()
	if err != nil {
		log.Println(err.Error())
		return err
	}
	tk.pin = rpio.Pin(pinSQW)
	tk.pin.Input()
	tk.pin.PullUp()
	tk.pin.Detect(rpio.RiseEdge)
	return nil
}

func (tk *rpioTick) ticked() bool {
	return tk.pin.EdgeDetected()
}

func (tk *rpioTick) stop() {
	tk.pin.Detect(rpio.NoEdge)
}
