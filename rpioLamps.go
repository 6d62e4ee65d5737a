package main

import (
	"log"

	"github.com/stianeikeland/go-rpio/v4"
)

type rpioLamps struct {
	pin rpio.Pin
}

func (rl *rpioLamps) open() error {
	err := rpio.Open()
	if err != nil {
		log.Println(err.Error())
		return err
	}
	rl.pin = rpio.Pin(pinLamps)
	rl.pin.Output()
	rl.pin.Low()
	return nil
}

func (rl *rpioLamps) set(on bool) {
	if on {
		rl.pin.High()
	} else {
		rl.pin.Low()
	}
}

func (rl *rpioLamps) close() {
	rl.pin.Low()
}
