package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/stianeikeland/go-rpio/v4"
)

// Standalone bring-up helper: cycles 0..9 on every tube so dead
// cathodes and ghosting show up before the clock proper runs.
// HOLD is the per-digit hold in milliseconds, REPS the sweep count.

var bcdPins = [4]int{22, 23, 24, 25}
var anodePins = [6]int{5, 6, 12, 13, 16, 26}

const hvPin = 18

func envInt(name string, def int) int {
	s, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		log.Fatalf("%s is not a number", s)
	}
	return int(v)
}

func setCathode(bcd [4]rpio.Pin, d int) {
	for i := range bcd {
		if d&(1<<uint(i)) != 0 {
			bcd[i].High()
		} else {
			bcd[i].Low()
		}
	}
}

func main() {
	hold := time.Duration(envInt("HOLD", 500)) * time.Millisecond
	reps := envInt("REPS", 3)

	err := rpio.Open()
	if err != nil {
		log.Fatal(err.Error())
	}
	defer rpio.Close()

	var bcd [4]rpio.Pin
	for i, p := range bcdPins {
		bcd[i] = rpio.Pin(p)
		bcd[i].Output()
	}
	var anodes [6]rpio.Pin
	for i, p := range anodePins {
		anodes[i] = rpio.Pin(p)
		anodes[i].Output()
		anodes[i].Low()
	}

	// fixed low-stress drive, no feedback
	hv := rpio.Pin(hvPin)
	hv.Pwm()
	hv.Freq(9600000)
	hv.DutyCycle(96, 480)
	defer func() {
		hv.DutyCycle(0, 480)
		hv.Output()
		hv.Low()
	}()

	log.Printf("Cycling %d times, %v per digit", reps, hold)
	for r := 0; r < reps; r++ {
		for pos := len(anodes) - 1; pos >= 0; pos-- {
			for d := 0; d <= 9; d++ {
				setCathode(bcd, d)
				anodes[pos].High()
				time.Sleep(hold)
				anodes[pos].Low()
				time.Sleep(time.Millisecond)
			}
		}
	}
	setCathode(bcd, 0x0f)
}
