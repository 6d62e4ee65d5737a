package main

func startLamps(rt runtimeConfig) {
	rt.logger = &ThreadLogger{name: "Lamps"}
	wg.Add(1)
	go func() {
		defer wg.Done()
		runLamps(rt)
	}()
}

// runLamps owns the colon lamp line. The clock thread only ever sends
// a mode; the blink phase is timed here.
func runLamps(rt runtimeConfig) {
	defer func() {
		rt.logger.Println("exiting runLamps")
	}()

	comms := rt.comms

	if err := rt.lamps.open(); err != nil {
		rt.logger.Println(err.Error())
		return
	}
	defer rt.lamps.close()

	cur := lampUnset
	lit := false
	lastFlip := rt.clock.Now()

	for true {
		select {
		case <-comms.quit:
			rt.logger.Println("quit from runLamps")
			return
		case e := <-comms.lamps:
			if e.mode != cur {
				rt.logger.Printf("lamp mode %d", e.mode)
				cur = e.mode
				lit = cur != lampOff
				rt.lamps.set(lit)
				lastFlip = rt.clock.Now()
			}
		default:
		}

		if cur == lampBlink {
			now := rt.clock.Now()
			if now.Sub(lastFlip) >= dLampPhase {
				lit = !lit
				rt.lamps.set(lit)
				lastFlip = now
			}
		}

		rt.clock.Sleep(dLampSleep)
	}
}
