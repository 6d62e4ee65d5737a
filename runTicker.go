package main

func startTicker(rt runtimeConfig) {
	rt.logger = &ThreadLogger{name: "Ticker"}
	wg.Add(1)
	go func() {
		defer wg.Done()
		runTicker(rt)
	}()
}

// runTicker polls the 1Hz source and forwards each edge as a tick
// message. Polling at dTickPoll oversamples the edge detector enough
// that we never miss a second.
func runTicker(rt runtimeConfig) {
	defer func() {
		rt.logger.Println("exiting runTicker")
	}()

	comms := rt.comms
	for true {
		select {
		case <-comms.quit:
			rt.logger.Println("quit from runTicker")
			rt.tick.stop()
			return
		default:
		}

		if rt.tick.ticked() {
			select {
			case comms.clock <- tickMsg():
			default:
				// clock thread is mid-calibration, drop rather than block
				rt.logger.Println("dropped a tick")
			}
		}

		rt.clock.Sleep(dTickPoll)
	}
}
