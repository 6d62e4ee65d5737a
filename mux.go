package main

import "time"

// renderFrame makes one sweep over the tubes, leftmost first. Per
// position: cathode code first, then the anode, then HV. Teardown runs
// in the opposite order and finishes before the next position starts,
// so no two anodes are ever driven together and no cathode change is
// visible on a lit tube. Returns how many positions were actually lit.
func renderFrame(rt runtimeConfig, f frame, dwell dwellTable, mask tubeMask) int {
	lit := 0
	for pos := tubeCount - 1; pos >= 0; pos-- {
		if !mask[pos] {
			continue
		}
		rt.tubes.setCathode(bcdFor(f[pos]))
		rt.tubes.anodeOn(pos)
		rt.hv.enable()
		rt.clock.Sleep(dwell[pos])
		rt.hv.disable()
		rt.tubes.anodesOff()
		rt.clock.Sleep(dMuxGap)
		lit++
	}
	return lit
}

// renderFor sweeps the same frame repeatedly for a wall-clock duration.
// Always renders at least one sweep; an all-masked frame just burns the
// time dark.
func renderFor(rt runtimeConfig, f frame, dwell dwellTable, mask tubeMask, d time.Duration) {
	start := rt.clock.Now()
	for {
		if renderFrame(rt, f, dwell, mask) == 0 {
			rt.clock.Sleep(dClockPoll)
		}
		if rt.clock.Since(start) >= d {
			return
		}
	}
}

// blankFor holds the display dark
func blankFor(rt runtimeConfig, d time.Duration) {
	rt.hv.disable()
	rt.tubes.anodesOff()
	start := rt.clock.Now()
	for rt.clock.Since(start) < d {
		rt.clock.Sleep(dClockPoll)
	}
}
