package main

// depoison runs the cathode cleaning sweep: positions left to right,
// each repeated `reps` times through all ten digits, one lit tube at a
// time. The whole buffer carries the digit so a decoder glitch can't
// strike a stale neighbor. Live frame and mask come back exactly as
// they were; the seconds counter is forced so the next tick does a full
// re-read.
func depoison(rt runtimeConfig, st *clockState) {
	rt.logger.Printf("depoison start")

	saveFrame := st.live
	saveMask := st.mask

	reps := rt.settings.GetInt(sDepoisonReps)
	if reps < 1 {
		reps = 1
	}

	for pos := tubeCount - 1; pos >= 0; pos-- {
		for r := 0; r < reps; r++ {
			for d := digit(0); d <= 9; d++ {
				for i := range st.live {
					st.live[i] = d
				}
				st.mask = maskOf(pos)
				renderFor(rt, st.live, st.dwell, st.mask, dDepoisonHold)
			}
		}
	}

	st.live = saveFrame
	st.mask = saveMask
	st.secs = 60

	rt.logger.Printf("depoison done")
}
