package main

// faultFrame is the stuck-clock pattern: 99 in the hour pair, a code in
// the last tube, everything between dark
func faultFrame(code digit) (frame, tubeMask) {
	var f frame
	for i := range f {
		f[i] = digitBlank
	}
	f[5] = 9
	f[4] = 9
	f[0] = code
	return f, maskOf(5, 4, 0)
}

// showFault blinks the fault pattern, 700ms lit / 300ms dark. cycles < 0
// blinks until quit, which is the no-clock-chip case: the display stays
// stuck here until someone pulls the plug.
func showFault(rt runtimeConfig, dwell dwellTable, code digit, cycles int) {
	f, m := faultFrame(code)
	for i := 0; cycles < 0 || i < cycles; i++ {
		select {
		case <-rt.comms.quit:
			return
		default:
		}
		renderFor(rt, f, dwell, m, dFaultOn)
		blankFor(rt, dFaultOff)
	}
}
