package main

// Trim mode is the escape hatch for a converter whose feedback divider
// cannot be trusted: hold both buttons through power-on, tap adjust to
// bump the period, tap mode to save and boot. Feedback stays off until
// the next calibration.

func trimFrame(top uint32) frame {
	var f frame
	for i := range f {
		f[i] = digitBlank
	}
	v := int(top)
	f[2] = digit(v / 100 % 10)
	f[1] = digit(v / 10 % 10)
	f[0] = digit(v % 10)
	return f
}

func runTrimMode(rt runtimeConfig) {
	settings := rt.settings

	if err := rt.buttons.initButtons(settings); err != nil {
		rt.logger.Println(err.Error())
		return
	}
	defer rt.buttons.closeButtons()

	pins := make(map[string]buttonMap)
	pins[sModeBtn] = settings.GetButtonMap(sModeBtn)
	pins[sAdjBtn] = settings.GetButtonMap(sAdjBtn)
	if err := rt.buttons.setupButtons(pins, rt); err != nil {
		rt.logger.Println(err.Error())
		return
	}

	btns, err := checkButtons(rt)
	if err != nil || !btns[sModeBtn].state.pressed || !btns[sAdjBtn].state.pressed {
		return
	}

	rt.logger.Println("trim mode")
	rt.hv.setFeedback(false)
	rt.hv.enable()
	defer rt.hv.disable()

	dwell := newDwellTable(settings.GetDuration(sDwell))
	adjWasDown := true
	modeWasDown := true

	for true {
		select {
		case <-rt.comms.quit:
			return
		default:
		}

		top := rt.hv.period()
		renderFor(rt, trimFrame(top), dwell, maskAll(true), dTrimHold)

		btns, err = checkButtons(rt)
		if err != nil {
			return
		}
		adj := btns[sAdjBtn].state.pressed
		mode := btns[sModeBtn].state.pressed

		if adj && !adjWasDown {
			next := top + pwmTrimStep
			if next > pwmTopMax {
				next = pwmTopMin
			}
			rt.hv.setPeriod(next)
		}
		if mode && !modeWasDown {
			break
		}
		adjWasDown = adj
		modeWasDown = mode
	}

	cfg := rt.hv.config()
	cfg.calNeeded = false
	saveHVConfig(rt, cfg)
	rt.logger.Printf("trim saved: period %d", rt.hv.period())
}
