package main

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestLampModes(t *testing.T) {
	rt, clock, comms := testRuntime()
	ll := rt.lamps.(*logLamps)

	go runLamps(rt)
	clock.BlockUntil(1)

	comms.lamps <- lampOnEffect()
	testBlockDuration(clock, dLampSleep, 2*dLampSleep)
	assert.Equal(t, ll.on, true)
	assert.Equal(t, ll.flips, 1)

	comms.lamps <- lampOffEffect()
	testBlockDuration(clock, dLampSleep, 2*dLampSleep)
	assert.Equal(t, ll.on, false)
	flips := ll.flips

	// repeating the mode is not a flip
	comms.lamps <- lampOffEffect()
	testBlockDuration(clock, dLampSleep, 2*dLampSleep)
	assert.Equal(t, ll.flips, flips)

	testQuit(rt)
}

func TestLampBlink(t *testing.T) {
	rt, clock, comms := testRuntime()
	ll := rt.lamps.(*logLamps)

	go runLamps(rt)
	clock.BlockUntil(1)

	// blink starts lit, then toggles each phase
	comms.lamps <- lampBlinkEffect()
	testBlockDuration(clock, dLampSleep, 2*dLampSleep)
	assert.Equal(t, ll.on, true)

	testBlockDuration(clock, dLampSleep, dLampPhase)
	assert.Equal(t, ll.on, false)
	testBlockDuration(clock, dLampSleep, dLampPhase)
	assert.Equal(t, ll.on, true)

	testQuit(rt)
}
