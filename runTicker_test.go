package main

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestTickerForwardsEdges(t *testing.T) {
	rt, clock, comms := testRuntime()
	tick := rt.tick.(*simTick)

	go runTicker(rt)
	clock.BlockUntil(1)

	// no edge, no message
	clock.Advance(dTickPoll)
	clock.BlockUntil(1)
	clockMsgNoRead(t, comms.clock)

	tick.fire()
	clock.Advance(dTickPoll)
	clock.BlockUntil(1)

	msg, _ := clockMsgRead(t, comms.clock)
	assert.Equal(t, msg.id, msgTick)
	clockMsgNoRead(t, comms.clock)

	// queued edges drain one per poll, nothing invented
	tick.fire()
	tick.fire()
	testBlockDuration(clock, dTickPoll, 2*dTickPoll)
	clock.BlockUntil(1)
	msg, _ = clockMsgRead(t, comms.clock)
	assert.Equal(t, msg.id, msgTick)
	msg, _ = clockMsgRead(t, comms.clock)
	assert.Equal(t, msg.id, msgTick)
	clockMsgNoRead(t, comms.clock)

	testQuit(rt)
}
