package main

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// simTick stands in for the 1Hz square wave. In auto mode it derives
// edges from second transitions of the process clock; otherwise tests
// queue edges by hand with fire.
type simTick struct {
	clock   clockwork.Clock
	auto    bool
	last    time.Time
	pending int
	started bool
}

func (tk *simTick) start() error {
	tk.started = true
	tk.last = tk.clock.Now().Truncate(time.Second)
	return nil
}

func (tk *simTick) fire() {
	tk.pending++
}

func (tk *simTick) ticked() bool {
	if tk.pending > 0 {
		tk.pending--
		return true
	}
	if !tk.auto {
		return false
	}
	now := tk.clock.Now().Truncate(time.Second)
	if now.After(tk.last) {
		tk.last = tk.last.Add(time.Second)
		return true
	}
	return false
}

func (tk *simTick) stop() {
	tk.started = false
}
