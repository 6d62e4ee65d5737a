package main

// logLamps tracks the lamp line and counts flips
type logLamps struct {
	on     bool
	flips  int
	opened bool
	closed bool
}

func (ll *logLamps) open() error {
	ll.opened = true
	return nil
}

func (ll *logLamps) set(on bool) {
	if on != ll.on {
		ll.flips++
	}
	ll.on = on
}

func (ll *logLamps) close() {
	ll.closed = true
}
