package main

// one anode-on event: which tube fired and what the decoder held
type tubeLight struct {
	anode   int
	cathode digit
}

// logTubes stands in for the tube board and keeps enough history to
// check the multiplexer's manners afterwards.
type logTubes struct {
	cathode digit
	anode   int // -1 for none
	cur     [tubeCount]digit
	entries []tubeLight
	overlap bool // a second anode fired before anodesOff
	ghosted bool // cathode moved while an anode was up
	opened  bool
	closed  bool
	dump    bool
	logger  flogger
}

func (lt *logTubes) open() error {
	lt.anode = -1
	lt.cathode = digitBlank
	for i := range lt.cur {
		lt.cur[i] = digitBlank
	}
	lt.entries = make([]tubeLight, 0)
	lt.opened = true
	lt.logger = &ThreadLogger{name: "Tubes"}
	return nil
}

func (lt *logTubes) setCathode(code byte) {
	if lt.anode != -1 && digit(code) != lt.cathode {
		lt.ghosted = true
	}
	lt.cathode = digit(code)
}

func (lt *logTubes) anodeOn(pos int) {
	if lt.anode != -1 {
		lt.overlap = true
	}
	lt.anode = pos
	lt.cur[pos] = lt.cathode
	lt.entries = append(lt.entries, tubeLight{anode: pos, cathode: lt.cathode})
	if lt.dump {
		lt.logger.Printf("tube %d <- %x", pos, byte(lt.cathode))
	}
}

func (lt *logTubes) anodesOff() {
	lt.anode = -1
}

func (lt *logTubes) close() {
	lt.anodesOff()
	lt.closed = true
}

func (lt *logTubes) reset() {
	lt.entries = lt.entries[:0]
	lt.overlap = false
	lt.ghosted = false
}
