package main

import "time"

// digit is one tube's value; anything above 9 renders dark through the
// decoder's unused codes
type digit byte

const digitBlank digit = 0x0f

// frame indexes run right to left: 0 is seconds-units, 5 is hours-tens
type frame [tubeCount]digit

type tubeMask [tubeCount]bool

type dwellTable [tubeCount]time.Duration

// bcdFor maps a digit to the 4 bit decoder input. The K155ID1 treats
// codes 10-15 as "no cathode", which is how blanking works.
func bcdFor(d digit) byte {
	if d > 9 {
		return byte(digitBlank)
	}
	return byte(d)
}

func digitsOf(v int) (digit, digit) {
	return digit(v / 10 % 10), digit(v % 10)
}

// timeFrame builds the HH MM SS frame. A zero tens-of-hours digit goes
// dark, and the units digit follows it only when it is also zero.
func timeFrame(t time.Time) frame {
	var f frame
	f[5], f[4] = digitsOf(t.Hour())
	f[3], f[2] = digitsOf(t.Minute())
	f[1], f[0] = digitsOf(t.Second())
	if f[5] == 0 {
		f[5] = digitBlank
		if f[4] == 0 {
			f[4] = digitBlank
		}
	}
	return f
}

// dateFrame builds the YY MM DD frame, no blanking
func dateFrame(t time.Time) frame {
	var f frame
	f[5], f[4] = digitsOf(t.Year() % 100)
	f[3], f[2] = digitsOf(int(t.Month()))
	f[1], f[0] = digitsOf(t.Day())
	return f
}

func maskAll(on bool) tubeMask {
	var m tubeMask
	for i := range m {
		m[i] = on
	}
	return m
}

func maskOf(positions ...int) tubeMask {
	var m tubeMask
	for _, p := range positions {
		m[p] = true
	}
	return m
}

func clampDwell(d time.Duration) time.Duration {
	if d < dwellMin {
		return dwellMin
	}
	if d > dwellMax {
		return dwellMax
	}
	return d
}

func newDwellTable(d time.Duration) dwellTable {
	var t dwellTable
	for i := range t {
		t[i] = clampDwell(d)
	}
	return t
}

func (t *dwellTable) set(pos int, d time.Duration) {
	if pos < 0 || pos >= tubeCount {
		return
	}
	t[pos] = clampDwell(d)
}
