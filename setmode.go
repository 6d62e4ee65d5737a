package main

import "time"

// edit stages, advanced by the mode button only
const (
	setIdle = iota
	setMinutes
	setHours
	setYear
	setMonth
	setDay
)

// Day ranges per month. February always allows 29; the RTC does its own
// leap handling and a bad Feb 29 just rolls over on commit.
var monthDays = [12]int{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func maxDay(month int) int {
	return monthDays[month-1]
}

// pendingDateTime is the edit buffer; seconds always commit as zero
type pendingDateTime struct {
	year  int // two digit
	month int
	day   int
	hour  int
	min   int
}

func pendingFrom(t time.Time) pendingDateTime {
	return pendingDateTime{
		year:  t.Year() % 100,
		month: int(t.Month()),
		day:   t.Day(),
		hour:  t.Hour(),
		min:   t.Minute(),
	}
}

func (p pendingDateTime) toTime() time.Time {
	return time.Date(2000+p.year, time.Month(p.month), p.day, p.hour, p.min, 0, 0, time.Local)
}

// setMode is the clock-setting state machine plus the read-only
// date-show toggle that shares the adjust button
type setMode struct {
	stage    int
	pending  pendingDateTime
	showDate bool
}

func (sm *setMode) active() bool {
	return sm.stage != setIdle
}

// modePress advances the stage. Leaving the last stage reports a commit
// so the caller can write the clock chip.
func (sm *setMode) modePress(now time.Time) (commit bool) {
	switch sm.stage {
	case setIdle:
		sm.showDate = false
		sm.pending = pendingFrom(now)
		sm.stage = setMinutes
	case setMinutes:
		sm.stage = setHours
	case setHours:
		sm.stage = setYear
	case setYear:
		sm.stage = setMonth
	case setMonth:
		sm.stage = setDay
		// the month may have shrunk under the day
		if sm.pending.day > maxDay(sm.pending.month) {
			sm.pending.day = maxDay(sm.pending.month)
		}
	case setDay:
		sm.stage = setIdle
		return true
	}
	return false
}

// adjustPress bumps the field under edit, wrapping in its legal range.
// Outside of editing it toggles the date display instead.
func (sm *setMode) adjustPress() {
	switch sm.stage {
	case setIdle:
		sm.showDate = !sm.showDate
	case setMinutes:
		sm.pending.min = (sm.pending.min + 1) % 60
	case setHours:
		sm.pending.hour = (sm.pending.hour + 1) % 24
	case setYear:
		sm.pending.year = (sm.pending.year + 1) % 100
	case setMonth:
		sm.pending.month = sm.pending.month%12 + 1
	case setDay:
		sm.pending.day = sm.pending.day%maxDay(sm.pending.month) + 1
	}
}

// overlay is what the tubes show while editing: HH MM with the seconds
// pair dark for the time stages, YY MM DD for the date stages. No
// leading-zero blanking here, the operator needs to see every digit.
func (sm *setMode) overlay() (frame, tubeMask) {
	var f frame
	switch sm.stage {
	case setMinutes, setHours:
		f[5], f[4] = digitsOf(sm.pending.hour)
		f[3], f[2] = digitsOf(sm.pending.min)
		f[1], f[0] = digitBlank, digitBlank
		return f, maskOf(5, 4, 3, 2)
	default:
		f[5], f[4] = digitsOf(sm.pending.year)
		f[3], f[2] = digitsOf(sm.pending.month)
		f[1], f[0] = digitsOf(sm.pending.day)
		return f, maskAll(true)
	}
}
