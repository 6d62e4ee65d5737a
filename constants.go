package main

import "time"

// settings keys
const (
	sLogFile      = "logFile"
	sConsoleLog   = "consoleLog"
	sSimHW        = "simHardware"
	sKeyButtons   = "keyboardButtons"
	sDebugDump    = "debugDump"
	sBlink        = "blinkLamps"
	sChime        = "chime"
	sChimeFile    = "chimeFile"
	sAPIListen    = "apiListen"
	sAPISecret    = "apiSecret"
	sI2CBus       = "i2cBus"
	sRTCDev       = "rtcDevice"
	sNvramDev     = "nvramDevice"
	sSPIDev       = "spiDevice"
	sADCChan      = "adcChannel"
	sHVTarget     = "hvTargetVolts"
	sDwell        = "tubeDwell"
	sDepoisonHour = "depoisonHour"
	sDepoisonReps = "depoisonRepeats"
	sModeBtn      = "modeButton"
	sAdjBtn       = "adjustButton"
)

// loop and timing tunables
const (
	dClockPoll    = 2 * time.Millisecond
	dMuxGap       = 50 * time.Microsecond
	dButtonSleep  = 10 * time.Millisecond
	dTickPoll     = 25 * time.Millisecond
	dLampSleep    = 50 * time.Millisecond
	dLampPhase    = 500 * time.Millisecond
	dAPISleep     = 100 * time.Millisecond
	dDepoisonHold = 40 * time.Millisecond
	dFaultOn      = 700 * time.Millisecond
	dFaultOff     = 300 * time.Millisecond
	dCalibStep    = 2 * time.Millisecond
	dChimeLen     = 2 * time.Second
	dTrimHold     = 150 * time.Millisecond
)

// pin assignments (BCM numbering); buttons come from settings
var (
	pinBCD   = [4]int{22, 23, 24, 25} // decoder A..D, LSB first
	pinAnode = [6]int{5, 6, 12, 13, 16, 26}
)

const (
	pinHVPwm = 18 // hardware PWM0
	pinSQW   = 17
	pinLamps = 21
)

// boost converter PWM limits, in PWM clock ticks
const (
	pwmClockHz   = 9600000
	pwmTopMin    = 120
	pwmTopMax    = 960
	pwmPulseMin  = 16
	pwmPulseMax  = 240
	pwmMargin    = 8
	pwmTrimStep  = 10
	defaultTop   = 480
	defaultPulse = 128
)

// HV feedback: 1M/15k divider into a 10 bit ADC at 3.3V
const (
	dividerHighOhms = 1000000
	dividerLowOhms  = 15000
	adcVref         = 3.3
	adcScale        = 1023
	hvSmoothing     = 800
	hvVoltsMin      = 170
	hvVoltsMax      = 200
	defaultHVVolts  = 185
	hvRejectLo      = 40
	hvRejectHi      = 1000
	hvRejectLimit   = 200
)

// calibration pass lengths; every 8th iteration moves the pulse width
const (
	calSettleCount = 4000
	calStride      = 8
	calSpread      = 50
)

// display geometry
const (
	tubeCount    = 6
	dwellMin     = 500 * time.Microsecond
	dwellMax     = 2000 * time.Microsecond
	dwellDefault = 1500 * time.Microsecond
)

// fault codes shown in the rightmost tube
const (
	faultClockAbsent = 0
	faultPowerLoss   = 1
	faultBlinkCount  = 4
)

// what the RTC gets set to after losing power
var fallbackTime = time.Date(2000, 1, 1, 0, 0, 0, 0, time.Local)
