package main

import (
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func TestDefaultSettings(t *testing.T) {
	s := defaultSettings()

	assert.Equal(t, s.GetInt(sHVTarget), defaultHVVolts)
	assert.Equal(t, s.GetDuration(sDwell), dwellDefault)
	assert.Equal(t, s.GetByte(sRTCDev), byte(0x68))
	assert.Equal(t, s.GetByte(sNvramDev), byte(0x57))
	assert.Equal(t, s.GetInt(sDepoisonHour), 4)
	assert.Equal(t, s.GetInt(sDepoisonReps), 5)
	assert.Equal(t, s.GetBool(sChime), false)
	assert.Equal(t, s.GetBool(sBlink), true)
	assert.Equal(t, s.GetString(sAPIListen), ":8080")
	assert.Equal(t, s.GetButtonMap(sModeBtn), buttonMap{pinNum: 20, key: "m", pullup: true})
}

func TestSettingsFromJSON(t *testing.T) {
	s := defaultSettings()
	err := s.settingsFromJSON([]byte(`{
		"hvTargetVolts": 190,
		"tubeDwell": "900us",
		"rtcDevice": 105,
		"nvramDevice": "0x50",
		"i2cBus": 0,
		"consoleLog": "true",
		"blinkLamps": false,
		"apiSecret": "hunter2",
		"adjustButton": { "pin": 13 }
	}`))
	assert.NilError(t, err)

	assert.Equal(t, s.GetInt(sHVTarget), 190)
	assert.Equal(t, s.GetDuration(sDwell), 900*time.Microsecond)
	assert.Equal(t, s.GetByte(sRTCDev), byte(105))
	assert.Equal(t, s.GetByte(sNvramDev), byte(0x50))
	assert.Equal(t, s.GetInt(sI2CBus), 0)
	assert.Equal(t, s.GetBool(sConsoleLog), true)
	assert.Equal(t, s.GetBool(sBlink), false)
	assert.Equal(t, s.GetString(sAPISecret), "hunter2")
	// partial button override keeps the other fields
	assert.Equal(t, s.GetButtonMap(sAdjBtn), buttonMap{pinNum: 13, key: "a", pullup: true})
	// untouched keys keep their defaults
	assert.Equal(t, s.GetInt(sDepoisonHour), 4)
	assert.Equal(t, s.GetString(sAPIListen), ":8080")
}

func TestSettingsBadValue(t *testing.T) {
	s := defaultSettings()
	assert.Assert(t, s.settingsFromJSON([]byte(`{"hvTargetVolts": "lots"}`)) != nil)

	s = defaultSettings()
	assert.Assert(t, s.settingsFromJSON([]byte(`{"tubeDwell": "fast"}`)) != nil)

	s = defaultSettings()
	assert.Assert(t, s.settingsFromJSON([]byte(`{"consoleLog": "maybe"}`)) != nil)

	s = defaultSettings()
	assert.Assert(t, s.settingsFromJSON([]byte(`{"nvramDevice": "zz"}`)) != nil)
}

func TestAccessorFallbacks(t *testing.T) {
	s := defaultSettings()

	// wrong type comes back as the zero-ish value, not a panic
	assert.Equal(t, s.GetString(sHVTarget), "")
	assert.Equal(t, s.GetBool(sLogFile), false)
	assert.Equal(t, s.GetDuration(sHVTarget), time.Duration(-1))
	assert.Equal(t, s.GetInt(sLogFile), 0)
	assert.Equal(t, s.GetButtonMap(sChime), buttonMap{})

	// byte accessor accepts plain ints
	assert.Equal(t, s.GetByte(sI2CBus), byte(1))
	assert.Equal(t, s.GetByte(sLogFile), byte(0))

	// missing keys
	assert.Equal(t, s.GetInt("nope"), 0)
	assert.Equal(t, s.GetString("nope"), "")
}

func TestFixtureSettings(t *testing.T) {
	// testSettings came through initSettings with the test config on top
	assert.Equal(t, testSettings.GetBool(sSimHW), true)
	assert.Equal(t, testSettings.GetInt(sHVTarget), 185)
	assert.Equal(t, testSettings.GetDuration(sDwell), 1500*time.Microsecond)
	assert.Equal(t, testSettings.GetInt(sDepoisonHour), 3)
	assert.Equal(t, testSettings.GetInt(sDepoisonReps), 2)
	assert.Equal(t, testSettings.GetString(sAPISecret), "test-secret")
	assert.Equal(t, testSettings.GetButtonMap(sModeBtn).pinNum, 20)
}
