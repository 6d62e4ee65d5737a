package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"gotest.tools/v3/assert"
)

var testSettings configSettings
var testlog io.Closer
var cfgFile string = "./test/config.conf"

func pinixieTestMain(m *testing.M) {
	testSettings = initSettings(cfgFile)
	testlog, _ = setupLogging(testSettings, false)

	// run the tests
	code := m.Run()
	testlog.Close()

	os.Exit(code)
}

func logCaller(pc uintptr, file string, line int, ok bool) {
	if !ok {
		file = "?"
		line = 0
	}

	fn := runtime.FuncForPC(pc)
	var fnName string
	if fn == nil {
		fnName = "?()"
	} else {
		dotName := filepath.Ext(fn.Name())
		fnName = strings.TrimLeft(dotName, ".") + "()"
	}

	log.Printf("Starting %s (%s:%d)", fnName, filepath.Base(file), line)
}

// initTestRuntime builds the all-stub runtime: audit tube bank, fake
// converter plant, pinnable RTC, manual tick source
func initTestRuntime(settings configSettings) runtimeConfig {
	clock := clockwork.NewFakeClock()
	pwm := &logPWM{}

	rt := runtimeConfig{
		settings:      settings,
		comms:         initCommChannels(),
		clock:         clock,
		logger:        &defaultLogger{},
		configService: &testConfigService{},
	}
	rt.tubes = &logTubes{}
	rt.hv = newRegulator(pwm, newFakeSensor(pwm), settings.GetInt(sHVTarget))
	rt.rtc = newSimRTC(clock)
	// seed a calibrated tuning block so workers don't open with a
	// calibration pass; first-run tests clear hasCfg themselves
	nv := &logNvram{cfg: defaultHVConfig(), hasCfg: true}
	nv.cfg.calNeeded = false
	rt.nvram = nv
	rt.lamps = &logLamps{}
	rt.sounds = &noSounds{}
	rt.tick = &simTick{clock: clock}
	rt.buttons = &noButtons{}

	// main opens these before any worker runs, so tests get them open
	rt.tubes.open()
	rt.hv.open()

	return rt
}

func testRuntime() (runtimeConfig, clockwork.FakeClock, commChannels) {
	// make rt for test, log the start of the test
	logCaller(runtime.Caller(1))
	rt := initTestRuntime(testSettings)
	return rt, rt.clock.(clockwork.FakeClock), rt.comms
}

// testSettingsWith clones the shared fixture settings with overrides,
// so a test can vary a knob without polluting the rest of the run
func testSettingsWith(over map[string]interface{}) configSettings {
	s := make(map[string]interface{})
	for k, v := range testSettings.settings {
		s[k] = v
	}
	for k, v := range over {
		s[k] = v
	}
	return configSettings{settings: s}
}

func testRuntimeWith(over map[string]interface{}) (runtimeConfig, clockwork.FakeClock, commChannels) {
	logCaller(runtime.Caller(1))
	rt := initTestRuntime(testSettingsWith(over))
	return rt, rt.clock.(clockwork.FakeClock), rt.comms
}

func testQuit(rt runtimeConfig) {
	close(rt.comms.quit)
	clock := rt.clock.(clockwork.FakeClock)
	// wake anything parked in a fake sleep; a full render sweep is a
	// dozen short sleeps, so give it room to drain
	for i := 0; i < 20; i++ {
		clock.Advance(dClockPoll)
		runtime.Gosched()
	}
}

// testBlockDuration walks the fake clock forward in step increments,
// waiting for the worker to park in a sleep before each one
func testBlockDuration(clock clockwork.FakeClock, step time.Duration, d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += step {
		clock.BlockUntil(1)
		clock.Advance(step)
	}
}

// testAdvanceUntil drives the fake clock until done closes, for
// operations that end on their own. BlockUntil would race the final
// sleep, so this just advances and yields.
func testAdvanceUntil(t *testing.T, clock clockwork.FakeClock, step time.Duration, done chan struct{}) {
	t.Helper()
	for i := 0; i < 1000000; i++ {
		select {
		case <-done:
			return
		default:
		}
		clock.Advance(step)
		runtime.Gosched()
	}
	t.Fatal("operation never finished")
}

func clockMsgRead(t *testing.T, c chan clockMsg) (clockMsg, error) {
	select {
	case e := <-c:
		return e, nil
	default:
		assert.Assert(t, false, "Nothing to read from clock channel")
	}
	return clockMsg{}, nil
}

func clockMsgNoRead(t *testing.T, c chan clockMsg) {
	select {
	case e := <-c:
		assert.Assert(t, false, "Got an unexpected value on clock channel: %v", e)
	default:
	}
}

func lampRead(t *testing.T, c chan lampEffect) (lampEffect, error) {
	select {
	case e := <-c:
		return e, nil
	default:
		assert.Assert(t, false, "Nothing to read from lamp channel")
	}
	return lampEffect{}, nil
}

func lampNoRead(t *testing.T, c chan lampEffect) {
	select {
	case e := <-c:
		assert.Assert(t, false, "Got an unexpected value on lamp channel: %v", e)
	default:
	}
}
