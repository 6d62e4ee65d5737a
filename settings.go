package main

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
)

// buttonMap ties a logical button to a GPIO pin (or a key in simulated
// mode) and its wiring polarity
type buttonMap struct {
	pinNum int
	key    string
	pullup bool
}

// keep settings generic, type-convert on the fly
type configSettings struct {
	settings map[string]interface{}
}

func defaultSettings() configSettings {
	s := make(map[string]interface{})

	// setting the type here makes the conversion "automatic" later
	s[sLogFile] = "/var/log/pinixie.log"
	s[sConsoleLog] = false
	s[sKeyButtons] = true
	s[sDebugDump] = false
	s[sBlink] = true
	s[sChime] = false
	s[sChimeFile] = ""
	s[sAPIListen] = ":8080"
	s[sAPISecret] = "pinixie"
	s[sI2CBus] = 1
	s[sRTCDev] = byte(0x68)
	s[sNvramDev] = byte(0x57)
	s[sSPIDev] = ""
	s[sADCChan] = 0
	s[sHVTarget] = defaultHVVolts
	s[sDwell] = dwellDefault
	s[sDepoisonHour] = 4
	s[sDepoisonReps] = 5
	s[sModeBtn] = buttonMap{pinNum: 20, key: "m", pullup: true}
	s[sAdjBtn] = buttonMap{pinNum: 27, key: "a", pullup: true}

	sim := true
	if runtime.GOARCH == "arm" || runtime.GOARCH == "arm64" {
		sim = false
	}
	s[sSimHW] = sim

	return configSettings{settings: s}
}

func (s *configSettings) settingsFromJSON(data []byte) error {
	tmp := defaultSettings()
	for k, initVal := range tmp.settings {
		// ignore missing fields
		if _, _, _, err := jsonparser.Get(data, k); err != nil {
			continue
		}

		var err error
		switch initVal.(type) {
		case uint8:
			var val uint64
			valSigned, err2 := jsonparser.GetInt(data, k)
			if err2 != nil {
				// also accept hex strings like "0x68"
				valString, err3 := jsonparser.GetString(data, k)
				if err3 == nil {
					valSigned, err2 = strconv.ParseInt(valString, 0, 64)
					val = uint64(valSigned)
				}
			} else {
				val = uint64(valSigned)
			}
			err = err2
			if err == nil {
				s.settings[k] = byte(val)
			}
		case int:
			var val int64
			val, err = jsonparser.GetInt(data, k)
			if err == nil {
				s.settings[k] = int(val)
			}
		case bool:
			var bVal bool
			bVal, err = jsonparser.GetBoolean(data, k)
			if err != nil {
				// try true and false as strings
				str, _ := jsonparser.GetString(data, k)
				switch strings.ToLower(str) {
				case "true":
					bVal = true
				case "false":
					bVal = false
				default:
					return err
				}
				err = nil
			}
			s.settings[k] = bVal
		case time.Duration:
			var dur string
			dur, err = jsonparser.GetString(data, k)
			if err == nil {
				var dur2 time.Duration
				dur2, err = time.ParseDuration(dur)
				if err == nil {
					s.settings[k] = dur2
				}
			}
		case string:
			s.settings[k], err = jsonparser.GetString(data, k)
		case buttonMap:
			bm := initVal.(buttonMap)
			if pin, err2 := jsonparser.GetInt(data, k, "pin"); err2 == nil {
				bm.pinNum = int(pin)
			}
			if key, err2 := jsonparser.GetString(data, k, "key"); err2 == nil {
				bm.key = key
			}
			if pullup, err2 := jsonparser.GetBoolean(data, k, "pullup"); err2 == nil {
				bm.pullup = pullup
			}
			s.settings[k] = bm
		default:
			err = fmt.Errorf("Bad type: %T", initVal)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func initSettings(configFile string) configSettings {
	// defaults first, then the config file on top
	s := defaultSettings()

	data, err := os.ReadFile(configFile)
	if err != nil {
		log.Fatalf("Could not load conf file '%s', terminating", configFile)
	}

	log.Printf("Reading configuration from '%s'", configFile)

	if err := s.settingsFromJSON(data); err != nil {
		log.Fatal(err.Error())
	}

	return s
}

func (s *configSettings) GetString(key string) string {
	switch v := s.settings[key].(type) {
	case string:
		return v
	default:
		return ""
	}
}

func (s *configSettings) GetBool(key string) bool {
	switch v := s.settings[key].(type) {
	case bool:
		return v
	default:
		return false
	}
}

func (s *configSettings) GetDuration(key string) time.Duration {
	switch v := s.settings[key].(type) {
	case time.Duration:
		return v
	default:
		return -1
	}
}

func (s *configSettings) GetByte(key string) byte {
	switch v := s.settings[key].(type) {
	case byte:
		return v
	case int: // cast to byte
		return byte(v)
	default:
		return 0
	}
}

func (s *configSettings) GetInt(key string) int {
	switch v := s.settings[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func (s *configSettings) GetButtonMap(key string) buttonMap {
	switch v := s.settings[key].(type) {
	case buttonMap:
		return v
	default:
		return buttonMap{}
	}
}

func (s *configSettings) Dump() {
	for k, v := range s.settings {
		log.Printf("%s : %T: %v", k, v, v)
	}
}
