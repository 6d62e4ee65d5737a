//go:build noaudio
// +build noaudio

package main

func init() {
	features = append(features, "noaudio")
}

type realSounds struct {
}

func (rs *realSounds) playIt(rt runtimeConfig, sfreqs []string, timing []string, stop chan bool, done chan bool) {
	rt.logger.Println("STUB: playIt")
}

func (rs *realSounds) playMP3(rt runtimeConfig, fName string, loop bool, stop chan bool, done chan bool) {
	rt.logger.Println("STUB: playMP3 " + fName)
}
