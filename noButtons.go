package main

import (
	"github.com/stianeikeland/go-rpio/v4"
)

type noButtons struct {
	buttons map[string]button
	states  map[string]rpio.State
}

func releasedState(b buttonMap) rpio.State {
	if b.pullup {
		return rpio.High
	}
	return rpio.Low
}

func (nb *noButtons) getButtons() *map[string]button {
	return &nb.buttons
}

func (nb *noButtons) readButtons(rt runtimeConfig) (map[string]rpio.State, error) {
	return nb.states, nil
}

func (nb *noButtons) setupButtons(pins map[string]buttonMap, rt runtimeConfig) error {
	nb.buttons = make(map[string]button)
	// pin states survive a re-setup, so a press held through boot
	// still reads as held
	if nb.states == nil {
		nb.states = make(map[string]rpio.State)
	}

	for k, v := range pins {
		nb.buttons[k] = button{button: v}
		if _, ok := nb.states[k]; !ok {
			nb.states[k] = releasedState(v)
		}
	}
	return nil
}

func (nb *noButtons) initButtons(settings configSettings) error {
	return nil
}

func (nb *noButtons) closeButtons() {
}

func (nb *noButtons) set(btns map[string]rpio.State) {
	for k, v := range btns {
		nb.states[k] = v
	}
}

func (nb *noButtons) clear() {
	for k, v := range nb.buttons {
		nb.states[k] = releasedState(v.button)
	}
}
