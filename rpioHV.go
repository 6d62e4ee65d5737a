package main

import (
	"errors"
	"log"

	"github.com/stianeikeland/go-rpio/v4"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"pinixie/mcp3008"
)

// rpioPWM is the boost converter gate drive on the hardware PWM
// peripheral. on/top land in the duty and range registers directly.
type rpioPWM struct {
	pin rpio.Pin
}

func (hw *rpioPWM) open() error {
	err := rpio.Open()
	if err != nil {
		log.Println(err.Error())
		return err
	}
	hw.pin = rpio.Pin(pinHVPwm)
	hw.pin.Pwm()
	hw.pin.Freq(pwmClockHz)
	hw.pin.DutyCycle(0, defaultTop)
	return nil
}

func (hw *rpioPWM) set(on uint32, top uint32) {
	hw.pin.DutyCycle(on, top)
}

func (hw *rpioPWM) close() {
	// park the gate low so the converter cannot free-run
	hw.pin.DutyCycle(0, defaultTop)
	hw.pin.Output()
	hw.pin.Low()
}

// mcpSensor reads the divider tap through an MCP3008 on the SPI bus
type mcpSensor struct {
	devName string
	channel int
	port    spi.PortCloser
	adc     *mcp3008.Dev
}

func newMCPSensor(settings configSettings) *mcpSensor {
	return &mcpSensor{
		devName: settings.GetString(sSPIDev),
		channel: settings.GetInt(sADCChan),
	}
}

func (mc *mcpSensor) open() error {
	if _, err := host.Init(); err != nil {
		return err
	}
	port, err := spireg.Open(mc.devName)
	if err != nil {
		return err
	}
	conn, err := port.Connect(1*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return err
	}
	mc.port = port
	mc.adc = mcp3008.New(conn)
	return nil
}

func (mc *mcpSensor) readRaw() (int, error) {
	if mc.adc == nil {
		return 0, errors.New("adc not open")
	}
	return mc.adc.Read(mc.channel)
}

func (mc *mcpSensor) close() {
	if mc.port != nil {
		mc.port.Close()
		mc.port = nil
		mc.adc = nil
	}
}
