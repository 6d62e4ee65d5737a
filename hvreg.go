package main

import (
	"fmt"
	"sync"
)

// hvConfig is the persisted tuning block for the boost converter
type hvConfig struct {
	pulse       uint32
	top         uint32
	targetVolts int
	calNeeded   bool
}

func defaultHVConfig() hvConfig {
	return hvConfig{
		pulse:       defaultPulse,
		top:         defaultTop,
		targetVolts: defaultHVVolts,
		calNeeded:   true,
	}
}

// sanitized falls back to the compiled default for any field that came
// out of storage outside its legal range
func (c hvConfig) sanitized() hvConfig {
	out := c
	def := defaultHVConfig()
	if c.pulse < pwmPulseMin || c.pulse > pwmPulseMax {
		out.pulse = def.pulse
	}
	if c.top < pwmTopMin || c.top > pwmTopMax {
		out.top = def.top
	}
	if c.targetVolts < hvVoltsMin || c.targetVolts > hvVoltsMax {
		out.targetVolts = def.targetVolts
	}
	return out
}

// thresholdFor maps a target tube voltage to the ADC count seen through
// the feedback divider
func thresholdFor(volts int) int {
	v := float64(volts) * dividerLowOhms / (dividerHighOhms + dividerLowOhms)
	return int(v/adcVref*adcScale + 0.5)
}

func stepFor(diff int) uint32 {
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff > 20:
		return 50
	case diff > 10:
		return 5
	default:
		return 1
	}
}

// hvRegulator owns the converter's period (top) and pulse width (on).
// Regulation moves the period only; the pulse width is fixed between
// calibrations. Raising the period raises the output voltage.
type hvRegulator struct {
	mu     sync.Mutex
	pwm    boostPWM
	sensor hvSensor

	volts  int // configured target, volts
	target int // same, in ADC counts

	top uint32
	on  uint32
	lit bool

	acc     int64
	seeded  bool
	rejects int

	feedback bool
	broken   bool
}

func newRegulator(pwm boostPWM, sensor hvSensor, targetVolts int) *hvRegulator {
	return &hvRegulator{
		pwm:      pwm,
		sensor:   sensor,
		volts:    targetVolts,
		target:   thresholdFor(targetVolts),
		top:      defaultTop,
		on:       defaultPulse,
		feedback: true,
	}
}

func (hv *hvRegulator) open() error {
	if err := hv.pwm.open(); err != nil {
		return err
	}
	if err := hv.sensor.open(); err != nil {
		return err
	}
	hv.pushLocked()
	return nil
}

func (hv *hvRegulator) close() {
	hv.disable()
	hv.sensor.close()
	hv.pwm.close()
}

// configure applies a loaded tuning block
func (hv *hvRegulator) configure(cfg hvConfig) {
	hv.mu.Lock()
	defer hv.mu.Unlock()
	hv.volts = cfg.targetVolts
	hv.target = thresholdFor(cfg.targetVolts)
	hv.setPulseWidthLocked(cfg.pulse)
	hv.setPeriodLocked(cfg.top)
}

func (hv *hvRegulator) config() hvConfig {
	hv.mu.Lock()
	defer hv.mu.Unlock()
	return hvConfig{pulse: hv.on, top: hv.top, targetVolts: hv.volts}
}

// setPulseWidthLocked clamps on into [pulseMin, pulseMax] and then
// keeps on <= top - margin by raising the period. pulseMax + margin is
// well under topMax, so the raise always lands in range.
func (hv *hvRegulator) setPulseWidthLocked(on uint32) {
	if on < pwmPulseMin {
		on = pwmPulseMin
	}
	if on > pwmPulseMax {
		on = pwmPulseMax
	}
	hv.on = on
	if hv.on > hv.top-pwmMargin {
		hv.top = hv.on + pwmMargin
	}
	hv.pushLocked()
}

func (hv *hvRegulator) setPeriodLocked(top uint32) {
	if top < pwmTopMin {
		top = pwmTopMin
	}
	if top > pwmTopMax {
		top = pwmTopMax
	}
	hv.top = top
	if hv.on > hv.top-pwmMargin {
		hv.top = hv.on + pwmMargin
	}
	hv.pushLocked()
}

func (hv *hvRegulator) setPulseWidth(on uint32) {
	hv.mu.Lock()
	defer hv.mu.Unlock()
	hv.setPulseWidthLocked(on)
}

func (hv *hvRegulator) setPeriod(top uint32) {
	hv.mu.Lock()
	defer hv.mu.Unlock()
	hv.setPeriodLocked(top)
}

func (hv *hvRegulator) pushLocked() {
	if hv.lit {
		hv.pwm.set(hv.on, hv.top)
	} else {
		hv.pwm.set(0, hv.top)
	}
}

// enable and disable gate the converter output without touching the
// period register, so there is no partial-cycle glitch
func (hv *hvRegulator) enable() {
	hv.mu.Lock()
	defer hv.mu.Unlock()
	hv.lit = true
	hv.pushLocked()
}

func (hv *hvRegulator) disable() {
	hv.mu.Lock()
	defer hv.mu.Unlock()
	hv.lit = false
	hv.pushLocked()
}

func (hv *hvRegulator) period() uint32 {
	hv.mu.Lock()
	defer hv.mu.Unlock()
	return hv.top
}

func (hv *hvRegulator) pulseWidth() uint32 {
	hv.mu.Lock()
	defer hv.mu.Unlock()
	return hv.on
}

func (hv *hvRegulator) failed() bool {
	hv.mu.Lock()
	defer hv.mu.Unlock()
	return hv.broken
}

// setFeedback turns closed-loop regulation on or off. Turning it on
// also forgives any latched sensor failure.
func (hv *hvRegulator) setFeedback(on bool) {
	hv.mu.Lock()
	defer hv.mu.Unlock()
	hv.feedback = on
	if on {
		hv.broken = false
		hv.rejects = 0
	}
}

func (hv *hvRegulator) avgLocked() int {
	return int(hv.acc / hvSmoothing)
}

// sampleLocked folds one divider reading into the running average.
// Readings outside the plausible window never touch the average; a
// long streak of them latches the regulator off.
func (hv *hvRegulator) sampleLocked() (int, error) {
	raw, err := hv.sensor.readRaw()
	if err == nil && (raw < hvRejectLo || raw > hvRejectHi) {
		err = fmt.Errorf("hv reading %d outside [%d, %d]", raw, hvRejectLo, hvRejectHi)
	}
	if err != nil {
		hv.rejects++
		if hv.rejects >= hvRejectLimit {
			hv.broken = true
			hv.feedback = false
		}
		return hv.avgLocked(), err
	}
	hv.rejects = 0
	if !hv.seeded {
		hv.acc = int64(raw) * hvSmoothing
		hv.seeded = true
	} else {
		hv.acc = hv.acc - hv.acc/hvSmoothing + int64(raw)
	}
	return hv.avgLocked(), nil
}

func (hv *hvRegulator) sample() (int, error) {
	hv.mu.Lock()
	defer hv.mu.Unlock()
	return hv.sampleLocked()
}

func (hv *hvRegulator) reseed() {
	hv.mu.Lock()
	defer hv.mu.Unlock()
	hv.seeded = false
}

// stepTowardLocked is one bang-bang correction: sample, then move the
// period one step in the direction that closes the error
func (hv *hvRegulator) stepTowardLocked(target int) error {
	avg, err := hv.sampleLocked()
	if err != nil {
		return err
	}
	diff := target - avg
	if diff == 0 {
		return nil
	}
	step := stepFor(diff)
	if diff > 0 {
		hv.setPeriodLocked(hv.top + step)
	} else {
		hv.setPeriodLocked(hv.top - step)
	}
	return nil
}

// regulationStep runs one correction at the configured target. Called
// once per clock loop while feedback is on.
func (hv *hvRegulator) regulationStep() error {
	hv.mu.Lock()
	defer hv.mu.Unlock()
	if !hv.feedback {
		return nil
	}
	return hv.stepTowardLocked(hv.target)
}

// settle runs period-only regulation toward target for a fixed number
// of passes at the calibration cadence
func (hv *hvRegulator) settle(rt runtimeConfig, target int) error {
	for i := 0; i < calSettleCount; i++ {
		hv.mu.Lock()
		err := hv.stepTowardLocked(target)
		broken := hv.broken
		hv.mu.Unlock()
		if broken {
			return err
		}
		rt.clock.Sleep(dCalibStep)
	}
	return nil
}

// walkPulse moves the pulse width by delta on every 8th iteration until
// crossed reports the smoothed reading has passed the target, then
// returns the pulse width it stopped at
func (hv *hvRegulator) walkPulse(rt runtimeConfig, delta int, crossed func(avg int) bool) (uint32, error) {
	limit := (pwmPulseMax - pwmPulseMin + 2*hvSmoothing) * calStride
	for i := 0; i < limit; i++ {
		hv.mu.Lock()
		avg, err := hv.sampleLocked()
		broken := hv.broken
		if err == nil && crossed(avg) {
			hv.mu.Unlock()
			break
		}
		if i%calStride == calStride-1 {
			next := int(hv.on) + delta
			if next < pwmPulseMin || next > pwmPulseMax {
				hv.mu.Unlock()
				break
			}
			hv.setPulseWidthLocked(uint32(next))
		}
		hv.mu.Unlock()
		if broken {
			return hv.pulseWidth(), err
		}
		rt.clock.Sleep(dCalibStep)
	}
	return hv.pulseWidth(), nil
}

// calibrate finds the pulse width the converter actually needs:
//  1. settle a few volts hot with the period, old pulse width
//  2. from the minimum pulse width, walk up to the lowest width that
//     reaches the target
//  3. from a little above that, walk back down to the highest width
//     that does not overshoot
//  4. split the difference, then settle the period at the real target
//
// The two walks approach the crossing from opposite sides, so the
// smoothing lag cancels out of their average.
func (hv *hvRegulator) calibrate(rt runtimeConfig) error {
	rt.logger.Printf("hv calibration start (target %dV / %d counts)", hv.volts, hv.target)

	hv.mu.Lock()
	hv.feedback = true
	hv.broken = false
	hv.rejects = 0
	hv.seeded = false
	hv.lit = true
	hv.pushLocked()
	hv.mu.Unlock()
	defer hv.disable()

	if err := hv.settle(rt, thresholdFor(hv.volts+5)); err != nil {
		return fmt.Errorf("calibration settle failed: %s", err.Error())
	}

	hv.setPulseWidth(pwmPulseMin)
	hv.reseed()
	bottom, err := hv.walkPulse(rt, 1, func(avg int) bool { return avg >= hv.target })
	if err != nil {
		return fmt.Errorf("calibration lower bound failed: %s", err.Error())
	}

	upperStart := bottom + calSpread
	if upperStart > pwmPulseMax {
		upperStart = pwmPulseMax
	}
	hv.setPulseWidth(upperStart)
	hv.reseed()
	upper, err := hv.walkPulse(rt, -1, func(avg int) bool { return avg <= hv.target })
	if err != nil {
		return fmt.Errorf("calibration upper bound failed: %s", err.Error())
	}

	hv.setPulseWidth((bottom + upper) / 2)

	if err := hv.settle(rt, hv.target); err != nil {
		return fmt.Errorf("calibration re-settle failed: %s", err.Error())
	}

	rt.logger.Printf("hv calibration done: pulse %d (bounds %d..%d), period %d",
		hv.pulseWidth(), bottom, upper, hv.period())
	return nil
}

// snapshot is for status reporting
func (hv *hvRegulator) snapshot() (top uint32, on uint32, avg int, feedback bool) {
	hv.mu.Lock()
	defer hv.mu.Unlock()
	return hv.top, hv.on, hv.avgLocked(), hv.feedback
}
