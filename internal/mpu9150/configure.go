// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu9150

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// Every setter reads the register, merges the new value, writes it back and
// re-reads it. The value returned is what the chip committed, which callers
// must use instead of what they asked for. Getters never write.

func (d *Dev) readField(f field) (byte, error) {
	v, err := d.readReg(&d.dev, f.reg)
	if err != nil {
		return 0, err
	}
	return f.get(v), nil
}

func (d *Dev) updateField(f field, setting byte) (byte, error) {
	v, err := d.readReg(&d.dev, f.reg)
	if err != nil {
		return 0, err
	}
	if err := d.writeReg(&d.dev, f.reg, f.merge(v, setting)); err != nil {
		return 0, err
	}
	return d.readField(f)
}

// PowerMode reports whether the device sleeps.
func (d *Dev) PowerMode() (PowerMode, error) {
	v, err := d.readField(fieldSleep)
	if err != nil {
		return 0, err
	}
	return PowerMode(v), nil
}

// SetPowerMode toggles the sleep bit.
func (d *Dev) SetPowerMode(m PowerMode) (PowerMode, error) {
	if m != PowerWake && m != PowerSleep {
		return 0, fmt.Errorf("%w: power mode %d", ErrInvalidSetting, m)
	}
	v, err := d.updateField(fieldSleep, byte(m))
	if err != nil {
		return 0, err
	}
	return PowerMode(v), nil
}

// Wake is SetPowerMode(PowerWake).
func (d *Dev) Wake() (PowerMode, error) {
	return d.SetPowerMode(PowerWake)
}

// Sleep is SetPowerMode(PowerSleep).
func (d *Dev) Sleep() (PowerMode, error) {
	return d.SetPowerMode(PowerSleep)
}

// Passthrough reports whether the magnetometer is bridged onto the main bus:
// BYPASS_EN set and the internal I2C master off.
func (d *Dev) Passthrough() (bool, error) {
	bypass, err := d.readField(fieldBypass)
	if err != nil {
		return false, err
	}
	master, err := d.readField(fieldI2CMaster)
	if err != nil {
		return false, err
	}
	on := bypass == 1 && master == 0
	d.passthrough.Store(on)
	return on, nil
}

// SetPassthrough bridges (on) or isolates (off) the magnetometer.
func (d *Dev) SetPassthrough(on bool) (bool, error) {
	if on {
		if _, err := d.updateField(fieldI2CMaster, 0); err != nil {
			return false, err
		}
		if _, err := d.updateField(fieldBypass, 1); err != nil {
			return false, err
		}
	} else {
		// Clear the cache first so the interrupt path stops talking to the
		// magnetometer before it disappears from the bus.
		d.passthrough.Store(false)
		if _, err := d.updateField(fieldBypass, 0); err != nil {
			return false, err
		}
	}
	return d.Passthrough()
}

// SampleRate returns the output data rate.
func (d *Dev) SampleRate() (physic.Frequency, error) {
	base, err := d.sampleClock()
	if err != nil {
		return 0, err
	}
	div, err := d.readField(fieldSampleDiv)
	if err != nil {
		return 0, err
	}
	return base / physic.Frequency(int64(div)+1), nil
}

// SetSampleRate programs the divider whose output rate is nearest to rate
// and returns the achieved rate. Passing the returned rate back is a no-op.
func (d *Dev) SetSampleRate(rate physic.Frequency) (physic.Frequency, error) {
	if rate <= 0 {
		return 0, fmt.Errorf("%w: sample rate %s", ErrInvalidSetting, rate)
	}
	base, err := d.sampleClock()
	if err != nil {
		return 0, err
	}
	div, err := d.updateField(fieldSampleDiv, nearestDivider(base, rate))
	if err != nil {
		return 0, err
	}
	return base / physic.Frequency(int64(div)+1), nil
}

// SetSampleRateHz is SetSampleRate for an integer rate in Hz.
func (d *Dev) SetSampleRateHz(hz int) (physic.Frequency, error) {
	return d.SetSampleRate(physic.Frequency(hz) * physic.Hertz)
}

func (d *Dev) sampleClock() (physic.Frequency, error) {
	dlpf, err := d.readField(fieldDLPF)
	if err != nil {
		return 0, err
	}
	return sampleClock(dlpf), nil
}

// AccelRange returns the committed accelerometer range and refreshes the
// scale used by Accel.
func (d *Dev) AccelRange() (AccelRange, error) {
	v, err := d.readField(fieldAccelRange)
	if err != nil {
		return 0, err
	}
	d.accelRange = AccelRange(v)
	return d.accelRange, nil
}

// SetAccelRange sets the accelerometer full-scale range.
func (d *Dev) SetAccelRange(r AccelRange) (AccelRange, error) {
	if !r.valid() {
		return 0, fmt.Errorf("%w: accel range %d", ErrInvalidSetting, r)
	}
	v, err := d.updateField(fieldAccelRange, byte(r))
	if err != nil {
		return 0, err
	}
	d.accelRange = AccelRange(v)
	return d.accelRange, nil
}

// GyroRange returns the committed gyroscope range and refreshes the scale
// used by Gyro.
func (d *Dev) GyroRange() (GyroRange, error) {
	v, err := d.readField(fieldGyroRange)
	if err != nil {
		return 0, err
	}
	d.gyroRange = GyroRange(v)
	return d.gyroRange, nil
}

// SetGyroRange sets the gyroscope full-scale range.
func (d *Dev) SetGyroRange(r GyroRange) (GyroRange, error) {
	if !r.valid() {
		return 0, fmt.Errorf("%w: gyro range %d", ErrInvalidSetting, r)
	}
	v, err := d.updateField(fieldGyroRange, byte(r))
	if err != nil {
		return 0, err
	}
	d.gyroRange = GyroRange(v)
	return d.gyroRange, nil
}

// Filter returns the DLPF setting. A chip left at DLPF_CFG 7 by other
// software reports Filter(7), which has no Spec.
func (d *Dev) Filter() (Filter, error) {
	v, err := d.readField(fieldDLPF)
	if err != nil {
		return 0, err
	}
	return Filter(v), nil
}

// SetFilter sets the low-pass filter for both accel and gyro. It changes the
// sample clock, so SampleRate may differ afterwards.
func (d *Dev) SetFilter(f Filter) (Filter, error) {
	if !f.valid() {
		return 0, fmt.Errorf("%w: filter %d", ErrInvalidSetting, f)
	}
	v, err := d.updateField(fieldDLPF, byte(f))
	if err != nil {
		return 0, err
	}
	return Filter(v), nil
}
