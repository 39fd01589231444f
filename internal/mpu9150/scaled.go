// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu9150

import (
	"fmt"
	"math"
	"time"
)

// parseAxes turns an axis selector into vector indexes. "" selects "xyz".
func parseAxes(axes string) ([]int, error) {
	if axes == "" {
		return []int{0, 1, 2}, nil
	}
	if len(axes) > 3 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAxisSelector, axes)
	}
	idx := make([]int, 0, len(axes))
	var seen [3]bool
	for i := 0; i < len(axes); i++ {
		a := int(axes[i]) - 'x'
		if a < 0 || a > 2 || seen[a] {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAxisSelector, axes)
		}
		seen[a] = true
		idx = append(idx, a)
	}
	return idx, nil
}

func pick(v [3]float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, a := range idx {
		out[i] = v[a]
	}
	return out
}

// readVector reads three big-endian int16 registers in one transaction.
func (d *Dev) readVector(reg byte) ([3]int16, error) {
	var b [6]byte
	if err := d.readRegs(&d.dev, reg, b[:]); err != nil {
		return [3]int16{}, err
	}
	return decodeBE(&b), nil
}

// Accel returns acceleration in g for the selected axes.
func (d *Dev) Accel(axes string) ([]float64, error) {
	idx, err := parseAxes(axes)
	if err != nil {
		return nil, err
	}
	raw, err := d.readVector(regAccelXOutH)
	if err != nil {
		return nil, err
	}
	return pick(d.ScaleAccel(raw), idx), nil
}

// Gyro returns the angular rate for the selected axes.
func (d *Dev) Gyro(axes string, unit AngularUnit) ([]float64, error) {
	idx, err := parseAxes(axes)
	if err != nil {
		return nil, err
	}
	if unit != UnitDegrees && unit != UnitRadians {
		return nil, fmt.Errorf("%w: angular unit %d", ErrInvalidSetting, unit)
	}
	raw, err := d.readVector(regGyroXOutH)
	if err != nil {
		return nil, err
	}
	return pick(d.ScaleGyro(raw, unit), idx), nil
}

// Temperature returns the die temperature in °C.
func (d *Dev) Temperature() (float64, error) {
	var b [2]byte
	if err := d.readRegs(&d.dev, regTempOutH, b[:]); err != nil {
		return 0, err
	}
	raw := int16(uint16(b[0])<<8 | uint16(b[1]))
	return float64(raw)/tempDivisor + tempOffset, nil
}

// Mag triggers a conversion, waits for it and returns the field in µT for
// the selected axes, corrected with the factory adjustment. It leaves the
// interrupt-path state machine idle.
func (d *Dev) Mag(axes string) ([]float64, error) {
	idx, err := parseAxes(axes)
	if err != nil {
		return nil, err
	}
	if err := d.TriggerMag(); err != nil {
		return nil, err
	}
	deadline := time.Now().Add(d.magTimeout)
	for {
		ready, err := d.MagReady()
		if err != nil {
			return nil, err
		}
		if ready {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrMagTimeout
		}
		time.Sleep(time.Millisecond)
	}
	return d.magData(idx)
}

// TriggerMag starts a single magnetometer conversion and returns at once.
// Poll MagReady, then fetch the result with MagData.
func (d *Dev) TriggerMag() error {
	if !d.passthrough.Load() {
		return ErrMagnetometerUnreachable
	}
	d.magState.Store(uint32(MagIdle))
	return d.writeReg(&d.mag, magRegCNTL, magModeSingle)
}

// MagReady reports the AK8975 data-ready bit.
func (d *Dev) MagReady() (bool, error) {
	if !d.passthrough.Load() {
		return false, ErrMagnetometerUnreachable
	}
	st1, err := d.readReg(&d.mag, magRegST1)
	if err != nil {
		return false, err
	}
	return st1&magST1DataReady != 0, nil
}

// MagData reads the last completed conversion without triggering a new one.
func (d *Dev) MagData(axes string) ([]float64, error) {
	idx, err := parseAxes(axes)
	if err != nil {
		return nil, err
	}
	return d.magData(idx)
}

func (d *Dev) magData(idx []int) ([]float64, error) {
	if !d.passthrough.Load() {
		return nil, ErrMagnetometerUnreachable
	}
	var b [7]byte
	if err := d.readRegs(&d.mag, magRegHXL, b[:]); err != nil {
		return nil, err
	}
	if b[6]&(magST2Overflow|magST2DataError) != 0 {
		return nil, ErrMagOverflow
	}
	d.magState.Store(uint32(MagIdle))
	return pick(d.ScaleMag(decodeLE(&b)), idx), nil
}

// ScaleAccel converts a raw accelerometer snapshot to g using the current
// range. Not for interrupt context.
func (d *Dev) ScaleAccel(raw [3]int16) [3]float64 {
	lsb := d.accelRange.LSB()
	return [3]float64{float64(raw[0]) / lsb, float64(raw[1]) / lsb, float64(raw[2]) / lsb}
}

// ScaleGyro converts a raw gyroscope snapshot using the current range.
func (d *Dev) ScaleGyro(raw [3]int16, unit AngularUnit) [3]float64 {
	k := 1 / d.gyroRange.LSB()
	if unit == UnitRadians {
		k *= math.Pi / 180
	}
	return [3]float64{float64(raw[0]) * k, float64(raw[1]) * k, float64(raw[2]) * k}
}

// ScaleMag converts a raw magnetometer snapshot to µT with the factory
// correction applied and maps it onto the accelerometer frame: the AK8975
// die has X and Y swapped and Z inverted, so x comes from the sensor's Y.
func (d *Dev) ScaleMag(raw [3]int16) [3]float64 {
	var v [3]float64
	for i := range raw {
		v[i] = float64(raw[i]) * d.magCorr[i] / magLSBPerMicroTesla
	}
	return [3]float64{v[1], v[0], -v[2]}
}
