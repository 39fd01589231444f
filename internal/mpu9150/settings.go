// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu9150

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/physic"
)

// AccelRange selects the accelerometer full-scale range.
type AccelRange uint8

const (
	Accel2G AccelRange = iota
	Accel4G
	Accel8G
	Accel16G
)

// GyroRange selects the gyroscope full-scale range.
type GyroRange uint8

const (
	Gyro250DPS GyroRange = iota
	Gyro500DPS
	Gyro1000DPS
	Gyro2000DPS
)

// Filter selects the digital low-pass filter shared by accel and gyro.
type Filter uint8

const (
	Filter260Hz Filter = iota
	Filter184Hz
	Filter94Hz
	Filter44Hz
	Filter21Hz
	Filter10Hz
	Filter5Hz
)

// PowerMode is the sleep state of the device.
type PowerMode uint8

const (
	PowerWake PowerMode = iota
	PowerSleep
)

// AngularUnit selects the unit returned by Gyro.
type AngularUnit uint8

const (
	UnitDegrees AngularUnit = iota
	UnitRadians
)

type accelSpec struct {
	spanG int
	lsb   float64 // LSB per g
}

type gyroSpec struct {
	spanDPS int
	lsb     float64 // LSB per deg/s
}

// FilterSpec describes a DLPF setting.
type FilterSpec struct {
	AccelBandwidth physic.Frequency
	AccelDelay     time.Duration
	GyroBandwidth  physic.Frequency
	GyroDelay      time.Duration
}

var accelRanges = [...]accelSpec{
	{spanG: 2, lsb: 16384},
	{spanG: 4, lsb: 8192},
	{spanG: 8, lsb: 4096},
	{spanG: 16, lsb: 2048},
}

var gyroRanges = [...]gyroSpec{
	{spanDPS: 250, lsb: 131},
	{spanDPS: 500, lsb: 65.5},
	{spanDPS: 1000, lsb: 32.8},
	{spanDPS: 2000, lsb: 16.4},
}

var filters = [...]FilterSpec{
	{260 * physic.Hertz, 0, 256 * physic.Hertz, 980 * time.Microsecond},
	{184 * physic.Hertz, 2000 * time.Microsecond, 188 * physic.Hertz, 1900 * time.Microsecond},
	{94 * physic.Hertz, 3000 * time.Microsecond, 98 * physic.Hertz, 2800 * time.Microsecond},
	{44 * physic.Hertz, 4900 * time.Microsecond, 42 * physic.Hertz, 4800 * time.Microsecond},
	{21 * physic.Hertz, 8500 * time.Microsecond, 20 * physic.Hertz, 8300 * time.Microsecond},
	{10 * physic.Hertz, 13800 * time.Microsecond, 10 * physic.Hertz, 13400 * time.Microsecond},
	{5 * physic.Hertz, 19000 * time.Microsecond, 5 * physic.Hertz, 18600 * time.Microsecond},
}

// Sample clock feeding SMPLRT_DIV. The gyro output runs at 8 kHz with the
// DLPF disabled (DLPF_CFG 0 or 7) and 1 kHz otherwise.
const (
	clockDLPFOff = 8 * physic.KiloHertz
	clockDLPFOn  = 1 * physic.KiloHertz
)

// Temperature conversion: °C = raw/340 + 35.
const (
	tempDivisor = 340.0
	tempOffset  = 35.0
)

// AK8975 resolution is 0.3 µT/LSB.
const magLSBPerMicroTesla = 3.33198

func (r AccelRange) valid() bool { return int(r) < len(accelRanges) }
func (r GyroRange) valid() bool  { return int(r) < len(gyroRanges) }
func (f Filter) valid() bool     { return int(f) < len(filters) }

// LSB returns the raw count per g.
func (r AccelRange) LSB() float64 {
	if !r.valid() {
		return 0
	}
	return accelRanges[r].lsb
}

func (r AccelRange) String() string {
	if !r.valid() {
		return fmt.Sprintf("AccelRange(%d)", uint8(r))
	}
	return fmt.Sprintf("±%dg", accelRanges[r].spanG)
}

// LSB returns the raw count per deg/s.
func (r GyroRange) LSB() float64 {
	if !r.valid() {
		return 0
	}
	return gyroRanges[r].lsb
}

func (r GyroRange) String() string {
	if !r.valid() {
		return fmt.Sprintf("GyroRange(%d)", uint8(r))
	}
	return fmt.Sprintf("±%d°/s", gyroRanges[r].spanDPS)
}

// Spec returns bandwidth and delay for the filter setting.
func (f Filter) Spec() (FilterSpec, error) {
	if !f.valid() {
		return FilterSpec{}, fmt.Errorf("%w: filter %d", ErrInvalidSetting, f)
	}
	return filters[f], nil
}

func (f Filter) String() string {
	if !f.valid() {
		return fmt.Sprintf("Filter(%d)", uint8(f))
	}
	return fmt.Sprintf("DLPF %s/%s", filters[f].AccelBandwidth, filters[f].GyroBandwidth)
}

func (m PowerMode) String() string {
	switch m {
	case PowerWake:
		return "awake"
	case PowerSleep:
		return "asleep"
	}
	return fmt.Sprintf("PowerMode(%d)", uint8(m))
}

// sampleClock returns the rate feeding SMPLRT_DIV for a DLPF_CFG value.
func sampleClock(dlpf byte) physic.Frequency {
	if dlpf == 0 || dlpf == 7 {
		return clockDLPFOff
	}
	return clockDLPFOn
}

// nearestDivider returns the SMPLRT_DIV value whose output rate is closest
// to rate for the given base clock.
func nearestDivider(base, rate physic.Frequency) byte {
	n := int64(base / rate) // candidate divisors n and n+1
	if n < 1 {
		n = 1
	}
	if n >= 256 {
		return 255
	}
	lo := base / physic.Frequency(n)
	hi := base / physic.Frequency(n+1)
	if abs(lo-rate) <= abs(rate-hi) {
		return byte(n - 1)
	}
	return byte(n)
}

func abs(f physic.Frequency) physic.Frequency {
	if f < 0 {
		return -f
	}
	return f
}
