// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu9150

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSetting is returned when a range, filter, power mode or rate
	// is outside its enumeration. No bus access happens in that case.
	ErrInvalidSetting = errors.New("mpu9150: invalid setting")
	// ErrInvalidAxisSelector is returned for axis strings that are not an
	// ordering of a subset of "xyz".
	ErrInvalidAxisSelector = errors.New("mpu9150: invalid axis selector")
	// ErrMagnetometerUnreachable is returned when passthrough is off.
	ErrMagnetometerUnreachable = errors.New("mpu9150: magnetometer unreachable, passthrough inactive")
	// ErrMagOverflow is returned when the AK8975 flags a sensor overflow or
	// data error in ST2.
	ErrMagOverflow = errors.New("mpu9150: magnetometer overflow")
	// ErrMagTimeout is returned when a triggered conversion does not become
	// ready within Opts.MagTimeout.
	ErrMagTimeout = errors.New("mpu9150: magnetometer conversion timeout")
	// ErrChipID is returned by New when WHO_AM_I does not identify an MPU9150.
	ErrChipID = errors.New("mpu9150: unexpected chip id")
)

// BusError wraps a transport failure. It is never produced on the
// interrupt-safe path.
type BusError struct {
	Op   string // "read" or "write"
	Addr uint16
	Reg  byte
	Err  error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("mpu9150: bus %s 0x%02X reg 0x%02X: %v", e.Op, e.Addr, e.Reg, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}
