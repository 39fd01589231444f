// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu9150

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// Chip selects which register file a raw access targets.
type Chip uint8

const (
	ChipMPU Chip = iota
	ChipMag
)

func (c Chip) String() string {
	switch c {
	case ChipMPU:
		return "mpu9150"
	case ChipMag:
		return "ak8975"
	}
	return fmt.Sprintf("Chip(%d)", uint8(c))
}

func (d *Dev) chipDev(c Chip) (*i2c.Dev, error) {
	switch c {
	case ChipMPU:
		return &d.dev, nil
	case ChipMag:
		if !d.passthrough.Load() {
			return nil, ErrMagnetometerUnreachable
		}
		return &d.mag, nil
	}
	return nil, fmt.Errorf("%w: chip %d", ErrInvalidSetting, c)
}

// ReadRegisters reads len(b) consecutive registers starting at reg.
func (d *Dev) ReadRegisters(c Chip, reg byte, b []byte) error {
	dv, err := d.chipDev(c)
	if err != nil {
		return err
	}
	return d.readRegs(dv, reg, b)
}

// WriteRegister writes one raw register. Cached settings that depend on the
// written register are refreshed from the chip afterwards.
func (d *Dev) WriteRegister(c Chip, reg, v byte) error {
	dv, err := d.chipDev(c)
	if err != nil {
		return err
	}
	if c == ChipMPU && (reg == regIntPinCfg || reg == regUserCtrl) {
		// Keep the interrupt path away from the magnetometer until the new
		// bypass state has been read back.
		d.passthrough.Store(false)
	}
	if err := d.writeReg(dv, reg, v); err != nil {
		return err
	}
	if c != ChipMPU {
		return nil
	}
	switch reg {
	case regAccelConfig:
		_, err = d.AccelRange()
	case regGyroConfig:
		_, err = d.GyroRange()
	case regIntPinCfg, regUserCtrl:
		_, err = d.Passthrough()
	}
	return err
}
