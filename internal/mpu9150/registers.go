// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu9150

// Default I2C addresses. A second MPU9150 on the same bus answers on
// AltAddr (AD0 pulled high).
const (
	DefaultAddr    = 0x68
	AltAddr        = 0x69
	DefaultMagAddr = 0x0C
)

// ChipIDValue is the WHO_AM_I content of an MPU9150.
const ChipIDValue = 0x68

// MPU9150 register map.
const (
	regSmplrtDiv   = 0x19
	regConfig      = 0x1A
	regGyroConfig  = 0x1B
	regAccelConfig = 0x1C
	regIntPinCfg   = 0x37
	regAccelXOutH  = 0x3B
	regTempOutH    = 0x41
	regGyroXOutH   = 0x43
	regUserCtrl    = 0x6A
	regPwrMgmt1    = 0x6B
	regWhoAmI      = 0x75
)

// AK8975 register map, reachable at the magnetometer address while
// passthrough is on.
const (
	magRegWIA  = 0x00
	magRegST1  = 0x02
	magRegHXL  = 0x03 // HXL..HZH then ST2, little-endian
	magRegST2  = 0x09
	magRegCNTL = 0x0A
	magRegASAX = 0x10
)

// AK8975 CNTL modes and status bits.
const (
	magModePowerDown = 0x00
	magModeSingle    = 0x01
	magModeFuseROM   = 0x0F

	magST1DataReady = 0x01
	magST2DataError = 0x04
	magST2Overflow  = 0x08
)

// field locates a logical setting inside a register.
type field struct {
	reg   byte
	mask  byte // unshifted
	shift uint
}

func (f field) get(v byte) byte {
	return (v >> f.shift) & f.mask
}

func (f field) merge(v, setting byte) byte {
	return v&^(f.mask<<f.shift) | (setting&f.mask)<<f.shift
}

// Bit fields touched by the configuration manager.
var (
	fieldSleep      = field{reg: regPwrMgmt1, mask: 0x01, shift: 6}
	fieldClockSel   = field{reg: regPwrMgmt1, mask: 0x07, shift: 0}
	fieldBypass     = field{reg: regIntPinCfg, mask: 0x01, shift: 1}
	fieldI2CMaster  = field{reg: regUserCtrl, mask: 0x01, shift: 5}
	fieldSampleDiv  = field{reg: regSmplrtDiv, mask: 0xFF, shift: 0}
	fieldDLPF       = field{reg: regConfig, mask: 0x07, shift: 0}
	fieldAccelRange = field{reg: regAccelConfig, mask: 0x03, shift: 3}
	fieldGyroRange  = field{reg: regGyroConfig, mask: 0x03, shift: 3}
)

// clockPLLGyroX selects the X gyro PLL as clock source, the datasheet's
// recommended setting after wake.
const clockPLLGyroX = 0x01
