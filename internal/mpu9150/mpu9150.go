// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package mpu9150 controls an InvenSense MPU9150 (accelerometer, gyroscope
// and AK8975 magnetometer) over I2C.
//
// The device offers two reading paths. Accel, Gyro, Mag and Temperature
// return scaled float64 values; they may block on the bus and allocate.
// AccelIRQ, GyroIRQ and MagIRQ are safe to call from an interrupt handler or
// a tight sampling loop: they never allocate, never use floating point and
// only update the raw buffers returned by RawAccel, RawGyro and RawMag.
//
// # Datasheet
//
// https://invensense.tdk.com/wp-content/uploads/2015/02/MPU-9150-Register-Map.pdf
package mpu9150

import (
	"fmt"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// Opts holds initialization options.
type Opts struct {
	Addr    uint16 // MPU address, DefaultAddr or AltAddr
	MagAddr uint16 // AK8975 address behind passthrough

	// Timeout bounds every bus transaction. It is handed to the bus when the
	// bus supports it (see internal/i2cbus); the driver never retries.
	Timeout time.Duration
	// MagTimeout bounds the blocking wait for a magnetometer conversion.
	MagTimeout time.Duration

	// DisableIRQ runs each bus transaction and raw buffer write inside
	// Critical. Without it the caller must serialize access.
	DisableIRQ bool
	Critical   CriticalSection

	AccelRange AccelRange
	GyroRange  GyroRange
	Filter     Filter
	SampleRate int // Hz, 0 leaves SMPLRT_DIV untouched
}

// DefaultOpts matches the factory I2C addresses and the widest ranges, which
// never saturate.
var DefaultOpts = Opts{
	Addr:       DefaultAddr,
	MagAddr:    DefaultMagAddr,
	Timeout:    10 * time.Millisecond,
	MagTimeout: 20 * time.Millisecond,
	DisableIRQ: true,
	AccelRange: Accel16G,
	GyroRange:  Gyro2000DPS,
	Filter:     Filter260Hz,
}

// timeoutSetter is implemented by buses that can bound a transaction.
type timeoutSetter interface {
	SetTimeout(d time.Duration)
}

// irqScratch holds every byte the interrupt-safe path hands to the bus, so
// that path never needs a fresh slice.
type irqScratch struct {
	accelReg [1]byte
	gyroReg  [1]byte
	st1Reg   [1]byte
	dataReg  [1]byte
	trigger  [2]byte
	accel    [6]byte
	gyro     [6]byte
	st1      [1]byte
	mag      [7]byte // HXL..HZH, ST2
}

// Dev is a handle to one MPU9150.
//
// Configuration and scaled reads are meant for a single normal context; the
// *IRQ methods may run concurrently with them when DisableIRQ is set.
type Dev struct {
	dev        i2c.Dev
	mag        i2c.Dev
	chipID     byte
	timeout    time.Duration
	magTimeout time.Duration
	disableIRQ bool
	cs         CriticalSection

	accelRange  AccelRange
	gyroRange   GyroRange
	passthrough atomic.Bool
	magCorr     [3]float64

	irq      irqScratch
	iaccel   [3]int16
	igyro    [3]int16
	imag     [3]int16
	magState atomic.Uint32
	faults   atomic.Uint32
}

// New probes the chip, wakes it, enables passthrough, reads the magnetometer
// factory correction and applies the ranges in opts.
func New(bus i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	addr := opts.Addr
	if addr == 0 {
		addr = DefaultAddr
	}
	magAddr := opts.MagAddr
	if magAddr == 0 {
		magAddr = DefaultMagAddr
	}
	cs := opts.Critical
	if cs == nil {
		cs = &MutexSection{}
	}
	magTimeout := opts.MagTimeout
	if magTimeout <= 0 {
		magTimeout = DefaultOpts.MagTimeout
	}
	if !opts.AccelRange.valid() || !opts.GyroRange.valid() || !opts.Filter.valid() || opts.SampleRate < 0 {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidSetting, *opts)
	}
	if ts, ok := bus.(timeoutSetter); ok && opts.Timeout > 0 {
		ts.SetTimeout(opts.Timeout)
	}

	d := &Dev{
		dev:        i2c.Dev{Bus: bus, Addr: addr},
		mag:        i2c.Dev{Bus: bus, Addr: magAddr},
		timeout:    opts.Timeout,
		magTimeout: magTimeout,
		disableIRQ: opts.DisableIRQ,
		cs:         cs,
		magCorr:    [3]float64{1, 1, 1},
	}
	d.irq.accelReg[0] = regAccelXOutH
	d.irq.gyroReg[0] = regGyroXOutH
	d.irq.st1Reg[0] = magRegST1
	d.irq.dataReg[0] = magRegHXL
	d.irq.trigger = [2]byte{magRegCNTL, magModeSingle}

	id, err := d.readReg(&d.dev, regWhoAmI)
	if err != nil {
		return nil, err
	}
	if id != ChipIDValue {
		return nil, fmt.Errorf("%w: 0x%02X", ErrChipID, id)
	}
	d.chipID = id

	if _, err := d.updateField(fieldClockSel, clockPLLGyroX); err != nil {
		return nil, err
	}
	if _, err := d.SetPowerMode(PowerWake); err != nil {
		return nil, err
	}
	on, err := d.SetPassthrough(true)
	if err != nil {
		return nil, err
	}
	if on {
		if err := d.readMagCorrection(); err != nil {
			return nil, err
		}
	}
	if _, err := d.SetAccelRange(opts.AccelRange); err != nil {
		return nil, err
	}
	if _, err := d.SetGyroRange(opts.GyroRange); err != nil {
		return nil, err
	}
	if _, err := d.SetFilter(opts.Filter); err != nil {
		return nil, err
	}
	if opts.SampleRate > 0 {
		if _, err := d.SetSampleRateHz(opts.SampleRate); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("MPU9150{%s}", &d.dev)
}

// Halt puts the device to sleep.
func (d *Dev) Halt() error {
	_, err := d.SetPowerMode(PowerSleep)
	return err
}

// ChipID returns the WHO_AM_I value read by New.
func (d *Dev) ChipID() byte {
	return d.chipID
}

// Timeout returns the bus timeout the device was configured with.
func (d *Dev) Timeout() time.Duration {
	return d.timeout
}

// MagCorrection returns the AK8975 factory sensitivity adjustment per axis.
func (d *Dev) MagCorrection() [3]float64 {
	return d.magCorr
}

// readMagCorrection reads ASAX..ASAZ from fuse ROM and powers the
// magnetometer back down.
func (d *Dev) readMagCorrection() error {
	if err := d.writeReg(&d.mag, magRegCNTL, magModeFuseROM); err != nil {
		return err
	}
	var asa [3]byte
	if err := d.readRegs(&d.mag, magRegASAX, asa[:]); err != nil {
		return err
	}
	if err := d.writeReg(&d.mag, magRegCNTL, magModePowerDown); err != nil {
		return err
	}
	for i, v := range asa {
		d.magCorr[i] = (float64(v)-128)*0.5/128 + 1
	}
	return nil
}

// Normal-context bus helpers. Each transaction runs in its own critical
// section and failures come back as *BusError.

func (d *Dev) readReg(dev *i2c.Dev, reg byte) (byte, error) {
	var b [1]byte
	if err := d.readRegs(dev, reg, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Dev) readRegs(dev *i2c.Dev, reg byte, b []byte) error {
	s := d.enter()
	err := dev.Tx([]byte{reg}, b)
	d.exit(s)
	if err != nil {
		return &BusError{Op: "read", Addr: dev.Addr, Reg: reg, Err: err}
	}
	return nil
}

func (d *Dev) writeReg(dev *i2c.Dev, reg, v byte) error {
	s := d.enter()
	err := dev.Tx([]byte{reg, v}, nil)
	d.exit(s)
	if err != nil {
		return &BusError{Op: "write", Addr: dev.Addr, Reg: reg, Err: err}
	}
	return nil
}
