// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu9150

import (
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3/physic"
)

var errInjected = errors.New("injected bus fault")

// regBus is a register-file I2C bus. Writes store bytes at consecutive
// registers, reads return them. The magnetometer address emulates the
// AK8975 single-measurement cycle: a trigger clears DRDY and the data-ready
// bit comes up after magLatency ST1 polls. Tx never allocates.
type regBus struct {
	mpu        uint16
	mag        uint16
	regs       map[uint16]*[256]byte
	fail       bool
	magLatency int
	magPolls   int
	triggered  bool
	txs        int
	timeout    time.Duration
}

func newRegBus() *regBus {
	b := &regBus{
		mpu:  DefaultAddr,
		mag:  DefaultMagAddr,
		regs: map[uint16]*[256]byte{DefaultAddr: {}, DefaultMagAddr: {}},
	}
	m := b.regs[DefaultAddr]
	m[regWhoAmI] = ChipIDValue
	m[regPwrMgmt1] = 0x40 // power-on reset: asleep
	k := b.regs[DefaultMagAddr]
	k[magRegWIA] = 0x48
	k[magRegASAX] = 128
	k[magRegASAX+1] = 128
	k[magRegASAX+2] = 128
	return b
}

func (b *regBus) String() string                 { return "regbus" }
func (b *regBus) SetSpeed(physic.Frequency) error { return nil }
func (b *regBus) SetTimeout(d time.Duration)      { b.timeout = d }

func (b *regBus) Tx(addr uint16, w, r []byte) error {
	b.txs++
	if b.fail {
		return errInjected
	}
	m, ok := b.regs[addr]
	if !ok {
		return errInjected
	}
	if len(w) == 0 {
		return nil
	}
	reg := int(w[0])
	for i, v := range w[1:] {
		m[(reg+i)&0xFF] = v
	}
	if addr == b.mag && reg == magRegCNTL && len(w) > 1 && w[1] == magModeSingle {
		m[magRegST1] = 0
		b.triggered = true
		b.magPolls = b.magLatency
	}
	if addr == b.mag && reg == magRegST1 && len(r) > 0 && b.triggered {
		if b.magPolls > 0 {
			b.magPolls--
		} else {
			m[magRegST1] = magST1DataReady
		}
	}
	for i := range r {
		r[i] = m[(reg+i)&0xFF]
	}
	if addr == b.mag && reg == magRegHXL && len(r) == 7 {
		m[magRegST1] = 0
		b.triggered = false
	}
	return nil
}

// setVector stores three big-endian int16 values at reg.
func (b *regBus) setVector(reg byte, v [3]int16) {
	m := b.regs[b.mpu]
	for i, x := range v {
		m[int(reg)+2*i] = byte(uint16(x) >> 8)
		m[int(reg)+2*i+1] = byte(uint16(x))
	}
}

// setMag stores three little-endian int16 values at HXL and a clean ST2.
func (b *regBus) setMag(v [3]int16) {
	m := b.regs[b.mag]
	for i, x := range v {
		m[magRegHXL+2*i] = byte(uint16(x))
		m[magRegHXL+2*i+1] = byte(uint16(x) >> 8)
	}
	m[magRegST2] = 0
}

func (b *regBus) mpuReg(reg byte) byte { return b.regs[b.mpu][reg] }

func newTestDev(t *testing.T, b *regBus) *Dev {
	t.Helper()
	d, err := New(b, &DefaultOpts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}
