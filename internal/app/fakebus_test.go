// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"sync"
	"testing"

	"github.com/relabs-tech/mpu9150/internal/config"
	"github.com/relabs-tech/mpu9150/internal/sensors"
	"periph.io/x/conn/v3/physic"
)

// regBus is a register file for an MPU9150 at 0x68 with an always-ready
// AK8975 at 0x0C.
type regBus struct {
	mu   sync.Mutex
	regs map[uint16]*[256]byte
}

func newRegBus() *regBus {
	b := &regBus{regs: map[uint16]*[256]byte{0x68: {}, 0x0C: {}}}
	b.regs[0x68][0x75] = 0x68
	b.regs[0x68][0x6B] = 0x40
	b.regs[0x0C][0x00] = 0x48
	for i := 0x10; i <= 0x12; i++ {
		b.regs[0x0C][i] = 128
	}
	b.regs[0x0C][0x02] = 1 // DRDY
	return b
}

func (b *regBus) String() string                 { return "regbus" }
func (b *regBus) SetSpeed(physic.Frequency) error { return nil }

func (b *regBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.regs[addr]
	if m == nil || len(w) == 0 {
		return nil
	}
	reg := int(w[0])
	for i, v := range w[1:] {
		m[(reg+i)&0xFF] = v
	}
	for i := range r {
		r[i] = m[(reg+i)&0xFF]
	}
	return nil
}

func (b *regBus) get(addr uint16, reg byte) byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.regs[addr][reg]
}

func newTestSource(t *testing.T) (*sensors.IMUSource, *regBus) {
	t.Helper()
	b := newRegBus()
	src, err := sensors.NewIMUSourceOnBus("test", b, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	return src, b
}
