// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu9150

import "fmt"

// MagState is the position of MagIRQ in the magnetometer trigger cycle.
type MagState uint32

const (
	// MagIdle means no conversion has been requested.
	MagIdle MagState = iota
	// MagPending means a conversion was triggered and ST1 is being polled.
	MagPending
	// MagReady means ST1 reported data; it only lasts within one MagIRQ call.
	MagReady
)

func (s MagState) String() string {
	switch s {
	case MagIdle:
		return "idle"
	case MagPending:
		return "pending"
	case MagReady:
		return "ready"
	}
	return fmt.Sprintf("MagState(%d)", uint32(s))
}

// Fault is a sticky bit set by the interrupt-safe path instead of returning
// an error.
type Fault uint32

const (
	FaultBus Fault = 1 << iota
	FaultMagUnreachable
	FaultMagOverflow
)

func (f Fault) String() string {
	if f == 0 {
		return "none"
	}
	s := ""
	for _, n := range [...]struct {
		f    Fault
		name string
	}{{FaultBus, "bus"}, {FaultMagUnreachable, "mag-unreachable"}, {FaultMagOverflow, "mag-overflow"}} {
		if f&n.f != 0 {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	return s
}

// Faults returns the sticky faults collected since the last ClearFaults.
func (d *Dev) Faults() Fault {
	return Fault(d.faults.Load())
}

// ClearFaults resets the sticky faults and returns the previous set.
func (d *Dev) ClearFaults() Fault {
	return Fault(d.faults.Swap(0))
}

func (d *Dev) setFault(f Fault) {
	// Atomic OR via CAS (atomic.Uint32.Or requires Go 1.23).
	for {
		old := d.faults.Load()
		if d.faults.CompareAndSwap(old, old|uint32(f)) {
			return
		}
	}
}

// MagState returns the interrupt-path magnetometer state.
func (d *Dev) MagState() MagState {
	return MagState(d.magState.Load())
}

// ResetMagIRQ forgets any triggered conversion; the next MagIRQ triggers a
// fresh one.
func (d *Dev) ResetMagIRQ() {
	d.magState.Store(uint32(MagIdle))
}

// RawAccel returns the last accelerometer sample stored by AccelIRQ.
func (d *Dev) RawAccel() [3]int16 {
	s := d.enter()
	v := d.iaccel
	d.exit(s)
	return v
}

// RawGyro returns the last gyroscope sample stored by GyroIRQ.
func (d *Dev) RawGyro() [3]int16 {
	s := d.enter()
	v := d.igyro
	d.exit(s)
	return v
}

// RawMag returns the last magnetometer sample stored by MagIRQ.
func (d *Dev) RawMag() [3]int16 {
	s := d.enter()
	v := d.imag
	d.exit(s)
	return v
}

// AccelIRQ copies the current accelerometer registers into the raw buffer.
// It reports whether the buffer changed. No scaling is applied.
func (d *Dev) AccelIRQ() bool {
	return d.vectorIRQ(d.irq.accelReg[:], &d.irq.accel, &d.iaccel)
}

// GyroIRQ copies the current gyroscope registers into the raw buffer.
func (d *Dev) GyroIRQ() bool {
	return d.vectorIRQ(d.irq.gyroReg[:], &d.irq.gyro, &d.igyro)
}

func (d *Dev) vectorIRQ(reg []byte, buf *[6]byte, dst *[3]int16) bool {
	s := d.enter()
	err := d.dev.Tx(reg, buf[:])
	d.exit(s)
	if err != nil {
		d.setFault(FaultBus)
		return false
	}
	d.store(dst, decodeBE(buf))
	return true
}

// MagIRQ advances the magnetometer cycle by one step without waiting:
//
//	idle:    trigger a conversion, move to pending.
//	pending: read ST1 only; stay pending until it reports data.
//	ready:   read the sample into the raw buffer, trigger the next
//	         conversion, move back to pending.
//
// It reports whether the raw buffer changed. A failed transfer keeps the
// buffer, records a fault and returns to idle.
func (d *Dev) MagIRQ() bool {
	if !d.passthrough.Load() {
		d.setFault(FaultMagUnreachable)
		return false
	}
	switch MagState(d.magState.Load()) {
	case MagIdle:
		d.magTriggerIRQ()
		return false
	case MagPending:
		s := d.enter()
		err := d.mag.Tx(d.irq.st1Reg[:], d.irq.st1[:])
		d.exit(s)
		if err != nil {
			d.setFault(FaultBus)
			d.magState.Store(uint32(MagIdle))
			return false
		}
		if d.irq.st1[0]&magST1DataReady == 0 {
			return false
		}
		d.magState.Store(uint32(MagReady))
	}

	s := d.enter()
	err := d.mag.Tx(d.irq.dataReg[:], d.irq.mag[:])
	d.exit(s)
	if err != nil {
		d.setFault(FaultBus)
		d.magState.Store(uint32(MagIdle))
		return false
	}
	updated := false
	if d.irq.mag[6]&(magST2Overflow|magST2DataError) != 0 {
		d.setFault(FaultMagOverflow)
	} else {
		d.store(&d.imag, decodeLE(&d.irq.mag))
		updated = true
	}
	d.magTriggerIRQ()
	return updated
}

func (d *Dev) magTriggerIRQ() {
	s := d.enter()
	err := d.mag.Tx(d.irq.trigger[:], nil)
	d.exit(s)
	if err != nil {
		d.setFault(FaultBus)
		d.magState.Store(uint32(MagIdle))
		return
	}
	d.magState.Store(uint32(MagPending))
}

// store replaces all three axes at once.
func (d *Dev) store(dst *[3]int16, v [3]int16) {
	s := d.enter()
	*dst = v
	d.exit(s)
}

func decodeBE(b *[6]byte) [3]int16 {
	return [3]int16{
		int16(uint16(b[0])<<8 | uint16(b[1])),
		int16(uint16(b[2])<<8 | uint16(b[3])),
		int16(uint16(b[4])<<8 | uint16(b[5])),
	}
}

func decodeLE(b *[7]byte) [3]int16 {
	return [3]int16{
		int16(uint16(b[1])<<8 | uint16(b[0])),
		int16(uint16(b[3])<<8 | uint16(b[2])),
		int16(uint16(b[5])<<8 | uint16(b[4])),
	}
}
