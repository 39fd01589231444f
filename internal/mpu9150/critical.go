// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu9150

import "sync"

// CriticalSection suspends interrupt delivery between Enter and Exit.
//
// On a microcontroller this maps to the platform's interrupt disable and
// restore calls. On a hosted system, where the "interrupt" is a sampling
// goroutine, mutual exclusion is equivalent. Implementations must not
// allocate.
type CriticalSection interface {
	Enter() uintptr
	Exit(state uintptr)
}

// MutexSection is the default CriticalSection for hosted platforms.
type MutexSection struct {
	mu sync.Mutex
}

func (m *MutexSection) Enter() uintptr {
	m.mu.Lock()
	return 0
}

func (m *MutexSection) Exit(uintptr) {
	m.mu.Unlock()
}

// enter opens a critical section when the device was configured with
// DisableIRQ. The returned state must be handed back to exit.
func (d *Dev) enter() uintptr {
	if !d.disableIRQ {
		return 0
	}
	return d.cs.Enter()
}

func (d *Dev) exit(state uintptr) {
	if d.disableIRQ {
		d.cs.Exit(state)
	}
}
