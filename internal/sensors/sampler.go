// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"sync/atomic"
	"time"
)

// IRQReader is the interrupt-safe half of the MPU9150 driver.
type IRQReader interface {
	AccelIRQ() bool
	GyroIRQ() bool
	MagIRQ() bool
}

// SamplerStats counts sampler ticks and buffer updates.
type SamplerStats struct {
	Ticks        uint64
	AccelUpdates uint64
	GyroUpdates  uint64
	MagUpdates   uint64
}

// Sampler plays the role of a timer interrupt: every tick it refreshes the
// raw buffers through the IRQ methods, in the order gyro, accel, mag.
type Sampler struct {
	dev      IRQReader
	interval time.Duration

	ticks, accel, gyro, mag atomic.Uint64
}

// NewSampler creates a sampler firing every interval.
func NewSampler(dev IRQReader, interval time.Duration) *Sampler {
	return &Sampler{dev: dev, interval: interval}
}

// Run samples until ctx is done.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Start runs the sampler in its own goroutine. The returned stop cancels it
// and waits until the last tick has returned, so the device can be closed
// afterwards.
func (s *Sampler) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

// Tick performs one sampling pass.
func (s *Sampler) Tick() {
	s.ticks.Add(1)
	if s.dev.GyroIRQ() {
		s.gyro.Add(1)
	}
	if s.dev.AccelIRQ() {
		s.accel.Add(1)
	}
	if s.dev.MagIRQ() {
		s.mag.Add(1)
	}
}

// Stats returns the counters so far.
func (s *Sampler) Stats() SamplerStats {
	return SamplerStats{
		Ticks:        s.ticks.Load(),
		AccelUpdates: s.accel.Load(),
		GyroUpdates:  s.gyro.Load(),
		MagUpdates:   s.mag.Load(),
	}
}
