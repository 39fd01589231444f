// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package i2cbus opens a host I2C bus and bounds every transaction with a
// timeout.
package i2cbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

var (
	// ErrTimeout is returned when a transaction does not finish in time.
	ErrTimeout = errors.New("i2cbus: transaction timed out")
	// ErrBusy is returned while a timed-out transaction is still running on
	// the underlying bus.
	ErrBusy = errors.New("i2cbus: previous transaction still in flight")
	// ErrClosed is returned by Tx after Close.
	ErrClosed = errors.New("i2cbus: closed")
)

type txReq struct {
	addr uint16
	w, r []byte
}

// Bus is an i2c.Bus whose Tx returns ErrTimeout instead of hanging.
//
// Transactions run on a worker goroutine. After a timeout the caller's
// buffers still belong to the stuck transaction; Tx reports ErrBusy until it
// finishes. Tx does not allocate.
type Bus struct {
	bus i2c.Bus

	mu      sync.Mutex
	timeout time.Duration
	timer   *time.Timer
	stuck   bool
	req     chan txReq
	done    chan error
	closed  bool
}

// Wrap bounds transactions on bus by timeout. A zero timeout passes Tx
// straight through.
func Wrap(bus i2c.Bus, timeout time.Duration) *Bus {
	t := time.NewTimer(time.Hour)
	t.Stop()
	b := &Bus{
		bus:     bus,
		timeout: timeout,
		timer:   t,
		req:     make(chan txReq, 1),
		done:    make(chan error, 1),
	}
	go b.run()
	return b
}

// Open initializes the host drivers, opens the named bus ("" for the first
// one), sets its speed when non-zero and wraps it.
func Open(name string, speed physic.Frequency, timeout time.Duration) (*Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	bc, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open I2C bus %q: %w", name, err)
	}
	if speed > 0 {
		if err := bc.SetSpeed(speed); err != nil {
			bc.Close()
			return nil, fmt.Errorf("set I2C speed %s: %w", speed, err)
		}
	}
	return Wrap(bc, timeout), nil
}

func (b *Bus) run() {
	for q := range b.req {
		b.done <- b.bus.Tx(q.addr, q.w, q.r)
	}
}

func (b *Bus) String() string {
	return b.bus.String()
}

// Tx implements i2c.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	if b.stuck {
		select {
		case <-b.done:
			b.stuck = false
		default:
			return ErrBusy
		}
	}
	b.req <- txReq{addr, w, r}
	if b.timeout <= 0 {
		return <-b.done
	}
	b.timer.Reset(b.timeout)
	select {
	case err := <-b.done:
		b.timer.Stop()
		return err
	case <-b.timer.C:
		b.stuck = true
		return ErrTimeout
	}
}

// SetSpeed implements i2c.Bus.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	return b.bus.SetSpeed(f)
}

// SetTimeout changes the bound applied to subsequent transactions.
func (b *Bus) SetTimeout(d time.Duration) {
	b.mu.Lock()
	b.timeout = d
	b.mu.Unlock()
}

// Timeout returns the current bound.
func (b *Bus) Timeout() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timeout
}

// Close stops the worker and closes the underlying bus when it supports it.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	close(b.req)
	if c, ok := b.bus.(i2c.BusCloser); ok {
		return c.Close()
	}
	return nil
}

var _ i2c.Bus = &Bus{}
