// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package i2cbus

import (
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

// gateBus blocks every Tx until release receives a value.
type gateBus struct {
	release chan struct{}
	started chan struct{}
}

func newGateBus() *gateBus {
	return &gateBus{release: make(chan struct{}), started: make(chan struct{}, 8)}
}

func (g *gateBus) String() string                 { return "gate" }
func (g *gateBus) SetSpeed(physic.Frequency) error { return nil }

func (g *gateBus) Tx(addr uint16, w, r []byte) error {
	g.started <- struct{}{}
	<-g.release
	for i := range r {
		r[i] = 0xAA
	}
	return nil
}

func TestPassThrough(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x68, W: []byte{0x75}, R: []byte{0x68}},
			{Addr: 0x0C, W: []byte{0x0A, 0x01}},
		},
		DontPanic: true,
	}
	b := Wrap(pb, 10*time.Millisecond)

	r := make([]byte, 1)
	if err := b.Tx(0x68, []byte{0x75}, r); err != nil {
		t.Fatal(err)
	}
	if r[0] != 0x68 {
		t.Errorf("read 0x%02X", r[0])
	}
	if err := b.Tx(0x0C, []byte{0x0A, 0x01}, nil); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := b.Tx(0x68, []byte{0x75}, r); !errors.Is(err, ErrClosed) {
		t.Errorf("Tx after Close = %v", err)
	}
}

func TestUnderlyingErrorPropagates(t *testing.T) {
	pb := &i2ctest.Playback{DontPanic: true}
	b := Wrap(pb, 10*time.Millisecond)
	defer b.Close()
	if err := b.Tx(0x68, []byte{0x75}, make([]byte, 1)); err == nil {
		t.Fatal("expected error from empty playback")
	}
}

func TestTimeoutThenBusyThenRecover(t *testing.T) {
	g := newGateBus()
	b := Wrap(g, 5*time.Millisecond)
	defer b.Close()

	r := make([]byte, 2)
	if err := b.Tx(0x68, []byte{0x3B}, r); !errors.Is(err, ErrTimeout) {
		t.Fatalf("Tx = %v, want ErrTimeout", err)
	}
	<-g.started
	if err := b.Tx(0x68, []byte{0x3B}, make([]byte, 2)); !errors.Is(err, ErrBusy) {
		t.Fatalf("Tx while stuck = %v, want ErrBusy", err)
	}

	g.release <- struct{}{} // finish the stuck transaction

	b.SetTimeout(time.Second)
	done := make(chan error, 1)
	r2 := make([]byte, 1)
	go func() {
		for {
			err := b.Tx(0x68, []byte{0x75}, r2)
			if !errors.Is(err, ErrBusy) {
				done <- err
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()
	<-g.started
	g.release <- struct{}{}
	if err := <-done; err != nil {
		t.Fatalf("Tx after recovery = %v", err)
	}
	if r2[0] != 0xAA {
		t.Errorf("read 0x%02X after recovery", r2[0])
	}
}

func TestZeroTimeoutWaits(t *testing.T) {
	g := newGateBus()
	b := Wrap(g, 0)
	defer b.Close()

	done := make(chan error, 1)
	go func() { done <- b.Tx(0x68, nil, make([]byte, 1)) }()
	<-g.started
	select {
	case err := <-done:
		t.Fatalf("Tx returned %v before the bus finished", err)
	case <-time.After(20 * time.Millisecond):
	}
	g.release <- struct{}{}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if b.Timeout() != 0 {
		t.Errorf("Timeout = %s", b.Timeout())
	}
}

type nopBus struct{}

func (nopBus) String() string                    { return "nop" }
func (nopBus) SetSpeed(physic.Frequency) error    { return nil }
func (nopBus) Tx(addr uint16, w, r []byte) error { return nil }

func TestTxDoesNotAllocate(t *testing.T) {
	b := Wrap(nopBus{}, 50*time.Millisecond)
	defer b.Close()
	w := []byte{0x3B}
	r := make([]byte, 6)
	if n := testing.AllocsPerRun(100, func() { _ = b.Tx(0x68, w, r) }); n != 0 {
		t.Errorf("Tx allocates %v times", n)
	}
}
