// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu9150

import (
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

func TestNewInitializesDevice(t *testing.T) {
	b := newRegBus()
	d := newTestDev(t, b)

	if d.ChipID() != ChipIDValue {
		t.Errorf("ChipID = 0x%02X, want 0x%02X", d.ChipID(), ChipIDValue)
	}
	if got := b.mpuReg(regPwrMgmt1); got != clockPLLGyroX {
		t.Errorf("PWR_MGMT_1 = 0x%02X, want 0x%02X (awake, PLL clock)", got, clockPLLGyroX)
	}
	if got := b.mpuReg(regIntPinCfg); got&0x02 == 0 {
		t.Errorf("INT_PIN_CFG = 0x%02X, bypass not enabled", got)
	}
	if got := b.mpuReg(regAccelConfig); got != 0x18 {
		t.Errorf("ACCEL_CONFIG = 0x%02X, want 0x18", got)
	}
	if got := b.mpuReg(regGyroConfig); got != 0x18 {
		t.Errorf("GYRO_CONFIG = 0x%02X, want 0x18", got)
	}
	if b.timeout != 10*time.Millisecond || d.Timeout() != 10*time.Millisecond {
		t.Errorf("timeout bus=%v dev=%v, want 10ms", b.timeout, d.Timeout())
	}
	if got := b.regs[DefaultMagAddr][magRegCNTL]; got != magModePowerDown {
		t.Errorf("magnetometer left in mode 0x%02X after fuse ROM read", got)
	}
	if d.MagState() != MagIdle {
		t.Errorf("MagState = %s, want idle", d.MagState())
	}
}

func TestNewRejectsUnknownChip(t *testing.T) {
	b := newRegBus()
	b.regs[DefaultAddr][regWhoAmI] = 0x71
	if _, err := New(b, nil); !errors.Is(err, ErrChipID) {
		t.Fatalf("New err = %v, want ErrChipID", err)
	}
}

func TestNewRejectsInvalidOpts(t *testing.T) {
	b := newRegBus()
	opts := DefaultOpts
	opts.Filter = 7
	if _, err := New(b, &opts); !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("New err = %v, want ErrInvalidSetting", err)
	}
	if b.txs != 0 {
		t.Errorf("%d bus transactions before validation failed", b.txs)
	}
}

func TestNewReadsMagCorrection(t *testing.T) {
	b := newRegBus()
	k := b.regs[DefaultMagAddr]
	k[magRegASAX] = 128
	k[magRegASAX+1] = 192
	k[magRegASAX+2] = 0
	d := newTestDev(t, b)
	want := [3]float64{1, 1.25, 0.5}
	if got := d.MagCorrection(); got != want {
		t.Errorf("MagCorrection = %v, want %v", got, want)
	}
}

func TestAccelRangeRoundTrip(t *testing.T) {
	d := newTestDev(t, newRegBus())
	for r := Accel2G; r <= Accel16G; r++ {
		got, err := d.SetAccelRange(r)
		if err != nil {
			t.Fatalf("SetAccelRange(%s): %v", r, err)
		}
		if got != r {
			t.Errorf("SetAccelRange(%s) = %s", r, got)
		}
		if got, err := d.AccelRange(); err != nil || got != r {
			t.Errorf("AccelRange() = %s, %v; want %s", got, err, r)
		}
	}
}

func TestGyroRangeRoundTrip(t *testing.T) {
	d := newTestDev(t, newRegBus())
	for r := Gyro250DPS; r <= Gyro2000DPS; r++ {
		if got, err := d.SetGyroRange(r); err != nil || got != r {
			t.Fatalf("SetGyroRange(%s) = %s, %v", r, got, err)
		}
		if got, err := d.GyroRange(); err != nil || got != r {
			t.Errorf("GyroRange() = %s, %v; want %s", got, err, r)
		}
	}
}

func TestFilterRoundTrip(t *testing.T) {
	d := newTestDev(t, newRegBus())
	for f := Filter260Hz; f <= Filter5Hz; f++ {
		if got, err := d.SetFilter(f); err != nil || got != f {
			t.Fatalf("SetFilter(%d) = %d, %v", f, got, err)
		}
		if got, err := d.Filter(); err != nil || got != f {
			t.Errorf("Filter() = %d, %v; want %d", got, err, f)
		}
		if _, err := f.Spec(); err != nil {
			t.Errorf("Filter(%d).Spec: %v", f, err)
		}
	}
}

func TestInvalidSettingsFailBeforeBus(t *testing.T) {
	b := newRegBus()
	d := newTestDev(t, b)
	before := b.txs

	calls := map[string]func() error{
		"accel":  func() error { _, err := d.SetAccelRange(4); return err },
		"gyro":   func() error { _, err := d.SetGyroRange(9); return err },
		"filter": func() error { _, err := d.SetFilter(7); return err },
		"power":  func() error { _, err := d.SetPowerMode(2); return err },
		"rate":   func() error { _, err := d.SetSampleRate(0); return err },
	}
	for name, call := range calls {
		if err := call(); !errors.Is(err, ErrInvalidSetting) {
			t.Errorf("%s: err = %v, want ErrInvalidSetting", name, err)
		}
	}
	if b.txs != before {
		t.Errorf("%d bus transactions for invalid settings", b.txs-before)
	}
}

func TestSetRangeKeepsOtherBits(t *testing.T) {
	b := newRegBus()
	d := newTestDev(t, b)
	b.regs[DefaultAddr][regAccelConfig] = 0xE0 | 0x18 // self-test bits set
	if _, err := d.SetAccelRange(Accel4G); err != nil {
		t.Fatal(err)
	}
	if got := b.mpuReg(regAccelConfig); got != 0xE8 {
		t.Errorf("ACCEL_CONFIG = 0x%02X, want 0xE8", got)
	}
}

func TestGettersDoNotWrite(t *testing.T) {
	b := newRegBus()
	d := newTestDev(t, b)
	snapshot := *b.regs[DefaultAddr]

	if _, err := d.PowerMode(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Passthrough(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.SampleRate(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.AccelRange(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.GyroRange(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Filter(); err != nil {
		t.Fatal(err)
	}
	if *b.regs[DefaultAddr] != snapshot {
		t.Error("getter changed device registers")
	}
}

func TestPowerModeSpellings(t *testing.T) {
	b := newRegBus()
	d := newTestDev(t, b)

	if m, err := d.Sleep(); err != nil || m != PowerSleep {
		t.Fatalf("Sleep() = %s, %v", m, err)
	}
	if b.mpuReg(regPwrMgmt1)&0x40 == 0 {
		t.Error("sleep bit not set")
	}
	if m, err := d.PowerMode(); err != nil || m != PowerSleep {
		t.Errorf("PowerMode() = %s, %v", m, err)
	}
	if m, err := d.Wake(); err != nil || m != PowerWake {
		t.Fatalf("Wake() = %s, %v", m, err)
	}
	if got := b.mpuReg(regPwrMgmt1); got != clockPLLGyroX {
		t.Errorf("PWR_MGMT_1 = 0x%02X after wake", got)
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if m, _ := d.PowerMode(); m != PowerSleep {
		t.Errorf("Halt left device %s", m)
	}
}

func TestPassthroughToggle(t *testing.T) {
	b := newRegBus()
	d := newTestDev(t, b)

	if on, err := d.SetPassthrough(false); err != nil || on {
		t.Fatalf("SetPassthrough(false) = %v, %v", on, err)
	}
	if _, err := d.Mag(""); !errors.Is(err, ErrMagnetometerUnreachable) {
		t.Errorf("Mag with passthrough off: err = %v", err)
	}

	// The internal I2C master also hides the magnetometer.
	b.regs[DefaultAddr][regIntPinCfg] = 0x02
	b.regs[DefaultAddr][regUserCtrl] = 0x20
	if on, err := d.Passthrough(); err != nil || on {
		t.Errorf("Passthrough() with I2C master on = %v, %v", on, err)
	}

	if on, err := d.SetPassthrough(true); err != nil || !on {
		t.Fatalf("SetPassthrough(true) = %v, %v", on, err)
	}
	if got := b.mpuReg(regUserCtrl); got&0x20 != 0 {
		t.Errorf("USER_CTRL = 0x%02X, I2C master still on", got)
	}
}

func TestSampleRate(t *testing.T) {
	tests := []struct {
		filter Filter
		rate   physic.Frequency
		want   physic.Frequency
		div    byte
	}{
		{Filter260Hz, 4000 * physic.Hertz, 4000 * physic.Hertz, 1},
		{Filter260Hz, 8000 * physic.Hertz, 8000 * physic.Hertz, 0},
		{Filter260Hz, 20 * physic.KiloHertz, 8000 * physic.Hertz, 0},
		{Filter260Hz, 3000 * physic.Hertz, 8000 * physic.Hertz / 3, 2},
		{Filter260Hz, 1 * physic.Hertz, 31250 * physic.MilliHertz, 255},
		{Filter44Hz, 100 * physic.Hertz, 100 * physic.Hertz, 9},
		{Filter44Hz, 4000 * physic.Hertz, 1000 * physic.Hertz, 0},
	}
	for _, tc := range tests {
		b := newRegBus()
		d := newTestDev(t, b)
		if _, err := d.SetFilter(tc.filter); err != nil {
			t.Fatal(err)
		}
		got, err := d.SetSampleRate(tc.rate)
		if err != nil {
			t.Fatalf("SetSampleRate(%s): %v", tc.rate, err)
		}
		if got != tc.want {
			t.Errorf("SetSampleRate(%s) = %s, want %s", tc.rate, got, tc.want)
		}
		if div := b.mpuReg(regSmplrtDiv); div != tc.div {
			t.Errorf("SetSampleRate(%s): SMPLRT_DIV = %d, want %d", tc.rate, div, tc.div)
		}
		if r, err := d.SampleRate(); err != nil || r != got {
			t.Errorf("SampleRate() = %s, %v; want %s", r, err, got)
		}

		// Feeding the achieved rate back must not move the divider.
		again, err := d.SetSampleRate(got)
		if err != nil || again != got {
			t.Errorf("SetSampleRate(%s) again = %s, %v", got, again, err)
		}
		if div := b.mpuReg(regSmplrtDiv); div != tc.div {
			t.Errorf("repeat SetSampleRate(%s) moved SMPLRT_DIV to %d", got, div)
		}
	}
}

func TestSetAccelRangeTransactions(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DefaultAddr, W: []byte{regAccelConfig}, R: []byte{0x01}},
			{Addr: DefaultAddr, W: []byte{regAccelConfig, 0x11}},
			{Addr: DefaultAddr, W: []byte{regAccelConfig}, R: []byte{0x11}},
		},
		DontPanic: true,
	}
	d := &Dev{dev: i2c.Dev{Bus: pb, Addr: DefaultAddr}, cs: &MutexSection{}, disableIRQ: true}

	got, err := d.SetAccelRange(Accel8G)
	if err != nil {
		t.Fatalf("SetAccelRange: %v", err)
	}
	if got != Accel8G {
		t.Errorf("SetAccelRange = %s, want %s", got, Accel8G)
	}
	if err := pb.Close(); err != nil {
		t.Errorf("playback: %v", err)
	}
}

func TestConfigBusErrorIsWrapped(t *testing.T) {
	b := newRegBus()
	d := newTestDev(t, b)
	b.fail = true

	_, err := d.SetGyroRange(Gyro500DPS)
	var be *BusError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want *BusError", err)
	}
	if be.Op != "read" || be.Reg != regGyroConfig || be.Addr != DefaultAddr {
		t.Errorf("BusError = %+v", be)
	}
	if !errors.Is(err, errInjected) {
		t.Errorf("BusError does not unwrap to the transport error")
	}
}
