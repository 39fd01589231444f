// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/relabs-tech/mpu9150/internal/config"
	"github.com/relabs-tech/mpu9150/internal/mpu9150"
	"github.com/relabs-tech/mpu9150/internal/sensors"
)

// RunIRQCompare opens the configured IMU and runs CompareIRQ and MagTiming
// against it.
func RunIRQCompare(w io.Writer, rounds int, wait time.Duration) error {
	cfg := config.Get()
	src, err := sensors.NewIMUSource("irq", cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	interval := time.Duration(cfg.IMUSampleInterval) * time.Millisecond
	if err := CompareIRQ(w, src.Dev(), rounds, interval, wait); err != nil {
		return err
	}
	t, err := MagTiming(src.Dev(), 200*time.Millisecond)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "mag irq calls: trigger %s, poll %s, read %s\n", t[0], t[1], t[2])
	return nil
}

// CompareIRQ lets a sampler fill the interrupt buffers for wait, then prints
// them scaled in the normal context next to a fresh blocking reading. The
// sampler is paused during the blocking reads so the two paths never race
// for the magnetometer. Readings differ slightly with drift and movement.
func CompareIRQ(w io.Writer, dev *mpu9150.Dev, rounds int, interval, wait time.Duration) error {
	for i := 0; i < rounds; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), wait)
		sensors.NewSampler(dev, interval).Run(ctx)
		cancel()

		ia := dev.ScaleAccel(dev.RawAccel())
		ig := dev.ScaleGyro(dev.RawGyro(), mpu9150.UnitDegrees)
		im := dev.ScaleMag(dev.RawMag())
		fmt.Fprintf(w, "Interrupt: %s %s %s\n", formatVec(ia[:]), formatVec(ig[:]), formatVec(im[:]))

		a, err := dev.Accel("xyz")
		if err != nil {
			return err
		}
		g, err := dev.Gyro("xyz", mpu9150.UnitDegrees)
		if err != nil {
			return err
		}
		m, err := dev.Mag("xyz")
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Normal:    %s %s %s\n\n", formatVec(a), formatVec(g), formatVec(m))
	}
	return nil
}

// MagTiming times the three MagIRQ phases: trigger, not-ready poll, and
// (after settle) the ready read.
func MagTiming(dev *mpu9150.Dev, settle time.Duration) ([3]time.Duration, error) {
	var t [3]time.Duration
	dev.ResetMagIRQ()
	dev.ClearFaults()
	for i := range t {
		if i == 2 {
			time.Sleep(settle)
		}
		start := time.Now()
		dev.MagIRQ()
		t[i] = time.Since(start)
	}
	if f := dev.Faults(); f != 0 {
		return t, fmt.Errorf("mag irq faults: %s", f)
	}
	return t, nil
}

// RunMagTest shows the non-blocking magnetometer API: trigger, poll until
// ready, then read.
func RunMagTest(w io.Writer) error {
	cfg := config.Get()
	src, err := sensors.NewIMUSource("magtest", cfg)
	if err != nil {
		return err
	}
	defer src.Close()
	return MagTest(w, src.Dev(), cfg.MagTimeout())
}

// MagTest triggers one conversion, polls MagReady until it reports true or
// timeout passes, and prints the reading with the correction factors.
func MagTest(w io.Writer, dev *mpu9150.Dev, timeout time.Duration) error {
	start := time.Now()
	if err := dev.TriggerMag(); err != nil {
		return err
	}
	for {
		ready, err := dev.MagReady()
		if err != nil {
			return err
		}
		if ready {
			break
		}
		if time.Since(start) > timeout {
			return mpu9150.ErrMagTimeout
		}
		time.Sleep(time.Millisecond)
	}
	fmt.Fprintf(w, "Wait time = %5.2fms\n", ms(time.Since(start)))

	start = time.Now()
	m, err := dev.MagData("xyz")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Time to get = %5.2fms\n", ms(time.Since(start)))
	fmt.Fprintf(w, "x = %5.3f y = %5.3f z = %5.3f\n", m[0], m[1], m[2])
	k := dev.MagCorrection()
	fmt.Fprintf(w, "Correction factors: x = %5.3f y = %5.3f z = %5.3f\n", k[0], k[1], k[2])
	return nil
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func formatVec(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.3f", x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
