// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"

	"github.com/relabs-tech/mpu9150/internal/imu"
)

// MockReader synthesizes scaled samples for a slowly rocking, turning
// device so the pipeline can run without hardware.
type MockReader struct {
	start time.Time
	now   func() time.Time
}

// NewMockReader creates a mock reader starting at the current time.
func NewMockReader() *MockReader {
	return &MockReader{start: time.Now(), now: time.Now}
}

// ReadScaled returns the sample for the elapsed time.
func (m *MockReader) ReadScaled() (imu.Scaled, error) {
	t := m.now()
	return MockSample(t.Sub(m.start).Seconds(), t), nil
}

// MockSample builds the sample a device would see elapsed seconds into the
// motion: roll 20·sin(t), pitch 15·cos(0.7t), heading 30°/s, 50 µT field
// dipping 60°.
func MockSample(elapsed float64, t time.Time) imu.Scaled {
	roll := 20 * math.Sin(elapsed) * math.Pi / 180
	pitch := 15 * math.Cos(elapsed*0.7) * math.Pi / 180
	yaw := math.Mod(elapsed*30, 360) * math.Pi / 180

	sr, cr := math.Sincos(roll)
	sp, cp := math.Sincos(pitch)
	sy, cy := math.Sincos(yaw)

	// Gravity in the body frame.
	accel := [3]float64{-sp, cp * sr, cp * cr}

	// Earth field (north, east, down) rotated into the body frame.
	const field, dip = 50.0, 60 * math.Pi / 180
	n, d := field*math.Cos(dip), field*math.Sin(dip)
	// Heading rotation, then pitch, then roll.
	hx, hy := n*cy, -n*sy
	bx := hx*cp - d*sp
	bz := hx*sp + d*cp
	by := hy*cr + bz*sr
	bz = -hy*sr + bz*cr

	return imu.Scaled{
		Source:   "mock",
		Time:     t,
		Accel:    accel,
		GyroUnit: "deg",
		Mag:      [3]float64{bx, by, bz},
		TempC:    25,
	}
}
