// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import "time"

// Raw is one snapshot of the interrupt-path buffers, in sensor counts.
type Raw struct {
	Source string    `json:"source"`
	Time   time.Time `json:"time"`

	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`

	Mx int16 `json:"mx"` // magnetometer, sensor frame
	My int16 `json:"my"`
	Mz int16 `json:"mz"`

	Faults string `json:"faults,omitempty"`
}

// Scaled is a sample in physical units.
type Scaled struct {
	Source string    `json:"source"`
	Time   time.Time `json:"time"`

	Accel    [3]float64 `json:"accel"` // g
	Gyro     [3]float64 `json:"gyro"`  // GyroUnit per second
	GyroUnit string     `json:"gyro_unit"`
	Mag      [3]float64 `json:"mag"` // µT, factory corrected
	TempC    float64    `json:"temp_c"`
}

// RawSource yields raw snapshots.
type RawSource interface {
	NextRaw() (Raw, error)
}
