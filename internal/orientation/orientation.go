// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
)

// Pose is roll, pitch and yaw in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"` // magnetic heading, 0..360
}

// Source is anything that can provide poses over time.
type Source interface {
	Next() (Pose, error)
}

// ComputePoseFromAccel computes roll and pitch from accelerometer data only.
// Yaw is left at 0.
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func ComputePoseFromAccel(ax, ay, az float64) Pose {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
	}
}

// ComputePose returns roll and pitch from gravity and a tilt-compensated
// heading from the magnetic field. accel is in any unit, mag must already be
// in the accelerometer frame.
func ComputePose(accel, mag [3]float64) Pose {
	p := ComputePoseFromAccel(accel[0], accel[1], accel[2])
	roll := p.Roll * math.Pi / 180
	pitch := p.Pitch * math.Pi / 180

	sr, cr := math.Sincos(roll)
	sp, cp := math.Sincos(pitch)
	// Rotate the field back to the horizontal plane.
	bx := mag[0]*cp + mag[1]*sr*sp + mag[2]*cr*sp
	by := mag[1]*cr - mag[2]*sr

	yaw := math.Atan2(-by, bx) * 180 / math.Pi
	if yaw < 0 {
		yaw += 360
	}
	p.Yaw = yaw
	return p
}
