// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"

	"github.com/relabs-tech/mpu9150/internal/imu"
)

// ScaledReader yields samples in physical units.
type ScaledReader interface {
	ReadScaled() (imu.Scaled, error)
}

type imuSource struct {
	r ScaledReader
}

// NewIMUSource returns a Source computing the pose from each scaled sample.
func NewIMUSource(r ScaledReader) Source {
	return &imuSource{r: r}
}

// Next reads one sample and computes roll, pitch and heading.
func (s *imuSource) Next() (Pose, error) {
	sc, err := s.r.ReadScaled()
	if err != nil {
		return Pose{}, fmt.Errorf("orientation: %w", err)
	}
	return FromScaled(sc), nil
}

// FromScaled computes the pose of one scaled sample.
func FromScaled(sc imu.Scaled) Pose {
	return ComputePose(sc.Accel, sc.Mag)
}
