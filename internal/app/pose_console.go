// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/relabs-tech/mpu9150/internal/config"
	"github.com/relabs-tech/mpu9150/internal/orientation"
	"github.com/relabs-tech/mpu9150/internal/sensors"
)

// RunPoseConsole prints the pose computed from the blocking read path, or
// from the mock reader, without going through MQTT.
func RunPoseConsole(w io.Writer, useMock bool) error {
	cfg := config.Get()

	var reader orientation.ScaledReader
	if useMock {
		reader = orientation.NewMockReader()
	} else {
		src, err := sensors.NewIMUSource("console", cfg)
		if err != nil {
			return err
		}
		defer src.Close()
		reader = src
	}

	ticker := time.NewTicker(time.Duration(cfg.PublishInterval) * time.Millisecond)
	defer ticker.Stop()
	return printPoses(w, orientation.NewIMUSource(reader), ticker.C, 0)
}

// printPoses prints one pose per tick, n times, or until ticks closes when
// n <= 0.
func printPoses(w io.Writer, src orientation.Source, ticks <-chan time.Time, n int) error {
	for range ticks {
		pose, err := src.Next()
		if err != nil {
			log.Printf("console: %v", err)
			continue
		}
		fmt.Fprintf(w, "ROLL=%6.2f  PITCH=%6.2f  YAW=%6.2f\n", pose.Roll, pose.Pitch, pose.Yaw)
		if n--; n == 0 {
			return nil
		}
	}
	return nil
}
