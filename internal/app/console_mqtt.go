// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/mpu9150/internal/config"
	"github.com/relabs-tech/mpu9150/internal/imu"
	"github.com/relabs-tech/mpu9150/internal/orientation"
)

// RunConsoleMQTT prints every raw, scaled and pose message until Ctrl+C.
func RunConsoleMQTT() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	if err := subscribeJSON(client, cfg.TopicPose, "console", func(p orientation.Pose) {
		fmt.Println(formatPose(p))
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicIMURaw, "console", func(s imu.Raw) {
		fmt.Println(formatRaw(s))
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicIMUScaled, "console", func(s imu.Scaled) {
		fmt.Println(formatScaled(s))
	}); err != nil {
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}

func formatPose(p orientation.Pose) string {
	return fmt.Sprintf("[POSE]  ROLL=%6.2f  PITCH=%6.2f  YAW=%6.2f", p.Roll, p.Pitch, p.Yaw)
}

func formatRaw(s imu.Raw) string {
	line := fmt.Sprintf(
		"[RAW]   ax=%6d ay=%6d az=%6d  gx=%6d gy=%6d gz=%6d  mx=%6d my=%6d mz=%6d",
		s.Ax, s.Ay, s.Az, s.Gx, s.Gy, s.Gz, s.Mx, s.My, s.Mz,
	)
	if s.Faults != "" {
		line += "  faults=" + s.Faults
	}
	return line
}

func formatScaled(s imu.Scaled) string {
	return fmt.Sprintf(
		"[SCALE] a=%7.3f %7.3f %7.3f g  w=%8.2f %8.2f %8.2f %s/s  m=%7.1f %7.1f %7.1f uT  t=%5.1fC",
		s.Accel[0], s.Accel[1], s.Accel[2],
		s.Gyro[0], s.Gyro[1], s.Gyro[2], s.GyroUnit,
		s.Mag[0], s.Mag[1], s.Mag[2],
		s.TempC,
	)
}
