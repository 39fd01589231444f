// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/mpu9150/internal/config"
	"github.com/relabs-tech/mpu9150/internal/imu"
	"github.com/relabs-tech/mpu9150/internal/orientation"
	"github.com/relabs-tech/mpu9150/internal/sensors"
)

// sampleFunc produces the data published on one tick. raw is nil when the
// source has no interrupt-path buffers.
type sampleFunc func(t time.Time) (raw *imu.Raw, sc imu.Scaled, err error)

// RunIMUProducer samples the MPU9150 through the interrupt-safe path and
// publishes raw buffers, scaled values and the pose to MQTT.
func RunIMUProducer(useMock bool) error {
	log.Println("starting MPU9150 producer")

	cfg := config.Get()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		next    sampleFunc
		sampler *sensors.Sampler
	)
	if useMock {
		log.Println("producer: using mock IMU source")
		mock := orientation.NewMockReader()
		next = func(time.Time) (*imu.Raw, imu.Scaled, error) {
			sc, err := mock.ReadScaled()
			return nil, sc, err
		}
	} else {
		src, err := sensors.NewIMUSource("imu", cfg)
		if err != nil {
			return err
		}
		defer src.Close()

		sampler = sensors.NewSampler(src.Dev(), time.Duration(cfg.IMUSampleInterval)*time.Millisecond)
		stopSampler := sampler.Start(ctx)
		defer stopSampler() // before src.Close
		log.Printf("producer: sampling every %d ms", cfg.IMUSampleInterval)
		next = sourceSampler(src)
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	pub := mqttPublisher{client: client}

	log.Println("producer: connected to MQTT, starting publish loop")

	ticker := time.NewTicker(time.Duration(cfg.PublishInterval) * time.Millisecond)
	defer ticker.Stop()

	var n int
	for {
		select {
		case <-ctx.Done():
			log.Println("producer: shutting down")
			return nil
		case t := <-ticker.C:
			raw, sc, err := next(t)
			if err != nil {
				log.Printf("producer: read error: %v", err)
				continue
			}
			pose, err := publishSample(pub, cfg, raw, sc)
			if err != nil {
				log.Printf("producer: %v", err)
				continue
			}
			n++
			if n%10 == 0 {
				logTick(t, raw, sc, pose, sampler)
			}
		}
	}
}

// sourceSampler scales the latest interrupt-path snapshot. Only the
// temperature is read over the bus.
func sourceSampler(src *sensors.IMUSource) sampleFunc {
	return func(t time.Time) (*imu.Raw, imu.Scaled, error) {
		raw := src.Snapshot(t)
		sc := src.ScaleRaw(raw)
		temp, err := src.Dev().Temperature()
		if err != nil {
			return nil, imu.Scaled{}, fmt.Errorf("temperature: %w", err)
		}
		sc.TempC = temp
		return &raw, sc, nil
	}
}

// publishSample publishes one tick and returns the pose computed from sc.
func publishSample(p Publisher, cfg *config.Config, raw *imu.Raw, sc imu.Scaled) (orientation.Pose, error) {
	if raw != nil {
		if err := publishJSON(p, cfg.TopicIMURaw, raw); err != nil {
			return orientation.Pose{}, err
		}
	}
	if err := publishJSON(p, cfg.TopicIMUScaled, sc); err != nil {
		return orientation.Pose{}, err
	}
	pose := orientation.FromScaled(sc)
	if err := publishJSON(p, cfg.TopicPose, pose); err != nil {
		return orientation.Pose{}, err
	}
	return pose, nil
}

func publishJSON(p Publisher, topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("json marshal error (%s): %w", topic, err)
	}
	if err := p.Publish(topic, payload); err != nil {
		return fmt.Errorf("MQTT publish error (%s): %w", topic, err)
	}
	return nil
}

func logTick(t time.Time, raw *imu.Raw, sc imu.Scaled, pose orientation.Pose, s *sensors.Sampler) {
	line := fmt.Sprintf("%s tick: pose R=%.2f P=%.2f Y=%.2f | accel %.3f %.3f %.3f g | gyro %.2f %.2f %.2f %s/s | mag %.1f %.1f %.1f µT | %.1f°C",
		t.Format(time.RFC3339),
		pose.Roll, pose.Pitch, pose.Yaw,
		sc.Accel[0], sc.Accel[1], sc.Accel[2],
		sc.Gyro[0], sc.Gyro[1], sc.Gyro[2], sc.GyroUnit,
		sc.Mag[0], sc.Mag[1], sc.Mag[2],
		sc.TempC,
	)
	if raw != nil && raw.Faults != "" {
		line += " | faults " + raw.Faults
	}
	if s != nil {
		st := s.Stats()
		line += fmt.Sprintf(" | irq ticks=%d mag=%d", st.Ticks, st.MagUpdates)
	}
	log.Print(line)
}
