// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/mpu9150/internal/config"
	"github.com/relabs-tech/mpu9150/internal/i2cbus"
	"github.com/relabs-tech/mpu9150/internal/imu"
	"github.com/relabs-tech/mpu9150/internal/orientation"
)

// DisplayData holds the latest data for display
type DisplayData struct {
	mu sync.RWMutex

	raw        imu.Raw
	haveRaw    bool
	scaled     imu.Scaled
	haveScaled bool
	pose       orientation.Pose
	havePose   bool
}

// RunDisplay mirrors one MQTT topic on an SSD1306 OLED.
func RunDisplay() error {
	cfg := config.Get()

	bus, err := i2cbus.Open(cfg.DisplayI2CBus, 0, cfg.I2CTimeout())
	if err != nil {
		return fmt.Errorf("display: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer dev.Halt()
	log.Printf("display: SSD1306 initialized on %s", bus)

	if err := dev.Draw(dev.Bounds(), renderLines(splashLines), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &DisplayData{}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	switch cfg.DisplayContent {
	case "imu_raw":
		err = subscribeJSON(client, cfg.TopicIMURaw, "display", data.setRaw)
	case "imu_scaled":
		err = subscribeJSON(client, cfg.TopicIMUScaled, "display", data.setScaled)
	case "orientation":
		err = subscribeJSON(client, cfg.TopicPose, "display", data.setPose)
	default:
		err = fmt.Errorf("unknown display content type: %s", cfg.DisplayContent)
	}
	if err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		img := renderLines(data.lines(cfg.DisplayContent))
		if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}
	return nil
}

var splashLines = []string{"", "  MPU9150", "  Waiting for", "  data"}

func (d *DisplayData) setRaw(r imu.Raw) {
	d.mu.Lock()
	d.raw, d.haveRaw = r, true
	d.mu.Unlock()
}

func (d *DisplayData) setScaled(s imu.Scaled) {
	d.mu.Lock()
	d.scaled, d.haveScaled = s, true
	d.mu.Unlock()
}

func (d *DisplayData) setPose(p orientation.Pose) {
	d.mu.Lock()
	d.pose, d.havePose = p, true
	d.mu.Unlock()
}

// lines formats up to four text rows for the given content.
func (d *DisplayData) lines(content string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	switch content {
	case "imu_raw":
		if !d.haveRaw {
			return []string{"", "IMU raw", "Waiting..."}
		}
		r := d.raw
		return []string{
			fmt.Sprintf("A%6d%6d%6d", r.Ax, r.Ay, r.Az),
			fmt.Sprintf("G%6d%6d%6d", r.Gx, r.Gy, r.Gz),
			fmt.Sprintf("M%6d%6d%6d", r.Mx, r.My, r.Mz),
			r.Faults,
		}
	case "imu_scaled":
		if !d.haveScaled {
			return []string{"", "IMU scaled", "Waiting..."}
		}
		s := d.scaled
		return []string{
			fmt.Sprintf("A%5.2f%6.2f%6.2f", s.Accel[0], s.Accel[1], s.Accel[2]),
			fmt.Sprintf("G%5.0f%6.0f%6.0f", s.Gyro[0], s.Gyro[1], s.Gyro[2]),
			fmt.Sprintf("M%5.0f%6.0f%6.0f", s.Mag[0], s.Mag[1], s.Mag[2]),
			fmt.Sprintf("T %.1fC", s.TempC),
		}
	case "orientation":
		if !d.havePose {
			return []string{"", "Orientation", "Waiting..."}
		}
		return []string{
			fmt.Sprintf("R: %6.1f", d.pose.Roll),
			fmt.Sprintf("P: %6.1f", d.pose.Pitch),
			fmt.Sprintf("Y: %6.1f", d.pose.Yaw),
		}
	}
	return []string{"unknown", content}
}

// renderLines draws text rows 13 pixels apart on a blank 128x64 frame.
func renderLines(lines []string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, l := range lines {
		if i >= 4 {
			break
		}
		drawer.Dot = fixed.P(0, 13*(i+1))
		drawer.DrawString(l)
	}
	return img
}
