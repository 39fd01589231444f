// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicIMURaw    string
	TopicIMUScaled string
	TopicPose      string

	// I2C bus
	I2CBus       string // "" selects the first bus
	I2CSpeedKHz  int
	I2CTimeoutMS int

	// IMU Hardware
	IMUAddr    uint16 // 0x68, or 0x69 with AD0 high
	MagAddr    uint16
	DisableIRQ bool

	// IMU Sensor Ranges
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	IMUGyroRange byte
	// Low-pass filter: 0=260Hz ... 6=5Hz
	IMUFilter byte
	// Output data rate in Hz, 0 leaves the divider untouched
	IMUSampleRateHz int

	// Timing
	IMUSampleInterval int // milliseconds between IRQ reads
	PublishInterval   int // milliseconds between MQTT publishes
	MagTimeoutMS      int

	// Units
	GyroUnit string // "deg" or "rad"

	// Web Server
	WebServerPort              int
	RegisterDebugPort          int
	RegisterDebugAllowedRanges string // e.g. "0x19-0x1C,0x37,0x6A-0x6B"

	// Display
	DisplayI2CBus         string
	DisplayUpdateInterval int    // milliseconds
	DisplayContent        string // "imu_raw", "imu_scaled" or "orientation"
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through InitGlobal and Get.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used for keys the file leaves out.
func Default() *Config {
	return &Config{
		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDProducer: "mpu9150-producer",
		MQTTClientIDConsole:  "mpu9150-console",
		MQTTClientIDWeb:      "mpu9150-web",
		MQTTClientIDDisplay:  "mpu9150-display",

		TopicIMURaw:    "mpu9150/imu/raw",
		TopicIMUScaled: "mpu9150/imu/scaled",
		TopicPose:      "mpu9150/pose",

		I2CSpeedKHz:  400,
		I2CTimeoutMS: 10,

		IMUAddr:    0x68,
		MagAddr:    0x0C,
		DisableIRQ: true,

		IMUAccelRange: 3,
		IMUGyroRange:  3,

		IMUSampleInterval: 10,
		PublishInterval:   100,
		MagTimeoutMS:      20,

		GyroUnit: "deg",

		WebServerPort:     8080,
		RegisterDebugPort: 8081,

		DisplayUpdateInterval: 250,
		DisplayContent:        "imu_scaled",
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse reads KEY=VALUE lines on top of Default. Blank lines and lines
// starting with # are skipped.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		if err := cfg.setValue(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseRange(key, value string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s must be %d-%d, got %d", key, lo, hi, v)
	}
	return v, nil
}

func parseAddr(key, value string) (uint16, error) {
	v, err := strconv.ParseUint(value, 0, 7)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return uint16(v), nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	var v int
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_IMU_RAW":
		c.TopicIMURaw = value
	case "TOPIC_IMU_SCALED":
		c.TopicIMUScaled = value
	case "TOPIC_POSE":
		c.TopicPose = value

	// I2C bus
	case "I2C_BUS":
		c.I2CBus = value
	case "I2C_SPEED_KHZ":
		v, err = parseRange(key, value, 10, 3400)
		c.I2CSpeedKHz = v
	case "I2C_TIMEOUT_MS":
		v, err = parseRange(key, value, 0, 10000)
		c.I2CTimeoutMS = v

	// IMU Hardware
	case "IMU_ADDR":
		var a uint16
		a, err = parseAddr(key, value)
		if err == nil && a != 0x68 && a != 0x69 {
			err = fmt.Errorf("IMU_ADDR must be 0x68 or 0x69, got 0x%02X", a)
		}
		c.IMUAddr = a
	case "MAG_ADDR":
		c.MagAddr, err = parseAddr(key, value)
	case "DISABLE_IRQ":
		var b bool
		b, err = strconv.ParseBool(value)
		if err != nil {
			err = fmt.Errorf("invalid DISABLE_IRQ %q: %w", value, err)
		}
		c.DisableIRQ = b

	// IMU Sensor Ranges
	case "IMU_ACCEL_RANGE":
		v, err = parseRange(key, value, 0, 3)
		c.IMUAccelRange = byte(v)
	case "IMU_GYRO_RANGE":
		v, err = parseRange(key, value, 0, 3)
		c.IMUGyroRange = byte(v)
	case "IMU_FILTER":
		v, err = parseRange(key, value, 0, 6)
		c.IMUFilter = byte(v)
	case "IMU_SAMPLE_RATE_HZ":
		v, err = parseRange(key, value, 0, 8000)
		c.IMUSampleRateHz = v

	// Timing
	case "IMU_SAMPLE_INTERVAL":
		v, err = parseRange(key, value, 1, 60000)
		c.IMUSampleInterval = v
	case "PUBLISH_INTERVAL":
		v, err = parseRange(key, value, 1, 60000)
		c.PublishInterval = v
	case "MAG_TIMEOUT_MS":
		v, err = parseRange(key, value, 1, 1000)
		c.MagTimeoutMS = v

	case "GYRO_UNIT":
		if value != "deg" && value != "rad" {
			return fmt.Errorf("GYRO_UNIT must be deg or rad, got %q", value)
		}
		c.GyroUnit = value

	// Web Server
	case "WEB_SERVER_PORT":
		v, err = parseRange(key, value, 1, 65535)
		c.WebServerPort = v
	case "REGISTER_DEBUG_PORT":
		v, err = parseRange(key, value, 1, 65535)
		c.RegisterDebugPort = v
	case "REGISTER_DEBUG_ALLOWED_RANGES":
		if _, err = ParseRegisterRanges(value); err == nil {
			c.RegisterDebugAllowedRanges = value
		}

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_UPDATE_INTERVAL":
		v, err = parseRange(key, value, 10, 60000)
		c.DisplayUpdateInterval = v
	case "DISPLAY_CONTENT":
		switch value {
		case "imu_raw", "imu_scaled", "orientation":
			c.DisplayContent = value
		default:
			return fmt.Errorf("unknown DISPLAY_CONTENT %q", value)
		}

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicIMURaw == "" || c.TopicIMUScaled == "" || c.TopicPose == "" {
		return fmt.Errorf("TOPIC_IMU_RAW, TOPIC_IMU_SCALED and TOPIC_POSE are required")
	}
	if c.MagAddr == c.IMUAddr {
		return fmt.Errorf("MAG_ADDR 0x%02X collides with IMU_ADDR", c.MagAddr)
	}
	return nil
}

// I2CTimeout returns I2C_TIMEOUT_MS as a duration.
func (c *Config) I2CTimeout() time.Duration {
	return time.Duration(c.I2CTimeoutMS) * time.Millisecond
}

// MagTimeout returns MAG_TIMEOUT_MS as a duration.
func (c *Config) MagTimeout() time.Duration {
	return time.Duration(c.MagTimeoutMS) * time.Millisecond
}

// RegisterRange is an inclusive span of register addresses.
type RegisterRange struct {
	Lo, Hi byte
}

// ParseRegisterRanges parses a list like "0x1B-0x1D,0x6B". An empty string
// yields no ranges.
func ParseRegisterRanges(s string) ([]RegisterRange, error) {
	var out []RegisterRange
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isSpan := strings.Cut(part, "-")
		if !isSpan {
			hi = lo
		}
		l, err := strconv.ParseUint(strings.TrimSpace(lo), 0, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid register range %q: %w", part, err)
		}
		h, err := strconv.ParseUint(strings.TrimSpace(hi), 0, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid register range %q: %w", part, err)
		}
		if l > h {
			return nil, fmt.Errorf("invalid register range %q: start after end", part)
		}
		out = append(out, RegisterRange{Lo: byte(l), Hi: byte(h)})
	}
	return out, nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
