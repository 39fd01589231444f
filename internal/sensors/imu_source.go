// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/mpu9150/internal/config"
	"github.com/relabs-tech/mpu9150/internal/i2cbus"
	"github.com/relabs-tech/mpu9150/internal/imu"
	"github.com/relabs-tech/mpu9150/internal/mpu9150"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// IMUSource owns one MPU9150 and the bus it sits on.
type IMUSource struct {
	name string
	bus  i2c.Bus
	opts mpu9150.Opts
	dev  *mpu9150.Dev
	unit mpu9150.AngularUnit
}

var _ imu.RawSource = (*IMUSource)(nil)

// OptsFromConfig translates the configuration into driver options.
func OptsFromConfig(cfg *config.Config) mpu9150.Opts {
	opts := mpu9150.DefaultOpts
	opts.Addr = cfg.IMUAddr
	opts.MagAddr = cfg.MagAddr
	opts.Timeout = cfg.I2CTimeout()
	opts.MagTimeout = cfg.MagTimeout()
	opts.DisableIRQ = cfg.DisableIRQ
	opts.AccelRange = mpu9150.AccelRange(cfg.IMUAccelRange)
	opts.GyroRange = mpu9150.GyroRange(cfg.IMUGyroRange)
	opts.Filter = mpu9150.Filter(cfg.IMUFilter)
	opts.SampleRate = cfg.IMUSampleRateHz
	return opts
}

// GyroUnitFromConfig maps GYRO_UNIT to the driver unit.
func GyroUnitFromConfig(cfg *config.Config) mpu9150.AngularUnit {
	if cfg.GyroUnit == "rad" {
		return mpu9150.UnitRadians
	}
	return mpu9150.UnitDegrees
}

// NewIMUSource opens the configured I2C bus and initializes the MPU9150 on it.
func NewIMUSource(name string, cfg *config.Config) (*IMUSource, error) {
	bus, err := i2cbus.Open(cfg.I2CBus, physic.Frequency(cfg.I2CSpeedKHz)*physic.KiloHertz, cfg.I2CTimeout())
	if err != nil {
		return nil, fmt.Errorf("%s IMU: %w", name, err)
	}
	s, err := NewIMUSourceOnBus(name, bus, cfg)
	if err != nil {
		bus.Close()
		return nil, err
	}
	return s, nil
}

// NewIMUSourceOnBus initializes the MPU9150 on an already opened bus.
func NewIMUSourceOnBus(name string, bus i2c.Bus, cfg *config.Config) (*IMUSource, error) {
	opts := OptsFromConfig(cfg)
	dev, err := mpu9150.New(bus, &opts)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: initialization: %w", name, err)
	}
	log.Printf("%s IMU: MPU9150 at 0x%02X on %s, WHO_AM_I = 0x%02X", name, opts.Addr, bus, dev.ChipID())

	if r, err := dev.AccelRange(); err == nil {
		log.Printf("%s IMU: accelerometer range %s", name, r)
	}
	if r, err := dev.GyroRange(); err == nil {
		log.Printf("%s IMU: gyroscope range %s", name, r)
	}
	if f, err := dev.Filter(); err == nil {
		log.Printf("%s IMU: %s", name, f)
	}
	if rate, err := dev.SampleRate(); err == nil {
		log.Printf("%s IMU: output rate %s", name, rate)
	}
	if on, err := dev.Passthrough(); err != nil || !on {
		log.Printf("%s IMU: WARNING: magnetometer not reachable (passthrough=%v, err=%v)", name, on, err)
	} else {
		k := dev.MagCorrection()
		log.Printf("%s IMU: mag sensitivity adj: X=%.4f Y=%.4f Z=%.4f", name, k[0], k[1], k[2])
	}

	return &IMUSource{
		name: name,
		bus:  bus,
		opts: opts,
		dev:  dev,
		unit: GyroUnitFromConfig(cfg),
	}, nil
}

// Reinit runs the initialization sequence again on the same bus. A positive
// timeout replaces the configured bus timeout.
func (s *IMUSource) Reinit(timeout time.Duration) error {
	opts := s.opts
	if timeout > 0 {
		opts.Timeout = timeout
	}
	dev, err := mpu9150.New(s.bus, &opts)
	if err != nil {
		return fmt.Errorf("%s IMU: reinitialization: %w", s.name, err)
	}
	s.opts = opts
	s.dev = dev
	log.Printf("%s IMU: reinitialized, bus timeout %s", s.name, opts.Timeout)
	return nil
}

// Name returns the label used in logs and payloads.
func (s *IMUSource) Name() string { return s.name }

// Dev exposes the driver for register-level tools.
func (s *IMUSource) Dev() *mpu9150.Dev { return s.dev }

// Snapshot copies the interrupt-path buffers without touching the bus.
// Faults latched since the previous snapshot are reported once and cleared.
func (s *IMUSource) Snapshot(t time.Time) imu.Raw {
	a, g, m := s.dev.RawAccel(), s.dev.RawGyro(), s.dev.RawMag()
	raw := imu.Raw{
		Source: s.name,
		Time:   t,
		Ax:     a[0], Ay: a[1], Az: a[2],
		Gx: g[0], Gy: g[1], Gz: g[2],
		Mx: m[0], My: m[1], Mz: m[2],
	}
	if f := s.dev.ClearFaults(); f != 0 {
		raw.Faults = f.String()
	}
	return raw
}

// NextRaw snapshots the buffers at the current time.
func (s *IMUSource) NextRaw() (imu.Raw, error) {
	return s.Snapshot(time.Now()), nil
}

// ScaleRaw converts a snapshot with the device's current settings.
func (s *IMUSource) ScaleRaw(raw imu.Raw) imu.Scaled {
	return imu.Scaled{
		Source:   s.name,
		Time:     raw.Time,
		Accel:    s.dev.ScaleAccel([3]int16{raw.Ax, raw.Ay, raw.Az}),
		Gyro:     s.dev.ScaleGyro([3]int16{raw.Gx, raw.Gy, raw.Gz}, s.unit),
		GyroUnit: unitName(s.unit),
		Mag:      s.dev.ScaleMag([3]int16{raw.Mx, raw.My, raw.Mz}),
	}
}

// ReadScaled takes a fresh reading through the blocking path.
func (s *IMUSource) ReadScaled() (imu.Scaled, error) {
	out := imu.Scaled{Source: s.name, Time: time.Now(), GyroUnit: unitName(s.unit)}
	a, err := s.dev.Accel("xyz")
	if err != nil {
		return imu.Scaled{}, fmt.Errorf("%s IMU accel: %w", s.name, err)
	}
	g, err := s.dev.Gyro("xyz", s.unit)
	if err != nil {
		return imu.Scaled{}, fmt.Errorf("%s IMU gyro: %w", s.name, err)
	}
	copy(out.Accel[:], a)
	copy(out.Gyro[:], g)

	if m, err := s.dev.Mag("xyz"); err != nil {
		if !errors.Is(err, mpu9150.ErrMagOverflow) {
			return imu.Scaled{}, fmt.Errorf("%s IMU mag: %w", s.name, err)
		}
		log.Printf("%s IMU: magnetometer overflow detected", s.name)
	} else {
		copy(out.Mag[:], m)
	}

	if out.TempC, err = s.dev.Temperature(); err != nil {
		return imu.Scaled{}, fmt.Errorf("%s IMU temperature: %w", s.name, err)
	}
	return out, nil
}

// Close puts the device to sleep and releases the bus.
func (s *IMUSource) Close() error {
	err := s.dev.Halt()
	if c, ok := s.bus.(i2c.BusCloser); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func unitName(u mpu9150.AngularUnit) string {
	if u == mpu9150.UnitRadians {
		return "rad"
	}
	return "deg"
}
