// Package config loads the imupoll YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"imupoll-go/drivers/ak8963"
	"imupoll-go/drivers/mpu9250"
	"imupoll-go/errcode"
)

// Config is the top-level configuration document.
type Config struct {
	Bus BusConfig `yaml:"bus"`
	IMU IMUConfig `yaml:"imu"`
}

// BusConfig names the host I2C bus, e.g. "/dev/i2c-1" or "1".
type BusConfig struct {
	Name string `yaml:"name"`
}

// IMUConfig selects addresses, full-scale ranges and the poll rate.
type IMUConfig struct {
	Address    uint16 `yaml:"address"`
	MagAddress uint16 `yaml:"mag_address"`
	AccelRange string `yaml:"accel_range"` // "2g", "4g", "8g", "16g"
	GyroRange  string `yaml:"gyro_range"`  // "250dps", "500dps", "1000dps", "2000dps"
	RateHz     uint32 `yaml:"rate_hz"`
}

// Default returns the configuration matching the reference board: ±8 g,
// ±2000 dps, 1 Hz polling on /dev/i2c-1.
func Default() *Config {
	return &Config{
		Bus: BusConfig{Name: "/dev/i2c-1"},
		IMU: IMUConfig{
			Address:    mpu9250.AddressDefault,
			MagAddress: ak8963.AddressDefault,
			AccelRange: "8g",
			GyroRange:  "2000dps",
			RateHz:     1,
		},
	}
}

// Load reads the configuration from a YAML file and fills in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func applyDefaults(c *Config) {
	d := Default()
	if c.Bus.Name == "" {
		c.Bus.Name = d.Bus.Name
	}
	if c.IMU.Address == 0 {
		c.IMU.Address = d.IMU.Address
	}
	if c.IMU.MagAddress == 0 {
		c.IMU.MagAddress = d.IMU.MagAddress
	}
	if c.IMU.AccelRange == "" {
		c.IMU.AccelRange = d.IMU.AccelRange
	}
	if c.IMU.GyroRange == "" {
		c.IMU.GyroRange = d.IMU.GyroRange
	}
	if c.IMU.RateHz == 0 {
		c.IMU.RateHz = d.IMU.RateHz
	}
}

// Validate checks that the range selections are understood.
func (c *Config) Validate() error {
	if _, err := c.IMU.ParsedAccelRange(); err != nil {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Err: err}
	}
	if _, err := c.IMU.ParsedGyroRange(); err != nil {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Err: err}
	}
	return nil
}

// ParsedAccelRange maps the range string onto the driver constant.
func (c IMUConfig) ParsedAccelRange() (mpu9250.AccelRange, error) {
	switch c.AccelRange {
	case "2g":
		return mpu9250.AccelRange2G, nil
	case "4g":
		return mpu9250.AccelRange4G, nil
	case "8g":
		return mpu9250.AccelRange8G, nil
	case "16g":
		return mpu9250.AccelRange16G, nil
	default:
		return 0, fmt.Errorf("unknown accel_range %q", c.AccelRange)
	}
}

// ParsedGyroRange maps the range string onto the driver constant.
func (c IMUConfig) ParsedGyroRange() (mpu9250.GyroRange, error) {
	switch c.GyroRange {
	case "250dps":
		return mpu9250.GyroRange250DPS, nil
	case "500dps":
		return mpu9250.GyroRange500DPS, nil
	case "1000dps":
		return mpu9250.GyroRange1000DPS, nil
	case "2000dps":
		return mpu9250.GyroRange2000DPS, nil
	default:
		return 0, fmt.Errorf("unknown gyro_range %q", c.GyroRange)
	}
}
