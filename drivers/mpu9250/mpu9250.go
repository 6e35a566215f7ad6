// Package mpu9250 provides a driver for the accelerometer, gyroscope and
// temperature sensor of the InvenSense MPU-9250.
//
// The on-package AK8963 magnetometer is a separate I2C device; Configure
// enables bypass mode so it appears on the host bus at its own address
// (see the ak8963 package).
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when
// both w and r are provided, without releasing the bus.
package mpu9250

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// Errors returned by the driver.
var (
	ErrBadIdentity = errors.New("mpu9250: unexpected WHO_AM_I")
)

// Config controls addressing and the measurement ranges. A zero Address
// selects the default 0x68. The range zero values select the smallest scale
// (±2 g, ±250 dps); callers wanting the reference-board setup pass
// AccelRange8G and GyroRange2000DPS.
type Config struct {
	Address    uint16
	AccelRange AccelRange
	GyroRange  GyroRange
}

// Device wraps an I2C connection to an MPU-9250 device.
type Device struct {
	bus  drivers.I2C
	addr uint16

	accelRange AccelRange
	gyroRange  GyroRange

	// Fixed buffers to avoid per-call heap allocations.
	w [2]byte
	r [14]byte
}

// Sample holds one raw accel/temp/gyro burst.
type Sample struct {
	AX, AY, AZ int16
	GX, GY, GZ int16
	RawTemp    int16
}

// New creates a new MPU-9250 connection. The I2C bus must already be
// configured. This function only creates the Device object; it does not touch
// the device.
func New(bus drivers.I2C) *Device {
	return &Device{
		bus:  bus,
		addr: AddressDefault,
	}
}

// Connected reports whether an MPU-9250 answers at the configured address.
// It does a WHO_AM_I request and checks the response.
func (d *Device) Connected() (bool, error) {
	v, err := d.readReg(regWhoAmI)
	if err != nil {
		return false, err
	}
	return v == whoAmIResponse, nil
}

// Configure wakes the device and applies the measurement configuration:
//
//  1. wake from sleep (internal oscillator)
//  2. gyro/temp DLPF
//  3. gyro and accel full-scale ranges
//  4. accel DLPF and sample rate divider
//  5. bypass enable, so the AK8963 becomes addressable on the host bus
//
// The device needs about a millisecond after waking and after the bypass
// switch before the next transaction.
func (d *Device) Configure(cfg Config) error {
	if cfg.Address != 0 {
		d.addr = cfg.Address
	}
	d.accelRange = cfg.AccelRange
	d.gyroRange = cfg.GyroRange

	if err := d.writeReg(regPwrMgmt1, 0x00); err != nil {
		return err
	}
	time.Sleep(1 * time.Millisecond)

	if err := d.writeReg(regConfig, dlpfConfig); err != nil {
		return err
	}
	if err := d.writeReg(regGyroConfig, d.gyroRange.fsSel()); err != nil {
		return err
	}
	if err := d.writeReg(regAccelConfig, d.accelRange.fsSel()); err != nil {
		return err
	}
	if err := d.writeReg(regAccelConfig2, accelDlpfConfig); err != nil {
		return err
	}
	if err := d.writeReg(regSmplrtDiv, sampleRateDiv); err != nil {
		return err
	}

	if err := d.writeReg(regIntPinCfg, bitBypassEn); err != nil {
		return err
	}
	time.Sleep(1 * time.Millisecond)
	return nil
}

// ReadSample reads the accel/temp/gyro block in one 14-byte burst starting at
// ACCEL_XOUT_H. Values are big-endian two's complement.
func (d *Device) ReadSample(out *Sample) error {
	d.w[0] = regAccelXoutH
	if err := d.bus.Tx(d.addr, d.w[:1], d.r[:14]); err != nil {
		return err
	}
	out.AX = int16(uint16(d.r[0])<<8 | uint16(d.r[1]))
	out.AY = int16(uint16(d.r[2])<<8 | uint16(d.r[3]))
	out.AZ = int16(uint16(d.r[4])<<8 | uint16(d.r[5]))
	out.RawTemp = int16(uint16(d.r[6])<<8 | uint16(d.r[7]))
	out.GX = int16(uint16(d.r[8])<<8 | uint16(d.r[9]))
	out.GY = int16(uint16(d.r[10])<<8 | uint16(d.r[11]))
	out.GZ = int16(uint16(d.r[12])<<8 | uint16(d.r[13]))
	return nil
}

// ---------------- Unit conversion ----------------

// AccelG converts a raw accelerometer axis to g for the configured range.
func (d *Device) AccelG(raw int16) float32 {
	return float32(raw) / float32(d.accelRange.SensLSBPerG())
}

// AccelMilliG converts a raw accelerometer axis to thousandths of g.
func (d *Device) AccelMilliG(raw int16) int32 {
	return int32(int64(raw) * 1000 / int64(d.accelRange.SensLSBPerG()))
}

// GyroDPS converts a raw gyroscope axis to degrees per second.
func (d *Device) GyroDPS(raw int16) float32 {
	return float32(raw) / d.gyroRange.SensLSBPerDPS()
}

// GyroMilliDPS converts a raw gyroscope axis to thousandths of a degree per
// second.
func (d *Device) GyroMilliDPS(raw int16) int32 {
	return int32(int64(raw) * 10_000 / int64(d.gyroRange.sensDeciLSBPerDPS()))
}

// TempCelsius converts the raw die temperature to °C (raw/340 + 36.53).
func TempCelsius(raw int16) float32 {
	return float32(raw)/340.0 + 36.53
}

// TempMilliC converts the raw die temperature to thousandths of °C.
func TempMilliC(raw int16) int32 {
	return int32(int64(raw)*1000/340) + 36530
}

// ---------------- Low-level register access ----------------

func (d *Device) readReg(reg byte) (byte, error) {
	d.w[0] = reg
	if err := d.bus.Tx(d.addr, d.w[:1], d.r[:1]); err != nil {
		return 0, err
	}
	return d.r[0], nil
}

func (d *Device) writeReg(reg, val byte) error {
	d.w[0] = reg
	d.w[1] = val
	return d.bus.Tx(d.addr, d.w[:2], nil)
}
