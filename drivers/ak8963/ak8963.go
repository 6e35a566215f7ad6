// Package ak8963 provides a driver for the AK8963 three-axis magnetometer
// found inside the MPU-9250 package. The device must be reachable on the host
// bus, which for the MPU-9250 means bypass mode has been enabled first.
//
// Reads are gated on the data-ready flag and a magnetic overflow discards the
// sample:
//
//	err := d.ReadSample(&s)   // ErrNotReady / ErrOverflow are skips, not faults
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when
// both w and r are provided, without releasing the bus.
package ak8963

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// Errors returned by the driver.
var (
	ErrBadIdentity = errors.New("ak8963: unexpected WHO_AM_I")
	ErrNotReady    = errors.New("ak8963: no new data")
	ErrOverflow    = errors.New("ak8963: magnetic overflow")
)

// Config controls device addressing. All fields are optional.
type Config struct {
	// Address defaults to 0x0C if zero.
	Address uint16
}

// Device wraps an I2C connection to an AK8963 device.
type Device struct {
	bus  drivers.I2C
	addr uint16

	// Fuse-ROM sensitivity adjustments, latched during Configure.
	asa [3]byte

	// Fixed buffers to avoid per-call heap allocations.
	w [2]byte
	r [7]byte
}

// Sample holds one raw field measurement. Values are little-endian
// two's complement as read from the device.
type Sample struct {
	X, Y, Z int16
}

// New creates a new AK8963 connection. The I2C bus must already be configured
// and bypass mode enabled on the main sensor. This function only creates the
// Device object; it does not touch the device.
func New(bus drivers.I2C) *Device {
	return &Device{
		bus:  bus,
		addr: AddressDefault,
	}
}

// Connected reports whether an AK8963 answers at the configured address.
func (d *Device) Connected() (bool, error) {
	v, err := d.readReg(regWia)
	if err != nil {
		return false, err
	}
	return v == whoAmIResponse, nil
}

// Configure latches the fuse-ROM sensitivity adjustments and puts the device
// into 16-bit continuous measurement at 100 Hz:
//
//  1. power-down (any mode change must pass through power-down)
//  2. fuse-ROM access, read ASAX..ASAZ
//  3. power-down again
//  4. verify WHO_AM_I
//  5. continuous measurement 2, 16-bit
//
// The ASA registers are only valid in fuse-ROM access mode, so the values
// read there are the ones used for every later conversion.
func (d *Device) Configure(cfg Config) error {
	if cfg.Address != 0 {
		d.addr = cfg.Address
	}

	if err := d.setMode(modePowerDown); err != nil {
		return err
	}
	if err := d.setMode(modeFuseROM); err != nil {
		return err
	}
	d.w[0] = regAsaX
	if err := d.bus.Tx(d.addr, d.w[:1], d.r[:3]); err != nil {
		return err
	}
	copy(d.asa[:], d.r[:3])
	if err := d.setMode(modePowerDown); err != nil {
		return err
	}

	ok, err := d.Connected()
	if err != nil {
		return err
	}
	if !ok {
		return ErrBadIdentity
	}

	return d.setMode(modeCont100Hz)
}

// ASA returns the latched sensitivity adjustment bytes.
func (d *Device) ASA() [3]byte { return d.asa }

// ReadSample fetches one measurement.
//
// ST1 is checked first; without DRDY the previous sample would be re-read, so
// ErrNotReady is returned instead. The 7-byte burst covers HXL..ST2 (reading
// ST2 lets the device start the next measurement). A set HOFL bit means the
// field saturated the sensor and the sample is discarded with ErrOverflow.
func (d *Device) ReadSample(out *Sample) error {
	st1, err := d.readReg(regSt1)
	if err != nil {
		return err
	}
	if st1&bitDrdy == 0 {
		return ErrNotReady
	}

	d.w[0] = regHxl
	if err := d.bus.Tx(d.addr, d.w[:1], d.r[:7]); err != nil {
		return err
	}
	if d.r[6]&bitHofl != 0 {
		return ErrOverflow
	}

	out.X = int16(uint16(d.r[1])<<8 | uint16(d.r[0]))
	out.Y = int16(uint16(d.r[3])<<8 | uint16(d.r[2]))
	out.Z = int16(uint16(d.r[5])<<8 | uint16(d.r[4]))
	return nil
}

// ---------------- Unit conversion ----------------

// In 16-bit mode one LSB is 0.15 µT, scaled per axis by the fuse-ROM
// adjustment: adj = ((ASA-128)/256)+1 = (ASA+128)/256.

// MicroTesla converts a sample to µT per axis.
func (d *Device) MicroTesla(s *Sample) (x, y, z float32) {
	return d.microT(s.X, 0), d.microT(s.Y, 1), d.microT(s.Z, 2)
}

// NanoTesla converts a sample to nT per axis using integer math
// (one LSB is 150 nT before adjustment).
func (d *Device) NanoTesla(s *Sample) (x, y, z int32) {
	return d.nanoT(s.X, 0), d.nanoT(s.Y, 1), d.nanoT(s.Z, 2)
}

func (d *Device) microT(raw int16, axis int) float32 {
	adj := (float32(d.asa[axis])-128)/256 + 1
	return float32(raw) * adj * 0.15
}

func (d *Device) nanoT(raw int16, axis int) int32 {
	return int32(int64(raw) * 150 * (int64(d.asa[axis]) + 128) / 256)
}

// ---------------- Low-level register access ----------------

func (d *Device) setMode(mode byte) error {
	if err := d.writeReg(regCntl1, mode); err != nil {
		return err
	}
	time.Sleep(settleInterval * time.Millisecond)
	return nil
}

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
