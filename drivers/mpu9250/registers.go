// Package mpu9250 provides constants for register addresses and bitfields used
// in the operation of the MPU-9250 inertial measurement unit.
package mpu9250

const (
	// 7-bit I2C address (AD0 low).
	AddressDefault = 0x68

	// WHO_AM_I response for the MPU-9250 die.
	whoAmIResponse = 0x71

	// --- Register sub-addresses (8-bit registers) ---

	// Config / control
	regSmplrtDiv    = 0x19 // R/W sample rate divider
	regConfig       = 0x1A // R/W gyro/temp DLPF
	regGyroConfig   = 0x1B // R/W gyro full-scale select
	regAccelConfig  = 0x1C // R/W accel full-scale select
	regAccelConfig2 = 0x1D // R/W accel DLPF
	regIntPinCfg    = 0x37 // R/W interrupt pin / bypass enable
	regPwrMgmt1     = 0x6B // R/W clock source, sleep, reset

	// Readouts
	regAccelXoutH = 0x3B // R, start of the 14-byte accel/temp/gyro block
	regWhoAmI     = 0x75 // R

	// --- INT_PIN_CFG bits ---
	bitBypassEn = 0x02 // route the auxiliary I2C pins to the host bus

	// Fixed DLPF / divider settings (41 Hz gyro DLPF, 44.8 Hz accel DLPF,
	// 1 kHz internal rate divided to 125 Hz).
	dlpfConfig      = 0x03
	accelDlpfConfig = 0x03
	sampleRateDiv   = 0x07
)

// AccelRange selects the accelerometer full-scale range.
type AccelRange uint8

const (
	AccelRange2G AccelRange = iota
	AccelRange4G
	AccelRange8G
	AccelRange16G
)

// fsSel returns the ACCEL_CONFIG register value for the range.
func (r AccelRange) fsSel() byte { return byte(r) << 3 }

// SensLSBPerG returns the datasheet sensitivity in LSB per g.
func (r AccelRange) SensLSBPerG() int32 {
	switch r {
	case AccelRange2G:
		return 16384
	case AccelRange4G:
		return 8192
	case AccelRange8G:
		return 4096
	default:
		return 2048
	}
}

// GyroRange selects the gyroscope full-scale range.
type GyroRange uint8

const (
	GyroRange250DPS GyroRange = iota
	GyroRange500DPS
	GyroRange1000DPS
	GyroRange2000DPS
)

// fsSel returns the GYRO_CONFIG register value for the range.
func (r GyroRange) fsSel() byte { return byte(r) << 3 }

// sensDeciLSBPerDPS returns ten times the datasheet sensitivity in LSB per
// degree/second, so the fractional table entries stay integer (131, 65.5,
// 32.8, 16.4).
func (r GyroRange) sensDeciLSBPerDPS() int32 {
	switch r {
	case GyroRange250DPS:
		return 1310
	case GyroRange500DPS:
		return 655
	case GyroRange1000DPS:
		return 328
	default:
		return 164
	}
}

// SensLSBPerDPS returns the sensitivity in LSB per degree/second.
func (r GyroRange) SensLSBPerDPS() float32 {
	return float32(r.sensDeciLSBPerDPS()) / 10
}
