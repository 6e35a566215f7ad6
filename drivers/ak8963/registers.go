// Package ak8963 provides constants for register addresses and bitfields used
// in the operation of the AK8963 magnetometer.
package ak8963

const (
	// 7-bit I2C address, reachable once the MPU-9250 bypass is enabled.
	AddressDefault = 0x0C

	// WHO_AM_I (WIA) response.
	whoAmIResponse = 0x48

	// --- Register sub-addresses ---
	regWia   = 0x00 // R
	regSt1   = 0x02 // R, bit0 DRDY
	regHxl   = 0x03 // R, start of the 6-byte measurement block
	regSt2   = 0x09 // R, bit3 HOFL; reading it ends the measurement cycle
	regCntl1 = 0x0A // R/W operating mode and output bit depth
	regAsaX  = 0x10 // R, fuse-ROM sensitivity adjustment (X, Y, Z)

	// --- ST1 / ST2 bits ---
	bitDrdy = 0x01
	bitHofl = 0x08

	// --- CNTL1 modes ---
	modePowerDown  = 0x00
	modeFuseROM    = 0x0F
	modeCont100Hz  = 0x16 // continuous measurement 2, 16-bit output
	settleInterval = 1    // ms between mode switches
)
