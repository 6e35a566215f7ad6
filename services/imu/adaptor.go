// services/imu/adaptor.go
package imu

import (
	"context"
	"errors"

	"imupoll-go/drivers/ak8963"
	"imupoll-go/drivers/mpu9250"
	"imupoll-go/errcode"
	"imupoll-go/x/timex"
)

type imuAdaptor struct {
	id  string
	mpu *mpu9250.Device
	mag *ak8963.Device

	magNotReady uint64
	magOverflow uint64
}

// NewIMUAdaptor wraps a configured MPU-9250 and its AK8963. Both devices must
// already be configured (which includes the bypass switch on the main sensor).
func NewIMUAdaptor(id string, mpu *mpu9250.Device, mag *ak8963.Device) Adaptor {
	return &imuAdaptor{id: id, mpu: mpu, mag: mag}
}

func (a *imuAdaptor) ID() string { return a.id }

func (a *imuAdaptor) Capabilities() []CapInfo {
	return []CapInfo{
		{Kind: "accel", Info: map[string]any{"unit": "milli_g", "schema_version": 1, "driver": "mpu9250"}},
		{Kind: "gyro", Info: map[string]any{"unit": "milli_dps", "schema_version": 1, "driver": "mpu9250"}},
		{Kind: "temperature", Info: map[string]any{"unit": "milli_c", "schema_version": 1, "driver": "mpu9250"}},
		{Kind: "magnetic_field", Info: map[string]any{"unit": "nano_t", "schema_version": 1, "driver": "ak8963"}},
	}
}

// Collect reads the accel/temp/gyro block and, when fresh data is available,
// the magnetometer. A magnetometer skip (not ready, overflow) drops only the
// magnetic_field reading. A bus error on the main sensor fails the batch; a
// bus error on the magnetometer returns the main sensor's readings together
// with the error, so one tick's data is not lost to a mag-side fault.
func (a *imuAdaptor) Collect(ctx context.Context) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ms mpu9250.Sample
	if err := a.mpu.ReadSample(&ms); err != nil {
		return nil, &errcode.E{C: errcode.ReadFailed, Op: "mpu9250 read", Err: err}
	}
	ts := timex.NowMs()

	out := Sample{
		{Kind: "accel", TsMs: ts, Payload: map[string]any{
			"milli_g_x": a.mpu.AccelMilliG(ms.AX),
			"milli_g_y": a.mpu.AccelMilliG(ms.AY),
			"milli_g_z": a.mpu.AccelMilliG(ms.AZ),
			"ts_ms":     ts,
		}},
		{Kind: "gyro", TsMs: ts, Payload: map[string]any{
			"milli_dps_x": a.mpu.GyroMilliDPS(ms.GX),
			"milli_dps_y": a.mpu.GyroMilliDPS(ms.GY),
			"milli_dps_z": a.mpu.GyroMilliDPS(ms.GZ),
			"ts_ms":       ts,
		}},
		{Kind: "temperature", TsMs: ts, Payload: map[string]any{
			"milli_c": mpu9250.TempMilliC(ms.RawTemp),
			"ts_ms":   ts,
		}},
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}
	var ks ak8963.Sample
	switch err := a.mag.ReadSample(&ks); {
	case err == nil:
		x, y, z := a.mag.NanoTesla(&ks)
		out = append(out, Reading{Kind: "magnetic_field", TsMs: ts, Payload: map[string]any{
			"nano_t_x": x,
			"nano_t_y": y,
			"nano_t_z": z,
			"ts_ms":    ts,
		}})
	case errors.Is(err, ak8963.ErrNotReady):
		a.magNotReady++
	case errors.Is(err, ak8963.ErrOverflow):
		a.magOverflow++
	default:
		return out, &errcode.E{C: errcode.ReadFailed, Op: "ak8963 read", Err: err}
	}

	return out, nil
}

func (a *imuAdaptor) MagSkips() (notReady, overflow uint64) {
	return a.magNotReady, a.magOverflow
}
