// cmd/imupoll/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"imupoll-go/bus"
	"imupoll-go/config"
	"imupoll-go/drivers/ak8963"
	"imupoll-go/drivers/mpu9250"
	"imupoll-go/hostbus"
	"imupoll-go/services/imu"
	"imupoll-go/x/timex"
)

const adaptorID = "imu0"

func main() {
	cfgPath := flag.String("config", "", "path to YAML config (built-in defaults when empty)")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		c, err := config.Load(*cfgPath)
		if err != nil {
			fatal(err)
		}
		cfg = c
	}

	i2c, err := hostbus.Open(cfg.Bus.Name)
	if err != nil {
		fatal(err)
	}
	defer i2c.Close()

	// Ranges were validated on load; defaults always parse.
	accelRange, _ := cfg.IMU.ParsedAccelRange()
	gyroRange, _ := cfg.IMU.ParsedGyroRange()

	fmt.Println("starting mpu9250...")
	mpu := mpu9250.New(i2c)
	if err := mpu.Configure(mpu9250.Config{
		Address:    cfg.IMU.Address,
		AccelRange: accelRange,
		GyroRange:  gyroRange,
	}); err != nil {
		fatal(fmt.Errorf("mpu9250 configure: %w", err))
	}
	ok, err := mpu.Connected()
	if err != nil {
		fatal(fmt.Errorf("mpu9250 probe: %w", err))
	}
	if !ok {
		fatal(fmt.Errorf("no mpu9250 at 0x%02X on %s", cfg.IMU.Address, cfg.Bus.Name))
	}

	// The magnetometer is only reachable after the bypass switch above.
	mag := ak8963.New(i2c)
	if err := mag.Configure(ak8963.Config{Address: cfg.IMU.MagAddress}); err != nil {
		fatal(fmt.Errorf("ak8963 configure: %w", err))
	}
	asa := mag.ASA()
	fmt.Printf("ak8963 asa: %d %d %d\n", asa[0], asa[1], asa[2])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bus.NewBus(16)
	svc := imu.NewService(imu.NewIMUAdaptor(adaptorID, mpu, mag), timex.PeriodFromHz(cfg.IMU.RateHz))
	if err := svc.Start(ctx, b.NewConnection("imu-svc")); err != nil {
		fatal(err)
	}

	// The console printer is just another subscriber.
	conn := b.NewConnection("console")
	sub := conn.Subscribe(bus.T("imu", "cap", "+", adaptorID, "value"))
	defer conn.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			fmt.Println("imupoll stopping")
			return
		case m := <-sub.Channel():
			printReading(m)
		}
	}
}

// printReading formats one fixed-point reading in physical units.
func printReading(m *bus.Message) {
	if len(m.Topic) < 3 {
		return
	}
	p, ok := m.Payload.(map[string]any)
	if !ok {
		return
	}
	switch m.Topic[2] {
	case "accel":
		fmt.Printf("accel (g): %.3f, %.3f, %.3f\n",
			milli(p["milli_g_x"]), milli(p["milli_g_y"]), milli(p["milli_g_z"]))
	case "gyro":
		fmt.Printf("gyro (dps): %.3f, %.3f, %.3f\n",
			milli(p["milli_dps_x"]), milli(p["milli_dps_y"]), milli(p["milli_dps_z"]))
	case "temperature":
		fmt.Printf("temp: %.2f C\n", milli(p["milli_c"]))
	case "magnetic_field":
		fmt.Printf("mag (uT): %.2f, %.2f, %.2f\n",
			milli(p["nano_t_x"]), milli(p["nano_t_y"]), milli(p["nano_t_z"]))
	}
}

// milli steps a fixed-point value down one SI prefix (milli-g → g, nT → µT).
func milli(v any) float64 {
	if x, ok := v.(int32); ok {
		return float64(x) / 1000
	}
	return 0
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
