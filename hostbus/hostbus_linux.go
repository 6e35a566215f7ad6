//go:build linux

// Package hostbus opens a host I2C bus and adapts it to the Tx shape the
// drivers are written against.
package hostbus

import (
	"fmt"

	"periph.io/x/conn/v3/driver/driverreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"tinygo.org/x/drivers"

	"imupoll-go/errcode"
)

// Compile-time check: *Bus satisfies the driver I2C interface.
var _ drivers.I2C = (*Bus)(nil)

// Bus wraps a periph I2C bus. periph's Tx performs write-then-read with a
// repeated start, which is what the register drivers require.
type Bus struct {
	bus i2c.BusCloser
}

// Open initialises the periph host drivers and opens the named bus
// (e.g. "/dev/i2c-1" or "1"). An empty name opens the first available bus.
func Open(name string) (*Bus, error) {
	// Init failure is non-fatal: sysfs buses may still resolve by name.
	_, _ = driverreg.Init()
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, &errcode.E{
			C:   errcode.UnknownBus,
			Op:  "i2c open",
			Msg: fmt.Sprintf("bus %q", name),
			Err: err,
		}
	}
	return &Bus{bus: b}, nil
}

// Tx performs one I2C transaction against addr.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	return b.bus.Tx(addr, w, r)
}

// Close releases the bus.
func (b *Bus) Close() error {
	return b.bus.Close()
}
