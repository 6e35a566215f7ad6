//go:build !linux

package hostbus

import "errors"

var errNoHost = errors.New("host I2C requires linux; inject fakes in tests")

// Bus is a placeholder on platforms without a host I2C backend.
type Bus struct{}

func Open(name string) (*Bus, error) { return nil, errNoHost }

func (b *Bus) Tx(addr uint16, w, r []byte) error { return errNoHost }

func (b *Bus) Close() error { return nil }
