package ak8963

import (
	"errors"
	"testing"

	"tinygo.org/x/drivers"
)

// Compile-time check.
var _ drivers.I2C = (*fakeI2C)(nil)

// Scripted AK8963-like fake. The ASA registers are only served in fuse-ROM
// access mode, mirroring the real part, so the mode dance in Configure is
// actually exercised.
type fakeI2C struct {
	mode   byte
	modes  []byte // CNTL1 write history
	asa    [3]byte
	drdy   bool
	hofl   bool
	field  [3]int16
	failTx error
}

func newFakeAK8963() *fakeI2C {
	return &fakeI2C{asa: [3]byte{128, 128, 144}}
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	if f.failTx != nil {
		return f.failTx
	}
	if addr != AddressDefault {
		return errors.New("wrong address")
	}

	// Mode write.
	if len(w) == 2 && w[0] == regCntl1 {
		f.mode = w[1]
		f.modes = append(f.modes, w[1])
		return nil
	}

	if len(w) != 1 || len(r) == 0 {
		return errors.New("unexpected transaction shape")
	}

	switch w[0] {
	case regWia:
		r[0] = whoAmIResponse
	case regAsaX:
		if f.mode != modeFuseROM {
			for i := range r {
				r[i] = 0
			}
			return nil
		}
		copy(r, f.asa[:])
	case regSt1:
		r[0] = 0
		if f.drdy {
			r[0] |= bitDrdy
		}
	case regHxl:
		for i, v := range f.field {
			r[2*i] = byte(uint16(v))
			r[2*i+1] = byte(uint16(v) >> 8)
		}
		r[6] = 0
		if f.hofl {
			r[6] |= bitHofl
		}
		f.drdy = false // reading ST2 ends the cycle
	default:
		return errors.New("unexpected register")
	}
	return nil
}

func TestConfigure_ModeSequenceAndASA(t *testing.T) {
	f := newFakeAK8963()
	d := New(f)

	if err := d.Configure(Config{}); err != nil {
		t.Fatalf("configure: %v", err)
	}

	wantModes := []byte{modePowerDown, modeFuseROM, modePowerDown, modeCont100Hz}
	if len(f.modes) != len(wantModes) {
		t.Fatalf("mode writes = %v, want %v", f.modes, wantModes)
	}
	for i, m := range wantModes {
		if f.modes[i] != m {
			t.Fatalf("mode write %d = 0x%02X, want 0x%02X", i, f.modes[i], m)
		}
	}

	if got := d.ASA(); got != f.asa {
		t.Fatalf("ASA = %v, want %v", got, f.asa)
	}
}

func TestConfigure_BadIdentity(t *testing.T) {
	// Answer WIA with garbage while keeping the rest of the fake intact.
	bad := &wiaOverride{inner: newFakeAK8963(), wia: 0x00}
	d := New(bad)
	if err := d.Configure(Config{}); !errors.Is(err, ErrBadIdentity) {
		t.Fatalf("expected ErrBadIdentity, got %v", err)
	}
}

type wiaOverride struct {
	inner *fakeI2C
	wia   byte
}

func (o *wiaOverride) Tx(addr uint16, w, r []byte) error {
	if len(w) == 1 && w[0] == regWia && len(r) == 1 {
		r[0] = o.wia
		return nil
	}
	return o.inner.Tx(addr, w, r)
}

func TestReadSample_DataReadyGate(t *testing.T) {
	f := newFakeAK8963()
	d := New(f)
	if err := d.Configure(Config{}); err != nil {
		t.Fatalf("configure: %v", err)
	}

	var s Sample
	if err := d.ReadSample(&s); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}

	f.drdy = true
	f.field = [3]int16{100, -200, 300}
	if err := d.ReadSample(&s); err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if s.X != 100 || s.Y != -200 || s.Z != 300 {
		t.Fatalf("sample = %+v", s)
	}

	// The burst consumed DRDY; the next read must wait again.
	if err := d.ReadSample(&s); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady after consuming sample, got %v", err)
	}
}

func TestReadSample_OverflowDiscards(t *testing.T) {
	f := newFakeAK8963()
	d := New(f)
	if err := d.Configure(Config{}); err != nil {
		t.Fatalf("configure: %v", err)
	}

	f.drdy = true
	f.hofl = true
	var s Sample
	if err := d.ReadSample(&s); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestConversion(t *testing.T) {
	f := newFakeAK8963()
	d := New(f)
	if err := d.Configure(Config{}); err != nil {
		t.Fatalf("configure: %v", err)
	}

	s := Sample{X: 100, Y: 100, Z: 100}

	// ASA 128 means adjustment 1.0, ASA 144 means 1.0625.
	nx, ny, nz := d.NanoTesla(&s)
	if nx != 15000 || ny != 15000 {
		t.Errorf("NanoTesla X/Y = %d/%d, want 15000", nx, ny)
	}
	if nz != 15937 {
		t.Errorf("NanoTesla Z = %d, want 15937", nz)
	}

	x, _, z := d.MicroTesla(&s)
	if x != 15.0 {
		t.Errorf("MicroTesla X = %v, want 15.0", x)
	}
	if z < 15.93 || z > 15.94 {
		t.Errorf("MicroTesla Z = %v, want about 15.9375", z)
	}
}
