// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ov7670

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

// fakeGrabber implements FrameGrabber for tests.
type fakeGrabber struct {
	fill   byte
	got    int
	halted bool
	err    error
}

func (f *fakeGrabber) Capture(buf []byte) error {
	f.got = len(buf)
	for i := range buf {
		buf[i] = f.fill
	}
	return f.err
}

func (f *fakeGrabber) Halt() error {
	f.halted = true
	return nil
}

func (f *fakeGrabber) String() string {
	return "fake"
}

// identityOps is the product id/version exchange New performs after reset.
func identityOps() []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: DefaultAddr, W: []byte{0x0A}, R: []byte{0x76}},
		{Addr: DefaultAddr, W: []byte{0x0B}, R: []byte{0x73}},
	}
}

// newOps is the whole register conversation of New for a format and size,
// assuming the scaling registers read back zero after reset.
func newOps(softReset bool, format []regVal, size Size) []i2ctest.IO {
	var ops []i2ctest.IO
	if softReset {
		ops = append(ops, i2ctest.IO{Addr: DefaultAddr, W: []byte{0x12, 0x80}})
	}
	ops = append(ops, identityOps()...)
	for _, rv := range format {
		ops = append(ops, i2ctest.IO{Addr: DefaultAddr, W: []byte{rv.reg, rv.val}})
	}
	for _, rv := range initSequence {
		ops = append(ops, i2ctest.IO{Addr: DefaultAddr, W: []byte{rv.reg, rv.val}})
	}
	ops = append(ops, sizeOps(size, 0x00, 0x00)...)
	scale := byte(0x20)
	if size == SizeDiv16 {
		scale = 0x40
	}
	return append(ops,
		i2ctest.IO{Addr: DefaultAddr, W: []byte{0x70}, R: []byte{scale}},
		i2ctest.IO{Addr: DefaultAddr, W: []byte{0x71}, R: []byte{scale}},
		i2ctest.IO{Addr: DefaultAddr, W: []byte{0x70, scale}},
		i2ctest.IO{Addr: DefaultAddr, W: []byte{0x71, scale}},
	)
}

func TestNew(t *testing.T) {
	pb := &i2ctest.Playback{Ops: newOps(true, rgbSequence, SizeDiv8), DontPanic: true}
	d, err := New(pb, nil, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if got := d.ColorFormat(); got != ColorRGB {
		t.Errorf("ColorFormat() = %d, want %d", got, ColorRGB)
	}
	if got := d.Size(); got != SizeDiv8 {
		t.Errorf("Size() = %d, want %d", got, SizeDiv8)
	}
	if got := d.Width(); got != 80 {
		t.Errorf("Width() = %d, want 80", got)
	}
	if got := d.Height(); got != 60 {
		t.Errorf("Height() = %d, want 60", got)
	}
	if got := d.NightMode(); got != NightOff {
		t.Errorf("NightMode() = %#02x, want off", byte(got))
	}
	if s := d.String(); len(s) == 0 {
		t.Error("invalid String() result")
	}
	if err := pb.Close(); err != nil {
		t.Errorf("New() did not emit the full baseline sequence: %v", err)
	}
}

func TestNewResetPin(t *testing.T) {
	// With a reset line wired there is no soft reset register write.
	pb := &i2ctest.Playback{Ops: newOps(false, rgbSequence, SizeDiv8), DontPanic: true}
	rst := &gpiotest.Pin{N: "RST"}
	opts := DefaultOpts
	opts.Reset = rst
	d, err := New(pb, nil, &opts)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	// The reset line must be left released.
	if rst.Read() != gpio.High {
		t.Error("reset line still asserted after New()")
	}
	_ = d
	if err := pb.Close(); err != nil {
		t.Errorf("unexpected transaction sequence: %v", err)
	}
}

func TestNewWrongDevice(t *testing.T) {
	ops := []i2ctest.IO{
		{Addr: DefaultAddr, W: []byte{0x12, 0x80}},
		{Addr: DefaultAddr, W: []byte{0x0A}, R: []byte{0x7F}},
		{Addr: DefaultAddr, W: []byte{0x0B}, R: []byte{0x00}},
	}
	pb := &i2ctest.Playback{Ops: ops, DontPanic: true}
	defer pb.Close()
	_, err := New(pb, nil, nil)
	var wde *WrongDeviceError
	if !errors.As(err, &wde) {
		t.Fatalf("New() = %v, want WrongDeviceError", err)
	}
	if wde.PID != 0x7F || wde.VER != 0x00 {
		t.Errorf("WrongDeviceError = %#02x/%#02x, want 0x7f/0x00", wde.PID, wde.VER)
	}
}

// TestCaptureYUVDiv16 is the end to end smallest-frame case: a 40x30 YUV
// configuration captures into a 2*40*30 buffer and fills every byte.
func TestCaptureYUVDiv16(t *testing.T) {
	fg := &fakeGrabber{fill: 0x5A}
	opts := DefaultOpts
	opts.Format = ColorYUV
	opts.Size = SizeDiv16
	pb := &i2ctest.Playback{Ops: newOps(true, yuvSequence, SizeDiv16), DontPanic: true}
	d, err := New(pb, fg, &opts)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	buf := make([]byte, d.FrameSize())
	if len(buf) != 2*40*30 {
		t.Fatalf("FrameSize() = %d, want %d", len(buf), 2*40*30)
	}
	if err := d.Capture(buf); err != nil {
		t.Fatalf("Capture() failed: %v", err)
	}
	if fg.got != len(buf) {
		t.Errorf("grabber saw %d bytes, want %d", fg.got, len(buf))
	}
	if diff := cmp.Diff(buf, bytes.Repeat([]byte{0x5A}, len(buf))); diff != "" {
		t.Errorf("frame buffer difference (-got +want):\n%s", diff)
	}
	if err := pb.Close(); err != nil {
		t.Errorf("unexpected transaction sequence: %v", err)
	}
}

func TestCaptureNoGrabber(t *testing.T) {
	d := testDev(&i2ctest.Playback{DontPanic: true})
	if err := d.Capture(make([]byte, 16)); err == nil {
		t.Error("Capture() without a grabber must fail")
	}
}

func TestProductID(t *testing.T) {
	pb := &i2ctest.Playback{Ops: identityOps(), DontPanic: true}
	d := testDev(pb)
	if pid, err := d.ProductID(); err != nil || pid != ProductIDExpected {
		t.Errorf("ProductID() = %#02x, %v, want 0x76, nil", pid, err)
	}
	if ver, err := d.ProductVersion(); err != nil || ver != ProductVersionExpected {
		t.Errorf("ProductVersion() = %#02x, %v, want 0x73, nil", ver, err)
	}
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
}

func TestHalt(t *testing.T) {
	fg := &fakeGrabber{}
	d := &Dev{
		d:       &i2c.Dev{Bus: &i2ctest.Playback{DontPanic: true}, Addr: DefaultAddr},
		grabber: fg,
		opts: Opts{
			Shutdown: &gpiotest.Pin{N: "PWDN"},
			Reset:    &gpiotest.Pin{N: "RST"},
		},
	}
	if err := d.Halt(); err != nil {
		t.Fatalf("Halt() failed: %v", err)
	}
	if !fg.halted {
		t.Error("Halt() did not release the grabber")
	}
	if err := d.Capture(make([]byte, 16)); err == nil {
		t.Error("Capture() after Halt() must fail")
	}
}
