// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ov7670

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// DefaultAddr is the I²C address of the OV7670 (write 0x42, read 0x43 on the
// wire).
const DefaultAddr uint16 = 0x21

// Product identification register values.
const (
	ProductIDExpected      byte = 0x76
	ProductVersionExpected byte = 0x73
)

// ColorFormat selects the pixel format streamed on the parallel bus. Both
// formats use 2 bytes per pixel.
type ColorFormat int

const (
	// ColorRGB is RGB565 big-endian.
	ColorRGB ColorFormat = iota
	// ColorYUV is YUV/YCbCr 422 big-endian.
	ColorYUV
)

// Size is the VGA division factor selecting the output resolution.
type Size int

const (
	SizeDiv1  Size = iota // 640x480
	SizeDiv2              // 320x240
	SizeDiv4              // 160x120
	SizeDiv8              // 80x60
	SizeDiv16             // 40x30
)

// TestPattern selects one of the sensor's synthetic output patterns.
type TestPattern int

const (
	// PatternNone is normal operation (no test pattern).
	PatternNone TestPattern = iota
	// PatternShifting1 is the "shifting 1" pattern.
	PatternShifting1
	// PatternColorBar is 8 color bars.
	PatternColorBar
	// PatternColorBarFade is color bars with fade to white.
	PatternColorBarFade
)

// NightMode reduces the frame rate to increase exposure in low light. The
// values are the raw COM11 top-3-bit encodings. The sensor also has a
// "same frame rate" night mode but it does not seem to do anything useful,
// so it is not exposed.
type NightMode byte

const (
	NightOff     NightMode = 0x00
	NightHalf    NightMode = 0xA0 // 1/2 frame rate
	NightQuarter NightMode = 0xC0 // 1/4 frame rate
	NightEighth  NightMode = 0xE0 // 1/8 frame rate
)

// Opts holds the configuration options for the device.
type Opts struct {
	// Addr is the I²C address. Defaults to DefaultAddr.
	Addr uint16
	// Format is the color format applied during initialization.
	Format ColorFormat
	// Size is the frame size applied during initialization.
	Size Size

	// Shutdown is the power-down line to the camera, also called PWDN or
	// enable. Optional.
	Shutdown gpio.PinOut
	// Reset is the active-low reset line to the camera. Optional; without
	// it a soft reset is issued over the bus instead.
	Reset gpio.PinOut
	// MClk is the pin on which to generate the master clock, or nil if the
	// clock is generated externally.
	MClk gpio.PinOut
	// MClkFrequency is the master clock frequency to generate. Only used
	// with MClk. Defaults to 16MHz.
	MClkFrequency physic.Frequency
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Addr:          DefaultAddr,
	Format:        ColorRGB,
	Size:          SizeDiv8,
	MClkFrequency: 16 * physic.MegaHertz,
}

// Dev is a handle to an OV7670 camera configured over I²C. It is the sole
// writer of the sensor's registers; the pixel data path is delegated to a
// FrameGrabber.
type Dev struct {
	d       *i2c.Dev
	grabber FrameGrabber
	opts    Opts

	mu      sync.Mutex
	format  ColorFormat
	size    Size
	pattern TestPattern
	flipX   bool
	flipY   bool
	night   NightMode
}

// New powers up and initializes an OV7670 attached to the given I²C bus,
// leaving it streaming frames in the configured format and size. grabber
// receives the pixel data path and may be nil if only register access is
// needed. The Opts can be nil.
//
// The power-up sequence takes a bit over 400ms, dominated by the mandatory
// wait after releasing the shutdown line and the per-register settle delay
// of the baseline configuration.
func New(b i2c.Bus, grabber FrameGrabber, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	addr := opts.Addr
	if addr == 0 {
		addr = DefaultAddr
	}
	freq := opts.MClkFrequency
	if freq == 0 {
		freq = 16 * physic.MegaHertz
	}

	d := &Dev{
		d:       &i2c.Dev{Bus: b, Addr: addr},
		grabber: grabber,
		opts:    *opts,
		night:   NightOff,
	}

	if opts.MClk != nil {
		if err := opts.MClk.PWM(gpio.DutyHalf, freq); err != nil {
			return nil, fmt.Errorf("ov7670: failed to start master clock: %v", err)
		}
	}

	if opts.Shutdown != nil {
		if err := opts.Shutdown.Out(gpio.High); err != nil {
			return nil, err
		}
		time.Sleep(time.Millisecond)
		if err := opts.Shutdown.Out(gpio.Low); err != nil {
			return nil, err
		}
		// Datasheet: wait for internal regulators to settle after power-up.
		time.Sleep(300 * time.Millisecond)
	}

	if opts.Reset != nil {
		if err := opts.Reset.Out(gpio.Low); err != nil {
			return nil, err
		}
		time.Sleep(time.Millisecond)
		if err := opts.Reset.Out(gpio.High); err != nil {
			return nil, err
		}
	} else {
		if err := d.writeRegister(regCOM7, com7Reset); err != nil {
			return nil, fmt.Errorf("ov7670: soft reset failed: %v", err)
		}
	}
	time.Sleep(time.Millisecond)

	pid, err := d.ProductID()
	if err != nil {
		return nil, fmt.Errorf("ov7670: failed to read product id: %v", err)
	}
	ver, err := d.ProductVersion()
	if err != nil {
		return nil, fmt.Errorf("ov7670: failed to read product version: %v", err)
	}
	if pid != ProductIDExpected || ver != ProductVersionExpected {
		return nil, &WrongDeviceError{PID: pid, VER: ver}
	}

	if err := d.SetColorFormat(opts.Format); err != nil {
		return nil, err
	}
	if err := d.writeList(initSequence); err != nil {
		return nil, err
	}
	if err := d.SetSize(opts.Size); err != nil {
		return nil, err
	}
	if err := d.SetTestPattern(PatternNone); err != nil {
		return nil, err
	}
	return d, nil
}

// Capture fills buf with one frame from the pixel bus. buf must hold exactly
// FrameSize() bytes; the grabber reports mismatches.
func (d *Dev) Capture(buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.grabber == nil {
		return fmt.Errorf("ov7670: no frame grabber configured")
	}
	return d.grabber.Capture(buf)
}

// Width returns the frame width in pixels for the current size.
func (d *Dev) Width() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return 640 >> uint(d.size)
}

// Height returns the frame height in pixels for the current size.
func (d *Dev) Height() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return 480 >> uint(d.size)
}

// FrameSize returns the size in bytes of one frame in the current
// configuration. Both color formats use 2 bytes per pixel.
func (d *Dev) FrameSize() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return 2 * (640 >> uint(d.size)) * (480 >> uint(d.size))
}

// ColorFormat returns the current color format.
func (d *Dev) ColorFormat() ColorFormat {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.format
}

// Size returns the current frame size class.
func (d *Dev) Size() Size {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.size
}

// TestPattern returns the current test pattern.
func (d *Dev) TestPattern() TestPattern {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pattern
}

// FlipX returns whether the image is mirrored horizontally.
func (d *Dev) FlipX() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flipX
}

// FlipY returns whether the image is flipped vertically.
func (d *Dev) FlipY() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flipY
}

// NightMode returns the current night mode.
func (d *Dev) NightMode() NightMode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.night
}

// ProductID reads the PID register. The expected value is 0x76.
func (d *Dev) ProductID() (byte, error) {
	return d.readRegister(regPID)
}

// ProductVersion reads the VER register. The expected value is 0x73.
func (d *Dev) ProductVersion() (byte, error) {
	return d.readRegister(regVER)
}

// Halt releases the frame grabber and the clock and control pins. Implements
// conn.Resource. The device is unusable afterwards; construct a new Dev to
// restart it.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var err error
	if d.grabber != nil {
		err = d.grabber.Halt()
		d.grabber = nil
	}
	for _, p := range []gpio.PinOut{d.opts.MClk, d.opts.Shutdown, d.opts.Reset} {
		if p == nil {
			continue
		}
		if e := p.Halt(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

func (d *Dev) String() string {
	return fmt.Sprintf("ov7670: %s", d.d.String())
}

// writeList applies a register patch list in order, honoring the sensor's
// minimum settle time between writes.
func (d *Dev) writeList(list []regVal) error {
	for _, rv := range list {
		if err := d.writeRegister(rv.reg, rv.val); err != nil {
			return err
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

func (d *Dev) writeRegister(reg, value byte) error {
	return d.d.Tx([]byte{reg, value}, nil)
}

func (d *Dev) readRegister(reg byte) (byte, error) {
	r := make([]byte, 1)
	if err := d.d.Tx([]byte{reg}, r); err != nil {
		return 0, err
	}
	return r[0], nil
}

var _ conn.Resource = &Dev{}
