// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ov7670

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// FrameGrabber streams pixel bytes from the camera's parallel bus into a
// caller-supplied buffer. Implementations own the buffer size contract: a
// Capture fills exactly len(buf) bytes or fails.
type FrameGrabber interface {
	conn.Resource

	// Capture blocks until one full frame has been transferred into buf.
	Capture(buf []byte) error
}

// ParallelCapture reads the camera's 8-bit parallel bus by polling GPIO
// lines: one pixel byte is sampled from the data pins on each rising pixel
// clock edge while HREF is high, starting at a VSYNC edge.
//
// Sampling through the GPIO subsystem only keeps up with a heavily divided
// pixel clock (SizeDiv8 and below with the PCLK divider active); faster
// configurations need a hardware-assisted grabber behind the same
// interface.
type ParallelCapture struct {
	data  [8]gpio.PinIO
	clk   gpio.PinIO
	vsync gpio.PinIO
	href  gpio.PinIO

	timeout time.Duration
}

// NewParallel returns a ParallelCapture reading the given pins. data holds
// the 8 data lines in order D0..D7. timeout bounds each wait for a clock or
// frame edge; 0 defaults to one second.
func NewParallel(data [8]gpio.PinIO, clk, vsync, href gpio.PinIO, timeout time.Duration) (*ParallelCapture, error) {
	if timeout == 0 {
		timeout = time.Second
	}
	p := &ParallelCapture{data: data, clk: clk, vsync: vsync, href: href, timeout: timeout}
	for _, d := range data {
		if err := d.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("ov7670: failed to configure data pin %s: %v", d, err)
		}
	}
	if err := href.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("ov7670: failed to configure href pin %s: %v", href, err)
	}
	if err := clk.In(gpio.PullNoChange, gpio.RisingEdge); err != nil {
		return nil, fmt.Errorf("ov7670: failed to configure clock pin %s: %v", clk, err)
	}
	if err := vsync.In(gpio.PullNoChange, gpio.RisingEdge); err != nil {
		return nil, fmt.Errorf("ov7670: failed to configure vsync pin %s: %v", vsync, err)
	}
	return p, nil
}

// Capture waits for the start of the next frame and fills buf, one byte per
// rising clock edge while HREF is high. A stalled bus surfaces as
// CaptureTimeoutError.
func (p *ParallelCapture) Capture(buf []byte) error {
	if len(buf) == 0 || len(buf)%2 != 0 {
		return fmt.Errorf("ov7670: capture buffer must be a positive multiple of 2 bytes, got %d", len(buf))
	}
	if !p.vsync.WaitForEdge(p.timeout) {
		return &CaptureTimeoutError{Got: 0, Want: len(buf)}
	}
	n := 0
	for n < len(buf) {
		if !p.clk.WaitForEdge(p.timeout) {
			return &CaptureTimeoutError{Got: n, Want: len(buf)}
		}
		if p.href.Read() != gpio.High {
			// Blanking interval.
			continue
		}
		var b byte
		for i, d := range p.data {
			if d.Read() == gpio.High {
				b |= 1 << uint(i)
			}
		}
		buf[n] = b
		n++
	}
	return nil
}

// Halt releases edge detection on the bus pins. Implements conn.Resource.
func (p *ParallelCapture) Halt() error {
	var err error
	pins := []gpio.PinIO{p.clk, p.vsync, p.href}
	pins = append(pins, p.data[:]...)
	for _, pin := range pins {
		if e := pin.Halt(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

func (p *ParallelCapture) String() string {
	return fmt.Sprintf("parallel8{clk: %s, vsync: %s, href: %s}", p.clk, p.vsync, p.href)
}

var _ FrameGrabber = &ParallelCapture{}
