// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ov7670

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

type captureHarness struct {
	data  [8]*gpiotest.Pin
	clk   *gpiotest.Pin
	vsync *gpiotest.Pin
	href  *gpiotest.Pin
	pc    *ParallelCapture
}

func newCaptureHarness(t *testing.T, timeout time.Duration) *captureHarness {
	t.Helper()
	h := &captureHarness{
		clk:   &gpiotest.Pin{N: "PCLK", EdgesChan: make(chan gpio.Level)},
		vsync: &gpiotest.Pin{N: "VSYNC", EdgesChan: make(chan gpio.Level)},
		href:  &gpiotest.Pin{N: "HREF"},
	}
	var data [8]gpio.PinIO
	for i := range h.data {
		h.data[i] = &gpiotest.Pin{N: fmt.Sprintf("D%d", i)}
		data[i] = h.data[i]
	}
	pc, err := NewParallel(data, h.clk, h.vsync, h.href, timeout)
	if err != nil {
		t.Fatalf("NewParallel() failed: %v", err)
	}
	h.pc = pc
	return h
}

// clockByte presents b on the data pins and pulses the pixel clock. The
// unbuffered edge channel hands control to the capture loop; the settle
// delay afterwards keeps the pins stable while it samples them.
func (h *captureHarness) clockByte(b byte) {
	for i := range h.data {
		l := gpio.Low
		if b&(1<<uint(i)) != 0 {
			l = gpio.High
		}
		_ = h.data[i].Out(l)
	}
	h.clk.EdgesChan <- gpio.High
	time.Sleep(time.Millisecond)
}

func TestParallelCapture(t *testing.T) {
	h := newCaptureHarness(t, time.Second)
	want := []byte{0x5A, 0xFF, 0x00, 0x81, 0x3C, 0xC3}
	go func() {
		h.vsync.EdgesChan <- gpio.High
		// A clock during blanking must not be sampled.
		_ = h.href.Out(gpio.Low)
		h.clockByte(0xEE)
		_ = h.href.Out(gpio.High)
		for _, b := range want {
			h.clockByte(b)
		}
	}()
	buf := make([]byte, len(want))
	if err := h.pc.Capture(buf); err != nil {
		t.Fatalf("Capture() failed: %v", err)
	}
	if diff := cmp.Diff(buf, want); diff != "" {
		t.Errorf("captured bytes difference (-got +want):\n%s", diff)
	}
}

func TestParallelCaptureTimeout(t *testing.T) {
	h := newCaptureHarness(t, 50*time.Millisecond)
	// No vsync at all.
	err := h.pc.Capture(make([]byte, 4))
	var cte *CaptureTimeoutError
	if !errors.As(err, &cte) {
		t.Fatalf("Capture() = %v, want CaptureTimeoutError", err)
	}
	if cte.Got != 0 || cte.Want != 4 {
		t.Errorf("CaptureTimeoutError = %d/%d, want 0/4", cte.Got, cte.Want)
	}

	// Frame starts but the clock stalls after two bytes.
	h = newCaptureHarness(t, 50*time.Millisecond)
	go func() {
		h.vsync.EdgesChan <- gpio.High
		_ = h.href.Out(gpio.High)
		h.clockByte(0x11)
		h.clockByte(0x22)
	}()
	err = h.pc.Capture(make([]byte, 6))
	if !errors.As(err, &cte) {
		t.Fatalf("Capture() = %v, want CaptureTimeoutError", err)
	}
	if cte.Got != 2 || cte.Want != 6 {
		t.Errorf("CaptureTimeoutError = %d/%d, want 2/6", cte.Got, cte.Want)
	}
}

func TestParallelCaptureBadBuffer(t *testing.T) {
	h := newCaptureHarness(t, 50*time.Millisecond)
	if err := h.pc.Capture(nil); err == nil {
		t.Error("Capture(nil) must fail")
	}
	if err := h.pc.Capture(make([]byte, 3)); err == nil {
		t.Error("Capture() with an odd buffer must fail")
	}
}

func TestParallelCaptureString(t *testing.T) {
	h := newCaptureHarness(t, 0)
	if s := h.pc.String(); len(s) == 0 {
		t.Error("invalid String() result")
	}
	if err := h.pc.Halt(); err != nil {
		t.Errorf("Halt() failed: %v", err)
	}
}
