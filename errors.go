// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ov7670

import "fmt"

// WrongDeviceError is returned by New when the product identification
// registers do not match the OV7670.
type WrongDeviceError struct {
	PID byte
	VER byte
}

func (e *WrongDeviceError) Error() string {
	return fmt.Sprintf("ov7670: unexpected product id %#02x version %#02x, want 0x76 0x73", e.PID, e.VER)
}

// CaptureTimeoutError is returned when the pixel bus stalls before a full
// frame was transferred.
type CaptureTimeoutError struct {
	// Got is the number of bytes transferred before the stall.
	Got int
	// Want is the size of the capture buffer.
	Want int
}

func (e *CaptureTimeoutError) Error() string {
	return fmt.Sprintf("ov7670: pixel bus stalled after %d of %d bytes", e.Got, e.Want)
}
