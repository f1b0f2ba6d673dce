// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ov7670 controls an OmniVision OV7670 VGA camera.
//
// The sensor is configured over I²C (SCCB) while pixel data is streamed on a
// separate 8-bit parallel bus with pixel clock, VSYNC and HREF lines. The
// driver owns the register file: reset and power sequencing, the baseline
// configuration, output size from VGA down to 40x30, RGB565 or YUV422 output,
// mirror/flip, night mode and the built-in test patterns. Pixel capture is
// delegated to a FrameGrabber; a polling GPIO implementation is included for
// heavily clock-divided setups.
//
// For detailed register information, refer to the [datasheet].
//
// [datasheet]: https://web.mit.edu/6.111/www/f2016/tools/OV7670_2006.pdf
package ov7670
