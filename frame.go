// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ov7670

import (
	"fmt"
	"image"
)

// DecodeRGB565 converts a captured RGB565 big-endian frame into an NRGBA
// image. buf must hold exactly 2*w*h bytes.
func DecodeRGB565(buf []byte, w, h int) (*image.NRGBA, error) {
	if len(buf) != 2*w*h {
		return nil, fmt.Errorf("ov7670: frame buffer is %d bytes, want %d for %dx%d", len(buf), 2*w*h, w, h)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := uint16(buf[0])<<8 | uint16(buf[1])
			buf = buf[2:]
			r := byte(p >> 11 & 0x1F)
			g := byte(p >> 5 & 0x3F)
			b := byte(p & 0x1F)
			o := img.PixOffset(x, y)
			// Replicate the high bits into the low bits so full scale
			// maps to 0xFF.
			img.Pix[o+0] = r<<3 | r>>2
			img.Pix[o+1] = g<<2 | g>>4
			img.Pix[o+2] = b<<3 | b>>2
			img.Pix[o+3] = 0xFF
		}
	}
	return img, nil
}

// DecodeYUVGray converts a captured YUV422 big-endian frame into a
// greyscale image by keeping only the luma bytes. buf must hold exactly
// 2*w*h bytes.
func DecodeYUVGray(buf []byte, w, h int) (*image.Gray, error) {
	if len(buf) != 2*w*h {
		return nil, fmt.Errorf("ov7670: frame buffer is %d bytes, want %d for %dx%d", len(buf), 2*w*h, w, h)
	}
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		img.Pix[i] = buf[2*i]
	}
	return img, nil
}
