// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ov7670

// SetColorFormat switches the output pixel format by applying the matching
// register patch list. The registers involved are owned by the format
// selection, so no read-modify-write is needed.
func (d *Dev) SetColorFormat(f ColorFormat) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := rgbSequence
	if f == ColorYUV {
		list = yuvSequence
	}
	if err := d.writeList(list); err != nil {
		return err
	}
	d.format = f
	return nil
}

// SetSize reconfigures downsampling, scaling and the pixel window for the
// given size class. The sensor starts streaming frames of Width()xHeight()
// pixels at the next frame boundary.
func (d *Dev) SetSize(s Size) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.frameControl(s, windows[s]); err != nil {
		return err
	}
	d.size = s
	return nil
}

// frameControl derives and writes every size-dependent register. All writes
// but the scale factor fully own their register and are computed fresh; the
// scale factor shares SCALING_XSC/YSC with the test pattern bits and must
// preserve them.
func (d *Dev) frameControl(size Size, w window) error {
	// Enable downsampling if sub-VGA, and zoom if 1:16 scale.
	value := byte(0)
	if size > SizeDiv1 {
		value = com3DCWEnable
	}
	if size == SizeDiv16 {
		value |= com3ScaleEnable
	}
	if err := d.writeRegister(regCOM3, value); err != nil {
		return err
	}

	// Enable PCLK division if sub-VGA: 2,4,8,16 -> 0x19,1A,1B,1C.
	value = 0
	if size > SizeDiv1 {
		value = 0x18 + byte(size)
	}
	if err := d.writeRegister(regCOM14, value); err != nil {
		return err
	}

	// Horizontal/vertical downsample ratio, 1:8 max; beyond that the zoom
	// path takes over. H and V ratios are always equal, replicated into
	// both nibbles.
	ratio := size
	if ratio > SizeDiv8 {
		ratio = SizeDiv8
	}
	if err := d.writeRegister(regScalingDCWCtr, byte(ratio)*0x11); err != nil {
		return err
	}

	// Pixel clock divider if sub-VGA.
	value = 0x08
	if size > SizeDiv1 {
		value = 0xF0 + byte(size)
	}
	if err := d.writeRegister(regScalingPClkDiv, value); err != nil {
		return err
	}

	// Apply 0.5 digital zoom at 1:16 size (others are downsample only).
	// Bit 7 of both scale registers holds a test pattern bit and must
	// survive the write.
	scale := byte(0x20) // 1.0
	if size == SizeDiv16 {
		scale = 0x40 // 0.5
	}
	xsc, err := d.readRegister(regScalingXSC)
	if err != nil {
		return err
	}
	ysc, err := d.readRegister(regScalingYSC)
	if err != nil {
		return err
	}
	xsc = (xsc & scalingTestPattern) | scale
	ysc = (ysc & scalingTestPattern) | scale
	if err := d.writeRegister(regScalingXSC, xsc); err != nil {
		return err
	}
	if err := d.writeRegister(regScalingYSC, ysc); err != nil {
		return err
	}

	// Window geometry is scattered across multiple registers. Stops derive
	// from the starts; the horizontal stop wraps across the blanking
	// interval of the 784-clock line.
	vstop := w.vstart + 480
	hstop := (w.hstart + 640) % 784
	if err := d.writeRegister(regHStart, byte(w.hstart>>3)); err != nil {
		return err
	}
	if err := d.writeRegister(regHStop, byte(hstop>>3)); err != nil {
		return err
	}
	href := w.edge<<6 | byte(hstop&0b111)<<3 | byte(w.hstart&0b111)
	if err := d.writeRegister(regHRef, href); err != nil {
		return err
	}
	if err := d.writeRegister(regVStart, byte(w.vstart>>2)); err != nil {
		return err
	}
	if err := d.writeRegister(regVStop, byte(vstop>>2)); err != nil {
		return err
	}
	vref := byte(vstop&0b11)<<2 | byte(w.vstart&0b11)
	if err := d.writeRegister(regVref, vref); err != nil {
		return err
	}

	return d.writeRegister(regScalingPClkDly, w.pclkDelay)
}

// SetTestPattern enables one of the synthetic output patterns. The 2-bit
// pattern id is spread across the top bits of SCALING_XSC and SCALING_YSC;
// the scale factor in the low bits belongs to SetSize and is left untouched.
func (d *Dev) SetTestPattern(p TestPattern) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	xsc, err := d.readRegister(regScalingXSC)
	if err != nil {
		return err
	}
	ysc, err := d.readRegister(regScalingYSC)
	if err != nil {
		return err
	}
	xsc &^= scalingTestPattern
	ysc &^= scalingTestPattern
	if p&1 != 0 {
		xsc |= scalingTestPattern
	}
	if p&2 != 0 {
		ysc |= scalingTestPattern
	}
	if err := d.writeRegister(regScalingXSC, xsc); err != nil {
		return err
	}
	if err := d.writeRegister(regScalingYSC, ysc); err != nil {
		return err
	}
	d.pattern = p
	return nil
}

// SetFlipX mirrors the image horizontally.
func (d *Dev) SetFlipX(mirror bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.setFlip(mirror, d.flipY); err != nil {
		return err
	}
	d.flipX = mirror
	return nil
}

// SetFlipY flips the image vertically.
func (d *Dev) SetFlipY(vflip bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.setFlip(d.flipX, vflip); err != nil {
		return err
	}
	d.flipY = vflip
	return nil
}

// setFlip applies both flip flags in a single read-modify-write of MVFP so
// the sensor never latches a half-applied state mid-frame. The remaining
// MVFP bits are reserved and preserved.
func (d *Dev) setFlip(mirror, vflip bool) error {
	mvfp, err := d.readRegister(regMVFP)
	if err != nil {
		return err
	}
	if mirror {
		mvfp |= mvfpMirror
	} else {
		mvfp &^= mvfpMirror
	}
	if vflip {
		mvfp |= mvfpVFlip
	} else {
		mvfp &^= mvfpVFlip
	}
	return d.writeRegister(regMVFP, mvfp)
}

// SetNightMode changes the low-light frame rate reduction. The encoding
// lives in the top 3 bits of COM11; the low 5 bits hold unrelated controls
// and are preserved.
func (d *Dev) SetNightMode(m NightMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	com11, err := d.readRegister(regCOM11)
	if err != nil {
		return err
	}
	com11 = com11&^com11NightMask | byte(m)
	if err := d.writeRegister(regCOM11, com11); err != nil {
		return err
	}
	d.night = m
	return nil
}
