// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ov7670

// Register addresses. The OV7670 register file spans 0x00..0xC9; registers
// not named in the datasheet are written by address below.
const (
	regGain           byte = 0x00 // AGC gain bits 7:0 (9:8 in VREF)
	regBlue           byte = 0x01 // AWB blue channel gain
	regRed            byte = 0x02 // AWB red channel gain
	regVref           byte = 0x03 // Vertical frame control bits
	regCOM1           byte = 0x04 // Common control 1
	regBave           byte = 0x05 // U/B average level
	regGbave          byte = 0x06 // Y/Gb average level
	regAECHH          byte = 0x07 // Exposure value - AEC bits 15:10
	regRave           byte = 0x08 // V/R average level
	regCOM2           byte = 0x09 // Common control 2
	regPID            byte = 0x0A // Product ID MSB (read-only)
	regVER            byte = 0x0B // Product ID LSB (read-only)
	regCOM3           byte = 0x0C // Common control 3
	regCOM4           byte = 0x0D // Common control 4
	regCOM5           byte = 0x0E // Common control 5
	regCOM6           byte = 0x0F // Common control 6
	regAECH           byte = 0x10 // Exposure value bits 9:2
	regCLKRC          byte = 0x11 // Internal clock
	regCOM7           byte = 0x12 // Common control 7
	regCOM8           byte = 0x13 // Common control 8
	regCOM9           byte = 0x14 // Common control 9 - max AGC value
	regCOM10          byte = 0x15 // Common control 10
	regHStart         byte = 0x17 // Horizontal frame start high bits
	regHStop          byte = 0x18 // Horizontal frame end high bits
	regVStart         byte = 0x19 // Vertical frame start high bits
	regVStop          byte = 0x1A // Vertical frame end high bits
	regPShift         byte = 0x1B // Pixel delay select
	regMIDH           byte = 0x1C // Manufacturer ID high byte
	regMIDL           byte = 0x1D // Manufacturer ID low byte
	regMVFP           byte = 0x1E // Mirror / vertical flip enable
	regADCCtr0        byte = 0x20 // ADC control
	regADCCtr1        byte = 0x21 // Reserved
	regADCCtr2        byte = 0x22 // Reserved
	regADCCtr3        byte = 0x23 // Reserved
	regAEW            byte = 0x24 // AGC/AEC upper limit
	regAEB            byte = 0x25 // AGC/AEC lower limit
	regVPT            byte = 0x26 // AGC/AEC fast mode operating region
	regEXHCH          byte = 0x2A // Dummy pixel insert MSB
	regEXHCL          byte = 0x2B // Dummy pixel insert LSB
	regHSYST          byte = 0x30 // HSYNC rising edge delay
	regHSYEN          byte = 0x31 // HSYNC falling edge delay
	regHRef           byte = 0x32 // HREF control
	regCHLF           byte = 0x33 // Array current control
	regADC            byte = 0x37 // ADC control - reserved
	regACom           byte = 0x38 // ADC & analog common - reserved
	regOFon           byte = 0x39 // ADC offset control - reserved
	regTSLB           byte = 0x3A // Line buffer test option
	regCOM11          byte = 0x3B // Common control 11
	regCOM12          byte = 0x3C // Common control 12
	regCOM13          byte = 0x3D // Common control 13
	regCOM14          byte = 0x3E // Common control 14
	regEdge           byte = 0x3F // Edge enhancement adjustment
	regCOM15          byte = 0x40 // Common control 15
	regCOM16          byte = 0x41 // Common control 16
	regCOM17          byte = 0x42 // Common control 17
	regAWBC1          byte = 0x43 // Reserved
	regAWBC2          byte = 0x44 // Reserved
	regAWBC3          byte = 0x45 // Reserved
	regAWBC4          byte = 0x46 // Reserved
	regAWBC5          byte = 0x47 // Reserved
	regAWBC6          byte = 0x48 // Reserved
	regMTX1           byte = 0x4F // Matrix coefficient 1
	regMTX2           byte = 0x50 // Matrix coefficient 2
	regMTX3           byte = 0x51 // Matrix coefficient 3
	regMTX4           byte = 0x52 // Matrix coefficient 4
	regMTX5           byte = 0x53 // Matrix coefficient 5
	regMTX6           byte = 0x54 // Matrix coefficient 6
	regBright         byte = 0x55 // Brightness control
	regContras        byte = 0x56 // Contrast control
	regContrasCenter  byte = 0x57 // Contrast center
	regLCC3           byte = 0x64 // Lens correction option 3
	regLCC4           byte = 0x65 // Lens correction option 4
	regLCC5           byte = 0x66 // Lens correction option 5
	regGFix           byte = 0x69 // Fix gain control
	regAWBCtr3        byte = 0x6C // AWB control 3
	regAWBCtr2        byte = 0x6D // AWB control 2
	regAWBCtr1        byte = 0x6E // AWB control 1
	regAWBCtr0        byte = 0x6F // AWB control 0
	regScalingXSC     byte = 0x70 // Test pattern bit 0 + horizontal scale factor
	regScalingYSC     byte = 0x71 // Test pattern bit 1 + vertical scale factor
	regScalingDCWCtr  byte = 0x72 // DCW control
	regScalingPClkDiv byte = 0x73 // DSP scale control clock divide
	regREG74          byte = 0x74 // Digital gain control
	regSlop           byte = 0x7A // Gamma curve highest segment slope
	regGamBase        byte = 0x7B // Gamma register base (1 of 15)
	regRGB444         byte = 0x8C // RGB 444 control
	regDMLnl          byte = 0x92 // Dummy line LSB
	regLCC6           byte = 0x94 // Lens correction option 6
	regLCC7           byte = 0x95 // Lens correction option 7
	regHAECC1         byte = 0x9F // Histogram-based AEC/AGC control 1
	regHAECC2         byte = 0xA0 // Histogram-based AEC/AGC control 2
	regScalingPClkDly byte = 0xA2 // Scaling pixel clock delay
	regBD50Max        byte = 0xA5 // 50 Hz banding step limit
	regHAECC3         byte = 0xA6 // Histogram-based AEC/AGC control 3
	regHAECC4         byte = 0xA7 // Histogram-based AEC/AGC control 4
	regHAECC5         byte = 0xA8 // Histogram-based AEC/AGC control 5
	regHAECC6         byte = 0xA9 // Histogram-based AEC/AGC control 6
	regHAECC7         byte = 0xAA // Histogram-based AEC/AGC control 7
	regBD60Max        byte = 0xAB // 60 Hz banding step limit
	regABLC1          byte = 0xB1 // ABLC enable
	regTHLSt          byte = 0xB3 // ABLC target
	regSatCtr         byte = 0xC9 // Saturation control
)

// Register bits.
const (
	com3ScaleEnable byte = 0x08 // COM3 scale enable
	com3DCWEnable   byte = 0x04 // COM3 DCW (downsample/crop/window) enable

	com7Reset    byte = 0x80 // COM7 SCCB register reset
	com7RGB      byte = 0x04 // COM7 pixel format RGB
	com7YUV      byte = 0x00 // COM7 pixel format YUV
	com7ColorBar byte = 0x02 // COM7 color bar enable

	com8FastAEC byte = 0x80 // COM8 enable fast AGC/AEC algorithm
	com8AECStep byte = 0x40 // COM8 AEC step size unlimited
	com8Banding byte = 0x20 // COM8 banding filter enable
	com8AGC     byte = 0x04 // COM8 auto gain enable
	com8AWB     byte = 0x02 // COM8 auto white balance enable
	com8AEC     byte = 0x01 // COM8 auto exposure enable

	com10VSyncNeg byte = 0x02 // COM10 VSYNC negative

	com11NightMask byte = 0xE0 // COM11 night mode + frame rate bits

	mvfpMirror byte = 0x20 // MVFP mirror image
	mvfpVFlip  byte = 0x10 // MVFP vertical flip

	tslbYLast byte = 0x04 // TSLB UYVY or VYUY, see COM13

	com15FullRange byte = 0xC0 // COM15 output range 00 to FF
	com15RGB565    byte = 0x10 // COM15 RGB565 output

	com14DCWEnable byte = 0x10 // COM14 DCW & scaling PCLK enable

	scalingTestPattern byte = 0x80 // XSC/YSC bit 7, one test pattern bit each
	scalingFactorMask  byte = 0x7F // XSC/YSC bits 6:0, scale factor
)

// regVal is one entry of a register patch list.
type regVal struct {
	reg byte
	val byte
}

// initSequence is the baseline configuration pushed after reset to bring the
// sensor to a known-good default state. Values follow the OV7670
// implementation guide; entries against unnamed addresses are reserved
// registers the guide sets anyway. The sequence is order-sensitive and must
// be applied with a short delay between writes.
var initSequence = []regVal{
	{regTSLB, tslbYLast},      // No auto window
	{regCOM10, com10VSyncNeg}, // -VSYNC (required by SAMD PCC)
	{regSlop, 0x20},
	{regGamBase, 0x1C},
	{regGamBase + 1, 0x28},
	{regGamBase + 2, 0x3C},
	{regGamBase + 3, 0x55},
	{regGamBase + 4, 0x68},
	{regGamBase + 5, 0x76},
	{regGamBase + 6, 0x80},
	{regGamBase + 7, 0x88},
	{regGamBase + 8, 0x8F},
	{regGamBase + 9, 0x96},
	{regGamBase + 10, 0xA3},
	{regGamBase + 11, 0xAF},
	{regGamBase + 12, 0xC4},
	{regGamBase + 13, 0xD7},
	{regGamBase + 14, 0xE8},
	{regCOM8, com8FastAEC | com8AECStep | com8Banding},
	{regGain, 0x00},
	{regAECH, 0x00},
	{regCOM4, 0x00},
	{regCOM9, 0x20}, // Max AGC value
	{regBD50Max, 0x05},
	{regBD60Max, 0x07},
	{regAEW, 0x75},
	{regAEB, 0x63},
	{regVPT, 0xA5},
	{regHAECC1, 0x78},
	{regHAECC2, 0x68},
	{0xA1, 0x03},      // Reserved
	{regHAECC3, 0xDF}, // Histogram-based AEC/AGC setup
	{regHAECC4, 0xDF},
	{regHAECC5, 0xF0},
	{regHAECC6, 0x90},
	{regHAECC7, 0x94},
	{regCOM8, com8FastAEC | com8AECStep | com8Banding | com8AGC | com8AEC},
	{regCOM5, 0x61},
	{regCOM6, 0x4B},
	{0x16, 0x02}, // Reserved
	{regMVFP, 0x07},
	{regADCCtr1, 0x02},
	{regADCCtr2, 0x91},
	{0x29, 0x07}, // Reserved
	{regCHLF, 0x0B},
	{0x35, 0x0B}, // Reserved
	{regADC, 0x1D},
	{regACom, 0x71},
	{regOFon, 0x2A},
	{regCOM12, 0x78},
	{0x4D, 0x40}, // Reserved
	{0x4E, 0x20}, // Reserved
	{regGFix, 0x5D},
	{regREG74, 0x19},
	{0x8D, 0x4F}, // Reserved
	{0x8E, 0x00}, // Reserved
	{0x8F, 0x00}, // Reserved
	{0x90, 0x00}, // Reserved
	{0x91, 0x00}, // Reserved
	{regDMLnl, 0x00},
	{0x96, 0x00}, // Reserved
	{0x9A, 0x80}, // Reserved
	{0xB0, 0x84}, // Reserved
	{regABLC1, 0x0C},
	{0xB2, 0x0E}, // Reserved
	{regTHLSt, 0x82},
	{0xB8, 0x0A}, // Reserved
	{regAWBC1, 0x14},
	{regAWBC2, 0xF0},
	{regAWBC3, 0x34},
	{regAWBC4, 0x58},
	{regAWBC5, 0x28},
	{regAWBC6, 0x3A},
	{0x59, 0x88}, // Reserved
	{0x5A, 0x88}, // Reserved
	{0x5B, 0x44}, // Reserved
	{0x5C, 0x67}, // Reserved
	{0x5D, 0x49}, // Reserved
	{0x5E, 0x0E}, // Reserved
	{regLCC3, 0x04},
	{regLCC4, 0x20},
	{regLCC5, 0x05},
	{regLCC6, 0x04},
	{regLCC7, 0x08},
	{regAWBCtr3, 0x0A},
	{regAWBCtr2, 0x55},
	{regMTX1, 0x80},
	{regMTX2, 0x80},
	{regMTX3, 0x00},
	{regMTX4, 0x22},
	{regMTX5, 0x5E},
	{regMTX6, 0x80}, // 0x40?
	{regAWBCtr1, 0x11},
	{regAWBCtr0, 0x9F}, // Or use 0x9E for advance AWB
	{regBright, 0x00},
	{regContras, 0x40},
	{regContrasCenter, 0x80}, // 0x40?
}

// rgbSequence selects manual output format, RGB565, full 0-255 output range.
var rgbSequence = []regVal{
	{regCOM7, com7RGB},
	{regRGB444, 0x00},
	{regCOM15, com15RGB565 | com15FullRange},
}

// yuvSequence selects manual output format, YUV, full output range.
var yuvSequence = []regVal{
	{regCOM7, com7YUV},
	{regCOM15, com15FullRange},
}

// window holds the per-size pixel window tuning values. Start positions and
// the 2-bit edge offset were determined empirically against the test
// pattern; stop positions derive from the starts.
type window struct {
	vstart    int  // First visible row
	hstart    int  // First visible column
	edge      byte // HREF edge offset, 2 bits
	pclkDelay byte // SCALING_PCLK_DELAY value
}

var windows = [...]window{
	SizeDiv1:  {9, 162, 2, 2},  // 640x480 VGA
	SizeDiv2:  {10, 174, 0, 2}, // 320x240 QVGA
	SizeDiv4:  {11, 186, 2, 2}, // 160x120 QQVGA
	SizeDiv8:  {12, 210, 0, 2}, // 80x60
	SizeDiv16: {15, 252, 3, 2}, // 40x30
}
