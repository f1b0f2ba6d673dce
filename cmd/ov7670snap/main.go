// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ov7670snap captures one frame from an OV7670 camera and renders it as
// ANSI/ASCII art on the terminal or writes it to an annotated PNG.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/ov7670"
	"github.com/GermanBionicSystems/ov7670/termframe"
)

var sizes = map[int]ov7670.Size{
	1:  ov7670.SizeDiv1,
	2:  ov7670.SizeDiv2,
	4:  ov7670.SizeDiv4,
	8:  ov7670.SizeDiv8,
	16: ov7670.SizeDiv16,
}

func pinByName(name string) (gpio.PinIO, error) {
	if name == "" {
		return nil, errors.New("missing pin name")
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("no GPIO pin named %q", name)
	}
	return p, nil
}

func outPinByName(name string) (gpio.PinOut, error) {
	if name == "" {
		return nil, nil
	}
	return pinByName(name)
}

// annotate draws the capture parameters into the top-left corner.
func annotate(img image.Image, text string) (image.Image, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContextForImage(img)
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: 11}))
	w, h := dc.MeasureString(text)
	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawRectangle(0, 0, w+8, h+8)
	dc.Fill()
	dc.SetRGB(1, 1, 1)
	dc.DrawString(text, 4, h+2)
	return dc.Image(), nil
}

func mainImpl() error {
	busName := flag.String("bus", "", "I²C bus to use (default: first available)")
	addr := flag.Uint("addr", uint(ov7670.DefaultAddr), "I²C address of the camera")
	div := flag.Int("div", 16, "VGA division factor (1, 2, 4, 8, 16)")
	format := flag.String("format", "yuv", "color format (rgb, yuv)")
	dataPins := flag.String("data", "", "comma separated names of the 8 data pins, D0 first")
	clkPin := flag.String("clk", "", "pixel clock pin")
	vsyncPin := flag.String("vsync", "", "VSYNC pin")
	hrefPin := flag.String("href", "", "HREF pin")
	shutdownPin := flag.String("shutdown", "", "shutdown/PWDN pin (optional)")
	resetPin := flag.String("reset", "", "reset pin (optional)")
	mclkPin := flag.String("mclk", "", "master clock output pin (optional)")
	out := flag.String("out", "", "write an annotated PNG to this path instead of the terminal")
	ascii := flag.Bool("ascii", false, "render with an ASCII ramp instead of ANSI colors")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected arguments")
	}
	size, ok := sizes[*div]
	if !ok {
		return fmt.Errorf("invalid -div %d", *div)
	}
	var cf ov7670.ColorFormat
	switch *format {
	case "rgb":
		cf = ov7670.ColorRGB
	case "yuv":
		cf = ov7670.ColorYUV
	default:
		return fmt.Errorf("invalid -format %q", *format)
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	b, err := i2creg.Open(*busName)
	if err != nil {
		return err
	}
	defer b.Close()

	names := strings.Split(*dataPins, ",")
	if len(names) != 8 {
		return errors.New("-data must name exactly 8 pins")
	}
	var data [8]gpio.PinIO
	for i, n := range names {
		if data[i], err = pinByName(strings.TrimSpace(n)); err != nil {
			return err
		}
	}
	clk, err := pinByName(*clkPin)
	if err != nil {
		return err
	}
	vsync, err := pinByName(*vsyncPin)
	if err != nil {
		return err
	}
	href, err := pinByName(*hrefPin)
	if err != nil {
		return err
	}
	grabber, err := ov7670.NewParallel(data, clk, vsync, href, 0)
	if err != nil {
		return err
	}

	opts := ov7670.DefaultOpts
	opts.Addr = uint16(*addr)
	opts.Format = cf
	opts.Size = size
	if opts.Shutdown, err = outPinByName(*shutdownPin); err != nil {
		return err
	}
	if opts.Reset, err = outPinByName(*resetPin); err != nil {
		return err
	}
	if opts.MClk, err = outPinByName(*mclkPin); err != nil {
		return err
	}

	dev, err := ov7670.New(b, grabber, &opts)
	if err != nil {
		return err
	}
	defer dev.Halt()

	buf := make([]byte, dev.FrameSize())
	if err := dev.Capture(buf); err != nil {
		return err
	}

	var img image.Image
	if cf == ov7670.ColorRGB {
		img, err = ov7670.DecodeRGB565(buf, dev.Width(), dev.Height())
	} else {
		img, err = ov7670.DecodeYUVGray(buf, dev.Width(), dev.Height())
	}
	if err != nil {
		return err
	}

	if *out != "" {
		text := fmt.Sprintf("%dx%d %s %s", dev.Width(), dev.Height(), *format, time.Now().Format(time.RFC3339))
		annotated, err := annotate(img, text)
		if err != nil {
			return err
		}
		return gg.SavePNG(*out, annotated)
	}

	mode := termframe.Color
	if *ascii {
		mode = termframe.ASCII
	}
	term := termframe.New(&termframe.Opts{Width: 80, Height: 60, Mode: mode})
	defer term.Halt()
	return term.Draw(term.Bounds(), img, image.Point{})
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "ov7670snap: %s.\n", err)
		os.Exit(1)
	}
}
