// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termframe implements a 2D display.Drawer that renders camera
// frames to a terminal (stdout) using ANSI color codes.
//
// Useful to check framing and exposure over SSH without a display attached.
package termframe

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"golang.org/x/image/draw"
	"periph.io/x/conn/v3/display"
)

// Mode selects how pixels are turned into terminal cells.
type Mode int

const (
	// Color renders each pixel as a colored block pair using the 256 color
	// ANSI palette.
	Color Mode = iota
	// ASCII renders luminance as characters from a 10-step ramp, two
	// characters per pixel to roughly compensate cell aspect ratio.
	ASCII
)

// ramp is ordered from dark to bright.
const ramp = " .:-=+*#%@"

// Opts represents the options available for this display.
type Opts struct {
	// Width and Height of the terminal area, in pixels. Frames larger than
	// this are scaled down with nearest-neighbor.
	Width  int
	Height int

	Mode    Mode
	Palette *ansi256.Palette

	_ struct{}
}

// Dev renders frames to the console.
type Dev struct {
	w       io.Writer
	width   int
	height  int
	mode    Mode
	palette ansi256.Palette

	buf bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	return &Dev{
		w:       colorable.NewColorableStdout(),
		width:   opts.Width,
		height:  opts.Height,
		mode:    opts.Mode,
		palette: *p,
	}
}

func (d *Dev) String() string {
	return fmt.Sprintf("TermFrame{%dx%d}", d.width, d.height)
}

// Halt implements conn.Resource.
//
// It resets the terminal attributes so the shell is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.width, d.height)
}

// Draw scales src to fit the configured area and writes it to the console.
// Implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	srcR := src.Bounds()
	srcR.Min = srcR.Min.Add(sp)
	if srcR.Dx() > r.Dx() || srcR.Dy() > r.Dy() {
		scaled := image.NewNRGBA(r)
		draw.NearestNeighbor.Scale(scaled, r, src, srcR, draw.Src, nil)
		src = scaled
		srcR = r
	}
	d.buf.Reset()
	for y := srcR.Min.Y; y < srcR.Max.Y; y++ {
		for x := srcR.Min.X; x < srcR.Max.X; x++ {
			r16, g16, b16, _ := src.At(x, y).RGBA()
			c := color.NRGBA{byte(r16 >> 8), byte(g16 >> 8), byte(b16 >> 8), 255}
			d.writeCell(c)
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

func (d *Dev) writeCell(c color.NRGBA) {
	if d.mode == ASCII {
		// Rec. 601 luma, integer approximation.
		l := (299*int(c.R) + 587*int(c.G) + 114*int(c.B)) / 1000
		ch := ramp[l*(len(ramp)-1)/255]
		_ = d.buf.WriteByte(ch)
		_ = d.buf.WriteByte(ch)
		return
	}
	_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	_, _ = io.WriteString(&d.buf, d.palette.Block(c))
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
