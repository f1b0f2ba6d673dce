// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ov7670_test

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/ov7670"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	// Use i2creg I²C bus registry to find the first available I²C bus.
	b, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer b.Close()

	// The parallel pixel bus, wired to whatever pins the board provides.
	var data [8]gpio.PinIO
	for i := range data {
		data[i] = gpioreg.ByName(fmt.Sprintf("GPIO%d", 12+i))
	}
	grabber, err := ov7670.NewParallel(data, gpioreg.ByName("GPIO4"), gpioreg.ByName("GPIO5"), gpioreg.ByName("GPIO6"), 0)
	if err != nil {
		log.Fatal(err)
	}

	// Smallest frame in greyscale friendly YUV.
	opts := ov7670.DefaultOpts
	opts.Format = ov7670.ColorYUV
	opts.Size = ov7670.SizeDiv16
	d, err := ov7670.New(b, grabber, &opts)
	if err != nil {
		log.Fatalf("failed to initialize ov7670: %v", err)
	}
	defer d.Halt()

	buf := make([]byte, d.FrameSize())
	if err := d.Capture(buf); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("captured %dx%d frame\n", d.Width(), d.Height())
}
