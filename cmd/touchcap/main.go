// Command touchcap opens a serial port with a network analyzer
// attached, streams its ASCII Touchstone output live into the parser,
// prints a summary once the instrument closes the stream, and
// optionally saves the raw capture to a file.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/kmoss-rf/touchstone/pkg/capture"
	"github.com/kmoss-rf/touchstone/pkg/session"
)

func main() {
	port := flag.String("port", "", "serial device, e.g. /dev/ttyUSB0")
	baud := flag.Int("baud", 115200, "baud rate")
	outPath := flag.String("out", "", "also save the raw captured bytes to this path")
	flag.Parse()

	if *port == "" {
		log.Fatalf("usage: touchcap -port /dev/ttyUSB0 -baud 115200 [-out capture.s2p]")
	}

	src := &capture.SerialSource{Port: *port, Baud: *baud}
	if err := src.Open(); err != nil {
		log.Fatalf("touchcap: %v", err)
	}
	defer src.Close()

	sess := session.New(*outPath, nil)
	var raw bytes.Buffer

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := src.Run(ctx, func(chunk []byte) error {
		raw.Write(chunk)
		return sess.Receive(chunk)
	})
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
		log.Fatalf("touchcap: %v", err)
	}

	if err := sess.End(); err != nil {
		log.Fatalf("touchcap: %v", err)
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, raw.Bytes(), 0o644); err != nil {
			log.Fatalf("touchcap: write %s: %v", *outPath, err)
		}
	}

	sum := sess.Summary()
	fmt.Printf("captured %d data point(s), %d noise point(s) from %s\n",
		len(sum.DataFrequencies), len(sum.NoiseFrequencies), *port)
	for _, w := range sum.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}
