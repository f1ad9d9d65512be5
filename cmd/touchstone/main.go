// Command touchstone parses a Touchstone (.s1p..s8p) file named on the
// command line (standard input is not read), prints a summary table,
// and optionally emits a PDF report,
// a magnitude/phase PNG chart, and a Prometheus /metrics endpoint.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kmoss-rf/touchstone/pkg/plot"
	"github.com/kmoss-rf/touchstone/pkg/report"
	"github.com/kmoss-rf/touchstone/pkg/session"
	"github.com/kmoss-rf/touchstone/pkg/telemetry"
)

func main() {
	pdfPath := flag.String("pdf", "", "write a PDF summary to this path")
	plotPath := flag.String("plot", "", "write a magnitude/phase PNG chart to this path")
	metricsAddr := flag.String("metrics", "", "serve Prometheus metrics on this address, e.g. :9109")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatalf("usage: touchstone [-pdf out.pdf] [-plot out.png] [-metrics :9109] file.s2p")
	}
	path := flag.Arg(0)

	if *metricsAddr != "" {
		startMetricsServer(*metricsAddr)
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("touchstone: %v", err)
	}
	defer f.Close()

	sess := session.New(path, nil)
	sess.Telemetry = *metricsAddr != ""

	data, err := io.ReadAll(f)
	if err != nil {
		log.Fatalf("touchstone: read %s: %v", path, err)
	}
	if err := sess.Receive(data); err != nil {
		log.Fatalf("touchstone: %v", err)
	}
	if err := sess.End(); err != nil {
		log.Fatalf("touchstone: %v", err)
	}

	sum := sess.Summary()
	printResults(sum)

	if *pdfPath != "" {
		pdfBytes, err := report.Generate(sum)
		if err != nil {
			log.Fatalf("touchstone: pdf: %v", err)
		}
		if err := os.WriteFile(*pdfPath, pdfBytes, 0o644); err != nil {
			log.Fatalf("touchstone: write %s: %v", *pdfPath, err)
		}
	}

	if *plotPath != "" {
		paramName := fmt.Sprintf("%c11", sum.ParamKind)
		pngBytes, err := plot.MagnitudePhase(sum, paramName)
		if err != nil {
			log.Fatalf("touchstone: plot: %v", err)
		}
		if err := os.WriteFile(*plotPath, pngBytes, 0o644); err != nil {
			log.Fatalf("touchstone: write %s: %v", *plotPath, err)
		}
	}

	if *metricsAddr != "" {
		log.Printf("touchstone: serving metrics on %s, press Ctrl-C to exit", *metricsAddr)
		select {}
	}
}

func startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(telemetry.Registry(), promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("touchstone: metrics server: %v", err)
		}
	}()
}

func printResults(sum session.Summary) {
	fmt.Printf("file:      %s\n", sum.FileName)
	fmt.Printf("session:   %s\n", sum.SessionID)
	fmt.Printf("ports:     %d\n", sum.Ports)
	fmt.Printf("parameter: %c\n", sum.ParamKind)
	fmt.Printf("reference: %v\n", sum.References)
	fmt.Println()

	if len(sum.DataFrequencies) > 0 {
		e := 2 * sum.Ports * sum.Ports
		fmt.Printf("%-16s %-16s %-16s\n", "freq (Hz)", "|S11|", "angle S11 (deg)")
		for i, freq := range sum.DataFrequencies {
			base := i * e
			if base+1 >= len(sum.DataValues) {
				break
			}
			mag, phase := sum.DataValues[base], sum.DataValues[base+1]
			fmt.Printf("%-16.6g %-16.6g %-16.6g\n", freq, mag, phase*180/3.141592653589793)
		}
	}

	if len(sum.NoiseFrequencies) > 0 {
		fmt.Println()
		fmt.Printf("%-16s %-16s %-16s %-16s %-16s\n", "freq (Hz)", "NFmin", "|Gopt|", "angle Gopt", "Rn")
		for i := range sum.NoiseFrequencies {
			base := i * 5
			if base+4 >= len(sum.NoiseValues) {
				break
			}
			fmt.Printf("%-16.6g %-16.6g %-16.6g %-16.6g %-16.6g\n",
				sum.NoiseValues[base], sum.NoiseValues[base+1], sum.NoiseValues[base+2],
				sum.NoiseValues[base+3]*180/3.141592653589793, sum.NoiseValues[base+4])
		}
	}

	if len(sum.Warnings) > 0 {
		fmt.Println()
		for _, w := range sum.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
	}
}
