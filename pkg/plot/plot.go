// Package plot renders magnitude and phase versus frequency charts
// for a parsed Touchstone sweep, as PNG images.
package plot

import (
	"bytes"
	"fmt"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/kmoss-rf/touchstone/pkg/session"
)

// portIndices parses a parameter name such as "S11" or "S21" into its
// zero-based (row, col) matrix indices for an n-port sweep. Port
// numbers are single decimal digits, matching the .s1p..s8p family.
func portIndices(param string, n int) (row, col int, err error) {
	if len(param) != 3 {
		return 0, 0, fmt.Errorf("plot: parameter name %q must be a letter followed by two digits (e.g. S11)", param)
	}
	r, errR := strconv.Atoi(param[1:2])
	c, errC := strconv.Atoi(param[2:3])
	if errR != nil || errC != nil {
		return 0, 0, fmt.Errorf("plot: parameter name %q must be a letter followed by two digits (e.g. S11)", param)
	}
	if r < 1 || r > n || c < 1 || c > n {
		return 0, 0, fmt.Errorf("plot: parameter %q out of range for a %d-port sweep", param, n)
	}
	return r - 1, c - 1, nil
}

// MagnitudePhase renders a two-panel-equivalent single chart (one
// line for magnitude, one for phase, dual point sets sharing the
// frequency axis) of the element named by param (e.g. "S11", "S21")
// against frequency, returned as PNG bytes.
func MagnitudePhase(sum session.Summary, param string) ([]byte, error) {
	if sum.Ports == 0 || len(sum.DataFrequencies) == 0 {
		return nil, fmt.Errorf("plot: no data points to plot")
	}

	row, col, err := portIndices(param, sum.Ports)
	if err != nil {
		return nil, err
	}

	e := 2 * sum.Ports * sum.Ports
	elemBase := 2 * (row*sum.Ports + col)
	magPts := make(plotter.XYs, len(sum.DataFrequencies))
	phasePts := make(plotter.XYs, len(sum.DataFrequencies))
	for i, freq := range sum.DataFrequencies {
		base := i*e + elemBase
		if base+1 >= len(sum.DataValues) {
			break
		}
		mag, phase := sum.DataValues[base], sum.DataValues[base+1]
		magPts[i] = plotter.XY{X: freq, Y: mag}
		phasePts[i] = plotter.XY{X: freq, Y: phase * 180 / 3.141592653589793}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s magnitude and phase vs frequency", param)
	p.X.Label.Text = "Frequency (Hz)"
	p.Y.Label.Text = "Magnitude (linear) / Phase (deg)"
	p.Add(plotter.NewGrid())

	magLine, err := plotter.NewLine(magPts)
	if err != nil {
		return nil, fmt.Errorf("plot: magnitude line: %w", err)
	}
	p.Add(magLine)
	p.Legend.Add(param+" magnitude", magLine)

	phaseLine, err := plotter.NewLine(phasePts)
	if err != nil {
		return nil, fmt.Errorf("plot: phase line: %w", err)
	}
	phaseLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(phaseLine)
	p.Legend.Add(param+" phase", phaseLine)

	p.Legend.Top = true

	writer, err := p.WriterTo(vg.Points(800), vg.Points(400), "png")
	if err != nil {
		return nil, fmt.Errorf("plot: create writer: %w", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("plot: write png: %w", err)
	}
	return buf.Bytes(), nil
}
