package touchstone

import (
	"errors"
	"math"
	"testing"

	"github.com/kmoss-rf/touchstone/pkg/emit"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func runFile(t *testing.T, content string) (*emit.Collector, error) {
	t.Helper()
	c := &emit.Collector{}
	p := New(c)
	if err := p.Receive([]byte(content)); err != nil {
		return c, err
	}
	if err := p.End(); err != nil {
		return c, err
	}
	return c, nil
}

func packetsOfKind(c *emit.Collector, kind emit.Kind) []emit.Packet {
	var out []emit.Packet
	for _, p := range c.Packets {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

func TestMinimalOnePortVersion1(t *testing.T) {
	content := "# MA S\n1.0 0.5 90\n2.0 0.6 80\n"
	c, err := runFile(t, content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Started || !c.Ended {
		t.Fatal("expected Begin/End to have been called")
	}

	refs := packetsOfKind(c, emit.KindReference)
	if len(refs) != 1 || len(refs[0].Values) != 1 || refs[0].Values[0] != 50 {
		t.Fatalf("reference packets = %+v", refs)
	}

	freqs := packetsOfKind(c, emit.KindFrequency)
	if len(freqs) != 1 || len(freqs[0].Values) != 2 {
		t.Fatalf("frequency packet = %+v", freqs)
	}
	if !almostEqual(freqs[0].Values[0], 1e9) || !almostEqual(freqs[0].Values[1], 2e9) {
		t.Errorf("frequency values = %v", freqs[0].Values)
	}

	params := packetsOfKind(c, emit.KindParameter)
	if len(params) != 1 || len(params[0].Values) != 4 {
		t.Fatalf("parameter packet = %+v", params)
	}
	if !almostEqual(params[0].Values[0], 0.5) || !almostEqual(params[0].Values[1], math.Pi/2) {
		t.Errorf("first point = %v", params[0].Values[:2])
	}
}

func TestTwoPortLegacyOrderSwap(t *testing.T) {
	content := "[VERSION] 2.0\n# GHZ S RI R 50\n[NUMBER OF PORTS] 2\n[NETWORK DATA]\n1.0 1 0 0.1 0 0.2 0 1 0\n[END]\n"
	c, err := runFile(t, content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	params := packetsOfKind(c, emit.KindParameter)
	if len(params) != 1 {
		t.Fatalf("parameter packets = %+v", params)
	}
	v := params[0].Values
	// row-major [S11 S12 S21 S22]; wire order was legacy 21_12 so the
	// raw (0.1, 0.2) pair must come out swapped.
	if !almostEqual(v[2], 0.2) || !almostEqual(v[4], 0.1) {
		t.Errorf("legacy order swap incorrect: %v", v)
	}
}

func TestTwoPortVersion1NoiseBoundary(t *testing.T) {
	content := "# GHZ S MA R 50\n" +
		"1.0 1 0 0.1 90 0.2 90 1 0\n" +
		"2.0 1 0 0.1 90 0.2 90 1 0\n" +
		"0.5 3 0.5 90 0.4\n" +
		"0.8 3 0.4 80 0.3\n"
	c, err := runFile(t, content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	params := packetsOfKind(c, emit.KindParameter)
	if len(params) != 1 || len(params[0].Values) != 2*8 {
		t.Fatalf("data parameter packet = %+v", params)
	}

	noise := packetsOfKind(c, emit.KindNoise)
	if len(noise) != 1 {
		t.Fatalf("expected exactly one noise packet, got %d", len(noise))
	}
	if len(noise[0].Values) != 2*5 {
		t.Fatalf("noise packet length = %d, want 10", len(noise[0].Values))
	}
	// first noise point: freq 0.5 GHz, NFmin 3dB, |gamma|=0.5, angle 90deg, Rn=0.4
	nv := noise[0].Values
	if !almostEqual(nv[0], 0.5e9) {
		t.Errorf("first noise freq = %v", nv[0])
	}
	if !almostEqual(nv[2], 0.5) {
		t.Errorf("first noise gamma magnitude = %v", nv[2])
	}
	if !almostEqual(nv[3], math.Pi/2) {
		t.Errorf("first noise gamma angle = %v", nv[3])
	}
	// second noise point starts at index 5: freq 0.8 GHz
	if !almostEqual(nv[5], 0.8e9) {
		t.Errorf("second noise freq = %v", nv[5])
	}
}

func TestTwoPortVersion1ShortTrailingNoiseBlock(t *testing.T) {
	content := "# GHZ S MA R 50\n" +
		"1.0 1 0 0.1 0 0.2 0 1 0\n" +
		"0.5 3 0.5 90 0.4\n"
	c, err := runFile(t, content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	params := packetsOfKind(c, emit.KindParameter)
	if len(params) != 1 || len(params[0].Values) != 2*8 {
		t.Fatalf("data parameter packet = %+v", params)
	}

	noise := packetsOfKind(c, emit.KindNoise)
	if len(noise) != 1 || len(noise[0].Values) != 5 {
		t.Fatalf("expected exactly one 5-value noise packet, got %+v", noise)
	}
	nv := noise[0].Values
	if !almostEqual(nv[0], 0.5e9) {
		t.Errorf("noise freq = %v, want 0.5e9", nv[0])
	}
	if !almostEqual(nv[2], 0.5) {
		t.Errorf("noise gamma magnitude = %v, want 0.5", nv[2])
	}
}

func TestVersion2ThreePortUpperMatrix(t *testing.T) {
	content := "[VERSION] 2.0\n# GHZ S MA R 50\n[NUMBER OF PORTS] 3\n[MATRIX FORMAT] UPPER\n" +
		"[NETWORK DATA]\n1.0 1 0 0.1 10 0.2 20 1 0 0.3 30 1 0\n[END]\n"
	c, err := runFile(t, content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	params := packetsOfKind(c, emit.KindParameter)
	if len(params) != 1 || len(params[0].Values) != 2*9 {
		t.Fatalf("parameter packet = %+v", params)
	}
	v := params[0].Values
	// row-major index for S13 (row 0, col 2) is position 2 (0-based
	// complex-pair index), i.e. doubles [4:6].
	if !almostEqual(v[4], 0.2) || !almostEqual(v[5], 20*math.Pi/180) {
		t.Errorf("S13 = %v, %v", v[4], v[5])
	}
	// S31 (row 2, col 0) must mirror S13 by the upper-triangle fill.
	if !almostEqual(v[12], 0.2) || !almostEqual(v[13], 20*math.Pi/180) {
		t.Errorf("S31 (mirrored) = %v, %v", v[12], v[13])
	}
}

func TestReferenceOverride(t *testing.T) {
	content := "[VERSION] 2.0\n# GHZ S MA\n[NUMBER OF PORTS] 2\n[REFERENCE] 75 75\n" +
		"[NETWORK DATA]\n1.0 1 0 0 0 0 0 1 0\n[END]\n"
	c, err := runFile(t, content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	refs := packetsOfKind(c, emit.KindReference)
	if len(refs) != 2 {
		t.Fatalf("expected 2 reference packets (default + override), got %d", len(refs))
	}
	last := refs[len(refs)-1]
	if last.Values[0] != 75 || last.Values[1] != 75 {
		t.Errorf("overridden references = %v", last.Values)
	}
}

func TestMixedModeRejected(t *testing.T) {
	content := "[VERSION] 2.0\n# GHZ S MA\n[NUMBER OF PORTS] 2\n[MIXED-MODE ORDER] DIFF\n"
	_, err := runFile(t, content)
	if err == nil {
		t.Fatal("expected an error for [MIXED-MODE ORDER]")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error is not a *ParseError: %v", err)
	}
	if perr.Kind != Unsupported {
		t.Errorf("Kind = %v, want Unsupported", perr.Kind)
	}
}

func TestConflictingPortCountRejected(t *testing.T) {
	content := "[VERSION] 2.0\n# GHZ S MA\n[NUMBER OF PORTS] 2\n[NUMBER OF PORTS] 3\n"
	_, err := runFile(t, content)
	if err == nil {
		t.Fatal("expected an error for a duplicate/conflicting [NUMBER OF PORTS]")
	}
}

func TestPortCountAboveMaxRejected(t *testing.T) {
	content := "[VERSION] 2.0\n# GHZ S MA\n[NUMBER OF PORTS] 9\n"
	_, err := runFile(t, content)
	if err == nil {
		t.Fatal("expected an error for a port count above the .s1p..s8p family")
	}
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Kind != Semantic {
		t.Fatalf("error = %v, want a Semantic ParseError", err)
	}
}

func TestUnexpectedEndRejected(t *testing.T) {
	content := "[VERSION] 2.0\n# GHZ S MA\n[NUMBER OF PORTS] 2\n[END]\n"
	_, err := runFile(t, content)
	if err == nil {
		t.Fatal("expected an error for [END] with no network data")
	}
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Kind != Semantic {
		t.Fatalf("error = %v, want a Semantic ParseError", err)
	}
}

func TestRepeatedOptionLineIgnored(t *testing.T) {
	content := "# MA S\n1.0 0.5 90\n# MA S\n2.0 0.6 80\n"
	c, err := runFile(t, content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	freqs := packetsOfKind(c, emit.KindFrequency)
	if len(freqs) != 1 || len(freqs[0].Values) != 2 {
		t.Fatalf("frequency packet = %+v", freqs)
	}
	if !almostEqual(freqs[0].Values[0], 1e9) || !almostEqual(freqs[0].Values[1], 2e9) {
		t.Errorf("frequency values = %v, want [1e9 2e9] (stray '#' line should be dropped, not error)", freqs[0].Values)
	}
}

func TestResetAllowsReuse(t *testing.T) {
	c1 := &emit.Collector{}
	p := New(c1)
	if err := p.Receive([]byte("# MA S\n1.0 0.5 90\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.End(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c2 := &emit.Collector{}
	p.Reset()
	p.Init(c2)
	if err := p.Receive([]byte("# MA S\n2.0 0.4 45\n")); err != nil {
		t.Fatalf("unexpected error on second stream: %v", err)
	}
	if err := p.End(); err != nil {
		t.Fatalf("unexpected error on second stream: %v", err)
	}
	if !c2.Started || !c2.Ended {
		t.Fatal("second stream should have its own Begin/End")
	}
}
