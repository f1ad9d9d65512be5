package optline

import "testing"

func TestParseFullLine(t *testing.T) {
	opt, err := Parse("# GHZ S MA R 50")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if opt.FreqUnit != "GHZ" || opt.Format != "MA" || opt.Kind != "S" {
		t.Errorf("Parse = %+v", opt)
	}
	if !opt.HasR || opt.R != 50 {
		t.Errorf("Parse R = (%v, %v), want (true, 50)", opt.HasR, opt.R)
	}
}

func TestParseWithoutLeadingHash(t *testing.T) {
	opt, err := Parse("MHZ Y RI")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if opt.FreqUnit != "MHZ" || opt.Kind != "Y" || opt.Format != "RI" {
		t.Errorf("Parse = %+v", opt)
	}
}

func TestParseAnyOrder(t *testing.T) {
	opt, err := Parse("# R 75 DB Z KHZ")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if opt.FreqUnit != "KHZ" || opt.Format != "DB" || opt.Kind != "Z" || opt.R != 75 {
		t.Errorf("Parse = %+v", opt)
	}
}

func TestParseRWithoutValue(t *testing.T) {
	if _, err := Parse("# S MA R"); err == nil {
		t.Error("Parse should reject a trailing R with no value")
	}
}

func TestParseRInvalidValue(t *testing.T) {
	if _, err := Parse("# R notanumber"); err == nil {
		t.Error("Parse should reject a non-numeric R value")
	}
}

func TestParseUnrecognizedToken(t *testing.T) {
	if _, err := Parse("# GHZ BOGUS S MA"); err == nil {
		t.Error("Parse should reject an unrecognized token")
	}
}

func TestParseEmptyLine(t *testing.T) {
	opt, err := Parse("#")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if opt.FreqUnit != "" || opt.Format != "" || opt.Kind != "" || opt.HasR {
		t.Errorf("Parse of a bare '#' should yield all defaults, got %+v", opt)
	}
}
