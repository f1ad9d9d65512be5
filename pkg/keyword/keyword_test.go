package keyword

import (
	"reflect"
	"testing"
)

func TestParseWithArgs(t *testing.T) {
	kw, ok := Parse("[NUMBER OF PORTS] 3")
	if !ok {
		t.Fatal("Parse returned ok=false")
	}
	if kw.Name != "NUMBER OF PORTS" {
		t.Errorf("Name = %q", kw.Name)
	}
	if !reflect.DeepEqual(kw.Args, []string{"3"}) {
		t.Errorf("Args = %v", kw.Args)
	}
}

func TestParseCollapsesInternalWhitespace(t *testing.T) {
	kw, ok := Parse("[TWO-PORT   ORDER] 12_21")
	if !ok {
		t.Fatal("Parse returned ok=false")
	}
	if kw.Name != "TWO-PORT ORDER" {
		t.Errorf("Name = %q", kw.Name)
	}
}

func TestParseNoArgs(t *testing.T) {
	kw, ok := Parse("[NETWORK DATA]")
	if !ok {
		t.Fatal("Parse returned ok=false")
	}
	if kw.Name != "NETWORK DATA" || kw.Args != nil {
		t.Errorf("Parse = %+v", kw)
	}
}

func TestParseNotBracketed(t *testing.T) {
	if _, ok := Parse("plain text"); ok {
		t.Error("Parse should reject a line without a leading '['")
	}
}

func TestParseUnterminated(t *testing.T) {
	if _, ok := Parse("[NUMBER OF PORTS 3"); ok {
		t.Error("Parse should reject a line missing the closing ']'")
	}
}
