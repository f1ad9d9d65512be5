package match

import "testing"

func TestPortsFromExtension(t *testing.T) {
	cases := map[string]int{
		"device.s1p": 1,
		"DEVICE.S2P": 2,
		"amp.s8p":    8,
	}
	for name, want := range cases {
		n, ok := PortsFromExtension(name)
		if !ok || n != want {
			t.Errorf("PortsFromExtension(%q) = (%d, %v), want (%d, true)", name, n, ok, want)
		}
	}
}

func TestPortsFromExtensionRejects(t *testing.T) {
	bad := []string{"device.s9p", "device.txt", "s2p", "device.s2px", ".s2p", "device"}
	for _, name := range bad {
		if _, ok := PortsFromExtension(name); ok {
			t.Errorf("PortsFromExtension(%q) should be rejected", name)
		}
	}
}

func TestConfidence(t *testing.T) {
	if score, ok := Confidence("network.s3p"); !ok || score != Score {
		t.Errorf("Confidence = (%d, %v), want (%d, true)", score, ok, Score)
	}
	if _, ok := Confidence("network.dat"); ok {
		t.Error("Confidence should reject a non-touchstone filename")
	}
}
