package session

import "testing"

func TestSessionBasicFlow(t *testing.T) {
	s := New("device.s1p", nil)
	if s.SessionID() == "" {
		t.Fatal("expected a non-empty session ID")
	}
	if err := s.Receive([]byte("# MA S\n1.0 0.5 90\n")); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if err := s.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	sum := s.Summary()
	if sum.Ports != 1 {
		t.Errorf("Ports = %d, want 1", sum.Ports)
	}
	if len(sum.DataFrequencies) != 1 || sum.DataFrequencies[0] != 1e9 {
		t.Errorf("DataFrequencies = %v", sum.DataFrequencies)
	}
	if len(sum.References) != 1 || sum.References[0] != 50 {
		t.Errorf("References = %v", sum.References)
	}
	if len(sum.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", sum.Warnings)
	}
}

func TestSessionExtensionMismatchWarns(t *testing.T) {
	s := New("device.s2p", nil)
	if err := s.Receive([]byte("# MA S\n1.0 0.5 90\n")); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if err := s.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	sum := s.Summary()
	if len(sum.Warnings) == 0 {
		t.Fatal("expected an extension mismatch warning (declared 2 ports, parsed 1)")
	}
}

func TestSessionTelemetryDoesNotBreakParsing(t *testing.T) {
	s := New("device.s1p", nil)
	s.Telemetry = true
	if err := s.Receive([]byte("# MA S\n1.0 0.5 90\n")); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if err := s.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
}

func TestSessionResetGetsNewID(t *testing.T) {
	s := New("", nil)
	id1 := s.SessionID()
	if err := s.Receive([]byte("# MA S\n1.0 0.5 90\n")); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if err := s.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	s.Reset()
	if s.SessionID() == id1 {
		t.Error("Reset should assign a new session ID")
	}
	if err := s.Receive([]byte("# MA S\n2.0 0.4 45\n")); err != nil {
		t.Fatalf("Receive after Reset: %v", err)
	}
	if err := s.End(); err != nil {
		t.Fatalf("End after Reset: %v", err)
	}
}
