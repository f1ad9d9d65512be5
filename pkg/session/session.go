// Package session provides the host-facing lifecycle wrapper around a
// touchstone.Parser: it stamps a session ID, optionally cross-checks
// the parsed port count against a filename's .sNp extension, records
// every emitted packet into a Summary, and forwards packets to an
// optional downstream consumer as they arrive.
package session

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/kmoss-rf/touchstone/pkg/emit"
	"github.com/kmoss-rf/touchstone/pkg/match"
	"github.com/kmoss-rf/touchstone/pkg/telemetry"
	"github.com/kmoss-rf/touchstone/pkg/touchstone"
)

// Summary is the fully-assembled result of one parsing session,
// suitable for handing to pkg/report or pkg/plot.
type Summary struct {
	FileName  string
	SessionID string

	Ports     int
	ParamKind byte

	References []float64

	DataFrequencies []float64
	DataValues      []float64 // E = 2*Ports*Ports doubles per point

	NoiseFrequencies []float64
	NoiseValues      []float64 // E = 5 doubles per point

	Warnings []string
}

// Session owns one touchstone.Parser and its bookkeeping. It is not
// safe for concurrent use.
type Session struct {
	parser     *touchstone.Parser
	downstream emit.Consumer

	// Telemetry enables the pkg/telemetry Prometheus instruments for
	// this session's Receive/End calls. Disabled by default.
	Telemetry bool

	fileName string
	pending  []float64 // cleared by Reset and Cleanup; Summary pairs frequencies with payloads itself and does not read it
	packets  []emit.Packet
	warnings []string
	started  time.Time
}

// New allocates a Session in state START. name is an optional
// filename, reported as Summary.FileName and used for the extension
// cross-check performed in End; pass "" to skip the check. downstream, if non-nil, receives every packet
// after it has been recorded into the eventual Summary.
func New(name string, downstream emit.Consumer) *Session {
	s := &Session{fileName: name, downstream: downstream}
	s.parser = touchstone.New(&consumerAdapter{s})
	s.parser.SessionID = uuid.NewString()
	return s
}

// consumerAdapter satisfies emit.Consumer on behalf of Session, whose
// own End method is already used for the public End() error API.
type consumerAdapter struct {
	s *Session
}

func (a *consumerAdapter) Begin(id string)      { a.s.begin(id) }
func (a *consumerAdapter) Packet(p emit.Packet) { a.s.packet(p) }
func (a *consumerAdapter) End(id string)        { a.s.end(id) }

// SessionID returns the UUID stamped for this session.
func (s *Session) SessionID() string { return s.parser.SessionID }

// Receive feeds a chunk of bytes to the parser.
func (s *Session) Receive(chunk []byte) error {
	if s.Telemetry && s.started.IsZero() {
		s.started = time.Now()
	}
	err := s.parser.Receive(chunk)
	if err != nil && s.Telemetry {
		kind := "unknown"
		var perr *touchstone.ParseError
		if errors.As(err, &perr) {
			kind = perr.Kind.String()
		}
		telemetry.RecordError(kind)
	}
	return err
}

// End flushes the parser, performs the filename/port-count cross
// check, and returns the first fatal error if any.
func (s *Session) End() error {
	err := s.parser.End()
	if s.Telemetry && !s.started.IsZero() {
		telemetry.ParseDurationSeconds.Observe(time.Since(s.started).Seconds())
	}
	if err != nil {
		if s.Telemetry {
			kind := "unknown"
			var perr *touchstone.ParseError
			if errors.As(err, &perr) {
				kind = perr.Kind.String()
			}
			telemetry.RecordError(kind)
		}
		return err
	}
	s.crossCheckExtension()
	if s.Telemetry {
		telemetry.FilesParsedTotal.Inc()
		sum := s.Summary()
		telemetry.SweepPointsTotal.Add(float64(len(sum.DataFrequencies) + len(sum.NoiseFrequencies)))
	}
	return nil
}

// Reset re-arms the session for a new stream under a new SessionID.
func (s *Session) Reset() {
	s.parser.Reset()
	s.parser.Init(&consumerAdapter{s})
	s.parser.SessionID = uuid.NewString()
	s.pending = nil
	s.packets = nil
	s.warnings = nil
	s.started = time.Time{}
}

// Cleanup releases all owned buffers.
func (s *Session) Cleanup() {
	s.parser.Cleanup()
	s.pending = nil
	s.packets = nil
	s.warnings = nil
}

// Summary assembles the recorded packets and parser warnings into a
// Summary. Safe to call after End.
func (s *Session) Summary() Summary {
	sum := Summary{
		FileName:  s.fileName,
		SessionID: s.parser.SessionID,
		Ports:     s.parser.NumPorts(),
		ParamKind: s.parser.ParamKind(),
	}
	var pendingFreq []float64
	for _, p := range s.packets {
		switch p.Kind {
		case emit.KindReference:
			sum.References = append([]float64(nil), p.Values...)
		case emit.KindFrequency:
			pendingFreq = p.Values
		case emit.KindParameter:
			sum.DataFrequencies = append(sum.DataFrequencies, pendingFreq...)
			sum.DataValues = append(sum.DataValues, p.Values...)
		case emit.KindNoise:
			sum.NoiseFrequencies = append(sum.NoiseFrequencies, pendingFreq...)
			sum.NoiseValues = append(sum.NoiseValues, p.Values...)
		}
	}
	sum.Warnings = append(append([]string(nil), s.parser.Warnings()...), s.warnings...)
	return sum
}

// begin backs consumerAdapter.Begin.
func (s *Session) begin(id string) {
	if s.downstream != nil {
		s.downstream.Begin(id)
	}
}

// packet backs consumerAdapter.Packet.
func (s *Session) packet(p emit.Packet) {
	cp := p
	cp.Values = append([]float64(nil), p.Values...)
	s.packets = append(s.packets, cp)
	if s.downstream != nil {
		s.downstream.Packet(p)
	}
}

// end backs consumerAdapter.End.
func (s *Session) end(id string) {
	if s.downstream != nil {
		s.downstream.End(id)
	}
}

func (s *Session) crossCheckExtension() {
	if s.fileName == "" {
		return
	}
	declared, ok := match.PortsFromExtension(s.fileName)
	if !ok {
		return
	}
	if got := s.parser.NumPorts(); got != 0 && got != declared {
		msg := fmt.Sprintf("filename %s declares %d ports, parsed data has %d", s.fileName, declared, got)
		log.Printf("touchstone: warning: %s", msg)
		s.warnings = append(s.warnings, msg)
	}
}
