// Package touchstone implements the streaming Touchstone (.s1p..s8p)
// decoder: a state machine that recognizes the version 1 and version 2
// dialects, resolves parameter layout and numeric encoding, accumulates
// sweep points across arbitrarily broken input chunks, reconstructs
// full N-port matrices from full/upper/lower storage, detects the
// version-1 data-to-noise boundary, and emits typed packets to a
// consumer in a well-defined order.
package touchstone

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/kmoss-rf/touchstone/internal/consts"
	"github.com/kmoss-rf/touchstone/pkg/emit"
	"github.com/kmoss-rf/touchstone/pkg/keyword"
	"github.com/kmoss-rf/touchstone/pkg/lexer"
	"github.com/kmoss-rf/touchstone/pkg/numeric"
	"github.com/kmoss-rf/touchstone/pkg/optline"
	"github.com/kmoss-rf/touchstone/pkg/sweep"
)

type state int

const (
	stStart state = iota
	stOptionLineExpected
	stNumPortsExpected
	stKeywords
	stReferences
	stSkipInfo
	stDataLines
	stNoiseData
	stDone
)

// Parser is the ParserContext: one instance per input stream. Create
// with New, feed bytes with Receive, finish with End, and always
// Cleanup when done with it.
type Parser struct {
	// SessionID is stamped by the owning session for correlating log
	// lines, metrics, and Begin/End calls to the consumer. The core
	// parser never generates one itself.
	SessionID string

	consumer emit.Consumer
	lex      lexer.Chunker

	state         state
	fileVersion   int
	freqUnit      float64
	numberFormat  numeric.Format
	paramKind     byte
	refR          float64
	refRs         []float64
	numPorts      int
	numValsPerSet int
	matrixFormat  sweep.MatrixFormat
	twoPortOrder  sweep.TwoPortOrder

	sweepPointsHint      int
	sweepPointsNoiseHint int

	acc   *sweep.Accumulator
	store *sweep.Store

	lastFreq     float64
	haveLastFreq bool
	started      bool

	refsCollected []float64

	lineNo   int
	err      error
	warnings []string
}

// New returns a Parser ready to receive its first chunk.
func New(consumer emit.Consumer) *Parser {
	p := &Parser{}
	p.Init(consumer)
	return p
}

// Init (re)arms the parser with a fresh consumer and clean state.
func (p *Parser) Init(consumer emit.Consumer) {
	p.consumer = consumer
	p.acc = sweep.NewAccumulator()
	p.store = nil
	p.resetFields()
}

// Reset re-arms the parser for another input stream, retaining the
// consumer and reusing accumulator/store capacity when present.
func (p *Parser) Reset() {
	if p.acc == nil {
		p.acc = sweep.NewAccumulator()
	} else {
		p.acc.Reset()
	}
	if p.store != nil {
		p.store.Reset()
	}
	p.resetFields()
}

// Cleanup releases all owned buffers. Safe to call at any time,
// including after an error; idempotent.
func (p *Parser) Cleanup() {
	*p = Parser{}
}

// Warnings returns the non-fatal warnings accumulated so far.
func (p *Parser) Warnings() []string { return p.warnings }

// NumPorts returns the resolved port count, or 0 if not yet known.
func (p *Parser) NumPorts() int { return p.numPorts }

// ParamKind returns the resolved parameter kind byte ('S','Y','Z','G','H').
func (p *Parser) ParamKind() byte { return p.paramKind }

// FileVersion returns 1 or 2 once the first line has been processed,
// or 0 before that.
func (p *Parser) FileVersion() int { return p.fileVersion }

func (p *Parser) resetFields() {
	p.lex = lexer.Chunker{}
	p.state = stStart
	p.fileVersion = 0
	p.freqUnit = consts.DefaultFreqUnitHz
	p.numberFormat = numeric.MagnitudeAngle
	p.paramKind = 'S'
	p.refR = consts.DefaultReferenceOhms
	p.refRs = nil
	p.numPorts = 0
	p.numValsPerSet = 0
	p.matrixFormat = sweep.Full
	p.twoPortOrder = sweep.Order21_12
	p.sweepPointsHint = 0
	p.sweepPointsNoiseHint = 0
	p.lastFreq = 0
	p.haveLastFreq = false
	p.started = false
	p.refsCollected = nil
	p.lineNo = 0
	p.err = nil
	p.warnings = nil
}

// Receive feeds a chunk of raw input bytes to the parser. It drives
// the state machine to completion for every full logical line the
// chunk now makes available, and returns the first fatal error, if
// any. No further input may be fed once an error is returned; the
// caller should Cleanup.
func (p *Parser) Receive(chunk []byte) error {
	if p.err != nil {
		return p.err
	}
	for _, line := range p.lex.Feed(chunk) {
		p.lineNo++
		if err := p.processLine(line); err != nil {
			p.err = err
			return err
		}
	}
	return nil
}

// End flushes any buffered partial line, resolves a still-pending
// version-1 port-count inference, flushes the pending sweep, and
// emits "frame end" to the consumer.
func (p *Parser) End() error {
	if p.err != nil {
		return p.err
	}
	for _, line := range p.lex.Flush() {
		p.lineNo++
		if err := p.processLine(line); err != nil {
			p.err = err
			return err
		}
	}

	if p.fileVersion == 1 && p.numValsPerSet == 0 && p.acc.Len() > 0 {
		if err := p.tryInferPorts(true); err != nil {
			p.err = err
			return err
		}
	}

	// A trailing noise block short enough that its token count never
	// reaches the (wider) data-mode numValsPerSet never drains through
	// drainCompleteSets mid-stream; check the same freq-decrease
	// heuristic against whatever is still pending before calling it
	// truncated data.
	if p.fileVersion == 1 && p.state == stDataLines && p.haveLastFreq && p.acc.Len() > 0 {
		if p.acc.Values[0]*p.freqUnit < p.lastFreq {
			if err := p.transitionToNoiseFromData(append([]float64(nil), p.acc.Values...)); err != nil {
				p.err = err
				return err
			}
		}
	}

	if p.numValsPerSet > 0 && p.acc.Len() > 0 {
		err := newErr(Semantic, p.lineNo, "truncated final sweep point: %d of %d values", p.acc.Len(), p.numValsPerSet)
		p.err = err
		return err
	}

	p.flushSweep()

	if p.consumer != nil && p.started {
		p.consumer.End(p.SessionID)
	}
	return nil
}

func (p *Parser) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("touchstone: warning: %s", msg)
	p.warnings = append(p.warnings, msg)
}

func (p *Parser) processLine(line string) error {
	if p.state != stStart && p.state != stOptionLineExpected && strings.HasPrefix(line, "#") {
		return nil
	}

	isBracket := strings.HasPrefix(line, "[")

	switch p.state {
	case stStart:
		switch {
		case strings.HasPrefix(line, "#"):
			p.fileVersion = 1
			if err := p.applyOptionLine(line); err != nil {
				return err
			}
			p.state = stDataLines
			return nil
		case isBracket:
			kw, ok := keyword.Parse(line)
			if !ok {
				return newErr(Syntax, p.lineNo, "malformed keyword line %q", line)
			}
			if kw.Name != "VERSION" {
				return newErr(Semantic, p.lineNo, "expected [VERSION] as the first line, got [%s]", kw.Name)
			}
			if len(kw.Args) != 1 || kw.Args[0] != "2.0" {
				return newErr(Unsupported, p.lineNo, "unsupported touchstone version %v", kw.Args)
			}
			p.fileVersion = 2
			p.state = stOptionLineExpected
			return nil
		default:
			return newErr(Syntax, p.lineNo, "expected '#' or '[' as the first line, got %q", line)
		}

	case stOptionLineExpected:
		if !strings.HasPrefix(line, "#") {
			return newErr(Syntax, p.lineNo, "expected option line after [VERSION] 2.0, got %q", line)
		}
		if err := p.applyOptionLine(line); err != nil {
			return err
		}
		p.state = stNumPortsExpected
		return nil

	case stNumPortsExpected:
		if !isBracket {
			return newErr(Syntax, p.lineNo, "expected [NUMBER OF PORTS], got %q", line)
		}
		kw, ok := keyword.Parse(line)
		if !ok {
			return newErr(Syntax, p.lineNo, "malformed keyword line %q", line)
		}
		if kw.Name != "NUMBER OF PORTS" {
			return newErr(Semantic, p.lineNo, "expected [NUMBER OF PORTS], got [%s]", kw.Name)
		}
		n, err := parseIntArg(kw.Args)
		if err != nil {
			return wrapErr(Syntax, p.lineNo, err, "[NUMBER OF PORTS]")
		}
		if err := p.setNumPorts(n); err != nil {
			return err
		}
		p.numValsPerSet = 2*n*n + 1
		p.state = stKeywords
		return nil

	case stKeywords:
		if isBracket {
			kw, ok := keyword.Parse(line)
			if !ok {
				return newErr(Syntax, p.lineNo, "malformed keyword line %q", line)
			}
			return p.dispatchKeyword(kw)
		}
		if p.numPorts == 0 {
			return newErr(Semantic, p.lineNo, "data encountered before [NUMBER OF PORTS]")
		}
		p.state = stDataLines
		return p.processDataLine(line)

	case stReferences:
		if isBracket {
			return newErr(Syntax, p.lineNo, "incomplete [REFERENCE] list before next keyword")
		}
		vals, err := lexer.Tokens(line)
		if err != nil {
			return wrapErr(Syntax, p.lineNo, err, "[REFERENCE] value")
		}
		return p.collectReferences(vals)

	case stSkipInfo:
		if isBracket {
			kw, ok := keyword.Parse(line)
			if ok && kw.Name == "END INFORMATION" {
				p.state = stKeywords
			}
		}
		return nil

	case stDataLines:
		if isBracket {
			kw, ok := keyword.Parse(line)
			if !ok {
				return newErr(Syntax, p.lineNo, "malformed keyword line %q", line)
			}
			return p.dispatchKeyword(kw)
		}
		return p.processDataLine(line)

	case stNoiseData:
		if isBracket {
			kw, ok := keyword.Parse(line)
			if !ok {
				return newErr(Syntax, p.lineNo, "malformed keyword line %q", line)
			}
			return p.dispatchKeyword(kw)
		}
		return p.processNoiseLine(line)

	case stDone:
		return newErr(Syntax, p.lineNo, "unexpected content after [END]: %q", line)
	}
	return nil
}

func (p *Parser) dispatchKeyword(kw keyword.Line) error {
	switch kw.Name {
	case "VERSION":
		return newErr(Semantic, p.lineNo, "[VERSION] may only appear as the first line")

	case "NUMBER OF PORTS":
		if p.numPorts != 0 {
			return newErr(Semantic, p.lineNo, "duplicate [NUMBER OF PORTS]")
		}
		n, err := parseIntArg(kw.Args)
		if err != nil {
			return wrapErr(Syntax, p.lineNo, err, "[NUMBER OF PORTS]")
		}
		if err := p.setNumPorts(n); err != nil {
			return err
		}
		p.numValsPerSet = 2*n*n + 1
		return nil

	case "TWO-PORT ORDER":
		if len(kw.Args) != 1 {
			return newErr(Syntax, p.lineNo, "[TWO-PORT ORDER] expects exactly one argument")
		}
		switch kw.Args[0] {
		case "12_21":
			p.twoPortOrder = sweep.Order12_21
		case "21_12":
			p.twoPortOrder = sweep.Order21_12
		default:
			return newErr(Syntax, p.lineNo, "invalid [TWO-PORT ORDER] value %q", kw.Args[0])
		}
		return nil

	case "NUMBER OF FREQUENCIES":
		n, err := parseIntArg(kw.Args)
		if err != nil {
			return wrapErr(Syntax, p.lineNo, err, "[NUMBER OF FREQUENCIES]")
		}
		p.sweepPointsHint = n
		return nil

	case "NUMBER OF NOISE FREQUENCIES":
		n, err := parseIntArg(kw.Args)
		if err != nil {
			return wrapErr(Syntax, p.lineNo, err, "[NUMBER OF NOISE FREQUENCIES]")
		}
		p.sweepPointsNoiseHint = n
		return nil

	case "REFERENCE":
		if p.numPorts == 0 {
			return newErr(Semantic, p.lineNo, "[REFERENCE] before [NUMBER OF PORTS]")
		}
		vals := make([]float64, 0, len(kw.Args))
		for _, a := range kw.Args {
			v, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return wrapErr(Syntax, p.lineNo, err, "[REFERENCE] value")
			}
			vals = append(vals, v)
		}
		return p.collectReferences(vals)

	case "MATRIX FORMAT":
		if p.numPorts == 0 {
			return newErr(Semantic, p.lineNo, "[MATRIX FORMAT] before [NUMBER OF PORTS]")
		}
		if len(kw.Args) != 1 {
			return newErr(Syntax, p.lineNo, "[MATRIX FORMAT] expects exactly one argument")
		}
		n := p.numPorts
		switch kw.Args[0] {
		case "FULL":
			p.matrixFormat = sweep.Full
			p.numValsPerSet = 2*n*n + 1
		case "LOWER":
			p.matrixFormat = sweep.Lower
			p.numValsPerSet = n*n + n + 1
		case "UPPER":
			p.matrixFormat = sweep.Upper
			p.numValsPerSet = n*n + n + 1
		default:
			return newErr(Syntax, p.lineNo, "invalid [MATRIX FORMAT] value %q", kw.Args[0])
		}
		return nil

	case "MIXED-MODE ORDER":
		return newErr(Unsupported, p.lineNo, "[MIXED-MODE ORDER] is not supported")

	case "BEGIN INFORMATION":
		p.state = stSkipInfo
		return nil

	case "END INFORMATION":
		return newErr(Semantic, p.lineNo, "[END INFORMATION] without a matching [BEGIN INFORMATION]")

	case "NETWORK DATA":
		if p.numPorts == 0 {
			return newErr(Semantic, p.lineNo, "[NETWORK DATA] before [NUMBER OF PORTS]")
		}
		p.state = stDataLines
		return nil

	case "NOISE DATA":
		if p.numPorts != 2 {
			return newErr(Semantic, p.lineNo, "[NOISE DATA] requires exactly 2 ports, have %d", p.numPorts)
		}
		p.flushSweep()
		if p.store == nil {
			p.store = sweep.NewStore(consts.NoiseElementsPerPt)
		} else {
			p.store.Reset()
			p.store.Rescale(consts.NoiseElementsPerPt)
		}
		p.numValsPerSet = consts.NoiseElementsPerPt
		p.acc.Reset()
		p.state = stNoiseData
		return nil

	case "END":
		if p.state != stDataLines && p.state != stNoiseData {
			return newErr(Semantic, p.lineNo, "unexpected [END]: no network data")
		}
		p.flushSweep()
		p.state = stDone
		return nil

	default:
		return newErr(Syntax, p.lineNo, "unknown keyword [%s]", kw.Name)
	}
}

func (p *Parser) collectReferences(vals []float64) error {
	p.refsCollected = append(p.refsCollected, vals...)
	if len(p.refsCollected) < p.numPorts {
		p.state = stReferences
		return nil
	}
	if len(p.refsCollected) > p.numPorts {
		p.warn("[REFERENCE] supplied more values than ports; ignoring the extras")
	}
	refs := append([]float64(nil), p.refsCollected[:p.numPorts]...)
	for _, r := range refs {
		if r <= 0 {
			return newErr(Semantic, p.lineNo, "reference resistance must be > 0, got %g", r)
		}
	}
	p.refRs = refs
	p.refsCollected = nil
	p.emitReferences()
	p.state = stKeywords
	return nil
}

func (p *Parser) setNumPorts(n int) error {
	if n < consts.MinPorts || n > consts.MaxPorts {
		return newErr(Semantic, p.lineNo, "invalid port count %d", n)
	}
	if p.numPorts != 0 && p.numPorts != n {
		return newErr(Semantic, p.lineNo, "conflicting port count: had %d, now %d", p.numPorts, n)
	}
	p.numPorts = n
	p.emitReferences()
	return nil
}

func (p *Parser) emitReferences() {
	if p.consumer == nil || p.numPorts == 0 {
		return
	}
	vec := make([]float64, p.numPorts)
	switch {
	case p.fileVersion == 2 && p.paramKind != 'S':
		for i := range vec {
			vec[i] = 1.0
		}
	case len(p.refRs) == p.numPorts:
		copy(vec, p.refRs)
	default:
		for i := range vec {
			vec[i] = p.refR
		}
	}
	p.beginIfNeeded()
	p.consumer.Packet(emit.Packet{Kind: emit.KindReference, Ports: p.numPorts, Values: vec})
}

func (p *Parser) beginIfNeeded() {
	if !p.started && p.consumer != nil {
		p.consumer.Begin(p.SessionID)
		p.started = true
	}
}

func (p *Parser) flushSweep() {
	if p.store == nil || p.store.Count == 0 {
		return
	}
	p.beginIfNeeded()
	freqs := append([]float64(nil), p.store.Freq...)
	data := append([]float64(nil), p.store.Data...)

	p.consumer.Packet(emit.Packet{Kind: emit.KindFrequency, Ports: p.numPorts, Values: freqs})

	kind := emit.KindParameter
	pk := p.paramKind
	if p.store.E == consts.NoiseElementsPerPt {
		kind = emit.KindNoise
		pk = 0
	}
	p.consumer.Packet(emit.Packet{Kind: kind, ParamKind: pk, Ports: p.numPorts, Values: data})
	p.store.Reset()
}

func (p *Parser) applyOptionLine(line string) error {
	opts, err := optline.Parse(line)
	if err != nil {
		return wrapErr(Syntax, p.lineNo, err, "option line")
	}
	switch opts.FreqUnit {
	case "HZ":
		p.freqUnit = 1
	case "KHZ":
		p.freqUnit = 1e3
	case "MHZ":
		p.freqUnit = 1e6
	case "GHZ":
		p.freqUnit = 1e9
	}
	switch opts.Format {
	case "DB":
		p.numberFormat = numeric.DBAngle
	case "MA":
		p.numberFormat = numeric.MagnitudeAngle
	case "RI":
		p.numberFormat = numeric.RealImaginary
	}
	if opts.Kind != "" {
		p.paramKind = opts.Kind[0]
	}
	if opts.HasR {
		if opts.R <= 0 {
			return newErr(Semantic, p.lineNo, "reference resistance must be > 0, got %g", opts.R)
		}
		p.refR = opts.R
	}
	return nil
}

func (p *Parser) processDataLine(line string) error {
	vals, err := lexer.Tokens(line)
	if err != nil {
		return wrapErr(Syntax, p.lineNo, err, "data line")
	}
	if len(vals) == 0 {
		return nil
	}
	p.acc.Append(vals...)

	if p.numValsPerSet == 0 {
		return p.tryInferPorts(false)
	}
	if p.acc.Len() > p.numValsPerSet {
		p.warn("more tokens than expected in last data-set; %d extra values spill into the next set", p.acc.Len()-p.numValsPerSet)
	}
	return p.drainCompleteSets()
}

func (p *Parser) tryInferPorts(final bool) error {
	total := p.acc.Len()
	if total == 0 {
		return nil
	}
	if total%2 == 0 {
		if final {
			return newErr(Semantic, p.lineNo, "version 1: incomplete data at end of stream (%d values)", total)
		}
		return nil
	}
	n, ok := numeric.PortsForValueCount(total)
	if !ok {
		return newErr(Semantic, p.lineNo, "version 1: %d values do not correspond to any port count", total)
	}
	if err := p.setNumPorts(n); err != nil {
		return err
	}
	p.numValsPerSet = 2*n*n + 1
	return p.drainCompleteSets()
}

func (p *Parser) drainCompleteSets() error {
	for p.acc.Len() >= p.numValsPerSet {
		raw := p.acc.Take(p.numValsPerSet)
		freqHz := raw[0] * p.freqUnit
		if freqHz <= 0 {
			return newErr(Semantic, p.lineNo, "frequency must be positive, got %g Hz", freqHz)
		}
		payload := raw[1:]

		if p.fileVersion == 1 && p.haveLastFreq && freqHz < p.lastFreq {
			return p.transitionToNoiseFromData(append(raw, p.acc.Values...))
		}

		assembled, err := sweep.AssembleDataPoint(payload, p.numPorts, p.numberFormat, p.matrixFormat, p.twoPortOrder)
		if err != nil {
			return wrapErr(Syntax, p.lineNo, err, "data point")
		}
		if p.store == nil {
			p.store = sweep.NewStore(2 * p.numPorts * p.numPorts)
		}
		if err := p.store.AppendPoint(freqHz, assembled); err != nil {
			return wrapErr(ResourceExhaustion, p.lineNo, err, "sweep store")
		}
		p.lastFreq = freqHz
		p.haveLastFreq = true
	}
	return nil
}

// transitionToNoiseFromData implements the version-1 data-to-noise
// boundary heuristic (spec.md 4.9): a data-set frequency that goes
// backwards after the sweep has started marks the beginning of the
// noise block. tokens holds every value already read that belongs to
// the noise section (the set that triggered the detection plus
// whatever was still pending in the accumulator); it is requeued and
// reinterpreted under the 5-values-per-point noise layout.
func (p *Parser) transitionToNoiseFromData(tokens []float64) error {
	p.flushSweep()
	if p.store == nil {
		p.store = sweep.NewStore(consts.NoiseElementsPerPt)
	} else {
		p.store.Reset()
		p.store.Rescale(consts.NoiseElementsPerPt)
	}
	p.numValsPerSet = consts.NoiseElementsPerPt
	p.state = stNoiseData
	p.acc.Reset()
	p.acc.Append(tokens...)
	if p.acc.Len() > p.numValsPerSet {
		p.warn("more tokens than expected in last data-set; %d extra values spill into the next set", p.acc.Len()-p.numValsPerSet)
	}
	return p.drainNoiseSets()
}

func (p *Parser) processNoiseLine(line string) error {
	vals, err := lexer.Tokens(line)
	if err != nil {
		return wrapErr(Syntax, p.lineNo, err, "noise data line")
	}
	if len(vals) == 0 {
		return nil
	}
	p.acc.Append(vals...)
	if p.acc.Len() > p.numValsPerSet {
		p.warn("more tokens than expected in last data-set; %d extra values spill into the next set", p.acc.Len()-p.numValsPerSet)
	}
	return p.drainNoiseSets()
}

func (p *Parser) drainNoiseSets() error {
	for p.acc.Len() >= p.numValsPerSet {
		raw := p.acc.Take(p.numValsPerSet)
		freqHz := raw[0] * p.freqUnit
		if freqHz <= 0 {
			return newErr(Semantic, p.lineNo, "frequency must be positive, got %g Hz", freqHz)
		}
		assembled, err := sweep.AssembleNoisePoint(freqHz, raw[1:])
		if err != nil {
			return wrapErr(Syntax, p.lineNo, err, "noise point")
		}
		if p.store == nil {
			p.store = sweep.NewStore(consts.NoiseElementsPerPt)
		}
		if err := p.store.AppendPoint(freqHz, assembled); err != nil {
			return wrapErr(ResourceExhaustion, p.lineNo, err, "sweep store")
		}
	}
	return nil
}

func parseIntArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, newErr(Syntax, 0, "expected exactly one integer argument, got %v", args)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, err
	}
	return n, nil
}
