// Package sweep holds the in-progress value set for one sweep point
// (the accumulator) and the two growing buffers that make up the
// sweep store: frequencies and per-point data-sets, plus the matrix
// assembly ("move-to-sweep") that turns a completed raw value set
// into a stored, converted matrix payload.
package sweep

import (
	"fmt"

	"github.com/kmoss-rf/touchstone/internal/consts"
	"github.com/kmoss-rf/touchstone/pkg/numeric"
)

// MatrixFormat is the on-wire storage layout of an N-port matrix.
type MatrixFormat int

const (
	Full MatrixFormat = iota
	Lower
	Upper
)

// TwoPortOrder controls the wire order of the off-diagonal terms of a
// 2-port matrix.
type TwoPortOrder int

const (
	Order21_12 TwoPortOrder = iota // legacy default
	Order12_21
)

// Accumulator holds the values of the currently-accumulating sweep
// point. It grows geometrically, mirroring the source's
// data_set/data_set_count pair.
type Accumulator struct {
	Values []float64
}

// NewAccumulator returns an accumulator pre-sized to the initial
// capacity used throughout the parser.
func NewAccumulator() *Accumulator {
	return &Accumulator{Values: make([]float64, 0, consts.InitialSetCapacity)}
}

// Append adds tokens to the accumulator.
func (a *Accumulator) Append(vals ...float64) {
	a.Values = append(a.Values, vals...)
}

// Len reports the current accumulated count.
func (a *Accumulator) Len() int { return len(a.Values) }

// Reset empties the accumulator, retaining its backing capacity.
func (a *Accumulator) Reset() {
	a.Values = a.Values[:0]
}

// Take removes and returns the first n values, shifting any remainder
// (the "excess spills into the next set" policy of the accumulator)
// to the front of the buffer.
func (a *Accumulator) Take(n int) []float64 {
	if n > len(a.Values) {
		n = len(a.Values)
	}
	out := make([]float64, n)
	copy(out, a.Values[:n])
	rest := len(a.Values) - n
	copy(a.Values, a.Values[n:])
	a.Values = a.Values[:rest]
	return out
}

// Store is the pair of growing sweep buffers: frequencies and their
// per-point payloads, plus the element-per-point size E (2*N^2 for
// data, 5 for noise).
type Store struct {
	Freq  []float64
	Data  []float64
	E     int
	Count int
}

// NewStore returns a store sized to hold E doubles per point.
func NewStore(e int) *Store {
	return &Store{
		Freq: make([]float64, 0, consts.InitialSweepCapacity),
		Data: make([]float64, 0, consts.InitialSweepCapacity*e),
		E:    e,
	}
}

// AppendPoint appends one sweep point (frequency + already-converted
// payload of length E) to the store.
func (s *Store) AppendPoint(freq float64, payload []float64) error {
	if len(payload) != s.E {
		return fmt.Errorf("sweep: payload length %d does not match store element size %d", len(payload), s.E)
	}
	s.Freq = append(s.Freq, freq)
	s.Data = append(s.Data, payload...)
	s.Count++
	return nil
}

// PopLast removes and returns the most recently appended point, and
// false if the store is empty.
func (s *Store) PopLast() (freq float64, payload []float64, ok bool) {
	if s.Count == 0 {
		return 0, nil, false
	}
	s.Count--
	freq = s.Freq[s.Count]
	s.Freq = s.Freq[:s.Count]
	start := s.Count * s.E
	payload = append([]float64(nil), s.Data[start:start+s.E]...)
	s.Data = s.Data[:start]
	return freq, payload, true
}

// Reset clears the accumulated points, retaining backing capacity.
func (s *Store) Reset() {
	s.Freq = s.Freq[:0]
	s.Data = s.Data[:0]
	s.Count = 0
}

// Rescale changes the store's element-per-point size, used at the
// data-to-noise transition (E goes from 2*N^2 to 5). Any accumulated
// points are discarded first by the caller via Reset.
func (s *Store) Rescale(e int) {
	s.E = e
}

// AssembleDataPoint builds the converted N-port matrix payload (length
// 2*N*N) from a completed raw value set (frequency already removed),
// applying the declared storage layout, the number-format conversion,
// triangle mirroring, and the 2-port legacy reorder.
func AssembleDataPoint(raw []float64, n int, format numeric.Format, mf MatrixFormat, order TwoPortOrder) ([]float64, error) {
	want := n * n
	switch mf {
	case Full:
		want = n * n
	case Lower, Upper:
		want = (n*n + n) / 2
	}
	if len(raw) != want*2 {
		return nil, fmt.Errorf("sweep: expected %d payload doubles for N=%d format=%v, got %d", want*2, n, mf, len(raw))
	}

	payload := make([]float64, n*n*2)

	switch mf {
	case Full:
		copy(payload, raw)
	case Upper:
		pos := 0
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				base := 2 * (i*n + j)
				payload[base] = raw[pos]
				payload[base+1] = raw[pos+1]
				pos += 2
			}
		}
	case Lower:
		pos := 0
		for i := 0; i < n; i++ {
			for j := 0; j <= i; j++ {
				base := 2 * (i*n + j)
				payload[base] = raw[pos]
				payload[base+1] = raw[pos+1]
				pos += 2
			}
		}
	}

	for i := 0; i < n*n; i++ {
		a, b := payload[2*i], payload[2*i+1]
		mag, phase := numeric.ToPolar(format, a, b)
		payload[2*i], payload[2*i+1] = mag, phase
	}

	switch mf {
	case Upper:
		numeric.FillLower(payload, n)
	case Lower:
		numeric.FillUpper(payload, n)
	}

	if n == 2 && order == Order21_12 {
		numeric.Swap21_12(payload)
	}

	return payload, nil
}

// AssembleNoisePoint converts a raw 4-double noise payload
// (NFmin_dB, |Gamma_opt|_MA-magnitude, angle_Gamma_opt-degrees, Rn_norm)
// into the stored 5-double form: the point's frequency prepended to
// (NFmin linear, magnitude, angle radians, Rn verbatim). Storing the
// frequency inside the noise payload block itself (in addition to the
// parallel frequency axis) matches this reader's choice of 4 payload
// doubles + frequency = 5 stored per noise point.
func AssembleNoisePoint(freqHz float64, raw []float64) ([]float64, error) {
	if len(raw) != 4 {
		return nil, fmt.Errorf("sweep: noise payload must have 4 doubles, got %d", len(raw))
	}
	out := make([]float64, 5)
	out[0] = freqHz
	out[1] = numeric.NoiseFigureDBToLinear(raw[0])
	out[2] = raw[1]
	out[3] = raw[2] * (3.141592653589793 / 180)
	out[4] = raw[3]
	return out, nil
}
