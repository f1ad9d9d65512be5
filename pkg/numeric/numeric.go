// Package numeric implements the in-place coordinate conversions and
// matrix helpers used while assembling a Touchstone sweep point:
// dB/angle and magnitude/angle normalization to polar radians,
// real/imaginary to polar, noise-figure dB to linear, and the
// symmetric-matrix fill and 2-port reorder helpers.
package numeric

import "math"

// Format identifies the on-wire representation of a complex pair as
// declared by the option line's DB/MA/RI token.
type Format int

const (
	RealImaginary Format = iota
	MagnitudeAngle
	DBAngle
)

func (f Format) String() string {
	switch f {
	case RealImaginary:
		return "RI"
	case MagnitudeAngle:
		return "MA"
	case DBAngle:
		return "DB"
	default:
		return "UNKNOWN"
	}
}

// ToPolar converts a complex pair (a, b) on the wire, in the given
// Format, into the canonical (magnitude, phase-radians) pair used for
// every stored matrix element.
func ToPolar(f Format, a, b float64) (magnitude, phaseRad float64) {
	switch f {
	case RealImaginary:
		if a == 0 && b == 0 {
			return 0, 0
		}
		return math.Hypot(a, b), math.Atan2(b, a)
	case MagnitudeAngle:
		return a, b * math.Pi / 180
	case DBAngle:
		return math.Pow(10, a/20), b * math.Pi / 180
	default:
		return a, b
	}
}

// NoiseFigureDBToLinear converts a noise figure expressed in dB to its
// linear ratio.
func NoiseFigureDBToLinear(x float64) float64 {
	return math.Pow(10, x/10)
}

// FillLower mirrors the strict upper triangle of an N-port complex
// matrix (row-major, 2 doubles per element) into the strict lower
// triangle: for each i<j, M[j,i] <- M[i,j].
func FillLower(m []float64, n int) {
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			srcRe, srcIm := index(i, j, n)
			dstRe, dstIm := index(j, i, n)
			m[dstRe], m[dstIm] = m[srcRe], m[srcIm]
		}
	}
}

// FillUpper mirrors the strict lower triangle into the strict upper
// triangle: for each i<j, M[i,j] <- M[j,i].
func FillUpper(m []float64, n int) {
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			srcRe, srcIm := index(j, i, n)
			dstRe, dstIm := index(i, j, n)
			m[dstRe], m[dstIm] = m[srcRe], m[srcIm]
		}
	}
}

// Swap21_12 exchanges the (2,1) and (1,2) complex pairs of a 2x2
// row-major matrix in place, converting between the legacy 21_12 wire
// order and row-major (1,2)-before-(2,1) order.
func Swap21_12(m []float64) {
	if len(m) != 8 {
		return
	}
	s12Re, s12Im := index(0, 1, 2)
	s21Re, s21Im := index(1, 0, 2)
	m[s12Re], m[s21Re] = m[s21Re], m[s12Re]
	m[s12Im], m[s21Im] = m[s21Im], m[s12Im]
}

func index(row, col, n int) (re, im int) {
	base := 2 * (row*n + col)
	return base, base + 1
}

// ISqrt returns the integer square root of a non-negative integer,
// i.e. floor(sqrt(x)).
func ISqrt(x int) int {
	if x < 0 {
		return -1
	}
	if x < 2 {
		return x
	}
	r := int(math.Sqrt(float64(x)))
	// correct for floating point rounding at the boundary
	for r*r > x {
		r--
	}
	for (r+1)*(r+1) <= x {
		r++
	}
	return r
}

// PortsForValueCount returns the port count N implied by a sweep-point
// token count (1 frequency + 2N^2 payload doubles), and whether the
// count is exactly consistent with some N.
func PortsForValueCount(count int) (n int, ok bool) {
	if count < 1 || (count-1)%2 != 0 {
		return 0, false
	}
	sq := (count - 1) / 2
	n = ISqrt(sq)
	return n, n*n == sq
}
