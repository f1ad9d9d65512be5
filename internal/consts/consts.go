// Package consts holds physical and format constants shared across the
// Touchstone parsing packages.
package consts

const (
	DefaultReferenceOhms = 50.0  // default reference resistance per port
	DefaultFreqUnitHz    = 1e9   // GHz, used when the option line is absent
	InitialSetCapacity   = 512   // initial data-set buffer capacity, in doubles
	InitialSweepCapacity = 512   // initial sweep-store capacity, in points
	NoiseElementsPerPt   = 5     // frequency + 4 noise payload doubles
	MinPorts             = 1
	MaxPorts             = 8 // matches the .s1p .. .s8p extension family
)
