// Package optline parses the Touchstone "#" option line: frequency
// unit, number format, parameter kind, and default reference
// resistance, in any order, space separated, case-insensitive (the
// caller is expected to have already upper-cased the line, as the
// lexer chunker does).
package optline

import (
	"fmt"
	"strconv"
	"strings"
)

// Options is the raw, un-interpreted result of parsing a "#" line.
// Empty string fields mean the token was absent; the caller applies
// defaults.
type Options struct {
	FreqUnit string // "HZ", "KHZ", "MHZ", "GHZ", or ""
	Format   string // "DB", "MA", "RI", or ""
	Kind     string // "S", "Y", "Z", "G", "H", or ""
	HasR     bool
	R        float64
}

var freqUnits = map[string]bool{"HZ": true, "KHZ": true, "MHZ": true, "GHZ": true}
var formats = map[string]bool{"DB": true, "MA": true, "RI": true}
var kinds = map[string]bool{"S": true, "Y": true, "Z": true, "G": true, "H": true}

// Parse parses a line beginning with "#". The leading "#" is optional
// in the input; Parse strips it if present.
func Parse(line string) (Options, error) {
	line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "#"))
	fields := strings.Fields(line)

	var opt Options
	for i := 0; i < len(fields); i++ {
		tok := fields[i]
		switch {
		case freqUnits[tok]:
			opt.FreqUnit = tok
		case formats[tok]:
			opt.Format = tok
		case kinds[tok]:
			opt.Kind = tok
		case tok == "R":
			if i+1 >= len(fields) {
				return opt, fmt.Errorf("optline: R without a value")
			}
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return opt, fmt.Errorf("optline: invalid R value %q: %w", fields[i+1], err)
			}
			opt.HasR = true
			opt.R = v
			i++
		default:
			return opt, fmt.Errorf("optline: unrecognized token %q", tok)
		}
	}
	return opt, nil
}
