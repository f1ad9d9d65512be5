// Package match implements the Touchstone format matcher: a cheap,
// filename-only confidence score used by a host to decide whether a
// candidate file is worth handing to the parser at all. Heavier
// content sniffing is out of scope.
package match

import "strings"

// Score is returned for a filename that ends in .sNp for N in 1..8.
const Score = 10

// Confidence returns a 0-100 confidence score for the given filename,
// and false if the filename does not look like a Touchstone file.
func Confidence(filename string) (score int, ok bool) {
	if _, portOK := PortsFromExtension(filename); portOK {
		return Score, true
	}
	return 0, false
}

// PortsFromExtension parses the .sNp extension (case-insensitive) and
// returns the declared port count, for cross-checking against the
// file's own [NUMBER OF PORTS] keyword or inferred port count.
func PortsFromExtension(filename string) (n int, ok bool) {
	lower := strings.ToLower(filename)
	dot := strings.LastIndexByte(lower, '.')
	if dot < 1 || dot+4 != len(lower) {
		return 0, false
	}
	ext := lower[dot+1:]
	if len(ext) != 3 || ext[0] != 's' || ext[2] != 'p' {
		return 0, false
	}
	d := ext[1]
	if d < '1' || d > '8' {
		return 0, false
	}
	return int(d - '0'), true
}
