// Package keyword performs the purely lexical half of bracketed
// Touchstone keyword lines: splitting "[NAME...] arg arg ..." into the
// keyword name and its argument tokens. It assigns no semantics to
// any keyword; that is the state machine's job.
package keyword

import "strings"

// Line is a parsed bracketed keyword line.
type Line struct {
	Name string   // text between '[' and ']', whitespace-collapsed
	Args []string // remaining whitespace-separated tokens after ']'
}

// Parse splits a line starting with "[" into its keyword name and
// argument tokens. ok is false if the line is not a well-formed
// bracketed keyword line.
func Parse(line string) (kw Line, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[") {
		return kw, false
	}
	end := strings.IndexByte(line, ']')
	if end < 0 {
		return kw, false
	}
	name := strings.Join(strings.Fields(line[1:end]), " ")
	rest := strings.TrimSpace(line[end+1:])
	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}
	return Line{Name: name, Args: args}, true
}
