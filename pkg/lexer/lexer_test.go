package lexer

import (
	"reflect"
	"testing"
)

func TestChunkerFeedSplitsCompleteLines(t *testing.T) {
	var c Chunker
	lines := c.Feed([]byte("! comment\n[Version] 2.0\n#ghz s ma r 50\n"))
	want := []string{"[VERSION] 2.0", "#GHZ S MA R 50"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Feed = %#v, want %#v", lines, want)
	}
}

func TestChunkerFeedBuffersPartialTail(t *testing.T) {
	var c Chunker
	lines := c.Feed([]byte("1.0 2.0 3"))
	if lines != nil {
		t.Errorf("Feed on a line with no newline should buffer, got %#v", lines)
	}
	lines = c.Feed([]byte(".0\n"))
	if !reflect.DeepEqual(lines, []string{"1.0 2.0 3.0"}) {
		t.Errorf("Feed after completing the line = %#v", lines)
	}
}

func TestChunkerFeedAcrossChunkBoundaryMidToken(t *testing.T) {
	var c Chunker
	if lines := c.Feed([]byte("1.0 2")); lines != nil {
		t.Fatalf("unexpected lines from partial chunk: %#v", lines)
	}
	lines := c.Feed([]byte(".5 3.0\nnext line\n"))
	want := []string{"1.0 2.5 3.0", "NEXT LINE"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Feed = %#v, want %#v", lines, want)
	}
}

func TestChunkerFlush(t *testing.T) {
	var c Chunker
	c.Feed([]byte("no trailing newline"))
	lines := c.Flush()
	if !reflect.DeepEqual(lines, []string{"NO TRAILING NEWLINE"}) {
		t.Errorf("Flush = %#v", lines)
	}
	if lines := c.Flush(); lines != nil {
		t.Errorf("second Flush should be empty, got %#v", lines)
	}
}

func TestChunkerDropsEmptyAndCommentOnlyLines(t *testing.T) {
	var c Chunker
	lines := c.Feed([]byte("\n   \n! just a comment\n1.0\n"))
	if !reflect.DeepEqual(lines, []string{"1.0"}) {
		t.Errorf("Feed = %#v", lines)
	}
}

func TestTokens(t *testing.T) {
	vals, err := Tokens("1.0 -2.5e9 3")
	if err != nil {
		t.Fatalf("Tokens returned error: %v", err)
	}
	want := []float64{1.0, -2.5e9, 3}
	if !reflect.DeepEqual(vals, want) {
		t.Errorf("Tokens = %v, want %v", vals, want)
	}
}

func TestTokensInvalid(t *testing.T) {
	if _, err := Tokens("1.0 notanumber"); err == nil {
		t.Error("Tokens should reject a non-numeric token")
	}
}
