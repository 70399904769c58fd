// Package blockscan splits Cisco configuration text into header/body blocks.
//
// IOS and NX-OS configurations are flat text where a block opens with an
// unindented header line (interface, line, router, ...) and runs until the
// next sibling header, a "!" separator, or the end of the text. Every check
// module that iterates over repeated blocks goes through Scan so the boundary
// rule lives in one place.
package blockscan

import (
	"regexp"
	"strings"
)

// DefaultBoundaries are the line prefixes that close any block.
var DefaultBoundaries = []string{"interface", "line", "!"}

// Block is one header line plus the lines that follow it up to the next
// boundary. The boundary line itself is never part of Lines.
type Block struct {
	// Header is the header line with trailing whitespace removed.
	Header string
	// Groups holds the header pattern submatches; Groups[0] is the full match.
	Groups []string
	// Lines are the body lines in order, unmodified apart from line endings.
	Lines []string
}

// Group returns submatch i of the header pattern, or "" when absent.
func (b Block) Group(i int) string {
	if i < 0 || i >= len(b.Groups) {
		return ""
	}
	return b.Groups[i]
}

// Body returns the body lines joined with newlines.
func (b Block) Body() string {
	return strings.Join(b.Lines, "\n")
}

// Contains reports whether the body contains substr (case-sensitive).
func (b Block) Contains(substr string) bool {
	for _, l := range b.Lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

// HasCommand reports whether any body line, once trimmed, equals cmd
// (case-insensitive). Use it for bare commands such as "shutdown" where a
// substring test would also match "no shutdown".
func (b Block) HasCommand(cmd string) bool {
	for _, l := range b.Lines {
		if strings.EqualFold(strings.TrimSpace(l), cmd) {
			return true
		}
	}
	return false
}

// Match returns the submatches of re against the first body line it matches,
// or nil.
func (b Block) Match(re *regexp.Regexp) []string {
	for _, l := range b.Lines {
		if m := re.FindStringSubmatch(l); m != nil {
			return m
		}
	}
	return nil
}

// Normalize converts CRLF and bare CR line endings to LF.
func Normalize(text string) string {
	if !strings.Contains(text, "\r") {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// Scan returns every block whose header line matches header, in text order.
//
// A block's body ends at the first following line that matches header again,
// or that starts (case-insensitively, at column 0) with one of boundaries.
// When boundaries is empty DefaultBoundaries is used. header should be
// anchored with ^ so that commands such as "logging source-interface" are not
// mistaken for block headers.
func Scan(text string, header *regexp.Regexp, boundaries ...string) []Block {
	if len(boundaries) == 0 {
		boundaries = DefaultBoundaries
	}
	lines := strings.Split(Normalize(text), "\n")

	var (
		blocks  []Block
		current *Block
	)
	flush := func() {
		if current != nil {
			blocks = append(blocks, *current)
			current = nil
		}
	}

	for _, line := range lines {
		if m := header.FindStringSubmatch(line); m != nil {
			flush()
			current = &Block{Header: strings.TrimRight(line, " \t"), Groups: m}
			continue
		}
		if current == nil {
			continue
		}
		if isBoundary(line, boundaries) {
			flush()
			continue
		}
		current.Lines = append(current.Lines, line)
	}
	flush()
	return blocks
}

func isBoundary(line string, boundaries []string) bool {
	lower := strings.ToLower(line)
	for _, b := range boundaries {
		if strings.HasPrefix(lower, b) {
			return true
		}
	}
	return false
}

// FirstMatch returns a one-element slice holding the first match of re in
// text, or nil when there is none. It is the usual shape of a finding's
// affected lines for single-directive checks.
func FirstMatch(text string, re *regexp.Regexp) []string {
	if m := re.FindString(text); m != "" {
		return []string{m}
	}
	return nil
}

// AllMatches returns every match of re in text, or nil.
func AllMatches(text string, re *regexp.Regexp) []string {
	return re.FindAllString(text, -1)
}
