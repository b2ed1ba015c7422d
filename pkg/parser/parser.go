// Package parser turns monty source text into instruction records.
package parser

import (
	"bufio"
	"io"
	"iter"
	"strings"
)

// maxLineSize bounds a single source line.
const maxLineSize = 1 << 20

// Record is one instruction line: an opcode token, an optional argument
// token and the 1-based physical line it came from.
type Record struct {
	Opcode string
	Arg    string // "" when the line has no argument
	Line   int
}

// HasArg reports whether the line carried an argument token.
func (r Record) HasArg() bool {
	return r.Arg != ""
}

// Scanner reads records from a source. Blank lines and lines whose first
// token starts with '#' are skipped but still counted.
type Scanner struct {
	sc   *bufio.Scanner
	line int
	err  error
}

// NewScanner creates a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &Scanner{sc: sc}
}

// Next returns the next record. ok is false at end of input or on a read
// error; check Err afterwards.
func (s *Scanner) Next() (rec Record, ok bool) {
	for s.sc.Scan() {
		s.line++
		if rec, ok := ParseLine(s.sc.Text(), s.line); ok {
			return rec, true
		}
	}
	s.err = s.sc.Err()
	return Record{}, false
}

// Records yields every remaining record.
func (s *Scanner) Records() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for {
			rec, ok := s.Next()
			if !ok || !yield(rec) {
				return
			}
		}
	}
}

// Err returns the first read error, if any.
func (s *Scanner) Err() error {
	return s.err
}

// ParseLine splits one line into a record. ok is false for blank and
// comment lines.
func ParseLine(text string, line int) (rec Record, ok bool) {
	fields := strings.FieldsFunc(text, isSeparator)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return Record{}, false
	}
	rec = Record{Opcode: fields[0], Line: line}
	if len(fields) > 1 {
		rec.Arg = fields[1]
	}
	return rec, true
}

// ParseString parses a whole program held in memory.
func ParseString(src string) []Record {
	var out []Record
	for rec := range NewScanner(strings.NewReader(src)).Records() {
		out = append(out, rec)
	}
	return out
}

func isSeparator(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r'
}
