package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		text string
		want Record
		ok   bool
	}{
		{"push 1", Record{Opcode: "push", Arg: "1", Line: 3}, true},
		{"  \tpush\t\t-42   ", Record{Opcode: "push", Arg: "-42", Line: 3}, true},
		{"pall", Record{Opcode: "pall", Line: 3}, true},
		{"push 1 2 3", Record{Opcode: "push", Arg: "1", Line: 3}, true},
		{"push 1\r", Record{Opcode: "push", Arg: "1", Line: 3}, true},
		{"pall#x", Record{Opcode: "pall#x", Line: 3}, true},
		{"", Record{}, false},
		{"   \t ", Record{}, false},
		{"# comment", Record{}, false},
		{"   #push 1", Record{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseLine(tt.text, 3)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScannerCountsSkippedLines(t *testing.T) {
	src := "push 1\n\n# note\npush 2\n   \npall\n"
	recs := ParseString(src)

	require.Len(t, recs, 3)
	assert.Equal(t, Record{Opcode: "push", Arg: "1", Line: 1}, recs[0])
	assert.Equal(t, Record{Opcode: "push", Arg: "2", Line: 4}, recs[1])
	assert.Equal(t, Record{Opcode: "pall", Line: 6}, recs[2])
	assert.False(t, recs[2].HasArg())
	assert.True(t, recs[0].HasArg())
}

func TestScannerCRLF(t *testing.T) {
	recs := ParseString("push 1\r\npall\r\n")
	require.Len(t, recs, 2)
	assert.Equal(t, "1", recs[0].Arg)
	assert.Equal(t, "pall", recs[1].Opcode)
}

func TestScannerNoTrailingNewline(t *testing.T) {
	recs := ParseString("push 3\npint")
	require.Len(t, recs, 2)
	assert.Equal(t, 2, recs[1].Line)
}

func TestScannerNext(t *testing.T) {
	s := NewScanner(strings.NewReader("nop\n"))

	rec, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, "nop", rec.Opcode)

	_, ok = s.Next()
	assert.False(t, ok)
	assert.NoError(t, s.Err())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestScannerReadError(t *testing.T) {
	s := NewScanner(failingReader{})
	for range s.Records() {
		t.Fatal("unexpected record")
	}
	assert.EqualError(t, s.Err(), "disk on fire")
}

func TestRecordsStopsEarly(t *testing.T) {
	s := NewScanner(strings.NewReader("nop\nnop\nnop\n"))
	n := 0
	for range s.Records() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)

	rec, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, 3, rec.Line)
}
