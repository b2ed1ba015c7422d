package bytecode

import (
	"errors"
	"iter"
	"strconv"

	"github.com/chazu/monty/pkg/parser"
)

// BytecodeVersion is the current image format version.
// Increment when making incompatible changes to the format.
const BytecodeVersion uint16 = 1

// Instruction is one assembled program line.
type Instruction struct {
	Op      Opcode `cbor:"1,keyasint"`
	Operand int32  `cbor:"2,keyasint,omitempty"`
	// BadOperand marks a push whose argument was missing or not an integer.
	BadOperand bool `cbor:"3,keyasint,omitempty"`
	// Name keeps the original mnemonic of an OpUnknown instruction.
	Name string `cbor:"4,keyasint,omitempty"`
	Line int    `cbor:"5,keyasint"`
}

// Mnemonic returns the name the instruction was written with.
func (in Instruction) Mnemonic() string {
	if in.Op == OpUnknown {
		return in.Name
	}
	return in.Op.String()
}

// Assemble converts a record into an instruction. It never fails:
// unknown mnemonics and malformed push operands are kept so that the
// fault surfaces when, and only if, the line is executed.
func Assemble(rec parser.Record) Instruction {
	op, ok := Lookup(rec.Opcode)
	if !ok {
		return Instruction{Op: OpUnknown, Name: rec.Opcode, Line: rec.Line}
	}
	in := Instruction{Op: op, Line: rec.Line}
	if GetOpcodeInfo(op).HasOperand {
		v, ok := ParseOperand(rec.Arg)
		in.Operand = v
		in.BadOperand = !ok
	}
	return in
}

// ParseOperand validates an integer literal: an optional sign followed by
// at least one decimal digit. Values beyond 64 bits saturate, then the
// result is truncated to 32 bits like a native int conversion.
func ParseOperand(s string) (int32, bool) {
	digits := s
	if len(digits) > 0 && (digits[0] == '+' || digits[0] == '-') {
		digits = digits[1:]
	}
	if digits == "" {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return int32(v), true
}

// Chunk is an assembled program. It is the unit that can be written to
// and loaded from an image.
type Chunk struct {
	Version uint16        `cbor:"1,keyasint"`
	Name    string        `cbor:"2,keyasint,omitempty"` // Source file name, informational
	Code    []Instruction `cbor:"3,keyasint"`
}

// NewChunk creates a new empty chunk with the current version.
func NewChunk(name string) *Chunk {
	return &Chunk{
		Version: BytecodeVersion,
		Name:    name,
		Code:    make([]Instruction, 0, 64),
	}
}

// Emit appends an instruction and returns its index.
func (c *Chunk) Emit(in Instruction) int {
	c.Code = append(c.Code, in)
	return len(c.Code) - 1
}

// Len returns the number of instructions.
func (c *Chunk) Len() int {
	return len(c.Code)
}

// Compile assembles every record into a chunk.
func Compile(name string, records iter.Seq[parser.Record]) *Chunk {
	c := NewChunk(name)
	for rec := range records {
		c.Emit(Assemble(rec))
	}
	return c
}
