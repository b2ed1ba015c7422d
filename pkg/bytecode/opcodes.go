package bytecode

import (
	"fmt"
	"sort"
)

// Opcode represents a monty instruction.
// Opcodes are organized into ranges by category for easy identification.
type Opcode byte

const (
	// ========================================================================
	// Collection manipulation (0x00-0x0F)
	// ========================================================================

	OpNop  Opcode = 0x00 // No operation
	OpPush Opcode = 0x01 // Insert operand per current mode: push <int>
	OpPop  Opcode = 0x02 // Remove front element
	OpSwap Opcode = 0x03 // Swap front two values
	OpRotl Opcode = 0x04 // Move front element to the back
	OpRotr Opcode = 0x05 // Move back element to the front

	// ========================================================================
	// Arithmetic (0x10-0x1F), result = second op front
	// ========================================================================

	OpAdd Opcode = 0x10
	OpSub Opcode = 0x11
	OpMul Opcode = 0x12
	OpDiv Opcode = 0x13
	OpMod Opcode = 0x14

	// ========================================================================
	// Output (0x20-0x2F)
	// ========================================================================

	OpPall  Opcode = 0x20 // Print all values, front to back
	OpPint  Opcode = 0x21 // Print front value
	OpPchar Opcode = 0x22 // Print front value as a character
	OpPstr  Opcode = 0x23 // Print values as a string until 0 or non-ASCII

	// ========================================================================
	// Mode (0x30-0x3F)
	// ========================================================================

	OpStack Opcode = 0x30 // Switch to LIFO insertion
	OpQueue Opcode = 0x31 // Switch to FIFO insertion

	// OpUnknown carries an unrecognized mnemonic through assembly so the
	// fault is raised only when the line is reached.
	OpUnknown Opcode = 0xFF
)

// OpcodeInfo provides metadata about each opcode for dispatch, debugging
// and editor support.
type OpcodeInfo struct {
	Name       string // Mnemonic as written in programs
	MinLen     int    // Elements required before the handler runs
	HasOperand bool   // Takes an integer argument
	Doc        string // One-line description
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpNop:  {"nop", 0, false, "Does nothing."},
	OpPush: {"push", 0, true, "Inserts an integer: at the front in stack mode, at the back in queue mode."},
	OpPop:  {"pop", 1, false, "Removes the front element."},
	OpSwap: {"swap", 2, false, "Swaps the front two elements."},
	OpRotl: {"rotl", 0, false, "Moves the front element to the back."},
	OpRotr: {"rotr", 0, false, "Moves the back element to the front."},

	OpAdd: {"add", 2, false, "Replaces the front two elements with second + front."},
	OpSub: {"sub", 2, false, "Replaces the front two elements with second - front."},
	OpMul: {"mul", 2, false, "Replaces the front two elements with second * front."},
	OpDiv: {"div", 2, false, "Replaces the front two elements with second / front."},
	OpMod: {"mod", 2, false, "Replaces the front two elements with second % front."},

	OpPall:  {"pall", 0, false, "Prints every element, front to back, one per line."},
	OpPint:  {"pint", 1, false, "Prints the front element."},
	OpPchar: {"pchar", 1, false, "Prints the front element as an ASCII character."},
	OpPstr:  {"pstr", 0, false, "Prints elements as ASCII characters until 0, a non-ASCII value or the end."},

	OpStack: {"stack", 0, false, "Switches to stack (LIFO) mode."},
	OpQueue: {"queue", 0, false, "Switches to queue (FIFO) mode."},
}

// mnemonics maps program text to opcodes.
var mnemonics = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeInfoTable))
	for op, info := range opcodeInfoTable {
		m[info.Name] = op
	}
	return m
}()

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with name "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// Lookup returns the opcode for a mnemonic. Matching is case-sensitive.
func Lookup(name string) (Opcode, bool) {
	op, ok := mnemonics[name]
	return op, ok
}

// String returns the mnemonic of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// IsArithmetic returns true for the two-operand arithmetic opcodes.
func (op Opcode) IsArithmetic() bool {
	return op >= OpAdd && op <= OpMod
}

// IsOutput returns true if this opcode writes to the output stream.
func (op Opcode) IsOutput() bool {
	return op >= OpPall && op <= OpPstr
}

// AllOpcodes returns every defined opcode in numeric order.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	sort.Slice(opcodes, func(i, j int) bool { return opcodes[i] < opcodes[j] })
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
