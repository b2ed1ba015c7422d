package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing for the chunk.
func (c *Chunk) Disassemble() string {
	var sb strings.Builder

	// Header
	if c.Name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", c.Name))
	}
	sb.WriteString(fmt.Sprintf("; Monty Bytecode v%d\n", c.Version))
	sb.WriteString(fmt.Sprintf("; Instructions: %d\n\n", len(c.Code)))

	sb.WriteString("; Code:\n")
	for i, in := range c.Code {
		sb.WriteString(fmt.Sprintf("%04d  %-24s ; line %d\n", i, DisassembleInstruction(in), in.Line))
	}

	return sb.String()
}

// DisassembleInstruction formats a single instruction. Instructions that
// will fault when executed are marked with '!'.
func DisassembleInstruction(in Instruction) string {
	switch {
	case in.Op == OpUnknown:
		return fmt.Sprintf("!%-8s (unknown)", in.Name)
	case in.BadOperand:
		return fmt.Sprintf("!%-8s (bad operand)", in.Op)
	case GetOpcodeInfo(in.Op).HasOperand:
		return fmt.Sprintf("%-8s %d", in.Op, in.Operand)
	default:
		return in.Op.String()
	}
}
