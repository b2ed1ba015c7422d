// Package bytecode provides the execution engine for monty programs: a
// small straight-line instruction language over one ordered collection
// of int32 values that behaves as a stack or a queue.
//
// # Architecture Overview
//
//   - Opcodes: 17 instructions covering insertion and removal, rotation,
//     two-operand arithmetic, printing, and mode switching. Each opcode's
//     metadata (mnemonic, element-count precondition, operand) lives in a
//     single table.
//
//   - Assembly: parser.Record values become Instructions. Assembly never
//     fails; unknown mnemonics and malformed push operands are carried
//     along and fault only when executed, so every line before a bad one
//     still runs.
//
//   - Chunk: an assembled program. Chunks can be written to an image
//     (the "MNTY" magic followed by canonical CBOR) and disassembled.
//
//   - VM: dispatches each instruction through a jump table. Element-count
//     preconditions are checked once, from the table, before the handler
//     runs.
//
// # Faults
//
// Every runtime error is fatal. The VM returns a *Fault carrying the
// source line and the diagnostic text and moves to the Halted state; no
// further instruction is accepted. The caller decides how to report it.
//
// # Arithmetic
//
// add, sub, mul, div and mod compute "second op front" with native int32
// semantics: overflow wraps silently and division truncates toward zero.
package bytecode
