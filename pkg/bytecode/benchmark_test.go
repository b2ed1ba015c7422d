// Package bytecode benchmarks
//
// These benchmarks measure the performance of:
// - Assembly of source records
// - VM dispatch through the jump table
// - Image serialization/deserialization
//
// Run: go test -bench=. ./pkg/bytecode/...
// Run with memory stats: go test -bench=. -benchmem ./pkg/bytecode/...
package bytecode

import (
	"io"
	"slices"
	"testing"

	"github.com/chazu/monty/pkg/collection"
	"github.com/chazu/monty/pkg/parser"
)

// benchProgram is a loop-free workload touching every opcode group.
var benchProgram = parser.ParseString(`push 1
push 2
push 3
add
swap
mul
push 7
mod
rotl
rotr
queue
push 65
stack
pchar
pint
pall
pop
`)

// ============================================================
// Assembly Benchmarks
// ============================================================

// BenchmarkAssemble measures record to instruction lowering
func BenchmarkAssemble(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, rec := range benchProgram {
			_ = Assemble(rec)
		}
	}
}

// BenchmarkCompile measures building a whole chunk
func BenchmarkCompile(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Compile("bench", slices.Values(benchProgram))
	}
}

// ============================================================
// Execution Benchmarks
// ============================================================

// BenchmarkRunChunk measures dispatch of a pre-assembled chunk
func BenchmarkRunChunk(b *testing.B) {
	chunk := Compile("bench", slices.Values(benchProgram))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vm := NewVM(io.Discard)
		if err := vm.RunChunk(chunk); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkPushPop measures a hot push/pop cycle on a warm arena
func BenchmarkPushPop(b *testing.B) {
	vm := NewVM(io.Discard)
	push := Instruction{Op: OpPush, Operand: 42, Line: 1}
	pop := Instruction{Op: OpPop, Line: 2}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = vm.Exec(push)
		_ = vm.Exec(pop)
	}
}

// BenchmarkQueueArithmetic measures binary ops in queue mode
func BenchmarkQueueArithmetic(b *testing.B) {
	vm := NewVM(io.Discard, WithMode(collection.Queue))
	push := Instruction{Op: OpPush, Operand: 3, Line: 1}
	add := Instruction{Op: OpAdd, Line: 2}
	_ = vm.Exec(push)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = vm.Exec(push)
		_ = vm.Exec(add)
	}
}

// ============================================================
// Serialization Benchmarks
// ============================================================

// BenchmarkMarshalChunk measures image encoding
func BenchmarkMarshalChunk(b *testing.B) {
	chunk := Compile("bench", slices.Values(benchProgram))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MarshalChunk(chunk)
	}
}

// BenchmarkUnmarshalChunk measures image decoding
func BenchmarkUnmarshalChunk(b *testing.B) {
	data, err := MarshalChunk(Compile("bench", slices.Values(benchProgram)))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = UnmarshalChunk(data)
	}
}
