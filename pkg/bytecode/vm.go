package bytecode

import (
	"bufio"
	"fmt"
	"io"
	"iter"

	"github.com/tliron/commonlog"

	"github.com/chazu/monty/pkg/collection"
	"github.com/chazu/monty/pkg/parser"
)

var log = commonlog.GetLogger("monty.vm")

// State is the run state of a VM.
type State uint8

const (
	// Running accepts further instructions.
	Running State = iota
	// Halted is terminal: input was exhausted or a fault occurred.
	Halted
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Halted:
		return "halted"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// VM executes monty instructions against a single ordered collection.
type VM struct {
	coll  *collection.Collection
	out   *bufio.Writer
	buf   []byte
	table *JumpTable
	state State

	// Executed counts instructions that completed without a fault.
	Executed int

	// Trace logs every instruction before it runs.
	Trace bool
	log   commonlog.Logger
}

// Option configures a VM.
type Option func(*VM)

// WithMode sets the initial insertion mode.
func WithMode(m collection.Mode) Option {
	return func(vm *VM) {
		vm.coll.SetMode(m)
	}
}

// WithTrace enables instruction tracing.
func WithTrace(trace bool) Option {
	return func(vm *VM) {
		vm.Trace = trace
	}
}

// WithLogger replaces the trace logger.
func WithLogger(l commonlog.Logger) Option {
	return func(vm *VM) {
		vm.log = l
	}
}

// NewVM creates a VM that prints to out.
func NewVM(out io.Writer, opts ...Option) *VM {
	vm := &VM{
		coll:  collection.New(),
		out:   bufio.NewWriter(out),
		buf:   make([]byte, 0, 16),
		table: defaultJumpTable,
		log:   log,
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// State returns whether the VM still accepts instructions.
func (vm *VM) State() State {
	return vm.state
}

// Collection exposes the collection for inspection. Callers must not
// mutate it.
func (vm *VM) Collection() *collection.Collection {
	return vm.coll
}

// Exec runs one instruction. Output is flushed before it returns. Any
// error halts the VM.
func (vm *VM) Exec(in Instruction) error {
	if vm.state == Halted {
		return ErrHalted
	}

	if vm.Trace {
		vm.log.Infof("L%d %-24s len=%d mode=%s", in.Line, DisassembleInstruction(in), vm.coll.Len(), vm.coll.Mode())
	}

	err := vm.step(in)
	if ferr := vm.out.Flush(); ferr != nil && err == nil {
		err = fmt.Errorf("write output: %w", ferr)
	}
	if err != nil {
		vm.state = Halted
		return err
	}
	vm.Executed++
	return nil
}

func (vm *VM) step(in Instruction) error {
	op := vm.table[in.Op]
	if op == nil {
		return newFault(in.Line, ErrUnknownInstruction, "unknown instruction %s", in.Mnemonic())
	}
	if vm.coll.Len() < op.minLen {
		return op.underflow(in)
	}
	return op.execute(vm, in)
}

// Run assembles and executes records in order until the sequence ends or
// an instruction fails. The VM is halted afterwards either way.
func (vm *VM) Run(records iter.Seq[parser.Record]) error {
	for rec := range records {
		if err := vm.Exec(Assemble(rec)); err != nil {
			return err
		}
	}
	vm.state = Halted
	return nil
}

// RunChunk executes an assembled program.
func (vm *VM) RunChunk(c *Chunk) error {
	for _, in := range c.Code {
		if err := vm.Exec(in); err != nil {
			return err
		}
	}
	vm.state = Halted
	return nil
}

// Close releases every cell and halts the VM. Safe to call more than once.
func (vm *VM) Close() {
	vm.coll.Reset()
	vm.state = Halted
}
