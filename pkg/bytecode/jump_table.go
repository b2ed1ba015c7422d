package bytecode

type (
	executionFunc func(vm *VM, in Instruction) error
	// underflowFunc builds the fault for an instruction that found fewer
	// elements than it needs.
	underflowFunc func(in Instruction) *Fault
)

type operation struct {
	execute   executionFunc
	minLen    int
	underflow underflowFunc
}

// JumpTable maps every opcode to its handler. A nil entry is an unknown
// instruction.
type JumpTable [256]*operation

func emptyFault(in Instruction) *Fault {
	return newFault(in.Line, ErrEmptyCollection, "can't %s, stack empty", in.Op)
}

func popFault(in Instruction) *Fault {
	return newFault(in.Line, ErrEmptyCollection, "can't pop an empty stack")
}

// newJumpTable builds the instruction set. Element-count preconditions
// come from opcodeInfoTable so each is declared in one place.
func newJumpTable() *JumpTable {
	handlers := map[Opcode]struct {
		execute   executionFunc
		underflow underflowFunc
	}{
		OpNop:  {opNop, nil},
		OpPush: {opPush, nil},
		OpPop:  {opPop, popFault},
		OpSwap: {opSwap, shortFault},
		OpRotl: {opRotl, nil},
		OpRotr: {opRotr, nil},

		OpAdd: {opAdd, shortFault},
		OpSub: {opSub, shortFault},
		OpMul: {opMul, shortFault},
		OpDiv: {opDiv, shortFault},
		OpMod: {opMod, shortFault},

		OpPall:  {opPall, nil},
		OpPint:  {opPint, emptyFault},
		OpPchar: {opPchar, emptyFault},
		OpPstr:  {opPstr, nil},

		OpStack: {opStack, nil},
		OpQueue: {opQueue, nil},
	}

	var tbl JumpTable
	for op, h := range handlers {
		info := GetOpcodeInfo(op)
		if info.MinLen > 0 && h.underflow == nil {
			panic("bytecode: opcode " + info.Name + " has a minimum length but no underflow fault")
		}
		tbl[op] = &operation{
			execute:   h.execute,
			minLen:    info.MinLen,
			underflow: h.underflow,
		}
	}
	return &tbl
}

// defaultJumpTable is shared by all VMs; it is never mutated after init.
var defaultJumpTable = newJumpTable()
