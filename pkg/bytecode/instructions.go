package bytecode

import (
	"strconv"

	"github.com/chazu/monty/pkg/collection"
)

// Handlers run after the jump table has checked the element count, so
// collection errors below cannot occur and are ignored.

func opNop(vm *VM, in Instruction) error {
	return nil
}

func opPush(vm *VM, in Instruction) error {
	if in.BadOperand {
		return newFault(in.Line, ErrUsage, "usage: push integer")
	}
	vm.coll.Push(in.Operand)
	return nil
}

func opPop(vm *VM, in Instruction) error {
	_, _ = vm.coll.PopFront()
	return nil
}

func opSwap(vm *VM, in Instruction) error {
	_ = vm.coll.SwapFront()
	return nil
}

func opRotl(vm *VM, in Instruction) error {
	vm.coll.RotateLeft()
	return nil
}

func opRotr(vm *VM, in Instruction) error {
	vm.coll.RotateRight()
	return nil
}

// binary applies fn(second, front), drops the front element and stores
// the result in the new front. Nothing is mutated when fn fails.
func binary(vm *VM, in Instruction, fn func(a, b int32) (int32, *Fault)) error {
	front, _ := vm.coll.Front()
	second, _ := vm.coll.Second()
	result, fault := fn(second, front)
	if fault != nil {
		return fault
	}
	_, _ = vm.coll.PopFront()
	_ = vm.coll.SetFront(result)
	return nil
}

func opAdd(vm *VM, in Instruction) error {
	return binary(vm, in, func(a, b int32) (int32, *Fault) { return a + b, nil })
}

func opSub(vm *VM, in Instruction) error {
	return binary(vm, in, func(a, b int32) (int32, *Fault) { return a - b, nil })
}

func opMul(vm *VM, in Instruction) error {
	return binary(vm, in, func(a, b int32) (int32, *Fault) { return a * b, nil })
}

func opDiv(vm *VM, in Instruction) error {
	return binary(vm, in, func(a, b int32) (int32, *Fault) {
		if b == 0 {
			return 0, newFault(in.Line, ErrDivisionByZero, "division by zero")
		}
		return a / b, nil
	})
}

func opMod(vm *VM, in Instruction) error {
	return binary(vm, in, func(a, b int32) (int32, *Fault) {
		if b == 0 {
			return 0, newFault(in.Line, ErrDivisionByZero, "division by zero")
		}
		return a % b, nil
	})
}

func (vm *VM) printInt(v int32) {
	vm.buf = strconv.AppendInt(vm.buf[:0], int64(v), 10)
	vm.buf = append(vm.buf, '\n')
	vm.out.Write(vm.buf)
}

func opPall(vm *VM, in Instruction) error {
	for v := range vm.coll.All() {
		vm.printInt(v)
	}
	return nil
}

func opPint(vm *VM, in Instruction) error {
	v, _ := vm.coll.Front()
	vm.printInt(v)
	return nil
}

func opPchar(vm *VM, in Instruction) error {
	v, _ := vm.coll.Front()
	if v < 0 || v > 127 {
		return newFault(in.Line, ErrOutOfRange, "can't pchar, value out of range")
	}
	vm.out.WriteByte(byte(v))
	vm.out.WriteByte('\n')
	return nil
}

func opPstr(vm *VM, in Instruction) error {
	for v := range vm.coll.All() {
		if v <= 0 || v > 127 {
			break
		}
		vm.out.WriteByte(byte(v))
	}
	vm.out.WriteByte('\n')
	return nil
}

func opStack(vm *VM, in Instruction) error {
	vm.coll.SetMode(collection.Stack)
	return nil
}

func opQueue(vm *VM, in Instruction) error {
	vm.coll.SetMode(collection.Queue)
	return nil
}
