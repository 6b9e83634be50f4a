package wasm

import (
	"bytes"

	"github.com/ewasm-benchmarking/fizzy/wasm/leb128"
)

func block(vm *virtualMachine) {
	b, ok := vm.blocks[vm.pc]
	if !ok {
		vm.trap()
		return
	}
	vm.labels.push(&label{
		arity:          len(b.BlockType.Results),
		continuationPC: b.EndAt + 1,
		operandSP:      vm.operands.sp,
	})
	vm.pc += 1 + b.BlockTypeBytes
}

func loop(vm *virtualMachine) {
	b, ok := vm.blocks[vm.pc]
	if !ok {
		vm.trap()
		return
	}
	// Branching to a loop label re-enters the loop header, so its branch
	// arity is 0 regardless of the block type.
	vm.labels.push(&label{
		arity:          0,
		continuationPC: b.StartAt,
		operandSP:      vm.operands.sp,
	})
	vm.pc += 1 + b.BlockTypeBytes
}

func ifOp(vm *virtualMachine) {
	b, ok := vm.blocks[vm.pc]
	if !ok {
		vm.trap()
		return
	}
	cond := vm.operands.pop()

	if cond == 0 && b.ElseAt == 0 {
		// No else arm: skip the whole structure, including its end.
		vm.pc = b.EndAt + 1
		return
	}

	vm.labels.push(&label{
		arity:          len(b.BlockType.Results),
		continuationPC: b.EndAt + 1,
		operandSP:      vm.operands.sp,
	})
	if cond == 0 {
		vm.pc = b.ElseAt + 1
	} else {
		vm.pc += 1 + b.BlockTypeBytes
	}
}

// elseOp is reached only when the then arm falls through: the label is
// consumed and control jumps past the end.
func elseOp(vm *virtualMachine) {
	l := vm.labels.pop()
	vm.pc = l.continuationPC
}

// end closes the innermost structure. The final end of the body finds an
// empty label stack and is equivalent to return.
func end(vm *virtualMachine) {
	if vm.labels.sp < 0 {
		vm.done = true
		return
	}
	vm.labels.pop()
	vm.pc++
}

func returnOp(vm *virtualMachine) {
	vm.done = true
}

func br(vm *virtualMachine) {
	vm.pc++
	index := vm.fetchUint32()
	if vm.trapped {
		return
	}
	brAt(vm, index)
}

func brIf(vm *virtualMachine) {
	vm.pc++
	index := vm.fetchUint32()
	if vm.trapped {
		return
	}
	c := vm.operands.pop()
	if c != 0 {
		brAt(vm, index)
	} else {
		vm.pc++
	}
}

// brAt branches to the index-th enclosing label. An index past the label
// stack names the implicit function label: the frame unwinds with its
// result operands already on top.
func brAt(vm *virtualMachine, index uint32) {
	if int(index) > vm.labels.sp {
		vm.done = true
		return
	}

	var l *label
	for i := uint32(0); i < index+1; i++ {
		l = vm.labels.pop()
	}

	values := make([]uint64, 0, l.arity)
	for i := 0; i < l.arity; i++ {
		values = append(values, vm.operands.pop())
	}
	vm.operands.sp = l.operandSP
	for i := len(values) - 1; i >= 0; i-- {
		vm.operands.push(values[i])
	}
	vm.pc = l.continuationPC
}

func brTable(vm *virtualMachine) {
	vm.pc++
	r := bytes.NewReader(vm.body[vm.pc:])
	nl, num, err := leb128.DecodeUint32(r)
	if err != nil {
		vm.trap()
		return
	}

	lis := make([]uint32, nl)
	for i := range lis {
		li, n, err := leb128.DecodeUint32(r)
		if err != nil {
			vm.trap()
			return
		}
		num += n
		lis[i] = li
	}

	ln, n, err := leb128.DecodeUint32(r)
	if err != nil {
		vm.trap()
		return
	}
	vm.pc += num + n - 1

	i := uint32(vm.operands.pop())
	if i < nl {
		brAt(vm, lis[i])
	} else {
		brAt(vm, ln)
	}
}

func drop(vm *virtualMachine) {
	vm.operands.drop(1)
	vm.pc++
}

func selectOp(vm *virtualMachine) {
	c := vm.operands.pop()
	v2 := vm.operands.pop()
	if c == 0 {
		vm.operands.drop(1)
		vm.operands.push(v2)
	}
	vm.pc++
}
