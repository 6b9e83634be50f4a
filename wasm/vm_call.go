package wasm

func call(vm *virtualMachine) {
	vm.pc++
	index := vm.fetchUint32()
	if vm.trapped {
		return
	}

	ft, ok := vm.instance.FunctionType(index)
	if !ok {
		vm.trap()
		return
	}

	nargs := len(ft.Params)
	args := vm.operands.slice(nargs)
	res := Execute(vm.instance, index, args, vm.depth+1)
	vm.operands.drop(nargs)
	if res.Trapped {
		vm.trap()
		return
	}
	if res.HasValue {
		vm.operands.push(res.Value)
	}
	vm.pc++
}

func callIndirect(vm *virtualMachine) {
	vm.pc++
	typeIndex := vm.fetchUint32()
	if vm.trapped {
		return
	}
	// note: the mvp limits the size of the table index space to 1
	vm.pc++ // skip 0x00 (table index)

	expType := vm.instance.Module.TypeSection[typeIndex]
	table := vm.instance.Table
	if table == nil {
		vm.trap()
		return
	}

	index := uint32(vm.operands.pop())
	if index >= uint32(len(table.Elements)) {
		vm.trap()
		return
	}

	f := table.Elements[index]
	if f == nil {
		// uninitialized table slot
		vm.trap()
		return
	}

	if !hasSameSignature(f.Type.Params, expType.Params) ||
		!hasSameSignature(f.Type.Results, expType.Results) {
		vm.trap()
		return
	}

	nargs := len(expType.Params)
	args := vm.operands.slice(nargs)
	res := f.Callable(vm.instance, args, vm.depth+1)
	vm.operands.drop(nargs)
	if res.Trapped {
		vm.trap()
		return
	}
	if res.HasValue {
		vm.operands.push(res.Value)
	}
	vm.pc++
}
