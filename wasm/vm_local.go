package wasm

func getLocal(vm *virtualMachine) {
	vm.pc++
	id := vm.fetchUint32()
	vm.operands.push(vm.locals[id])
	vm.pc++
}

func setLocal(vm *virtualMachine) {
	vm.pc++
	id := vm.fetchUint32()
	vm.locals[id] = vm.operands.pop()
	vm.pc++
}

func teeLocal(vm *virtualMachine) {
	vm.pc++
	id := vm.fetchUint32()
	vm.locals[id] = vm.operands.peek(0)
	vm.pc++
}
