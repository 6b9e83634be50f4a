package wasm

func getGlobal(vm *virtualMachine) {
	vm.pc++
	id := vm.fetchUint32()
	vm.operands.push(vm.instance.Globals[id].Val)
	vm.pc++
}

// setGlobal assumes validation rejected mutation of immutable globals; at
// run time every global.set target is mutable.
func setGlobal(vm *virtualMachine) {
	vm.pc++
	id := vm.fetchUint32()
	vm.instance.Globals[id].Val = vm.operands.pop()
	vm.pc++
}
