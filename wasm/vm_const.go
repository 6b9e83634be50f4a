package wasm

import (
	"math"
)

func i32Const(vm *virtualMachine) {
	vm.pc++
	vm.operands.push(uint64(uint32(vm.fetchInt32())))
	vm.pc++
}

func i64Const(vm *virtualMachine) {
	vm.pc++
	vm.operands.push(uint64(vm.fetchInt64()))
	vm.pc++
}

func f32Const(vm *virtualMachine) {
	vm.pc++
	vm.operands.push(uint64(math.Float32bits(vm.fetchFloat32())))
	vm.pc++
}

func f64Const(vm *virtualMachine) {
	vm.pc++
	vm.operands.push(math.Float64bits(vm.fetchFloat64()))
	vm.pc++
}
