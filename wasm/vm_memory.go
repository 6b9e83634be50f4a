package wasm

import (
	"encoding/binary"
)

// PageSize is the size of one memory page: 64 KiB.
const PageSize uint64 = 65536

// MemoryMaxPages caps every memory at 65536 pages (4 GiB).
const MemoryMaxPages uint32 = 65536

// memoryBase decodes the alignment hint (ignored) and static offset, pops
// the dynamic address and bounds checks the access. Returns false after
// trapping on an out-of-bounds effective address.
func (vm *virtualMachine) memoryBase(size uint64) (uint64, bool) {
	vm.pc++
	_ = vm.fetchUint32() // alignment hint, correctness does not depend on it
	vm.pc++
	offset := uint64(vm.fetchUint32())
	vm.pc++
	if vm.trapped {
		return 0, false
	}
	base := offset + uint64(uint32(vm.operands.pop()))
	mem := vm.instance.Memory
	if mem == nil || base+size > uint64(len(mem.Buffer)) {
		vm.trap()
		return 0, false
	}
	return base, true
}

func (vm *virtualMachine) memory() []byte {
	return vm.instance.Memory.Buffer
}

func i32Load(vm *virtualMachine) {
	base, ok := vm.memoryBase(4)
	if !ok {
		return
	}
	vm.operands.push(uint64(binary.LittleEndian.Uint32(vm.memory()[base:])))
}

func i64Load(vm *virtualMachine) {
	base, ok := vm.memoryBase(8)
	if !ok {
		return
	}
	vm.operands.push(binary.LittleEndian.Uint64(vm.memory()[base:]))
}

func f32Load(vm *virtualMachine) {
	i32Load(vm)
}

func f64Load(vm *virtualMachine) {
	i64Load(vm)
}

func i32Load8s(vm *virtualMachine) {
	base, ok := vm.memoryBase(1)
	if !ok {
		return
	}
	vm.operands.push(uint64(uint32(int32(int8(vm.memory()[base])))))
}

func i32Load8u(vm *virtualMachine) {
	base, ok := vm.memoryBase(1)
	if !ok {
		return
	}
	vm.operands.push(uint64(vm.memory()[base]))
}

func i32Load16s(vm *virtualMachine) {
	base, ok := vm.memoryBase(2)
	if !ok {
		return
	}
	vm.operands.push(uint64(uint32(int32(int16(binary.LittleEndian.Uint16(vm.memory()[base:]))))))
}

func i32Load16u(vm *virtualMachine) {
	base, ok := vm.memoryBase(2)
	if !ok {
		return
	}
	vm.operands.push(uint64(binary.LittleEndian.Uint16(vm.memory()[base:])))
}

func i64Load8s(vm *virtualMachine) {
	base, ok := vm.memoryBase(1)
	if !ok {
		return
	}
	vm.operands.push(uint64(int64(int8(vm.memory()[base]))))
}

func i64Load8u(vm *virtualMachine) {
	base, ok := vm.memoryBase(1)
	if !ok {
		return
	}
	vm.operands.push(uint64(vm.memory()[base]))
}

func i64Load16s(vm *virtualMachine) {
	base, ok := vm.memoryBase(2)
	if !ok {
		return
	}
	vm.operands.push(uint64(int64(int16(binary.LittleEndian.Uint16(vm.memory()[base:])))))
}

func i64Load16u(vm *virtualMachine) {
	base, ok := vm.memoryBase(2)
	if !ok {
		return
	}
	vm.operands.push(uint64(binary.LittleEndian.Uint16(vm.memory()[base:])))
}

func i64Load32s(vm *virtualMachine) {
	base, ok := vm.memoryBase(4)
	if !ok {
		return
	}
	vm.operands.push(uint64(int64(int32(binary.LittleEndian.Uint32(vm.memory()[base:])))))
}

func i64Load32u(vm *virtualMachine) {
	base, ok := vm.memoryBase(4)
	if !ok {
		return
	}
	vm.operands.push(uint64(binary.LittleEndian.Uint32(vm.memory()[base:])))
}

func i32Store(vm *virtualMachine) {
	val := vm.operands.pop()
	base, ok := vm.memoryBase(4)
	if !ok {
		return
	}
	binary.LittleEndian.PutUint32(vm.memory()[base:], uint32(val))
}

func i64Store(vm *virtualMachine) {
	val := vm.operands.pop()
	base, ok := vm.memoryBase(8)
	if !ok {
		return
	}
	binary.LittleEndian.PutUint64(vm.memory()[base:], val)
}

func f32Store(vm *virtualMachine) {
	i32Store(vm)
}

func f64Store(vm *virtualMachine) {
	i64Store(vm)
}

func i32Store8(vm *virtualMachine) {
	val := vm.operands.pop()
	base, ok := vm.memoryBase(1)
	if !ok {
		return
	}
	vm.memory()[base] = byte(val)
}

func i32Store16(vm *virtualMachine) {
	val := vm.operands.pop()
	base, ok := vm.memoryBase(2)
	if !ok {
		return
	}
	binary.LittleEndian.PutUint16(vm.memory()[base:], uint16(val))
}

func i64Store8(vm *virtualMachine) {
	i32Store8(vm)
}

func i64Store16(vm *virtualMachine) {
	i32Store16(vm)
}

func i64Store32(vm *virtualMachine) {
	val := vm.operands.pop()
	base, ok := vm.memoryBase(4)
	if !ok {
		return
	}
	binary.LittleEndian.PutUint32(vm.memory()[base:], uint32(val))
}

func memorySize(vm *virtualMachine) {
	vm.pc++ // reserved byte
	vm.operands.push(uint64(len(vm.memory())) / PageSize)
	vm.pc++
}

// memoryGrow appends n zeroed pages, pushing the previous page count, or
// -1 as i32 when the memory's maximum (or the 4 GiB cap) would be
// exceeded.
func memoryGrow(vm *virtualMachine) {
	vm.pc++ // reserved byte
	n := uint32(vm.operands.pop())
	mem := vm.instance.Memory

	current := uint64(len(mem.Buffer)) / PageSize
	max := uint64(MemoryMaxPages)
	if mem.Max != nil && uint64(*mem.Max) < max {
		max = uint64(*mem.Max)
	}

	if current+uint64(n) > max {
		vm.operands.push(uint64(uint32(0xFFFFFFFF)))
		vm.pc++
		return
	}

	mem.Buffer = append(mem.Buffer, make([]byte, uint64(n)*PageSize)...)
	vm.operands.push(current)
	vm.pc++
}
