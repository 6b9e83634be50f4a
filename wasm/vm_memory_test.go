package wasm

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memModule(t *testing.T, max *uint32, body []byte) *Instance {
	t.Helper()
	return buildModule(t, &Module{
		TypeSection:     []*FunctionType{{Params: []ValueType{ValueTypeI32}, Results: []ValueType{ValueTypeI32}}},
		FunctionSection: []uint32{0},
		MemorySection:   []*MemoryType{{Min: 1, Max: max}},
		CodeSection:     []*CodeSegment{{Body: body}},
	})
}

func TestExecute_loadStore(t *testing.T) {
	// (func (param i32) (result i32)
	//   (i32.store (local.get 0) (i32.const 42))
	//   (i32.load (local.get 0)))
	inst := memModule(t, nil, []byte{
		OpcodeLocalGet, 0x00,
		OpcodeI32Const, 0x2a,
		OpcodeI32Store, 0x02, 0x00,
		OpcodeLocalGet, 0x00,
		OpcodeI32Load, 0x02, 0x00,
		OpcodeEnd,
	})

	requireResult(t, Execute(inst, 0, []uint64{0}, 0), 42)
	requireResult(t, Execute(inst, 0, []uint64{100}, 0), 42)
	assert.Equal(t, uint32(42), binary.LittleEndian.Uint32(inst.Memory.Buffer[100:]))
}

func TestExecute_loadOutOfBounds(t *testing.T) {
	inst := memModule(t, nil, []byte{
		OpcodeLocalGet, 0x00,
		OpcodeI32Load, 0x02, 0x00,
		OpcodeEnd,
	})

	requireResult(t, Execute(inst, 0, []uint64{65532}, 0), 0)
	// 65533+4 crosses the page boundary
	assert.True(t, Execute(inst, 0, []uint64{65533}, 0).Trapped)
	assert.True(t, Execute(inst, 0, []uint64{65536}, 0).Trapped)
	// the static offset contributes to the effective address
	inst2 := memModule(t, nil, []byte{
		OpcodeLocalGet, 0x00,
		OpcodeI32Load, 0x02, 0x04, // offset 4
		OpcodeEnd,
	})
	assert.True(t, Execute(inst2, 0, []uint64{65529}, 0).Trapped)
}

func TestExecute_storeOutOfBounds(t *testing.T) {
	inst := memModule(t, nil, []byte{
		OpcodeLocalGet, 0x00,
		OpcodeI32Const, 0x01,
		OpcodeI32Store, 0x02, 0x00,
		OpcodeI32Const, 0x00,
		OpcodeEnd,
	})

	assert.True(t, Execute(inst, 0, []uint64{65533}, 0).Trapped)
}

func TestExecute_narrowLoads(t *testing.T) {
	// (func (param i32) (result i32) (i32.load8_s (local.get 0)))
	inst := memModule(t, nil, []byte{
		OpcodeLocalGet, 0x00,
		OpcodeI32Load8s, 0x00, 0x00,
		OpcodeEnd,
	})
	inst.Memory.Buffer[0] = 0xff

	requireResult(t, Execute(inst, 0, []uint64{0}, 0), 0xffffffff) // sign extended

	instU := memModule(t, nil, []byte{
		OpcodeLocalGet, 0x00,
		OpcodeI32Load8u, 0x00, 0x00,
		OpcodeEnd,
	})
	instU.Memory.Buffer[0] = 0xff
	requireResult(t, Execute(instU, 0, []uint64{0}, 0), 0xff) // zero extended
}

func TestExecute_memorySizeGrow(t *testing.T) {
	// (func (param i32) (result i32) (drop (memory.grow (local.get 0))) (memory.size))
	inst := memModule(t, nil, []byte{
		OpcodeLocalGet, 0x00,
		OpcodeMemoryGrow, 0x00,
		OpcodeDrop,
		OpcodeMemorySize, 0x00,
		OpcodeEnd,
	})

	requireResult(t, Execute(inst, 0, []uint64{0}, 0), 1)
	requireResult(t, Execute(inst, 0, []uint64{2}, 0), 3)
	require.Equal(t, 3*int(PageSize), len(inst.Memory.Buffer))
}

func TestExecute_memoryGrowOverMax(t *testing.T) {
	// (func (param i32) (result i32) (memory.grow (local.get 0)))
	max := uint32(2)
	inst := memModule(t, &max, []byte{
		OpcodeLocalGet, 0x00,
		OpcodeMemoryGrow, 0x00,
		OpcodeEnd,
	})

	requireResult(t, Execute(inst, 0, []uint64{1}, 0), 1)       // grew to 2
	requireResult(t, Execute(inst, 0, []uint64{1}, 0), 0xffffffff) // -1: would exceed the max
	requireResult(t, Execute(inst, 0, []uint64{0}, 0), 2)
}

func TestExecute_dataSegmentInitializedMemory(t *testing.T) {
	// (memory 1) (data (i32.const 8) "\2a\00\00\00")
	// (func (param i32) (result i32) (i32.load (local.get 0)))
	m := &Module{
		TypeSection:     []*FunctionType{{Params: []ValueType{ValueTypeI32}, Results: []ValueType{ValueTypeI32}}},
		FunctionSection: []uint32{0},
		MemorySection:   []*MemoryType{{Min: 1}},
		DataSection: []*DataSegment{{
			OffsetExpression: &ConstantExpression{Opcode: OpcodeI32Const, Data: []byte{0x08}},
			Init:             []byte{0x2a, 0x00, 0x00, 0x00},
		}},
		CodeSection: []*CodeSegment{{Body: []byte{
			OpcodeLocalGet, 0x00,
			OpcodeI32Load, 0x02, 0x00,
			OpcodeEnd,
		}}},
	}
	inst := buildModule(t, m)

	requireResult(t, Execute(inst, 0, []uint64{8}, 0), 42)
	requireResult(t, Execute(inst, 0, []uint64{0}, 0), 0)
}

func TestInstantiate_dataSegmentOutOfBounds(t *testing.T) {
	m := &Module{
		MemorySection: []*MemoryType{{Min: 1}},
		DataSection: []*DataSegment{{
			// i32.const 65535, two byte payload
			OffsetExpression: &ConstantExpression{Opcode: OpcodeI32Const, Data: []byte{0xff, 0xff, 0x03}},
			Init:             []byte{0x01, 0x02},
		}},
	}
	require.NoError(t, m.buildCodeMetadata())
	_, err := Instantiate(m, nil, nil, nil, nil)
	require.ErrorContains(t, err, "out of bounds memory access")
}
