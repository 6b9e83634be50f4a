package wasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxStackHeight_consts(t *testing.T) {
	/* wat2wasm
	(func (result i32) (i32.const 0x2a002a))
	(func (result i32) (call 0))
	*/
	m := requireModule(t, "0061736d010000000105016000017f03030200000a0e02070041aa80a8010b040010000b")
	assert.Equal(t, uint32(1), m.CodeSection[0].MaxStackHeight)
	assert.Equal(t, uint32(1), m.CodeSection[1].MaxStackHeight)
}

func TestMaxStackHeight_callArguments(t *testing.T) {
	/* wat2wasm
	(module
	  (func $calc (param $a i32) (param $b i32) (result i32)
	    local.get 1
	    local.get 0
	    i32.sub)
	  (func (result i32)
	    i32.const 13
	    i32.const 17
	    call $calc))
	*/
	m := requireModule(t, "0061736d01000000010b0260027f7f017f6000017f03030200010a12020700200120006b0b0800410d411110000b")
	assert.Equal(t, uint32(2), m.CodeSection[0].MaxStackHeight)
	assert.Equal(t, uint32(2), m.CodeSection[1].MaxStackHeight)
}

func TestMaxStackHeight_dropCallResult(t *testing.T) {
	// The result of the call must be accounted for even though it is
	// immediately dropped.
	/* wat2wasm
	  (func $const-i32 (result i32) (i32.const 0x132))
	  (func (export "drop_call_result")
	    call $const-i32
	    drop)
	*/
	m := requireModule(t, "0061736d010000000108026000017f60000003030200010714011064726f705f63616c6c5f726573756c7400010a0d02050041b2020b050010001a0b")
	require.Len(t, m.CodeSection, 2)
	assert.Equal(t, uint32(1), m.CodeSection[0].MaxStackHeight)
	assert.Equal(t, uint32(1), m.CodeSection[1].MaxStackHeight)
}

func TestCodeBlocks_ifElse(t *testing.T) {
	// (func (param i32) (result i32)
	//   (if (result i32) (local.get 0)
	//     (then (i32.const 1)) (else (i32.const 2))))
	m := &Module{
		TypeSection:     []*FunctionType{{Params: []ValueType{ValueTypeI32}, Results: []ValueType{ValueTypeI32}}},
		FunctionSection: []uint32{0},
		CodeSection: []*CodeSegment{{Body: []byte{
			OpcodeLocalGet, 0x00,
			OpcodeIf, 0x7f,
			OpcodeI32Const, 0x01,
			OpcodeElse,
			OpcodeI32Const, 0x02,
			OpcodeEnd,
			OpcodeEnd,
		}}},
	}
	require.NoError(t, m.buildCodeMetadata())

	c := m.CodeSection[0]
	assert.Equal(t, uint32(1), c.MaxStackHeight)
	require.Contains(t, c.Blocks, uint64(2))
	b := c.Blocks[2]
	assert.True(t, b.IsIf)
	assert.Equal(t, uint64(2), b.StartAt)
	assert.Equal(t, uint64(6), b.ElseAt)
	assert.Equal(t, uint64(9), b.EndAt)
	assert.Equal(t, []ValueType{ValueTypeI32}, b.BlockType.Results)
}

func TestCodeBlocks_loop(t *testing.T) {
	// (func (block (loop (br 0))))
	m := &Module{
		TypeSection:     []*FunctionType{{}},
		FunctionSection: []uint32{0},
		CodeSection: []*CodeSegment{{Body: []byte{
			OpcodeBlock, 0x40,
			OpcodeLoop, 0x40,
			OpcodeBr, 0x00,
			OpcodeEnd,
			OpcodeEnd,
			OpcodeEnd,
		}}},
	}
	require.NoError(t, m.buildCodeMetadata())

	c := m.CodeSection[0]
	require.Contains(t, c.Blocks, uint64(0))
	require.Contains(t, c.Blocks, uint64(2))
	assert.False(t, c.Blocks[0].IsLoop)
	assert.True(t, c.Blocks[2].IsLoop)
	assert.Equal(t, uint64(7), c.Blocks[0].EndAt)
	assert.Equal(t, uint64(6), c.Blocks[2].EndAt)
}

func TestMaxStackHeight_unreachableArm(t *testing.T) {
	// Operands "pushed" after br are polymorphic and must not inflate the
	// height.
	m := &Module{
		TypeSection:     []*FunctionType{{Results: []ValueType{ValueTypeI32}}},
		FunctionSection: []uint32{0},
		CodeSection: []*CodeSegment{{Body: []byte{
			OpcodeBlock, 0x7f,
			OpcodeI32Const, 0x07,
			OpcodeBr, 0x00,
			OpcodeI32Const, 0x01,
			OpcodeI32Const, 0x02,
			OpcodeI32Const, 0x03,
			OpcodeI32Add,
			OpcodeI32Add,
			OpcodeEnd,
			OpcodeEnd,
		}}},
	}
	require.NoError(t, m.buildCodeMetadata())
	assert.Equal(t, uint32(1), m.CodeSection[0].MaxStackHeight)
}

func TestBuildCodeMetadata_unknownOpcode(t *testing.T) {
	m := &Module{
		TypeSection:     []*FunctionType{{}},
		FunctionSection: []uint32{0},
		CodeSection:     []*CodeSegment{{Body: []byte{0xc0, OpcodeEnd}}},
	}
	assert.Error(t, m.buildCodeMetadata())
}
