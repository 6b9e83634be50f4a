package wasm

import (
	"bytes"
	"fmt"

	"github.com/ewasm-benchmarking/fizzy/wasm/leb128"
)

// buildCodeMetadata walks every function body once, recording the
// boundaries of each block/loop/if and the maximum operand stack height.
// The interpreter relies on both: blocks for branch targets, the height
// for pre-reserving the frame's operand stack.
func (m *Module) buildCodeMetadata() error {
	functionDeclarations, err := m.importedFunctionTypes()
	if err != nil {
		return err
	}
	functionDeclarations = append(functionDeclarations, m.FunctionSection...)

	for codeIndex, typeIndex := range m.FunctionSection {
		if typeIndex >= uint32(len(m.TypeSection)) {
			return fmt.Errorf("function type index out of range")
		}
		sig := m.TypeSection[typeIndex]
		if err := m.CodeSection[codeIndex].analyze(m, sig, functionDeclarations); err != nil {
			return fmt.Errorf("invalid function at index %d/%d: %w",
				codeIndex, len(m.FunctionSection)-1, err)
		}
	}
	return nil
}

// analysisFrame tracks one open control structure during the walk. block is
// nil for the implicit function-level frame. Code after br/return/
// unreachable is polymorphic; its stack effects are ignored until the arm
// ends (unreachable flag).
type analysisFrame struct {
	block            *CodeBlock
	start            int
	arity            int
	unreachable      bool
	entryUnreachable bool
}

func (c *CodeSegment) analyze(m *Module, sig *FunctionType, functionDeclarations []uint32) error {
	c.Blocks = map[uint64]*CodeBlock{}

	frames := []*analysisFrame{{start: 0, arity: len(sig.Results)}}
	var cur, max int

	top := func() *analysisFrame { return frames[len(frames)-1] }
	push := func(n int) {
		if !top().unreachable {
			cur += n
			if cur > max {
				max = cur
			}
		}
	}
	pop := func(n int) error {
		if !top().unreachable {
			cur -= n
			if cur < 0 {
				return fmt.Errorf("operand stack underflow")
			}
		}
		return nil
	}

	body := c.Body
	for pc := uint64(0); pc < uint64(len(body)); pc++ {
		op := body[pc]
		switch op {
		case OpcodeUnreachable, OpcodeReturn:
			top().unreachable = true
		case OpcodeNop:
		case OpcodeBlock, OpcodeLoop:
			bt, n, err := readBlockType(body, pc+1)
			if err != nil {
				return err
			}
			block := &CodeBlock{
				StartAt:        pc,
				BlockType:      bt,
				BlockTypeBytes: n,
				IsLoop:         op == OpcodeLoop,
			}
			c.Blocks[pc] = block
			frames = append(frames, &analysisFrame{
				block:            block,
				start:            cur,
				arity:            len(bt.Results),
				unreachable:      top().unreachable,
				entryUnreachable: top().unreachable,
			})
			pc += n
		case OpcodeIf:
			if err := pop(1); err != nil {
				return err
			}
			bt, n, err := readBlockType(body, pc+1)
			if err != nil {
				return err
			}
			block := &CodeBlock{
				StartAt:        pc,
				BlockType:      bt,
				BlockTypeBytes: n,
				IsIf:           true,
			}
			c.Blocks[pc] = block
			frames = append(frames, &analysisFrame{
				block:            block,
				start:            cur,
				arity:            len(bt.Results),
				unreachable:      top().unreachable,
				entryUnreachable: top().unreachable,
			})
			pc += n
		case OpcodeElse:
			f := top()
			if f.block == nil || !f.block.IsIf {
				return fmt.Errorf("else outside if at %#x", pc)
			}
			f.block.ElseAt = pc
			cur = f.start
			f.unreachable = f.entryUnreachable
		case OpcodeEnd:
			f := top()
			frames = frames[:len(frames)-1]
			if len(frames) == 0 {
				if pc != uint64(len(body))-1 {
					return fmt.Errorf("unbalanced end at %#x", pc)
				}
				break
			}
			f.block.EndAt = pc
			cur = f.start + f.arity
			if !top().unreachable && cur > max {
				max = cur
			}
		case OpcodeBr:
			n, err := skipUint32(body, pc+1)
			if err != nil {
				return err
			}
			pc += n
			top().unreachable = true
		case OpcodeBrIf:
			n, err := skipUint32(body, pc+1)
			if err != nil {
				return err
			}
			pc += n
			if err := pop(1); err != nil {
				return err
			}
		case OpcodeBrTable:
			r := bytes.NewReader(body[pc+1:])
			nl, num, err := leb128.DecodeUint32(r)
			if err != nil {
				return fmt.Errorf("read br_table immediate: %w", err)
			}
			for i := uint32(0); i < nl+1; i++ {
				_, n, err := leb128.DecodeUint32(r)
				if err != nil {
					return fmt.Errorf("read br_table label: %w", err)
				}
				num += n
			}
			pc += num
			if err := pop(1); err != nil {
				return err
			}
			top().unreachable = true
		case OpcodeCall:
			index, n, err := leb128.DecodeUint32(bytes.NewReader(body[pc+1:]))
			if err != nil {
				return fmt.Errorf("read call immediate: %w", err)
			}
			pc += n
			if index >= uint32(len(functionDeclarations)) {
				return fmt.Errorf("invalid function index for call: %d", index)
			}
			ft := m.TypeSection[functionDeclarations[index]]
			if err := pop(len(ft.Params)); err != nil {
				return err
			}
			push(len(ft.Results))
		case OpcodeCallIndirect:
			typeIndex, n, err := leb128.DecodeUint32(bytes.NewReader(body[pc+1:]))
			if err != nil {
				return fmt.Errorf("read call_indirect immediate: %w", err)
			}
			pc += n
			pc++ // reserved table index byte
			if typeIndex >= uint32(len(m.TypeSection)) {
				return fmt.Errorf("invalid type index for call_indirect: %d", typeIndex)
			}
			if err := pop(1); err != nil {
				return err
			}
			ft := m.TypeSection[typeIndex]
			if err := pop(len(ft.Params)); err != nil {
				return err
			}
			push(len(ft.Results))
		case OpcodeDrop:
			if err := pop(1); err != nil {
				return err
			}
		case OpcodeSelect:
			if err := pop(3); err != nil {
				return err
			}
			push(1)
		case OpcodeLocalGet, OpcodeGlobalGet:
			n, err := skipUint32(body, pc+1)
			if err != nil {
				return err
			}
			pc += n
			push(1)
		case OpcodeLocalSet, OpcodeGlobalSet:
			n, err := skipUint32(body, pc+1)
			if err != nil {
				return err
			}
			pc += n
			if err := pop(1); err != nil {
				return err
			}
		case OpcodeLocalTee:
			n, err := skipUint32(body, pc+1)
			if err != nil {
				return err
			}
			pc += n
		case OpcodeMemorySize:
			pc++ // reserved byte
			push(1)
		case OpcodeMemoryGrow:
			pc++ // reserved byte
			if err := pop(1); err != nil {
				return err
			}
			push(1)
		case OpcodeI32Const:
			_, n, err := leb128.DecodeInt32(bytes.NewReader(body[pc+1:]))
			if err != nil {
				return fmt.Errorf("read i32 immediate: %w", err)
			}
			pc += n
			push(1)
		case OpcodeI64Const:
			_, n, err := leb128.DecodeInt64(bytes.NewReader(body[pc+1:]))
			if err != nil {
				return fmt.Errorf("read i64 immediate: %w", err)
			}
			pc += n
			push(1)
		case OpcodeF32Const:
			pc += 4
			push(1)
		case OpcodeF64Const:
			pc += 8
			push(1)
		default:
			switch {
			case op >= OpcodeI32Load && op <= OpcodeI64Load32u:
				n, err := skipMemoryImmediate(body, pc+1)
				if err != nil {
					return err
				}
				pc += n
				if err := pop(1); err != nil {
					return err
				}
				push(1)
			case op >= OpcodeI32Store && op <= OpcodeI64Store32:
				n, err := skipMemoryImmediate(body, pc+1)
				if err != nil {
					return err
				}
				pc += n
				if err := pop(2); err != nil {
					return err
				}
			case op == OpcodeI32Eqz || op == OpcodeI64Eqz,
				op >= OpcodeI32Clz && op <= OpcodeI32Popcnt,
				op >= OpcodeI64Clz && op <= OpcodeI64Popcnt,
				op >= OpcodeF32Abs && op <= OpcodeF32Sqrt,
				op >= OpcodeF64Abs && op <= OpcodeF64Sqrt,
				op >= OpcodeI32WrapI64 && op <= OpcodeF64ReinterpretI64:
				if err := pop(1); err != nil {
					return err
				}
				push(1)
			case op >= OpcodeI32Eq && op <= OpcodeI32Geu,
				op >= OpcodeI64Eq && op <= OpcodeI64Geu,
				op >= OpcodeF32Eq && op <= OpcodeF64Ge,
				op >= OpcodeI32Add && op <= OpcodeI32Rotr,
				op >= OpcodeI64Add && op <= OpcodeI64Rotr,
				op >= OpcodeF32Add && op <= OpcodeF32Copysign,
				op >= OpcodeF64Add && op <= OpcodeF64Copysign:
				if err := pop(2); err != nil {
					return err
				}
				push(1)
			default:
				return fmt.Errorf("unknown opcode %#x at %#x", op, pc)
			}
		}
	}

	if len(frames) != 0 {
		return fmt.Errorf("unbalanced control structures")
	}

	c.MaxStackHeight = uint32(max)
	return nil
}

// readBlockType decodes the single-byte MVP block type at the given offset:
// 0x40 for no result, or one value type.
func readBlockType(body []byte, at uint64) (*FunctionType, uint64, error) {
	if at >= uint64(len(body)) {
		return nil, 0, fmt.Errorf("block type out of bounds")
	}
	switch b := body[at]; b {
	case 0x40:
		return &FunctionType{}, 1, nil
	case byte(ValueTypeI32), byte(ValueTypeI64), byte(ValueTypeF32), byte(ValueTypeF64):
		return &FunctionType{Results: []ValueType{ValueType(b)}}, 1, nil
	default:
		return nil, 0, fmt.Errorf("%w: invalid block type %#x", ErrInvalidByte, b)
	}
}

func skipUint32(body []byte, at uint64) (uint64, error) {
	_, n, err := leb128.DecodeUint32(bytes.NewReader(body[at:]))
	if err != nil {
		return 0, fmt.Errorf("read immediate: %w", err)
	}
	return n, nil
}

func skipMemoryImmediate(body []byte, at uint64) (uint64, error) {
	r := bytes.NewReader(body[at:])
	_, n1, err := leb128.DecodeUint32(r) // alignment
	if err != nil {
		return 0, fmt.Errorf("read memory alignment: %w", err)
	}
	_, n2, err := leb128.DecodeUint32(r) // offset
	if err != nil {
		return 0, fmt.Errorf("read memory offset: %w", err)
	}
	return n1 + n2, nil
}
