package wasm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/ewasm-benchmarking/fizzy/wasm/leb128"
)

// ConstantExpression is a parsed init expression: a single constant opcode
// (or global.get) followed by its immediate, terminated by end.
type ConstantExpression struct {
	Opcode Opcode
	Data   []byte
}

func readConstantExpression(r io.Reader) (*ConstantExpression, error) {
	b := make([]byte, 1)
	_, err := io.ReadFull(r, b)
	if err != nil {
		return nil, fmt.Errorf("read opcode: %v", err)
	}
	buf := new(bytes.Buffer)
	teeR := io.TeeReader(r, buf)

	opcode := b[0]
	switch opcode {
	case OpcodeI32Const:
		_, _, err = leb128.DecodeInt32(teeR)
	case OpcodeI64Const:
		_, _, err = leb128.DecodeInt64(teeR)
	case OpcodeF32Const:
		_, err = readFloat32(teeR)
	case OpcodeF64Const:
		_, err = readFloat64(teeR)
	case OpcodeGlobalGet:
		_, _, err = leb128.DecodeUint32(teeR)
	default:
		return nil, fmt.Errorf("%w for const expression opcode: %#x", ErrInvalidByte, b[0])
	}

	if err != nil {
		return nil, fmt.Errorf("read value: %v", err)
	}

	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("look for end opcode: %v", err)
	}

	if b[0] != OpcodeEnd {
		return nil, fmt.Errorf("constant expression has not been terminated")
	}

	return &ConstantExpression{
		Opcode: opcode,
		Data:   buf.Bytes(),
	}, nil
}

// evaluate computes the value of a constant expression. global.get may only
// refer to an imported global; those occupy the head of the globals slice
// during instantiation.
func (expr *ConstantExpression) evaluate(globals []*GlobalInstance, numImported int) (v uint64, valueType ValueType, err error) {
	r := bytes.NewReader(expr.Data)
	switch expr.Opcode {
	case OpcodeI32Const:
		raw, _, err := leb128.DecodeInt32(r)
		if err != nil {
			return 0, 0, fmt.Errorf("read i32: %w", err)
		}
		return uint64(uint32(raw)), ValueTypeI32, nil
	case OpcodeI64Const:
		raw, _, err := leb128.DecodeInt64(r)
		if err != nil {
			return 0, 0, fmt.Errorf("read i64: %w", err)
		}
		return uint64(raw), ValueTypeI64, nil
	case OpcodeF32Const:
		raw, err := readFloat32(r)
		if err != nil {
			return 0, 0, fmt.Errorf("read f32: %w", err)
		}
		return uint64(math.Float32bits(raw)), ValueTypeF32, nil
	case OpcodeF64Const:
		raw, err := readFloat64(r)
		if err != nil {
			return 0, 0, fmt.Errorf("read f64: %w", err)
		}
		return math.Float64bits(raw), ValueTypeF64, nil
	case OpcodeGlobalGet:
		id, _, err := leb128.DecodeUint32(r)
		if err != nil {
			return 0, 0, fmt.Errorf("read index of global: %w", err)
		}
		if id >= uint32(numImported) || id >= uint32(len(globals)) {
			return 0, 0, fmt.Errorf("constant expression can use only imported globals")
		}
		g := globals[id]
		if g.Type.Mutable {
			return 0, 0, fmt.Errorf("constant expression can use only immutable globals")
		}
		return g.Val, g.Type.ValType, nil
	}
	return 0, 0, fmt.Errorf("invalid opcode for constant expression: %#x", expr.Opcode)
}

// IEEE 754 little endian
func readFloat32(r io.Reader) (float32, error) {
	buf := make([]byte, 4)
	_, err := io.ReadFull(r, buf)
	if err != nil {
		return 0, err
	}
	raw := binary.LittleEndian.Uint32(buf)
	return math.Float32frombits(raw), nil
}

// IEEE 754 little endian
func readFloat64(r io.Reader) (float64, error) {
	buf := make([]byte, 8)
	_, err := io.ReadFull(r, buf)
	if err != nil {
		return 0, err
	}
	raw := binary.LittleEndian.Uint64(buf)
	return math.Float64frombits(raw), nil
}
