package wasm

import (
	"bytes"
	"encoding/binary"
	"math"

	"go.uber.org/zap"

	"github.com/ewasm-benchmarking/fizzy/wasm/leb128"
)

// virtualMachine is the state of one function activation: instruction
// pointer, frame-local operand stack, locals and label stack. It is heap
// allocated per call so native stack use stays constant per level.
type virtualMachine struct {
	instance *Instance
	body     []byte
	blocks   map[uint64]*CodeBlock

	pc       uint64
	locals   []uint64
	operands *operandStack
	labels   *labelStack
	depth    int

	trapped bool
	done    bool
}

func (vm *virtualMachine) run() {
	for !vm.done && !vm.trapped {
		if isDebugMode {
			logger().Debug("exec",
				zap.Uint64("pc", vm.pc),
				zap.Uint8("op", vm.body[vm.pc]),
				zap.Int("operand_sp", vm.operands.sp),
				zap.Int("label_sp", vm.labels.sp),
				zap.Int("depth", vm.depth))
		}
		instructions[vm.body[vm.pc]](vm)
	}
}

// trap aborts the activation; the dispatcher surfaces it unchanged.
func (vm *virtualMachine) trap() {
	vm.trapped = true
}

func (vm *virtualMachine) fetchUint32() uint32 {
	ret, num, err := leb128.DecodeUint32(bytes.NewReader(vm.body[vm.pc:]))
	if err != nil {
		vm.trap()
		return 0
	}
	vm.pc += num - 1
	return ret
}

func (vm *virtualMachine) fetchInt32() int32 {
	ret, num, err := leb128.DecodeInt32(bytes.NewReader(vm.body[vm.pc:]))
	if err != nil {
		vm.trap()
		return 0
	}
	vm.pc += num - 1
	return ret
}

func (vm *virtualMachine) fetchInt64() int64 {
	ret, num, err := leb128.DecodeInt64(bytes.NewReader(vm.body[vm.pc:]))
	if err != nil {
		vm.trap()
		return 0
	}
	vm.pc += num - 1
	return ret
}

func (vm *virtualMachine) fetchFloat32() float32 {
	v := math.Float32frombits(binary.LittleEndian.Uint32(vm.body[vm.pc:]))
	vm.pc += 3
	return v
}

func (vm *virtualMachine) fetchFloat64() float64 {
	v := math.Float64frombits(binary.LittleEndian.Uint64(vm.body[vm.pc:]))
	vm.pc += 7
	return v
}

var instructions [256]func(vm *virtualMachine)

func init() {
	instructions = [256]func(vm *virtualMachine){
		OpcodeUnreachable:  func(vm *virtualMachine) { vm.trap() },
		OpcodeNop:          func(vm *virtualMachine) { vm.pc++ },
		OpcodeBlock:        block,
		OpcodeLoop:         loop,
		OpcodeIf:           ifOp,
		OpcodeElse:         elseOp,
		OpcodeEnd:          end,
		OpcodeBr:           br,
		OpcodeBrIf:         brIf,
		OpcodeBrTable:      brTable,
		OpcodeReturn:       returnOp,
		OpcodeCall:         call,
		OpcodeCallIndirect: callIndirect,
		OpcodeDrop:         drop,
		OpcodeSelect:       selectOp,

		OpcodeLocalGet:  getLocal,
		OpcodeLocalSet:  setLocal,
		OpcodeLocalTee:  teeLocal,
		OpcodeGlobalGet: getGlobal,
		OpcodeGlobalSet: setGlobal,

		OpcodeI32Load:    i32Load,
		OpcodeI64Load:    i64Load,
		OpcodeF32Load:    f32Load,
		OpcodeF64Load:    f64Load,
		OpcodeI32Load8s:  i32Load8s,
		OpcodeI32Load8u:  i32Load8u,
		OpcodeI32Load16s: i32Load16s,
		OpcodeI32Load16u: i32Load16u,
		OpcodeI64Load8s:  i64Load8s,
		OpcodeI64Load8u:  i64Load8u,
		OpcodeI64Load16s: i64Load16s,
		OpcodeI64Load16u: i64Load16u,
		OpcodeI64Load32s: i64Load32s,
		OpcodeI64Load32u: i64Load32u,
		OpcodeI32Store:   i32Store,
		OpcodeI64Store:   i64Store,
		OpcodeF32Store:   f32Store,
		OpcodeF64Store:   f64Store,
		OpcodeI32Store8:  i32Store8,
		OpcodeI32Store16: i32Store16,
		OpcodeI64Store8:  i64Store8,
		OpcodeI64Store16: i64Store16,
		OpcodeI64Store32: i64Store32,
		OpcodeMemorySize: memorySize,
		OpcodeMemoryGrow: memoryGrow,

		OpcodeI32Const: i32Const,
		OpcodeI64Const: i64Const,
		OpcodeF32Const: f32Const,
		OpcodeF64Const: f64Const,

		OpcodeI32Eqz: i32eqz,
		OpcodeI32Eq:  i32eq,
		OpcodeI32Ne:  i32ne,
		OpcodeI32Lts: i32lts,
		OpcodeI32Ltu: i32ltu,
		OpcodeI32Gts: i32gts,
		OpcodeI32Gtu: i32gtu,
		OpcodeI32Les: i32les,
		OpcodeI32Leu: i32leu,
		OpcodeI32Ges: i32ges,
		OpcodeI32Geu: i32geu,
		OpcodeI64Eqz: i64eqz,
		OpcodeI64Eq:  i64eq,
		OpcodeI64Ne:  i64ne,
		OpcodeI64Lts: i64lts,
		OpcodeI64Ltu: i64ltu,
		OpcodeI64Gts: i64gts,
		OpcodeI64Gtu: i64gtu,
		OpcodeI64Les: i64les,
		OpcodeI64Leu: i64leu,
		OpcodeI64Ges: i64ges,
		OpcodeI64Geu: i64geu,
		OpcodeF32Eq:  f32eq,
		OpcodeF32Ne:  f32ne,
		OpcodeF32Lt:  f32lt,
		OpcodeF32Gt:  f32gt,
		OpcodeF32Le:  f32le,
		OpcodeF32Ge:  f32ge,
		OpcodeF64Eq:  f64eq,
		OpcodeF64Ne:  f64ne,
		OpcodeF64Lt:  f64lt,
		OpcodeF64Gt:  f64gt,
		OpcodeF64Le:  f64le,
		OpcodeF64Ge:  f64ge,

		OpcodeI32Clz:    i32clz,
		OpcodeI32Ctz:    i32ctz,
		OpcodeI32Popcnt: i32popcnt,
		OpcodeI32Add:    i32add,
		OpcodeI32Sub:    i32sub,
		OpcodeI32Mul:    i32mul,
		OpcodeI32Divs:   i32divs,
		OpcodeI32Divu:   i32divu,
		OpcodeI32Rems:   i32rems,
		OpcodeI32Remu:   i32remu,
		OpcodeI32And:    i32and,
		OpcodeI32Or:     i32or,
		OpcodeI32Xor:    i32xor,
		OpcodeI32Shl:    i32shl,
		OpcodeI32Shrs:   i32shrs,
		OpcodeI32Shru:   i32shru,
		OpcodeI32Rotl:   i32rotl,
		OpcodeI32Rotr:   i32rotr,
		OpcodeI64Clz:    i64clz,
		OpcodeI64Ctz:    i64ctz,
		OpcodeI64Popcnt: i64popcnt,
		OpcodeI64Add:    i64add,
		OpcodeI64Sub:    i64sub,
		OpcodeI64Mul:    i64mul,
		OpcodeI64Divs:   i64divs,
		OpcodeI64Divu:   i64divu,
		OpcodeI64Rems:   i64rems,
		OpcodeI64Remu:   i64remu,
		OpcodeI64And:    i64and,
		OpcodeI64Or:     i64or,
		OpcodeI64Xor:    i64xor,
		OpcodeI64Shl:    i64shl,
		OpcodeI64Shrs:   i64shrs,
		OpcodeI64Shru:   i64shru,
		OpcodeI64Rotl:   i64rotl,
		OpcodeI64Rotr:   i64rotr,

		OpcodeF32Abs:      f32abs,
		OpcodeF32Neg:      f32neg,
		OpcodeF32Ceil:     f32ceil,
		OpcodeF32Floor:    f32floor,
		OpcodeF32Trunc:    f32trunc,
		OpcodeF32Nearest:  f32nearest,
		OpcodeF32Sqrt:     f32sqrt,
		OpcodeF32Add:      f32add,
		OpcodeF32Sub:      f32sub,
		OpcodeF32Mul:      f32mul,
		OpcodeF32Div:      f32div,
		OpcodeF32Min:      f32min,
		OpcodeF32Max:      f32max,
		OpcodeF32Copysign: f32copysign,
		OpcodeF64Abs:      f64abs,
		OpcodeF64Neg:      f64neg,
		OpcodeF64Ceil:     f64ceil,
		OpcodeF64Floor:    f64floor,
		OpcodeF64Trunc:    f64trunc,
		OpcodeF64Nearest:  f64nearest,
		OpcodeF64Sqrt:     f64sqrt,
		OpcodeF64Add:      f64add,
		OpcodeF64Sub:      f64sub,
		OpcodeF64Mul:      f64mul,
		OpcodeF64Div:      f64div,
		OpcodeF64Min:      f64min,
		OpcodeF64Max:      f64max,
		OpcodeF64Copysign: f64copysign,

		OpcodeI32WrapI64:   i32wrapi64,
		OpcodeI32TruncF32s: i32truncf32s,
		OpcodeI32TruncF32u: i32truncf32u,
		OpcodeI32TruncF64s: i32truncf64s,
		OpcodeI32TruncF64u: i32truncf64u,

		OpcodeI64ExtendI32s: i64extendi32s,
		OpcodeI64ExtendI32u: i64extendi32u,
		OpcodeI64TruncF32s:  i64truncf32s,
		OpcodeI64TruncF32u:  i64truncf32u,
		OpcodeI64TruncF64s:  i64truncf64s,
		OpcodeI64TruncF64u:  i64truncf64u,

		OpcodeF32ConvertI32s: f32converti32s,
		OpcodeF32ConvertI32u: f32converti32u,
		OpcodeF32ConvertI64s: f32converti64s,
		OpcodeF32ConvertI64u: f32converti64u,
		OpcodeF32DemoteF64:   f32demotef64,
		OpcodeF64ConvertI32s: f64converti32s,
		OpcodeF64ConvertI32u: f64converti32u,
		OpcodeF64ConvertI64s: f64converti64s,
		OpcodeF64ConvertI64u: f64converti64u,
		OpcodeF64PromoteF32:  f64promotef32,

		OpcodeI32ReinterpretF32: func(vm *virtualMachine) { vm.pc++ },
		OpcodeI64ReinterpretF64: func(vm *virtualMachine) { vm.pc++ },
		OpcodeF32ReinterpretI32: func(vm *virtualMachine) { vm.pc++ },
		OpcodeF64ReinterpretI64: func(vm *virtualMachine) { vm.pc++ },
	}
}
