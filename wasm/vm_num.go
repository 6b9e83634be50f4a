package wasm

import (
	"math"
	"math/bits"
)

func i32eqz(vm *virtualMachine) {
	vm.operands.pushBool(uint32(vm.operands.pop()) == 0)
	vm.pc++
}

func i32eq(vm *virtualMachine) {
	v2 := uint32(vm.operands.pop())
	v1 := uint32(vm.operands.pop())
	vm.operands.pushBool(v1 == v2)
	vm.pc++
}

func i32ne(vm *virtualMachine) {
	v2 := uint32(vm.operands.pop())
	v1 := uint32(vm.operands.pop())
	vm.operands.pushBool(v1 != v2)
	vm.pc++
}

func i32lts(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.pushBool(int32(v1) < int32(v2))
	vm.pc++
}

func i32ltu(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.pushBool(uint32(v1) < uint32(v2))
	vm.pc++
}

func i32gts(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.pushBool(int32(v1) > int32(v2))
	vm.pc++
}

func i32gtu(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.pushBool(uint32(v1) > uint32(v2))
	vm.pc++
}

func i32les(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.pushBool(int32(v1) <= int32(v2))
	vm.pc++
}

func i32leu(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.pushBool(uint32(v1) <= uint32(v2))
	vm.pc++
}

func i32ges(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.pushBool(int32(v1) >= int32(v2))
	vm.pc++
}

func i32geu(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.pushBool(uint32(v1) >= uint32(v2))
	vm.pc++
}

func i64eqz(vm *virtualMachine) {
	vm.operands.pushBool(vm.operands.pop() == 0)
	vm.pc++
}

func i64eq(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.pushBool(v1 == v2)
	vm.pc++
}

func i64ne(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.pushBool(v1 != v2)
	vm.pc++
}

func i64lts(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.pushBool(int64(v1) < int64(v2))
	vm.pc++
}

func i64ltu(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.pushBool(v1 < v2)
	vm.pc++
}

func i64gts(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.pushBool(int64(v1) > int64(v2))
	vm.pc++
}

func i64gtu(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.pushBool(v1 > v2)
	vm.pc++
}

func i64les(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.pushBool(int64(v1) <= int64(v2))
	vm.pc++
}

func i64leu(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.pushBool(v1 <= v2)
	vm.pc++
}

func i64ges(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.pushBool(int64(v1) >= int64(v2))
	vm.pc++
}

func i64geu(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.pushBool(v1 >= v2)
	vm.pc++
}

func f32eq(vm *virtualMachine) {
	v2 := math.Float32frombits(uint32(vm.operands.pop()))
	v1 := math.Float32frombits(uint32(vm.operands.pop()))
	vm.operands.pushBool(v1 == v2)
	vm.pc++
}

func f32ne(vm *virtualMachine) {
	v2 := math.Float32frombits(uint32(vm.operands.pop()))
	v1 := math.Float32frombits(uint32(vm.operands.pop()))
	vm.operands.pushBool(v1 != v2)
	vm.pc++
}

func f32lt(vm *virtualMachine) {
	v2 := math.Float32frombits(uint32(vm.operands.pop()))
	v1 := math.Float32frombits(uint32(vm.operands.pop()))
	vm.operands.pushBool(v1 < v2)
	vm.pc++
}

func f32gt(vm *virtualMachine) {
	v2 := math.Float32frombits(uint32(vm.operands.pop()))
	v1 := math.Float32frombits(uint32(vm.operands.pop()))
	vm.operands.pushBool(v1 > v2)
	vm.pc++
}

func f32le(vm *virtualMachine) {
	v2 := math.Float32frombits(uint32(vm.operands.pop()))
	v1 := math.Float32frombits(uint32(vm.operands.pop()))
	vm.operands.pushBool(v1 <= v2)
	vm.pc++
}

func f32ge(vm *virtualMachine) {
	v2 := math.Float32frombits(uint32(vm.operands.pop()))
	v1 := math.Float32frombits(uint32(vm.operands.pop()))
	vm.operands.pushBool(v1 >= v2)
	vm.pc++
}

func f64eq(vm *virtualMachine) {
	v2 := math.Float64frombits(vm.operands.pop())
	v1 := math.Float64frombits(vm.operands.pop())
	vm.operands.pushBool(v1 == v2)
	vm.pc++
}

func f64ne(vm *virtualMachine) {
	v2 := math.Float64frombits(vm.operands.pop())
	v1 := math.Float64frombits(vm.operands.pop())
	vm.operands.pushBool(v1 != v2)
	vm.pc++
}

func f64lt(vm *virtualMachine) {
	v2 := math.Float64frombits(vm.operands.pop())
	v1 := math.Float64frombits(vm.operands.pop())
	vm.operands.pushBool(v1 < v2)
	vm.pc++
}

func f64gt(vm *virtualMachine) {
	v2 := math.Float64frombits(vm.operands.pop())
	v1 := math.Float64frombits(vm.operands.pop())
	vm.operands.pushBool(v1 > v2)
	vm.pc++
}

func f64le(vm *virtualMachine) {
	v2 := math.Float64frombits(vm.operands.pop())
	v1 := math.Float64frombits(vm.operands.pop())
	vm.operands.pushBool(v1 <= v2)
	vm.pc++
}

func f64ge(vm *virtualMachine) {
	v2 := math.Float64frombits(vm.operands.pop())
	v1 := math.Float64frombits(vm.operands.pop())
	vm.operands.pushBool(v1 >= v2)
	vm.pc++
}

func i32clz(vm *virtualMachine) {
	vm.operands.push(uint64(bits.LeadingZeros32(uint32(vm.operands.pop()))))
	vm.pc++
}

func i32ctz(vm *virtualMachine) {
	vm.operands.push(uint64(bits.TrailingZeros32(uint32(vm.operands.pop()))))
	vm.pc++
}

func i32popcnt(vm *virtualMachine) {
	vm.operands.push(uint64(bits.OnesCount32(uint32(vm.operands.pop()))))
	vm.pc++
}

func i32add(vm *virtualMachine) {
	v2 := uint32(vm.operands.pop())
	v1 := uint32(vm.operands.pop())
	vm.operands.push(uint64(v1 + v2))
	vm.pc++
}

func i32sub(vm *virtualMachine) {
	v2 := uint32(vm.operands.pop())
	v1 := uint32(vm.operands.pop())
	vm.operands.push(uint64(v1 - v2))
	vm.pc++
}

func i32mul(vm *virtualMachine) {
	v2 := uint32(vm.operands.pop())
	v1 := uint32(vm.operands.pop())
	vm.operands.push(uint64(v1 * v2))
	vm.pc++
}

func i32divs(vm *virtualMachine) {
	v2 := int32(vm.operands.pop())
	v1 := int32(vm.operands.pop())
	if v2 == 0 || (v1 == math.MinInt32 && v2 == -1) {
		vm.trap()
		return
	}
	vm.operands.push(uint64(uint32(v1 / v2)))
	vm.pc++
}

func i32divu(vm *virtualMachine) {
	v2 := uint32(vm.operands.pop())
	v1 := uint32(vm.operands.pop())
	if v2 == 0 {
		vm.trap()
		return
	}
	vm.operands.push(uint64(v1 / v2))
	vm.pc++
}

func i32rems(vm *virtualMachine) {
	v2 := int32(vm.operands.pop())
	v1 := int32(vm.operands.pop())
	if v2 == 0 {
		vm.trap()
		return
	}
	if v1 == math.MinInt32 && v2 == -1 {
		// the only overflowing pair; the remainder is 0
		vm.operands.push(0)
	} else {
		vm.operands.push(uint64(uint32(v1 % v2)))
	}
	vm.pc++
}

func i32remu(vm *virtualMachine) {
	v2 := uint32(vm.operands.pop())
	v1 := uint32(vm.operands.pop())
	if v2 == 0 {
		vm.trap()
		return
	}
	vm.operands.push(uint64(v1 % v2))
	vm.pc++
}

func i32and(vm *virtualMachine) {
	v2 := uint32(vm.operands.pop())
	v1 := uint32(vm.operands.pop())
	vm.operands.push(uint64(v1 & v2))
	vm.pc++
}

func i32or(vm *virtualMachine) {
	v2 := uint32(vm.operands.pop())
	v1 := uint32(vm.operands.pop())
	vm.operands.push(uint64(v1 | v2))
	vm.pc++
}

func i32xor(vm *virtualMachine) {
	v2 := uint32(vm.operands.pop())
	v1 := uint32(vm.operands.pop())
	vm.operands.push(uint64(v1 ^ v2))
	vm.pc++
}

func i32shl(vm *virtualMachine) {
	v2 := uint32(vm.operands.pop())
	v1 := uint32(vm.operands.pop())
	vm.operands.push(uint64(v1 << (v2 % 32)))
	vm.pc++
}

func i32shrs(vm *virtualMachine) {
	v2 := uint32(vm.operands.pop())
	v1 := int32(vm.operands.pop())
	vm.operands.push(uint64(uint32(v1 >> (v2 % 32))))
	vm.pc++
}

func i32shru(vm *virtualMachine) {
	v2 := uint32(vm.operands.pop())
	v1 := uint32(vm.operands.pop())
	vm.operands.push(uint64(v1 >> (v2 % 32)))
	vm.pc++
}

func i32rotl(vm *virtualMachine) {
	v2 := int(vm.operands.pop())
	v1 := uint32(vm.operands.pop())
	vm.operands.push(uint64(bits.RotateLeft32(v1, v2)))
	vm.pc++
}

func i32rotr(vm *virtualMachine) {
	v2 := int(vm.operands.pop())
	v1 := uint32(vm.operands.pop())
	vm.operands.push(uint64(bits.RotateLeft32(v1, -v2)))
	vm.pc++
}

func i64clz(vm *virtualMachine) {
	vm.operands.push(uint64(bits.LeadingZeros64(vm.operands.pop())))
	vm.pc++
}

func i64ctz(vm *virtualMachine) {
	vm.operands.push(uint64(bits.TrailingZeros64(vm.operands.pop())))
	vm.pc++
}

func i64popcnt(vm *virtualMachine) {
	vm.operands.push(uint64(bits.OnesCount64(vm.operands.pop())))
	vm.pc++
}

func i64add(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.push(v1 + v2)
	vm.pc++
}

func i64sub(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.push(v1 - v2)
	vm.pc++
}

func i64mul(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.push(v1 * v2)
	vm.pc++
}

func i64divs(vm *virtualMachine) {
	v2 := int64(vm.operands.pop())
	v1 := int64(vm.operands.pop())
	if v2 == 0 || (v1 == math.MinInt64 && v2 == -1) {
		vm.trap()
		return
	}
	vm.operands.push(uint64(v1 / v2))
	vm.pc++
}

func i64divu(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	if v2 == 0 {
		vm.trap()
		return
	}
	vm.operands.push(v1 / v2)
	vm.pc++
}

func i64rems(vm *virtualMachine) {
	v2 := int64(vm.operands.pop())
	v1 := int64(vm.operands.pop())
	if v2 == 0 {
		vm.trap()
		return
	}
	if v1 == math.MinInt64 && v2 == -1 {
		vm.operands.push(0)
	} else {
		vm.operands.push(uint64(v1 % v2))
	}
	vm.pc++
}

func i64remu(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	if v2 == 0 {
		vm.trap()
		return
	}
	vm.operands.push(v1 % v2)
	vm.pc++
}

func i64and(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.push(v1 & v2)
	vm.pc++
}

func i64or(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.push(v1 | v2)
	vm.pc++
}

func i64xor(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.push(v1 ^ v2)
	vm.pc++
}

func i64shl(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.push(v1 << (v2 % 64))
	vm.pc++
}

func i64shrs(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := int64(vm.operands.pop())
	vm.operands.push(uint64(v1 >> (v2 % 64)))
	vm.pc++
}

func i64shru(vm *virtualMachine) {
	v2 := vm.operands.pop()
	v1 := vm.operands.pop()
	vm.operands.push(v1 >> (v2 % 64))
	vm.pc++
}

func i64rotl(vm *virtualMachine) {
	v2 := int(vm.operands.pop())
	v1 := vm.operands.pop()
	vm.operands.push(bits.RotateLeft64(v1, v2))
	vm.pc++
}

func i64rotr(vm *virtualMachine) {
	v2 := int(vm.operands.pop())
	v1 := vm.operands.pop()
	vm.operands.push(bits.RotateLeft64(v1, -v2))
	vm.pc++
}

func f32abs(vm *virtualMachine) {
	const mask uint32 = 1 << 31
	v := uint32(vm.operands.pop()) &^ mask
	vm.operands.push(uint64(v))
	vm.pc++
}

func f32neg(vm *virtualMachine) {
	const mask uint32 = 1 << 31
	v := uint32(vm.operands.pop()) ^ mask
	vm.operands.push(uint64(v))
	vm.pc++
}

func f32ceil(vm *virtualMachine) {
	v := math.Float32frombits(uint32(vm.operands.pop()))
	vm.operands.push(uint64(math.Float32bits(float32(math.Ceil(float64(v))))))
	vm.pc++
}

func f32floor(vm *virtualMachine) {
	v := math.Float32frombits(uint32(vm.operands.pop()))
	vm.operands.push(uint64(math.Float32bits(float32(math.Floor(float64(v))))))
	vm.pc++
}

func f32trunc(vm *virtualMachine) {
	v := math.Float32frombits(uint32(vm.operands.pop()))
	vm.operands.push(uint64(math.Float32bits(float32(math.Trunc(float64(v))))))
	vm.pc++
}

func f32nearest(vm *virtualMachine) {
	v := math.Float32frombits(uint32(vm.operands.pop()))
	vm.operands.push(uint64(math.Float32bits(float32(math.RoundToEven(float64(v))))))
	vm.pc++
}

func f32sqrt(vm *virtualMachine) {
	v := math.Float32frombits(uint32(vm.operands.pop()))
	vm.operands.push(uint64(math.Float32bits(float32(math.Sqrt(float64(v))))))
	vm.pc++
}

func f32add(vm *virtualMachine) {
	v2 := math.Float32frombits(uint32(vm.operands.pop()))
	v1 := math.Float32frombits(uint32(vm.operands.pop()))
	vm.operands.push(uint64(math.Float32bits(v1 + v2)))
	vm.pc++
}

func f32sub(vm *virtualMachine) {
	v2 := math.Float32frombits(uint32(vm.operands.pop()))
	v1 := math.Float32frombits(uint32(vm.operands.pop()))
	vm.operands.push(uint64(math.Float32bits(v1 - v2)))
	vm.pc++
}

func f32mul(vm *virtualMachine) {
	v2 := math.Float32frombits(uint32(vm.operands.pop()))
	v1 := math.Float32frombits(uint32(vm.operands.pop()))
	vm.operands.push(uint64(math.Float32bits(v1 * v2)))
	vm.pc++
}

func f32div(vm *virtualMachine) {
	v2 := math.Float32frombits(uint32(vm.operands.pop()))
	v1 := math.Float32frombits(uint32(vm.operands.pop()))
	vm.operands.push(uint64(math.Float32bits(v1 / v2)))
	vm.pc++
}

func f32min(vm *virtualMachine) {
	v2 := math.Float32frombits(uint32(vm.operands.pop()))
	v1 := math.Float32frombits(uint32(vm.operands.pop()))
	vm.operands.push(uint64(math.Float32bits(float32(math.Min(float64(v1), float64(v2))))))
	vm.pc++
}

func f32max(vm *virtualMachine) {
	v2 := math.Float32frombits(uint32(vm.operands.pop()))
	v1 := math.Float32frombits(uint32(vm.operands.pop()))
	vm.operands.push(uint64(math.Float32bits(float32(math.Max(float64(v1), float64(v2))))))
	vm.pc++
}

func f32copysign(vm *virtualMachine) {
	v2 := math.Float32frombits(uint32(vm.operands.pop()))
	v1 := math.Float32frombits(uint32(vm.operands.pop()))
	vm.operands.push(uint64(math.Float32bits(float32(math.Copysign(float64(v1), float64(v2))))))
	vm.pc++
}

func f64abs(vm *virtualMachine) {
	const mask uint64 = 1 << 63
	vm.operands.push(vm.operands.pop() &^ mask)
	vm.pc++
}

func f64neg(vm *virtualMachine) {
	const mask uint64 = 1 << 63
	vm.operands.push(vm.operands.pop() ^ mask)
	vm.pc++
}

func f64ceil(vm *virtualMachine) {
	v := math.Float64frombits(vm.operands.pop())
	vm.operands.push(math.Float64bits(math.Ceil(v)))
	vm.pc++
}

func f64floor(vm *virtualMachine) {
	v := math.Float64frombits(vm.operands.pop())
	vm.operands.push(math.Float64bits(math.Floor(v)))
	vm.pc++
}

func f64trunc(vm *virtualMachine) {
	v := math.Float64frombits(vm.operands.pop())
	vm.operands.push(math.Float64bits(math.Trunc(v)))
	vm.pc++
}

func f64nearest(vm *virtualMachine) {
	v := math.Float64frombits(vm.operands.pop())
	vm.operands.push(math.Float64bits(math.RoundToEven(v)))
	vm.pc++
}

func f64sqrt(vm *virtualMachine) {
	v := math.Float64frombits(vm.operands.pop())
	vm.operands.push(math.Float64bits(math.Sqrt(v)))
	vm.pc++
}

func f64add(vm *virtualMachine) {
	v2 := math.Float64frombits(vm.operands.pop())
	v1 := math.Float64frombits(vm.operands.pop())
	vm.operands.push(math.Float64bits(v1 + v2))
	vm.pc++
}

func f64sub(vm *virtualMachine) {
	v2 := math.Float64frombits(vm.operands.pop())
	v1 := math.Float64frombits(vm.operands.pop())
	vm.operands.push(math.Float64bits(v1 - v2))
	vm.pc++
}

func f64mul(vm *virtualMachine) {
	v2 := math.Float64frombits(vm.operands.pop())
	v1 := math.Float64frombits(vm.operands.pop())
	vm.operands.push(math.Float64bits(v1 * v2))
	vm.pc++
}

func f64div(vm *virtualMachine) {
	v2 := math.Float64frombits(vm.operands.pop())
	v1 := math.Float64frombits(vm.operands.pop())
	vm.operands.push(math.Float64bits(v1 / v2))
	vm.pc++
}

func f64min(vm *virtualMachine) {
	v2 := math.Float64frombits(vm.operands.pop())
	v1 := math.Float64frombits(vm.operands.pop())
	vm.operands.push(math.Float64bits(math.Min(v1, v2)))
	vm.pc++
}

func f64max(vm *virtualMachine) {
	v2 := math.Float64frombits(vm.operands.pop())
	v1 := math.Float64frombits(vm.operands.pop())
	vm.operands.push(math.Float64bits(math.Max(v1, v2)))
	vm.pc++
}

func f64copysign(vm *virtualMachine) {
	v2 := math.Float64frombits(vm.operands.pop())
	v1 := math.Float64frombits(vm.operands.pop())
	vm.operands.push(math.Float64bits(math.Copysign(v1, v2)))
	vm.pc++
}

func i32wrapi64(vm *virtualMachine) {
	vm.operands.push(uint64(uint32(vm.operands.pop())))
	vm.pc++
}

func i32truncf32s(vm *virtualMachine) {
	v := math.Trunc(float64(math.Float32frombits(uint32(vm.operands.pop()))))
	if math.IsNaN(v) || v < math.MinInt32 || v > math.MaxInt32 {
		vm.trap()
		return
	}
	vm.operands.push(uint64(uint32(int32(v))))
	vm.pc++
}

func i32truncf32u(vm *virtualMachine) {
	v := math.Trunc(float64(math.Float32frombits(uint32(vm.operands.pop()))))
	if math.IsNaN(v) || v < 0 || v > math.MaxUint32 {
		vm.trap()
		return
	}
	vm.operands.push(uint64(uint32(v)))
	vm.pc++
}

func i32truncf64s(vm *virtualMachine) {
	v := math.Trunc(math.Float64frombits(vm.operands.pop()))
	if math.IsNaN(v) || v < math.MinInt32 || v > math.MaxInt32 {
		vm.trap()
		return
	}
	vm.operands.push(uint64(uint32(int32(v))))
	vm.pc++
}

func i32truncf64u(vm *virtualMachine) {
	v := math.Trunc(math.Float64frombits(vm.operands.pop()))
	if math.IsNaN(v) || v < 0 || v > math.MaxUint32 {
		vm.trap()
		return
	}
	vm.operands.push(uint64(uint32(v)))
	vm.pc++
}

func i64extendi32s(vm *virtualMachine) {
	vm.operands.push(uint64(int64(int32(vm.operands.pop()))))
	vm.pc++
}

func i64extendi32u(vm *virtualMachine) {
	vm.operands.push(uint64(uint32(vm.operands.pop())))
	vm.pc++
}

func i64truncf32s(vm *virtualMachine) {
	v := math.Trunc(float64(math.Float32frombits(uint32(vm.operands.pop()))))
	if math.IsNaN(v) || v < math.MinInt64 || v >= math.MaxInt64 {
		vm.trap()
		return
	}
	vm.operands.push(uint64(int64(v)))
	vm.pc++
}

func i64truncf32u(vm *virtualMachine) {
	v := math.Trunc(float64(math.Float32frombits(uint32(vm.operands.pop()))))
	if math.IsNaN(v) || v < 0 || v >= math.MaxUint64 {
		vm.trap()
		return
	}
	vm.operands.push(uint64(v))
	vm.pc++
}

func i64truncf64s(vm *virtualMachine) {
	v := math.Trunc(math.Float64frombits(vm.operands.pop()))
	if math.IsNaN(v) || v < math.MinInt64 || v >= math.MaxInt64 {
		vm.trap()
		return
	}
	vm.operands.push(uint64(int64(v)))
	vm.pc++
}

func i64truncf64u(vm *virtualMachine) {
	v := math.Trunc(math.Float64frombits(vm.operands.pop()))
	if math.IsNaN(v) || v < 0 || v >= math.MaxUint64 {
		vm.trap()
		return
	}
	vm.operands.push(uint64(v))
	vm.pc++
}

func f32converti32s(vm *virtualMachine) {
	vm.operands.push(uint64(math.Float32bits(float32(int32(vm.operands.pop())))))
	vm.pc++
}

func f32converti32u(vm *virtualMachine) {
	vm.operands.push(uint64(math.Float32bits(float32(uint32(vm.operands.pop())))))
	vm.pc++
}

func f32converti64s(vm *virtualMachine) {
	vm.operands.push(uint64(math.Float32bits(float32(int64(vm.operands.pop())))))
	vm.pc++
}

func f32converti64u(vm *virtualMachine) {
	vm.operands.push(uint64(math.Float32bits(float32(vm.operands.pop()))))
	vm.pc++
}

func f32demotef64(vm *virtualMachine) {
	v := math.Float64frombits(vm.operands.pop())
	vm.operands.push(uint64(math.Float32bits(float32(v))))
	vm.pc++
}

func f64converti32s(vm *virtualMachine) {
	vm.operands.push(math.Float64bits(float64(int32(vm.operands.pop()))))
	vm.pc++
}

func f64converti32u(vm *virtualMachine) {
	vm.operands.push(math.Float64bits(float64(uint32(vm.operands.pop()))))
	vm.pc++
}

func f64converti64s(vm *virtualMachine) {
	vm.operands.push(math.Float64bits(float64(int64(vm.operands.pop()))))
	vm.pc++
}

func f64converti64u(vm *virtualMachine) {
	vm.operands.push(math.Float64bits(float64(vm.operands.pop())))
	vm.pc++
}

func f64promotef32(vm *virtualMachine) {
	v := math.Float32frombits(uint32(vm.operands.pop()))
	vm.operands.push(math.Float64bits(float64(v)))
	vm.pc++
}
