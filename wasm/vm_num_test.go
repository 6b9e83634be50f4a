package wasm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildvm() *virtualMachine {
	return &virtualMachine{operands: newOperandStack(16)}
}

func Test_i32eqz(t *testing.T) {
	vm := buildvm()
	vm.operands.push(0)
	i32eqz(vm)
	assert.Equal(t, uint64(1), vm.operands.pop())
	vm.operands.push(3)
	i32eqz(vm)
	assert.Equal(t, uint64(0), vm.operands.pop())
}

func Test_i32lts(t *testing.T) {
	vm := buildvm()
	vm.operands.push(uint64(uint32(math.MaxUint32))) // -1 as i32
	vm.operands.push(1)
	i32lts(vm)
	assert.Equal(t, uint64(1), vm.operands.pop())
}

func Test_i32ltu(t *testing.T) {
	vm := buildvm()
	vm.operands.push(uint64(uint32(math.MaxUint32)))
	vm.operands.push(1)
	i32ltu(vm)
	assert.Equal(t, uint64(0), vm.operands.pop())
}

func Test_i32add(t *testing.T) {
	vm := buildvm()
	vm.operands.push(uint64(uint32(math.MaxUint32)))
	vm.operands.push(2)
	i32add(vm)
	assert.Equal(t, uint64(1), vm.operands.pop())
}

func Test_i32sub(t *testing.T) {
	vm := buildvm()
	vm.operands.push(13)
	vm.operands.push(17)
	i32sub(vm)
	assert.Equal(t, uint64(0xfffffffc), vm.operands.pop()) // 13-17 wrapped
}

func Test_i32divs(t *testing.T) {
	vm := buildvm()
	vm.operands.push(uint64(uint32(math.MaxUint32))) // -1
	vm.operands.push(2)
	i32divs(vm)
	assert.False(t, vm.trapped)
	assert.Equal(t, uint64(0), vm.operands.pop())
}

func Test_i32divs_byZero(t *testing.T) {
	vm := buildvm()
	vm.operands.push(1)
	vm.operands.push(0)
	i32divs(vm)
	assert.True(t, vm.trapped)
}

func Test_i32divs_overflow(t *testing.T) {
	vm := buildvm()
	vm.operands.push(uint64(uint32(0x80000000)))
	vm.operands.push(uint64(uint32(math.MaxUint32))) // -1
	i32divs(vm)
	assert.True(t, vm.trapped)
}

func Test_i32divu_byZero(t *testing.T) {
	vm := buildvm()
	vm.operands.push(1)
	vm.operands.push(0)
	i32divu(vm)
	assert.True(t, vm.trapped)
}

func Test_i32rems(t *testing.T) {
	vm := buildvm()
	vm.operands.push(uint64(uint32(-7&0xffffffff)))
	vm.operands.push(3)
	i32rems(vm)
	assert.Equal(t, uint64(uint32(-1&0xffffffff)), vm.operands.pop())
}

func Test_i32rems_overflowPair(t *testing.T) {
	vm := buildvm()
	vm.operands.push(uint64(uint32(0x80000000)))
	vm.operands.push(uint64(uint32(math.MaxUint32))) // -1
	i32rems(vm)
	assert.False(t, vm.trapped)
	assert.Equal(t, uint64(0), vm.operands.pop())
}

func Test_i32rems_byZero(t *testing.T) {
	vm := buildvm()
	vm.operands.push(7)
	vm.operands.push(0)
	i32rems(vm)
	assert.True(t, vm.trapped)
}

func Test_i32shl(t *testing.T) {
	vm := buildvm()
	vm.operands.push(1)
	vm.operands.push(34) // mod 32 == 2
	i32shl(vm)
	assert.Equal(t, uint64(4), vm.operands.pop())
}

func Test_i32shrs(t *testing.T) {
	vm := buildvm()
	vm.operands.push(uint64(uint32(0x80000000)))
	vm.operands.push(31)
	i32shrs(vm)
	assert.Equal(t, uint64(uint32(math.MaxUint32)), vm.operands.pop())
}

func Test_i32rotl(t *testing.T) {
	vm := buildvm()
	vm.operands.push(uint64(uint32(0x80000000)))
	vm.operands.push(1)
	i32rotl(vm)
	assert.Equal(t, uint64(1), vm.operands.pop())
}

func Test_i32clz(t *testing.T) {
	vm := buildvm()
	vm.operands.push(1)
	i32clz(vm)
	assert.Equal(t, uint64(31), vm.operands.pop())
}

func Test_i64divs_overflow(t *testing.T) {
	vm := buildvm()
	vm.operands.push(0x8000000000000000) // math.MinInt64
	vm.operands.push(0xFFFFFFFFFFFFFFFF) // -1
	i64divs(vm)
	assert.True(t, vm.trapped)
}

func Test_i64divu(t *testing.T) {
	vm := buildvm()
	vm.operands.push(10)
	vm.operands.push(3)
	i64divu(vm)
	assert.Equal(t, uint64(3), vm.operands.pop())
}

func Test_f32add(t *testing.T) {
	vm := buildvm()
	vm.operands.push(uint64(math.Float32bits(1.5)))
	vm.operands.push(uint64(math.Float32bits(2.25)))
	f32add(vm)
	assert.Equal(t, float32(3.75), math.Float32frombits(uint32(vm.operands.pop())))
}

func Test_f32neg(t *testing.T) {
	vm := buildvm()
	vm.operands.push(uint64(math.Float32bits(1.5)))
	f32neg(vm)
	assert.Equal(t, float32(-1.5), math.Float32frombits(uint32(vm.operands.pop())))
}

func Test_f64min_nan(t *testing.T) {
	vm := buildvm()
	vm.operands.push(math.Float64bits(math.NaN()))
	vm.operands.push(math.Float64bits(1))
	f64min(vm)
	assert.True(t, math.IsNaN(math.Float64frombits(vm.operands.pop())))
}

func Test_f64copysign(t *testing.T) {
	vm := buildvm()
	vm.operands.push(math.Float64bits(1.5))
	vm.operands.push(math.Float64bits(-2))
	f64copysign(vm)
	assert.Equal(t, -1.5, math.Float64frombits(vm.operands.pop()))
}

func Test_f64nearest(t *testing.T) {
	vm := buildvm()
	vm.operands.push(math.Float64bits(2.5))
	f64nearest(vm)
	assert.Equal(t, 2.0, math.Float64frombits(vm.operands.pop()))

	vm.operands.push(math.Float64bits(3.5))
	f64nearest(vm)
	assert.Equal(t, 4.0, math.Float64frombits(vm.operands.pop()))
}

func Test_i32truncf32s(t *testing.T) {
	vm := buildvm()
	vm.operands.push(uint64(math.Float32bits(-1.75)))
	i32truncf32s(vm)
	assert.False(t, vm.trapped)
	assert.Equal(t, uint64(uint32(-1&0xffffffff)), vm.operands.pop())
}

func Test_i32truncf32s_nan(t *testing.T) {
	vm := buildvm()
	vm.operands.push(uint64(math.Float32bits(float32(math.NaN()))))
	i32truncf32s(vm)
	assert.True(t, vm.trapped)
}

func Test_i32truncf64s_outOfRange(t *testing.T) {
	vm := buildvm()
	vm.operands.push(math.Float64bits(math.MaxInt32 + 1.0))
	i32truncf64s(vm)
	assert.True(t, vm.trapped)
}

func Test_i32truncf64u_negative(t *testing.T) {
	vm := buildvm()
	vm.operands.push(math.Float64bits(-1))
	i32truncf64u(vm)
	assert.True(t, vm.trapped)
}

func Test_i64truncf64s_limit(t *testing.T) {
	vm := buildvm()
	vm.operands.push(math.Float64bits(9223372036854775808.0)) // 2^63
	i64truncf64s(vm)
	assert.True(t, vm.trapped)
}

func Test_i64extendi32s(t *testing.T) {
	vm := buildvm()
	vm.operands.push(uint64(uint32(math.MaxUint32))) // -1 as i32
	i64extendi32s(vm)
	assert.Equal(t, uint64(math.MaxUint64), vm.operands.pop())
}

func Test_i64extendi32u(t *testing.T) {
	vm := buildvm()
	vm.operands.push(uint64(uint32(math.MaxUint32)))
	i64extendi32u(vm)
	assert.Equal(t, uint64(math.MaxUint32), vm.operands.pop())
}

func Test_i32wrapi64(t *testing.T) {
	vm := buildvm()
	vm.operands.push(1 << 33)
	i32wrapi64(vm)
	assert.Equal(t, uint64(0), vm.operands.pop())
}

func Test_f64converti64u(t *testing.T) {
	vm := buildvm()
	vm.operands.push(math.MaxUint64)
	f64converti64u(vm)
	assert.Equal(t, float64(math.MaxUint64), math.Float64frombits(vm.operands.pop()))
}
