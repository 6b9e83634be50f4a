package wasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireInstance(t *testing.T, hexBinary string) *Instance {
	t.Helper()
	inst, err := Instantiate(requireModule(t, hexBinary), nil, nil, nil, nil)
	require.NoError(t, err)
	return inst
}

func requireResult(t *testing.T, res ExecutionResult, expected uint64) {
	t.Helper()
	require.False(t, res.Trapped)
	require.True(t, res.HasValue)
	require.Equal(t, expected, res.Value)
}

func TestExecute_call(t *testing.T) {
	/* wat2wasm
	(func (result i32) (i32.const 0x2a002a))
	(func (result i32) (call 0))
	*/
	inst := requireInstance(t, "0061736d010000000105016000017f03030200000a0e02070041aa80a8010b040010000b")

	requireResult(t, Execute(inst, 1, nil, 0), 0x2a002a)
}

func TestExecute_callTrap(t *testing.T) {
	/* wat2wasm
	(func (result i32) (unreachable))
	(func (result i32) (call 0))
	*/
	inst := requireInstance(t, "0061736d010000000105016000017f03030200000a0a020300000b040010000b")

	res := Execute(inst, 1, nil, 0)
	assert.True(t, res.Trapped)
	assert.False(t, res.HasValue)

	// Traps are idempotent: the instance stays usable.
	res = Execute(inst, 1, nil, 0)
	assert.True(t, res.Trapped)
}

func TestExecute_callWithArguments(t *testing.T) {
	/* wat2wasm
	(module
	  (func $calc (param $a i32) (param $b i32) (result i32)
	    local.get 1
	    local.get 0
	    i32.sub ;; a - b
	  )
	  (func (result i32)
	    i32.const 13
	    i32.const 17
	    call $calc ;; 17 - 13 => 4
	  )
	)
	*/
	inst := requireInstance(t, "0061736d01000000010b0260027f7f017f6000017f03030200010a12020700200120006b0b0800410d411110000b")

	requireResult(t, Execute(inst, 1, nil, 0), 4)
}

func TestExecute_callIndirect(t *testing.T) {
	/* wat2wasm
	  (type $out-i32 (func (result i32)))
	  (table anyfunc (elem $f3 $f2 $f1 $f4 $f5))
	  (func $f1 (result i32) i32.const 1)
	  (func $f2 (result i32) i32.const 2)
	  (func $f3 (result i32) i32.const 3)
	  (func $f4 (result i64) i64.const 4)
	  (func $f5 (result i32) unreachable)
	  (func (param i32) (result i32)
	    (call_indirect (type $out-i32) (get_local 0)))
	*/
	inst := requireInstance(t, "0061736d01000000010e036000017f6000017e60017f017f03070600000001000204050170010505090b010041000b0502010003040a2106040041010b040041020b040041030b040042040b0300000b070020001100000b")

	for param, expected := range map[uint64]uint64{0: 3, 1: 2, 2: 1} {
		requireResult(t, Execute(inst, 5, []uint64{param}, 0), expected)
	}

	// entry has the wrong type (f4 returns i64)
	assert.True(t, Execute(inst, 5, []uint64{3}, 0).Trapped)
	// called function traps
	assert.True(t, Execute(inst, 5, []uint64{4}, 0).Trapped)
	// table index out of bounds
	assert.True(t, Execute(inst, 5, []uint64{5}, 0).Trapped)
}

func TestExecute_callIndirectWithArgument(t *testing.T) {
	/* wat2wasm
	(module
	  (type $bin_func (func (param i32 i32) (result i32)))
	  (table anyfunc (elem $f1 $f2 $f3))
	  (func $f1 (param i32 i32) (result i32) (i32.div_u (get_local 0) (get_local 1)))
	  (func $f2 (param i32 i32) (result i32) (i32.sub (get_local 0) (get_local 1)))
	  (func $f3 (param i32) (result i32) (i32.mul (get_local 0) (get_local 0)))
	  (func (param i32) (result i32)
	    i32.const 31
	    i32.const 7
	    (call_indirect (type $bin_func) (get_local 0))))
	*/
	inst := requireInstance(t, "0061736d01000000010c0260027f7f017f60017f017f03050400000101040501700103030909010041000b030001020a25040700200020016e0b0700200020016b0b0700200020006c0b0b00411f410720001100000b")

	requireResult(t, Execute(inst, 3, []uint64{0}, 0), 31/7)
	requireResult(t, Execute(inst, 3, []uint64{1}, 0), 31-7)
	// wrong type
	assert.True(t, Execute(inst, 3, []uint64{2}, 0).Trapped)
}

func TestExecute_callIndirectUninitedTable(t *testing.T) {
	/* wat2wasm
	  (type $out-i32 (func (result i32)))
	  (table 5 anyfunc)
	  (elem (i32.const 0) $f3 $f2 $f1)
	  (func $f1 (result i32) i32.const 1)
	  (func $f2 (result i32) i32.const 2)
	  (func $f3 (result i32) i32.const 3)
	  (func (param i32) (result i32)
	    (call_indirect (type $out-i32) (get_local 0)))
	*/
	inst := requireInstance(t, "0061736d01000000010a026000017f60017f017f030504000000010404017000050909010041000b030201000a1804040041010b040041020b040041030b070020001100000b")

	// elements 3 and 4 were never initialized
	assert.True(t, Execute(inst, 3, []uint64{3}, 0).Trapped)
	assert.True(t, Execute(inst, 3, []uint64{4}, 0).Trapped)
	requireResult(t, Execute(inst, 3, []uint64{0}, 0), 3)
}

func TestExecute_importedFunctionCall(t *testing.T) {
	/* wat2wasm
	(import "mod" "foo" (func (result i32)))
	(func (result i32)
	  call 0)
	*/
	m := requireModule(t, "0061736d010000000105016000017f020b01036d6f6403666f6f0000030201000a0601040010000b")

	hostFoo := &ExternalFunction{
		Type: m.TypeSection[0],
		Callable: func(*Instance, []uint64, int) ExecutionResult {
			return ExecutionResult{HasValue: true, Value: 42}
		},
	}
	inst, err := Instantiate(m, []*ExternalFunction{hostFoo}, nil, nil, nil)
	require.NoError(t, err)

	requireResult(t, Execute(inst, 1, nil, 0), 42)
}

func TestExecute_importedFunctionCallWithArguments(t *testing.T) {
	/* wat2wasm
	(import "mod" "foo" (func (param i32) (result i32)))
	(func (param i32) (result i32)
	  get_local 0
	  call 0
	  i32.const 2
	  i32.add)
	*/
	m := requireModule(t, "0061736d0100000001060160017f017f020b01036d6f6403666f6f0000030201000a0b0109002000100041026a0b")

	hostFoo := &ExternalFunction{
		Type: m.TypeSection[0],
		Callable: func(_ *Instance, args []uint64, _ int) ExecutionResult {
			return ExecutionResult{HasValue: true, Value: args[0] * 2}
		},
	}
	inst, err := Instantiate(m, []*ExternalFunction{hostFoo}, nil, nil, nil)
	require.NoError(t, err)

	requireResult(t, Execute(inst, 1, []uint64{20}, 0), 42)
}

func TestExecute_importedFunctionsCallIndirect(t *testing.T) {
	/* wat2wasm
	(module
	  (type $ft (func (param i32) (result i64)))
	  (func $sqr    (import "env" "sqr") (param i32) (result i64))
	  (func $isqrt  (import "env" "isqrt") (param i32) (result i64))
	  (func $double (param i32) (result i64)
	    get_local 0
	    i64.extend_u/i32
	    get_local 0
	    i64.extend_u/i32
	    i64.add)
	  (func $main (param i32) (param i32) (result i64)
	    get_local 1
	    get_local 0
	    call_indirect (type $ft))
	  (table anyfunc (elem $double $sqr $isqrt))
	)
	*/
	m := requireModule(t, "0061736d01000000010c0260017f017e60027f7f017e02170203656e7603737172000003656e760569737172740000030302000104050170010303090901004100"+"0b030200010a150209002000ad2000ad7c0b0900200120001100000b")

	require.Len(t, m.TypeSection, 2)
	require.Len(t, m.ImportSection, 2)
	require.Len(t, m.CodeSection, 2)

	sqr := &ExternalFunction{
		Type: m.TypeSection[0],
		Callable: func(_ *Instance, args []uint64, _ int) ExecutionResult {
			return ExecutionResult{HasValue: true, Value: args[0] * args[0]}
		},
	}
	isqrt := &ExternalFunction{
		Type: m.TypeSection[0],
		Callable: func(_ *Instance, args []uint64, _ int) ExecutionResult {
			return ExecutionResult{HasValue: true, Value: (11 + args[0]/11) / 2}
		},
	}

	inst, err := Instantiate(m, []*ExternalFunction{sqr, isqrt}, nil, nil, nil)
	require.NoError(t, err)

	requireResult(t, Execute(inst, 3, []uint64{0, 10}, 0), 20) // double(10)
	requireResult(t, Execute(inst, 3, []uint64{1, 9}, 0), 81)  // sqr(9)
	requireResult(t, Execute(inst, 3, []uint64{2, 50}, 0), 7)  // isqrt(50)
}

func TestExecute_infiniteRecursion(t *testing.T) {
	/* wat2wasm
	(module (func call 0))
	*/
	inst := requireInstance(t, "0061736d01000000010401600000030201000a0601040010000b")

	res := Execute(inst, 0, nil, 0)
	assert.True(t, res.Trapped)
}

func TestExecute_callIndirectInfiniteRecursion(t *testing.T) {
	/* wat2wasm
	  (type $out-i32 (func (result i32)))
	  (table anyfunc (elem $foo))
	  (func $foo (result i32)
	    (call_indirect (type $out-i32) (i32.const 0)))
	*/
	inst := requireInstance(t, "0061736d010000000105016000017f03020100040501700101010907010041000b01000a0901070041001100000b")

	assert.True(t, Execute(inst, 0, nil, 0).Trapped)
}

func TestExecute_callMaxDepth(t *testing.T) {
	/* wat2wasm
	(func (result i32) (i32.const 42))
	(func (result i32) (call 0))
	*/
	inst := requireInstance(t, "0061736d010000000105016000017f03030200000a0b020400412a0b040010000b")

	// A leaf at exactly the limit still runs; one nested call deeper
	// traps.
	requireResult(t, Execute(inst, 0, nil, CallStackLimit), 42)
	assert.True(t, Execute(inst, 1, nil, CallStackLimit).Trapped)
}

func TestExecute_callNonemptyStack(t *testing.T) {
	// A call must consume exactly the argument operands even when the
	// caller has more values on its stack.
	/* wat2wasm
	(func (param i32) (result i32)
	  local.get 0)
	(func (result i32)
	  i32.const 1
	  i32.const 2
	  call 0
	  i32.add)
	*/
	inst := requireInstance(t, "0061736d01000000010a0260017f017f6000017f03030200010a1002040020000b09004101410210006a0b")

	requireResult(t, Execute(inst, 1, nil, 0), 3)
}

func TestExecute_callImportedInfiniteRecursion(t *testing.T) {
	/* wat2wasm
	(import "mod" "foo" (func (result i32)))
	(func (result i32)
	  call 0)
	*/
	m := requireModule(t, "0061736d010000000105016000017f020b01036d6f6403666f6f0000030201000a0601040010000b")

	hostFoo := &ExternalFunction{
		Type: m.TypeSection[0],
		Callable: func(i *Instance, _ []uint64, depth int) ExecutionResult {
			return Execute(i, 0, nil, depth+1)
		},
	}
	inst, err := Instantiate(m, []*ExternalFunction{hostFoo}, nil, nil, nil)
	require.NoError(t, err)

	assert.True(t, Execute(inst, 0, nil, 0).Trapped)
}

func TestExecute_dropCallResult(t *testing.T) {
	/* wat2wasm
	  (func $const-i32 (result i32) (i32.const 0x132))
	  (func (export "drop_call_result")
	    call $const-i32
	    drop)
	*/
	m := requireModule(t, "0061736d010000000108026000017f60000003030200010714011064726f705f63616c6c5f726573756c7400010a0d02050041b2020b050010001a0b")

	funcIdx, ok := FindExportedFunction(m, "drop_call_result")
	require.True(t, ok)

	inst, err := Instantiate(m, nil, nil, nil, nil)
	require.NoError(t, err)

	res := Execute(inst, funcIdx, nil, 0)
	require.False(t, res.Trapped)
	assert.False(t, res.HasValue)
}

func TestExecute_invalidFunctionIndex(t *testing.T) {
	inst := requireInstance(t, "0061736d010000000105016000017f03030200000a0e02070041aa80a8010b040010000b")
	assert.True(t, Execute(inst, 99, nil, 0).Trapped)
}
