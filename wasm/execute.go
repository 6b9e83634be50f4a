package wasm

// CallStackLimit bounds the call depth for direct calls, indirect calls
// and host re-entries alike. Execution at exactly the limit succeeds; one
// level deeper traps.
const CallStackLimit = 2048

// ExecutionResult is the outcome of one function invocation. Trapped
// implies no value; otherwise HasValue mirrors the function's result
// arity.
type ExecutionResult struct {
	Trapped  bool
	HasValue bool
	Value    uint64
}

var trapped = ExecutionResult{Trapped: true}

// Execute invokes the function at funcIdx of the instance's function index
// space (imports first, then the module's own functions) with the given
// arguments. args must have one element per parameter; element types are
// the caller's responsibility. depth is 0 at embedder entry; nested calls
// and host re-entries pass it on incremented.
//
// A trap from any depth unwinds here and is reported as {Trapped: true};
// memory and table writes committed before the trap remain visible.
func Execute(instance *Instance, funcIdx uint32, args []uint64, depth int) ExecutionResult {
	if depth > CallStackLimit {
		return trapped
	}

	if funcIdx < uint32(len(instance.ImportedFunctions)) {
		f := instance.ImportedFunctions[funcIdx]
		return f.Callable(instance, args, depth+1)
	}

	codeIdx := funcIdx - uint32(len(instance.ImportedFunctions))
	if codeIdx >= uint32(len(instance.Module.CodeSection)) {
		return trapped
	}
	code := instance.Module.CodeSection[codeIdx]
	sig := instance.Module.TypeSection[instance.Module.FunctionSection[codeIdx]]

	// The locals array holds the parameters followed by the declared
	// locals, which start out as the typed zero (all zero bits for every
	// value type).
	locals := make([]uint64, len(sig.Params)+int(code.NumLocals))
	copy(locals, args)

	vm := &virtualMachine{
		instance: instance,
		body:     code.Body,
		blocks:   code.Blocks,
		locals:   locals,
		operands: newOperandStack(int(code.MaxStackHeight)),
		labels:   newLabelStack(),
		depth:    depth,
	}

	vm.run()
	if vm.trapped {
		return trapped
	}

	if len(sig.Results) == 1 {
		return ExecutionResult{HasValue: true, Value: vm.operands.pop()}
	}
	return ExecutionResult{}
}
