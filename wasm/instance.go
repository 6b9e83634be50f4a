package wasm

import (
	"fmt"

	"go.uber.org/zap"
)

type (
	// Callable is the uniform thunk shape shared by host functions,
	// cross-instance exports and table entries. args is a borrowed view of
	// 64-bit words, one per parameter; it must not be retained. depth is
	// the caller's call depth and must be propagated into any re-entry of
	// Execute.
	Callable func(instance *Instance, args []uint64, depth int) ExecutionResult

	// ExternalFunction is a callable owned by the embedder or another
	// instance.
	ExternalFunction struct {
		Callable Callable
		Type     *FunctionType
	}

	// ExternalTable is a table handle with the limits it was declared
	// with, suitable for importing into another instance.
	ExternalTable struct {
		Table  *TableInstance
		Limits *LimitsType
	}

	// ExternalMemory is a memory handle with its limits in pages.
	ExternalMemory struct {
		Memory *MemoryInstance
		Limits *LimitsType
	}

	ExternalGlobal struct {
		Global *GlobalInstance
	}

	// TableInstance holds function slots for call_indirect. A nil element
	// is an uninitialized slot. A table may be owned by one instance and
	// imported by others; entries may therefore close over foreign
	// instances.
	TableInstance struct {
		Elements []*ExternalFunction
		Min      uint32
		Max      *uint32
	}

	// MemoryInstance is a linear memory. The buffer length is always a
	// multiple of PageSize.
	MemoryInstance struct {
		Buffer []byte
		Min    uint32
		Max    *uint32
	}

	GlobalInstance struct {
		Type *GlobalType
		Val  uint64
	}

	// Instance is the runtime embodiment of a module: resolved imports,
	// at most one table and one memory, and the global cells. The function
	// index space is imported functions first, then the module's own.
	Instance struct {
		Module *Module

		ImportedFunctions []*ExternalFunction
		Table             *TableInstance
		Memory            *MemoryInstance
		Globals           []*GlobalInstance

		importedGlobalCount int
	}
)

// NumFunctions returns the size of the instance's function index space.
func (inst *Instance) NumFunctions() uint32 {
	return uint32(len(inst.ImportedFunctions) + len(inst.Module.FunctionSection))
}

// FunctionType returns the type of the function at the given index of the
// instance's function index space.
func (inst *Instance) FunctionType(funcIdx uint32) (*FunctionType, bool) {
	if funcIdx < uint32(len(inst.ImportedFunctions)) {
		return inst.ImportedFunctions[funcIdx].Type, true
	}
	codeIdx := funcIdx - uint32(len(inst.ImportedFunctions))
	if codeIdx >= uint32(len(inst.Module.FunctionSection)) {
		return nil, false
	}
	return inst.Module.TypeSection[inst.Module.FunctionSection[codeIdx]], true
}

// externalFunction wraps a function of the instance's index space into the
// uniform callable form, closing over the instance. This is how table
// entries and exported functions cross instance boundaries.
func (inst *Instance) externalFunction(funcIdx uint32) *ExternalFunction {
	ft, _ := inst.FunctionType(funcIdx)
	return &ExternalFunction{
		Type: ft,
		Callable: func(_ *Instance, args []uint64, depth int) ExecutionResult {
			return Execute(inst, funcIdx, args, depth)
		},
	}
}

// Instantiate links a module against the supplied imports, allocates its
// tables and memory, applies element and data segments and runs the start
// function. Imports are matched positionally per kind, in module import
// order.
//
// On error no instance is returned, but element and data writes already
// applied to an *imported* table or memory remain visible to its owner.
// This is intentional, observable behavior.
func Instantiate(
	module *Module,
	importedFunctions []*ExternalFunction,
	importedTables []*ExternalTable,
	importedMemories []*ExternalMemory,
	importedGlobals []*ExternalGlobal,
) (*Instance, error) {
	inst := &Instance{Module: module}

	if err := inst.resolveImports(importedFunctions, importedTables, importedMemories, importedGlobals); err != nil {
		return nil, fmt.Errorf("resolve imports: %w", err)
	}

	if err := inst.allocateTable(); err != nil {
		return nil, fmt.Errorf("tables: %w", err)
	}
	if err := inst.allocateMemory(); err != nil {
		return nil, fmt.Errorf("memories: %w", err)
	}
	if err := inst.buildGlobals(); err != nil {
		return nil, fmt.Errorf("globals: %w", err)
	}

	if err := inst.applyElementSegments(); err != nil {
		return nil, fmt.Errorf("element segments: %w", err)
	}
	if err := inst.applyDataSegments(); err != nil {
		return nil, fmt.Errorf("data segments: %w", err)
	}

	if module.StartSection != nil {
		index := *module.StartSection
		ft, ok := inst.FunctionType(index)
		if !ok {
			return nil, fmt.Errorf("invalid start function index: %d", index)
		}
		if len(ft.Params) != 0 || len(ft.Results) != 0 {
			return nil, fmt.Errorf("start function must have the empty signature")
		}
		if res := Execute(inst, index, nil, 0); res.Trapped {
			return nil, fmt.Errorf("start function failed to execute")
		}
	}

	logger().Debug("module instantiated",
		zap.Int("functions", int(inst.NumFunctions())),
		zap.Int("globals", len(inst.Globals)),
		zap.Bool("memory", inst.Memory != nil),
		zap.Bool("table", inst.Table != nil))
	return inst, nil
}

func (inst *Instance) resolveImports(
	importedFunctions []*ExternalFunction,
	importedTables []*ExternalTable,
	importedMemories []*ExternalMemory,
	importedGlobals []*ExternalGlobal,
) error {
	var nf, nt, nm, ng int
	for _, is := range inst.Module.ImportSection {
		var err error
		switch is.Desc.Kind {
		case ImportKindFunction:
			if nf >= len(importedFunctions) {
				err = fmt.Errorf("missing imported function")
			} else {
				err = inst.applyFunctionImport(is, importedFunctions[nf])
				nf++
			}
		case ImportKindTable:
			if nt >= len(importedTables) {
				err = fmt.Errorf("missing imported table")
			} else {
				err = inst.applyTableImport(is, importedTables[nt])
				nt++
			}
		case ImportKindMemory:
			if nm >= len(importedMemories) {
				err = fmt.Errorf("missing imported memory")
			} else {
				err = inst.applyMemoryImport(is, importedMemories[nm])
				nm++
			}
		case ImportKindGlobal:
			if ng >= len(importedGlobals) {
				err = fmt.Errorf("missing imported global")
			} else {
				err = inst.applyGlobalImport(is, importedGlobals[ng])
				ng++
			}
		default:
			err = fmt.Errorf("invalid kind of import: %#x", is.Desc.Kind)
		}
		if err != nil {
			return fmt.Errorf("%s.%s: %w", is.Module, is.Name, err)
		}
	}

	if nf != len(importedFunctions) || nt != len(importedTables) ||
		nm != len(importedMemories) || ng != len(importedGlobals) {
		return fmt.Errorf("too many imports provided")
	}
	return nil
}

func (inst *Instance) applyFunctionImport(is *ImportSegment, f *ExternalFunction) error {
	if is.Desc.TypeIndexPtr == nil || *is.Desc.TypeIndexPtr >= uint32(len(inst.Module.TypeSection)) {
		return fmt.Errorf("unknown type for function import")
	}
	iSig := inst.Module.TypeSection[*is.Desc.TypeIndexPtr]
	if f.Type == nil || f.Callable == nil {
		return fmt.Errorf("imported function is invalid")
	}
	if !hasSameSignature(iSig.Params, f.Type.Params) {
		return fmt.Errorf("parameter signature mismatch: %s != %s", iSig, f.Type)
	} else if !hasSameSignature(iSig.Results, f.Type.Results) {
		return fmt.Errorf("result signature mismatch: %s != %s", iSig, f.Type)
	}
	inst.ImportedFunctions = append(inst.ImportedFunctions, f)
	return nil
}

func (inst *Instance) applyTableImport(is *ImportSegment, et *ExternalTable) error {
	if is.Desc.TableTypePtr == nil {
		return fmt.Errorf("table type is invalid")
	}
	if et == nil || et.Table == nil {
		return fmt.Errorf("imported table is invalid")
	}
	declared := is.Desc.TableTypePtr.Limit
	provided := et.Limits
	if provided == nil {
		provided = &LimitsType{Min: et.Table.Min, Max: et.Table.Max}
	}
	if provided.Min < declared.Min {
		return fmt.Errorf("incompatible table import: minimum size mismatch")
	}
	if declared.Max != nil {
		if provided.Max == nil || *provided.Max > *declared.Max {
			return fmt.Errorf("incompatible table import: maximum size mismatch")
		}
	}
	inst.Table = et.Table
	return nil
}

func (inst *Instance) applyMemoryImport(is *ImportSegment, em *ExternalMemory) error {
	if inst.Memory != nil {
		// The current Wasm spec doesn't allow multiple memories.
		return fmt.Errorf("multiple memories are not supported")
	} else if is.Desc.MemTypePtr == nil {
		return fmt.Errorf("memory type is invalid")
	}
	if em == nil || em.Memory == nil {
		return fmt.Errorf("imported memory is invalid")
	}
	declared := is.Desc.MemTypePtr
	provided := em.Limits
	if provided == nil {
		provided = &LimitsType{Min: em.Memory.Min, Max: em.Memory.Max}
	}
	if provided.Min < declared.Min {
		return fmt.Errorf("incompatible memory import: minimum size mismatch")
	}
	if declared.Max != nil {
		if provided.Max == nil || *provided.Max > *declared.Max {
			return fmt.Errorf("incompatible memory import: maximum size mismatch")
		}
	}
	inst.Memory = em.Memory
	return nil
}

func (inst *Instance) applyGlobalImport(is *ImportSegment, eg *ExternalGlobal) error {
	if is.Desc.GlobalTypePtr == nil {
		return fmt.Errorf("global type is invalid")
	}
	if eg == nil || eg.Global == nil {
		return fmt.Errorf("imported global is invalid")
	}
	g := eg.Global
	if is.Desc.GlobalTypePtr.Mutable != g.Type.Mutable {
		return fmt.Errorf("incompatible global import: mutability mismatch")
	} else if is.Desc.GlobalTypePtr.ValType != g.Type.ValType {
		return fmt.Errorf("incompatible global import: value type mismatch")
	}
	inst.Globals = append(inst.Globals, g)
	inst.importedGlobalCount++
	return nil
}

func (inst *Instance) allocateTable() error {
	for _, tableSeg := range inst.Module.TableSection {
		if inst.Table != nil {
			return fmt.Errorf("multiple tables not supported")
		}
		inst.Table = &TableInstance{
			Elements: make([]*ExternalFunction, tableSeg.Limit.Min),
			Min:      tableSeg.Limit.Min,
			Max:      tableSeg.Limit.Max,
		}
	}
	return nil
}

func (inst *Instance) allocateMemory() error {
	for _, memSec := range inst.Module.MemorySection {
		if inst.Memory != nil {
			return fmt.Errorf("multiple memories not supported")
		}
		inst.Memory = &MemoryInstance{
			Buffer: make([]byte, uint64(memSec.Min)*PageSize),
			Min:    memSec.Min,
			Max:    memSec.Max,
		}
	}
	return nil
}

func (inst *Instance) buildGlobals() error {
	for _, gs := range inst.Module.GlobalSection {
		v, t, err := gs.Init.evaluate(inst.Globals, inst.importedGlobalCount)
		if err != nil {
			return fmt.Errorf("execution failed: %w", err)
		}
		if gs.Type.ValType != t {
			return fmt.Errorf("global type mismatch")
		}
		inst.Globals = append(inst.Globals, &GlobalInstance{
			Type: gs.Type,
			Val:  v,
		})
	}
	return nil
}

// applyElementSegments copies each segment's function entries into the
// table, in module order. Each segment is bounds checked before it is
// written, but writes of earlier segments are not undone when a later one
// fails: for an imported table they stay visible to its owner.
func (inst *Instance) applyElementSegments() error {
	for _, elem := range inst.Module.ElementSection {
		if elem.TableIndex != 0 || inst.Table == nil {
			return fmt.Errorf("unknown table index: %d", elem.TableIndex)
		}

		offset, offsetType, err := elem.OffsetExpr.evaluate(inst.Globals, inst.importedGlobalCount)
		if err != nil {
			return fmt.Errorf("calculate offset: %w", err)
		} else if offsetType != ValueTypeI32 {
			return fmt.Errorf("offset is not i32")
		}

		start := uint64(uint32(offset))
		if start+uint64(len(elem.Init)) > uint64(len(inst.Table.Elements)) {
			return fmt.Errorf("out of bounds table access")
		}

		for i, funcIdx := range elem.Init {
			if funcIdx >= inst.NumFunctions() {
				return fmt.Errorf("unknown function specified by element")
			}
			inst.Table.Elements[start+uint64(i)] = inst.externalFunction(funcIdx)
		}
	}
	return nil
}

// applyDataSegments copies each segment into memory, with the same
// per-segment bounds checking and no rollback as applyElementSegments.
func (inst *Instance) applyDataSegments() error {
	for _, d := range inst.Module.DataSection {
		if inst.Memory == nil {
			return fmt.Errorf("unknown memory")
		}

		offset, offsetType, err := d.OffsetExpression.evaluate(inst.Globals, inst.importedGlobalCount)
		if err != nil {
			return fmt.Errorf("calculate offset: %w", err)
		} else if offsetType != ValueTypeI32 {
			return fmt.Errorf("offset is not i32")
		}

		start := uint64(uint32(offset))
		if start+uint64(len(d.Init)) > uint64(len(inst.Memory.Buffer)) {
			return fmt.Errorf("out of bounds memory access")
		}
		copy(inst.Memory.Buffer[start:], d.Init)
	}
	return nil
}

// FindExportedFunction returns the index of the function exported under
// the given name, in the module's function index space.
func FindExportedFunction(module *Module, name string) (uint32, bool) {
	exp, ok := module.ExportSection[name]
	if !ok || exp.Desc.Kind != ExportKindFunction {
		return 0, false
	}
	return exp.Desc.Index, true
}

// FindExportedTable returns a handle to the table exported under the given
// name, suitable for importing into another instance.
func FindExportedTable(inst *Instance, name string) (*ExternalTable, bool) {
	exp, ok := inst.Module.ExportSection[name]
	if !ok || exp.Desc.Kind != ExportKindTable || inst.Table == nil {
		return nil, false
	}
	return &ExternalTable{
		Table:  inst.Table,
		Limits: &LimitsType{Min: inst.Table.Min, Max: inst.Table.Max},
	}, true
}

// FindExportedMemory returns a handle to the memory exported under the
// given name.
func FindExportedMemory(inst *Instance, name string) (*ExternalMemory, bool) {
	exp, ok := inst.Module.ExportSection[name]
	if !ok || exp.Desc.Kind != ExportKindMemory || inst.Memory == nil {
		return nil, false
	}
	return &ExternalMemory{
		Memory: inst.Memory,
		Limits: &LimitsType{Min: inst.Memory.Min, Max: inst.Memory.Max},
	}, true
}

// FindExportedGlobal returns a handle to the global exported under the
// given name.
func FindExportedGlobal(inst *Instance, name string) (*ExternalGlobal, bool) {
	exp, ok := inst.Module.ExportSection[name]
	if !ok || exp.Desc.Kind != ExportKindGlobal {
		return nil, false
	}
	if exp.Desc.Index >= uint32(len(inst.Globals)) {
		return nil, false
	}
	return &ExternalGlobal{Global: inst.Globals[exp.Desc.Index]}, true
}

// ExportedFunction wraps the function exported under the given name into
// the uniform callable form, closing over this instance. Embedders use
// this to satisfy another module's function imports.
func (inst *Instance) ExportedFunction(name string) (*ExternalFunction, bool) {
	idx, ok := FindExportedFunction(inst.Module, name)
	if !ok {
		return nil, false
	}
	return inst.externalFunction(idx), true
}

// ImportedFunction describes a host function for ResolveImportedFunctions:
// the import name pair, the signature, and the thunk.
type ImportedFunction struct {
	Module, Name string
	Params       []ValueType
	Results      []ValueType
	Callable     Callable
}

// ResolveImportedFunctions matches host descriptors to the module's
// function imports by name pair and type, returning them ordered as the
// module declares its imports. Every function import must be resolved.
func ResolveImportedFunctions(module *Module, imported []ImportedFunction) ([]*ExternalFunction, error) {
	var ret []*ExternalFunction
	for _, is := range module.ImportSection {
		if is.Desc.Kind != ImportKindFunction {
			continue
		}
		if is.Desc.TypeIndexPtr == nil || *is.Desc.TypeIndexPtr >= uint32(len(module.TypeSection)) {
			return nil, fmt.Errorf("unknown type for function import %s.%s", is.Module, is.Name)
		}
		sig := module.TypeSection[*is.Desc.TypeIndexPtr]

		found := false
		for _, d := range imported {
			if d.Module != is.Module || d.Name != is.Name {
				continue
			}
			if !hasSameSignature(sig.Params, d.Params) || !hasSameSignature(sig.Results, d.Results) {
				continue
			}
			ret = append(ret, &ExternalFunction{
				Callable: d.Callable,
				Type:     &FunctionType{Params: d.Params, Results: d.Results},
			})
			found = true
			break
		}
		if !found {
			return nil, fmt.Errorf("imported function %s.%s is required", is.Module, is.Name)
		}
	}
	return ret, nil
}
