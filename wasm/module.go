package wasm

import (
	"bytes"
	"fmt"
	"io"
)

var (
	magic   = []byte{0x00, 0x61, 0x73, 0x6d}
	version = []byte{0x01, 0x00, 0x00, 0x00}
)

type (
	// Module is the static, immutable representation of a decoded binary.
	Module struct {
		TypeSection     []*FunctionType
		ImportSection   []*ImportSegment
		FunctionSection []uint32
		TableSection    []*TableType
		MemorySection   []*MemoryType
		GlobalSection   []*GlobalSegment
		ExportSection   map[string]*ExportSegment
		StartSection    *uint32
		ElementSection  []*ElementSegment
		CodeSection     []*CodeSegment
		DataSection     []*DataSegment
		CustomSections  map[string][]byte
	}
)

// DecodeModule decodes a binary in the WebAssembly 1.0 (MVP) format and
// preprocesses each function body for execution: block boundaries and the
// maximum operand stack height are computed here, once.
func DecodeModule(binary []byte) (*Module, error) {
	r := bytes.NewReader(binary)

	// Magic number.
	buf := make([]byte, 4)
	if n, err := io.ReadFull(r, buf); err != nil || n != 4 || !bytes.Equal(buf, magic) {
		return nil, ErrInvalidMagicNumber
	}

	// Version.
	if n, err := io.ReadFull(r, buf); err != nil || n != 4 || !bytes.Equal(buf, version) {
		return nil, ErrInvalidVersion
	}

	ret := &Module{CustomSections: map[string][]byte{}}
	if err := ret.readSections(r); err != nil {
		return nil, fmt.Errorf("readSections failed: %w", err)
	}

	if len(ret.FunctionSection) != len(ret.CodeSection) {
		return nil, fmt.Errorf("function and code section have inconsistent lengths")
	}

	if ret.StartSection != nil {
		index := *ret.StartSection
		ft, err := ret.importedFunctionTypes()
		if err != nil {
			return nil, err
		}
		numFuncs := uint32(len(ft) + len(ret.FunctionSection))
		if index >= numFuncs {
			return nil, fmt.Errorf("invalid start function index: %d", index)
		}
	}

	if err := ret.buildCodeMetadata(); err != nil {
		return nil, fmt.Errorf("code analysis failed: %w", err)
	}
	return ret, nil
}

// importedFunctionTypes returns the type indices of function imports, in
// import order.
func (m *Module) importedFunctionTypes() ([]uint32, error) {
	var ret []uint32
	for _, imp := range m.ImportSection {
		if imp.Desc.Kind != ImportKindFunction {
			continue
		}
		typeIndex := *imp.Desc.TypeIndexPtr
		if typeIndex >= uint32(len(m.TypeSection)) {
			return nil, fmt.Errorf("unknown type for function import %s.%s", imp.Module, imp.Name)
		}
		ret = append(ret, typeIndex)
	}
	return ret, nil
}
