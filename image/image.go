// Package image implements a portable binary encoding for compiled
// bytecode (an Irep tree), so a compiler or loader has a concrete
// serialization target for what the vm package executes.
package image

import (
	"fmt"

	"github.com/chazu/corevm/vm"
	"github.com/fxamacker/cbor/v2"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Irep is the wire form of vm.Irep: the same fields, but with Children
// flattened into a tree of Irep values instead of *vm.Irep pointers so
// the whole unit round-trips through CBOR without needing custom
// (un)marshalers on the vm package's own types.
type Irep struct {
	Code      []uint32
	Pool      []vm.Value
	Syms      []vm.Symbol
	NumRegs   int
	NumLocals int
	Children  []Irep
	ArgSpec   vm.ArgSpec
	Filename  string
	Lines     []int32
}

// FromVM converts a live *vm.Irep tree into its wire form.
func FromVM(ir *vm.Irep) Irep {
	children := make([]Irep, len(ir.Children))
	for i, c := range ir.Children {
		children[i] = FromVM(c)
	}
	return Irep{
		Code:      ir.Code,
		Pool:      ir.Pool,
		Syms:      ir.Syms,
		NumRegs:   ir.NumRegs,
		NumLocals: ir.NumLocals,
		Children:  children,
		ArgSpec:   ir.ArgSpec,
		Filename:  ir.Filename,
		Lines:     ir.Lines,
	}
}

// ToVM converts a decoded wire Irep back into a live *vm.Irep tree.
func (w Irep) ToVM() *vm.Irep {
	children := make([]*vm.Irep, len(w.Children))
	for i, c := range w.Children {
		children[i] = c.ToVM()
	}
	return &vm.Irep{
		Code:      w.Code,
		Pool:      w.Pool,
		Syms:      w.Syms,
		NumRegs:   w.NumRegs,
		NumLocals: w.NumLocals,
		Children:  children,
		ArgSpec:   w.ArgSpec,
		Filename:  w.Filename,
		Lines:     w.Lines,
	}
}

// Marshal serializes a compiled Irep tree to CBOR bytes.
func Marshal(ir *vm.Irep) ([]byte, error) {
	return cborEncMode.Marshal(FromVM(ir))
}

// Unmarshal deserializes a compiled Irep tree from CBOR bytes.
func Unmarshal(data []byte) (*vm.Irep, error) {
	var w Irep
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("image: unmarshal irep: %w", err)
	}
	return w.ToVM(), nil
}
