package refhost

import (
	"fmt"

	"github.com/chazu/corevm/vm"
)

// RString, RArray, RHash, and RRange are the reference host's built-in
// collection representations. The core never looks inside a heap Value;
// it only ever asks the Host to build or mutate one through NewArray,
// ArrayConcat, and so on, which is what lets the compiler's output stay
// agnostic to how the embedding actually stores a string or an array.

type RString struct {
	header
	s string
}

func NewRString(h *Host, s string) vm.Value {
	r := &RString{header: header{kind: kindString, class: h.classes.stringClass}, s: s}
	return box(&r.header)
}

func asString(v vm.Value) *RString { return (*RString)(v.HeapPtr()) }

type RArray struct {
	header
	elems []vm.Value
}

func NewRArray(h *Host, elems []vm.Value) vm.Value {
	a := &RArray{header: header{kind: kindArray, class: h.classes.arrayClass}, elems: elems}
	return box(&a.header)
}

func asArray(v vm.Value) *RArray { return (*RArray)(v.HeapPtr()) }

type hashPair struct{ key, value vm.Value }

type RHash struct {
	header
	pairs []hashPair
}

// NewRHash builds a hash from a flat key,value,key,value... slice, the
// layout OP_HASH leaves in its source registers.
func NewRHash(h *Host, flat []vm.Value) vm.Value {
	hh := &RHash{header: header{kind: kindHash, class: h.classes.hashClass}}
	for i := 0; i+1 < len(flat); i += 2 {
		hh.pairs = append(hh.pairs, hashPair{key: flat[i], value: flat[i+1]})
	}
	return box(&hh.header)
}

func asHash(v vm.Value) *RHash { return (*RHash)(v.HeapPtr()) }

func (h *RHash) get(key vm.Value) (vm.Value, bool) {
	for _, p := range h.pairs {
		if p.key == key {
			return p.value, true
		}
	}
	return vm.Nil, false
}

func (h *RHash) set(key, value vm.Value) {
	for i, p := range h.pairs {
		if p.key == key {
			h.pairs[i].value = value
			return
		}
	}
	h.pairs = append(h.pairs, hashPair{key: key, value: value})
}

type RRange struct {
	header
	low, high vm.Value
	exclusive bool
}

func NewRRange(h *Host, low, high vm.Value, exclusive bool) vm.Value {
	r := &RRange{header: header{kind: kindRange, class: h.classes.rangeClass}, low: low, high: high, exclusive: exclusive}
	return box(&r.header)
}

func asRange(v vm.Value) *RRange { return (*RRange)(v.HeapPtr()) }

// Exception is the reference host's exception object: a class and a
// message, enough for RAISE/RESCUE round-tripping and backtraces.
type Exception struct {
	header
	message string
}

func NewException(class *Class, message string) vm.Value {
	e := &Exception{header: header{kind: kindException, class: class}, message: message}
	return box(&e.header)
}

func asException(v vm.Value) *Exception { return (*Exception)(v.HeapPtr()) }

func (e *Exception) String() string { return fmt.Sprintf("%s: %s", e.class.Name, e.message) }
