package refhost

import (
	"unsafe"

	"github.com/chazu/corevm/vm"
)

// kind tags the concrete Go type a heap Value points at, so code that only
// has a vm.Value back (e.g. ClassOf, the exception constructors) can
// recover the right struct without a type switch over unsafe.Pointer.
type kind byte

const (
	kindObject kind = iota
	kindClass
	kindString
	kindArray
	kindHash
	kindRange
	kindException
)

// header is embedded as the first field of every heap-allocated type so a
// bare unsafe.Pointer can always be reinterpreted as *header to read kind
// and class before being cast to the concrete type.
type header struct {
	kind  kind
	class *Class
}

func heapKind(v vm.Value) kind {
	return (*header)(v.HeapPtr()).kind
}

func box(h *header) vm.Value { return vm.HeapValue(unsafe.Pointer(h)) }

// Object is the reference representation of a plain user-defined instance:
// a class pointer and a slot map for instance variables, keyed by symbol.
type Object struct {
	header
	ivars     map[vm.Symbol]vm.Value
	singleton *Class
}

func NewObject(class *Class) *Object {
	return &Object{header: header{kind: kindObject, class: class}, ivars: make(map[vm.Symbol]vm.Value)}
}

func (o *Object) Value() vm.Value { return box(&o.header) }

func asObject(v vm.Value) *Object {
	return (*Object)(v.HeapPtr())
}

// SingletonClass returns o's own per-instance class, creating it (as a
// subclass of o's current class) on first use.
func (o *Object) SingletonClass() *Class {
	if o.singleton == nil {
		o.singleton = NewClass("#<Class:"+o.class.Name+">", o.class)
	}
	return o.singleton
}
