package refhost

import (
	"sync"

	"github.com/chazu/corevm/vm"
)

// wellKnownClasses bundles the handful of built-in classes the host needs
// fast, typed access to when boxing primitive container values.
type wellKnownClasses struct {
	object      *Class
	stringClass *Class
	arrayClass  *Class
	hashClass   *Class
	rangeClass  *Class

	exception      *Class
	argumentError  *Class
	localJumpError *Class
	runtimeError   *Class

	integer *Class
	float   *Class
	symbolC *Class
	nilC    *Class
	trueC   *Class
	falseC  *Class
}

// Host is the reference implementation of vm.Host: a small single-
// inheritance class/object model with global, special, and constant
// variable stores, backing the core dispatch engine for this package's own
// tests and for any embedding that doesn't need a richer object system.
type Host struct {
	symbols *symbolTable
	classes wellKnownClasses

	mu       sync.RWMutex
	globals  map[vm.Symbol]vm.Value
	specials map[vm.Symbol]vm.Value

	arena int // monotonically increasing checkpoint counter
}

// NewHost builds a Host with its built-in class hierarchy already
// bootstrapped.
func NewHost() *Host {
	h := &Host{
		symbols:  newSymbolTable(),
		globals:  make(map[vm.Symbol]vm.Value),
		specials: make(map[vm.Symbol]vm.Value),
	}

	object := NewClass("Object", nil)
	exception := NewClass("Exception", object)

	h.classes = wellKnownClasses{
		object:         object,
		stringClass:    NewClass("String", object),
		arrayClass:     NewClass("Array", object),
		hashClass:      NewClass("Hash", object),
		rangeClass:     NewClass("Range", object),
		exception:      exception,
		argumentError:  NewClass("ArgumentError", exception),
		localJumpError: NewClass("LocalJumpError", exception),
		runtimeError:   NewClass("RuntimeError", exception),
		integer:        NewClass("Integer", object),
		float:          NewClass("Float", object),
		symbolC:        NewClass("Symbol", object),
		nilC:           NewClass("NilClass", object),
		trueC:          NewClass("TrueClass", object),
		falseC:         NewClass("FalseClass", object),
	}
	return h
}

// Classes exposes the bootstrapped class table so a harness wiring a
// compiler or REPL can register top-level names before running anything.
func (h *Host) Classes() map[string]*Class {
	return map[string]*Class{
		"Object":         h.classes.object,
		"String":         h.classes.stringClass,
		"Array":          h.classes.arrayClass,
		"Hash":           h.classes.hashClass,
		"Range":          h.classes.rangeClass,
		"Exception":      h.classes.exception,
		"ArgumentError":  h.classes.argumentError,
		"LocalJumpError": h.classes.localJumpError,
		"RuntimeError":   h.classes.runtimeError,
		"Integer":        h.classes.integer,
		"Float":          h.classes.float,
		"Symbol":         h.classes.symbolC,
	}
}

// ---------------------------------------------------------------------------
// vm.Host implementation
// ---------------------------------------------------------------------------

func (h *Host) ClassOf(v vm.Value) vm.Value {
	switch {
	case v.IsInt():
		return h.classes.integer.Value()
	case v.IsFloat():
		return h.classes.float.Value()
	case v.IsSymbol():
		return h.classes.symbolC.Value()
	case v == vm.Nil:
		return h.classes.nilC.Value()
	case v == vm.True:
		return h.classes.trueC.Value()
	case v == vm.False:
		return h.classes.falseC.Value()
	case v.IsHeap():
		return (*header)(v.HeapPtr()).class.Value()
	default:
		return h.classes.object.Value()
	}
}

func (h *Host) MethodSearch(class vm.Value, sym vm.Symbol) (*vm.Proc, vm.Value, bool) {
	p, defining, ok := asClass(class).Lookup(sym)
	if !ok {
		return nil, vm.Nil, false
	}
	return p, defining.Value(), true
}

func (h *Host) Intern(name string) vm.Symbol   { return h.symbols.intern(name) }
func (h *Host) SymbolName(sym vm.Symbol) string { return h.symbols.name(sym) }

func (h *Host) GetGlobal(sym vm.Symbol) vm.Value {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.globals[sym]
}

func (h *Host) SetGlobal(sym vm.Symbol, v vm.Value) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.globals[sym] = v
}

func (h *Host) GetSpecial(sym vm.Symbol) vm.Value {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.specials[sym]
}

func (h *Host) SetSpecial(sym vm.Symbol, v vm.Value) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.specials[sym] = v
}

func (h *Host) GetIVar(self vm.Value, sym vm.Symbol) vm.Value {
	if !self.IsHeap() || heapKind(self) != kindObject {
		return vm.Nil
	}
	return asObject(self).ivars[sym]
}

func (h *Host) SetIVar(self vm.Value, sym vm.Symbol, v vm.Value) {
	if !self.IsHeap() || heapKind(self) != kindObject {
		return
	}
	asObject(self).ivars[sym] = v
}

func (h *Host) GetCVar(class vm.Value, sym vm.Symbol) vm.Value { return asClass(class).GetCVar(sym) }
func (h *Host) SetCVar(class vm.Value, sym vm.Symbol, v vm.Value) {
	asClass(class).SetCVar(sym, v)
}

func (h *Host) GetConst(sym vm.Symbol) vm.Value { return h.classes.object.GetConst(sym) }
func (h *Host) SetConst(sym vm.Symbol, v vm.Value) { h.classes.object.SetConst(sym, v) }

func (h *Host) GetModuleConst(mod vm.Value, sym vm.Symbol) vm.Value {
	return asClass(mod).GetConst(sym)
}
func (h *Host) SetModuleConst(mod vm.Value, sym vm.Symbol, v vm.Value) {
	asClass(mod).SetConst(sym, v)
}

func (h *Host) NewArray(elems []vm.Value) vm.Value { return NewRArray(h, elems) }

func (h *Host) ArrayElems(v vm.Value) []vm.Value {
	if !v.IsHeap() || heapKind(v) != kindArray {
		return nil
	}
	return asArray(v).elems
}

func (h *Host) ArrayConcat(dst, src vm.Value) vm.Value {
	d := asArray(dst)
	d.elems = append(d.elems, h.ArrayElems(src)...)
	return dst
}

func (h *Host) ArrayPush(dst, v vm.Value) vm.Value {
	d := asArray(dst)
	d.elems = append(d.elems, v)
	return dst
}

func (h *Host) ArrayAt(a vm.Value, index int) vm.Value {
	arr := asArray(a)
	if index < 0 || index >= len(arr.elems) {
		return vm.Nil
	}
	return arr.elems[index]
}

func (h *Host) ArraySet(a vm.Value, index int, v vm.Value) vm.Value {
	arr := asArray(a)
	for len(arr.elems) <= index {
		arr.elems = append(arr.elems, vm.Nil)
	}
	arr.elems[index] = v
	return v
}

func (h *Host) NewString(s string) vm.Value { return NewRString(h, s) }

func (h *Host) StringConcat(dst, src vm.Value) vm.Value {
	d := asString(dst)
	d.s += asString(src).s
	return dst
}

func (h *Host) NewHash(pairs []vm.Value) vm.Value { return NewRHash(h, pairs) }

func (h *Host) NewRange(low, high vm.Value, exclusive bool) vm.Value {
	return NewRRange(h, low, high, exclusive)
}

func (h *Host) ObjectClass() vm.Value { return h.classes.object.Value() }

func (h *Host) DefineClass(outer vm.Value, name vm.Symbol, super vm.Value) vm.Value {
	superClass := h.classes.object
	if super != vm.Nil {
		superClass = asClass(super)
	}
	c := NewClass(h.SymbolName(name), superClass)
	if outer.IsHeap() && heapKind(outer) == kindClass {
		asClass(outer).SetConst(name, c.Value())
	}
	return c.Value()
}

func (h *Host) DefineModule(outer vm.Value, name vm.Symbol) vm.Value {
	c := NewModule(h.SymbolName(name))
	if outer.IsHeap() && heapKind(outer) == kindClass {
		asClass(outer).SetConst(name, c.Value())
	}
	return c.Value()
}

func (h *Host) DefineMethod(class vm.Value, name vm.Symbol, p *vm.Proc) {
	asClass(class).DefineMethod(name, p)
}

func (h *Host) SingletonClassOf(v vm.Value) vm.Value {
	if !v.IsHeap() {
		return h.ClassOf(v)
	}
	switch heapKind(v) {
	case kindClass:
		return asClass(v).SingletonClass().Value()
	case kindObject:
		return asObject(v).SingletonClass().Value()
	default:
		return h.ClassOf(v)
	}
}

func (h *Host) SuperclassOf(class vm.Value) (vm.Value, bool) {
	c := asClass(class)
	if c.Superclass == nil {
		return vm.Nil, false
	}
	return c.Superclass.Value(), true
}

func (h *Host) NewException(class vm.Value, message string) vm.Value {
	return NewException(asClass(class), message)
}

func (h *Host) ExceptionMessage(exc vm.Value) string {
	if !exc.IsHeap() || heapKind(exc) != kindException {
		return ""
	}
	return asException(exc).message
}

func (h *Host) ArgumentErrorClass() vm.Value  { return h.classes.argumentError.Value() }
func (h *Host) LocalJumpErrorClass() vm.Value { return h.classes.localJumpError.Value() }
func (h *Host) RuntimeErrorClass() vm.Value   { return h.classes.runtimeError.Value() }

// ArenaSave/ArenaRestore stand in for a real GC arena checkpoint: this
// reference host relies on Go's own garbage collector for memory safety,
// so it only needs to hand back an opaque, monotonically increasing token
// the core can pass back unmodified.
func (h *Host) ArenaSave() int {
	h.arena++
	return h.arena
}

func (h *Host) ArenaRestore(int) {}

// WriteBarrier is a no-op here for the same reason: Go's collector already
// tracks every pointer this host hands the core, so there is nothing
// additional to record.
func (h *Host) WriteBarrier(vm.Value, vm.Value) {}
