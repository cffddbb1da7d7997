package vm

// Host is everything the dispatch engine borrows from the surrounding
// embedding instead of implementing itself: class/method resolution, the
// global/constant/instance/class-variable stores, the built-in collection
// constructors, and garbage-collector hooks. The compiler, the garbage
// collector, and the concrete built-in classes all live on the other side
// of this interface; see spec §6.
//
// A Host implementation must be safe to call re-entrantly: native methods
// invoked through Send/Invoke may themselves call back into the running
// State (Funcall, Yield).
type Host interface {
	// ClassOf maps a value (including primitives) to its class.
	ClassOf(v Value) Value

	// MethodSearch walks the class hierarchy starting at class looking for
	// sym. It returns the callable and the class that actually defines it
	// (needed so SUPER can resume the search one level up), or ok=false.
	MethodSearch(class Value, sym Symbol) (proc *Proc, definingClass Value, ok bool)

	// Intern returns the symbol id for name, creating one if necessary.
	Intern(name string) Symbol
	SymbolName(sym Symbol) string

	// Global/constant/instance/class-variable and special-variable stores.
	GetGlobal(sym Symbol) Value
	SetGlobal(sym Symbol, v Value)
	GetSpecial(sym Symbol) Value
	SetSpecial(sym Symbol, v Value)
	GetIVar(self Value, sym Symbol) Value
	SetIVar(self Value, sym Symbol, v Value)
	GetCVar(class Value, sym Symbol) Value
	SetCVar(class Value, sym Symbol, v Value)
	GetConst(sym Symbol) Value
	SetConst(sym Symbol, v Value)
	GetModuleConst(mod Value, sym Symbol) Value
	SetModuleConst(mod Value, sym Symbol, v Value)

	// Built-in constructors and primitives used directly by opcodes.
	NewArray(elems []Value) Value
	ArrayElems(a Value) []Value
	ArrayConcat(dst, src Value) Value
	ArrayPush(dst, v Value) Value
	ArrayAt(a Value, index int) Value
	ArraySet(a Value, index int, v Value) Value
	NewString(s string) Value
	StringConcat(dst, src Value) Value
	NewHash(pairs []Value) Value
	NewRange(low, high Value, exclusive bool) Value

	// Class/module definition, used by CLASS/MODULE/METHOD/EXEC/SCLASS/TCLASS.
	ObjectClass() Value
	DefineClass(outer Value, name Symbol, super Value) Value
	DefineModule(outer Value, name Symbol) Value
	DefineMethod(class Value, name Symbol, p *Proc)
	SingletonClassOf(v Value) Value
	SuperclassOf(class Value) (Value, bool)

	// Exceptions.
	NewException(class Value, message string) Value
	ExceptionMessage(exc Value) string
	ArgumentErrorClass() Value
	LocalJumpErrorClass() Value
	RuntimeErrorClass() Value

	// GC integration: a rooting checkpoint taken between opcodes, and a
	// write barrier invoked whenever a heap container (an Env, in the
	// core's case) acquires a reference to a possibly-younger value.
	ArenaSave() int
	ArenaRestore(idx int)
	WriteBarrier(container, value Value)
}

// TraceSink receives DEBUG-opcode output and other interpreter diagnostics.
// The spec calls out routing OP_DEBUG through a pluggable sink rather than
// hardcoding stdout; the default State uses a no-op sink until one is
// installed with SetTraceSink.
type TraceSink interface {
	Trace(frame *Frame, message string)
}

// discardSink is the default TraceSink: it drops everything.
type discardSink struct{}

func (discardSink) Trace(*Frame, string) {}
