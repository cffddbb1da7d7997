package vm

// Irep is a single compiled instruction sequence: one method body, one
// block body, or one class/module body. It is immutable once built and is
// always reached through a Proc, never executed directly.
//
// The name comes from the original mruby "irep" (instruction representation)
// terminology; a compiler (out of scope here) produces these, the core only
// consumes them.
type Irep struct {
	Code []uint32 // packed instructions, see opcode.go for the encoding
	Pool []Value  // literal pool: floats, interned strings, symbols at load time
	Syms []Symbol // local symbol table, indexed by the bytecode's sym operands

	NumRegs  int     // register window size this irep needs (includes self, args)
	NumLocals int    // number of named locals at the head of the window
	Children []*Irep // nested method/block/class bodies, indexed by LAMBDA's Bx

	// ArgSpec mirrors the compiler's ENTER descriptor for this irep, used by
	// invoke's strict-arity check and its ArgumentError messages.
	ArgSpec ArgSpec

	Filename string
	Lines    []int32 // optional, Lines[pc] -> source line, for backtraces
}

// ArgSpec describes required/optional/rest/post/keyword/block argument
// counts, in the same fields an ENTER instruction's Ax operand encodes.
// The core never fills Irep.ArgSpec itself: whoever builds the Irep sets
// it, and opEnter decodes its own Ax operand each time it runs.
type ArgSpec struct {
	Req1  int // m1: required arguments before the optional block
	Opt   int // o: optional arguments with default initializers
	Rest  bool
	Req2  int // m2: required arguments after the rest argument
	KeyReq int // k: required keyword arguments
	KeyDict bool // kd: accepts a trailing keyword-dictionary
	Block bool // b: takes a block argument
}

// Total is the minimum/maximum positional arity this spec admits, ignoring
// keywords; max is -1 when a rest parameter makes it unbounded.
func (a ArgSpec) Total() (min, max int) {
	min = a.Req1 + a.Req2
	if a.Rest {
		return min, -1
	}
	return min, min + a.Opt
}

// NativeFunc is the signature host-provided primitives must implement.
// argv excludes self/block; self and the block (if any, else Nil) are
// passed explicitly so a native function can be shared across classes.
type NativeFunc func(s *State, self Value, argv []Value, block Value) (Value, error)

// Proc unifies compiled methods, compiled blocks, and host-native
// functions behind a single callable value. Every SEND/CALL/YIELD path
// only ever has to know how to invoke a Proc.
type Proc struct {
	Irep   *Irep      // nil for a native proc
	Native NativeFunc // nil for a bytecode proc

	Env    *Env  // captured environment, non-nil for a block closure
	Target Value // target_class captured at LAMBDA time, for SUPER inside blocks

	Strict bool // true: extra/missing arguments raise ArgumentError (method);
	            // false: arguments are reconciled leniently (block)

	Name Symbol // method name, for backtraces and Send error messages
}

// IsNative reports whether this proc is a host-provided Go function rather
// than bytecode.
func (p *Proc) IsNative() bool { return p.Native != nil }

// Env (an "REnv" in the traditional terminology) is the runtime
// representation of a lexical scope captured by a block or method closure.
//
// While the frame that created it is still on the call stack, an Env
// aliases that frame's live register window directly: Stack points into
// the shared operand stack and Cioff records the call-info slot of the
// owning frame, so writes through the block are visible to the method and
// vice versa. Reading an Env's registers always goes through Regs(), which
// resolves the aliasing indirection.
//
// When the owning frame returns, Promote copies the still-reachable
// registers into a private slice and sets Cioff to -1, so the Env (and any
// closures holding it) can keep working after the frame that made it is
// gone.
type Env struct {
	Stack []Value // either the shared operand stack, or (post-promotion) a private copy
	Start int     // index into Stack where this env's window begins
	Len   int     // number of registers captured (the owning frame's NRegs at capture time)

	Cioff int // index of the owning frame's call-info, or -1 once promoted

	MethodID Symbol // enclosing method's name, used when a block is re-CALLed
	Target   Value  // self of the enclosing frame

	parent *Env   // lexically enclosing environment, for nested block upvars
	home   *Frame // frame this env was captured from, target of a non-local break
}

// Regs returns the live register window for this environment: a slice
// sharing storage with the frame stack if the owning frame is still on the
// stack, or the environment's own private copy after promotion.
func (e *Env) Regs() []Value {
	return e.Stack[e.Start : e.Start+e.Len]
}

// Promoted reports whether this environment has outlived its owning frame.
func (e *Env) Promoted() bool { return e.Cioff < 0 }

// Promote detaches e from the shared operand stack by copying its live
// registers into a private slice. It is idempotent: promoting an
// already-promoted environment is a no-op. popFrame calls it for every
// frame that has an Env when that frame is popped, whether or not a
// closure over it escaped.
func (e *Env) Promote() {
	if e.Promoted() {
		return
	}
	cp := make([]Value, e.Len)
	copy(cp, e.Regs())
	e.Stack = cp
	e.Start = 0
	e.Cioff = -1
}
