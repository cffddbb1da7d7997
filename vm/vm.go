package vm

import (
	"fmt"

	"github.com/tliron/commonlog"
)

// Config holds the tunables the dispatch engine consults at run time:
// initial/growth sizing for the two growable stacks and a ceiling that
// turns runaway recursion into a catchable "stack level too deep" error
// (see CheckStack) instead of a Go-level crash. See config.go for the TOML-loadable form of this.
type Config struct {
	InitialRegs   int
	InitialFrames int
	MaxFrames     int
}

// DefaultConfig mirrors mruby's default pool sizing: small enough that a
// short-lived script never grows the stacks, large enough to avoid the
// first few calls re-growing on every SEND.
var DefaultConfig = Config{
	InitialRegs:   256,
	InitialFrames: 64,
	MaxFrames:     8192,
}

// State is one execution context: the register stack, the frame stack,
// the rescue/ensure stacks, and the Host it dispatches collaborator calls
// to. A State is not safe for concurrent use from multiple goroutines; an
// embedding that wants concurrency runs one State per goroutine against a
// shared, synchronized Host.
type State struct {
	Host  Host
	cfg   Config
	trace TraceSink
	log   commonlog.Logger

	regs   []Value
	frames []*Frame
	cur    *Frame

	exc     excState
	pending Value // exception object currently propagating, read by RESCUE
}

// NewState creates an execution context bound to host. cfg may be the
// zero value, in which case DefaultConfig is used.
func NewState(host Host, cfg Config) *State {
	if cfg.InitialRegs == 0 {
		cfg = DefaultConfig
	}
	s := &State{
		Host:    host,
		cfg:     cfg,
		trace:   discardSink{},
		log:     commonlog.GetLogger("vm"),
		regs:    make([]Value, cfg.InitialRegs),
		pending: Nil,
	}
	s.frames = make([]*Frame, 0, cfg.InitialFrames)
	return s
}

// SetTraceSink installs the destination for DEBUG-opcode output.
func (s *State) SetTraceSink(t TraceSink) {
	if t == nil {
		t = discardSink{}
	}
	s.trace = t
}

// Run executes p (which must be a bytecode proc, not native) with self as
// receiver and no arguments, returning its result. This is the entry point
// an embedding uses to kick off top-level script execution or a
// stand-alone method invocation it already has a Proc handle for.
func (s *State) Run(p *Proc, self Value) (Value, error) {
	return s.invoke(p, self, nil, Nil, p.Target)
}

// Funcall performs the full dynamic-dispatch SEND protocol: resolve name
// against self's class via the Host, then invoke the result. This is what
// a native Proc calls when it needs to send a message back into the
// interpreted world (e.g. Array#sort calling a user-supplied <=>).
func (s *State) Funcall(self Value, name Symbol, argv []Value, block Value) (Value, error) {
	class := s.Host.ClassOf(self)
	p, defining, ok := s.Host.MethodSearch(class, name)
	if !ok {
		return Nil, fmt.Errorf("no method %q on %v", s.Host.SymbolName(name), self)
	}
	return s.invoke(p, self, argv, block, defining)
}

// Yield invokes block (a Proc captured by BLKPUSH/LAMBDA) with argv,
// reusing self's captured environment rather than performing method
// lookup. Used by native procs that accept a block parameter, e.g.
// Array#each.
func (s *State) Yield(block Value, argv []Value) (Value, error) {
	if !block.IsProc() {
		return Nil, &LocalJumpError{Reason: "no block given"}
	}
	p := block.Proc()
	self := Nil
	if p.Env != nil {
		self = p.Env.Target
	}
	return s.invoke(p, self, argv, Nil, p.Target)
}

// CheckStack verifies that growing the frame stack by one more call would
// not exceed cfg.MaxFrames, returning a catchable error instead of letting
// unbounded recursion exhaust memory.
func (s *State) CheckStack() error {
	if len(s.frames) >= s.cfg.MaxFrames {
		return fmt.Errorf("stack level too deep")
	}
	return nil
}

// CurrentFrame returns the frame presently executing, or nil if the state
// is idle between Run/Funcall calls.
func (s *State) CurrentFrame() *Frame { return s.cur }
