package vm

// SEND/TAILCALL share the same register convention: B names the selector
// (an index into the irep's symbol table), C is the argument count (or
// 0x7F/CALL_MAXARGS meaning "use ARGARY's splat array already left in
// A+1"), and the receiver and arguments occupy A, A+1, ... in the current
// register window, with any block argument immediately following the last
// positional argument. SUPER reads its arguments the same way but takes
// the receiver from the frame's self and the name from the frame's MID;
// CALL uses neither B nor C (see opCall).
const sendMaxArgs = 0x7F

// collectArgs gathers the positional arguments for a SEND-family
// instruction starting at register base, honoring the splat convention
// when argc == sendMaxArgs (ARGARY already built the array in base+1).
func (s *State) collectArgs(f *Frame, base, argc int) (argv []Value, block Value) {
	regs := f.regs(s)
	if argc == sendMaxArgs {
		arr := regs[base+1]
		argv = s.Host.ArrayElems(arr)
		block = regs[base+2]
		return argv, block
	}
	argv = append([]Value(nil), regs[base+1:base+1+argc]...)
	block = regs[base+1+argc]
	return argv, block
}

// opSend implements SEND/FSEND/VSEND and, when tail is set, TAILCALL:
// resolve B as a method name against the receiver's class and invoke it.
// A tail call replaces the current frame instead of growing the frame
// stack, so bytecode written as a loop via recursion runs in bounded
// space.
func (s *State) opSend(f *Frame, instr uint32, tail bool) (Value, bool, error) {
	a, b, c := decodeA(instr), decodeB(instr), decodeC(instr)
	regs := f.regs(s)
	self := regs[a]
	name := f.Proc.Irep.Syms[b]

	argv, block := s.collectArgs(f, a, c)

	class := s.Host.ClassOf(self)
	p, defining, ok := s.Host.MethodSearch(class, name)
	if !ok {
		return Nil, false, &RubyError{Value: s.Host.NewException(s.Host.RuntimeErrorClass(), "undefined method "+s.Host.SymbolName(name)), frame: f}
	}

	if tail && !p.IsNative() {
		nf, err := s.pushFrame(p, self, argv, block, defining, true)
		if err != nil {
			return Nil, false, err
		}
		nf.TailCall = true
		return Nil, false, nil
	}

	result, err := s.invoke(p, self, argv, block, defining)
	if err != nil {
		return Nil, false, err
	}
	regs[a] = result
	f.PC++
	return Nil, false, nil
}

// opSuper resolves the current frame's method name (f.MID; B is not read)
// starting one class above target_class rather than at the receiver's own
// class, implementing super calls.
func (s *State) opSuper(f *Frame, instr uint32) (Value, bool, error) {
	a, c := decodeA(instr), decodeC(instr)
	regs := f.regs(s)
	self := f.Self

	super, ok := s.Host.SuperclassOf(f.Target)
	if !ok {
		return Nil, false, &RubyError{Value: s.Host.NewException(s.Host.RuntimeErrorClass(), "super called outside of method"), frame: f}
	}

	argv, block := s.collectArgs(f, a, c)
	p, defining, ok := s.Host.MethodSearch(super, f.MID)
	if !ok {
		return Nil, false, &RubyError{Value: s.Host.NewException(s.Host.RuntimeErrorClass(), "no superclass method "+s.Host.SymbolName(f.MID)), frame: f}
	}
	result, err := s.invoke(p, self, argv, block, defining)
	if err != nil {
		return Nil, false, err
	}
	regs[a] = result
	f.PC++
	return Nil, false, nil
}

// opCall implements the CALL opcode used to invoke a Proc value held in
// register 0 directly (e.g. Proc#call, or a block re-entered after being
// stored in a variable) rather than through ordinary method search.
// Register 1.. holds the arguments already laid out by the caller; the
// result replaces register 0.
func (s *State) opCall(f *Frame) (Value, bool, error) {
	regs := f.regs(s)
	pv := regs[0]
	if !pv.IsProc() {
		return Nil, false, &RubyError{Value: s.Host.NewException(s.Host.RuntimeErrorClass(), "CALL target is not a procedure"), frame: f}
	}
	p := pv.Proc()
	argv := append([]Value(nil), regs[1:f.Argc+1]...)
	self := f.Self
	if p.Env != nil {
		self = p.Env.Target
	}
	result, err := s.invoke(p, self, argv, Nil, p.Target)
	if err != nil {
		return Nil, false, err
	}
	regs[0] = result
	f.PC++
	return Nil, false, nil
}

// opReturn implements RETURN's three propagation modes: Normal pops the
// current frame and hands the value to its caller; Break and Raise unwind
// further, see doBreak and raise() for the shared machinery.
func (s *State) opReturn(f *Frame, v Value, mode int) (Value, bool, error) {
	switch mode {
	case ReturnNormal:
		s.popFrame()
		return v, true, nil
	case ReturnBreak:
		return s.doBreak(f, v)
	default:
		return Nil, false, &RubyError{Value: v, frame: f}
	}
}

// doBreak implements a non-local return out of a block: it unwinds frames
// until it reaches the frame the block's Env was captured in (its "home"),
// running ensures along the way, and resumes that frame's caller with v as
// the call's result. If the home frame has already returned, the capturing
// Env was promoted and the break can no longer land: that's a
// LocalJumpError.
func (s *State) doBreak(f *Frame, v Value) (Value, bool, error) {
	env := f.Proc.Env
	if env == nil || env.Promoted() || env.home == nil {
		return Nil, false, &LocalJumpError{Reason: "break from proc-closure"}
	}
	home := env.home
	for s.cur != nil {
		done := s.cur == home
		s.popFrame()
		if done {
			break
		}
	}
	return v, true, nil
}

// opExec implements EXEC: run a class/module body irep with self set to
// the class/module value in A and target_class set to that same value,
// used by CLASS/MODULE/SCLASS bodies.
func (s *State) opExec(f *Frame, instr uint32) (Value, bool, error) {
	a := decodeA(instr)
	regs := f.regs(s)
	child := f.Proc.Irep.Children[decodeBx(instr)]
	target := regs[a]
	p := &Proc{Irep: child, Target: target, Strict: false}
	result, err := s.invoke(p, target, nil, Nil, target)
	if err != nil {
		return Nil, false, err
	}
	regs[a] = result
	f.PC++
	return Nil, false, nil
}

// getUpvar/setUpvar implement GETUPVAR/SETUPVAR: B is the register index
// within an ancestor scope's window, C is how many Env hops out that scope
// is (0 = the environment this frame's own Proc closed over, the
// traditional case for a block reading a local of its immediately
// enclosing method).
func (s *State) getUpvar(f *Frame, b, c int) Value {
	env := f.Outer
	for i := 0; i < c && env != nil; i++ {
		env = env.parent
	}
	if env == nil {
		return Nil
	}
	regs := env.Regs()
	if b < 0 || b >= len(regs) {
		return Nil
	}
	return regs[b]
}

func (s *State) setUpvar(f *Frame, b, c int, v Value) {
	env := f.Outer
	for i := 0; i < c && env != nil; i++ {
		env = env.parent
	}
	if env == nil {
		return
	}
	regs := env.Regs()
	if b < 0 || b >= len(regs) {
		return
	}
	regs[b] = v
	s.Host.WriteBarrier(EnvValue(env), v)
}
