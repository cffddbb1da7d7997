package vm

import "fmt"

// growRegs ensures the shared register stack has room for at least
// needed more slots above top, doubling capacity as mruby's mrb_stack_extend
// does rather than growing by the exact amount requested, so a tight call
// loop doesn't reallocate on every SEND.
func (s *State) growRegs(top, needed int) {
	want := top + needed
	if want <= len(s.regs) {
		return
	}
	size := len(s.regs)
	if size == 0 {
		size = s.cfg.InitialRegs
	}
	for size < want {
		size *= 2
	}
	grown := make([]Value, size)
	copy(grown, s.regs)
	s.regs = grown
	for _, fr := range s.frames {
		if fr.Env != nil && !fr.Env.Promoted() {
			fr.Env.Stack = grown
		}
	}
}

// pushFrame allocates a new register window on top of the shared stack for
// p, seeds it with self/argv/block, and makes it the current frame. The
// caller's frame (if any) is recorded in Frame.Prev. When tail is set, the new frame replaces the
// current one in place (TAILCALL) instead of growing the frame stack.
func (s *State) pushFrame(p *Proc, self Value, argv []Value, block Value, target Value, tail bool) (*Frame, error) {
	if err := s.CheckStack(); err != nil {
		return nil, err
	}

	var base int
	if s.cur != nil && !tail {
		base = s.cur.Stackidx + s.cur.NRegs
	} else if s.cur != nil {
		base = s.cur.Stackidx
	}
	nregs := p.Irep.NumRegs
	if nregs < len(argv)+2 {
		nregs = len(argv) + 2
	}
	s.growRegs(base, nregs)

	win := s.regs[base : base+nregs]
	for i := range win {
		win[i] = Nil
	}
	win[0] = self
	for i, arg := range argv {
		if i+1 >= len(win) {
			break
		}
		win[i+1] = arg
	}

	f := &Frame{
		Proc:     p,
		MID:      p.Name,
		Target:   target,
		Self:     self,
		Stackidx: base,
		NRegs:    nregs,
		Argc:     len(argv),
		PC:       0,
		Ridx:     len(s.exc.rescues),
		Eidx:     len(s.exc.ensures),
		Outer:    p.Env,
	}
	if block.IsProc() {
		win[len(win)-1] = block
	}

	if tail && s.cur != nil {
		f.Prev = s.cur.Prev
		s.frames[len(s.frames)-1] = f
	} else {
		if s.cur != nil {
			f.Prev = s.cur
		}
		s.frames = append(s.frames, f)
	}
	s.cur = f
	return f, nil
}

// popFrame removes the current frame, runs any of its ensure entries that
// haven't fired yet, trims the rescue/ensure watermarks back to where this
// frame started, and restores the caller as current.
func (s *State) popFrame() {
	f := s.cur
	s.runPendingEnsures(f)
	s.exc.truncateRescues(f.Ridx)
	s.exc.truncateEnsures(f.Eidx)

	if f.Env != nil {
		f.Env.Promote()
	}

	s.frames = s.frames[:len(s.frames)-1]
	if len(s.frames) > 0 {
		s.cur = s.frames[len(s.frames)-1]
	} else {
		s.cur = nil
	}
}

// runPendingEnsures invokes, innermost first, every ensure proc this frame
// pushed that hasn't already been popped by an explicit EPOP.
func (s *State) runPendingEnsures(f *Frame) {
	for len(s.exc.ensures) > f.Eidx {
		e, ok := s.exc.popEnsure()
		if !ok {
			break
		}
		s.invoke(e.proc, f.Self, nil, Nil, f.Target)
	}
}

// invoke is the single place a Proc (native or bytecode) actually runs.
// Every public entry point (Run, Funcall, Yield) and every internal SEND/
// CALL/TAILCALL funnels through here.
func (s *State) invoke(p *Proc, self Value, argv []Value, block Value, target Value) (Value, error) {
	if p.Strict {
		min, max := p.argSpec().Total()
		if len(argv) < min || (max >= 0 && len(argv) > max) {
			return Nil, &ArgumentError{Got: len(argv), WantMin: min, WantMax: max}
		}
	}
	if p.IsNative() {
		mark := s.Host.ArenaSave()
		defer s.Host.ArenaRestore(mark)
		return p.Native(s, self, argv, block)
	}

	f, err := s.pushFrame(p, self, argv, block, target, false)
	if err != nil {
		return Nil, err
	}
	v, err := s.runLoop(f)
	return v, err
}

// argSpec is a tiny indirection so invoke can ask for arity even though
// native procs have no Irep to hold an ArgSpec on.
func (p *Proc) argSpec() ArgSpec {
	if p.Irep == nil {
		return ArgSpec{}
	}
	return p.Irep.ArgSpec
}

// runLoop is the fetch-decode-execute cycle starting at frame f. It
// returns once f (or whatever TAILCALL replaced it with) performs a
// top-level OP_RETURN, or once an exception unwinds past f unhandled.
func (s *State) runLoop(f *Frame) (Value, error) {
	for {
		if s.cur != f {
			f = s.cur
		}
		code := f.Proc.Irep.Code
		if f.PC >= len(code) {
			return Nil, fmt.Errorf("vm: pc out of range")
		}
		instr := code[f.PC]
		op := decodeOp(instr)

		result, done, err := s.step(f, op, instr)
		if err != nil {
			rv, handled := s.raise(f, err)
			if !handled {
				return Nil, err
			}
			result = rv
			f = s.cur
			continue
		}
		if done {
			return result, nil
		}
		if len(s.frames) == 0 {
			return result, nil
		}
	}
}

// step executes a single instruction against frame f. It returns
// (value, true, nil) on an OP_RETURN/OP_STOP that unwound this call,
// (_, false, nil) to keep looping, or (_, _, err) when the instruction
// raised.
func (s *State) step(f *Frame, op Opcode, instr uint32) (Value, bool, error) {
	regs := f.regs(s)
	a := decodeA(instr)

	switch op {
	case OpNop:
		f.PC++

	case OpMove:
		regs[a] = regs[decodeB(instr)]
		f.PC++

	case OpLoadL:
		regs[a] = f.Proc.Irep.Pool[decodeBx(instr)]
		f.PC++

	case OpLoadI:
		regs[a] = IntValue(int64(decodeSBx(instr)))
		f.PC++

	case OpLoadSym:
		regs[a] = SymbolValue(f.Proc.Irep.Syms[decodeBx(instr)])
		f.PC++

	case OpLoadNil:
		regs[a] = Nil
		f.PC++

	case OpLoadSelf:
		regs[a] = f.Self
		f.PC++

	case OpLoadT:
		regs[a] = True
		f.PC++

	case OpLoadF:
		regs[a] = False
		f.PC++

	case OpGetGlobal:
		regs[a] = s.Host.GetGlobal(f.Proc.Irep.Syms[decodeBx(instr)])
		f.PC++

	case OpSetGlobal:
		s.Host.SetGlobal(f.Proc.Irep.Syms[decodeBx(instr)], regs[a])
		f.PC++

	case OpGetSpecial:
		regs[a] = s.Host.GetSpecial(f.Proc.Irep.Syms[decodeBx(instr)])
		f.PC++

	case OpSetSpecial:
		s.Host.SetSpecial(f.Proc.Irep.Syms[decodeBx(instr)], regs[a])
		f.PC++

	case OpGetIV:
		regs[a] = s.Host.GetIVar(f.Self, f.Proc.Irep.Syms[decodeBx(instr)])
		f.PC++

	case OpSetIV:
		s.Host.SetIVar(f.Self, f.Proc.Irep.Syms[decodeBx(instr)], regs[a])
		f.PC++

	case OpGetCV:
		regs[a] = s.Host.GetCVar(f.Target, f.Proc.Irep.Syms[decodeBx(instr)])
		f.PC++

	case OpSetCV:
		s.Host.SetCVar(f.Target, f.Proc.Irep.Syms[decodeBx(instr)], regs[a])
		f.PC++

	case OpGetConst:
		regs[a] = s.Host.GetConst(f.Proc.Irep.Syms[decodeBx(instr)])
		f.PC++

	case OpSetConst:
		s.Host.SetConst(f.Proc.Irep.Syms[decodeBx(instr)], regs[a])
		f.PC++

	case OpGetMCnst:
		regs[a] = s.Host.GetModuleConst(regs[a], f.Proc.Irep.Syms[decodeBx(instr)])
		f.PC++

	case OpSetMCnst:
		s.Host.SetModuleConst(regs[a+1], f.Proc.Irep.Syms[decodeBx(instr)], regs[a])
		f.PC++

	case OpGetUpvar:
		regs[a] = s.getUpvar(f, decodeB(instr), decodeC(instr))
		f.PC++

	case OpSetUpvar:
		s.setUpvar(f, decodeB(instr), decodeC(instr), regs[a])
		f.PC++

	case OpJmp:
		f.PC += decodeSBx(instr)

	case OpJmpIf:
		if regs[a].IsTruthy() {
			f.PC += decodeSBx(instr)
		} else {
			f.PC++
		}

	case OpJmpNot:
		if regs[a].IsFalsy() {
			f.PC += decodeSBx(instr)
		} else {
			f.PC++
		}

	case OpOnErr:
		s.exc.pushRescue(f, f.PC+decodeSBx(instr))
		f.PC++

	case OpRescue:
		regs[a] = s.doRescue(decodeB(instr) != 0)
		f.PC++

	case OpPopErr:
		for i := 0; i < a; i++ {
			s.exc.popRescue()
		}
		f.PC++

	case OpRaise:
		return Nil, false, &RubyError{Value: regs[a], frame: f}

	case OpEPush:
		child := f.Proc.Irep.Children[decodeBx(instr)]
		p := &Proc{Irep: child, Env: s.frameEnv(f), Target: f.Target}
		s.exc.pushEnsure(f, p)
		f.PC++

	case OpEPop:
		for i := 0; i < a; i++ {
			if e, ok := s.exc.popEnsure(); ok {
				s.invoke(e.proc, f.Self, nil, Nil, f.Target)
			}
		}
		f.PC++

	case OpSend, OpFSend, OpVSend:
		return s.opSend(f, instr, false)

	case OpSuper:
		return s.opSuper(f, instr)

	case OpTailCall:
		return s.opSend(f, instr, true)

	case OpCall:
		return s.opCall(f)

	case OpArgAry:
		regs[a] = s.opArgAry(f, instr)
		f.PC++

	case OpEnter:
		if err := s.opEnter(f, decodeAx(instr)); err != nil {
			return Nil, false, err
		}

	case OpKArg, OpKDict:
		f.PC++ // keyword arguments are out of scope; treated as no-ops

	case OpReturn:
		return s.opReturn(f, regs[a], decodeC(instr))

	case OpBlkPush:
		regs[a] = s.opBlkPush(f, instr)
		f.PC++

	case OpAdd, OpSub, OpMul, OpDiv, OpAddI, OpSubI, OpEQ, OpLT, OpLE, OpGT, OpGE:
		if err := s.opArith(f, op, instr); err != nil {
			return Nil, false, err
		}

	case OpArray:
		b, c := decodeB(instr), decodeC(instr)
		regs[a] = s.Host.NewArray(append([]Value(nil), regs[b:b+c]...))
		f.PC++

	case OpAryCat:
		regs[a] = s.Host.ArrayConcat(regs[a], regs[decodeB(instr)])
		f.PC++

	case OpAryPush:
		regs[a] = s.Host.ArrayPush(regs[a], regs[decodeB(instr)])
		f.PC++

	case OpARef:
		regs[a] = s.Host.ArrayAt(regs[decodeB(instr)], decodeC(instr))
		f.PC++

	case OpASet:
		s.Host.ArraySet(regs[decodeB(instr)], decodeC(instr), regs[a])
		f.PC++

	case OpAPost:
		f.PC++ // no-op: array destructuring is not performed and R(A) is left unchanged

	case OpString:
		lit := f.Proc.Irep.Pool[decodeBx(instr)]
		regs[a] = s.Host.NewString(fmt.Sprint(lit))
		f.PC++

	case OpStrCat:
		regs[a] = s.Host.StringConcat(regs[a], regs[decodeB(instr)])
		f.PC++

	case OpHash:
		b, c := decodeB(instr), decodeC(instr)
		regs[a] = s.Host.NewHash(append([]Value(nil), regs[b:b+c]...))
		f.PC++

	case OpLambda:
		regs[a] = s.opLambda(f, decodeBx(instr))
		f.PC++

	case OpRange:
		regs[a] = s.Host.NewRange(regs[decodeB(instr)], regs[decodeB(instr)+1], decodeC(instr) != 0)
		f.PC++

	case OpOClass:
		regs[a] = s.Host.ObjectClass()
		f.PC++

	case OpClass:
		regs[a] = s.Host.DefineClass(regs[a], f.Proc.Irep.Syms[decodeBx(instr)], regs[a+1])
		f.PC++

	case OpModule:
		regs[a] = s.Host.DefineModule(regs[a], f.Proc.Irep.Syms[decodeBx(instr)])
		f.PC++

	case OpExec:
		return s.opExec(f, instr)

	case OpMethod:
		name := f.Proc.Irep.Syms[decodeBx(instr)]
		p := regs[a+1].Proc()
		p.Name = name
		s.Host.DefineMethod(regs[a], name, p)
		f.PC++

	case OpSClass:
		regs[a] = s.Host.SingletonClassOf(regs[decodeB(instr)])
		f.PC++

	case OpTClass:
		regs[a] = f.Target
		f.PC++

	case OpDebug:
		s.trace.Trace(f, fmt.Sprintf("r%d=%v r%d=%v r%d=%v", a, regs[a], decodeB(instr), regs[decodeB(instr)], decodeC(instr), regs[decodeC(instr)]))
		f.PC++

	case OpErr:
		return Nil, false, &RubyError{Value: f.Proc.Irep.Pool[decodeBx(instr)], frame: f}

	case OpStop:
		return Nil, true, nil

	default:
		return Nil, false, fmt.Errorf("vm: unknown opcode %d", op)
	}

	return Nil, false, nil
}
