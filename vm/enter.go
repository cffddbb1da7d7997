package vm

// ENTER's Ax operand packs a six-field descriptor produced straight from
// the method/block parameter list: how many required arguments come
// before any optional ones (m1), how many optional arguments have default
// initializers (o), whether a rest (splat) parameter is present (r), how
// many required arguments follow the rest parameter (m2), how many
// required/optional keyword arguments there are (k/kd), and whether a
// trailing block parameter is declared (b).
//
//	Ax: m1(5) o(5) r(1) m2(5) k(5) kd(1) b(1)   -- 23 bits used of 25
const (
	shiftM1 = 18
	shiftO  = 13
	shiftR  = 12
	shiftM2 = 7
	shiftK  = 2
	shiftKD = 1
	shiftB  = 0

	maskM1 = 0x1F
	maskO  = 0x1F
	maskM2 = 0x1F
	maskK  = 0x1F
)

func decodeArgSpec(ax int) ArgSpec {
	return ArgSpec{
		Req1:    (ax >> shiftM1) & maskM1,
		Opt:     (ax >> shiftO) & maskO,
		Rest:    (ax>>shiftR)&1 != 0,
		Req2:    (ax >> shiftM2) & maskM2,
		KeyReq:  (ax >> shiftK) & maskK,
		KeyDict: (ax>>shiftKD)&1 != 0,
		Block:   (ax>>shiftB)&1 != 0,
	}
}

// opEnter reconciles the frame's already-loaded argc positional arguments
// (regs[1..argc]) against the declared ArgSpec, per the spec's argument
// reconciliation rules:
//
//   - too few / too many for a Strict proc is an ArgumentError (checked
//     earlier, in invoke, by ArgSpec.Total over the Irep's own ArgSpec
//     field rather than the descriptor ENTER decodes here)
//   - for a lenient (non-Strict) proc, when exactly one argument is given
//     and more than one required-or-optional parameter is declared, and
//     that one argument is an array, it is auto-splatted across the
//     required/optional registers (the classic "yield [1,2]" case for a
//     two-parameter block)
//   - under-supplied optional slots are left nil and the irep's own
//     following JMP table (laid out at compile time, immediately after
//     ENTER) is responsible for skipping the default-value initializers
//     for slots that were in fact supplied; ENTER's job is only to leave
//     PC pointed at the correct entry in that table when o > 0
//   - a declared rest parameter collects every argument beyond m1+o into
//     a single array register
//   - m2 trailing required parameters are copied down from the tail of
//     the supplied arguments, after the rest array (if any) is built
func (s *State) opEnter(f *Frame, ax int) error {
	spec := decodeArgSpec(ax)
	regs := f.regs(s)
	argv := append([]Value(nil), regs[1:1+f.Argc]...)

	min := spec.Req1 + spec.Req2
	if !f.Proc.Strict && len(argv) == 1 && min+spec.Opt > 1 {
		if elems, ok := trySplat(s, argv[0]); ok {
			argv = elems
		}
	}

	dst := 1
	n := len(argv)

	take := spec.Req1
	if take > n {
		take = n
	}
	for i := 0; i < take; i++ {
		regs[dst] = argv[i]
		dst++
	}
	for i := take; i < spec.Req1; i++ {
		regs[dst] = Nil
		dst++
	}
	remaining := argv[take:]

	suppliedOpt := len(remaining) - spec.Req2
	if suppliedOpt < 0 {
		suppliedOpt = 0
	}
	if suppliedOpt > spec.Opt {
		suppliedOpt = spec.Opt
	}
	for i := 0; i < suppliedOpt; i++ {
		regs[dst] = remaining[i]
		dst++
	}
	for i := suppliedOpt; i < spec.Opt; i++ {
		regs[dst] = Nil
		dst++
	}
	remaining = remaining[suppliedOpt:]

	if spec.Rest {
		restLen := len(remaining) - spec.Req2
		if restLen < 0 {
			restLen = 0
		}
		regs[dst] = s.Host.NewArray(append([]Value(nil), remaining[:restLen]...))
		dst++
		remaining = remaining[restLen:]
	}

	for i := 0; i < spec.Req2; i++ {
		if i < len(remaining) {
			regs[dst] = remaining[i]
		} else {
			regs[dst] = Nil
		}
		dst++
	}

	// Immediately past ENTER sits the default-initializer jump table when
	// o > 0: one JMP per optional parameter, landing on the first one not
	// supplied. suppliedOpt tells us which entry to land on; 0 means "run
	// every initializer", spec.Opt means "skip the whole table".
	if spec.Opt > 0 {
		f.PC += 1 + suppliedOpt
	} else {
		f.PC++
	}
	return nil
}

// trySplat reports whether v is a host array and, if so, returns its
// elements for ENTER's single-array auto-splat case.
func trySplat(s *State, v Value) ([]Value, bool) {
	if !v.IsHeap() {
		return nil, false
	}
	elems := s.Host.ArrayElems(v)
	if elems == nil {
		return nil, false
	}
	return elems, true
}

// opArgAry implements ARGARY: build the array mrb's "argument array"
// register used by super/block forwarding with no explicit argument list
// (bare `super` or a splatted forward of the current frame's own args):
// the m1 leading arguments, then the elements of the rest array when r is
// set, then the m2 trailing arguments. The block is not included.
func (s *State) opArgAry(f *Frame, instr uint32) Value {
	bx := decodeBx(instr)
	m1 := (bx >> 11) & 0x1F
	r := (bx >> 10) & 1
	m2 := (bx >> 5) & 0x1F
	lv := bx & 0x1F

	regs := f.regs(s)
	_ = lv // only local (non-nested) argument forwarding is supported by the core
	n := m1 + m2
	if r != 0 {
		n++
	}
	args := make([]Value, 0, n)
	args = append(args, regs[1:1+m1]...)
	if r != 0 {
		args = append(args, s.Host.ArrayElems(regs[1+m1])...)
	}
	args = append(args, regs[1+m1+int(r):1+m1+int(r)+m2]...)
	return s.Host.NewArray(args)
}

// opBlkPush implements BLKPUSH: fetch the block argument of the current
// frame, used when a method body refers to its own block parameter by name
// (`&blk`). It reads the frame's last register, where pushFrame places a
// block argument; the Bx descriptor is not decoded and enclosing frames
// are not searched.
func (s *State) opBlkPush(f *Frame, instr uint32) Value {
	regs := f.regs(s)
	if f.NRegs == 0 {
		return Nil
	}
	return regs[f.NRegs-1]
}

// frameEnv returns f's own captured environment, creating it on first use
// so every closure (or ensure proc) made from f shares the same aliasing
// window into the live register stack until f returns.
func (s *State) frameEnv(f *Frame) *Env {
	if f.Env == nil {
		f.Env = &Env{
			Stack:    s.regs,
			Start:    f.Stackidx,
			Len:      f.NRegs,
			Cioff:    len(s.frames) - 1,
			MethodID: f.MID,
			Target:   f.Self,
			parent:   f.Outer,
			home:     f,
		}
	}
	return f.Env
}

// opLambda implements LAMBDA: build a Proc value closing over the current
// frame's environment. The current frame's Env is created lazily here (on
// first capture) and aliases the live register window until the frame
// returns.
func (s *State) opLambda(f *Frame, childIdx int) Value {
	child := f.Proc.Irep.Children[childIdx]
	p := &Proc{
		Irep:   child,
		Env:    s.frameEnv(f),
		Target: f.Target,
		Strict: false,
	}
	return ProcValue(p)
}
