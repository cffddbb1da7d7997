package vm

// opArith implements the fast-path arithmetic and comparison opcodes the
// compiler emits instead of a full SEND when it can prove the receiver is
// likely numeric: ADD/SUB/MUL/DIV operate on two registers, ADDI/SUBI take
// an immediate in C, and EQ/LT/LE/GT/GE leave a boolean in A. Any operand
// pair the fast path doesn't understand (e.g. a user-defined numeric type)
// falls back to an ordinary Funcall against the operator's method name,
// exactly as if the compiler had emitted SEND.
func (s *State) opArith(f *Frame, op Opcode, instr uint32) error {
	a, b, c := decodeA(instr), decodeB(instr), decodeC(instr)
	regs := f.regs(s)
	lhs := regs[a]

	var rhs Value
	var immediate int64
	useImmediate := op == OpAddI || op == OpSubI
	if useImmediate {
		immediate = int64(c)
	} else {
		rhs = regs[b]
	}

	switch op {
	case OpAdd:
		if v, ok := numAdd(lhs, rhs); ok {
			regs[a] = v
			f.PC++
			return nil
		}
	case OpSub:
		if v, ok := numSub(lhs, rhs); ok {
			regs[a] = v
			f.PC++
			return nil
		}
	case OpMul:
		if v, ok := numMul(lhs, rhs); ok {
			regs[a] = v
			f.PC++
			return nil
		}
	case OpDiv:
		if v, ok := numDiv(lhs, rhs); ok {
			regs[a] = v
			f.PC++
			return nil
		}
	case OpAddI:
		if v, ok := numAdd(lhs, IntValue(immediate)); ok {
			regs[a] = v
			f.PC++
			return nil
		}
	case OpSubI:
		if v, ok := numSub(lhs, IntValue(immediate)); ok {
			regs[a] = v
			f.PC++
			return nil
		}
	case OpEQ:
		if v, ok := numEq(lhs, rhs); ok {
			regs[a] = BoolValue(v)
			f.PC++
			return nil
		}
	case OpLT, OpLE, OpGT, OpGE:
		if v, ok := numCompare(op, lhs, rhs); ok {
			regs[a] = BoolValue(v)
			f.PC++
			return nil
		}
	}

	name := opMethodName(op)
	argv := []Value{rhs}
	if useImmediate {
		argv = []Value{IntValue(immediate)}
	}
	result, err := s.Funcall(lhs, s.Host.Intern(name), argv, Nil)
	if err != nil {
		return err
	}
	regs[a] = result
	f.PC++
	return nil
}

func opMethodName(op Opcode) string {
	switch op {
	case OpAdd, OpAddI:
		return "+"
	case OpSub, OpSubI:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpEQ:
		return "=="
	case OpLT:
		return "<"
	case OpLE:
		return "<="
	case OpGT:
		return ">"
	case OpGE:
		return ">="
	default:
		return "?"
	}
}

func numAdd(a, b Value) (Value, bool) {
	if a.IsInt() && b.IsInt() {
		if v, ok := TryIntValue(a.Int() + b.Int()); ok {
			return v, true
		}
		return Nil, false
	}
	if isNumeric(a) && isNumeric(b) {
		return FloatValue(asFloat(a) + asFloat(b)), true
	}
	return Nil, false
}

func numSub(a, b Value) (Value, bool) {
	if a.IsInt() && b.IsInt() {
		if v, ok := TryIntValue(a.Int() - b.Int()); ok {
			return v, true
		}
		return Nil, false
	}
	if isNumeric(a) && isNumeric(b) {
		return FloatValue(asFloat(a) - asFloat(b)), true
	}
	return Nil, false
}

func numMul(a, b Value) (Value, bool) {
	if a.IsInt() && b.IsInt() {
		if v, ok := TryIntValue(a.Int() * b.Int()); ok {
			return v, true
		}
		return Nil, false
	}
	if isNumeric(a) && isNumeric(b) {
		return FloatValue(asFloat(a) * asFloat(b)), true
	}
	return Nil, false
}

func numDiv(a, b Value) (Value, bool) {
	if !isNumeric(a) || !isNumeric(b) {
		return Nil, false
	}
	return FloatValue(asFloat(a) / asFloat(b)), true
}

func numEq(a, b Value) (bool, bool) {
	if isNumeric(a) && isNumeric(b) {
		return asFloat(a) == asFloat(b), true
	}
	return false, false
}

func numCompare(op Opcode, a, b Value) (bool, bool) {
	if !isNumeric(a) || !isNumeric(b) {
		return false, false
	}
	x, y := asFloat(a), asFloat(b)
	switch op {
	case OpLT:
		return x < y, true
	case OpLE:
		return x <= y, true
	case OpGT:
		return x > y, true
	case OpGE:
		return x >= y, true
	}
	return false, false
}

func isNumeric(v Value) bool { return v.IsInt() || v.IsFloat() }

func asFloat(v Value) float64 {
	if v.IsInt() {
		return float64(v.Int())
	}
	return v.Float()
}
