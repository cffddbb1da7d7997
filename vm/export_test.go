package vm

// Exported wrappers around the unexported instruction encoders, for use
// by external (_test package) tests that need to hand-assemble bytecode
// without reimplementing the bit layout.

func EncodeABC(op Opcode, a, b, c int) uint32  { return encodeABC(op, a, b, c) }
func EncodeABx(op Opcode, a, bx int) uint32    { return encodeABx(op, a, bx) }
func EncodeAsBx(op Opcode, a, sbx int) uint32  { return encodeAsBx(op, a, sbx) }
func EncodeAx(op Opcode, ax int) uint32        { return encodeAx(op, ax) }
