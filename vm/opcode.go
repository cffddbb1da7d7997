package vm

// Instructions are fixed-width 32-bit words: a 7-bit opcode in the low
// bits followed by one of four operand layouts. Which layout applies is a
// property of the opcode, recorded with its mnemonic in opcodeTable below;
// the dispatch loop (State.step) does not consult the table and decodes
// each opcode's operands itself.
//
//	ABC:  opcode(7) | A(9) | B(9) | C(7)
//	ABx:  opcode(7) | A(9) | Bx(16)
//	AsBx: opcode(7) | A(9) | sBx(16, signed, bias 0x8000)
//	Ax:   opcode(7) | Ax(25)
//
// This is the same shape mruby's instruction set uses; ENTER/ARGARY
// further subdivide their Ax/Bx operand into bitfields, decoded in enter.go.
type Opcode byte

const (
	shiftOp  = 0
	shiftA   = 7
	shiftOpB = 16
	shiftC   = 25
	shiftBx  = 16
	shiftAx  = 7

	maskOp = 0x7F
	maskA  = 0x1FF
	maskB  = 0x1FF
	maskC  = 0x7F
	maskBx = 0xFFFF
	maskAx = 0x1FFFFFF

	sBxBias = 0x8000
)

func decodeOp(i uint32) Opcode { return Opcode(i & maskOp) }
func decodeA(i uint32) int     { return int((i >> shiftA) & maskA) }
func decodeB(i uint32) int     { return int((i >> shiftOpB) & maskB) }
func decodeC(i uint32) int     { return int((i >> shiftC) & maskC) }
func decodeBx(i uint32) int    { return int((i >> shiftBx) & maskBx) }
func decodeSBx(i uint32) int   { return decodeBx(i) - sBxBias }
func decodeAx(i uint32) int    { return int((i >> shiftAx) & maskAx) }

func encodeABC(op Opcode, a, b, c int) uint32 {
	return uint32(op)&maskOp | uint32(a&maskA)<<shiftA | uint32(b&maskB)<<shiftOpB | uint32(c&maskC)<<shiftC
}

func encodeABx(op Opcode, a, bx int) uint32 {
	return uint32(op)&maskOp | uint32(a&maskA)<<shiftA | uint32(bx&maskBx)<<shiftBx
}

func encodeAsBx(op Opcode, a, sbx int) uint32 {
	return encodeABx(op, a, sbx+sBxBias)
}

func encodeAx(op Opcode, ax int) uint32 {
	return uint32(op)&maskOp | uint32(ax&maskAx)<<shiftAx
}

// Opcodes. Grouped as in the spec: data movement, variable access,
// control flow, exception handling, calls, argument reconciliation,
// arithmetic fast paths, container literals, and class/module definition.
const (
	OpNop Opcode = iota
	OpMove
	OpLoadL
	OpLoadI
	OpLoadSym
	OpLoadNil
	OpLoadSelf
	OpLoadT
	OpLoadF

	OpGetGlobal
	OpSetGlobal
	OpGetSpecial
	OpSetSpecial
	OpGetIV
	OpSetIV
	OpGetCV
	OpSetCV
	OpGetConst
	OpSetConst
	OpGetMCnst
	OpSetMCnst
	OpGetUpvar
	OpSetUpvar

	OpJmp
	OpJmpIf
	OpJmpNot

	OpOnErr
	OpRescue
	OpPopErr
	OpRaise
	OpEPush
	OpEPop

	OpSend
	OpSuper
	OpTailCall
	OpCall
	OpFSend
	OpVSend

	OpArgAry
	OpEnter
	OpKArg
	OpKDict

	OpReturn
	OpBlkPush

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpAddI
	OpSubI
	OpEQ
	OpLT
	OpLE
	OpGT
	OpGE

	OpArray
	OpAryCat
	OpAryPush
	OpARef
	OpASet
	OpAPost
	OpString
	OpStrCat
	OpHash
	OpLambda
	OpRange

	OpOClass
	OpClass
	OpModule
	OpExec
	OpMethod
	OpSClass
	OpTClass

	OpDebug
	OpErr
	OpStop

	opcodeCount
)

// operandKind classifies an opcode's operand layout.
type operandKind byte

const (
	kindABC operandKind = iota
	kindABx
	kindAsBx
	kindAx
)

type opcodeInfo struct {
	Name string
	Kind operandKind
}

var opcodeTable = [opcodeCount]opcodeInfo{
	OpNop:      {"NOP", kindABC},
	OpMove:     {"MOVE", kindABC},
	OpLoadL:    {"LOADL", kindABx},
	OpLoadI:    {"LOADI", kindAsBx},
	OpLoadSym:  {"LOADSYM", kindABx},
	OpLoadNil:  {"LOADNIL", kindABC},
	OpLoadSelf: {"LOADSELF", kindABC},
	OpLoadT:    {"LOADT", kindABC},
	OpLoadF:    {"LOADF", kindABC},

	OpGetGlobal:  {"GETGLOBAL", kindABx},
	OpSetGlobal:  {"SETGLOBAL", kindABx},
	OpGetSpecial: {"GETSPECIAL", kindABx},
	OpSetSpecial: {"SETSPECIAL", kindABx},
	OpGetIV:      {"GETIV", kindABx},
	OpSetIV:      {"SETIV", kindABx},
	OpGetCV:      {"GETCV", kindABx},
	OpSetCV:      {"SETCV", kindABx},
	OpGetConst:   {"GETCONST", kindABx},
	OpSetConst:   {"SETCONST", kindABx},
	OpGetMCnst:   {"GETMCNST", kindABx},
	OpSetMCnst:   {"SETMCNST", kindABx},
	OpGetUpvar:   {"GETUPVAR", kindABC},
	OpSetUpvar:   {"SETUPVAR", kindABC},

	OpJmp:    {"JMP", kindAsBx},
	OpJmpIf:  {"JMPIF", kindAsBx},
	OpJmpNot: {"JMPNOT", kindAsBx},

	OpOnErr:  {"ONERR", kindAsBx},
	OpRescue: {"RESCUE", kindABC},
	OpPopErr: {"POPERR", kindABC},
	OpRaise:  {"RAISE", kindABC},
	OpEPush:  {"EPUSH", kindABx},
	OpEPop:   {"EPOP", kindABC},

	OpSend:     {"SEND", kindABC},
	OpSuper:    {"SUPER", kindABC},
	OpTailCall: {"TAILCALL", kindABC},
	OpCall:     {"CALL", kindABC},
	OpFSend:    {"FSEND", kindABC},
	OpVSend:    {"VSEND", kindABC},

	OpArgAry: {"ARGARY", kindABx},
	OpEnter:  {"ENTER", kindAx},
	OpKArg:   {"KARG", kindABC},
	OpKDict:  {"KDICT", kindABC},

	OpReturn:  {"RETURN", kindABC},
	OpBlkPush: {"BLKPUSH", kindABx},

	OpAdd:  {"ADD", kindABC},
	OpSub:  {"SUB", kindABC},
	OpMul:  {"MUL", kindABC},
	OpDiv:  {"DIV", kindABC},
	OpAddI: {"ADDI", kindABC},
	OpSubI: {"SUBI", kindABC},
	OpEQ:   {"EQ", kindABC},
	OpLT:   {"LT", kindABC},
	OpLE:   {"LE", kindABC},
	OpGT:   {"GT", kindABC},
	OpGE:   {"GE", kindABC},

	OpArray:   {"ARRAY", kindABC},
	OpAryCat:  {"ARYCAT", kindABC},
	OpAryPush: {"ARYPUSH", kindABC},
	OpARef:    {"AREF", kindABC},
	OpASet:    {"ASET", kindABC},
	OpAPost:   {"APOST", kindABC},
	OpString:  {"STRING", kindABx},
	OpStrCat:  {"STRCAT", kindABC},
	OpHash:    {"HASH", kindABC},
	OpLambda:  {"LAMBDA", kindABx},
	OpRange:   {"RANGE", kindABC},

	OpOClass: {"OCLASS", kindABC},
	OpClass:  {"CLASS", kindABx},
	OpModule: {"MODULE", kindABx},
	OpExec:   {"EXEC", kindABx},
	OpMethod: {"METHOD", kindABx},
	OpSClass: {"SCLASS", kindABC},
	OpTClass: {"TCLASS", kindABC},

	OpDebug: {"DEBUG", kindABC},
	OpErr:   {"ERR", kindABx},
	OpStop:  {"STOP", kindABC},
}

// RETURN's C operand selects how the return value propagates.
const (
	ReturnNormal = iota // ordinary method/block return
	ReturnBreak         // break out of the block's home loop/method
	ReturnRaise         // value is an exception object mid-unwind
)
