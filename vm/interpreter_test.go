package vm_test

import (
	"testing"

	"github.com/chazu/corevm/refhost"
	"github.com/chazu/corevm/vm"
)

func newTestState(host *refhost.Host) *vm.State {
	return vm.NewState(host, vm.Config{InitialRegs: 64, InitialFrames: 8, MaxFrames: 64})
}

func TestIntegerAdd(t *testing.T) {
	host := refhost.NewHost()
	s := newTestState(host)

	ir := &vm.Irep{
		NumRegs: 4,
		Code: []uint32{
			asBx(vm.OpLoadI, 1, 5),
			asBx(vm.OpLoadI, 2, 7),
			abc(vm.OpAdd, 1, 2, 0),
			abc(vm.OpReturn, 1, 0, vm.ReturnNormal),
		},
	}
	p := &vm.Proc{Irep: ir}

	result, err := s.Run(p, vm.Nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := result.Int(); got != 12 {
		t.Errorf("result = %d, want 12", got)
	}
}

func TestArityErrorOnStrictProc(t *testing.T) {
	host := refhost.NewHost()
	s := newTestState(host)

	ir := &vm.Irep{
		NumRegs: 4,
		ArgSpec: vm.ArgSpec{Req1: 2},
		Code: []uint32{
			abc(vm.OpReturn, 0, 0, vm.ReturnNormal),
		},
	}
	p := &vm.Proc{Irep: ir, Strict: true}

	_, err := s.Run(p, vm.Nil)
	if _, ok := err.(*vm.ArgumentError); !ok {
		t.Fatalf("err = %v (%T), want *vm.ArgumentError", err, err)
	}
	if want := "wrong number of arguments (0 for 2)"; err.Error() != want {
		t.Errorf("err.Error() = %q, want %q", err.Error(), want)
	}
}

// TestRescue raises a value from inside an ONERR-protected region and
// checks that RESCUE observes it.
func TestRescue(t *testing.T) {
	host := refhost.NewHost()
	s := newTestState(host)

	ir := &vm.Irep{
		NumRegs: 4,
		Code: []uint32{
			asBx(vm.OpOnErr, 0, 4), // 0: protect, target = 0+4 = 4
			asBx(vm.OpLoadI, 1, 1), // 1: r1 = 1
			abc(vm.OpRaise, 1, 0, 0), // 2: raise r1
			abc(vm.OpNop, 0, 0, 0),   // 3: unreached filler
			abc(vm.OpRescue, 2, 1, 0), // 4: r2 = pending, clear
			abc(vm.OpReturn, 2, 0, vm.ReturnNormal), // 5
		},
	}
	p := &vm.Proc{Irep: ir}

	result, err := s.Run(p, vm.Nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := result.Int(); got != 1 {
		t.Errorf("rescued value = %d, want 1", got)
	}
}

// TestEnsureRunsOnNormalReturn verifies an EPUSHed ensure procedure fires
// when its owning frame returns normally.
func TestEnsureRunsOnNormalReturn(t *testing.T) {
	host := refhost.NewHost()
	s := newTestState(host)
	flag := host.Intern("ensured")

	ensureBody := &vm.Irep{
		NumRegs: 1,
		Syms:    []vm.Symbol{flag},
		Code: []uint32{
			abc(vm.OpLoadT, 0, 0, 0),
			abx(vm.OpSetGlobal, 0, 0),
			abc(vm.OpReturn, 0, 0, vm.ReturnNormal),
		},
	}
	ir := &vm.Irep{
		NumRegs:  2,
		Children: []*vm.Irep{ensureBody},
		Code: []uint32{
			abx(vm.OpEPush, 0, 0),
			asBx(vm.OpLoadI, 1, 42),
			abc(vm.OpReturn, 1, 0, vm.ReturnNormal),
		},
	}
	p := &vm.Proc{Irep: ir}

	result, err := s.Run(p, vm.Nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := result.Int(); got != 42 {
		t.Errorf("result = %d, want 42", got)
	}
	if host.GetGlobal(flag) != vm.True {
		t.Error("ensure body did not run")
	}
}

// TestTailCallBoundsFrameDepth drives a self-recursive method entirely
// through TAILCALL and checks it completes even with a frame-stack
// ceiling far below the iteration count, proving TAILCALL replaces the
// current frame instead of growing the stack.
func TestTailCallBoundsFrameDepth(t *testing.T) {
	host := refhost.NewHost()
	object := host.Classes()["Object"]
	counter := refhost.NewClass("Counter", object)
	loop := host.Intern("loop")

	ir := &vm.Irep{
		NumRegs: 6,
		Syms:    []vm.Symbol{loop},
		Code: []uint32{
			asBx(vm.OpLoadI, 4, 0),        // 0: r4 = 0
			abc(vm.OpMove, 5, 1, 0),       // 1: r5 = r1 (copy counter)
			abc(vm.OpEQ, 5, 4, 0),         // 2: r5 = (r5 == r4)
			asBx(vm.OpJmpIf, 5, 3),        // 3: if r5 goto 6
			abc(vm.OpSubI, 1, 0, 1),       // 4: r1 -= 1
			abc(vm.OpTailCall, 0, 0, 1),   // 5: tailcall self.loop(r1)
			abc(vm.OpReturn, 1, 0, vm.ReturnNormal), // 6
		},
	}
	p := &vm.Proc{Irep: ir, Name: loop}
	counter.DefineMethod(loop, p)

	self := refhost.NewObject(counter).Value()
	s := vm.NewState(host, vm.Config{InitialRegs: 64, InitialFrames: 4, MaxFrames: 4})

	start, _ := vm.TryIntValue(50000)
	result, err := s.Funcall(self, loop, []vm.Value{start}, vm.Nil)
	if err != nil {
		t.Fatalf("Funcall: %v", err)
	}
	if got := result.Int(); got != 0 {
		t.Errorf("result = %d, want 0", got)
	}
}

// --- small instruction-building helpers local to this test file ---

func abc(op vm.Opcode, a, b, c int) uint32 { return vm.EncodeABC(op, a, b, c) }
func abx(op vm.Opcode, a, bx int) uint32   { return vm.EncodeABx(op, a, bx) }
func asBx(op vm.Opcode, a, sbx int) uint32 { return vm.EncodeAsBx(op, a, sbx) }
