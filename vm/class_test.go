package vm_test

import (
	"testing"

	"github.com/chazu/corevm/refhost"
	"github.com/chazu/corevm/vm"
)

// TestClassOpcodeUsesSuperclassRegister drives an actual OP_CLASS
// instruction and checks the new class's superclass comes from R(A+1),
// not from misreading CLASS's Bx symbol-index operand as a register.
func TestClassOpcodeUsesSuperclassRegister(t *testing.T) {
	host := refhost.NewHost()
	object := host.Classes()["Object"]
	animal := refhost.NewClass("Animal", object)
	widget := host.Intern("Widget")

	ir := &vm.Irep{
		NumRegs: 3,
		Pool:    []vm.Value{animal.Value()},
		Syms:    []vm.Symbol{widget},
		Code: []uint32{
			abc(vm.OpOClass, 0, 0, 0),               // 0: r0 = Object
			abx(vm.OpLoadL, 1, 0),                   // 1: r1 = Animal (superclass)
			abx(vm.OpClass, 0, 0),                   // 2: r0 = newclass(r0, Syms[0], r1)
			abc(vm.OpReturn, 0, 0, vm.ReturnNormal), // 3
		},
	}

	s := vm.NewState(host, vm.Config{InitialRegs: 64, InitialFrames: 8, MaxFrames: 64})
	result, err := s.Run(&vm.Proc{Irep: ir}, vm.Nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	super, ok := host.SuperclassOf(result)
	if !ok {
		t.Fatal("new class has no superclass")
	}
	if super != animal.Value() {
		t.Error("new class's superclass is not Animal; CLASS did not read R(A+1)")
	}
}

// TestSetMCnstWritesToRegisterAPlusOne drives an actual OP_SETMCNST
// instruction and checks it writes the constant onto the class held in
// R(A+1), reading the value to store from R(A).
func TestSetMCnstWritesToRegisterAPlusOne(t *testing.T) {
	host := refhost.NewHost()
	object := host.Classes()["Object"]
	target := refhost.NewClass("Config", object)
	limit := host.Intern("LIMIT")

	ir := &vm.Irep{
		NumRegs: 2,
		Pool:    []vm.Value{target.Value()},
		Syms:    []vm.Symbol{limit},
		Code: []uint32{
			asBx(vm.OpLoadI, 0, 123),                // 0: r0 = 123 (value to store)
			abx(vm.OpLoadL, 1, 0),                   // 1: r1 = Config (the module/class)
			abx(vm.OpSetMCnst, 0, 0),                // 2: r1::Syms[0] = r0
			abc(vm.OpReturn, 0, 0, vm.ReturnNormal), // 3
		},
	}

	s := vm.NewState(host, vm.Config{InitialRegs: 64, InitialFrames: 8, MaxFrames: 64})
	_, err := s.Run(&vm.Proc{Irep: ir}, vm.Nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := host.GetModuleConst(target.Value(), limit)
	if got.Int() != 123 {
		t.Errorf("Config::LIMIT = %d, want 123", got.Int())
	}
}

// TestMethodOpcodeInstallsProcFromRegisterAPlusOne drives an actual
// OP_METHOD instruction and checks it installs the Proc value held in
// R(A+1) as the method named by Syms[Bx] on the class in R(A).
func TestMethodOpcodeInstallsProcFromRegisterAPlusOne(t *testing.T) {
	host := refhost.NewHost()
	answer := host.Intern("answer")

	body := &vm.Irep{
		NumRegs: 2,
		Code: []uint32{
			asBx(vm.OpLoadI, 1, 77),
			abc(vm.OpReturn, 1, 0, vm.ReturnNormal),
		},
	}
	ir := &vm.Irep{
		NumRegs:  2,
		Children: []*vm.Irep{body},
		Syms:     []vm.Symbol{answer},
		Code: []uint32{
			abc(vm.OpOClass, 0, 0, 0),                // 0: r0 = Object
			abx(vm.OpLambda, 1, 0),                   // 1: r1 = proc over body
			abx(vm.OpMethod, 0, 0),                   // 2: install r1 as Object#answer
			abc(vm.OpReturn, 0, 0, vm.ReturnNormal),  // 3
		},
	}

	s := vm.NewState(host, vm.Config{InitialRegs: 64, InitialFrames: 8, MaxFrames: 64})
	_, err := s.Run(&vm.Proc{Irep: ir}, vm.Nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	self := refhost.NewObject(host.Classes()["Object"]).Value()
	result, err := s.Funcall(self, answer, nil, vm.Nil)
	if err != nil {
		t.Fatalf("Funcall(answer): %v", err)
	}
	if got := result.Int(); got != 77 {
		t.Errorf("result = %d, want 77", got)
	}
}
