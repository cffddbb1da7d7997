package vm_test

import (
	"testing"

	"github.com/chazu/corevm/refhost"
	"github.com/chazu/corevm/vm"
)

// TestSendDispatchesAndReturnsToCaller drives an actual OP_SEND instruction
// (not State.Funcall) and checks that its RETURN hands the callee's value
// back into the caller's own register A, per the call/return round-trip.
func TestSendDispatchesAndReturnsToCaller(t *testing.T) {
	host := refhost.NewHost()
	object := host.Classes()["Object"]
	class := refhost.NewClass("Greeter", object)
	greet := host.Intern("greet")
	drive := host.Intern("drive")

	greetIrep := &vm.Irep{
		NumRegs: 2,
		Code: []uint32{
			asBx(vm.OpLoadI, 1, 5),
			abc(vm.OpReturn, 1, 0, vm.ReturnNormal),
		},
	}
	driveIrep := &vm.Irep{
		NumRegs: 2,
		Syms:    []vm.Symbol{greet},
		Code: []uint32{
			abc(vm.OpSend, 0, 0, 0),                 // 0: r0 = self.greet
			abc(vm.OpReturn, 0, 0, vm.ReturnNormal), // 1
		},
	}
	class.DefineMethod(greet, &vm.Proc{Irep: greetIrep, Name: greet, Strict: false})
	class.DefineMethod(drive, &vm.Proc{Irep: driveIrep, Name: drive, Strict: false})
	self := refhost.NewObject(class).Value()

	s := vm.NewState(host, vm.Config{InitialRegs: 64, InitialFrames: 8, MaxFrames: 64})
	result, err := s.Funcall(self, drive, nil, vm.Nil)
	if err != nil {
		t.Fatalf("Funcall(drive): %v", err)
	}
	if got := result.Int(); got != 5 {
		t.Errorf("result = %d, want 5", got)
	}
}

// TestSuperDispatchesToSuperclassMethod drives an actual OP_SUPER
// instruction, checking it resolves against the superclass of the
// defining class rather than the receiver's own (identical) class.
func TestSuperDispatchesToSuperclassMethod(t *testing.T) {
	host := refhost.NewHost()
	object := host.Classes()["Object"]
	animal := refhost.NewClass("Animal", object)
	dog := refhost.NewClass("Dog", animal)
	speak := host.Intern("speak")

	animalSpeak := &vm.Irep{
		NumRegs: 2,
		Code: []uint32{
			asBx(vm.OpLoadI, 1, 1),
			abc(vm.OpReturn, 1, 0, vm.ReturnNormal),
		},
	}
	dogSpeak := &vm.Irep{
		NumRegs: 3,
		Code: []uint32{
			abc(vm.OpSuper, 0, 0, 0),                // 0: r0 = super()
			asBx(vm.OpLoadI, 2, 10),                 // 1: r2 = 10
			abc(vm.OpAdd, 0, 2, 0),                  // 2: r0 += r2
			abc(vm.OpReturn, 0, 0, vm.ReturnNormal), // 3
		},
	}
	animal.DefineMethod(speak, &vm.Proc{Irep: animalSpeak, Name: speak, Strict: false})
	dog.DefineMethod(speak, &vm.Proc{Irep: dogSpeak, Name: speak, Strict: false})
	self := refhost.NewObject(dog).Value()

	s := vm.NewState(host, vm.Config{InitialRegs: 64, InitialFrames: 8, MaxFrames: 64})
	result, err := s.Funcall(self, speak, nil, vm.Nil)
	if err != nil {
		t.Fatalf("Funcall(speak): %v", err)
	}
	if got := result.Int(); got != 11 {
		t.Errorf("result = %d, want 11", got)
	}
}

// TestCallInvokesProcInRegisterZero drives an actual OP_CALL instruction
// against a Proc value built by LAMBDA, the Proc#call / re-entrant block
// path that bypasses method search entirely.
func TestCallInvokesProcInRegisterZero(t *testing.T) {
	host := refhost.NewHost()
	object := host.Classes()["Object"]
	class := refhost.NewClass("Caller", object)
	run := host.Intern("run")

	block := &vm.Irep{
		NumRegs: 2,
		Code: []uint32{
			asBx(vm.OpLoadI, 1, 42),
			abc(vm.OpReturn, 1, 0, vm.ReturnNormal),
		},
	}
	runIrep := &vm.Irep{
		NumRegs:  3,
		Children: []*vm.Irep{block},
		Code: []uint32{
			abx(vm.OpLambda, 0, 0),                  // 0: r0 = proc over block
			abc(vm.OpCall, 0, 0, 0),                 // 1: r0 = r0.call()
			abc(vm.OpReturn, 0, 0, vm.ReturnNormal), // 2
		},
	}
	class.DefineMethod(run, &vm.Proc{Irep: runIrep, Name: run, Strict: false})
	self := refhost.NewObject(class).Value()

	s := vm.NewState(host, vm.Config{InitialRegs: 64, InitialFrames: 8, MaxFrames: 64})
	result, err := s.Funcall(self, run, nil, vm.Nil)
	if err != nil {
		t.Fatalf("Funcall(run): %v", err)
	}
	if got := result.Int(); got != 42 {
		t.Errorf("result = %d, want 42", got)
	}
}
