// Package vm implements the register-based bytecode execution core of a
// small dynamically-typed, Ruby-like language: value representation,
// operand/frame stacks, closures over captured environments, and the
// opcode dispatch engine including the call/return protocol and the
// exception/ensure unwind machinery.
//
// It deliberately does not implement a compiler, a garbage collector, the
// built-in classes (Array, Hash, String, Range, numerics), or method
// resolution: those are the responsibility of a Host implementation
// supplied by the embedding. See host.go for the collaborator interface,
// and the refhost package for a reference implementation used by this
// package's own tests.
package vm
