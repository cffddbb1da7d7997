// Package refhost is a reference implementation of the vm.Host interface:
// a minimal class/object model with single inheritance, instance and class
// variables, and a symbol table, adequate to drive and test the core
// dispatch engine without pulling in a full standard library.
package refhost

import (
	"sync"

	"github.com/chazu/corevm/vm"
)

// symbolTable interns names to small integer ids, the same append-only,
// concurrent-read-friendly shape the rest of the project uses for name
// interning.
type symbolTable struct {
	mu     sync.RWMutex
	byName map[string]vm.Symbol
	byID   []string
}

func newSymbolTable() *symbolTable {
	return &symbolTable{
		byName: make(map[string]vm.Symbol, 256),
		byID:   make([]string, 0, 256),
	}
}

func (t *symbolTable) intern(name string) vm.Symbol {
	t.mu.RLock()
	if id, ok := t.byName[name]; ok {
		t.mu.RUnlock()
		return id
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.byName[name]; ok {
		return id
	}
	id := vm.Symbol(len(t.byID))
	t.byName[name] = id
	t.byID = append(t.byID, name)
	return id
}

func (t *symbolTable) name(id vm.Symbol) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(id) < 0 || int(id) >= len(t.byID) {
		return ""
	}
	return t.byID[id]
}
