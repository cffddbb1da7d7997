package refhost

import (
	"sync"

	"github.com/chazu/corevm/vm"
)

// Class is the reference object model's class/module representation:
// single-inheritance method dispatch with a flat method table per class
// (no separate vtable indirection — method lookup just walks Superclass),
// plus class-variable storage shared down the inheritance chain the way
// the language's cvars are specified to work.
type Class struct {
	header
	Name       string
	Superclass *Class
	IsModule   bool

	mu      sync.RWMutex
	methods map[vm.Symbol]*vm.Proc
	cvars   map[vm.Symbol]vm.Value
	consts  map[vm.Symbol]vm.Value

	singleton *Class // lazily created singleton (metaclass) for this value's own methods
}

// NewClass creates a named class inheriting from super (nil for a root
// class such as Object itself).
func NewClass(name string, super *Class) *Class {
	c := &Class{
		Name:       name,
		Superclass: super,
		methods:    make(map[vm.Symbol]*vm.Proc),
		cvars:      make(map[vm.Symbol]vm.Value),
		consts:     make(map[vm.Symbol]vm.Value),
	}
	c.kind = kindClass
	c.class = c // classes are their own class's instance in this reference model's simplified metaclass story
	return c
}

// NewModule creates a module: a class with no instances and no superclass
// link of its own (it only ever contributes methods via inclusion, which
// this reference host implements by copying method entries at Include
// time rather than modeling an ancestor chain with modules interleaved).
func NewModule(name string) *Class {
	c := NewClass(name, nil)
	c.IsModule = true
	return c
}

func (c *Class) Value() vm.Value { return box(&c.header) }

func asClass(v vm.Value) *Class { return (*Class)(v.HeapPtr()) }

// Include copies m's methods into c's own table as if c defined them
// directly, the simplest faithful rendering of mixin semantics for a
// reference host that doesn't need MRO-accurate diamond resolution.
func (c *Class) Include(m *Class) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, p := range m.methods {
		if _, exists := c.methods[name]; !exists {
			c.methods[name] = p
		}
	}
}

func (c *Class) DefineMethod(name vm.Symbol, p *vm.Proc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.methods[name] = p
}

// Lookup walks the superclass chain starting at c, returning the first
// method found for name and the class that defines it.
func (c *Class) Lookup(name vm.Symbol) (*vm.Proc, *Class, bool) {
	for cur := c; cur != nil; cur = cur.Superclass {
		cur.mu.RLock()
		p, ok := cur.methods[name]
		cur.mu.RUnlock()
		if ok {
			return p, cur, true
		}
	}
	return nil, nil, false
}

func (c *Class) GetCVar(name vm.Symbol) vm.Value {
	for cur := c; cur != nil; cur = cur.Superclass {
		cur.mu.RLock()
		v, ok := cur.cvars[name]
		cur.mu.RUnlock()
		if ok {
			return v
		}
	}
	return vm.Nil
}

func (c *Class) SetCVar(name vm.Symbol, v vm.Value) {
	for cur := c; cur != nil; cur = cur.Superclass {
		cur.mu.RLock()
		_, ok := cur.cvars[name]
		cur.mu.RUnlock()
		if ok {
			cur.mu.Lock()
			cur.cvars[name] = v
			cur.mu.Unlock()
			return
		}
	}
	c.mu.Lock()
	c.cvars[name] = v
	c.mu.Unlock()
}

func (c *Class) GetConst(name vm.Symbol) vm.Value {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.consts[name]; ok {
		return v
	}
	return vm.Nil
}

func (c *Class) SetConst(name vm.Symbol, v vm.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consts[name] = v
}

// SingletonClass returns c's metaclass, creating it on first use. Host.ClassOf
// does not return singleton classes, so a SEND to c does not find methods
// defined on its singleton; c's own class is c itself.
func (c *Class) SingletonClass() *Class {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.singleton == nil {
		name := "#<Class:" + c.Name + ">"
		sc := NewClass(name, c.Superclass)
		c.singleton = sc
	}
	return c.singleton
}
