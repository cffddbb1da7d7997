package vm

import "testing"

func TestIntValueRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 42, MaxFixnum, MinFixnum}
	for _, n := range cases {
		v, ok := TryIntValue(n)
		if !ok {
			t.Fatalf("TryIntValue(%d): expected ok", n)
		}
		if !v.IsInt() {
			t.Fatalf("IntValue(%d).IsInt() = false", n)
		}
		if got := v.Int(); got != n {
			t.Errorf("IntValue(%d).Int() = %d", n, got)
		}
	}
}

func TestIntValueOverflow(t *testing.T) {
	if _, ok := TryIntValue(MaxFixnum + 1); ok {
		t.Error("expected overflow to be rejected")
	}
	if _, ok := TryIntValue(MinFixnum - 1); ok {
		t.Error("expected underflow to be rejected")
	}
}

func TestFloatValueRoundTrip(t *testing.T) {
	for _, f := range []float64{0, 1.5, -3.25, 1e10} {
		v := FloatValue(f)
		if !v.IsFloat() {
			t.Fatalf("FloatValue(%v).IsFloat() = false", f)
		}
		if got := v.Float(); got != f {
			t.Errorf("FloatValue(%v).Float() = %v", f, got)
		}
	}
}

func TestSymbolValueRoundTrip(t *testing.T) {
	v := SymbolValue(Symbol(99))
	if !v.IsSymbol() {
		t.Fatal("expected IsSymbol")
	}
	if got := v.Symbol(); got != 99 {
		t.Errorf("Symbol() = %d, want 99", got)
	}
}

func TestTruthiness(t *testing.T) {
	if Nil.IsTruthy() || False.IsTruthy() {
		t.Error("nil and false must be falsy")
	}
	if !True.IsTruthy() {
		t.Error("true must be truthy")
	}
	if v, _ := TryIntValue(0); !v.IsTruthy() {
		t.Error("integer 0 must be truthy")
	}
}

func TestDistinctTagsDontCollide(t *testing.T) {
	i, _ := TryIntValue(0)
	sym := SymbolValue(0)
	if i.IsSymbol() || sym.IsInt() {
		t.Error("tag spaces must not overlap")
	}
	if Nil.IsInt() || Nil.IsSymbol() || Nil.IsFloat() {
		t.Error("Nil must only be special")
	}
}
