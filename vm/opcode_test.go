package vm

import "testing"

func TestEncodeDecodeABC(t *testing.T) {
	i := encodeABC(OpMove, 100, 200, 50)
	if decodeOp(i) != OpMove {
		t.Fatalf("op = %v, want OpMove", decodeOp(i))
	}
	if decodeA(i) != 100 || decodeB(i) != 200 || decodeC(i) != 50 {
		t.Errorf("decoded (%d,%d,%d), want (100,200,50)", decodeA(i), decodeB(i), decodeC(i))
	}
}

func TestEncodeDecodeABx(t *testing.T) {
	i := encodeABx(OpLoadL, 5, 60000)
	if decodeA(i) != 5 || decodeBx(i) != 60000 {
		t.Errorf("decoded (%d,%d), want (5,60000)", decodeA(i), decodeBx(i))
	}
}

func TestEncodeDecodeSBx(t *testing.T) {
	for _, sbx := range []int{0, 1, -1, 1000, -1000, 32767, -32768} {
		i := encodeAsBx(OpJmp, 0, sbx)
		if got := decodeSBx(i); got != sbx {
			t.Errorf("sBx round trip: got %d, want %d", got, sbx)
		}
	}
}

func TestEncodeDecodeAx(t *testing.T) {
	i := encodeAx(OpEnter, 0x1ABCDEF&maskAx)
	if got := decodeAx(i); got != 0x1ABCDEF&maskAx {
		t.Errorf("Ax round trip: got %#x, want %#x", got, 0x1ABCDEF&maskAx)
	}
}

func TestArgSpecDecode(t *testing.T) {
	spec := ArgSpec{Req1: 2, Opt: 1, Rest: true, Req2: 1, Block: true}
	ax := 0
	ax |= spec.Req1 << shiftM1
	ax |= spec.Opt << shiftO
	ax |= 1 << shiftR
	ax |= spec.Req2 << shiftM2
	ax |= 1 << shiftB

	got := decodeArgSpec(ax)
	if got != spec {
		t.Errorf("decodeArgSpec = %+v, want %+v", got, spec)
	}
}

func TestArgSpecTotal(t *testing.T) {
	min, max := ArgSpec{Req1: 1, Req2: 1, Opt: 2}.Total()
	if min != 2 || max != 4 {
		t.Errorf("Total() = (%d,%d), want (2,4)", min, max)
	}
	min, max = ArgSpec{Req1: 1, Rest: true}.Total()
	if min != 1 || max != -1 {
		t.Errorf("Total() with rest = (%d,%d), want (1,-1)", min, max)
	}
}
