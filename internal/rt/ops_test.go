package rt

import "testing"

func TestArithmeticIntFastPath(t *testing.T) {
	a, b := NewInt(7), NewInt(3)
	defer Decref(a)
	defer Decref(b)

	cases := []struct {
		name string
		got  *Value
		want int64
	}{
		{"add", Add(a, b), 10},
		{"sub", Sub(a, b), 4},
		{"mul", Mul(a, b), 21},
		{"mod", Mod(a, b), 1},
		{"neg", Neg(a), -7},
	}
	for _, tc := range cases {
		if tc.got.Kind != KInt {
			t.Errorf("%s: kind = %s, want int", tc.name, tc.got.Kind)
		}
		if tc.got.Int != tc.want {
			t.Errorf("%s = %d, want %d", tc.name, tc.got.Int, tc.want)
		}
		Decref(tc.got)
	}
}

func TestDivStaysIntOnlyWhenExact(t *testing.T) {
	a, b, c := NewInt(6), NewInt(3), NewInt(4)
	defer Decref(a)
	defer Decref(b)
	defer Decref(c)

	exact := Div(a, b)
	if exact.Kind != KInt || exact.Int != 2 {
		t.Fatalf("6/3 = %s %d", exact.Kind, exact.Int)
	}
	Decref(exact)

	inexact := Div(a, c)
	if inexact.Kind != KNum || inexact.Num != 1.5 {
		t.Fatalf("6/4 = %s %v", inexact.Kind, inexact.Num)
	}
	Decref(inexact)
}

func TestDivModByZeroYieldUndef(t *testing.T) {
	a, zero := NewInt(5), NewInt(0)
	defer Decref(a)
	defer Decref(zero)

	d := Div(a, zero)
	if !d.IsUndef() {
		t.Fatalf("5/0 = %s, want undef", d.Kind)
	}
	Decref(d)

	m := Mod(a, zero)
	if !m.IsUndef() {
		t.Fatalf("5%%0 = %s, want undef", m.Kind)
	}
	Decref(m)

	fzero := NewNum(0)
	defer Decref(fzero)
	fd := Div(a, fzero)
	if !fd.IsUndef() {
		t.Fatalf("5/0.0 = %s, want undef", fd.Kind)
	}
	Decref(fd)
}

func TestMixedArithmeticPromotesToNum(t *testing.T) {
	i, f := NewInt(2), NewNum(0.5)
	defer Decref(i)
	defer Decref(f)

	sum := Add(i, f)
	if sum.Kind != KNum || sum.Num != 2.5 {
		t.Fatalf("2 + 0.5 = %s %v", sum.Kind, sum.Num)
	}
	Decref(sum)
}

func TestCoercions(t *testing.T) {
	s := NewStr("42")
	if got := ToInt(s); got != 42 {
		t.Errorf("ToInt(%q) = %d", s.Str, got)
	}
	if got := ToNum(s); got != 42 {
		t.Errorf("ToNum(%q) = %v", s.Str, got)
	}
	Decref(s)

	junk := NewStr("not a number")
	if got := ToInt(junk); got != 0 {
		t.Errorf("ToInt(junk) = %d, want 0", got)
	}
	Decref(junk)

	trunc := NewNum(-3.9)
	if got := ToInt(trunc); got != -3 {
		t.Errorf("ToInt(-3.9) = %d, want -3 (truncate toward zero)", got)
	}
	Decref(trunc)

	huge := NewNum(1e300)
	if got := ToInt(huge); got != 0 {
		t.Errorf("ToInt(1e300) = %d, want 0", got)
	}
	Decref(huge)
}

func TestConcat(t *testing.T) {
	a, b := NewStr("foo"), NewInt(42)
	defer Decref(a)
	defer Decref(b)
	v := Concat(a, b)
	if v.Str != "foo42" {
		t.Fatalf("concat = %q", v.Str)
	}
	Decref(v)
}
