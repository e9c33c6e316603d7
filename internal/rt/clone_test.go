package rt

import "testing"

func TestCloneIsDeepAndIndependent(t *testing.T) {
	src := NewArray()
	src.Arr.Push(NewInt(1))
	inner := NewHash()
	inner.Map.Set("k", NewStr("v"))
	src.Arr.Push(inner)

	dup := Clone(src)
	if dup == src {
		t.Fatal("clone aliases the source")
	}
	if dup.Refcount() != 1 {
		t.Fatalf("clone rc = %d, want 1", dup.Refcount())
	}

	// Mutating the copy leaves the source untouched.
	dup.Arr.Set(0, NewInt(99))
	orig := src.Arr.Get(0)
	if orig.Int != 1 {
		t.Fatalf("source mutated through clone: %d", orig.Int)
	}
	Decref(orig)

	dupInner := dup.Arr.Get(1)
	if dupInner == inner {
		t.Fatal("nested container shared with source")
	}
	v := dupInner.Map.Get("k")
	if v.Str != "v" {
		t.Fatalf("nested value = %q", v.Str)
	}
	Decref(v)
	Decref(dupInner)

	Decref(dup)
	Decref(src)
}

func TestCloneEveryNodeStartsAtOne(t *testing.T) {
	shared := NewStr("shared")
	src := NewArray(shared, shared) // shared has rc 3 in the source graph
	Decref(shared)

	dup := Clone(src)
	a := dup.Arr.Get(0)
	b := dup.Arr.Get(1)
	if a != b {
		t.Fatal("shared subtree not shared within the copy")
	}
	// Two container shares plus our two Get shares.
	if a.Refcount() != 4 {
		t.Fatalf("shared clone rc = %d, want 4", a.Refcount())
	}
	Decref(a)
	Decref(b)
	Decref(dup)
	Decref(src)
}

func TestCloneTerminatesOnCycles(t *testing.T) {
	src := NewArray()
	src.Arr.Push(NewRef(src)) // self cycle through a strong ref

	dup := Clone(src)
	ref := dup.Arr.Get(0)
	target := ref.Deref()
	if target != dup {
		t.Fatal("cycle not preserved within the copy")
	}
	Decref(target)
	Decref(ref)

	// Break both cycles manually: Decref of the root releases the ref
	// element, which in turn drops its share of the root.
	srcRef := src.Arr.Splice(0, 1)
	Decref(srcRef[0])
	Decref(src)
	dupRef := dup.Arr.Splice(0, 1)
	Decref(dupRef[0])
	Decref(dup)
}

func TestCloneClosureSharesCells(t *testing.T) {
	u := NewUnwinder()
	cell := NewCell(NewInt(1))
	src := NewClosureVal(NewClosure(func(u *Unwinder, c *Closure, args []*Value) *Value {
		return c.Cell(0).Get()
	}, 0, cell))

	dup := Clone(src)
	cell.Set(NewInt(42))
	got := dup.Fn.Call(u)
	if got.Int != 42 {
		t.Fatalf("cloned closure lost its capture, got %d", got.Int)
	}
	Decref(got)
	Decref(dup)
	Decref(src)
	cell.Release()
}
