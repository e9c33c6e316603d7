package rt

import "fmt"

// Incref takes an additional share of v and returns it. Nil is passed
// through so borrowed optional slots compose without checks.
func Incref(v *Value) *Value {
	if v == nil {
		return nil
	}
	if v.rc < 0 {
		rtPanic(CodeUseAfterFree, fmt.Sprintf("incref on freed %s value", v.Kind))
	}
	v.rc++
	return v
}

// Decref releases one share of v. When the count reaches zero the value's
// owned children are released recursively, registered weak holders are
// nulled, and the storage is poisoned so later misuse faults instead of
// corrupting memory. Decref of nil is a no-op.
func Decref(v *Value) {
	if v == nil {
		return
	}
	if v.rc < 0 {
		rtPanic(CodeUseAfterFree, fmt.Sprintf("decref on freed %s value", v.Kind))
	}
	if v.rc == 0 {
		rtPanic(CodeDoubleFree, fmt.Sprintf("decref past zero on %s value", v.Kind))
	}
	v.rc--
	if v.rc == 0 {
		free(v)
	}
}

func free(v *Value) {
	weakReap(v)

	switch v.Kind {
	case KArray:
		if v.Arr != nil {
			v.Arr.releaseAll()
			v.Arr = nil
		}
	case KHash:
		if v.Map != nil {
			v.Map.releaseAll()
			v.Map = nil
		}
	case KRef:
		// Weak references do not own their target.
		if v.meta == nil || !v.meta.Weak {
			Decref(v.Ref)
		}
		v.Ref = nil
	case KClosure:
		// Capture cells are borrowed indirections into enclosing storage;
		// the closure must not outlive them and never releases them.
		v.Fn = nil
	}

	v.Str = ""
	v.Bytes = nil
	v.opaque = nil
	noteFree(v.Kind)
	v.rc = -1
}
