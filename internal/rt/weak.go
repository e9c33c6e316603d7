package rt

import "sync"

// Process-wide weak reference registry. Maps a target to the weak holders
// that must be nulled when the target's refcount reaches zero.
var weakReg = struct {
	mu sync.Mutex
	m  map[*Value][]*Value
}{}

// NewWeak creates a weak reference to target. The reference never keeps the
// target alive; once the target is freed the holder reads as undef.
func NewWeak(target *Value) *Value {
	v := newValue(KRef)
	v.Meta().Weak = true
	if target == nil || target.rc <= 0 {
		return v
	}
	v.Ref = target

	weakReg.mu.Lock()
	if weakReg.m == nil {
		weakReg.m = make(map[*Value][]*Value)
	}
	weakReg.m[target] = append(weakReg.m[target], v)
	weakReg.mu.Unlock()
	return v
}

// Deref returns a share of the referenced value, or a fresh undef when the
// reference is weak and its target has been collected.
func (v *Value) Deref() *Value {
	if v == nil || v.Kind != KRef {
		rtPanic(CodeTypeMismatch, "deref of non-ref value")
	}
	if v.Ref == nil {
		return NewUndef()
	}
	return Incref(v.Ref)
}

// weakReap runs as part of free: it nulls every weak holder registered for
// the dying value, and unregisters the value if it is itself a weak holder.
func weakReap(v *Value) {
	weakReg.mu.Lock()
	defer weakReg.mu.Unlock()
	if weakReg.m == nil {
		return
	}

	if holders, ok := weakReg.m[v]; ok {
		for _, h := range holders {
			h.Ref = nil
		}
		delete(weakReg.m, v)
	}

	if v.Kind == KRef && v.meta != nil && v.meta.Weak && v.Ref != nil {
		holders := weakReg.m[v.Ref]
		n := 0
		for _, h := range holders {
			if h == v {
				continue
			}
			holders[n] = h
			n++
		}
		if n == 0 {
			delete(weakReg.m, v.Ref)
		} else {
			weakReg.m[v.Ref] = holders[:n]
		}
	}
}
