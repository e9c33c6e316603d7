package rt

// cloneCtx tracks already-copied nodes so cyclic graphs clone without
// looping and shared subtrees stay shared within the copy.
type cloneCtx struct {
	seen map[*Value]*Value
}

// Clone performs a deep duplication of v. Every node in the resulting graph
// starts at refcount 1, independent of the source. Closures copy their
// header but keep the same borrowed capture cells; opaque handles (futures,
// channels, atomics) are shared, since their lifetime is managed explicitly
// by their owner.
func Clone(v *Value) *Value {
	ctx := &cloneCtx{}
	return ctx.clone(v)
}

func (ctx *cloneCtx) clone(v *Value) *Value {
	if v == nil {
		return nil
	}
	if ctx.seen == nil {
		ctx.seen = make(map[*Value]*Value)
	}
	if dst, ok := ctx.seen[v]; ok {
		return Incref(dst)
	}

	dst := newValue(v.Kind)
	ctx.seen[v] = dst
	if v.meta != nil {
		m := *v.meta
		dst.meta = &m
	}

	switch v.Kind {
	case KUndef, KBool, KInt, KNum:
		dst.Int = v.Int
		dst.Num = v.Num
	case KStr:
		dst.Str = v.Str
	case KBytes:
		dst.Bytes = append([]byte(nil), v.Bytes...)
	case KArray:
		arr := &Array{}
		if v.Arr != nil {
			for i := v.Arr.head; i < len(v.Arr.elems); i++ {
				arr.Push(ctx.clone(v.Arr.elems[i]))
			}
		}
		dst.Arr = arr
	case KHash:
		m := &Hash{}
		if v.Map != nil {
			for _, b := range v.Map.buckets {
				for e := b; e != nil; e = e.next {
					m.Set(e.key, ctx.clone(e.val))
				}
			}
		}
		dst.Map = m
	case KRef:
		if v.meta != nil && v.meta.Weak {
			// A weak copy observes the same target without owning it.
			dst.meta.Weak = true
			if v.Ref != nil {
				dst.Ref = v.Ref
				weakReg.mu.Lock()
				if weakReg.m == nil {
					weakReg.m = make(map[*Value][]*Value)
				}
				weakReg.m[v.Ref] = append(weakReg.m[v.Ref], dst)
				weakReg.mu.Unlock()
			}
		} else {
			dst.Ref = ctx.clone(v.Ref)
		}
	case KClosure:
		dst.Fn = v.Fn
	case KFuture, KChannel, KAtomic, KHandle:
		dst.opaque = v.opaque
	}
	return dst
}
