package rt

// Array is a growable sequence of owned values. A head offset makes
// pop-front O(1): Shift advances head instead of moving memory, and the
// backing slice is compacted once the dead prefix dominates.
type Array struct {
	elems []*Value
	head  int
}

// Len returns the number of live elements.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.elems) - a.head
}

// Push appends v to the tail, taking ownership.
func (a *Array) Push(v *Value) {
	a.elems = append(a.elems, v)
}

// Pop removes and returns the tail element, transferring ownership to the
// caller. Returns nil on an empty array.
func (a *Array) Pop() *Value {
	if a.Len() == 0 {
		return nil
	}
	last := len(a.elems) - 1
	v := a.elems[last]
	a.elems[last] = nil
	a.elems = a.elems[:last]
	return v
}

// Shift removes and returns the head element, transferring ownership to the
// caller. Returns nil on an empty array.
func (a *Array) Shift() *Value {
	if a.Len() == 0 {
		return nil
	}
	v := a.elems[a.head]
	a.elems[a.head] = nil
	a.head++
	if a.head >= len(a.elems) {
		a.elems = nil
		a.head = 0
	} else if a.head > 128 && a.head*2 >= len(a.elems) {
		remaining := append([]*Value(nil), a.elems[a.head:]...)
		a.elems = remaining
		a.head = 0
	}
	return v
}

// Unshift prepends v, taking ownership.
func (a *Array) Unshift(v *Value) {
	if a.head > 0 {
		a.head--
		a.elems[a.head] = v
		return
	}
	a.elems = append(a.elems, nil)
	copy(a.elems[1:], a.elems)
	a.elems[0] = v
}

// Get returns a share of the element at index i. Negative indices count from
// the end; out-of-range reads clamp to the nearest valid index. An empty
// array yields undef.
func (a *Array) Get(i int) *Value {
	n := a.Len()
	if n == 0 {
		return NewUndef()
	}
	return Incref(a.elems[a.head+clampIndex(i, n)])
}

// Set stores v (taking ownership) at index i, releasing any previous
// element. Negative indices count from the end. Setting past the tail
// extends the array with undef padding.
func (a *Array) Set(i int, v *Value) {
	n := a.Len()
	if i < 0 {
		i += n
		if i < 0 {
			i = 0
		}
	}
	for i >= a.Len() {
		a.Push(NewUndef())
	}
	idx := a.head + i
	Decref(a.elems[idx])
	a.elems[idx] = v
}

// Slice returns a new array of shares for the half-open range [from, to).
// Negative bounds count from the end; out-of-range bounds clamp.
func (a *Array) Slice(from, to int) *Array {
	n := a.Len()
	from, to = clampRange(from, to, n)
	out := &Array{}
	for i := from; i < to; i++ {
		out.Push(Incref(a.elems[a.head+i]))
	}
	return out
}

// Splice removes the half-open range [from, to), inserting repl (ownership
// of each replacement passes to the array) in its place. The removed
// elements are returned with ownership transferred to the caller.
func (a *Array) Splice(from, to int, repl ...*Value) []*Value {
	n := a.Len()
	from, to = clampRange(from, to, n)

	removed := make([]*Value, 0, to-from)
	for i := from; i < to; i++ {
		removed = append(removed, a.elems[a.head+i])
	}

	tail := append([]*Value(nil), a.elems[a.head+to:]...)
	a.elems = a.elems[:a.head+from]
	a.elems = append(a.elems, repl...)
	a.elems = append(a.elems, tail...)
	return removed
}

// releaseAll drops ownership of every element. Used when the owning value
// is freed.
func (a *Array) releaseAll() {
	for i := a.head; i < len(a.elems); i++ {
		Decref(a.elems[i])
		a.elems[i] = nil
	}
	a.elems = nil
	a.head = 0
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func clampRange(from, to, n int) (int, int) {
	if from < 0 {
		from += n
	}
	if to < 0 {
		to += n
	}
	if from < 0 {
		from = 0
	}
	if from > n {
		from = n
	}
	if to < 0 {
		to = 0
	}
	if to > n {
		to = n
	}
	if to < from {
		to = from
	}
	return from, to
}
