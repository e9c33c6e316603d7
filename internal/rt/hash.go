package rt

const (
	hashInitBuckets = 8
	hashMaxLoad     = 4 // average chain length before rehash
)

type hashEntry struct {
	key  string
	val  *Value
	next *hashEntry
}

// Hash is an open-hashed map of owned values keyed by string. Insertion
// order is not preserved. The embedded iteration cursor backs Each-style
// traversal; mutating the hash while an iteration is active is a documented
// hazard, not a supported operation.
type Hash struct {
	buckets []*hashEntry
	n       int

	iterBucket int
	iterEntry  *hashEntry
}

// Len returns the number of entries.
func (h *Hash) Len() int {
	if h == nil {
		return 0
	}
	return h.n
}

// Get returns a share of the value stored for key, or undef when absent.
func (h *Hash) Get(key string) *Value {
	if h.n == 0 {
		return NewUndef()
	}
	for e := h.buckets[h.bucketFor(key)]; e != nil; e = e.next {
		if e.key == key {
			return Incref(e.val)
		}
	}
	return NewUndef()
}

// Exists reports whether key has an entry.
func (h *Hash) Exists(key string) bool {
	if h.n == 0 {
		return false
	}
	for e := h.buckets[h.bucketFor(key)]; e != nil; e = e.next {
		if e.key == key {
			return true
		}
	}
	return false
}

// Set stores v for key, taking ownership and releasing any previous value.
func (h *Hash) Set(key string, v *Value) {
	if h.buckets == nil {
		h.buckets = make([]*hashEntry, hashInitBuckets)
	}
	idx := h.bucketFor(key)
	for e := h.buckets[idx]; e != nil; e = e.next {
		if e.key == key {
			Decref(e.val)
			e.val = v
			return
		}
	}
	h.buckets[idx] = &hashEntry{key: key, val: v, next: h.buckets[idx]}
	h.n++
	if h.n > len(h.buckets)*hashMaxLoad {
		h.rehash()
	}
}

// Delete removes key, transferring ownership of its value to the caller.
// Returns nil when the key is absent.
func (h *Hash) Delete(key string) *Value {
	if h.n == 0 {
		return nil
	}
	idx := h.bucketFor(key)
	var prev *hashEntry
	for e := h.buckets[idx]; e != nil; e = e.next {
		if e.key == key {
			if prev == nil {
				h.buckets[idx] = e.next
			} else {
				prev.next = e.next
			}
			h.n--
			v := e.val
			e.val = nil
			e.next = nil
			return v
		}
		prev = e
	}
	return nil
}

// Keys returns a snapshot of all keys in bucket order.
func (h *Hash) Keys() []string {
	keys := make([]string, 0, h.n)
	for _, b := range h.buckets {
		for e := b; e != nil; e = e.next {
			keys = append(keys, e.key)
		}
	}
	return keys
}

// ResetEach rewinds the embedded iteration cursor.
func (h *Hash) ResetEach() {
	h.iterBucket = 0
	h.iterEntry = nil
}

// Each advances the cursor and returns the next key with a share of its
// value. ok is false once the traversal is exhausted, after which the cursor
// rewinds automatically.
func (h *Hash) Each() (key string, val *Value, ok bool) {
	if h.iterEntry != nil {
		h.iterEntry = h.iterEntry.next
	}
	for h.iterEntry == nil {
		if h.iterBucket >= len(h.buckets) {
			h.ResetEach()
			return "", nil, false
		}
		h.iterEntry = h.buckets[h.iterBucket]
		h.iterBucket++
	}
	return h.iterEntry.key, Incref(h.iterEntry.val), true
}

func (h *Hash) bucketFor(key string) int {
	return int(fnv1a(key) % uint64(len(h.buckets)))
}

func (h *Hash) rehash() {
	old := h.buckets
	h.buckets = make([]*hashEntry, len(old)*2)
	for _, b := range old {
		for e := b; e != nil; {
			next := e.next
			idx := h.bucketFor(e.key)
			e.next = h.buckets[idx]
			h.buckets[idx] = e
			e = next
		}
	}
	h.ResetEach()
}

// releaseAll drops ownership of every value. Used when the owning value is
// freed.
func (h *Hash) releaseAll() {
	for i, b := range h.buckets {
		for e := b; e != nil; e = e.next {
			Decref(e.val)
			e.val = nil
		}
		h.buckets[i] = nil
	}
	h.buckets = nil
	h.n = 0
	h.ResetEach()
}

// fnv1a is the 64-bit FNV-1a hash.
func fnv1a(s string) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	hash := uint64(offset64)
	for i := 0; i < len(s); i++ {
		hash ^= uint64(s[i])
		hash *= prime64
	}
	return hash
}
