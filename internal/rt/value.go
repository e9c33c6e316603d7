package rt

import (
	"fmt"
	"strconv"
)

// Kind identifies the runtime type of a Value.
type Kind uint8

const (
	// KUndef represents the undefined value.
	KUndef Kind = iota
	// KBool represents a boolean value.
	KBool
	// KInt represents a signed integer value.
	KInt
	// KNum represents a floating point value.
	KNum
	// KStr represents an owned string value.
	KStr
	// KBytes represents an owned byte buffer value.
	KBytes
	// KArray represents an array container value.
	KArray
	// KHash represents a hash container value.
	KHash
	// KRef represents a reference to another value.
	KRef
	// KClosure represents a callable closure value.
	KClosure
	// KFuture represents an opaque future handle.
	KFuture
	// KChannel represents an opaque channel handle.
	KChannel
	// KAtomic represents an opaque atomic handle.
	KAtomic
	// KHandle represents an opaque host handle.
	KHandle
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KUndef:
		return "undef"
	case KBool:
		return "bool"
	case KInt:
		return "int"
	case KNum:
		return "num"
	case KStr:
		return "str"
	case KBytes:
		return "bytes"
	case KArray:
		return "array"
	case KHash:
		return "hash"
	case KRef:
		return "ref"
	case KClosure:
		return "closure"
	case KFuture:
		return "future"
	case KChannel:
		return "channel"
	case KAtomic:
		return "atomic"
	case KHandle:
		return "handle"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Meta carries cold metadata that most values never need.
type Meta struct {
	StructName string
	Class      string
	Weak       bool
}

// Value is a tagged, reference-counted runtime datum.
//
// The rc field is a plain integer: one thread owns a Value subgraph at a
// time, and ownership moves across threads only through a channel send or a
// future hand-off.
type Value struct {
	Kind Kind
	rc   int32

	Int    int64
	Num    float64
	Str    string
	Bytes  []byte
	Arr    *Array
	Map    *Hash
	Ref    *Value
	Fn     *Closure
	opaque any

	meta *Meta
}

// Refcount returns the current reference count. Mainly for tests.
func (v *Value) Refcount() int32 {
	if v == nil {
		return 0
	}
	return v.rc
}

// Meta returns the value's cold metadata, allocating it on first use.
func (v *Value) Meta() *Meta {
	if v.meta == nil {
		v.meta = &Meta{}
	}
	return v.meta
}

// IsUndef reports whether the value is undefined (or nil).
func (v *Value) IsUndef() bool {
	return v == nil || v.Kind == KUndef
}

// Truthy reports the boolean interpretation of the value.
func (v *Value) Truthy() bool {
	if v == nil {
		return false
	}
	switch v.Kind {
	case KUndef:
		return false
	case KBool:
		return v.Int != 0
	case KInt:
		return v.Int != 0
	case KNum:
		return v.Num != 0
	case KStr:
		return v.Str != "" && v.Str != "0"
	case KBytes:
		return len(v.Bytes) > 0
	default:
		return true
	}
}

// String returns a human-readable representation of the value.
func (v *Value) String() string {
	if v == nil {
		return "undef"
	}
	switch v.Kind {
	case KUndef:
		return "undef"
	case KBool:
		if v.Int != 0 {
			return "true"
		}
		return "false"
	case KInt:
		return strconv.FormatInt(v.Int, 10)
	case KNum:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KStr:
		return v.Str
	case KBytes:
		return fmt.Sprintf("bytes[%d]", len(v.Bytes))
	case KArray:
		return fmt.Sprintf("array[%d]", v.Arr.Len())
	case KHash:
		return fmt.Sprintf("hash[%d]", v.Map.Len())
	case KRef:
		if v.meta != nil && v.meta.Weak {
			return "weakref"
		}
		return "ref"
	case KClosure:
		return "closure"
	case KFuture:
		return "future"
	case KChannel:
		return "channel"
	case KAtomic:
		return "atomic"
	case KHandle:
		return "handle"
	default:
		return fmt.Sprintf("<unknown:%d>", v.Kind)
	}
}

// NewUndef creates an undefined value.
func NewUndef() *Value {
	return newValue(KUndef)
}

// NewBool creates a boolean value.
func NewBool(b bool) *Value {
	v := newValue(KBool)
	if b {
		v.Int = 1
	}
	return v
}

// NewInt creates an integer value.
func NewInt(n int64) *Value {
	v := newValue(KInt)
	v.Int = n
	return v
}

// NewNum creates a floating point value.
func NewNum(f float64) *Value {
	v := newValue(KNum)
	v.Num = f
	return v
}

// NewStr creates a string value from a copy of s.
func NewStr(s string) *Value {
	v := newValue(KStr)
	v.Str = s
	return v
}

// TakeBytes creates a bytes value adopting the caller-owned buffer.
func TakeBytes(b []byte) *Value {
	v := newValue(KBytes)
	v.Bytes = b
	return v
}

// NewBytes creates a bytes value from a copy of b.
func NewBytes(b []byte) *Value {
	return TakeBytes(append([]byte(nil), b...))
}

// NewArray creates an array value holding shares of elems.
func NewArray(elems ...*Value) *Value {
	arr := &Array{}
	for _, e := range elems {
		arr.Push(Incref(e))
	}
	return TakeArray(arr)
}

// TakeArray creates an array value adopting the caller-owned container.
func TakeArray(arr *Array) *Value {
	v := newValue(KArray)
	if arr == nil {
		arr = &Array{}
	}
	v.Arr = arr
	return v
}

// NewHash creates an empty hash value.
func NewHash() *Value {
	return TakeHash(&Hash{})
}

// TakeHash creates a hash value adopting the caller-owned container.
func TakeHash(h *Hash) *Value {
	v := newValue(KHash)
	if h == nil {
		h = &Hash{}
	}
	v.Map = h
	return v
}

// NewRef creates an owning reference to target, sharing it.
func NewRef(target *Value) *Value {
	v := newValue(KRef)
	v.Ref = Incref(target)
	return v
}

// NewClosureVal wraps a closure as a value. The closure borrows its capture
// cells; the wrapper owns only the closure header.
func NewClosureVal(c *Closure) *Value {
	v := newValue(KClosure)
	v.Fn = c
	return v
}

// NewOpaque wraps an opaque runtime handle (future, channel, atomic or host
// handle) as a value. The handle's lifetime is managed by its owner, not by
// the refcount of the wrapper.
func NewOpaque(kind Kind, handle any) *Value {
	switch kind {
	case KFuture, KChannel, KAtomic, KHandle:
	default:
		rtPanic(CodeTypeMismatch, fmt.Sprintf("NewOpaque: kind %s is not opaque", kind))
	}
	v := newValue(kind)
	v.opaque = handle
	return v
}

// Opaque returns the handle stored in an opaque value.
func (v *Value) Opaque() any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KFuture, KChannel, KAtomic, KHandle:
		return v.opaque
	default:
		rtPanic(CodeTypeMismatch, fmt.Sprintf("Opaque: kind %s is not opaque", v.Kind))
		return nil
	}
}

func newValue(kind Kind) *Value {
	v := &Value{Kind: kind, rc: 1}
	noteAlloc(kind)
	return v
}
