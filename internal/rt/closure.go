package rt

// Cell is a shared, mutably-aliasable capture slot. The enclosing scope and
// every closure capturing the slot see the same cell, so outer mutation is
// visible inside the closure. The cell owns the value it currently holds.
type Cell struct {
	V *Value
}

// NewCell creates a cell owning v.
func NewCell(v *Value) *Cell {
	return &Cell{V: v}
}

// Get returns a share of the cell's current value.
func (c *Cell) Get() *Value {
	return Incref(c.V)
}

// Set stores v (taking ownership), releasing the previous value.
func (c *Cell) Set(v *Value) {
	Decref(c.V)
	c.V = v
}

// Release drops the cell's ownership of its value. The enclosing scope calls
// this when the variable goes out of scope; any closure still holding the
// cell must not be invoked afterwards.
func (c *Cell) Release() {
	Decref(c.V)
	c.V = nil
}

// Fn is the native entry point of a closure. It receives the execution
// context of the invoking thread and borrowed argument shares; it returns an
// owned result (or throws through u).
type Fn func(u *Unwinder, c *Closure, args []*Value) *Value

// Closure bundles a function pointer with its declared arity and borrowed
// capture cells. The closure does not own the cells and must not outlive
// them.
type Closure struct {
	fn    Fn
	arity int
	cells []*Cell
}

// NewClosure binds fn with its declared arity and capture cells.
func NewClosure(fn Fn, arity int, cells ...*Cell) *Closure {
	return &Closure{fn: fn, arity: arity, cells: cells}
}

// Arity returns the declared argument count.
func (c *Closure) Arity() int {
	if c == nil {
		return 0
	}
	return c.arity
}

// Cell returns the i-th capture cell.
func (c *Closure) Cell(i int) *Cell {
	return c.cells[i]
}

// Call invokes the closure with the given borrowed arguments and returns an
// owned result. The argument count is deliberately not validated against the
// declared arity: that check belongs to the code generator, and a mismatch
// is undefined behavior at this boundary.
func (c *Closure) Call(u *Unwinder, args ...*Value) *Value {
	if c == nil || c.fn == nil {
		rtPanic(CodeTypeMismatch, "call of nil closure")
	}
	return c.fn(u, c, args)
}
