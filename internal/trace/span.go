package trace

// Span tracks one logical operation as a begin/end event pair.
type Span struct {
	tracer Tracer
	scope  Scope
	name   string
	extra  map[string]string
}

// Begin emits a SpanBegin event and returns the span.
func Begin(t Tracer, scope Scope, name string) *Span {
	s := &Span{tracer: t, scope: scope, name: name}
	if t.Enabled() {
		t.Emit(&Event{Kind: KindSpanBegin, Scope: scope, Name: name})
	}
	return s
}

// WithExtra adds a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s.extra == nil {
		s.extra = make(map[string]string, 4)
	}
	s.extra[key] = value
	return s
}

// End emits the SpanEnd event with an optional outcome detail.
func (s *Span) End(detail string) {
	if !s.tracer.Enabled() {
		return
	}
	s.tracer.Emit(&Event{
		Kind:   KindSpanEnd,
		Scope:  s.scope,
		Name:   s.name,
		Detail: detail,
		Extra:  s.extra,
	})
}
