package optional

// Value holds a T that may be absent. The zero Value is absent, so a field
// of this type left unset by a decoder reads as "no data" rather than zero.
type Value[T any] struct {
	v  T
	ok bool
}

func Some[T any](v T) Value[T] {
	return Value[T]{v: v, ok: true}
}

func None[T any]() Value[T] {
	return Value[T]{}
}

// Get returns the held value and whether it is present.
func (o Value[T]) Get() (T, bool) {
	return o.v, o.ok
}

func (o Value[T]) IsSet() bool {
	return o.ok
}

// Or returns the held value, or fallback when absent.
func (o Value[T]) Or(fallback T) T {
	if o.ok {
		return o.v
	}
	return fallback
}

// Map applies f to a present value. Absent stays absent.
func Map[T, U any](o Value[T], f func(T) U) Value[U] {
	if !o.ok {
		return None[U]()
	}
	return Some(f(o.v))
}
