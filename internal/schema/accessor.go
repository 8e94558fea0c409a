package schema

import "fmt"

// Accessor reads and writes one attribute of an entity instance without
// reflection. Accessors are built once per entity at catalog construction.
//
// Scalar and to-one accessors implement Get and Set. To-many accessors
// implement Items and Add. Every accessor implements Reset, which puts the
// attribute back to its absent representation (zero, nil or an empty
// collection). Init, when non-nil, prepares a requested to-many attribute
// so that it renders as an empty collection rather than as absent.
type Accessor struct {
	Get   func(obj any) any
	Set   func(obj any, v any) error
	Items func(obj any) []any
	Add   func(obj any, item any) error
	Reset func(obj any)
	Init  func(obj any)
}

// Binding ties an entity name to a Go type: a constructor and one accessor
// per attribute.
type Binding struct {
	New       func() any
	Accessors map[string]Accessor
}

func typeMismatch(want string, got any) error {
	return fmt.Errorf("expected %s, got %T", want, got)
}

func owner[T any](obj any) (*T, error) {
	o, ok := obj.(*T)
	if !ok {
		var zero T
		return nil, typeMismatch(fmt.Sprintf("*%T", zero), obj)
	}
	return o, nil
}

// Field builds an accessor for a non-nullable scalar field of T.
// Setting nil stores the zero value of V.
func Field[T, V any](get func(*T) V, set func(*T, V)) Accessor {
	return Accessor{
		Get: func(obj any) any {
			return get(obj.(*T))
		},
		Set: func(obj any, v any) error {
			o, err := owner[T](obj)
			if err != nil {
				return err
			}
			if v == nil {
				var zero V
				set(o, zero)
				return nil
			}
			tv, ok := v.(V)
			if !ok {
				var zero V
				return typeMismatch(fmt.Sprintf("%T", zero), v)
			}
			set(o, tv)
			return nil
		},
		Reset: func(obj any) {
			var zero V
			set(obj.(*T), zero)
		},
	}
}

// Nullable builds an accessor for a pointer scalar field of T.
// Get returns nil or the dereferenced value.
func Nullable[T, V any](get func(*T) *V, set func(*T, *V)) Accessor {
	return Accessor{
		Get: func(obj any) any {
			p := get(obj.(*T))
			if p == nil {
				return nil
			}
			return *p
		},
		Set: func(obj any, v any) error {
			o, err := owner[T](obj)
			if err != nil {
				return err
			}
			if v == nil {
				set(o, nil)
				return nil
			}
			tv, ok := v.(V)
			if !ok {
				var zero V
				return typeMismatch(fmt.Sprintf("%T", zero), v)
			}
			set(o, &tv)
			return nil
		},
		Reset: func(obj any) {
			set(obj.(*T), nil)
		},
	}
}

// ToOne builds an accessor for a single-valued relation of T to R.
func ToOne[T, R any](get func(*T) *R, set func(*T, *R)) Accessor {
	return Accessor{
		Get: func(obj any) any {
			r := get(obj.(*T))
			if r == nil {
				return nil
			}
			return r
		},
		Set: func(obj any, v any) error {
			o, err := owner[T](obj)
			if err != nil {
				return err
			}
			if v == nil {
				set(o, nil)
				return nil
			}
			r, err := owner[R](v)
			if err != nil {
				return err
			}
			set(o, r)
			return nil
		},
		Reset: func(obj any) {
			set(obj.(*T), nil)
		},
	}
}

// ToMany builds an accessor for a collection relation of T to R.
func ToMany[T, R any](get func(*T) []*R, set func(*T, []*R)) Accessor {
	return Accessor{
		Items: func(obj any) []any {
			items := get(obj.(*T))
			out := make([]any, len(items))
			for i, it := range items {
				out[i] = it
			}
			return out
		},
		Add: func(obj any, item any) error {
			o, err := owner[T](obj)
			if err != nil {
				return err
			}
			r, err := owner[R](item)
			if err != nil {
				return err
			}
			set(o, append(get(o), r))
			return nil
		},
		Reset: func(obj any) {
			set(obj.(*T), nil)
		},
		Init: func(obj any) {
			set(obj.(*T), []*R{})
		},
	}
}
