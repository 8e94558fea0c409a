package schema

import (
	"encoding/json"
)

// Record is the instance type of entities that have no Go binding.
// Only populated attributes are present in Fields; relations hold *Record
// (to-one) or []*Record (to-many).
type Record struct {
	Entity string
	Fields map[string]any
}

// NewRecord returns an empty record of the named entity.
func NewRecord(entity string) *Record {
	return &Record{Entity: entity, Fields: make(map[string]any)}
}

// Get returns a field and whether it is populated.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// MarshalJSON renders the populated fields only.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields)
}

func asRecord(obj any) (*Record, error) {
	r, ok := obj.(*Record)
	if !ok {
		return nil, typeMismatch("*schema.Record", obj)
	}
	return r, nil
}

// recordBinding builds the map-backed accessor table for an entity.
func recordBinding(e *EntitySchema) Binding {
	name := e.Name
	accessors := make(map[string]Accessor, len(e.attrs))
	for _, a := range e.attrs {
		field := a.Name
		switch a.Relation {
		case RelationToMany:
			accessors[field] = Accessor{
				Items: func(obj any) []any {
					items, _ := obj.(*Record).Fields[field].([]*Record)
					out := make([]any, len(items))
					for i, it := range items {
						out[i] = it
					}
					return out
				},
				Add: func(obj any, item any) error {
					r, err := asRecord(obj)
					if err != nil {
						return err
					}
					child, err := asRecord(item)
					if err != nil {
						return err
					}
					items, _ := r.Fields[field].([]*Record)
					r.Fields[field] = append(items, child)
					return nil
				},
				Reset: func(obj any) {
					delete(obj.(*Record).Fields, field)
				},
				Init: func(obj any) {
					obj.(*Record).Fields[field] = []*Record{}
				},
			}
		case RelationToOne:
			accessors[field] = Accessor{
				Get: func(obj any) any {
					child, _ := obj.(*Record).Fields[field].(*Record)
					if child == nil {
						return nil
					}
					return child
				},
				Set: func(obj any, v any) error {
					r, err := asRecord(obj)
					if err != nil {
						return err
					}
					if v == nil {
						delete(r.Fields, field)
						return nil
					}
					child, err := asRecord(v)
					if err != nil {
						return err
					}
					r.Fields[field] = child
					return nil
				},
				Reset: func(obj any) {
					delete(obj.(*Record).Fields, field)
				},
			}
		default:
			accessors[field] = Accessor{
				Get: func(obj any) any {
					return obj.(*Record).Fields[field]
				},
				Set: func(obj any, v any) error {
					r, err := asRecord(obj)
					if err != nil {
						return err
					}
					r.Fields[field] = v
					return nil
				},
				Reset: func(obj any) {
					delete(obj.(*Record).Fields, field)
				},
			}
		}
	}
	return Binding{
		New:       func() any { return NewRecord(name) },
		Accessors: accessors,
	}
}
