package schema

// EntitySchema is one entity type in the catalog.
type EntitySchema struct {
	Name  string
	Table string

	attrs    []*Attribute
	byName   map[string]*Attribute
	identity *Attribute

	accessors map[string]Accessor
	newFn     func() any
}

// Attributes returns the attributes in declaration order.
// The returned slice must not be modified.
func (e *EntitySchema) Attributes() []*Attribute {
	return e.attrs
}

// Attribute looks up an attribute by name.
func (e *EntitySchema) Attribute(name string) (*Attribute, bool) {
	a, ok := e.byName[name]
	return a, ok
}

// Identity returns the identity attribute.
func (e *EntitySchema) Identity() *Attribute {
	return e.identity
}

// Scalars returns the non-relational attributes in declaration order.
func (e *EntitySchema) Scalars() []*Attribute {
	var out []*Attribute
	for _, a := range e.attrs {
		if !a.IsRelation() {
			out = append(out, a)
		}
	}
	return out
}

// Relations returns the relational attributes in declaration order.
func (e *EntitySchema) Relations() []*Attribute {
	var out []*Attribute
	for _, a := range e.attrs {
		if a.IsRelation() {
			out = append(out, a)
		}
	}
	return out
}

// Accessor returns the accessor for an attribute.
func (e *EntitySchema) Accessor(name string) (Accessor, error) {
	acc, ok := e.accessors[name]
	if !ok {
		return Accessor{}, unknownAttribute(e.Name, name)
	}
	return acc, nil
}

// New returns a fresh, empty instance of the entity.
func (e *EntitySchema) New() any {
	return e.newFn()
}
