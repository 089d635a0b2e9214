package fast

import (
	"fmt"
	"reflect"
)

// Field is the internal metadata record for one node of a response model:
// its type, wire name, and nested structure. Field trees are built once at
// route registration and drive response validation and serialization.
type Field struct {
	Name     string
	JSONName string
	Type     reflect.Type
	Alias    string
	Required bool
	Default  any

	// Sub-structure: struct members, slice/array element, map key/value.
	Fields []*Field
	Items  *Field
	Key    *Field
	Value  *Field
}

// WireName returns the key used in serialized output.
func (f *Field) WireName() string {
	if f.Alias != "" {
		return f.Alias
	}
	if f.JSONName != "" {
		return f.JSONName
	}
	return f.Name
}

// FieldOption configures a constructed field.
type FieldOption func(*Field)

// FieldAlias sets the serialized key for the field.
func FieldAlias(alias string) FieldOption {
	return func(f *Field) { f.Alias = alias }
}

// FieldRequired marks the field as required.
func FieldRequired() FieldOption {
	return func(f *Field) { f.Required = true }
}

// FieldDefault sets the value serialized when the data has none.
func FieldDefault(v any) FieldOption {
	return func(f *Field) { f.Default = v }
}

// newField builds the field-metadata tree for a declared type. It fails with
// a configuration error when the type has no schema representation.
func newField(name string, t reflect.Type, opts ...FieldOption) (*Field, error) {
	b := &fieldBuilder{
		building: make(map[reflect.Type]bool),
		pending:  make(map[reflect.Type][]*Field),
	}
	f, err := buildField(name, t, b)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// fieldBuilder tracks the named struct types on the current descent path so
// recursive models terminate. Recursive occurrences are recorded in pending
// and receive the finished type's children once the outer node completes.
type fieldBuilder struct {
	building map[reflect.Type]bool
	pending  map[reflect.Type][]*Field
}

// buildField recursively constructs a field tree. Each occurrence of a type
// gets its own node, so wire names and annotations on one field never bleed
// into a sibling of the same type. A recursive occurrence gets a node whose
// children are filled in when the enclosing type finishes, leaving a cycle
// that Clone and the serializer both tolerate.
func buildField(name string, t reflect.Type, b *fieldBuilder) (*Field, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if b.building[t] {
		w := &Field{Name: name, Type: t}
		b.pending[t] = append(b.pending[t], w)
		return w, nil
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return nil, fmt.Errorf("%w: %s has no schema representation; use a plain data type "+
			"or register the route without a response model", ErrConfig, t)
	}

	f := &Field{Name: name, Type: t}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.Struct:
		if t.Name() != "" {
			b.building[t] = true
		}
		for i := range t.NumField() {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			wire := jsonFieldName(sf)
			if wire == "-" {
				continue
			}

			sub, err := buildField(sf.Name, sf.Type, b)
			if err != nil {
				return nil, err
			}
			sub.JSONName = wire
			if alias := sf.Tag.Get("alias"); alias != "" {
				sub.Alias = alias
			}
			if sf.Tag.Get("required") == "true" {
				sub.Required = true
			}
			f.Fields = append(f.Fields, sub)
		}
		if t.Name() != "" {
			delete(b.building, t)
			for _, w := range b.pending[t] {
				w.Fields = f.Fields
			}
			delete(b.pending, t)
		}

	case reflect.Slice, reflect.Array:
		items, err := buildField(name, t.Elem(), b)
		if err != nil {
			return nil, err
		}
		f.Items = items

	case reflect.Map:
		key, err := buildField(name, t.Key(), b)
		if err != nil {
			return nil, err
		}
		val, err := buildField(name, t.Elem(), b)
		if err != nil {
			return nil, err
		}
		f.Key = key
		f.Value = val
	}

	return f, nil
}

// Clone deep-copies the field tree so one model can be annotated per route
// without mutating the shared declaration. Already-cloned nodes are memoized
// so recursive models terminate.
func (f *Field) Clone() *Field {
	return f.clone(make(map[*Field]*Field))
}

func (f *Field) clone(seen map[*Field]*Field) *Field {
	if f == nil {
		return nil
	}
	if c, ok := seen[f]; ok {
		return c
	}

	c := &Field{
		Name:     f.Name,
		JSONName: f.JSONName,
		Type:     f.Type,
		Alias:    f.Alias,
		Required: f.Required,
		Default:  f.Default,
	}
	seen[f] = c

	if len(f.Fields) > 0 {
		c.Fields = make([]*Field, len(f.Fields))
		for i, sub := range f.Fields {
			c.Fields[i] = sub.clone(seen)
		}
	}
	c.Items = f.Items.clone(seen)
	c.Key = f.Key.clone(seen)
	c.Value = f.Value.clone(seen)

	return c
}
