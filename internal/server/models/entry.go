package models

import "slices"

// Field is one value of an entry, as exposed to callers.
type Field struct {
	Type  FieldType
	Value string
}

// Entry is a citation. Type is fixed at creation. Fields keep the order in
// which each field type was first set.
type Entry struct {
	ID      int
	CiteKey string
	Type    EntryType

	values map[FieldType]string
	order  []FieldType
}

func NewEntry(id int, citeKey string, entryType EntryType) *Entry {
	return &Entry{
		ID:      id,
		CiteKey: citeKey,
		Type:    entryType,
		values:  make(map[FieldType]string),
	}
}

// SetField inserts or overwrites a value. A new field type goes to the end of
// the display order; overwriting keeps its position.
func (e *Entry) SetField(ft FieldType, value string) {
	if e.values == nil {
		e.values = make(map[FieldType]string)
	}
	if _, ok := e.values[ft]; !ok {
		e.order = append(e.order, ft)
	}
	e.values[ft] = value
}

func (e *Entry) Field(ft FieldType) (string, bool) {
	v, ok := e.values[ft]
	return v, ok
}

// Fields returns the fields in display order.
func (e *Entry) Fields() []Field {
	out := make([]Field, 0, len(e.order))
	for _, ft := range e.order {
		out = append(out, Field{Type: ft, Value: e.values[ft]})
	}
	return out
}

func (e *Entry) Clone() *Entry {
	c := &Entry{
		ID:      e.ID,
		CiteKey: e.CiteKey,
		Type:    e.Type,
		values:  make(map[FieldType]string, len(e.values)),
		order:   slices.Clone(e.order),
	}
	for k, v := range e.values {
		c.values[k] = v
	}
	return c
}
