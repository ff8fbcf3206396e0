package models

// Collection is a named, ordered list of entries. It does not know its owner.
type Collection struct {
	ID      int
	Name    string
	Entries []*Entry
}

func NewCollection(id int, name string) *Collection {
	return &Collection{ID: id, Name: name}
}

// Entry finds an entry by id and returns it with its position.
func (c *Collection) Entry(id int) (*Entry, int) {
	for i, e := range c.Entries {
		if e.ID == id {
			return e, i
		}
	}
	return nil, -1
}

// EntryByKey finds an entry by cite key (exact match).
func (c *Collection) EntryByKey(citeKey string) *Entry {
	for _, e := range c.Entries {
		if e.CiteKey == citeKey {
			return e
		}
	}
	return nil
}

// Clone copies the collection and all of its entries.
func (c *Collection) Clone() *Collection {
	out := &Collection{ID: c.ID, Name: c.Name, Entries: make([]*Entry, len(c.Entries))}
	for i, e := range c.Entries {
		out.Entries[i] = e.Clone()
	}
	return out
}
