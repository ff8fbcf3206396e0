package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/litmgmt/internal/common"
)

// EntryType is the kind of source an entry cites. The set is closed.
type EntryType int

const (
	Article EntryType = iota
	Book
	Booklet
	InBook
	InCollection
	InProceedings
	Manual
	MastersThesis
	Misc
	PhdThesis
	Proceedings
	TechReport
	Unpublished
)

var entryTypeNames = [...]string{
	"article", "book", "booklet", "inbook", "incollection", "inproceedings", "manual",
	"mastersthesis", "misc", "phdthesis", "proceedings", "techreport", "unpublished",
}

// EntryTypes lists every entry type in declaration order.
func EntryTypes() []EntryType {
	out := make([]EntryType, len(entryTypeNames))
	for i := range out {
		out[i] = EntryType(i)
	}
	return out
}

func (t EntryType) Valid() bool { return t >= 0 && int(t) < len(entryTypeNames) }

// String returns the lower-case name used on the wire.
func (t EntryType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("entrytype(%d)", int(t))
	}
	return entryTypeNames[t]
}

// ParseEntryType matches s case-insensitively against the known names.
func ParseEntryType(s string) (EntryType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range entryTypeNames {
		if n == name {
			return EntryType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown entry type %q: %w", s, common.ErrParseFailure)
}

func (t EntryType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid entry type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *EntryType) UnmarshalText(b []byte) error {
	v, err := ParseEntryType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// FieldType names one bibliographic field of an entry. The set is closed.
type FieldType int

const (
	Address FieldType = iota
	Annote
	Author
	BookTitle
	Chapter
	CrossRef
	Edition
	Editor
	HowPublished
	Institution
	Journal
	Key
	Month
	Note
	Number
	Organization
	Pages
	Publisher
	School
	Series
	Title
	Type
	Volume
	Year
)

var fieldTypeNames = [...]string{
	"address", "annote", "author", "booktitle", "chapter", "crossref", "edition", "editor",
	"howpublished", "institution", "journal", "key", "month", "note", "number", "organization",
	"pages", "publisher", "school", "series", "title", "type", "volume", "year",
}

func FieldTypes() []FieldType {
	out := make([]FieldType, len(fieldTypeNames))
	for i := range out {
		out[i] = FieldType(i)
	}
	return out
}

func (f FieldType) Valid() bool { return f >= 0 && int(f) < len(fieldTypeNames) }

func (f FieldType) String() string {
	if !f.Valid() {
		return fmt.Sprintf("fieldtype(%d)", int(f))
	}
	return fieldTypeNames[f]
}

func ParseFieldType(s string) (FieldType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range fieldTypeNames {
		if n == name {
			return FieldType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown field type %q: %w", s, common.ErrParseFailure)
}

func (f FieldType) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("invalid field type %d", int(f))
	}
	return []byte(f.String()), nil
}

func (f *FieldType) UnmarshalText(b []byte) error {
	v, err := ParseFieldType(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
