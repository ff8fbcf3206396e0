// Package snapshot converts the in-memory state to and from the persisted
// JSON document and drives saving and restoring it.
package snapshot

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/litmgmt/internal/common"
	"github.com/dmitrijs2005/litmgmt/internal/server/models"
)

// State is everything a snapshot carries. Counters hold the next id to be
// issued for users, collections and entries, in that order.
type State struct {
	WrittenOn   time.Time
	Counters    [3]int
	Users       []*models.User
	Collections []*models.Collection

	// LegacyEntries counts records found in the top-level "entries" array
	// older writers produced. They are not restored.
	LegacyEntries int
}

type document struct {
	WrittenOn   string             `json:"writtenOn"`
	IDCounters  []int              `json:"idCounters"`
	Users       []userRecord       `json:"users"`
	Collections []collectionRecord `json:"collections"`
}

type userRecord struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PwHash      string `json:"pwhash"`
	Collections []int  `json:"collections"`
}

type collectionRecord struct {
	ID      int           `json:"id"`
	Name    string        `json:"name"`
	Entries []entryRecord `json:"entries"`
}

type entryRecord struct {
	ID        int           `json:"id"`
	CiteKey   string        `json:"citeKey"`
	EntryType string        `json:"entryType"`
	Fields    []fieldRecord `json:"fields"`
}

type fieldRecord struct {
	FieldType string `json:"fieldType"`
	Value     string `json:"value"`
}

// RecordError describes one record Decode had to drop.
type RecordError struct {
	Kind string // "user", "collection", "entry", "field", "idCounters", "writtenOn"
	Path string
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *RecordError) Unwrap() []error {
	return []error{common.ErrParseFailure, e.Err}
}

// Encode renders s as an indented JSON document. Entry and field type names
// are written lower-case; field order is preserved.
func Encode(s State) ([]byte, error) {
	doc := document{
		WrittenOn:   s.WrittenOn.Format(common.SnapshotTimeLayout),
		IDCounters:  s.Counters[:],
		Users:       make([]userRecord, 0, len(s.Users)),
		Collections: make([]collectionRecord, 0, len(s.Collections)),
	}

	for _, u := range s.Users {
		ids := u.CollectionIDs()
		if ids == nil {
			ids = []int{}
		}
		doc.Users = append(doc.Users, userRecord{
			ID:          u.ID,
			Name:        u.Name,
			Email:       u.Email,
			PwHash:      u.PasswordHash,
			Collections: ids,
		})
	}

	for _, c := range s.Collections {
		cr := collectionRecord{ID: c.ID, Name: c.Name, Entries: make([]entryRecord, 0, len(c.Entries))}
		for _, e := range c.Entries {
			er := entryRecord{ID: e.ID, CiteKey: e.CiteKey, EntryType: e.Type.String(), Fields: []fieldRecord{}}
			for _, f := range e.Fields() {
				er.Fields = append(er.Fields, fieldRecord{FieldType: f.Type.String(), Value: f.Value})
			}
			cr.Entries = append(cr.Entries, er)
		}
		doc.Collections = append(doc.Collections, cr)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// The raw* types decode one level at a time so a broken record can be
// dropped without losing its siblings. Pointers mark required members.

type rawDocument struct {
	WrittenOn   *string           `json:"writtenOn"`
	IDCounters  json.RawMessage   `json:"idCounters"`
	Users       []json.RawMessage `json:"users"`
	Collections []json.RawMessage `json:"collections"`
	Entries     []json.RawMessage `json:"entries"`
}

type rawUser struct {
	ID          *int    `json:"id"`
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	PwHash      *string `json:"pwhash"`
	Collections []int   `json:"collections"`
}

type rawCollection struct {
	ID      *int              `json:"id"`
	Name    *string           `json:"name"`
	Entries []json.RawMessage `json:"entries"`
}

type rawEntry struct {
	ID        *int              `json:"id"`
	CiteKey   *string           `json:"citeKey"`
	EntryType *string           `json:"entryType"`
	Fields    []json.RawMessage `json:"fields"`
}

type rawField struct {
	FieldType *string `json:"fieldType"`
	Value     *string `json:"value"`
}

func missing(member string) error {
	return fmt.Errorf("missing %q", member)
}

// Decode parses a snapshot document. Every record that cannot be parsed is
// skipped and reported; the rest is returned. A document that is not a JSON
// object at all yields an empty state and a single error.
func Decode(data []byte) (State, []error) {
	var s State
	var errs []error

	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return State{}, []error{fmt.Errorf("decode snapshot: %w: %w", common.ErrParseFailure, err)}
	}

	if doc.WrittenOn != nil {
		t, err := time.ParseInLocation(common.SnapshotTimeLayout, *doc.WrittenOn, time.Local)
		if err != nil {
			errs = append(errs, &RecordError{Kind: "writtenOn", Err: err})
		}
		s.WrittenOn = t
	}

	if len(doc.IDCounters) > 0 {
		var counters []int
		err := json.Unmarshal(doc.IDCounters, &counters)
		switch {
		case err != nil:
			errs = append(errs, &RecordError{Kind: "idCounters", Err: err})
		case len(counters) != 3:
			errs = append(errs, &RecordError{Kind: "idCounters", Err: fmt.Errorf("want 3 values, got %d", len(counters))})
		case slices.ContainsFunc(counters, func(v int) bool { return v < 0 }):
			errs = append(errs, &RecordError{Kind: "idCounters", Err: fmt.Errorf("negative counter in %v", counters)})
		default:
			copy(s.Counters[:], counters)
		}
	}

	for i, raw := range doc.Users {
		u, err := decodeUser(raw)
		if err != nil {
			errs = append(errs, &RecordError{Kind: "user", Path: fmt.Sprintf("users[%d]", i), Err: err})
			continue
		}
		s.Users = append(s.Users, u)
	}

	for i, raw := range doc.Collections {
		path := fmt.Sprintf("collections[%d]", i)
		c, cerrs := decodeCollection(path, raw)
		errs = append(errs, cerrs...)
		if c != nil {
			s.Collections = append(s.Collections, c)
		}
	}

	s.LegacyEntries = len(doc.Entries)
	return s, errs
}

func decodeUser(raw json.RawMessage) (*models.User, error) {
	var ru rawUser
	if err := json.Unmarshal(raw, &ru); err != nil {
		return nil, err
	}
	switch {
	case ru.ID == nil:
		return nil, missing("id")
	case *ru.ID < 0:
		return nil, fmt.Errorf("negative id %d", *ru.ID)
	case ru.Name == nil || *ru.Name == "":
		return nil, missing("name")
	case ru.PwHash == nil || *ru.PwHash == "":
		return nil, missing("pwhash")
	}

	email := ""
	if ru.Email != nil {
		email = *ru.Email
	}
	return models.NewUser(*ru.ID, strings.ToLower(*ru.Name), email, *ru.PwHash, ru.Collections), nil
}

func decodeCollection(path string, raw json.RawMessage) (*models.Collection, []error) {
	var rc rawCollection
	if err := json.Unmarshal(raw, &rc); err != nil {
		return nil, []error{&RecordError{Kind: "collection", Path: path, Err: err}}
	}
	switch {
	case rc.ID == nil:
		return nil, []error{&RecordError{Kind: "collection", Path: path, Err: missing("id")}}
	case *rc.ID < 0:
		return nil, []error{&RecordError{Kind: "collection", Path: path, Err: fmt.Errorf("negative id %d", *rc.ID)}}
	case rc.Name == nil:
		return nil, []error{&RecordError{Kind: "collection", Path: path, Err: missing("name")}}
	}

	var errs []error
	c := models.NewCollection(*rc.ID, *rc.Name)
	for i, rawE := range rc.Entries {
		epath := fmt.Sprintf("%s.entries[%d]", path, i)
		e, eerrs := decodeEntry(epath, rawE)
		errs = append(errs, eerrs...)
		if e != nil {
			c.Entries = append(c.Entries, e)
		}
	}
	return c, errs
}

func decodeEntry(path string, raw json.RawMessage) (*models.Entry, []error) {
	fail := func(err error) (*models.Entry, []error) {
		return nil, []error{&RecordError{Kind: "entry", Path: path, Err: err}}
	}

	var re rawEntry
	if err := json.Unmarshal(raw, &re); err != nil {
		return fail(err)
	}
	switch {
	case re.ID == nil:
		return fail(missing("id"))
	case *re.ID < 0:
		return fail(fmt.Errorf("negative id %d", *re.ID))
	case re.CiteKey == nil || *re.CiteKey == "":
		return fail(missing("citeKey"))
	case re.EntryType == nil:
		return fail(missing("entryType"))
	}
	et, err := models.ParseEntryType(*re.EntryType)
	if err != nil {
		return fail(err)
	}

	var errs []error
	e := models.NewEntry(*re.ID, *re.CiteKey, et)
	for i, rawF := range re.Fields {
		fpath := fmt.Sprintf("%s.fields[%d]", path, i)
		var rf rawField
		if err := json.Unmarshal(rawF, &rf); err != nil {
			errs = append(errs, &RecordError{Kind: "field", Path: fpath, Err: err})
			continue
		}
		if rf.FieldType == nil || rf.Value == nil {
			errs = append(errs, &RecordError{Kind: "field", Path: fpath, Err: missing("fieldType/value")})
			continue
		}
		ft, err := models.ParseFieldType(*rf.FieldType)
		if err != nil {
			errs = append(errs, &RecordError{Kind: "field", Path: fpath, Err: err})
			continue
		}
		e.SetField(ft, *rf.Value)
	}
	return e, errs
}
