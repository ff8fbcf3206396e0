package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/dmitrijs2005/litmgmt/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntryType_CaseInsensitive(t *testing.T) {
	for _, in := range []string{"article", "ARTICLE", "Article", " article "} {
		got, err := ParseEntryType(in)
		require.NoError(t, err, in)
		assert.Equal(t, Article, got)
	}

	_, err := ParseEntryType("webpage")
	assert.True(t, errors.Is(err, common.ErrParseFailure))
}

func TestEntryTypes_RoundTripNames(t *testing.T) {
	all := EntryTypes()
	require.Len(t, all, 13)
	for _, et := range all {
		got, err := ParseEntryType(et.String())
		require.NoError(t, err)
		assert.Equal(t, et, got)
	}
	assert.Equal(t, "mastersthesis", MastersThesis.String())
	assert.Equal(t, "entrytype(99)", EntryType(99).String())
}

func TestFieldTypes_RoundTripNames(t *testing.T) {
	all := FieldTypes()
	require.Len(t, all, 24)
	for _, ft := range all {
		got, err := ParseFieldType(ft.String())
		require.NoError(t, err)
		assert.Equal(t, ft, got)
	}
	got, err := ParseFieldType("BookTitle")
	require.NoError(t, err)
	assert.Equal(t, BookTitle, got)

	_, err = ParseFieldType("doi")
	assert.ErrorIs(t, err, common.ErrParseFailure)
}

func TestTypes_TextMarshaling(t *testing.T) {
	b, err := json.Marshal(struct {
		E EntryType `json:"e"`
		F FieldType `json:"f"`
	}{InProceedings, HowPublished})
	require.NoError(t, err)
	assert.JSONEq(t, `{"e":"inproceedings","f":"howpublished"}`, string(b))

	var out struct {
		E EntryType `json:"e"`
		F FieldType `json:"f"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"e":"TECHREPORT","f":"Year"}`), &out))
	assert.Equal(t, TechReport, out.E)
	assert.Equal(t, Year, out.F)

	require.Error(t, json.Unmarshal([]byte(`{"e":"blog"}`), &out))
	_, err = EntryType(-1).MarshalText()
	require.Error(t, err)
}

func TestEntry_SetFieldKeepsFirstInsertionOrder(t *testing.T) {
	e := NewEntry(1, "knuth84", Book)
	e.SetField(Title, "The TeXbook")
	e.SetField(Author, "Knuth")
	e.SetField(Year, "1984")
	e.SetField(Title, "The TeXbook (rev.)")

	assert.Equal(t, []Field{
		{Type: Title, Value: "The TeXbook (rev.)"},
		{Type: Author, Value: "Knuth"},
		{Type: Year, Value: "1984"},
	}, e.Fields())

	v, ok := e.Field(Author)
	assert.True(t, ok)
	assert.Equal(t, "Knuth", v)
	_, ok = e.Field(Journal)
	assert.False(t, ok)
}

func TestEntry_ZeroValueSetField(t *testing.T) {
	var e Entry
	e.SetField(Note, "n")
	assert.Equal(t, []Field{{Type: Note, Value: "n"}}, e.Fields())
}

func TestCollection_CloneIsDeep(t *testing.T) {
	c := NewCollection(3, "refs")
	e := NewEntry(7, "k1", Article)
	e.SetField(Title, "original")
	c.Entries = append(c.Entries, e)

	cp := c.Clone()
	cp.Name = "changed"
	cp.Entries[0].CiteKey = "k2"
	cp.Entries[0].SetField(Title, "changed")
	cp.Entries[0].SetField(Year, "2000")

	assert.Equal(t, "refs", c.Name)
	assert.Equal(t, "k1", c.Entries[0].CiteKey)
	assert.Equal(t, []Field{{Type: Title, Value: "original"}}, c.Entries[0].Fields())
}

func TestCollection_Lookups(t *testing.T) {
	c := NewCollection(1, "refs")
	c.Entries = []*Entry{NewEntry(10, "a", Misc), NewEntry(11, "b", Misc)}

	e, i := c.Entry(11)
	require.NotNil(t, e)
	assert.Equal(t, 1, i)
	e, i = c.Entry(99)
	assert.Nil(t, e)
	assert.Equal(t, -1, i)

	assert.Equal(t, 10, c.EntryByKey("a").ID)
	assert.Nil(t, c.EntryByKey("A"))
}

func TestUser_OwnershipSet(t *testing.T) {
	src := []int{4, 2}
	u := NewUser(1, "alice", "alice@example.org", "h", src)
	src[0] = 99

	assert.Equal(t, []int{4, 2}, u.CollectionIDs())
	assert.True(t, u.AddCollection(9))
	assert.False(t, u.AddCollection(9))
	assert.True(t, u.OwnsCollection(2))
	assert.True(t, u.RemoveCollection(2))
	assert.False(t, u.RemoveCollection(2))
	assert.Equal(t, []int{4, 9}, u.CollectionIDs())

	ids := u.CollectionIDs()
	ids[0] = 100
	assert.True(t, u.OwnsCollection(4))
}
