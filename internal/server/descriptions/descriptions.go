// Package descriptions lists, for every entry type, which fields are
// conventionally required and which are optional. The table is advisory:
// nothing in the server validates entries against it.
package descriptions

import (
	"slices"

	m "github.com/dmitrijs2005/litmgmt/internal/server/models"
)

type Description struct {
	Type     m.EntryType   `json:"entryType"`
	Required []m.FieldType `json:"required"`
	Optional []m.FieldType `json:"optional"`
}

var table = []Description{
	{m.Article,
		[]m.FieldType{m.Author, m.Title, m.Journal, m.Year},
		[]m.FieldType{m.Volume, m.Number, m.Pages, m.Month, m.Note}},
	{m.Book,
		[]m.FieldType{m.Author, m.Editor, m.Title, m.Publisher, m.Year},
		[]m.FieldType{m.Volume, m.Number, m.Series, m.Address, m.Edition, m.Month, m.Note}},
	{m.Booklet,
		[]m.FieldType{m.Title},
		[]m.FieldType{m.Author, m.HowPublished, m.Address, m.Month, m.Year, m.Note}},
	{m.InBook,
		[]m.FieldType{m.Author, m.Editor, m.Title, m.Chapter, m.Pages, m.Publisher, m.Year},
		[]m.FieldType{m.Volume, m.Number, m.Series, m.Type, m.Address, m.Edition, m.Month, m.Note}},
	{m.InCollection,
		[]m.FieldType{m.Author, m.Title, m.BookTitle, m.Publisher, m.Year},
		[]m.FieldType{m.Editor, m.Volume, m.Number, m.Series, m.Type, m.Chapter, m.Pages, m.Address, m.Edition, m.Month, m.Note}},
	{m.InProceedings,
		[]m.FieldType{m.Author, m.Title, m.BookTitle, m.Year},
		[]m.FieldType{m.Editor, m.Volume, m.Number, m.Series, m.Pages, m.Address, m.Month, m.Organization, m.Publisher, m.Note}},
	{m.Manual,
		[]m.FieldType{m.Title},
		[]m.FieldType{m.Author, m.Organization, m.Address, m.Edition, m.Month, m.Year, m.Note}},
	{m.MastersThesis,
		[]m.FieldType{m.Author, m.Title, m.School, m.Year},
		[]m.FieldType{m.Type, m.Address, m.Month, m.Note}},
	{m.Misc,
		[]m.FieldType{},
		[]m.FieldType{m.Author, m.Title, m.HowPublished, m.Month, m.Year, m.Note}},
	{m.PhdThesis,
		[]m.FieldType{m.Author, m.Title, m.School, m.Year},
		[]m.FieldType{m.Type, m.Address, m.Month, m.Note}},
	{m.Proceedings,
		[]m.FieldType{m.Title, m.Year},
		[]m.FieldType{m.Editor, m.Volume, m.Number, m.Series, m.Address, m.Publisher, m.Note, m.Month, m.Organization}},
	{m.TechReport,
		[]m.FieldType{m.Author, m.Title, m.Institution, m.Year},
		[]m.FieldType{m.Type, m.Number, m.Address, m.Month, m.Note}},
	{m.Unpublished,
		[]m.FieldType{m.Author, m.Title, m.Note},
		[]m.FieldType{m.Month, m.Year}},
}

func (d Description) clone() Description {
	return Description{Type: d.Type, Required: slices.Clone(d.Required), Optional: slices.Clone(d.Optional)}
}

// All returns a copy of the table in entry type order.
func All() []Description {
	out := make([]Description, len(table))
	for i, d := range table {
		out[i] = d.clone()
	}
	return out
}

func For(t m.EntryType) (Description, bool) {
	for _, d := range table {
		if d.Type == t {
			return d.clone(), true
		}
	}
	return Description{}, false
}
