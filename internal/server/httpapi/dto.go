package httpapi

import (
	"github.com/dmitrijs2005/litmgmt/internal/server/models"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type collectionSummary struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Entries int    `json:"entries"`
}

type collectionResponse struct {
	ID      int             `json:"id"`
	Name    string          `json:"name"`
	Entries []entryResponse `json:"entries"`
}

type fieldDTO struct {
	FieldType models.FieldType `json:"fieldType"`
	Value     string           `json:"value"`
}

type entryResponse struct {
	ID        int              `json:"id"`
	CiteKey   string           `json:"citeKey"`
	EntryType models.EntryType `json:"entryType"`
	Fields    []fieldDTO       `json:"fields"`
}

type createEntryRequest struct {
	CiteKey   string            `json:"citeKey"`
	EntryType *models.EntryType `json:"entryType"`
}

// updateEntryRequest carries optional changes. EntryType is accepted only so
// a change can be refused explicitly.
type updateEntryRequest struct {
	CiteKey   *string           `json:"citeKey"`
	EntryType *models.EntryType `json:"entryType"`
}

// setFieldsRequest accepts either a single field or a list.
type setFieldsRequest struct {
	FieldType *models.FieldType `json:"fieldType"`
	Value     *string           `json:"value"`
	Fields    []fieldDTO        `json:"fields"`
}

func toEntryResponse(e *models.Entry) entryResponse {
	out := entryResponse{ID: e.ID, CiteKey: e.CiteKey, EntryType: e.Type, Fields: []fieldDTO{}}
	for _, f := range e.Fields() {
		out.Fields = append(out.Fields, fieldDTO{FieldType: f.Type, Value: f.Value})
	}
	return out
}

func toCollectionResponse(c *models.Collection) collectionResponse {
	out := collectionResponse{ID: c.ID, Name: c.Name, Entries: make([]entryResponse, 0, len(c.Entries))}
	for _, e := range c.Entries {
		out.Entries = append(out.Entries, toEntryResponse(e))
	}
	return out
}
