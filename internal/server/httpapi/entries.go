package httpapi

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/litmgmt/internal/common"
	"github.com/dmitrijs2005/litmgmt/internal/server/models"
	"github.com/labstack/echo/v4"
)

// entryPath resolves :col (owned by the caller) and :entry.
func (s *HTTPServer) entryPath(c echo.Context) (int, int, error) {
	colID, err := s.ownedCollection(c)
	if err != nil {
		return 0, 0, err
	}
	entryID, err := pathID(c, "entry")
	if err != nil {
		return 0, 0, err
	}
	return colID, entryID, nil
}

func (s *HTTPServer) respondEntry(c echo.Context, status, colID, entryID int) error {
	e, err := s.store.GetEntry(c.Request().Context(), colID, entryID)
	if err != nil {
		return err
	}
	return c.JSON(status, toEntryResponse(e))
}

func (s *HTTPServer) listEntries(c echo.Context) error {
	colID, err := s.ownedCollection(c)
	if err != nil {
		return err
	}

	entries, err := s.store.ListEntries(c.Request().Context(), colID)
	if err != nil {
		return err
	}

	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *HTTPServer) createEntry(c echo.Context) error {
	colID, err := s.ownedCollection(c)
	if err != nil {
		return err
	}
	var req createEntryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.EntryType == nil {
		return fmt.Errorf("entryType: %w", common.ErrEmptyField)
	}

	e, err := s.store.CreateEntry(c.Request().Context(), colID, req.CiteKey, *req.EntryType)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toEntryResponse(e))
}

func (s *HTTPServer) getEntry(c echo.Context) error {
	colID, entryID, err := s.entryPath(c)
	if err != nil {
		return err
	}
	return s.respondEntry(c, http.StatusOK, colID, entryID)
}

// updateEntry renames the cite key. The entry type is fixed at creation; a
// request that tries to change it is refused as a whole.
func (s *HTTPServer) updateEntry(c echo.Context) error {
	colID, entryID, err := s.entryPath(c)
	if err != nil {
		return err
	}
	var req updateEntryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if req.EntryType != nil {
		current, err := s.store.GetEntry(ctx, colID, entryID)
		if err != nil {
			return err
		}
		if *req.EntryType != current.Type {
			return fmt.Errorf("entryType: %w", common.ErrForbiddenModification)
		}
	}

	if req.CiteKey != nil {
		if err := s.store.RenameEntry(ctx, colID, entryID, *req.CiteKey); err != nil {
			return err
		}
	}
	return s.respondEntry(c, http.StatusOK, colID, entryID)
}

func (s *HTTPServer) deleteEntry(c echo.Context) error {
	colID, entryID, err := s.entryPath(c)
	if err != nil {
		return err
	}

	if err := s.store.DeleteEntry(c.Request().Context(), colID, entryID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) setFields(c echo.Context) error {
	colID, entryID, err := s.entryPath(c)
	if err != nil {
		return err
	}
	var req setFieldsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	var fields []models.Field
	if req.FieldType != nil {
		if req.Value == nil {
			return fmt.Errorf("value: %w", common.ErrEmptyField)
		}
		fields = append(fields, models.Field{Type: *req.FieldType, Value: *req.Value})
	}
	for _, f := range req.Fields {
		fields = append(fields, models.Field{Type: f.FieldType, Value: f.Value})
	}
	if len(fields) == 0 {
		return fmt.Errorf("fields: %w", common.ErrEmptyField)
	}

	if err := s.store.SetFields(c.Request().Context(), colID, entryID, fields); err != nil {
		return err
	}
	return s.respondEntry(c, http.StatusOK, colID, entryID)
}
