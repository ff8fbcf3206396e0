package httpapi

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/litmgmt/internal/common"
	"github.com/labstack/echo/v4"
)

// ownedCollection resolves :col and checks the caller owns it. Unknown ids
// give not found, somebody else's collection gives forbidden.
func (s *HTTPServer) ownedCollection(c echo.Context) (int, error) {
	id, err := pathID(c, "col")
	if err != nil {
		return 0, err
	}
	if s.store.UserOwns(currentUser(c), id) {
		return id, nil
	}
	if _, ok := s.store.GetCollection(c.Request().Context(), id); !ok {
		return 0, fmt.Errorf("collection %d: %w", id, common.ErrorNotFound)
	}
	return 0, fmt.Errorf("collection %d: %w", id, common.ErrForbidden)
}

func (s *HTTPServer) listCollections(c echo.Context) error {
	cols := s.store.ListCollections(c.Request().Context(), currentUser(c))

	out := make([]collectionSummary, 0, len(cols))
	for _, col := range cols {
		out = append(out, collectionSummary{ID: col.ID, Name: col.Name, Entries: len(col.Entries)})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *HTTPServer) createCollection(c echo.Context) error {
	var req nameRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	col, err := s.store.CreateCollection(c.Request().Context(), currentUser(c), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toCollectionResponse(col))
}

func (s *HTTPServer) getCollection(c echo.Context) error {
	id, err := s.ownedCollection(c)
	if err != nil {
		return err
	}

	col, ok := s.store.GetCollection(c.Request().Context(), id)
	if !ok {
		return fmt.Errorf("collection %d: %w", id, common.ErrorNotFound)
	}
	return c.JSON(http.StatusOK, toCollectionResponse(col))
}

func (s *HTTPServer) renameCollection(c echo.Context) error {
	id, err := pathID(c, "col")
	if err != nil {
		return err
	}
	var req nameRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := s.store.RenameCollection(ctx, currentUser(c), id, req.Name); err != nil {
		return err
	}

	col, ok := s.store.GetCollection(ctx, id)
	if !ok {
		return fmt.Errorf("collection %d: %w", id, common.ErrorNotFound)
	}
	return c.JSON(http.StatusOK, toCollectionResponse(col))
}

func (s *HTTPServer) deleteCollection(c echo.Context) error {
	id, err := pathID(c, "col")
	if err != nil {
		return err
	}

	if err := s.store.DeleteCollection(c.Request().Context(), currentUser(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
