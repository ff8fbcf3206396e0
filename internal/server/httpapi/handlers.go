package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/litmgmt/internal/common"
	"github.com/dmitrijs2005/litmgmt/internal/server/descriptions"
	"github.com/labstack/echo/v4"
)

// bind decodes the JSON body. Malformed payloads, including unknown entry or
// field type names, become parse failures.
func bind(c echo.Context, v any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return fmt.Errorf("request body: %w", common.ErrParseFailure)
	}
	return nil
}

func pathID(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%s %q: %w", name, c.Param(name), common.ErrParseFailure)
	}
	return id, nil
}

func (s *HTTPServer) register(c echo.Context) error {
	var req credentialsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	u, err := s.users.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, userResponse{ID: u.ID, Name: u.Name, Email: u.Email})
}

func (s *HTTPServer) login(c echo.Context) error {
	var req credentialsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	token, err := s.users.Login(c.Request().Context(), req.Name, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tokenResponse{Token: token})
}

func (s *HTTPServer) logout(c echo.Context) error {
	s.users.Logout(c.Request().Context(), bearerToken(c))
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) listDescriptions(c echo.Context) error {
	return c.JSON(http.StatusOK, descriptions.All())
}
