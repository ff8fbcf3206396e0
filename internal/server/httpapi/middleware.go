package httpapi

import (
	"strings"

	"github.com/dmitrijs2005/litmgmt/internal/common"
	"github.com/dmitrijs2005/litmgmt/internal/server/models"
	"github.com/labstack/echo/v4"
)

const userKey = "user"

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(h, common.AuthorizationScheme) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, common.AuthorizationScheme))
}

// requireSession resolves the bearer token to a logged-in user. The token
// must carry a valid signature and still be registered in the directory.
func (s *HTTPServer) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			return common.ErrorUnauthorized
		}

		claims, err := s.tokens.Parse(token)
		if err != nil {
			return err
		}

		user, ok := s.users.ValidateToken(c.Request().Context(), token)
		if !ok || user.ID != claims.UserID {
			return common.ErrorUnauthorized
		}

		c.Set(userKey, user)
		return next(c)
	}
}

func currentUser(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}
