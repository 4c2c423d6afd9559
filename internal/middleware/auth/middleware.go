package auth

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/cinema_reservation/internal/httperr"
	"github.com/Skotchmaster/cinema_reservation/internal/models"
)

// RequireAuth is the lightweight gate: a valid access token is enough,
// the identity is not materialized.
func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userUUID, role, err := g.authenticate(c, AccessCookie, "uuid")
		if err != nil {
			return err
		}
		c.Set(ctxUserUUID, userUUID)
		c.Set(ctxUserRole, role)
		return next(c)
	}
}

// RequireRefresh gates the token-rotation flow on a valid refresh token.
func (g *Gate) RequireRefresh(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userUUID, role, err := g.authenticate(c, RefreshCookie, "verify")
		if err != nil {
			return err
		}
		c.Set(ctxUserUUID, userUUID)
		c.Set(ctxUserRole, role)
		return next(c)
	}
}

// RequireUser materializes the identity and rejects inactive accounts.
func (g *Gate) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := g.currentUser(c)
		if err != nil {
			return err
		}
		c.Set(ctxUserUUID, user.UUID)
		c.Set(ctxUserRole, user.Role)
		c.Set(ctxUser, user)
		return next(c)
	}
}

// RequireRoles admits only users whose stored role is in the allowed set.
// An empty set admits nobody.
func (g *Gate) RequireRoles(allowed ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := g.currentUser(c)
			if err != nil {
				return err
			}
			if !slices.Contains(allowed, user.Role) {
				return httperr.New(http.StatusForbidden, "forbidden",
					"You do not have permission to perform this operation.")
			}
			c.Set(ctxUserUUID, user.UUID)
			c.Set(ctxUserRole, user.Role)
			c.Set(ctxUser, user)
			return next(c)
		}
	}
}
