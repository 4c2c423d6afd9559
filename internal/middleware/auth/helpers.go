package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/cinema_reservation/internal/httperr"
	"github.com/Skotchmaster/cinema_reservation/internal/models"
	"github.com/Skotchmaster/cinema_reservation/internal/token"
)

const (
	AccessCookie  = "Access-Token"
	RefreshCookie = "Refresh-Token"
)

const (
	ctxUserUUID = "userUUID"
	ctxUserRole = "userRole"
	ctxUser     = "currentUser"
)

// Gate authenticates requests and resolves the current user for flows
// that need a materialized identity.
type Gate struct {
	DB    *gorm.DB
	Codec *token.Codec
}

// extractToken pulls the named cookie and, when an Authorization header
// rides along, requires it to carry the exact same token. A cookie paired
// with a different bearer token is treated as a substitution attempt.
func (g *Gate) extractToken(c echo.Context, cookieName string) (string, error) {
	cookie, err := c.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return "", httperr.New(http.StatusUnauthorized, "unauthorized", cookieName+" is not provided.")
	}

	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		bearer, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || bearer != cookie.Value {
			return "", httperr.New(http.StatusUnauthorized, "unauthorized", "Invalid token.")
		}
	}

	return cookie.Value, nil
}

// authenticate decodes the named cookie and extracts the subject uuid
// from the claim key matching the token purpose ("uuid" for access
// tokens, "verify" for refresh tokens).
func (g *Gate) authenticate(c echo.Context, cookieName, claimKey string) (string, models.Role, error) {
	rawToken, err := g.extractToken(c, cookieName)
	if err != nil {
		return "", "", err
	}

	claims, err := g.Codec.Decode(rawToken)
	if err != nil {
		return "", "", err
	}

	subject, _ := claims[claimKey].(string)
	if subject == "" {
		return "", "", httperr.New(http.StatusUnauthorized, "unauthorized", "Invalid token.")
	}

	role, _ := claims["role"].(string)
	return subject, models.Role(role), nil
}

// currentUser materializes the authenticated identity and enforces the
// active flag. Every call re-reads from the database, no caching.
func (g *Gate) currentUser(c echo.Context) (*models.User, error) {
	userUUID, _, err := g.authenticate(c, AccessCookie, "uuid")
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := g.DB.WithContext(c.Request().Context()).Where("uuid = ?", userUUID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.New(http.StatusNotFound, "not_found", "User not found.")
		}
		return nil, err
	}

	if !user.Activated {
		return nil, httperr.New(http.StatusBadRequest, "inactive_account", "The user is inactive.")
	}

	return &user, nil
}

// CurrentUser returns the user materialized by RequireUser or RequireRoles.
func CurrentUser(c echo.Context) (*models.User, bool) {
	user, ok := c.Get(ctxUser).(*models.User)
	return user, ok
}

// AuthenticatedUUID returns the subject uuid set by any of the gates.
func AuthenticatedUUID(c echo.Context) string {
	uuid, _ := c.Get(ctxUserUUID).(string)
	return uuid
}
