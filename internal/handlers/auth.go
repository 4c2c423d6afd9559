package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/cinema_reservation/internal/httperr"
	mwauth "github.com/Skotchmaster/cinema_reservation/internal/middleware/auth"
	"github.com/Skotchmaster/cinema_reservation/internal/mykafka"
	"github.com/Skotchmaster/cinema_reservation/internal/service/auth"
	"github.com/Skotchmaster/cinema_reservation/internal/token"
)

type AuthHandler struct {
	Auth     *auth.Service
	Codec    *token.Codec
	Producer *mykafka.Producer
}

// setTokenCookies attaches both tokens with their own absolute expiry so
// the browser drops each cookie exactly when the token inside it dies.
func (h *AuthHandler) setTokenCookies(c echo.Context, pair auth.TokenPair) error {
	accessExp, err := h.Codec.ExpiresAt(pair.AccessToken)
	if err != nil {
		return err
	}
	refreshExp, err := h.Codec.ExpiresAt(pair.RefreshToken)
	if err != nil {
		return err
	}

	c.SetCookie(CreateCookie(mwauth.AccessCookie, pair.AccessToken, accessExp))
	c.SetCookie(CreateCookie(mwauth.RefreshCookie, pair.RefreshToken, refreshExp))
	return nil
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.New(http.StatusBadRequest, "bad_request", "invalid request body")
	}

	pair, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	if err := h.setTokenCookies(c, pair); err != nil {
		return err
	}

	claims, err := h.Codec.Decode(pair.AccessToken)
	if err == nil {
		userUUID, _ := claims["uuid"].(string)
		publish(c, h.Producer, "user_events", userUUID, map[string]interface{}{
			"type": "user_logged_in",
			"uuid": userUUID,
		})
	}

	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	refreshCookie, err := c.Cookie(mwauth.RefreshCookie)
	if err != nil {
		return httperr.New(http.StatusUnauthorized, "unauthorized", mwauth.RefreshCookie+" is not provided.")
	}

	pair, err := h.Auth.Refresh(c.Request().Context(), refreshCookie.Value)
	if err != nil {
		return err
	}

	if err := h.setTokenCookies(c, pair); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	refreshCookie, err := c.Cookie(mwauth.RefreshCookie)
	if err != nil {
		return httperr.New(http.StatusUnauthorized, "unauthorized", mwauth.RefreshCookie+" is not provided.")
	}

	if err := h.Auth.Logout(c.Request().Context(), refreshCookie.Value); err != nil {
		return err
	}

	expired := time.Now().Add(-time.Hour)
	c.SetCookie(CreateCookie(mwauth.AccessCookie, "", expired))
	c.SetCookie(CreateCookie(mwauth.RefreshCookie, "", expired))

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
