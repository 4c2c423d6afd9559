package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/cinema_reservation/internal/hash"
	"github.com/Skotchmaster/cinema_reservation/internal/httperr"
	mwauth "github.com/Skotchmaster/cinema_reservation/internal/middleware/auth"
	"github.com/Skotchmaster/cinema_reservation/internal/models"
	"github.com/Skotchmaster/cinema_reservation/internal/mykafka"
	"github.com/Skotchmaster/cinema_reservation/internal/service/auth"
)

type UserHandler struct {
	DB       *gorm.DB
	Auth     *auth.Service
	Producer *mykafka.Producer
}

func (h *UserHandler) Register(c echo.Context) error {
	var req struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password"`
		Role      string `json:"role"`
		Activated *bool  `json:"activated"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.New(http.StatusBadRequest, "bad_request", "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return httperr.New(http.StatusBadRequest, "bad_request", "email and password are required")
	}

	role := models.RoleUser
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			return httperr.New(http.StatusBadRequest, "bad_request", err.Error())
		}
		role = parsed
	}

	activated := true
	if req.Activated != nil {
		activated = *req.Activated
	}

	user, err := h.Auth.Register(c.Request().Context(), auth.RegisterParams{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Role:      role,
		Activated: activated,
	})
	if err != nil {
		return err
	}

	publish(c, h.Producer, "user_events", user.UUID, map[string]interface{}{
		"type":  "user_registered",
		"uuid":  user.UUID,
		"email": user.Email,
	})

	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Me(c echo.Context) error {
	user, ok := mwauth.CurrentUser(c)
	if !ok {
		return httperr.New(http.StatusUnauthorized, "unauthorized", "Invalid token.")
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe overwrites only the fields present in the request.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	user, ok := mwauth.CurrentUser(c)
	if !ok {
		return httperr.New(http.StatusUnauthorized, "unauthorized", "Invalid token.")
	}

	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Password  *string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.New(http.StatusBadRequest, "bad_request", "invalid request body")
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Password != nil {
		passwordHash, err := hash.HashPassword(*req.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = passwordHash
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(user).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}
