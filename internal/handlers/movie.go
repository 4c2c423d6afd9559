package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/cinema_reservation/internal/httperr"
	"github.com/Skotchmaster/cinema_reservation/internal/models"
	"github.com/Skotchmaster/cinema_reservation/internal/mykafka"
	"github.com/Skotchmaster/cinema_reservation/internal/util"
)

type MovieHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *MovieHandler) GetMovies(c echo.Context) error {
	limit, offset := util.Clamp(
		parseIntDefault(c.QueryParam("limit"), util.DefaultLimit),
		parseIntDefault(c.QueryParam("offset"), 0),
	)

	q := h.DB.WithContext(c.Request().Context()).Model(&models.Movie{}).
		Where("activated = ?", parseBoolDefault(c.QueryParam("activated"), true))
	if title := c.QueryParam("title"); title != "" {
		q = q.Where("title LIKE ?", "%"+title+"%")
	}
	if genre := c.QueryParam("genre"); genre != "" {
		q = q.Where("genre = ?", genre)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return err
	}

	var movies []models.Movie
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&movies).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Page{Limit: limit, Offset: offset, Total: total, Items: movies})
}

func (h *MovieHandler) GetMovie(c echo.Context) error {
	var movie models.Movie
	if err := h.DB.WithContext(c.Request().Context()).Where("uuid = ?", c.Param("uuid")).First(&movie).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, movie)
}

func (h *MovieHandler) CreateMovie(c echo.Context) error {
	var req struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Poster      string    `json:"poster"`
		Genre       string    `json:"genre"`
		ReleaseDate time.Time `json:"release_date"`
		Activated   *bool     `json:"activated"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.New(http.StatusBadRequest, "bad_request", "invalid request body")
	}
	if req.Title == "" || req.Genre == "" {
		return httperr.New(http.StatusBadRequest, "bad_request", "title and genre are required")
	}

	activated := true
	if req.Activated != nil {
		activated = *req.Activated
	}

	movie := models.Movie{
		UUID:        uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Poster:      req.Poster,
		Genre:       req.Genre,
		ReleaseDate: req.ReleaseDate,
		Activated:   activated,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&movie).Error; err != nil {
		return err
	}

	publish(c, h.Producer, "movie_events", movie.UUID, map[string]interface{}{
		"type":  "movie_created",
		"uuid":  movie.UUID,
		"title": movie.Title,
	})

	return c.JSON(http.StatusCreated, movie)
}

// UpdateMovie merges only the supplied fields into the stored record.
func (h *MovieHandler) UpdateMovie(c echo.Context) error {
	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Poster      *string    `json:"poster"`
		Genre       *string    `json:"genre"`
		ReleaseDate *time.Time `json:"release_date"`
		Activated   *bool      `json:"activated"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.New(http.StatusBadRequest, "bad_request", "invalid request body")
	}

	var movie models.Movie
	if err := h.DB.WithContext(c.Request().Context()).Where("uuid = ?", c.Param("uuid")).First(&movie).Error; err != nil {
		return err
	}

	if req.Title != nil {
		movie.Title = *req.Title
	}
	if req.Description != nil {
		movie.Description = *req.Description
	}
	if req.Poster != nil {
		movie.Poster = *req.Poster
	}
	if req.Genre != nil {
		movie.Genre = *req.Genre
	}
	if req.ReleaseDate != nil {
		movie.ReleaseDate = *req.ReleaseDate
	}
	if req.Activated != nil {
		movie.Activated = *req.Activated
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(&movie).Error; err != nil {
		return err
	}

	publish(c, h.Producer, "movie_events", movie.UUID, map[string]interface{}{
		"type":  "movie_updated",
		"uuid":  movie.UUID,
		"title": movie.Title,
	})

	return c.JSON(http.StatusOK, movie)
}

func (h *MovieHandler) DeleteMovie(c echo.Context) error {
	var movie models.Movie
	if err := h.DB.WithContext(c.Request().Context()).Where("uuid = ?", c.Param("uuid")).First(&movie).Error; err != nil {
		return err
	}

	if err := h.DB.WithContext(c.Request().Context()).Delete(&movie).Error; err != nil {
		return err
	}

	publish(c, h.Producer, "movie_events", movie.UUID, map[string]interface{}{
		"type": "movie_deleted",
		"uuid": movie.UUID,
	})

	return c.NoContent(http.StatusNoContent)
}
