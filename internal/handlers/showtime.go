package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/cinema_reservation/internal/httperr"
	"github.com/Skotchmaster/cinema_reservation/internal/models"
	"github.com/Skotchmaster/cinema_reservation/internal/util"
)

type ShowtimeHandler struct {
	DB *gorm.DB
}

func (h *ShowtimeHandler) GetShowtimes(c echo.Context) error {
	limit, offset := util.Clamp(
		parseIntDefault(c.QueryParam("limit"), util.DefaultLimit),
		parseIntDefault(c.QueryParam("offset"), 0),
	)

	q := h.DB.WithContext(c.Request().Context()).Model(&models.Showtime{})
	if movieUUID := c.QueryParam("movie_uuid"); movieUUID != "" {
		var movie models.Movie
		if err := h.DB.WithContext(c.Request().Context()).Where("uuid = ?", movieUUID).First(&movie).Error; err != nil {
			return err
		}
		q = q.Where("movie_id = ?", movie.ID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return err
	}

	var showtimes []models.Showtime
	if err := q.Order("start_time ASC").Offset(offset).Limit(limit).Find(&showtimes).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Page{Limit: limit, Offset: offset, Total: total, Items: showtimes})
}

func (h *ShowtimeHandler) GetShowtime(c echo.Context) error {
	var showtime models.Showtime
	if err := h.DB.WithContext(c.Request().Context()).Where("uuid = ?", c.Param("uuid")).First(&showtime).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, showtime)
}

func (h *ShowtimeHandler) CreateShowtime(c echo.Context) error {
	var req struct {
		MovieUUID  string    `json:"movie_uuid"`
		StartTime  time.Time `json:"start_time"`
		EndTime    time.Time `json:"end_time"`
		TotalSeats int       `json:"total_seats"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.New(http.StatusBadRequest, "bad_request", "invalid request body")
	}
	if req.TotalSeats <= 0 {
		return httperr.New(http.StatusBadRequest, "bad_request", "total_seats must be positive")
	}
	if !req.EndTime.After(req.StartTime) {
		return httperr.New(http.StatusBadRequest, "bad_request", "end_time must be after start_time")
	}

	var movie models.Movie
	if err := h.DB.WithContext(c.Request().Context()).Where("uuid = ?", req.MovieUUID).First(&movie).Error; err != nil {
		return err
	}

	showtime := models.Showtime{
		UUID:           uuid.NewString(),
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		AvailableSeats: req.TotalSeats,
		TotalSeats:     req.TotalSeats,
		MovieID:        movie.ID,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&showtime).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, showtime)
}

func (h *ShowtimeHandler) UpdateShowtime(c echo.Context) error {
	var req struct {
		StartTime *time.Time `json:"start_time"`
		EndTime   *time.Time `json:"end_time"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.New(http.StatusBadRequest, "bad_request", "invalid request body")
	}

	var showtime models.Showtime
	if err := h.DB.WithContext(c.Request().Context()).Where("uuid = ?", c.Param("uuid")).First(&showtime).Error; err != nil {
		return err
	}

	if req.StartTime != nil {
		showtime.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		showtime.EndTime = *req.EndTime
	}
	if !showtime.EndTime.After(showtime.StartTime) {
		return httperr.New(http.StatusBadRequest, "bad_request", "end_time must be after start_time")
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(&showtime).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, showtime)
}

func (h *ShowtimeHandler) DeleteShowtime(c echo.Context) error {
	var showtime models.Showtime
	if err := h.DB.WithContext(c.Request().Context()).Where("uuid = ?", c.Param("uuid")).First(&showtime).Error; err != nil {
		return err
	}
	if err := h.DB.WithContext(c.Request().Context()).Delete(&showtime).Error; err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
