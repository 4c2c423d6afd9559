package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/cinema_reservation/internal/httperr"
	"github.com/Skotchmaster/cinema_reservation/internal/models"
	"github.com/Skotchmaster/cinema_reservation/internal/util"
)

type SeatHandler struct {
	DB *gorm.DB
}

func (h *SeatHandler) GetSeats(c echo.Context) error {
	limit, offset := util.Clamp(
		parseIntDefault(c.QueryParam("limit"), util.DefaultLimit),
		parseIntDefault(c.QueryParam("offset"), 0),
	)

	q := h.DB.WithContext(c.Request().Context()).Model(&models.Seat{})
	if showtimeUUID := c.QueryParam("showtime_uuid"); showtimeUUID != "" {
		var showtime models.Showtime
		if err := h.DB.WithContext(c.Request().Context()).Where("uuid = ?", showtimeUUID).First(&showtime).Error; err != nil {
			return err
		}
		q = q.Where("showtime_id = ?", showtime.ID)
	}
	if reserved := c.QueryParam("reserved"); reserved != "" {
		q = q.Where("reserved = ?", parseBoolDefault(reserved, false))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return err
	}

	var seats []models.Seat
	if err := q.Order("seat_number ASC").Offset(offset).Limit(limit).Find(&seats).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Page{Limit: limit, Offset: offset, Total: total, Items: seats})
}

func (h *SeatHandler) CreateSeats(c echo.Context) error {
	var req struct {
		ShowtimeUUID string   `json:"showtime_uuid"`
		SeatNumbers  []string `json:"seat_numbers"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.New(http.StatusBadRequest, "bad_request", "invalid request body")
	}
	if len(req.SeatNumbers) == 0 {
		return httperr.New(http.StatusBadRequest, "bad_request", "seat_numbers is required")
	}

	var showtime models.Showtime
	if err := h.DB.WithContext(c.Request().Context()).Where("uuid = ?", req.ShowtimeUUID).First(&showtime).Error; err != nil {
		return err
	}

	seats := make([]models.Seat, len(req.SeatNumbers))
	for i, number := range req.SeatNumbers {
		seats[i] = models.Seat{
			UUID:       uuid.NewString(),
			SeatNumber: number,
			ShowtimeID: showtime.ID,
		}
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&seats).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, seats)
}

func (h *SeatHandler) DeleteSeat(c echo.Context) error {
	var seat models.Seat
	if err := h.DB.WithContext(c.Request().Context()).Where("uuid = ?", c.Param("uuid")).First(&seat).Error; err != nil {
		return err
	}
	if seat.Reserved {
		return httperr.New(http.StatusBadRequest, "seat_reserved", "cannot delete a reserved seat")
	}
	if err := h.DB.WithContext(c.Request().Context()).Delete(&seat).Error; err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
