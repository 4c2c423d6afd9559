package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/cinema_reservation/internal/httperr"
	mwauth "github.com/Skotchmaster/cinema_reservation/internal/middleware/auth"
	"github.com/Skotchmaster/cinema_reservation/internal/models"
	"github.com/Skotchmaster/cinema_reservation/internal/mykafka"
	"github.com/Skotchmaster/cinema_reservation/internal/util"
)

type ReservationHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

// CreateReservation books a set of seats for one showtime. Seat flags,
// the seat counter and the reservation rows move inside one transaction;
// any conflict rolls the whole booking back.
func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	user, ok := mwauth.CurrentUser(c)
	if !ok {
		return httperr.New(http.StatusUnauthorized, "unauthorized", "Invalid token.")
	}

	var req struct {
		ShowtimeUUID string   `json:"showtime_uuid"`
		SeatUUIDs    []string `json:"seat_uuids"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.New(http.StatusBadRequest, "bad_request", "invalid request body")
	}
	if len(req.SeatUUIDs) == 0 {
		return httperr.New(http.StatusBadRequest, "bad_request", "seat_uuids is required")
	}

	var reservation models.Reservation
	err := h.DB.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		var showtime models.Showtime
		if err := tx.Where("uuid = ?", req.ShowtimeUUID).First(&showtime).Error; err != nil {
			return err
		}

		var seats []models.Seat
		if err := tx.Where("uuid IN ? AND showtime_id = ?", req.SeatUUIDs, showtime.ID).Find(&seats).Error; err != nil {
			return err
		}
		if len(seats) != len(req.SeatUUIDs) {
			return httperr.New(http.StatusNotFound, "not_found", "seat not found for this showtime")
		}

		seatIDs := make([]uint, len(seats))
		for i, seat := range seats {
			if seat.Reserved {
				return httperr.New(http.StatusBadRequest, "seat_reserved", "seat "+seat.SeatNumber+" is already reserved")
			}
			seatIDs[i] = seat.ID
		}

		if showtime.AvailableSeats < len(seats) {
			return httperr.New(http.StatusBadRequest, "no_seats", "not enough available seats")
		}

		if err := tx.Model(&models.Seat{}).Where("id IN ?", seatIDs).Update("reserved", true).Error; err != nil {
			return err
		}
		showtime.AvailableSeats -= len(seats)
		if err := tx.Save(&showtime).Error; err != nil {
			return err
		}

		reservation = models.Reservation{
			UUID:       uuid.NewString(),
			Status:     models.ReservationPending,
			ReservedAt: tx.NowFunc(),
			UserID:     user.ID,
			ShowtimeID: showtime.ID,
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return err
		}

		seatReservations := make([]models.SeatReservation, len(seats))
		for i, seat := range seats {
			seatReservations[i] = models.SeatReservation{
				UUID:          uuid.NewString(),
				ReservationID: reservation.ID,
				SeatID:        seat.ID,
			}
		}
		return tx.Create(&seatReservations).Error
	})
	if err != nil {
		return err
	}

	publish(c, h.Producer, "reservation_events", reservation.UUID, map[string]interface{}{
		"type":      "reservation_created",
		"uuid":      reservation.UUID,
		"user_uuid": user.UUID,
		"seats":     len(req.SeatUUIDs),
	})

	return c.JSON(http.StatusCreated, reservation)
}

func (h *ReservationHandler) GetReservations(c echo.Context) error {
	user, ok := mwauth.CurrentUser(c)
	if !ok {
		return httperr.New(http.StatusUnauthorized, "unauthorized", "Invalid token.")
	}

	limit, offset := util.Clamp(
		parseIntDefault(c.QueryParam("limit"), util.DefaultLimit),
		parseIntDefault(c.QueryParam("offset"), 0),
	)

	q := h.DB.WithContext(c.Request().Context()).Model(&models.Reservation{}).Where("user_id = ?", user.ID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return err
	}

	var reservations []models.Reservation
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reservations).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Page{Limit: limit, Offset: offset, Total: total, Items: reservations})
}

// CancelReservation releases the booked seats and marks the reservation
// canceled, all in one transaction.
func (h *ReservationHandler) CancelReservation(c echo.Context) error {
	user, ok := mwauth.CurrentUser(c)
	if !ok {
		return httperr.New(http.StatusUnauthorized, "unauthorized", "Invalid token.")
	}

	var reservation models.Reservation
	err := h.DB.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("uuid = ? AND user_id = ?", c.Param("uuid"), user.ID).First(&reservation).Error; err != nil {
			return err
		}
		if reservation.Status == models.ReservationCanceled {
			return httperr.New(http.StatusBadRequest, "bad_request", "reservation is already canceled")
		}

		var seatReservations []models.SeatReservation
		if err := tx.Where("reservation_id = ?", reservation.ID).Find(&seatReservations).Error; err != nil {
			return err
		}

		seatIDs := make([]uint, len(seatReservations))
		for i, sr := range seatReservations {
			seatIDs[i] = sr.SeatID
		}
		if len(seatIDs) > 0 {
			if err := tx.Model(&models.Seat{}).Where("id IN ?", seatIDs).Update("reserved", false).Error; err != nil {
				return err
			}
		}

		var showtime models.Showtime
		if err := tx.First(&showtime, reservation.ShowtimeID).Error; err != nil {
			return err
		}
		showtime.AvailableSeats += len(seatIDs)
		if err := tx.Save(&showtime).Error; err != nil {
			return err
		}

		reservation.Status = models.ReservationCanceled
		return tx.Save(&reservation).Error
	})
	if err != nil {
		return err
	}

	publish(c, h.Producer, "reservation_events", reservation.UUID, map[string]interface{}{
		"type":      "reservation_canceled",
		"uuid":      reservation.UUID,
		"user_uuid": user.UUID,
	})

	return c.JSON(http.StatusOK, reservation)
}
