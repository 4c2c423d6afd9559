package models

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole rejects anything outside the closed role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCanceled  ReservationStatus = "canceled"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID         string    `gorm:"uniqueIndex;not null"     json:"uuid"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	FirstName    string    `gorm:"size:50"                  json:"first_name"`
	LastName     string    `gorm:"size:50"                  json:"last_name"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         Role      `gorm:"not null;default:user"    json:"role"`
	Activated    bool      `gorm:"not null;default:true"    json:"activated"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Movie struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID        string    `gorm:"uniqueIndex;not null"     json:"uuid"`
	Title       string    `gorm:"size:255;not null"        json:"title"`
	Description string    `json:"description"`
	Poster      string    `json:"poster"`
	Genre       string    `gorm:"size:50;not null"         json:"genre"`
	ReleaseDate time.Time `gorm:"not null"                 json:"release_date"`
	Activated   bool      `gorm:"not null;default:true"    json:"activated"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Showtime struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID           string    `gorm:"uniqueIndex;not null"     json:"uuid"`
	StartTime      time.Time `gorm:"not null"                 json:"start_time"`
	EndTime        time.Time `gorm:"not null"                 json:"end_time"`
	AvailableSeats int       `gorm:"not null"                 json:"available_seats"`
	TotalSeats     int       `gorm:"not null"                 json:"total_seats"`
	MovieID        uint      `gorm:"index;not null"           json:"movie_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Seat struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID       string    `gorm:"uniqueIndex;not null"     json:"uuid"`
	SeatNumber string    `gorm:"size:10;not null"         json:"seat_number"`
	Reserved   bool      `gorm:"not null;default:false"   json:"reserved"`
	ShowtimeID uint      `gorm:"index;not null"           json:"showtime_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Reservation struct {
	ID         uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID       string            `gorm:"uniqueIndex;not null"     json:"uuid"`
	Status     ReservationStatus `gorm:"not null;default:pending" json:"status"`
	ReservedAt time.Time         `gorm:"not null"                 json:"reserved_at"`
	UserID     uint              `gorm:"index;not null"           json:"user_id"`
	ShowtimeID uint              `gorm:"index;not null"           json:"showtime_id"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

type SeatReservation struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID          string    `gorm:"uniqueIndex;not null"     json:"uuid"`
	ReservationID uint      `gorm:"index;not null"           json:"reservation_id"`
	SeatID        uint      `gorm:"not null"                 json:"seat_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
