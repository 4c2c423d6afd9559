package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/cinema_reservation/internal/handlers"
	mwauth "github.com/Skotchmaster/cinema_reservation/internal/middleware/auth"
	"github.com/Skotchmaster/cinema_reservation/internal/models"
)

type Deps struct {
	DB                 *gorm.DB
	Gate               *mwauth.Gate
	AuthHandler        *handlers.AuthHandler
	UserHandler        *handlers.UserHandler
	MovieHandler       *handlers.MovieHandler
	ShowtimeHandler    *handlers.ShowtimeHandler
	SeatHandler        *handlers.SeatHandler
	ReservationHandler *handlers.ReservationHandler
	SearchHandler      *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/users", d.UserHandler.Register)
	me := v1.Group("/users/me", d.Gate.RequireUser)
	me.GET("", d.UserHandler.Me)
	me.PATCH("", d.UserHandler.UpdateMe)

	authGroup := v1.Group("/auth")
	authGroup.POST("/login", d.AuthHandler.Login)
	authGroup.POST("/refresh", d.AuthHandler.Refresh, d.Gate.RequireRefresh)
	authGroup.POST("/logout", d.AuthHandler.Logout, d.Gate.RequireRefresh)

	movies := v1.Group("/movies", d.Gate.RequireAuth)
	movies.GET("", d.MovieHandler.GetMovies)
	movies.GET("/:uuid", d.MovieHandler.GetMovie)

	adminMovies := v1.Group("/movies", d.Gate.RequireRoles(models.RoleAdmin))
	adminMovies.POST("", d.MovieHandler.CreateMovie)
	adminMovies.PUT("/:uuid", d.MovieHandler.UpdateMovie)
	adminMovies.DELETE("/:uuid", d.MovieHandler.DeleteMovie)

	showtimes := v1.Group("/showtimes", d.Gate.RequireAuth)
	showtimes.GET("", d.ShowtimeHandler.GetShowtimes)
	showtimes.GET("/:uuid", d.ShowtimeHandler.GetShowtime)

	adminShowtimes := v1.Group("/showtimes", d.Gate.RequireRoles(models.RoleAdmin))
	adminShowtimes.POST("", d.ShowtimeHandler.CreateShowtime)
	adminShowtimes.PUT("/:uuid", d.ShowtimeHandler.UpdateShowtime)
	adminShowtimes.DELETE("/:uuid", d.ShowtimeHandler.DeleteShowtime)

	seats := v1.Group("/seats", d.Gate.RequireAuth)
	seats.GET("", d.SeatHandler.GetSeats)

	adminSeats := v1.Group("/seats", d.Gate.RequireRoles(models.RoleAdmin))
	adminSeats.POST("", d.SeatHandler.CreateSeats)
	adminSeats.DELETE("/:uuid", d.SeatHandler.DeleteSeat)

	reservations := v1.Group("/reservations", d.Gate.RequireUser)
	reservations.GET("", d.ReservationHandler.GetReservations)
	reservations.POST("", d.ReservationHandler.CreateReservation)
	reservations.DELETE("/:uuid", d.ReservationHandler.CancelReservation)

	v1.GET("/search", d.SearchHandler.Search, d.Gate.RequireAuth)
}
