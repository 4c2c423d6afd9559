package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/cinema_reservation/internal/config"
	"github.com/Skotchmaster/cinema_reservation/internal/es"
	"github.com/Skotchmaster/cinema_reservation/internal/handlers"
	"github.com/Skotchmaster/cinema_reservation/internal/httperr"
	"github.com/Skotchmaster/cinema_reservation/internal/logging"
	mwauth "github.com/Skotchmaster/cinema_reservation/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/cinema_reservation/internal/middleware/logging"
	"github.com/Skotchmaster/cinema_reservation/internal/mykafka"
	"github.com/Skotchmaster/cinema_reservation/internal/service/auth"
	"github.com/Skotchmaster/cinema_reservation/internal/session"
	"github.com/Skotchmaster/cinema_reservation/internal/token"
	httpserver "github.com/Skotchmaster/cinema_reservation/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	redisClient, err := config.InitRedis(configuration)
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}

	brokers := []string{configuration.KAFKA_ADDRESS}
	topics := []string{"user_events", "movie_events", "reservation_events"}
	prod, err := mykafka.NewProducer(brokers, topics)
	if err != nil {
		log.Fatal(err)
	}

	esClient, err := es.NewClient(es.Config{
		URL:      configuration.ES_URL,
		Username: configuration.ES_USER,
		Password: configuration.ES_PASSWORD,
	})
	if err != nil {
		log.Fatal(err)
	}

	codec := &token.Codec{
		Secret:     []byte(configuration.JWT_SECRET),
		AccessTTL:  configuration.ACCESS_TTL,
		RefreshTTL: configuration.REFRESH_TTL,
	}
	sessionStore := session.NewStore(redisClient)
	authService := &auth.Service{DB: db, Codec: codec, Store: sessionStore}
	gate := &mwauth.Gate{DB: db, Codec: codec}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httperr.Handler(logger)
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:                 db,
		Gate:               gate,
		AuthHandler:        &handlers.AuthHandler{Auth: authService, Codec: codec, Producer: prod},
		UserHandler:        &handlers.UserHandler{DB: db, Auth: authService, Producer: prod},
		MovieHandler:       &handlers.MovieHandler{DB: db, Producer: prod},
		ShowtimeHandler:    &handlers.ShowtimeHandler{DB: db},
		SeatHandler:        &handlers.SeatHandler{DB: db},
		ReservationHandler: &handlers.ReservationHandler{DB: db, Producer: prod},
		SearchHandler:      &handlers.SearchHandler{ES: esClient, Index: "movies"},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err.Error())
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err.Error())
		}
	}

	if err := redisClient.Close(); err != nil {
		logger.Error("redis close error", "error", err.Error())
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err.Error())
	}

	logger.Info("shutdown complete")
}
