package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/cinema_reservation/internal/models"
	"github.com/Skotchmaster/cinema_reservation/internal/mykafka"
)

func newMovieHandler(t *testing.T) *MovieHandler {
	t.Helper()
	return &MovieHandler{DB: initTestDB(t), Producer: &mykafka.Producer{}}
}

func createMovie(t *testing.T, h *MovieHandler, payload map[string]interface{}) models.Movie {
	t.Helper()
	c, rec := jsonRequest(t, http.MethodPost, "/api/v1/movies", payload)
	require.NoError(t, h.CreateMovie(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var movie models.Movie
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movie))
	return movie
}

func TestCreateMovie(t *testing.T) {
	h := newMovieHandler(t)

	movie := createMovie(t, h, map[string]interface{}{
		"title":       "Alien",
		"description": "In space no one can hear you scream",
		"genre":       "horror",
	})
	require.NotEmpty(t, movie.UUID)
	require.Equal(t, "Alien", movie.Title)
	require.True(t, movie.Activated)

	c, _ := jsonRequest(t, http.MethodPost, "/api/v1/movies", map[string]interface{}{
		"description": "missing required fields",
	})
	err := h.CreateMovie(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGetMovie(t *testing.T) {
	h := newMovieHandler(t)
	movie := createMovie(t, h, map[string]interface{}{"title": "Alien", "genre": "horror"})

	c, rec := jsonRequest(t, http.MethodGet, "/api/v1/movies/"+movie.UUID, nil)
	c.SetParamNames("uuid")
	c.SetParamValues(movie.UUID)
	require.NoError(t, h.GetMovie(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, _ = jsonRequest(t, http.MethodGet, "/api/v1/movies/nope", nil)
	c.SetParamNames("uuid")
	c.SetParamValues("nope")
	require.True(t, errors.Is(h.GetMovie(c), gorm.ErrRecordNotFound))
}

func TestGetMoviesFiltersAndPaginates(t *testing.T) {
	h := newMovieHandler(t)
	createMovie(t, h, map[string]interface{}{"title": "Alien", "genre": "horror"})
	createMovie(t, h, map[string]interface{}{"title": "Aliens", "genre": "horror"})
	createMovie(t, h, map[string]interface{}{"title": "Amelie", "genre": "romance"})
	createMovie(t, h, map[string]interface{}{"title": "Hidden", "genre": "horror", "activated": false})

	listMovies := func(target string) (Page, []models.Movie) {
		c, rec := jsonRequest(t, http.MethodGet, target, nil)
		require.NoError(t, h.GetMovies(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var page struct {
			Page
			Items []models.Movie `json:"items"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		return page.Page, page.Items
	}

	// deactivated movies are hidden by default
	page, items := listMovies("/api/v1/movies")
	require.EqualValues(t, 3, page.Total)
	require.Len(t, items, 3)

	page, items = listMovies("/api/v1/movies?genre=horror")
	require.EqualValues(t, 2, page.Total)

	page, items = listMovies("/api/v1/movies?title=Alien")
	require.EqualValues(t, 2, page.Total)

	page, items = listMovies("/api/v1/movies?limit=2&offset=2")
	require.EqualValues(t, 3, page.Total)
	require.Len(t, items, 1)
	require.Equal(t, 2, page.Limit)
	require.Equal(t, 2, page.Offset)

	// limits above the cap are clamped
	page, _ = listMovies("/api/v1/movies?limit=1000")
	require.Equal(t, 100, page.Limit)
}

func TestUpdateMoviePartial(t *testing.T) {
	h := newMovieHandler(t)
	movie := createMovie(t, h, map[string]interface{}{
		"title":       "Alien",
		"description": "original",
		"genre":       "horror",
	})

	c, rec := jsonRequest(t, http.MethodPut, "/api/v1/movies/"+movie.UUID, map[string]interface{}{
		"description": "directors cut",
		"activated":   false,
	})
	c.SetParamNames("uuid")
	c.SetParamValues(movie.UUID)
	require.NoError(t, h.UpdateMovie(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Movie
	require.NoError(t, h.DB.Where("uuid = ?", movie.UUID).First(&updated).Error)
	require.Equal(t, "directors cut", updated.Description)
	require.False(t, updated.Activated)
	// fields not supplied stay untouched
	require.Equal(t, "Alien", updated.Title)
	require.Equal(t, "horror", updated.Genre)
}

func TestDeleteMovie(t *testing.T) {
	h := newMovieHandler(t)
	movie := createMovie(t, h, map[string]interface{}{"title": "Alien", "genre": "horror"})

	c, rec := jsonRequest(t, http.MethodDelete, "/api/v1/movies/"+movie.UUID, nil)
	c.SetParamNames("uuid")
	c.SetParamValues(movie.UUID)
	require.NoError(t, h.DeleteMovie(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	require.NoError(t, h.DB.Model(&models.Movie{}).Where("uuid = ?", movie.UUID).Count(&count).Error)
	require.EqualValues(t, 0, count)

	c, _ = jsonRequest(t, http.MethodDelete, "/api/v1/movies/"+movie.UUID, nil)
	c.SetParamNames("uuid")
	c.SetParamValues(movie.UUID)
	require.True(t, errors.Is(h.DeleteMovie(c), gorm.ErrRecordNotFound))
}
