package handlers

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/cinema_reservation/internal/httperr"
	"github.com/Skotchmaster/cinema_reservation/internal/service/search"
	"github.com/Skotchmaster/cinema_reservation/internal/util"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
}

func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return httperr.New(http.StatusBadRequest, "bad_request", "q is required")
	}

	limit, offset := util.Clamp(
		parseIntDefault(c.QueryParam("limit"), util.DefaultLimit),
		parseIntDefault(c.QueryParam("offset"), 0),
	)

	total, movies, err := search.Search(c.Request().Context(), h.ES, h.Index, q, offset, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Page{Limit: limit, Offset: offset, Total: total, Items: movies})
}
