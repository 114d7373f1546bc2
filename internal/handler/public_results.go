package handler

import (
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/tpc-facilities/parking-lottery/internal/lottery"
    "github.com/tpc-facilities/parking-lottery/internal/period"
    "github.com/tpc-facilities/parking-lottery/internal/report"
    "github.com/tpc-facilities/parking-lottery/internal/repository"
)

// ResultsHandler publishes the draw results of a period.  Names are
// masked before leaving the service; the raw names only exist in the
// admin surface.
type ResultsHandler struct {
    Entries *repository.LotteryRepo
}

func NewResultsHandler(e *repository.LotteryRepo) *ResultsHandler {
    return &ResultsHandler{Entries: e}
}

func (h *ResultsHandler) load(c echo.Context) (period.Period, []repository.ResultRow, error) {
    p, err := period.Parse(c.Param("period"))
    if err != nil {
        return period.Period{}, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid period code")
    }
    rows, err := h.Entries.ListResults(c.Request().Context(), p.Code())
    if err != nil {
        c.Logger().Errorf("list results %s: %v", p.Code(), err)
        return period.Period{}, nil, echo.NewHTTPError(http.StatusInternalServerError, "load results failed")
    }
    for i := range rows {
        rows[i].Name = lottery.MaskName(rows[i].Name)
    }
    return p, rows, nil
}

// Get returns the masked assignment table with the official title line.
func (h *ResultsHandler) Get(c echo.Context) error {
    p, rows, err := h.load(c)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{
        "period":  p.Code(),
        "title":   report.Title(p),
        "results": rows,
    })
}

// GetCSV streams the same table as a CSV download for the notice board
// printout.
func (h *ResultsHandler) GetCSV(c echo.Context) error {
    p, rows, err := h.load(c)
    if err != nil {
        return err
    }
    c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
    c.Response().Header().Set(echo.HeaderContentDisposition,
        fmt.Sprintf(`attachment; filename="lottery-%s.csv"`, p.Code()))
    c.Response().WriteHeader(http.StatusOK)
    return report.WriteCSV(c.Response(), rows)
}
