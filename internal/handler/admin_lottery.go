package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/tpc-facilities/parking-lottery/internal/lottery"
    "github.com/tpc-facilities/parking-lottery/internal/period"
    "github.com/tpc-facilities/parking-lottery/internal/repository"
)

// AdminLotteryHandler runs and previews the quarterly draw.
type AdminLotteryHandler struct {
    Alloc *lottery.Allocator
}

func NewAdminLotteryHandler(a *lottery.Allocator) *AdminLotteryHandler {
    return &AdminLotteryHandler{Alloc: a}
}

// Preview shows participant and open-space counts without drawing, so
// the staff member can sanity-check the pool before committing.
func (h *AdminLotteryHandler) Preview(c echo.Context) error {
    p, err := period.Parse(c.Param("period"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid period code"})
    }
    counts, err := h.Alloc.Preview(c.Request().Context(), p.Code())
    if err != nil {
        c.Logger().Errorf("lottery preview %s: %v", p.Code(), err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "preview failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"period": p.Code(), "counts": counts})
}

// Run executes the draw.  A second run for the same period is refused
// with 409; the first outcome stands.
func (h *AdminLotteryHandler) Run(c echo.Context) error {
    p, err := period.Parse(c.Param("period"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid period code"})
    }
    out, err := h.Alloc.Run(c.Request().Context(), p.Code())
    if err != nil {
        if errors.Is(err, repository.ErrAlreadyAllocated) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "draw already ran for this period"})
        }
        c.Logger().Errorf("lottery run %s: %v", p.Code(), err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "draw failed"})
    }
    return c.JSON(http.StatusOK, out)
}
