package handler

import (
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/tpc-facilities/parking-lottery/internal/eligibility"
    "github.com/tpc-facilities/parking-lottery/internal/lock"
    "github.com/tpc-facilities/parking-lottery/internal/period"
    "github.com/tpc-facilities/parking-lottery/internal/repository"
)

// ApplicationHandler exposes the public submission endpoint and the
// current-period probe the form uses to label itself.
type ApplicationHandler struct {
    Resolver *eligibility.Resolver
}

func NewApplicationHandler(r *eligibility.Resolver) *ApplicationHandler {
    return &ApplicationHandler{Resolver: r}
}

// Submit accepts one parking application for the running period.
// Validation failures map to 400, conflicts with existing records to
// 409, and lock contention to 503 with a Retry-After so the form can
// resubmit automatically.
func (h *ApplicationHandler) Submit(c echo.Context) error {
    var sub eligibility.Submission
    if err := c.Bind(&sub); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    w := period.WindowFor(period.FromTime(time.Now()))

    d, err := h.Resolver.Submit(c.Request().Context(), w, sub)
    if err != nil {
        switch {
        case errors.Is(err, eligibility.ErrIncompleteForm),
            errors.Is(err, eligibility.ErrMalformedPlate),
            errors.Is(err, eligibility.ErrMalformedID):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
        case errors.Is(err, eligibility.ErrDuplicate), errors.Is(err, repository.ErrConflict):
            return c.JSON(http.StatusConflict, echo.Map{"error": "您本期已經申請過停車位了!"})
        case errors.Is(err, eligibility.ErrAlreadyParked):
            return c.JSON(http.StatusConflict, echo.Map{"error": "您上期已確認停車，請您下期再來申請停車位!"})
        case errors.Is(err, lock.ErrBusy):
            c.Response().Header().Set("Retry-After", "1")
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "系統忙碌中，請稍後再試。"})
        default:
            c.Logger().Errorf("submit application: %v", err)
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "submit failed"})
        }
    }

    return c.JSON(http.StatusCreated, echo.Map{
        "period":   w.Current,
        "decision": d,
    })
}

// CurrentPeriod returns the running allocation period and its look-back
// window.
func (h *ApplicationHandler) CurrentPeriod(c echo.Context) error {
    p := period.FromTime(time.Now())
    w := period.WindowFor(p)
    return c.JSON(http.StatusOK, echo.Map{
        "period":    w.Current,
        "year":      p.Year,
        "quarter":   p.Quarter,
        "previous1": w.Previous1,
        "previous2": w.Previous2,
    })
}
