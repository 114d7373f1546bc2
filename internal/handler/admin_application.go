package handler

import (
    "net/http"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/tpc-facilities/parking-lottery/internal/model"
    "github.com/tpc-facilities/parking-lottery/internal/period"
    "github.com/tpc-facilities/parking-lottery/internal/repository"
)

// AdminApplicationHandler covers the roster maintenance the facilities
// staff do outside the public form: inspecting a period's applications,
// inserting records by hand (service vehicles, paper forms) and
// withdrawing records on request.
type AdminApplicationHandler struct {
    Store *repository.Store
}

func NewAdminApplicationHandler(store *repository.Store) *AdminApplicationHandler {
    return &AdminApplicationHandler{Store: store}
}

// List returns every application of a period, newest first.  Without a
// period query parameter the running period is used.
func (h *AdminApplicationHandler) List(c echo.Context) error {
    code := c.QueryParam("period")
    if code == "" {
        code = period.FromTime(time.Now()).Code()
    } else if _, err := period.Parse(code); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid period code"})
    }
    apps, err := h.Store.Apps.ListByPeriod(c.Request().Context(), code)
    if err != nil {
        c.Logger().Errorf("list applications %s: %v", code, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load applications failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"period": code, "applications": apps})
}

type manualInsertReq struct {
    Period      string `json:"period"`
    ApplicantID string `json:"applicant_id"`
    Name        string `json:"name"`
    Unit        string `json:"unit"`
    Plate       string `json:"plate"`
    Contact     string `json:"contact"`
    Category    string `json:"category"`
}

var manualCategories = map[string]bool{
    model.CategoryGeneral:   true,
    model.CategoryPregnant:  true,
    model.CategoryDisabled:  true,
    model.CategoryProtected: true,
    model.CategoryService:   true,
}

// Create inserts an application directly, bypassing the eligibility
// rules.  Manual rows are complete on arrival; the staff member doing
// the insert has already seen the paperwork.  Guaranteed categories get
// their paid-pool entry in the same transaction, exactly as the
// resolver would have written it.
func (h *AdminApplicationHandler) Create(c echo.Context) error {
    var req manualInsertReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Plate = strings.ToUpper(strings.TrimSpace(req.Plate))
    if req.ApplicantID == "" || req.Name == "" || req.Unit == "" || req.Plate == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "applicant_id, name, unit and plate are required"})
    }
    if !manualCategories[req.Category] {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
    }
    code := req.Period
    if code == "" {
        code = period.FromTime(time.Now()).Code()
    } else if _, err := period.Parse(code); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid period code"})
    }

    app := &model.Application{
        Period:          code,
        ApplicantID:     req.ApplicantID,
        Name:            req.Name,
        Unit:            req.Unit,
        Plate:           req.Plate,
        Contact:         req.Contact,
        Category:        req.Category,
        PlateBound:      true,
        Status:          model.StatusComplete,
        SubmissionToken: uuid.NewString(),
    }
    var entry *model.LotteryEntry
    if req.Category != model.CategoryGeneral {
        entry = &model.LotteryEntry{
            Period:        code,
            ApplicantID:   req.ApplicantID,
            PaymentStatus: model.PaymentUnpaid,
        }
    }
    if err := h.Store.SaveDecision(c.Request().Context(), app, entry); err != nil {
        if err == repository.ErrConflict {
            return c.JSON(http.StatusConflict, echo.Map{"error": "application already exists for this period"})
        }
        c.Logger().Errorf("manual insert %s/%s: %v", code, req.ApplicantID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "insert failed"})
    }
    return c.JSON(http.StatusCreated, app)
}

// Delete withdraws an application and its lottery entry, if any.
func (h *AdminApplicationHandler) Delete(c echo.Context) error {
    code := c.Param("period")
    applicantID := c.Param("applicant")
    if _, err := period.Parse(code); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid period code"})
    }
    ctx := c.Request().Context()

    tx, err := h.Store.DB.BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    n, err := h.Store.Apps.DeleteByPeriodApplicantTx(ctx, tx, code, applicantID)
    if err != nil {
        c.Logger().Errorf("delete application %s/%s: %v", code, applicantID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
    }
    if n == 0 {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "no application for this period and applicant"})
    }
    if err := h.Store.Entries.DeleteByPeriodApplicantTx(ctx, tx, code, applicantID); err != nil {
        c.Logger().Errorf("delete entry %s/%s: %v", code, applicantID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
    }
    committed = true
    return c.NoContent(http.StatusNoContent)
}
