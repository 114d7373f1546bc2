package handler

import (
    "database/sql"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/tpc-facilities/parking-lottery/internal/eligibility"
    "github.com/tpc-facilities/parking-lottery/internal/model"
    "github.com/tpc-facilities/parking-lottery/internal/repository"
)

// ReviewHandler drives the evidence-review queue: listing applications
// that still owe documents and settling them by submission token.
type ReviewHandler struct {
    DB       *sql.DB
    Apps     *repository.ApplicationRepo
    Entries  *repository.LotteryRepo
    Plates   *repository.PlateRepo
    Notifier eligibility.Notifier // nil disables review notices
}

func NewReviewHandler(db *sql.DB, apps *repository.ApplicationRepo, entries *repository.LotteryRepo,
    plates *repository.PlateRepo, notifier eligibility.Notifier) *ReviewHandler {
    return &ReviewHandler{DB: db, Apps: apps, Entries: entries, Plates: plates, Notifier: notifier}
}

// Pending lists the review queue, oldest submission first.
func (h *ReviewHandler) Pending(c echo.Context) error {
    apps, err := h.Apps.ListPendingEvidence(c.Request().Context())
    if err != nil {
        c.Logger().Errorf("list pending evidence: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load queue failed"})
    }
    out := make([]echo.Map, 0, len(apps))
    for _, a := range apps {
        out = append(out, echo.Map{
            "submission_token": a.SubmissionToken,
            "period":           a.Period,
            "applicant_id":     a.ApplicantID,
            "name":             a.Name,
            "unit":             a.Unit,
            "plate":            a.Plate,
            "category":         a.Category,
            "created_at":       a.CreatedAt,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"pending": out})
}

func (h *ReviewHandler) loadPending(c echo.Context) (model.Application, error) {
    a, err := h.Apps.GetByToken(c.Request().Context(), c.Param("token"))
    if err != nil {
        if err == sql.ErrNoRows {
            return a, echo.NewHTTPError(http.StatusNotFound, "unknown submission token")
        }
        c.Logger().Errorf("load submission: %v", err)
        return a, echo.NewHTTPError(http.StatusInternalServerError, "load submission failed")
    }
    if a.Status != model.StatusPendingEvidence {
        return a, echo.NewHTTPError(http.StatusConflict, "submission already settled")
    }
    return a, nil
}

// Approve accepts the submitted documents: the application completes
// and its plate joins the approved list, so future submissions with the
// same plate skip the evidence step.
func (h *ReviewHandler) Approve(c echo.Context) error {
    a, err := h.loadPending(c)
    if err != nil {
        return err
    }
    ctx := c.Request().Context()

    tx, err := h.DB.BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "approve failed"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := h.Apps.ApproveTx(ctx, tx, a.ID); err != nil {
        c.Logger().Errorf("approve %s: %v", a.SubmissionToken, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "approve failed"})
    }
    if err := h.Plates.RecordApprovalTx(ctx, tx, a.ApplicantID, a.Plate); err != nil {
        c.Logger().Errorf("record plate %s: %v", a.Plate, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "approve failed"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "approve failed"})
    }
    committed = true

    if h.Notifier != nil {
        if err := h.Notifier.Send(ctx, a.ApplicantID, a.Name,
            "您的證明文件審核通過，本期停車申請完成，感謝您。",
            "本期停車證明文件審核通過通知"); err != nil {
            c.Logger().Warnf("approve notice %s: %v", a.ApplicantID, err)
        }
    }
    return c.JSON(http.StatusOK, echo.Map{
        "submission_token": a.SubmissionToken,
        "status":           model.StatusComplete,
    })
}

// Reject discards the submission: the application row disappears and
// any reserved lottery entry is withdrawn with it, so the applicant can
// submit a corrected form within the same period.
func (h *ReviewHandler) Reject(c echo.Context) error {
    a, err := h.loadPending(c)
    if err != nil {
        return err
    }
    ctx := c.Request().Context()

    tx, err := h.DB.BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reject failed"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if _, err := h.Apps.DeleteByPeriodApplicantTx(ctx, tx, a.Period, a.ApplicantID); err != nil {
        c.Logger().Errorf("reject %s: %v", a.SubmissionToken, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reject failed"})
    }
    if err := h.Entries.DeleteByPeriodApplicantTx(ctx, tx, a.Period, a.ApplicantID); err != nil {
        c.Logger().Errorf("reject entry %s: %v", a.SubmissionToken, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reject failed"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reject failed"})
    }
    committed = true

    if h.Notifier != nil {
        if err := h.Notifier.Send(ctx, a.ApplicantID, a.Name,
            "您的證明文件審核未通過，本期停車申請已取消，如有疑問請與總管理處聯繫。",
            "本期停車證明文件審核未通過通知"); err != nil {
            c.Logger().Warnf("reject notice %s: %v", a.ApplicantID, err)
        }
    }
    return c.JSON(http.StatusOK, echo.Map{
        "submission_token": a.SubmissionToken,
        "status":           model.StatusRejected,
    })
}
