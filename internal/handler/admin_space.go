package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/tpc-facilities/parking-lottery/internal/model"
    "github.com/tpc-facilities/parking-lottery/internal/repository"
)

// AdminSpaceHandler maintains the parking-space inventory: which spaces
// feed the lottery pool and which are held back for guaranteed
// categories.
type AdminSpaceHandler struct {
    Spaces *repository.SpaceRepo
}

func NewAdminSpaceHandler(s *repository.SpaceRepo) *AdminSpaceHandler {
    return &AdminSpaceHandler{Spaces: s}
}

// List returns the full inventory.
func (h *AdminSpaceHandler) List(c echo.Context) error {
    spaces, err := h.Spaces.List(c.Request().Context())
    if err != nil {
        c.Logger().Errorf("list spaces: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load spaces failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"spaces": spaces})
}

type spaceUpdateReq struct {
    UsageStatus string `json:"usage_status"`
    Note        string `json:"note"`
}

// Update rewrites one space's usage status and note.
func (h *AdminSpaceHandler) Update(c echo.Context) error {
    var req spaceUpdateReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.UsageStatus != model.UsageLottery && req.UsageStatus != model.UsageReserved {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "usage_status must be 抽籤 or 保障"})
    }
    err := h.Spaces.Update(c.Request().Context(), c.Param("id"), req.UsageStatus, req.Note)
    if err != nil {
        if errors.Is(err, repository.ErrSpaceNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown space"})
        }
        c.Logger().Errorf("update space %s: %v", c.Param("id"), err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "space_id":     c.Param("id"),
        "usage_status": req.UsageStatus,
        "note":         req.Note,
    })
}
