package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// AlertLister reads stored alerts, newest first
type AlertLister interface {
	ListPPE(ctx context.Context, limit int) ([]domain.PPEAlert, error)
	ListUnauthorized(ctx context.Context, limit int) ([]domain.UnauthorizedAlert, error)
}

type AlertHandler struct {
	alerts AlertLister
}

func NewAlertHandler(alerts AlertLister) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

type PPEAlertListResponse struct {
	Alerts []domain.PPEAlert `json:"alerts"`
	Count  int               `json:"count"`
}

type UnauthorizedAlertListResponse struct {
	Alerts []domain.UnauthorizedAlert `json:"alerts"`
	Count  int                        `json:"count"`
}

// ListPPE handles GET /api/ppe_alerts?limit=
func (h *AlertHandler) ListPPE(c *fiber.Ctx) error {
	limit, err := parseLimit(c)
	if err != nil {
		return err
	}

	alerts, err := h.alerts.ListPPE(c.UserContext(), limit)
	if err != nil {
		return domain.ErrStoreUnavailable.WithError(err)
	}
	if alerts == nil {
		alerts = []domain.PPEAlert{}
	}

	return c.JSON(PPEAlertListResponse{Alerts: alerts, Count: len(alerts)})
}

// ListUnauthorized handles GET /api/unauthorized_alerts?limit=
func (h *AlertHandler) ListUnauthorized(c *fiber.Ctx) error {
	limit, err := parseLimit(c)
	if err != nil {
		return err
	}

	alerts, err := h.alerts.ListUnauthorized(c.UserContext(), limit)
	if err != nil {
		return domain.ErrStoreUnavailable.WithError(err)
	}
	if alerts == nil {
		alerts = []domain.UnauthorizedAlert{}
	}

	return c.JSON(UnauthorizedAlertListResponse{Alerts: alerts, Count: len(alerts)})
}

// parseLimit reads ?limit. Missing means the repository default; the
// repository also caps large values.
func parseLimit(c *fiber.Ctx) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ErrBadRequest.WithError(err)
	}
	if limit < 0 {
		return 0, domain.ErrBadRequest.WithError(errors.New("limit must not be negative"))
	}
	return limit, nil
}
