package rules

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ollan-health/checkout-api/internal/common"
	dbgen "github.com/ollan-health/checkout-api/internal/db/gen"
)

// AdminHandler manages the promo-code and area allow-lists. Mutations
// invalidate the cached rule set so the next quote sees fresh lists.
type AdminHandler struct {
	Q   dbgen.Querier
	Svc *Service
}

type promoCodePayload struct {
	Code       string `json:"code"`
	Kind       string `json:"kind"`
	PercentBps *int32 `json:"percentBps"`
	Active     *bool  `json:"active"`
}

type areaPayload struct {
	Name   string `json:"name"`
	Campus bool   `json:"campus"`
}

type pickupLocationPayload struct {
	AreaName string `json:"areaName"`
	Name     string `json:"name"`
}

// CreatePromoCode inserts a new promo code.
func (h *AdminHandler) CreatePromoCode(w http.ResponseWriter, r *http.Request) {
	if h.Q == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rules queries not configured", nil)
		return
	}
	var payload promoCodePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	params, err := buildCreateParams(payload)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	code, err := h.Q.CreatePromoCode(r.Context(), params)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			common.JSONError(w, http.StatusConflict, "CONFLICT", "promo code already exists", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create promo code", nil)
		return
	}
	h.invalidate(r)
	common.JSON(w, http.StatusCreated, map[string]any{"data": code})
}

// UpdatePromoCode mutates an existing promo code identified by code.
func (h *AdminHandler) UpdatePromoCode(w http.ResponseWriter, r *http.Request) {
	if h.Q == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rules queries not configured", nil)
		return
	}
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
	if code == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "code is required", nil)
		return
	}
	var payload promoCodePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	kind, err := parseKind(payload.Kind)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	active := true
	if payload.Active != nil {
		active = *payload.Active
	}
	updated, err := h.Q.UpdatePromoCode(r.Context(), dbgen.UpdatePromoCodeParams{
		Code:       code,
		Kind:       kind,
		PercentBps: toInt4(payload.PercentBps),
		Active:     active,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "promo code not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update promo code", nil)
		return
	}
	h.invalidate(r)
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

// DeactivatePromoCode retires a code without deleting its history.
func (h *AdminHandler) DeactivatePromoCode(w http.ResponseWriter, r *http.Request) {
	if h.Q == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rules queries not configured", nil)
		return
	}
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
	if code == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "code is required", nil)
		return
	}
	if err := h.Q.DeactivatePromoCode(r.Context(), code); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to deactivate promo code", nil)
		return
	}
	h.invalidate(r)
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]string{"code": code, "status": "deactivated"}})
}

// CreateArea adds a delivery area to the allow-list.
func (h *AdminHandler) CreateArea(w http.ResponseWriter, r *http.Request) {
	if h.Q == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rules queries not configured", nil)
		return
	}
	var payload areaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "name is required", nil)
		return
	}
	area, err := h.Q.CreateDeliveryArea(r.Context(), dbgen.CreateDeliveryAreaParams{Name: name, Campus: payload.Campus})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			common.JSONError(w, http.StatusConflict, "CONFLICT", "area already exists", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create area", nil)
		return
	}
	h.invalidate(r)
	common.JSON(w, http.StatusCreated, map[string]any{"data": area})
}

// CreatePickupLocation adds a pickup point to a campus area.
func (h *AdminHandler) CreatePickupLocation(w http.ResponseWriter, r *http.Request) {
	if h.Q == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rules queries not configured", nil)
		return
	}
	var payload pickupLocationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	areaName := strings.TrimSpace(payload.AreaName)
	name := strings.TrimSpace(payload.Name)
	if areaName == "" || name == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "areaName and name are required", nil)
		return
	}
	location, err := h.Q.CreatePickupLocation(r.Context(), dbgen.CreatePickupLocationParams{AreaName: areaName, Name: name})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			common.JSONError(w, http.StatusConflict, "CONFLICT", "pickup location already exists", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create pickup location", nil)
		return
	}
	h.invalidate(r)
	common.JSON(w, http.StatusCreated, map[string]any{"data": location})
}

func (h *AdminHandler) invalidate(r *http.Request) {
	if h.Svc != nil {
		_ = h.Svc.Invalidate(r.Context())
	}
}

func buildCreateParams(payload promoCodePayload) (dbgen.CreatePromoCodeParams, error) {
	code := strings.ToUpper(strings.TrimSpace(payload.Code))
	if code == "" {
		return dbgen.CreatePromoCodeParams{}, errors.New("code is required")
	}
	kind, err := parseKind(payload.Kind)
	if err != nil {
		return dbgen.CreatePromoCodeParams{}, err
	}
	if kind == dbgen.PromoKindCategoryDiscount && (payload.PercentBps == nil || *payload.PercentBps <= 0) {
		return dbgen.CreatePromoCodeParams{}, errors.New("percentBps is required for category discounts")
	}
	return dbgen.CreatePromoCodeParams{
		Code:       code,
		Kind:       kind,
		PercentBps: toInt4(payload.PercentBps),
	}, nil
}

func parseKind(raw string) (dbgen.PromoKind, error) {
	kind := dbgen.PromoKind(strings.TrimSpace(raw))
	switch kind {
	case dbgen.PromoKindCategoryDiscount, dbgen.PromoKindFreeDelivery:
		return kind, nil
	default:
		return "", errors.New("invalid kind")
	}
}

func toInt4(v *int32) pgtype.Int4 {
	if v == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: *v, Valid: true}
}
