package checkout

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ollan-health/checkout-api/internal/common"
	"github.com/ollan-health/checkout-api/internal/obs"
	"github.com/ollan-health/checkout-api/internal/pricing"
)

// Handler exposes the checkout-session HTTP endpoints.
type Handler struct {
	Svc *Service
}

type linePayload struct {
	ProductID string `json:"productId"`
	UnitPrice int64  `json:"unitPrice"`
	Category  string `json:"category"`
	Qty       int    `json:"qty"`
}

type createRequest struct {
	Lines []linePayload `json:"lines"`
	Area  string        `json:"area"`
}

type areaRequest struct {
	Area string `json:"area"`
}

type selectionRequest struct {
	Kind     string `json:"kind"`
	Slot     string `json:"slot"`
	Location string `json:"location"`
}

type promoRequest struct {
	Code string `json:"code"`
}

type linesRequest struct {
	Lines []linePayload `json:"lines"`
}

// Create opens a new checkout session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	lines, err := toLines(req.Lines)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	session, err := h.Svc.Create(r.Context(), lines, strings.TrimSpace(req.Area))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	obs.ObserveSessionMutation("create", "ok")
	common.JSON(w, http.StatusCreated, map[string]any{"data": session})
}

// Get returns the session with its current priced order.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	session, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": session})
}

// SetArea changes the delivery area.
func (h *Handler) SetArea(w http.ResponseWriter, r *http.Request) {
	var req areaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	h.mutate(w, r, "set_area", func(id string) (Session, error) {
		return h.Svc.SetArea(r.Context(), id, strings.TrimSpace(req.Area))
	})
}

// SetSelection switches the delivery option.
func (h *Handler) SetSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	sel, err := toSelection(req)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	h.mutate(w, r, "set_selection", func(id string) (Session, error) {
		return h.Svc.SetSelection(r.Context(), id, sel)
	})
}

// ApplyPromo attaches a promo code to the session.
func (h *Handler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	var req promoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "code is required", nil)
		return
	}
	h.mutate(w, r, "apply_promo", func(id string) (Session, error) {
		return h.Svc.ApplyPromo(r.Context(), id, req.Code)
	})
}

// RemovePromo clears the session's promo code.
func (h *Handler) RemovePromo(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "remove_promo", func(id string) (Session, error) {
		return h.Svc.RemovePromo(r.Context(), id)
	})
}

// SetLines replaces the cart lines.
func (h *Handler) SetLines(w http.ResponseWriter, r *http.Request) {
	var req linesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	lines, err := toLines(req.Lines)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	h.mutate(w, r, "set_lines", func(id string) (Session, error) {
		return h.Svc.SetLines(r.Context(), id, lines)
	})
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op string, fn func(id string) (Session, error)) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	session, err := fn(chi.URLParam(r, "id"))
	if err != nil {
		obs.ObserveSessionMutation(op, "rejected")
		writeSessionError(w, err)
		return
	}
	obs.ObserveSessionMutation(op, "ok")
	common.JSON(w, http.StatusOK, map[string]any{"data": session})
}

func toLines(payload []linePayload) ([]pricing.Line, error) {
	if len(payload) == 0 {
		return nil, errors.New("lines are required")
	}
	out := make([]pricing.Line, 0, len(payload))
	for _, p := range payload {
		if p.Qty <= 0 {
			return nil, errors.New("qty must be positive")
		}
		if p.UnitPrice < 0 {
			return nil, errors.New("unitPrice must not be negative")
		}
		line := pricing.Line{UnitPrice: p.UnitPrice, Category: strings.TrimSpace(p.Category), Qty: p.Qty}
		if trimmed := strings.TrimSpace(p.ProductID); trimmed != "" {
			parsed, err := uuid.Parse(trimmed)
			if err != nil {
				return nil, errors.New("invalid productId")
			}
			line.ProductID = parsed
		}
		out = append(out, line)
	}
	return out, nil
}

func toSelection(req selectionRequest) (pricing.Selection, error) {
	switch pricing.SelectionKind(strings.TrimSpace(req.Kind)) {
	case pricing.KindExpress:
		return pricing.Express(), nil
	case pricing.KindTimeframe:
		slot := pricing.Slot(strings.TrimSpace(req.Slot))
		if !pricing.ValidSlot(slot) {
			return pricing.Selection{}, errors.New("unknown slot")
		}
		return pricing.Timeframe(slot), nil
	case pricing.KindPickup:
		location := strings.TrimSpace(req.Location)
		if location == "" {
			return pricing.Selection{}, errors.New("location is required for pickup")
		}
		return pricing.Pickup(location), nil
	default:
		return pricing.Selection{}, errors.New("unknown delivery option")
	}
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "checkout session not found", nil)
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrEmptyArea):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, pricing.ErrInvalidSelection):
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_SELECTION", pricing.UserMessage(err), nil)
	case errors.Is(err, pricing.ErrUnsupportedArea):
		common.JSONError(w, http.StatusUnprocessableEntity, "UNSUPPORTED_AREA", pricing.UserMessage(err), nil)
	case errors.Is(err, pricing.ErrNoQualifyingItems):
		common.JSONError(w, http.StatusUnprocessableEntity, "NO_QUALIFYING_ITEMS", pricing.UserMessage(err), nil)
	case errors.Is(err, pricing.ErrAlreadyFree):
		common.JSONError(w, http.StatusUnprocessableEntity, "ALREADY_FREE", pricing.UserMessage(err), nil)
	case errors.Is(err, pricing.ErrInvalidCode):
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_CODE", pricing.UserMessage(err), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update checkout session", nil)
	}
}
