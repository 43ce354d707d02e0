package quote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ollan-health/checkout-api/internal/common"
	"github.com/ollan-health/checkout-api/internal/obs"
	"github.com/ollan-health/checkout-api/internal/pricing"
)

// RulesLoader supplies the current pricing rules.
type RulesLoader interface {
	Load(ctx context.Context) (pricing.Rules, error)
}

// Handler serves the stateless pricing endpoints used by storefronts that
// recompute on every checkout change instead of keeping a server session.
type Handler struct {
	Rules    RulesLoader
	Validate *validator.Validate
	Now      func() time.Time
}

type quoteLine struct {
	ProductID string `json:"productId" validate:"omitempty,uuid"`
	UnitPrice int64  `json:"unitPrice" validate:"gte=0"`
	Category  string `json:"category"`
	Qty       int    `json:"qty" validate:"gt=0"`
}

type selectionPayload struct {
	Kind     string `json:"kind" validate:"required,oneof=express timeframe pickup"`
	Slot     string `json:"slot" validate:"required_if=Kind timeframe"`
	Location string `json:"location" validate:"required_if=Kind pickup"`
}

type quoteRequest struct {
	Lines     []quoteLine      `json:"lines" validate:"required,min=1,dive"`
	Area      string           `json:"area" validate:"required"`
	Selection selectionPayload `json:"selection" validate:"required"`
	PromoCode string           `json:"promoCode"`
}

type previewRequest struct {
	Code        string      `json:"code" validate:"required"`
	Area        string      `json:"area" validate:"required"`
	DeliveryFee int64       `json:"deliveryFee" validate:"gte=0"`
	Lines       []quoteLine `json:"lines" validate:"required,min=1,dive"`
}

// Quote prices a cart for the given area, selection, and optional promo
// code. An unrecognised code yields a warning, not a failure.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	rules, ok := h.loadRules(w, r)
	if !ok {
		return
	}
	var req quoteRequest
	if !h.decode(w, r, &req) {
		return
	}
	lines, err := toLines(req.Lines)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	sel, err := toSelection(req.Selection)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	result, err := rules.Quote(lines, sel, strings.TrimSpace(req.Area), req.PromoCode)
	if err != nil {
		obs.ObserveQuote("rejected")
		writeEngineError(w, err)
		return
	}
	obs.ObserveQuote("ok")
	if result.Promo != nil {
		obs.ObservePromo(string(result.Promo.Kind), "applied")
	} else if result.Warning != "" {
		obs.ObservePromo("unknown", "warned")
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

// PromoPreview runs the low-level promo computation. Unlike Quote, every
// error kind fails hard here, including an unrecognised code.
func (h *Handler) PromoPreview(w http.ResponseWriter, r *http.Request) {
	rules, ok := h.loadRules(w, r)
	if !ok {
		return
	}
	var req previewRequest
	if !h.decode(w, r, &req) {
		return
	}
	lines, err := toLines(req.Lines)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	promo, err := rules.ApplyPromo(req.Code, lines, strings.TrimSpace(req.Area), pricing.Money(req.DeliveryFee))
	if err != nil {
		obs.ObservePromo("unknown", "rejected")
		writeEngineError(w, err)
		return
	}
	obs.ObservePromo(string(promo.Kind), "previewed")
	common.JSON(w, http.StatusOK, map[string]any{"data": promo})
}

// DeliveryOptions lists the selection kinds available for an area, with the
// pickup points and slots a campus customer can choose from.
func (h *Handler) DeliveryOptions(w http.ResponseWriter, r *http.Request) {
	rules, ok := h.loadRules(w, r)
	if !ok {
		return
	}
	area := strings.TrimSpace(r.URL.Query().Get("area"))
	if area == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "area is required", nil)
		return
	}
	data := map[string]any{
		"area":    area,
		"campus":  rules.IsCampus(area),
		"options": []pricing.SelectionKind{pricing.KindExpress},
	}
	if rules.IsCampus(area) {
		data["options"] = []pricing.SelectionKind{pricing.KindExpress, pricing.KindTimeframe, pricing.KindPickup}
		data["slots"] = pricing.Slots()
		data["nextSlot"] = rules.NextSlot(h.now())
		for key, locations := range rules.PickupLocations {
			if strings.EqualFold(strings.TrimSpace(key), area) {
				data["pickupLocations"] = locations
			}
		}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": data})
}

// NextSlot resolves the earliest selectable timeframe slot. The reference
// time defaults to the server clock and can be overridden with a RFC3339
// "now" query parameter, mainly for storefront previewing.
func (h *Handler) NextSlot(w http.ResponseWriter, r *http.Request) {
	rules, ok := h.loadRules(w, r)
	if !ok {
		return
	}
	now := h.now()
	if raw := strings.TrimSpace(r.URL.Query().Get("now")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "now must be RFC3339", nil)
			return
		}
		now = parsed
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"slot": rules.NextSlot(now)}})
}

func (h *Handler) now() time.Time {
	if h != nil && h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) loadRules(w http.ResponseWriter, r *http.Request) (pricing.Rules, bool) {
	if h == nil || h.Rules == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote handler not configured", nil)
		return pricing.Rules{}, false
	}
	rules, err := h.Rules.Load(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusServiceUnavailable, "RULES_UNAVAILABLE", "pricing rules unavailable", nil)
		return pricing.Rules{}, false
	}
	return rules, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(dst); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid payload", validationDetails(err))
			return false
		}
	}
	return true
}

func validationDetails(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]map[string]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, map[string]string{
			"field": fe.Namespace(),
			"rule":  fe.Tag(),
		})
	}
	return details
}

func toLines(payload []quoteLine) ([]pricing.Line, error) {
	out := make([]pricing.Line, 0, len(payload))
	for _, p := range payload {
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

func toSelection(payload selectionPayload) (pricing.Selection, error) {
	switch pricing.SelectionKind(strings.TrimSpace(payload.Kind)) {
	case pricing.KindExpress:
		return pricing.Express(), nil
	case pricing.KindTimeframe:
		return pricing.Timeframe(pricing.Slot(strings.TrimSpace(payload.Slot))), nil
	case pricing.KindPickup:
		return pricing.Pickup(strings.TrimSpace(payload.Location)), nil
	default:
		return pricing.Selection{}, errors.New("unknown delivery option")
	}
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
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
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to price order", nil)
	}
}
