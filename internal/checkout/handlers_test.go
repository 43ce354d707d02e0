package checkout_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ollan-health/checkout-api/internal/checkout"
	"github.com/ollan-health/checkout-api/internal/pricing"
)

type sessionResponse struct {
	Data checkout.Session `json:"data"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := &checkout.Service{
		Rules: checkout.StaticRules{Rules: pricing.DefaultRules()},
		Store: &checkout.Store{Client: client, TTL: time.Hour},
		Now:   func() time.Time { return time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC) },
	}
	handler := &checkout.Handler{Svc: svc}

	r := chi.NewRouter()
	r.Post("/checkout/sessions", handler.Create)
	r.Get("/checkout/sessions/{id}", handler.Get)
	r.Put("/checkout/sessions/{id}/area", handler.SetArea)
	r.Put("/checkout/sessions/{id}/selection", handler.SetSelection)
	r.Post("/checkout/sessions/{id}/promo", handler.ApplyPromo)
	r.Delete("/checkout/sessions/{id}/promo", handler.RemovePromo)
	r.Put("/checkout/sessions/{id}/lines", handler.SetLines)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, router http.Handler, area string) checkout.Session {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/checkout/sessions", map[string]any{
		"area": area,
		"lines": []map[string]any{
			{"category": "Baby Care", "unitPrice": 2000, "qty": 2},
			{"category": "Pain reliever", "unitPrice": 500, "qty": 1},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data
}

func TestSessionLifecycle(t *testing.T) {
	router := newTestRouter(t)
	session := createSession(t, router, "University of Ibadan")
	require.NotEmpty(t, session.ID)
	require.EqualValues(t, 4500, session.Order.Subtotal)
	require.EqualValues(t, 1500, session.Order.DeliveryFee)

	base := fmt.Sprintf("/checkout/sessions/%s", session.ID)

	t.Run("switch to timeframe", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, base+"/selection", map[string]string{"kind": "timeframe", "slot": "4 PM"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp sessionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.EqualValues(t, 500, resp.Data.Order.DeliveryFee)
	})

	t.Run("apply free delivery code", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, base+"/promo", map[string]string{"code": "deliverfree"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp sessionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "DELIVERFREE", resp.Data.PromoCode)
		require.EqualValues(t, 500, resp.Data.Order.Discount)
		require.EqualValues(t, 4500, resp.Data.Order.GrandTotal)
	})

	t.Run("leaving campus resets selection and promo", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, base+"/area", map[string]string{"area": "Bodija"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp sessionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, pricing.KindExpress, resp.Data.Selection.Kind)
		require.Empty(t, resp.Data.PromoCode)
		require.EqualValues(t, 0, resp.Data.Order.Discount)
		require.EqualValues(t, 6000, resp.Data.Order.GrandTotal)
	})

	t.Run("get reflects persisted state", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, base, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp sessionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "Bodija", resp.Data.Area)
	})
}

func TestSessionErrorMapping(t *testing.T) {
	router := newTestRouter(t)
	session := createSession(t, router, "Bodija")
	base := fmt.Sprintf("/checkout/sessions/%s", session.ID)

	t.Run("timeframe off campus is 422", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, base+"/selection", map[string]string{"kind": "timeframe", "slot": "12 PM"})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "INVALID_SELECTION", resp.Error.Code)
		require.Equal(t, "Selected delivery option is not available in your area", resp.Error.Message)
	})

	t.Run("promo off campus is 422", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, base+"/promo", map[string]string{"code": "OLLAN10"})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "UNSUPPORTED_AREA", resp.Error.Code)
	})

	t.Run("unknown session is 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/checkout/sessions/missing", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid code on apply is a hard 422", func(t *testing.T) {
		campus := createSession(t, router, "UCH")
		rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/checkout/sessions/%s/promo", campus.ID), map[string]string{"code": "RANDOM5"})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "INVALID_CODE", resp.Error.Code)
	})
}
