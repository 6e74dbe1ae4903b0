package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restaurant-eugene/booking-api/internal/booking"
	"github.com/restaurant-eugene/booking-api/internal/handler"
	"github.com/restaurant-eugene/booking-api/internal/session"
)

type stubCatalog map[uint64]struct {
	name  string
	price uint32
}

func (s stubCatalog) PriceOf(_ context.Context, itemID uint64) (uint32, string, error) {
	e, ok := s[itemID]
	if !ok {
		return 0, "", booking.ErrUnknownItem
	}
	return e.price, e.name, nil
}

func newCartFixture() (*echo.Echo, *handler.CartHandler) {
	catalog := stubCatalog{
		1: {name: "Soup", price: 500},
		2: {name: "Steak", price: 2200},
	}
	h := handler.NewCartHandler(session.NewCartStore(nil), catalog)
	return echo.New(), h
}

func doJSON(e *echo.Echo, method, target, body, sessionID string) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if sessionID != "" {
		req.Header.Set("X-Cart-Session", sessionID)
	}
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func TestCartAddAndGet(t *testing.T) {
	e, h := newCartFixture()

	rec, c := doJSON(e, http.MethodPost, "/v1/cart/items", `{"item_id":1,"quantity":2}`, "s-1")
	require.NoError(t, h.AddItem(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []struct {
			ItemID   uint64 `json:"item_id"`
			Quantity uint32 `json:"quantity"`
		} `json:"items"`
		SubtotalCents uint32 `json:"subtotal_cents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, uint32(2), resp.Items[0].Quantity)
	assert.Equal(t, uint32(1000), resp.SubtotalCents)

	// Same session: addition accumulates.
	rec, c = doJSON(e, http.MethodPost, "/v1/cart/items", `{"item_id":1,"quantity":3}`, "s-1")
	require.NoError(t, h.AddItem(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, uint32(5), resp.Items[0].Quantity)

	// Different session: empty cart.
	rec, c = doJSON(e, http.MethodGet, "/v1/cart", "", "s-2")
	require.NoError(t, h.Get(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Items)
}

func TestCartAddUnknownItem(t *testing.T) {
	e, h := newCartFixture()

	rec, c := doJSON(e, http.MethodPost, "/v1/cart/items", `{"item_id":99,"quantity":1}`, "s-1")
	require.NoError(t, h.AddItem(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartAddZeroQuantity(t *testing.T) {
	e, h := newCartFixture()

	rec, c := doJSON(e, http.MethodPost, "/v1/cart/items", `{"item_id":1,"quantity":0}`, "s-1")
	require.NoError(t, h.AddItem(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartMintsSessionForNewGuest(t *testing.T) {
	e, h := newCartFixture()

	rec, c := doJSON(e, http.MethodPost, "/v1/cart/items", `{"item_id":1,"quantity":1}`, "")
	require.NoError(t, h.AddItem(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Cart-Session"), "guest gets a session id to carry forward")
}

func TestCartReplaceAndClear(t *testing.T) {
	e, h := newCartFixture()

	rec, c := doJSON(e, http.MethodPut, "/v1/cart", `{"items":[{"item_id":1,"quantity":1},{"item_id":2,"quantity":2}]}`, "s-1")
	require.NoError(t, h.Replace(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items         []json.RawMessage `json:"items"`
		SubtotalCents uint32            `json:"subtotal_cents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, uint32(4900), resp.SubtotalCents)

	// Drop one dish.
	rec, c = doJSON(e, http.MethodDelete, "/v1/cart?item_id=2", "", "s-1")
	require.NoError(t, h.Clear(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 1)

	// Clear everything.
	rec, c = doJSON(e, http.MethodDelete, "/v1/cart", "", "s-1")
	require.NoError(t, h.Clear(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
