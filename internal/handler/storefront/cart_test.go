package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manicvanity/storefront/internal/cookie"
	"github.com/manicvanity/storefront/internal/domain"
	"github.com/manicvanity/storefront/internal/pricing"
)

const guestToken = "0123456789abcdef0123456789abcdef"

func newCartHandler(carts *fakeCarts) *CartHandler {
	return NewCartHandler(carts, pricing.Default(), cookie.NewConfig("", false, "test-secret"), 30*24*time.Hour)
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) cartView {
	t.Helper()
	var view cartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	return view
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestCartHandler_View(t *testing.T) {
	t.Run("no session is an empty cart", func(t *testing.T) {
		carts := newFakeCarts()
		h := newCartHandler(carts)
		rec := httptest.NewRecorder()

		h.View(rec, newRequest(http.MethodGet, "/api/cart", "", domain.CartSession{}))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"lines":[],"itemCount":0,"subtotalCents":0,"shippingCents":0,"taxCents":0,"totalCents":0}`, rec.Body.String())
		assert.Zero(t, carts.called("Open"))
	})

	t.Run("prices lines against the live catalog", func(t *testing.T) {
		carts := newFakeCarts()
		balm := carts.catalog.addProduct("Velvet Balm", 2500)
		lip := carts.catalog.addProduct("Gloss", 2000)
		rose := carts.catalog.addVariant(lip, "Rose", int64Ptr(3000))
		gone := uuid.New()

		c := carts.cartFor(guestSession(guestToken))
		c.lines = []domain.CartLine{
			{ID: "a", ProductID: balm, Quantity: 2, Name: "Old Name", UnitPriceCents: 100},
			{ID: "b", ProductID: lip, VariantID: &rose, Quantity: 1},
			{ID: "c", ProductID: gone, Quantity: 1, Name: "Discontinued", UnitPriceCents: 900},
		}

		h := newCartHandler(carts)
		rec := httptest.NewRecorder()
		h.View(rec, newRequest(http.MethodGet, "/api/cart", "", guestSession(guestToken)))

		require.Equal(t, http.StatusOK, rec.Code)
		view := decodeView(t, rec)
		require.Len(t, view.Lines, 3)

		assert.Equal(t, "Velvet Balm", view.Lines[0].Name)
		assert.Equal(t, int64(2500), view.Lines[0].UnitPriceCents)
		assert.Equal(t, int64(5000), view.Lines[0].LineTotalCents)
		assert.Equal(t, "Gloss - Rose", view.Lines[1].Name)
		assert.Equal(t, int64(3000), view.Lines[1].UnitPriceCents)
		assert.False(t, view.Lines[2].Available)
		assert.Equal(t, "Discontinued", view.Lines[2].Name)
		assert.Zero(t, view.Lines[2].LineTotalCents)

		assert.Equal(t, 4, view.ItemCount)
		assert.Equal(t, int64(8000), view.SubtotalCents)
		assert.Equal(t, int64(600), view.ShippingCents)
		assert.Equal(t, int64(680), view.TaxCents)
		assert.Equal(t, int64(9280), view.TotalCents)
	})

	t.Run("catalog failure is internal", func(t *testing.T) {
		carts := newFakeCarts()
		carts.catalog.err = errors.New("connection reset")
		carts.cartFor(guestSession(guestToken)).lines = []domain.CartLine{{ID: "a", ProductID: uuid.New(), Quantity: 1}}

		h := newCartHandler(carts)
		rec := httptest.NewRecorder()
		h.View(rec, newRequest(http.MethodGet, "/api/cart", "", guestSession(guestToken)))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection reset")
	})
}

func TestCartHandler_AddItem(t *testing.T) {
	t.Run("first write issues a guest cookie", func(t *testing.T) {
		carts := newFakeCarts()
		balm := carts.catalog.addProduct("Velvet Balm", 2500)
		h := newCartHandler(carts)
		rec := httptest.NewRecorder()

		h.AddItem(rec, newRequest(http.MethodPost, "/api/cart/items", `{"productId":"`+balm.String()+`"}`, domain.CartSession{}))

		require.Equal(t, http.StatusOK, rec.Code)
		issued := findCookie(rec, cookie.GuestCookieName)
		require.NotNil(t, issued)
		assert.True(t, cookie.ValidGuestToken(issued.Value))
		assert.True(t, issued.HttpOnly)
		assert.Equal(t, 30*24*60*60, issued.MaxAge)

		lines := carts.cartFor(guestSession(issued.Value)).lines
		require.Len(t, lines, 1)
		assert.Equal(t, 1, lines[0].Quantity)
		assert.Equal(t, "Velvet Balm", lines[0].Name)
		assert.Equal(t, int64(2500), lines[0].UnitPriceCents)

		view := decodeView(t, rec)
		assert.Equal(t, int64(2500), view.SubtotalCents)
	})

	t.Run("existing session merges quantities", func(t *testing.T) {
		carts := newFakeCarts()
		lip := carts.catalog.addProduct("Gloss", 2000)
		rose := carts.catalog.addVariant(lip, "Rose", nil)
		h := newCartHandler(carts)
		body := `{"productId":"` + lip.String() + `","variantId":"` + rose.String() + `","quantity":2}`

		for range 2 {
			rec := httptest.NewRecorder()
			h.AddItem(rec, newRequest(http.MethodPost, "/api/cart/items", body, guestSession(guestToken)))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Nil(t, findCookie(rec, cookie.GuestCookieName))
		}

		lines := carts.cartFor(guestSession(guestToken)).lines
		require.Len(t, lines, 1)
		assert.Equal(t, 4, lines[0].Quantity)
		assert.Equal(t, "Gloss - Rose", lines[0].Name)
	})

	t.Run("owner writes to the account cart", func(t *testing.T) {
		carts := newFakeCarts()
		balm := carts.catalog.addProduct("Velvet Balm", 2500)
		owner := uuid.New()
		h := newCartHandler(carts)
		rec := httptest.NewRecorder()

		h.AddItem(rec, newRequest(http.MethodPost, "/api/cart/items", `{"productId":"`+balm.String()+`","quantity":3}`, ownerSession(owner)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, findCookie(rec, cookie.GuestCookieName))
		assert.Equal(t, 3, carts.cartFor(ownerSession(owner)).lines[0].Quantity)
	})

	t.Run("rejections", func(t *testing.T) {
		carts := newFakeCarts()
		balm := carts.catalog.addProduct("Velvet Balm", 2500)
		lip := carts.catalog.addProduct("Gloss", 2000)
		rose := carts.catalog.addVariant(lip, "Rose", nil)

		tests := []struct {
			name       string
			body       string
			wantStatus int
		}{
			{name: "unknown product", body: `{"productId":"` + uuid.NewString() + `"}`, wantStatus: http.StatusNotFound},
			{name: "variant of another product", body: `{"productId":"` + balm.String() + `","variantId":"` + rose.String() + `"}`, wantStatus: http.StatusNotFound},
			{name: "zero quantity", body: `{"productId":"` + balm.String() + `","quantity":0}`, wantStatus: http.StatusBadRequest},
			{name: "quantity too large", body: `{"productId":"` + balm.String() + `","quantity":100}`, wantStatus: http.StatusBadRequest},
			{name: "missing product", body: `{"quantity":1}`, wantStatus: http.StatusBadRequest},
			{name: "unknown field", body: `{"productId":"` + balm.String() + `","price":1}`, wantStatus: http.StatusBadRequest},
			{name: "empty body", body: "", wantStatus: http.StatusBadRequest},
		}

		h := newCartHandler(carts)
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := httptest.NewRecorder()
				h.AddItem(rec, newRequest(http.MethodPost, "/api/cart/items", tt.body, domain.CartSession{}))

				assert.Equal(t, tt.wantStatus, rec.Code)
				assert.Nil(t, findCookie(rec, cookie.GuestCookieName), "no cookie for a rejected write")
			})
		}
		assert.Zero(t, carts.called("Open"))
	})
}

func TestCartHandler_UpdateItem(t *testing.T) {
	seed := func() (*fakeCarts, *memCart) {
		carts := newFakeCarts()
		balm := carts.catalog.addProduct("Velvet Balm", 2500)
		c := carts.cartFor(guestSession(guestToken))
		c.lines = []domain.CartLine{{ID: "line-1", ProductID: balm, Quantity: 1}}
		return carts, c
	}

	tests := []struct {
		name       string
		lineID     string
		body       string
		session    domain.CartSession
		wantStatus int
		wantLines  int
		wantQty    int
	}{
		{name: "replaces quantity", lineID: "line-1", body: `{"quantity":5}`, session: guestSession(guestToken), wantStatus: http.StatusOK, wantLines: 1, wantQty: 5},
		{name: "zero removes", lineID: "line-1", body: `{"quantity":0}`, session: guestSession(guestToken), wantStatus: http.StatusOK, wantLines: 0},
		{name: "negative removes", lineID: "line-1", body: `{"quantity":-2}`, session: guestSession(guestToken), wantStatus: http.StatusOK, wantLines: 0},
		{name: "unknown line", lineID: "nope", body: `{"quantity":2}`, session: guestSession(guestToken), wantStatus: http.StatusNotFound, wantLines: 1, wantQty: 1},
		{name: "no session", lineID: "line-1", body: `{"quantity":2}`, session: domain.CartSession{}, wantStatus: http.StatusNotFound, wantLines: 1, wantQty: 1},
		{name: "quantity required", lineID: "line-1", body: `{}`, session: guestSession(guestToken), wantStatus: http.StatusBadRequest, wantLines: 1, wantQty: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carts, c := seed()
			h := newCartHandler(carts)
			req := newRequest(http.MethodPatch, "/api/cart/items/"+tt.lineID, tt.body, tt.session)
			req.SetPathValue("id", tt.lineID)
			rec := httptest.NewRecorder()

			h.UpdateItem(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			require.Len(t, c.lines, tt.wantLines)
			if tt.wantLines > 0 {
				assert.Equal(t, tt.wantQty, c.lines[0].Quantity)
			}
		})
	}
}

func TestCartHandler_RemoveAndClear(t *testing.T) {
	carts := newFakeCarts()
	balm := carts.catalog.addProduct("Velvet Balm", 2500)
	lip := carts.catalog.addProduct("Gloss", 2000)
	c := carts.cartFor(guestSession(guestToken))
	c.lines = []domain.CartLine{
		{ID: "line-1", ProductID: balm, Quantity: 1},
		{ID: "line-2", ProductID: lip, Quantity: 2},
	}
	h := newCartHandler(carts)

	req := newRequest(http.MethodDelete, "/api/cart/items/line-1", "", guestSession(guestToken))
	req.SetPathValue("id", "line-1")
	rec := httptest.NewRecorder()
	h.RemoveItem(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeView(t, rec)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "line-2", view.Lines[0].ID)

	req = newRequest(http.MethodDelete, "/api/cart/items/line-1", "", guestSession(guestToken))
	req.SetPathValue("id", "line-1")
	rec = httptest.NewRecorder()
	h.RemoveItem(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.Clear(rec, newRequest(http.MethodDelete, "/api/cart", "", guestSession(guestToken)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, c.lines)
	assert.Empty(t, decodeView(t, rec).Lines)
}

func TestCartHandler_Merge(t *testing.T) {
	owner := uuid.New()
	both := domain.CartSession{OwnerID: &owner, GuestToken: guestToken}

	t.Run("merges and expires the guest cookie", func(t *testing.T) {
		carts := newFakeCarts()
		var gotToken string
		var gotOwner uuid.UUID
		carts.MergeFunc = func(_ context.Context, token string, ownerID uuid.UUID) (int, error) {
			gotToken, gotOwner = token, ownerID
			return 2, nil
		}
		h := newCartHandler(carts)
		rec := httptest.NewRecorder()

		h.Merge(rec, newRequest(http.MethodPost, "/api/cart/merge", "", both))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"merged":2}`, rec.Body.String())
		assert.Equal(t, guestToken, gotToken)
		assert.Equal(t, owner, gotOwner)
		expired := findCookie(rec, cookie.GuestCookieName)
		require.NotNil(t, expired)
		assert.Negative(t, expired.MaxAge)
	})

	t.Run("failure keeps the guest cookie", func(t *testing.T) {
		carts := newFakeCarts()
		carts.MergeFunc = func(context.Context, string, uuid.UUID) (int, error) {
			return 0, domain.Internal(errors.New("tx aborted"), "cart.merge", "failed to merge guest cart")
		}
		h := newCartHandler(carts)
		rec := httptest.NewRecorder()

		h.Merge(rec, newRequest(http.MethodPost, "/api/cart/merge", "", both))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Nil(t, findCookie(rec, cookie.GuestCookieName))
	})

	t.Run("nothing to merge", func(t *testing.T) {
		carts := newFakeCarts()
		h := newCartHandler(carts)
		rec := httptest.NewRecorder()

		h.Merge(rec, newRequest(http.MethodPost, "/api/cart/merge", "", ownerSession(owner)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"merged":0}`, rec.Body.String())
		assert.Zero(t, carts.called("Merge"))
	})

	t.Run("guest only is unauthorized", func(t *testing.T) {
		carts := newFakeCarts()
		h := newCartHandler(carts)
		rec := httptest.NewRecorder()

		h.Merge(rec, newRequest(http.MethodPost, "/api/cart/merge", "", guestSession(guestToken)))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Zero(t, carts.called("Merge"))
	})
}
