package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	authrepo "github.com/Tokarsky98/GroceryMartAI/internal/auth/repository"
	authservice "github.com/Tokarsky98/GroceryMartAI/internal/auth/service"
	cartcache "github.com/Tokarsky98/GroceryMartAI/internal/cart/cache"
	cartdomain "github.com/Tokarsky98/GroceryMartAI/internal/cart/domain"
	cartrepo "github.com/Tokarsky98/GroceryMartAI/internal/cart/repository"
	cartservice "github.com/Tokarsky98/GroceryMartAI/internal/cart/service"
	catalogrepo "github.com/Tokarsky98/GroceryMartAI/internal/catalog/repository"
	catalogservice "github.com/Tokarsky98/GroceryMartAI/internal/catalog/service"
	checkoutservice "github.com/Tokarsky98/GroceryMartAI/internal/checkout/service"
	"github.com/Tokarsky98/GroceryMartAI/internal/inventory"
	"github.com/Tokarsky98/GroceryMartAI/internal/order/publisher"
	orderrepo "github.com/Tokarsky98/GroceryMartAI/internal/order/repository"
	orderservice "github.com/Tokarsky98/GroceryMartAI/internal/order/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopCartCache struct{}

func (noopCartCache) Get(context.Context, string) (*cartdomain.Cart, error) {
	return nil, cartcache.ErrCacheMiss
}
func (noopCartCache) Set(context.Context, string, *cartdomain.Cart) error { return nil }
func (noopCartCache) Delete(context.Context, string) error                { return nil }

func setupAPI(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	inv := inventory.NewStore()
	catalog := catalogservice.NewCatalogService(catalogrepo.NewMemoryRepository(), inv)
	require.NoError(t, catalog.Seed(ctx))

	auth := authservice.NewAuthService(authrepo.NewMemoryRepository(), []byte("test-secret"), logger)
	require.NoError(t, auth.Seed(ctx))

	carts := cartservice.NewCartService(cartrepo.NewMemoryRepository(), noopCartCache{}, inv, logger)
	ledger := orderservice.NewLedger(orderrepo.NewMemoryRepository(), carts, inv, publisher.NoopPublisher{}, logger)
	checkout := checkoutservice.NewCheckout(ledger, logger)

	return NewRouter(Services{
		Auth:     auth,
		Catalog:  catalog,
		Carts:    carts,
		Checkout: checkout,
		Ledger:   ledger,
		Logger:   logger,
	})
}

func doJSON(t *testing.T, api http.Handler, method, path string, body any, decorate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if decorate != nil {
		decorate(req)
	}

	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	return rec
}

func loginAs(t *testing.T, api http.Handler, email, password string) string {
	t.Helper()
	rec := doJSON(t, api, http.MethodPost, "/api/auth/login",
		map[string]string{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func asUser(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func asGuest(session string) func(*http.Request) {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: guestCookieName, Value: session})
	}
}

func TestHealth(t *testing.T) {
	api := setupAPI(t)
	rec := doJSON(t, api, http.MethodGet, "/api/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "OK")
}

func TestProducts_ListAndPagination(t *testing.T) {
	api := setupAPI(t)

	rec := doJSON(t, api, http.MethodGet, "/api/products?limit=5&page=2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products []json.RawMessage `json:"products"`
		Total    int               `json:"total"`
		Page     int               `json:"page"`
		Pages    int               `json:"pages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Products, 5)
	assert.Equal(t, 12, resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 3, resp.Pages)
}

func TestProducts_GetNotFound(t *testing.T) {
	api := setupAPI(t)
	rec := doJSON(t, api, http.MethodGet, "/api/products/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProducts_AdminCRUDGated(t *testing.T) {
	api := setupAPI(t)

	product := map[string]any{
		"name": "Olive Oil", "description": "Cold pressed.", "price": "7.99",
		"category": "Pantry", "stock": 10,
	}

	// Guests and plain users are rejected.
	rec := doJSON(t, api, http.MethodPost, "/api/products", product, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	userToken := loginAs(t, api, "user@grocery.com", "User123!")
	rec = doJSON(t, api, http.MethodPost, "/api/products", product, asUser(userToken))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminToken := loginAs(t, api, "admin@grocery.com", "Admin123!")
	rec = doJSON(t, api, http.MethodPost, "/api/products", product, asUser(adminToken))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, int64(13), created.ID)
}

func TestCategories(t *testing.T) {
	api := setupAPI(t)
	rec := doJSON(t, api, http.MethodGet, "/api/categories", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Categories []struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"categories"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Categories)
	assert.Equal(t, "Fruits", resp.Categories[0].Name)
	assert.Equal(t, 2, resp.Categories[0].Count)
}

func TestCart_GuestAddAndView(t *testing.T) {
	api := setupAPI(t)

	rec := doJSON(t, api, http.MethodPost, "/api/cart/add",
		map[string]any{"productId": 1, "quantity": 2}, asGuest("g-1"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, api, http.MethodGet, "/api/cart", nil, asGuest("g-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Items []struct {
			ProductID int64  `json:"productId"`
			Quantity  int    `json:"quantity"`
			Subtotal  string `json:"subtotal"`
		} `json:"items"`
		Total string `json:"total"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(1), view.Items[0].ProductID)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, "9.98", view.Total) // 2 x 4.99
}

func TestCart_AddBeyondStock(t *testing.T) {
	api := setupAPI(t)

	// Salmon Fillet (id 11) has stock 8.
	rec := doJSON(t, api, http.MethodPost, "/api/cart/add",
		map[string]any{"productId": 11, "quantity": 9}, asGuest("g-2"))
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "insufficient_stock", resp.Code)

	// Nothing was added.
	rec = doJSON(t, api, http.MethodGet, "/api/cart", nil, asGuest("g-2"))
	var view struct {
		Items []any `json:"items"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Empty(t, view.Items)
}

func TestCart_GuestGetsSessionCookie(t *testing.T) {
	api := setupAPI(t)

	rec := doJSON(t, api, http.MethodGet, "/api/cart", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == guestCookieName && c.Value != "" {
			found = true
		}
	}
	assert.True(t, found, "first anonymous request mints a guest session cookie")
}

func TestLogin_MergesGuestCart(t *testing.T) {
	api := setupAPI(t)

	// Guest picks up 3 bananas.
	rec := doJSON(t, api, http.MethodPost, "/api/cart/add",
		map[string]any{"productId": 2, "quantity": 3}, asGuest("g-3"))
	require.Equal(t, http.StatusOK, rec.Code)

	// Signing in with that session folds the cart into the account.
	rec = doJSON(t, api, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "user@grocery.com", "password": "User123!"}, asGuest("g-3"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	rec = doJSON(t, api, http.MethodGet, "/api/cart", nil, asUser(resp.Token))
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Items []struct {
			ProductID int64 `json:"productId"`
			Quantity  int   `json:"quantity"`
		} `json:"items"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(2), view.Items[0].ProductID)
	assert.Equal(t, 3, view.Items[0].Quantity)

	// The guest cart is gone.
	rec = doJSON(t, api, http.MethodGet, "/api/cart", nil, asGuest("g-3"))
	var guestView struct {
		Items []any `json:"items"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&guestView))
	assert.Empty(t, guestView.Items)
}

func TestCheckout_FullFlow(t *testing.T) {
	api := setupAPI(t)
	token := loginAs(t, api, "user@grocery.com", "User123!")

	rec := doJSON(t, api, http.MethodPost, "/api/cart/add",
		map[string]any{"productId": 3, "quantity": 2}, asUser(token))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, api, http.MethodPost, "/api/checkout", nil, asUser(token))
	require.Equal(t, http.StatusOK, rec.Code)

	shipping := map[string]any{
		"fullName": "John Doe", "email": "user@grocery.com", "phone": "123 456 789",
		"address": "1 Main St", "city": "Springfield", "zipCode": "12345",
		"deliveryOption": "express",
	}
	rec = doJSON(t, api, http.MethodPost, "/api/checkout/shipping", shipping, asUser(token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	payment := map[string]any{
		"cardNumber": "4111 1111 1111 1111", "cardName": "John Doe",
		"expiryDate": "12/29", "cvv": "123",
	}
	rec = doJSON(t, api, http.MethodPost, "/api/checkout/payment", payment, asUser(token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, api, http.MethodPost, "/api/checkout/submit", nil, asUser(token))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order struct {
		ID      string `json:"id"`
		Total   string `json:"total"`
		Status  string `json:"status"`
		Payment struct {
			Last4 string `json:"last4"`
		} `json:"payment"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "16.97", order.Total) // 2 x 3.49 + 9.99 express
	assert.Equal(t, "1111", order.Payment.Last4)

	// Cart is empty after submission.
	rec = doJSON(t, api, http.MethodGet, "/api/cart", nil, asUser(token))
	var view struct {
		Items []any `json:"items"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Empty(t, view.Items)

	// The order shows up in the owner's history.
	rec = doJSON(t, api, http.MethodGet, "/api/orders/"+order.ID, nil, asUser(token))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Another account cannot see it.
	adminToken := loginAs(t, api, "admin@grocery.com", "Admin123!")
	rec = doJSON(t, api, http.MethodGet, "/api/orders/"+order.ID, nil, asUser(adminToken))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckout_ShippingValidationErrors(t *testing.T) {
	api := setupAPI(t)
	token := loginAs(t, api, "user@grocery.com", "User123!")

	rec := doJSON(t, api, http.MethodPost, "/api/checkout", nil, asUser(token))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, api, http.MethodPost, "/api/checkout/shipping",
		map[string]any{"fullName": "John Doe", "phone": "12", "deliveryOption": "standard"}, asUser(token))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "validation_failed", resp.Code)
	assert.Contains(t, resp.Details, "phone")
	assert.Contains(t, resp.Details, "email")
	assert.NotContains(t, resp.Details, "fullName")
}

func TestOrders_EmptyCart(t *testing.T) {
	api := setupAPI(t)
	token := loginAs(t, api, "user@grocery.com", "User123!")

	rec := doJSON(t, api, http.MethodPost, "/api/orders",
		map[string]any{"deliveryOption": "standard"}, asUser(token))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "empty_cart")
}

func TestOrders_RequireAuth(t *testing.T) {
	api := setupAPI(t)
	rec := doJSON(t, api, http.MethodGet, "/api/orders", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProducts_Search(t *testing.T) {
	api := setupAPI(t)

	rec := doJSON(t, api, http.MethodGet, fmt.Sprintf("/api/products/search?q=%s", "milk"), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products []struct {
			Name string `json:"name"`
		} `json:"products"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Fresh Milk", resp.Products[0].Name)

	// Empty query returns an empty set, not everything.
	rec = doJSON(t, api, http.MethodGet, "/api/products/search", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Empty(t, resp.Products)
}

func TestProducts_UpdatePartialBodyKeepsPriceAndStock(t *testing.T) {
	api := setupAPI(t)
	adminToken := loginAs(t, api, "admin@grocery.com", "Admin123!")

	// Only the name is supplied; price and stock must survive.
	rec := doJSON(t, api, http.MethodPut, "/api/products/1",
		map[string]any{"name": "Crisp Apples"}, asUser(adminToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated struct {
		Name  string `json:"name"`
		Price string `json:"price"`
		Stock int    `json:"stock"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	assert.Equal(t, "Crisp Apples", updated.Name)
	assert.Equal(t, "4.99", updated.Price)
	assert.Equal(t, 50, updated.Stock)

	// The inventory price is untouched, so carting the product still
	// prices it.
	rec = doJSON(t, api, http.MethodPost, "/api/cart/add",
		map[string]any{"productId": 1, "quantity": 1}, asGuest("g-upd"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, api, http.MethodGet, "/api/cart", nil, asGuest("g-upd"))
	var view struct {
		Total string `json:"total"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, "4.99", view.Total)
}

func TestCheckout_RequiresAuth(t *testing.T) {
	api := setupAPI(t)

	rec := doJSON(t, api, http.MethodPost, "/api/checkout", nil, asGuest("g-anon"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, api, http.MethodPost, "/api/checkout/submit", nil, asGuest("g-anon"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCart_MergeEndpoint(t *testing.T) {
	api := setupAPI(t)

	rec := doJSON(t, api, http.MethodPost, "/api/cart/add",
		map[string]any{"productId": 2, "quantity": 2}, asGuest("g-7"))
	require.Equal(t, http.StatusOK, rec.Code)

	// Login without the guest cookie, then merge explicitly.
	token := loginAs(t, api, "user@grocery.com", "User123!")
	rec = doJSON(t, api, http.MethodPost, "/api/cart/merge",
		map[string]string{"guestSession": "g-7"}, asUser(token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var view struct {
		Items []struct {
			ProductID int64 `json:"productId"`
			Quantity  int   `json:"quantity"`
		} `json:"items"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(2), view.Items[0].ProductID)
	assert.Equal(t, 2, view.Items[0].Quantity)
}

func TestAuth_PasswordRecovery(t *testing.T) {
	api := setupAPI(t)

	rec := doJSON(t, api, http.MethodPost, "/api/auth/forgot-password",
		map[string]string{"email": "user@grocery.com"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "reset link")

	rec = doJSON(t, api, http.MethodPost, "/api/auth/forgot-password",
		map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, api, http.MethodPost, "/api/auth/reset-password",
		map[string]string{"token": "abc", "newPassword": "NewPass123!"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "reset successful")
}
