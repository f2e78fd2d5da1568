package products_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"agromandi/auth"
	"agromandi/models"
	"agromandi/routes"
	"agromandi/store"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *httprouter.Router {
	t.Helper()
	store.DB = store.NewMemStore()
	router := httprouter.New()
	routes.RoutesWrapper(router)
	return router
}

func newUser(t *testing.T, username, role string) models.User {
	t.Helper()
	u, err := store.DB.CreateUser(context.Background(), models.User{
		Username: username,
		FullName: username,
		Email:    username + "@example.com",
		Role:     role,
	})
	require.NoError(t, err)
	return u
}

func do(t *testing.T, router http.Handler, method, path string, as *models.User, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		token, err := auth.GenerateAccessToken(*as)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func onionInput() models.ProductInput {
	return models.ProductInput{
		Name:     "Red Onions",
		Category: "Vegetables",
		Quantity: 100,
		Unit:     "kg",
		Price:    22.5,
		Location: "Nashik",
		Tags:     []string{"fresh"},
	}
}

func TestCreateProduct(t *testing.T) {
	router := setup(t)
	farmer := newUser(t, "farmer1", models.RoleFarmer)

	w := do(t, router, http.MethodPost, "/api/products", &farmer, onionInput())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	product := decode(t, w)["product"].(map[string]any)
	assert.Equal(t, "active", product["status"])
	assert.Equal(t, float64(farmer.ID), product["farmerId"])
}

func TestCreateProductRequiresFarmer(t *testing.T) {
	router := setup(t)
	buyer := newUser(t, "buyer1", models.RoleBuyer)

	w := do(t, router, http.MethodPost, "/api/products", &buyer, onionInput())
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, router, http.MethodPost, "/api/products", nil, onionInput())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateProductValidation(t *testing.T) {
	router := setup(t)
	farmer := newUser(t, "farmer1", models.RoleFarmer)

	in := onionInput()
	in.Unit = "bushel"
	in.Price = 0
	w := do(t, router, http.MethodPost, "/api/products", &farmer, in)
	require.Equal(t, http.StatusBadRequest, w.Code)
	errs := decode(t, w)["errors"].(map[string]any)
	assert.Contains(t, errs, "unit")
	assert.Contains(t, errs, "price")
}

func TestGetProductsFilters(t *testing.T) {
	router := setup(t)
	farmer := newUser(t, "farmer1", models.RoleFarmer)

	for _, in := range []models.ProductInput{
		{Name: "Red Onions", Category: "Vegetables", Quantity: 100, Unit: "kg", Price: 22, Location: "Nashik"},
		{Name: "Sharbati Wheat", Category: "Grains", Quantity: 2, Unit: "tonne", Price: 28000, Location: "Nashik"},
		{Name: "White Onions", Category: "Vegetables", Quantity: 50, Unit: "kg", Price: 18, Location: "Pune"},
	} {
		w := do(t, router, http.MethodPost, "/api/products", &farmer, in)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	// listings are public
	w := do(t, router, http.MethodGet, "/api/products", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["products"], 3)

	w = do(t, router, http.MethodGet, "/api/products?category=Vegetables", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["products"], 2)

	w = do(t, router, http.MethodGet, "/api/products?search=onion&sort=price_asc", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)["products"].([]any)
	require.Len(t, list, 2)
	assert.Equal(t, "White Onions", list[0].(map[string]any)["name"])

	w = do(t, router, http.MethodGet, "/api/products?limit=1&offset=2", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["products"], 1)
}

func TestGetProduct(t *testing.T) {
	router := setup(t)
	farmer := newUser(t, "farmer1", models.RoleFarmer)

	w := do(t, router, http.MethodPost, "/api/products", &farmer, onionInput())
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, http.MethodGet, "/api/products/1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Red Onions", decode(t, w)["product"].(map[string]any)["name"])

	w = do(t, router, http.MethodGet, "/api/products/99", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEditProduct(t *testing.T) {
	router := setup(t)
	farmer := newUser(t, "farmer1", models.RoleFarmer)
	other := newUser(t, "farmer2", models.RoleFarmer)

	w := do(t, router, http.MethodPost, "/api/products", &farmer, onionInput())
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, http.MethodPatch, "/api/products/1", &farmer,
		map[string]any{"price": 24.0, "quantity": 80.0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	product := decode(t, w)["product"].(map[string]any)
	assert.Equal(t, 24.0, product["price"])
	assert.Equal(t, 80.0, product["quantity"])

	// only the owner edits
	w = do(t, router, http.MethodPatch, "/api/products/1", &other,
		map[string]any{"price": 1.0})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// nothing to change
	w = do(t, router, http.MethodPatch, "/api/products/1", &farmer, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// non-positive values rejected
	w = do(t, router, http.MethodPatch, "/api/products/1", &farmer,
		map[string]any{"price": -3.0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPatch, "/api/products/99", &farmer,
		map[string]any{"price": 4.0})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUserProducts(t *testing.T) {
	router := setup(t)
	farmer := newUser(t, "farmer1", models.RoleFarmer)
	other := newUser(t, "farmer2", models.RoleFarmer)

	w := do(t, router, http.MethodPost, "/api/products", &farmer, onionInput())
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, http.MethodGet, "/api/user/products", &farmer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["products"], 1)

	w = do(t, router, http.MethodGet, "/api/user/products", &other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["products"])
}
