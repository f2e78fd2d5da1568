package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

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

func do(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
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

func registerInput(username, role string) models.RegisterInput {
	return models.RegisterInput{
		Username: username,
		Password: "password123",
		FullName: "Test User",
		Email:    username + "@example.com",
		Role:     role,
	}
}

func TestRegister(t *testing.T) {
	router := setup(t)

	w := do(t, router, http.MethodPost, "/api/auth/register", "",
		registerInput("ramesh", models.RoleFarmer))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "ramesh", user["username"])
	assert.Equal(t, "farmer", user["role"])
	assert.Equal(t, "pending", user["verificationStatus"])
	assert.NotContains(t, user, "password", "password hash must never leave the server")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	router := setup(t)

	w := do(t, router, http.MethodPost, "/api/auth/register", "",
		registerInput("ramesh", models.RoleFarmer))
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, http.MethodPost, "/api/auth/register", "",
		registerInput("ramesh", models.RoleBuyer))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	router := setup(t)

	in := registerInput("x", "pilot")
	in.Password = "123"
	in.Email = "not-an-email"
	w := do(t, router, http.MethodPost, "/api/auth/register", "", in)
	require.Equal(t, http.StatusBadRequest, w.Code)
	errs := decode(t, w)["errors"].(map[string]any)
	assert.Contains(t, errs, "password")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "role")
}

func TestLogin(t *testing.T) {
	router := setup(t)

	w := do(t, router, http.MethodPost, "/api/auth/register", "",
		registerInput("priya", models.RoleBuyer))
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "priya", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.NotEmpty(t, body["token"])
	assert.NotEmpty(t, body["refreshToken"])
	assert.Equal(t, "priya", body["user"].(map[string]any)["username"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router := setup(t)

	w := do(t, router, http.MethodPost, "/api/auth/register", "",
		registerInput("priya", models.RoleBuyer))
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "priya", "password": "wrongpass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "ghost", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCurrentUser(t *testing.T) {
	router := setup(t)

	w := do(t, router, http.MethodPost, "/api/auth/register", "",
		registerInput("priya", models.RoleBuyer))
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, router, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "priya", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["token"].(string)

	w = do(t, router, http.MethodGet, "/api/user", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "priya", decode(t, w)["user"].(map[string]any)["username"])

	w = do(t, router, http.MethodGet, "/api/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodGet, "/api/user", "garbage.token.here", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshTokenRotation(t *testing.T) {
	router := setup(t)

	w := do(t, router, http.MethodPost, "/api/auth/register", "",
		registerInput("priya", models.RoleBuyer))
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, router, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "priya", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	token := body["token"].(string)
	refresh := body["refreshToken"].(string)

	w = do(t, router, http.MethodPost, "/api/auth/token/refresh", token,
		map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rotated := decode(t, w)
	assert.NotEmpty(t, rotated["token"])
	assert.NotEqual(t, refresh, rotated["refreshToken"])

	// the old refresh token is spent
	w = do(t, router, http.MethodPost, "/api/auth/token/refresh", token,
		map[string]string{"refreshToken": refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutInvalidatesRefresh(t *testing.T) {
	router := setup(t)

	w := do(t, router, http.MethodPost, "/api/auth/register", "",
		registerInput("priya", models.RoleBuyer))
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, router, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "priya", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	token := body["token"].(string)
	refresh := body["refreshToken"].(string)

	w = do(t, router, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPost, "/api/auth/token/refresh", token,
		map[string]string{"refreshToken": refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
