package farmer_test

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

func TestUpdateProfile(t *testing.T) {
	router := setup(t)
	farmer := newUser(t, "farmer1", models.RoleFarmer)
	buyer := newUser(t, "buyer1", models.RoleBuyer)

	w := do(t, router, http.MethodPatch, "/api/farmer/profile", &farmer,
		map[string]string{"farmName": "Patel Organic Farm", "location": "Nashik"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "Patel Organic Farm", user["farmName"])
	assert.Equal(t, "Nashik", user["location"])

	// farmer-only surface
	w = do(t, router, http.MethodPatch, "/api/farmer/profile", &buyer,
		map[string]string{"farmName": "nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, router, http.MethodPatch, "/api/farmer/profile", &farmer, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitVerification(t *testing.T) {
	router := setup(t)
	farmer := newUser(t, "farmer1", models.RoleFarmer)

	w := do(t, router, http.MethodPost, "/api/farmer/verification", &farmer,
		models.VerificationInput{VerificationID: "FSSAI-1234", FarmName: "Patel Organic Farm"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "FSSAI-1234", user["verificationId"])
	assert.Equal(t, "pending", user["verificationStatus"])

	// missing document id
	w = do(t, router, http.MethodPost, "/api/farmer/verification", &farmer,
		models.VerificationInput{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["errors"], "verificationId")
}

func TestUpdateCertifications(t *testing.T) {
	router := setup(t)
	farmer := newUser(t, "farmer1", models.RoleFarmer)

	w := do(t, router, http.MethodPatch, "/api/farmer/certifications", &farmer,
		map[string]string{"action": "add", "certification": "India Organic"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []any{"India Organic"}, decode(t, w)["user"].(map[string]any)["certifications"])

	// adding twice keeps one copy
	w = do(t, router, http.MethodPatch, "/api/farmer/certifications", &farmer,
		map[string]string{"action": "add", "certification": "India Organic"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["user"].(map[string]any)["certifications"], 1)

	w = do(t, router, http.MethodPatch, "/api/farmer/certifications", &farmer,
		map[string]string{"action": "remove", "certification": "India Organic"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["user"].(map[string]any)["certifications"])

	w = do(t, router, http.MethodPatch, "/api/farmer/certifications", &farmer,
		map[string]string{"action": "toggle", "certification": "India Organic"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["errors"], "action")
}
