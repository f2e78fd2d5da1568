package messages_test

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

func TestSendMessage(t *testing.T) {
	router := setup(t)
	farmer := newUser(t, "farmer1", models.RoleFarmer)
	buyer := newUser(t, "buyer1", models.RoleBuyer)

	w := do(t, router, http.MethodPost, "/api/messages", &buyer,
		models.MessageInput{ReceiverID: farmer.ID, Content: "Are the onions still available?"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	msg := decode(t, w)["message"].(map[string]any)
	assert.Equal(t, float64(buyer.ID), msg["senderId"])
	assert.Equal(t, false, msg["read"])

	// unknown receiver
	w = do(t, router, http.MethodPost, "/api/messages", &buyer,
		models.MessageInput{ReceiverID: 42, Content: "hello?"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// empty content
	w = do(t, router, http.MethodPost, "/api/messages", &buyer,
		models.MessageInput{ReceiverID: farmer.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetConversation(t *testing.T) {
	router := setup(t)
	farmer := newUser(t, "farmer1", models.RoleFarmer)
	buyer := newUser(t, "buyer1", models.RoleBuyer)
	other := newUser(t, "buyer2", models.RoleBuyer)

	for _, m := range []struct {
		from    models.User
		to      int
		content string
	}{
		{buyer, farmer.ID, "Are the onions available?"},
		{farmer, buyer.ID, "Yes, 500kg in stock."},
		{buyer, farmer.ID, "Great, placing a bid."},
		{other, farmer.ID, "Different thread"},
	} {
		w := do(t, router, http.MethodPost, "/api/messages", &m.from,
			models.MessageInput{ReceiverID: m.to, Content: m.content})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := do(t, router, http.MethodGet, "/api/messages/1", &buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)["messages"].([]any)
	require.Len(t, list, 3)
	assert.Equal(t, "Are the onions available?", list[0].(map[string]any)["content"])
	assert.Equal(t, "Great, placing a bid.", list[2].(map[string]any)["content"])

	// same thread from the farmer's side
	w = do(t, router, http.MethodGet, "/api/messages/2", &farmer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["messages"], 3)

	// conversation with an unknown user
	w = do(t, router, http.MethodGet, "/api/messages/42", &buyer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodGet, "/api/messages/1", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnreadMessages(t *testing.T) {
	router := setup(t)
	farmer := newUser(t, "farmer1", models.RoleFarmer)
	buyer := newUser(t, "buyer1", models.RoleBuyer)

	for _, content := range []string{"one", "two"} {
		w := do(t, router, http.MethodPost, "/api/messages", &buyer,
			models.MessageInput{ReceiverID: farmer.ID, Content: content})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := do(t, router, http.MethodGet, "/api/messages/unread", &farmer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(2), body["count"])
	assert.Len(t, body["messages"], 2)

	// nothing unread for the sender
	w = do(t, router, http.MethodGet, "/api/messages/unread", &buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["count"])
}

func TestMarkMessageRead(t *testing.T) {
	router := setup(t)
	farmer := newUser(t, "farmer1", models.RoleFarmer)
	buyer := newUser(t, "buyer1", models.RoleBuyer)

	w := do(t, router, http.MethodPost, "/api/messages", &buyer,
		models.MessageInput{ReceiverID: farmer.ID, Content: "ping"})
	require.Equal(t, http.StatusCreated, w.Code)

	// the sender cannot mark their own message read
	w = do(t, router, http.MethodPatch, "/api/messages/1/read", &buyer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	msg, err := store.DB.GetMessageByID(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, msg.Read, "forbidden attempt must not mutate the message")

	w = do(t, router, http.MethodPatch, "/api/messages/1/read", &farmer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["message"].(map[string]any)["read"])

	w = do(t, router, http.MethodPatch, "/api/messages/99/read", &farmer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
