package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"agromandi/globals"
	"agromandi/middleware"
	"agromandi/models"
	"agromandi/rdx"
	"agromandi/store"
	"agromandi/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	refreshTokenTTL = 7 * 24 * time.Hour
	accessTokenTTL  = 12 * time.Hour
)

// GenerateAccessToken signs an HS256 JWT carrying the user's id, name
// and role.
func GenerateAccessToken(user models.User) (string, error) {
	claims := &middleware.Claims{
		Username: user.Username,
		UserID:   user.ID,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(globals.JwtSecret)
}

func registerHandler(w http.ResponseWriter, r *http.Request) {
	var input models.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if err := input.Validate(); err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("register: failed to hash password for %s: %v", input.Username, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := models.User{
		Username:       input.Username,
		Password:       string(hashedPassword),
		FullName:       input.FullName,
		Email:          input.Email,
		Phone:          input.Phone,
		Role:           input.Role,
		Location:       input.Location,
		FarmName:       input.FarmName,
		FarmBio:        input.FarmBio,
		FarmAddress:    input.FarmAddress,
		VerificationID: input.VerificationID,
	}

	created, err := store.DB.CreateUser(r.Context(), user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			utils.RespondWithError(w, http.StatusConflict, "User already exists")
			return
		}
		log.Printf("register: create user: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	if err := rdx.RdxSet(fmt.Sprintf("users:%d", created.ID), created.Username); err != nil {
		log.Printf("register: failed to cache username: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"success": true,
		"user":    created,
	})
}

func loginHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	storedUser, err := store.DB.GetUserByUsername(r.Context(), input.Username)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedUser.Password), []byte(input.Password)); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	tokenString, err := GenerateAccessToken(storedUser)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error generating refresh token")
		return
	}
	hashedRefresh := hashToken(refreshToken)
	expiry := time.Now().Add(refreshTokenTTL)

	if _, err := store.DB.UpdateUser(r.Context(), storedUser.ID, store.UserPatch{
		RefreshToken:  &hashedRefresh,
		RefreshExpiry: &expiry,
	}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store refresh token")
		return
	}

	if err := rdx.RdxHset("tokki", fmt.Sprintf("%d", storedUser.ID), tokenString); err != nil {
		log.Printf("login: redis token storage failed: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":      true,
		"token":        tokenString,
		"refreshToken": refreshToken,
		"user":         storedUser,
	})
}

func logoutUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	if err := rdx.RdxHdel("tokki", fmt.Sprintf("%d", userID)); err != nil {
		log.Printf("logout: error removing token from redis: %v", err)
	}

	empty := ""
	zero := time.Time{}
	if _, err := store.DB.UpdateUser(r.Context(), userID, store.UserPatch{
		RefreshToken:  &empty,
		RefreshExpiry: &zero,
	}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Logged out successfully"})
}

func refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.RefreshToken == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}

	user, err := store.DB.GetUserByID(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not found")
		return
	}

	if user.RefreshToken == "" || user.RefreshToken != hashToken(input.RefreshToken) || time.Now().After(user.RefreshExpiry) {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	// Rotate: new access token plus a fresh refresh token
	tokenString, err := GenerateAccessToken(user)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to refresh token")
		return
	}
	newRefresh, err := generateRefreshToken()
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to refresh token")
		return
	}
	hashed := hashToken(newRefresh)
	expiry := time.Now().Add(refreshTokenTTL)
	if _, err := store.DB.UpdateUser(r.Context(), user.ID, store.UserPatch{
		RefreshToken:  &hashed,
		RefreshExpiry: &expiry,
	}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store refresh token")
		return
	}

	if err := rdx.RdxHset("tokki", fmt.Sprintf("%d", user.ID), tokenString); err != nil {
		log.Printf("refresh: error updating token in redis: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":      true,
		"token":        tokenString,
		"refreshToken": newRefresh,
	})
}

func currentUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid user")
		return
	}
	user, err := store.DB.GetUserByID(r.Context(), userID)
	if err != nil {
		utils.RespondWithStoreError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "user": user})
}

// Generates a random refresh token
func generateRefreshToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(tokenBytes), nil
}

// Hashes a given token
func hashToken(token string) string {
	hash := sha256.New()
	hash.Write([]byte(token))
	return hex.EncodeToString(hash.Sum(nil))
}
