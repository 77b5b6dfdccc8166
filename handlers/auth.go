package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/classpulse/classpulsebackend/models"
	"github.com/classpulse/classpulsebackend/repository"
)

var jwtKey []byte

const jwtExpirationHours = 24

// InitAuth sets the signing key used by login and the auth middleware. Must
// be called once at startup before any request is served.
func InitAuth(secret string) {
	jwtKey = []byte(secret)
}

type AuthHandler struct {
	UserRepo repository.UserRepositoryInterface
}

func NewAuthHandler(userRepo repository.UserRepositoryInterface) *AuthHandler {
	return &AuthHandler{UserRepo: userRepo}
}

type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "Invalid request payload")
		return
	}

	user, err := h.UserRepo.GetByUsername(payload.Username)
	if err != nil {
		WriteAPIError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
		return
	}

	if !user.CheckPassword(payload.Password) {
		WriteAPIError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
		return
	}

	expirationTime := time.Now().Add(jwtExpirationHours * time.Hour)
	claims := &jwt.RegisteredClaims{
		Subject:   fmt.Sprint(user.ID),
		ExpiresAt: jwt.NewNumericDate(expirationTime),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    "classpulsebackend",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtKey)
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "token_error", "Failed to generate token")
		return
	}

	userForResponse := *user
	userForResponse.PasswordHash = ""

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     tokenString,
		User:      userForResponse,
		ExpiresAt: expirationTime,
	})
}

type SignupPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Signup registers a new instructor account.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload SignupPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "Invalid request payload: "+err.Error())
		return
	}

	if payload.Username == "" || payload.Password == "" {
		WriteAPIError(w, http.StatusBadRequest, "missing_fields", "Username and password are required")
		return
	}

	user := models.User{
		Username: payload.Username,
		Name:     payload.Name,
	}
	if err := user.SetPassword(payload.Password); err != nil {
		log.Printf("Error hashing password for new user %s: %v", payload.Username, err)
		WriteAPIError(w, http.StatusInternalServerError, "hash_error", "Failed to process password")
		return
	}

	if err := h.UserRepo.Create(&user); err != nil {
		log.Printf("Error creating user %s: %v", payload.Username, err)
		WriteAPIError(w, http.StatusConflict, "user_exists", "Username is already taken")
		return
	}

	user.PasswordHash = ""
	writeJSON(w, http.StatusCreated, user)
}
