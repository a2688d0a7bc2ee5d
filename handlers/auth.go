package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/kevinaaaquil/library/backend/middleware"
)

const tokenTTL = 7 * 24 * time.Hour

// AuthHandler logs in the single librarian account configured at startup.
type AuthHandler struct {
	JWTSecret    string
	Email        string
	PasswordHash []byte // bcrypt; the plain password is not kept
}

func NewAuthHandler(secret, email, password string) (*AuthHandler, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &AuthHandler{JWTSecret: secret, Email: email, PasswordHash: hash}, nil
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	// The hash is compared even when the email does not match.
	pwErr := bcrypt.CompareHashAndPassword(h.PasswordHash, []byte(req.Password))
	if !strings.EqualFold(req.Email, h.Email) || pwErr != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "invalid email or password")
		return
	}
	token, err := h.createToken(h.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal", "could not create token")
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, Email: h.Email})
}

func (h *AuthHandler) createToken(email string) (string, error) {
	now := time.Now()
	claims := &middleware.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.JWTSecret))
}
