package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"bookstay/internal/domain"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxIsAdmin
)

// IssueToken signs an HS256 access token carrying the user id, the admin flag
// and a random token id.
func IssueToken(secret string, u domain.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": u.ID.Hex(),
		"adm": u.IsAdmin,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// JWTAuth validates a Bearer token and stores the subject and admin claim in
// the request context for downstream handlers.
func JWTAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
				return
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
				return
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid claims")
				return
			}

			ctx := r.Context()
			if sub, ok := claims["sub"].(string); ok {
				ctx = context.WithValue(ctx, ctxUserID, sub)
			}
			adm, _ := claims["adm"].(bool)
			ctx = context.WithValue(ctx, ctxIsAdmin, adm)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates mutating routes behind the admin claim set by JWTAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		adm, _ := r.Context().Value(ctxIsAdmin).(bool)
		if !adm {
			writeProblem(w, http.StatusForbidden, "Forbidden", "administrative role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ---- auth endpoints ----

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Country  string `json:"country"`
	City     string `json:"city"`
	Phone    string `json:"phone"`
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	if in.Username == "" || in.Email == "" || len(in.Password) < 6 {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "username, email and a password of at least 6 characters are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	u, err := h.Users.Create(r.Context(), domain.User{
		Username:     in.Username,
		Email:        in.Email,
		Country:      in.Country,
		City:         in.City,
		Phone:        in.Phone,
		PasswordHash: string(hash),
	})
	if errors.Is(err, domain.ErrDuplicate) {
		writeProblem(w, http.StatusConflict, "Conflict", "username or email already taken")
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	u, err := h.Users.GetByUsername(r.Context(), in.Username)
	if err != nil {
		// same answer for unknown user and wrong password
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "wrong username or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "wrong username or password")
		return
	}
	tok, err := IssueToken(h.JWTSecret, u, h.TokenTTL)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: tok, User: u})
}
