package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/raushankrgupta/vehicle-catalog-importer/config"
	"github.com/raushankrgupta/vehicle-catalog-importer/utils"
)

type contextKey string

const operatorKey contextKey = "operator"

// LoginRequest represents the payload for operator login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler checks the operator credentials and issues a token.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer h.flush(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Login API]")

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.RespondError(w, &logMessageBuilder, "Email and Password are required", http.StatusBadRequest)
		return
	}
	if config.AdminEmail == "" || config.AdminPasswordHash == "" {
		utils.RespondError(w, &logMessageBuilder, "Operator login is not configured", http.StatusServiceUnavailable)
		return
	}

	if !strings.EqualFold(req.Email, config.AdminEmail) {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Unknown operator: %s", req.Email))
		utils.RespondError(w, &logMessageBuilder, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(config.AdminPasswordHash), []byte(req.Password)); err != nil {
		utils.AddToLogMessage(&logMessageBuilder, "Invalid password")
		utils.RespondError(w, &logMessageBuilder, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	token, err := utils.GenerateToken(config.AdminEmail)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Failed to generate token: %v", err), http.StatusInternalServerError)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, "Login successful")
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Login successful", "token": token})
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the operator in the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			utils.RespondError(w, nil, "Authorization header missing or invalid", http.StatusUnauthorized)
			return
		}
		operator, err := utils.ValidateToken(tokenString)
		if err != nil {
			utils.RespondError(w, nil, "Invalid or expired token", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), operatorKey, operator)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetOperatorFromContext returns the operator set by AuthMiddleware.
func GetOperatorFromContext(ctx context.Context) (string, error) {
	operator, ok := ctx.Value(operatorKey).(string)
	if !ok || operator == "" {
		return "", errors.New("operator not found in context")
	}
	return operator, nil
}

// CORSMiddleware allows the back-office front end to call the API.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
