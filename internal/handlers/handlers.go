package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/bellamoda/salon-bookings/internal/domain"
	"github.com/bellamoda/salon-bookings/internal/service"
	"github.com/bellamoda/salon-bookings/pkg/auth"
	"github.com/bellamoda/salon-bookings/pkg/config"
	"github.com/bellamoda/salon-bookings/pkg/logger"
)

type contextKey string

const claimsKey contextKey = "claims"

type Handlers struct {
	bookings service.BookingService
	auth     service.AuthService
	config   *config.Config
}

func New(bookings service.BookingService, authSvc service.AuthService, cfg *config.Config) *Handlers {
	return &Handlers{
		bookings: bookings,
		auth:     authSvc,
		config:   cfg,
	}
}

// RequireJWT authenticates the bearer token and optionally requires a role.
// Admins pass every role gate.
func (h *Handlers) RequireJWT(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := auth.Parse(token, h.config.Auth.JWTSecret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			if requiredRole != "" && claims.Role != requiredRole && claims.Role != domain.RoleAdmin {
				writeError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), logger.UserIDKey, claims.Sub)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// withAppointmentID scopes the request context to an appointment so every
// log line below it carries the id.
func withAppointmentID(r *http.Request, id int64) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), logger.AppointmentIDKey, id))
}

func actorFrom(r *http.Request) domain.Actor {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return domain.Actor{ID: claims.Sub, Role: claims.Role}
	}
	return domain.Actor{}
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeDomainError maps the engine's error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is a 500 with a generic message.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidTimestamp),
		errors.Is(err, domain.ErrOutsideBusinessHours),
		errors.Is(err, domain.ErrNoServiceSelected),
		errors.Is(err, domain.ErrNoChange),
		errors.Is(err, domain.ErrPastDate):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrServiceNotFound),
		errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrSlotConflict),
		errors.Is(err, domain.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		logger.ErrorContext(r.Context(), "Unhandled error", "error", err,
			"method", r.Method, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "Something went wrong")
	}
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}
