package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/familybudget/backend/internal/apperror"
	"github.com/familybudget/backend/internal/logger"
)

type contextKey string

// UserIDKey holds the authenticated user's uuid.UUID in the request context.
const UserIDKey contextKey = "userID"

var errInvalidToken = errors.New("invalid token")

// GetUserID returns the authenticated user, or uuid.Nil outside AuthMiddleware.
func GetUserID(ctx context.Context) uuid.UUID {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

// ValidateToken parses an HS256 bearer token issued by the identity service
// and returns the user handle carried in its subject.
func ValidateToken(secret, tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return uuid.Nil, errInvalidToken
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, errInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, errInvalidToken
	}
	return userID, nil
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// user in the request context.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(tokenString) == "" {
				respondAppError(w, apperror.Unauthorized("missing bearer token"))
				return
			}

			userID, err := ValidateToken(secret, strings.TrimSpace(tokenString))
			if err != nil {
				respondAppError(w, apperror.Unauthorized("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = logger.WithUserID(ctx, userID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestContext copies chi's request ID into the logging context.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			r = r.WithContext(logger.WithRequestID(r.Context(), reqID))
		}
		next.ServeHTTP(w, r)
	})
}
