package myMiddleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"go-social/internal/apperr"
	"go-social/internal/auth"
	"go-social/internal/httpx"
)

type contextKey string

const UserKey contextKey = "user_id"

// TokenValidator is what the middleware needs from the token service.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	validator TokenValidator
	logger    *zap.SugaredLogger
}

func NewAuthMiddleware(v TokenValidator, logger *zap.SugaredLogger) *AuthMiddleware {
	return &AuthMiddleware{validator: v, logger: logger}
}

// Handle resolves the caller once per request and stores the user id in the
// request context. Requests without a valid session get 401.
func (am *AuthMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := auth.TokenFromRequest(r)
		if tokenString == "" {
			httpx.Error(w, am.logger, apperr.Unauthorized("missing_token", "authentication token is missing"))
			return
		}

		claims, err := am.validator.Validate(r.Context(), tokenString)
		if err != nil {
			httpx.Error(w, am.logger, err)
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			httpx.Error(w, am.logger, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID returns a copy of ctx carrying the caller's id.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, UserKey, id)
}

// UserID returns the caller's id set by AuthMiddleware.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserKey).(int64)
	return id, ok
}

// MustUserID is UserID for handlers mounted behind AuthMiddleware.
func MustUserID(ctx context.Context) (int64, error) {
	id, ok := UserID(ctx)
	if !ok {
		return 0, apperr.Unauthorized("missing_token", "authentication token is missing")
	}
	return id, nil
}
