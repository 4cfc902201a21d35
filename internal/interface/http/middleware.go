package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	domoperator "example.com/orderdesk/internal/domain/operator"
)

type ctxKey struct{}

var (
	ctxOperatorKey     = ctxKey{}
	errUnauthenticated = errors.New("unauthenticated")
	errForbidden       = errors.New("forbidden")
)

type authOperator struct {
	OperatorID string
	Role       domoperator.Role
	Email      string
	Name       string
}

func (a *API) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			respondError(w, http.StatusUnauthorized, errUnauthenticated)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		claims, err := a.tokenSvc.ParseToken(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, errUnauthenticated)
			return
		}

		ctx := context.WithValue(r.Context(), ctxOperatorKey, &authOperator{
			OperatorID: claims.OperatorID,
			Role:       claims.Role,
			Email:      claims.Email,
			Name:       claims.Name,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *API) requireRoles(roles ...domoperator.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op := getAuthOperator(r.Context())
			if op == nil {
				respondError(w, http.StatusUnauthorized, errUnauthenticated)
				return
			}
			for _, role := range roles {
				if op.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondError(w, http.StatusForbidden, errForbidden)
		})
	}
}

func getAuthOperator(ctx context.Context) *authOperator {
	if op, ok := ctx.Value(ctxOperatorKey).(*authOperator); ok {
		return op
	}
	return nil
}
