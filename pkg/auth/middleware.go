package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/productmng/product-service/pkg/web"
)

type contextKey string

const (
	subjectContextKey = contextKey("subject")
	rolesContextKey   = contextKey("roles")
)

// Middleware verifies the bearer token of each request and enriches the
// context with the token subject and roles. Requests without a valid token
// receive a 401 with the standard error envelope.
func Middleware(verifier Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if authHeader == "" || tokenString == authHeader {
				web.RespondError(w, r, logger, http.StatusUnauthorized,
					"Authentication is required to access this resource")
				return
			}

			token, err := verifier.Verify(r.Context(), tokenString)
			if err != nil {
				logger.WarnContext(r.Context(), "Token verification failed", "error", err)
				web.RespondError(w, r, logger, http.StatusUnauthorized,
					"Authentication is required to access this resource")
				return
			}

			subject, ok := token.Subject()
			if !ok {
				web.RespondError(w, r, logger, http.StatusUnauthorized,
					"Authentication is required to access this resource")
				return
			}

			ctx := context.WithValue(r.Context(), subjectContextKey, subject)
			ctx = context.WithValue(ctx, rolesContextKey, tokenRoles(token))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows the request through when the context carries at least one
// of the given roles; otherwise it responds 403 with the error envelope.
func RequireRole(logger *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, role := range ContextRoles(r.Context()) {
				if _, ok := allowed[role]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}
			logger.WarnContext(r.Context(), "Access denied",
				"subject", ContextSubject(r.Context()), "required_roles", roles)
			web.RespondError(w, r, logger, http.StatusForbidden,
				"You do not have permission to access this resource")
		})
	}
}

// ContextSubject retrieves the token subject from the context.
func ContextSubject(ctx context.Context) string {
	subject, _ := ctx.Value(subjectContextKey).(string)
	return subject
}

// ContextRoles retrieves the roles from the context.
func ContextRoles(ctx context.Context) []string {
	roles, _ := ctx.Value(rolesContextKey).([]string)
	return roles
}

// tokenRoles extracts the `roles` claim. The claim decodes as a generic JSON
// array, so each element is type-asserted individually.
func tokenRoles(token interface {
	Get(string, any) error
}) []string {
	var raw []any
	if err := token.Get("roles", &raw); err != nil {
		return nil
	}
	roles := make([]string, 0, len(raw))
	for _, entry := range raw {
		if role, ok := entry.(string); ok {
			roles = append(roles, role)
		}
	}
	return roles
}
