package auth

import (
	"log/slog"
	"net/http"
)

// RoleAuthorization gates routes on the actor's role. The state machine does
// its own finer-grained guards; this only keeps the wrong role class out of a
// route entirely.
type RoleAuthorization struct {
	logger *slog.Logger
}

func NewRoleAuthorization(logger *slog.Logger) *RoleAuthorization {
	return &RoleAuthorization{logger: logger}
}

func (ra *RoleAuthorization) Require(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.logger.Warn("authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			ra.logger.WarnContext(r.Context(), "access denied: insufficient role",
				"user_id", user.ID,
				"user_role", user.Role,
				"required_roles", roles)
			http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
		})
	}
}

func (ra *RoleAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.Require(RoleAdmin)
}

func (ra *RoleAuthorization) RequireApprover() func(http.Handler) http.Handler {
	return ra.Require(RolePM, RoleFM, RoleAdmin)
}
