package middleware

import (
	"context"
	"net/http"
)

type AdminChecker interface {
	RequireAdmin(ctx context.Context, profileID string) (bool, error)
}

// RequireAdmin gates settlement and withdrawal-approval routes on the
// caller's profile role.
func RequireAdmin(checker AdminChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile, ok := ProfileFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			isAdmin, err := checker.RequireAdmin(r.Context(), profile.ID)
			if err != nil {
				http.Error(w, "unable to verify admin", http.StatusInternalServerError)
				return
			}
			if !isAdmin {
				http.Error(w, "admin privileges required", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
