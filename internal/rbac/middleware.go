package rbac

import (
	"net/http"
)

var defaultChecker = NewChecker(nil)

// Require enforces a single permission with the default role table.
func Require(perm string) func(http.Handler) http.Handler { return defaultChecker.Require(perm) }

// RequireAny enforces that the role has at least one of the permissions.
func RequireAny(perms ...string) func(http.Handler) http.Handler {
	return defaultChecker.RequireAny(perms...)
}

// Permissions lists what role may do under the default role table.
func Permissions(role string) []string { return defaultChecker.Permissions(role) }

func (c *Checker) Require(perm string) func(http.Handler) http.Handler {
	return guard(func(role string) bool { return c.Has(role, perm) })
}

func (c *Checker) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return guard(func(role string) bool { return c.Any(role, perms...) })
}

// guard answers 401 when no role is on the context and 403 when the role
// is not allowed.
func guard(allowed func(role string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !allowed(role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
