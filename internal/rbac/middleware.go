package rbac

import "net/http"

var defaultChecker = NewChecker(nil)

// Require gates a route on one permission of the caller's role. Ownership
// checks (is this the quiz's teacher, is this student enrolled) stay in the
// handlers, next to the record they load.
func Require(perm string) func(http.Handler) http.Handler {
	return guard(func(role string) bool { return defaultChecker.Has(role, perm) })
}

// RequireAny admits the caller when the role holds any one of the
// permissions.
func RequireAny(perms ...string) func(http.Handler) http.Handler {
	return guard(func(role string) bool { return defaultChecker.Any(role, perms...) })
}

func guard(allowed func(role string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" || !allowed(role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
