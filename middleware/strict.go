package middleware

import (
	"context"
	"errors"
	"net/http"

	goPolicy "github.com/MrEthical07/goPolicy"
	"github.com/MrEthical07/goPolicy/policy"
)

// RequireStrict is [Require] plus a live read of the subject's stored policy:
// the token must grant the permission AND the grant must still hold in the
// store. Revocations, swaps and downgrades take effect on the next request
// instead of at token expiry, at the cost of one store read per request.
//
// Token failures map to 401, missing or insufficient stored policies to 403,
// and store outages to 503. An engine built without redis always answers 403
// here; use [Require] for purely stateless checking.
func RequireStrict(engine *goPolicy.Engine, perm policy.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := r.Context()
			if ip := clientIP(r); ip != "" {
				ctx = goPolicy.WithClientIP(ctx, ip)
			}

			auth, err := engine.CheckToken(ctx, tokenString, perm)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !auth.Granted() {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			live, err := engine.CheckSubject(ctx, auth.SubjectID, perm)
			if errors.Is(err, goPolicy.ErrStoreUnavailable) {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}
			if err != nil || !live.Granted() {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx = context.WithValue(ctx, checkResultContextKey{}, &live)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
