package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	goPolicy "github.com/MrEthical07/goPolicy"
	"github.com/MrEthical07/goPolicy/policy"
)

type checkResultContextKey struct{}

func CheckResultFromContext(ctx context.Context) (*goPolicy.CheckResult, bool) {
	res, ok := ctx.Value(checkResultContextKey{}).(*goPolicy.CheckResult)
	return res, ok
}

func Require(engine *goPolicy.Engine, perm policy.Permission) func(http.Handler) http.Handler {
	return guard(engine, []policy.Permission{perm})
}

func guard(engine *goPolicy.Engine, perms []policy.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil || len(perms) == 0 {
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

			var last goPolicy.CheckResult
			for _, perm := range perms {
				res, err := engine.CheckToken(ctx, tokenString, perm)
				if err != nil {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				if !res.Granted() {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
				last = res
			}

			ctx = context.WithValue(ctx, checkResultContextKey{}, &last)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
