package middleware

import (
	"net/http"

	goPolicy "github.com/MrEthical07/goPolicy"
	"github.com/MrEthical07/goPolicy/policy"
)

// RequireAll returns middleware that admits a request only when the
// token's policy grants every listed permission. The [goPolicy.CheckResult]
// placed in the request context is the one for the last permission checked.
//
//	Docs: docs/middleware.md, docs/engine.md
func RequireAll(engine *goPolicy.Engine, perms ...policy.Permission) func(http.Handler) http.Handler {
	return guard(engine, perms)
}
