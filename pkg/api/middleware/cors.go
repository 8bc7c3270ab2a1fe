package middleware

import (
	"github.com/valyala/fasthttp"
)

const (
	corsAllowMethods = "GET,PUT,PATCH,OPTIONS"
	corsAllowHeaders = "Content-Type"
	corsMaxAge       = "600"
)

// CORS reflects allowed origins back to the browser. "*" in origins allows
// any origin. Headers are set before the handler runs so error responses
// carry them too.
func CORS(origins []string) Middleware {
	allowed := make(map[string]struct{}, len(origins))
	wildcard := false
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
		allowed[o] = struct{}{}
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			origin := string(ctx.Request.Header.Peek("Origin"))
			if origin != "" {
				if _, ok := allowed[origin]; ok || wildcard {
					h := &ctx.Response.Header
					h.Set("Access-Control-Allow-Origin", origin)
					h.Set("Vary", "Origin")
					h.Set("Access-Control-Allow-Methods", corsAllowMethods)
					h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
					h.Set("Access-Control-Max-Age", corsMaxAge)
				}
			}
			next(ctx)
		}
	}
}
