// Package middleware wraps the API router with cross-cutting request
// handling.
package middleware

import "github.com/valyala/fasthttp"

// Middleware decorates a fasthttp handler.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// Chain applies mws so the first one listed runs outermost.
func Chain(h fasthttp.RequestHandler, mws ...Middleware) fasthttp.RequestHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
