package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func run(h fasthttp.RequestHandler, origin, reqID string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI("/comments")
	if origin != "" {
		ctx.Request.Header.Set("Origin", origin)
	}
	if reqID != "" {
		ctx.Request.Header.Set(RequestIDHeader, reqID)
	}
	h(&ctx)
	return &ctx
}

func fail(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusBadRequest)
	ctx.SetBodyString("Invalid URL")
}

func TestCORSAllowedOrigin(t *testing.T) {
	h := CORS([]string{"https://blog.example"})(fail)

	ctx := run(h, "https://blog.example", "")
	assert.Equal(t, "https://blog.example", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
	assert.Equal(t, "Origin", string(ctx.Response.Header.Peek("Vary")))
	assert.Equal(t, corsAllowMethods, string(ctx.Response.Header.Peek("Access-Control-Allow-Methods")))
	assert.Equal(t, 400, ctx.Response.StatusCode())

	ctx = run(h, "https://evil.example", "")
	assert.Empty(t, ctx.Response.Header.Peek("Access-Control-Allow-Origin"))

	ctx = run(h, "", "")
	assert.Empty(t, ctx.Response.Header.Peek("Access-Control-Allow-Origin"))
}

func TestCORSWildcard(t *testing.T) {
	ctx := run(CORS([]string{"*"})(fail), "https://anything.example", "")
	assert.Equal(t, "https://anything.example", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(func(ctx *fasthttp.RequestCtx) { seen = GetRequestID(ctx) })

	ctx := run(h, "", "abc-123")
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", string(ctx.Response.Header.Peek(RequestIDHeader)))

	ctx = run(h, "", "")
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, string(ctx.Response.Header.Peek(RequestIDHeader)))
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
			return func(ctx *fasthttp.RequestCtx) {
				order = append(order, name)
				next(ctx)
			}
		}
	}
	h := Chain(func(*fasthttp.RequestCtx) { order = append(order, "handler") }, mw("outer"), mw("inner"))
	run(h, "", "")
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestMetricsLabelsUnmatched(t *testing.T) {
	ctx := run(Metrics(fail), "", "")
	assert.Equal(t, 400, ctx.Response.StatusCode())
}
