package middleware

import (
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/PeterCxy/itte/pkg/logger"
)

const (
	RequestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
	maxRequestIDLen = 128
)

// RequestID echoes an incoming X-Request-Id or assigns a fresh one, and
// logs a redacted request summary under it.
func RequestID(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id := string(ctx.Request.Header.Peek(RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		ctx.SetUserValue(requestIDKey, id)
		ctx.Response.Header.Set(RequestIDHeader, id)
		logger.LogRequestFast(ctx, id)
		next(ctx)
	}
}

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue(requestIDKey).(string)
	return id
}
