package middleware

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"

	"github.com/PeterCxy/itte/pkg/api/router"
	"github.com/PeterCxy/itte/pkg/logger"
)

var httpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "itte_http_requests_total",
		Help: "HTTP requests by method, matched route and status.",
	},
	[]string{"method", "route", "status"},
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
}

// Metrics counts requests by route pattern and logs completion.
func Metrics(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		route, _ := ctx.UserValue(router.RoutePatternKey).(string)
		if route == "" {
			route = "unmatched"
		}
		status := ctx.Response.StatusCode()
		httpRequestsTotal.WithLabelValues(string(ctx.Method()), route, strconv.Itoa(status)).Inc()
		logger.Debug("request_done",
			"reqid", GetRequestID(ctx),
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
