// Package api assembles the HTTP surface.
package api

import (
	"net/http"
	"path/filepath"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/PeterCxy/itte/pkg/api/middleware"
	"github.com/PeterCxy/itte/pkg/api/router"
	"github.com/PeterCxy/itte/pkg/api/routes/comments"
)

var startedAt = time.Now()

var (
	uptime = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "itte_uptime_seconds",
			Help: "Seconds since the process started.",
		},
		func() float64 { return time.Since(startedAt).Seconds() },
	)

	heapAlloc = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "itte_heap_alloc_bytes",
			Help: "Current heap allocation in bytes.",
		},
		func() float64 {
			var stats runtime.MemStats
			runtime.ReadMemStats(&stats)
			return float64(stats.HeapAlloc)
		},
	)
)

func init() {
	prometheus.MustRegister(uptime)
	prometheus.MustRegister(heapAlloc)
}

// wrapHTTPHandler wraps an http.Handler to work with fasthttp.
func wrapHTTPHandler(h http.Handler) fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(h)
}

// Routes maps path to method to handler.
type Routes map[string]map[string]fasthttp.RequestHandler

// Deps are the handlers and settings the routes are built from.
type Deps struct {
	Comments  *comments.Handlers
	Healthz   fasthttp.RequestHandler
	Readyz    fasthttp.RequestHandler
	AssetsDir string
}

// BuildRoutes returns the full route table.
func BuildRoutes(d Deps) Routes {
	routes := Routes{
		"/comments": {
			fasthttp.MethodOptions: d.Comments.Preflight,
			fasthttp.MethodPut:     d.Comments.Create,
			fasthttp.MethodGet:     d.Comments.List,
			fasthttp.MethodPatch:   d.Comments.Edit,
		},
		"/metrics": {
			fasthttp.MethodGet: wrapHTTPHandler(promhttp.Handler()),
		},
	}
	if d.Healthz != nil {
		routes["/healthz"] = map[string]fasthttp.RequestHandler{fasthttp.MethodGet: d.Healthz}
	}
	if d.Readyz != nil {
		routes["/readyz"] = map[string]fasthttp.RequestHandler{fasthttp.MethodGet: d.Readyz}
	}
	if d.AssetsDir != "" {
		routes["/itte.js"] = map[string]fasthttp.RequestHandler{fasthttp.MethodGet: serveAsset(d.AssetsDir, "itte.js", "application/javascript")}
		routes["/itte.css"] = map[string]fasthttp.RequestHandler{fasthttp.MethodGet: serveAsset(d.AssetsDir, "itte.css", "text/css")}
		routes["/demo"] = map[string]fasthttp.RequestHandler{fasthttp.MethodGet: serveAsset(d.AssetsDir, "demo.html", "text/html")}
	}
	return routes
}

// RegisterRoutes installs routes onto r.
func RegisterRoutes(r *router.Router, routes Routes) {
	for path, methods := range routes {
		for method, h := range methods {
			r.Handle(method, path, h)
		}
	}
}

// Handler returns the routed handler wrapped in the standard middleware.
func Handler(routes Routes, allowedOrigins []string) fasthttp.RequestHandler {
	r := router.New()
	RegisterRoutes(r, routes)
	r.NotFound(func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	})
	return middleware.Chain(r.Handler,
		middleware.RequestID,
		middleware.CORS(allowedOrigins),
		middleware.Metrics,
	)
}

func serveAsset(dir, name, contentType string) fasthttp.RequestHandler {
	path := filepath.Join(dir, name)
	return func(ctx *fasthttp.RequestCtx) {
		fasthttp.ServeFile(ctx, path)
		if ctx.Response.StatusCode() == fasthttp.StatusOK {
			ctx.SetContentType(contentType)
		}
	}
}
