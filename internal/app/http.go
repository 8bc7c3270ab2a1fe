package app

import (
	"fmt"
	"net"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/PeterCxy/itte/pkg/api"
	"github.com/PeterCxy/itte/pkg/api/routes/comments"
	"github.com/PeterCxy/itte/pkg/config/banner"
	"github.com/PeterCxy/itte/pkg/logger"
	"github.com/PeterCxy/itte/pkg/store"
)

func (a *App) printBanner() {
	banner.Print(a.bannerOut, a.eff, a.versionString())
}

// readyzHandlerFast reports 200 while the backend is open.
func (a *App) readyzHandlerFast(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("application/json")
	if !store.Ready(a.backend) {
		ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
		_, _ = ctx.WriteString("{\"status\":\"not ready\"}")
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ver := a.version
	if ver == "" {
		ver = "dev"
	}
	_, _ = ctx.WriteString("{\"status\":\"ok\",\"version\":\"" + ver + "\"}")
}

func (a *App) healthzHandlerFast(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusOK)
	_, _ = ctx.WriteString("{\"status\":\"ok\"}")
}

// handler builds the routed, middleware-wrapped request handler.
func (a *App) handler() fasthttp.RequestHandler {
	cfg := a.eff.Config
	routes := api.BuildRoutes(api.Deps{
		Comments:  comments.New(a.threads),
		Healthz:   a.healthzHandlerFast,
		Readyz:    a.readyzHandlerFast,
		AssetsDir: cfg.Server.AssetsDir,
	})
	return api.Handler(routes, cfg.Security.CORS.AllowedOrigins)
}

// startHTTP binds the listen address and serves in the background. The
// returned channel delivers the error Serve exits with.
func (a *App) startHTTP() (<-chan error, error) {
	cfg := a.eff.Config

	const (
		readBufferSize       = 64 * 1024
		idleTimeout          = 30 * time.Second
		maxKeepaliveDuration = 2 * time.Minute
	)
	a.srvFast = &fasthttp.Server{
		Name:                 "itte",
		Handler:              a.handler(),
		ReadBufferSize:       readBufferSize,
		MaxRequestBodySize:   int(cfg.Server.MaxBodySize.Int64()),
		ReduceMemoryUsage:    true,
		ReadTimeout:          cfg.Server.ReadTimeout.Duration(),
		WriteTimeout:         cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:          idleTimeout,
		MaxKeepaliveDuration: maxKeepaliveDuration,
	}

	ln, err := net.Listen("tcp", a.eff.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", a.eff.Addr, err)
	}
	a.addr.Store(ln.Addr().String())
	logger.Info("http_listening", "addr", ln.Addr().String())

	// TLS is left to a fronting proxy.
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.srvFast.Serve(ln)
	}()
	return errCh, nil
}

// Addr is the bound listen address once Run has started the server.
func (a *App) Addr() string {
	s, _ := a.addr.Load().(string)
	return s
}
