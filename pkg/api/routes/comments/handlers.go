// Package comments serves the /comments endpoint.
package comments

import (
	"context"

	"github.com/valyala/fasthttp"

	"github.com/PeterCxy/itte/pkg/api/middleware"
	"github.com/PeterCxy/itte/pkg/api/router"
	"github.com/PeterCxy/itte/pkg/logger"
	"github.com/PeterCxy/itte/pkg/models"
)

// Service is the thread store as seen by the handlers.
type Service interface {
	Post(ctx context.Context, body []byte) (models.PublicComment, error)
	List(ctx context.Context, q models.ListQuery) (models.CommentList, error)
	Edit(ctx context.Context, body []byte) (models.PublicComment, error)
}

type Handlers struct {
	svc Service
}

func New(svc Service) *Handlers {
	return &Handlers{svc: svc}
}

// Preflight answers CORS preflight requests. The CORS middleware has
// already set the allow headers when the origin is permitted.
func (h *Handlers) Preflight(ctx *fasthttp.RequestCtx) {
	if len(ctx.Request.Header.Peek("Origin")) == 0 {
		ctx.SetStatusCode(fasthttp.StatusForbidden)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
}

// Create handles PUT /comments.
func (h *Handlers) Create(ctx *fasthttp.RequestCtx) {
	c, err := h.svc.Post(ctx, ctx.PostBody())
	if err != nil {
		writeError(ctx, "create", err)
		return
	}
	_ = router.WriteJSON(ctx, c)
}

// List handles GET /comments?path=&limit=&cursor=.
func (h *Handlers) List(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	list, err := h.svc.List(ctx, models.ListQuery{
		Path:   string(args.Peek("path")),
		Limit:  string(args.Peek("limit")),
		Cursor: string(args.Peek("cursor")),
	})
	if err != nil {
		writeError(ctx, "list", err)
		return
	}
	_ = router.WriteJSON(ctx, list)
}

// Edit handles PATCH /comments.
func (h *Handlers) Edit(ctx *fasthttp.RequestCtx) {
	c, err := h.svc.Edit(ctx, ctx.PostBody())
	if err != nil {
		writeError(ctx, "edit", err)
		return
	}
	_ = router.WriteJSON(ctx, c)
}

func writeError(ctx *fasthttp.RequestCtx, op string, err error) {
	if re, ok := models.AsRequestError(err); ok {
		logger.Debug("comment_request_rejected", "reqid", middleware.GetRequestID(ctx), "op", op, "code", re.Code)
		router.WriteTextError(ctx, re.Status, re.Reason)
		return
	}
	logger.Error("comment_request_failed", "reqid", middleware.GetRequestID(ctx), "op", op, "error", err)
	router.WriteTextError(ctx, fasthttp.StatusInternalServerError, "Internal Server Error")
}
