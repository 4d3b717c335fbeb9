package editorHandler

import (
	"context"
	"time"

	contextPkg "BlogEditor/pkg/context"
	"BlogEditor/pkg/handlerUtil"
	"BlogEditor/pkg/log"

	"github.com/gofiber/fiber/v2"
)

const submitTimeout = 30 * time.Second

func (h *EditorHandler) Submit(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), submitTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	draftID := ctx.Params("id")
	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"draft_id":   draftID,
	}).Debug("Processing submit request")

	result, err := h.editorService.Submit(c, h.middleware.GetCredentials(ctx), draftID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "submit")
	}

	// A published post is reported even if the deadline passed meanwhile.
	return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
}

func (h *EditorHandler) ListSubmissions(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	result, err := h.editorService.ListSubmissions(c, h.middleware.GetCredentials(ctx))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_submissions")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}
