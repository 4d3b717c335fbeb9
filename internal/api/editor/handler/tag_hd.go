package editorHandler

import (
	"context"
	"net/url"

	"BlogEditor/internal/api/editor"
	contextPkg "BlogEditor/pkg/context"
	"BlogEditor/pkg/handlerUtil"

	"github.com/gofiber/fiber/v2"
)

func (h *EditorHandler) AddTag(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req editor.TagRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	draft, err := h.editorService.AddTag(c, h.middleware.GetCredentials(ctx), ctx.Params("id"), req.Tag)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "add_tag")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.draftResponse(draft))
	}
}

func (h *EditorHandler) AddSuggestedTag(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req editor.TagRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	draft, err := h.editorService.AddSuggestedTag(c, h.middleware.GetCredentials(ctx), ctx.Params("id"), req.Tag)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "add_suggested_tag")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.draftResponse(draft))
	}
}

func (h *EditorHandler) TagKeypress(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req editor.TagKeyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	draft, err := h.editorService.HandleTagKey(c, h.middleware.GetCredentials(ctx), ctx.Params("id"), req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "tag_keypress")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.draftResponse(draft))
	}
}

func (h *EditorHandler) RemoveTag(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	tag, err := url.PathUnescape(ctx.Params("tag"))
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	draft, err := h.editorService.RemoveTag(c, h.middleware.GetCredentials(ctx), ctx.Params("id"), tag)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "remove_tag")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.draftResponse(draft))
	}
}
