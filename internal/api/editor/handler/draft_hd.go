package editorHandler

import (
	"context"
	"time"

	"BlogEditor/internal/api/editor"
	"BlogEditor/internal/entity"
	contextPkg "BlogEditor/pkg/context"
	"BlogEditor/pkg/handlerUtil"
	"BlogEditor/pkg/log"

	"github.com/gofiber/fiber/v2"
)

const requestTimeout = 10 * time.Second

func (h *EditorHandler) draftResponse(d entity.Draft) editor.DraftResponse {
	return editor.NewDraftResponse(d, h.editorService.TagSuggestions(), h.previewBase)
}

func (h *EditorHandler) CreateDraft(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing create draft request")

	draft, err := h.editorService.CreateDraft(c, h.middleware.GetCredentials(ctx))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_draft")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, h.draftResponse(draft))
	}
}

func (h *EditorHandler) LoadDraft(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	blogID := ctx.Params("blogId")
	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"blog_id":    blogID,
	}).Debug("Processing load draft request")

	draft, err := h.editorService.LoadDraft(c, h.middleware.GetCredentials(ctx), blogID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "load_draft")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, h.draftResponse(draft))
	}
}

func (h *EditorHandler) GetDraft(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	draft, err := h.editorService.GetDraft(c, h.middleware.GetCredentials(ctx), ctx.Params("id"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_draft")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.draftResponse(draft))
	}
}

func (h *EditorHandler) UpdateDraft(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req editor.UpdateDraftRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	draft, err := h.editorService.UpdateDraft(c, h.middleware.GetCredentials(ctx), ctx.Params("id"), req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "update_draft")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.draftResponse(draft))
	}
}

func (h *EditorHandler) DiscardDraft(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	if err := h.editorService.DiscardDraft(c, h.middleware.GetCredentials(ctx), ctx.Params("id")); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "discard_draft")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Draft discarded",
		})
	}
}
