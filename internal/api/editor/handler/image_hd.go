package editorHandler

import (
	"context"
	"errors"
	"io"

	"BlogEditor/internal/api/editor"
	contextPkg "BlogEditor/pkg/context"
	"BlogEditor/pkg/handlerUtil"
	"BlogEditor/pkg/log"

	"github.com/gofiber/fiber/v2"
)

const imagesField = "images"

func (h *EditorHandler) AddImages(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	form, err := ctx.MultipartForm()
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("request must be multipart/form-data"), ctx.Path())
	}
	files := form.File[imagesField]

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"files":      len(files),
	}).Debug("Processing add images request")

	draft, err := h.editorService.AddImages(c, h.middleware.GetCredentials(ctx), ctx.Params("id"), files)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "add_images")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.draftResponse(draft))
	}
}

func (h *EditorHandler) RemoveExistingImage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	index, err := ctx.ParamsInt("index")
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, errors.New("index must be a number"), ctx.Path())
	}

	draft, err := h.editorService.RemoveExistingImage(c, h.middleware.GetCredentials(ctx), ctx.Params("id"), index)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "remove_existing_image")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.draftResponse(draft))
	}
}

func (h *EditorHandler) RemoveNewImage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	index, err := ctx.ParamsInt("index")
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, errors.New("index must be a number"), ctx.Path())
	}

	draft, err := h.editorService.RemoveNewImage(c, h.middleware.GetCredentials(ctx), ctx.Params("id"), index)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "remove_new_image")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.draftResponse(draft))
	}
}

// PreviewNewImage serves a staged image so the editor can show it before
// it is published.
func (h *EditorHandler) PreviewNewImage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	index, err := ctx.ParamsInt("index")
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, errors.New("index must be a number"), ctx.Path())
	}

	obj, err := h.editorService.OpenNewImage(c, h.middleware.GetCredentials(ctx), ctx.Params("id"), index)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "preview_new_image")
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(io.LimitReader(obj.Body, editor.MaxImageSize+1))
	if err != nil {
		return errHandler.Handle(ctx, requestID, editor.ErrStagedImageMissing, ctx.Path(), "preview_new_image")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		ctx.Set(fiber.HeaderContentType, obj.ContentType)
		ctx.Set(fiber.HeaderCacheControl, "private, no-store")
		return ctx.Status(fiber.StatusOK).Send(data)
	}
}
