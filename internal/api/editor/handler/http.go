package editorHandler

import (
	editorService "BlogEditor/internal/api/editor/service"
	"BlogEditor/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const routePrefix = "/editor"

type EditorHandler struct {
	log           *logrus.Logger
	validator     *validator.Validate
	middleware    middleware.Middleware
	editorService editorService.IEditorService
	previewBase   string
}

// New builds the editor handler. basePath is where the router passed to
// Start is mounted; it is used to build image preview links.
func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	es editorService.IEditorService,
	basePath string,
) *EditorHandler {
	return &EditorHandler{
		log:           log,
		validator:     validate,
		middleware:    middleware,
		editorService: es,
		previewBase:   basePath + routePrefix,
	}
}

func (h *EditorHandler) Start(srv fiber.Router) {
	editor := srv.Group(routePrefix, h.middleware.NewRateLimiter, h.middleware.NewCredentialsMiddleware)

	// Draft lifecycle
	editor.Post("/drafts", h.CreateDraft)
	editor.Post("/drafts/blog/:blogId", h.LoadDraft)
	editor.Get("/drafts/:id", h.GetDraft)
	editor.Patch("/drafts/:id", h.UpdateDraft)
	editor.Delete("/drafts/:id", h.DiscardDraft)

	// Images
	editor.Post("/drafts/:id/images", h.AddImages)
	editor.Delete("/drafts/:id/images/existing/:index", h.RemoveExistingImage)
	editor.Delete("/drafts/:id/images/new/:index", h.RemoveNewImage)
	editor.Get("/drafts/:id/images/new/:index", h.PreviewNewImage)

	// Tags
	editor.Post("/drafts/:id/tags", h.AddTag)
	editor.Post("/drafts/:id/tags/suggested", h.AddSuggestedTag)
	editor.Post("/drafts/:id/tags/keypress", h.TagKeypress)
	editor.Delete("/drafts/:id/tags/:tag", h.RemoveTag)

	// Publishing
	editor.Post("/drafts/:id/submit", h.Submit)
	editor.Get("/submissions", h.ListSubmissions)
}
