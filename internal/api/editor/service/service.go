package editorService

import (
	"context"
	"mime/multipart"

	"BlogEditor/internal/api/editor"
	editorRepository "BlogEditor/internal/api/editor/repository"
	"BlogEditor/internal/entity"
	"BlogEditor/pkg/blogapi"
	"BlogEditor/pkg/s3"
	"BlogEditor/pkg/utils"

	"github.com/sirupsen/logrus"
)

// IEditorService is scoped to the calling doctor: every draft operation takes
// the caller's credentials and only sees drafts that doctor started.
type IEditorService interface {
	CreateDraft(ctx context.Context, creds entity.Credentials) (entity.Draft, error)
	LoadDraft(ctx context.Context, creds entity.Credentials, blogID string) (entity.Draft, error)
	GetDraft(ctx context.Context, creds entity.Credentials, id string) (entity.Draft, error)
	UpdateDraft(ctx context.Context, creds entity.Credentials, id string, req editor.UpdateDraftRequest) (entity.Draft, error)
	DiscardDraft(ctx context.Context, creds entity.Credentials, id string) error

	AddImages(ctx context.Context, creds entity.Credentials, id string, files []*multipart.FileHeader) (entity.Draft, error)
	RemoveExistingImage(ctx context.Context, creds entity.Credentials, id string, index int) (entity.Draft, error)
	RemoveNewImage(ctx context.Context, creds entity.Credentials, id string, index int) (entity.Draft, error)
	OpenNewImage(ctx context.Context, creds entity.Credentials, id string, index int) (s3.Object, error)

	AddTag(ctx context.Context, creds entity.Credentials, id string, tag string) (entity.Draft, error)
	AddSuggestedTag(ctx context.Context, creds entity.Credentials, id string, tag string) (entity.Draft, error)
	RemoveTag(ctx context.Context, creds entity.Credentials, id string, tag string) (entity.Draft, error)
	HandleTagKey(ctx context.Context, creds entity.Credentials, id string, req editor.TagKeyRequest) (entity.Draft, error)

	Submit(ctx context.Context, creds entity.Credentials, id string) (editor.SubmitResponse, error)
	ListSubmissions(ctx context.Context, creds entity.Credentials) (editor.SubmissionListResponse, error)

	TagSuggestions() []string
}

type editorService struct {
	log        *logrus.Logger
	editorRepo editorRepository.Repository
	blogClient blogapi.ItfBlogAPI
	s3Client   s3.ItfS3
	utils      utils.IUtils
	settings   editor.Settings
}

func NewEditorService(
	log *logrus.Logger,
	editorRepo editorRepository.Repository,
	blogClient blogapi.ItfBlogAPI,
	s3Client s3.ItfS3,
	utils utils.IUtils,
	settings editor.Settings,
) IEditorService {
	return &editorService{
		log:        log,
		editorRepo: editorRepo,
		blogClient: blogClient,
		s3Client:   s3Client,
		utils:      utils,
		settings:   settings,
	}
}

func (s *editorService) TagSuggestions() []string {
	return s.settings.TagSuggestions
}
