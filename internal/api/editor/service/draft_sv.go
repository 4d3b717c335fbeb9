package editorService

import (
	"context"
	"time"

	"BlogEditor/internal/api/editor"
	"BlogEditor/internal/entity"
	contextPkg "BlogEditor/pkg/context"

	"github.com/sirupsen/logrus"
)

func (s *editorService) newDraft(ctx context.Context, ownerID string) (entity.Draft, error) {
	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		return entity.Draft{}, err
	}

	now := time.Now()
	return entity.Draft{
		ID:        id,
		OwnerID:   ownerID,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *editorService) CreateDraft(ctx context.Context, creds entity.Credentials) (entity.Draft, error) {
	caller, err := s.identify(ctx, creds)
	if err != nil {
		return entity.Draft{}, err
	}

	draft, err := s.newDraft(ctx, caller.DoctorID)
	if err != nil {
		return entity.Draft{}, err
	}

	if err := s.saveDraft(ctx, &draft); err != nil {
		return entity.Draft{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"draft_id":   draft.ID,
		"doctor_id":  caller.DoctorID,
	}).Info("Draft created")

	return draft, nil
}

// LoadDraft starts an edit-mode draft from the blog service's copy of blogID.
// No draft is stored when the record cannot be fetched.
func (s *editorService) LoadDraft(ctx context.Context, creds entity.Credentials, blogID string) (entity.Draft, error) {
	requestID := contextPkg.GetRequestID(ctx)

	caller, err := s.identify(ctx, creds)
	if err != nil {
		return entity.Draft{}, err
	}

	record, err := s.blogClient.GetBlog(ctx, creds.Token, blogID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"blog_id":    blogID,
			"error":      err.Error(),
		}).Warn("Failed to load blog")
		return entity.Draft{}, upstreamError(err, editor.FallbackLoadMessage, s.settings.ListingURL)
	}
	if record.ID == "" {
		record.ID = blogID
	}

	draft, err := s.newDraft(ctx, caller.DoctorID)
	if err != nil {
		return entity.Draft{}, err
	}
	editor.Hydrate(&draft, record, s.blogClient.BaseURL())

	if err := s.saveDraft(ctx, &draft); err != nil {
		return entity.Draft{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"draft_id":   draft.ID,
		"blog_id":    blogID,
		"images":     len(draft.ExistingImages),
	}).Info("Draft loaded for edit")

	return draft, nil
}

func (s *editorService) GetDraft(ctx context.Context, creds entity.Credentials, id string) (entity.Draft, error) {
	caller, err := s.identify(ctx, creds)
	if err != nil {
		return entity.Draft{}, err
	}

	return s.loadDraft(ctx, caller.DoctorID, id)
}

func (s *editorService) UpdateDraft(ctx context.Context, creds entity.Credentials, id string, req editor.UpdateDraftRequest) (entity.Draft, error) {
	return s.mutate(ctx, creds, id, func(d *entity.Draft) error {
		if req.Title != nil {
			d.Title = *req.Title
		}
		if req.Content != nil {
			d.Content = *req.Content
		}
		return nil
	})
}

// DiscardDraft drops the draft and its staged images without contacting the
// blog service.
func (s *editorService) DiscardDraft(ctx context.Context, creds entity.Credentials, id string) error {
	requestID := contextPkg.GetRequestID(ctx)

	caller, err := s.identify(ctx, creds)
	if err != nil {
		return err
	}

	draft, err := s.loadForEdit(ctx, caller.DoctorID, id)
	if err != nil {
		return err
	}

	repo, err := s.editorRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return err
	}

	if err := repo.Drafts.DeleteDraft(ctx, id); err != nil {
		return err
	}

	keys := make([]string, 0, len(draft.NewImages))
	for _, img := range draft.NewImages {
		keys = append(keys, img.Key)
	}
	s.deleteStaged(ctx, keys...)

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"draft_id":   id,
	}).Info("Draft discarded")

	return nil
}
