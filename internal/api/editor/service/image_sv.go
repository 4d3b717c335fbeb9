package editorService

import (
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"BlogEditor/internal/api/editor"
	"BlogEditor/internal/entity"
	contextPkg "BlogEditor/pkg/context"
	"BlogEditor/pkg/s3"

	"github.com/sirupsen/logrus"
)

func contentTypeOf(file *multipart.FileHeader) string {
	if ct := strings.TrimSpace(file.Header.Get("Content-Type")); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return mime.TypeByExtension(strings.ToLower(filepath.Ext(file.Filename)))
}

// AddImages stages a batch of selected files for the draft. The batch is
// applied whole or not at all.
func (s *editorService) AddImages(ctx context.Context, creds entity.Credentials, id string, files []*multipart.FileHeader) (entity.Draft, error) {
	requestID := contextPkg.GetRequestID(ctx)

	caller, err := s.identify(ctx, creds)
	if err != nil {
		return entity.Draft{}, err
	}

	draft, err := s.loadForEdit(ctx, caller.DoctorID, id)
	if err != nil {
		return entity.Draft{}, err
	}

	batch := make([]editor.ImageMeta, 0, len(files))
	for _, f := range files {
		batch = append(batch, editor.ImageMeta{
			Filename:    f.Filename,
			ContentType: contentTypeOf(f),
			Size:        f.Size,
		})
	}

	if err := editor.CheckImageBatch(&draft, batch); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"draft_id":   id,
			"selected":   len(files),
			"current":    draft.ImageCount(),
			"error":      err.Error(),
		}).Warn("Rejected image batch")
		return entity.Draft{}, err
	}

	staged := make([]entity.PendingImage, 0, len(files))
	rollback := func() {
		keys := make([]string, 0, len(staged))
		for _, img := range staged {
			keys = append(keys, img.Key)
		}
		cctx, cancel := detached(ctx)
		defer cancel()
		s.deleteStaged(cctx, keys...)
	}

	for i, f := range files {
		img, err := s.stageImage(ctx, id, f, batch[i])
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"draft_id":   id,
				"filename":   f.Filename,
				"error":      err.Error(),
			}).Error("Failed to stage image")
			rollback()
			return entity.Draft{}, editor.ErrFailedToStageImage
		}
		staged = append(staged, img)
	}

	draft.NewImages = append(draft.NewImages, staged...)
	if err := s.saveDraft(ctx, &draft); err != nil {
		rollback()
		return entity.Draft{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"draft_id":   id,
		"added":      len(staged),
		"total":      draft.ImageCount(),
	}).Info("Images staged")

	return draft, nil
}

func (s *editorService) stageImage(ctx context.Context, draftID string, file *multipart.FileHeader, meta editor.ImageMeta) (entity.PendingImage, error) {
	key, err := s.utils.StagingKey(draftID, file.Filename)
	if err != nil {
		return entity.PendingImage{}, err
	}

	src, err := file.Open()
	if err != nil {
		return entity.PendingImage{}, err
	}
	defer src.Close()

	if err := s.s3Client.PutObject(ctx, key, src, meta.ContentType); err != nil {
		return entity.PendingImage{}, err
	}

	return entity.PendingImage{
		Key:         key,
		Filename:    meta.Filename,
		ContentType: meta.ContentType,
		Size:        meta.Size,
	}, nil
}

func (s *editorService) RemoveExistingImage(ctx context.Context, creds entity.Credentials, id string, index int) (entity.Draft, error) {
	return s.mutate(ctx, creds, id, func(d *entity.Draft) error {
		return editor.RemoveExistingImage(d, index)
	})
}

func (s *editorService) RemoveNewImage(ctx context.Context, creds entity.Credentials, id string, index int) (entity.Draft, error) {
	var removed entity.PendingImage
	draft, err := s.mutate(ctx, creds, id, func(d *entity.Draft) error {
		var err error
		removed, err = editor.RemoveNewImage(d, index)
		return err
	})
	if err != nil {
		return entity.Draft{}, err
	}

	s.deleteStaged(ctx, removed.Key)
	return draft, nil
}

// OpenNewImage streams a staged image back for preview. The caller closes
// the returned body.
func (s *editorService) OpenNewImage(ctx context.Context, creds entity.Credentials, id string, index int) (s3.Object, error) {
	draft, err := s.GetDraft(ctx, creds, id)
	if err != nil {
		return s3.Object{}, err
	}
	if index < 0 || index >= len(draft.NewImages) {
		return s3.Object{}, editor.ErrImageNotFound
	}

	img := draft.NewImages[index]
	obj, err := s.s3Client.GetObject(ctx, img.Key)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"draft_id":   id,
			"key":        img.Key,
			"error":      err.Error(),
		}).Warn("Failed to open staged image")
		return s3.Object{}, stagedReadError(err)
	}
	if obj.ContentType == "" {
		obj.ContentType = img.ContentType
	}
	return obj, nil
}

// stagedReadError reports a vanished staged object as such. Any other
// storage failure is returned unchanged.
func stagedReadError(err error) error {
	if errors.Is(err, s3.ErrObjectNotFound) {
		return editor.ErrStagedImageMissing
	}
	return err
}
