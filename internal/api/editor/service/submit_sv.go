package editorService

import (
	"context"
	"io"
	"strings"
	"time"

	"BlogEditor/internal/api/editor"
	"BlogEditor/internal/entity"
	"BlogEditor/pkg/blogapi"
	contextPkg "BlogEditor/pkg/context"

	"github.com/sirupsen/logrus"
)

const submissionHistoryLimit = 20

const (
	msgBlogCreated = "Blog created successfully"
	msgBlogUpdated = "Blog updated successfully"
)

// Submit publishes the draft to the blog service. Validation runs before any
// network call; a draft that fails to publish is kept with saving reset.
func (s *editorService) Submit(ctx context.Context, creds entity.Credentials, id string) (editor.SubmitResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	caller, err := s.identify(ctx, creds)
	if err != nil {
		return editor.SubmitResponse{}, err
	}

	draft, err := s.loadDraft(ctx, caller.DoctorID, id)
	if err != nil {
		return editor.SubmitResponse{}, err
	}

	if err := editor.ValidateForSubmit(&draft); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"draft_id":   id,
		}).Warn("Draft failed validation")
		return editor.SubmitResponse{}, err
	}

	repo, err := s.editorRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return editor.SubmitResponse{}, err
	}

	locked, err := repo.Drafts.AcquireSaveLock(ctx, id, s.settings.SubmitLockTTL)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"draft_id":   id,
			"error":      err.Error(),
		}).Error("Failed to acquire save lock")
		return editor.SubmitResponse{}, err
	}
	if !locked {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"draft_id":   id,
		}).Warn("Submit rejected, save already in progress")
		return editor.SubmitResponse{}, editor.ErrSaveInProgress
	}

	marked, published := false, false
	defer func() {
		cctx, cancel := detached(ctx)
		defer cancel()

		if marked && !published {
			draft.Saving = false
			if err := s.saveDraft(cctx, &draft); err != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"draft_id":   id,
				}).Error("Failed to reset saving flag")
			}
		}
		if err := repo.Drafts.ReleaseSaveLock(cctx, id); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"draft_id":   id,
				"error":      err.Error(),
			}).Warn("Failed to release save lock")
		}
	}()

	// Edits that landed before the lock was taken must be part of what is sent.
	draft, err = s.loadDraft(ctx, caller.DoctorID, id)
	if err != nil {
		return editor.SubmitResponse{}, err
	}
	if err := editor.ValidateForSubmit(&draft); err != nil {
		return editor.SubmitResponse{}, err
	}

	draft.Saving = true
	if err := s.saveDraft(ctx, &draft); err != nil {
		return editor.SubmitResponse{}, err
	}
	marked = true

	images, closeAll, err := s.openStaged(ctx, draft)
	if err != nil {
		return editor.SubmitResponse{}, err
	}
	defer closeAll()

	payload := blogapi.Payload{
		Title:    strings.TrimSpace(draft.Title),
		Content:  draft.Content,
		DoctorID: caller.DoctorID,
		Tags:     draft.Tags,
		Images:   images,
	}

	var result blogapi.Result
	message := msgBlogCreated
	if draft.Mode() == entity.DraftModeEdit {
		payload.ExistingImages, payload.RemovedImages = editor.Reconcile(&draft)
		result, err = s.blogClient.UpdateBlog(ctx, creds.Token, draft.BlogID, payload)
		message = msgBlogUpdated
	} else {
		result, err = s.blogClient.CreateBlog(ctx, creds.Token, payload)
	}

	if err != nil {
		upErr := upstreamError(err, editor.FallbackSaveMessage, "")
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"draft_id":   id,
			"mode":       draft.Mode(),
			"status":     upErr.Status,
			"error":      err.Error(),
		}).Warn("Blog service rejected submission")
		s.recordSubmission(ctx, draft, caller.DoctorID, entity.SubmissionFailed, upErr.Message)
		return editor.SubmitResponse{}, upErr
	}

	published = true
	s.finishDraft(ctx, draft)
	s.recordSubmission(ctx, draft, caller.DoctorID, entity.SubmissionSucceeded, message)

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"draft_id":   id,
		"blog_id":    result.Record.ID,
		"mode":       draft.Mode(),
	}).Info("Blog submitted")

	return editor.SubmitResponse{
		Message:  message,
		Redirect: s.settings.ListingURL,
		Blog:     result.Record,
	}, nil
}

// openStaged reads back every pending image of the draft. The returned func
// closes whatever was opened.
func (s *editorService) openStaged(ctx context.Context, draft entity.Draft) ([]blogapi.ImageFile, func(), error) {
	var bodies []io.Closer
	closeAll := func() {
		for _, b := range bodies {
			b.Close()
		}
	}

	files := make([]blogapi.ImageFile, 0, len(draft.NewImages))
	for _, img := range draft.NewImages {
		obj, err := s.s3Client.GetObject(ctx, img.Key)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"draft_id":   draft.ID,
				"key":        img.Key,
				"error":      err.Error(),
			}).Error("Failed to read staged image")
			closeAll()
			return nil, func() {}, stagedReadError(err)
		}
		bodies = append(bodies, obj.Body)

		contentType := img.ContentType
		if contentType == "" {
			contentType = obj.ContentType
		}
		files = append(files, blogapi.ImageFile{
			Filename:    img.Filename,
			ContentType: contentType,
			Body:        obj.Body,
		})
	}

	return files, closeAll, nil
}

// finishDraft drops a published draft. Failures here leave garbage that
// expires on its own, so they are only logged.
func (s *editorService) finishDraft(ctx context.Context, draft entity.Draft) {
	cctx, cancel := detached(ctx)
	defer cancel()

	repo, err := s.editorRepo.NewClient(false)
	if err == nil {
		err = repo.Drafts.DeleteDraft(cctx, draft.ID)
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"draft_id":   draft.ID,
			"error":      err.Error(),
		}).Warn("Failed to delete submitted draft")
	}

	keys := make([]string, 0, len(draft.NewImages))
	for _, img := range draft.NewImages {
		keys = append(keys, img.Key)
	}
	s.deleteStaged(cctx, keys...)
}

func (s *editorService) recordSubmission(ctx context.Context, draft entity.Draft, doctorID string, status entity.SubmissionStatus, message string) {
	requestID := contextPkg.GetRequestID(ctx)
	cctx, cancel := detached(ctx)
	defer cancel()

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		return
	}

	repo, err := s.editorRepo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return
	}
	defer repo.Rollback()

	err = repo.Submissions.CreateSubmission(cctx, entity.Submission{
		ID:         id,
		DraftID:    draft.ID,
		BlogID:     draft.BlogID,
		Mode:       draft.Mode(),
		DoctorID:   doctorID,
		Status:     status,
		Message:    message,
		ImageCount: draft.ImageCount(),
		TagCount:   len(draft.Tags),
		CreatedAt:  time.Now(),
	})
	if err == nil {
		err = repo.Commit()
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"draft_id":   draft.ID,
			"error":      err.Error(),
		}).Error("Failed to record submission")
	}
}

// ListSubmissions serves the caller's own history from the local audit log.
// The blog service never sees this request, so the doctor id must come from
// a token whose signature was verified here.
func (s *editorService) ListSubmissions(ctx context.Context, creds entity.Credentials) (editor.SubmissionListResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	caller, err := s.identify(ctx, creds)
	if err != nil {
		return editor.SubmissionListResponse{}, err
	}
	if !caller.Verified {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("Submission history refused for unverified token")
		return editor.SubmissionListResponse{}, editor.ErrVerifiedSessionRequired
	}

	repo, err := s.editorRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return editor.SubmissionListResponse{}, err
	}

	submissions, err := repo.Submissions.ListSubmissionsByDoctor(ctx, caller.DoctorID, submissionHistoryLimit)
	if err != nil {
		return editor.SubmissionListResponse{}, err
	}

	resp := editor.SubmissionListResponse{
		Submissions: make([]editor.SubmissionResponse, 0, len(submissions)),
	}
	for _, sub := range submissions {
		resp.Submissions = append(resp.Submissions, editor.NewSubmissionResponse(sub))
	}
	return resp, nil
}
