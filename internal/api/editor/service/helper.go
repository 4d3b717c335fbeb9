package editorService

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"BlogEditor/internal/api/editor"
	"BlogEditor/internal/entity"
	"BlogEditor/pkg/blogapi"
	contextPkg "BlogEditor/pkg/context"
	jwtPkg "BlogEditor/pkg/jwt"

	"github.com/sirupsen/logrus"
)

const cleanupTimeout = 5 * time.Second

type identity struct {
	DoctorID string
	Verified bool
}

var errDoctorMismatch = errors.New("doctor id does not match token subject")

// identify resolves who is calling. A JWT verified against the configured
// secret is authoritative for the doctor id; otherwise the id sent alongside
// the token is taken as given.
func (s *editorService) identify(ctx context.Context, creds entity.Credentials) (identity, error) {
	requestID := contextPkg.GetRequestID(ctx)

	info, err := jwtPkg.InspectToken(creds.Token, s.settings.JWTSecret, time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Rejected auth token")
		return identity{}, &editor.LoginRequiredError{Redirect: s.settings.LoginURL, Err: err}
	}

	id := identity{DoctorID: strings.TrimSpace(creds.DoctorID)}
	if info.Verified && info.Subject != "" {
		if id.DoctorID != "" && id.DoctorID != info.Subject {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
			}).Warn("Doctor id does not match token subject")
			return identity{}, &editor.LoginRequiredError{Redirect: s.settings.LoginURL, Err: errDoctorMismatch}
		}
		id.DoctorID = info.Subject
		id.Verified = true
	}

	if id.DoctorID == "" {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("Missing doctor id")
		return identity{}, &editor.LoginRequiredError{Redirect: s.settings.LoginURL}
	}

	return id, nil
}

// upstreamError converts a blog service failure into what the user sees,
// preferring the server's own message.
func upstreamError(err error, fallback string, redirect string) *editor.UpstreamError {
	out := &editor.UpstreamError{
		Status:   http.StatusBadGateway,
		Message:  fallback,
		Redirect: redirect,
		Err:      err,
	}

	var apiErr *blogapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= 400 {
			out.Status = apiErr.StatusCode
		}
		if apiErr.Message != "" {
			out.Message = apiErr.Message
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		out.Status = http.StatusGatewayTimeout
	}

	return out
}

// loadDraft fetches a draft owned by doctorID. Drafts of other doctors are
// reported as missing.
func (s *editorService) loadDraft(ctx context.Context, doctorID string, id string) (entity.Draft, error) {
	repo, err := s.editorRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return entity.Draft{}, err
	}

	draft, err := repo.Drafts.GetDraft(ctx, id)
	if err != nil {
		return entity.Draft{}, err
	}
	if draft.OwnerID != doctorID {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"draft_id":   id,
		}).Warn("Draft requested by another doctor")
		return entity.Draft{}, editor.ErrDraftNotFound
	}
	return draft, nil
}

// loadForEdit fetches a draft that the user is about to change. Drafts being
// submitted are read-only.
func (s *editorService) loadForEdit(ctx context.Context, doctorID string, id string) (entity.Draft, error) {
	draft, err := s.loadDraft(ctx, doctorID, id)
	if err != nil {
		return entity.Draft{}, err
	}
	if draft.Saving {
		return entity.Draft{}, editor.ErrSaveInProgress
	}
	return draft, nil
}

func (s *editorService) saveDraft(ctx context.Context, draft *entity.Draft) error {
	repo, err := s.editorRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return err
	}

	draft.UpdatedAt = time.Now()
	if err := repo.Drafts.SaveDraft(ctx, *draft); err != nil {
		return editor.ErrFailedToSaveDraft
	}
	return nil
}

// mutate applies fn to the stored draft and writes it back. Nothing is
// written when fn fails.
func (s *editorService) mutate(ctx context.Context, creds entity.Credentials, id string, fn func(d *entity.Draft) error) (entity.Draft, error) {
	caller, err := s.identify(ctx, creds)
	if err != nil {
		return entity.Draft{}, err
	}

	draft, err := s.loadForEdit(ctx, caller.DoctorID, id)
	if err != nil {
		return entity.Draft{}, err
	}

	if err := fn(&draft); err != nil {
		return entity.Draft{}, err
	}

	if err := s.saveDraft(ctx, &draft); err != nil {
		return entity.Draft{}, err
	}
	return draft, nil
}

// deleteStaged removes staged objects, logging instead of failing: leftovers
// are only storage garbage.
func (s *editorService) deleteStaged(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := s.s3Client.DeleteObject(ctx, key); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"key":        key,
				"error":      err.Error(),
			}).Warn("Failed to delete staged image")
		}
	}
}

// detached keeps request values but outlives the request deadline, so
// cleanup still runs after a timeout.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
}
