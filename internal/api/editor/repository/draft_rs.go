package editorRepository

import (
	"context"
	"errors"
	"time"

	"BlogEditor/internal/api/editor"
	"BlogEditor/internal/entity"
	contextPkg "BlogEditor/pkg/context"
	"BlogEditor/pkg/redis"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func draftKey(id string) string {
	return draftKeyPrefix + id
}

func saveLockKey(id string) string {
	return draftKeyPrefix + id + saveLockSuffix
}

// SaveDraft writes the draft and pushes its expiry forward.
func (r *draftsRepository) SaveDraft(ctx context.Context, draft entity.Draft) error {
	requestID := contextPkg.GetRequestID(ctx)

	raw, err := json.Marshal(draft)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"draft_id":   draft.ID,
			"error":      err.Error(),
		}).Error("Failed to encode draft")
		return err
	}

	if err := r.redis.Set(ctx, draftKey(draft.ID), raw, r.ttl); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"draft_id":   draft.ID,
			"error":      err.Error(),
		}).Error("Failed to store draft")
		return err
	}

	return nil
}

func (r *draftsRepository) GetDraft(ctx context.Context, id string) (entity.Draft, error) {
	requestID := contextPkg.GetRequestID(ctx)

	raw, err := r.redis.Get(ctx, draftKey(id))
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"draft_id":   id,
			}).Warn("GetDraft no draft found")
			return entity.Draft{}, editor.ErrDraftNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"draft_id":   id,
			"error":      err.Error(),
		}).Error("GetDraft redis err")
		return entity.Draft{}, err
	}

	var draft entity.Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"draft_id":   id,
			"error":      err.Error(),
		}).Error("GetDraft decode err")
		return entity.Draft{}, err
	}

	return draft, nil
}

func (r *draftsRepository) DeleteDraft(ctx context.Context, id string) error {
	if err := r.redis.Delete(ctx, draftKey(id), saveLockKey(id)); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"draft_id":   id,
			"error":      err.Error(),
		}).Error("Failed to delete draft")
		return err
	}
	return nil
}

// AcquireSaveLock marks the draft as being submitted. Only one caller gets
// true until the lock is released or ttl passes.
func (r *draftsRepository) AcquireSaveLock(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	return r.redis.AcquireLock(ctx, saveLockKey(id), ttl)
}

func (r *draftsRepository) ReleaseSaveLock(ctx context.Context, id string) error {
	return r.redis.ReleaseLock(ctx, saveLockKey(id))
}
