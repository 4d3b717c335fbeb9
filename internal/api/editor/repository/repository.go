package editorRepository

import (
	"context"
	"time"

	"BlogEditor/internal/entity"
	"BlogEditor/pkg/redis"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, rdb redis.IRedis, draftTTL time.Duration, log *logrus.Logger) Repository {
	return &repository{
		DB:       db,
		redis:    rdb,
		draftTTL: draftTTL,
		log:      log,
	}
}

type repository struct {
	DB       *sqlx.DB
	redis    redis.IRedis
	draftTTL time.Duration
	log      *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Drafts:      &draftsRepository{redis: r.redis, ttl: r.draftTTL, log: r.log},
		Submissions: &submissionsRepository{q: sqlExecutor, log: r.log},
		Commit:      commitFunc,
		Rollback:    rollbackFunc,
	}, nil
}

type Client struct {
	Drafts interface {
		SaveDraft(ctx context.Context, draft entity.Draft) error
		GetDraft(ctx context.Context, id string) (entity.Draft, error)
		DeleteDraft(ctx context.Context, id string) error
		AcquireSaveLock(ctx context.Context, id string, ttl time.Duration) (bool, error)
		ReleaseSaveLock(ctx context.Context, id string) error
	}

	Submissions interface {
		CreateSubmission(ctx context.Context, submission entity.Submission) error
		ListSubmissionsByDoctor(ctx context.Context, doctorID string, limit int) ([]entity.Submission, error)
	}

	Commit   func() error
	Rollback func() error
}

type draftsRepository struct {
	redis redis.IRedis
	ttl   time.Duration
	log   *logrus.Logger
}

type submissionsRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
