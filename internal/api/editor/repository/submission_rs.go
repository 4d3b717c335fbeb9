package editorRepository

import (
	"context"
	"database/sql"
	"time"

	"BlogEditor/internal/entity"
	contextPkg "BlogEditor/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type SubmissionDB struct {
	ID         sql.NullString `db:"id"`
	DraftID    sql.NullString `db:"draft_id"`
	BlogID     sql.NullString `db:"blog_id"`
	Mode       sql.NullString `db:"mode"`
	DoctorID   sql.NullString `db:"doctor_id"`
	Status     sql.NullString `db:"status"`
	Message    sql.NullString `db:"message"`
	ImageCount sql.NullInt64  `db:"image_count"`
	TagCount   sql.NullInt64  `db:"tag_count"`
	CreatedAt  time.Time      `db:"created_at"`
}

func (r *submissionsRepository) CreateSubmission(ctx context.Context, submission entity.Submission) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":          submission.ID,
		"draft_id":    submission.DraftID,
		"blog_id":     submission.BlogID,
		"mode":        string(submission.Mode),
		"doctor_id":   submission.DoctorID,
		"status":      string(submission.Status),
		"message":     submission.Message,
		"image_count": submission.ImageCount,
		"tag_count":   submission.TagCount,
		"created_at":  submission.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateSubmission, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateSubmission")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating submission")
		return err
	}

	return nil
}

func (r *submissionsRepository) ListSubmissionsByDoctor(ctx context.Context, doctorID string, limit int) ([]entity.Submission, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var rows []SubmissionDB

	argsKV := map[string]interface{}{
		"doctor_id": doctorID,
		"limit":     limit,
	}

	query, args, err := sqlx.Named(queryListSubmissionsByDoctor, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListSubmissionsByDoctor named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListSubmissionsByDoctor execution err")
		return nil, err
	}

	submissions := make([]entity.Submission, 0, len(rows))
	for _, row := range rows {
		submissions = append(submissions, r.makeSubmission(row))
	}

	return submissions, nil
}

func (r *submissionsRepository) makeSubmission(s SubmissionDB) entity.Submission {
	return entity.Submission{
		ID:         s.ID.String,
		DraftID:    s.DraftID.String,
		BlogID:     s.BlogID.String,
		Mode:       entity.DraftMode(s.Mode.String),
		DoctorID:   s.DoctorID.String,
		Status:     entity.SubmissionStatus(s.Status.String),
		Message:    s.Message.String,
		ImageCount: int(s.ImageCount.Int64),
		TagCount:   int(s.TagCount.Int64),
		CreatedAt:  s.CreatedAt,
	}
}
