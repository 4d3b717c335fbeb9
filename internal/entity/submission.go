package entity

import "time"

type SubmissionStatus string

const (
	SubmissionSucceeded SubmissionStatus = "succeeded"
	SubmissionFailed    SubmissionStatus = "failed"
)

type Submission struct {
	ID         string           `db:"id"`
	DraftID    string           `db:"draft_id"`
	BlogID     string           `db:"blog_id"`
	Mode       DraftMode        `db:"mode"`
	DoctorID   string           `db:"doctor_id"`
	Status     SubmissionStatus `db:"status"`
	Message    string           `db:"message"`
	ImageCount int              `db:"image_count"`
	TagCount   int              `db:"tag_count"`
	CreatedAt  time.Time        `db:"created_at"`
}

// Credentials identify the author on whose behalf the editor talks to the
// blog service. They are read from the caller and never written back.
type Credentials struct {
	Token    string
	DoctorID string
}
