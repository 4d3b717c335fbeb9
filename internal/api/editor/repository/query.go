package editorRepository

const (
	draftKeyPrefix = "editor:draft:"
	saveLockSuffix = ":saving"
)

const (
	queryCreateSubmission = `
		INSERT INTO editor_submissions (
			id,
			draft_id,
			blog_id,
			mode,
			doctor_id,
			status,
			message,
			image_count,
			tag_count,
			created_at
		) VALUES (
			:id,
			:draft_id,
			:blog_id,
			:mode,
			:doctor_id,
			:status,
			:message,
			:image_count,
			:tag_count,
			:created_at
		)
	`

	queryListSubmissionsByDoctor = `
		SELECT
			id,
			draft_id,
			blog_id,
			mode,
			doctor_id,
			status,
			message,
			image_count,
			tag_count,
			created_at
		FROM editor_submissions
		WHERE doctor_id = :doctor_id
		ORDER BY created_at DESC
		LIMIT :limit
	`
)
