package editor

import (
	"fmt"

	"BlogEditor/pkg/response"
)

var (
	ErrDraftNotFound           = response.NewError(404, "draft not found")
	ErrNoImagesSelected        = response.NewError(400, "no images selected")
	ErrTooManyImages           = response.NewError(400, "You can upload a maximum of 5 images")
	ErrImageTooLarge           = response.NewError(400, "Each image must be less than 5MB")
	ErrInvalidImageType        = response.NewError(400, "Only image files are allowed")
	ErrImageNotFound           = response.NewError(404, "image not found")
	ErrTooManyTags             = response.NewError(400, "You can add a maximum of 10 tags")
	ErrUnknownSuggestion       = response.NewError(400, "tag is not in the suggestion list")
	ErrTitleContentRequired    = response.NewError(400, "Title and content are required")
	ErrLoginRequired           = response.NewError(401, "Please log in to continue")
	ErrVerifiedSessionRequired = response.NewError(403, "Submission history needs a verified session")
	ErrSaveInProgress          = response.NewError(409, "A save is already in progress")
	ErrStagedImageMissing      = response.NewError(410, "A selected image is no longer available. Please select it again.")
	ErrFailedToStageImage      = response.NewError(500, "failed to upload image")
	ErrFailedToSaveDraft       = response.NewError(500, "failed to save draft")
)

const (
	FallbackLoadMessage = "Failed to load blog"
	FallbackSaveMessage = "Failed to save blog. Please try again."
)

// LoginRequiredError sends the caller to the login page instead of showing
// an error. It matches ErrLoginRequired under errors.Is.
type LoginRequiredError struct {
	Redirect string
	Err      error
}

func (e *LoginRequiredError) Error() string {
	if e.Err != nil {
		return "login required: " + e.Err.Error()
	}
	return "login required"
}

func (e *LoginRequiredError) Is(target error) bool {
	return target == ErrLoginRequired
}

func (e *LoginRequiredError) Unwrap() error {
	return e.Err
}

// UpstreamError is a failed call to the blog service, carrying the message
// to show the user and, when the view should move on, where to send them.
type UpstreamError struct {
	Status   int
	Message  string
	Redirect string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("blog service error (status %d): %s", e.Status, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
