package editor

import (
	"fmt"
	"time"

	"BlogEditor/internal/entity"
)

type UpdateDraftRequest struct {
	Title   *string `json:"title" validate:"omitempty,max=256"`
	Content *string `json:"content" validate:"omitempty"`
}

type TagRequest struct {
	Tag string `json:"tag"`
}

type TagKeyRequest struct {
	Key  string `json:"key" validate:"required,max=32"`
	Text string `json:"text"`
}

type ExistingImageResponse struct {
	Index int    `json:"index"`
	Path  string `json:"path"`
	URL   string `json:"url"`
}

type PendingImageResponse struct {
	Index       int    `json:"index"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	PreviewURL  string `json:"preview_url"`
}

type DraftResponse struct {
	ID              string                  `json:"id"`
	Mode            entity.DraftMode        `json:"mode"`
	BlogID          string                  `json:"blog_id,omitempty"`
	Title           string                  `json:"title"`
	Content         string                  `json:"content"`
	TagInput        string                  `json:"tag_input"`
	Tags            []string                `json:"tags"`
	TagSuggestions  []string                `json:"tag_suggestions"`
	ExistingImages  []ExistingImageResponse `json:"existing_images"`
	NewImages       []PendingImageResponse  `json:"new_images"`
	RemainingImages int                     `json:"remaining_images"`
	RemainingTags   int                     `json:"remaining_tags"`
	Saving          bool                    `json:"saving"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

type SubmitResponse struct {
	Message  string            `json:"message"`
	Redirect string            `json:"redirect"`
	Blog     entity.BlogRecord `json:"blog"`
}

type SubmissionResponse struct {
	ID         string    `json:"id"`
	DraftID    string    `json:"draft_id"`
	BlogID     string    `json:"blog_id,omitempty"`
	Mode       string    `json:"mode"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	ImageCount int       `json:"image_count"`
	TagCount   int       `json:"tag_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type SubmissionListResponse struct {
	Submissions []SubmissionResponse `json:"submissions"`
}

// NewDraftResponse renders d for the editor view. suggestions is the quick-add
// list with the tags already on the draft left in; the view greys those out.
func NewDraftResponse(d entity.Draft, suggestions []string, previewBase string) DraftResponse {
	existing := make([]ExistingImageResponse, 0, len(d.ExistingImages))
	for i, img := range d.ExistingImages {
		existing = append(existing, ExistingImageResponse{Index: i, Path: img.Path, URL: img.URL})
	}

	pending := make([]PendingImageResponse, 0, len(d.NewImages))
	for i, img := range d.NewImages {
		pending = append(pending, PendingImageResponse{
			Index:       i,
			Filename:    img.Filename,
			ContentType: img.ContentType,
			Size:        img.Size,
			PreviewURL:  fmt.Sprintf("%s/drafts/%s/images/new/%d", previewBase, d.ID, i),
		})
	}

	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}

	return DraftResponse{
		ID:              d.ID,
		Mode:            d.Mode(),
		BlogID:          d.BlogID,
		Title:           d.Title,
		Content:         d.Content,
		TagInput:        d.TagInput,
		Tags:            tags,
		TagSuggestions:  suggestions,
		ExistingImages:  existing,
		NewImages:       pending,
		RemainingImages: max(MaxImages-d.ImageCount(), 0),
		RemainingTags:   max(MaxTags-len(d.Tags), 0),
		Saving:          d.Saving,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func NewSubmissionResponse(s entity.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:         s.ID,
		DraftID:    s.DraftID,
		BlogID:     s.BlogID,
		Mode:       string(s.Mode),
		Status:     string(s.Status),
		Message:    s.Message,
		ImageCount: s.ImageCount,
		TagCount:   s.TagCount,
		CreatedAt:  s.CreatedAt,
	}
}
