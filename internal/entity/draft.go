package entity

import "time"

type DraftMode string

const (
	DraftModeCreate DraftMode = "create"
	DraftModeEdit   DraftMode = "edit"
)

// Draft is the in-progress copy of a blog post held between requests.
// A draft with a BlogID edits that record; without one it creates a new post.
// OwnerID is the doctor who started it; nobody else can see or change it.
type Draft struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"owner_id"`
	BlogID         string          `json:"blog_id,omitempty"`
	Title          string          `json:"title"`
	Content        string          `json:"content"`
	TagInput       string          `json:"tag_input"`
	Tags           []string        `json:"tags"`
	ExistingImages []ExistingImage `json:"existing_images"`
	OriginalImages []string        `json:"original_images"`
	NewImages      []PendingImage  `json:"new_images"`
	Saving         bool            `json:"saving"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ExistingImage is an image already persisted on the blog service.
// Path is what the service stored; URL is the absolute form used for display.
type ExistingImage struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// PendingImage is a selected file staged in object storage until submit.
type PendingImage struct {
	Key         string `json:"key"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

func (d *Draft) Mode() DraftMode {
	if d.BlogID != "" {
		return DraftModeEdit
	}
	return DraftModeCreate
}

func (d *Draft) ImageCount() int {
	return len(d.ExistingImages) + len(d.NewImages)
}
