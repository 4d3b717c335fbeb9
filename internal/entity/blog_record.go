package entity

import (
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// BlogRecord is a blog post as persisted by the blog service.
type BlogRecord struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Images    []string  `json:"images"`
	Tags      []string  `json:"tags"`
	AuthorID  string    `json:"doctorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type blogRecordWire struct {
	ID        string              `json:"id"`
	MongoID   string              `json:"_id"`
	Title     string              `json:"title"`
	Content   string              `json:"content"`
	Images    []string            `json:"images"`
	Tags      []string            `json:"tags"`
	DoctorID  jsoniter.RawMessage `json:"doctorId"`
	Doctor    jsoniter.RawMessage `json:"doctor"`
	Author    jsoniter.RawMessage `json:"author"`
	CreatedAt *time.Time          `json:"createdAt"`
	UpdatedAt *time.Time          `json:"updatedAt"`
}

// UnmarshalJSON accepts both "_id" and "id", and an author given either
// as a plain id or as a populated object.
func (b *BlogRecord) UnmarshalJSON(data []byte) error {
	var w blogRecordWire
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &w); err != nil {
		return err
	}

	*b = BlogRecord{
		ID:      w.ID,
		Title:   w.Title,
		Content: w.Content,
		Images:  w.Images,
		Tags:    w.Tags,
	}
	if b.ID == "" {
		b.ID = w.MongoID
	}
	for _, raw := range []jsoniter.RawMessage{w.DoctorID, w.Author, w.Doctor} {
		if id := referenceID(raw); id != "" {
			b.AuthorID = id
			break
		}
	}
	if w.CreatedAt != nil {
		b.CreatedAt = *w.CreatedAt
	}
	if w.UpdatedAt != nil {
		b.UpdatedAt = *w.UpdatedAt
	}
	return nil
}

func referenceID(raw jsoniter.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := jsoniter.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var obj struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
	}
	if err := jsoniter.Unmarshal(raw, &obj); err == nil {
		if obj.MongoID != "" {
			return obj.MongoID
		}
		return obj.ID
	}
	return ""
}
