package editor

import (
	"slices"
	"strings"

	"BlogEditor/internal/entity"
	"BlogEditor/pkg/utils"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	MaxImages    = 5
	MaxImageSize = 5 * 1024 * 1024
	MaxTags      = 10
)

var DefaultTagSuggestions = []string{
	"Health",
	"Wellness",
	"Nutrition",
	"Cardiology",
	"Mental Health",
	"Fitness",
	"Pediatrics",
	"Prevention",
}

// ParseSuggestions reads a comma separated suggestion list, falling back to
// DefaultTagSuggestions when raw holds no usable entries.
func ParseSuggestions(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = NormalizeTag(s)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return slices.Clone(DefaultTagSuggestions)
	}
	return out
}

type ImageMeta struct {
	Filename    string
	ContentType string
	Size        int64
}

// CheckImageBatch decides whether a whole batch of selected files may be
// added to the draft. A batch is accepted or rejected as a unit.
func CheckImageBatch(d *entity.Draft, batch []ImageMeta) error {
	if len(batch) == 0 {
		return ErrNoImagesSelected
	}
	if d.ImageCount()+len(batch) > MaxImages {
		return ErrTooManyImages
	}
	for _, img := range batch {
		if img.Size > MaxImageSize {
			return ErrImageTooLarge
		}
	}
	for _, img := range batch {
		if !utils.IsImageContentType(img.ContentType) {
			return ErrInvalidImageType
		}
	}
	return nil
}

func RemoveExistingImage(d *entity.Draft, index int) error {
	if index < 0 || index >= len(d.ExistingImages) {
		return ErrImageNotFound
	}
	d.ExistingImages = slices.Delete(d.ExistingImages, index, index+1)
	return nil
}

func RemoveNewImage(d *entity.Draft, index int) (entity.PendingImage, error) {
	if index < 0 || index >= len(d.NewImages) {
		return entity.PendingImage{}, ErrImageNotFound
	}
	removed := d.NewImages[index]
	d.NewImages = slices.Delete(d.NewImages, index, index+1)
	return removed, nil
}

func NormalizeTag(raw string) string {
	return strings.TrimSpace(raw)
}

// AddTag appends raw to the tag list. Empty input and duplicates are no-ops
// reported as false; a full list is an error.
func AddTag(d *entity.Draft, raw string) (bool, error) {
	tag := NormalizeTag(raw)
	if tag == "" || slices.Contains(d.Tags, tag) {
		return false, nil
	}
	if len(d.Tags) >= MaxTags {
		return false, ErrTooManyTags
	}
	d.Tags = append(d.Tags, tag)
	return true, nil
}

func AddSuggestedTag(d *entity.Draft, suggestions []string, raw string) (bool, error) {
	tag := NormalizeTag(raw)
	if !slices.Contains(suggestions, tag) {
		return false, ErrUnknownSuggestion
	}
	return AddTag(d, tag)
}

func RemoveTag(d *entity.Draft, raw string) bool {
	i := slices.Index(d.Tags, raw)
	if i < 0 {
		i = slices.Index(d.Tags, NormalizeTag(raw))
	}
	if i < 0 {
		return false
	}
	d.Tags = slices.Delete(d.Tags, i, i+1)
	return true
}

// IsCommitKey reports whether key ends the in-progress tag text.
func IsCommitKey(key string) bool {
	return key == "Enter" || key == ","
}

// HandleTagKey applies a keypress in the tag input. On a commit key the text
// becomes a tag and the input is cleared once the tag is accepted; any other
// key just records the text.
func HandleTagKey(d *entity.Draft, key string, text string) (bool, error) {
	if !IsCommitKey(key) {
		d.TagInput = text
		return false, nil
	}

	added, err := AddTag(d, text)
	if err != nil {
		d.TagInput = text
		return false, err
	}
	if added {
		d.TagInput = ""
	} else {
		d.TagInput = text
	}
	return added, nil
}

func ValidateForSubmit(d *entity.Draft) error {
	if strings.TrimSpace(d.Title) == "" || !HasContent(d.Content) {
		return ErrTitleContentRequired
	}
	return nil
}

var mediaElements = map[string]bool{
	"img":    true,
	"video":  true,
	"audio":  true,
	"iframe": true,
	"embed":  true,
	"object": true,
}

// HasContent reports whether rich text content holds anything a reader would
// see: non-blank text or an embedded media element. Markup left behind by an
// emptied editor, such as "<p><br></p>", counts as empty.
func HasContent(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}

	nodes, err := html.ParseFragment(strings.NewReader(content), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return true
	}

	var visible func(n *html.Node) bool
	visible = func(n *html.Node) bool {
		switch n.Type {
		case html.TextNode:
			if strings.TrimSpace(n.Data) != "" {
				return true
			}
		case html.ElementNode:
			if mediaElements[n.Data] {
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if visible(c) {
				return true
			}
		}
		return false
	}

	for _, n := range nodes {
		if visible(n) {
			return true
		}
	}
	return false
}

func isAbsoluteURL(p string) bool {
	lower := strings.ToLower(p)
	for _, prefix := range []string{"http://", "https://", "data:", "blob:", "//"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// AbsoluteImageURL turns an image path stored by the blog service into a URL
// the browser can load. Already absolute URLs are returned unchanged.
func AbsoluteImageURL(baseURL string, p string) string {
	if isAbsoluteURL(p) {
		return p
	}
	p = strings.TrimLeft(strings.ReplaceAll(p, "\\", "/"), "/")
	return strings.TrimRight(baseURL, "/") + "/" + p
}

// RelativeImagePath is the inverse of AbsoluteImageURL for URLs on the blog
// service. URLs on other hosts are returned unchanged.
func RelativeImagePath(baseURL string, p string) string {
	prefix := strings.TrimRight(baseURL, "/") + "/"
	if prefix != "/" && strings.HasPrefix(p, prefix) {
		return strings.TrimPrefix(p, prefix)
	}
	return p
}

// Hydrate fills an edit-mode draft from a fetched record.
func Hydrate(d *entity.Draft, record entity.BlogRecord, baseURL string) {
	d.BlogID = record.ID
	d.Title = record.Title
	d.Content = record.Content
	d.TagInput = ""
	d.Tags = nil
	for _, t := range record.Tags {
		if t = NormalizeTag(t); t != "" && !slices.Contains(d.Tags, t) {
			d.Tags = append(d.Tags, t)
		}
	}

	d.ExistingImages = make([]entity.ExistingImage, 0, len(record.Images))
	d.OriginalImages = make([]string, 0, len(record.Images))
	for _, img := range record.Images {
		if strings.TrimSpace(img) == "" {
			continue
		}
		path := RelativeImagePath(baseURL, img)
		d.ExistingImages = append(d.ExistingImages, entity.ExistingImage{
			Path: path,
			URL:  AbsoluteImageURL(baseURL, img),
		})
		d.OriginalImages = append(d.OriginalImages, path)
	}
	d.NewImages = nil
}

// Reconcile splits the originally loaded images into those still on the
// draft and those the user removed, both as server-relative paths.
func Reconcile(d *entity.Draft) (existing []string, removed []string) {
	existing = make([]string, 0, len(d.ExistingImages))
	kept := make(map[string]struct{}, len(d.ExistingImages))
	for _, img := range d.ExistingImages {
		existing = append(existing, img.Path)
		kept[img.Path] = struct{}{}
	}

	removed = make([]string, 0)
	for _, orig := range d.OriginalImages {
		if _, ok := kept[orig]; !ok {
			removed = append(removed, orig)
		}
	}
	return existing, removed
}
