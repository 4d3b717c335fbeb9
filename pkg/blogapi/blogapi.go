// Package blogapi is the HTTP client for the external blog service the editor
// publishes to.
package blogapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"time"

	"BlogEditor/internal/entity"
	contextPkg "BlogEditor/pkg/context"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	pathGetBlog    = "/api/v1/blog/blog/%s"
	pathCreateBlog = "/api/v1/blog/post-blog"
	pathUpdateBlog = "/api/v1/blog/edit-blog/%s"

	defaultTimeout = 30 * time.Second
)

type ItfBlogAPI interface {
	GetBlog(ctx context.Context, token string, id string) (entity.BlogRecord, error)
	CreateBlog(ctx context.Context, token string, payload Payload) (Result, error)
	UpdateBlog(ctx context.Context, token string, id string, payload Payload) (Result, error)
	BaseURL() string
}

// ImageFile is one file part of a submission.
type ImageFile struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Payload is the multipart body of a create or update call. ExistingImages
// and RemovedImages are only sent on update.
type Payload struct {
	Title          string
	Content        string
	DoctorID       string
	Tags           []string
	Images         []ImageFile
	ExistingImages []string
	RemovedImages  []string
}

type Result struct {
	Record  entity.BlogRecord
	Message string
}

// Error is a failed call to the blog service. StatusCode is zero when no
// response was received.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("blog service: status %d: %s", e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("blog service: %v", e.Err)
	default:
		return fmt.Sprintf("blog service: status %d", e.StatusCode)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

type client struct {
	baseURL    string
	httpClient *http.Client
	log        *logrus.Logger
}

func New(log *logrus.Logger) (ItfBlogAPI, error) {
	baseURL := os.Getenv("BLOG_SERVICE_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("BLOG_SERVICE_URL not set")
	}

	timeout := defaultTimeout
	if raw := os.Getenv("BLOG_SERVICE_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid BLOG_SERVICE_TIMEOUT %q: %w", raw, err)
		}
		timeout = d
	}

	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout}, log), nil
}

func NewWithHTTPClient(baseURL string, httpClient *http.Client, log *logrus.Logger) ItfBlogAPI {
	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

func (c *client) BaseURL() string {
	return c.baseURL
}

func (c *client) GetBlog(ctx context.Context, token string, id string) (entity.BlogRecord, error) {
	endpoint := c.baseURL + fmt.Sprintf(pathGetBlog, url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return entity.BlogRecord{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	res, err := c.do(ctx, req, "get_blog")
	if err != nil {
		return entity.BlogRecord{}, err
	}
	return res.Record, nil
}

func (c *client) CreateBlog(ctx context.Context, token string, payload Payload) (Result, error) {
	return c.send(ctx, http.MethodPost, c.baseURL+pathCreateBlog, token, payload, false, "create_blog")
}

func (c *client) UpdateBlog(ctx context.Context, token string, id string, payload Payload) (Result, error) {
	endpoint := c.baseURL + fmt.Sprintf(pathUpdateBlog, url.PathEscape(id))
	return c.send(ctx, http.MethodPatch, endpoint, token, payload, true, "update_blog")
}

func (c *client) send(ctx context.Context, method, endpoint, token string, payload Payload, reconcile bool, operation string) (Result, error) {
	body, contentType, err := encodePayload(payload, reconcile)
	if err != nil {
		return Result{}, fmt.Errorf("encode %s payload: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	return c.do(ctx, req, operation)
}

func (c *client) do(ctx context.Context, req *http.Request, operation string) (Result, error) {
	requestID := contextPkg.GetRequestID(ctx)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"operation":  operation,
			"error":      err.Error(),
		}).Error("Blog service request failed")
		return Result{}, &Error{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &Error{StatusCode: resp.StatusCode, Err: err}
	}

	c.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"operation":  operation,
		"status":     resp.StatusCode,
		"latency_ms": time.Since(start).Milliseconds(),
	}).Debug("Blog service responded")

	env := decodeEnvelope(raw)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &Error{StatusCode: resp.StatusCode, Message: env.message()}
	}

	record, err := env.record(raw)
	if err != nil {
		return Result{}, &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode blog record: %w", err)}
	}

	return Result{Record: record, Message: env.Message}, nil
}

// envelope covers the response shapes the blog service is known to use:
// the record under "data", under "blog", or as the body itself.
type envelope struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Data    jsoniter.RawMessage `json:"data"`
	Blog    jsoniter.RawMessage `json:"blog"`
	Images  []string            `json:"images"`
}

func decodeEnvelope(raw []byte) envelope {
	var env envelope
	if len(bytes.TrimSpace(raw)) == 0 {
		return env
	}
	_ = json.Unmarshal(raw, &env)
	return env
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

func (e envelope) record(raw []byte) (entity.BlogRecord, error) {
	var record entity.BlogRecord

	source := raw
	switch {
	case isObject(e.Data):
		source = e.Data
	case isObject(e.Blog):
		source = e.Blog
	}

	if !isObject(source) {
		return record, nil
	}
	if err := json.Unmarshal(source, &record); err != nil {
		return entity.BlogRecord{}, err
	}
	if record.Images == nil && e.Images != nil {
		record.Images = e.Images
	}
	return record, nil
}

func isObject(raw jsoniter.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodePayload(p Payload, reconcile bool) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	fields := [][2]string{
		{"title", strings.TrimSpace(p.Title)},
		{"content", p.Content},
		{"doctorId", p.DoctorID},
	}
	if len(p.Tags) > 0 {
		fields = append(fields, [2]string{"tags", strings.Join(p.Tags, ",")})
	}

	if reconcile {
		existing, err := json.Marshal(nonNil(p.ExistingImages))
		if err != nil {
			return nil, "", err
		}
		removed, err := json.Marshal(nonNil(p.RemovedImages))
		if err != nil {
			return nil, "", err
		}
		fields = append(fields,
			[2]string{"existingImages", string(existing)},
			[2]string{"removedImages", string(removed)},
		)
	}

	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	for _, img := range p.Images {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, quoteEscaper.Replace(img.Filename)))
		contentType := img.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, img.Body); err != nil {
			return nil, "", fmt.Errorf("copy image %s: %w", img.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
