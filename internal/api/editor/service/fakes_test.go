package editorService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"BlogEditor/internal/api/editor"
	editorRepository "BlogEditor/internal/api/editor/repository"
	"BlogEditor/internal/entity"
	"BlogEditor/pkg/blogapi"
	"BlogEditor/pkg/s3"
	"BlogEditor/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	testBaseURL  = "https://blog.example.com"
	testLoginURL = "/login"
	testListing  = "/doctor/blogs"
)

type fakeRepo struct {
	mu          sync.Mutex
	drafts      map[string]entity.Draft
	locks       map[string]bool
	submissions []entity.Submission
	onLock      func(id string)
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{drafts: map[string]entity.Draft{}, locks: map[string]bool{}}
}

func (f *fakeRepo) NewClient(tx bool) (editorRepository.Client, error) {
	noop := func() error { return nil }
	return editorRepository.Client{
		Drafts:      fakeDrafts{f},
		Submissions: fakeSubmissions{f},
		Commit:      noop,
		Rollback:    noop,
	}, nil
}

type fakeDrafts struct{ f *fakeRepo }

func (d fakeDrafts) SaveDraft(_ context.Context, draft entity.Draft) error {
	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	d.f.drafts[draft.ID] = draft
	return nil
}

func (d fakeDrafts) GetDraft(_ context.Context, id string) (entity.Draft, error) {
	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	draft, ok := d.f.drafts[id]
	if !ok {
		return entity.Draft{}, editor.ErrDraftNotFound
	}
	return draft, nil
}

func (d fakeDrafts) DeleteDraft(_ context.Context, id string) error {
	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	delete(d.f.drafts, id)
	delete(d.f.locks, id)
	return nil
}

func (d fakeDrafts) AcquireSaveLock(_ context.Context, id string, _ time.Duration) (bool, error) {
	d.f.mu.Lock()
	if d.f.locks[id] {
		d.f.mu.Unlock()
		return false, nil
	}
	d.f.locks[id] = true
	hook := d.f.onLock
	d.f.mu.Unlock()

	if hook != nil {
		hook(id)
	}
	return true, nil
}

func (d fakeDrafts) ReleaseSaveLock(_ context.Context, id string) error {
	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	delete(d.f.locks, id)
	return nil
}

type fakeSubmissions struct{ f *fakeRepo }

func (s fakeSubmissions) CreateSubmission(_ context.Context, sub entity.Submission) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.submissions = append(s.f.submissions, sub)
	return nil
}

func (s fakeSubmissions) ListSubmissionsByDoctor(_ context.Context, doctorID string, limit int) ([]entity.Submission, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var out []entity.Submission
	for i := len(s.f.submissions) - 1; i >= 0 && len(out) < limit; i-- {
		if s.f.submissions[i].DoctorID == doctorID {
			out = append(out, s.f.submissions[i])
		}
	}
	return out, nil
}

type sentImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

type blogCall struct {
	Method  string
	Token   string
	ID      string
	Payload blogapi.Payload
	Images  []sentImage
}

type fakeBlogAPI struct {
	record    entity.BlogRecord
	getErr    error
	submitErr error
	calls     []blogCall
}

func (f *fakeBlogAPI) BaseURL() string { return testBaseURL }

func (f *fakeBlogAPI) GetBlog(_ context.Context, token string, id string) (entity.BlogRecord, error) {
	f.calls = append(f.calls, blogCall{Method: "GET", Token: token, ID: id})
	if f.getErr != nil {
		return entity.BlogRecord{}, f.getErr
	}
	return f.record, nil
}

func (f *fakeBlogAPI) CreateBlog(_ context.Context, token string, p blogapi.Payload) (blogapi.Result, error) {
	return f.submit("POST", token, "", p)
}

func (f *fakeBlogAPI) UpdateBlog(_ context.Context, token string, id string, p blogapi.Payload) (blogapi.Result, error) {
	return f.submit("PATCH", token, id, p)
}

func (f *fakeBlogAPI) submit(method, token, id string, p blogapi.Payload) (blogapi.Result, error) {
	call := blogCall{Method: method, Token: token, ID: id, Payload: p}
	for _, img := range p.Images {
		data, _ := io.ReadAll(img.Body)
		call.Images = append(call.Images, sentImage{Filename: img.Filename, ContentType: img.ContentType, Data: data})
	}
	f.calls = append(f.calls, call)
	if f.submitErr != nil {
		return blogapi.Result{}, f.submitErr
	}
	return blogapi.Result{Record: entity.BlogRecord{ID: "blog-1", Title: p.Title, Tags: p.Tags}}, nil
}

type fakeS3 struct {
	mu        sync.Mutex
	objects   map[string][]byte
	types     map[string]string
	puts      int
	failAfter int
	getErr    error
	deleted   []string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}, failAfter: -1}
}

func (f *fakeS3) PutObject(_ context.Context, key string, body io.Reader, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter >= 0 && f.puts >= f.failAfter {
		return errors.New("s3 unavailable")
	}
	f.puts++
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakeS3) GetObject(_ context.Context, key string) (s3.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return s3.Object{}, f.getErr
	}
	data, ok := f.objects[key]
	if !ok {
		return s3.Object{}, s3.ErrObjectNotFound
	}
	return s3.Object{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: f.types[key],
		Size:        int64(len(data)),
	}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type fixture struct {
	svc  IEditorService
	repo *fakeRepo
	blog *fakeBlogAPI
	s3   *fakeS3
}

func newFixture(t *testing.T, opts ...func(*editor.Settings)) *fixture {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	repo := newFakeRepo()
	blog := &fakeBlogAPI{}
	store := newFakeS3()

	settings := editor.Settings{
		LoginURL:       testLoginURL,
		ListingURL:     testListing,
		DraftTTL:       time.Hour,
		SubmitLockTTL:  time.Minute,
		TagSuggestions: editor.DefaultTagSuggestions,
	}
	for _, opt := range opts {
		opt(&settings)
	}

	svc := NewEditorService(log, repo, blog, store, utils.New(), settings)

	return &fixture{svc: svc, repo: repo, blog: blog, s3: store}
}

func (f *fixture) storedDraft(t *testing.T, id string) (entity.Draft, bool) {
	t.Helper()
	f.repo.mu.Lock()
	defer f.repo.mu.Unlock()
	d, ok := f.repo.drafts[id]
	return d, ok
}

type upload struct {
	name        string
	contentType string
	size        int
}

func fileHeaders(t *testing.T, uploads ...upload) []*multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, u := range uploads {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, u.name))
		h.Set("Content-Type", u.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(bytes.Repeat([]byte("x"), u.size))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	return form.File["images"]
}

func pngs(n int) []upload {
	out := make([]upload, n)
	for i := range out {
		out[i] = upload{name: fmt.Sprintf("photo%d.png", i), contentType: "image/png", size: 16}
	}
	return out
}

var (
	validCreds = entity.Credentials{Token: "opaque-session-token", DoctorID: "doc-1"}
	otherCreds = entity.Credentials{Token: "another-session-token", DoctorID: "doc-2"}
)

const testJWTSecret = "editor-test-secret"

func withJWTSecret(s *editor.Settings) {
	s.JWTSecret = testJWTSecret
}

func signedToken(t *testing.T, secret string, subject string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}
