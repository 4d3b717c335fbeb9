package editorHandler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"BlogEditor/internal/api/editor"
	"BlogEditor/internal/entity"
	"BlogEditor/internal/middleware"
	"BlogEditor/pkg/s3"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

type fakeService struct {
	draft       entity.Draft
	err         error
	submitResp  editor.SubmitResponse
	creds       entity.Credentials
	files       int
	removedTag  string
	keyReq      editor.TagKeyRequest
	previewData string
}

func (f *fakeService) CreateDraft(_ context.Context, creds entity.Credentials) (entity.Draft, error) {
	f.creds = creds
	return f.draft, f.err
}
func (f *fakeService) LoadDraft(_ context.Context, creds entity.Credentials, _ string) (entity.Draft, error) {
	f.creds = creds
	return f.draft, f.err
}
func (f *fakeService) GetDraft(_ context.Context, creds entity.Credentials, _ string) (entity.Draft, error) {
	f.creds = creds
	return f.draft, f.err
}
func (f *fakeService) UpdateDraft(context.Context, entity.Credentials, string, editor.UpdateDraftRequest) (entity.Draft, error) {
	return f.draft, f.err
}
func (f *fakeService) DiscardDraft(context.Context, entity.Credentials, string) error { return f.err }
func (f *fakeService) AddImages(_ context.Context, _ entity.Credentials, _ string, files []*multipart.FileHeader) (entity.Draft, error) {
	f.files = len(files)
	return f.draft, f.err
}
func (f *fakeService) RemoveExistingImage(context.Context, entity.Credentials, string, int) (entity.Draft, error) {
	return f.draft, f.err
}
func (f *fakeService) RemoveNewImage(context.Context, entity.Credentials, string, int) (entity.Draft, error) {
	return f.draft, f.err
}
func (f *fakeService) OpenNewImage(context.Context, entity.Credentials, string, int) (s3.Object, error) {
	if f.err != nil {
		return s3.Object{}, f.err
	}
	return s3.Object{Body: io.NopCloser(strings.NewReader(f.previewData)), ContentType: "image/png"}, nil
}
func (f *fakeService) AddTag(context.Context, entity.Credentials, string, string) (entity.Draft, error) {
	return f.draft, f.err
}
func (f *fakeService) AddSuggestedTag(context.Context, entity.Credentials, string, string) (entity.Draft, error) {
	return f.draft, f.err
}
func (f *fakeService) RemoveTag(_ context.Context, _ entity.Credentials, _ string, tag string) (entity.Draft, error) {
	f.removedTag = tag
	return f.draft, f.err
}
func (f *fakeService) HandleTagKey(_ context.Context, _ entity.Credentials, _ string, req editor.TagKeyRequest) (entity.Draft, error) {
	f.keyReq = req
	return f.draft, f.err
}
func (f *fakeService) Submit(_ context.Context, creds entity.Credentials, _ string) (editor.SubmitResponse, error) {
	f.creds = creds
	return f.submitResp, f.err
}
func (f *fakeService) ListSubmissions(context.Context, entity.Credentials) (editor.SubmissionListResponse, error) {
	return editor.SubmissionListResponse{Submissions: []editor.SubmissionResponse{}}, f.err
}
func (f *fakeService) TagSuggestions() []string { return editor.DefaultTagSuggestions }

func newTestApp(svc *fakeService) *fiber.App {
	log := logrus.New()
	log.SetOutput(io.Discard)

	app := fiber.New()
	mw := middleware.New(log)
	app.Use(mw.NewRequestIDMiddleware())
	New(log, validator.New(), mw, svc, "/api/v1").Start(app.Group("/api/v1"))
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestLoadDraft_LoginRequired(t *testing.T) {
	svc := &fakeService{err: &editor.LoginRequiredError{Redirect: "/login"}}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/editor/drafts/blog/b1", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "LOGIN_REQUIRED", body["code"])
	assert.Equal(t, "/login", body["redirect"])
}

func TestLoadDraft_UpstreamFailure(t *testing.T) {
	svc := &fakeService{err: &editor.UpstreamError{Status: 404, Message: "Blog not found", Redirect: "/doctor/blogs"}}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/editor/drafts/blog/b1", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AuthTokenCookie, Value: "tok"})
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "Blog not found", body["error"])
	assert.Equal(t, "/doctor/blogs", body["redirect"])
	assert.Equal(t, "tok", svc.creds.Token)
}

func TestGetDraft(t *testing.T) {
	svc := &fakeService{draft: entity.Draft{
		ID:        "d1",
		BlogID:    "b1",
		Tags:      []string{"Cardiology"},
		NewImages: []entity.PendingImage{{Key: "k", Filename: "a.png"}},
	}}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/editor/drafts/d1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got editor.DraftResponse
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, entity.DraftModeEdit, got.Mode)
	assert.Equal(t, 4, got.RemainingImages)
	assert.Equal(t, "/api/v1/editor/drafts/d1/images/new/0", got.NewImages[0].PreviewURL)
	assert.Equal(t, editor.DefaultTagSuggestions, got.TagSuggestions)
}

func TestGetDraft_PassesCredentials(t *testing.T) {
	svc := &fakeService{draft: entity.Draft{ID: "d1"}}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/editor/drafts/d1", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AuthTokenCookie, Value: "tok"})
	req.Header.Set(middleware.DoctorIDHeader, "doc-1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.Credentials{Token: "tok", DoctorID: "doc-1"}, svc.creds)
}

func TestListSubmissions_UnverifiedSession(t *testing.T) {
	app := newTestApp(&fakeService{err: editor.ErrVerifiedSessionRequired})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/editor/submissions", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestTagKeypress_LongTextAccepted(t *testing.T) {
	svc := &fakeService{draft: entity.Draft{ID: "d1"}}
	app := newTestApp(svc)

	long := strings.Repeat("x", 200)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/editor/drafts/d1/tags/keypress", strings.NewReader(`{"key":"a","text":"`+long+`"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, long, svc.keyReq.Text)
}

func TestGetDraft_NotFound(t *testing.T) {
	app := newTestApp(&fakeService{err: editor.ErrDraftNotFound})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/editor/drafts/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddImages_Multipart(t *testing.T) {
	svc := &fakeService{draft: entity.Draft{ID: "d1"}}
	app := newTestApp(svc)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, name := range []string{"a.png", "b.png"} {
		part, err := w.CreateFormFile("images", name)
		require.NoError(t, err)
		_, _ = part.Write([]byte("data"))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/editor/drafts/d1/images", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, svc.files)
}

func TestAddImages_TooMany(t *testing.T) {
	app := newTestApp(&fakeService{err: editor.ErrTooManyImages})

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, _ := w.CreateFormFile("images", "a.png")
	_, _ = part.Write([]byte("x"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/editor/drafts/d1/images", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "You can upload a maximum of 5 images", decode(t, resp)["error"])
}

func TestPreviewNewImage(t *testing.T) {
	app := newTestApp(&fakeService{previewData: "PNGDATA"})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/editor/drafts/d1/images/new/0", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	data, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "PNGDATA", string(data))

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/editor/drafts/d1/images/new/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTagKeypress(t *testing.T) {
	svc := &fakeService{draft: entity.Draft{ID: "d1"}}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/editor/drafts/d1/tags/keypress", strings.NewReader(`{"key":"Enter","text":"Sleep"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, editor.TagKeyRequest{Key: "Enter", Text: "Sleep"}, svc.keyReq)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/editor/drafts/d1/tags/keypress", strings.NewReader(`{"text":"Sleep"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, resp)["code"])
}

func TestRemoveTag_Unescapes(t *testing.T) {
	svc := &fakeService{draft: entity.Draft{ID: "d1"}}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/editor/drafts/d1/tags/Mental%20Health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Mental Health", svc.removedTag)
}

func TestSubmit(t *testing.T) {
	svc := &fakeService{submitResp: editor.SubmitResponse{
		Message:  "Blog created successfully",
		Redirect: "/doctor/blogs",
		Blog:     entity.BlogRecord{ID: "blog-1"},
	}}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/editor/drafts/d1/submit", nil)
	req.Header.Set("Authorization", "Bearer tok")
	req.Header.Set(middleware.DoctorIDHeader, "doc-1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "Blog created successfully", body["message"])
	assert.Equal(t, "/doctor/blogs", body["redirect"])
	assert.Equal(t, entity.Credentials{Token: "tok", DoctorID: "doc-1"}, svc.creds)
}

func TestSubmit_Failures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"upstream", &editor.UpstreamError{Status: 502, Message: editor.FallbackSaveMessage}, 502, editor.FallbackSaveMessage},
		{"validation", editor.ErrTitleContentRequired, 400, "Title and content are required"},
		{"in_progress", editor.ErrSaveInProgress, 409, "A save is already in progress"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&fakeService{err: tt.err})

			resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/editor/drafts/d1/submit", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantError, decode(t, resp)["error"])
		})
	}
}
