package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/hansubae/Ghighlights/internal/core/domain"
	"github.com/hansubae/Ghighlights/internal/core/services"
	"github.com/hansubae/Ghighlights/internal/infrastructure/middleware"
	"github.com/hansubae/Ghighlights/internal/infrastructure/repositories/memory"
	"github.com/hansubae/Ghighlights/internal/infrastructure/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type noopNotifier struct {
	clips []*domain.Clip
}

func (n *noopNotifier) ClipPersisted(ctx context.Context, clip *domain.Clip) {
	n.clips = append(n.clips, clip)
}

type handlerFixture struct {
	router   *gin.Engine
	notifier *noopNotifier
	auth     services.AuthService
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zap.NewNop().Sugar()

	media, err := storage.NewDiskMediaStore(t.TempDir())
	require.NoError(t, err)

	clipRepo := memory.NewMemoryClipRepository()
	ledger := memory.NewMemoryViewLedger(domain.ViewWindow)
	notifier := &noopNotifier{}

	clipService := services.NewClipService(clipRepo, media, notifier, log)
	viewService := services.NewViewService(clipRepo, ledger, domain.ViewWindow, services.NewMetricsService(), log)
	authService := services.NewAuthService("test-secret", 15*time.Minute, 24*time.Hour)

	handler := NewClipHandler(clipService, viewService, media, authService, "http://localhost:3001", 1<<20)

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.ErrorHandlerMiddleware(log))
	handler.SetupRoutes(router)

	return &handlerFixture{router: router, notifier: notifier, auth: authService}
}

func multipartUpload(t *testing.T, title, game, user string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("title", title))
	require.NoError(t, writer.WriteField("game", game))
	require.NoError(t, writer.WriteField("user", user))

	part, err := writer.CreateFormFile("video", "clip.mp4")
	require.NoError(t, err)
	part.Write([]byte("fake video bytes"))

	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func (f *handlerFixture) upload(t *testing.T, title string) domain.ClipID {
	t.Helper()

	body, contentType := multipartUpload(t, title, "Fortnite", "GamingGod")
	req := httptest.NewRequest(http.MethodPost, "/api/videos", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Video domain.Clip `json:"video"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Video.ID
}

func TestUploadClip_CreatedAndAnnounced(t *testing.T) {
	f := newHandlerFixture(t)

	id := f.upload(t, "Insane clutch")

	assert.NotZero(t, id)
	require.Len(t, f.notifier.clips, 1)
	assert.Equal(t, id, f.notifier.clips[0].ID)
	assert.Contains(t, f.notifier.clips[0].VideoURL, "/uploads/")
}

func TestUploadClip_MissingFields(t *testing.T) {
	f := newHandlerFixture(t)

	body, contentType := multipartUpload(t, "", "Fortnite", "GamingGod")
	req := httptest.NewRequest(http.MethodPost, "/api/videos", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.notifier.clips, "invalid uploads are never announced")
}

func TestUploadClip_MissingFile(t *testing.T) {
	f := newHandlerFixture(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("title", "t")
	writer.WriteField("game", "g")
	writer.WriteField("user", "u")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/videos", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListClips(t *testing.T) {
	f := newHandlerFixture(t)
	f.upload(t, "first")
	f.upload(t, "second")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/videos", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Videos []domain.Clip `json:"videos"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Videos, 2)
}

func TestSearchClips(t *testing.T) {
	f := newHandlerFixture(t)
	f.upload(t, "Epic Boss Fight")
	f.upload(t, "casual round")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/videos/search?title=boss", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Videos []domain.Clip `json:"videos"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Videos, 1)
	assert.Equal(t, "Epic Boss Fight", resp.Videos[0].Title)

	// Missing query parameter is a client error.
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/videos/search", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func postView(f *handlerFixture, id domain.ClipID, clientIP string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/videos/"+strconv.FormatInt(int64(id), 10)+"/view", nil)
	req.Header.Set("X-Forwarded-For", clientIP)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

type viewResponse struct {
	Counted bool  `json:"counted"`
	Views   int64 `json:"views"`
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) viewResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp viewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRecordView_FirstCountsRepeatDoesNot(t *testing.T) {
	f := newHandlerFixture(t)
	id := f.upload(t, "clip")

	first := decodeView(t, postView(f, id, "9.9.9.9"))
	assert.True(t, first.Counted)
	assert.Equal(t, int64(1), first.Views)

	second := decodeView(t, postView(f, id, "9.9.9.9"))
	assert.False(t, second.Counted)
	assert.Equal(t, int64(1), second.Views)
}

func TestRecordView_DistinctClientsBothCount(t *testing.T) {
	f := newHandlerFixture(t)
	id := f.upload(t, "clip")

	a := decodeView(t, postView(f, id, "1.1.1.1"))
	b := decodeView(t, postView(f, id, "2.2.2.2"))

	assert.True(t, a.Counted)
	assert.True(t, b.Counted)
	assert.Equal(t, int64(2), b.Views)
}

func TestRecordView_UnknownClip(t *testing.T) {
	f := newHandlerFixture(t)

	w := postView(f, 404, "1.1.1.1")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLikeClip(t *testing.T) {
	f := newHandlerFixture(t)
	id := f.upload(t, "clip")

	req := httptest.NewRequest(http.MethodPost, "/api/videos/"+strconv.FormatInt(int64(id), 10)+"/like", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Likes int64 `json:"likes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Likes)
}

func TestDeleteClip_RequiresAuth(t *testing.T) {
	f := newHandlerFixture(t)
	id := f.upload(t, "clip")

	path := "/api/videos/" + strconv.FormatInt(int64(id), 10)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, path, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := f.auth.GenerateToken("user-1", "GamingGod")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// The record is gone afterwards.
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategoriesAndSubscriptions(t *testing.T) {
	f := newHandlerFixture(t)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var cats struct {
		Categories []domain.Category `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cats))
	assert.Len(t, cats.Categories, 6)

	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/subscriptions", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var subs struct {
		Subscriptions []domain.Subscription `json:"subscriptions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &subs))
	assert.Len(t, subs.Subscriptions, 3)
}

func TestGetClip_InvalidID(t *testing.T) {
	f := newHandlerFixture(t)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/videos/not-a-number", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
