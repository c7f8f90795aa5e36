package photo_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumapix/service/internal/middleware"
	"github.com/lumapix/service/internal/photo"
	"github.com/lumapix/service/internal/storage"
)

const jwtSecret = "test-secret"

func bearerToken(t *testing.T, userID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":      userID,
		"username": userID,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func newRouter(svc *photo.Service) http.Handler {
	h := photo.NewHandler(svc, 10<<20)

	r := chi.NewRouter()
	r.Route("/api/photos", func(r chi.Router) {
		r.With(middleware.OptionalAuth(jwtSecret)).Get("/{id}/image", h.Image)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(jwtSecret))
			r.Get("/", h.List)
			r.Post("/upload", h.Upload)
			r.Get("/{id}", h.Get)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
	r.Route("/api/public/photos", func(r chi.Router) {
		r.Get("/", h.PublicList)
		r.Get("/{id}", h.PublicGet)
	})
	return r
}

func multipartBody(t *testing.T, filename string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestUploadEndpointCreatesPhoto(t *testing.T) {
	repo := newFakeRepo()
	store := storage.NewMemoryStore()
	router := newRouter(newService(repo, store))

	body, contentType := multipartBody(t, "x.png", redPNG(t, 10), map[string]string{
		"title":    "Harbor",
		"isPublic": "true",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/photos/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearerToken(t, "alice"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var envelope struct {
		Success bool        `json:"success"`
		Data    photo.Photo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "Harbor", envelope.Data.Title)
	assert.True(t, envelope.Data.IsPublic)
	assert.NotEmpty(t, envelope.Data.ID)
}

func TestUploadEndpointRejectsTextFile(t *testing.T) {
	repo := newFakeRepo()
	store := storage.NewMemoryStore()
	router := newRouter(newService(repo, store))

	body, contentType := multipartBody(t, "x.txt", []byte("hello"), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/photos/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearerToken(t, "alice"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, 0, store.PutCalls, "a rejected file type must never reach storage")
}

func TestUploadEndpointRequiresAuth(t *testing.T) {
	router := newRouter(newService(newFakeRepo(), storage.NewMemoryStore()))

	body, contentType := multipartBody(t, "x.png", redPNG(t, 10), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/photos/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestImageEndpointRedirects(t *testing.T) {
	repo := newFakeRepo()
	store := storage.NewMemoryStore()
	svc := newService(repo, store)
	router := newRouter(svc)

	public, err := svc.Upload(context.Background(), "alice", redPNG(t, 10), "q.png", photo.UploadMeta{IsPublic: true})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/photos/"+public.ID+"/image?size=thumbnail", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Location"))
}

func TestImageEndpointAuthDistinction(t *testing.T) {
	repo := newFakeRepo()
	store := storage.NewMemoryStore()
	svc := newService(repo, store)
	router := newRouter(svc)

	private, err := svc.Upload(context.Background(), "alice", redPNG(t, 10), "p.png", photo.UploadMeta{})
	require.NoError(t, err)

	// No credentials at all: authentication required.
	req := httptest.NewRequest(http.MethodGet, "/api/photos/"+private.ID+"/image", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Credentials presented but insufficient: forbidden.
	req = httptest.NewRequest(http.MethodGet, "/api/photos/"+private.ID+"/image", nil)
	req.Header.Set("Authorization", bearerToken(t, "bob"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Wrong shared secret: forbidden, not unauthorized.
	req = httptest.NewRequest(http.MethodGet, "/api/photos/"+private.ID+"/image", nil)
	req.Header.Set(middleware.SharedSecretHeader, "guess")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Owner: redirect to a signed URL.
	req = httptest.NewRequest(http.MethodGet, "/api/photos/"+private.ID+"/image", nil)
	req.Header.Set("Authorization", bearerToken(t, "alice"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)

	// Correct shared secret, no identity: redirect as well.
	req = httptest.NewRequest(http.MethodGet, "/api/photos/"+private.ID+"/image", nil)
	req.Header.Set(middleware.SharedSecretHeader, sharedSecret)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestImageEndpointUnknownPhoto(t *testing.T) {
	router := newRouter(newService(newFakeRepo(), storage.NewMemoryStore()))

	req := httptest.NewRequest(http.MethodGet, "/api/photos/does-not-exist/image", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicEndpointsHidePrivatePhotos(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo, storage.NewMemoryStore())
	router := newRouter(svc)

	private, err := svc.Upload(context.Background(), "alice", redPNG(t, 10), "p.png", photo.UploadMeta{})
	require.NoError(t, err)
	_, err = svc.Upload(context.Background(), "alice", redPNG(t, 10), "q.png", photo.UploadMeta{IsPublic: true})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/public/photos/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data photo.Page `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.Total)

	req = httptest.NewRequest(http.MethodGet, "/api/public/photos/"+private.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
