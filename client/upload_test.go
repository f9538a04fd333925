package client_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softTechSolutions2001/eduplatform-sub000/client"
)

// readUploadedFile pulls the single expected file part out of a multipart
// request and returns its form name, file name and content.
func readUploadedFile(t *testing.T, r *http.Request) (formName, fileName string, content []byte) {
	t.Helper()
	mr, err := r.MultipartReader()
	require.NoError(t, err)
	part, err := mr.NextPart()
	require.NoError(t, err)
	content, err = io.ReadAll(part)
	require.NoError(t, err)
	return part.FormName(), part.FileName(), content
}

func TestUploadCourseAsset_StreamsMultipartAndReportsProgress(t *testing.T) {
	payload := strings.Repeat("lecture-bytes.", 512)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/instructor/courses/7/assets/", r.URL.Path)
		formName, fileName, content := readUploadedFile(t, r)
		assert.Equal(t, "file", formName)
		assert.Equal(t, "intro.mp4", fileName)
		assert.Equal(t, payload, string(content))
		writeJSON(w, http.StatusCreated, map[string]any{
			"id": 11, "course_id": 7, "file_name": "intro.mp4",
			"size": len(content), "url": "https://cdn.example.com/intro.mp4",
		})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, newTestStore(t, "valid-token", "refresh-token", time.Hour))

	events := make(chan client.UploadProgress, 64)
	result, err := c.UploadCourseAsset(context.Background(), 7, "intro.mp4",
		strings.NewReader(payload), int64(len(payload)), events)
	require.NoError(t, err)
	assert.Equal(t, 11, result.ID)
	assert.Equal(t, "intro.mp4", result.FileName)
	assert.Equal(t, int64(len(payload)), result.Size)

	// The channel was sized generously, so every event landed and the last
	// one accounts for the full payload.
	close(events)
	var last client.UploadProgress
	var seen int
	for ev := range events {
		last = ev
		seen++
	}
	require.NotZero(t, seen, "at least one progress event must be emitted")
	assert.Equal(t, int64(len(payload)), last.Sent)
	assert.Equal(t, int64(len(payload)), last.Total)
}

func TestUploadCourseAsset_SeekableSourceRetriedAfterRefresh(t *testing.T) {
	payload := []byte("the whole file, twice over")
	var refreshCalls, uploadCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token/refresh/":
			refreshCalls.Add(1)
			writeJSON(w, http.StatusOK, map[string]any{"access_token": "fresh-token", "expires_in": 3600})
		default:
			uploadCalls.Add(1)
			_, _, content := readUploadedFile(t, r)
			if r.Header.Get("Authorization") != "Bearer fresh-token" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "token revoked"})
				return
			}
			assert.Equal(t, payload, content, "the retry must re-send the file from the start")
			writeJSON(w, http.StatusCreated, map[string]any{"id": 12, "course_id": 7, "file_name": "notes.pdf", "size": len(content)})
		}
	}))
	defer server.Close()

	store := newTestStore(t, "revoked-token", "refresh-token", time.Hour)
	c := newTestClient(t, server.URL, store)

	result, err := c.UploadCourseAsset(context.Background(), 7, "notes.pdf",
		bytes.NewReader(payload), int64(len(payload)), nil)
	require.NoError(t, err)
	assert.Equal(t, 12, result.ID)
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, int32(2), uploadCalls.Load())
}

func TestUploadCourseAsset_OneShotStreamSurfaces401(t *testing.T) {
	var refreshCalls, uploadCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token/refresh/":
			refreshCalls.Add(1)
			writeJSON(w, http.StatusOK, map[string]any{"access_token": "fresh-token", "expires_in": 3600})
		default:
			uploadCalls.Add(1)
			_, _ = io.Copy(io.Discard, r.Body)
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "token revoked"})
		}
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, newTestStore(t, "revoked-token", "refresh-token", time.Hour))

	// A bytes.Buffer cannot seek, so there is nothing to re-send.
	src := bytes.NewBufferString("unrepeatable stream")
	_, err := c.UploadCourseAsset(context.Background(), 7, "live.ts", src, -1, nil)
	require.Error(t, err)
	assert.True(t, client.Normalize(err).IsAuthError())
	assert.Equal(t, int32(0), refreshCalls.Load())
	assert.Equal(t, int32(1), uploadCalls.Load())
}

func TestUploadCourseAsset_InputValidation(t *testing.T) {
	c := newTestClient(t, "https://api.example.com", newTestStore(t, "valid-token", "refresh-token", time.Hour))

	_, err := c.UploadCourseAsset(context.Background(), 0, "x.mp4", strings.NewReader("x"), 1, nil)
	assert.ErrorContains(t, err, "course id")

	_, err = c.UploadCourseAsset(context.Background(), 7, "", strings.NewReader("x"), 1, nil)
	assert.ErrorContains(t, err, "name")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.UploadCourseAsset(ctx, 7, "x.mp4", strings.NewReader("x"), 1, nil)
	assert.True(t, client.Normalize(err).IsCancelled)
}

func TestUploadCourseAsset_ServerErrorNormalized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{"detail": "file exceeds plan limit"})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, newTestStore(t, "valid-token", "refresh-token", time.Hour))
	_, err := c.UploadCourseAsset(context.Background(), 7, "big.mp4", strings.NewReader("data"), 4, nil)

	apiErr := client.Normalize(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, apiErr.HTTPStatus)
	assert.Equal(t, "file exceeds plan limit", apiErr.Message)
}
