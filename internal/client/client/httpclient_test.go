package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okhotnikov/surveysync/internal/client/models"
	"github.com/okhotnikov/surveysync/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func staticToken(token string) TokenProvider {
	return func(ctx context.Context) (string, error) { return token, nil }
}

func TestRESTClient_UploadFile(t *testing.T) {
	path := writeTempFile(t, "p.jpg", []byte("jpeg bytes"))

	t.Run("success with relative url", func(t *testing.T) {
		var gotFilename, gotCT, gotAuth string
		var gotData []byte

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/uploads", r.URL.Path)
			gotAuth = r.Header.Get("Authorization")

			require.NoError(t, r.ParseMultipartForm(1<<20))
			f, hdr, err := r.FormFile("file")
			require.NoError(t, err)
			defer f.Close()
			gotFilename = hdr.Filename
			gotCT = hdr.Header.Get("Content-Type")
			gotData, _ = io.ReadAll(f)

			json.NewEncoder(w).Encode(map[string]any{
				"url": "/uploads/p.jpg", "contentType": "image/jpeg", "size": 10,
			})
		}))
		defer ts.Close()

		c := NewRESTClient(ts.URL, ts.Client(), staticToken("tok"))
		url, err := c.UploadFile(context.Background(), "file://"+path, models.MediaKindImage)
		require.NoError(t, err)

		assert.Equal(t, ts.URL+"/uploads/p.jpg", url)
		assert.Equal(t, "photo.jpg", gotFilename)
		assert.Equal(t, "image/jpeg", gotCT)
		assert.Equal(t, []byte("jpeg bytes"), gotData)
		assert.Equal(t, "Bearer tok", gotAuth)
	})

	t.Run("absolute url returned unchanged", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"url": "https://cdn/x.jpg"})
		}))
		defer ts.Close()

		c := NewRESTClient(ts.URL, ts.Client(), nil)
		url, err := c.UploadFile(context.Background(), path, models.MediaKindImage)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/x.jpg", url)
	})

	t.Run("missing url in response", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"contentType": "image/jpeg"})
		}))
		defer ts.Close()

		c := NewRESTClient(ts.URL, ts.Client(), nil)
		_, err := c.UploadFile(context.Background(), path, models.MediaKindImage)
		require.ErrorIs(t, err, common.ErrorNoUploadURL)
	})

	t.Run("server error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer ts.Close()

		c := NewRESTClient(ts.URL, ts.Client(), nil)
		_, err := c.UploadFile(context.Background(), path, models.MediaKindImage)
		require.Error(t, err)
	})

	t.Run("missing local file", func(t *testing.T) {
		c := NewRESTClient("http://unused", nil, nil)
		_, err := c.UploadFile(context.Background(), filepath.Join(t.TempDir(), "absent.jpg"), models.MediaKindImage)
		require.Error(t, err)

		_, err = c.UploadFile(context.Background(), "", models.MediaKindImage)
		require.ErrorIs(t, err, common.ErrorMissingLocalURI)
	})
}

func TestRESTClient_SubmitAnswers(t *testing.T) {
	opt := int64(2)
	payload := &models.SubmissionPayload{
		Responser: &models.Responser{Name: "A", PhotoURL: "https://cdn/p.jpg"},
		Answers:   []models.Answer{{QuestionID: 5, SelectedOptionID: &opt}},
	}

	t.Run("success", func(t *testing.T) {
		var gotPath, gotCT, gotAuth string
		var gotBody []byte

		submittedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotCT = r.Header.Get("Content-Type")
			gotAuth = r.Header.Get("Authorization")
			gotBody, _ = io.ReadAll(r.Body)
			json.NewEncoder(w).Encode(map[string]any{
				"message": "ok", "submission_id": 42,
				"submitted_at": submittedAt.Format(time.RFC3339), "inserted": 1,
			})
		}))
		defer ts.Close()

		c := NewRESTClient(ts.URL, ts.Client(), staticToken("tok"))
		res, err := c.SubmitAnswers(context.Background(), 7, payload)
		require.NoError(t, err)

		assert.Equal(t, "/survey/7/answers", gotPath)
		assert.Equal(t, "application/json", gotCT)
		assert.Equal(t, "Bearer tok", gotAuth)

		var sent models.SubmissionPayload
		require.NoError(t, json.Unmarshal(gotBody, &sent))
		assert.Equal(t, *payload, sent)

		assert.Equal(t, "ok", res.Message)
		assert.Equal(t, int64(42), res.SubmissionID)
		assert.Equal(t, 1, res.Inserted)
		assert.True(t, res.SubmittedAt.Equal(submittedAt))
	})

	t.Run("server rejects", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{"error": "answers array is required"})
		}))
		defer ts.Close()

		c := NewRESTClient(ts.URL, ts.Client(), nil)
		_, err := c.SubmitAnswers(context.Background(), 7, payload)
		require.ErrorIs(t, err, common.ErrorServerStatus)
	})

	t.Run("network error", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		c := NewRESTClient(ts.URL, nil, nil)
		_, err := c.SubmitAnswers(context.Background(), 7, payload)
		require.Error(t, err)
	})
}

func TestRESTClient_Ping(t *testing.T) {
	t.Run("any response is reachable", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		defer ts.Close()

		c := NewRESTClient(ts.URL, ts.Client(), nil)
		require.NoError(t, c.Ping(context.Background()))
	})

	t.Run("transport failure", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		c := NewRESTClient(ts.URL, nil, nil)
		require.Error(t, c.Ping(context.Background()))
	})
}
