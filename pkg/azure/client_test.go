package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", "secret-key", time.Second, nil)
	require.NoError(t, err)
	return c
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		key      string
	}{
		{"empty endpoint", "", "k"},
		{"blank endpoint", "   ", "k"},
		{"no scheme", "example.cognitiveservices.azure.com", "k"},
		{"ftp scheme", "ftp://example.com", "k"},
		{"empty key", "https://example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.endpoint, tt.key, 0, nil)
			assert.Error(t, err)
		})
	}

	c, err := NewClient("https://example.com/", "k", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", c.Endpoint())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}

func TestURL(t *testing.T) {
	c, err := NewClient("https://example.com", "k", 0, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/a/b", c.URL("/a/b", nil))

	q := url.Values{}
	q.Set("api-version", "1")
	assert.Equal(t, "https://example.com/a?api-version=1", c.URL("a", q))
}

func TestPostBinarySendsHeaders(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff, 0x00}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/computervision/test", r.URL.Path)
		assert.Equal(t, "2023-10-01", r.URL.Query().Get("api-version"))
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret-key", r.Header.Get(SubscriptionKeyHeader))
		_, err := uuid.Parse(r.Header.Get(RequestIDHeader))
		assert.NoError(t, err)

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, payload, body)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	q := url.Values{}
	q.Set("api-version", "2023-10-01")
	body, err := c.PostBinary(context.Background(), "computervision/test", q, payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestPostJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var got map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "https://example.com/a.jpg", got["url"])
		_, _ = w.Write([]byte("raw"))
	})

	body, err := c.PostJSON(context.Background(), "x", nil, map[string]string{"url": "https://example.com/a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []byte("raw"), body)
}

func TestPostJSONMarshalError(t *testing.T) {
	c, err := NewClient("https://example.com", "k", 0, nil)
	require.NoError(t, err)

	_, err = c.PostJSON(context.Background(), "x", nil, make(chan int))
	assert.Error(t, err)
}

func TestServiceErrorFromEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"InvalidRequest","message":"Image format is not valid.","innererror":{"code":"InvalidImageFormat","message":"Input data is not a valid image."}}}`))
	})

	_, err := c.PostBinary(context.Background(), "x", nil, []byte("x"))
	require.Error(t, err)

	se, ok := IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, 400, se.StatusCode)
	assert.Equal(t, "Bad Request", se.Reason)
	assert.Equal(t, "InvalidRequest", se.Code)
	assert.Equal(t, "Image format is not valid. (Input data is not a valid image.)", se.Message)
	assert.Equal(t, "Status code: 400, Reason: Bad Request, Message: Image format is not valid. (Input data is not a valid image.)", err.Error())
}

func TestServiceErrorPlainBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("  Access denied due to invalid subscription key.\n"))
	})

	_, err := c.PostBinary(context.Background(), "x", nil, []byte("x"))
	se, ok := IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, 401, se.StatusCode)
	assert.Equal(t, "Access denied due to invalid subscription key.", se.Message)
}

func TestServiceErrorEmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.PostBinary(context.Background(), "x", nil, []byte("x"))
	se, ok := IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "Too Many Requests", se.Message)
}

func TestIsServiceErrorWrapped(t *testing.T) {
	wrapped := fmt.Errorf("analyze: %w", &ServiceError{StatusCode: 500})
	se, ok := IsServiceError(wrapped)
	require.True(t, ok)
	assert.Equal(t, 500, se.StatusCode)

	_, ok = IsServiceError(errors.New("plain"))
	assert.False(t, ok)
}

func TestSendHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.PostBinary(ctx, "x", nil, []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSendRejectsOversizedResponse(t *testing.T) {
	body := bytes.Repeat([]byte{0x89}, 1000)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	})

	c.maxResponse = int64(len(body))
	got, err := c.PostJSON(context.Background(), "x", nil, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, body, got)

	c.maxResponse = int64(len(body)) - 1
	got, err = c.PostJSON(context.Background(), "x", nil, map[string]string{})
	assert.ErrorIs(t, err, ErrResponseTooLarge)
	assert.Nil(t, got)
}
